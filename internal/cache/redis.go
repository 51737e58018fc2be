package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/sensioair/sensio-mcp/internal/metrics"
)

// NewRedisClient connects to Redis and checks the connection.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		PoolSize:     20,
		MinIdleConns: 2,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// Redis is a namespace stored in Redis. Keys are stored as prefix+key; the
// server enforces the TTL. A non-positive TTL stores nothing.
type Redis struct {
	client *redis.Client
	prefix string
	tag    string
	ttl    time.Duration
}

func NewRedis(client *redis.Client, prefix, tag string, ttl time.Duration) *Redis {
	return &Redis{client: client, prefix: prefix, tag: tag, ttl: ttl}
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		r.fail("get", err)
		return nil, false
	}
	return val, true
}

func (r *Redis) Set(ctx context.Context, key string, value []byte) {
	if r.ttl <= 0 {
		return
	}
	if err := r.client.Set(ctx, r.prefix+key, value, r.ttl).Err(); err != nil {
		r.fail("set", err)
	}
}

// Clear deletes every key of this namespace.
func (r *Redis) Clear(ctx context.Context) {
	iter := r.client.Scan(ctx, 0, r.prefix+r.tag+":*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
		if len(keys) == 100 {
			r.del(ctx, keys)
			keys = keys[:0]
		}
	}
	if err := iter.Err(); err != nil {
		r.fail("scan", err)
	}
	if len(keys) > 0 {
		r.del(ctx, keys)
	}
}

func (r *Redis) del(ctx context.Context, keys []string) {
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		r.fail("del", err)
	}
}

func (r *Redis) fail(op string, err error) {
	metrics.CacheErrors.WithLabelValues(r.tag, op).Inc()
	log.Warn().Err(err).Str("namespace", r.tag).Str("op", op).Msg("redis cache operation failed")
}
