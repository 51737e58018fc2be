// Package bootstrap builds the tool services from the loaded configuration.
package bootstrap

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog/log"

	"github.com/sensioair/sensio-mcp/internal/access"
	"github.com/sensioair/sensio-mcp/internal/cache"
	"github.com/sensioair/sensio-mcp/internal/cloud"
	"github.com/sensioair/sensio-mcp/internal/config"
	"github.com/sensioair/sensio-mcp/internal/database"
	"github.com/sensioair/sensio-mcp/internal/domain"
	"github.com/sensioair/sensio-mcp/internal/repository"
	"github.com/sensioair/sensio-mcp/internal/sensio"
	"github.com/sensioair/sensio-mcp/internal/service"
)

// Services wires the data source, device directory and cache selected by
// config into the tool services. The returned func closes whatever
// connections were opened.
func Services(ctx context.Context) (*service.Services, func(), error) {
	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	dir, closeDir, err := Directory(ctx)
	if err != nil {
		return nil, nil, err
	}
	closers = append(closers, closeDir)

	caches, closeCache, err := Caches(ctx)
	if err != nil {
		closeAll()
		return nil, nil, err
	}
	closers = append(closers, closeCache)

	svcs := service.New(Fetcher(), access.NewGuard(dir), caches, service.Limits{
		MaxWindowDays:     config.MaxWindowDays(),
		DefaultTopK:       config.DefaultTopK(),
		DefaultResolution: domain.Resolution(config.DefaultResolution()),
	})
	return svcs, closeAll, nil
}

func Fetcher() service.Fetcher {
	if config.Source() == config.SourceProxy {
		log.Info().Str("url", config.SupabaseURL()).Msg("fetching through the database proxy")
		return sensio.NewProxyClient(config.SupabaseURL(), config.SupabaseServiceKey(), config.HTTPTimeout())
	}
	log.Info().Str("url", config.APIURL()).Msg("fetching from the vendor api")
	return sensio.NewClient(config.APIURL(), config.APIKey(), config.HTTPTimeout())
}

func Directory(ctx context.Context) (access.Directory, func(), error) {
	switch config.AccessBackend() {
	case config.AccessPostgres:
		db, err := database.Connect(ctx, config.DBDSN())
		if err != nil {
			return nil, nil, errors.Wrap(err, "db connect failed")
		}
		return repository.New(db), func() { _ = db.Close() }, nil
	case config.AccessDynamoDB:
		table, err := cloud.NewDeviceTable(ctx, config.AWSRegion(), config.DevicesTable())
		if err != nil {
			return nil, nil, err
		}
		return table, func() {}, nil
	default:
		static := access.NewStatic(config.AllowedSerials())
		if static.Unrestricted() {
			log.Warn().Msg("ALLOWED_DEVICE_SERIALS is empty; every device serial is allowed")
		}
		return static, func() {}, nil
	}
}

func Caches(ctx context.Context) (*cache.Manager, func(), error) {
	if config.CacheBackend() != config.CacheRedis {
		return cache.NewManager(
			cache.NewMemory(config.LatestTTL()),
			cache.NewMemory(config.HistoryTTL()),
		), func() {}, nil
	}

	client, err := cache.NewRedisClient(ctx, config.RedisAddr(), config.RedisPassword(), config.RedisDB())
	if err != nil {
		return nil, nil, err
	}
	prefix := config.CacheKeyPrefix()
	return cache.NewManager(
		cache.NewRedis(client, prefix, cache.LatestTag, config.LatestTTL()),
		cache.NewRedis(client, prefix, cache.HistoryTag, config.HistoryTTL()),
	), func() { _ = client.Close() }, nil
}
