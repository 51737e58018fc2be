package service

import (
	"context"
	"encoding/json"
	"math"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/sensioair/sensio-mcp/internal/access"
	"github.com/sensioair/sensio-mcp/internal/cache"
	"github.com/sensioair/sensio-mcp/internal/domain"
	"github.com/sensioair/sensio-mcp/internal/downsample"
	"github.com/sensioair/sensio-mcp/internal/normalize"
	"github.com/sensioair/sensio-mcp/internal/particles"
)

// Fetcher retrieves raw records for a device set and an optional window.
type Fetcher interface {
	FetchIndoorData(ctx context.Context, serials []string, start, end string) ([]domain.RawRecord, error)
}

// Limits bounds tool inputs.
type Limits struct {
	MaxWindowDays     int
	DefaultTopK       int
	DefaultResolution domain.Resolution
}

const (
	minTopK = 1
	maxTopK = 20
)

// Tools runs the tool operations. Each call validates, checks access,
// consults the cache and only then fetches.
type Tools struct {
	fetcher Fetcher
	guard   *access.Guard
	cache   *cache.Manager
	limits  Limits
	flight  singleflight.Group
}

func NewTools(fetcher Fetcher, guard *access.Guard, c *cache.Manager, limits Limits) *Tools {
	if !limits.DefaultResolution.Valid() {
		limits.DefaultResolution = domain.DefaultResolution
	}
	if limits.DefaultTopK < minTopK || limits.DefaultTopK > maxTopK {
		limits.DefaultTopK = 5
	}
	return &Tools{fetcher: fetcher, guard: guard, cache: c, limits: limits}
}

type LatestInput struct {
	DeviceSerials []string `json:"device_serials"`
}

type HistoryInput struct {
	DeviceSerials []string `json:"device_serials"`
	Start         string   `json:"start"`
	End           string   `json:"end"`
	Resolution    string   `json:"resolution,omitempty"`
}

type BreakdownInput struct {
	DeviceSerial string   `json:"device_serial"`
	Start        string   `json:"start"`
	End          string   `json:"end"`
	TopK         *float64 `json:"top_k,omitempty"`
}

func (t *Tools) ListDevices(ctx context.Context, caller string) (*domain.DeviceList, error) {
	devices, err := t.guard.Devices(ctx, caller)
	if err != nil {
		return nil, err
	}
	return &domain.DeviceList{Devices: devices}, nil
}

func (t *Tools) Latest(ctx context.Context, caller string, in LatestInput) (*domain.LatestResult, error) {
	if err := validateSerials(in.DeviceSerials); err != nil {
		return nil, err
	}
	if err := t.guard.Authorize(ctx, caller, in.DeviceSerials); err != nil {
		return nil, err
	}

	key := cache.LatestKey(in.DeviceSerials)
	var out domain.LatestResult
	err := t.cached(ctx, t.cache.Latest, key, &out, func(ctx context.Context) (any, error) {
		records, err := t.fetch(ctx, in.DeviceSerials, "", "")
		if err != nil {
			return nil, err
		}
		return &domain.LatestResult{Readings: normalize.LatestPerDevice(records)}, nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (t *Tools) History(ctx context.Context, caller string, in HistoryInput) (*domain.HistoryResult, error) {
	if err := validateSerials(in.DeviceSerials); err != nil {
		return nil, err
	}
	start, end, err := validateWindow(in.Start, in.End)
	if err != nil {
		return nil, err
	}
	res := t.limits.DefaultResolution
	if in.Resolution != "" {
		res = domain.Resolution(in.Resolution)
		if !res.Valid() {
			return nil, invalidf("resolution must be one of %s, got %q", joinResolutions(), in.Resolution)
		}
	}
	if err := t.guard.Authorize(ctx, caller, in.DeviceSerials); err != nil {
		return nil, err
	}
	if limit := time.Duration(t.limits.MaxWindowDays) * 24 * time.Hour; end.Sub(start) > limit {
		return nil, errors.Mark(
			errors.Newf("Time window exceeds maximum of %d days", t.limits.MaxWindowDays), ErrOutOfRange)
	}

	key := cache.HistoryKey(in.DeviceSerials, in.Start, in.End, string(res))
	var out domain.HistoryResult
	err = t.cached(ctx, t.cache.History, key, &out, func(ctx context.Context) (any, error) {
		records, err := t.fetch(ctx, in.DeviceSerials, in.Start, in.End)
		if err != nil {
			return nil, err
		}
		groups := normalize.GroupByDevice(records)
		series := make([]domain.DeviceSeries, 0, len(groups))
		for _, g := range groups {
			points := make([]domain.HistoryPoint, len(g.Records))
			for i, rec := range g.Records {
				points[i] = normalize.ToPoint(rec)
			}
			series = append(series, domain.DeviceSeries{
				DeviceSerial: g.Serial,
				Points:       downsample.Downsample(points, res),
			})
		}
		return &domain.HistoryResult{Series: series}, nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ParticleBreakdown is never cached.
func (t *Tools) ParticleBreakdown(ctx context.Context, caller string, in BreakdownInput) (*domain.BreakdownResult, error) {
	if strings.TrimSpace(in.DeviceSerial) == "" {
		return nil, invalidf("Device serial is required")
	}
	if _, _, err := validateWindow(in.Start, in.End); err != nil {
		return nil, err
	}
	k := t.limits.DefaultTopK
	if in.TopK != nil {
		v := *in.TopK
		if v != math.Trunc(v) || v < minTopK || v > maxTopK {
			return nil, invalidf("top_k must be an integer between %d and %d", minTopK, maxTopK)
		}
		k = int(v)
	}
	serials := []string{in.DeviceSerial}
	if err := t.guard.Authorize(ctx, caller, serials); err != nil {
		return nil, err
	}

	records, err := t.fetch(ctx, serials, in.Start, in.End)
	if err != nil {
		return nil, err
	}
	counts := particles.NewCounts()
	for _, rec := range records {
		if tree, ok := normalize.Classes(rec); ok {
			particles.Aggregate(tree, counts, "")
		}
	}
	out := &domain.BreakdownResult{
		DeviceSerial: in.DeviceSerial,
		TopClasses:   particles.TopK(counts, k),
	}
	if last, ok := normalize.Latest(records); ok {
		out.Raw, _ = normalize.Classes(last)
	}
	return out, nil
}

func (t *Tools) fetch(ctx context.Context, serials []string, start, end string) ([]domain.RawRecord, error) {
	records, err := t.fetcher.FetchIndoorData(ctx, serials, start, end)
	if err != nil {
		return nil, errors.Mark(err, ErrUpstream)
	}
	return records, nil
}

// cached serves key from ns into out, or computes it once across concurrent
// callers, stores the encoded result and decodes it into out. The shared
// computation runs detached from any single caller's cancellation; each
// caller stops waiting when its own ctx is done.
func (t *Tools) cached(ctx context.Context, ns cache.Namespace, key string, out any, compute func(context.Context) (any, error)) error {
	if b, ok := ns.Get(ctx, key); ok {
		err := json.Unmarshal(b, out)
		if err == nil {
			return nil
		}
		log.Warn().Err(err).Str("key", key).Msg("discarding undecodable cache entry")
	}

	detached := context.WithoutCancel(ctx)
	ch := t.flight.DoChan(key, func() (any, error) {
		result, err := compute(detached)
		if err != nil {
			return nil, err
		}
		b, err := json.Marshal(result)
		if err != nil {
			return nil, errors.Wrap(err, "encode result")
		}
		ns.Set(detached, key, b)
		return b, nil
	})

	select {
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "waiting for fetch")
	case res := <-ch:
		if res.Err != nil {
			return res.Err
		}
		if res.Shared {
			log.Debug().Str("key", key).Msg("coalesced concurrent fetch")
		}
		return json.Unmarshal(res.Val.([]byte), out)
	}
}

func validateSerials(serials []string) error {
	if len(serials) == 0 {
		return invalidf("At least one device serial is required")
	}
	for _, s := range serials {
		if strings.TrimSpace(s) == "" {
			return invalidf("Device serial is required")
		}
	}
	return nil
}

func validateWindow(start, end string) (time.Time, time.Time, error) {
	s, err := time.Parse(time.RFC3339, start)
	if err != nil {
		return time.Time{}, time.Time{}, invalidf("start must be an RFC 3339 timestamp, got %q", start)
	}
	e, err := time.Parse(time.RFC3339, end)
	if err != nil {
		return time.Time{}, time.Time{}, invalidf("end must be an RFC 3339 timestamp, got %q", end)
	}
	if e.Before(s) {
		return time.Time{}, time.Time{}, invalidf("end must not be before start")
	}
	return s, e, nil
}

func joinResolutions() string {
	names := make([]string, len(domain.Resolutions))
	for i, r := range domain.Resolutions {
		names[i] = string(r)
	}
	return strings.Join(names, ", ")
}
