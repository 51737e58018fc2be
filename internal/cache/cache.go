// Package cache is the short-lived read-through cache for tool results. It
// has two namespaces with independent TTLs; expired entries read as misses.
package cache

import (
	"context"
	"sort"
	"strings"

	"github.com/sensioair/sensio-mcp/internal/metrics"
)

// Namespace tags. They prefix every key of their namespace.
const (
	LatestTag  = "latest"
	HistoryTag = "history"
)

// Namespace is one TTL-scoped key/value space. Backends swallow their own
// errors: a failed read is a miss and a failed write is dropped.
type Namespace interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte)
	Clear(ctx context.Context)
}

// Manager owns the latest and history namespaces. It is built once per
// process and passed to the components that need it.
type Manager struct {
	Latest  Namespace
	History Namespace
}

func NewManager(latest, history Namespace) *Manager {
	return &Manager{
		Latest:  instrumented{ns: latest, name: LatestTag},
		History: instrumented{ns: history, name: HistoryTag},
	}
}

func (m *Manager) ClearAll(ctx context.Context) {
	m.Latest.Clear(ctx)
	m.History.Clear(ctx)
}

// LatestKey derives the latest-namespace key. Serial order does not matter.
func LatestKey(serials []string) string {
	return LatestTag + ":" + joinSorted(serials)
}

// HistoryKey derives the history-namespace key from the device set, the
// window bounds and the resolution.
func HistoryKey(serials []string, start, end, resolution string) string {
	return strings.Join([]string{HistoryTag, joinSorted(serials), start, end, resolution}, ":")
}

func joinSorted(serials []string) string {
	sorted := append([]string(nil), serials...)
	sort.Strings(sorted)
	return strings.Join(sorted, ",")
}

type instrumented struct {
	ns   Namespace
	name string
}

func (i instrumented) Get(ctx context.Context, key string) ([]byte, bool) {
	v, ok := i.ns.Get(ctx, key)
	result := "miss"
	if ok {
		result = "hit"
	}
	metrics.CacheRequests.WithLabelValues(i.name, result).Inc()
	return v, ok
}

func (i instrumented) Set(ctx context.Context, key string, value []byte) {
	i.ns.Set(ctx, key, value)
}

func (i instrumented) Clear(ctx context.Context) { i.ns.Clear(ctx) }
