package cache

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	value   []byte
	expires time.Time
}

// Memory is an in-process namespace. The TTL is applied when an entry is
// written; expired entries are dropped on read and by a sweep on write. A
// non-positive TTL stores nothing.
type Memory struct {
	ttl time.Duration
	now func() time.Time

	mu        sync.Mutex
	entries   map[string]memoryEntry
	lastSweep time.Time
}

func NewMemory(ttl time.Duration) *Memory {
	return newMemoryWithClock(ttl, time.Now)
}

func newMemoryWithClock(ttl time.Duration, now func() time.Time) *Memory {
	return &Memory{
		ttl:       ttl,
		now:       now,
		entries:   make(map[string]memoryEntry),
		lastSweep: now(),
	}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		return nil, false
	}
	if !m.now().Before(e.expires) {
		delete(m.entries, key)
		return nil, false
	}
	return e.value, true
}

func (m *Memory) Set(_ context.Context, key string, value []byte) {
	if m.ttl <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	if now.Sub(m.lastSweep) >= m.ttl {
		m.sweepLocked(now)
	}
	m.entries[key] = memoryEntry{value: value, expires: now.Add(m.ttl)}
}

func (m *Memory) Clear(context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]memoryEntry)
}

// Len reports the number of stored entries, expired or not.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *Memory) sweepLocked(now time.Time) {
	for k, e := range m.entries {
		if !now.Before(e.expires) {
			delete(m.entries, k)
		}
	}
	m.lastSweep = now
}
