// Package infra provides shared infrastructure components used across
// the application: TTL caches and HTTP utilities.
package infra

import (
	"context"
	"sync"
	"time"
)

// Store is a keyed TTL cache. A missing or expired key reports false.
// Implementations are safe for concurrent use.
type Store[V any] interface {
	Get(ctx context.Context, key string) (V, bool)
	Set(ctx context.Context, key string, value V)
}

// --- In-memory store ---

type memEntry[V any] struct {
	value     V
	storedAt  time.Time
	expiresAt time.Time
}

// MemoryStore is a thread-safe in-memory Store with a fixed TTL and an
// optional entry cap.
type MemoryStore[V any] struct {
	mu         sync.RWMutex
	entries    map[string]memEntry[V]
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
}

// NewMemoryStore creates a store whose entries live for ttl. A maxEntries
// of 0 means unbounded. When full, expired entries are purged first and
// then the oldest entry is evicted.
func NewMemoryStore[V any](ttl time.Duration, maxEntries int) *MemoryStore[V] {
	return &MemoryStore[V]{
		entries:    make(map[string]memEntry[V]),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// WithClock replaces the store's time source and returns the store.
func (s *MemoryStore[V]) WithClock(now func() time.Time) *MemoryStore[V] {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
	return s
}

// Get returns the value for key if it is present and not older than the TTL.
func (s *MemoryStore[V]) Get(_ context.Context, key string) (V, bool) {
	s.mu.RLock()
	entry, ok := s.entries[key]
	now := s.now()
	s.mu.RUnlock()
	if !ok || !now.Before(entry.expiresAt) {
		var zero V
		return zero, false
	}
	return entry.value, true
}

// Set stores value under key, replacing any previous entry.
func (s *MemoryStore[V]) Set(_ context.Context, key string, value V) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if _, exists := s.entries[key]; !exists && s.maxEntries > 0 && len(s.entries) >= s.maxEntries {
		s.evictLocked(now)
	}
	s.entries[key] = memEntry[V]{
		value:     value,
		storedAt:  now,
		expiresAt: now.Add(s.ttl),
	}
}

// Len reports the number of entries held, expired ones included.
func (s *MemoryStore[V]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Cleanup removes expired entries. Can be called periodically.
func (s *MemoryStore[V]) Cleanup() {
	s.mu.Lock()
	s.purgeExpiredLocked(s.now())
	s.mu.Unlock()
}

func (s *MemoryStore[V]) purgeExpiredLocked(now time.Time) {
	for k, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, k)
		}
	}
}

// evictLocked makes room for one entry. Must be called with mu held.
func (s *MemoryStore[V]) evictLocked(now time.Time) {
	s.purgeExpiredLocked(now)
	if len(s.entries) < s.maxEntries {
		return
	}
	var (
		oldestKey string
		oldestAt  time.Time
		first     = true
	)
	for k, e := range s.entries {
		if first || e.storedAt.Before(oldestAt) {
			oldestKey, oldestAt, first = k, e.storedAt, false
		}
	}
	delete(s.entries, oldestKey)
}
