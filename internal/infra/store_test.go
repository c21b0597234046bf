package infra

import (
	"context"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestMemoryStoreGetSet(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	s := NewMemoryStore[string](time.Minute, 0).WithClock(clock.Now)

	if _, ok := s.Get(ctx, "missing"); ok {
		t.Fatal("expected miss for unknown key")
	}

	s.Set(ctx, "k", "v")
	got, ok := s.Get(ctx, "k")
	if !ok || got != "v" {
		t.Fatalf("Get(k) = %q, %v; want v, true", got, ok)
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	s := NewMemoryStore[int](60*time.Second, 0).WithClock(clock.Now)

	s.Set(ctx, "n", 1)
	clock.Advance(59 * time.Second)
	if _, ok := s.Get(ctx, "n"); !ok {
		t.Fatal("entry should still be fresh at 59s")
	}
	clock.Advance(time.Second)
	if _, ok := s.Get(ctx, "n"); ok {
		t.Fatal("entry should be expired at exactly the TTL")
	}

	s.Cleanup()
	if s.Len() != 0 {
		t.Fatalf("Len() after Cleanup = %d, want 0", s.Len())
	}
}

func TestMemoryStoreOverwriteRefreshes(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	s := NewMemoryStore[string](time.Minute, 0).WithClock(clock.Now)

	s.Set(ctx, "k", "old")
	clock.Advance(50 * time.Second)
	s.Set(ctx, "k", "new")
	clock.Advance(50 * time.Second)

	got, ok := s.Get(ctx, "k")
	if !ok || got != "new" {
		t.Fatalf("Get(k) = %q, %v; want new, true", got, ok)
	}
}

func TestMemoryStoreEvictsExpiredBeforeOldest(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	s := NewMemoryStore[string](time.Minute, 2).WithClock(clock.Now)

	s.Set(ctx, "a", "1")
	clock.Advance(30 * time.Second)
	s.Set(ctx, "b", "2")
	clock.Advance(31 * time.Second) // a expired, b fresh

	s.Set(ctx, "c", "3")
	if _, ok := s.Get(ctx, "b"); !ok {
		t.Error("b should survive: the expired entry makes room")
	}
	if _, ok := s.Get(ctx, "c"); !ok {
		t.Error("c should be stored")
	}
	if s.Len() != 2 {
		t.Errorf("Len() = %d, want 2", s.Len())
	}
}

func TestMemoryStoreEvictsOldest(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	s := NewMemoryStore[string](time.Hour, 2).WithClock(clock.Now)

	s.Set(ctx, "a", "1")
	clock.Advance(time.Second)
	s.Set(ctx, "b", "2")
	clock.Advance(time.Second)
	s.Set(ctx, "c", "3")

	if _, ok := s.Get(ctx, "a"); ok {
		t.Error("a is the oldest and should have been evicted")
	}
	for _, k := range []string{"b", "c"} {
		if _, ok := s.Get(ctx, k); !ok {
			t.Errorf("%s should be present", k)
		}
	}
}

func TestMemoryStoreConcurrent(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore[int](time.Minute, 16)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := string(rune('a' + i%20))
			s.Set(ctx, key, i)
			s.Get(ctx, key)
		}(i)
	}
	wg.Wait()
	if s.Len() > 16 {
		t.Errorf("Len() = %d, exceeds cap 16", s.Len())
	}
}
