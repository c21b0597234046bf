package infra

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/marketdesk/internal/logging"
)

type fakeRedis struct {
	mu     sync.Mutex
	data   map[string]string
	ttls   map[string]time.Duration
	getErr error
	setErr error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return redis.NewStringResult("", f.getErr)
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return redis.NewStatusResult("", f.setErr)
	}
	switch v := value.(type) {
	case []byte:
		f.data[key] = string(v)
	case string:
		f.data[key] = v
	}
	f.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

type payload struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
}

func TestRedisStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	fr := newFakeRedis()
	s := NewRedisStore[payload](fr, "prices:", 15*time.Second, logging.Discard())

	_, ok := s.Get(ctx, "AAPL")
	assert.False(t, ok)

	s.Set(ctx, "AAPL", payload{Symbol: "AAPL", Price: 190.5})
	require.Contains(t, fr.data, "prices:AAPL")
	assert.Equal(t, 15*time.Second, fr.ttls["prices:AAPL"])

	got, ok := s.Get(ctx, "AAPL")
	require.True(t, ok)
	assert.Equal(t, payload{Symbol: "AAPL", Price: 190.5}, got)
}

func TestRedisStoreErrorsAreMisses(t *testing.T) {
	ctx := context.Background()
	fr := newFakeRedis()
	s := NewRedisStore[payload](fr, "p:", time.Minute, logging.Discard())

	fr.setErr = errors.New("connection refused")
	s.Set(ctx, "X", payload{Symbol: "X"})
	assert.Empty(t, fr.data)

	fr.data["p:X"] = `{"symbol":"X"}`
	fr.getErr = errors.New("connection reset")
	_, ok := s.Get(ctx, "X")
	assert.False(t, ok)
}

func TestRedisStoreCorruptValueIsMiss(t *testing.T) {
	fr := newFakeRedis()
	fr.data["p:X"] = "not json"
	s := NewRedisStore[payload](fr, "p:", time.Minute, logging.Discard())

	_, ok := s.Get(context.Background(), "X")
	assert.False(t, ok)
}

func TestNewStoreWithoutClientIsMemory(t *testing.T) {
	s := NewStore[int](nil, "x:", time.Minute, 10, nil)
	_, isMem := s.(*MemoryStore[int])
	assert.True(t, isMem)
}
