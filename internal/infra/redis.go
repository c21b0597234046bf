package infra

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisKV is the slice of the go-redis client RedisStore needs.
type redisKV interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// RedisStore is a Store backed by redis. Values are JSON encoded and
// written with SET EX so redis handles expiry. Redis failures are logged
// and reported as misses.
type RedisStore[V any] struct {
	client redisKV
	prefix string
	ttl    time.Duration
	logger *slog.Logger
}

// NewRedisStore creates a store that namespaces keys under prefix.
func NewRedisStore[V any](client redisKV, prefix string, ttl time.Duration, logger *slog.Logger) *RedisStore[V] {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisStore[V]{client: client, prefix: prefix, ttl: ttl, logger: logger}
}

// Get fetches and decodes key.
func (s *RedisStore[V]) Get(ctx context.Context, key string) (V, bool) {
	var zero V
	raw, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("redis get failed", "key", s.prefix+key, "error", err)
		}
		return zero, false
	}
	var v V
	if err := json.Unmarshal(raw, &v); err != nil {
		s.logger.Warn("redis value decode failed", "key", s.prefix+key, "error", err)
		return zero, false
	}
	return v, true
}

// Set encodes value and stores it with the store TTL.
func (s *RedisStore[V]) Set(ctx context.Context, key string, value V) {
	raw, err := json.Marshal(value)
	if err != nil {
		s.logger.Warn("redis value encode failed", "key", s.prefix+key, "error", err)
		return
	}
	if err := s.client.Set(ctx, s.prefix+key, raw, s.ttl).Err(); err != nil {
		s.logger.Warn("redis set failed", "key", s.prefix+key, "error", err)
	}
}

// NewRedisClient parses a redis:// URL, falling back to treating it as a
// bare host:port, and verifies the connection with PING.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		opt = &redis.Options{Addr: redisURL}
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", opt.Addr, err)
	}
	return client, nil
}

// NewStore returns a redis-backed store when client is non-nil and an
// in-memory store otherwise.
func NewStore[V any](client *redis.Client, prefix string, ttl time.Duration, maxEntries int, logger *slog.Logger) Store[V] {
	if client == nil {
		return NewMemoryStore[V](ttl, maxEntries)
	}
	return NewRedisStore[V](client, prefix, ttl, logger)
}
