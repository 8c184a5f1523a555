// Package ratelimit limits requests per client with fixed-window counters.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "workshopai:ratelimit:"

// Store counts hits inside a window.
// Implementations can be in-memory (single instance) or Redis (shared).
type Store interface {
	// Hit records one request for key and returns the count in the current
	// window together with the window's remaining lifetime.
	Hit(ctx context.Context, key string, window time.Duration) (count int64, resetIn time.Duration, err error)

	// Close releases resources.
	Close() error
}

// NewStore picks the Redis store when an address is configured.
func NewStore(cfg *Config) Store {
	if cfg != nil && cfg.RedisAddr != "" {
		return NewRedisStore(redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}))
	}
	return NewMemoryStore()
}

type window struct {
	count   int64
	resetAt time.Time
}

// MemoryStore keeps counters in process memory.
type MemoryStore struct {
	mu      sync.Mutex
	windows map[string]*window
	now     func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		windows: make(map[string]*window),
		now:     time.Now,
	}
}

// Hit implements Store. Expired windows are swept on access.
func (s *MemoryStore) Hit(_ context.Context, key string, size time.Duration) (int64, time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweep(now)

	w, ok := s.windows[key]
	if !ok {
		w = &window{resetAt: now.Add(size)}
		s.windows[key] = w
	}
	w.count++

	return w.count, w.resetAt.Sub(now), nil
}

// Close implements Store.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.windows = make(map[string]*window)
	return nil
}

// sweep must be called with the lock held.
func (s *MemoryStore) sweep(now time.Time) {
	for key, w := range s.windows {
		if !now.Before(w.resetAt) {
			delete(s.windows, key)
		}
	}
}

// RedisStore keeps counters in Redis with INCR and a key expiry per window.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Hit implements Store.
func (s *RedisStore) Hit(ctx context.Context, key string, size time.Duration) (int64, time.Duration, error) {
	redisKey := keyPrefix + key

	var incr *redis.IntCmd
	var ttl *redis.DurationCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, redisKey)
		pipe.ExpireNX(ctx, redisKey, size)
		ttl = pipe.PTTL(ctx, redisKey)
		return nil
	})
	if err != nil {
		return 0, 0, fmt.Errorf("failed to record hit: %w", err)
	}

	resetIn := ttl.Val()
	if resetIn < 0 {
		resetIn = size
	}

	return incr.Val(), resetIn, nil
}

// Close implements Store.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
