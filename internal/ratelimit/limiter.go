package ratelimit

import (
	"context"
	"time"

	"github.com/davidbz/workshopai/internal/observability"
)

const defaultWindow = time.Minute

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed   bool
	Limit     int64
	Remaining int64
	ResetIn   time.Duration
}

// Limiter enforces a fixed number of requests per client per window.
type Limiter struct {
	store  Store
	limit  int64
	window time.Duration
}

// NewLimiter creates a limiter from configuration (DI constructor).
// It returns nil when limiting is disabled; a nil Limiter allows everything.
func NewLimiter(cfg *Config) *Limiter {
	if !cfg.Enabled() {
		return nil
	}
	return NewLimiterWithStore(NewStore(cfg), int64(cfg.PerMinute), defaultWindow)
}

// NewLimiterWithStore creates a limiter over an explicit store.
func NewLimiterWithStore(store Store, limit int64, window time.Duration) *Limiter {
	return &Limiter{
		store:  store,
		limit:  limit,
		window: window,
	}
}

// Allow records a request for key. Store failures fail open.
func (l *Limiter) Allow(ctx context.Context, key string) Decision {
	if l == nil {
		return Decision{Allowed: true}
	}

	count, resetIn, err := l.store.Hit(ctx, key, l.window)
	if err != nil {
		observability.FromContext(ctx).Warn("rate limit store unavailable, allowing request",
			observability.Error(err))
		return Decision{Allowed: true, Limit: l.limit, Remaining: l.limit, ResetIn: l.window}
	}

	return Decision{
		Allowed:   count <= l.limit,
		Limit:     l.limit,
		Remaining: max(l.limit-count, 0),
		ResetIn:   resetIn,
	}
}

// Close releases the store.
func (l *Limiter) Close() error {
	if l == nil {
		return nil
	}
	return l.store.Close()
}
