package unsplash

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// ErrHourlyLimitReached is returned when the hourly API call limit has been exhausted.
var ErrHourlyLimitReached = errors.New("hourly API limit reached")

// RateLimiter controls API call rate and hourly usage limits.
// It uses a token bucket for per-second rate limiting and a rolling
// window (one hour by default) for quota tracking.
type RateLimiter struct {
	limiter  *rate.Limiter
	count    atomic.Int64
	maxCalls int64
	window   time.Duration
	resetAt  time.Time
	mu       sync.Mutex
	nowFunc  func() time.Time
}

// RateLimiterOption configures the RateLimiter.
type RateLimiterOption func(*RateLimiter)

// WithRateLimiterNowFunc overrides the time function for testing.
func WithRateLimiterNowFunc(f func() time.Time) RateLimiterOption {
	return func(r *RateLimiter) {
		r.nowFunc = f
	}
}

// WithWindow overrides the quota window length.
func WithWindow(d time.Duration) RateLimiterOption {
	return func(r *RateLimiter) {
		r.window = d
	}
}

// NewRateLimiter creates a rate limiter with the given per-second rate,
// burst size, and per-window call limit. The window starts at construction
// and restarts once it has elapsed.
func NewRateLimiter(
	perSecond float64,
	burst int,
	maxCalls int64,
	opts ...RateLimiterOption,
) *RateLimiter {
	r := &RateLimiter{
		limiter:  rate.NewLimiter(rate.Limit(perSecond), burst),
		maxCalls: maxCalls,
		window:   time.Hour,
		nowFunc:  time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.resetAt = r.nowFunc().Add(r.window)
	return r
}

// Wait blocks until the rate limiter allows the call, or the context is canceled.
// Returns ErrHourlyLimitReached if the window's quota has been exhausted.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.checkWindowReset()

	if r.count.Load() >= r.maxCalls {
		return fmt.Errorf("%w (%d/%d)", ErrHourlyLimitReached, r.count.Load(), r.maxCalls)
	}

	if err := r.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait: %w", err)
	}

	r.count.Add(1)
	return nil
}

// Count returns the number of calls made in the current window.
func (r *RateLimiter) Count() int64 {
	return r.count.Load()
}

// Limit returns the configured per-window call limit.
func (r *RateLimiter) Limit() int64 {
	return r.maxCalls
}

// Remaining returns the number of calls left in the current window.
func (r *RateLimiter) Remaining() int64 {
	remaining := r.maxCalls - r.count.Load()
	if remaining < 0 {
		return 0
	}
	return remaining
}

// ResetAt returns when the current window expires.
func (r *RateLimiter) ResetAt() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.resetAt
}

func (r *RateLimiter) checkWindowReset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.nowFunc()
	if now.After(r.resetAt) {
		r.count.Store(0)
		r.resetAt = now.Add(r.window)
	}
}
