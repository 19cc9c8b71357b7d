package chat

import (
	"math"
	"sync"
	"time"
)

const (
	DefaultRateLimit  = 3
	DefaultRateWindow = time.Minute
)

// Decision is the outcome of a rate-limit check.
type Decision struct {
	Allowed           bool
	Remaining         int
	RetryAfterSeconds int // set only when denied
}

type rateWindow struct {
	count   int
	resetAt time.Time
}

// RateLimiter is a fixed-window, per-user call counter. A user can make up to
// 2x the limit across a window boundary; the window is not sliding.
type RateLimiter struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu      sync.Mutex
	windows map[string]*rateWindow
}

// NewRateLimiter creates a limiter allowing limit calls per window per user.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	if limit <= 0 {
		limit = DefaultRateLimit
	}
	if window <= 0 {
		window = DefaultRateWindow
	}
	return &RateLimiter{
		limit:   limit,
		window:  window,
		now:     time.Now,
		windows: make(map[string]*rateWindow),
	}
}

// Allow checks the user's window and consumes a call when allowed. The check
// and the increment happen under one lock.
func (r *RateLimiter) Allow(userID string) Decision {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	w, ok := r.windows[userID]
	if !ok || !now.Before(w.resetAt) {
		r.windows[userID] = &rateWindow{count: 1, resetAt: now.Add(r.window)}
		return Decision{Allowed: true, Remaining: r.limit - 1}
	}

	if w.count < r.limit {
		w.count++
		return Decision{Allowed: true, Remaining: r.limit - w.count}
	}

	return Decision{
		Allowed:           false,
		Remaining:         0,
		RetryAfterSeconds: int(math.Ceil(w.resetAt.Sub(now).Seconds())),
	}
}

// Sweep removes every window that has expired and returns how many it removed.
func (r *RateLimiter) Sweep(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for userID, w := range r.windows {
		if !now.Before(w.resetAt) {
			delete(r.windows, userID)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked users.
func (r *RateLimiter) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.windows)
}

func (r *RateLimiter) Name() string { return "rate_limiter" }
