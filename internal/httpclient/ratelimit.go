package httpclient

import (
	"sync"
	"time"
)

// RateLimiter admits at most max calls in any trailing window. Calls over the cap are
// rejected, never queued.
type RateLimiter struct {
	max    int
	window time.Duration
	now    func() time.Time

	mu     sync.Mutex
	stamps []time.Time
}

// NewRateLimiter creates a limiter. A nil now uses time.Now.
func NewRateLimiter(max int, window time.Duration, now func() time.Time) *RateLimiter {
	if max <= 0 {
		max = 60
	}
	if window <= 0 {
		window = time.Minute
	}
	if now == nil {
		now = time.Now
	}
	return &RateLimiter{max: max, window: window, now: now, stamps: make([]time.Time, 0, max)}
}

// Allow records a call and reports whether it is admitted.
func (r *RateLimiter) Allow() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.prune(now)
	if len(r.stamps) >= r.max {
		return false
	}
	r.stamps = append(r.stamps, now)
	return true
}

// Usage returns the calls in the current window and the cap.
func (r *RateLimiter) Usage() (used, max int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prune(r.now())
	return len(r.stamps), r.max
}

// RetryAfter returns how long until the oldest call leaves the window.
func (r *RateLimiter) RetryAfter() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	r.prune(now)
	if len(r.stamps) < r.max {
		return 0
	}
	return r.window - now.Sub(r.stamps[0])
}

// prune must be called with mu held. Stamps are appended in order, so the expired
// ones form a prefix.
func (r *RateLimiter) prune(now time.Time) {
	i := 0
	for i < len(r.stamps) && now.Sub(r.stamps[i]) >= r.window {
		i++
	}
	if i > 0 {
		r.stamps = append(r.stamps[:0], r.stamps[i:]...)
	}
}
