package auth

import (
	"sync"
	"time"
)

const (
	// DefaultMaxAttempts is the number of login attempts allowed per
	// username inside one attempt window.
	DefaultMaxAttempts = 5
	// DefaultAttemptWindow is the sliding window for login attempts.
	DefaultAttemptWindow = 5 * time.Minute
)

type attempt struct {
	count       int
	lastAttempt time.Time
}

// RateLimiter tracks login attempts per username in process memory.
// State is not persisted; a restart clears all counters.
type RateLimiter struct {
	mu          sync.Mutex
	attempts    map[string]*attempt
	maxAttempts int
	window      time.Duration
	now         func() time.Time
}

// NewRateLimiter builds a limiter with the given budget and window.
// now is the clock source; pass time.Now outside of tests.
func NewRateLimiter(maxAttempts int, window time.Duration, now func() time.Time) *RateLimiter {
	if now == nil {
		now = time.Now
	}
	return &RateLimiter{
		attempts:    make(map[string]*attempt),
		maxAttempts: maxAttempts,
		window:      window,
		now:         now,
	}
}

// Allow consumes one attempt slot for username. If the window has
// elapsed since the last attempt the counter resets first. A username
// at or over the budget is blocked without consuming a slot. The
// first-ever attempt always has an elapsed window, so it is allowed.
func (r *RateLimiter) Allow(username string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	a, ok := r.attempts[username]
	if !ok {
		a = &attempt{}
		r.attempts[username] = a
	}

	if now.Sub(a.lastAttempt) > r.window {
		a.count = 0
	}
	if a.count >= r.maxAttempts {
		return false
	}

	a.count++
	a.lastAttempt = now
	return true
}

// IsBlocked is the read-only variant of Allow: it consumes nothing and
// mutates nothing. An elapsed window reads as not blocked.
func (r *RateLimiter) IsBlocked(username string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.attempts[username]
	if !ok {
		return false
	}
	if r.now().Sub(a.lastAttempt) > r.window {
		return false
	}
	return a.count >= r.maxAttempts
}

// Clear removes the counter for one username. Called on successful
// login.
func (r *RateLimiter) Clear(username string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.attempts, username)
}

// Reset drops every counter. Called on logout.
func (r *RateLimiter) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts = make(map[string]*attempt)
}
