package service

import (
	"sync"
	"time"
)

// RateLimiter throttles per-user command frequency over a trailing fixed
// window. It knows nothing about balances or privileges: callers that want
// an admin bypass simply skip the check.
type RateLimiter struct {
	window time.Duration
	limit  int

	mu   sync.Mutex
	hits map[int64][]time.Time
}

// NewRateLimiter creates a limiter allowing limit commands per window
func NewRateLimiter(window time.Duration, limit int) *RateLimiter {
	return &RateLimiter{
		window: window,
		limit:  limit,
		hits:   make(map[int64][]time.Time),
	}
}

// Record registers a command invocation for the user
func (r *RateLimiter) Record(userID int64, now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hits[userID] = append(r.pruneLocked(userID, now), now)
}

// IsLimited reports whether the user has exhausted the window
func (r *RateLimiter) IsLimited(userID int64, now time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pruneLocked(userID, now)) >= r.limit
}

// ResetTime returns how long until the user's next command is allowed.
// Zero means the user is not currently limited.
func (r *RateLimiter) ResetTime(userID int64, now time.Time) time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	recent := r.pruneLocked(userID, now)
	if len(recent) < r.limit {
		return 0
	}

	// The hit that must expire before capacity frees up
	blocking := recent[len(recent)-r.limit]
	return blocking.Add(r.window).Sub(now)
}

// pruneLocked drops hits older than the window and stores the survivors
// back into the map. Caller holds r.mu.
func (r *RateLimiter) pruneLocked(userID int64, now time.Time) []time.Time {
	cutoff := now.Add(-r.window)
	recent := r.hits[userID][:0:len(r.hits[userID])]
	for _, t := range r.hits[userID] {
		if t.After(cutoff) {
			recent = append(recent, t)
		}
	}
	if len(recent) == 0 {
		delete(r.hits, userID)
		return nil
	}
	r.hits[userID] = recent
	return recent
}
