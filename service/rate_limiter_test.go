package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_AllowsUpToLimit(t *testing.T) {
	limiter := NewRateLimiter(10*time.Second, 3)
	now := time.Now()

	for n := 0; n < 3; n++ {
		assert.False(t, limiter.IsLimited(1, now), "hit %d should not be limited", n)
		limiter.Record(1, now)
	}
	assert.True(t, limiter.IsLimited(1, now))
}

func TestRateLimiter_WindowExpiry(t *testing.T) {
	limiter := NewRateLimiter(10*time.Second, 2)
	now := time.Now()

	limiter.Record(1, now)
	limiter.Record(1, now.Add(time.Second))
	assert.True(t, limiter.IsLimited(1, now.Add(2*time.Second)))

	// First hit falls out of the window
	assert.False(t, limiter.IsLimited(1, now.Add(10*time.Second+time.Millisecond)))
}

func TestRateLimiter_ResetTime(t *testing.T) {
	limiter := NewRateLimiter(10*time.Second, 2)
	now := time.Now()

	assert.Equal(t, time.Duration(0), limiter.ResetTime(1, now))

	limiter.Record(1, now)
	limiter.Record(1, now.Add(2*time.Second))

	// Limited until the first hit expires
	remaining := limiter.ResetTime(1, now.Add(3*time.Second))
	assert.Equal(t, 7*time.Second, remaining)

	assert.Equal(t, time.Duration(0), limiter.ResetTime(1, now.Add(11*time.Second)))
}

func TestRateLimiter_UsersAreIndependent(t *testing.T) {
	limiter := NewRateLimiter(10*time.Second, 1)
	now := time.Now()

	limiter.Record(1, now)
	assert.True(t, limiter.IsLimited(1, now))
	assert.False(t, limiter.IsLimited(2, now))
}
