package formlearn

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiterObserveSetsResetOn429(t *testing.T) {
	rl := NewRateLimiter(1, 1, 60*time.Second)
	now := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)

	headers := http.Header{"Retry-After": []string{"30"}}
	rec := rl.Observe("example.com", 429, headers, now)

	assert.Equal(t, now.Add(30*time.Second), rec.ResetAt)
	assert.Equal(t, 1, rec.RateLimitCount)
}

func TestRateLimiterBlockedReflectsResetWindow(t *testing.T) {
	rl := NewRateLimiter(1, 1, 60*time.Second)
	now := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)
	rl.Observe("example.com", 429, http.Header{"Retry-After": []string{"30"}}, now)

	assert.True(t, rl.Blocked("example.com", now.Add(5*time.Second)))
	assert.False(t, rl.Blocked("example.com", now.Add(31*time.Second)))
}

func TestRateLimiterFallsBackToExponentialBackoffWithoutHeaders(t *testing.T) {
	rl := NewRateLimiter(1, 1, 60*time.Second)
	now := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)

	rec := rl.Observe("example.com", 429, http.Header{}, now)
	require.True(t, rec.ResetAt.After(now))
}

func TestRateLimiterWaitReturnsReservation(t *testing.T) {
	rl := NewRateLimiter(100, 5, 60*time.Second)
	res := rl.Wait("example.com")
	assert.True(t, res.OK())
}

func TestRateLimiterNonRateLimitStatusDoesNotSetReset(t *testing.T) {
	rl := NewRateLimiter(1, 1, 60*time.Second)
	now := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)

	rec := rl.Observe("example.com", 200, http.Header{"X-RateLimit-Remaining": []string{"42"}}, now)
	assert.Equal(t, 42, rec.Remaining)
	assert.True(t, rec.ResetAt.IsZero())
}
