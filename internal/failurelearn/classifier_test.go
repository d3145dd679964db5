package failurelearn

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name     string
		outcome  Outcome
		category Category
		retry    bool
		strategy RetryStrategy
	}{
		{"unauthorized", Outcome{StatusCode: 401}, CategoryAuthRequired, true, RetryAfterAuth},
		{"forbidden", Outcome{StatusCode: 403}, CategoryAuthRequired, true, RetryAfterAuth},
		{"rate limited", Outcome{StatusCode: 429}, CategoryRateLimited, true, RetryWaitFixed},
		{"not found", Outcome{StatusCode: 404}, CategoryNotFound, false, RetryNone},
		{"server error", Outcome{StatusCode: 503}, CategoryServerError, true, RetryBackoffExponential},
		{"timeout message", Outcome{StatusCode: 0, ErrorMessage: "context deadline exceeded"}, CategoryTimeout, true, RetryBackoffExponential},
		{"network error", Outcome{StatusCode: 0, ErrorMessage: "dial tcp: connection refused"}, CategoryNetwork, true, RetryBackoffExponential},
		{"validation", Outcome{StatusCode: 422}, CategoryValidation, false, RetryNone},
		{"unknown", Outcome{StatusCode: 0}, CategoryUnknown, true, RetryImmediate},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Classify(tc.outcome)
			assert.Equal(t, tc.category, got.Category)
			assert.Equal(t, tc.retry, got.ShouldRetry)
			assert.Equal(t, tc.strategy, got.RetryStrategy)
		})
	}
}

func TestExponentialBackoff(t *testing.T) {
	cap := 30 * time.Second
	assert.Equal(t, 1*time.Second, ExponentialBackoff(0, cap))
	assert.Equal(t, 2*time.Second, ExponentialBackoff(1, cap))
	assert.Equal(t, 4*time.Second, ExponentialBackoff(2, cap))
	assert.Equal(t, cap, ExponentialBackoff(10, cap))
}

func TestRetryAfterSeconds(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	h := http.Header{"Retry-After": []string{"120"}}
	assert.Equal(t, 120*time.Second, RetryAfter(h, now, 5*time.Minute))
}

func TestRetryAfterCapped(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	h := http.Header{"Retry-After": []string{"9999"}}
	assert.Equal(t, time.Minute, RetryAfter(h, now, time.Minute))
}

func TestRetryAfterFallsBackToRateLimitReset(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	h := http.Header{"X-RateLimit-Reset": []string{"1767225660"}} // now + 60s
	d := RetryAfter(h, now, 5*time.Minute)
	assert.InDelta(t, 60, d.Seconds(), 1)
}
