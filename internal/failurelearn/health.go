package failurelearn

import (
	"sync"
	"time"

	"github.com/sony/gobreaker"
)

// HealthTracker reports whether a learned pattern is currently healthy
// enough to keep using, backed by one circuit breaker per pattern ID. A
// breaker trips to Open after consecutive failures and the pattern is
// reported unhealthy until the breaker's reset timeout lets a half-open
// probe through.
type HealthTracker struct {
	mu              sync.Mutex
	breakers        map[string]*gobreaker.CircuitBreaker
	maxFailures     uint32
	openTimeout     time.Duration
	halfOpenSuccess uint32
}

func NewHealthTracker(maxFailures uint32, openTimeout time.Duration) *HealthTracker {
	return &HealthTracker{
		breakers:        make(map[string]*gobreaker.CircuitBreaker),
		maxFailures:     maxFailures,
		openTimeout:     openTimeout,
		halfOpenSuccess: 1,
	}
}

func (h *HealthTracker) breakerFor(patternID string) *gobreaker.CircuitBreaker {
	h.mu.Lock()
	defer h.mu.Unlock()

	if b, ok := h.breakers[patternID]; ok {
		return b
	}

	b := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        patternID,
		MaxRequests: h.halfOpenSuccess,
		Interval:    0,
		Timeout:     h.openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= h.maxFailures
		},
	})
	h.breakers[patternID] = b
	return b
}

// RecordOutcome feeds one attempt's success/failure into the breaker for
// patternID.
func (h *HealthTracker) RecordOutcome(patternID string, success bool) {
	b := h.breakerFor(patternID)
	_, _ = b.Execute(func() (interface{}, error) {
		if success {
			return nil, nil
		}
		return nil, errHealthFailure
	})
}

// IsHealthy reports false when the breaker for patternID is open (the
// "pattern health" signal surfaced by spec §4.6).
func (h *HealthTracker) IsHealthy(patternID string) bool {
	b := h.breakerFor(patternID)
	return b.State() != gobreaker.StateOpen
}

var errHealthFailure = healthFailureError{}

type healthFailureError struct{}

func (healthFailureError) Error() string { return "recorded failure" }
