package formlearn

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/uzzalhcse/patterncore/internal/failurelearn"
	"github.com/uzzalhcse/patterncore/pkg/patternmodel"
)

// RateLimiter tracks, per domain, both a proactive local throttle (so the
// module doesn't hammer a domain it has no header evidence about yet) and
// the reactive block-until-reset state derived from response headers,
// per spec §4.7. The reactive half reuses failurelearn's header parsing
// and backoff curve rather than recomputing them here.
type RateLimiter struct {
	mu              sync.Mutex
	records         map[string]*patternmodel.RateLimitRecord
	limiters        map[string]*rate.Limiter
	defaultRate     float64
	defaultBurst    int
	maxBackoff      time.Duration
}

func NewRateLimiter(defaultRatePerSecond float64, defaultBurst int, maxBackoff time.Duration) *RateLimiter {
	if defaultRatePerSecond <= 0 {
		defaultRatePerSecond = 1
	}
	if defaultBurst <= 0 {
		defaultBurst = 1
	}
	if maxBackoff <= 0 {
		maxBackoff = 60 * time.Second
	}
	return &RateLimiter{
		records:      make(map[string]*patternmodel.RateLimitRecord),
		limiters:     make(map[string]*rate.Limiter),
		defaultRate:  defaultRatePerSecond,
		defaultBurst: defaultBurst,
		maxBackoff:   maxBackoff,
	}
}

// Blocked reports whether domain is currently inside a reset window
// reported by a prior response.
func (rl *RateLimiter) Blocked(domain string, now time.Time) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return rl.records[domain].Blocked(now)
}

// Wait reserves one token from the local token bucket for domain and
// returns the reservation without blocking; the caller waits out its
// Delay. It does not account for a reported reset window, since that
// decision belongs to the caller (fail fast vs. wait) per spec §4.7.
func (rl *RateLimiter) Wait(domain string) *rate.Reservation {
	rl.mu.Lock()
	limiter, ok := rl.limiters[domain]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(rl.defaultRate), rl.defaultBurst)
		rl.limiters[domain] = limiter
	}
	rl.mu.Unlock()
	return limiter.Reserve()
}

// Observe records rate-limit state from a response's headers, per
// spec §4.7: Retry-After, X-RateLimit-Limit/Remaining/Reset.
func (rl *RateLimiter) Observe(domain string, status int, headers http.Header, now time.Time) *patternmodel.RateLimitRecord {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rec, ok := rl.records[domain]
	if !ok {
		rec = &patternmodel.RateLimitRecord{Domain: domain}
		rl.records[domain] = rec
	}

	if limit := headers.Get("X-RateLimit-Limit"); limit != "" {
		if n, err := strconv.Atoi(limit); err == nil {
			rec.Limit = n
		}
	}
	if remaining := headers.Get("X-RateLimit-Remaining"); remaining != "" {
		if n, err := strconv.Atoi(remaining); err == nil {
			rec.Remaining = n
		}
	}

	if status == http.StatusTooManyRequests {
		retryAfter := failurelearn.RetryAfter(headers, now, rl.maxBackoff)
		if retryAfter <= 0 {
			retryAfter = failurelearn.ExponentialBackoff(rec.RateLimitCount, rl.maxBackoff)
		}
		rec.ResetAt = now.Add(retryAfter)
		rec.RetryAfterSeconds = int(retryAfter.Seconds())
		rec.LastRateLimitTime = now
		rec.RateLimitCount++
	}

	return rec
}

// Record returns the current rate-limit record for domain, if any.
func (rl *RateLimiter) Record(domain string) (*patternmodel.RateLimitRecord, bool) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rec, ok := rl.records[domain]
	return rec, ok
}
