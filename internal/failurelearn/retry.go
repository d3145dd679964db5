package failurelearn

import (
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Waiter computes the wait duration before the next retry attempt for a
// given RetryStrategy, using cenkalti/backoff for the exponential case
// so the curve (base, multiplier, jitter, cap) comes from a maintained
// library rather than a hand-rolled formula. This file is the module's
// only user of that library.
type Waiter struct {
	MaxBackoff time.Duration
}

func NewWaiter(maxBackoff time.Duration) *Waiter {
	return &Waiter{MaxBackoff: maxBackoff}
}

// Wait returns how long to wait before retrying, given the strategy
// chosen by Classify, the attempt number (0-based), and any response
// header available (for wait_fixed's Retry-After lookup).
func (w *Waiter) Wait(strategy RetryStrategy, attempt int, header http.Header, now time.Time) time.Duration {
	switch strategy {
	case RetryNone:
		return 0
	case RetryImmediate:
		return 0
	case RetryWaitFixed:
		if header != nil {
			if d := RetryAfter(header, now, w.MaxBackoff); d > 0 {
				return d
			}
		}
		return 5 * time.Second
	case RetryAfterAuth:
		return 0 // caller must re-authenticate before retrying, not merely wait
	case RetryBackoffExponential:
		return w.exponential(attempt)
	default:
		return 0
	}
}

// exponential computes min(2^attempt, MaxBackoff) per spec §4.6, using
// cenkalti/backoff's curve with its randomization factor zeroed: the
// spec's formula is a literal, deterministic cap, not a jittered one, and
// the classifier's own ExponentialBackoff helper (classifier.go) already
// makes that determinism explicit for C7's rate-limit path, so this
// wait must agree with it rather than drift under the library's default
// 0.5 jitter.
func (w *Waiter) exponential(attempt int) time.Duration {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Second
	b.Multiplier = 2
	b.MaxInterval = w.MaxBackoff
	b.MaxElapsedTime = 0 // caller owns the retry-count ceiling, not the backoff policy
	b.RandomizationFactor = 0
	b.Reset() // restart from the InitialInterval set above, not the constructor's default

	var d time.Duration
	for i := 0; i <= attempt; i++ {
		d = b.NextBackOff()
	}
	if d > w.MaxBackoff {
		d = w.MaxBackoff
	}
	return d
}
