package patternmodel

import (
	"errors"
	"fmt"
	"time"
)

// ErrPatternNotFound is returned by lookups that miss; callers generally
// treat this as an empty result rather than propagating it further.
var ErrPatternNotFound = errors.New("pattern not found")

// ErrPersistenceFailed wraps a failed temp-file write or rename in C1.
var ErrPersistenceFailed = errors.New("persistence failed")

// ErrCancellationRequested is declared for context cancellation at a
// suspension point; no function in this module returns it.
var ErrCancellationRequested = errors.New("operation cancelled")

// TransferRejected is returned by C4 when similarity falls below
// threshold, or the target domain is already indexed.
type TransferRejected struct {
	SimilarityScore float64
	Reason          string
}

func (e *TransferRejected) Error() string {
	return fmt.Sprintf("transfer rejected: %s (similarity=%.3f)", e.Reason, e.SimilarityScore)
}

// RateLimited is returned by C7 when a submission must wait.
type RateLimited struct {
	Domain     string
	RetryAfter time.Duration
}

func (e *RateLimited) Error() string {
	return fmt.Sprintf("rate limited on %s, retry after %s", e.Domain, e.RetryAfter)
}

// OTPRequired is returned by C7 when a verification challenge interrupts
// a submission.
type OTPRequired struct {
	Challenge *OTPPattern
}

func (e *OTPRequired) Error() string {
	return fmt.Sprintf("otp required via %s", e.Challenge.VerificationURL)
}

// AuthChallenge is returned/reported by C8 when a response looks like an
// authentication wall.
type AuthChallenge struct {
	Type string // http_401 | http_403 | login_redirect | session_expired | auth_message | captcha_required
}

func (e *AuthChallenge) Error() string {
	return fmt.Sprintf("auth challenge: %s", e.Type)
}
