package authflow

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/uzzalhcse/patterncore/pkg/patternmodel"
)

// LoginWorkflow identifies a recorded workflow that can sign in to a
// domain, for the caller to execute.
type LoginWorkflow struct {
	Domain string
	Name   string
	Tags   []string
}

// WorkflowFinder looks up a login workflow for a domain, by tag or by a
// name that looks like a login flow (e.g. "example.com-login").
type WorkflowFinder interface {
	FindForDomain(domain string) (*LoginWorkflow, bool)
}

var loginWorkflowNameRe = regexp.MustCompile(`(?i)(^|[-_/])login($|[-_/])`)

// MatchesLoginWorkflow reports whether a workflow's tags or name mark it
// as a login flow, the rule a WorkflowFinder implementation should apply.
func MatchesLoginWorkflow(wf LoginWorkflow) bool {
	for _, tag := range wf.Tags {
		if strings.EqualFold(tag, "login") || strings.EqualFold(tag, "auth") {
			return true
		}
	}
	return loginWorkflowNameRe.MatchString(wf.Name)
}

// CredentialStore returns the credentials on file for a domain.
type CredentialStore interface {
	CredentialsForDomain(domain string) []StoredCredential
}

// UserCallback asks a human or upstream system to supply credentials of
// the suggested types for a challenge. Returning a non-nil error means
// the callback declined or timed out.
type UserCallback func(ctx context.Context, challenge *patternmodel.AuthChallenge, suggestedTypes []CredentialType) error

// ResolutionOutcome is what a Resolver decided to do about a challenge.
type ResolutionOutcome string

const (
	// ResolutionWorkflow means a login workflow was found; the caller
	// must execute it and retry.
	ResolutionWorkflow ResolutionOutcome = "workflow"
	// ResolutionProceed means a validated, non-expired credential is on
	// file; the caller can retry immediately.
	ResolutionProceed ResolutionOutcome = "proceed"
	// ResolutionRetryRecommended means credentials exist but none are
	// both validated and unexpired; a retry may still succeed.
	ResolutionRetryRecommended ResolutionOutcome = "retry_recommended"
	// ResolutionUserCallback means a callback was invoked and accepted
	// the challenge; the caller should retry after it completes.
	ResolutionUserCallback ResolutionOutcome = "user_callback"
	// ResolutionSkipped means no resolution method succeeded.
	ResolutionSkipped ResolutionOutcome = "skipped"
)

// Resolution is the result of resolving an auth challenge.
type Resolution struct {
	Outcome        ResolutionOutcome
	Workflow       *LoginWorkflow
	SuggestedTypes []CredentialType
	Err            error
}

// Resolver implements the spec §4.8 resolution order: a login workflow
// first, then stored credentials, then a user callback. Any field left
// nil is treated as "this method is unavailable" and skipped.
type Resolver struct {
	Workflows   WorkflowFinder
	Credentials CredentialStore
	Callback    UserCallback
	Now         func() time.Time
}

// Resolve walks the resolution order for domain's challenge.
func (r *Resolver) Resolve(ctx context.Context, domain string, challenge *patternmodel.AuthChallenge) Resolution {
	if r.Workflows != nil {
		if wf, ok := r.Workflows.FindForDomain(domain); ok && wf != nil {
			return Resolution{Outcome: ResolutionWorkflow, Workflow: wf}
		}
	}

	if r.Credentials != nil {
		now := time.Now
		if r.Now != nil {
			now = r.Now
		}
		creds := r.Credentials.CredentialsForDomain(domain)
		switch ClassifyCredentials(creds, now()) {
		case StatusConfigured:
			return Resolution{Outcome: ResolutionProceed}
		case StatusPartiallyConfigured:
			return Resolution{Outcome: ResolutionRetryRecommended}
		}
	}

	if r.Callback != nil {
		suggested := SuggestedCredentialTypes(challenge.Type)
		if err := r.Callback(ctx, challenge, suggested); err == nil {
			return Resolution{Outcome: ResolutionUserCallback, SuggestedTypes: suggested}
		} else {
			return Resolution{Outcome: ResolutionSkipped, Err: err}
		}
	}

	return Resolution{Outcome: ResolutionSkipped}
}
