package authflow

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/uzzalhcse/patterncore/pkg/patternmodel"
	"golang.org/x/oauth2"
)

type stubWorkflowFinder struct {
	wf *LoginWorkflow
	ok bool
}

func (s stubWorkflowFinder) FindForDomain(domain string) (*LoginWorkflow, bool) {
	return s.wf, s.ok
}

type stubCredentialStore struct {
	creds []StoredCredential
}

func (s stubCredentialStore) CredentialsForDomain(domain string) []StoredCredential {
	return s.creds
}

func TestMatchesLoginWorkflowByTag(t *testing.T) {
	assert.True(t, MatchesLoginWorkflow(LoginWorkflow{Name: "signin-flow", Tags: []string{"auth"}}))
}

func TestMatchesLoginWorkflowByName(t *testing.T) {
	assert.True(t, MatchesLoginWorkflow(LoginWorkflow{Name: "example.com-login"}))
	assert.False(t, MatchesLoginWorkflow(LoginWorkflow{Name: "checkout-flow"}))
}

func TestResolverPrefersWorkflow(t *testing.T) {
	r := &Resolver{
		Workflows: stubWorkflowFinder{wf: &LoginWorkflow{Domain: "example.com", Name: "example.com-login"}, ok: true},
		Credentials: stubCredentialStore{creds: []StoredCredential{
			{Validated: true, Token: &oauth2.Token{AccessToken: "x", Expiry: time.Now().Add(time.Hour)}},
		}},
	}

	res := r.Resolve(context.Background(), "example.com", &patternmodel.AuthChallenge{Type: "http_401"})
	assert.Equal(t, ResolutionWorkflow, res.Outcome)
	assert.NotNil(t, res.Workflow)
}

func TestResolverProceedsWithConfiguredCredentials(t *testing.T) {
	now := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)
	r := &Resolver{
		Credentials: stubCredentialStore{creds: []StoredCredential{
			{Validated: true, Token: &oauth2.Token{AccessToken: "x", Expiry: now.Add(time.Hour)}},
		}},
		Now: func() time.Time { return now },
	}

	res := r.Resolve(context.Background(), "example.com", &patternmodel.AuthChallenge{Type: "http_401"})
	assert.Equal(t, ResolutionProceed, res.Outcome)
}

func TestResolverRetryRecommendedWithUnvalidatedCredentials(t *testing.T) {
	now := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)
	r := &Resolver{
		Credentials: stubCredentialStore{creds: []StoredCredential{
			{Validated: false, Token: &oauth2.Token{AccessToken: "x", Expiry: now.Add(time.Hour)}},
		}},
		Now: func() time.Time { return now },
	}

	res := r.Resolve(context.Background(), "example.com", &patternmodel.AuthChallenge{Type: "http_401"})
	assert.Equal(t, ResolutionRetryRecommended, res.Outcome)
}

func TestResolverFallsBackToUserCallback(t *testing.T) {
	called := false
	r := &Resolver{
		Callback: func(ctx context.Context, challenge *patternmodel.AuthChallenge, suggested []CredentialType) error {
			called = true
			assert.Contains(t, suggested, CredentialTypePassword)
			return nil
		},
	}

	res := r.Resolve(context.Background(), "example.com", &patternmodel.AuthChallenge{Type: "http_401"})
	assert.True(t, called)
	assert.Equal(t, ResolutionUserCallback, res.Outcome)
}

func TestResolverSkippedWhenCallbackDeclines(t *testing.T) {
	r := &Resolver{
		Callback: func(ctx context.Context, challenge *patternmodel.AuthChallenge, suggested []CredentialType) error {
			return errors.New("user declined")
		},
	}

	res := r.Resolve(context.Background(), "example.com", &patternmodel.AuthChallenge{Type: "http_401"})
	assert.Equal(t, ResolutionSkipped, res.Outcome)
	assert.Error(t, res.Err)
}

func TestResolverSkippedWhenNothingConfigured(t *testing.T) {
	r := &Resolver{}
	res := r.Resolve(context.Background(), "example.com", &patternmodel.AuthChallenge{Type: "http_401"})
	assert.Equal(t, ResolutionSkipped, res.Outcome)
}
