package authflow

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/oauth2"
)

// CredentialType names the kind of credential a domain has configured,
// used both to classify readiness and to suggest what a user callback
// should collect.
type CredentialType string

const (
	CredentialTypePassword CredentialType = "password"
	CredentialTypeAPIKey   CredentialType = "api_key"
	CredentialTypeOAuth2   CredentialType = "oauth2"
	CredentialTypeCookie   CredentialType = "cookie"
)

// StoredCredential is one credential on file for a domain. Token is
// populated for oauth2-shaped credentials; for bare bearer/JWT tokens,
// Token.AccessToken carries the raw string and Expiry may be zero, in
// which case expiry is read from the JWT's own exp claim.
type StoredCredential struct {
	Type      CredentialType
	Token     *oauth2.Token
	Validated bool
}

// IsExpired reports whether cred's token has passed its expiry, per the
// best evidence available: the oauth2.Token's own Expiry field, falling
// back to an unverified inspection of the JWT "exp" claim when the token
// looks like a JWT and carries no structured expiry. This is a read-only
// peek at the claim, not an authentication check — the token's signature
// is never verified here, matching that C8 only needs to know "stale or
// not", not "trustworthy or not".
func (c StoredCredential) IsExpired(now time.Time) bool {
	if c.Token == nil {
		return true
	}
	if !c.Token.Expiry.IsZero() {
		return now.After(c.Token.Expiry)
	}
	if exp, ok := jwtExpiry(c.Token.AccessToken); ok {
		return now.After(exp)
	}
	return false
}

func jwtExpiry(raw string) (time.Time, bool) {
	if strings.Count(raw, ".") != 2 {
		return time.Time{}, false
	}
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(raw, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// CredentialStatus is the aggregate readiness of a domain's credentials.
type CredentialStatus string

const (
	StatusConfigured          CredentialStatus = "configured"
	StatusPartiallyConfigured CredentialStatus = "partially_configured"
	StatusUnconfigured        CredentialStatus = "unconfigured"
)

// ClassifyCredentials implements spec §4.8's resolution-order step 2:
// configured requires at least one validated, non-expired credential;
// partially_configured means at least one exists but none both.
func ClassifyCredentials(creds []StoredCredential, now time.Time) CredentialStatus {
	if len(creds) == 0 {
		return StatusUnconfigured
	}
	for _, c := range creds {
		if c.Validated && !c.IsExpired(now) {
			return StatusConfigured
		}
	}
	return StatusPartiallyConfigured
}

// SuggestedCredentialTypes maps a challenge type to the credential kinds
// a user callback should be prompted for.
func SuggestedCredentialTypes(challengeType string) []CredentialType {
	switch challengeType {
	case "http_401":
		return []CredentialType{CredentialTypePassword, CredentialTypeAPIKey}
	case "http_403", "session_expired":
		return []CredentialType{CredentialTypeCookie, CredentialTypeOAuth2}
	case "login_redirect":
		return []CredentialType{CredentialTypePassword}
	case "captcha_required":
		return nil
	default:
		return []CredentialType{CredentialTypePassword}
	}
}
