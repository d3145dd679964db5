// Package authflow implements C8: recognizing an authentication
// challenge from a response's status, redirect target, body, or an
// expired session token, and resolving it via a stored login workflow,
// stored credentials, or a user callback.
package authflow

import (
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/uzzalhcse/patterncore/internal/fetch"
	"github.com/uzzalhcse/patterncore/pkg/patternmodel"
)

const authMessageScanLimit = 10 * 1024

var loginURLRe = regexp.MustCompile(`(?i)/(login|signin|sign-in|auth)(/|$|\?)`)

var redirectParamNames = []string{"redirect", "return", "returnto", "return_to", "next"}

// Detect classifies resp into one of the challenge types named in
// spec §4.8, or reports no challenge at all. sessionToken is the
// bearer/JWT token backing the current session, if any; its unverified
// "exp" claim (not its signature — the core never owns the signing key)
// is the signal for session_expired. An empty or non-JWT sessionToken
// simply skips that check, deferring to the other signals.
func Detect(resp *fetch.Response, now time.Time, sessionToken string, authMessages []string) (*patternmodel.AuthChallenge, bool) {
	if resp == nil {
		return nil, false
	}

	switch resp.StatusCode {
	case 401:
		return &patternmodel.AuthChallenge{Type: "http_401"}, true
	case 403:
		if looksLikeCaptcha(resp) {
			return &patternmodel.AuthChallenge{Type: "captcha_required"}, true
		}
		return &patternmodel.AuthChallenge{Type: "http_403"}, true
	}

	if resp.StatusCode >= 300 && resp.StatusCode < 400 {
		if isLoginRedirect(resp.Headers.Get("Location")) {
			return &patternmodel.AuthChallenge{Type: "login_redirect"}, true
		}
	}

	if sessionToken != "" {
		if exp, ok := jwtExpiry(sessionToken); ok && now.After(exp) {
			return &patternmodel.AuthChallenge{Type: "session_expired"}, true
		}
	}

	if containsAuthMessage(resp.Body, authMessages) {
		return &patternmodel.AuthChallenge{Type: "auth_message"}, true
	}

	if looksLikeCaptcha(resp) {
		return &patternmodel.AuthChallenge{Type: "captcha_required"}, true
	}

	return nil, false
}

func isLoginRedirect(location string) bool {
	if location == "" {
		return false
	}
	if loginURLRe.MatchString(location) {
		return true
	}
	u, err := url.Parse(location)
	if err != nil {
		return false
	}
	q := u.Query()
	for _, name := range redirectParamNames {
		if q.Get(name) != "" {
			return true
		}
	}
	return false
}

func containsAuthMessage(body []byte, phrases []string) bool {
	scan := body
	if len(scan) > authMessageScanLimit {
		scan = scan[:authMessageScanLimit]
	}
	lower := strings.ToLower(string(scan))
	for _, p := range phrases {
		if strings.Contains(lower, strings.ToLower(p)) {
			return true
		}
	}
	return false
}

func looksLikeCaptcha(resp *fetch.Response) bool {
	lower := strings.ToLower(string(resp.Body))
	return strings.Contains(lower, "captcha") || strings.Contains(lower, "recaptcha") || strings.Contains(lower, "hcaptcha")
}
