package authflow

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uzzalhcse/patterncore/internal/fetch"
)

var fixedNow = time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)

func TestDetectHTTP401(t *testing.T) {
	resp := &fetch.Response{StatusCode: 401, Headers: http.Header{}, Body: []byte(`{}`)}
	challenge, ok := Detect(resp, fixedNow, "", nil)
	require.True(t, ok)
	assert.Equal(t, "http_401", challenge.Type)
}

func TestDetectHTTP403WithCaptchaBody(t *testing.T) {
	resp := &fetch.Response{StatusCode: 403, Headers: http.Header{}, Body: []byte(`<div class="g-recaptcha"></div>`)}
	challenge, ok := Detect(resp, fixedNow, "", nil)
	require.True(t, ok)
	assert.Equal(t, "captcha_required", challenge.Type)
}

func TestDetectHTTP403Plain(t *testing.T) {
	resp := &fetch.Response{StatusCode: 403, Headers: http.Header{}, Body: []byte(`forbidden`)}
	challenge, ok := Detect(resp, fixedNow, "", nil)
	require.True(t, ok)
	assert.Equal(t, "http_403", challenge.Type)
}

func TestDetectLoginRedirectByPath(t *testing.T) {
	h := http.Header{}
	h.Set("Location", "https://example.com/login?next=/dashboard")
	resp := &fetch.Response{StatusCode: 302, Headers: h, Body: []byte(``)}
	challenge, ok := Detect(resp, fixedNow, "", nil)
	require.True(t, ok)
	assert.Equal(t, "login_redirect", challenge.Type)
}

func TestDetectLoginRedirectByQueryParam(t *testing.T) {
	h := http.Header{}
	h.Set("Location", "https://example.com/auth-gateway?return_to=/account")
	resp := &fetch.Response{StatusCode: 303, Headers: h, Body: []byte(``)}
	challenge, ok := Detect(resp, fixedNow, "", nil)
	require.True(t, ok)
	assert.Equal(t, "login_redirect", challenge.Type)
}

func TestDetectRedirectWithoutLoginSignalIsNotChallenge(t *testing.T) {
	h := http.Header{}
	h.Set("Location", "https://example.com/dashboard")
	resp := &fetch.Response{StatusCode: 302, Headers: h, Body: []byte(``)}
	_, ok := Detect(resp, fixedNow, "", nil)
	assert.False(t, ok)
}

func TestDetectSessionExpiredFromJWTClaim(t *testing.T) {
	resp := &fetch.Response{StatusCode: 200, Headers: http.Header{}, Body: []byte(`{}`)}
	expired := signedJWT(t, fixedNow.Add(-time.Minute))

	challenge, ok := Detect(resp, fixedNow, expired, nil)
	require.True(t, ok)
	assert.Equal(t, "session_expired", challenge.Type)
}

func TestDetectValidSessionTokenIsNotExpired(t *testing.T) {
	resp := &fetch.Response{StatusCode: 200, Headers: http.Header{}, Body: []byte(`{"ok":true}`)}
	valid := signedJWT(t, fixedNow.Add(time.Hour))

	_, ok := Detect(resp, fixedNow, valid, nil)
	assert.False(t, ok)
}

func TestDetectEmptySessionTokenSkipsExpiryCheck(t *testing.T) {
	resp := &fetch.Response{StatusCode: 200, Headers: http.Header{}, Body: []byte(`{"ok":true}`)}
	_, ok := Detect(resp, fixedNow, "", nil)
	assert.False(t, ok)
}

func TestDetectAuthMessage(t *testing.T) {
	resp := &fetch.Response{StatusCode: 200, Headers: http.Header{}, Body: []byte(`Please enter your verification code to continue`)}
	challenge, ok := Detect(resp, fixedNow, "", []string{"verification code"})
	require.True(t, ok)
	assert.Equal(t, "auth_message", challenge.Type)
}

func TestDetectAuthMessageCaseInsensitive(t *testing.T) {
	resp := &fetch.Response{StatusCode: 200, Headers: http.Header{}, Body: []byte(`SESSION TIMED OUT, please sign in again`)}
	challenge, ok := Detect(resp, fixedNow, "", []string{"session timed out"})
	require.True(t, ok)
	assert.Equal(t, "auth_message", challenge.Type)
}

func TestDetectCaptchaOnSuccessStatus(t *testing.T) {
	resp := &fetch.Response{StatusCode: 200, Headers: http.Header{}, Body: []byte(`<div id="hcaptcha"></div>`)}
	challenge, ok := Detect(resp, fixedNow, "", nil)
	require.True(t, ok)
	assert.Equal(t, "captcha_required", challenge.Type)
}

func TestDetectNoChallenge(t *testing.T) {
	resp := &fetch.Response{StatusCode: 200, Headers: http.Header{}, Body: []byte(`{"ok":true}`)}
	_, ok := Detect(resp, fixedNow, "", nil)
	assert.False(t, ok)
}

func TestDetectNilResponse(t *testing.T) {
	_, ok := Detect(nil, fixedNow, "", nil)
	assert.False(t, ok)
}
