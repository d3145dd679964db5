package formlearn

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/uzzalhcse/patterncore/internal/fetch"
)

func TestDetectOTPByResponseField(t *testing.T) {
	resp := &fetch.Response{StatusCode: 200, Body: []byte(`{"requiresOTP":true}`)}
	found, reason := DetectOTP(resp)
	assert.True(t, found)
	assert.Contains(t, reason, "field")
}

func TestDetectOTPByMessage(t *testing.T) {
	resp := &fetch.Response{StatusCode: 200, Body: []byte(`{"message":"Please enter the verification code sent to your phone"}`)}
	found, _ := DetectOTP(resp)
	assert.True(t, found)
}

func TestDetectOTPByStatusCode(t *testing.T) {
	for _, code := range []int{202, 401, 403, 428} {
		resp := &fetch.Response{StatusCode: code, Body: []byte(`{}`)}
		found, _ := DetectOTP(resp)
		assert.True(t, found, "status %d should be treated as a challenge", code)
	}
}

func TestDetectOTPNotTriggeredOnPlainSuccess(t *testing.T) {
	resp := &fetch.Response{StatusCode: 200, Body: []byte(`{"id":123,"status":"created"}`)}
	found, _ := DetectOTP(resp)
	assert.False(t, found)
}

func TestBuildOTPPattern(t *testing.T) {
	p := BuildOTPPattern("https://example.com/verify", "code", "POST", "sms", []string{"requiresOTP"})
	assert.Equal(t, "https://example.com/verify", p.VerificationURL)
	assert.Equal(t, "code", p.CodeFieldName)
}

func TestSubmitOTPPostsCodeField(t *testing.T) {
	fetcher := &stubFetcher{resp: &fetch.Response{StatusCode: 200, Headers: http.Header{}, Body: []byte(`{"ok":true}`)}}
	challenge := BuildOTPPattern("https://example.com/verify", "otpCode", "POST", "sms", nil)

	resp, err := SubmitOTP(context.Background(), fetcher, challenge, "123456")
	assert.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Contains(t, string(fetcher.lastReq.Body), `"otpCode":"123456"`)
}
