package formlearn

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uzzalhcse/patterncore/internal/fetch"
	"github.com/uzzalhcse/patterncore/pkg/patternmodel"
)

func restPattern(submitURL string) *patternmodel.FormPattern {
	return &patternmodel.FormPattern{
		LearnedPattern: patternmodel.LearnedPattern{
			ID:             "form:example.com/signup",
			TemplateType:   patternmodel.TemplateRESTResource,
			URLPatterns:    []string{"https://example.com/signup"},
			Method:         "POST",
			ResponseFormat: patternmodel.ResponseJSON,
		},
		SubmitURL:    submitURL,
		Transport:    patternmodel.TransportREST,
		Encoding:     patternmodel.EncodingJSON,
		FieldMapping: map[string]string{"email": "email"},
		SuccessIndicators: patternmodel.SuccessIndicators{
			StatusCodes: []int{200, 201},
		},
	}
}

func TestSubmitFormDirectSuccess(t *testing.T) {
	fetcher := &stubFetcher{resp: &fetch.Response{StatusCode: 201, Headers: http.Header{}, Body: []byte(`{"id":1}`)}}
	l := New(fetcher, nil, NewRateLimiter(100, 10, 60*time.Second))
	l.LearnPatternForSelector("https://example.com/signup", "", restPattern("https://example.com/api/signup"))

	result := l.SubmitForm(context.Background(), map[string]interface{}{"email": "a@b.com"}, FormHandle{URL: "https://example.com/signup"}, Options{SkipBrowserFallback: true})

	require.NoError(t, result.Err)
	assert.True(t, result.Success)
	assert.Equal(t, MethodAPI, result.Method)
	assert.Contains(t, string(fetcher.lastReq.Body), `"email":"a@b.com"`)
}

func TestSubmitFormDirectFailureWithoutBrowserFallback(t *testing.T) {
	fetcher := &stubFetcher{resp: &fetch.Response{StatusCode: 500, Headers: http.Header{}, Body: []byte(`{}`)}}
	l := New(fetcher, nil, NewRateLimiter(100, 10, 60*time.Second))
	l.LearnPatternForSelector("https://example.com/signup", "", restPattern("https://example.com/api/signup"))

	result := l.SubmitForm(context.Background(), map[string]interface{}{"email": "a@b.com"}, FormHandle{URL: "https://example.com/signup"}, Options{SkipBrowserFallback: true})

	assert.False(t, result.Success)
	assert.Equal(t, MethodAPI, result.Method)
}

func TestSubmitFormRateLimitedReturns429Error(t *testing.T) {
	fetcher := &stubFetcher{resp: &fetch.Response{StatusCode: 429, Headers: http.Header{"Retry-After": []string{"15"}}, Body: []byte(`{}`)}}
	l := New(fetcher, nil, NewRateLimiter(100, 10, 60*time.Second))
	l.LearnPatternForSelector("https://example.com/signup", "", restPattern("https://example.com/api/signup"))

	result := l.SubmitForm(context.Background(), map[string]interface{}{"email": "a@b.com"}, FormHandle{URL: "https://example.com/signup"}, Options{SkipBrowserFallback: true})

	require.Error(t, result.Err)
	var rl *patternmodel.RateLimited
	require.ErrorAs(t, result.Err, &rl)
	assert.Equal(t, 15*time.Second, rl.RetryAfter)
}

func TestSubmitFormBlockedByPriorRateLimitSkipsRequest(t *testing.T) {
	fetcher := &stubFetcher{resp: &fetch.Response{StatusCode: 200, Headers: http.Header{}, Body: []byte(`{}`)}}
	limiter := NewRateLimiter(100, 10, 60*time.Second)
	limiter.Observe("example.com", 429, http.Header{"Retry-After": []string{"30"}}, time.Now())

	l := New(fetcher, nil, limiter)
	l.LearnPatternForSelector("https://example.com/signup", "", restPattern("https://example.com/api/signup"))

	result := l.SubmitForm(context.Background(), map[string]interface{}{"email": "a@b.com"}, FormHandle{URL: "https://example.com/signup"}, Options{SkipBrowserFallback: true})

	require.Error(t, result.Err)
	assert.Equal(t, 0, fetcher.calls)
}

func TestSubmitFormOTPChallengeWithoutCallbackReturnsChallenge(t *testing.T) {
	fetcher := &stubFetcher{resp: &fetch.Response{StatusCode: 200, Headers: http.Header{}, Body: []byte(`{"requiresOTP":true}`)}}
	l := New(fetcher, nil, NewRateLimiter(100, 10, 60*time.Second))
	l.LearnPatternForSelector("https://example.com/signup", "", restPattern("https://example.com/api/signup"))

	result := l.SubmitForm(context.Background(), map[string]interface{}{"email": "a@b.com"}, FormHandle{URL: "https://example.com/signup"}, Options{SkipBrowserFallback: true})

	assert.True(t, result.OTPRequired)
	require.NotNil(t, result.OTPChallenge)
}

func TestSubmitFormOTPChallengeWithCallbackSubmitsCode(t *testing.T) {
	first := &fetch.Response{StatusCode: 200, Headers: http.Header{}, Body: []byte(`{"requiresOTP":true}`)}
	fetcher := &sequencedFetcher{responses: []*fetch.Response{
		first,
		{StatusCode: 200, Headers: http.Header{}, Body: []byte(`{"ok":true}`)},
	}}
	l := New(fetcher, nil, NewRateLimiter(100, 10, 60*time.Second))
	l.LearnPatternForSelector("https://example.com/signup", "", restPattern("https://example.com/api/signup"))

	callbackCalled := false
	opts := Options{
		SkipBrowserFallback: true,
		OTPCallback: func(ctx context.Context, challenge *patternmodel.OTPPattern) (string, error) {
			callbackCalled = true
			return "123456", nil
		},
	}

	result := l.SubmitForm(context.Background(), map[string]interface{}{"email": "a@b.com"}, FormHandle{URL: "https://example.com/signup"}, opts)

	assert.True(t, callbackCalled)
	assert.False(t, result.OTPRequired)
	assert.True(t, result.Success)
}

func TestSubmitFormNoPatternNoBrowserFails(t *testing.T) {
	l := New(&stubFetcher{}, nil, NewRateLimiter(100, 10, 60*time.Second))
	result := l.SubmitForm(context.Background(), map[string]interface{}{}, FormHandle{URL: "https://example.com/signup"}, Options{})
	assert.False(t, result.Success)
	assert.Error(t, result.Err)
}

// sequencedFetcher returns its canned responses in order, one per call.
type sequencedFetcher struct {
	responses []*fetch.Response
	i         int
}

func (f *sequencedFetcher) Do(ctx context.Context, req fetch.Request) (*fetch.Response, error) {
	if f.i >= len(f.responses) {
		return f.responses[len(f.responses)-1], nil
	}
	r := f.responses[f.i]
	f.i++
	return r, nil
}
