package formlearn

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/tidwall/gjson"
	"github.com/uzzalhcse/patterncore/internal/fetch"
	"github.com/uzzalhcse/patterncore/internal/registry"
	"github.com/uzzalhcse/patterncore/pkg/patternmodel"
)

// Learner implements C7's public submitForm contract: replay a learned
// form pattern directly over HTTP/WebSocket when one exists, falling back
// to driving a browser page and learning a new pattern from what it
// observes.
type Learner struct {
	fetcher fetch.Fetcher
	reg     *registry.Registry
	limiter *RateLimiter

	mu       sync.Mutex
	patterns map[string]*patternmodel.FormPattern
}

// New builds a Learner. reg may be nil for callers that only want direct
// replay against patterns supplied via LearnPatternForSelector.
func New(fetcher fetch.Fetcher, reg *registry.Registry, limiter *RateLimiter) *Learner {
	return &Learner{
		fetcher:  fetcher,
		reg:      reg,
		limiter:  limiter,
		patterns: make(map[string]*patternmodel.FormPattern),
	}
}

func formKey(urlStr, selector string) string { return urlStr + "\x00" + selector }

// LearnPatternForSelector registers fp for direct replay against the
// (urlStr, selector) key and, when a registry is configured, persists its
// LearnedPattern half through the normal registry path so match/transfer/
// failure tracking see it too.
func (l *Learner) LearnPatternForSelector(urlStr, selector string, fp *patternmodel.FormPattern) {
	l.mu.Lock()
	l.patterns[formKey(urlStr, selector)] = fp
	l.mu.Unlock()
	if l.reg != nil {
		l.reg.LearnPattern(&fp.LearnedPattern)
	}
}

func (l *Learner) lookup(urlStr, selector string) (*patternmodel.FormPattern, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if fp, ok := l.patterns[formKey(urlStr, selector)]; ok {
		return fp, true
	}
	fp, ok := l.patterns[formKey(urlStr, "")]
	return fp, ok
}

// SubmitForm is C7's public contract.
func (l *Learner) SubmitForm(ctx context.Context, data map[string]interface{}, handle FormHandle, opts Options) Result {
	start := time.Now()

	domain := domainOf(handle.URL)
	if l.limiter != nil && l.limiter.Blocked(domain, start) {
		rec, _ := l.limiter.Record(domain)
		return Result{Err: &patternmodel.RateLimited{Domain: domain, RetryAfter: rec.ResetAt.Sub(start)}, Duration: time.Since(start)}
	}

	if fp, ok := l.lookup(handle.URL, handle.Selector); ok {
		result := l.submitDirect(ctx, fp, data, opts)
		result.Duration = time.Since(start)
		if result.Success || opts.SkipBrowserFallback || result.OTPRequired {
			return result
		}
		// Direct submission didn't satisfy the success indicators; fall
		// through to the browser fallback below, per spec §4.7 step 1.
	}

	if opts.SkipBrowserFallback || handle.Page == nil {
		return Result{Success: false, Err: fmt.Errorf("formlearn: no pattern and no browser fallback available"), Duration: time.Since(start)}
	}

	result := l.submitViaBrowser(ctx, handle, data, opts)
	result.Duration = time.Since(start)
	return result
}

func (l *Learner) submitDirect(ctx context.Context, fp *patternmodel.FormPattern, data map[string]interface{}, opts Options) Result {
	if fp.Transport == patternmodel.TransportWebSocket {
		body, _, err := ApplyFieldMapping(fp.FieldMapping, data, patternmodel.EncodingJSON)
		if err != nil {
			return Result{Success: false, Err: err}
		}
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		if err := SubmitViaWebSocket(ctx, fp.SubmitURL, body, timeout); err != nil {
			return Result{Success: false, Err: err}
		}
		return Result{Success: true, Method: MethodAPI}
	}

	body, contentType, err := ApplyFieldMapping(fp.FieldMapping, data, wireEncoding(fp))
	if err != nil {
		return Result{Success: false, Err: err}
	}
	headers := transportHeaders(fp)
	if contentType != "" {
		headers["Content-Type"] = contentType
	}

	req := fetch.Request{Method: "POST", URL: fp.SubmitURL, Headers: headers, Body: body, Timeout: opts.Timeout}
	resp, err := l.fetcher.Do(ctx, req)
	if err != nil {
		return Result{Success: false, Err: err}
	}

	domain := domainOf(fp.SubmitURL)
	if l.limiter != nil {
		rec := l.limiter.Observe(domain, resp.StatusCode, resp.Headers, time.Now())
		if resp.StatusCode == 429 {
			return Result{Success: false, Err: &patternmodel.RateLimited{Domain: domain, RetryAfter: time.Duration(rec.RetryAfterSeconds) * time.Second}}
		}
	}

	if found, reason := DetectOTP(resp); found {
		if fp.OTP == nil {
			fp.OTP = BuildOTPPattern(fp.SubmitURL, "code", "POST", patternmodel.OTPKindOther, []string{reason})
		}
		if opts.OTPCallback == nil {
			return Result{Success: false, OTPRequired: true, OTPChallenge: fp.OTP, Err: &patternmodel.OTPRequired{Challenge: fp.OTP}}
		}
		code, err := opts.OTPCallback(ctx, fp.OTP)
		if err != nil {
			return Result{Success: false, OTPRequired: true, OTPChallenge: fp.OTP, Err: err}
		}
		otpResp, err := SubmitOTP(ctx, l.fetcher, fp.OTP, code)
		if err != nil {
			return Result{Success: false, Err: err}
		}
		resp = otpResp
	}

	if satisfiesSuccess(fp.SuccessIndicators, resp) {
		return Result{Success: true, Method: MethodAPI, ResponseURL: fp.SubmitURL, ResponseData: resp.Body}
	}
	return Result{Success: false, Method: MethodAPI, ResponseURL: fp.SubmitURL, ResponseData: resp.Body}
}

// submitViaBrowser drives handle.Page to fill and submit the form while
// capturing the resulting request/response and any WebSocket frames, then
// builds and stores a new FormPattern from what it observed, per spec
// §4.7 step 2.
func (l *Learner) submitViaBrowser(ctx context.Context, handle FormHandle, data map[string]interface{}, opts Options) Result {
	raw, err := handle.Page.Evaluate(ctx, DetectionScript(handle.Selector))
	if err != nil {
		return Result{Success: false, Err: fmt.Errorf("formlearn: detect form: %w", err)}
	}
	form, err := ParseDetectedForm(raw)
	if err != nil {
		return Result{Success: false, Err: err}
	}

	fields := make(map[string]string, len(form.Fields))
	for _, f := range form.Fields {
		if v, ok := data[f.Name]; ok {
			fields[f.Selector] = fmt.Sprint(v)
		}
	}

	if err := handle.Page.FillAndSubmit(ctx, fields, form.SubmitTrigger); err != nil {
		return Result{Success: false, Method: MethodBrowser, Err: err}
	}
	if err := handle.Page.WaitForNavigation(ctx); err != nil {
		return Result{Success: false, Method: MethodBrowser, Err: err}
	}

	capture, ok := drainOneMutation(ctx, handle.Page, captureTimeout(opts))
	if !ok {
		return Result{Success: false, Method: MethodBrowser, Err: fmt.Errorf("formlearn: no mutation request captured")}
	}

	frames := drainFrames(handle.Page)
	fieldNames := make([]string, 0, len(form.Fields))
	for _, f := range form.Fields {
		fieldNames = append(fieldNames, f.Name)
	}

	fp := buildFormPattern(handle.URL, handle.Selector, form, capture, frames, fieldNames)
	l.LearnPatternForSelector(handle.URL, handle.Selector, fp)

	return Result{
		Success:      capture.Response.StatusCode < 400,
		Method:       MethodBrowser,
		ResponseURL:  capture.Request.URL,
		ResponseData: capture.Response.Body,
		Learned:      true,
	}
}

// drainOneMutation waits for the mutation request triggered by the
// submission just made. WaitForNavigation returns near-instantly for
// forms submitted via fetch/XHR (REST, GraphQL, JSON-RPC) since no full
// page navigation occurs, so the request/response pair the requestfinished
// listener pushes onto page.Requests() can still be in flight — a
// non-blocking read would miss it far more often than not for exactly
// the dominant case this code path exists to learn. Block until it
// arrives, the caller's context ends, or timeout elapses.
func drainOneMutation(ctx context.Context, page BrowserPage, timeout time.Duration) (CapturedRequestResponse, bool) {
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case rr := <-page.Requests():
		return rr, true
	case <-ctx.Done():
		return CapturedRequestResponse{}, false
	case <-t.C:
		return CapturedRequestResponse{}, false
	}
}

// captureTimeout is how long drainOneMutation waits for the mutation
// request, defaulting the same way submitDirect defaults its own
// WebSocket timeout when the caller leaves Options.Timeout unset.
func captureTimeout(opts Options) time.Duration {
	if opts.Timeout > 0 {
		return opts.Timeout
	}
	return 10 * time.Second
}

func drainFrames(page BrowserPage) []CapturedFrame {
	var frames []CapturedFrame
	for {
		select {
		case f := <-page.CDPFrames():
			frames = append(frames, f)
		default:
			return frames
		}
	}
}

// wireEncoding is the encoding ApplyFieldMapping should actually use for
// fp: transports with a structured JSON envelope (mutation/params/etc.)
// always submit JSON regardless of what form.Enctype implied, mirroring
// transportHeaders' own override below.
func wireEncoding(fp *patternmodel.FormPattern) patternmodel.Encoding {
	switch fp.Transport {
	case patternmodel.TransportGraphQL, patternmodel.TransportJSONRPC, patternmodel.TransportServerAction:
		return patternmodel.EncodingJSON
	default:
		return fp.Encoding
	}
}

func transportHeaders(fp *patternmodel.FormPattern) map[string]string {
	switch fp.Transport {
	case patternmodel.TransportGraphQL, patternmodel.TransportJSONRPC, patternmodel.TransportServerAction:
		return map[string]string{"Content-Type": "application/json"}
	default:
		switch fp.Encoding {
		case patternmodel.EncodingJSON:
			return map[string]string{"Content-Type": "application/json"}
		case patternmodel.EncodingMultipart:
			return map[string]string{"Content-Type": "multipart/form-data"}
		default:
			return map[string]string{"Content-Type": "application/x-www-form-urlencoded"}
		}
	}
}

// satisfiesSuccess checks a pattern's SuccessIndicators against a
// response: declared status codes (if any) must match, and declared
// response fields (if any) must all be present.
func satisfiesSuccess(ind patternmodel.SuccessIndicators, resp *fetch.Response) bool {
	if len(ind.StatusCodes) > 0 {
		matched := false
		for _, code := range ind.StatusCodes {
			if resp.StatusCode == code {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	for _, field := range ind.ResponseFields {
		if !gjson.GetBytes(resp.Body, field).Exists() {
			return false
		}
	}
	return true
}

func domainOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.Hostname()
}
