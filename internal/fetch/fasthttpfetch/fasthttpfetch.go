// Package fasthttpfetch provides the default fetch.Fetcher adapter
// backed by github.com/valyala/fasthttp, for callers that don't bring
// their own cookie-aware HTTP client.
package fasthttpfetch

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/uzzalhcse/patterncore/internal/fetch"
)

const defaultTimeout = 30 * time.Second

// Adapter implements fetch.Fetcher using a shared fasthttp.Client.
type Adapter struct {
	client         *fasthttp.Client
	defaultTimeout time.Duration
	userAgent      string
}

// New builds an Adapter. userAgent is sent on every request that does
// not already set one; an empty string leaves fasthttp's default.
func New(userAgent string) *Adapter {
	return &Adapter{
		client: &fasthttp.Client{
			MaxConnsPerHost:           512,
			MaxIdleConnDuration:       90 * time.Second,
			NoDefaultUserAgentHeader:  userAgent != "",
		},
		defaultTimeout: defaultTimeout,
		userAgent:      userAgent,
	}
}

// Do issues req and normalizes the result into a fetch.Response.
func (a *Adapter) Do(ctx context.Context, req fetch.Request) (*fetch.Response, error) {
	fastReq := fasthttp.AcquireRequest()
	fastResp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(fastReq)
	defer fasthttp.ReleaseResponse(fastResp)

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	fastReq.Header.SetMethod(method)
	fastReq.SetRequestURI(req.URL)

	if a.userAgent != "" {
		fastReq.Header.Set("User-Agent", a.userAgent)
	}
	for k, v := range req.Headers {
		fastReq.Header.Set(k, v)
	}
	if len(req.Body) > 0 {
		fastReq.SetBody(req.Body)
	}

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = a.defaultTimeout
	}
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}

	if err := a.client.DoTimeout(fastReq, fastResp, timeout); err != nil {
		return nil, fmt.Errorf("fasthttpfetch: request failed: %w", err)
	}

	headers := make(http.Header)
	fastResp.Header.VisitAll(func(key, value []byte) {
		headers.Add(string(key), string(value))
	})

	body := make([]byte, len(fastResp.Body()))
	copy(body, fastResp.Body())

	return &fetch.Response{
		StatusCode: fastResp.StatusCode(),
		StatusText: http.StatusText(fastResp.StatusCode()),
		Headers:    headers,
		Body:       body,
	}, nil
}

// Close releases idle connections held by the underlying client.
func (a *Adapter) Close() {
	a.client.CloseIdleConnections()
}
