package formlearn

import (
	"context"

	"github.com/uzzalhcse/patterncore/internal/fetch"
)

// stubFetcher is a Fetcher test double that returns a fixed response (or
// error) and records the last request it was asked to make.
type stubFetcher struct {
	resp    *fetch.Response
	err     error
	lastReq fetch.Request
	calls   int
}

func (f *stubFetcher) Do(ctx context.Context, req fetch.Request) (*fetch.Response, error) {
	f.calls++
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}
