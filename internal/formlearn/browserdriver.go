package formlearn

import (
	"context"
	"fmt"
	"sync"

	"github.com/playwright-community/playwright-go"
)

// PlaywrightPage adapts an already-launched playwright.Page to
// BrowserPage. The module never starts a browser itself, per spec §6 —
// the caller launches playwright and hands this adapter a live page, the
// same division of responsibility as the teacher's PlaywrightPage, which
// wraps a page acquired from a browser pool it does not own at this layer.
type PlaywrightPage struct {
	page playwright.Page

	mu       sync.Mutex
	requests chan CapturedRequestResponse
	frames   chan CapturedFrame
	pending  map[playwright.Request]struct{}
}

// NewPlaywrightPage wires request/response listeners on page and returns
// an adapter ready to drive form-fallback learning.
func NewPlaywrightPage(page playwright.Page) (*PlaywrightPage, error) {
	p := &PlaywrightPage{
		page:     page,
		requests: make(chan CapturedRequestResponse, 64),
		frames:   make(chan CapturedFrame, 256),
		pending:  make(map[playwright.Request]struct{}),
	}

	page.On("requestfinished", func(req playwright.Request) {
		p.handleRequestFinished(req)
	})

	page.OnWebSocket(func(ws playwright.WebSocket) {
		ws.OnFrameSent(func(payload string) {
			p.emitFrame(ws.URL(), "sent", payload)
		})
		ws.OnFrameReceived(func(payload string) {
			p.emitFrame(ws.URL(), "received", payload)
		})
	})

	return p, nil
}

func (p *PlaywrightPage) handleRequestFinished(req playwright.Request) {
	method := req.Method()
	if method != "POST" && method != "PUT" && method != "PATCH" && method != "DELETE" {
		return
	}
	resp, err := req.Response()
	if err != nil || resp == nil {
		return
	}

	headers := req.Headers()
	body, _ := req.PostData()
	respHeaders := resp.Headers()

	respBody, _ := resp.Body()

	select {
	case p.requests <- CapturedRequestResponse{
		Request: CapturedRequest{
			Method:  method,
			URL:     req.URL(),
			Headers: headers,
			Body:    []byte(body),
		},
		Response: CapturedResponse{
			StatusCode: resp.Status(),
			Headers:    respHeaders,
			Body:       respBody,
		},
	}:
	default:
	}
}

func (p *PlaywrightPage) emitFrame(url, direction, payload string) {
	select {
	case p.frames <- CapturedFrame{URL: url, Direction: direction, Payload: []byte(payload)}:
	default:
	}
}

func (p *PlaywrightPage) Navigate(ctx context.Context, url string) error {
	_, err := p.page.Goto(url)
	return err
}

func (p *PlaywrightPage) Evaluate(ctx context.Context, expression string) (interface{}, error) {
	return p.page.Evaluate(expression)
}

func (p *PlaywrightPage) FillAndSubmit(ctx context.Context, fields map[string]string, submitSelector string) error {
	for selector, value := range fields {
		if err := p.page.Fill(selector, value); err != nil {
			return fmt.Errorf("formlearn: fill %s: %w", selector, err)
		}
	}
	if submitSelector == "" {
		return fmt.Errorf("formlearn: no submit trigger detected")
	}
	return p.page.Click(submitSelector)
}

func (p *PlaywrightPage) WaitForNavigation(ctx context.Context) error {
	return p.page.WaitForLoadState()
}

func (p *PlaywrightPage) Requests() <-chan CapturedRequestResponse { return p.requests }

func (p *PlaywrightPage) CDPFrames() <-chan CapturedFrame { return p.frames }

func (p *PlaywrightPage) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.page.Close()
}
