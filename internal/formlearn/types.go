// Package formlearn implements C7: detecting a form's submit request from
// captured browser traffic, classifying its transport, and replaying it
// without a browser once a pattern has been learned.
package formlearn

import (
	"context"
	"time"

	"github.com/uzzalhcse/patterncore/pkg/patternmodel"
)

// Method is how a submission was ultimately carried out.
type Method string

const (
	MethodBrowser Method = "browser"
	MethodAPI     Method = "api"
)

// FormHandle identifies the form to submit and, optionally, a live browser
// page to fall back to when no pattern exists yet or direct submission
// fails its success check.
type FormHandle struct {
	URL      string
	Selector string
	Page     BrowserPage
}

// Options tunes a single SubmitForm call.
type Options struct {
	Timeout time.Duration

	// OTPCallback is invoked when a submission raises a verification
	// challenge; it returns the code to submit or an error to abandon.
	OTPCallback func(ctx context.Context, challenge *patternmodel.OTPPattern) (string, error)

	// SkipBrowserFallback disables step 2 of the control flow even when
	// no pattern exists or direct submission fails its success check.
	SkipBrowserFallback bool
}

// Result is submitForm's public contract return shape.
type Result struct {
	Success      bool
	Method       Method
	ResponseURL  string
	ResponseData []byte
	Duration     time.Duration
	Learned      bool
	Err          error
	OTPRequired  bool
	OTPChallenge *patternmodel.OTPPattern
}

// DetectedField is one input/select/textarea found on the form page.
type DetectedField struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Required bool   `json:"required"`
	Value    string `json:"value"`
	Selector string `json:"selector"`
}

// DetectedForm is the shape returned by evaluating the detection script
// inside the browser page.
type DetectedForm struct {
	Action        string                    `json:"action"`
	Method        string                    `json:"method"`
	Enctype       string                    `json:"enctype"`
	Fields        []DetectedField           `json:"fields"`
	FileFields    []patternmodel.FileField  `json:"fileFields"`
	CSRFFields    []DetectedField           `json:"csrfFields"`
	SubmitTrigger string                    `json:"submitTrigger"`
}

// CapturedRequest is one network request observed by the browser page
// during form submission.
type CapturedRequest struct {
	Method  string
	URL     string
	PageURL string // the form's page, used to qualify same-route heuristics
	Headers map[string]string
	Body    []byte
}

// CapturedResponse is the response paired with a CapturedRequest.
type CapturedResponse struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
}

// CapturedFrame is one WebSocket frame observed via a CDP session.
type CapturedFrame struct {
	URL       string
	Direction string // "sent" | "received"
	Payload   []byte
	EventName string // populated when the frame is Socket.IO shaped
}

// BrowserPage is the minimal surface C7 needs from a live browser page to
// drive form-fallback learning, per spec §6's browser-driver contract.
type BrowserPage interface {
	Navigate(ctx context.Context, url string) error
	Evaluate(ctx context.Context, expression string) (interface{}, error)
	FillAndSubmit(ctx context.Context, fields map[string]string, submitSelector string) error
	WaitForNavigation(ctx context.Context) error

	// Requests yields every request/response pair captured since the page
	// was attached, closed once the caller is done observing.
	Requests() <-chan CapturedRequestResponse

	// CDPFrames yields WebSocket frames sniffed via a CDP session.
	CDPFrames() <-chan CapturedFrame

	Close() error
}

// CapturedRequestResponse pairs a request with its eventual response.
type CapturedRequestResponse struct {
	Request  CapturedRequest
	Response CapturedResponse
}
