package formlearn

import (
	"strings"
	"time"

	"github.com/uzzalhcse/patterncore/pkg/patternmodel"
)

// buildFormPattern assembles a FormPattern from one browser-observed
// submission: the detected form shape, the captured mutation request,
// any WebSocket frames seen in parallel, and the field names it carries.
func buildFormPattern(pageURL, selector string, form *DetectedForm, capture CapturedRequestResponse, frames []CapturedFrame, fieldNames []string) *patternmodel.FormPattern {
	if scored, ok := ScoreFrames(frames, fieldNames); ok && scored.Score > 0 {
		return buildWebSocketPattern(pageURL, selector, form, scored)
	}

	capture.Request.PageURL = pageURL
	det := DetectTransport(capture.Request)
	mapping := BuildFieldMapping(form.Fields, det, capture.Request.Body)

	encoding := EncodingFromForm(form)

	seen := newObservedValues()
	for _, f := range form.Fields {
		seen.record(f.Name, f.Value)
	}
	var dynamic []patternmodel.DynamicField
	for _, f := range form.Fields {
		if df, ok := ClassifyDynamicField(f, seen); ok {
			dynamic = append(dynamic, df)
		}
	}

	var csrfExtractor *patternmodel.Extractor
	if len(form.CSRFFields) > 0 {
		csrfExtractor = &patternmodel.Extractor{
			Name:   form.CSRFFields[0].Name,
			Source: patternmodel.SourcePath,
		}
	}

	now := time.Now()
	return &patternmodel.FormPattern{
		LearnedPattern: patternmodel.LearnedPattern{
			ID:               patternmodel.ProvenanceForm + pageURL + "#" + selector,
			TemplateType:     templateForTransport(det.Transport),
			URLPatterns:      []string{pageURL},
			Method:           capture.Request.Method,
			ResponseFormat:   patternmodel.ResponseJSON,
			CreatedAt:        now,
			UpdatedAt:        now,
		},
		SubmitURL:     capture.Request.URL,
		Transport:     det.Transport,
		Encoding:      encoding,
		FieldMapping:  mapping,
		FileFields:    form.FileFields,
		CSRFExtractor: csrfExtractor,
		DynamicFields: dynamic,
		SuccessIndicators: patternmodel.SuccessIndicators{
			StatusCodes: []int{capture.Response.StatusCode},
		},
	}
}

func buildWebSocketPattern(pageURL, selector string, form *DetectedForm, scored ScoredFrame) *patternmodel.FormPattern {
	mapping := make(map[string]string, len(form.Fields))
	for _, f := range form.Fields {
		mapping[f.Name] = f.Name
	}
	now := time.Now()
	return &patternmodel.FormPattern{
		LearnedPattern: patternmodel.LearnedPattern{
			ID:               patternmodel.ProvenanceWebSocket + pageURL + "#" + selector,
			TemplateType:     patternmodel.TemplateWebSocket,
			URLPatterns:      []string{pageURL},
			Method:           "WS",
			ResponseFormat:   patternmodel.ResponseJSON,
			CreatedAt:        now,
			UpdatedAt:        now,
		},
		SubmitURL:    scored.Frame.URL,
		Transport:    patternmodel.TransportWebSocket,
		Encoding:     patternmodel.EncodingJSON,
		FieldMapping: mapping,
	}
}

func templateForTransport(t patternmodel.Transport) patternmodel.TemplateType {
	switch t {
	case patternmodel.TransportGraphQL:
		return patternmodel.TemplateGraphQL
	case patternmodel.TransportJSONRPC:
		return patternmodel.TemplateJSONRPC
	case patternmodel.TransportServerAction:
		return patternmodel.TemplateServerAction
	default:
		return patternmodel.TemplateRESTResource
	}
}

// EncodingFromForm derives the body encoding a detected form submits
// with: multipart wins whenever a file field is present, otherwise the
// form's own enctype, defaulting to URL-encoded.
func EncodingFromForm(form *DetectedForm) patternmodel.Encoding {
	if len(form.FileFields) > 0 {
		return patternmodel.EncodingMultipart
	}
	switch {
	case strings.Contains(form.Enctype, "json"):
		return patternmodel.EncodingJSON
	case strings.Contains(form.Enctype, "multipart"):
		return patternmodel.EncodingMultipart
	default:
		return patternmodel.EncodingURLEncoded
	}
}
