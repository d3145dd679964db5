package sources

import (
	"context"
	"regexp"
	"strings"

	"github.com/pb33f/libopenapi"
	v3 "github.com/pb33f/libopenapi/datamodel/high/v3"

	"github.com/uzzalhcse/patterncore/internal/fetch"
	"github.com/uzzalhcse/patterncore/pkg/patternmodel"
)

var pathParamRe = regexp.MustCompile(`\{([^}]+)\}`)

// candidate locations for an OpenAPI/Swagger document, checked in order.
var openAPIPaths = []string{
	"/openapi.json",
	"/swagger.json",
	"/.well-known/openapi.json",
	"/api/openapi.json",
	"/v1/openapi.json",
}

// OpenAPISource discovers REST endpoints from an OpenAPI 3.x document,
// per spec §4.5. Only the v3 model is built, so a Swagger 2.0 document
// found at one of these paths is reported as not found.
type OpenAPISource struct {
	Fetcher fetch.Fetcher
}

func (s *OpenAPISource) Name() patternmodel.DiscoverySource { return patternmodel.SourceOpenAPI }

func (s *OpenAPISource) Discover(ctx context.Context, domain string) (*patternmodel.SourceResult, error) {
	resp, sourceURL, ok := fetchFirst(ctx, s.Fetcher, domain, openAPIPaths)
	if !ok {
		return notFound(s.Name()), nil
	}

	document, err := libopenapi.NewDocument(resp.Body)
	if err != nil {
		return notFound(s.Name()), nil
	}
	model, errs := document.BuildV3Model()
	if errs != nil || model == nil {
		return notFound(s.Name()), nil
	}

	var patterns []*patternmodel.LearnedPattern
	for pair := model.Model.Paths.PathItems.First(); pair != nil; pair = pair.Next() {
		path := pair.Key()
		item := pair.Value()

		ops := map[string]*v3.Operation{
			"GET": item.Get, "POST": item.Post, "PUT": item.Put,
			"DELETE": item.Delete, "PATCH": item.Patch,
		}
		for method, op := range ops {
			if op == nil {
				continue
			}
			patterns = append(patterns, patternForPath(domain, path, method))
		}
	}

	if len(patterns) == 0 {
		return notFound(s.Name()), nil
	}

	return &patternmodel.SourceResult{
		Source:   s.Name(),
		Found:    true,
		Patterns: patterns,
		Metadata: map[string]string{"specUrl": sourceURL, "title": model.Model.Info.Title, "version": model.Model.Info.Version},
	}, nil
}

// patternForPath builds a LearnedPattern whose urlPatterns regex matches
// a concrete URL shaped by path, capturing each {param} segment as a
// named path extractor.
func patternForPath(domain, path, method string) *patternmodel.LearnedPattern {
	names := paramNames(path)

	segments := strings.Split(path, "/")
	for i, seg := range segments {
		if pathParamRe.MatchString(seg) {
			segments[i] = `([^/]+)`
		} else {
			segments[i] = regexp.QuoteMeta(seg)
		}
	}
	pathRegex := `^` + strings.Join(segments, "/") + `/?$`

	var extractors []patternmodel.Extractor
	for i, name := range names {
		extractors = append(extractors, patternmodel.Extractor{
			Name:         name,
			Source:       patternmodel.SourcePath,
			Regex:        pathRegex,
			CaptureGroup: i + 1,
		})
	}

	id := patternmodel.ProvenanceOpenAPI + domain + ":" + method + ":" + path

	return &patternmodel.LearnedPattern{
		ID:               id,
		TemplateType:     patternmodel.TemplateRESTResource,
		URLPatterns:      []string{`^https?://` + regexp.QuoteMeta(domain) + pathRegex[1:]},
		EndpointTemplate: "{url}",
		Extractors:       extractors,
		Method:           method,
		ResponseFormat:   patternmodel.ResponseJSON,
		Metrics: patternmodel.ExtendedMetrics{
			Metrics: patternmodel.Metrics{
				Confidence: patternmodel.SourceConfidence[patternmodel.SourceOpenAPI],
				Domains:    []string{domain},
			},
		},
	}
}

// paramNames returns the {name} placeholders in path, in order.
func paramNames(path string) []string {
	matches := pathParamRe.FindAllStringSubmatch(path, -1)
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, m[1])
	}
	return names
}
