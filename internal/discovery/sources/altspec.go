package sources

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	postman "github.com/rbretecher/go-postman-collection"

	"github.com/uzzalhcse/patterncore/internal/fetch"
	"github.com/uzzalhcse/patterncore/pkg/patternmodel"
)

var altSpecPaths = []string{"/postman_collection.json", "/api-docs/postman.json", "/docs/postman_collection.json"}

// AltSpecSource discovers endpoints from a Postman collection, used as
// the practical substitute for RAML, API Blueprint, and WADL documents
// per spec §4.5 (those formats are rare on the open web; Postman
// collections are the collection format actually published alongside
// most API docs).
type AltSpecSource struct {
	Fetcher fetch.Fetcher
}

func (s *AltSpecSource) Name() patternmodel.DiscoverySource { return patternmodel.SourceAltSpec }

func (s *AltSpecSource) Discover(ctx context.Context, domain string) (*patternmodel.SourceResult, error) {
	resp, sourceURL, ok := fetchFirst(ctx, s.Fetcher, domain, altSpecPaths)
	if !ok {
		return notFound(s.Name()), nil
	}

	collection, err := postman.ParseCollection(strings.NewReader(string(resp.Body)))
	if err != nil {
		return notFound(s.Name()), nil
	}

	var patterns []*patternmodel.LearnedPattern
	collectAltSpecItems(collection.Items, domain, &patterns)

	if len(patterns) == 0 {
		return notFound(s.Name()), nil
	}

	return &patternmodel.SourceResult{
		Source:   s.Name(),
		Found:    true,
		Patterns: patterns,
		Metadata: map[string]string{"specUrl": sourceURL, "collectionName": collection.Info.Name},
	}, nil
}

func collectAltSpecItems(items []*postman.Items, domain string, out *[]*patternmodel.LearnedPattern) {
	for _, item := range items {
		if item.IsGroup() {
			collectAltSpecItems(item.Items, domain, out)
			continue
		}
		if item.Request == nil || item.Request.URL == nil {
			continue
		}

		raw := item.Request.URL.Raw
		u, err := url.Parse(raw)
		if err != nil || u.Host == "" {
			continue
		}

		*out = append(*out, &patternmodel.LearnedPattern{
			ID:               "alt-spec:" + domain + ":" + item.Name,
			TemplateType:     patternmodel.TemplateRESTResource,
			URLPatterns:      []string{`^https?://` + regexp.QuoteMeta(u.Host) + regexp.QuoteMeta(u.Path) + `/?$`},
			EndpointTemplate: "{url}",
			Method:           string(item.Request.Method),
			ResponseFormat:   patternmodel.ResponseJSON,
			Metrics: patternmodel.ExtendedMetrics{
				Metrics: patternmodel.Metrics{
					Confidence: patternmodel.SourceConfidence[patternmodel.SourceAltSpec],
					Domains:    []string{domain},
				},
			},
		})
	}
}
