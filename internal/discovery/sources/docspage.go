package sources

import (
	"context"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/uzzalhcse/patterncore/internal/fetch"
	"github.com/uzzalhcse/patterncore/pkg/patternmodel"
)

var docsPagePaths = []string{"/docs", "/docs/api", "/api/docs", "/developers", "/developer"}

// endpointLineRe matches a line of developer-docs prose naming a
// method+path, e.g. "GET /v1/users/{id}".
var endpointLineRe = regexp.MustCompile(`\b(GET|POST|PUT|PATCH|DELETE)\s+(/[\w/{}:.-]*)`)

// DocsPageSource discovers endpoints described in prose on an HTML
// developer-docs page, per spec §4.5. It is a coarse heuristic: lower
// confidence than any structured source.
type DocsPageSource struct {
	Fetcher fetch.Fetcher
}

func (s *DocsPageSource) Name() patternmodel.DiscoverySource { return patternmodel.SourceDocsPage }

func (s *DocsPageSource) Discover(ctx context.Context, domain string) (*patternmodel.SourceResult, error) {
	resp, sourceURL, ok := fetchFirst(ctx, s.Fetcher, domain, docsPagePaths)
	if !ok {
		return notFound(s.Name()), nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(resp.Body)))
	if err != nil {
		return notFound(s.Name()), nil
	}

	seen := make(map[string]struct{})
	var patterns []*patternmodel.LearnedPattern

	doc.Find("code, pre, h1, h2, h3").Each(func(_ int, sel *goquery.Selection) {
		text := sel.Text()
		for _, m := range endpointLineRe.FindAllStringSubmatch(text, -1) {
			method, path := m[1], m[2]
			key := method + " " + path
			if _, dup := seen[key]; dup {
				return
			}
			seen[key] = struct{}{}
			patterns = append(patterns, patternForDocsEndpoint(domain, method, path))
		}
	})

	if len(patterns) == 0 {
		return notFound(s.Name()), nil
	}

	return &patternmodel.SourceResult{
		Source:   s.Name(),
		Found:    true,
		Patterns: patterns,
		Metadata: map[string]string{"docsUrl": sourceURL},
	}, nil
}

func patternForDocsEndpoint(domain, method, path string) *patternmodel.LearnedPattern {
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		if strings.HasPrefix(seg, "{") || strings.HasPrefix(seg, ":") {
			segments[i] = `[^/]+`
		} else {
			segments[i] = regexp.QuoteMeta(seg)
		}
	}
	pathRegex := strings.Join(segments, "/")

	return &patternmodel.LearnedPattern{
		ID:               "docs-page:" + domain + ":" + method + ":" + path,
		TemplateType:     patternmodel.TemplateRESTResource,
		URLPatterns:      []string{`^https?://` + regexp.QuoteMeta(domain) + pathRegex + `/?$`},
		EndpointTemplate: "{url}",
		Method:           method,
		ResponseFormat:   patternmodel.ResponseJSON,
		Metrics: patternmodel.ExtendedMetrics{
			Metrics: patternmodel.Metrics{
				Confidence: patternmodel.SourceConfidence[patternmodel.SourceDocsPage],
				Domains:    []string{domain},
			},
		},
	}
}
