package sources

import (
	"context"
	"encoding/json"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/uzzalhcse/patterncore/internal/fetch"
	"github.com/uzzalhcse/patterncore/pkg/patternmodel"
)

// rfc8288LinkRe splits a Link header into its <url>; rel="..." segments.
var rfc8288LinkRe = regexp.MustCompile(`<([^>]+)>\s*;\s*rel="?([\w-]+)"?`)

// LinksSource discovers API endpoints advertised via RFC 8288 Link
// headers on the domain root, or a HATEOAS `_links` object in its JSON
// body, per spec §4.5.
type LinksSource struct {
	Fetcher fetch.Fetcher
}

func (s *LinksSource) Name() patternmodel.DiscoverySource { return patternmodel.SourceLinks }

func (s *LinksSource) Discover(ctx context.Context, domain string) (*patternmodel.SourceResult, error) {
	resp, err := s.Fetcher.Do(ctx, fetch.Request{Method: http.MethodGet, URL: "https://" + domain + "/"})
	if err != nil || resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return notFound(s.Name()), nil
	}

	found := make(map[string]string) // rel -> absolute URL

	for _, header := range resp.Headers.Values("Link") {
		for _, m := range rfc8288LinkRe.FindAllStringSubmatch(header, -1) {
			found[m[2]] = m[1]
		}
	}

	var body struct {
		Links map[string]struct {
			Href string `json:"href"`
		} `json:"_links"`
	}
	if json.Unmarshal(resp.Body, &body) == nil {
		for rel, link := range body.Links {
			if link.Href != "" {
				found[rel] = link.Href
			}
		}
	}

	if len(found) == 0 {
		return notFound(s.Name()), nil
	}

	var patterns []*patternmodel.LearnedPattern
	for rel, href := range found {
		if !strings.Contains(href, "://") {
			continue
		}
		patterns = append(patterns, &patternmodel.LearnedPattern{
			ID:               "links:" + domain + ":" + rel,
			TemplateType:     patternmodel.TemplateRESTResource,
			URLPatterns:      []string{`^` + regexp.QuoteMeta(href) + `$`},
			EndpointTemplate: "{url}",
			ResponseFormat:   patternmodel.ResponseJSON,
			Metrics: patternmodel.ExtendedMetrics{
				Metrics: patternmodel.Metrics{
					Confidence: patternmodel.SourceConfidence[patternmodel.SourceLinks],
					Domains:    []string{domain},
				},
			},
		})
	}

	if len(patterns) == 0 {
		return notFound(s.Name()), nil
	}

	return &patternmodel.SourceResult{
		Source:   s.Name(),
		Found:    true,
		Patterns: patterns,
		Metadata: map[string]string{"relCount": strconv.Itoa(len(found))},
	}, nil
}
