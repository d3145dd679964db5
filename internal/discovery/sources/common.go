// Package sources implements the concrete discovery.Source
// implementations C5 fans a domain out to: openapi, graphql, asyncapi,
// alt-spec (Postman collections, substituting for RAML/Blueprint/WADL),
// links (RFC 8288 + HATEOAS), docs-page, and robots-sitemap.
package sources

import (
	"context"
	"net/http"

	"github.com/uzzalhcse/patterncore/internal/fetch"
	"github.com/uzzalhcse/patterncore/pkg/patternmodel"
)

// fetchFirst tries each candidate path against domain in order and
// returns the first 2xx response, or false if none succeeded.
func fetchFirst(ctx context.Context, fetcher fetch.Fetcher, domain string, paths []string) (*fetch.Response, string, bool) {
	for _, path := range paths {
		url := "https://" + domain + path
		resp, err := fetcher.Do(ctx, fetch.Request{Method: http.MethodGet, URL: url})
		if err != nil {
			continue
		}
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return resp, url, true
		}
	}
	return nil, "", false
}

func notFound(source patternmodel.DiscoverySource) *patternmodel.SourceResult {
	return &patternmodel.SourceResult{Source: source, Found: false}
}
