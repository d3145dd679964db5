package sources

import (
	"context"
	"net/http"
	"regexp"

	"github.com/uzzalhcse/patterncore/internal/fetch"
	"github.com/uzzalhcse/patterncore/pkg/patternmodel"
)

// introspectionQuery is the minimal probe: any GraphQL endpoint answers
// with a 200 and a JSON body carrying either "data" or "errors".
const introspectionQuery = `{"query":"{__schema{queryType{name}}}"}`

var graphQLPaths = []string{"/graphql", "/api/graphql", "/v1/graphql"}

// GraphQLSource discovers a GraphQL endpoint by probing well-known
// paths with an introspection query. Per spec §4.5, it always produces
// exactly one pattern: template-type query-api, method POST, JSON
// content-type, empty extractors, content mapping rooted at "data".
type GraphQLSource struct {
	Fetcher fetch.Fetcher
}

func (s *GraphQLSource) Name() patternmodel.DiscoverySource { return patternmodel.SourceGraphQL }

func (s *GraphQLSource) Discover(ctx context.Context, domain string) (*patternmodel.SourceResult, error) {
	for _, path := range graphQLPaths {
		url := "https://" + domain + path
		resp, err := s.Fetcher.Do(ctx, fetch.Request{
			Method:  http.MethodPost,
			URL:     url,
			Headers: map[string]string{"Content-Type": "application/json"},
			Body:    []byte(introspectionQuery),
		})
		if err != nil || resp.StatusCode < 200 || resp.StatusCode >= 300 {
			continue
		}
		if !looksLikeGraphQLResponse(resp.Body) {
			continue
		}

		pattern := &patternmodel.LearnedPattern{
			ID:               patternmodel.ProvenanceGraphQL + domain,
			TemplateType:     patternmodel.TemplateQueryAPI,
			URLPatterns:      []string{`^https?://` + regexp.QuoteMeta(domain) + regexp.QuoteMeta(path) + `/?$`},
			EndpointTemplate: "{url}",
			Method:           http.MethodPost,
			Headers:          map[string]string{"Content-Type": "application/json"},
			ResponseFormat:   patternmodel.ResponseJSON,
			ContentMapping:   patternmodel.ContentMapping{Metadata: map[string]string{"root": "data"}},
			Metrics: patternmodel.ExtendedMetrics{
				Metrics: patternmodel.Metrics{
					Confidence: patternmodel.SourceConfidence[patternmodel.SourceGraphQL],
					Domains:    []string{domain},
				},
			},
		}

		return &patternmodel.SourceResult{
			Source:   s.Name(),
			Found:    true,
			Patterns: []*patternmodel.LearnedPattern{pattern},
			Metadata: map[string]string{"endpoint": url},
		}, nil
	}

	return notFound(s.Name()), nil
}

func looksLikeGraphQLResponse(body []byte) bool {
	return regexp.MustCompile(`"(data|errors)"\s*:`).Match(body)
}
