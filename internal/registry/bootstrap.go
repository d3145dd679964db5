package registry

import (
	"time"

	"github.com/uzzalhcse/patterncore/pkg/patternmodel"
)

// bootstrapPatterns returns the eight canonical-site seed patterns
// loaded when the registry initializes empty, per spec §4.2. Each is
// marked with a successCount and high initial confidence so the
// matcher prefers them over freshly learned patterns until experience
// says otherwise.
//
// Grounded on the teacher's GetDefaultRules (internal/error_recovery/default_rules.go):
// same shape, a literal slice of hand-authored seed entries returned
// from one function, generalized from recovery rules to API patterns.
func bootstrapPatterns() []*patternmodel.LearnedPattern {
	now := time.Now()
	seed := func(id string, templateType patternmodel.TemplateType, urlPatterns []string, endpoint string, extractors []patternmodel.Extractor, mapping patternmodel.ContentMapping, domain string) *patternmodel.LearnedPattern {
		return &patternmodel.LearnedPattern{
			ID:               patternmodel.ProvenanceBootstrap + id,
			TemplateType:     templateType,
			URLPatterns:      urlPatterns,
			EndpointTemplate: endpoint,
			Extractors:       extractors,
			Method:           "GET",
			ResponseFormat:   patternmodel.ResponseJSON,
			ContentMapping:   mapping,
			Metrics: patternmodel.ExtendedMetrics{
				Metrics: patternmodel.Metrics{
					SuccessCount: 25,
					Confidence:   1.0,
					Domains:      []string{domain},
					LastSuccess:  now,
				},
			},
			CreatedAt: now,
			UpdatedAt: now,
		}
	}

	return []*patternmodel.LearnedPattern{
		seed("reddit", patternmodel.TemplateJSONSuffix,
			[]string{`^https://(www\.)?reddit\.com/r/[^/]+/comments/[^/]+/?.*$`},
			"{url}.json", nil,
			patternmodel.ContentMapping{Title: "0.data.children.0.data.title", Body: "0.data.children.0.data.selftext"},
			"reddit.com"),

		seed("npm", patternmodel.TemplateRegistryLookup,
			[]string{`^https://(www\.)?npmjs\.com/package/([^/]+)/?$`},
			"https://registry.npmjs.org/{pkg}",
			[]patternmodel.Extractor{{Name: "pkg", Source: patternmodel.SourcePath, Regex: `^/package/([^/]+)`, CaptureGroup: 1}},
			patternmodel.ContentMapping{Title: "name", Description: "description"},
			"npmjs.com"),

		seed("pypi", patternmodel.TemplateRegistryLookup,
			[]string{`^https://pypi\.org/project/([^/]+)/?.*$`},
			"https://pypi.org/pypi/{pkg}/json",
			[]patternmodel.Extractor{{Name: "pkg", Source: patternmodel.SourcePath, Regex: `^/project/([^/]+)`, CaptureGroup: 1}},
			patternmodel.ContentMapping{Title: "info.name", Description: "info.summary"},
			"pypi.org"),

		seed("github", patternmodel.TemplateRESTResource,
			[]string{`^https://github\.com/([^/]+)/([^/]+)/?$`},
			"https://api.github.com/repos/{owner}/{repo}",
			[]patternmodel.Extractor{
				{Name: "owner", Source: patternmodel.SourcePath, Regex: `^/([^/]+)/`, CaptureGroup: 1},
				{Name: "repo", Source: patternmodel.SourcePath, Regex: `^/[^/]+/([^/]+)`, CaptureGroup: 1},
			},
			patternmodel.ContentMapping{Title: "full_name", Description: "description"},
			"github.com"),

		seed("wikipedia", patternmodel.TemplateQueryAPI,
			[]string{`^https://[a-z]+\.wikipedia\.org/wiki/([^/]+)$`},
			"https://en.wikipedia.org/w/api.php?action=query&prop=extracts&format=json&titles={title}",
			[]patternmodel.Extractor{{Name: "title", Source: patternmodel.SourcePath, Regex: `^/wiki/(.+)$`, CaptureGroup: 1}},
			patternmodel.ContentMapping{Body: "query.pages"},
			"wikipedia.org"),

		seed("hackernews", patternmodel.TemplateFirebaseREST,
			[]string{`^https://news\.ycombinator\.com/item\?id=(\d+)$`},
			"https://hacker-news.firebaseio.com/v0/item/{id}.json",
			[]patternmodel.Extractor{{Name: "id", Source: patternmodel.SourceQuery, Regex: `id=(\d+)`, CaptureGroup: 1}},
			patternmodel.ContentMapping{Title: "title", Body: "text"},
			"news.ycombinator.com"),

		seed("stackexchange", patternmodel.TemplateQueryAPI,
			[]string{`^https://stackoverflow\.com/questions/(\d+)/.*$`},
			"https://api.stackexchange.com/2.3/questions/{id}?site=stackoverflow&filter=withbody",
			[]patternmodel.Extractor{{Name: "id", Source: patternmodel.SourcePath, Regex: `^/questions/(\d+)/`, CaptureGroup: 1}},
			patternmodel.ContentMapping{Title: "items.0.title", Body: "items.0.body"},
			"stackoverflow.com"),

		seed("devto", patternmodel.TemplateRESTResource,
			[]string{`^https://dev\.to/[^/]+/([^/]+)/?$`},
			"https://dev.to/api/articles/{slug}",
			[]patternmodel.Extractor{{Name: "slug", Source: patternmodel.SourcePath, Regex: `/([^/]+)/?$`, CaptureGroup: 1}},
			patternmodel.ContentMapping{Title: "title", Body: "body_markdown", Description: "description"},
			"dev.to"),
	}
}
