package patternmodel

import "time"

// DiscoverySource is the fixed set of documentation sources C5 fans out to.
type DiscoverySource string

const (
	SourceOpenAPI        DiscoverySource = "openapi"
	SourceGraphQL        DiscoverySource = "graphql"
	SourceAsyncAPI       DiscoverySource = "asyncapi"
	SourceAltSpec        DiscoverySource = "alt-spec"
	SourceRAML           DiscoverySource = "raml" // legacy alias of alt-spec, spec §9 Open Question
	SourceLinks          DiscoverySource = "links"
	SourceDocsPage       DiscoverySource = "docs-page"
	SourceRobotsSitemap  DiscoverySource = "robots-sitemap"
	SourceObserved       DiscoverySource = "observed"
)

// SourcePriority is the fixed ranking table used when merging per-source
// results (higher wins ties on confidence).
var SourcePriority = map[DiscoverySource]int{
	SourceOpenAPI:       100,
	SourceGraphQL:       90,
	SourceAsyncAPI:      80,
	SourceAltSpec:       75,
	SourceRAML:          75,
	SourceLinks:         60,
	SourceDocsPage:      50,
	SourceObserved:      40,
	SourceRobotsSitemap: 30,
}

// SourceConfidence is the fixed per-source confidence used when no
// pattern-level confidence is otherwise available.
var SourceConfidence = map[DiscoverySource]float64{
	SourceOpenAPI:       0.95,
	SourceGraphQL:       0.90,
	SourceAsyncAPI:      0.85,
	SourceAltSpec:       0.80,
	SourceRAML:          0.80,
	SourceLinks:         0.70,
	SourceDocsPage:      0.60,
	SourceObserved:      0.50,
	SourceRobotsSitemap: 0.40,
}

// SourceResult is what a single discovery source returns for one domain.
type SourceResult struct {
	Source      DiscoverySource   `json:"source"`
	Found       bool              `json:"found"`
	Patterns    []*LearnedPattern `json:"patterns,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	Error       string            `json:"error,omitempty"`
	ElapsedMs   float64           `json:"elapsedMs"`
}

// DiscoveryResult is the merged, ranked aggregate for one domain.
type DiscoveryResult struct {
	Domain      string            `json:"domain"`
	Patterns    []*LearnedPattern `json:"patterns"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	SourceRuns  []SourceResult    `json:"sourceRuns"`
	CachedAt    time.Time         `json:"cachedAt"`
}
