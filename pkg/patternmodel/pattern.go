// Package patternmodel holds the data shapes shared by every learning
// component: learned patterns, anti-patterns, form patterns, discovery
// results, and the event payloads emitted by the registry.
package patternmodel

import "time"

// TemplateType is the closed set of API shapes a pattern can describe.
type TemplateType string

const (
	TemplateJSONSuffix     TemplateType = "json-suffix"
	TemplateRegistryLookup TemplateType = "registry-lookup"
	TemplateRESTResource   TemplateType = "rest-resource"
	TemplateFirebaseREST   TemplateType = "firebase-rest"
	TemplateQueryAPI       TemplateType = "query-api"
	TemplateGraphQL        TemplateType = "graphql"
	TemplateJSONRPC        TemplateType = "json-rpc"
	TemplateWebSocket      TemplateType = "websocket"
	TemplateServerAction   TemplateType = "server-action"
)

// ResponseFormat is the wire shape a pattern's response is parsed as.
type ResponseFormat string

const (
	ResponseJSON ResponseFormat = "json"
	ResponseHTML ResponseFormat = "html"
	ResponseXML  ResponseFormat = "xml"
)

// ExtractorSource names the URL component an extractor reads from.
type ExtractorSource string

const (
	SourcePath      ExtractorSource = "path"
	SourceQuery     ExtractorSource = "query"
	SourceSubdomain ExtractorSource = "subdomain"
	SourceHostname  ExtractorSource = "hostname"
)

// ExtractorTransform is an optional post-processing step applied to a
// captured group before it is substituted into the endpoint template.
type ExtractorTransform string

const (
	TransformNone       ExtractorTransform = ""
	TransformLowercase  ExtractorTransform = "lowercase"
	TransformUppercase  ExtractorTransform = "uppercase"
	TransformURLEncode  ExtractorTransform = "urlencode"
	TransformURLDecode  ExtractorTransform = "urldecode"
)

// Extractor captures a named substring from one component of a URL.
type Extractor struct {
	Name         string             `json:"name"`
	Source       ExtractorSource    `json:"source"`
	Regex        string             `json:"regex"`
	CaptureGroup int                `json:"captureGroup"`
	Transform    ExtractorTransform `json:"transform,omitempty"`
}

// ContentMapping describes where in a JSON response the commonly-needed
// fields live, as dot/bracket-notation paths understood by gjson.
type ContentMapping struct {
	Title       string            `json:"title,omitempty"`
	Description string            `json:"description,omitempty"`
	Body        string            `json:"body,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// Validation describes the minimal shape a successful response must have.
type Validation struct {
	RequiredFields  []string `json:"requiredFields,omitempty"`
	MinBodyLength   int      `json:"minBodyLength,omitempty"`
}

// Metrics is the base performance/trust record kept on every pattern.
type Metrics struct {
	SuccessCount      int       `json:"successCount"`
	FailureCount      int       `json:"failureCount"`
	Confidence        float64   `json:"confidence"`
	Domains           []string  `json:"domains"`
	AvgResponseTimeMs float64   `json:"avgResponseTimeMs"`
	LastSuccess       time.Time `json:"lastSuccess,omitzero"`
	LastFailure       time.Time `json:"lastFailure,omitzero"`
	LastFailureReason string    `json:"lastFailureReason,omitempty"`
}

// RecordedFailure is one entry in a pattern's bounded recent-failure ring.
type RecordedFailure struct {
	Category  string    `json:"category"`
	Reason    string    `json:"reason"`
	URL       string    `json:"url"`
	At        time.Time `json:"at"`
}

// ExtendedMetrics adds the failure-learner's bookkeeping on top of Metrics.
type ExtendedMetrics struct {
	Metrics
	FailuresByCategory map[string]int    `json:"failuresByCategory,omitempty"`
	RecentFailures     []RecordedFailure `json:"recentFailures,omitempty"`
	ActiveAntiPatterns []string          `json:"activeAntiPatterns,omitempty"`
}

// AddDomain appends domain to Domains iff it is not already present.
func (m *Metrics) AddDomain(domain string) {
	if domain == "" {
		return
	}
	for _, d := range m.Domains {
		if d == domain {
			return
		}
	}
	m.Domains = append(m.Domains, domain)
}

// RecordSuccess applies the invariants from spec §3: confidence recompute,
// rolling average response time, domain-set membership, lastSuccess stamp.
func (m *ExtendedMetrics) RecordSuccess(domain string, responseTimeMs float64) {
	m.SuccessCount++
	m.AddDomain(domain)
	m.LastSuccess = time.Now()
	n := float64(m.SuccessCount)
	m.AvgResponseTimeMs += (responseTimeMs - m.AvgResponseTimeMs) / n
	m.recomputeConfidence()
}

// RecordFailure applies the failure-side invariants from spec §3.
func (m *ExtendedMetrics) RecordFailure(reason string) {
	m.FailureCount++
	m.LastFailure = time.Now()
	m.LastFailureReason = reason
	m.recomputeConfidence()
}

func (m *ExtendedMetrics) recomputeConfidence() {
	total := m.SuccessCount + m.FailureCount
	if total == 0 {
		m.Confidence = 0
		return
	}
	m.Confidence = float64(m.SuccessCount) / float64(total)
}

// PushRecentFailure appends a failure to the bounded ring, dropping the
// oldest entry once capacity is exceeded.
func (m *ExtendedMetrics) PushRecentFailure(capacity int, f RecordedFailure) {
	if m.FailuresByCategory == nil {
		m.FailuresByCategory = make(map[string]int)
	}
	m.FailuresByCategory[f.Category]++
	m.RecentFailures = append(m.RecentFailures, f)
	if capacity > 0 && len(m.RecentFailures) > capacity {
		m.RecentFailures = m.RecentFailures[len(m.RecentFailures)-capacity:]
	}
}

// CountRecentByCategory returns how many entries in the ring match category.
func (m *ExtendedMetrics) CountRecentByCategory(category string) int {
	n := 0
	for _, f := range m.RecentFailures {
		if f.Category == category {
			n++
		}
	}
	return n
}

// LearnedPattern is the central entity: a recognized API shape plus its
// extraction recipe and its trust metrics.
type LearnedPattern struct {
	ID               string          `json:"id"`
	TemplateType     TemplateType    `json:"templateType"`
	URLPatterns      []string        `json:"urlPatterns"`
	EndpointTemplate string          `json:"endpointTemplate"`
	Extractors       []Extractor     `json:"extractors"`
	Method           string          `json:"method"`
	Headers          map[string]string `json:"headers,omitempty"`
	ResponseFormat   ResponseFormat  `json:"responseFormat"`
	ContentMapping   ContentMapping  `json:"contentMapping"`
	Validation       Validation      `json:"validation"`
	Metrics          ExtendedMetrics `json:"metrics"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

// Provenance prefixes, per spec §3.
const (
	ProvenanceBootstrap    = "bootstrap:"
	ProvenanceLearned      = "learned:"
	ProvenanceTransfer     = "transfer:"
	ProvenanceOpenAPI      = "openapi:"
	ProvenanceGraphQL      = "graphql:"
	ProvenanceForm         = "form:"
	ProvenanceWebSocket    = "ws:"
	ProvenanceJSONRPC      = "json-rpc:"
	ProvenanceServerAction = "server-action:"
)

// IsBootstrap reports whether the pattern was seeded at registry init.
func (p *LearnedPattern) IsBootstrap() bool {
	return len(p.ID) >= len(ProvenanceBootstrap) && p.ID[:len(ProvenanceBootstrap)] == ProvenanceBootstrap
}

// Clone performs a full deep copy via JSON round-trip, matching spec §9's
// requirement that transferred patterns share no mutable substructure
// with their source.
func (p *LearnedPattern) Clone() *LearnedPattern {
	data, err := marshalJSON(p)
	if err != nil {
		// Struct is always marshalable; a failure here is a programming
		// error, not a runtime condition callers should handle.
		panic(err)
	}
	clone := &LearnedPattern{}
	if err := unmarshalJSON(data, clone); err != nil {
		panic(err)
	}
	return clone
}
