package sources

import (
	"context"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/uzzalhcse/patterncore/internal/fetch"
	"github.com/uzzalhcse/patterncore/pkg/patternmodel"
)

var asyncAPIPaths = []string{"/asyncapi.yaml", "/asyncapi.yml", "/asyncapi.json", "/.well-known/asyncapi.yaml"}

// asyncAPIDoc captures only the shape this source needs: channel names
// and, when present, a websocket server URL.
type asyncAPIDoc struct {
	AsyncAPI string `yaml:"asyncapi"`
	Servers  map[string]struct {
		URL      string `yaml:"url"`
		Protocol string `yaml:"protocol"`
	} `yaml:"servers"`
	Channels map[string]struct{} `yaml:"channels"`
}

// AsyncAPISource discovers event-driven endpoints described by an
// AsyncAPI document, per spec §4.5.
type AsyncAPISource struct {
	Fetcher fetch.Fetcher
}

func (s *AsyncAPISource) Name() patternmodel.DiscoverySource { return patternmodel.SourceAsyncAPI }

func (s *AsyncAPISource) Discover(ctx context.Context, domain string) (*patternmodel.SourceResult, error) {
	resp, sourceURL, ok := fetchFirst(ctx, s.Fetcher, domain, asyncAPIPaths)
	if !ok {
		return notFound(s.Name()), nil
	}

	var doc asyncAPIDoc
	if err := yaml.Unmarshal(resp.Body, &doc); err != nil || doc.AsyncAPI == "" {
		return notFound(s.Name()), nil
	}

	var serverURL, protocol string
	for _, srv := range doc.Servers {
		serverURL, protocol = srv.URL, srv.Protocol
		break
	}

	var patterns []*patternmodel.LearnedPattern
	for channel := range doc.Channels {
		templateType := patternmodel.TemplateQueryAPI
		if protocol == "ws" || protocol == "wss" {
			templateType = patternmodel.TemplateWebSocket
		}
		patterns = append(patterns, &patternmodel.LearnedPattern{
			ID:               "asyncapi:" + domain + ":" + channel,
			TemplateType:     templateType,
			URLPatterns:      []string{`^https?://` + regexp.QuoteMeta(domain) + `/?$`},
			EndpointTemplate: serverURL + "/" + channel,
			ResponseFormat:   patternmodel.ResponseJSON,
			Metrics: patternmodel.ExtendedMetrics{
				Metrics: patternmodel.Metrics{
					Confidence: patternmodel.SourceConfidence[patternmodel.SourceAsyncAPI],
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
		Metadata: map[string]string{"specUrl": sourceURL, "asyncapiVersion": doc.AsyncAPI},
	}, nil
}
