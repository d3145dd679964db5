package registry

import (
	"encoding/json"
	"net/url"
	"strconv"
	"strings"

	"github.com/uzzalhcse/patterncore/pkg/patternmodel"
)

// ExtractionEvent is the input to learnFromExtraction: a successful API
// call the caller made outside of a matched pattern (e.g. a form
// submission's follow-up read, or a manually configured endpoint),
// which the registry should turn into a new learned pattern.
type ExtractionEvent struct {
	SourceURL   string // the page URL the caller originally wanted
	APIURL      string // the API endpoint that actually served the content
	Domain      string
	ResponseRaw []byte // raw JSON response body
	Title       string // value recovered for the page title
	Body        string // value recovered for the page body
	Description string // value recovered for the page description
}

// inferTemplateType chooses a TemplateType for a newly observed
// (sourceURL, apiURL) pair, per spec §4.2: an explicit per-domain
// strategy map is consulted first, then URL-shape heuristics.
func inferTemplateType(strategyMap map[string]patternmodel.TemplateType, sourceURL, apiURL, domain string) patternmodel.TemplateType {
	if t, ok := strategyMap[domain]; ok {
		return t
	}

	if sourceURL+".json" == apiURL {
		return patternmodel.TemplateJSONSuffix
	}

	srcHost := hostOf(sourceURL)
	apiHost := hostOf(apiURL)
	apiPath := pathOf(apiURL)

	if apiHost != "" && apiHost != srcHost && looksLikeRegistryPath(apiPath) {
		return patternmodel.TemplateRegistryLookup
	}

	srcQuery := queryOf(sourceURL)
	apiQuery := queryOf(apiURL)
	if apiQuery != "" && apiQuery != srcQuery {
		return patternmodel.TemplateQueryAPI
	}

	if strings.HasPrefix(apiHost, "api.") || strings.Contains(apiPath, "/api/") {
		return patternmodel.TemplateRESTResource
	}

	return patternmodel.TemplateQueryAPI
}

func looksLikeRegistryPath(path string) bool {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	return len(segments) > 0 && (segments[0] == "pypi" || segments[0] == "packages" || segments[0] == "registry" || segments[0] == "v0" || segments[0] == "v1" || segments[0] == "v2" || segments[0] == "v3")
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

func pathOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Path
}

func queryOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.RawQuery
}

// inferContentMapping searches the structured response for the
// extracted title/description/body values and records the dot/bracket
// path where each was found, per spec §4.2.
func inferContentMapping(responseRaw []byte, title, description, body string) patternmodel.ContentMapping {
	var doc interface{}
	if err := json.Unmarshal(responseRaw, &doc); err != nil {
		return patternmodel.ContentMapping{}
	}

	paths := make(map[string]string)
	walkJSON(doc, "", paths)

	mapping := patternmodel.ContentMapping{}
	if p, ok := findPathForValue(paths, title); ok {
		mapping.Title = p
	}
	if p, ok := findPathForValue(paths, description); ok {
		mapping.Description = p
	}
	if p, ok := findPathForValue(paths, body); ok {
		mapping.Body = p
	}
	return mapping
}

// walkJSON flattens a decoded JSON document into path→string-value
// pairs using gjson dot notation (array indices as numeric segments,
// e.g. "items.0.title"), so found paths can be used directly as contentMapping
// entries read back by gjson at apply time.
func walkJSON(node interface{}, path string, out map[string]string) {
	switch v := node.(type) {
	case map[string]interface{}:
		for k, child := range v {
			childPath := k
			if path != "" {
				childPath = path + "." + k
			}
			walkJSON(child, childPath, out)
		}
	case []interface{}:
		for i, child := range v {
			childPath := strconv.Itoa(i)
			if path != "" {
				childPath = path + "." + childPath
			}
			walkJSON(child, childPath, out)
		}
	case string:
		if path != "" {
			out[path] = v
		}
	}
}

func findPathForValue(paths map[string]string, value string) (string, bool) {
	if value == "" {
		return "", false
	}
	for p, v := range paths {
		if v == value {
			return p, true
		}
	}
	return "", false
}

