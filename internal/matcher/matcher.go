// Package matcher implements C3: deciding whether a URL matches a
// learned pattern and extracting the named substrings that fill its
// endpoint template. It is the hot path invoked on every lookup, so it
// is a pure function of (URL, pattern) with no hidden state, and any
// malformed regex, malformed URL, or missing capture group degrades to
// a soft "no match" rather than an error surfaced to the caller.
//
// Regex evaluation uses dlclark/regexp2 rather than the standard
// library's RE2 engine: learned patterns are serialized from an
// ECMAScript-dialect source (backreferences, lazy quantifiers, lookahead)
// and RE2 cannot express that dialect at all.
package matcher

import (
	"net/url"
	"strings"

	"github.com/dlclark/regexp2"
	"go.uber.org/zap"

	"github.com/uzzalhcse/patterncore/internal/logger"
	"github.com/uzzalhcse/patterncore/pkg/patternmodel"
)

// Match is the result of a successful URL-pattern match.
type Match struct {
	Pattern   *patternmodel.LearnedPattern
	Variables map[string]string
	Endpoint  string
}

// Matches reports whether rawURL matches any of pattern's urlPatterns,
// case-insensitively, per spec §3.
func Matches(rawURL string, pattern *patternmodel.LearnedPattern) bool {
	for _, expr := range pattern.URLPatterns {
		re, err := compile(expr)
		if err != nil {
			continue
		}
		if ok, _ := re.MatchString(rawURL); ok {
			return true
		}
	}
	return false
}

// Extract runs pattern's extractors against rawURL and, if every
// extractor succeeds, substitutes the results into endpointTemplate. It
// returns ok=false on any failure: malformed regex, malformed URL,
// missing capture group, or an unresolved `{name}` placeholder.
func Extract(rawURL string, pattern *patternmodel.LearnedPattern) (Match, bool) {
	if !Matches(rawURL, pattern) {
		return Match{}, false
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		logger.Debug("matcher: malformed url", zap.String("url", rawURL), zap.Error(err))
		return Match{}, false
	}

	vars := make(map[string]string, len(pattern.Extractors))
	for _, ex := range pattern.Extractors {
		v, ok := extractOne(parsed, ex)
		if !ok {
			return Match{}, false
		}
		vars[ex.Name] = v
	}

	endpoint, ok := substitute(pattern.EndpointTemplate, rawURL, vars)
	if !ok {
		return Match{}, false
	}

	return Match{Pattern: pattern, Variables: vars, Endpoint: endpoint}, true
}

// BestMatch returns the first pattern (by candidates' order) that both
// matches rawURL and successfully extracts, preferring candidates the
// caller has already ranked by confidence.
func BestMatch(rawURL string, candidates []*patternmodel.LearnedPattern) (Match, bool) {
	for _, p := range candidates {
		if m, ok := Extract(rawURL, p); ok {
			return m, true
		}
	}
	return Match{}, false
}

func sourceValue(parsed *url.URL, source patternmodel.ExtractorSource) string {
	switch source {
	case patternmodel.SourcePath:
		return parsed.Path
	case patternmodel.SourceQuery:
		return parsed.RawQuery
	case patternmodel.SourceHostname:
		return parsed.Hostname()
	case patternmodel.SourceSubdomain:
		host := parsed.Hostname()
		parts := strings.Split(host, ".")
		if len(parts) <= 2 {
			return ""
		}
		return strings.Join(parts[:len(parts)-2], ".")
	default:
		return ""
	}
}

func extractOne(parsed *url.URL, ex patternmodel.Extractor) (string, bool) {
	src := sourceValue(parsed, ex.Source)

	re, err := compile(ex.Regex)
	if err != nil {
		return "", false
	}

	m, err := re.FindStringMatch(src)
	if err != nil || m == nil {
		return "", false
	}

	group := m.GroupByNumber(ex.CaptureGroup)
	if group == nil || len(group.Captures) == 0 {
		return "", false
	}

	return applyTransform(group.Captures[0].String(), ex.Transform), true
}

func applyTransform(v string, t patternmodel.ExtractorTransform) string {
	switch t {
	case patternmodel.TransformLowercase:
		return strings.ToLower(v)
	case patternmodel.TransformUppercase:
		return strings.ToUpper(v)
	case patternmodel.TransformURLEncode:
		return url.QueryEscape(v)
	case patternmodel.TransformURLDecode:
		if decoded, err := url.QueryUnescape(v); err == nil {
			return decoded
		}
		return v
	default:
		return v
	}
}

// substitute fills endpointTemplate's `{name}` placeholders, where the
// literal `{url}` means "use rawURL unchanged" per spec §3.
func substitute(template, rawURL string, vars map[string]string) (string, bool) {
	var b strings.Builder
	i := 0
	for i < len(template) {
		if template[i] != '{' {
			b.WriteByte(template[i])
			i++
			continue
		}
		end := strings.IndexByte(template[i:], '}')
		if end < 0 {
			return "", false
		}
		name := template[i+1 : i+end]
		i += end + 1

		if name == "url" {
			b.WriteString(rawURL)
			continue
		}
		v, ok := vars[name]
		if !ok {
			return "", false
		}
		b.WriteString(v)
	}
	return b.String(), true
}

// compile builds an ECMAScript-dialect, case-insensitive regex. Callers
// treat a compile error as a soft non-match per this component's
// contract, so no error is ever propagated past this package.
func compile(expr string) (*regexp2.Regexp, error) {
	return regexp2.Compile(expr, regexp2.ECMAScript|regexp2.IgnoreCase)
}

