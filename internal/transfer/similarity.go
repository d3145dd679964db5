package transfer

import (
	"strings"

	"github.com/uzzalhcse/patterncore/pkg/patternmodel"
)

const (
	weightURLStructure   = 0.25
	weightResponseFormat = 0.15
	weightTemplateType   = 0.35
	weightDomainGroup    = 0.25
)

// Score is the weighted similarity between a source pattern and a
// target domain, per spec §4.4.
type Score struct {
	URLStructure   float64
	ResponseFormat float64
	TemplateType   float64
	DomainGroup    float64
	Total          float64
}

func hasPathComponent(p *patternmodel.LearnedPattern) bool {
	for _, urlPattern := range p.URLPatterns {
		if strings.Contains(urlPattern, "/") {
			return true
		}
	}
	for _, ex := range p.Extractors {
		if ex.Source == patternmodel.SourcePath {
			return true
		}
	}
	return false
}

func sourceDomainOf(p *patternmodel.LearnedPattern) string {
	if len(p.Metrics.Domains) == 0 {
		return ""
	}
	return p.Metrics.Domains[0]
}

// Similarity computes the four sub-scores and their weighted total for
// transferring source onto targetDomain.
func Similarity(source *patternmodel.LearnedPattern, targetDomain string) Score {
	srcDomain := sourceDomainOf(source)
	pathPresent := hasPathComponent(source)

	var urlStructure float64
	switch {
	case sameGroup(srcDomain, targetDomain) && pathPresent:
		urlStructure = 0.8
	case pathPresent:
		urlStructure = 0.3
	default:
		urlStructure = 0
	}

	responseFormat := 0.5
	if source.ResponseFormat == patternmodel.ResponseJSON {
		responseFormat = 0.8
	}

	templateType := 0.0
	if groupListsTemplateType(targetDomain, source.TemplateType) {
		templateType = 1.0
	}

	var domainGroup float64
	switch {
	case sameGroup(srcDomain, targetDomain):
		domainGroup = 1.0
	case isGrouped(srcDomain) != isGrouped(targetDomain):
		domainGroup = 0.2
	default:
		domainGroup = 0
	}

	total := urlStructure*weightURLStructure +
		responseFormat*weightResponseFormat +
		templateType*weightTemplateType +
		domainGroup*weightDomainGroup

	return Score{
		URLStructure:   urlStructure,
		ResponseFormat: responseFormat,
		TemplateType:   templateType,
		DomainGroup:    domainGroup,
		Total:          total,
	}
}

func isGrouped(domain string) bool {
	_, ok := groupFor(domain)
	return ok
}

// derivedURLPattern builds a target-specific URL regex by escaping the
// target host and reusing source's path structure, with numeric/UUID-
// looking segments replaced by `[^/]+`, per spec §4.4.
func derivedURLPattern(source *patternmodel.LearnedPattern, targetDomain string) string {
	path := "/.*"
	if len(source.URLPatterns) > 0 {
		if p, ok := pathOfURLPattern(source.URLPatterns[0]); ok {
			path = genericizePath(p)
		}
	}
	return `^https?://` + escapeRegexLiteral(targetDomain) + path + `$`
}

// pathOfURLPattern extracts the path portion of a urlPatterns regex by
// locating the first "/" after the scheme+host, rather than parsing the
// (regex-laden, not-a-real-URL) string with net/url.
func pathOfURLPattern(expr string) (string, bool) {
	expr = strings.TrimPrefix(expr, "^")
	expr = strings.TrimSuffix(expr, "$")

	schemeSep := strings.Index(expr, "://")
	if schemeSep == -1 {
		return "", false
	}
	rest := expr[schemeSep+3:]
	slash := strings.IndexByte(rest, '/')
	if slash == -1 {
		return "", false
	}
	return rest[slash:], true
}

func genericizePath(path string) string {
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		if looksLikeIDSegment(seg) {
			segments[i] = `[^/]+`
		} else {
			segments[i] = escapeRegexLiteral(seg)
		}
	}
	return strings.Join(segments, "/")
}

// looksLikeIDSegment reports whether a path segment is a literal
// numeric/UUID value, or (since URLPatterns are themselves regexes) a
// capture group standing in for one — e.g. `(\d+)` or `([^/]+)`.
func looksLikeIDSegment(seg string) bool {
	if seg == "" {
		return false
	}
	if strings.HasPrefix(seg, "(") && strings.HasSuffix(seg, ")") {
		return true
	}
	allDigits := true
	for _, r := range seg {
		if r < '0' || r > '9' {
			allDigits = false
			break
		}
	}
	if allDigits {
		return true
	}
	return looksLikeUUID(seg)
}

func looksLikeUUID(seg string) bool {
	if len(seg) != 36 {
		return false
	}
	for i, r := range seg {
		if i == 8 || i == 13 || i == 18 || i == 23 {
			if r != '-' {
				return false
			}
			continue
		}
		if !isHexDigit(r) {
			return false
		}
	}
	return true
}

func isHexDigit(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

func escapeRegexLiteral(s string) string {
	var b []byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '.', '*', '+', '?', '(', ')', '[', ']', '{', '}', '^', '$', '|', '\\':
			b = append(b, '\\', c)
		default:
			b = append(b, c)
		}
	}
	return string(b)
}
