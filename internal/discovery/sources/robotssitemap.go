package sources

import (
	"context"
	"net/http"
	"regexp"
	"strings"

	"github.com/uzzalhcse/patterncore/internal/fetch"
	"github.com/uzzalhcse/patterncore/pkg/patternmodel"
)

var sitemapDirectiveRe = regexp.MustCompile(`(?im)^Sitemap:\s*(\S+)`)
var apiDisallowRe = regexp.MustCompile(`(?im)^Disallow:\s*(/[\w/-]*api[\w/-]*)`)

// RobotsSitemapSource does not itself produce endpoint patterns — per
// spec §4.5 it is "hints only" — but surfaces sitemap URLs and
// API-shaped Disallow rules as metadata for other sources/operators to
// follow up on.
type RobotsSitemapSource struct {
	Fetcher fetch.Fetcher
}

func (s *RobotsSitemapSource) Name() patternmodel.DiscoverySource {
	return patternmodel.SourceRobotsSitemap
}

func (s *RobotsSitemapSource) Discover(ctx context.Context, domain string) (*patternmodel.SourceResult, error) {
	resp, err := s.Fetcher.Do(ctx, fetch.Request{Method: http.MethodGet, URL: "https://" + domain + "/robots.txt"})
	if err != nil || resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return notFound(s.Name()), nil
	}

	text := string(resp.Body)
	sitemaps := uniqueMatches(sitemapDirectiveRe, text)
	apiHints := uniqueMatches(apiDisallowRe, text)

	if len(sitemaps) == 0 && len(apiHints) == 0 {
		return notFound(s.Name()), nil
	}

	return &patternmodel.SourceResult{
		Source: s.Name(),
		Found:  true,
		Metadata: map[string]string{
			"sitemaps": strings.Join(sitemaps, ","),
			"apiHints": strings.Join(apiHints, ","),
		},
	}, nil
}

func uniqueMatches(re *regexp.Regexp, text string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, m := range re.FindAllStringSubmatch(text, -1) {
		if _, dup := seen[m[1]]; dup {
			continue
		}
		seen[m[1]] = struct{}{}
		out = append(out, m[1])
	}
	return out
}
