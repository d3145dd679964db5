package language

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// CachingDetector memoizes Detect per domain: repeated pages on a
// domain that already yielded a high-confidence markup-based detection
// don't need to re-parse and re-score content on every call.
type CachingDetector struct {
	cache *lru.Cache[string, Detection]
}

// NewCachingDetector builds a detector backed by an LRU of the given
// size, keyed by domain.
func NewCachingDetector(size int) (*CachingDetector, error) {
	if size <= 0 {
		size = 256
	}
	cache, err := lru.New[string, Detection](size)
	if err != nil {
		return nil, err
	}
	return &CachingDetector{cache: cache}, nil
}

// Detect returns the cached detection for domain if present; otherwise
// it runs full detection against html/pageURL and caches the result.
// Only detections sourced from stable markup signals (html-lang,
// content-language, og:locale) are cached — URL-pattern and content
// based detections are scoped to the particular page, not the domain.
func (c *CachingDetector) Detect(domain string, html []byte, pageURL string) Detection {
	if domain != "" {
		if cached, ok := c.cache.Get(domain); ok {
			return cached
		}
	}

	d := Detect(html, pageURL)

	if domain != "" && isDomainStableSource(d.Source) {
		c.cache.Add(domain, d)
	}
	return d
}

func isDomainStableSource(s Source) bool {
	switch s {
	case SourceHTMLLang, SourceMetaHTTPEquiv, SourceOGLocale:
		return true
	default:
		return false
	}
}
