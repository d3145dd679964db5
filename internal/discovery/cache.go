package discovery

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/uzzalhcse/patterncore/pkg/patternmodel"
)

// ttlCache holds the most recent DiscoveryResult per domain in an LRU of
// bounded size, treating entries older than ttl as a miss on read
// (golang-lru has no built-in expiry, so staleness is checked against
// each entry's own CachedAt on Get, the same pattern language.
// CachingDetector uses for domain-stable detections).
type ttlCache struct {
	mu    sync.Mutex
	ttl   time.Duration
	cache *lru.Cache[string, patternmodel.DiscoveryResult]
}

func newTTLCache(ttl time.Duration) *ttlCache {
	return newTTLCacheSized(ttl, 512)
}

func newTTLCacheSized(ttl time.Duration, size int) *ttlCache {
	if size <= 0 {
		size = 512
	}
	cache, err := lru.New[string, patternmodel.DiscoveryResult](size)
	if err != nil {
		// size is always a positive int here, so lru.New cannot fail;
		// a 1-entry cache is a safe degraded fallback if it somehow did.
		cache, _ = lru.New[string, patternmodel.DiscoveryResult](1)
	}
	return &ttlCache{ttl: ttl, cache: cache}
}

func (c *ttlCache) get(domain string, now time.Time) (patternmodel.DiscoveryResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	result, ok := c.cache.Get(domain)
	if !ok {
		return patternmodel.DiscoveryResult{}, false
	}
	if now.Sub(result.CachedAt) > c.ttl {
		c.cache.Remove(domain)
		return patternmodel.DiscoveryResult{}, false
	}
	return result, true
}

func (c *ttlCache) put(domain string, result patternmodel.DiscoveryResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.Add(domain, result)
}
