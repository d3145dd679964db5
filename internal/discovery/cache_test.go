package discovery

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/uzzalhcse/patterncore/pkg/patternmodel"
)

func TestTTLCacheHitWithinWindow(t *testing.T) {
	now := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)
	c := newTTLCache(time.Hour)
	c.put("example.com", patternmodel.DiscoveryResult{Domain: "example.com", CachedAt: now})

	got, ok := c.get("example.com", now.Add(30*time.Minute))
	assert.True(t, ok)
	assert.Equal(t, "example.com", got.Domain)
}

func TestTTLCacheMissAfterExpiry(t *testing.T) {
	now := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)
	c := newTTLCache(time.Hour)
	c.put("example.com", patternmodel.DiscoveryResult{Domain: "example.com", CachedAt: now})

	_, ok := c.get("example.com", now.Add(2*time.Hour))
	assert.False(t, ok)
}

func TestTTLCacheMissForUnknownDomain(t *testing.T) {
	c := newTTLCache(time.Hour)
	_, ok := c.get("unknown.com", time.Now())
	assert.False(t, ok)
}

func TestTTLCacheEvictsLeastRecentlyUsedAtCapacity(t *testing.T) {
	now := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)
	c := newTTLCacheSized(time.Hour, 2)

	c.put("a.com", patternmodel.DiscoveryResult{Domain: "a.com", CachedAt: now})
	c.put("b.com", patternmodel.DiscoveryResult{Domain: "b.com", CachedAt: now})
	c.put("c.com", patternmodel.DiscoveryResult{Domain: "c.com", CachedAt: now})

	_, ok := c.get("a.com", now)
	assert.False(t, ok)

	_, ok = c.get("c.com", now)
	assert.True(t, ok)
}
