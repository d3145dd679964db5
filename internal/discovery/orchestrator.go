// Package discovery implements C5: a documentation discovery
// orchestrator that fans a domain out to every enabled source in
// parallel, caches the merged result per domain, and ranks the sources'
// patterns by a fixed priority table.
package discovery

import (
	"context"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/uzzalhcse/patterncore/internal/logger"
	"github.com/uzzalhcse/patterncore/pkg/patternmodel"
	"go.uber.org/zap"
)

const defaultSourceTimeout = 30 * time.Second

// Source is one documentation channel the orchestrator can consult.
type Source interface {
	Name() patternmodel.DiscoverySource
	Discover(ctx context.Context, domain string) (*patternmodel.SourceResult, error)
}

// Orchestrator fans a domain out to every registered, non-skipped
// Source, merges their results by the fixed priority table, and caches
// the aggregate.
type Orchestrator struct {
	sources       []Source
	sourceTimeout time.Duration
	cache         *ttlCache
}

// New builds an Orchestrator. cacheTTL<=0 falls back to 1 hour;
// sourceTimeout<=0 falls back to 30s.
func New(sources []Source, cacheTTL, sourceTimeout time.Duration) *Orchestrator {
	if cacheTTL <= 0 {
		cacheTTL = time.Hour
	}
	if sourceTimeout <= 0 {
		sourceTimeout = defaultSourceTimeout
	}
	return &Orchestrator{sources: sources, sourceTimeout: sourceTimeout, cache: newTTLCache(cacheTTL)}
}

// Discover returns the cached aggregate for domain unless forceRefresh
// is set or the cache entry has expired, in which case it fans out to
// every source, skipping any name present in skip.
func (o *Orchestrator) Discover(ctx context.Context, domain string, forceRefresh bool, skip map[patternmodel.DiscoverySource]bool) patternmodel.DiscoveryResult {
	now := time.Now()
	if !forceRefresh {
		if cached, ok := o.cache.get(domain, now); ok {
			return cached
		}
	}

	runs := o.fanOut(ctx, domain, skip)
	merged := merge(domain, runs, now)

	if anyFound(runs) {
		o.cache.put(domain, merged)
	}
	return merged
}

func (o *Orchestrator) fanOut(ctx context.Context, domain string, skip map[patternmodel.DiscoverySource]bool) []patternmodel.SourceResult {
	runs := make([]patternmodel.SourceResult, len(o.sources))

	g, gctx := errgroup.WithContext(ctx)
	for i, src := range o.sources {
		i, src := i, src
		if skip[src.Name()] {
			runs[i] = patternmodel.SourceResult{Source: src.Name(), Found: false}
			continue
		}

		g.Go(func() error {
			start := time.Now()
			callCtx, cancel := context.WithTimeout(gctx, o.sourceTimeout)
			defer cancel()

			result, err := src.Discover(callCtx, domain)
			elapsed := time.Since(start).Seconds() * 1000

			if err != nil {
				logger.Warn("discovery: source failed", zap.String("source", string(src.Name())), zap.String("domain", domain), zap.Error(err))
				runs[i] = patternmodel.SourceResult{Source: src.Name(), Found: false, Error: err.Error(), ElapsedMs: elapsed}
				return nil // a rejected source becomes "not found", never short-circuits the group
			}
			result.ElapsedMs = elapsed
			result.Source = src.Name()
			runs[i] = *result
			return nil
		})
	}
	_ = g.Wait() // every goroutine above always returns nil; errors are captured in runs

	return runs
}

func anyFound(runs []patternmodel.SourceResult) bool {
	for _, r := range runs {
		if r.Found {
			return true
		}
	}
	return false
}

// merge ranks source results by the fixed priority table, then by
// confidence, dedupes patterns by id (first wins), and takes metadata
// from the first found source.
func merge(domain string, runs []patternmodel.SourceResult, now time.Time) patternmodel.DiscoveryResult {
	ranked := make([]patternmodel.SourceResult, len(runs))
	copy(ranked, runs)
	sort.SliceStable(ranked, func(i, j int) bool {
		pi := patternmodel.SourcePriority[ranked[i].Source]
		pj := patternmodel.SourcePriority[ranked[j].Source]
		if pi != pj {
			return pi > pj
		}
		return patternmodel.SourceConfidence[ranked[i].Source] > patternmodel.SourceConfidence[ranked[j].Source]
	})

	seen := make(map[string]struct{})
	var patterns []*patternmodel.LearnedPattern
	var metadata map[string]string

	for _, r := range ranked {
		if !r.Found {
			continue
		}
		if metadata == nil && len(r.Metadata) > 0 {
			metadata = r.Metadata
		}
		for _, p := range r.Patterns {
			if _, dup := seen[p.ID]; dup {
				continue
			}
			seen[p.ID] = struct{}{}
			patterns = append(patterns, p)
		}
	}

	return patternmodel.DiscoveryResult{
		Domain:     domain,
		Patterns:   patterns,
		Metadata:   metadata,
		SourceRuns: runs,
		CachedAt:   now,
	}
}
