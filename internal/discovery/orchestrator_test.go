package discovery

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uzzalhcse/patterncore/pkg/patternmodel"
)

type fakeSource struct {
	name    patternmodel.DiscoverySource
	result  *patternmodel.SourceResult
	err     error
	calls   int
	delay   time.Duration
}

func (f *fakeSource) Name() patternmodel.DiscoverySource { return f.name }

func (f *fakeSource) Discover(ctx context.Context, domain string) (*patternmodel.SourceResult, error) {
	f.calls++
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func patternWithID(id string) *patternmodel.LearnedPattern {
	return &patternmodel.LearnedPattern{ID: id}
}

func TestDiscoverMergesByPriorityThenConfidence(t *testing.T) {
	openapi := &fakeSource{name: patternmodel.SourceOpenAPI, result: &patternmodel.SourceResult{
		Found: true, Patterns: []*patternmodel.LearnedPattern{patternWithID("a")},
	}}
	links := &fakeSource{name: patternmodel.SourceLinks, result: &patternmodel.SourceResult{
		Found: true, Patterns: []*patternmodel.LearnedPattern{patternWithID("b")}, Metadata: map[string]string{"x": "1"},
	}}

	o := New([]Source{links, openapi}, time.Hour, time.Second)
	result := o.Discover(context.Background(), "example.com", false, nil)

	require.Len(t, result.Patterns, 2)
	assert.Equal(t, "a", result.Patterns[0].ID)
	assert.Equal(t, "b", result.Patterns[1].ID)
}

func TestDiscoverDedupesByIDFirstWins(t *testing.T) {
	openapi := &fakeSource{name: patternmodel.SourceOpenAPI, result: &patternmodel.SourceResult{
		Found: true, Patterns: []*patternmodel.LearnedPattern{patternWithID("dup")},
	}}
	graphql := &fakeSource{name: patternmodel.SourceGraphQL, result: &patternmodel.SourceResult{
		Found: true, Patterns: []*patternmodel.LearnedPattern{patternWithID("dup")},
	}}

	o := New([]Source{openapi, graphql}, time.Hour, time.Second)
	result := o.Discover(context.Background(), "example.com", false, nil)

	assert.Len(t, result.Patterns, 1)
}

func TestDiscoverCachesAggregateOnlyWhenSomethingFound(t *testing.T) {
	none := &fakeSource{name: patternmodel.SourceDocsPage, result: &patternmodel.SourceResult{Found: false}}
	o := New([]Source{none}, time.Hour, time.Second)

	o.Discover(context.Background(), "example.com", false, nil)
	_, cached := o.cache.get("example.com", time.Now())
	assert.False(t, cached)
}

func TestDiscoverServesFromCacheUntilForceRefresh(t *testing.T) {
	src := &fakeSource{name: patternmodel.SourceOpenAPI, result: &patternmodel.SourceResult{
		Found: true, Patterns: []*patternmodel.LearnedPattern{patternWithID("a")},
	}}
	o := New([]Source{src}, time.Hour, time.Second)

	o.Discover(context.Background(), "example.com", false, nil)
	o.Discover(context.Background(), "example.com", false, nil)
	assert.Equal(t, 1, src.calls)

	o.Discover(context.Background(), "example.com", true, nil)
	assert.Equal(t, 2, src.calls)
}

func TestDiscoverSkipsNamedSources(t *testing.T) {
	src := &fakeSource{name: patternmodel.SourceOpenAPI, result: &patternmodel.SourceResult{
		Found: true, Patterns: []*patternmodel.LearnedPattern{patternWithID("a")},
	}}
	o := New([]Source{src}, time.Hour, time.Second)

	result := o.Discover(context.Background(), "example.com", false, map[patternmodel.DiscoverySource]bool{patternmodel.SourceOpenAPI: true})
	assert.Empty(t, result.Patterns)
	assert.Equal(t, 0, src.calls)
}

func TestDiscoverTreatsSourceErrorAsNotFoundWithoutShortCircuiting(t *testing.T) {
	failing := &fakeSource{name: patternmodel.SourceOpenAPI, err: assertError("boom")}
	ok := &fakeSource{name: patternmodel.SourceLinks, result: &patternmodel.SourceResult{
		Found: true, Patterns: []*patternmodel.LearnedPattern{patternWithID("a")},
	}}

	o := New([]Source{failing, ok}, time.Hour, time.Second)
	result := o.Discover(context.Background(), "example.com", false, nil)

	require.Len(t, result.Patterns, 1)
	require.Len(t, result.SourceRuns, 2)
}

type assertError string

func (e assertError) Error() string { return string(e) }
