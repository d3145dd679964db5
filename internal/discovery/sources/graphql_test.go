package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uzzalhcse/patterncore/internal/fetch"
	"github.com/uzzalhcse/patterncore/internal/fetch/fasthttpfetch"
	"github.com/uzzalhcse/patterncore/pkg/patternmodel"
)

// rewritingFetcher rewrites a source's "https://"+domain+path request
// onto an httptest server's actual (plain-HTTP, random-port) base URL,
// since the sources under test always address their target by domain.
type rewritingFetcher struct {
	testServerBase string
	inner          fetch.Fetcher
}

func (f *rewritingFetcher) Do(ctx context.Context, req fetch.Request) (*fetch.Response, error) {
	u, err := url.Parse(req.URL)
	if err != nil {
		return nil, err
	}
	req.URL = f.testServerBase + u.Path
	if u.RawQuery != "" {
		req.URL += "?" + u.RawQuery
	}
	return f.inner.Do(ctx, req)
}

func testFetcher(testServerBase string) *rewritingFetcher {
	return &rewritingFetcher{testServerBase: testServerBase, inner: fasthttpfetch.New("patterncore-test")}
}

func domainOf(t *testing.T, rawURL string) string {
	t.Helper()
	u, err := url.Parse(rawURL)
	require.NoError(t, err)
	return u.Host
}

func TestGraphQLSourceFindsEndpointAndBuildsSinglePattern(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/graphql" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"__schema":{"queryType":{"name":"Query"}}}}`))
	}))
	defer srv.Close()

	domain := domainOf(t, srv.URL)
	src := &GraphQLSource{Fetcher: testFetcher(srv.URL)}

	result, err := src.Discover(context.Background(), domain)
	require.NoError(t, err)
	require.True(t, result.Found)
	require.Len(t, result.Patterns, 1)

	p := result.Patterns[0]
	assert.Equal(t, patternmodel.TemplateQueryAPI, p.TemplateType)
	assert.Equal(t, http.MethodPost, p.Method)
	assert.Empty(t, p.Extractors)
	assert.Equal(t, "data", p.ContentMapping.Metadata["root"])
}

func TestGraphQLSourceNotFoundWhenNoEndpointAnswers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	domain := domainOf(t, srv.URL)
	src := &GraphQLSource{Fetcher: testFetcher(srv.URL)}

	result, err := src.Discover(context.Background(), domain)
	require.NoError(t, err)
	assert.False(t, result.Found)
}
