package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocsPageSourceExtractsMethodAndPathFromProse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/docs" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(`<html><body><h2>Get a repository</h2><pre>GET /repos/{owner}/{repo}</pre></body></html>`))
	}))
	defer srv.Close()

	domain := domainOf(t, srv.URL)
	src := &DocsPageSource{Fetcher: testFetcher(srv.URL)}

	result, err := src.Discover(context.Background(), domain)
	require.NoError(t, err)
	require.True(t, result.Found)
	require.Len(t, result.Patterns, 1)
	assert.Equal(t, "GET", result.Patterns[0].Method)
}
