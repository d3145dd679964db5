package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinksSourceParsesRFC8288LinkHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Link", `<https://api.example.com/v1>; rel="api", <https://example.com/next>; rel="next"`)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	domain := domainOf(t, srv.URL)
	src := &LinksSource{Fetcher: testFetcher(srv.URL)}

	result, err := src.Discover(context.Background(), domain)
	require.NoError(t, err)
	require.True(t, result.Found)
	require.Len(t, result.Patterns, 2)
}
