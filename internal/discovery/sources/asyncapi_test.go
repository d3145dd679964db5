package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleAsyncAPIDoc = `
asyncapi: "2.6.0"
servers:
  production:
    url: wss://example.com/ws
    protocol: wss
channels:
  userSignedUp:
    subscribe:
      summary: a user signed up
`

func TestAsyncAPISourceBuildsWebSocketPatternPerChannel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/asyncapi.yaml" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(sampleAsyncAPIDoc))
	}))
	defer srv.Close()

	domain := domainOf(t, srv.URL)
	src := &AsyncAPISource{Fetcher: testFetcher(srv.URL)}

	result, err := src.Discover(context.Background(), domain)
	require.NoError(t, err)
	require.True(t, result.Found)
	require.Len(t, result.Patterns, 1)
	assert.Equal(t, "2.6.0", result.Metadata["asyncapiVersion"])
}
