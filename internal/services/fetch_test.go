package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPImageFetcher_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/sig.png":
			_, _ = w.Write([]byte("signature"))
		case "/big.png":
			_, _ = w.Write(make([]byte, 64))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	fetcher := NewHTTPImageFetcher(32)
	ctx := context.Background()

	data, err := fetcher.Fetch(ctx, server.URL+"/sig.png")
	require.NoError(t, err)
	assert.Equal(t, "signature", string(data))

	_, err = fetcher.Fetch(ctx, server.URL+"/missing.png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 404")

	_, err = fetcher.Fetch(ctx, server.URL+"/big.png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds 32 bytes")
}
