package etherscan

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gabapcia/walletscan/internal/classify"
	transporthttp "github.com/gabapcia/walletscan/internal/pkg/transport/http"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient(transporthttp.NewClient(transporthttp.WithRetryMax(0)), map[string]Endpoint{
		"ethereum": {BaseURL: server.URL, APIKey: "test-key"},
	})
	return client, server
}

func TestClient_ContractSource(t *testing.T) {
	t.Run("verified contract", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			query := r.URL.Query()
			assert.Equal(t, "contract", query.Get("module"))
			assert.Equal(t, "getsourcecode", query.Get("action"))
			assert.Equal(t, "0xrouter", query.Get("address"))
			assert.Equal(t, "test-key", query.Get("apikey"))

			w.Write([]byte(`{"status":"1","message":"OK","result":[{"ContractName":"UniswapV2Router02","SourceCode":"contract UniswapV2Router02 {}"}]}`))
		})

		source, err := client.ContractSource(t.Context(), "ethereum", "0xrouter")

		require.NoError(t, err)
		assert.Equal(t, "UniswapV2Router02", source.Name)
		assert.Contains(t, source.Source, "UniswapV2Router02")
	})

	t.Run("unverified contract", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"status":"0","message":"NOTOK","result":[]}`))
		})

		_, err := client.ContractSource(t.Context(), "ethereum", "0xwallet")
		assert.ErrorIs(t, err, classify.ErrNoVerifiedSource)
	})

	t.Run("verified entry without a contract name", func(t *testing.T) {
		// Etherscan answers status 1 with empty fields for plain accounts.
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"status":"1","message":"OK","result":[{"ContractName":"","SourceCode":""}]}`))
		})

		_, err := client.ContractSource(t.Context(), "ethereum", "0xwallet")
		assert.ErrorIs(t, err, classify.ErrNoVerifiedSource)
	})

	t.Run("unexpected http status", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		})

		_, err := client.ContractSource(t.Context(), "ethereum", "0xrouter")
		require.Error(t, err)
		assert.NotErrorIs(t, err, classify.ErrNoVerifiedSource)
	})

	t.Run("network without an endpoint", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})

		_, err := client.ContractSource(t.Context(), "base", "0xrouter")
		assert.ErrorIs(t, err, ErrUnknownNetwork)
	})
}
