// Package etherscan queries etherscan-family block explorer APIs for verified
// contract source metadata.
package etherscan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/gabapcia/walletscan/internal/classify"

	"github.com/hashicorp/go-retryablehttp"
)

// ErrUnknownNetwork is returned when a lookup targets a network with no
// configured explorer endpoint.
var ErrUnknownNetwork = errors.New("no explorer endpoint for network")

// Endpoint is one explorer API per network.
type Endpoint struct {
	BaseURL string // e.g. https://api.etherscan.io/api
	APIKey  string // optional; explorers heavily throttle keyless requests
}

// Client resolves verified contract sources across the configured explorer
// endpoints.
type Client struct {
	httpClient *retryablehttp.Client
	endpoints  map[string]Endpoint
}

var _ classify.SourceExplorer = (*Client)(nil)

// NewClient creates an explorer client over the given per-network endpoints.
func NewClient(httpClient *retryablehttp.Client, endpoints map[string]Endpoint) *Client {
	return &Client{
		httpClient: httpClient,
		endpoints:  endpoints,
	}
}

type sourceCodeResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Result  []struct {
		ContractName string `json:"ContractName"`
		SourceCode   string `json:"SourceCode"`
	} `json:"result"`
}

// ContractSource fetches the verified source record for the address via the
// explorer's getsourcecode action. Unverified contracts surface as
// classify.ErrNoVerifiedSource.
func (c *Client) ContractSource(ctx context.Context, network, address string) (classify.ContractSource, error) {
	endpoint, ok := c.endpoints[network]
	if !ok {
		return classify.ContractSource{}, fmt.Errorf("%w: %s", ErrUnknownNetwork, network)
	}

	query := url.Values{
		"module":  {"contract"},
		"action":  {"getsourcecode"},
		"address": {address},
	}
	if endpoint.APIKey != "" {
		query.Set("apikey", endpoint.APIKey)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, endpoint.BaseURL+"?"+query.Encode(), nil)
	if err != nil {
		return classify.ContractSource{}, err
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return classify.ContractSource{}, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return classify.ContractSource{}, fmt.Errorf("explorer returned status %d", res.StatusCode)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return classify.ContractSource{}, err
	}

	var payload sourceCodeResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return classify.ContractSource{}, err
	}

	// Etherscan answers status "0" both for errors and for addresses it has
	// no verified source for; either way there is nothing to classify from.
	if payload.Status != "1" || len(payload.Result) == 0 {
		return classify.ContractSource{}, classify.ErrNoVerifiedSource
	}

	record := payload.Result[0]
	if record.ContractName == "" {
		return classify.ContractSource{}, classify.ErrNoVerifiedSource
	}

	return classify.ContractSource{
		Name:   record.ContractName,
		Source: record.SourceCode,
	}, nil
}
