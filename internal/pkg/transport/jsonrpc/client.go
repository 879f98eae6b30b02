// Package jsonrpc provides a generic JSON-RPC 2.0 client over HTTP with
// automatic retries and configurable timeouts, suitable for blockchain nodes
// and other JSON-RPC-compatible services.
//
// Throttling responses ("too many requests") are surfaced immediately as
// ErrRateLimited instead of being retried, so callers can apply their own
// pacing policy.
package jsonrpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
)

var (
	// ErrProviderReturnedError indicates that the remote JSON-RPC server
	// returned an error response.
	ErrProviderReturnedError = errors.New("provider error")

	// ErrRateLimited indicates that the remote server signaled request
	// throttling, either via HTTP 429 or a JSON-RPC throttling error.
	ErrRateLimited = errors.New("provider rate limited")
)

// rateLimitErrorCodes are JSON-RPC error codes used by common providers to
// signal throttling (429 is Infura's, -32005 is the EIP-1474 limit code).
var rateLimitErrorCodes = map[int]struct{}{
	429:    {},
	-32005: {},
}

// response represents a standard JSON-RPC 2.0 response.
type response struct {
	JsonRPC string `json:"jsonrpc"`
	Error   *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Result json.RawMessage `json:"result"`
}

// Err returns an error if the response includes a JSON-RPC error object.
// Throttling errors wrap ErrRateLimited; everything else wraps
// ErrProviderReturnedError.
func (r response) Err() error {
	if r.Error == nil {
		return nil
	}

	base := ErrProviderReturnedError
	if _, ok := rateLimitErrorCodes[r.Error.Code]; ok || strings.Contains(strings.ToLower(r.Error.Message), "too many requests") {
		base = ErrRateLimited
	}

	return fmt.Errorf("%w: [%d] - %s", base, r.Error.Code, r.Error.Message)
}

// Client defines the interface for a generic JSON-RPC client.
type Client interface {
	// Fetch sends a JSON-RPC request with the given method name and parameters.
	// It returns the raw JSON result or an error if the request or response fails.
	Fetch(ctx context.Context, method string, params ...any) (json.RawMessage, error)
}

// client is a reusable JSON-RPC client over HTTP.
type client struct {
	providerEndpoint string
	httpClient       *retryablehttp.Client
}

var _ Client = (*client)(nil)

// Fetch sends a JSON-RPC request to the remote server with the given method
// and parameters. The request id is a UUID string.
func (c *client) Fetch(ctx context.Context, method string, params ...any) (json.RawMessage, error) {
	body, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      uuid.NewString(),
		"method":  method,
		"params":  params,
	})
	if err != nil {
		return nil, err
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.providerEndpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("%w: http status %d", ErrRateLimited, res.StatusCode)
	}

	var data response
	if err := json.NewDecoder(res.Body).Decode(&data); err != nil {
		return nil, err
	}

	return data.Result, data.Err()
}

// noRetryOn429 defers to the default retry policy except for HTTP 429, which
// must reach the caller so its own backoff can escalate.
func noRetryOn429(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if resp != nil && resp.StatusCode == http.StatusTooManyRequests {
		return false, nil
	}
	return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
}

// config holds optional configuration parameters for the JSON-RPC client.
type config struct {
	timeout      time.Duration
	retryWaitMin time.Duration
	retryWaitMax time.Duration
	retryMax     int
}

// Option defines a functional option type used to customize the client configuration.
type Option func(*config)

// NewClient creates a new JSON-RPC client pointing to the specified server
// endpoint. Retry support comes from the retryablehttp package; throttling
// responses are never retried at this layer.
func NewClient(providerEndpoint string, opts ...Option) *client {
	cfg := config{
		timeout:      30 * time.Second,
		retryWaitMin: 1 * time.Second,
		retryWaitMax: 5 * time.Second,
		retryMax:     2,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	httpClient := retryablehttp.NewClient()
	httpClient.Logger = nil
	httpClient.HTTPClient.Timeout = cfg.timeout
	httpClient.RetryWaitMin = cfg.retryWaitMin
	httpClient.RetryWaitMax = cfg.retryWaitMax
	httpClient.RetryMax = cfg.retryMax
	httpClient.CheckRetry = noRetryOn429

	return &client{
		providerEndpoint: providerEndpoint,
		httpClient:       httpClient,
	}
}

// WithTimeout configures the maximum duration for a single HTTP request.
//
// Default: 30 seconds.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		c.timeout = d
	}
}

// WithRetryWaitMin configures the minimum wait duration between retry attempts.
//
// Default: 1 second.
func WithRetryWaitMin(d time.Duration) Option {
	return func(c *config) {
		c.retryWaitMin = d
	}
}

// WithRetryWaitMax configures the maximum wait duration between retry attempts.
//
// Default: 5 seconds.
func WithRetryWaitMax(d time.Duration) Option {
	return func(c *config) {
		c.retryWaitMax = d
	}
}

// WithRetryMax configures the maximum number of retry attempts for failed requests.
//
// Default: 2 retries.
func WithRetryMax(n int) Option {
	return func(c *config) {
		c.retryMax = n
	}
}
