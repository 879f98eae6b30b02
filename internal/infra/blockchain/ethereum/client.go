// Package ethereum implements the chainscan.Node interface for
// Ethereum-compatible nodes over JSON-RPC, plus the eth_call based token
// metadata probes used by classification.
package ethereum

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/gabapcia/walletscan/internal/chainscan"
	"github.com/gabapcia/walletscan/internal/classify"
	"github.com/gabapcia/walletscan/internal/pkg/transport/jsonrpc"
)

// Client talks to one Ethereum-compatible node endpoint.
type Client struct {
	conn jsonrpc.Client
}

// Compile-time assertion that Client satisfies the scanner's node contract.
var _ chainscan.Node = (*Client)(nil)

// NewClient creates an Ethereum node client using the provided JSON-RPC
// connection.
func NewClient(conn jsonrpc.Client) *Client {
	return &Client{
		conn: conn,
	}
}

// mapErr rewraps transport-level throttling signals into the scanner's
// sentinel so the backoff policy can recognize them.
func mapErr(err error) error {
	if errors.Is(err, jsonrpc.ErrRateLimited) {
		return fmt.Errorf("%w: %v", chainscan.ErrRateLimited, err)
	}
	return err
}

// ErrUnknownNetwork is returned by the Fleet when asked about a network it
// has no registered client for.
var ErrUnknownNetwork = errors.New("unknown network")

// Fleet dispatches token probes to per-network clients. It satisfies
// classify.TokenProber across all connected chains.
type Fleet struct {
	clients map[string]*Client
}

var _ classify.TokenProber = (*Fleet)(nil)

// NewFleet creates an empty fleet.
func NewFleet() *Fleet {
	return &Fleet{
		clients: make(map[string]*Client),
	}
}

// Register adds the client serving the given network.
func (f *Fleet) Register(network string, c *Client) {
	f.clients[network] = c
}

// Client returns the client registered for the network.
func (f *Fleet) Client(network string) (*Client, error) {
	c, ok := f.clients[network]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownNetwork, network)
	}
	return c, nil
}

// TokenSymbol invokes symbol() on the address via the network's client.
func (f *Fleet) TokenSymbol(ctx context.Context, network, address string) (string, error) {
	c, err := f.Client(network)
	if err != nil {
		return "", err
	}
	return c.TokenSymbol(ctx, address)
}

// TokenDecimals invokes decimals() on the address via the network's client.
func (f *Fleet) TokenDecimals(ctx context.Context, network, address string) (uint8, error) {
	c, err := f.Client(network)
	if err != nil {
		return 0, err
	}
	return c.TokenDecimals(ctx, address)
}

// TokenBalance invokes balanceOf(holder) on the token contract via the
// network's client.
func (f *Fleet) TokenBalance(ctx context.Context, network, token, holder string) (*big.Int, error) {
	c, err := f.Client(network)
	if err != nil {
		return nil, err
	}
	return c.TokenBalance(ctx, token, holder)
}
