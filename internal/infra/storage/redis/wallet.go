package redis

import (
	"context"
	"fmt"
	"strings"

	"github.com/gabapcia/walletscan/internal/walletregistry"
)

// walletStoragePrefix defines the base key prefix used for storing
// watched wallet addresses in Redis.
const walletStoragePrefix = "wallet"

// walletStorageKey returns the Redis key under which watched wallet addresses
// are stored for the specified blockchain network.
//
// Format: "wallet:storage:{network}"
func walletStorageKey(network string) string {
	return fmt.Sprintf("%s:storage:%s", walletStoragePrefix, network)
}

// RegisterWallet adds the wallet address to the network's watched set.
// Addresses are stored lowercased so membership is case-insensitive.
func (c *client) RegisterWallet(ctx context.Context, id walletregistry.WalletIdentifier) error {
	key := walletStorageKey(id.Network)
	return c.conn.SAdd(ctx, key, strings.ToLower(id.Address)).Err()
}

// UnregisterWallet removes the wallet address from the network's watched set.
func (c *client) UnregisterWallet(ctx context.Context, id walletregistry.WalletIdentifier) error {
	key := walletStorageKey(id.Network)
	return c.conn.SRem(ctx, key, strings.ToLower(id.Address)).Err()
}

// ListWallets returns every watched address for the given network.
func (c *client) ListWallets(ctx context.Context, network string) ([]string, error) {
	key := walletStorageKey(network)
	return c.conn.SMembers(ctx, key).Result()
}

// Compile-time assertion to ensure *client satisfies the walletregistry.WalletStorage interface
var _ walletregistry.WalletStorage = new(client)
