package walletregistry

import (
	"context"

	"github.com/gabapcia/walletscan/internal/pkg/validator"
)

// WalletIdentifier uniquely identifies a watched wallet by blockchain network
// and address. Addresses must be well-formed 0x-prefixed EVM addresses;
// validation happens on construction.
type WalletIdentifier struct {
	Network string `validate:"required"`          // Blockchain network (e.g., "ethereum")
	Address string `validate:"required,eth_addr"` // EVM wallet address to be watched
}

// WalletStorage is the persistence interface for the set of watched wallets.
type WalletStorage interface {
	// RegisterWallet adds the wallet to the watched set. Idempotent.
	RegisterWallet(ctx context.Context, id WalletIdentifier) error

	// UnregisterWallet removes the wallet from the watched set. Idempotent.
	UnregisterWallet(ctx context.Context, id WalletIdentifier) error

	// ListWallets returns every watched address for the given network.
	ListWallets(ctx context.Context, network string) ([]string, error)
}

// buildWalletIdentifier constructs and validates a WalletIdentifier,
// enforcing correct input before persistence.
func buildWalletIdentifier(network, address string) (WalletIdentifier, error) {
	id := WalletIdentifier{
		Network: network,
		Address: address,
	}

	return id, validator.Validate(id)
}

// StartWatching registers a wallet for monitoring on the given network.
func (s *service) StartWatching(ctx context.Context, network, address string) error {
	id, err := buildWalletIdentifier(network, address)
	if err != nil {
		return err
	}

	return s.walletStorage.RegisterWallet(ctx, id)
}

// StopWatching unregisters a wallet from monitoring on the given network.
func (s *service) StopWatching(ctx context.Context, network, address string) error {
	id, err := buildWalletIdentifier(network, address)
	if err != nil {
		return err
	}

	return s.walletStorage.UnregisterWallet(ctx, id)
}

// ListWatched returns every wallet currently watched on the given network.
func (s *service) ListWatched(ctx context.Context, network string) ([]string, error) {
	return s.walletStorage.ListWallets(ctx, network)
}
