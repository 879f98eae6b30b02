// Package walletregistry manages the set of wallet addresses that have opted
// into transaction monitoring, per blockchain network.
package walletregistry

import "context"

// Service registers, unregisters, and lists watched wallets. Implementations
// validate input and delegate persistence to the configured WalletStorage.
type Service interface {
	// StartWatching registers a wallet for transaction monitoring.
	// It fails with a validation error when the address is malformed.
	StartWatching(ctx context.Context, network, address string) error

	// StopWatching unregisters a wallet from transaction monitoring.
	StopWatching(ctx context.Context, network, address string) error

	// ListWatched returns every wallet currently watched on the network.
	ListWatched(ctx context.Context, network string) ([]string, error)
}

// service is the concrete implementation of the Service interface.
type service struct {
	walletStorage WalletStorage
}

var _ Service = (*service)(nil)

// New creates a walletregistry service backed by the provided WalletStorage.
func New(ws WalletStorage) *service {
	return &service{
		walletStorage: ws,
	}
}
