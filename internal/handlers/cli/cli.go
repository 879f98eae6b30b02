// Package cli exposes the walletscan commands: running a scan and managing
// the watched-wallet registry.
package cli

import (
	"context"
	"os"

	"github.com/gabapcia/walletscan/internal/scanproc"
	"github.com/gabapcia/walletscan/internal/walletregistry"

	"github.com/urfave/cli/v3"
)

// Run initializes and executes the walletscan CLI application.
//
// It registers all available commands, including:
//
//   - `scan`: Runs one bounded scan across the configured chains.
//   - `watch`: Registers a wallet for monitoring.
//   - `unwatch`: Unregisters a wallet from monitoring.
//   - `wallets`: Lists the wallets watched on a network.
//   - `balance`: Reads a wallet's ERC-20 token balance from the chain.
//
// Parameters:
//   - ctx: Context used to control the lifecycle of the CLI application.
//   - wr: The walletregistry service implementation used by wallet commands.
//   - sp: The scanproc service implementation used by the scan command.
//   - tr: The token reader used by the balance command.
func Run(ctx context.Context, wr walletregistry.Service, sp scanproc.Service, tr TokenReader) error {
	app := &cli.Command{
		EnableShellCompletion: true,
		Name:                  "walletscan",
		Description:           "Command-line interface for scanning wallet transaction activity across EVM chains.",
		Usage:                 "walletscan [command] [flags]",
		Commands: []*cli.Command{
			scanCommand(sp),
			startWatchingWalletCommand(wr),
			stopWatchingWalletCommand(wr),
			listWatchedWalletsCommand(wr),
			tokenBalanceCommand(tr),
		},
	}

	return app.Run(ctx, os.Args)
}
