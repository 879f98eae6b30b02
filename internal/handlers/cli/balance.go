package cli

import (
	"context"
	"fmt"
	"math/big"

	"github.com/gabapcia/walletscan/internal/txenrich"

	"github.com/urfave/cli/v3"
)

// TokenReader reads ERC-20 state directly from a chain node.
type TokenReader interface {
	// TokenSymbol invokes symbol() on the token contract.
	TokenSymbol(ctx context.Context, network, address string) (string, error)

	// TokenDecimals invokes decimals() on the token contract.
	TokenDecimals(ctx context.Context, network, address string) (uint8, error)

	// TokenBalance invokes balanceOf(holder) on the token contract.
	TokenBalance(ctx context.Context, network, token, holder string) (*big.Int, error)
}

// tokenBalanceCommand returns a CLI command that reads a wallet's balance of
// an ERC-20 token straight from the chain, scaled to display units.
//
// Usage example:
//
//	walletscan balance --network ethereum --token 0xA0b869... --address 0xABC123...
func tokenBalanceCommand(tr TokenReader) *cli.Command {
	return &cli.Command{
		Name:        "balance",
		Description: "Reads a wallet's ERC-20 token balance from the chain.",
		Usage:       "Prints the token balance of a wallet address. Must provide network, token, and address.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "network",
				Usage:    "Blockchain network name (e.g., ethereum, polygon)",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "token",
				Usage:    "Token contract address",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "address",
				Usage:    "Wallet address holding the token",
				Required: true,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			var (
				network = c.String("network")
				token   = c.String("token")
				holder  = c.String("address")
			)

			balance, err := tr.TokenBalance(ctx, network, token, holder)
			if err != nil {
				return err
			}

			// Metadata probes are best-effort: a raw balance is still
			// useful when the token answers balanceOf only.
			symbol, err := tr.TokenSymbol(ctx, network, token)
			if err != nil {
				symbol = "UNKNOWN"
			}

			var decimals uint8
			if d, err := tr.TokenDecimals(ctx, network, token); err == nil {
				decimals = d
			}

			fmt.Printf("%s %s\n", txenrich.FormatUnits(balance, decimals), symbol)
			return nil
		},
	}
}
