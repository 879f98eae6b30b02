package cli

import (
	"context"
	"fmt"

	"github.com/gabapcia/walletscan/internal/scanproc"

	"github.com/urfave/cli/v3"
)

// scanCommand returns a CLI command that executes one bounded scanning run
// across every configured chain and exports the collected records.
//
// Usage example:
//
//	walletscan scan --address 0xABC123... --max-transactions 50
//
// Without --address the watched-wallet registry supplies the addresses per
// network. Without explicit block bounds the scan covers a lookback window
// ending at each chain's head.
func scanCommand(sp scanproc.Service) *cli.Command {
	return &cli.Command{
		Name:        "scan",
		Description: "Scans the configured chains for watched-wallet transactions and exports the results.",
		Usage:       "Runs one scan. Block bounds default to a lookback window ending at the chain head.",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:  "address",
				Usage: "Wallet address to scan for (repeatable); defaults to the watched-wallet registry",
			},
			&cli.UintFlag{
				Name:  "start-block",
				Usage: "Lowest block to visit; defaults to end-block minus the lookback window",
			},
			&cli.UintFlag{
				Name:  "end-block",
				Usage: "Highest block to visit; defaults to the chain head",
			},
			&cli.UintFlag{
				Name:  "lookback-blocks",
				Usage: "Window size used when no start block is given (default 1000)",
			},
			&cli.IntFlag{
				Name:  "max-transactions",
				Usage: "Stop after this many matched transactions across all chains (0 = unbounded)",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			report, err := sp.Run(ctx, scanproc.RunParams{
				WalletAddresses: c.StringSlice("address"),
				StartBlock:      uint64(c.Uint("start-block")),
				EndBlock:        uint64(c.Uint("end-block")),
				LookbackBlocks:  uint64(c.Uint("lookback-blocks")),
				MaxTransactions: c.Int("max-transactions"),
			})
			if err != nil {
				return err
			}

			fmt.Printf("run %s: %d records across %d chain(s)\n", report.RunID, report.Records, len(report.ScannedChains))
			for _, network := range report.SkippedChains {
				fmt.Printf("  skipped: %s\n", network)
			}
			for _, path := range report.OutputPaths {
				fmt.Printf("  wrote: %s\n", path)
			}
			return nil
		},
	}
}
