// Package scanproc orchestrates a full scanning run: it connects one session
// per configured chain, scans each chain concurrently, enriches every matched
// transaction into a TransactionRecord, and hands the collected records to
// the configured exporters.
package scanproc

import (
	"context"
	"errors"

	"github.com/gabapcia/walletscan/internal/chainscan"
	"github.com/gabapcia/walletscan/internal/txenrich"
)

var (
	// ErrNoChainsConnected means every configured chain failed its
	// connection probe; there is nothing to scan.
	ErrNoChainsConnected = errors.New("no chains connected")

	// ErrNoWatchedWallets means no valid wallet address was available for
	// any connected chain.
	ErrNoWatchedWallets = errors.New("no watched wallets")
)

// defaultLookbackBlocks bounds the scan window when the caller gives no
// explicit start block.
const defaultLookbackBlocks = 1000

// recordChannelBufferSize decouples per-chain scanners from the collector.
const recordChannelBufferSize = 32

// Chain couples a configured network with its node endpoint.
type Chain struct {
	Network     string
	DisplayName string
	ChainID     int64
	Node        chainscan.Node
}

// Exporter persists a completed run's record sequence and returns the path
// (or locator) it wrote to.
type Exporter interface {
	Export(ctx context.Context, records []txenrich.TransactionRecord) (string, error)
}

// WalletDirectory supplies watched wallet addresses per network when the run
// parameters carry none (typically backed by the wallet registry).
type WalletDirectory interface {
	ListWatched(ctx context.Context, network string) ([]string, error)
}

// AssemblerFactory builds a fresh record assembler for each run. A new
// assembler per run keeps the classification caches run-scoped, so repeated
// runs start cold.
type AssemblerFactory func() *txenrich.Assembler

// RunParams bounds one scanning run.
type RunParams struct {
	// WalletAddresses to scan for on every chain. When empty, the wallet
	// directory is consulted per network.
	WalletAddresses []string

	// StartBlock is the lowest block to visit. Zero means EndBlock minus
	// LookbackBlocks.
	StartBlock uint64

	// EndBlock is the highest block to visit. Zero means the chain head at
	// scan start.
	EndBlock uint64

	// MaxTransactions caps the total record count across all chains.
	// Zero means unbounded.
	MaxTransactions int

	// LookbackBlocks sizes the window when StartBlock is zero.
	// Zero means the default of 1000 blocks.
	LookbackBlocks uint64
}

// Report summarizes a completed run.
type Report struct {
	RunID          string         // Unique id of this run
	Records        int            // Number of records produced
	RecordsByChain map[string]int // Record count per scanned chain
	ScannedChains  []string       // Chains that connected and were scanned
	SkippedChains  []string       // Chains excluded by a failed connection probe
	OutputPaths    []string       // Files written by the exporters
}

// Service runs the scanning pipeline end to end.
type Service interface {
	// Run executes one bounded scan across the configured chains and
	// exports the collected records. Only a total connection failure or an
	// unrecoverable configuration problem ends a run early; block- and
	// transaction-level failures are skipped and logged.
	Run(ctx context.Context, params RunParams) (Report, error)
}

type service struct {
	chains       []Chain
	newAssembler AssemblerFactory
	exporters    []Exporter
	wallets      WalletDirectory
	sessionOpts  []chainscan.Option
}

var _ Service = (*service)(nil)

// config holds optional service parameters.
type config struct {
	exporters   []Exporter
	wallets     WalletDirectory
	sessionOpts []chainscan.Option
}

// Option customizes service construction.
type Option func(*config)

// WithExporters sets the persistence targets for completed runs.
func WithExporters(exporters ...Exporter) Option {
	return func(c *config) {
		c.exporters = append(c.exporters, exporters...)
	}
}

// WithWalletDirectory sets the fallback source of watched addresses.
func WithWalletDirectory(d WalletDirectory) Option {
	return func(c *config) {
		c.wallets = d
	}
}

// WithSessionOptions forwards options to every chain session (pacing delays,
// probe retry policy).
func WithSessionOptions(opts ...chainscan.Option) Option {
	return func(c *config) {
		c.sessionOpts = append(c.sessionOpts, opts...)
	}
}

// New creates the scanproc service for the given chains.
func New(chains []Chain, newAssembler AssemblerFactory, opts ...Option) *service {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	return &service{
		chains:       chains,
		newAssembler: newAssembler,
		exporters:    cfg.exporters,
		wallets:      cfg.wallets,
		sessionOpts:  cfg.sessionOpts,
	}
}
