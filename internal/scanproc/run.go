package scanproc

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/gabapcia/walletscan/internal/chainscan"
	"github.com/gabapcia/walletscan/internal/pkg/logger"
	"github.com/gabapcia/walletscan/internal/pkg/types"
	"github.com/gabapcia/walletscan/internal/pkg/validator"
	"github.com/gabapcia/walletscan/internal/pkg/x/chflow"
	"github.com/gabapcia/walletscan/internal/txenrich"

	"github.com/google/uuid"
)

// Run implements the Service interface.
func (s *service) Run(ctx context.Context, params RunParams) (Report, error) {
	report := Report{
		RunID: uuid.Must(uuid.NewV7()).String(),
	}

	if params.LookbackBlocks == 0 {
		params.LookbackBlocks = defaultLookbackBlocks
	}

	sessions := s.connectSessions(ctx, &report)
	if len(sessions) == 0 {
		return report, ErrNoChainsConnected
	}

	records, err := s.scanAll(ctx, sessions, params)
	if err != nil {
		return report, err
	}
	report.Records = len(records)

	recordsByChain := types.NewDefaultMap[string, int](func() int { return 0 })
	for _, record := range records {
		recordsByChain.Set(record.Chain, recordsByChain.Get(record.Chain)+1)
	}
	report.RecordsByChain = recordsByChain.ToMap()

	for _, exporter := range s.exporters {
		path, err := exporter.Export(ctx, records)
		if err != nil {
			logger.Error(ctx, "export failed", "run.id", report.RunID, "error", err)
			continue
		}
		report.OutputPaths = append(report.OutputPaths, path)
	}

	logger.Info(ctx, "scan run finished",
		"run.id", report.RunID,
		"run.records", report.Records,
		"run.records_by_chain", report.RecordsByChain,
		"run.chains", report.ScannedChains,
		"run.outputs", report.OutputPaths,
	)

	return report, nil
}

// connectSessions probes every configured chain. Chains that fail the probe
// are logged and excluded; scanning continues on the rest.
func (s *service) connectSessions(ctx context.Context, report *Report) []*chainscan.Session {
	sessions := make([]*chainscan.Session, 0, len(s.chains))

	for _, chain := range s.chains {
		session, err := chainscan.Connect(ctx, chain.Network, chain.DisplayName, chain.ChainID, chain.Node, s.sessionOpts...)
		if err != nil {
			logger.Error(ctx, "chain excluded from run",
				"chain.network", chain.Network,
				"error", err,
			)
			report.SkippedChains = append(report.SkippedChains, chain.Network)
			continue
		}

		sessions = append(sessions, session)
		report.ScannedChains = append(report.ScannedChains, chain.Network)
	}

	return sessions
}

// scanAll scans every connected chain concurrently and collects the enriched
// records into a single ordered sequence. Each chain runs serialized requests
// against its own endpoint; chains share nothing but the assembler's
// per-run caches, which serialize per key.
func (s *service) scanAll(ctx context.Context, sessions []*chainscan.Session, params RunParams) ([]txenrich.TransactionRecord, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	assembler := s.newAssembler()

	var (
		wg       sync.WaitGroup
		recordCh = make(chan txenrich.TransactionRecord, recordChannelBufferSize)
		scanned  int
	)

	for _, session := range sessions {
		watched, err := s.watchedWallets(ctx, session.Network(), params.WalletAddresses)
		if err != nil {
			logger.Error(ctx, "watched wallet lookup failed",
				"chain.network", session.Network(),
				"error", err,
			)
			continue
		}
		if len(watched) == 0 {
			logger.Warn(ctx, "no valid watched wallets for chain", "chain.network", session.Network())
			continue
		}

		rng, err := s.resolveRange(ctx, session, params)
		if err != nil {
			logger.Error(ctx, "block range resolution failed",
				"chain.network", session.Network(),
				"error", err,
			)
			continue
		}

		scanned++
		wg.Add(1)
		go func(session *chainscan.Session) {
			defer wg.Done()

			for match := range session.Scan(ctx, watched, rng, params.MaxTransactions) {
				record := assembler.Assemble(ctx, match)
				if ok := chflow.Send(ctx, recordCh, record); !ok {
					return
				}
			}
		}(session)
	}

	if scanned == 0 {
		return nil, ErrNoWatchedWallets
	}

	go func() {
		wg.Wait()
		close(recordCh)
	}()

	records := make([]txenrich.TransactionRecord, 0)
	for record := range recordCh {
		records = append(records, record)

		// The per-chain scanners also honor the bound, but the global cap
		// spans chains; cancel the remaining scans once it is reached.
		if params.MaxTransactions > 0 && len(records) >= params.MaxTransactions {
			cancel()
			break
		}
	}

	// Drain so scanner goroutines observe the cancellation and exit.
	for range recordCh {
	}

	return records, nil
}

// watchedWallets resolves and validates the address list for a chain,
// preferring the run parameters and falling back to the wallet directory.
// Malformed addresses are skipped with a warning; the rest still scan.
func (s *service) watchedWallets(ctx context.Context, network string, configured []string) ([]string, error) {
	addresses := configured
	if len(addresses) == 0 && s.wallets != nil {
		listed, err := s.wallets.ListWatched(ctx, network)
		if err != nil {
			return nil, err
		}
		addresses = listed
	}

	var (
		valid = make([]string, 0, len(addresses))
		seen  = types.NewSet[string]()
	)
	for _, address := range addresses {
		if seen.Has(strings.ToLower(address)) {
			continue
		}
		if err := validator.ValidateVar(address, "required,eth_addr"); err != nil {
			logger.Warn(ctx, "invalid wallet address skipped",
				"chain.network", network,
				"wallet.address", address,
			)
			continue
		}

		seen.Add(strings.ToLower(address))
		valid = append(valid, address)
	}

	return valid, nil
}

// resolveRange fills in the run's block bounds: the chain head when no end
// block is given, and a lookback window when no start block is given.
func (s *service) resolveRange(ctx context.Context, session *chainscan.Session, params RunParams) (chainscan.ScanRange, error) {
	end := params.EndBlock
	if end == 0 {
		head, err := session.LatestBlockNumber(ctx)
		if err != nil {
			return chainscan.ScanRange{}, err
		}
		end = head.Uint64()
	}

	start := params.StartBlock
	if start == 0 && end > params.LookbackBlocks {
		start = end - params.LookbackBlocks
	}

	if start > end {
		return chainscan.ScanRange{}, errors.New("start block beyond end block")
	}

	return chainscan.ScanRange{Start: start, End: end}, nil
}
