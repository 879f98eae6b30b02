package chainscan

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gabapcia/walletscan/internal/pkg/logger"
	"github.com/gabapcia/walletscan/internal/pkg/types"
	"github.com/gabapcia/walletscan/internal/pkg/x/chflow"
)

// matchChannelBufferSize bounds the scanner's output channel so a slow
// consumer applies backpressure instead of unbounded buffering.
const matchChannelBufferSize = 16

// Match is one transaction touching a watched address, paired with its
// receipt and the timestamp of its containing block.
type Match struct {
	Network        string      // Chain the transaction was found on
	WatchedAddress string      // The configured address the transaction touched
	Transaction    Transaction // The matched transaction
	Receipt        Receipt     // Execution receipt of the transaction
	BlockTime      time.Time   // Timestamp of the containing block (UTC)
}

// ScanRange is an inclusive block range. Scanning visits End first and walks
// down to Start (most recent blocks first).
type ScanRange struct {
	Start uint64
	End   uint64
}

// Scan iterates the block range from highest to lowest, fetching each block
// with its full transactions, and emits a Match for every transaction whose
// sender or recipient equals a watched address (case-insensitively).
//
// Every block and receipt fetch is preceded by the session's adaptive pacing
// delay. A throttling failure doubles the delay (capped), applies a cooldown,
// and skips the failing block; any other fetch failure is logged and skipped.
// A single bad block never aborts the scan.
//
// If maxTransactions > 0, the scan stops immediately once that many matches
// have been emitted, without fetching further blocks. The returned channel is
// closed when the range is exhausted, the bound is reached, or the context is
// canceled. The sequence is not restartable: re-scanning re-issues all
// network calls.
func (s *Session) Scan(ctx context.Context, watched []string, rng ScanRange, maxTransactions int) <-chan Match {
	matchCh := make(chan Match, matchChannelBufferSize)

	go func() {
		defer close(matchCh)
		s.scan(ctx, watched, rng, maxTransactions, matchCh)
	}()

	return matchCh
}

func (s *Session) scan(ctx context.Context, watched []string, rng ScanRange, maxTransactions int, matchCh chan<- Match) {
	if rng.End < rng.Start {
		logger.Warn(ctx, "empty scan range",
			"chain.network", s.network,
			"scan.start", rng.Start,
			"scan.end", rng.End,
		)
		return
	}

	// Lowercased address -> address as configured, so emitted matches carry
	// the operator's original spelling.
	watchedByLower := make(map[string]string, len(watched))
	for _, address := range watched {
		watchedByLower[strings.ToLower(address)] = address
	}

	s.probeWatchedAccounts(ctx, watched)

	emitted := 0
	for height := rng.End; ; height-- {
		block, ok := s.fetchBlock(ctx, types.HexFromUint64(height))
		if ok {
			blockTime := time.Unix(block.Timestamp.Int(), 0).UTC()

			for _, tx := range block.Transactions {
				watchedAddress, matched := matchWatched(watchedByLower, tx)
				if !matched {
					continue
				}

				receipt, ok := s.fetchReceipt(ctx, tx.Hash, height)
				if !ok {
					continue
				}

				match := Match{
					Network:        s.network,
					WatchedAddress: watchedAddress,
					Transaction:    tx,
					Receipt:        receipt,
					BlockTime:      blockTime,
				}
				if sent := chflow.Send(ctx, matchCh, match); !sent {
					return
				}

				emitted++
				if maxTransactions > 0 && emitted >= maxTransactions {
					logger.Info(ctx, "reached maximum transaction count",
						"chain.network", s.network,
						"scan.max_transactions", maxTransactions,
					)
					return
				}
			}
		}

		if height == rng.Start || ctx.Err() != nil {
			return
		}
	}
}

// matchWatched reports whether the transaction touches a watched address.
// When the sender and the recipient are both watched, the sender wins, so a
// self-transfer counts once and is flagged outgoing downstream.
func matchWatched(watchedByLower map[string]string, tx Transaction) (string, bool) {
	if address, ok := watchedByLower[strings.ToLower(tx.From)]; ok {
		return address, true
	}
	if tx.To == "" {
		return "", false
	}
	address, ok := watchedByLower[strings.ToLower(tx.To)]
	return address, ok
}

// fetchBlock retrieves one block, applying the pacing delay first and the
// skip-on-failure policy afterwards. The boolean reports whether the block is
// usable.
func (s *Session) fetchBlock(ctx context.Context, number types.Hex) (Block, bool) {
	if err := s.throttle.Wait(ctx); err != nil {
		return Block{}, false
	}

	block, err := s.node.BlockByNumber(ctx, number)
	if err != nil {
		s.handleFetchFailure(ctx, err, "block fetch failed", "block.height", number.Uint64())
		return Block{}, false
	}

	s.throttle.Success()
	return block, true
}

// fetchReceipt retrieves one transaction receipt under the same pacing and
// skip policy as block fetches.
func (s *Session) fetchReceipt(ctx context.Context, txHash string, height uint64) (Receipt, bool) {
	if err := s.throttle.Wait(ctx); err != nil {
		return Receipt{}, false
	}

	receipt, err := s.node.TransactionReceipt(ctx, txHash)
	if err != nil {
		s.handleFetchFailure(ctx, err, "receipt fetch failed", "block.height", height, "tx.hash", txHash)
		return Receipt{}, false
	}

	s.throttle.Success()
	return receipt, true
}

// handleFetchFailure logs a skipped fetch and escalates the pacing delay when
// the failure is a throttling signal. Skips are always observable so
// operators can reconcile gaps in scanned ranges.
func (s *Session) handleFetchFailure(ctx context.Context, err error, msg string, keysAndValues ...any) {
	fields := append([]any{"chain.network", s.network, "error", err}, keysAndValues...)

	if errors.Is(err, ErrRateLimited) {
		logger.Warn(ctx, msg+": rate limited, escalating delay",
			append(fields, "throttle.delay", s.throttle.CurrentDelay().String())...)
		_ = s.throttle.Throttled(ctx)
		return
	}

	logger.Error(ctx, msg+": skipping", fields...)
}

// probeWatchedAccounts logs the latest nonce of each watched address at scan
// start, which gives operators a quick sanity check of outbound activity.
func (s *Session) probeWatchedAccounts(ctx context.Context, watched []string) {
	for _, address := range watched {
		count, err := s.node.TransactionCount(ctx, address)
		if err != nil {
			logger.Debug(ctx, "account nonce probe failed",
				"chain.network", s.network,
				"wallet.address", address,
				"error", err,
			)
			continue
		}

		logger.Info(ctx, "watched account",
			"chain.network", s.network,
			"wallet.address", address,
			"wallet.sent_transactions", count,
		)
	}
}
