// Package chainscan implements rate-adaptive scanning of a block range on an
// EVM-compatible chain, yielding the transactions that touch a set of watched
// wallet addresses together with their receipts.
package chainscan

import (
	"context"
	"errors"

	"github.com/gabapcia/walletscan/internal/pkg/types"
)

var (
	// ErrConnectionFailed indicates the node did not answer the liveness
	// probe at connect time. The chain is excluded from the run.
	ErrConnectionFailed = errors.New("blockchain connection failed")

	// ErrRateLimited indicates the node signaled request throttling.
	// Node implementations must wrap throttling failures with this sentinel
	// so the scanner can escalate its pacing delay.
	ErrRateLimited = errors.New("blockchain rate limited")
)

type (
	// Transaction represents a transaction as returned inside a full block.
	Transaction struct {
		Hash        string    // Unique transaction hash identifier
		From        string    // Sender address
		To          string    // Recipient address; empty for contract creations
		Value       types.Hex // Transferred native amount in wei
		GasPrice    types.Hex // Effective gas price in wei
		Nonce       types.Hex // Sender account nonce
		BlockNumber types.Hex // Height of the containing block
	}

	// Log is a single receipt log entry.
	Log struct {
		Address string   // Emitting contract address
		Topics  []string // Indexed topics; topic 0 is the event signature
		Data    string   // Hex-encoded unindexed payload
	}

	// Receipt carries the execution outcome of a transaction.
	Receipt struct {
		TxHash  string    // Hash of the transaction this receipt belongs to
		Status  types.Hex // 0x1 success, 0x0 failure; empty pre-Byzantium
		GasUsed types.Hex // Gas consumed by the execution
		Logs    []Log     // Emitted logs, in execution order
	}

	// Block is a block with its full transaction objects.
	Block struct {
		Number       types.Hex     // Block height
		Hash         string        // Block hash
		Timestamp    types.Hex     // Unix timestamp of the block
		Transactions []Transaction // Transactions contained in the block
	}
)

// Node is the request/response interface a chain endpoint must provide.
// All methods may fail with transport or provider errors; throttling failures
// are wrapped with ErrRateLimited.
type Node interface {
	// LatestBlockNumber returns the current chain head height.
	LatestBlockNumber(ctx context.Context) (types.Hex, error)

	// BlockByNumber returns the block at the given height with full
	// transaction objects.
	BlockByNumber(ctx context.Context, number types.Hex) (Block, error)

	// TransactionReceipt returns the receipt for the given transaction hash.
	TransactionReceipt(ctx context.Context, txHash string) (Receipt, error)

	// TransactionCount returns the number of transactions ever sent from the
	// given address (its latest nonce).
	TransactionCount(ctx context.Context, address string) (uint64, error)
}
