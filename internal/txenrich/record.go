package txenrich

import (
	"context"
	"strings"
	"time"

	"github.com/gabapcia/walletscan/internal/chainscan"
	"github.com/gabapcia/walletscan/internal/classify"
)

// CategoryTokenTransfer labels any transaction whose receipt carried at least
// one decoded Transfer event. It takes precedence over the contract-derived
// category: contract interactions that also move tokens are always labeled as
// transfers.
const CategoryTokenTransfer = "token_transfer"

// TransactionRecord is the pipeline's output unit, immutable after assembly.
type TransactionRecord struct {
	Chain          string          `json:"chain"`
	Hash           string          `json:"hash"`
	From           string          `json:"from"`
	To             string          `json:"to"`
	Value          string          `json:"value"`     // native amount in display units, exact decimal
	GasPrice       string          `json:"gas_price"` // gas price in gwei, exact decimal
	GasUsed        uint64          `json:"gas_used"`
	BlockNumber    uint64          `json:"block_number"`
	Nonce          uint64          `json:"nonce"`
	Timestamp      time.Time       `json:"timestamp"`   // block time, not wall-clock
	IsOutgoing     bool            `json:"is_outgoing"` // true iff From matches the watched address
	Status         uint64          `json:"status"`      // 1 success, 0 failure
	TokenTransfers []TokenTransfer `json:"token_transfers,omitempty"`
	Category       string          `json:"transaction_type"`
	CexInteraction bool            `json:"cex_interaction"`
	CexName        string          `json:"cex_name"`
	ContractName   string          `json:"contract_name,omitempty"`
	ContractType   string          `json:"contract_type,omitempty"`
}

// ContractClassifier resolves the identity of a contract address.
type ContractClassifier interface {
	Classify(ctx context.Context, network, address string) classify.ContractInfo
}

// ExchangeResolver checks an address against the known-CEX tables.
type ExchangeResolver interface {
	ResolveExchange(network, address string) (isCex bool, exchangeName string)
}

// Assembler combines scan, decode, and classification results into
// TransactionRecords. It is a pure combination step with no state of its own;
// all memoization lives behind the injected interfaces.
type Assembler struct {
	contracts ContractClassifier
	tokens    TokenMetadataSource
	exchanges ExchangeResolver
}

// NewAssembler wires the enrichment dependencies. A *classify.Service
// satisfies all three interfaces.
func NewAssembler(contracts ContractClassifier, tokens TokenMetadataSource, exchanges ExchangeResolver) *Assembler {
	return &Assembler{
		contracts: contracts,
		tokens:    tokens,
		exchanges: exchanges,
	}
}

// Assemble builds the output record for one matched transaction.
func (a *Assembler) Assemble(ctx context.Context, match chainscan.Match) TransactionRecord {
	var (
		tx      = match.Transaction
		receipt = match.Receipt
	)

	record := TransactionRecord{
		Chain:       match.Network,
		Hash:        tx.Hash,
		From:        tx.From,
		To:          tx.To,
		Value:       weiToEther(tx.Value.Big()),
		GasPrice:    weiToGwei(tx.GasPrice.Big()),
		GasUsed:     receipt.GasUsed.Uint64(),
		BlockNumber: tx.BlockNumber.Uint64(),
		Nonce:       tx.Nonce.Uint64(),
		Timestamp:   match.BlockTime,
		IsOutgoing:  strings.EqualFold(tx.From, match.WatchedAddress),
		Status:      receiptStatus(receipt),
	}

	record.TokenTransfers = ExtractTransfers(ctx, a.tokens, match.Network, receipt)

	var contract classify.ContractInfo
	if tx.To != "" {
		contract = a.contracts.Classify(ctx, match.Network, tx.To)
		record.ContractName = contract.Name
		record.ContractType = string(contract.Category)
	}

	record.Category = deriveCategory(record.TokenTransfers, contract)

	record.CexInteraction, record.CexName = a.resolveExchange(match.Network, tx)

	return record
}

// deriveCategory applies the category precedence: token transfers win over
// the contract's own category; only real categories (not token/unknown)
// propagate, lower-cased.
func deriveCategory(transfers []TokenTransfer, contract classify.ContractInfo) string {
	if len(transfers) > 0 {
		return CategoryTokenTransfer
	}

	switch contract.Category {
	case "", classify.CategoryToken, classify.CategoryUnknown:
		return string(classify.CategoryUnknown)
	default:
		return strings.ToLower(string(contract.Category))
	}
}

// resolveExchange checks both endpoints against the CEX tables; when both
// match, the sender's exchange name wins.
func (a *Assembler) resolveExchange(network string, tx chainscan.Transaction) (bool, string) {
	isCexFrom, nameFrom := a.exchanges.ResolveExchange(network, tx.From)
	if isCexFrom {
		return true, nameFrom
	}

	if tx.To == "" {
		return false, ""
	}

	return a.exchanges.ResolveExchange(network, tx.To)
}

// receiptStatus decodes the receipt's status field. Receipts predating the
// Byzantium fork carry no status; treat those as success.
func receiptStatus(receipt chainscan.Receipt) uint64 {
	if receipt.Status == "" {
		return 1
	}
	return receipt.Status.Uint64()
}
