package ethereum

import (
	"context"
	"encoding/json"

	"github.com/gabapcia/walletscan/internal/chainscan"
	"github.com/gabapcia/walletscan/internal/pkg/types"
)

type (
	// TransactionResponse represents a raw transaction object returned by
	// the Ethereum JSON-RPC API. Only the fields the pipeline consumes are
	// decoded.
	TransactionResponse struct {
		Hash        string    `json:"hash"`
		From        string    `json:"from"`
		To          string    `json:"to"`
		Value       types.Hex `json:"value"`
		GasPrice    types.Hex `json:"gasPrice"`
		Nonce       types.Hex `json:"nonce"`
		BlockNumber types.Hex `json:"blockNumber"`
	}

	// BlockResponse represents a block returned by eth_getBlockByNumber
	// with full transaction objects.
	BlockResponse struct {
		Hash         string                `json:"hash"`
		Number       types.Hex             `json:"number"`
		Timestamp    types.Hex             `json:"timestamp"`
		Transactions []TransactionResponse `json:"transactions"`
	}

	// LogResponse represents one receipt log entry.
	LogResponse struct {
		Address string   `json:"address"`
		Topics  []string `json:"topics"`
		Data    string   `json:"data"`
	}

	// ReceiptResponse represents a transaction receipt returned by
	// eth_getTransactionReceipt.
	ReceiptResponse struct {
		TransactionHash string        `json:"transactionHash"`
		Status          types.Hex     `json:"status"`
		GasUsed         types.Hex     `json:"gasUsed"`
		Logs            []LogResponse `json:"logs"`
	}
)

// toScannerTransaction converts a TransactionResponse to a chainscan.Transaction.
func (t TransactionResponse) toScannerTransaction() chainscan.Transaction {
	return chainscan.Transaction{
		Hash:        t.Hash,
		From:        t.From,
		To:          t.To,
		Value:       t.Value,
		GasPrice:    t.GasPrice,
		Nonce:       t.Nonce,
		BlockNumber: t.BlockNumber,
	}
}

// toScannerBlock converts a BlockResponse to a chainscan.Block.
func (b BlockResponse) toScannerBlock() chainscan.Block {
	transactions := make([]chainscan.Transaction, len(b.Transactions))
	for i, t := range b.Transactions {
		transactions[i] = t.toScannerTransaction()
	}

	return chainscan.Block{
		Number:       b.Number,
		Hash:         b.Hash,
		Timestamp:    b.Timestamp,
		Transactions: transactions,
	}
}

// toScannerReceipt converts a ReceiptResponse to a chainscan.Receipt.
func (r ReceiptResponse) toScannerReceipt() chainscan.Receipt {
	logs := make([]chainscan.Log, len(r.Logs))
	for i, l := range r.Logs {
		logs[i] = chainscan.Log{
			Address: l.Address,
			Topics:  l.Topics,
			Data:    l.Data,
		}
	}

	return chainscan.Receipt{
		TxHash:  r.TransactionHash,
		Status:  r.Status,
		GasUsed: r.GasUsed,
		Logs:    logs,
	}
}

// LatestBlockNumber fetches the current head height via eth_blockNumber.
func (c *Client) LatestBlockNumber(ctx context.Context) (types.Hex, error) {
	data, err := c.conn.Fetch(ctx, "eth_blockNumber")
	if err != nil {
		return "", mapErr(err)
	}

	var blockNumber types.Hex
	return blockNumber, json.Unmarshal(data, &blockNumber)
}

// BlockByNumber retrieves a full block by height via eth_getBlockByNumber.
func (c *Client) BlockByNumber(ctx context.Context, number types.Hex) (chainscan.Block, error) {
	data, err := c.conn.Fetch(ctx, "eth_getBlockByNumber", number, true)
	if err != nil {
		return chainscan.Block{}, mapErr(err)
	}

	var blockResponse BlockResponse
	if err := json.Unmarshal(data, &blockResponse); err != nil {
		return chainscan.Block{}, err
	}

	return blockResponse.toScannerBlock(), nil
}

// TransactionReceipt retrieves a receipt via eth_getTransactionReceipt.
func (c *Client) TransactionReceipt(ctx context.Context, txHash string) (chainscan.Receipt, error) {
	data, err := c.conn.Fetch(ctx, "eth_getTransactionReceipt", txHash)
	if err != nil {
		return chainscan.Receipt{}, mapErr(err)
	}

	var receiptResponse ReceiptResponse
	if err := json.Unmarshal(data, &receiptResponse); err != nil {
		return chainscan.Receipt{}, err
	}

	return receiptResponse.toScannerReceipt(), nil
}

// TransactionCount returns the latest nonce of an address via
// eth_getTransactionCount.
func (c *Client) TransactionCount(ctx context.Context, address string) (uint64, error) {
	data, err := c.conn.Fetch(ctx, "eth_getTransactionCount", address, "latest")
	if err != nil {
		return 0, mapErr(err)
	}

	var count types.Hex
	if err := json.Unmarshal(data, &count); err != nil {
		return 0, err
	}

	return count.Uint64(), nil
}
