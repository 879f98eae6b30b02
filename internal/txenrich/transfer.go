// Package txenrich turns matched transactions into normalized, semantically
// enriched records: decoded token transfers, contract identity, exchange
// attribution, and display-unit amounts.
package txenrich

import (
	"context"
	"math/big"
	"strings"

	"github.com/gabapcia/walletscan/internal/chainscan"
	"github.com/gabapcia/walletscan/internal/classify"
)

// transferTopic is the canonical keccak-256 hash of
// Transfer(address,address,uint256), shared by ERC-20 and ERC-721.
const transferTopic = "0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef"

// transferTopicCount is the topic shape of a standard fungible Transfer:
// signature + indexed from + indexed to. A fourth topic indicates a different
// event shape (e.g., ERC-721 with indexed tokenId) and is excluded.
const transferTopicCount = 3

// TokenTransfer is one decoded Transfer event. Immutable once constructed.
type TokenTransfer struct {
	TokenAddress  string             `json:"token_address"`
	TokenSymbol   string             `json:"token_symbol"`
	TokenDecimals uint8              `json:"token_decimals"`
	From          string             `json:"from"`
	To            string             `json:"to"`
	Amount        string             `json:"amount"` // human-scaled, exact decimal
	Kind          classify.TokenKind `json:"token_type"`
}

// TokenMetadataSource resolves symbol/decimals/kind for a token contract.
// Lookups that fail resolve to the UNKNOWN fallback inside the source and
// never abort transfer extraction.
type TokenMetadataSource interface {
	TokenInfo(ctx context.Context, network, address string) classify.TokenInfo
}

// ExtractTransfers scans the receipt's logs for standard Transfer events and
// decodes them, in log order. Receipts without qualifying logs yield an empty
// slice, not an error.
func ExtractTransfers(ctx context.Context, tokens TokenMetadataSource, network string, receipt chainscan.Receipt) []TokenTransfer {
	transfers := make([]TokenTransfer, 0)

	for _, log := range receipt.Logs {
		if len(log.Topics) != transferTopicCount || !strings.EqualFold(log.Topics[0], transferTopic) {
			continue
		}

		info := tokens.TokenInfo(ctx, network, log.Address)

		transfers = append(transfers, TokenTransfer{
			TokenAddress:  log.Address,
			TokenSymbol:   info.Symbol,
			TokenDecimals: info.Decimals,
			From:          addressFromTopic(log.Topics[1]),
			To:            addressFromTopic(log.Topics[2]),
			Amount:        FormatUnits(decodeLogValue(log.Data), info.Decimals),
			Kind:          info.Kind,
		})
	}

	return transfers
}

// addressFromTopic extracts the low 20 bytes of a 32-byte indexed topic.
func addressFromTopic(topic string) string {
	hexDigits := strings.TrimPrefix(strings.TrimPrefix(topic, "0x"), "0X")
	if len(hexDigits) < 40 {
		return "0x" + hexDigits
	}
	return "0x" + strings.ToLower(hexDigits[len(hexDigits)-40:])
}

// decodeLogValue parses the log's data payload as an unsigned integer.
// Empty or malformed payloads decode to zero.
func decodeLogValue(data string) *big.Int {
	hexDigits := strings.TrimPrefix(strings.TrimPrefix(data, "0x"), "0X")
	if hexDigits == "" {
		return new(big.Int)
	}

	value, ok := new(big.Int).SetString(hexDigits, 16)
	if !ok {
		return new(big.Int)
	}
	return value
}
