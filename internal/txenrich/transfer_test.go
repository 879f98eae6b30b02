package txenrich

import (
	"context"
	"testing"

	"github.com/gabapcia/walletscan/internal/chainscan"
	"github.com/gabapcia/walletscan/internal/classify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tokenSourceMock resolves token metadata from a static table, defaulting to
// the UNKNOWN fallback like the real classification service does.
type tokenSourceMock struct {
	info map[string]classify.TokenInfo
}

func (m *tokenSourceMock) TokenInfo(ctx context.Context, network, address string) classify.TokenInfo {
	info, ok := m.info[address]
	if !ok {
		return classify.TokenInfo{Symbol: "UNKNOWN", Decimals: 0, Kind: classify.TokenKindUnknown}
	}
	return info
}

const (
	topicFrom = "0x000000000000000000000000aaaa000000000000000000000000000000000001"
	topicTo   = "0x000000000000000000000000bbbb000000000000000000000000000000000002"
)

func transferLog(token string) chainscan.Log {
	return chainscan.Log{
		Address: token,
		Topics:  []string{transferTopic, topicFrom, topicTo},
		Data:    "0x00000000000000000000000000000000000000000000000000000000000f4240", // 1_000_000
	}
}

func TestExtractTransfers(t *testing.T) {
	tokens := &tokenSourceMock{info: map[string]classify.TokenInfo{
		"0xusdc": {Symbol: "USDC", Decimals: 6, Kind: classify.TokenKindERC20},
	}}

	t.Run("decodes a standard transfer", func(t *testing.T) {
		receipt := chainscan.Receipt{Logs: []chainscan.Log{transferLog("0xusdc")}}

		transfers := ExtractTransfers(t.Context(), tokens, "ethereum", receipt)

		require.Len(t, transfers, 1)
		assert.Equal(t, TokenTransfer{
			TokenAddress:  "0xusdc",
			TokenSymbol:   "USDC",
			TokenDecimals: 6,
			From:          "0xaaaa000000000000000000000000000000000001",
			To:            "0xbbbb000000000000000000000000000000000002",
			Amount:        "1",
			Kind:          classify.TokenKindERC20,
		}, transfers[0])
	})

	t.Run("topic hash comparison is case-insensitive", func(t *testing.T) {
		log := transferLog("0xusdc")
		log.Topics[0] = "0xDDF252AD1BE2C89B69C2B068FC378DAA952BA7F163C4A11628F55A4DF523B3EF"
		receipt := chainscan.Receipt{Logs: []chainscan.Log{log}}

		transfers := ExtractTransfers(t.Context(), tokens, "ethereum", receipt)
		assert.Len(t, transfers, 1)
	})

	t.Run("non-transfer events are ignored", func(t *testing.T) {
		receipt := chainscan.Receipt{Logs: []chainscan.Log{{
			Address: "0xusdc",
			Topics:  []string{"0x8c5be1e5ebec7d5bd14f71427d1e84f3dd0314c0f7b2291e5b200ac8c7c3b925", topicFrom, topicTo}, // Approval
			Data:    "0x01",
		}}}

		transfers := ExtractTransfers(t.Context(), tokens, "ethereum", receipt)
		assert.Empty(t, transfers)
	})

	t.Run("four-topic transfer shapes are excluded", func(t *testing.T) {
		receipt := chainscan.Receipt{Logs: []chainscan.Log{{
			Address: "0xnft",
			Topics: []string{
				transferTopic,
				topicFrom,
				topicTo,
				"0x0000000000000000000000000000000000000000000000000000000000000001", // indexed tokenId
			},
			Data: "0x",
		}}}

		transfers := ExtractTransfers(t.Context(), tokens, "ethereum", receipt)
		assert.Empty(t, transfers)
	})

	t.Run("unresolved token falls back to UNKNOWN metadata", func(t *testing.T) {
		receipt := chainscan.Receipt{Logs: []chainscan.Log{transferLog("0xmystery")}}

		transfers := ExtractTransfers(t.Context(), tokens, "ethereum", receipt)

		require.Len(t, transfers, 1)
		assert.Equal(t, "UNKNOWN", transfers[0].TokenSymbol)
		assert.Equal(t, uint8(0), transfers[0].TokenDecimals)
		assert.Equal(t, "1000000", transfers[0].Amount) // raw units, no scaling
	})

	t.Run("empty receipt yields an empty slice", func(t *testing.T) {
		transfers := ExtractTransfers(t.Context(), tokens, "ethereum", chainscan.Receipt{})
		assert.NotNil(t, transfers)
		assert.Empty(t, transfers)
	})

	t.Run("multiple transfers keep log order", func(t *testing.T) {
		receipt := chainscan.Receipt{Logs: []chainscan.Log{
			transferLog("0xusdc"),
			transferLog("0xmystery"),
		}}

		transfers := ExtractTransfers(t.Context(), tokens, "ethereum", receipt)

		require.Len(t, transfers, 2)
		assert.Equal(t, "0xusdc", transfers[0].TokenAddress)
		assert.Equal(t, "0xmystery", transfers[1].TokenAddress)
	})
}

func TestAddressFromTopic(t *testing.T) {
	t.Run("extracts the low 20 bytes", func(t *testing.T) {
		assert.Equal(t, "0xaaaa000000000000000000000000000000000001", addressFromTopic(topicFrom))
	})

	t.Run("normalizes to lower case", func(t *testing.T) {
		topic := "0x000000000000000000000000AAAA000000000000000000000000000000000001"
		assert.Equal(t, "0xaaaa000000000000000000000000000000000001", addressFromTopic(topic))
	})
}

func TestDecodeLogValue(t *testing.T) {
	t.Run("empty payload decodes to zero", func(t *testing.T) {
		assert.Equal(t, 0, decodeLogValue("0x").Sign())
	})

	t.Run("malformed payload decodes to zero", func(t *testing.T) {
		assert.Equal(t, 0, decodeLogValue("0xzz").Sign())
	})
}
