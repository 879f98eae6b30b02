package types

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHexFromString(t *testing.T) {
	t.Run("valid lowercase hex", func(t *testing.T) {
		h, err := HexFromString("0x1a")
		require.NoError(t, err)
		assert.Equal(t, Hex("0x1a"), h)
	})

	t.Run("valid uppercase hex", func(t *testing.T) {
		h, err := HexFromString("0X2F")
		require.NoError(t, err)
		assert.Equal(t, Hex("0X2F"), h)
	})

	t.Run("wider than 64 bits", func(t *testing.T) {
		// wei amounts routinely exceed uint64
		h, err := HexFromString("0xde0b6b3a76400000de0b6b3a7640000")
		require.NoError(t, err)
		assert.NotEmpty(t, h)
	})

	t.Run("missing 0x prefix", func(t *testing.T) {
		_, err := HexFromString("1a")
		require.Error(t, err)
	})

	t.Run("no digits", func(t *testing.T) {
		_, err := HexFromString("0x")
		require.Error(t, err)
	})

	t.Run("invalid hex characters", func(t *testing.T) {
		_, err := HexFromString("0xZZZ")
		require.Error(t, err)
	})
}

func TestHexFromUint64(t *testing.T) {
	t.Run("zero", func(t *testing.T) {
		assert.Equal(t, Hex("0x0"), HexFromUint64(0))
	})

	t.Run("round trips", func(t *testing.T) {
		assert.Equal(t, uint64(1234567), HexFromUint64(1234567).Uint64())
	})
}

func TestHex_UnmarshalJSON(t *testing.T) {
	t.Run("valid hex", func(t *testing.T) {
		var h Hex
		err := json.Unmarshal([]byte(`"0x1a"`), &h)
		require.NoError(t, err)
		assert.Equal(t, Hex("0x1a"), h)
	})

	t.Run("invalid hex characters", func(t *testing.T) {
		var h Hex
		err := json.Unmarshal([]byte(`"0xZZZ"`), &h)
		require.Error(t, err)
	})

	t.Run("not a string", func(t *testing.T) {
		var h Hex
		err := json.Unmarshal([]byte(`42`), &h)
		require.Error(t, err)
	})
}

func TestHex_MarshalJSON(t *testing.T) {
	t.Run("encodes as JSON string", func(t *testing.T) {
		data, err := json.Marshal(Hex("0x1a"))
		require.NoError(t, err)
		assert.JSONEq(t, `"0x1a"`, string(data))
	})
}

func TestHex_Uint64(t *testing.T) {
	t.Run("0x0a should be 10", func(t *testing.T) {
		assert.Equal(t, uint64(10), Hex("0x0a").Uint64())
	})

	t.Run("0xff should be 255", func(t *testing.T) {
		assert.Equal(t, uint64(255), Hex("0xff").Uint64())
	})

	t.Run("empty value is zero", func(t *testing.T) {
		assert.Equal(t, uint64(0), Hex("").Uint64())
	})
}

func TestHex_Int(t *testing.T) {
	t.Run("0x10 should be 16", func(t *testing.T) {
		assert.Equal(t, int64(16), Hex("0x10").Int())
	})

	t.Run("empty value is zero", func(t *testing.T) {
		assert.Equal(t, int64(0), Hex("").Int())
	})
}

func TestHex_Add(t *testing.T) {
	t.Run("increments the value", func(t *testing.T) {
		assert.Equal(t, Hex("0x10"), Hex("0xf").Add(1))
	})
}

func TestHex_Big(t *testing.T) {
	t.Run("small value", func(t *testing.T) {
		assert.Equal(t, big.NewInt(255), Hex("0xff").Big())
	})

	t.Run("value beyond uint64", func(t *testing.T) {
		// 2 ether in wei: 2 * 10^18
		expected, ok := new(big.Int).SetString("2000000000000000000", 10)
		require.True(t, ok)

		assert.Equal(t, expected, Hex("0x1bc16d674ec80000").Big())
	})

	t.Run("empty value is zero", func(t *testing.T) {
		assert.Equal(t, 0, Hex("").Big().Sign())
	})
}
