package txenrich

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatUnits(t *testing.T) {
	bigFromString := func(s string) *big.Int {
		v, _ := new(big.Int).SetString(s, 10)
		return v
	}

	t.Run("nil amount", func(t *testing.T) {
		assert.Equal(t, "0", FormatUnits(nil, 18))
	})

	t.Run("zero decimals returns the raw digits", func(t *testing.T) {
		assert.Equal(t, "12345", FormatUnits(big.NewInt(12345), 0))
	})

	t.Run("exactly one whole unit", func(t *testing.T) {
		assert.Equal(t, "1", FormatUnits(bigFromString("1000000000000000000"), 18))
	})

	t.Run("fraction smaller than one", func(t *testing.T) {
		assert.Equal(t, "0.5", FormatUnits(bigFromString("500000000000000000"), 18))
	})

	t.Run("tiny fraction keeps full precision", func(t *testing.T) {
		assert.Equal(t, "0.000000000000000001", FormatUnits(big.NewInt(1), 18))
	})

	t.Run("mixed integer and fraction", func(t *testing.T) {
		assert.Equal(t, "1234.5", FormatUnits(bigFromString("1234500000"), 6))
	})

	t.Run("trailing zeros are trimmed", func(t *testing.T) {
		assert.Equal(t, "2.25", FormatUnits(bigFromString("2250000000000000000"), 18))
	})

	t.Run("zero value", func(t *testing.T) {
		assert.Equal(t, "0", FormatUnits(big.NewInt(0), 18))
	})

	t.Run("value beyond float64 precision survives exactly", func(t *testing.T) {
		// 123456789.123456789123456789 ether cannot round-trip through float64.
		raw := bigFromString("123456789123456789123456789")
		assert.Equal(t, "123456789.123456789123456789", FormatUnits(raw, 18))
	})
}

func TestWeiConversions(t *testing.T) {
	t.Run("wei to ether", func(t *testing.T) {
		wei, _ := new(big.Int).SetString("1500000000000000000", 10)
		assert.Equal(t, "1.5", weiToEther(wei))
	})

	t.Run("wei to gwei", func(t *testing.T) {
		assert.Equal(t, "25", weiToGwei(big.NewInt(25000000000)))
	})
}
