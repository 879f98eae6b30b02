package txenrich

import (
	"math/big"
	"strings"
)

const (
	// etherDecimals scales wei to the native display unit.
	etherDecimals = 18

	// gweiDecimals scales wei to the gas-price display unit.
	gweiDecimals = 9
)

// FormatUnits divides a raw unsigned integer amount by 10^decimals and
// renders the exact decimal result as a string, with no trailing zeros.
// Exactness matters: records round-trip through CSV/SQLite and must preserve
// full precision, which float64 cannot.
func FormatUnits(raw *big.Int, decimals uint8) string {
	if raw == nil {
		return "0"
	}

	digits := raw.String()
	if decimals == 0 {
		return digits
	}

	d := int(decimals)
	if len(digits) <= d {
		digits = strings.Repeat("0", d-len(digits)+1) + digits
	}

	var (
		intPart  = digits[:len(digits)-d]
		fracPart = strings.TrimRight(digits[len(digits)-d:], "0")
	)

	if fracPart == "" {
		return intPart
	}
	return intPart + "." + fracPart
}

// weiToEther renders a wei amount in the chain's native display unit.
func weiToEther(wei *big.Int) string {
	return FormatUnits(wei, etherDecimals)
}

// weiToGwei renders a wei gas price in gwei.
func weiToGwei(wei *big.Int) string {
	return FormatUnits(wei, gweiDecimals)
}
