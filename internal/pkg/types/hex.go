package types

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// Hex represents a "0x"-prefixed hexadecimal quantity as a string (e.g., "0x1a").
// It provides validation, JSON marshaling/unmarshaling, and numeric conversions.
// Values may exceed 64 bits (e.g., wei amounts); use Big for those.
type Hex string

// HexFromString validates the input string and returns a Hex value if valid.
func HexFromString(s string) (Hex, error) {
	if err := validateHex(s); err != nil {
		return "", err
	}
	return Hex(s), nil
}

// HexFromUint64 encodes n as a minimal "0x"-prefixed hex string.
func HexFromUint64(n uint64) Hex {
	return Hex(fmt.Sprintf("0x%x", n))
}

// validateHex checks whether a string is a "0x"-prefixed hexadecimal quantity
// of arbitrary width.
func validateHex(s string) error {
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return fmt.Errorf("hex string must start with 0x")
	}

	if len(s) == 2 {
		return fmt.Errorf("hex string has no digits")
	}

	for _, r := range s[2:] {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return fmt.Errorf("invalid hexadecimal value: %q", s)
		}
	}

	return nil
}

// MarshalJSON encodes the Hex as a JSON string.
func (h Hex) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(h))
}

// UnmarshalJSON parses and validates a JSON-encoded hexadecimal string.
func (h *Hex) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("invalid hex string: %w", err)
	}

	if err := validateHex(s); err != nil {
		return err
	}

	*h = Hex(s)
	return nil
}

// Add returns a new Hex representing the result of adding n to the current value.
// If the original value is invalid, it treats it as zero.
func (h Hex) Add(n int64) Hex {
	sum := h.Int() + n
	return Hex(fmt.Sprintf("0x%x", sum))
}

// Int returns the decoded int64 value from the hexadecimal string.
// If parsing fails or the value does not fit, it returns zero.
func (h Hex) Int() int64 {
	if len(h) < 3 {
		return 0
	}
	v, _ := strconv.ParseInt(string(h)[2:], 16, 64)
	return v
}

// Uint64 returns the decoded uint64 value from the hexadecimal string.
// If parsing fails or the value does not fit, it returns zero.
func (h Hex) Uint64() uint64 {
	if len(h) < 3 {
		return 0
	}
	v, _ := strconv.ParseUint(string(h)[2:], 16, 64)
	return v
}

// Big returns the decoded arbitrary-precision value from the hexadecimal
// string. If parsing fails, it returns zero.
func (h Hex) Big() *big.Int {
	v := new(big.Int)
	if len(h) < 3 {
		return v
	}
	if _, ok := v.SetString(string(h)[2:], 16); !ok {
		return new(big.Int)
	}
	return v
}
