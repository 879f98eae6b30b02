package ethereum

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"
)

// ERC-20 read-function selectors (first 4 bytes of the keccak-256 hash of the
// canonical signature).
const (
	selectorSymbol    = "0x95d89b41" // symbol()
	selectorDecimals  = "0x313ce567" // decimals()
	selectorBalanceOf = "0x70a08231" // balanceOf(address)
)

// ErrEmptyCallResult means the contract returned no data for the call,
// typically because the address is not a contract or does not implement the
// probed function.
var ErrEmptyCallResult = errors.New("empty call result")

// call performs an eth_call against the address with the given calldata and
// returns the raw hex-encoded return value.
func (c *Client) call(ctx context.Context, address, calldata string) (string, error) {
	params := map[string]string{
		"to":   address,
		"data": calldata,
	}

	data, err := c.conn.Fetch(ctx, "eth_call", params, "latest")
	if err != nil {
		return "", mapErr(err)
	}

	var result string
	if err := json.Unmarshal(data, &result); err != nil {
		return "", err
	}

	if result == "" || result == "0x" {
		return "", ErrEmptyCallResult
	}
	return result, nil
}

// TokenSymbol reads the ERC-20 symbol() of the contract at address.
func (c *Client) TokenSymbol(ctx context.Context, address string) (string, error) {
	result, err := c.call(ctx, address, selectorSymbol)
	if err != nil {
		return "", err
	}

	return decodeABIString(result)
}

// TokenDecimals reads the ERC-20 decimals() of the contract at address.
func (c *Client) TokenDecimals(ctx context.Context, address string) (uint8, error) {
	result, err := c.call(ctx, address, selectorDecimals)
	if err != nil {
		return 0, err
	}

	value, err := decodeABIUint(result)
	if err != nil {
		return 0, err
	}
	if !value.IsUint64() || value.Uint64() > 255 {
		return 0, fmt.Errorf("decimals out of range: %s", value)
	}

	return uint8(value.Uint64()), nil
}

// TokenBalance reads balanceOf(holder) on the token contract at address.
func (c *Client) TokenBalance(ctx context.Context, address, holder string) (*big.Int, error) {
	calldata := selectorBalanceOf + leftPadAddress(holder)

	result, err := c.call(ctx, address, calldata)
	if err != nil {
		return nil, err
	}

	return decodeABIUint(result)
}

// leftPadAddress encodes an address as a 32-byte ABI word (without the 0x
// prefix).
func leftPadAddress(address string) string {
	trimmed := strings.ToLower(strings.TrimPrefix(strings.TrimPrefix(address, "0x"), "0X"))
	if len(trimmed) >= 64 {
		return trimmed
	}
	return strings.Repeat("0", 64-len(trimmed)) + trimmed
}

// decodeABIUint parses a returned ABI word as an unsigned integer.
func decodeABIUint(raw string) (*big.Int, error) {
	hexDigits := strings.TrimPrefix(raw, "0x")

	value, ok := new(big.Int).SetString(hexDigits, 16)
	if !ok {
		return nil, fmt.Errorf("malformed uint return: %q", raw)
	}
	return value, nil
}

// decodeABIString parses a returned ABI value as a string. Standard dynamic
// strings (offset word, length word, bytes) are handled, as is the legacy
// bytes32 encoding some older tokens use for symbol().
func decodeABIString(raw string) (string, error) {
	payload, err := hex.DecodeString(strings.TrimPrefix(raw, "0x"))
	if err != nil {
		return "", fmt.Errorf("malformed string return: %w", err)
	}

	// Legacy bytes32 symbol: a single right-padded word.
	if len(payload) == 32 {
		return string(bytes.TrimRight(payload, "\x00")), nil
	}

	if len(payload) < 64 {
		return "", fmt.Errorf("string return too short: %d bytes", len(payload))
	}

	length := new(big.Int).SetBytes(payload[32:64])
	if !length.IsUint64() || 64+length.Uint64() > uint64(len(payload)) {
		return "", fmt.Errorf("string length out of bounds: %s", length)
	}

	return string(payload[64 : 64+length.Uint64()]), nil
}
