// Package classify resolves semantic identity for blockchain addresses:
// contract name and category (explorer-first, with an on-chain ERC-20 probe
// fallback), token metadata, and centralized-exchange attribution.
//
// All contract and token lookups are memoized in per-run caches keyed by
// (network, address), so a given address is resolved at most once per run,
// negative outcomes included.
package classify

import "context"

// Category is a coarse label assigned to a contract address.
type Category string

const (
	CategoryDEX            Category = "DEX"
	CategoryLending        Category = "Lending"
	CategoryStaking        Category = "Staking"
	CategoryNFTMarketplace Category = "NFT_Marketplace"
	CategoryBridge         Category = "Bridge"
	CategoryYield          Category = "Yield"

	// CategoryToken marks an address that answered the ERC-20 symbol probe
	// but has no verified explorer source.
	CategoryToken Category = "token"

	// CategoryUnknown is the negative outcome.
	CategoryUnknown Category = "unknown"
)

// TokenKind distinguishes the token standards a Transfer log can belong to.
type TokenKind string

const (
	TokenKindERC20   TokenKind = "ERC20"
	TokenKindERC721  TokenKind = "ERC721"
	TokenKindUnknown TokenKind = "unknown"
)

// ContractInfo is the cached classification outcome for an address.
type ContractInfo struct {
	Name     string   // Display name; "Unknown Contract" when unresolved
	Verified bool     // True if resolved from a verified explorer source
	Category Category // Resolved category, CategoryToken, or CategoryUnknown
}

// TokenInfo is the cached metadata for a token contract.
type TokenInfo struct {
	Symbol   string    // Token symbol; "UNKNOWN" when unresolved
	Decimals uint8     // Decimal precision; 0 when unknown or non-fungible
	Kind     TokenKind // ERC20, ERC721, or unknown
}

// ContractSource is a verified source-code record from a block explorer.
type ContractSource struct {
	Name   string // Verified contract name
	Source string // Flattened source text
}

// SourceExplorer looks up verified contract source metadata, typically via an
// etherscan-family "getsourcecode" endpoint.
type SourceExplorer interface {
	// ContractSource returns the verified source record for the address on
	// the given network, or ErrNoVerifiedSource when the explorer has no
	// verified entry.
	ContractSource(ctx context.Context, network, address string) (ContractSource, error)
}

// TokenProber reads ERC-20 metadata directly from the chain via eth_call.
type TokenProber interface {
	// TokenSymbol invokes symbol() on the address.
	TokenSymbol(ctx context.Context, network, address string) (string, error)

	// TokenDecimals invokes decimals() on the address.
	TokenDecimals(ctx context.Context, network, address string) (uint8, error)
}

// CategoryKeywords pairs a category with the project keywords that identify
// it in a verified contract's name or source text.
type CategoryKeywords struct {
	Category Category
	Keywords []string
}

// DefaultCategoryKeywords returns the keyword table matched
// (case-insensitively) against a verified contract's name and source text.
// Order is significant: categories are checked top to bottom and the first
// match wins, so a source mentioning several projects always resolves to the
// same category. The table is immutable configuration: callers pass it into
// New explicitly.
func DefaultCategoryKeywords() []CategoryKeywords {
	return []CategoryKeywords{
		{CategoryDEX, []string{"Uniswap", "Sushiswap", "PancakeSwap"}},
		{CategoryLending, []string{"Aave", "Compound", "MakerDAO"}},
		{CategoryStaking, []string{"Lido", "Rocket Pool"}},
		{CategoryNFTMarketplace, []string{"OpenSea", "LooksRare"}},
		{CategoryBridge, []string{"Polygon Bridge", "Arbitrum Bridge"}},
		{CategoryYield, []string{"Yearn", "Curve"}},
	}
}
