package classify

import (
	"context"
	"errors"
	"strings"

	"github.com/gabapcia/walletscan/internal/pkg/logger"
)

// ErrNoVerifiedSource is returned by SourceExplorer implementations when the
// explorer has no verified source entry for an address.
var ErrNoVerifiedSource = errors.New("no verified contract source")

// unknownContract is the fully-negative classification outcome.
var unknownContract = ContractInfo{
	Name:     "Unknown Contract",
	Verified: false,
	Category: CategoryUnknown,
}

// Service resolves contract and token identity with per-run memoization.
// Construct one Service per pipeline run so caches start cold.
type Service struct {
	explorer SourceExplorer
	prober   TokenProber
	keywords []CategoryKeywords
	cex      ExchangeDirectory

	contracts *cache[ContractInfo]
	tokens    *cache[TokenInfo]
}

// New creates a classification service with empty caches.
//
// keywords and cex are immutable configuration tables (see
// DefaultCategoryKeywords and DefaultExchangeTables).
func New(explorer SourceExplorer, prober TokenProber, keywords []CategoryKeywords, cex ExchangeDirectory) *Service {
	return &Service{
		explorer:  explorer,
		prober:    prober,
		keywords:  keywords,
		cex:       cex,
		contracts: newCache[ContractInfo](),
		tokens:    newCache[TokenInfo](),
	}
}

// Classify resolves the identity of an address on the given network.
//
// Resolution order: verified explorer source (name + keyword category), then
// an ERC-20 symbol() probe marking the address as an unverified token, then
// the negative "Unknown Contract" outcome. Every outcome, negative ones
// included, is cached for the remainder of the run; network failures during
// probing are treated as probe failure, never propagated.
func (s *Service) Classify(ctx context.Context, network, address string) ContractInfo {
	return s.contracts.getOrCompute(network, address, func() ContractInfo {
		return s.classify(ctx, network, address)
	})
}

func (s *Service) classify(ctx context.Context, network, address string) ContractInfo {
	source, err := s.explorer.ContractSource(ctx, network, address)
	if err == nil && source.Name != "" {
		return ContractInfo{
			Name:     source.Name,
			Verified: true,
			Category: s.categorize(source),
		}
	}

	if err != nil && !errors.Is(err, ErrNoVerifiedSource) {
		logger.Debug(ctx, "explorer lookup failed",
			"chain.network", network,
			"contract.address", address,
			"error", err,
		)
	}

	symbol, err := s.prober.TokenSymbol(ctx, network, address)
	if err != nil {
		return unknownContract
	}

	return ContractInfo{
		Name:     symbol,
		Verified: false,
		Category: CategoryToken,
	}
}

// categorize matches the configured project keywords against the contract's
// name and source text, case-insensitively. Categories are checked in table
// order and the first match wins; no match yields CategoryUnknown.
func (s *Service) categorize(source ContractSource) Category {
	var (
		name = strings.ToLower(source.Name)
		code = strings.ToLower(source.Source)
	)

	for _, entry := range s.keywords {
		for _, keyword := range entry.Keywords {
			keyword = strings.ToLower(keyword)
			if strings.Contains(name, keyword) || strings.Contains(code, keyword) {
				return entry.Category
			}
		}
	}

	return CategoryUnknown
}

// TokenInfo resolves the metadata of a token contract via symbol() and
// decimals() probes. A contract that answers both is ERC-20; one that answers
// only symbol() is treated as ERC-721 (non-fungibles carry no decimals); one
// that answers neither resolves to the UNKNOWN fallback. Outcomes are cached
// per run.
func (s *Service) TokenInfo(ctx context.Context, network, address string) TokenInfo {
	return s.tokens.getOrCompute(network, address, func() TokenInfo {
		return s.tokenInfo(ctx, network, address)
	})
}

func (s *Service) tokenInfo(ctx context.Context, network, address string) TokenInfo {
	symbol, err := s.prober.TokenSymbol(ctx, network, address)
	if err != nil {
		logger.Debug(ctx, "token symbol probe failed",
			"chain.network", network,
			"token.address", address,
			"error", err,
		)
		return TokenInfo{Symbol: "UNKNOWN", Decimals: 0, Kind: TokenKindUnknown}
	}

	decimals, err := s.prober.TokenDecimals(ctx, network, address)
	if err != nil {
		return TokenInfo{Symbol: symbol, Decimals: 0, Kind: TokenKindERC721}
	}

	return TokenInfo{Symbol: symbol, Decimals: decimals, Kind: TokenKindERC20}
}

// ResolveExchange reports whether the address is a known centralized exchange
// on the given network. Pure static table lookup; no caching needed.
func (s *Service) ResolveExchange(network, address string) (bool, string) {
	return s.cex.Resolve(network, address)
}
