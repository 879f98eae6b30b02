package classify

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/gabapcia/walletscan/internal/pkg/logger"
	"github.com/gabapcia/walletscan/internal/pkg/validator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	// Initialize logger for tests to prevent nil pointer dereference
	_ = logger.Init(logger.WithLevel("error"))
}

// explorerMock is a scripted SourceExplorer counting its invocations.
type explorerMock struct {
	mu      sync.Mutex
	calls   int
	sources map[string]ContractSource
	err     error
}

func (e *explorerMock) ContractSource(ctx context.Context, network, address string) (ContractSource, error) {
	e.mu.Lock()
	e.calls++
	e.mu.Unlock()

	if e.err != nil {
		return ContractSource{}, e.err
	}

	source, ok := e.sources[address]
	if !ok {
		return ContractSource{}, ErrNoVerifiedSource
	}
	return source, nil
}

func (e *explorerMock) callCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

// proberMock is a scripted TokenProber counting symbol probes.
type proberMock struct {
	mu          sync.Mutex
	symbolCalls int
	symbols     map[string]string
	decimals    map[string]uint8
}

func (p *proberMock) TokenSymbol(ctx context.Context, network, address string) (string, error) {
	p.mu.Lock()
	p.symbolCalls++
	p.mu.Unlock()

	symbol, ok := p.symbols[address]
	if !ok {
		return "", errors.New("execution reverted")
	}
	return symbol, nil
}

func (p *proberMock) TokenDecimals(ctx context.Context, network, address string) (uint8, error) {
	decimals, ok := p.decimals[address]
	if !ok {
		return 0, errors.New("execution reverted")
	}
	return decimals, nil
}

func (p *proberMock) symbolCallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.symbolCalls
}

func newTestService(explorer SourceExplorer, prober TokenProber) *Service {
	return New(explorer, prober, DefaultCategoryKeywords(), NewExchangeDirectory(DefaultExchangeTables()))
}

func TestService_Classify(t *testing.T) {
	t.Run("verified source with project keyword", func(t *testing.T) {
		explorer := &explorerMock{sources: map[string]ContractSource{
			"0xrouter": {Name: "UniswapV2Router02", Source: "contract UniswapV2Router02 { ... }"},
		}}
		svc := newTestService(explorer, &proberMock{})

		info := svc.Classify(t.Context(), "ethereum", "0xrouter")

		assert.Equal(t, "UniswapV2Router02", info.Name)
		assert.True(t, info.Verified)
		assert.Equal(t, CategoryDEX, info.Category)
	})

	t.Run("keyword match in source text only", func(t *testing.T) {
		explorer := &explorerMock{sources: map[string]ContractSource{
			"0xpool": {Name: "Vault", Source: "// forked from Curve pool logic"},
		}}
		svc := newTestService(explorer, &proberMock{})

		info := svc.Classify(t.Context(), "ethereum", "0xpool")

		assert.True(t, info.Verified)
		assert.Equal(t, CategoryYield, info.Category)
	})

	t.Run("source matching several categories resolves in table order", func(t *testing.T) {
		// Forked DeFi code routinely mentions several projects; DEX is
		// checked first, so the outcome must not vary between runs.
		for range 10 {
			explorer := &explorerMock{sources: map[string]ContractSource{
				"0xvault": {Name: "Vault", Source: "// routes swaps through Uniswap, parks idle funds in Curve"},
			}}
			svc := newTestService(explorer, &proberMock{})

			info := svc.Classify(t.Context(), "ethereum", "0xvault")
			assert.Equal(t, CategoryDEX, info.Category)
		}
	})

	t.Run("verified source without keywords is unknown category", func(t *testing.T) {
		explorer := &explorerMock{sources: map[string]ContractSource{
			"0xmisc": {Name: "SomeHelper", Source: "contract SomeHelper {}"},
		}}
		svc := newTestService(explorer, &proberMock{})

		info := svc.Classify(t.Context(), "ethereum", "0xmisc")

		assert.Equal(t, "SomeHelper", info.Name)
		assert.True(t, info.Verified)
		assert.Equal(t, CategoryUnknown, info.Category)
	})

	t.Run("unverified contract falls back to token probe", func(t *testing.T) {
		prober := &proberMock{symbols: map[string]string{"0xtoken": "LINK"}}
		svc := newTestService(&explorerMock{}, prober)

		info := svc.Classify(t.Context(), "ethereum", "0xtoken")

		assert.Equal(t, "LINK", info.Name)
		assert.False(t, info.Verified)
		assert.Equal(t, CategoryToken, info.Category)
	})

	t.Run("explorer failure still falls back to token probe", func(t *testing.T) {
		explorer := &explorerMock{err: errors.New("explorer unreachable")}
		prober := &proberMock{symbols: map[string]string{"0xtoken": "LINK"}}
		svc := newTestService(explorer, prober)

		info := svc.Classify(t.Context(), "ethereum", "0xtoken")
		assert.Equal(t, CategoryToken, info.Category)
	})

	t.Run("nothing resolves to the unknown contract outcome", func(t *testing.T) {
		svc := newTestService(&explorerMock{}, &proberMock{})

		info := svc.Classify(t.Context(), "ethereum", "0xwallet")

		assert.Equal(t, "Unknown Contract", info.Name)
		assert.False(t, info.Verified)
		assert.Equal(t, CategoryUnknown, info.Category)
	})

	t.Run("repeated lookups hit the upstream exactly once", func(t *testing.T) {
		explorer := &explorerMock{}
		prober := &proberMock{}
		svc := newTestService(explorer, prober)

		for range 5 {
			svc.Classify(t.Context(), "ethereum", "0xwallet")
		}

		// Negative outcomes are cached too.
		assert.Equal(t, 1, explorer.callCount())
		assert.Equal(t, 1, prober.symbolCallCount())
	})

	t.Run("cache keys are case-insensitive on the address", func(t *testing.T) {
		explorer := &explorerMock{}
		svc := newTestService(explorer, &proberMock{})

		svc.Classify(t.Context(), "ethereum", "0xABCD")
		svc.Classify(t.Context(), "ethereum", "0xabcd")

		assert.Equal(t, 1, explorer.callCount())
	})

	t.Run("cache keys are chain-scoped", func(t *testing.T) {
		explorer := &explorerMock{}
		svc := newTestService(explorer, &proberMock{})

		svc.Classify(t.Context(), "ethereum", "0xabcd")
		svc.Classify(t.Context(), "polygon", "0xabcd")

		assert.Equal(t, 2, explorer.callCount())
	})

	t.Run("concurrent lookups of the same address serialize on one upstream call", func(t *testing.T) {
		explorer := &explorerMock{}
		prober := &proberMock{}
		svc := newTestService(explorer, prober)

		var wg sync.WaitGroup
		for range 10 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				svc.Classify(context.Background(), "ethereum", "0xwallet")
			}()
		}
		wg.Wait()

		assert.Equal(t, 1, explorer.callCount())
	})
}

func TestService_TokenInfo(t *testing.T) {
	t.Run("symbol and decimals resolve to ERC-20", func(t *testing.T) {
		prober := &proberMock{
			symbols:  map[string]string{"0xtoken": "USDC"},
			decimals: map[string]uint8{"0xtoken": 6},
		}
		svc := newTestService(&explorerMock{}, prober)

		info := svc.TokenInfo(t.Context(), "ethereum", "0xtoken")

		assert.Equal(t, TokenInfo{Symbol: "USDC", Decimals: 6, Kind: TokenKindERC20}, info)
	})

	t.Run("symbol without decimals resolves to ERC-721", func(t *testing.T) {
		prober := &proberMock{symbols: map[string]string{"0xnft": "BAYC"}}
		svc := newTestService(&explorerMock{}, prober)

		info := svc.TokenInfo(t.Context(), "ethereum", "0xnft")

		assert.Equal(t, TokenInfo{Symbol: "BAYC", Decimals: 0, Kind: TokenKindERC721}, info)
	})

	t.Run("no probe answer resolves to the unknown fallback", func(t *testing.T) {
		svc := newTestService(&explorerMock{}, &proberMock{})

		info := svc.TokenInfo(t.Context(), "ethereum", "0xmystery")

		assert.Equal(t, TokenInfo{Symbol: "UNKNOWN", Decimals: 0, Kind: TokenKindUnknown}, info)
	})

	t.Run("repeated lookups probe the chain exactly once", func(t *testing.T) {
		prober := &proberMock{
			symbols:  map[string]string{"0xtoken": "USDC"},
			decimals: map[string]uint8{"0xtoken": 6},
		}
		svc := newTestService(&explorerMock{}, prober)

		for range 5 {
			svc.TokenInfo(t.Context(), "ethereum", "0xtoken")
		}

		assert.Equal(t, 1, prober.symbolCallCount())
	})
}

func TestService_ResolveExchange(t *testing.T) {
	svc := newTestService(&explorerMock{}, &proberMock{})

	t.Run("known exchange address", func(t *testing.T) {
		isCex, name := svc.ResolveExchange("ethereum", "0x28C6c06298d514Db089934071355E5743bf21d60")
		require.True(t, isCex)
		assert.Equal(t, "Binance", name)
	})

	t.Run("lookup is case-insensitive", func(t *testing.T) {
		isCex, name := svc.ResolveExchange("ethereum", "0x28c6c06298d514db089934071355e5743bf21d60")
		require.True(t, isCex)
		assert.Equal(t, "Binance", name)
	})

	t.Run("coinbase hot wallet resolves", func(t *testing.T) {
		isCex, name := svc.ResolveExchange("ethereum", "0x71660C4005BA85C37CCEC55D0C4493E66FE775D3")
		require.True(t, isCex)
		assert.Equal(t, "Coinbase", name)
	})

	t.Run("every default table entry is a well-formed address", func(t *testing.T) {
		for network, table := range DefaultExchangeTables() {
			for address := range table {
				assert.NoError(t, validator.ValidateVar(address, "required,eth_addr"), "%s: %s", network, address)
			}
		}
	})

	t.Run("unlisted address", func(t *testing.T) {
		isCex, name := svc.ResolveExchange("ethereum", "0x0000000000000000000000000000000000000001")
		assert.False(t, isCex)
		assert.Empty(t, name)
	})

	t.Run("exchange tables are chain-scoped", func(t *testing.T) {
		isCex, _ := svc.ResolveExchange("polygon", "0x28C6c06298d514Db089934071355E5743bf21d60")
		assert.False(t, isCex)
	})
}
