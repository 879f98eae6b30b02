// Package config loads process configuration from the environment and carries
// the static per-chain endpoint table. Both are immutable after load and are
// passed explicitly into component constructors, never read as globals.
package config

import (
	"fmt"
	"strings"

	"github.com/gabapcia/walletscan/internal/pkg/validator"

	"github.com/kelseyhightower/envconfig"
)

// envPrefix namespaces every environment variable consumed by the process
// (e.g., WALLETSCAN_WALLET_ADDRESSES).
const envPrefix = "walletscan"

// Config is the full process configuration, loaded once at startup.
type Config struct {
	// WalletAddresses are the wallets to scan for, shared across chains.
	// Optional: when empty, the scan falls back to the wallet registry.
	WalletAddresses []string `envconfig:"WALLET_ADDRESSES"`

	// Chains selects which networks from the chain table to scan.
	Chains []string `envconfig:"CHAINS" default:"ethereum"`

	// InfuraProjectID fills the {project_id} slot of templated RPC URLs.
	InfuraProjectID string `envconfig:"INFURA_PROJECT_ID"`

	// ExplorerAPIKeys maps network name to its explorer API key
	// (e.g., "ethereum:ABC123,polygon:DEF456").
	ExplorerAPIKeys map[string]string `envconfig:"EXPLORER_API_KEYS"`

	// OutputDir is where exported files are written.
	OutputDir string `envconfig:"OUTPUT_DIR" default:"."`

	// Redis connection for the wallet registry.
	RedisAddr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisUsername string `envconfig:"REDIS_USERNAME"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB"`

	LogLevel         string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error panic fatal"`
	TelemetryEnabled bool   `envconfig:"TELEMETRY_ENABLED"`
}

// Load reads and validates the process configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return Config{}, err
	}

	if err := validator.Validate(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Chain describes one supported network endpoint.
type Chain struct {
	Name           string // Chain identifier (e.g., "ethereum")
	DisplayName    string // Human-readable name
	ChainID        int64  // Numeric chain id
	RPCURLTemplate string // RPC endpoint; may contain a {project_id} slot
	ExplorerAPI    string // Etherscan-family API base URL; empty if none
}

// RPCURL renders the chain's RPC endpoint, substituting the project id into
// templated URLs.
func (c Chain) RPCURL(projectID string) string {
	return strings.ReplaceAll(c.RPCURLTemplate, "{project_id}", projectID)
}

// ChainTable returns the supported chains keyed by name. The table is
// immutable configuration data.
func ChainTable() map[string]Chain {
	return map[string]Chain{
		"ethereum": {
			Name:           "ethereum",
			DisplayName:    "Ethereum Mainnet",
			ChainID:        1,
			RPCURLTemplate: "https://mainnet.infura.io/v3/{project_id}",
			ExplorerAPI:    "https://api.etherscan.io/api",
		},
		"polygon": {
			Name:           "polygon",
			DisplayName:    "Polygon Mainnet",
			ChainID:        137,
			RPCURLTemplate: "https://polygon-rpc.com",
			ExplorerAPI:    "https://api.polygonscan.com/api",
		},
		"bsc": {
			Name:           "bsc",
			DisplayName:    "Binance Smart Chain",
			ChainID:        56,
			RPCURLTemplate: "https://bsc-dataseed.binance.org/",
			ExplorerAPI:    "https://api.bscscan.com/api",
		},
		"avalanche": {
			Name:           "avalanche",
			DisplayName:    "Avalanche C-Chain",
			ChainID:        43114,
			RPCURLTemplate: "https://api.avax.network/ext/bc/C/rpc",
			ExplorerAPI:    "https://api.snowtrace.io/api",
		},
	}
}

// SelectedChains resolves the configured chain names against the table,
// failing on unknown names.
func (c Config) SelectedChains() ([]Chain, error) {
	table := ChainTable()

	chains := make([]Chain, 0, len(c.Chains))
	for _, name := range c.Chains {
		chain, ok := table[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return nil, fmt.Errorf("unknown chain %q", name)
		}
		chains = append(chains, chain)
	}

	return chains, nil
}
