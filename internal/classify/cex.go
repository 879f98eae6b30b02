package classify

import "strings"

// ExchangeDirectory is a static, per-network table of known centralized
// exchange addresses. Lookups are case-insensitive and chain-scoped: an
// address listed under one network is not a CEX on another.
type ExchangeDirectory struct {
	// network -> lowercased address -> exchange name
	byNetwork map[string]map[string]string
}

// NewExchangeDirectory builds a directory from the given tables, normalizing
// all addresses to lower case.
func NewExchangeDirectory(tables map[string]map[string]string) ExchangeDirectory {
	byNetwork := make(map[string]map[string]string, len(tables))
	for network, table := range tables {
		normalized := make(map[string]string, len(table))
		for address, name := range table {
			normalized[strings.ToLower(address)] = name
		}
		byNetwork[network] = normalized
	}

	return ExchangeDirectory{byNetwork: byNetwork}
}

// Resolve reports whether the address belongs to a known exchange on the
// given network, and the exchange name if so.
func (d ExchangeDirectory) Resolve(network, address string) (bool, string) {
	table, ok := d.byNetwork[network]
	if !ok {
		return false, ""
	}

	name, ok := table[strings.ToLower(address)]
	return ok, name
}

// DefaultExchangeTables returns the known exchange deposit and treasury
// addresses per network. Immutable configuration, passed into
// NewExchangeDirectory at process start.
func DefaultExchangeTables() map[string]map[string]string {
	return map[string]map[string]string{
		"ethereum": {
			"0x28C6c06298d514Db089934071355E5743bf21d60": "Binance",
			"0x21a31Ee1afC51d94C2eFcCAa2092aD1028285549": "Binance",
			"0x71660c4005BA85c37ccec55d0C4493E66fe775d3": "Coinbase",
			"0xdAC17F958D2ee523a2206206994597C13D831ec7": "Tether Treasury",
			"0x2FAF487A4414Fe77e2327F0bf4AE2a264a776AD2": "FTX",
		},
	}
}
