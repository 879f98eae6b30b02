package classify

import (
	"strings"
	"sync"
)

// cacheKey scopes cached metadata by chain as well as address: the same
// address on two networks must not share a classification.
type cacheKey struct {
	network string
	address string // lowercased, so keys are case-insensitive
}

// cacheEntry holds one computed value. The sync.Once serializes concurrent
// lookups for the same key: later callers block behind the first compute and
// observe its cached result, never duplicating the network call.
type cacheEntry[V any] struct {
	once  sync.Once
	value V
}

// cache is a per-run, unbounded, monotonic memoization map. It is never
// cleared or expired; its lifetime is tied to the run that owns it, so
// repeated runs start cold.
type cache[V any] struct {
	mu      sync.Mutex
	entries map[cacheKey]*cacheEntry[V]
}

func newCache[V any]() *cache[V] {
	return &cache[V]{
		entries: make(map[cacheKey]*cacheEntry[V]),
	}
}

// getOrCompute returns the cached value for (network, address), invoking
// compute exactly once per key. Negative/unknown outcomes are stored like any
// other value, so repeated failures for the same address are not retried.
func (c *cache[V]) getOrCompute(network, address string, compute func() V) V {
	key := cacheKey{
		network: network,
		address: strings.ToLower(address),
	}

	c.mu.Lock()
	entry, ok := c.entries[key]
	if !ok {
		entry = new(cacheEntry[V])
		c.entries[key] = entry
	}
	c.mu.Unlock()

	entry.once.Do(func() {
		entry.value = compute()
	})

	return entry.value
}
