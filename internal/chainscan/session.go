package chainscan

import (
	"context"
	"fmt"
	"time"

	"github.com/gabapcia/walletscan/internal/pkg/logger"
	"github.com/gabapcia/walletscan/internal/pkg/resilience/retry"
	"github.com/gabapcia/walletscan/internal/pkg/types"
)

// Session is one connected chain endpoint together with its adaptive pacing
// state. A Session is owned by a single scanning task; the pacing delay
// assumes serialized requests against the upstream.
type Session struct {
	network     string
	displayName string
	chainID     int64

	node     Node
	throttle *delayController
}

// Network returns the chain identifier (e.g., "ethereum").
func (s *Session) Network() string { return s.network }

// DisplayName returns the human-readable chain name.
func (s *Session) DisplayName() string { return s.displayName }

// ChainID returns the numeric chain id.
func (s *Session) ChainID() int64 { return s.chainID }

// CurrentDelay exposes the pacing delay applied before the next fetch.
func (s *Session) CurrentDelay() time.Duration { return s.throttle.CurrentDelay() }

// LatestBlockNumber returns the current head height of the session's chain.
func (s *Session) LatestBlockNumber(ctx context.Context) (types.Hex, error) {
	return s.node.LatestBlockNumber(ctx)
}

// config holds optional session parameters.
type config struct {
	baseDelay  time.Duration
	maxDelay   time.Duration
	cooldown   time.Duration
	decayAfter int
	probeRetry retry.Retry
}

// Option customizes session construction.
type Option func(*config)

// WithBaseDelay sets the pacing delay used while the upstream is healthy.
// Default: 200ms.
func WithBaseDelay(d time.Duration) Option {
	return func(c *config) {
		c.baseDelay = d
	}
}

// WithMaxDelay caps the throttling escalation. Default: 60s.
func WithMaxDelay(d time.Duration) Option {
	return func(c *config) {
		c.maxDelay = d
	}
}

// WithCooldown sets the extra pause applied after each throttling signal.
// Default: 10s.
func WithCooldown(d time.Duration) Option {
	return func(c *config) {
		c.cooldown = d
	}
}

// WithDecayAfter sets how many consecutive successes halve the delay back
// toward the base. Default: 20.
func WithDecayAfter(n int) Option {
	return func(c *config) {
		c.decayAfter = n
	}
}

// WithProbeRetry sets the retry policy for the connect-time liveness probe.
func WithProbeRetry(r retry.Retry) Option {
	return func(c *config) {
		c.probeRetry = r
	}
}

// Connect probes the node for liveness (latest block height) and returns a
// usable Session. A node that fails the probe yields ErrConnectionFailed; the
// caller is expected to exclude the chain and continue with the others.
func Connect(ctx context.Context, network, displayName string, chainID int64, node Node, opts ...Option) (*Session, error) {
	cfg := config{
		baseDelay:  defaultBaseDelay,
		maxDelay:   defaultMaxDelay,
		cooldown:   defaultCooldown,
		decayAfter: defaultDecayAfter,
		probeRetry: retry.New(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	var head types.Hex
	probe := func() error {
		var err error
		head, err = node.LatestBlockNumber(ctx)
		return err
	}

	if err := cfg.probeRetry.Execute(ctx, probe); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrConnectionFailed, network, err)
	}

	logger.Info(ctx, "connected to blockchain",
		"chain.network", network,
		"chain.name", displayName,
		"chain.head", head.Uint64(),
	)

	return &Session{
		network:     network,
		displayName: displayName,
		chainID:     chainID,
		node:        node,
		throttle:    newDelayController(cfg.baseDelay, cfg.maxDelay, cfg.cooldown, cfg.decayAfter),
	}, nil
}
