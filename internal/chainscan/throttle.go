package chainscan

import (
	"context"
	"sync"
	"time"
)

const (
	// defaultBaseDelay is the pacing delay applied before every fetch when
	// the upstream is healthy.
	defaultBaseDelay = 200 * time.Millisecond

	// defaultMaxDelay caps the escalation of the pacing delay.
	defaultMaxDelay = 60 * time.Second

	// defaultCooldown is the extra pause applied immediately after a
	// throttling signal, before scanning resumes.
	defaultCooldown = 10 * time.Second

	// defaultDecayAfter is the number of consecutive successful fetches
	// after which the delay is halved back toward the base.
	defaultDecayAfter = 20
)

// delayController tracks the per-session adaptive pacing delay.
//
// The delay only grows within a throttling episode (doubling per signal,
// capped at max) and decays toward the base after a streak of successes.
type delayController struct {
	mu sync.Mutex

	base     time.Duration // floor; the delay never drops below this
	max      time.Duration // ceiling for escalation
	cooldown time.Duration // extra pause applied on each throttling signal

	current       time.Duration // delay applied before the next fetch
	successStreak int           // consecutive successful fetches since the last escalation or decay
	decayAfter    int           // streak length that triggers one halving step
}

func newDelayController(base, max, cooldown time.Duration, decayAfter int) *delayController {
	return &delayController{
		base:       base,
		max:        max,
		cooldown:   cooldown,
		current:    base,
		decayAfter: decayAfter,
	}
}

// CurrentDelay returns the delay that will precede the next fetch.
func (d *delayController) CurrentDelay() time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current
}

// Wait sleeps for the current pacing delay, honoring context cancellation.
func (d *delayController) Wait(ctx context.Context) error {
	return sleep(ctx, d.CurrentDelay())
}

// Throttled escalates the delay in response to a rate-limit signal: the delay
// doubles (capped at max) and the cooldown pause is applied before returning.
func (d *delayController) Throttled(ctx context.Context) error {
	d.mu.Lock()
	d.current = min(d.current*2, d.max)
	d.successStreak = 0
	cooldown := d.cooldown
	d.mu.Unlock()

	return sleep(ctx, cooldown)
}

// Success records a successful fetch. After decayAfter consecutive successes
// the delay is halved, never dropping below the base.
func (d *delayController) Success() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.successStreak++
	if d.successStreak < d.decayAfter || d.current <= d.base {
		return
	}

	d.successStreak = 0
	d.current = max(d.current/2, d.base)
}

// sleep pauses for the given duration unless the context is canceled first.
func sleep(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
