// Package clock implements the per-game countdown.
package clock

import (
	"context"
	"sync"
	"time"
)

const DefaultLimit = 600 * time.Second

// Countdown decrements a whole-second counter on every tick. A tick that finds the counter
// already at zero fires OnExpire and starts over from the limit.
type Countdown struct {
	limit    int
	interval time.Duration

	mu        sync.Mutex
	remaining int

	onTick   func(remaining int)
	onExpire func()
}

type Option func(*Countdown)

// WithInterval overrides the one-second tick, for tests.
func WithInterval(d time.Duration) Option {
	return func(c *Countdown) { c.interval = d }
}

func OnTick(fn func(remaining int)) Option {
	return func(c *Countdown) { c.onTick = fn }
}

func OnExpire(fn func()) Option {
	return func(c *Countdown) { c.onExpire = fn }
}

func New(limit time.Duration, opts ...Option) *Countdown {
	secs := int(limit / time.Second)
	if secs <= 0 {
		secs = int(DefaultLimit / time.Second)
	}
	c := &Countdown{limit: secs, remaining: secs, interval: time.Second}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run ticks until ctx is done.
func (c *Countdown) Run(ctx context.Context) {
	t := time.NewTicker(c.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			c.Tick()
		}
	}
}

// Tick advances the countdown by one second. Callbacks run without the lock held.
func (c *Countdown) Tick() {
	c.mu.Lock()
	if c.remaining > 0 {
		c.remaining--
		left := c.remaining
		c.mu.Unlock()
		if c.onTick != nil {
			c.onTick(left)
		}
		return
	}
	c.remaining = c.limit
	c.mu.Unlock()
	if c.onExpire != nil {
		c.onExpire()
	}
}

// Reset restores the full limit.
func (c *Countdown) Reset() {
	c.mu.Lock()
	c.remaining = c.limit
	c.mu.Unlock()
}

func (c *Countdown) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}
