package clock

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestCountdownExpiresAfterLimit(t *testing.T) {
	var expired int
	var last int
	c := New(3*time.Second, OnExpire(func() { expired++ }), OnTick(func(r int) { last = r }))
	for i := 0; i < 3; i++ {
		c.Tick()
	}
	if c.Remaining() != 0 || last != 0 || expired != 0 {
		t.Fatalf("after 3 ticks: remaining=%d last=%d expired=%d", c.Remaining(), last, expired)
	}
	c.Tick()
	if expired != 1 {
		t.Fatalf("expected expiry on the tick after reaching zero, got %d", expired)
	}
	if c.Remaining() != 3 {
		t.Fatalf("expected countdown to restart from the limit, got %d", c.Remaining())
	}
}

func TestCountdownReset(t *testing.T) {
	c := New(10 * time.Second)
	c.Tick()
	c.Tick()
	if c.Remaining() != 8 {
		t.Fatalf("expected 8, got %d", c.Remaining())
	}
	c.Reset()
	if c.Remaining() != 10 {
		t.Fatalf("expected reset to 10, got %d", c.Remaining())
	}
}

func TestCountdownDefaultLimit(t *testing.T) {
	if got := New(0).Remaining(); got != 600 {
		t.Fatalf("expected default 600 seconds, got %d", got)
	}
}

func TestCountdownRunStopsWithContext(t *testing.T) {
	var expired atomic.Int32
	c := New(time.Second, WithInterval(time.Millisecond), OnExpire(func() { expired.Add(1) }))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Run(ctx)
		close(done)
	}()
	deadline := time.After(2 * time.Second)
	for expired.Load() == 0 {
		select {
		case <-deadline:
			cancel()
			t.Fatalf("countdown never expired")
		case <-time.After(time.Millisecond):
		}
	}
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Run did not return after cancel")
	}
}
