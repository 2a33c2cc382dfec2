// Package timer tracks elapsed time against a monotonic clock.
package timer

import (
	"sync"
	"time"
)

// Clock reports monotonic time as an offset from an arbitrary origin.
type Clock interface {
	Now() time.Duration
}

// SystemClock reads the process monotonic clock.
type SystemClock struct {
	origin time.Time
}

// NewSystemClock creates a clock whose origin is the moment of the call.
func NewSystemClock() *SystemClock {
	return &SystemClock{origin: time.Now()}
}

// Now returns the time elapsed since the clock was created.
func (c *SystemClock) Now() time.Duration {
	return time.Since(c.origin)
}

// ManualClock only moves when Advance is called. Used to drive simulations
// deterministically.
type ManualClock struct {
	mu  sync.Mutex
	now time.Duration
}

// Now returns the current manual time.
func (c *ManualClock) Now() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now += d
	c.mu.Unlock()
}

// Timer measures time since its last reset.
type Timer struct {
	clock Clock
	start time.Duration
}

// New creates a timer started at the clock's current time.
func New(clock Clock) Timer {
	return Timer{clock: clock, start: clock.Now()}
}

// Elapsed returns the time since the timer was started or last reset.
func (t Timer) Elapsed() time.Duration {
	return t.clock.Now() - t.start
}

// HasElapsed reports whether at least d has passed since the last reset.
func (t Timer) HasElapsed(d time.Duration) bool {
	return t.Elapsed() >= d
}

// Reset rebases the timer to now.
func (t *Timer) Reset() {
	t.start = t.clock.Now()
}
