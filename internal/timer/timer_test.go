package timer

import (
	"testing"
	"time"
)

func TestTimerElapsedAndReset(t *testing.T) {
	clock := &ManualClock{}
	clock.Advance(5 * time.Second)

	tm := New(clock)
	if tm.Elapsed() != 0 {
		t.Fatalf("fresh timer elapsed = %v, want 0", tm.Elapsed())
	}

	clock.Advance(1500 * time.Millisecond)
	if got := tm.Elapsed(); got != 1500*time.Millisecond {
		t.Fatalf("elapsed = %v, want 1.5s", got)
	}
	if !tm.HasElapsed(time.Second) {
		t.Fatal("HasElapsed(1s) = false after 1.5s")
	}
	if tm.HasElapsed(2 * time.Second) {
		t.Fatal("HasElapsed(2s) = true after 1.5s")
	}

	tm.Reset()
	if tm.Elapsed() != 0 {
		t.Fatalf("elapsed after reset = %v, want 0", tm.Elapsed())
	}
}

func TestSystemClockMonotonic(t *testing.T) {
	c := NewSystemClock()
	a := c.Now()
	b := c.Now()
	if b < a {
		t.Fatalf("clock went backwards: %v then %v", a, b)
	}
}
