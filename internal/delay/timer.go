// Package delay provides cancelable countdown timers driven by simulation ticks.
//
// Timers never read the wall clock. Time only moves when the owner calls
// Advance with the tick's delta, which keeps replays and tests deterministic:
// the same tick sequence always fires the same timer on the same tick.
//
// A Timer holds at most one pending countdown. Start replaces whatever was
// pending, Cancel drops it unconditionally.
package delay

import "time"

// Timer is a single-slot countdown. The zero value is an idle timer.
type Timer struct {
	remaining time.Duration
	pending   bool
}

// Start arms the timer for d, replacing any pending countdown.
// A non-positive d fires on the next Advance.
func (t *Timer) Start(d time.Duration) {
	if d < 0 {
		d = 0
	}
	t.remaining = d
	t.pending = true
}

// Cancel disarms the timer. Returns true if a countdown was pending.
func (t *Timer) Cancel() bool {
	was := t.pending
	t.pending = false
	t.remaining = 0
	return was
}

// Pending reports whether a countdown is armed.
func (t *Timer) Pending() bool {
	return t.pending
}

// Remaining returns the time left on the pending countdown, or 0 when idle.
func (t *Timer) Remaining() time.Duration {
	if !t.pending {
		return 0
	}
	return t.remaining
}

// Advance moves the countdown forward by dt and reports whether it fired on
// this call. A fired timer is disarmed; negative dt is treated as zero.
func (t *Timer) Advance(dt time.Duration) bool {
	if !t.pending {
		return false
	}
	if dt > 0 {
		t.remaining -= dt
	}
	if t.remaining > 0 {
		return false
	}
	t.pending = false
	t.remaining = 0
	return true
}
