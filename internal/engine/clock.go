package engine

import "sync/atomic"

// Clock is the monotonic logical tick counter.
//
// Every tick, and every journal row it produces, is stamped with the value
// Next returned for it. Ordering never depends on the wall clock, so a replay
// of the same input stream produces the same stamps.
//
// Thread-safety: Clock is safe for concurrent use (atomic operations).
// Only the goroutine running ticks calls Next in practice.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock starting at a specific sequence number.
// Used to continue numbering after an existing journal.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next returns the next sequence number and increments the clock.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current sequence number without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
