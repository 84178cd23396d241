// Package clock implements the monotonic timestamp source used by the store.
//
// Every appended record gets a store-assigned timestamp, and the log's total
// order is (timestamp, id). Wall clocks can stand still or step backwards
// (NTP adjustments, coarse tick resolution), so the store cannot hand out
// time.Now() directly: two appends in the same millisecond, or an append
// after a backwards step, would break the non-decreasing ordering that tail
// derivation depends on.
//
// Clock fixes the assigned timestamp to max(wall clock, last + 1ms),
// truncated to millisecond resolution. Seed it from the persisted maximum
// with Set before the first append.
//
// Note: Clock is not goroutine-safe on its own; the store serializes access.
package clock

import "time"

// Clock issues strictly increasing timestamps. The zero value is ready to
// use and starts from the wall clock.
type Clock struct {
	last time.Time
}

// Set initializes the clock to a known lower bound, typically the newest
// persisted record timestamp at open.
func (c *Clock) Set(t time.Time) { c.last = t.Truncate(time.Millisecond) }

// Next returns the timestamp to assign for an event occurring at wall time
// now: now itself when it advances past the last issued timestamp, otherwise
// one millisecond after the last.
func (c *Clock) Next(now time.Time) time.Time {
	now = now.Truncate(time.Millisecond)
	if now.After(c.last) {
		c.last = now
	} else {
		c.last = c.last.Add(time.Millisecond)
	}
	return c.last
}

// Last returns the most recently issued timestamp without advancing.
func (c *Clock) Last() time.Time { return c.last }
