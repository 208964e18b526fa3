package codeviz

import "time"

// maxFrameDelta clamps the per-tick delta so a stalled window (drag, resize,
// debugger) does not make the geometry jump.
const maxFrameDelta = 0.25

// Frame is the animation clock reading for one tick, in seconds.
type Frame struct {
	Elapsed float64
	Delta   float64
}

// Clock turns wall-clock readings into a monotonic elapsed time and per-tick
// delta. The zero value is ready to use.
type Clock struct {
	last    time.Time
	elapsed float64
}

// Advance reads the clock at now. The first call returns a zero delta.
// Backwards jumps produce a zero delta, so Elapsed never decreases.
func (c *Clock) Advance(now time.Time) Frame {
	if c.last.IsZero() {
		c.last = now
		return Frame{Elapsed: c.elapsed}
	}
	d := now.Sub(c.last).Seconds()
	c.last = now
	if d < 0 {
		d = 0
	}
	if d > maxFrameDelta {
		d = maxFrameDelta
	}
	c.elapsed += d
	return Frame{Elapsed: c.elapsed, Delta: d}
}

// Elapsed returns the accumulated time.
func (c *Clock) Elapsed() float64 {
	return c.elapsed
}
