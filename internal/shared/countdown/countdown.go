// Package countdown implements the single-shot display timer shown after a
// ticket is recorded.
//
// The countdown does not own a goroutine or a timer. The caller schedules a
// Tick one second out, hands it back to Handle when it fires, and schedules
// the returned Tick in turn. Every Start and Cancel bumps the generation, so
// ticks scheduled for an earlier run are recognised and dropped.
package countdown

import "time"

// Interval is the time between ticks.
const Interval = time.Second

// Tick is delivered back to Handle once Interval has elapsed.
type Tick struct {
	Generation uint64
}

// Countdown counts down from a fixed number of seconds. The zero value is
// idle and has a zero duration.
type Countdown struct {
	total      int
	remaining  int
	generation uint64
	running    bool
}

// New returns an idle countdown of seconds. Values below one are raised to
// one.
func New(seconds int) Countdown {
	if seconds < 1 {
		seconds = 1
	}
	return Countdown{total: seconds}
}

// Start resets to the full duration and returns the first tick to schedule.
// A restart discards the previous run.
func (c *Countdown) Start() Tick {
	c.generation++
	c.remaining = c.total
	c.running = true
	return Tick{Generation: c.generation}
}

// Cancel stops the countdown. Ticks already scheduled become stale.
func (c *Countdown) Cancel() {
	c.generation++
	c.running = false
	c.remaining = 0
}

// Handle consumes a tick. It returns the next tick to schedule, or done when
// the countdown just reached zero. Stale ticks return neither.
func (c *Countdown) Handle(t Tick) (next *Tick, done bool) {
	if !c.running || t.Generation != c.generation {
		return nil, false
	}
	c.remaining--
	if c.remaining <= 0 {
		c.remaining = 0
		c.running = false
		return nil, true
	}
	return &Tick{Generation: c.generation}, false
}

// Remaining returns the seconds left in the current run.
func (c Countdown) Remaining() int { return c.remaining }

// Running reports whether a run is in progress.
func (c Countdown) Running() bool { return c.running }

// Total returns the configured duration in seconds.
func (c Countdown) Total() int { return c.total }

// Generation identifies the current run.
func (c Countdown) Generation() uint64 { return c.generation }
