// Package clock amortizes the Chip-8 instruction cadence against the
// refresh cadence of the presentation layer. There is no authoritative
// hardware speed to emulate, so instead of delaying individual
// instructions the driver runs a fixed batch of cycles per refresh
// tick and decrements the machine timers once per tick.
package clock

import (
	"fmt"
	"time"
)

// Clock computes the batch size for a target instruction rate and
// paces frames by wall clock when the presentation layer does not
// vsync at the refresh rate itself.
type Clock struct {
	clockRate   int // target average instructions per second
	refreshRate int // refresh ticks per second, nominally 60

	lastFrame time.Time
}

// New returns a clock for the given rates. clockRate is the average
// instruction throughput to converge on, refreshRate the frequency of
// presentation and timer ticks.
func New(clockRate, refreshRate int) (*Clock, error) {
	if clockRate <= 0 {
		return nil, fmt.Errorf("clock rate must be positive, got %d", clockRate)
	}
	if refreshRate <= 0 {
		return nil, fmt.Errorf("refresh rate must be positive, got %d", refreshRate)
	}
	return &Clock{clockRate: clockRate, refreshRate: refreshRate}, nil
}

// CyclesPerFrame is the number of instructions to execute between two
// refresh ticks: ceil(clockRate / refreshRate). At the nominal
// 540/60 this is 9.
func (c *Clock) CyclesPerFrame() int {
	return (c.clockRate + c.refreshRate - 1) / c.refreshRate
}

// FrameDuration is the wall-clock length of one refresh tick.
func (c *Clock) FrameDuration() time.Duration {
	return time.Second / time.Duration(c.refreshRate)
}

// Throttle sleeps off whatever remains of the current frame since the
// previous call. Drivers whose presentation layer already blocks on
// vsync at the refresh rate do not need it; the first call only arms
// the clock.
func (c *Clock) Throttle() {
	now := time.Now()
	if !c.lastFrame.IsZero() {
		if rest := c.FrameDuration() - now.Sub(c.lastFrame); rest > 0 {
			time.Sleep(rest)
			now = time.Now()
		}
	}
	c.lastFrame = now
}
