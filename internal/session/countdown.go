package session

import (
	"math"
	"sync"
	"sync/atomic"
	"time"
)

// TickInterval is the countdown refresh rate.
const TickInterval = time.Second

// Countdown derives the remaining time of a session from a fixed start instant
// and the clock. It emits the deadline event at most once per instance.
type Countdown struct {
	duration time.Duration
	start    time.Time
	clock    Clock

	started atomic.Bool
	stopped atomic.Bool
	fired   atomic.Bool

	quit     chan struct{}
	stopOnce sync.Once
}

// NewCountdown creates a countdown of duration measured from start. A zero or
// negative duration yields an untimed countdown that never ticks.
func NewCountdown(duration time.Duration, start time.Time, clock Clock) *Countdown {
	if duration < 0 {
		duration = 0
	}
	return &Countdown{
		duration: duration,
		start:    start,
		clock:    clock,
		quit:     make(chan struct{}),
	}
}

// Timed reports whether the countdown has a time limit.
func (c *Countdown) Timed() bool { return c.duration > 0 }

// Remaining returns max(0, duration - elapsed). Untimed countdowns return 0.
func (c *Countdown) Remaining() time.Duration {
	if !c.Timed() {
		return 0
	}
	left := c.duration - c.clock.Now().Sub(c.start)
	if left < 0 {
		return 0
	}
	return left
}

// Start begins ticking on its own goroutine. onTick receives the remaining time
// on every tick; onDeadline runs once, on the first tick that observes zero
// remaining. Start is a no-op for untimed, already started or stopped countdowns.
func (c *Countdown) Start(onTick func(remaining time.Duration), onDeadline func()) {
	if !c.Timed() || c.stopped.Load() || !c.started.CompareAndSwap(false, true) {
		return
	}
	ticker := c.clock.NewTicker(TickInterval)
	go c.run(ticker, onTick, onDeadline)
}

func (c *Countdown) run(ticker Ticker, onTick func(time.Duration), onDeadline func()) {
	defer ticker.Stop()

	for {
		select {
		case <-c.quit:
			return
		case <-ticker.C():
			if c.stopped.Load() {
				return
			}

			remaining := c.Remaining()
			if onTick != nil {
				onTick(remaining)
			}

			if remaining == 0 && c.fired.CompareAndSwap(false, true) {
				if c.stopped.Load() {
					return
				}
				if onDeadline != nil {
					onDeadline()
				}
			}
		}
	}
}

// Stop halts ticking. It never blocks, so it is safe to call from inside the
// countdown's own callbacks, and it is idempotent.
func (c *Countdown) Stop() {
	c.stopped.Store(true)
	c.stopOnce.Do(func() { close(c.quit) })
}

// Fired reports whether the deadline event has been emitted.
func (c *Countdown) Fired() bool { return c.fired.Load() }

// wholeSeconds rounds a remaining duration up so that the display never shows
// zero before the deadline has actually passed.
func wholeSeconds(d time.Duration) int {
	return int(math.Ceil(d.Seconds()))
}
