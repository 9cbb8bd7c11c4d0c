package sequencer

import (
	"math"
	"sync"
	"time"

	"go-groovebox/debug"
)

// Clock tempo limits. The transport applies its own narrower range.
const (
	MinClockTempo = 20
	MaxClockTempo = 300
	DefaultTempo  = 120
)

// timeSource is the clock's view of wall time.
type timeSource interface {
	Now() time.Time
	NewTimer(d time.Duration) (<-chan time.Time, func() bool)
}

type wallTime struct{}

func (wallTime) Now() time.Time { return time.Now() }

func (wallTime) NewTimer(d time.Duration) (<-chan time.Time, func() bool) {
	t := time.NewTimer(d)
	return t.C, t.Stop
}

// StepClock advances a 16-step counter once per sixteenth note and hands
// each new step to its tick handler.
//
// Ticks are scheduled against absolute deadlines: each deadline is the
// previous deadline plus the interval at the time it is armed, so slow
// handlers never push later ticks back. A tempo change applies from the
// tick after the one already armed.
type StepClock struct {
	clock timeSource

	mu      sync.Mutex
	tempo   float64
	step    int
	onTick  func(step int)
	running bool
	stop    chan struct{}
	done    chan struct{}
}

// NewStepClock returns a stopped clock at step 0.
func NewStepClock(bpm float64) *StepClock {
	if math.IsNaN(bpm) {
		bpm = DefaultTempo
	}
	return &StepClock{
		clock: wallTime{},
		tempo: clampTempo(bpm),
	}
}

func clampTempo(bpm float64) float64 {
	switch {
	case math.IsNaN(bpm), bpm < MinClockTempo:
		return MinClockTempo
	case bpm > MaxClockTempo:
		return MaxClockTempo
	}
	return bpm
}

// StepInterval is the length of one sixteenth note at bpm.
func StepInterval(bpm float64) time.Duration {
	return time.Duration(float64(time.Minute) / clampTempo(bpm) / 4)
}

// OnTick sets the handler called with each new step. The handler runs on
// the clock goroutine and must not call Pause or Stop.
func (c *StepClock) OnTick(fn func(step int)) {
	c.mu.Lock()
	c.onTick = fn
	c.mu.Unlock()
}

// Start begins ticking from the current step. The first tick arrives one
// interval later and plays the following step.
func (c *StepClock) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return
	}
	c.running = true
	c.stop = make(chan struct{})
	c.done = make(chan struct{})
	debug.Log("clock", "start at step %d, %.1f bpm", c.step, c.tempo)
	go c.run(c.stop, c.done)
}

// Pause halts ticking and keeps the position.
func (c *StepClock) Pause() {
	c.halt()
}

// Stop halts ticking and rewinds to step 0.
func (c *StepClock) Stop() {
	c.halt()
	c.mu.Lock()
	c.step = 0
	c.mu.Unlock()
}

// halt stops the tick goroutine and waits for it, so no tick is delivered
// after it returns.
func (c *StepClock) halt() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	c.running = false
	close(c.stop)
	done := c.done
	c.mu.Unlock()

	<-done
	debug.Log("clock", "halted")
}

// SetTempo changes the rate. NaN is ignored; other values are clamped.
func (c *StepClock) SetTempo(bpm float64) {
	if math.IsNaN(bpm) {
		return
	}
	c.mu.Lock()
	c.tempo = clampTempo(bpm)
	c.mu.Unlock()
}

// Tempo returns the current rate in BPM.
func (c *StepClock) Tempo() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tempo
}

// Interval returns the current step length.
func (c *StepClock) Interval() time.Duration {
	return StepInterval(c.Tempo())
}

// Step returns the last step delivered, 0..15.
func (c *StepClock) Step() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.step
}

// Running reports whether the clock is ticking.
func (c *StepClock) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

func (c *StepClock) run(stop, done chan struct{}) {
	defer close(done)

	next := c.clock.Now().Add(c.Interval())
	for {
		fire, cancel := c.clock.NewTimer(next.Sub(c.clock.Now()))
		select {
		case <-stop:
			cancel()
			return
		case <-fire:
		}

		c.mu.Lock()
		select {
		case <-stop:
			c.mu.Unlock()
			return
		default:
		}
		c.step = (c.step + 1) % Steps
		step, fn := c.step, c.onTick
		next = next.Add(StepInterval(c.tempo))
		c.mu.Unlock()

		if late := c.clock.Now().Sub(next); late > 0 {
			debug.Log("clock", "behind by %v at step %d", late, step)
		}
		debug.LogEvery(64, "tick", "step %d", step)
		if fn != nil {
			fn(step)
		}
	}
}
