package sequencer

import (
	"time"

	"go-groovebox/synth"
)

// Trigger receives fire-and-forget sound requests. The audio engine and the
// MIDI mirror both implement it.
type Trigger interface {
	TriggerVoice(v synth.Voice)
	TriggerTone(note int, d time.Duration)
}

// Triggers fans every request out to each member.
type Triggers []Trigger

func (ts Triggers) TriggerVoice(v synth.Voice) {
	for _, t := range ts {
		t.TriggerVoice(v)
	}
}

func (ts Triggers) TriggerTone(note int, d time.Duration) {
	for _, t := range ts {
		t.TriggerTone(note, d)
	}
}

// Coordinator turns clock ticks into triggers by reading the pattern store.
type Coordinator struct {
	patterns *PatternStore
	out      Trigger
	interval func() time.Duration
}

// NewCoordinator reads patterns on each tick and triggers out. interval
// reports the current step length used to size tones.
func NewCoordinator(patterns *PatternStore, out Trigger, interval func() time.Duration) *Coordinator {
	return &Coordinator{patterns: patterns, out: out, interval: interval}
}

// HandleTick triggers every unmuted voice active at step and every note
// starting at step. It reads one snapshot, so edits made during the tick
// apply from the next one.
func (c *Coordinator) HandleTick(step int) {
	snap := c.patterns.Snapshot()

	for _, v := range synth.Voices {
		if snap.Muted[v] || !snap.Drums.Active(v, step) {
			continue
		}
		c.out.TriggerVoice(v)
	}

	var interval time.Duration
	for _, n := range snap.Notes {
		if n.Start != step {
			continue
		}
		if interval == 0 {
			interval = c.interval()
		}
		c.out.TriggerTone(n.Pitch, time.Duration(n.Duration)*interval)
	}
}
