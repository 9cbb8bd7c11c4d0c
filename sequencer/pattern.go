package sequencer

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"go-groovebox/synth"
)

// Steps is the length of every pattern cycle.
const Steps = 16

// Note defaults.
const (
	DefaultVelocity = 80
	RandomDensity   = 0.3
)

// ErrInvalidNote is returned for notes outside the pattern or with no length.
var ErrInvalidNote = errors.New("invalid note")

// DrumPattern maps each voice to its 16 steps. Missing voices are silent.
type DrumPattern map[synth.Voice][Steps]bool

// Active reports whether v plays at step.
func (p DrumPattern) Active(v synth.Voice, step int) bool {
	if step < 0 || step >= Steps {
		return false
	}
	return p[v][step]
}

// NoteEvent is one piano roll note. Start and Duration are in steps.
type NoteEvent struct {
	ID       string `json:"id"`
	Pitch    int    `json:"note"`
	Start    int    `json:"start"`
	Duration int    `json:"duration"`
	Velocity int    `json:"velocity"`
}

func (n NoteEvent) validate() error {
	if n.Start < 0 || n.Start >= Steps {
		return fmt.Errorf("%w: start %d outside 0..%d", ErrInvalidNote, n.Start, Steps-1)
	}
	if n.Duration <= 0 {
		return fmt.Errorf("%w: duration %d", ErrInvalidNote, n.Duration)
	}
	if n.Velocity < 0 || n.Velocity > 127 {
		return fmt.Errorf("%w: velocity %d", ErrInvalidNote, n.Velocity)
	}
	return nil
}

// Snapshot is an immutable view of everything the coordinator reads on a
// tick. Callers must not modify it.
type Snapshot struct {
	Drums DrumPattern
	Notes []NoteEvent
	Muted map[synth.Voice]bool
}

// PatternStore holds the drum pattern, note set and mutes shared between
// editors and the tick path. Every edit publishes a fresh Snapshot, so a
// reader never observes a half-applied change.
type PatternStore struct {
	mu   sync.Mutex // serializes writers
	snap atomic.Pointer[Snapshot]
}

// NewPatternStore returns an empty store.
func NewPatternStore() *PatternStore {
	s := &PatternStore{}
	s.snap.Store(&Snapshot{
		Drums: DrumPattern{},
		Muted: map[synth.Voice]bool{},
	})
	return s
}

// Snapshot returns the current state. It never blocks on writers.
func (s *PatternStore) Snapshot() *Snapshot {
	return s.snap.Load()
}

// update copies the current snapshot, applies fn and publishes the result.
func (s *PatternStore) update(fn func(next *Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.snap.Load()
	next := &Snapshot{
		Drums: make(DrumPattern, len(cur.Drums)),
		Notes: append([]NoteEvent(nil), cur.Notes...),
		Muted: make(map[synth.Voice]bool, len(cur.Muted)),
	}
	for v, steps := range cur.Drums {
		next.Drums[v] = steps
	}
	for v, m := range cur.Muted {
		next.Muted[v] = m
	}
	fn(next)
	s.snap.Store(next)
}

// Drum editing

// ToggleStep flips one step and returns its new value. Out of range steps
// and unknown voices are ignored.
func (s *PatternStore) ToggleStep(v synth.Voice, step int) bool {
	if !v.Valid() || step < 0 || step >= Steps {
		return false
	}
	var on bool
	s.update(func(next *Snapshot) {
		steps := next.Drums[v]
		steps[step] = !steps[step]
		next.Drums[v] = steps
		on = steps[step]
	})
	return on
}

// SetStep sets one step.
func (s *PatternStore) SetStep(v synth.Voice, step int, on bool) {
	if !v.Valid() || step < 0 || step >= Steps {
		return
	}
	s.update(func(next *Snapshot) {
		steps := next.Drums[v]
		steps[step] = on
		next.Drums[v] = steps
	})
}

// SetPattern replaces the whole drum pattern. Unknown voices are dropped.
func (s *PatternStore) SetPattern(p DrumPattern) {
	s.update(func(next *Snapshot) {
		next.Drums = make(DrumPattern, len(p))
		for v, steps := range p {
			if v.Valid() {
				next.Drums[v] = steps
			}
		}
	})
}

// Clear turns every drum step off.
func (s *PatternStore) Clear() {
	s.update(func(next *Snapshot) {
		next.Drums = DrumPattern{}
	})
}

// Randomize fills every voice with steps active at RandomDensity.
func (s *PatternStore) Randomize(r *rand.Rand) {
	s.update(func(next *Snapshot) {
		next.Drums = make(DrumPattern, len(synth.Voices))
		for _, v := range synth.Voices {
			var steps [Steps]bool
			for i := range steps {
				steps[i] = r.Float64() < RandomDensity
			}
			next.Drums[v] = steps
		}
	})
}

// SetMuted mutes or unmutes a voice for playback. Audition ignores mutes.
func (s *PatternStore) SetMuted(v synth.Voice, muted bool) {
	if !v.Valid() {
		return
	}
	s.update(func(next *Snapshot) {
		if muted {
			next.Muted[v] = true
		} else {
			delete(next.Muted, v)
		}
	})
}

// ToggleMute flips a voice mute and returns the new value.
func (s *PatternStore) ToggleMute(v synth.Voice) bool {
	muted := !s.Muted(v)
	s.SetMuted(v, muted)
	return muted
}

// Muted reports whether v is muted.
func (s *PatternStore) Muted(v synth.Voice) bool {
	return s.Snapshot().Muted[v]
}

// Note editing

// AddNote adds a one-step note at pitch and start.
func (s *PatternStore) AddNote(pitch, start int) (NoteEvent, error) {
	n := NoteEvent{
		Pitch:    pitch,
		Start:    start,
		Duration: 1,
		Velocity: DefaultVelocity,
	}
	return s.InsertNote(n)
}

// InsertNote adds n, assigning an ID when it has none.
func (s *PatternStore) InsertNote(n NoteEvent) (NoteEvent, error) {
	if err := n.validate(); err != nil {
		return NoteEvent{}, err
	}
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	s.update(func(next *Snapshot) {
		next.Notes = append(next.Notes, n)
	})
	return n, nil
}

// RemoveNote deletes the note with id. Unknown ids are ignored.
func (s *PatternStore) RemoveNote(id string) bool {
	var removed bool
	s.update(func(next *Snapshot) {
		for i, n := range next.Notes {
			if n.ID == id {
				next.Notes = append(next.Notes[:i], next.Notes[i+1:]...)
				removed = true
				return
			}
		}
	})
	return removed
}

// ToggleNote removes every note starting at pitch and step, or adds a
// one-step note when there is none. It reports whether a note now exists.
func (s *PatternStore) ToggleNote(pitch, step int) (bool, error) {
	if step < 0 || step >= Steps {
		return false, fmt.Errorf("%w: start %d outside 0..%d", ErrInvalidNote, step, Steps-1)
	}
	var added bool
	s.update(func(next *Snapshot) {
		kept := next.Notes[:0]
		for _, n := range next.Notes {
			if n.Pitch == pitch && n.Start == step {
				continue
			}
			kept = append(kept, n)
		}
		if len(kept) == len(next.Notes) {
			kept = append(kept, NoteEvent{
				ID:       uuid.NewString(),
				Pitch:    pitch,
				Start:    step,
				Duration: 1,
				Velocity: DefaultVelocity,
			})
			added = true
		}
		next.Notes = kept
	})
	return added, nil
}

// SetNotes replaces the note set. Invalid notes are skipped and reported.
func (s *PatternStore) SetNotes(notes []NoteEvent) error {
	var errs []error
	valid := make([]NoteEvent, 0, len(notes))
	for _, n := range notes {
		if err := n.validate(); err != nil {
			errs = append(errs, err)
			continue
		}
		if n.ID == "" {
			n.ID = uuid.NewString()
		}
		valid = append(valid, n)
	}
	s.update(func(next *Snapshot) {
		next.Notes = valid
	})
	return errors.Join(errs...)
}

// ClearNotes removes every note.
func (s *PatternStore) ClearNotes() {
	s.update(func(next *Snapshot) {
		next.Notes = nil
	})
}

// Notes returns a copy of the note set.
func (s *PatternStore) Notes() []NoteEvent {
	return append([]NoteEvent(nil), s.Snapshot().Notes...)
}

// HasNote reports whether a note starts at pitch and step.
func (s *PatternStore) HasNote(pitch, step int) bool {
	for _, n := range s.Snapshot().Notes {
		if n.Pitch == pitch && n.Start == step {
			return true
		}
	}
	return false
}
