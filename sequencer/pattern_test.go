package sequencer

import (
	"errors"
	"math/rand/v2"
	"testing"

	"go-groovebox/synth"
)

func TestPatternStore_ToggleStep(t *testing.T) {
	s := NewPatternStore()
	before := s.Snapshot()

	if !s.ToggleStep(synth.Snare, 4) {
		t.Fatal("first toggle should turn the step on")
	}
	if !s.Snapshot().Drums.Active(synth.Snare, 4) {
		t.Error("step 4 not active after toggle")
	}
	if before.Drums.Active(synth.Snare, 4) {
		t.Error("earlier snapshot changed")
	}
	if s.ToggleStep(synth.Snare, 4) {
		t.Error("second toggle should turn the step off")
	}
}

func TestPatternStore_IgnoresBadInput(t *testing.T) {
	s := NewPatternStore()
	tests := []struct {
		name  string
		voice synth.Voice
		step  int
	}{
		{"negative step", synth.Kick, -1},
		{"step past end", synth.Kick, Steps},
		{"unknown voice", synth.Voice("cowbell"), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if s.ToggleStep(tt.voice, tt.step) {
				t.Error("ToggleStep returned true")
			}
			s.SetStep(tt.voice, tt.step, true)
			if len(s.Snapshot().Drums) != 0 {
				t.Errorf("pattern changed: %v", s.Snapshot().Drums)
			}
		})
	}
}

func TestDrumPattern_MissingVoiceIsSilent(t *testing.T) {
	p := DrumPattern{synth.Kick: {true}}
	if p.Active(synth.Ride, 0) {
		t.Error("missing voice reported active")
	}
	if !p.Active(synth.Kick, 0) || p.Active(synth.Kick, 1) {
		t.Error("kick steps wrong")
	}
	if p.Active(synth.Kick, 99) {
		t.Error("out of range step reported active")
	}
}

func TestPatternStore_ClearAndRandomize(t *testing.T) {
	s := NewPatternStore()
	s.Randomize(rand.New(rand.NewPCG(1, 2)))

	var on int
	snap := s.Snapshot()
	for _, v := range synth.Voices {
		for step := 0; step < Steps; step++ {
			if snap.Drums.Active(v, step) {
				on++
			}
		}
	}
	total := len(synth.Voices) * Steps
	if on == 0 || on == total {
		t.Errorf("randomize enabled %d of %d steps", on, total)
	}

	s.Clear()
	for _, v := range synth.Voices {
		for step := 0; step < Steps; step++ {
			if s.Snapshot().Drums.Active(v, step) {
				t.Fatalf("%s step %d still active after Clear", v, step)
			}
		}
	}
}

func TestPatternStore_SetPatternDropsUnknownVoices(t *testing.T) {
	s := NewPatternStore()
	s.SetPattern(DrumPattern{
		synth.Kick:          {true, false, true},
		synth.Voice("gong"): {true},
	})
	snap := s.Snapshot()
	if len(snap.Drums) != 1 || !snap.Drums.Active(synth.Kick, 2) {
		t.Errorf("pattern = %v", snap.Drums)
	}
}

func TestPatternStore_Mute(t *testing.T) {
	s := NewPatternStore()
	if s.Muted(synth.HiHat) {
		t.Fatal("voices start unmuted")
	}
	if !s.ToggleMute(synth.HiHat) || !s.Muted(synth.HiHat) {
		t.Error("ToggleMute did not mute")
	}
	if s.ToggleMute(synth.HiHat) || s.Muted(synth.HiHat) {
		t.Error("second ToggleMute did not unmute")
	}
}

func TestPatternStore_Notes(t *testing.T) {
	s := NewPatternStore()

	n, err := s.AddNote(64, 3)
	if err != nil {
		t.Fatal(err)
	}
	if n.ID == "" || n.Duration != 1 || n.Velocity != DefaultVelocity {
		t.Errorf("AddNote = %+v", n)
	}
	if !s.HasNote(64, 3) {
		t.Error("HasNote(64, 3) = false")
	}

	if s.RemoveNote("no-such-id") {
		t.Error("removed unknown id")
	}
	if !s.RemoveNote(n.ID) || len(s.Notes()) != 0 {
		t.Errorf("RemoveNote left %v", s.Notes())
	}
}

func TestPatternStore_AddNoteValidation(t *testing.T) {
	s := NewPatternStore()
	tests := []struct {
		name string
		note NoteEvent
	}{
		{"negative start", NoteEvent{Pitch: 60, Start: -1, Duration: 1}},
		{"start past end", NoteEvent{Pitch: 60, Start: Steps, Duration: 1}},
		{"zero duration", NoteEvent{Pitch: 60, Start: 0, Duration: 0}},
		{"velocity too high", NoteEvent{Pitch: 60, Start: 0, Duration: 1, Velocity: 200}},
		{"velocity past a byte", NoteEvent{Pitch: 60, Start: 0, Duration: 1, Velocity: 300}},
		{"negative velocity", NoteEvent{Pitch: 60, Start: 0, Duration: 1, Velocity: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.InsertNote(tt.note); !errors.Is(err, ErrInvalidNote) {
				t.Errorf("InsertNote error = %v, want ErrInvalidNote", err)
			}
		})
	}
	if len(s.Notes()) != 0 {
		t.Errorf("invalid notes stored: %v", s.Notes())
	}
}

func TestPatternStore_ToggleNote(t *testing.T) {
	s := NewPatternStore()
	added, err := s.ToggleNote(72, 8)
	if err != nil || !added {
		t.Fatalf("ToggleNote = %v, %v", added, err)
	}
	s.AddNote(72, 9)

	added, err = s.ToggleNote(72, 8)
	if err != nil || added {
		t.Fatalf("second ToggleNote = %v, %v", added, err)
	}
	notes := s.Notes()
	if len(notes) != 1 || notes[0].Start != 9 {
		t.Errorf("notes = %v, want only the step 9 note", notes)
	}

	if _, err := s.ToggleNote(72, 16); !errors.Is(err, ErrInvalidNote) {
		t.Errorf("ToggleNote past end error = %v", err)
	}
}

func TestPatternStore_SetNotes(t *testing.T) {
	s := NewPatternStore()
	err := s.SetNotes([]NoteEvent{
		{ID: "a", Pitch: 60, Start: 0, Duration: 2, Velocity: 90},
		{Pitch: 62, Start: 20, Duration: 1},
		{Pitch: 64, Start: 4, Duration: 1},
	})
	if !errors.Is(err, ErrInvalidNote) {
		t.Errorf("SetNotes error = %v, want ErrInvalidNote", err)
	}
	notes := s.Notes()
	if len(notes) != 2 || notes[0].ID != "a" || notes[1].ID == "" {
		t.Errorf("notes = %+v", notes)
	}

	s.ClearNotes()
	if len(s.Notes()) != 0 {
		t.Error("ClearNotes left notes")
	}
}
