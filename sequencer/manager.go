package sequencer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"go-groovebox/debug"
	"go-groovebox/synth"
)

// Transport limits.
const (
	MinTempo = 60
	MaxTempo = 200

	// AuditionLength is how long a clicked piano key or played MIDI key sounds.
	AuditionLength = 500 * time.Millisecond
)

// Engine is the audio side the manager drives.
type Engine interface {
	Trigger
	Initialize(ctx context.Context) error
	Ready() bool
	SetMasterVolume(percent float64)
	MasterVolume() float64
	Suspend() error
	Resume() error
	Dispose() error
}

// Manager is the session root: it owns the clock, the shared pattern store
// and the coordinator, and routes transport and edit requests to them.
type Manager struct {
	engine   Engine
	clock    *StepClock
	patterns *PatternStore
	coord    *Coordinator
	projects *Projects

	outputs atomic.Pointer[Triggers] // engine first, then mirrors

	mu      sync.Mutex
	rng     *rand.Rand
	project string

	// Notify TUI of ticks and edits
	UpdateChan chan struct{}
}

// NewManager creates a stopped session around engine at tempo.
func NewManager(engine Engine, tempo float64) *Manager {
	m := &Manager{
		engine:     engine,
		clock:      NewStepClock(clampTransport(tempo)),
		patterns:   NewPatternStore(),
		rng:        rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		project:    "untitled",
		UpdateChan: make(chan struct{}, 1),
	}
	m.outputs.Store(&Triggers{engine})
	m.coord = NewCoordinator(m.patterns, m, m.clock.Interval)
	m.clock.OnTick(m.handleTick)
	return m
}

func clampTransport(bpm float64) float64 {
	switch {
	case math.IsNaN(bpm):
		return DefaultTempo
	case bpm < MinTempo:
		return MinTempo
	case bpm > MaxTempo:
		return MaxTempo
	}
	return bpm
}

// Patterns returns the shared pattern store.
func (m *Manager) Patterns() *PatternStore {
	return m.patterns
}

// Clock returns the step clock.
func (m *Manager) Clock() *StepClock {
	return m.clock
}

// AddOutput mirrors every trigger to t as well as the engine.
func (m *Manager) AddOutput(t Trigger) {
	m.mu.Lock()
	defer m.mu.Unlock()
	next := append(Triggers{}, *m.outputs.Load()...)
	next = append(next, t)
	m.outputs.Store(&next)
}

// SetProjects sets where Save and Load keep project files.
func (m *Manager) SetProjects(p *Projects) {
	m.mu.Lock()
	m.projects = p
	m.mu.Unlock()
}

// Projects returns the project store, or nil when none is configured.
func (m *Manager) Projects() *Projects {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.projects
}

// TriggerVoice sends v to the engine and every mirror.
func (m *Manager) TriggerVoice(v synth.Voice) {
	m.outputs.Load().TriggerVoice(v)
}

// TriggerTone sends a tone to the engine and every mirror.
func (m *Manager) TriggerTone(note int, d time.Duration) {
	m.outputs.Load().TriggerTone(note, d)
}

func (m *Manager) handleTick(step int) {
	m.coord.HandleTick(step)
	m.notifyUpdate()
}

// Transport

// Play initializes audio if needed and starts the clock. If the engine
// cannot start the clock stays stopped.
func (m *Manager) Play(ctx context.Context) error {
	if m.clock.Running() {
		return nil
	}
	if err := m.engine.Initialize(ctx); err != nil {
		return fmt.Errorf("start audio: %w", err)
	}
	if err := m.engine.Resume(); err != nil {
		debug.Log("engine", "resume: %v", err)
	}
	m.clock.Start()
	m.notifyUpdate()
	return nil
}

// Pause halts playback and keeps the step position.
func (m *Manager) Pause() {
	m.clock.Pause()
	m.notifyUpdate()
}

// Stop halts playback and rewinds to step 0. Sounds already triggered play out.
func (m *Manager) Stop() {
	m.clock.Stop()
	m.notifyUpdate()
}

// TogglePlay pauses when playing and plays otherwise.
func (m *Manager) TogglePlay(ctx context.Context) error {
	if m.clock.Running() {
		m.Pause()
		return nil
	}
	return m.Play(ctx)
}

// Playing reports whether the clock is running.
func (m *Manager) Playing() bool {
	return m.clock.Running()
}

// SetTempo sets the BPM within the transport range and returns the value
// applied. The tick already scheduled keeps its old length.
func (m *Manager) SetTempo(bpm float64) float64 {
	bpm = clampTransport(bpm)
	m.clock.SetTempo(bpm)
	m.notifyUpdate()
	return bpm
}

// Tempo returns the current BPM.
func (m *Manager) Tempo() float64 {
	return m.clock.Tempo()
}

// SetVolume sets the master volume, 0..100.
func (m *Manager) SetVolume(percent float64) {
	m.engine.SetMasterVolume(percent)
	m.notifyUpdate()
}

// Volume returns the master volume, 0..100.
func (m *Manager) Volume() float64 {
	return m.engine.MasterVolume()
}

// GetState returns the transport position for display.
func (m *Manager) GetState() (step int, playing bool, tempo float64) {
	return m.clock.Step(), m.clock.Running(), m.clock.Tempo()
}

// Editing

// ToggleStep flips a drum step and auditions the voice, initializing audio
// on first use. It returns the new step value; an audio failure does not
// undo the edit.
func (m *Manager) ToggleStep(ctx context.Context, v synth.Voice, step int) (bool, error) {
	on := m.patterns.ToggleStep(v, step)
	m.notifyUpdate()
	return on, m.AuditionVoice(ctx, v)
}

// ToggleNote adds or removes a one-step note at pitch and step.
func (m *Manager) ToggleNote(pitch, step int) (bool, error) {
	added, err := m.patterns.ToggleNote(pitch, step)
	if err != nil {
		return false, err
	}
	m.notifyUpdate()
	return added, nil
}

// ToggleMute flips the playback mute of v.
func (m *Manager) ToggleMute(v synth.Voice) bool {
	muted := m.patterns.ToggleMute(v)
	m.notifyUpdate()
	return muted
}

// Clear turns off every drum step.
func (m *Manager) Clear() {
	m.patterns.Clear()
	m.notifyUpdate()
}

// ClearNotes empties the piano roll.
func (m *Manager) ClearNotes() {
	m.patterns.ClearNotes()
	m.notifyUpdate()
}

// Randomize refills the drum pattern at random.
func (m *Manager) Randomize() {
	m.mu.Lock()
	m.patterns.Randomize(m.rng)
	m.mu.Unlock()
	m.notifyUpdate()
}

// AuditionVoice plays v now, regardless of transport or mute state.
func (m *Manager) AuditionVoice(ctx context.Context, v synth.Voice) error {
	err := m.ensureAudio(ctx)
	m.TriggerVoice(v)
	return err
}

// AuditionNote plays note for AuditionLength.
func (m *Manager) AuditionNote(ctx context.Context, note int) error {
	err := m.ensureAudio(ctx)
	m.TriggerTone(note, AuditionLength)
	return err
}

// HandleNote plays live keyboard input. It never initializes audio, and
// note-off messages are ignored since tones stop by themselves.
func (m *Manager) HandleNote(note, velocity uint8) {
	if velocity == 0 {
		return
	}
	debug.Log("midi", "note in %d vel %d", note, velocity)
	m.TriggerTone(int(note), AuditionLength)
}

func (m *Manager) ensureAudio(ctx context.Context) error {
	if m.engine.Ready() {
		return nil
	}
	if err := m.engine.Initialize(ctx); err != nil {
		return fmt.Errorf("start audio: %w", err)
	}
	return nil
}

// Projects

// Project returns the current project name.
func (m *Manager) Project() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.project
}

// Save writes the session to a new timestamped save in project.
func (m *Manager) Save(project, label string) (string, error) {
	m.mu.Lock()
	store := m.projects
	if project == "" {
		project = m.project
	}
	m.mu.Unlock()
	if store == nil {
		return "", errors.New("no project directory configured")
	}

	rec := ProjectFrom(m.patterns.Snapshot(), m.Tempo(), m.Volume())
	filename, err := store.Save(project, label, rec)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	m.project = project
	m.mu.Unlock()
	return filename, nil
}

// Load stops playback and restores a save, or the newest save when
// filename is empty.
func (m *Manager) Load(project, filename string) error {
	m.mu.Lock()
	store := m.projects
	m.mu.Unlock()
	if store == nil {
		return errors.New("no project directory configured")
	}

	rec, err := store.Load(project, filename)
	if err != nil {
		return err
	}
	m.clock.Stop()
	m.clock.SetTempo(clampTransport(rec.Tempo))
	m.engine.SetMasterVolume(rec.Volume)
	applyErr := rec.Apply(m.patterns)

	m.mu.Lock()
	m.project = project
	m.mu.Unlock()
	m.notifyUpdate()
	if applyErr != nil {
		return fmt.Errorf("load %s: skipped notes: %w", project, applyErr)
	}
	return nil
}

// Close stops the clock, releases the engine and closes every mirror.
func (m *Manager) Close() error {
	m.clock.Stop()
	var errs []error
	if err := m.engine.Dispose(); err != nil {
		errs = append(errs, err)
	}
	for _, t := range (*m.outputs.Load())[1:] {
		if c, ok := t.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// notifyUpdate wakes the UI without blocking.
func (m *Manager) notifyUpdate() {
	select {
	case m.UpdateChan <- struct{}{}:
	default:
	}
}
