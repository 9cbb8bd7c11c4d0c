// Package audio owns the output graph: a master gain stage over every
// in-flight voice and tone, fed to a real-time output device.
package audio

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"go-groovebox/debug"
	"go-groovebox/synth"
)

// ErrNoDevice is returned by Initialize when the output device cannot be opened.
var ErrNoDevice = errors.New("audio device unavailable")

// State is the engine lifecycle state.
type State int32

const (
	StateUninitialized State = iota
	StateInitializing
	StateReady
	StateDisposed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateDisposed:
		return "disposed"
	}
	return fmt.Sprintf("State(%d)", int32(s))
}

const (
	DefaultSampleRate = 44100
	DefaultVolume     = 80
	defaultInitWait   = 5 * time.Second
)

// Engine plays precomputed drum voices and on-the-fly tones. Trigger calls
// are fire-and-forget and silently ignored until the engine is Ready.
type Engine struct {
	sampleRate int
	open       OutputFactory
	render     func(sampleRate int) synth.Catalog
	initWait   time.Duration

	state   atomic.Int32
	flight  singleflight.Group
	catalog atomic.Pointer[synth.Catalog]
	mix     *mixer

	mu  sync.Mutex
	out Output
}

// Option configures an Engine.
type Option func(*Engine)

// WithSampleRate sets the render and device rate.
func WithSampleRate(rate int) Option {
	return func(e *Engine) {
		if rate > 0 {
			e.sampleRate = rate
		}
	}
}

// WithOutput replaces the output device factory.
func WithOutput(f OutputFactory) Option {
	return func(e *Engine) { e.open = f }
}

// WithRenderer replaces the voice catalog renderer.
func WithRenderer(f func(sampleRate int) synth.Catalog) Option {
	return func(e *Engine) { e.render = f }
}

// WithInitTimeout bounds how long Initialize waits for the device.
func WithInitTimeout(d time.Duration) Option {
	return func(e *Engine) { e.initWait = d }
}

// New creates an uninitialized engine. No device is touched until Initialize.
func New(opts ...Option) *Engine {
	e := &Engine{
		sampleRate: DefaultSampleRate,
		open:       DefaultOutput,
		render:     synth.RenderCatalog,
		initWait:   defaultInitWait,
		mix:        newMixer(DefaultVolume / 100.0),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// State returns the current lifecycle state.
func (e *Engine) State() State {
	return State(e.state.Load())
}

// Ready reports whether triggers will sound.
func (e *Engine) Ready() bool {
	return e.State() == StateReady
}

// SampleRate returns the engine rate in Hz.
func (e *Engine) SampleRate() int {
	return e.sampleRate
}

// Initialize opens the output device and renders the voice catalog.
// Concurrent calls share one attempt. Calling it while Ready, or after
// Dispose, does nothing. On failure the engine returns to Uninitialized and
// may be initialized again later.
func (e *Engine) Initialize(ctx context.Context) error {
	switch e.State() {
	case StateReady, StateDisposed:
		return nil
	}
	ch := e.flight.DoChan("init", func() (any, error) {
		return nil, e.initialize()
	})
	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *Engine) initialize() error {
	if !e.state.CompareAndSwap(int32(StateUninitialized), int32(StateInitializing)) {
		return nil
	}
	debug.Log("engine", "initializing at %d Hz", e.sampleRate)

	ctx, cancel := context.WithTimeout(context.Background(), e.initWait)
	defer cancel()

	out, err := e.open(ctx, e.sampleRate)
	if err != nil {
		e.state.CompareAndSwap(int32(StateInitializing), int32(StateUninitialized))
		debug.Log("engine", "open output failed: %v", err)
		return fmt.Errorf("%w: %w", ErrNoDevice, err)
	}

	catalog := e.render(e.sampleRate)

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.State() == StateDisposed {
		out.Close()
		return nil
	}
	if err := out.Play(e.mix); err != nil {
		out.Close()
		e.state.Store(int32(StateUninitialized))
		return fmt.Errorf("%w: start playback: %w", ErrNoDevice, err)
	}
	e.out = out
	e.catalog.Store(&catalog)
	e.state.Store(int32(StateReady))
	debug.Log("engine", "ready, %d voices rendered", len(catalog))
	return nil
}

// TriggerVoice starts a new playback of v. Overlapping triggers of the same
// voice each play to completion.
func (e *Engine) TriggerVoice(v synth.Voice) {
	c := e.catalog.Load()
	if c == nil || !e.Ready() {
		return
	}
	b, ok := (*c)[v]
	if !ok || b.Len() == 0 {
		return
	}
	e.mix.add(&bufferSource{samples: b.Samples})
}

// TriggerTone plays note (69 = A4) for d.
func (e *Engine) TriggerTone(note int, d time.Duration) {
	e.PlayTone(synth.NoteToFreq(note), d)
}

// PlayTone plays a sine tone of freq Hz for d. The tone stops by itself.
func (e *Engine) PlayTone(freq float64, d time.Duration) {
	if !e.Ready() || d <= 0 || !(freq > 0) || math.IsInf(freq, 0) {
		return
	}
	e.mix.add(synth.NewTone(freq, d, e.sampleRate))
}

// SetMasterVolume scales all output linearly, 0..100. It applies to sounds
// already playing.
func (e *Engine) SetMasterVolume(percent float64) {
	if math.IsNaN(percent) {
		return
	}
	percent = math.Max(0, math.Min(100, percent))
	e.mix.setGain(percent / 100)
}

// MasterVolume returns the master volume, 0..100.
func (e *Engine) MasterVolume() float64 {
	return e.mix.getGain() * 100
}

// Playing returns the number of voices and tones still sounding.
func (e *Engine) Playing() int {
	return e.mix.inFlight()
}

// Suspend pauses the device without discarding rendered voices.
func (e *Engine) Suspend() error {
	e.mu.Lock()
	out := e.out
	e.mu.Unlock()
	if out == nil {
		return nil
	}
	if err := out.Suspend(); err != nil {
		return fmt.Errorf("suspend output: %w", err)
	}
	return nil
}

// Resume restarts a suspended device.
func (e *Engine) Resume() error {
	e.mu.Lock()
	out := e.out
	e.mu.Unlock()
	if out == nil {
		return nil
	}
	if err := out.Resume(); err != nil {
		return fmt.Errorf("resume output: %w", err)
	}
	return nil
}

// Dispose releases the device. Later triggers are ignored and the engine
// cannot be initialized again.
func (e *Engine) Dispose() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if State(e.state.Swap(int32(StateDisposed))) == StateDisposed {
		return nil
	}
	e.catalog.Store(nil)
	debug.Log("engine", "disposed")
	if e.out == nil {
		return nil
	}
	err := e.out.Close()
	e.out = nil
	if err != nil {
		return fmt.Errorf("close output: %w", err)
	}
	return nil
}
