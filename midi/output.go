package midi

import (
	"fmt"
	"sync"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"

	"go-groovebox/debug"
	"go-groovebox/synth"
)

// Output defaults.
const (
	DrumGate      = 100 * time.Millisecond
	TriggerVolume = 100
	DefaultDrumCh = 10
	DefaultToneCh = 1
)

// Output mirrors drum voices and tones to a MIDI port. Drums play the kit
// note on the drum channel; tones play on the tone channel and are
// released after their duration. Channels are 1-based.
type Output struct {
	send   func(gomidi.Message) error
	close  func() error
	kit    DrumKit
	drumCh uint8
	toneCh uint8

	mu      sync.Mutex
	pending map[[2]uint8]*time.Timer // (channel, note) -> its note off
	closed  bool
}

// NewOutput mirrors to send. closeFn may be nil.
func NewOutput(send func(gomidi.Message) error, closeFn func() error, kit DrumKit, drumCh, toneCh int) *Output {
	return &Output{
		send:    send,
		close:   closeFn,
		kit:     kit,
		drumCh:  channelIndex(drumCh, DefaultDrumCh),
		toneCh:  channelIndex(toneCh, DefaultToneCh),
		pending: make(map[[2]uint8]*time.Timer),
	}
}

// OpenOutput opens the named output port.
func OpenOutput(portName, kit string, drumCh, toneCh int) (*Output, error) {
	port, err := FindOut(portName)
	if err != nil {
		return nil, err
	}
	send, err := gomidi.SendTo(port)
	if err != nil {
		return nil, fmt.Errorf("open output %s: %w", portName, err)
	}
	debug.Log("midi", "mirroring to %s (kit %s)", portName, kit)
	return NewOutput(send, port.Close, GetKit(kit), drumCh, toneCh), nil
}

func channelIndex(ch, fallback int) uint8 {
	if ch < 1 || ch > 16 {
		ch = fallback
	}
	return uint8(ch - 1)
}

// TriggerVoice plays the kit note for v. Voices missing from the kit are
// ignored.
func (o *Output) TriggerVoice(v synth.Voice) {
	note, ok := o.kit.Note(v)
	if !ok {
		return
	}
	o.play(o.drumCh, note, DrumGate)
}

// TriggerTone plays note for d. Notes outside 0..127 are ignored.
func (o *Output) TriggerTone(note int, d time.Duration) {
	if note < 0 || note > 127 || d <= 0 {
		return
	}
	o.play(o.toneCh, uint8(note), d)
}

// play sounds note for gate. A retrigger of a held note releases it first,
// so the latest trigger owns the note off.
func (o *Output) play(ch, note uint8, gate time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return
	}

	key := [2]uint8{ch, note}
	if held, ok := o.pending[key]; ok {
		held.Stop()
		delete(o.pending, key)
		o.send(gomidi.NoteOff(ch, note))
	}
	if err := o.send(gomidi.NoteOn(ch, note, TriggerVolume)); err != nil {
		debug.Log("midi", "note on %d: %v", note, err)
		return
	}

	var t *time.Timer
	t = time.AfterFunc(gate, func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		if o.pending[key] != t {
			return
		}
		delete(o.pending, key)
		o.send(gomidi.NoteOff(ch, note))
	})
	o.pending[key] = t
}

// Pending returns the number of notes waiting for their note off.
func (o *Output) Pending() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.pending)
}

// Close releases every held note and closes the port.
func (o *Output) Close() error {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return nil
	}
	o.closed = true
	for key, t := range o.pending {
		t.Stop()
		o.send(gomidi.NoteOff(key[0], key[1]))
	}
	clear(o.pending)
	o.mu.Unlock()

	if o.close != nil {
		return o.close()
	}
	return nil
}
