package midi

import (
	"fmt"
	"sync"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// KeyboardController reads notes from a MIDI keyboard.
type KeyboardController struct {
	id       string
	stopFunc func()
	noteChan chan NoteEvent
	once     sync.Once
}

// NewKeyboardController starts listening on inPort.
func NewKeyboardController(id string, inPort drivers.In) (*KeyboardController, error) {
	kb := newKeyboard(id)
	stop, err := gomidi.ListenTo(inPort, func(msg gomidi.Message, timestampms int32) {
		kb.handle(msg)
	})
	if err != nil {
		return nil, fmt.Errorf("open input %s: %w", id, err)
	}
	kb.stopFunc = stop
	return kb, nil
}

func newKeyboard(id string) *KeyboardController {
	return &KeyboardController{
		id:       id,
		noteChan: make(chan NoteEvent, 32),
	}
}

// handle forwards note on and off messages, dropping them if the reader
// has fallen behind.
func (kb *KeyboardController) handle(msg gomidi.Message) {
	var channel, note, velocity uint8
	switch {
	case msg.GetNoteOn(&channel, &note, &velocity):
	case msg.GetNoteOff(&channel, &note, &velocity):
		velocity = 0
	default:
		return
	}
	select {
	case kb.noteChan <- NoteEvent{Note: note, Velocity: velocity, Channel: channel}:
	default:
	}
}

func (kb *KeyboardController) ID() string {
	return kb.id
}

func (kb *KeyboardController) NoteEvents() <-chan NoteEvent {
	return kb.noteChan
}

// Close stops listening and closes the note channel.
func (kb *KeyboardController) Close() error {
	kb.once.Do(func() {
		if kb.stopFunc != nil {
			kb.stopFunc()
		}
		close(kb.noteChan)
	})
	return nil
}
