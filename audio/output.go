package audio

import (
	"context"
	"io"
	"sync"
	"time"
)

// Output is a real-time audio sink. Once Play is called the sink pulls mono
// float32 little-endian PCM from src at the device rate until Close.
type Output interface {
	Play(src io.Reader) error
	Suspend() error
	Resume() error
	Close() error
}

// OutputFactory opens an Output at sampleRate. ctx bounds any device-ready
// handshake the platform needs.
type OutputFactory func(ctx context.Context, sampleRate int) (Output, error)

// NullOutput drains its source in real time and discards the audio. It stands
// in for a device in headless builds.
type NullOutput struct {
	sampleRate int
	period     time.Duration

	mu        sync.Mutex
	suspended bool
	stop      chan struct{}
	done      chan struct{}
}

// OpenNull is an OutputFactory for NullOutput.
func OpenNull(_ context.Context, sampleRate int) (Output, error) {
	return &NullOutput{sampleRate: sampleRate, period: 10 * time.Millisecond}, nil
}

func (n *NullOutput) Play(src io.Reader) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.stop != nil {
		return nil
	}
	n.stop = make(chan struct{})
	n.done = make(chan struct{})
	go n.drain(src, n.stop, n.done)
	return nil
}

func (n *NullOutput) drain(src io.Reader, stop, done chan struct{}) {
	defer close(done)
	frames := int(float64(n.sampleRate) * n.period.Seconds())
	buf := make([]byte, frames*bytesPerSample)
	ticker := time.NewTicker(n.period)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			n.mu.Lock()
			suspended := n.suspended
			n.mu.Unlock()
			if !suspended {
				src.Read(buf)
			}
		}
	}
}

func (n *NullOutput) Suspend() error {
	n.mu.Lock()
	n.suspended = true
	n.mu.Unlock()
	return nil
}

func (n *NullOutput) Resume() error {
	n.mu.Lock()
	n.suspended = false
	n.mu.Unlock()
	return nil
}

func (n *NullOutput) Close() error {
	n.mu.Lock()
	stop, done := n.stop, n.done
	n.stop = nil
	n.mu.Unlock()
	if stop != nil {
		close(stop)
		<-done
	}
	return nil
}
