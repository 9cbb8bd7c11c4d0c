//go:build !headless

package audio

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/ebitengine/oto/v3"
)

// oto allows a single context per process, so it is created once and
// shared by every engine that opens the device.
var (
	otoMu    sync.Mutex
	otoCtx   *oto.Context
	otoReady chan struct{}
	otoRate  int
)

func sharedContext(sampleRate int) (*oto.Context, chan struct{}, error) {
	otoMu.Lock()
	defer otoMu.Unlock()

	if otoCtx != nil {
		if otoRate != sampleRate {
			return nil, nil, fmt.Errorf("oto context already open at %d Hz", otoRate)
		}
		return otoCtx, otoReady, nil
	}

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
	})
	if err != nil {
		return nil, nil, err
	}
	otoCtx, otoReady, otoRate = ctx, ready, sampleRate
	return ctx, ready, nil
}

// OtoOutput plays through the platform audio device.
type OtoOutput struct {
	ctx        *oto.Context
	sampleRate int

	mu     sync.Mutex
	player *oto.Player
}

// OpenOto is an OutputFactory for the platform device. It waits for the
// device to report ready or for ctx to end.
func OpenOto(ctx context.Context, sampleRate int) (Output, error) {
	c, ready, err := sharedContext(sampleRate)
	if err != nil {
		return nil, fmt.Errorf("open oto context: %w", err)
	}
	select {
	case <-ready:
	case <-ctx.Done():
		return nil, fmt.Errorf("wait for audio device: %w", ctx.Err())
	}
	if err := c.Err(); err != nil {
		return nil, fmt.Errorf("audio device: %w", err)
	}
	return &OtoOutput{ctx: c, sampleRate: sampleRate}, nil
}

func (o *OtoOutput) Play(src io.Reader) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.player != nil {
		return nil
	}
	p := o.ctx.NewPlayer(src)
	// 10ms of buffered audio keeps trigger latency low.
	p.SetBufferSize(o.sampleRate / 100 * bytesPerSample)
	p.Play()
	o.player = p
	return nil
}

func (o *OtoOutput) Suspend() error {
	return o.ctx.Suspend()
}

func (o *OtoOutput) Resume() error {
	return o.ctx.Resume()
}

func (o *OtoOutput) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.player == nil {
		return nil
	}
	err := o.player.Close()
	o.player = nil
	return err
}

// DefaultOutput opens the platform audio device.
var DefaultOutput OutputFactory = OpenOto
