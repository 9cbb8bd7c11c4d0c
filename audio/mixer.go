package audio

import (
	"encoding/binary"
	"math"
	"sync"
	"sync/atomic"
)

const bytesPerSample = 4 // float32 mono

// source is one in-flight playback. Mix adds its next len(dst) samples into
// dst and reports whether it has finished.
type source interface {
	Mix(dst []float32) bool
}

// bufferSource plays a rendered voice once.
type bufferSource struct {
	samples []float32
	pos     int
}

func (b *bufferSource) Mix(dst []float32) bool {
	rest := b.samples[b.pos:]
	n := min(len(rest), len(dst))
	for i := 0; i < n; i++ {
		dst[i] += rest[i]
	}
	b.pos += n
	return b.pos >= len(b.samples)
}

// mixer sums every in-flight source through the master gain. Sources are
// added from any goroutine; Read is only called by the output device.
type mixer struct {
	gain atomic.Uint64 // float64 bits

	mu      sync.Mutex
	pending []source

	active  []source
	scratch []float32
	playing atomic.Int64
}

func newMixer(gain float64) *mixer {
	m := &mixer{}
	m.setGain(gain)
	return m
}

func (m *mixer) setGain(g float64) {
	m.gain.Store(math.Float64bits(g))
}

func (m *mixer) getGain() float64 {
	return math.Float64frombits(m.gain.Load())
}

// add queues s to start on the next Read.
func (m *mixer) add(s source) {
	m.playing.Add(1)
	m.mu.Lock()
	m.pending = append(m.pending, s)
	m.mu.Unlock()
}

// inFlight returns the number of sources queued or playing.
func (m *mixer) inFlight() int {
	return int(m.playing.Load())
}

// Read implements io.Reader for the output device.
func (m *mixer) Read(p []byte) (int, error) {
	frames := len(p) / bytesPerSample
	if frames == 0 {
		return 0, nil
	}
	if cap(m.scratch) < frames {
		m.scratch = make([]float32, frames)
	}
	buf := m.scratch[:frames]
	clear(buf)

	m.mu.Lock()
	m.active = append(m.active, m.pending...)
	clear(m.pending)
	m.pending = m.pending[:0]
	m.mu.Unlock()

	for i := 0; i < len(m.active); i++ {
		if m.active[i].Mix(buf) {
			last := len(m.active) - 1
			m.active[i] = m.active[last]
			m.active[last] = nil
			m.active = m.active[:last]
			m.playing.Add(-1)
			i--
		}
	}

	gain := float32(m.getGain())
	for i, s := range buf {
		s *= gain
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		binary.LittleEndian.PutUint32(p[i*bytesPerSample:], math.Float32bits(s))
	}
	return frames * bytesPerSample, nil
}
