package synth

import (
	"math"
	"time"
)

// Tone envelope shape.
const (
	TonePeak    = 0.3
	ToneSustain = 0.1
	ToneFloor   = 0.01

	ToneAttack = 10 * time.Millisecond
	ToneDecay  = 100 * time.Millisecond
)

// NoteToFreq converts an equal-tempered note number (69 = A4) to Hz.
func NoteToFreq(note int) float64 {
	return 440 * math.Pow(2, float64(note-69)/12)
}

// ToneEnvelope returns the tone amplitude at t seconds into a tone lasting
// dur seconds: a linear rise to TonePeak over ToneAttack, an exponential fall
// to ToneSustain by ToneDecay, then an exponential fall to ToneFloor at dur.
// Outside [0, dur) the envelope is silent.
func ToneEnvelope(t, dur float64) float64 {
	if t < 0 || t >= dur || dur <= 0 {
		return 0
	}
	attack := math.Min(ToneAttack.Seconds(), dur/2)
	if t < attack {
		return TonePeak * t / attack
	}
	decay := ToneDecay.Seconds()
	if dur > decay {
		if t < decay {
			return expRamp(TonePeak, ToneSustain, (t-attack)/(decay-attack))
		}
		return expRamp(ToneSustain, ToneFloor, (t-decay)/(dur-decay))
	}
	return expRamp(TonePeak, ToneFloor, (t-attack)/(dur-attack))
}

// expRamp moves exponentially from a to b as p goes from 0 to 1.
func expRamp(a, b, p float64) float64 {
	return a * math.Pow(b/a, p)
}

// Tone is a sine oscillator shaped by ToneEnvelope. It is rendered on the
// fly and reports done once its duration has elapsed.
type Tone struct {
	freq  float64
	dur   float64
	sr    float64
	pos   int
	total int
}

// NewTone prepares a tone of freq Hz lasting dur at sampleRate.
func NewTone(freq float64, dur time.Duration, sampleRate int) *Tone {
	sr := float64(sampleRate)
	return &Tone{
		freq:  freq,
		dur:   dur.Seconds(),
		sr:    sr,
		total: int(dur.Seconds() * sr),
	}
}

// Len returns the total number of samples the tone produces.
func (t *Tone) Len() int { return t.total }

// Mix adds the next len(dst) samples into dst. It returns true once the
// tone has produced its last sample.
func (t *Tone) Mix(dst []float32) bool {
	for i := range dst {
		if t.pos >= t.total {
			return true
		}
		at := float64(t.pos) / t.sr
		dst[i] += float32(sine(t.freq, at) * ToneEnvelope(at, t.dur))
		t.pos++
	}
	return t.pos >= t.total
}

// Render returns the whole tone as a buffer.
func (t *Tone) Render() []float32 {
	out := make([]float32, t.total-t.pos)
	t.Mix(out)
	return out
}
