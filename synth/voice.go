// Package synth renders the groovebox's drum voices and tones from closed-form
// oscillator, envelope and noise formulas. Nothing here touches an audio device.
package synth

import "time"

// Voice identifies one percussive timbre.
type Voice string

const (
	Kick    Voice = "kick"
	Snare   Voice = "snare"
	HiHat   Voice = "hihat"
	OpenHat Voice = "openhat"
	Crash   Voice = "crash"
	Ride    Voice = "ride"
)

// Voices is the closed set of drum voices, in display order.
var Voices = []Voice{Kick, Snare, HiHat, OpenHat, Crash, Ride}

// Render lengths per voice.
var durations = map[Voice]time.Duration{
	Kick:    350 * time.Millisecond,
	Snare:   180 * time.Millisecond,
	HiHat:   90 * time.Millisecond,
	OpenHat: 300 * time.Millisecond,
	Crash:   1500 * time.Millisecond,
	Ride:    800 * time.Millisecond,
}

var names = map[Voice]string{
	Kick:    "Kick",
	Snare:   "Snare",
	HiHat:   "Hi-Hat",
	OpenHat: "Open Hat",
	Crash:   "Crash",
	Ride:    "Ride",
}

// Valid reports whether v is one of the catalog voices.
func (v Voice) Valid() bool {
	_, ok := durations[v]
	return ok
}

// Name returns a human readable label.
func (v Voice) Name() string {
	if n, ok := names[v]; ok {
		return n
	}
	return string(v)
}

// Duration returns the rendered length of v, or 0 for an unknown voice.
func Duration(v Voice) time.Duration {
	return durations[v]
}

// Samples returns the buffer length of v at sampleRate.
func Samples(v Voice, sampleRate int) int {
	return int(durations[v].Seconds() * float64(sampleRate))
}

// Buffer is one fully rendered mono voice. Samples are in [-1, 1].
// A Buffer must not be modified once rendered.
type Buffer struct {
	Voice      Voice
	SampleRate int
	Samples    []float32
}

// Len returns the number of samples.
func (b Buffer) Len() int { return len(b.Samples) }

// Duration returns the playback length.
func (b Buffer) Duration() time.Duration {
	if b.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(len(b.Samples)) / float64(b.SampleRate) * float64(time.Second))
}

// Catalog maps every voice to its rendered buffer.
type Catalog map[Voice]Buffer

// Generate renders v at sampleRate. Length is fixed per voice; content that
// uses noise differs between calls. Unknown voices yield an empty buffer.
func Generate(v Voice, sampleRate int) Buffer {
	gen, ok := generators[v]
	if !ok || sampleRate <= 0 {
		return Buffer{Voice: v, SampleRate: sampleRate}
	}
	n := Samples(v, sampleRate)
	out := make([]float32, n)
	gen(out, float64(sampleRate), newNoise())
	return Buffer{Voice: v, SampleRate: sampleRate, Samples: out}
}

// RenderCatalog renders every voice at sampleRate.
func RenderCatalog(sampleRate int) Catalog {
	c := make(Catalog, len(Voices))
	for _, v := range Voices {
		c[v] = Generate(v, sampleRate)
	}
	return c
}
