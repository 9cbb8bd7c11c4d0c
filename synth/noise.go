package synth

import (
	"math"
	"math/rand/v2"
)

// noise is an LCG white noise source. Each render gets a fresh seed, so two
// catalogs rendered in one process sound slightly different.
type noise struct {
	seed uint64
}

func newNoise() *noise {
	return &noise{seed: rand.Uint64() | 1}
}

// next returns a sample in [-1, 1].
func (n *noise) next() float64 {
	n.seed = n.seed*6364136223846793005 + 1442695040888963407
	return float64(int64(n.seed>>33)-int64(1<<30)) / float64(1<<30)
}

// saturate soft-clips x into [-1, 1] without flattening small signals.
func saturate(x float64) float64 {
	return math.Tanh(x)
}

// sine is sin(2*pi*freq*t).
func sine(freq, t float64) float64 {
	return math.Sin(2 * math.Pi * freq * t)
}

// sweepPhase is the phase of an oscillator whose frequency glides
// exponentially from start to end with rate k: f(t) = end + (start-end)*exp(-k*t).
func sweepPhase(start, end, k, t float64) float64 {
	return 2 * math.Pi * (end*t + (start-end)/k*(1-math.Exp(-k*t)))
}
