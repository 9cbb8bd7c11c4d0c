package synth

import (
	"math"
	"testing"
)

const testRate = 44100

func windowRMS(samples []float32, windows int) []float64 {
	size := len(samples) / windows
	out := make([]float64, windows)
	for w := 0; w < windows; w++ {
		var sum float64
		for _, s := range samples[w*size : (w+1)*size] {
			sum += float64(s) * float64(s)
		}
		out[w] = math.Sqrt(sum / float64(size))
	}
	return out
}

func TestGenerate_Length(t *testing.T) {
	for _, rate := range []int{22050, 44100, 48000} {
		for _, v := range Voices {
			b := Generate(v, rate)
			want := int(Duration(v).Seconds() * float64(rate))
			if b.Len() == 0 {
				t.Fatalf("%s@%d: empty buffer", v, rate)
			}
			if b.Len() != want {
				t.Errorf("%s@%d: len = %d, want %d", v, rate, b.Len(), want)
			}
			if b.Voice != v || b.SampleRate != rate {
				t.Errorf("%s@%d: buffer tagged %s@%d", v, rate, b.Voice, b.SampleRate)
			}
		}
	}
}

func TestGenerate_Range(t *testing.T) {
	for _, v := range Voices {
		b := Generate(v, testRate)
		for i, s := range b.Samples {
			if s < -1 || s > 1 || math.IsNaN(float64(s)) {
				t.Fatalf("%s: sample %d = %v out of range", v, i, s)
			}
		}
	}
}

func TestGenerate_DecayingEnvelope(t *testing.T) {
	for _, v := range Voices {
		t.Run(string(v), func(t *testing.T) {
			rms := windowRMS(Generate(v, testRate).Samples, 8)

			peak := 0
			for i, r := range rms {
				if r > rms[peak] {
					peak = i
				}
			}
			if rms[peak] == 0 {
				t.Fatal("silent buffer")
			}
			for i := peak + 1; i < len(rms); i++ {
				if rms[i] >= rms[i-1] {
					t.Errorf("window %d rms %.4f >= window %d rms %.4f", i, rms[i], i-1, rms[i-1])
				}
			}
		})
	}
}

func TestGenerate_Distinguishable(t *testing.T) {
	// Kick energy sits low, hats sit high: count zero crossings per second.
	crossings := func(v Voice) float64 {
		b := Generate(v, testRate)
		n := 0
		for i := 1; i < b.Len(); i++ {
			if (b.Samples[i-1] < 0) != (b.Samples[i] < 0) {
				n++
			}
		}
		return float64(n) / b.Duration().Seconds()
	}
	if k, h := crossings(Kick), crossings(HiHat); k*10 > h {
		t.Errorf("kick crossings/s %.0f not well below hihat %.0f", k, h)
	}
}

func TestGenerate_Unknown(t *testing.T) {
	if b := Generate(Voice("cowbell"), testRate); b.Len() != 0 {
		t.Errorf("unknown voice rendered %d samples", b.Len())
	}
	if Voice("cowbell").Valid() {
		t.Error("cowbell reported valid")
	}
}

func TestRenderCatalog(t *testing.T) {
	c := RenderCatalog(testRate)
	if len(c) != len(Voices) {
		t.Fatalf("catalog has %d voices, want %d", len(c), len(Voices))
	}
	longest := Voice("")
	for v, b := range c {
		if longest == "" || b.Len() > c[longest].Len() {
			longest = v
		}
	}
	if longest != Crash {
		t.Errorf("longest voice = %s, want crash", longest)
	}
}
