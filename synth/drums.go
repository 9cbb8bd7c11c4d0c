package synth

import "math"

// generator fills out with a voice sampled at sr.
type generator func(out []float32, sr float64, n *noise)

var generators = map[Voice]generator{
	Kick:    genKick,
	Snare:   genSnare,
	HiHat:   genHiHat,
	OpenHat: genOpenHat,
	Crash:   genCrash,
	Ride:    genRide,
}

// genKick: sine gliding from 160 Hz down to 50 Hz under a fast decay, with a
// short noise click on the attack.
func genKick(out []float32, sr float64, n *noise) {
	for i := range out {
		t := float64(i) / sr
		body := math.Sin(sweepPhase(160, 50, 30, t)) * math.Exp(-t*8) * 0.95
		click := n.next() * math.Exp(-t*300) * 0.3
		out[i] = float32(saturate(body + click))
	}
}

// genSnare: two body partials under dominant noise plus a high snap.
func genSnare(out []float32, sr float64, n *noise) {
	for i := range out {
		t := float64(i) / sr
		env := math.Exp(-t * 12)
		body := (sine(190, t)*0.35 + sine(330, t)*0.15) * env
		rattle := n.next() * 0.8 * env
		snap := sine(2800, t) * math.Exp(-t*90) * 0.15
		out[i] = float32(saturate((body + rattle + snap) * 0.9))
	}
}

// genHiHat: short metallic tick, mostly noise with two high partials.
func genHiHat(out []float32, sr float64, n *noise) {
	for i := range out {
		t := float64(i) / sr
		metal := sine(8000, t) + sine(10500, t)*0.6
		s := (n.next()*0.7 + metal*0.15) * math.Exp(-t*45)
		out[i] = float32(saturate(s * 0.6))
	}
}

// genOpenHat: sustained hiss.
func genOpenHat(out []float32, sr float64, n *noise) {
	for i := range out {
		t := float64(i) / sr
		out[i] = float32(saturate(n.next() * math.Exp(-t*10) * 0.45))
	}
}

var crashPartials = [...]float64{3100, 4700, 6300, 8800}

// genCrash: the longest voice, noise plus a spread of high partials.
func genCrash(out []float32, sr float64, n *noise) {
	for i := range out {
		t := float64(i) / sr
		shimmer := 0.0
		for _, f := range crashPartials {
			shimmer += sine(f, t) * 0.08
		}
		s := (n.next()*0.55 + shimmer) * math.Exp(-t*1.8)
		out[i] = float32(saturate(s * 0.8))
	}
}

// genRide: a 1200 Hz bell with an inharmonic overtone over moderate noise.
func genRide(out []float32, sr float64, n *noise) {
	for i := range out {
		t := float64(i) / sr
		bell := sine(1200, t)*0.45 + sine(2450, t)*0.1
		s := (bell + n.next()*0.25) * math.Exp(-t*3)
		out[i] = float32(saturate(s * 0.7))
	}
}
