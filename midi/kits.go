package midi

import (
	"sort"

	"go-groovebox/synth"
)

// DrumKit maps each drum voice to the note a drum machine expects.
type DrumKit struct {
	Name  string
	Notes map[synth.Voice]uint8
}

// Note returns the note for v and whether the kit has one.
func (k DrumKit) Note(v synth.Voice) (uint8, bool) {
	n, ok := k.Notes[v]
	return n, ok
}

// Kits contains all available drum kit mappings
var Kits = map[string]DrumKit{
	"gm": {
		Name: "General MIDI",
		Notes: map[synth.Voice]uint8{
			synth.Kick:    36,
			synth.Snare:   38,
			synth.HiHat:   42,
			synth.OpenHat: 46,
			synth.Crash:   49,
			synth.Ride:    51,
		},
	},
	"rd8": {
		Name: "Behringer RD-8",
		Notes: map[synth.Voice]uint8{
			synth.Kick:    36,
			synth.Snare:   40, // RD-8 uses 40, not 38
			synth.HiHat:   42,
			synth.OpenHat: 46,
			synth.Crash:   49,
			synth.Ride:    51,
		},
	},
	"tr8s": {
		Name: "Roland TR-8S",
		Notes: map[synth.Voice]uint8{
			synth.Kick:    36,
			synth.Snare:   38,
			synth.HiHat:   42,
			synth.OpenHat: 46,
			synth.Crash:   49,
			synth.Ride:    51,
		},
	},
	"er1": {
		Name: "Korg ER-1",
		Notes: map[synth.Voice]uint8{
			synth.Kick:    36,
			synth.Snare:   38,
			synth.HiHat:   42,
			synth.OpenHat: 46,
			synth.Crash:   49,
			synth.Ride:    45, // Audio In 2
		},
	},
}

// DefaultKit is the default kit name
const DefaultKit = "gm"

// KitNames returns the available kit names, sorted.
func KitNames() []string {
	names := make([]string, 0, len(Kits))
	for name := range Kits {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetKit returns a kit by name, defaulting to GM if not found
func GetKit(name string) DrumKit {
	if kit, ok := Kits[name]; ok {
		return kit
	}
	return Kits[DefaultKit]
}
