package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFrom_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "config.json"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Audio.SampleRate != 44100 || cfg.Audio.Volume != 80 || cfg.Transport.Tempo != 120 {
		t.Errorf("defaults = %+v", cfg)
	}
	if cfg.MIDI.Kit != "gm" || cfg.MIDI.Channel != 10 || cfg.MIDI.ToneChannel != 1 {
		t.Errorf("midi defaults = %+v", cfg.MIDI)
	}
}

func TestLoadFrom_PartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	data := `{"transport": {"tempo": 95}, "midi": {"outPort": "TR-8S", "kit": "tr8s"}}`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Transport.Tempo != 95 || cfg.MIDI.OutPort != "TR-8S" || cfg.MIDI.Kit != "tr8s" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Audio.SampleRate != 44100 || cfg.MIDI.Channel != 10 {
		t.Errorf("missing fields not defaulted: %+v", cfg)
	}
}

func TestLoadFrom_BadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	os.WriteFile(path, []byte("{"), 0644)
	if _, err := LoadFrom(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name   string
		in     Config
		tempo  float64
		volume float64
		ch     int
	}{
		{"slow tempo", Config{Transport: TransportConfig{Tempo: 10}}, MinTempo, 0, 10},
		{"fast tempo", Config{Transport: TransportConfig{Tempo: 400}}, MaxTempo, 0, 10},
		{"loud", Config{Audio: AudioConfig{Volume: 250}, Transport: TransportConfig{Tempo: 100}}, 100, 100, 10},
		{"negative volume", Config{Audio: AudioConfig{Volume: -3}, Transport: TransportConfig{Tempo: 100}}, 100, 0, 10},
		{"bad channel", Config{MIDI: MIDIConfig{Channel: 17}, Transport: TransportConfig{Tempo: 100}}, 100, 0, 10},
		{"good channel", Config{MIDI: MIDIConfig{Channel: 3}, Transport: TransportConfig{Tempo: 100}}, 100, 0, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.in
			cfg.Normalize()
			if cfg.Transport.Tempo != tt.tempo || cfg.Audio.Volume != tt.volume || cfg.MIDI.Channel != tt.ch {
				t.Errorf("got tempo=%v volume=%v ch=%d", cfg.Transport.Tempo, cfg.Audio.Volume, cfg.MIDI.Channel)
			}
		})
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	cfg := DefaultConfig()
	cfg.MIDI.InPort = "Keystation"
	cfg.Debug = true
	cfg.ProjectsDir = "/tmp/projects"
	if err := cfg.SaveTo(path); err != nil {
		t.Fatal(err)
	}

	got, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.MIDI.InPort != "Keystation" || !got.Debug || got.ProjectsDir != "/tmp/projects" {
		t.Errorf("loaded = %+v", got)
	}
}
