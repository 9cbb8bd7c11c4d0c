package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
)

// AudioConfig holds engine settings
type AudioConfig struct {
	SampleRate int     `json:"sampleRate"`
	Volume     float64 `json:"volume"`
}

// TransportConfig holds the starting tempo
type TransportConfig struct {
	Tempo float64 `json:"tempo"`
}

// MIDIConfig defines the optional MIDI mirror and keyboard input
type MIDIConfig struct {
	OutPort     string `json:"outPort,omitempty"`
	InPort      string `json:"inPort,omitempty"`
	Kit         string `json:"kit,omitempty"`
	Channel     int    `json:"channel,omitempty"`     // drum channel, 1-16
	ToneChannel int    `json:"toneChannel,omitempty"` // piano roll channel, 1-16
}

// UIConfig stores UI preferences
type UIConfig struct {
	Palette string `json:"palette,omitempty"` // GIMP .gpl file
}

// Config is the main configuration structure
type Config struct {
	Audio       AudioConfig     `json:"audio"`
	Transport   TransportConfig `json:"transport"`
	MIDI        MIDIConfig      `json:"midi,omitempty"`
	UI          UIConfig        `json:"ui,omitempty"`
	ProjectsDir string          `json:"projectsDir,omitempty"`
	Debug       bool            `json:"debug,omitempty"`
}

// Limits applied by Normalize.
const (
	MinTempo = 60
	MaxTempo = 200
)

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Audio: AudioConfig{
			SampleRate: 44100,
			Volume:     80,
		},
		Transport: TransportConfig{
			Tempo: 120,
		},
		MIDI: MIDIConfig{
			Kit:         "gm",
			Channel:     10,
			ToneChannel: 1,
		},
	}
}

// Normalize fills missing values with defaults and clamps the rest.
func (c *Config) Normalize() {
	def := DefaultConfig()
	if c.Audio.SampleRate <= 0 {
		c.Audio.SampleRate = def.Audio.SampleRate
	}
	if math.IsNaN(c.Audio.Volume) {
		c.Audio.Volume = def.Audio.Volume
	}
	c.Audio.Volume = math.Max(0, math.Min(100, c.Audio.Volume))

	switch t := c.Transport.Tempo; {
	case t == 0 || math.IsNaN(t):
		c.Transport.Tempo = def.Transport.Tempo
	case t < MinTempo:
		c.Transport.Tempo = MinTempo
	case t > MaxTempo:
		c.Transport.Tempo = MaxTempo
	}

	if c.MIDI.Kit == "" {
		c.MIDI.Kit = def.MIDI.Kit
	}
	if c.MIDI.Channel < 1 || c.MIDI.Channel > 16 {
		c.MIDI.Channel = def.MIDI.Channel
	}
	if c.MIDI.ToneChannel < 1 || c.MIDI.ToneChannel > 16 {
		c.MIDI.ToneChannel = def.MIDI.ToneChannel
	}
	if c.ProjectsDir == "" {
		if dir, err := ConfigDir(); err == nil {
			c.ProjectsDir = filepath.Join(dir, "projects")
		}
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-groovebox"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		cfg := DefaultConfig()
		cfg.Normalize()
		return cfg, nil
	}
	return LoadFrom(path)
}

// LoadFrom reads the config at path. A missing file yields defaults.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.Normalize()
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.Normalize()
	return cfg, nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the config to path, creating its directory.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
