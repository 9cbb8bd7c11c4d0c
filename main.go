package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"go-groovebox/audio"
	"go-groovebox/config"
	"go-groovebox/debug"
	"go-groovebox/midi"
	"go-groovebox/sequencer"
	"go-groovebox/theme"
	"go-groovebox/tui"
)

func main() {
	if err := run(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if cfg.Debug || os.Getenv("GROOVEBOX_DEBUG") == "1" {
		if err := debug.Enable(""); err != nil {
			fmt.Printf("debug log disabled: %v\n", err)
		}
		defer debug.Disable()
	}

	palette, err := theme.LoadOrDefault(cfg.UI.Palette)
	if err != nil {
		debug.Log("ui", "palette %s: %v, using %s", cfg.UI.Palette, err, palette.Name)
	}
	th := theme.New(palette)

	// Audio opens lazily on the first play or audition
	engine := audio.New(audio.WithSampleRate(cfg.Audio.SampleRate))
	engine.SetMasterVolume(cfg.Audio.Volume)

	manager := sequencer.NewManager(engine, cfg.Transport.Tempo)
	manager.SetProjects(sequencer.NewProjects(cfg.ProjectsDir))
	defer func() {
		if err := manager.Close(); err != nil {
			debug.Log("app", "close: %v", err)
		}
		midi.CloseDriver()
	}()

	if cfg.MIDI.OutPort != "" {
		out, err := midi.OpenOutput(cfg.MIDI.OutPort, cfg.MIDI.Kit, cfg.MIDI.Channel, cfg.MIDI.ToneChannel)
		if err != nil {
			fmt.Printf("MIDI out disabled: %v\n", err)
		} else {
			manager.AddOutput(out)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	// Keyboard input (handles hot-plug)
	var deviceMgr *midi.DeviceManager
	if cfg.MIDI.InPort != "" {
		deviceMgr = midi.NewDeviceManager(cfg.MIDI.InPort)
		g.Go(func() error {
			deviceMgr.Run(ctx)
			return nil
		})
	}

	m := tui.NewModel(manager, deviceMgr, th)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	g.Go(func() error {
		defer cancel()
		_, err := p.Run()
		if errors.Is(err, tea.ErrProgramKilled) {
			return nil
		}
		return err
	})

	return g.Wait()
}
