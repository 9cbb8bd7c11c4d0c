package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"go-groovebox/audio"
	"go-groovebox/config"
	"go-groovebox/midi"
	"go-groovebox/sequencer"
	"go-groovebox/synth"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	var err error
	switch os.Args[1] {
	case "ports":
		err = listPorts()
	case "kits":
		listKits()
	case "render":
		dir := "."
		if len(os.Args) > 2 {
			dir = os.Args[2]
		}
		err = render(dir, 44100)
	case "play":
		if len(os.Args) < 3 {
			usage()
			return
		}
		err = play(os.Args[2])
	case "send":
		if len(os.Args) < 3 {
			usage()
			return
		}
		kit := midi.DefaultKit
		if len(os.Args) > 3 {
			kit = os.Args[3]
		}
		err = send(os.Args[2], kit)
	case "projects", "saves", "rm", "mv":
		err = projects(os.Args[1], os.Args[2:])
	default:
		usage()
	}

	midi.CloseDriver()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("Groovebox studio tools")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  ports               - List all MIDI ports")
	fmt.Println("  kits                - Show drum kit note maps")
	fmt.Println("  render [dir]        - Write every drum voice as a WAV file")
	fmt.Println("  play <voice|note>   - Play one voice or MIDI note on the speakers")
	fmt.Println("  send <port> [kit]   - Send each drum voice to a MIDI output")
	fmt.Println("  projects            - List saved projects")
	fmt.Println("  saves <project>     - List the saves of a project, newest first")
	fmt.Println("  rm <project> <file> - Delete a save")
	fmt.Println("  mv <project> <file> <label> - Relabel a save")
}

func projects(cmd string, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	store := sequencer.NewProjects(cfg.ProjectsDir)

	need := map[string]int{"projects": 0, "saves": 1, "rm": 2, "mv": 3}[cmd]
	if len(args) < need {
		usage()
		return nil
	}

	switch cmd {
	case "projects":
		names, err := store.List()
		if err != nil {
			return err
		}
		for _, name := range names {
			fmt.Println(name)
		}
	case "saves":
		saves, err := store.ListSaves(args[0])
		if err != nil {
			return err
		}
		for _, s := range saves {
			fmt.Printf("%-40s %s\n", s.Filename, s.Name)
		}
	case "rm":
		return store.DeleteSave(args[0], args[1])
	case "mv":
		renamed, err := store.RenameSave(args[0], args[1], args[2])
		if err != nil {
			return err
		}
		fmt.Println(renamed)
	}
	return nil
}

func listPorts() error {
	fmt.Printf("(waiting up to %v...)\n", midi.PortTimeout)
	ports, err := midi.Ports(midi.PortTimeout)
	if err != nil {
		fmt.Println("Fix on macOS: sudo killall coreaudiod midiserver")
		return err
	}

	fmt.Println("=== MIDI Input Ports ===")
	for i, name := range ports.InNames() {
		fmt.Printf("  %d: %s\n", i, name)
	}
	fmt.Println("\n=== MIDI Output Ports ===")
	for i, name := range ports.OutNames() {
		fmt.Printf("  %d: %s\n", i, name)
	}
	return nil
}

func listKits() {
	for _, name := range midi.KitNames() {
		kit := midi.GetKit(name)
		fmt.Printf("%s\n", kit.Name)
		for _, v := range synth.Voices {
			note, _ := kit.Note(v)
			fmt.Printf("  %-10s %3d\n", v.Name(), note)
		}
	}
}

// render writes one file per voice, generated in parallel.
func render(dir string, sampleRate int) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	var g errgroup.Group
	for _, v := range synth.Voices {
		g.Go(func() error {
			path := filepath.Join(dir, string(v)+".wav")
			f, err := os.Create(path)
			if err != nil {
				return err
			}
			if err := synth.WriteWAV(f, synth.Generate(v, sampleRate)); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Println("wrote", path)
			return nil
		})
	}
	return g.Wait()
}

func play(what string) error {
	eng := audio.New()
	defer eng.Dispose()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := eng.Initialize(ctx); err != nil {
		return err
	}

	if note, err := strconv.Atoi(what); err == nil {
		eng.TriggerTone(note, time.Second)
		time.Sleep(1200 * time.Millisecond)
		return nil
	}

	v := synth.Voice(what)
	if !v.Valid() {
		return fmt.Errorf("unknown voice %q (have %v)", what, synth.Voices)
	}
	eng.TriggerVoice(v)
	time.Sleep(synth.Duration(v) + 200*time.Millisecond)
	return nil
}

func send(port, kit string) error {
	out, err := midi.OpenOutput(port, kit, midi.DefaultDrumCh, midi.DefaultToneCh)
	if err != nil {
		return err
	}
	defer out.Close()

	notes := midi.GetKit(kit)
	for _, v := range synth.Voices {
		note, _ := notes.Note(v)
		fmt.Printf("%s -> note %d\n", v.Name(), note)
		out.TriggerVoice(v)
		time.Sleep(300 * time.Millisecond)
	}
	return nil
}
