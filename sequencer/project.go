package sequencer

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go-groovebox/debug"
	"go-groovebox/synth"
)

// ErrNoSaves is returned when loading the latest save of an empty project.
var ErrNoSaves = errors.New("no saves found")

const saveStamp = "2006-01-02_15-04-05"

// Project is the saved record of a session: transport settings plus the
// pattern and notes exactly as the editors left them.
type Project struct {
	Tempo  float64     `json:"tempo"`
	Volume float64     `json:"volume"`
	Drums  DrumPattern `json:"drums"`
	Notes  []NoteEvent `json:"notes"`
	Muted  []string    `json:"muted,omitempty"`
}

// SaveInfo describes one save file in a project folder.
type SaveInfo struct {
	Filename  string
	Name      string // text after the timestamp, if any
	Timestamp time.Time
}

// Projects stores each project as a folder of timestamped JSON saves.
type Projects struct {
	Dir string
	now func() time.Time
}

// NewProjects returns a store rooted at dir.
func NewProjects(dir string) *Projects {
	return &Projects{Dir: dir, now: time.Now}
}

// DefaultProjectsDir returns ~/.config/go-groovebox/projects.
func DefaultProjectsDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-groovebox", "projects"), nil
}

func (p *Projects) projectDir(name string) string {
	return filepath.Join(p.Dir, sanitizeFilename(name))
}

// List returns all project folder names, sorted.
func (p *Projects) List() ([]string, error) {
	entries, err := os.ReadDir(p.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("list projects: %w", err)
	}

	var projects []string
	for _, entry := range entries {
		if entry.IsDir() {
			projects = append(projects, entry.Name())
		}
	}
	sort.Strings(projects)
	return projects, nil
}

// ListSaves returns the saves of a project, newest first.
func (p *Projects) ListSaves(project string) ([]SaveInfo, error) {
	entries, err := os.ReadDir(p.projectDir(project))
	if err != nil {
		if os.IsNotExist(err) {
			return []SaveInfo{}, nil
		}
		return nil, fmt.Errorf("list saves: %w", err)
	}

	var saves []SaveInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		// 2024-01-15_14-30-00.json or 2024-01-15_14-30-00_name.json
		base, ok := strings.CutSuffix(entry.Name(), ".json")
		if !ok || len(base) < len(saveStamp) {
			continue
		}
		ts, err := time.Parse(saveStamp, base[:len(saveStamp)])
		if err != nil {
			continue
		}
		var name string
		if rest := base[len(saveStamp):]; strings.HasPrefix(rest, "_") {
			name = rest[1:]
		}
		saves = append(saves, SaveInfo{Filename: entry.Name(), Name: name, Timestamp: ts})
	}

	sort.Slice(saves, func(i, j int) bool {
		return saves[i].Timestamp.After(saves[j].Timestamp)
	})
	return saves, nil
}

// Save writes rec as a new timestamped save and returns its filename.
func (p *Projects) Save(project, label string, rec Project) (string, error) {
	if project == "" {
		project = "untitled"
	}
	dir := p.projectDir(project)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create project dir: %w", err)
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode project: %w", err)
	}

	filename := p.now().Format(saveStamp)
	if label = sanitizeFilename(label); label != "" {
		filename += "_" + label
	}
	filename += ".json"
	if err := os.WriteFile(filepath.Join(dir, filename), data, 0644); err != nil {
		return "", fmt.Errorf("write save: %w", err)
	}
	debug.Log("project", "saved %s/%s", project, filename)
	return filename, nil
}

// Load reads a save, or the newest one when filename is empty.
func (p *Projects) Load(project, filename string) (Project, error) {
	if filename == "" {
		saves, err := p.ListSaves(project)
		if err != nil {
			return Project{}, err
		}
		if len(saves) == 0 {
			return Project{}, fmt.Errorf("%w in project %s", ErrNoSaves, project)
		}
		filename = saves[0].Filename
	}

	data, err := os.ReadFile(filepath.Join(p.projectDir(project), filepath.Base(filename)))
	if err != nil {
		return Project{}, fmt.Errorf("read save: %w", err)
	}
	rec := Project{Tempo: DefaultTempo, Volume: 80}
	if err := json.Unmarshal(data, &rec); err != nil {
		return Project{}, fmt.Errorf("decode save %s: %w", filename, err)
	}
	debug.Log("project", "loaded %s/%s", project, filename)
	return rec, nil
}

// DeleteSave removes one save file.
func (p *Projects) DeleteSave(project, filename string) error {
	if err := os.Remove(filepath.Join(p.projectDir(project), filepath.Base(filename))); err != nil {
		return fmt.Errorf("delete save: %w", err)
	}
	return nil
}

// RenameSave changes the label of a save and keeps its timestamp.
func (p *Projects) RenameSave(project, filename, label string) (string, error) {
	base := strings.TrimSuffix(filepath.Base(filename), ".json")
	if len(base) < len(saveStamp) {
		return "", fmt.Errorf("invalid save filename %q", filename)
	}
	renamed := base[:len(saveStamp)]
	if label = sanitizeFilename(label); label != "" {
		renamed += "_" + label
	}
	renamed += ".json"

	dir := p.projectDir(project)
	if err := os.Rename(filepath.Join(dir, filepath.Base(filename)), filepath.Join(dir, renamed)); err != nil {
		return "", fmt.Errorf("rename save: %w", err)
	}
	return renamed, nil
}

// sanitizeFilename strips characters that are awkward in file names.
func sanitizeFilename(name string) string {
	return strings.NewReplacer(
		" ", "-", "/", "-", "\\", "-", ":", "-",
		"*", "", "?", "", "\"", "", "<", "", ">", "", "|", "",
	).Replace(strings.TrimSpace(name))
}

// ProjectFrom captures the current pattern state.
func ProjectFrom(snap *Snapshot, tempo, volume float64) Project {
	rec := Project{
		Tempo:  tempo,
		Volume: volume,
		Drums:  make(DrumPattern, len(snap.Drums)),
		Notes:  append([]NoteEvent{}, snap.Notes...),
	}
	for v, steps := range snap.Drums {
		rec.Drums[v] = steps
	}
	for _, v := range synth.Voices {
		if snap.Muted[v] {
			rec.Muted = append(rec.Muted, string(v))
		}
	}
	return rec
}

// Apply writes rec back into store, replacing pattern, notes and mutes.
func (rec Project) Apply(store *PatternStore) error {
	store.SetPattern(rec.Drums)
	muted := make(map[synth.Voice]bool, len(rec.Muted))
	for _, v := range rec.Muted {
		muted[synth.Voice(v)] = true
	}
	for _, v := range synth.Voices {
		store.SetMuted(v, muted[v])
	}
	return store.SetNotes(rec.Notes)
}
