package sequencer

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go-groovebox/synth"
)

func testProjects(t *testing.T) (*Projects, *time.Time) {
	t.Helper()
	now := time.Date(2024, 3, 9, 14, 30, 0, 0, time.Local)
	p := NewProjects(t.TempDir())
	p.now = func() time.Time { return now }
	return p, &now
}

func TestProjects_SaveListLoad(t *testing.T) {
	p, now := testProjects(t)

	first := Project{Tempo: 100, Volume: 50, Drums: DrumPattern{synth.Kick: {true}}}
	name1, err := p.Save("beats", "", first)
	if err != nil {
		t.Fatal(err)
	}
	if name1 != "2024-03-09_14-30-00.json" {
		t.Errorf("filename = %q", name1)
	}

	*now = now.Add(time.Minute)
	second := Project{Tempo: 140, Volume: 70, Notes: []NoteEvent{{ID: "n1", Pitch: 60, Start: 2, Duration: 3, Velocity: 80}}}
	name2, err := p.Save("beats", "my take", second)
	if err != nil {
		t.Fatal(err)
	}
	if name2 != "2024-03-09_14-31-00_my-take.json" {
		t.Errorf("labelled filename = %q", name2)
	}

	saves, err := p.ListSaves("beats")
	if err != nil {
		t.Fatal(err)
	}
	if len(saves) != 2 || saves[0].Filename != name2 || saves[0].Name != "my-take" || saves[1].Name != "" {
		t.Errorf("saves = %+v, want newest first", saves)
	}

	latest, err := p.Load("beats", "")
	if err != nil {
		t.Fatal(err)
	}
	if latest.Tempo != 140 || len(latest.Notes) != 1 || latest.Notes[0].ID != "n1" {
		t.Errorf("latest = %+v", latest)
	}

	older, err := p.Load("beats", name1)
	if err != nil {
		t.Fatal(err)
	}
	if !older.Drums.Active(synth.Kick, 0) {
		t.Errorf("older drums = %v", older.Drums)
	}

	projects, err := p.List()
	if err != nil || len(projects) != 1 || projects[0] != "beats" {
		t.Errorf("List() = %v, %v", projects, err)
	}
}

func TestProjects_EmptyAndMissing(t *testing.T) {
	p, _ := testProjects(t)

	projects, err := p.List()
	if err != nil || len(projects) != 0 {
		t.Errorf("List() on empty dir = %v, %v", projects, err)
	}
	if _, err := p.Load("nothing", ""); !errors.Is(err, ErrNoSaves) {
		t.Errorf("Load of empty project = %v, want ErrNoSaves", err)
	}

	missing := NewProjects(filepath.Join(t.TempDir(), "absent"))
	if projects, err := missing.List(); err != nil || len(projects) != 0 {
		t.Errorf("List() on missing dir = %v, %v", projects, err)
	}
}

func TestProjects_SkipsForeignFiles(t *testing.T) {
	p, _ := testProjects(t)
	if _, err := p.Save("mix", "", Project{Tempo: 120}); err != nil {
		t.Fatal(err)
	}
	dir := filepath.Join(p.Dir, "mix")
	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hi"), 0644)
	os.WriteFile(filepath.Join(dir, "backup.json"), []byte("{}"), 0644)
	os.Mkdir(filepath.Join(dir, "old"), 0755)

	saves, err := p.ListSaves("mix")
	if err != nil || len(saves) != 1 {
		t.Errorf("ListSaves = %+v, %v", saves, err)
	}
}

func TestProjects_RenameAndDelete(t *testing.T) {
	p, _ := testProjects(t)
	name, err := p.Save("song", "draft", Project{Tempo: 120})
	if err != nil {
		t.Fatal(err)
	}

	renamed, err := p.RenameSave("song", name, "final/mix")
	if err != nil {
		t.Fatal(err)
	}
	if renamed != "2024-03-09_14-30-00_final-mix.json" {
		t.Errorf("renamed = %q", renamed)
	}
	if _, err := p.RenameSave("song", "short.json", "x"); err == nil {
		t.Error("RenameSave accepted a bad filename")
	}

	if err := p.DeleteSave("song", renamed); err != nil {
		t.Fatal(err)
	}
	if saves, _ := p.ListSaves("song"); len(saves) != 0 {
		t.Errorf("saves after delete = %+v", saves)
	}
}

func TestProjects_CorruptSave(t *testing.T) {
	p, _ := testProjects(t)
	dir := filepath.Join(p.Dir, "bad")
	os.MkdirAll(dir, 0755)
	os.WriteFile(filepath.Join(dir, "2024-01-01_00-00-00.json"), []byte("{not json"), 0644)

	if _, err := p.Load("bad", ""); err == nil {
		t.Error("Load of corrupt save succeeded")
	}
}

func TestProjects_OutOfRangeVelocitySkipsOnlyThatNote(t *testing.T) {
	p, _ := testProjects(t)
	dir := filepath.Join(p.Dir, "loud")
	os.MkdirAll(dir, 0755)
	data := `{
  "tempo": 130,
  "drums": {"kick": [true]},
  "notes": [
    {"id": "ok", "note": 60, "start": 0, "duration": 1, "velocity": 90},
    {"id": "hot", "note": 62, "start": 1, "duration": 1, "velocity": 300},
    {"id": "neg", "note": 64, "start": 2, "duration": 1, "velocity": -1}
  ]
}`
	os.WriteFile(filepath.Join(dir, "2024-01-01_00-00-00.json"), []byte(data), 0644)

	rec, err := p.Load("loud", "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	store := NewPatternStore()
	if err := rec.Apply(store); !errors.Is(err, ErrInvalidNote) {
		t.Errorf("Apply error = %v, want ErrInvalidNote", err)
	}
	snap := store.Snapshot()
	if len(snap.Notes) != 1 || snap.Notes[0].ID != "ok" {
		t.Errorf("notes = %+v, want only the valid one", snap.Notes)
	}
	if !snap.Drums.Active(synth.Kick, 0) {
		t.Error("drums lost with the invalid notes")
	}
}

func TestProjectFromAndApply(t *testing.T) {
	src := NewPatternStore()
	src.SetStep(synth.Snare, 4, true)
	src.SetMuted(synth.Kick, true)
	src.AddNote(60, 0)

	rec := ProjectFrom(src.Snapshot(), 110, 40)
	if rec.Tempo != 110 || rec.Volume != 40 || len(rec.Muted) != 1 || rec.Muted[0] != "kick" {
		t.Errorf("ProjectFrom = %+v", rec)
	}

	dst := NewPatternStore()
	dst.SetStep(synth.Ride, 1, true)
	if err := rec.Apply(dst); err != nil {
		t.Fatal(err)
	}
	snap := dst.Snapshot()
	if snap.Drums.Active(synth.Ride, 1) || !snap.Drums.Active(synth.Snare, 4) {
		t.Errorf("drums = %v", snap.Drums)
	}
	if !snap.Muted[synth.Kick] || len(snap.Notes) != 1 {
		t.Errorf("muted=%v notes=%v", snap.Muted, snap.Notes)
	}
}
