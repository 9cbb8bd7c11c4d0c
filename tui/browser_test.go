package tui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go-groovebox/sequencer"
	"go-groovebox/synth"
)

func newBrowserModel(t *testing.T) (Model, string) {
	t.Helper()
	m, _ := newTestModel(t)
	dir := t.TempDir()
	m.Manager.SetProjects(sequencer.NewProjects(dir))
	return m, dir
}

func TestBrowser_SaveLoadRenameDelete(t *testing.T) {
	m, dir := newBrowserModel(t)
	m.Manager.Patterns().SetStep(synth.Kick, 0, true)

	m, _ = press(t, m, "f")
	if m.view != browserView || m.browser.project != "untitled" {
		t.Fatalf("view=%v project=%q, want browser on untitled", m.view, m.browser.project)
	}

	m, _ = press(t, m, "w", "first", "space", "take", "enter")
	if m.failed || len(m.browser.saves) != 1 || m.browser.saves[0].Name != "first-take" {
		t.Fatalf("after save: status=%q saves=%+v", m.status, m.browser.saves)
	}
	if !strings.Contains(m.View(), "first-take") {
		t.Error("save not listed in view")
	}

	m, _ = press(t, m, "r", "2", "enter")
	if got := m.browser.saves[0].Name; got != "first-take2" {
		t.Fatalf("renamed label = %q, want first-take2", got)
	}

	m.Manager.Clear()
	m, _ = press(t, m, "enter")
	if m.view != drumView {
		t.Errorf("view after load = %v, want drums", m.view)
	}
	if !m.Manager.Patterns().Snapshot().Drums.Active(synth.Kick, 0) {
		t.Error("load did not restore the kick")
	}

	m, _ = press(t, m, "f", "d")
	if len(m.browser.saves) != 0 {
		t.Errorf("saves after delete = %+v", m.browser.saves)
	}
	entries, _ := os.ReadDir(filepath.Join(dir, "untitled"))
	if len(entries) != 0 {
		t.Errorf("files left after delete: %d", len(entries))
	}
}

func TestBrowser_NewProject(t *testing.T) {
	m, dir := newBrowserModel(t)

	m, _ = press(t, m, "f", "h")
	if m.browser.project != "" || !strings.Contains(m.View(), "PROJECTS") {
		t.Fatalf("h did not go up to the project list")
	}

	m, _ = press(t, m, "n", "jam", "enter")
	if m.browser.project != "jam" {
		t.Fatalf("project = %q, want jam", m.browser.project)
	}
	m, _ = press(t, m, "w", "enter")
	if len(m.browser.saves) != 1 {
		t.Fatalf("saves = %+v", m.browser.saves)
	}
	if m.Manager.Project() != "jam" {
		t.Errorf("current project = %q, want jam", m.Manager.Project())
	}

	m, _ = press(t, m, "h")
	if len(m.browser.projects) != 1 || m.browser.projects[0] != "jam" || m.browser.sel != 0 {
		t.Errorf("projects = %v sel=%d", m.browser.projects, m.browser.sel)
	}
	if _, err := os.Stat(filepath.Join(dir, "jam")); err != nil {
		t.Error(err)
	}

	m, _ = press(t, m, "esc")
	if m.view != drumView {
		t.Errorf("esc left view %v", m.view)
	}
}

func TestBrowser_PromptEditing(t *testing.T) {
	m, _ := newBrowserModel(t)
	m, _ = press(t, m, "f", "w", "abc", "backspace")
	if m.browser.input != "ab" {
		t.Errorf("input = %q, want ab", m.browser.input)
	}
	// Keys that mean something in the list are plain text here.
	m, _ = press(t, m, "q", "d")
	if m.quitting || m.browser.input != "abqd" {
		t.Errorf("input = %q quitting=%v", m.browser.input, m.quitting)
	}
	m, _ = press(t, m, "esc")
	if m.browser.prompt != promptNone || len(m.browser.saves) != 0 {
		t.Errorf("esc did not cancel: prompt=%v saves=%d", m.browser.prompt, len(m.browser.saves))
	}
}

func TestBrowser_NeedsProjectDir(t *testing.T) {
	m, _ := newTestModel(t)
	m, _ = press(t, m, "f")
	if m.view != drumView || !m.failed || !strings.Contains(m.status, "no project directory") {
		t.Errorf("view=%v status=%q", m.view, m.status)
	}
}
