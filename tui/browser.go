package tui

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"go-groovebox/sequencer"
	"go-groovebox/theme"
)

type prompt int

const (
	promptNone prompt = iota
	promptProject
	promptLabel
	promptRename
)

var promptTitles = map[prompt]string{
	promptProject: "new project",
	promptLabel:   "save as",
	promptRename:  "rename to",
}

// browser lists projects, or the saves of one open project.
type browser struct {
	projects []string
	saves    []sequencer.SaveInfo
	project  string // open project; empty while picking one
	sel      int
	prompt   prompt
	input    string
}

var errNoProjects = errors.New("no project directory configured")

// openBrowser shows the saves of the current project.
func (m Model) openBrowser() (Model, error) {
	if m.Manager.Projects() == nil {
		return m, errNoProjects
	}
	m.back = m.view
	m.view = browserView
	m.browser = browser{project: m.Manager.Project()}
	return m.refresh()
}

func (m Model) closeBrowser() Model {
	m.view = m.back
	m.browser = browser{}
	return m
}

// refresh rereads the open level and keeps the selection in range.
func (m Model) refresh() (Model, error) {
	store := m.Manager.Projects()
	b := &m.browser
	var err error
	if b.project == "" {
		b.projects, err = store.List()
	} else {
		b.saves, err = store.ListSaves(b.project)
	}
	b.sel = max(0, min(b.sel, b.items()-1))
	return m, err
}

func (b *browser) items() int {
	if b.project == "" {
		return len(b.projects)
	}
	return len(b.saves)
}

func (m Model) handleBrowserKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.browser.prompt != promptNone {
		return m.handlePrompt(msg)
	}

	b := &m.browser
	var err error
	switch msg.String() {
	case "esc", "f":
		return m.closeBrowser(), nil
	case "q", "ctrl+c":
		m.quitting = true
		m.Manager.Stop()
		return m, tea.Quit

	case "k", "up":
		b.sel = max(b.sel-1, 0)
	case "j", "down":
		b.sel = max(0, min(b.sel+1, b.items()-1))

	case "n":
		b.prompt, b.input = promptProject, ""

	case "h", "left", "backspace":
		if b.project != "" {
			from := b.project
			b.project, b.sel = "", 0
			if m, err = m.refresh(); err == nil {
				for i, p := range m.browser.projects {
					if p == from {
						m.browser.sel = i
					}
				}
			}
		}

	case "enter", "l", "right":
		if b.items() == 0 {
			break
		}
		if b.project == "" {
			b.project = b.projects[b.sel]
			b.sel = 0
			m, err = m.refresh()
			break
		}
		save := b.saves[b.sel]
		if err = m.Manager.Load(b.project, save.Filename); err == nil || errors.Is(err, sequencer.ErrInvalidNote) {
			m = m.closeBrowser()
			m.status, m.failed = fmt.Sprintf("loaded %s/%s", m.Manager.Project(), save.Filename), false
		}

	case "w":
		if b.project != "" {
			b.prompt, b.input = promptLabel, ""
		}
	case "r":
		if b.project != "" && b.items() > 0 {
			b.prompt, b.input = promptRename, b.saves[b.sel].Name
		}
	case "d":
		if b.project != "" && b.items() > 0 {
			save := b.saves[b.sel]
			if err = m.Manager.Projects().DeleteSave(b.project, save.Filename); err == nil {
				m.status, m.failed = "deleted "+save.Filename, false
				m, err = m.refresh()
			}
		}
	}

	if err != nil {
		m.status, m.failed = err.Error(), true
	}
	return m, nil
}

// handlePrompt edits the one-line text entry.
func (m Model) handlePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	b := &m.browser
	switch msg.Type {
	case tea.KeyEsc:
		b.prompt, b.input = promptNone, ""
	case tea.KeyBackspace:
		if r := []rune(b.input); len(r) > 0 {
			b.input = string(r[:len(r)-1])
		}
	case tea.KeySpace:
		b.input += " "
	case tea.KeyRunes:
		b.input += string(msg.Runes)
	case tea.KeyEnter:
		return m.commitPrompt()
	}
	return m, nil
}

func (m Model) commitPrompt() (tea.Model, tea.Cmd) {
	b := &m.browser
	kind, text := b.prompt, strings.TrimSpace(b.input)
	b.prompt, b.input = promptNone, ""

	var err error
	switch kind {
	case promptProject:
		if text == "" {
			return m, nil
		}
		b.project, b.sel = text, 0
		m, err = m.refresh()
	case promptLabel:
		var filename string
		if filename, err = m.Manager.Save(b.project, text); err == nil {
			m.status, m.failed = "saved "+filename, false
			b.sel = 0
			m, err = m.refresh()
		}
	case promptRename:
		var renamed string
		if renamed, err = m.Manager.Projects().RenameSave(b.project, b.saves[b.sel].Filename, text); err == nil {
			m.status, m.failed = "renamed to "+renamed, false
			m, err = m.refresh()
		}
	}
	if err != nil {
		m.status, m.failed = err.Error(), true
	}
	return m, nil
}

func (m Model) renderBrowser() (title, body, help string) {
	b := m.browser
	var lines []string
	if b.project == "" {
		title = "PROJECTS"
		help = "j/k:select  enter:open  n:new project  esc:back"
		lines = append(lines, b.projects...)
		if len(lines) == 0 {
			lines = []string{"(no projects yet, n to start one)"}
		}
	} else {
		title = "PROJECT  " + b.project
		help = "j/k:select  enter:load  w:save as  r:rename  d:delete  h:projects  esc:back"
		for _, s := range b.saves {
			lines = append(lines, fmt.Sprintf("%s  %s", s.Timestamp.Format("2006-01-02 15:04:05"), s.Name))
		}
		if len(lines) == 0 {
			lines = []string{"(no saves, w to save)"}
		}
	}

	cursor := m.Theme.Style(theme.Cursor)
	plain := m.Theme.Style(theme.Label)
	for i, l := range lines {
		if b.items() > 0 && i == b.sel {
			lines[i] = cursor.Render("> " + l)
		} else {
			lines[i] = plain.Render("  " + l)
		}
	}
	if b.prompt != promptNone {
		lines = append(lines, "", cursor.Render(promptTitles[b.prompt]+": "+b.input+"_"))
	}
	return title, strings.Join(lines, "\n"), help
}
