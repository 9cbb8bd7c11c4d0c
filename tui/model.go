package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"go-groovebox/midi"
	"go-groovebox/sequencer"
	"go-groovebox/synth"
	"go-groovebox/theme"
	"go-groovebox/widgets"
)

type view int

const (
	drumView view = iota
	pianoView
	browserView
)

const (
	pianoRows   = 24 // two octaves
	defaultBase = 48 // C3 on the bottom row
	maxBase     = 127 - pianoRows + 1

	tempoStep  = 5
	volumeStep = 5

	// audioTimeout bounds how long a key press waits for the output device.
	audioTimeout = 5 * time.Second
)

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

type Model struct {
	Manager    *sequencer.Manager
	DeviceMgr  *midi.DeviceManager // nil when no keyboard is configured
	Theme      *theme.Theme
	view       view
	back       view // view to return to from the browser
	browser    browser
	row, col   int
	base       int
	status     string
	failed     bool
	quitting   bool
	controller midi.Controller // current keyboard (may be nil)
}

type UpdateMsg struct{}

type DeviceEventMsg midi.DeviceEvent

// statusMsg reports the outcome of a command run off the UI goroutine.
type statusMsg struct {
	text string
	err  error
}

func NewModel(manager *sequencer.Manager, deviceMgr *midi.DeviceManager, th *theme.Theme) Model {
	return Model{
		Manager:   manager,
		DeviceMgr: deviceMgr,
		Theme:     th,
		base:      defaultBase,
	}
}

func ListenForUpdates(manager *sequencer.Manager) tea.Cmd {
	return func() tea.Msg {
		<-manager.UpdateChan
		return UpdateMsg{}
	}
}

func ListenForDevices(deviceMgr *midi.DeviceManager) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-deviceMgr.Events()
		if !ok {
			return nil
		}
		return DeviceEventMsg(event)
	}
}

func (m Model) Init() tea.Cmd {
	if m.DeviceMgr == nil {
		return ListenForUpdates(m.Manager)
	}
	return tea.Batch(
		ListenForUpdates(m.Manager),
		ListenForDevices(m.DeviceMgr),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case UpdateMsg:
		return m, ListenForUpdates(m.Manager)

	case statusMsg:
		m.failed = msg.err != nil
		m.status = msg.text
		if msg.err != nil {
			m.status = msg.err.Error()
		}

	case DeviceEventMsg:
		event := midi.DeviceEvent(msg)
		switch event.Type {
		case midi.DeviceConnected:
			m.controller = event.Controller
			m.status = "keyboard connected: " + event.ID
			m.failed = false

			// Play incoming notes
			go func(notes <-chan midi.NoteEvent) {
				for n := range notes {
					m.Manager.HandleNote(n.Note, n.Velocity)
				}
			}(event.Controller.NoteEvents())
		case midi.DeviceDisconnected:
			if m.controller != nil && m.controller.ID() == event.ID {
				m.controller = nil
			}
			m.status = "keyboard disconnected: " + event.ID
		}
		return m, ListenForDevices(m.DeviceMgr)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.view == browserView {
		return m.handleBrowserKey(msg)
	}

	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		m.Manager.Stop()
		return m, tea.Quit

	case "tab":
		if m.view == drumView {
			m.view = pianoView
		} else {
			m.view = drumView
		}
		m.row = min(m.row, m.rows()-1)

	case "h", "left":
		m.col = max(m.col-1, 0)
	case "l", "right":
		m.col = min(m.col+1, sequencer.Steps-1)
	case "k", "up":
		m.row = max(m.row-1, 0)
	case "j", "down":
		m.row = min(m.row+1, m.rows()-1)

	case ",", "<":
		m.base = max(m.base-12, 0)
	case ".", ">":
		m.base = min(m.base+12, maxBase)

	case " ":
		if m.view == drumView {
			return m, m.toggleStep(m.voice(), m.col)
		}
		return m.toggleNote()

	case "enter", "a":
		if m.view == drumView {
			return m, m.audition(m.voice())
		}
		return m, m.auditionNote(m.pitch())

	case "p":
		return m, m.togglePlay()
	case "s":
		m.Manager.Stop()

	case "+", "=":
		m.Manager.SetTempo(m.Manager.Tempo() + tempoStep)
	case "-", "_":
		m.Manager.SetTempo(m.Manager.Tempo() - tempoStep)

	case "]":
		m.Manager.SetVolume(m.Manager.Volume() + volumeStep)
	case "[":
		m.Manager.SetVolume(m.Manager.Volume() - volumeStep)

	case "m":
		if m.view == drumView {
			v := m.voice()
			if m.Manager.ToggleMute(v) {
				m.status = v.Name() + " muted"
			} else {
				m.status = v.Name() + " unmuted"
			}
			m.failed = false
		}

	case "c":
		if m.view == drumView {
			m.Manager.Clear()
		} else {
			m.Manager.ClearNotes()
		}
	case "r":
		m.Manager.Randomize()

	case "w":
		return m, m.save()
	case "o":
		return m, m.load()
	case "f":
		next, err := m.openBrowser()
		if err != nil {
			m.status, m.failed = err.Error(), true
			return m, nil
		}
		return next, nil
	}

	return m, nil
}

func (m Model) rows() int {
	if m.view == drumView {
		return len(synth.Voices)
	}
	return pianoRows
}

func (m Model) voice() synth.Voice {
	return synth.Voices[min(m.row, len(synth.Voices)-1)]
}

// pitch is the note on the cursor row; row 0 is the highest.
func (m Model) pitch() int {
	return m.base + pianoRows - 1 - m.row
}

func (m Model) toggleNote() (tea.Model, tea.Cmd) {
	added, err := m.Manager.ToggleNote(m.pitch(), m.col)
	if err != nil {
		m.status, m.failed = err.Error(), true
		return m, nil
	}
	if added {
		return m, m.auditionNote(m.pitch())
	}
	return m, nil
}

// Commands that may open the audio device run off the UI goroutine.

func (m Model) toggleStep(v synth.Voice, step int) tea.Cmd {
	manager := m.Manager
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), audioTimeout)
		defer cancel()
		_, err := manager.ToggleStep(ctx, v, step)
		return statusMsg{err: err}
	}
}

func (m Model) audition(v synth.Voice) tea.Cmd {
	manager := m.Manager
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), audioTimeout)
		defer cancel()
		return statusMsg{err: manager.AuditionVoice(ctx, v)}
	}
}

func (m Model) auditionNote(note int) tea.Cmd {
	manager := m.Manager
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), audioTimeout)
		defer cancel()
		return statusMsg{err: manager.AuditionNote(ctx, note)}
	}
}

func (m Model) togglePlay() tea.Cmd {
	manager := m.Manager
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), audioTimeout)
		defer cancel()
		return statusMsg{err: manager.TogglePlay(ctx)}
	}
}

func (m Model) save() tea.Cmd {
	manager := m.Manager
	return func() tea.Msg {
		filename, err := manager.Save("", "")
		if err != nil {
			return statusMsg{err: fmt.Errorf("save: %w", err)}
		}
		return statusMsg{text: "saved " + filename}
	}
}

func (m Model) load() tea.Cmd {
	manager := m.Manager
	return func() tea.Msg {
		project := manager.Project()
		if err := manager.Load(project, ""); err != nil {
			return statusMsg{err: fmt.Errorf("load: %w", err)}
		}
		return statusMsg{text: "loaded " + project}
	}
}

func noteName(n int) string {
	return fmt.Sprintf("%s%d", noteNames[n%12], n/12-1)
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	step, playing, tempo := m.Manager.GetState()

	headerStyle := m.Theme.Style(theme.Header)
	titleStyle := m.Theme.Style(theme.Label).Bold(true)
	dimStyle := m.Theme.Style(theme.Grid)

	playState := "STOP"
	if playing {
		playState = "PLAY"
	}
	deviceStatus := ""
	if m.controller != nil {
		deviceStatus = "  KB:" + m.controller.ID()
	}
	header := headerStyle.Render(fmt.Sprintf("go-groovebox  %s  %3.0fbpm  step:%02d  vol:%3.0f  %s%s",
		playState, tempo, step+1, m.Manager.Volume(), m.Manager.Project(), deviceStatus))

	playhead := -1
	if playing {
		playhead = step
	}

	title, grid := "", ""
	help := "hjkl:nav  space:toggle  a:audition  tab:drums/piano  p:play  s:stop  +/-:tempo  [/]:vol  m:mute  c:clear  r:random  w:save  o:load latest  f:projects  q:quit"
	switch m.view {
	case drumView:
		title = "DRUMS"
		grid = widgets.RenderGrid(m.Theme, m.drumRows(playhead), 10)
	case pianoView:
		title = fmt.Sprintf("PIANO  %s-%s", noteName(m.base), noteName(m.base+pianoRows-1))
		grid = widgets.RenderGrid(m.Theme, m.noteRows(playhead), 5)
	case browserView:
		title, grid, help = m.renderBrowser()
	}
	help = dimStyle.Render(help)

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n\n")
	out.WriteString(titleStyle.Render(title))
	out.WriteString("\n")
	out.WriteString(grid)
	out.WriteString("\n\n")
	out.WriteString(help)

	if m.status != "" {
		style := m.Theme.Style(theme.Playhead)
		if m.failed {
			style = m.Theme.Style(theme.Alert)
		}
		out.WriteString("\n")
		out.WriteString(style.Render(m.status))
	}

	return out.String()
}

func (m Model) drumRows(playhead int) []widgets.GridRow {
	snap := m.Manager.Patterns().Snapshot()
	rows := make([]widgets.GridRow, len(synth.Voices))
	for i, v := range synth.Voices {
		mark := m.Theme.Glyphs.Live
		if snap.Muted[v] {
			mark = m.Theme.Glyphs.Muted
		}
		cells := make([]widgets.Cell, sequencer.Steps)
		for s := range cells {
			cells[s] = widgets.Cell{
				Active:   snap.Drums.Active(v, s),
				Playhead: s == playhead,
				Cursor:   m.view == drumView && i == m.row && s == m.col,
			}
		}
		rows[i] = widgets.GridRow{
			Label: fmt.Sprintf("%c %s", mark, v.Name()),
			Color: m.Theme.Voice(i, len(synth.Voices)),
			Dim:   snap.Muted[v],
			Cells: cells,
		}
	}
	return rows
}

func (m Model) noteRows(playhead int) []widgets.GridRow {
	snap := m.Manager.Patterns().Snapshot()
	rows := make([]widgets.GridRow, pianoRows)
	for r := range rows {
		pitch := m.base + pianoRows - 1 - r
		cells := make([]widgets.Cell, sequencer.Steps)
		for _, n := range snap.Notes {
			if n.Pitch != pitch {
				continue
			}
			cells[n.Start].Active = true
			for s := n.Start + 1; s < n.Start+n.Duration && s < sequencer.Steps; s++ {
				cells[s].Held = true
			}
		}
		for s := range cells {
			cells[s].Playhead = s == playhead
			cells[s].Cursor = r == m.row && s == m.col
		}
		rows[r] = widgets.GridRow{Label: noteName(pitch), Cells: cells}
	}
	return rows
}
