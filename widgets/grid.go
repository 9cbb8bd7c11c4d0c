package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"go-groovebox/theme"
)

// Cell is one step of a grid row.
type Cell struct {
	Active   bool // a hit or note starts here
	Held     bool // covered by a note started earlier
	Playhead bool
	Cursor   bool
}

// CellRune picks the glyph for c. The playhead wins over content so the
// moving column stays visible.
func CellRune(g theme.Glyphs, c Cell) rune {
	switch {
	case c.Playhead && c.Cursor:
		return g.CursorPlayhead
	case c.Playhead:
		return g.Playhead
	case c.Active && c.Cursor:
		return g.CursorHit
	case c.Active:
		return g.Hit
	case c.Held && c.Cursor:
		return g.CursorTie
	case c.Held:
		return g.Tie
	case c.Cursor:
		return g.CursorRest
	}
	return g.Rest
}

// GridRow is a labelled row of cells.
type GridRow struct {
	Label string
	Color lipgloss.Color // active cell color; empty uses the theme's
	Dim   bool           // muted rows render in the muted color
	Cells []Cell
}

// RenderGrid draws rows one per line, a space between beats.
func RenderGrid(th *theme.Theme, rows []GridRow, labelWidth int) string {
	empty := th.Style(theme.Grid)
	cursor := th.Style(theme.Cursor)
	playhead := th.Style(theme.Playhead)

	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		active := th.Style(theme.Hit)
		if row.Color != "" {
			active = active.Foreground(row.Color)
		}
		label := th.Style(theme.Label)
		if row.Dim {
			active = empty
			label = empty
		}

		var line strings.Builder
		line.WriteString(label.Render(fmt.Sprintf("%-*s", labelWidth, row.Label)))
		for i, c := range row.Cells {
			if i > 0 && i%4 == 0 {
				line.WriteString(" ")
			}
			r := string(CellRune(th.Glyphs, c))
			switch {
			case c.Playhead:
				line.WriteString(playhead.Render(r))
			case c.Cursor:
				line.WriteString(cursor.Render(r))
			case c.Active, c.Held:
				line.WriteString(active.Render(r))
			default:
				line.WriteString(empty.Render(r))
			}
		}
		lines = append(lines, line.String())
	}
	return strings.Join(lines, "\n")
}

// RenderKeyHelp formats key bindings in a friendly way
func RenderKeyHelp(sections []KeySection) string {
	var lines []string
	for _, sec := range sections {
		if sec.Title != "" {
			lines = append(lines, sec.Title)
		}
		for _, k := range sec.Keys {
			lines = append(lines, fmt.Sprintf("  %-12s %s", k.Key, k.Desc))
		}
	}
	return strings.Join(lines, "\n")
}

// KeySection groups related key bindings
type KeySection struct {
	Title string
	Keys  []KeyBinding
}

// KeyBinding is a single key and its description
type KeyBinding struct {
	Key  string
	Desc string
}
