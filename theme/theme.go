package theme

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Theme colours the groovebox screens from one palette.
type Theme struct {
	Palette *Palette
	Glyphs  Glyphs
}

// Glyphs are the characters drawn in the step grids.
type Glyphs struct {
	Rest     rune // · empty step
	Hit      rune // ● drum hit or note start
	Tie      rune // - step covered by a held note
	Playhead rune // ▶ step being played

	CursorRest     rune // ○
	CursorHit      rune // ◉
	CursorTie      rune // □
	CursorPlayhead rune // ▷

	Live  rune // ■ row plays
	Muted rune // □ row muted
}

// Role is a point on the palette ramp, 0 darkest, 1 brightest.
type Role float64

const (
	Background Role = 0
	Grid       Role = 0.2 // rests, muted rows, key help
	Label      Role = 0.4 // row names, titles
	Header     Role = 0.5 // transport line, first drum row
	Cursor     Role = 0.6
	Hit        Role = 0.7
	Alert      Role = 0.8 // audio and file errors
	Playhead   Role = 1.0 // also confirmations
)

func New(p *Palette) *Theme {
	return &Theme{
		Palette: p,
		Glyphs: Glyphs{
			Rest:     '·',
			Hit:      '●',
			Tie:      '-',
			Playhead: '▶',

			CursorRest:     '○',
			CursorHit:      '◉',
			CursorTie:      '□',
			CursorPlayhead: '▷',

			Live:  '■',
			Muted: '□',
		},
	}
}

// Color returns the palette colour for r.
func (t *Theme) Color(r Role) lipgloss.Color {
	c := t.Palette.At(float64(r))
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2]))
}

// Style is a foreground-only style in r.
func (t *Theme) Style(r Role) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Color(r))
}

// Voice spreads n drum rows from Header up to Playhead so each row keeps
// its own hue.
func (t *Theme) Voice(i, n int) lipgloss.Color {
	if n <= 1 {
		return t.Color(Hit)
	}
	return t.Color(Header + (Playhead-Header)*Role(i)/Role(n-1))
}
