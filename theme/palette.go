package theme

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// RGB is one 8-bit colour.
type RGB [3]uint8

// Palette is an ordered colour ramp. Roles pick points along it.
type Palette struct {
	Name   string
	Colors []RGB
}

// Plasma is the built-in ramp, dark purple through to yellow.
var Plasma = &Palette{
	Name: "plasma",
	Colors: []RGB{
		{13, 8, 135},
		{71, 3, 159},
		{114, 1, 168},
		{156, 23, 158},
		{189, 55, 134},
		{216, 87, 107},
		{237, 121, 83},
		{251, 159, 58},
		{253, 202, 38},
		{240, 249, 33},
	},
}

// LoadOrDefault loads the GIMP palette at path, falling back to Plasma when
// path is empty or unusable. The load error is returned for logging.
func LoadOrDefault(path string) (*Palette, error) {
	if path == "" {
		return Plasma, nil
	}
	p, err := LoadGPL(path)
	if err != nil {
		return Plasma, err
	}
	return p, nil
}

// LoadGPL reads a GIMP .gpl palette file.
func LoadGPL(path string) (*Palette, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open palette: %w", err)
	}
	defer f.Close()

	p, err := ParseGPL(f)
	if err != nil {
		return nil, fmt.Errorf("palette %s: %w", path, err)
	}
	return p, nil
}

// ParseGPL decodes GIMP palette text. Entries are "R G B [name]"; header
// keys and # comments are skipped.
func ParseGPL(r io.Reader) (*Palette, error) {
	p := &Palette{}
	sc := bufio.NewScanner(r)
	for n := 1; sc.Scan(); n++ {
		line := strings.TrimSpace(sc.Text())
		switch {
		case n == 1 && line == "GIMP Palette", line == "", strings.HasPrefix(line, "#"):
			continue
		case strings.HasPrefix(line, "Name:"):
			p.Name = strings.TrimSpace(line[len("Name:"):])
			continue
		case strings.Contains(line, ":"):
			continue // Columns: and other header keys
		}

		var cr, cg, cb int
		if _, err := fmt.Sscan(line, &cr, &cg, &cb); err != nil {
			continue
		}
		if !inByte(cr) || !inByte(cg) || !inByte(cb) {
			return nil, fmt.Errorf("line %d: colour %d %d %d out of range", n, cr, cg, cb)
		}
		p.Colors = append(p.Colors, RGB{uint8(cr), uint8(cg), uint8(cb)})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(p.Colors) == 0 {
		return nil, fmt.Errorf("no colours")
	}
	return p, nil
}

func inByte(v int) bool { return v >= 0 && v <= 255 }

// At blends the two colours either side of pos, 0 being the first colour
// and 1 the last.
func (p *Palette) At(pos float64) RGB {
	last := len(p.Colors) - 1
	switch {
	case pos <= 0 || last == 0:
		return p.Colors[0]
	case pos >= 1:
		return p.Colors[last]
	}
	x := pos * float64(last)
	i := int(x)
	f := x - float64(i)
	a, b := p.Colors[i], p.Colors[i+1]
	var out RGB
	for c := range out {
		out[c] = uint8(float64(a[c]) + (float64(b[c])-float64(a[c]))*f)
	}
	return out
}
