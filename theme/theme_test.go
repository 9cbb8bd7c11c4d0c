package theme

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestPaletteAt(t *testing.T) {
	p := &Palette{Colors: []RGB{{0, 0, 0}, {200, 100, 50}}}
	tests := []struct {
		pos  float64
		want RGB
	}{
		{-1, RGB{0, 0, 0}},
		{0, RGB{0, 0, 0}},
		{0.5, RGB{100, 50, 25}},
		{1, RGB{200, 100, 50}},
		{2, RGB{200, 100, 50}},
	}
	for _, tt := range tests {
		if got := p.At(tt.pos); got != tt.want {
			t.Errorf("At(%v) = %v, want %v", tt.pos, got, tt.want)
		}
	}

	single := &Palette{Colors: []RGB{{9, 9, 9}}}
	if got := single.At(0.5); got != (RGB{9, 9, 9}) {
		t.Errorf("single colour At(0.5) = %v", got)
	}
}

func TestParseGPL(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    []RGB
		wantErr bool
	}{
		{
			name: "full file",
			in:   "GIMP Palette\nName: Test\nColumns: 2\n# comment\n255 0 0\tRed\n0 255 0\tGreen\nbad line\n",
			want: []RGB{{255, 0, 0}, {0, 255, 0}},
		},
		{name: "bare entries", in: "1 2 3\n4 5 6\n", want: []RGB{{1, 2, 3}, {4, 5, 6}}},
		{name: "out of range", in: "GIMP Palette\n0 300 0\n", wantErr: true},
		{name: "empty", in: "GIMP Palette\nName: none\n", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParseGPL(strings.NewReader(tt.in))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseGPL = %v, want error", p.Colors)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if len(p.Colors) != len(tt.want) {
				t.Fatalf("Colors = %v, want %v", p.Colors, tt.want)
			}
			for i := range tt.want {
				if p.Colors[i] != tt.want[i] {
					t.Errorf("Colors[%d] = %v, want %v", i, p.Colors[i], tt.want[i])
				}
			}
		})
	}
}

func TestLoadOrDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.gpl")
	os.WriteFile(path, []byte("GIMP Palette\nName: Test\n10 20 30\n"), 0644)
	p, err := LoadOrDefault(path)
	if err != nil || p.Name != "Test" {
		t.Errorf("LoadOrDefault(file) = %v, %v", p, err)
	}

	if p, err := LoadOrDefault(""); err != nil || p != Plasma {
		t.Errorf("empty path: got %v, %v", p.Name, err)
	}

	p, err = LoadOrDefault(filepath.Join(t.TempDir(), "missing.gpl"))
	if err == nil {
		t.Error("missing file: want error")
	}
	if p != Plasma {
		t.Errorf("missing file: palette %q, want plasma", p.Name)
	}
}

func TestVoiceColors(t *testing.T) {
	th := New(Plasma)
	if th.Voice(0, 6) != th.Color(Header) {
		t.Errorf("first voice = %v, want header %v", th.Voice(0, 6), th.Color(Header))
	}
	if th.Voice(5, 6) != th.Color(Playhead) {
		t.Errorf("last voice = %v, want playhead %v", th.Voice(5, 6), th.Color(Playhead))
	}
	if th.Voice(0, 1) != th.Color(Hit) {
		t.Errorf("single voice = %v, want hit", th.Voice(0, 1))
	}
}
