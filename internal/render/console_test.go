package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/nupi-ai/plugin-pitch-compare/internal/compare"
	"github.com/nupi-ai/plugin-pitch-compare/internal/timeline"
)

func init() {
	color.NoColor = true
}

func TestStripPlacesPoints(t *testing.T) {
	c := NewConsole(nil, 4)
	v := compare.View{Window: compare.Window{Start: 0, End: 1}, MaxMagnitude: 200}
	strip := c.Strip(v, []timeline.PitchSample{
		{TimeSec: 0, PitchHz: 200},
		{TimeSec: 0.5, PitchHz: 0},
		{TimeSec: 1, PitchHz: 25},
		{TimeSec: 3, PitchHz: 100},
	})
	if got, want := strip, "█ ·▂"; got != want {
		t.Fatalf("Strip() = %q, want %q", got, want)
	}
}

func TestStripZeroWidthWindow(t *testing.T) {
	c := NewConsole(nil, 3)
	v := compare.View{Window: compare.Window{Start: 2, End: 2}, MaxMagnitude: 1}
	if got := c.Strip(v, []timeline.PitchSample{{TimeSec: 2, PitchHz: 5}}); got != "█  " {
		t.Fatalf("Strip() = %q", got)
	}
}

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, 8)
	v := compare.View{
		Window:          compare.Window{Start: 0, End: 2},
		ReferencePoints: []timeline.PitchSample{{TimeSec: 0, PitchHz: 220}},
		UserPoints:      []timeline.PitchSample{{TimeSec: 0, PitchHz: 0}},
		MaxMagnitude:    220,
	}
	if err := c.Render("hello", v); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines:\n%s", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "hello") || !strings.Contains(lines[0], "max 220.0 Hz") {
		t.Fatalf("header = %q", lines[0])
	}
	if lines[1] != "ref |█       |" {
		t.Fatalf("reference row = %q", lines[1])
	}
	if lines[2] != "you |·       |" {
		t.Fatalf("user row = %q", lines[2])
	}
}

func TestNewConsoleDefaultWidth(t *testing.T) {
	c := NewConsole(nil, 0)
	if got := len([]rune(c.Strip(compare.View{}, nil))); got != DefaultWidth {
		t.Fatalf("strip width = %d, want %d", got, DefaultWidth)
	}
}
