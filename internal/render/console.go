// Package render draws comparison views as coloured text strips for
// terminals: one row for the reference contour, one for the live input.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/nupi-ai/plugin-pitch-compare/internal/compare"
	"github.com/nupi-ai/plugin-pitch-compare/internal/timeline"
)

// DefaultWidth is the number of columns of a strip.
const DefaultWidth = 64

// levels maps a normalized magnitude onto block glyphs, lowest first.
var levels = []rune("▁▂▃▄▅▆▇█")

const unvoiced = '·'

var (
	referenceColor = color.New(color.FgCyan)
	userColor      = color.New(color.FgRed)
	headerColor    = color.New(color.Bold)
)

// Console writes views to a terminal.
type Console struct {
	w     io.Writer
	width int
}

// NewConsole returns a renderer writing strips of width columns to w.
func NewConsole(w io.Writer, width int) *Console {
	if width <= 0 {
		width = DefaultWidth
	}
	return &Console{w: w, width: width}
}

// Render writes a header with label and the window bounds followed by the
// reference and user strips.
func (c *Console) Render(label string, v compare.View) error {
	header := fmt.Sprintf("[%6.2fs - %6.2fs] max %.1f Hz", v.Window.Start, v.Window.End, v.MaxMagnitude)
	if label != "" {
		header += "  " + label
	}
	if _, err := headerColor.Fprintln(c.w, header); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(c.w, "ref |%s|\n", referenceColor.Sprint(c.Strip(v, v.ReferencePoints))); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(c.w, "you |%s|\n", userColor.Sprint(c.Strip(v, v.UserPoints))); err != nil {
		return err
	}
	return nil
}

// Strip maps points onto the window columns. A column shows the last point
// falling into it; columns without points are blank and unvoiced points
// are drawn as a dot.
func (c *Console) Strip(v compare.View, points []timeline.PitchSample) string {
	cols := make([]rune, c.width)
	for i := range cols {
		cols[i] = ' '
	}
	span := v.Window.End - v.Window.Start
	for _, p := range points {
		col := 0
		if span > 0 {
			col = int((p.TimeSec - v.Window.Start) / span * float64(c.width))
		}
		if col < 0 || col > c.width {
			continue
		}
		if col == c.width {
			col = c.width - 1
		}
		cols[col] = glyph(p.PitchHz, v.MaxMagnitude)
	}
	return string(cols)
}

func glyph(hz, maxMagnitude float64) rune {
	if hz <= 0 {
		return unvoiced
	}
	if maxMagnitude <= 0 {
		maxMagnitude = 1
	}
	level := int(hz / maxMagnitude * float64(len(levels)))
	if level >= len(levels) {
		level = len(levels) - 1
	}
	return levels[max(level, 0)]
}

// Legend returns a one-line description of the strip colours.
func Legend() string {
	return strings.Join([]string{
		referenceColor.Sprint("ref") + " reference",
		userColor.Sprint("you") + " live input",
		string(unvoiced) + " unvoiced",
	}, "  ")
}
