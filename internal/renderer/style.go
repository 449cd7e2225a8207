package renderer

import (
	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/dshills/vex/internal/metrics"
)

// toColor converts a style color to a terminal color. Black, the color of
// the default stylesheet, maps to the terminal's default foreground so text
// stays readable on dark backgrounds.
func toColor(c colorful.Color) tcell.Color {
	r, g, b := c.RGB255()
	if r == 0 && g == 0 && b == 0 {
		return tcell.ColorDefault
	}
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

// textStyle returns the terminal style for text in font and color.
func textStyle(f metrics.Font, c colorful.Color) tcell.Style {
	return tcell.StyleDefault.
		Foreground(toColor(c)).
		Bold(f.Bold).
		Italic(f.Italic)
}
