// Package metrics measures text for layout.
//
// Layout treats a Graphics implementation as a pure function from a font
// and a string to pixel sizes. Fixed measures in character cells and is
// what the terminal view uses; Faces measures real font files.
package metrics

import (
	"fmt"

	"github.com/rivo/uniseg"
)

// Font identifies a font face.
type Font struct {
	Family string
	Size   float64
	Bold   bool
	Italic bool
}

// String returns a compact description of the font.
func (f Font) String() string {
	s := fmt.Sprintf("%s %g", f.Family, f.Size)
	if f.Bold {
		s += " bold"
	}
	if f.Italic {
		s += " italic"
	}
	return s
}

// FontMetrics holds the vertical metrics of a font in pixels.
type FontMetrics struct {
	Ascent  int
	Descent int
	Leading int
}

// Height returns the line height of the font.
func (m FontMetrics) Height() int {
	return m.Ascent + m.Descent + m.Leading
}

// Graphics provides font metrics and string widths.
type Graphics interface {
	Metrics(f Font) FontMetrics
	StringWidth(f Font, s string) int
}

// Fixed measures every grapheme cluster as CharWidth pixels per terminal
// cell, so wide characters count twice. Fonts are ignored.
type Fixed struct {
	CharWidth int
	Ascent    int
	Descent   int
}

// Cells returns a Fixed measuring one pixel per terminal cell and one
// pixel per line.
func Cells() Fixed {
	return Fixed{CharWidth: 1, Ascent: 1}
}

// Metrics returns the fixed metrics.
func (f Fixed) Metrics(Font) FontMetrics {
	return FontMetrics{Ascent: f.Ascent, Descent: f.Descent}
}

// StringWidth returns the display width of s.
func (f Fixed) StringWidth(_ Font, s string) int {
	return uniseg.StringWidth(s) * f.CharWidth
}
