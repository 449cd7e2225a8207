package renderer

import (
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"

	"github.com/dshills/vex/internal/engine/cursor"
	"github.com/dshills/vex/internal/layout"
	"github.com/dshills/vex/internal/layout/contentmap"
)

// Frame is everything drawn in one pass.
type Frame struct {
	Root      layout.Box
	Caret     contentmap.Caret
	Selection cursor.Selection
	// Status is shown on the bottom row when the status line is enabled.
	Status string
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithStatusLine reserves the bottom row for Frame.Status.
func WithStatusLine(enabled bool) Option {
	return func(r *Renderer) {
		r.statusLine = enabled
	}
}

// WithStatusStyle sets the style of the status line.
func WithStatusStyle(st tcell.Style) Option {
	return func(r *Renderer) {
		r.statusStyle = st
	}
}

// Renderer draws frames onto a screen.
type Renderer struct {
	screen      tcell.Screen
	top         int
	statusLine  bool
	statusStyle tcell.Style
}

// New creates a renderer for screen.
func New(screen tcell.Screen, opts ...Option) *Renderer {
	r := &Renderer{
		screen:      screen,
		statusLine:  true,
		statusStyle: tcell.StyleDefault.Reverse(true),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Top returns the first document row shown.
func (r *Renderer) Top() int { return r.top }

// SetTop scrolls so that row is the first one shown.
func (r *Renderer) SetTop(row int) { r.top = max(row, 0) }

// ViewHeight returns the number of rows available to the document.
func (r *Renderer) ViewHeight() int {
	_, h := r.screen.Size()
	if r.statusLine {
		h--
	}
	return max(h, 0)
}

// ScreenToDocument converts a screen cell to document coordinates.
func (r *Renderer) ScreenToDocument(x, y int) (int, int) {
	return x, y + r.top
}

// Draw paints f and shows it.
func (r *Renderer) Draw(f Frame) {
	r.screen.Clear()
	r.scrollTo(f.Caret)

	if f.Root != nil {
		layout.Visit(f.Root, func(b layout.Box, top, left, _ int) bool {
			if top-r.top >= r.ViewHeight() {
				return false
			}
			switch b := b.(type) {
			case *layout.TextContent:
				r.drawText(left, top, b.Text(), textStyle(b.Font(), b.Color()), b.Range().Start, f.Selection)
			case *layout.StaticText:
				r.drawText(left, top, b.Text(), textStyle(b.Font(), b.Color()), -1, f.Selection)
			}
			return true
		})
	}

	if r.statusLine {
		r.drawStatus(f.Status)
	}

	y := f.Caret.Y - r.top
	if y >= 0 && y < r.ViewHeight() {
		r.screen.ShowCursor(f.Caret.X, y)
	} else {
		r.screen.HideCursor()
	}
	r.screen.Show()
}

// scrollTo adjusts the view so the caret row is visible.
func (r *Renderer) scrollTo(c contentmap.Caret) {
	h := r.ViewHeight()
	if h == 0 {
		return
	}
	bottom := c.Y + max(c.Height, 1)
	switch {
	case c.Y < r.top:
		r.top = c.Y
	case bottom > r.top+h:
		r.top = bottom - h
	}
}

// drawText draws text with its left edge at (x, y). Characters are at
// document offsets from start, or not part of the document if start < 0.
func (r *Renderer) drawText(x, y int, text string, st tcell.Style, start int, sel cursor.Selection) {
	row := y - r.top
	if row < 0 || row >= r.ViewHeight() {
		return
	}
	width, _ := r.screen.Size()
	offset := start
	g := uniseg.NewGraphemes(displayText(text))
	for g.Next() && x < width {
		runes := g.Runes()
		cs := st
		if start >= 0 && sel.Contains(offset) {
			cs = cs.Reverse(true)
		}
		r.screen.SetContent(x, row, runes[0], runes[1:], cs)
		x += g.Width()
		offset += len(runes)
	}
}

// drawStatus fills the bottom row with msg.
func (r *Renderer) drawStatus(msg string) {
	width, height := r.screen.Size()
	if height == 0 {
		return
	}
	row := height - 1
	x := 0
	g := uniseg.NewGraphemes(msg)
	for g.Next() && x < width {
		runes := g.Runes()
		r.screen.SetContent(x, row, runes[0], runes[1:], r.statusStyle)
		x += g.Width()
	}
	for ; x < width; x++ {
		r.screen.SetContent(x, row, ' ', nil, r.statusStyle)
	}
}

// displayText replaces characters that have no glyph with spaces.
func displayText(text string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' || r == '\r' {
			return ' '
		}
		return r
	}, text)
}
