package layout

import (
	"github.com/dshills/vex/internal/engine/dom"
	"github.com/dshills/vex/internal/metrics"
	"github.com/dshills/vex/internal/style"
)

// DefaultWidth is the layout width used when none is configured.
const DefaultWidth = 80

// Option configures an Engine during creation.
type Option func(*Engine)

// WithGraphics sets the text measurer. The default measures terminal cells.
func WithGraphics(g metrics.Graphics) Option {
	return func(e *Engine) {
		if g != nil {
			e.g = g
		}
	}
}

// WithStyles sets the style provider. The default is style.DefaultSheet.
func WithStyles(p style.Provider) Option {
	return func(e *Engine) {
		if p != nil {
			e.styles = p
		}
	}
}

// WithWidth sets the layout width.
func WithWidth(width int) Option {
	return func(e *Engine) {
		if width > 0 {
			e.width = width
		}
	}
}

// Engine builds and lays out box trees.
type Engine struct {
	g      metrics.Graphics
	styles style.Provider
	width  int
}

// NewEngine creates a layout engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		g:      metrics.Cells(),
		styles: style.DefaultSheet(),
		width:  DefaultWidth,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Width returns the configured layout width.
func (e *Engine) Width() int { return e.width }

// SetWidth changes the layout width. Non-positive widths are ignored.
func (e *Engine) SetWidth(width int) {
	if width > 0 {
		e.width = width
	}
}

// Styles returns the style provider.
func (e *Engine) Styles() style.Provider { return e.styles }

// SetStyles replaces the style provider.
func (e *Engine) SetStyles(p style.Provider) {
	if p != nil {
		e.styles = p
	}
}

// Graphics returns the text measurer.
func (e *Engine) Graphics() metrics.Graphics { return e.g }

// Build creates the box tree of doc without laying it out.
func (e *Engine) Build(doc *dom.Document) *RootBox {
	return NewBuilder(e.styles, e.g).Build(doc)
}

// Layout computes the geometry of root for width.
func (e *Engine) Layout(root *RootBox, width int) {
	root.layout(max(width, 0))
	root.setPosition(0, 0)
}

// Render builds doc and lays it out at the configured width.
func (e *Engine) Render(doc *dom.Document) *RootBox {
	root := e.Build(doc)
	e.Layout(root, e.width)
	return root
}
