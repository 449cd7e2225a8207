package engine

import (
	"github.com/charmbracelet/log"

	"github.com/dshills/vex/internal/engine/dom"
	"github.com/dshills/vex/internal/layout"
	"github.com/dshills/vex/internal/metrics"
	"github.com/dshills/vex/internal/style"
)

// Default configuration values.
const (
	DefaultWidth          = layout.DefaultWidth
	DefaultMaxUndoEntries = 1000
)

// DefaultRoot is the root element name of a new empty document.
var DefaultRoot = dom.QName{Local: "doc"}

// Option configures an Engine during creation.
type Option func(*Engine)

// WithDocument edits doc instead of a new empty document.
func WithDocument(doc *dom.Document) Option {
	return func(e *Engine) {
		if doc != nil {
			e.doc = doc
		}
	}
}

// WithRoot sets the root element name of a new empty document.
func WithRoot(name dom.QName) Option {
	return func(e *Engine) {
		if !name.IsZero() {
			e.rootName = name
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

// WithStyles sets the style provider.
func WithStyles(p style.Provider) Option {
	return func(e *Engine) {
		if p != nil {
			e.styles = p
		}
	}
}

// WithGraphics sets the text measurer used by layout.
func WithGraphics(g metrics.Graphics) Option {
	return func(e *Engine) {
		if g != nil {
			e.graphics = g
		}
	}
}

// WithValidator installs v on the document.
func WithValidator(v dom.Validator) Option {
	return func(e *Engine) {
		e.validator = v
	}
}

// WithMaxUndoEntries sets the maximum number of undo history entries.
func WithMaxUndoEntries(max int) Option {
	return func(e *Engine) {
		if max > 0 {
			e.maxUndoEntries = max
		}
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *log.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithReadOnly creates a read-only engine.
// Edit operations will return ErrReadOnly.
func WithReadOnly() Option {
	return func(e *Engine) {
		e.readOnly = true
	}
}
