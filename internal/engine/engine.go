package engine

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/dshills/vex/internal/engine/content"
	"github.com/dshills/vex/internal/engine/cursor"
	"github.com/dshills/vex/internal/engine/dom"
	"github.com/dshills/vex/internal/engine/history"
	"github.com/dshills/vex/internal/layout"
	"github.com/dshills/vex/internal/layout/contentmap"
	"github.com/dshills/vex/internal/logging"
	"github.com/dshills/vex/internal/metrics"
	"github.com/dshills/vex/internal/style"
	"github.com/dshills/vex/internal/xmlio"
)

// Re-export commonly used types for convenience.
type (
	// Range is an inclusive range of content offsets.
	Range = content.Range

	// QName is a namespace-qualified element or attribute name.
	QName = dom.QName

	// Selection is the cursor's anchor/head pair.
	Selection = cursor.Selection

	// Caret is where the caret is drawn.
	Caret = contentmap.Caret

	// OperationInfo describes a recorded undo entry.
	OperationInfo = history.OperationInfo
)

// Engine is an editing session on one document.
// It combines the document tree, its layout, the cursor, and undo/redo
// into a unified, thread-safe API.
type Engine struct {
	mu sync.RWMutex

	// Core components
	doc     *dom.Document
	history *history.Stack
	layout  *layout.Engine
	cmap    *contentmap.Map
	cursor  *cursor.Cursor
	root    *layout.RootBox

	// Layout state. sel is the cursor selection carried across edits made
	// since the last layout.
	dirty    bool
	sel      cursor.Selection
	revision uint64

	unsubscribe []func()
	logger      *log.Logger

	// Configuration
	rootName       dom.QName
	width          int
	styles         style.Provider
	graphics       metrics.Graphics
	validator      dom.Validator
	maxUndoEntries int
	readOnly       bool
}

// New creates a new Engine with the given options.
func New(opts ...Option) *Engine {
	e := &Engine{
		rootName:       DefaultRoot,
		width:          DefaultWidth,
		styles:         style.DefaultSheet(),
		graphics:       metrics.Cells(),
		maxUndoEntries: DefaultMaxUndoEntries,
		logger:         logging.Discard(),
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.doc == nil {
		e.doc = dom.New(e.rootName)
	}
	if e.validator != nil {
		e.doc.SetValidator(e.validator)
	}
	e.history = history.NewStack(e.maxUndoEntries)
	e.layout = layout.NewEngine(
		layout.WithWidth(e.width),
		layout.WithStyles(e.styles),
		layout.WithGraphics(e.graphics),
	)

	e.root = e.layout.Render(e.doc)
	e.cmap = contentmap.New(e.root)
	e.cursor = cursor.New(e.cmap)

	obs := observer{e}
	e.unsubscribe = []func(){
		e.doc.AddContentListener(obs),
		e.doc.AddAttributeListener(obs),
		e.doc.AddNamespaceListener(obs),
	}

	e.logger.Debug("engine created",
		logging.FieldDocument, e.doc.UUID(),
		logging.FieldWidth, e.width,
		logging.FieldLength, e.doc.Len())
	return e
}

// NewFromReader creates an Engine editing the XML document read from r.
// A validator given with WithValidator applies to later edits only.
func NewFromReader(r io.Reader, opts ...Option) (*Engine, error) {
	doc, err := xmlio.Read(r)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	return New(append([]Option{WithDocument(doc)}, opts...)...), nil
}

// Close detaches the engine from its document. The document can still be
// used directly afterwards.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, fn := range e.unsubscribe {
		fn()
	}
	e.unsubscribe = nil
}

// ============================================================================
// Document Change Tracking
// ============================================================================

// observer receives document notifications. It runs inside a mutation,
// which the engine performs with its lock held, so it must not lock.
type observer struct {
	e *Engine
}

func (observer) BeforeContentInserted(dom.ContentEvent)    {}
func (observer) BeforeContentDeleted(dom.ContentEvent)     {}
func (observer) BeforeAttributeChanged(dom.AttributeEvent) {}
func (observer) BeforeNamespaceChanged(dom.NamespaceEvent) {}

func (o observer) ContentInserted(ev dom.ContentEvent) {
	o.e.invalidate()
	o.e.sel = cursor.TransformInsert(o.e.sel, ev.Range)
}

func (o observer) ContentDeleted(ev dom.ContentEvent) {
	o.e.invalidate()
	o.e.sel = cursor.TransformDelete(o.e.sel, ev.Range)
}

func (o observer) AttributeChanged(dom.AttributeEvent) { o.e.invalidate() }
func (o observer) NamespaceChanged(dom.NamespaceEvent) { o.e.invalidate() }

// invalidate marks the layout stale. The first change after a layout
// captures the cursor selection so later changes can shift it.
func (e *Engine) invalidate() {
	e.revision++
	if !e.dirty {
		e.sel = e.cursor.Selection()
		e.dirty = true
	}
}

// ensureLayout rebuilds the box tree and content map if the document,
// styles, or width changed, and rebinds the cursor to them.
// Callers hold the write lock.
func (e *Engine) ensureLayout() {
	if !e.dirty {
		return
	}
	e.root = e.layout.Render(e.doc)
	e.cmap.SetRootBox(e.root)
	e.cursor.SetContentMap(e.cmap)
	e.cursor.SetSelection(e.sel.Anchor, e.sel.Head)
	if !e.cursor.HasSelection() && !e.cmap.IsCaretPosition(e.cursor.Offset()) {
		before := e.cursor.Offset()
		e.cursor.Right()
		if e.cursor.Offset() == before {
			e.cursor.Left()
		}
	}
	e.dirty = false
	e.logger.Debug("layout rebuilt",
		logging.FieldDocument, e.doc.UUID(),
		logging.FieldWidth, e.layout.Width(),
		logging.FieldRows, len(e.cmap.Lines()))
}

// relayout forces a rebuild on the next query without touching the
// document revision.
func (e *Engine) relayout() {
	if !e.dirty {
		e.sel = e.cursor.Selection()
		e.dirty = true
	}
}

// ============================================================================
// Read Operations
// ============================================================================

// Document returns the edited document. Mutating it directly bypasses the
// undo history and the engine's locking.
func (e *Engine) Document() *dom.Document {
	return e.doc
}

// Text returns the character data of the whole document.
func (e *Engine) Text() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.doc.Text()
}

// Len returns the number of content positions, tag markers included.
func (e *Engine) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.doc.Len()
}

// Revision returns a counter that increases with every document change.
func (e *Engine) Revision() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.revision
}

// IsReadOnly returns true if the engine rejects edits.
func (e *Engine) IsReadOnly() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.readOnly
}

// WriteXML serializes the document as XML.
func (e *Engine) WriteXML(w io.Writer) error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return xmlio.Write(w, e.doc)
}

// ============================================================================
// Layout Operations
// ============================================================================

// RootBox returns the current box tree.
func (e *Engine) RootBox() *layout.RootBox {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ensureLayout()
	return e.root
}

// ContentMap returns the current content map.
func (e *Engine) ContentMap() *contentmap.Map {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ensureLayout()
	return e.cmap
}

// Width returns the layout width.
func (e *Engine) Width() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.layout.Width()
}

// SetWidth changes the layout width. Non-positive widths are ignored.
func (e *Engine) SetWidth(width int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if width <= 0 || width == e.layout.Width() {
		return
	}
	e.layout.SetWidth(width)
	e.relayout()
}

// Styles returns the style provider.
func (e *Engine) Styles() style.Provider {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.layout.Styles()
}

// SetStyles replaces the style provider. It may be called from any
// goroutine, e.g. a stylesheet watcher.
func (e *Engine) SetStyles(p style.Provider) {
	if p == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.layout.SetStyles(p)
	e.relayout()
	e.logger.Debug("styles replaced", logging.FieldDocument, e.doc.UUID())
}

// Dump writes the current box tree to w.
func (e *Engine) Dump(w io.Writer) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ensureLayout()
	return layout.Dump(w, e.root)
}

// ============================================================================
// Undo/Redo Operations
// ============================================================================

// Undo undoes the last operation.
func (e *Engine) Undo() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.history.InTransaction() && !e.history.CanUndo() {
		return ErrNothingToUndo
	}
	if err := e.history.Undo(); err != nil {
		return err
	}
	e.logger.Debug("undo", logging.FieldUndo, e.history.UndoCount(), logging.FieldRedo, e.history.RedoCount())
	return nil
}

// Redo redoes the last undone operation.
func (e *Engine) Redo() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.history.InTransaction() && !e.history.CanRedo() {
		return ErrNothingToRedo
	}
	if err := e.history.Redo(); err != nil {
		return err
	}
	e.logger.Debug("redo", logging.FieldUndo, e.history.UndoCount(), logging.FieldRedo, e.history.RedoCount())
	return nil
}

// CanUndo returns true if there are operations to undo.
func (e *Engine) CanUndo() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.history.CanUndo()
}

// CanRedo returns true if there are operations to redo.
func (e *Engine) CanRedo() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.history.CanRedo()
}

// UndoCount returns the number of operations that can be undone.
func (e *Engine) UndoCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.history.UndoCount()
}

// RedoCount returns the number of operations that can be redone.
func (e *Engine) RedoCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.history.RedoCount()
}

// UndoInfo describes the undo entries, oldest first.
func (e *Engine) UndoInfo() []OperationInfo {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.history.UndoInfo()
}

// BeginWork starts a transaction. Transactions nest; only the outermost
// CommitWork records an undo entry.
func (e *Engine) BeginWork() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.history.BeginWork()
	e.logger.Debug("begin work", logging.FieldDepth, e.history.Depth())
}

// CommitWork ends the innermost transaction, keeping its edits.
func (e *Engine) CommitWork() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.history.CommitWork()
}

// RollbackWork ends the innermost transaction, undoing its edits.
func (e *Engine) RollbackWork() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.history.RollbackWork()
}

// InTransaction reports whether a transaction is open.
func (e *Engine) InTransaction() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.history.InTransaction()
}

// ClearHistory drops all undo and redo entries.
func (e *Engine) ClearHistory() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.history.Clear()
}
