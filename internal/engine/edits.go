package engine

import (
	"errors"
	"fmt"

	"github.com/dshills/vex/internal/engine/content"
	"github.com/dshills/vex/internal/engine/cursor"
	"github.com/dshills/vex/internal/engine/dom"
	"github.com/dshills/vex/internal/engine/history"
	"github.com/dshills/vex/internal/logging"
)

// ============================================================================
// Write Operations
// ============================================================================

// apply records edit on the undo stack. Callers hold the write lock.
func (e *Engine) apply(edit history.Edit, kv ...any) error {
	if e.readOnly {
		return ErrReadOnly
	}
	if err := e.history.Apply(edit); err != nil {
		fields := append([]any{logging.FieldDocument, e.doc.UUID(), logging.FieldError, err}, kv...)
		if errors.Is(err, dom.ErrValidation) {
			e.logger.Warn("edit rejected", fields...)
		} else {
			e.logger.Debug("edit failed", fields...)
		}
		return err
	}
	e.logger.Debug(describe(edit), append([]any{logging.FieldDocument, e.doc.UUID()}, kv...)...)
	return nil
}

func describe(edit history.Edit) string {
	if d, ok := edit.(history.Describer); ok {
		return d.Description()
	}
	return fmt.Sprintf("%T", edit)
}

// InsertText inserts text at the caret, replacing the selection if there
// is one. Consecutive insertions without cursor moves undo as one unit.
func (e *Engine) InsertText(text string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ensureLayout()

	if !e.cursor.HasSelection() {
		offset := e.cursor.Offset()
		return e.apply(dom.NewInsertTextEdit(e.doc, offset, text), logging.FieldOffset, offset)
	}

	e.history.BeginWork()
	if err := e.deleteSelectionLocked(); err != nil {
		_ = e.history.RollbackWork()
		return err
	}
	offset := e.sel.Head
	if err := e.apply(dom.NewInsertTextEdit(e.doc, offset, text), logging.FieldOffset, offset); err != nil {
		_ = e.history.RollbackWork()
		return err
	}
	return e.history.CommitWork()
}

// InsertElement inserts an empty element at the caret and moves the caret
// inside it.
func (e *Engine) InsertElement(name dom.QName) (*dom.Element, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ensureLayout()

	offset := e.cursor.Offset()
	edit := dom.NewInsertElementEdit(e.doc, offset, name)
	if err := e.apply(edit, logging.FieldOffset, offset, logging.FieldElement, name); err != nil {
		return nil, err
	}
	e.sel = cursor.Collapsed(edit.Element().EndOffset())
	return edit.Element(), nil
}

// InsertComment inserts an empty comment at the caret and moves the caret
// inside it.
func (e *Engine) InsertComment() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ensureLayout()

	offset := e.cursor.Offset()
	if err := e.apply(dom.NewInsertCommentEdit(e.doc, offset), logging.FieldOffset, offset); err != nil {
		return err
	}
	e.sel = cursor.Collapsed(offset + 1)
	return nil
}

// InsertProcessingInstruction inserts an empty processing instruction at
// the caret and moves the caret inside it.
func (e *Engine) InsertProcessingInstruction(target string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ensureLayout()

	offset := e.cursor.Offset()
	if err := e.apply(dom.NewInsertProcessingInstructionEdit(e.doc, offset, target), logging.FieldOffset, offset); err != nil {
		return err
	}
	e.sel = cursor.Collapsed(offset + 1)
	return nil
}

// DeleteSelection removes the selected content. An empty selection is a
// no-op.
func (e *Engine) DeleteSelection() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ensureLayout()
	return e.deleteSelectionLocked()
}

func (e *Engine) deleteSelectionLocked() error {
	sel := e.cursor.Selection()
	if sel.IsEmpty() {
		return nil
	}
	r := sel.Range()
	if err := e.apply(dom.NewDeleteEdit(e.doc, r), logging.FieldRange, r.String()); err != nil {
		return err
	}
	e.sel = cursor.Collapsed(r.Start)
	return nil
}

// DeleteBackward removes the selection, or what lies before the caret:
// the previous grapheme cluster of text, or a whole node ending right
// before the caret. At the start of an element's content only an empty
// element is removed; otherwise nothing happens.
func (e *Engine) DeleteBackward() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ensureLayout()

	if e.cursor.HasSelection() {
		return e.deleteSelectionLocked()
	}
	r, ok := e.backwardRange(e.cursor.Offset())
	if !ok {
		return nil
	}
	return e.apply(dom.NewDeleteEdit(e.doc, r), logging.FieldRange, r.String())
}

// DeleteForward removes the selection, or what lies after the caret.
func (e *Engine) DeleteForward() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ensureLayout()

	if e.cursor.HasSelection() {
		return e.deleteSelectionLocked()
	}
	r, ok := e.forwardRange(e.cursor.Offset())
	if !ok {
		return nil
	}
	return e.apply(dom.NewDeleteEdit(e.doc, r), logging.FieldRange, r.String())
}

func (e *Engine) backwardRange(offset int) (content.Range, bool) {
	prev, ok := e.doc.CharAt(offset - 1)
	if !ok {
		return content.NullRange, false
	}
	switch prev {
	case content.CloseTag:
		return e.removable(e.doc.NodeAt(offset - 1))
	case content.OpenTag:
		return e.emptyNodeAt(offset-1, offset)
	}
	start := offset - 1
	for start > 0 && !e.cmap.IsCaretPosition(start) {
		if r, ok := e.doc.CharAt(start - 1); !ok || content.IsTagMarker(r) {
			break
		}
		start--
	}
	return content.Range{Start: start, End: offset - 1}, true
}

func (e *Engine) forwardRange(offset int) (content.Range, bool) {
	next, ok := e.doc.CharAt(offset)
	if !ok {
		return content.NullRange, false
	}
	switch next {
	case content.OpenTag:
		return e.removable(e.doc.NodeAt(offset))
	case content.CloseTag:
		return e.emptyNodeAt(offset-1, offset)
	}
	end := offset + 1
	for !e.cmap.IsCaretPosition(end) {
		if r, ok := e.doc.CharAt(end); !ok || content.IsTagMarker(r) {
			break
		}
		end++
	}
	return content.Range{Start: offset, End: end - 1}, true
}

// emptyNodeAt returns the range of the node whose markers sit at open and
// close, if they are adjacent.
func (e *Engine) emptyNodeAt(open, closing int) (content.Range, bool) {
	if r, ok := e.doc.CharAt(open); !ok || r != content.OpenTag {
		return content.NullRange, false
	}
	if r, ok := e.doc.CharAt(closing); !ok || r != content.CloseTag {
		return content.NullRange, false
	}
	return e.removable(e.doc.NodeAt(open))
}

// removable returns the range of n unless n is the document or its root.
func (e *Engine) removable(n dom.Node) (content.Range, bool) {
	if n == nil || n.Kind() == dom.KindDocument {
		return content.NullRange, false
	}
	if el, ok := n.(*dom.Element); ok && el.ID() == e.doc.Root().ID() {
		return content.NullRange, false
	}
	return n.Range(), true
}

// ElementAtCaret returns the innermost element containing the caret.
func (e *Engine) ElementAtCaret() (*dom.Element, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ensureLayout()
	return e.elementAtCaretLocked()
}

func (e *Engine) elementAtCaretLocked() (*dom.Element, error) {
	el := e.doc.ElementAt(e.cursor.Offset())
	if el == nil {
		return nil, ErrNoElement
	}
	return el, nil
}

// SetAttribute sets an attribute on el.
func (e *Engine) SetAttribute(el *dom.Element, name dom.QName, value string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.apply(dom.NewSetAttributeEdit(el, name, value), logging.FieldElement, el.Name(), logging.FieldAttribute, name)
}

// RemoveAttribute removes an attribute from el.
func (e *Engine) RemoveAttribute(el *dom.Element, name dom.QName) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.apply(dom.NewRemoveAttributeEdit(el, name), logging.FieldElement, el.Name(), logging.FieldAttribute, name)
}

// DeclareNamespace binds prefix to uri on el.
func (e *Engine) DeclareNamespace(el *dom.Element, prefix, uri string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.apply(dom.NewDeclareNamespaceEdit(el, prefix, uri), logging.FieldElement, el.Name(), logging.FieldPrefix, prefix)
}

// RemoveNamespace drops the declaration of prefix from el.
func (e *Engine) RemoveNamespace(el *dom.Element, prefix string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.apply(dom.NewRemoveNamespaceEdit(el, prefix), logging.FieldElement, el.Name(), logging.FieldPrefix, prefix)
}
