package engine

import (
	"github.com/dshills/vex/internal/engine/cursor"
)

// ============================================================================
// Cursor Operations
// ============================================================================

// move runs fn on the cursor with the layout current. Every cursor move
// ends the current undo entry so typing after it starts a new one.
func (e *Engine) move(fn func(c *cursor.Cursor)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ensureLayout()
	fn(e.cursor)
	e.history.Seal()
}

// Offset returns the caret offset.
func (e *Engine) Offset() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ensureLayout()
	return e.cursor.Offset()
}

// Selection returns the current selection.
func (e *Engine) Selection() Selection {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ensureLayout()
	return e.cursor.Selection()
}

// SelectedText returns the character data of the selection.
func (e *Engine) SelectedText() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ensureLayout()
	sel := e.cursor.Selection()
	if sel.IsEmpty() {
		return ""
	}
	return e.doc.PlainText(sel.Range())
}

// Caret returns where the caret is drawn.
func (e *Engine) Caret() (Caret, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ensureLayout()
	return e.cursor.Caret()
}

// PreferredX returns the x kept across vertical moves, or -1.
func (e *Engine) PreferredX() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ensureLayout()
	return e.cursor.PreferredX()
}

// MoveTo moves the caret to offset, clamped to the document.
func (e *Engine) MoveTo(offset int) { e.move(func(c *cursor.Cursor) { c.ToOffset(offset) }) }

// MoveToCoordinates moves the caret to the offset under (x, y).
func (e *Engine) MoveToCoordinates(x, y int) {
	e.move(func(c *cursor.Cursor) { c.ToAbsoluteCoordinates(x, y) })
}

// SelectTo extends the selection to offset.
func (e *Engine) SelectTo(offset int) { e.move(func(c *cursor.Cursor) { c.SelectTo(offset) }) }

// Select selects from anchor to head.
func (e *Engine) Select(anchor, head int) {
	e.move(func(c *cursor.Cursor) { c.SetSelection(anchor, head) })
}

// ClearSelection collapses the selection onto the caret.
func (e *Engine) ClearSelection() { e.move((*cursor.Cursor).ClearSelection) }

// Left moves to the previous caret position.
func (e *Engine) Left() { e.move((*cursor.Cursor).Left) }

// Right moves to the next caret position.
func (e *Engine) Right() { e.move((*cursor.Cursor).Right) }

// Up moves to the row above.
func (e *Engine) Up() { e.move((*cursor.Cursor).Up) }

// Down moves to the row below.
func (e *Engine) Down() { e.move((*cursor.Cursor).Down) }

// SelectLeft extends the selection to the previous caret position.
func (e *Engine) SelectLeft() { e.move((*cursor.Cursor).SelectLeft) }

// SelectRight extends the selection to the next caret position.
func (e *Engine) SelectRight() { e.move((*cursor.Cursor).SelectRight) }

// SelectUp extends the selection to the row above.
func (e *Engine) SelectUp() { e.move((*cursor.Cursor).SelectUp) }

// SelectDown extends the selection to the row below.
func (e *Engine) SelectDown() { e.move((*cursor.Cursor).SelectDown) }

// LineStart moves to the start of the caret's row.
func (e *Engine) LineStart() { e.move((*cursor.Cursor).LineStart) }

// LineEnd moves to the end of the caret's row.
func (e *Engine) LineEnd() { e.move((*cursor.Cursor).LineEnd) }

// DocumentStart moves to the first caret position.
func (e *Engine) DocumentStart() { e.move((*cursor.Cursor).DocumentStart) }

// DocumentEnd moves to the last caret position.
func (e *Engine) DocumentEnd() { e.move((*cursor.Cursor).DocumentEnd) }

// SelectAll selects the whole document.
func (e *Engine) SelectAll() { e.move((*cursor.Cursor).SelectAll) }
