package cursor

import (
	"github.com/dshills/vex/internal/layout"
	"github.com/dshills/vex/internal/layout/contentmap"
)

// noPreferredX marks that no vertical move sequence is in progress.
const noPreferredX = -1

// Cursor is the caret of a laid-out document.
type Cursor struct {
	m          *contentmap.Map
	sel        Selection
	preferredX int
}

// New creates a cursor on m at the first caret position of the document.
// m must not be nil.
func New(m *contentmap.Map) *Cursor {
	c := &Cursor{m: m, preferredX: noPreferredX}
	c.sel = Collapsed(c.first(0))
	return c
}

// ContentMap returns the map the cursor moves on.
func (c *Cursor) ContentMap() *contentmap.Map { return c.m }

// SetContentMap rebinds the cursor to a rebuilt map, keeping its offsets
// where the new document allows.
func (c *Cursor) SetContentMap(m *contentmap.Map) {
	c.m = m
	end := c.end()
	c.sel = Selection{Anchor: c.snap(clamp(c.sel.Anchor, end)), Head: c.snap(clamp(c.sel.Head, end))}
	c.preferredX = noPreferredX
}

// Offset returns the caret offset.
func (c *Cursor) Offset() int { return c.sel.Head }

// Selection returns the current selection.
func (c *Cursor) Selection() Selection { return c.sel }

// HasSelection reports whether a non-empty span is selected.
func (c *Cursor) HasSelection() bool { return !c.sel.IsEmpty() }

// SetSelection selects from anchor to head, both clamped to the document.
func (c *Cursor) SetSelection(anchor, head int) {
	end := c.end()
	c.sel = Selection{Anchor: c.snap(clamp(anchor, end)), Head: c.snap(clamp(head, end))}
	c.preferredX = noPreferredX
}

// ClearSelection collapses the selection onto the caret.
func (c *Cursor) ClearSelection() { c.sel = Collapsed(c.sel.Head) }

// PreferredX returns the x coordinate kept across vertical moves, or -1
// outside a vertical move sequence.
func (c *Cursor) PreferredX() int { return c.preferredX }

// ToOffset moves the caret to offset, clamped to the document. An offset
// inside a grapheme cluster moves to the cluster start.
func (c *Cursor) ToOffset(offset int) { c.moveTo(c.snap(clamp(offset, c.end())), false) }

// SelectTo extends the selection to offset.
func (c *Cursor) SelectTo(offset int) { c.moveTo(c.snap(clamp(offset, c.end())), true) }

// Left moves to the previous caret position. It does nothing at the start.
func (c *Cursor) Left() { c.moveTo(c.previous(c.sel.Head), false) }

// Right moves to the next caret position. It does nothing at the end.
func (c *Cursor) Right() { c.moveTo(c.next(c.sel.Head), false) }

// SelectLeft extends the selection to the previous caret position.
func (c *Cursor) SelectLeft() { c.moveTo(c.previous(c.sel.Head), true) }

// SelectRight extends the selection to the next caret position.
func (c *Cursor) SelectRight() { c.moveTo(c.next(c.sel.Head), true) }

// Up moves to the row above at the preferred x.
func (c *Cursor) Up() { c.vertical(false, false) }

// Down moves to the row below at the preferred x.
func (c *Cursor) Down() { c.vertical(true, false) }

// SelectUp extends the selection to the row above.
func (c *Cursor) SelectUp() { c.vertical(false, true) }

// SelectDown extends the selection to the row below.
func (c *Cursor) SelectDown() { c.vertical(true, true) }

// LineStart moves to the first caret position of the caret's row.
func (c *Cursor) LineStart() {
	if i, ok := c.m.LineOf(c.sel.Head); ok {
		c.moveTo(c.rowStart(c.m.Lines()[i]), false)
	}
}

// LineEnd moves to the last caret position of the caret's row.
func (c *Cursor) LineEnd() {
	if i, ok := c.m.LineOf(c.sel.Head); ok {
		c.moveTo(c.rowEnd(c.m.Lines()[i]), false)
	}
}

// DocumentStart moves to the first caret position of the document.
func (c *Cursor) DocumentStart() { c.moveTo(c.first(0), false) }

// DocumentEnd moves to the last caret position of the document.
func (c *Cursor) DocumentEnd() { c.moveTo(c.last(c.end()), false) }

// SelectAll selects from the first to the last caret position.
func (c *Cursor) SelectAll() {
	c.sel = Selection{Anchor: c.first(0), Head: c.last(c.end())}
	c.preferredX = noPreferredX
}

// ToAbsoluteCoordinates moves the caret to the offset under (x, y). The
// clicked x becomes the preferred x of a following vertical move.
func (c *Cursor) ToAbsoluteCoordinates(x, y int) {
	c.moveTo(c.snap(c.m.OffsetAt(x, y)), false)
	c.preferredX = max(x, 0)
}

// Caret returns where the caret is drawn.
func (c *Cursor) Caret() (contentmap.Caret, error) {
	return c.m.CaretAt(c.sel.Head)
}

func (c *Cursor) moveTo(offset int, extend bool) {
	if extend {
		c.sel = c.sel.Extend(offset)
	} else {
		c.sel = Collapsed(offset)
	}
	c.preferredX = noPreferredX
}

// vertical moves to the nearest row above or below. When that row belongs
// to another block and the preferred x falls outside it, the caret goes to
// the row's start (moving down) or end (moving up) instead.
func (c *Cursor) vertical(down, extend bool) {
	px := c.preferredX
	caret, err := c.m.CaretAt(c.sel.Head)
	if err != nil {
		return
	}
	if px == noPreferredX {
		px = caret.X
	}

	rows := c.m.Lines()
	var cur *contentmap.Row
	top := caret.Y
	if i, ok := c.m.LineOf(c.sel.Head); ok {
		cur = &rows[i]
		top = cur.Top
	}

	target := -1
	for i, r := range rows {
		if down && r.Top <= top || !down && r.Top >= top {
			continue
		}
		if target < 0 {
			target = i
			continue
		}
		t := rows[target]
		switch {
		case down && r.Top < t.Top, !down && r.Top > t.Top:
			target = i
		case r.Top == t.Top && distance(px, r.Left, r.Right()) < distance(px, t.Left, t.Right()):
			target = i
		}
	}
	if target < 0 {
		return
	}

	row := rows[target]
	var offset int
	switch {
	case (cur == nil || cur.Block != row.Block) && (px < row.Left || px >= row.Right()):
		if down {
			offset = c.rowStart(row)
		} else {
			offset = c.rowEnd(row)
		}
	default:
		offset = c.inRow(row, row.Line.OffsetForCoordinates(px-row.Left, 0))
	}

	c.moveTo(offset, extend)
	c.preferredX = px
}

// inRow returns offset if it is a caret position on row, or the nearest
// caret position on row otherwise.
func (c *Cursor) inRow(row contentmap.Row, offset int) int {
	if row.Range.ContainsOffset(offset) && c.m.IsCaretPosition(offset) {
		return offset
	}
	best, bestDist := c.rowStart(row), -1
	for o := row.Range.Start; o <= row.Range.End; o++ {
		if !c.m.IsCaretPosition(o) {
			continue
		}
		d := abs(o - offset)
		if bestDist < 0 || d < bestDist {
			best, bestDist = o, d
		}
	}
	return best
}

func (c *Cursor) rowStart(row contentmap.Row) int {
	for o := row.Range.Start; o <= row.Range.End; o++ {
		if c.m.IsCaretPosition(o) {
			return o
		}
	}
	return row.Range.Start
}

func (c *Cursor) rowEnd(row contentmap.Row) int {
	for o := row.Range.End; o >= row.Range.Start; o-- {
		if c.m.IsCaretPosition(o) {
			return o
		}
	}
	return row.Range.End
}

// end returns the last offset of the document.
func (c *Cursor) end() int {
	if c.m.RootBox() == nil {
		return 0
	}
	return c.m.RootBox().Range().End
}

func (c *Cursor) previous(offset int) int {
	for o := offset - 1; o >= 0; o-- {
		if c.m.IsCaretPosition(o) {
			return o
		}
	}
	return offset
}

func (c *Cursor) next(offset int) int {
	end := c.end()
	for o := offset + 1; o <= end; o++ {
		if c.m.IsCaretPosition(o) {
			return o
		}
	}
	return offset
}

// first returns the first caret position at or after offset.
func (c *Cursor) first(offset int) int {
	if c.m.IsCaretPosition(offset) {
		return offset
	}
	return c.next(offset)
}

// last returns the last caret position at or before offset.
func (c *Cursor) last(offset int) int {
	if c.m.IsCaretPosition(offset) {
		return offset
	}
	return c.previous(offset)
}

// snap moves an offset inside a grapheme cluster back to the cluster start.
// Other offsets are kept as they are.
func (c *Cursor) snap(offset int) int {
	b, err := c.m.Box(offset)
	if err != nil {
		return offset
	}
	t, ok := b.(*layout.TextContent)
	if !ok {
		return offset
	}
	for o := offset; o > t.Range().Start; o-- {
		if t.IsCaretPosition(o) {
			return o
		}
	}
	return t.Range().Start
}

// distance returns how far v lies outside [lo, hi).
func distance(v, lo, hi int) int {
	switch {
	case v < lo:
		return lo - v
	case v >= hi:
		return v - hi + 1
	default:
		return 0
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
