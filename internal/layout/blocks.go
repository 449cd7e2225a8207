package layout

import (
	"fmt"

	"github.com/dshills/vex/internal/engine/content"
	"github.com/dshills/vex/internal/engine/dom"
	"github.com/dshills/vex/internal/style"
)

// block is a box laid out for a given width.
type block interface {
	Box
	layout(width int)
}

// stack lays block children out top to bottom.
type stack struct {
	Geometry
	children []block
}

func (s *stack) layout(width int) {
	y := 0
	for _, c := range s.children {
		c.layout(width)
		c.setPosition(y, 0)
		y += c.Height()
	}
	s.setSize(width, y)
}

// Children returns the stacked blocks.
func (s *stack) Children() []Box { return blockChildren(s.children) }

func blockChildren(blocks []block) []Box {
	out := make([]Box, len(blocks))
	for i, b := range blocks {
		out[i] = b
	}
	return out
}

// nodeRange is the range and identity of the node a block renders.
type nodeRange struct {
	node dom.NodeID
	rng  content.Range
}

// Node returns the identifier of the rendered node.
func (n nodeRange) Node() dom.NodeID { return n.node }

// Range returns the range of the rendered node.
func (n nodeRange) Range() content.Range { return n.rng }

// RootBox is the root of a box tree. It covers the whole document.
type RootBox struct {
	stack
	nodeRange
}

// Blocks returns the top-level blocks.
func (r *RootBox) Blocks() []Box { return r.Children() }

// PositionForOffset returns the caret x of offset.
func (r *RootBox) PositionForOffset(offset int) int {
	return positionIn(r.Children(), offset)
}

// OffsetForCoordinates returns the offset nearest to (x, y).
func (r *RootBox) OffsetForCoordinates(x, y int) int {
	return offsetIn(r.Children(), x, y, r.rng.Start)
}

// String describes the box.
func (r *RootBox) String() string { return fmt.Sprintf("RootBox %s", r.rng) }

// VerticalBlock renders a block-level node.
type VerticalBlock struct {
	stack
	nodeRange
}

// PositionForOffset returns the caret x of offset.
func (v *VerticalBlock) PositionForOffset(offset int) int {
	return positionIn(v.Children(), offset)
}

// OffsetForCoordinates returns the offset nearest to (x, y).
func (v *VerticalBlock) OffsetForCoordinates(x, y int) int {
	return offsetIn(v.Children(), x, y, v.rng.Start)
}

// String describes the box.
func (v *VerticalBlock) String() string { return fmt.Sprintf("VerticalBlock %s", v.rng) }

// Frame surrounds a single block with margin, border and padding.
type Frame struct {
	Geometry
	insets style.Insets
	child  block
}

func newFrame(insets style.Insets, child block) *Frame {
	return &Frame{insets: insets.Clamp(), child: child}
}

// Insets returns the space around the child.
func (f *Frame) Insets() style.Insets { return f.insets }

// Children returns the framed block.
func (f *Frame) Children() []Box { return []Box{f.child} }

func (f *Frame) layout(width int) {
	f.child.layout(max(width-f.insets.Horizontal(), 0))
	f.child.setPosition(f.insets.Top, f.insets.Left)
	f.setSize(max(width, f.child.Width()+f.insets.Horizontal()), f.child.Height()+f.insets.Vertical())
}

// Range returns the range of the framed block.
func (f *Frame) Range() content.Range {
	if cb, ok := f.child.(ContentBox); ok {
		return cb.Range()
	}
	return content.NullRange
}

// PositionForOffset returns the caret x of offset.
func (f *Frame) PositionForOffset(offset int) int {
	return positionIn(f.Children(), offset)
}

// OffsetForCoordinates returns the offset nearest to (x, y).
func (f *Frame) OffsetForCoordinates(x, y int) int {
	return offsetIn(f.Children(), x, y, f.Range().Start)
}

// String describes the box.
func (f *Frame) String() string {
	i := f.insets
	return fmt.Sprintf("Frame [%d %d %d %d]", i.Top, i.Right, i.Bottom, i.Left)
}

// Table stacks rows whose cells share one column layout. Columns split the
// table width evenly.
type Table struct {
	Geometry
	nodeRange
	columns  *TableColumnLayout
	children []block
}

// Columns returns the column layout of the table.
func (t *Table) Columns() *TableColumnLayout { return t.columns }

// Children returns the rows and other blocks of the table.
func (t *Table) Children() []Box { return blockChildren(t.children) }

// ColumnWidth returns the width of one column for a table width.
func (t *Table) ColumnWidth(width int) int {
	return width / max(t.columns.LastIndex(), 1)
}

func (t *Table) layout(width int) {
	colWidth := t.ColumnWidth(width)
	y := 0
	for _, c := range t.children {
		if row, ok := c.(*TableRow); ok {
			row.layoutColumns(width, colWidth)
		} else {
			c.layout(width)
		}
		c.setPosition(y, 0)
		y += c.Height()
	}
	t.setSize(width, y)
}

// PositionForOffset returns the caret x of offset.
func (t *Table) PositionForOffset(offset int) int {
	return positionIn(t.Children(), offset)
}

// OffsetForCoordinates returns the offset nearest to (x, y).
func (t *Table) OffsetForCoordinates(x, y int) int {
	return offsetIn(t.Children(), x, y, t.rng.Start)
}

// String describes the box.
func (t *Table) String() string {
	return fmt.Sprintf("Table %s columns=%d", t.rng, t.columns.LastIndex())
}

// TableRow places its cells side by side.
type TableRow struct {
	Geometry
	nodeRange
	cells []*TableCell
}

// Cells returns the cells of the row.
func (r *TableRow) Cells() []*TableCell { return r.cells }

// Children returns the cells.
func (r *TableRow) Children() []Box {
	out := make([]Box, len(r.cells))
	for i, c := range r.cells {
		out[i] = c
	}
	return out
}

func (r *TableRow) layout(width int) {
	columns := 1
	for _, c := range r.cells {
		columns = max(columns, c.span.End)
	}
	r.layoutColumns(width, width/columns)
}

func (r *TableRow) layoutColumns(width, colWidth int) {
	h := 0
	for _, c := range r.cells {
		c.layout(colWidth * (c.span.End - c.span.Start + 1))
		c.setPosition(0, (c.span.Start-1)*colWidth)
		h = max(h, c.Height())
	}
	r.setSize(width, h)
}

// PositionForOffset returns the caret x of offset.
func (r *TableRow) PositionForOffset(offset int) int {
	return positionIn(r.Children(), offset)
}

// OffsetForCoordinates returns the offset nearest to (x, y).
func (r *TableRow) OffsetForCoordinates(x, y int) int {
	return offsetIn(r.Children(), x, y, r.rng.Start)
}

// String describes the box.
func (r *TableRow) String() string { return fmt.Sprintf("TableRow %s", r.rng) }

// TableCell is a block occupying a span of table columns.
type TableCell struct {
	stack
	nodeRange
	span ColumnSpan
}

// Span returns the columns the cell occupies.
func (c *TableCell) Span() ColumnSpan { return c.span }

// PositionForOffset returns the caret x of offset.
func (c *TableCell) PositionForOffset(offset int) int {
	return positionIn(c.Children(), offset)
}

// OffsetForCoordinates returns the offset nearest to (x, y).
func (c *TableCell) OffsetForCoordinates(x, y int) int {
	return offsetIn(c.Children(), x, y, c.Range().Start)
}

// Range returns the cell node's range, or the span of its content for a
// cell generated around loose row content.
func (c *TableCell) Range() content.Range {
	if c.node != 0 {
		return c.rng
	}
	r := content.NullRange
	for _, b := range c.children {
		if cb, ok := b.(ContentBox); ok && !cb.Range().IsNull() {
			if r.IsNull() {
				r = cb.Range()
			} else {
				r = r.Union(cb.Range())
			}
		}
	}
	return r
}

// String describes the box.
func (c *TableCell) String() string {
	return fmt.Sprintf("TableCell %s columns=%d-%d", c.Range(), c.span.Start, c.span.End)
}

// positionIn returns the caret x of offset in the child that renders it.
func positionIn(children []Box, offset int) int {
	var found Box
	for _, c := range children {
		cb, ok := c.(ContentBox)
		if ok && cb.Range().ContainsOffset(offset) {
			found = c
		}
	}
	if found == nil {
		return 0
	}
	return found.Left() + found.(ContentBox).PositionForOffset(offset)
}

// offsetIn resolves (x, y) in the child under it or, failing that, the
// nearest content child.
func offsetIn(children []Box, x, y, fallback int) int {
	var nearest Box
	nearestDist := -1
	for _, c := range children {
		cb, ok := c.(ContentBox)
		if !ok || cb.Range().IsNull() {
			continue
		}
		dx := distance(x, c.Left(), c.Left()+c.Width())
		dy := distance(y, c.Top(), c.Top()+c.Height())
		if dx == 0 && dy == 0 {
			return cb.OffsetForCoordinates(x-c.Left(), y-c.Top())
		}
		if d := dy*1024 + dx; nearestDist < 0 || d < nearestDist {
			nearest, nearestDist = c, d
		}
	}
	if nearest == nil {
		return fallback
	}
	cx := min(max(x-nearest.Left(), 0), max(nearest.Width()-1, 0))
	cy := min(max(y-nearest.Top(), 0), max(nearest.Height()-1, 0))
	return nearest.(ContentBox).OffsetForCoordinates(cx, cy)
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
