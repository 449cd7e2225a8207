// Package layout turns a document into a tree of positioned boxes.
//
// Block-level boxes (RootBox, VerticalBlock, Frame, Paragraph, Table,
// TableRow, TableCell) stack their children vertically. A Paragraph owns a
// flat run of inline boxes (TextContent, StaticText, Placeholder,
// InlineContainer) and arranges them into Lines for the width it is given.
// Inline boxes join with compatible neighbours and split at Unicode line
// break opportunities.
//
// Box positions are relative to the parent box. Boxes are rebuilt from the
// document after every change; they are never patched in place.
package layout

import (
	"github.com/dshills/vex/internal/engine/content"
)

// Box is a node of the box tree.
type Box interface {
	Top() int
	Left() int
	Width() int
	Height() int
	Children() []Box

	setPosition(top, left int)
}

// ContentBox is a box that renders a range of document content.
type ContentBox interface {
	Box

	// Range returns the content offsets the box renders.
	Range() content.Range

	// PositionForOffset returns the caret x coordinate of offset, relative
	// to the box.
	PositionForOffset(offset int) int

	// OffsetForCoordinates returns the offset nearest to the point (x, y),
	// relative to the box.
	OffsetForCoordinates(x, y int) int
}

// InlineBox is a box that flows within a line.
type InlineBox interface {
	Box

	Baseline() int
	Descent() int

	// CanJoin reports whether next can be merged onto the end of this box.
	CanJoin(next InlineBox) bool
	// Join returns a new box holding this box followed by next.
	Join(next InlineBox) InlineBox

	CanSplit() bool
	// Split divides the box so that head fits in maxWidth. head is nil if
	// no prefix fits; when force is set the shortest prefix is taken
	// instead. tail is nil if the whole box fits.
	Split(maxWidth int, force bool) (head, tail InlineBox)

	// LineBreakAfter reports whether the line must end after this box.
	LineBreakAfter() bool
}

// Geometry is the position and size shared by every box.
type Geometry struct {
	top, left     int
	width, height int
}

// Top returns the top edge relative to the parent box.
func (g *Geometry) Top() int { return g.top }

// Left returns the left edge relative to the parent box.
func (g *Geometry) Left() int { return g.left }

// Width returns the box width.
func (g *Geometry) Width() int { return g.width }

// Height returns the box height.
func (g *Geometry) Height() int { return g.height }

func (g *Geometry) setPosition(top, left int) {
	g.top, g.left = top, left
}

// setSize sets the size, clamping negative values to zero.
func (g *Geometry) setSize(width, height int) {
	g.width, g.height = max(width, 0), max(height, 0)
}

// Visit walks the tree rooted at b in pre-order, passing each box with its
// absolute position. Returning false from fn skips the box's children.
func Visit(b Box, fn func(b Box, top, left, depth int) bool) {
	visit(b, 0, 0, 0, fn)
}

func visit(b Box, top, left, depth int, fn func(Box, int, int, int) bool) {
	top += b.Top()
	left += b.Left()
	if !fn(b, top, left, depth) {
		return
	}
	for _, c := range b.Children() {
		visit(c, top, left, depth+1, fn)
	}
}

func inlineChildren(boxes []InlineBox) []Box {
	out := make([]Box, len(boxes))
	for i, b := range boxes {
		out[i] = b
	}
	return out
}
