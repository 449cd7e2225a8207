// Package contentmap indexes a laid-out box tree by content offset.
//
// A Map answers which box renders an offset, where the caret for an offset
// is drawn, which offset lies under a point, and how content is split into
// visual rows. It is rebuilt from scratch whenever the box tree changes.
package contentmap

import (
	"errors"
	"fmt"
	"sort"

	"github.com/dshills/vex/internal/engine/content"
	"github.com/dshills/vex/internal/layout"
)

// ErrNoBoxAtOffset is returned for queries on an offset no box renders, or
// on a map whose root box has not been laid out.
var ErrNoBoxAtOffset = errors.New("no box at offset")

// Entry is a content box with its absolute position in the tree.
type Entry struct {
	Box   layout.ContentBox
	Top   int
	Left  int
	Depth int
}

// Contains reports whether the point (x, y) lies inside the box.
func (e Entry) Contains(x, y int) bool {
	return x >= e.Left && x < e.Left+e.Box.Width() &&
		y >= e.Top && y < e.Top+e.Box.Height()
}

// Row is one visual line of content.
type Row struct {
	Line  *layout.Line
	Top   int
	Left  int
	Range content.Range
	// Block is the innermost block-level box containing the line.
	Block layout.ContentBox
}

// Height returns the height of the row.
func (r Row) Height() int { return r.Line.Height() }

// Right returns the x coordinate just past the row.
func (r Row) Right() int { return r.Left + r.Line.Width() }

// Caret is where the caret for an offset is drawn.
type Caret struct {
	X, Y   int
	Height int
}

// Map is the offset index of a box tree.
type Map struct {
	root    layout.ContentBox
	entries []Entry
	rows    []Row
}

// New creates a map for root. root may be nil.
func New(root layout.ContentBox) *Map {
	m := &Map{}
	m.SetRootBox(root)
	return m
}

// SetRootBox rebuilds the index for root.
func (m *Map) SetRootBox(root layout.ContentBox) {
	m.root = root
	m.entries = m.entries[:0]
	m.rows = m.rows[:0]
	if root == nil {
		return
	}
	m.walk(root, 0, 0, 0, nil)
	sort.SliceStable(m.rows, func(i, j int) bool {
		if m.rows[i].Top != m.rows[j].Top {
			return m.rows[i].Top < m.rows[j].Top
		}
		return m.rows[i].Left < m.rows[j].Left
	})
}

// RootBox returns the indexed root box.
func (m *Map) RootBox() layout.ContentBox { return m.root }

func (m *Map) walk(b layout.Box, top, left, depth int, block layout.ContentBox) {
	top += b.Top()
	left += b.Left()
	if cb, ok := b.(layout.ContentBox); ok && !cb.Range().IsNull() {
		m.entries = append(m.entries, Entry{Box: cb, Top: top, Left: left, Depth: depth})
		switch box := b.(type) {
		case *layout.Line:
			m.rows = append(m.rows, Row{Line: box, Top: top, Left: left, Range: box.Range(), Block: block})
		case *layout.Paragraph, *layout.Frame:
		default:
			if _, inline := b.(layout.InlineBox); !inline {
				block = cb
			}
		}
	}
	for _, c := range b.Children() {
		m.walk(c, top, left, depth+1, block)
	}
}

func (m *Map) laidOut() bool {
	return m.root != nil && m.root.Width() > 0
}

// Entries returns every content box in pre-order.
func (m *Map) Entries() []Entry { return m.entries }

// Locate returns the innermost content box whose range contains offset.
// Boxes of equal depth are resolved in pre-order.
func (m *Map) Locate(offset int) (Entry, error) {
	if !m.laidOut() {
		return Entry{}, fmt.Errorf("%w: %d: layout is empty", ErrNoBoxAtOffset, offset)
	}
	found := -1
	for i, e := range m.entries {
		if !e.Box.Range().ContainsOffset(offset) {
			continue
		}
		if found < 0 || e.Depth > m.entries[found].Depth {
			found = i
		}
	}
	if found < 0 {
		return Entry{}, fmt.Errorf("%w: %d", ErrNoBoxAtOffset, offset)
	}
	return m.entries[found], nil
}

// Box returns the innermost content box whose range contains offset.
func (m *Map) Box(offset int) (layout.ContentBox, error) {
	e, err := m.Locate(offset)
	if err != nil {
		return nil, err
	}
	return e.Box, nil
}

// BoxAtCoordinates returns the innermost content box under the point
// (x, y), or the box of the nearest offset when no box is under it.
func (m *Map) BoxAtCoordinates(x, y int) (layout.ContentBox, error) {
	if !m.laidOut() {
		return nil, fmt.Errorf("%w: layout is empty", ErrNoBoxAtOffset)
	}
	if row, ok := m.RowAt(x, y); ok && x >= row.Left && x < row.Right() {
		found := -1
		for i, e := range m.entries {
			if !e.Contains(x, y) || !row.Range.Intersects(e.Box.Range()) {
				continue
			}
			if found < 0 || e.Depth > m.entries[found].Depth {
				found = i
			}
		}
		if found >= 0 {
			return m.entries[found].Box, nil
		}
	}
	return m.Box(m.OffsetAt(x, y))
}

// OffsetAt returns the content offset nearest to the point (x, y). The row
// is chosen by y first, then the offset within it by x.
func (m *Map) OffsetAt(x, y int) int {
	if row, ok := m.RowAt(x, y); ok {
		o := row.Line.OffsetForCoordinates(x-row.Left, y-row.Top)
		return min(max(o, row.Range.Start), row.Range.End)
	}
	if m.root == nil {
		return 0
	}
	return m.root.OffsetForCoordinates(x, y)
}

// RowAt returns the row nearest to the point (x, y). Rows spanning y are
// preferred; among them the one horizontally nearest to x wins.
func (m *Map) RowAt(x, y int) (Row, bool) {
	best, bestDY, bestDX := -1, 0, 0
	for i, r := range m.rows {
		dy := distance(y, r.Top, r.Top+r.Height())
		dx := distance(x, r.Left, r.Right())
		if best < 0 || dy < bestDY || dy == bestDY && dx < bestDX {
			best, bestDY, bestDX = i, dy, dx
		}
	}
	if best < 0 {
		return Row{}, false
	}
	return m.rows[best], true
}

// Lines returns the visual rows ordered by top, then left.
func (m *Map) Lines() []Row { return m.rows }

// LineOf returns the index of the row rendering offset.
func (m *Map) LineOf(offset int) (int, bool) {
	for i, r := range m.rows {
		if r.Range.ContainsOffset(offset) {
			return i, true
		}
	}
	return -1, false
}

// CaretAt returns where the caret for offset is drawn.
func (m *Map) CaretAt(offset int) (Caret, error) {
	if i, ok := m.LineOf(offset); ok {
		r := m.rows[i]
		return Caret{X: r.Left + r.Line.PositionForOffset(offset), Y: r.Top, Height: r.Height()}, nil
	}
	e, err := m.Locate(offset)
	if err != nil {
		return Caret{}, err
	}
	return Caret{X: e.Left + e.Box.PositionForOffset(offset), Y: e.Top, Height: e.Box.Height()}, nil
}

// IsCaretPosition reports whether the caret may rest at offset: a grapheme
// boundary of text, a placeholder, or the start of an inline node.
func (m *Map) IsCaretPosition(offset int) bool {
	b, err := m.Box(offset)
	if err != nil {
		return false
	}
	switch box := b.(type) {
	case *layout.TextContent:
		return box.IsCaretPosition(offset)
	case *layout.Placeholder:
		return true
	case *layout.InlineContainer:
		return box.IsFirst() && box.Range().Start == offset
	}
	return false
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
