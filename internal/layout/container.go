package layout

import (
	"fmt"

	"github.com/dshills/vex/internal/engine/content"
	"github.com/dshills/vex/internal/engine/dom"
	"github.com/dshills/vex/internal/metrics"
)

// InlineContainer renders an inline element, comment or processing
// instruction. A container split across lines becomes several fragments;
// only the first covers the node's open marker and only the last its close
// marker.
type InlineContainer struct {
	Geometry
	node     dom.NodeID
	kind     dom.Kind
	rng      content.Range
	first    bool
	last     bool
	children []InlineBox
	fm       metrics.FontMetrics
	baseline int
	descent  int
}

func newInlineContainer(n dom.Node, fm metrics.FontMetrics, children []InlineBox) *InlineContainer {
	c := &InlineContainer{
		node:  n.ID(),
		kind:  n.Kind(),
		rng:   n.Range(),
		first: true,
		last:  true,
		fm:    fm,
	}
	c.arrange(children)
	return c
}

// fragment returns a copy of c holding children.
func (c *InlineContainer) fragment(children []InlineBox, first, last bool) *InlineContainer {
	f := &InlineContainer{node: c.node, kind: c.kind, rng: c.rng, first: first, last: last, fm: c.fm}
	f.arrange(children)
	return f
}

// arrange positions children side by side on a common baseline.
func (c *InlineContainer) arrange(children []InlineBox) {
	c.children = children
	c.baseline, c.descent = c.fm.Ascent, c.fm.Descent+c.fm.Leading
	width := 0
	for _, ch := range children {
		c.baseline = max(c.baseline, ch.Baseline())
		c.descent = max(c.descent, ch.Descent())
		width += ch.Width()
	}
	x := 0
	for _, ch := range children {
		ch.setPosition(c.baseline-ch.Baseline(), x)
		x += ch.Width()
	}
	c.setSize(width, c.baseline+c.descent)
}

// Node returns the identifier of the rendered node.
func (c *InlineContainer) Node() dom.NodeID { return c.node }

// Kind returns the kind of the rendered node.
func (c *InlineContainer) Kind() dom.Kind { return c.kind }

// IsFirst reports whether this is the node's first fragment.
func (c *InlineContainer) IsFirst() bool { return c.first }

// IsLast reports whether this is the node's last fragment.
func (c *InlineContainer) IsLast() bool { return c.last }

// Inlines returns the inline children.
func (c *InlineContainer) Inlines() []InlineBox { return c.children }

// Children returns the inline children.
func (c *InlineContainer) Children() []Box { return inlineChildren(c.children) }

// Baseline returns the distance from the top to the baseline.
func (c *InlineContainer) Baseline() int { return c.baseline }

// Descent returns the distance from the baseline to the bottom.
func (c *InlineContainer) Descent() int { return c.descent }

// Range returns the offsets covered by this fragment.
func (c *InlineContainer) Range() content.Range {
	start, end := -1, -1
	if c.first {
		start = c.rng.Start
	}
	if c.last {
		end = c.rng.End
	}
	for _, ch := range c.children {
		cb, ok := ch.(ContentBox)
		if !ok {
			continue
		}
		r := cb.Range()
		if r.IsNull() {
			continue
		}
		if start < 0 {
			start = r.Start
		}
		end = max(end, r.End)
	}
	if start < 0 || end < 0 {
		return content.NullRange
	}
	return content.Range{Start: start, End: end}
}

// PositionForOffset returns the caret x of offset within the fragment.
func (c *InlineContainer) PositionForOffset(offset int) int {
	for _, ch := range c.children {
		if cb, ok := ch.(ContentBox); ok && cb.Range().ContainsOffset(offset) {
			return ch.Left() + cb.PositionForOffset(offset)
		}
	}
	if c.last && offset >= c.rng.End {
		return c.Width()
	}
	return 0
}

// OffsetForCoordinates resolves x to an offset inside the child under it.
func (c *InlineContainer) OffsetForCoordinates(x, y int) int {
	var nearest ContentBox
	nearestDist := -1
	for _, ch := range c.children {
		cb, ok := ch.(ContentBox)
		if !ok {
			continue
		}
		if x >= ch.Left() && x < ch.Left()+ch.Width() {
			return cb.OffsetForCoordinates(x-ch.Left(), y-ch.Top())
		}
		d := min(abs(x-ch.Left()), abs(x-ch.Left()-ch.Width()))
		if nearestDist < 0 || d < nearestDist {
			nearest, nearestDist = cb, d
		}
	}
	if nearest != nil {
		return nearest.OffsetForCoordinates(x-nearest.Left(), y-nearest.Top())
	}
	return c.Range().Start
}

// CanJoin reports whether next is the following fragment of the same node.
func (c *InlineContainer) CanJoin(next InlineBox) bool {
	n, ok := next.(*InlineContainer)
	return ok && n.node == c.node && n.rng == c.rng && !c.last && !n.first
}

// Join merges two fragments of the same node.
func (c *InlineContainer) Join(next InlineBox) InlineBox {
	n := next.(*InlineContainer)
	children := make([]InlineBox, 0, len(c.children)+len(n.children))
	children = append(children, c.children...)
	rest := n.children
	if k := len(children); k > 0 && len(rest) > 0 && children[k-1].CanJoin(rest[0]) {
		children[k-1] = children[k-1].Join(rest[0])
		rest = rest[1:]
	}
	children = append(children, rest...)
	return c.fragment(children, c.first, n.last)
}

// CanSplit reports whether the fragment has a break opportunity.
func (c *InlineContainer) CanSplit() bool {
	return len(c.children) > 1 || len(c.children) == 1 && c.children[0].CanSplit()
}

// Split breaks the fragment so that head fits in maxWidth. Breaks happen
// inside a splittable child or between children.
func (c *InlineContainer) Split(maxWidth int, force bool) (InlineBox, InlineBox) {
	x := 0
	for i, ch := range c.children {
		if x+ch.Width() <= maxWidth {
			x += ch.Width()
			continue
		}
		if ch.CanSplit() {
			h, t := ch.Split(maxWidth-x, force && i == 0)
			if h != nil && t != nil && h.Width() > 0 {
				head := append(append([]InlineBox{}, c.children[:i]...), h)
				tail := append([]InlineBox{t}, c.children[i+1:]...)
				return c.fragment(head, c.first, false), c.fragment(tail, false, c.last)
			}
		}
		switch {
		case i > 0:
			return c.splitBetween(i)
		case force && len(c.children) > 1:
			return c.splitBetween(1)
		}
		return nil, c
	}
	return c, nil
}

func (c *InlineContainer) splitBetween(i int) (InlineBox, InlineBox) {
	head := append([]InlineBox{}, c.children[:i]...)
	tail := append([]InlineBox{}, c.children[i:]...)
	return c.fragment(head, c.first, false), c.fragment(tail, false, c.last)
}

// LineBreakAfter reports whether the last child ends a hard line.
func (c *InlineContainer) LineBreakAfter() bool {
	return len(c.children) > 0 && c.children[len(c.children)-1].LineBreakAfter()
}

// String describes the box.
func (c *InlineContainer) String() string {
	return fmt.Sprintf("InlineContainer %s %s", c.kind, c.Range())
}
