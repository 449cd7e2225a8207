package layout

import (
	"fmt"

	"github.com/dshills/vex/internal/engine/content"
)

// Line is one visual row of inline boxes sharing a baseline.
type Line struct {
	Geometry
	boxes    []InlineBox
	baseline int
}

func newLine(boxes []InlineBox) *Line {
	l := &Line{boxes: boxes}
	descent := 0
	for _, b := range boxes {
		l.baseline = max(l.baseline, b.Baseline())
		descent = max(descent, b.Descent())
	}
	x := 0
	for _, b := range boxes {
		b.setPosition(l.baseline-b.Baseline(), x)
		x += b.Width()
	}
	l.setSize(x, l.baseline+descent)
	return l
}

// Inlines returns the boxes of the line.
func (l *Line) Inlines() []InlineBox { return l.boxes }

// Children returns the boxes of the line.
func (l *Line) Children() []Box { return inlineChildren(l.boxes) }

// Baseline returns the distance from the top to the baseline.
func (l *Line) Baseline() int { return l.baseline }

// Range returns the offsets covered by the content boxes of the line.
func (l *Line) Range() content.Range { return spanOf(l.boxes) }

// spanOf returns the union of the ranges of the content boxes in boxes.
func spanOf(boxes []InlineBox) content.Range {
	r := content.NullRange
	for _, b := range boxes {
		cb, ok := b.(ContentBox)
		if !ok {
			continue
		}
		br := cb.Range()
		switch {
		case br.IsNull():
		case r.IsNull():
			r = br
		default:
			r = r.Union(br)
		}
	}
	return r
}

// PositionForOffset returns the caret x of offset within the line.
func (l *Line) PositionForOffset(offset int) int {
	for _, b := range l.boxes {
		if cb, ok := b.(ContentBox); ok && cb.Range().ContainsOffset(offset) {
			return b.Left() + cb.PositionForOffset(offset)
		}
	}
	return 0
}

// OffsetForCoordinates returns the offset under x, or the nearest content
// offset at either end of the line.
func (l *Line) OffsetForCoordinates(x, y int) int {
	var last ContentBox
	for _, b := range l.boxes {
		cb, ok := b.(ContentBox)
		if !ok || cb.Range().IsNull() {
			continue
		}
		if x < b.Left()+b.Width() {
			return cb.OffsetForCoordinates(x-b.Left(), y-b.Top())
		}
		last = cb
	}
	if last != nil {
		return last.OffsetForCoordinates(x-last.Left(), y-last.Top())
	}
	return l.Range().Start
}

// String describes the box.
func (l *Line) String() string {
	return fmt.Sprintf("Line %s", l.Range())
}

// Paragraph is a block holding a run of inline boxes, arranged into lines
// for the width it is laid out at.
type Paragraph struct {
	Geometry
	inlines []InlineBox
	lines   []*Line
}

func newParagraph(inlines []InlineBox) *Paragraph {
	return &Paragraph{inlines: inlines}
}

// Lines returns the lines of the last layout.
func (p *Paragraph) Lines() []*Line { return p.lines }

// Children returns the lines.
func (p *Paragraph) Children() []Box {
	out := make([]Box, len(p.lines))
	for i, l := range p.lines {
		out[i] = l
	}
	return out
}

func (p *Paragraph) layout(width int) {
	p.lines = p.lines[:0]
	y, w := 0, 0
	for _, boxes := range ArrangeLines(p.inlines, width) {
		l := newLine(boxes)
		l.setPosition(y, 0)
		y += l.Height()
		w = max(w, l.Width())
		p.lines = append(p.lines, l)
	}
	p.setSize(max(w, width), y)
}

// Range returns the offsets covered by the paragraph's content.
func (p *Paragraph) Range() content.Range { return spanOf(p.inlines) }

// PositionForOffset returns the caret x of offset.
func (p *Paragraph) PositionForOffset(offset int) int {
	for _, l := range p.lines {
		if l.Range().ContainsOffset(offset) {
			return l.PositionForOffset(offset)
		}
	}
	return 0
}

// OffsetForCoordinates picks the line at y and resolves x within it.
func (p *Paragraph) OffsetForCoordinates(x, y int) int {
	if len(p.lines) == 0 {
		return p.Range().Start
	}
	for _, l := range p.lines {
		if y < l.Top()+l.Height() {
			return l.OffsetForCoordinates(x, y-l.Top())
		}
	}
	l := p.lines[len(p.lines)-1]
	return l.OffsetForCoordinates(x, y-l.Top())
}

// String describes the box.
func (p *Paragraph) String() string {
	return fmt.Sprintf("Paragraph %s", p.Range())
}
