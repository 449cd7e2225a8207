package layout

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/dshills/vex/internal/engine/content"
	"github.com/dshills/vex/internal/metrics"
)

// placeholderWidth is the width of the caret slot for an empty position.
const placeholderWidth = 1

// textStyle is what text boxes need from the resolved styles.
type textStyle struct {
	font  metrics.Font
	color colorful.Color
}

// textRun is the shared part of TextContent and StaticText.
type textRun struct {
	Geometry
	text       string
	style      textStyle
	g          metrics.Graphics
	fm         metrics.FontMetrics
	breakAfter bool
}

func newTextRun(text string, st textStyle, g metrics.Graphics, breakAfter bool) textRun {
	r := textRun{text: text, style: st, g: g, fm: g.Metrics(st.font), breakAfter: breakAfter}
	r.setSize(measure(g, st.font, text), r.fm.Height())
	return r
}

// Text returns the characters of the box.
func (r *textRun) Text() string { return r.text }

// Font returns the font the text is drawn with.
func (r *textRun) Font() metrics.Font { return r.style.font }

// Color returns the text color.
func (r *textRun) Color() colorful.Color { return r.style.color }

// Baseline returns the distance from the top to the baseline.
func (r *textRun) Baseline() int { return r.fm.Ascent }

// Descent returns the distance from the baseline to the bottom.
func (r *textRun) Descent() int { return r.fm.Descent + r.fm.Leading }

// Children returns nil.
func (*textRun) Children() []Box { return nil }

// LineBreakAfter reports whether the text ends a hard line.
func (r *textRun) LineBreakAfter() bool { return r.breakAfter }

func (r *textRun) canSplit() bool {
	return len(lineSegments(r.text)) > 1
}

func (r *textRun) breakAt(maxWidth int, force bool) int {
	return breakText(r.text, maxWidth, force, func(s string) int {
		return measure(r.g, r.style.font, s)
	})
}

// TextContent renders character data of the document.
type TextContent struct {
	textRun
	start int
	pre   bool
}

func newTextContent(start int, text string, st textStyle, g metrics.Graphics, pre, breakAfter bool) *TextContent {
	return &TextContent{textRun: newTextRun(text, st, g, breakAfter), start: start, pre: pre}
}

// Range returns the offsets of the characters.
func (t *TextContent) Range() content.Range {
	return content.Range{Start: t.start, End: t.start + len([]rune(t.text)) - 1}
}

// PositionForOffset returns the width of the text before offset.
func (t *TextContent) PositionForOffset(offset int) int {
	n := min(max(offset-t.start, 0), len([]rune(t.text)))
	head, _ := splitRunes(t.text, n)
	return measure(t.g, t.style.font, head)
}

// OffsetForCoordinates returns the grapheme boundary nearest to x.
func (t *TextContent) OffsetForCoordinates(x, _ int) int {
	best, bestDist := t.start, -1
	for _, n := range graphemeOffsets(t.text) {
		head, _ := splitRunes(t.text, n)
		d := abs(measure(t.g, t.style.font, head) - x)
		if bestDist < 0 || d < bestDist {
			best, bestDist = t.start+n, d
		}
	}
	return best
}

// IsCaretPosition reports whether offset is a grapheme boundary.
func (t *TextContent) IsCaretPosition(offset int) bool {
	for _, n := range graphemeOffsets(t.text) {
		if t.start+n == offset {
			return true
		}
	}
	return false
}

// CanJoin reports whether next is text continuing this box in the same style.
func (t *TextContent) CanJoin(next InlineBox) bool {
	n, ok := next.(*TextContent)
	return ok && !t.breakAfter && n.style == t.style && n.pre == t.pre && n.start == t.Range().End+1
}

// Join returns the concatenation of t and next.
func (t *TextContent) Join(next InlineBox) InlineBox {
	n := next.(*TextContent)
	return newTextContent(t.start, t.text+n.text, t.style, t.g, t.pre, n.breakAfter)
}

// CanSplit reports whether the text has an internal break opportunity.
func (t *TextContent) CanSplit() bool {
	return !t.pre && t.canSplit()
}

// Split breaks the text at the last opportunity that fits maxWidth.
// The whole box is returned as head when it fits.
func (t *TextContent) Split(maxWidth int, force bool) (InlineBox, InlineBox) {
	if t.Width() <= maxWidth {
		return t, nil
	}
	if !t.CanSplit() {
		return nil, t
	}
	k := t.breakAt(maxWidth, force)
	if k == 0 {
		return nil, t
	}
	head, tail := splitRunes(t.text, k)
	if tail == "" {
		return t, nil
	}
	return newTextContent(t.start, head, t.style, t.g, t.pre, false),
		newTextContent(t.start+k, tail, t.style, t.g, t.pre, t.breakAfter)
}

// String describes the box.
func (t *TextContent) String() string {
	return fmt.Sprintf("TextContent %s %q", t.Range(), t.text)
}

// StaticText is generated text that is not part of the document.
type StaticText struct {
	textRun
}

// NewStaticText creates a static text box.
func NewStaticText(text string, font metrics.Font, g metrics.Graphics) *StaticText {
	return newStaticText(text, textStyle{font: font}, g)
}

func newStaticText(text string, st textStyle, g metrics.Graphics) *StaticText {
	return &StaticText{newTextRun(text, st, g, false)}
}

// CanJoin reports whether next is static text in the same style.
func (s *StaticText) CanJoin(next InlineBox) bool {
	n, ok := next.(*StaticText)
	return ok && !s.breakAfter && n.style == s.style
}

// Join returns the concatenation of s and next.
func (s *StaticText) Join(next InlineBox) InlineBox {
	return newStaticText(s.text+next.(*StaticText).text, s.style, s.g)
}

// CanSplit reports whether the text has an internal break opportunity.
func (s *StaticText) CanSplit() bool { return s.canSplit() }

// Split breaks the text at the last opportunity that fits maxWidth.
// The whole box is returned as head when it fits.
func (s *StaticText) Split(maxWidth int, force bool) (InlineBox, InlineBox) {
	if s.Width() <= maxWidth {
		return s, nil
	}
	k := s.breakAt(maxWidth, force)
	if k == 0 {
		return nil, s
	}
	head, tail := splitRunes(s.text, k)
	if tail == "" {
		return s, nil
	}
	return newStaticText(head, s.style, s.g), newStaticText(tail, s.style, s.g)
}

// String describes the box.
func (s *StaticText) String() string {
	return fmt.Sprintf("StaticText %q", s.text)
}

// Placeholder marks a caret position that has no character, such as the
// inside of an empty element or the end of an element's content.
type Placeholder struct {
	Geometry
	offset int
	fm     metrics.FontMetrics
}

func newPlaceholder(offset int, fm metrics.FontMetrics) *Placeholder {
	p := &Placeholder{offset: offset, fm: fm}
	p.setSize(placeholderWidth, fm.Height())
	return p
}

// Range returns the single offset of the placeholder.
func (p *Placeholder) Range() content.Range {
	return content.Range{Start: p.offset, End: p.offset}
}

// PositionForOffset returns 0.
func (*Placeholder) PositionForOffset(int) int { return 0 }

// OffsetForCoordinates returns the placeholder offset.
func (p *Placeholder) OffsetForCoordinates(int, int) int { return p.offset }

// Baseline returns the font ascent.
func (p *Placeholder) Baseline() int { return p.fm.Ascent }

// Descent returns the font descent plus leading.
func (p *Placeholder) Descent() int { return p.fm.Descent + p.fm.Leading }

// Children returns nil.
func (*Placeholder) Children() []Box { return nil }

// CanJoin returns false; placeholders never merge.
func (*Placeholder) CanJoin(InlineBox) bool { return false }

// Join returns p.
func (p *Placeholder) Join(InlineBox) InlineBox { return p }

// CanSplit returns false.
func (*Placeholder) CanSplit() bool { return false }

// Split returns p whole as head when it fits and as tail otherwise.
func (p *Placeholder) Split(maxWidth int, _ bool) (InlineBox, InlineBox) {
	if p.Width() <= maxWidth {
		return p, nil
	}
	return nil, p
}

// LineBreakAfter returns false.
func (*Placeholder) LineBreakAfter() bool { return false }

// String describes the box.
func (p *Placeholder) String() string { return fmt.Sprintf("Placeholder [%d]", p.offset) }

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
