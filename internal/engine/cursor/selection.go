package cursor

import (
	"fmt"

	"github.com/dshills/vex/internal/engine/content"
)

// Selection is the span between an anchor and a head offset. The head is
// where the caret is drawn; Anchor == Head is a plain caret.
type Selection struct {
	Anchor int
	Head   int
}

// Collapsed returns an empty selection at offset.
func Collapsed(offset int) Selection {
	return Selection{Anchor: offset, Head: offset}
}

// IsEmpty reports whether nothing is selected.
func (s Selection) IsEmpty() bool { return s.Anchor == s.Head }

// Start returns the lower of anchor and head.
func (s Selection) Start() int { return min(s.Anchor, s.Head) }

// End returns the higher of anchor and head.
func (s Selection) End() int { return max(s.Anchor, s.Head) }

// Len returns the number of selected offsets.
func (s Selection) Len() int { return s.End() - s.Start() }

// Range returns the selected offsets, or NullRange for an empty selection.
func (s Selection) Range() content.Range {
	if s.IsEmpty() {
		return content.NullRange
	}
	return content.Range{Start: s.Start(), End: s.End() - 1}
}

// IsBackward reports whether the head lies before the anchor.
func (s Selection) IsBackward() bool { return s.Head < s.Anchor }

// Extend moves the head to offset, keeping the anchor.
func (s Selection) Extend(offset int) Selection {
	return Selection{Anchor: s.Anchor, Head: offset}
}

// Contains reports whether offset is selected.
func (s Selection) Contains(offset int) bool {
	return offset >= s.Start() && offset < s.End()
}

// Clamp limits anchor and head to [0, maxOffset].
func (s Selection) Clamp(maxOffset int) Selection {
	return Selection{Anchor: clamp(s.Anchor, maxOffset), Head: clamp(s.Head, maxOffset)}
}

// String describes the selection.
func (s Selection) String() string {
	if s.IsEmpty() {
		return fmt.Sprintf("Caret(%d)", s.Head)
	}
	return fmt.Sprintf("Selection(%d..%d)", s.Anchor, s.Head)
}

func clamp(offset, maxOffset int) int {
	return min(max(offset, 0), max(maxOffset, 0))
}
