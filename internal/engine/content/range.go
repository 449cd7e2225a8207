package content

import (
	"fmt"
	"math"
)

// Range is an immutable inclusive range of content offsets: [Start, End].
type Range struct {
	Start int
	End   int
}

var (
	// NullRange is the range that covers nothing.
	NullRange = Range{Start: -1, End: -1}

	// AllRange covers every possible offset.
	AllRange = Range{Start: 0, End: math.MaxInt}
)

// NewRange creates a range from start to end inclusive.
// It panics if start > end.
func NewRange(start, end int) Range {
	if start > end {
		panic(fmt.Sprintf("content: range start %d after end %d", start, end))
	}
	return Range{Start: start, End: end}
}

// String returns a human-readable representation of the range.
func (r Range) String() string {
	return fmt.Sprintf("[%d, %d]", r.Start, r.End)
}

// Len returns the number of offsets in the range.
func (r Range) Len() int {
	return r.End - r.Start + 1
}

// IsNull reports whether r is NullRange.
func (r Range) IsNull() bool {
	return r == NullRange
}

// ContainsOffset reports whether offset lies within the range.
func (r Range) ContainsOffset(offset int) bool {
	return offset >= r.Start && offset <= r.End
}

// Contains reports whether other lies entirely within r.
func (r Range) Contains(other Range) bool {
	return other.Start >= r.Start && other.End <= r.End
}

// Intersects reports whether the two ranges share at least one offset.
func (r Range) Intersects(other Range) bool {
	return r.Start <= other.End && other.Start <= r.End
}

// Intersection returns the offsets shared by both ranges,
// or NullRange if they do not intersect.
func (r Range) Intersection(other Range) Range {
	if !r.Intersects(other) {
		return NullRange
	}
	return Range{Start: max(r.Start, other.Start), End: min(r.End, other.End)}
}

// Union returns the smallest range containing both ranges.
func (r Range) Union(other Range) Range {
	return Range{Start: min(r.Start, other.Start), End: max(r.End, other.End)}
}

// MoveBy returns the range shifted by delta.
func (r Range) MoveBy(delta int) Range {
	return Range{Start: r.Start + delta, End: r.End + delta}
}

// ResizeBy returns the range with its start and end adjusted independently.
func (r Range) ResizeBy(deltaStart, deltaEnd int) Range {
	return NewRange(r.Start+deltaStart, r.End+deltaEnd)
}

// Limit returns the range clamped to bounds.
func (r Range) Limit(bounds Range) Range {
	return Range{
		Start: min(max(r.Start, bounds.Start), bounds.End),
		End:   max(min(r.End, bounds.End), bounds.Start),
	}
}
