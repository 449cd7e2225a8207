package cursor

import "github.com/dshills/vex/internal/engine/content"

// AfterInsert returns offset shifted across an insertion of r. Offsets at
// or after the insertion point move past the inserted content.
func AfterInsert(offset int, r content.Range) int {
	if r.IsNull() || offset < r.Start {
		return offset
	}
	return offset + r.Len()
}

// AfterDelete returns offset shifted across a deletion of r. Offsets inside
// the deleted range collapse to its start.
func AfterDelete(offset int, r content.Range) int {
	switch {
	case r.IsNull() || offset <= r.Start:
		return offset
	case offset <= r.End:
		return r.Start
	default:
		return offset - r.Len()
	}
}

// TransformInsert shifts both ends of s across an insertion of r. An empty
// selection at the insertion point follows the inserted content; the anchor
// of a non-empty selection stays put.
func TransformInsert(s Selection, r content.Range) Selection {
	if s.IsEmpty() {
		return Collapsed(AfterInsert(s.Head, r))
	}
	out := Selection{Anchor: AfterInsert(s.Anchor, r), Head: AfterInsert(s.Head, r)}
	if s.Anchor == r.Start {
		out.Anchor = s.Anchor
	}
	return out
}

// TransformDelete shifts both ends of s across a deletion of r.
func TransformDelete(s Selection, r content.Range) Selection {
	return Selection{Anchor: AfterDelete(s.Anchor, r), Head: AfterDelete(s.Head, r)}
}
