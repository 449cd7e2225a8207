// Package content provides the character store that backs a structured
// document.
//
// The store is a rune gap buffer. Element boundaries are kept in the same
// character sequence as two reserved marker runes, OpenTag and CloseTag, so
// every element occupies exactly two content positions beyond its children.
//
// Offsets count runes. A Range is an inclusive [Start, End] pair of offsets.
//
// Positions created with CreatePosition are updated by the store on every
// edit: an insertion at or before a position shifts it right by the inserted
// length, and a deletion before it shifts it left. A position inside a
// deleted range collapses to the start of that range.
//
// Basic usage:
//
//	s := content.NewStore()
//	start, end, _ := s.InsertTagPair(0)
//	_ = s.InsertText(end, "Hello")
//	s.PlainText(content.NewRange(start, s.Len()-1)) // "Hello"
//
// Thread Safety:
//
// All Store methods are safe for concurrent use. Positions read their offset
// under the owning store's read lock.
package content
