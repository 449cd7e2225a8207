package content

import "errors"

// Errors returned by store operations.
var (
	// ErrInvalidOffset indicates an offset outside [0, Len] or a deletion
	// that would separate a tag marker from its partner.
	ErrInvalidOffset = errors.New("invalid offset")

	// ErrInvalidRange indicates a range whose start is after its end or that
	// extends past the end of the store.
	ErrInvalidRange = errors.New("invalid range")

	// ErrReservedRune indicates text containing a tag marker rune.
	ErrReservedRune = errors.New("text contains a reserved tag marker")
)
