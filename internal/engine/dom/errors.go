package dom

import (
	"errors"

	"github.com/dshills/vex/internal/engine/content"
)

// Errors returned by document operations.
var (
	// ErrInvalidOffset indicates an offset that is not a legal insertion
	// point for the requested node kind.
	ErrInvalidOffset = content.ErrInvalidOffset

	// ErrInvalidRange indicates a deletion range that only partially covers
	// a node or touches the root element.
	ErrInvalidRange = content.ErrInvalidRange

	// ErrValidation indicates that the validator rejected a structural
	// change. The document is left unchanged.
	ErrValidation = errors.New("document validation failed")

	// ErrInvalidName indicates an empty or malformed element name or
	// processing instruction target.
	ErrInvalidName = errors.New("invalid name")

	// ErrDetached indicates an operation on a node that was removed from
	// its document.
	ErrDetached = errors.New("node is not attached to a document")

	// ErrReentrantMutation indicates a mutation attempted from inside a
	// document listener.
	ErrReentrantMutation = errors.New("document mutated during change notification")
)
