package engine

import (
	"errors"
	"fmt"

	"github.com/dshills/vex/internal/engine/history"
)

// Errors returned by engine operations.
var (
	// ErrNothingToUndo indicates the undo stack is empty.
	// It wraps history.ErrCannotUndo.
	ErrNothingToUndo = fmt.Errorf("nothing to undo: %w", history.ErrCannotUndo)

	// ErrNothingToRedo indicates the redo stack is empty.
	// It wraps history.ErrCannotApply.
	ErrNothingToRedo = fmt.Errorf("nothing to redo: %w", history.ErrCannotApply)

	// ErrNoElement indicates the caret is not inside an element.
	ErrNoElement = errors.New("no element at caret")

	// ErrReadOnly indicates an edit was attempted on a read-only engine.
	ErrReadOnly = errors.New("engine is read-only")
)
