package history

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// Common errors for history operations.
var (
	ErrCannotUndo    = errors.New("cannot undo")
	ErrCannotApply   = errors.New("cannot apply edit")
	ErrNoTransaction = errors.New("no transaction in progress")
)

// DefaultMaxEntries is the undo depth used when none is given.
const DefaultMaxEntries = 1000

// undoEntry wraps an edit with metadata.
type undoEntry struct {
	edit      Edit
	timestamp time.Time
}

// OperationInfo describes a recorded edit.
type OperationInfo struct {
	Description string
	Timestamp   time.Time
}

// Stack manages undo/redo state for a document.
type Stack struct {
	mu sync.Mutex

	undoStack []*undoEntry
	redoStack []*undoEntry

	// frames holds the edits of each open transaction, outermost first.
	frames [][]Edit

	// sealed stops the next Apply from combining with the top entry.
	sealed bool

	maxEntries int
}

// NewStack creates an edit stack keeping at most maxEntries undo entries.
func NewStack(maxEntries int) *Stack {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Stack{
		maxEntries: maxEntries,
	}
}

// Apply performs e by calling its Redo and records it. Outside a
// transaction the redo buffer is discarded.
func (s *Stack) Apply(e Edit) error {
	if !e.CanRedo() {
		return fmt.Errorf("%w: %s", ErrCannotApply, describe(e))
	}
	if err := e.Redo(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if n := len(s.frames); n > 0 {
		frame := s.frames[n-1]
		if len(frame) > 0 && frame[len(frame)-1].Combine(e) {
			return nil
		}
		s.frames[n-1] = append(frame, e)
		return nil
	}

	if !s.sealed && len(s.undoStack) > 0 && s.undoStack[len(s.undoStack)-1].edit.Combine(e) {
		s.redoStack = nil
		return nil
	}
	s.pushLocked(e)
	return nil
}

// pushLocked adds an edit to the undo stack and clears the redo stack.
func (s *Stack) pushLocked(e Edit) {
	s.undoStack = append(s.undoStack, &undoEntry{
		edit:      e,
		timestamp: time.Now(),
	})
	s.redoStack = nil
	s.sealed = false

	if len(s.undoStack) > s.maxEntries {
		excess := len(s.undoStack) - s.maxEntries
		s.undoStack = s.undoStack[excess:]
	}
}

// Seal ends coalescing: the next applied edit starts a new undo entry.
func (s *Stack) Seal() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sealed = true
}

// Undo undoes the most recent entry and moves it to the redo buffer.
// Undo is not available inside a transaction.
// The lock is released while the edit runs.
func (s *Stack) Undo() error {
	s.mu.Lock()
	if len(s.frames) > 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: transaction in progress", ErrCannotUndo)
	}
	if len(s.undoStack) == 0 {
		s.mu.Unlock()
		return ErrCannotUndo
	}
	entry := s.undoStack[len(s.undoStack)-1]
	if !entry.edit.CanUndo() {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrCannotUndo, describe(entry.edit))
	}
	s.undoStack = s.undoStack[:len(s.undoStack)-1]
	s.mu.Unlock()

	if err := entry.edit.Undo(); err != nil {
		s.mu.Lock()
		s.undoStack = append(s.undoStack, entry)
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	s.redoStack = append(s.redoStack, entry)
	s.sealed = true
	s.mu.Unlock()
	return nil
}

// Redo reapplies the most recently undone entry.
func (s *Stack) Redo() error {
	s.mu.Lock()
	if len(s.frames) > 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: transaction in progress", ErrCannotApply)
	}
	if len(s.redoStack) == 0 {
		s.mu.Unlock()
		return ErrCannotApply
	}
	entry := s.redoStack[len(s.redoStack)-1]
	if !entry.edit.CanRedo() {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrCannotApply, describe(entry.edit))
	}
	s.redoStack = s.redoStack[:len(s.redoStack)-1]
	s.mu.Unlock()

	if err := entry.edit.Redo(); err != nil {
		s.mu.Lock()
		s.redoStack = append(s.redoStack, entry)
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	s.undoStack = append(s.undoStack, entry)
	s.sealed = true
	s.mu.Unlock()
	return nil
}

// CanUndo returns true if undo is available.
func (s *Stack) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.frames) == 0 && len(s.undoStack) > 0
}

// CanRedo returns true if redo is available.
func (s *Stack) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.frames) == 0 && len(s.redoStack) > 0
}

// UndoCount returns the number of undo entries.
func (s *Stack) UndoCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.undoStack)
}

// RedoCount returns the number of redo entries.
func (s *Stack) RedoCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.redoStack)
}

// BeginWork opens a transaction. Transactions nest.
func (s *Stack) BeginWork() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames = append(s.frames, nil)
}

// CommitWork closes the innermost transaction. Its edits join the
// enclosing transaction, or, for the outermost one, become a single undo
// entry.
func (s *Stack) CommitWork() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.frames)
	if n == 0 {
		return ErrNoTransaction
	}
	frame := s.frames[n-1]
	s.frames = s.frames[:n-1]

	if n > 1 {
		s.frames[n-2] = append(s.frames[n-2], frame...)
		return nil
	}
	switch len(frame) {
	case 0:
	case 1:
		s.pushLocked(frame[0])
	default:
		s.pushLocked(NewCompoundEdit("", frame...))
	}
	return nil
}

// RollbackWork closes the innermost transaction and undoes its edits,
// newest first. The edits are discarded.
func (s *Stack) RollbackWork() error {
	s.mu.Lock()
	n := len(s.frames)
	if n == 0 {
		s.mu.Unlock()
		return ErrNoTransaction
	}
	frame := s.frames[n-1]
	s.frames = s.frames[:n-1]
	s.mu.Unlock()

	var errs []error
	for i := len(frame) - 1; i >= 0; i-- {
		if err := frame[i].Undo(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// InTransaction reports whether a transaction is open.
func (s *Stack) InTransaction() bool {
	return s.Depth() > 0
}

// Depth returns the number of open transactions.
func (s *Stack) Depth() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.frames)
}

// Clear removes all undo/redo history. Open transactions are abandoned
// without undoing their edits.
func (s *Stack) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.undoStack = nil
	s.redoStack = nil
	s.frames = nil
	s.sealed = false
}

// UndoInfo returns info about available undo entries, oldest first.
func (s *Stack) UndoInfo() []OperationInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return infoOf(s.undoStack)
}

// RedoInfo returns info about available redo entries, oldest first.
func (s *Stack) RedoInfo() []OperationInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return infoOf(s.redoStack)
}

func infoOf(entries []*undoEntry) []OperationInfo {
	result := make([]OperationInfo, len(entries))
	for i, entry := range entries {
		result[i] = OperationInfo{
			Description: describe(entry.edit),
			Timestamp:   entry.timestamp,
		}
	}
	return result
}

// SetMaxEntries changes the maximum number of undo entries.
// If the current stack is larger, oldest entries are removed.
func (s *Stack) SetMaxEntries(max int) {
	if max <= 0 {
		max = DefaultMaxEntries
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.maxEntries = max
	if len(s.undoStack) > max {
		excess := len(s.undoStack) - max
		s.undoStack = s.undoStack[excess:]
	}
}

// MaxEntries returns the maximum number of undo entries.
func (s *Stack) MaxEntries() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.maxEntries
}
