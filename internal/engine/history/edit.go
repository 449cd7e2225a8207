package history

import (
	"errors"
	"fmt"
)

// Edit is an undoable change.
type Edit interface {
	// Undo reverses the edit.
	Undo() error

	// Redo performs the edit. Stack.Apply calls Redo for the first
	// application as well.
	Redo() error

	CanUndo() bool
	CanRedo() bool

	// Combine tries to absorb next, an edit applied immediately after this
	// one, and reports whether it did. An absorbed edit is not recorded.
	Combine(next Edit) bool
}

// Describer is implemented by edits that can describe themselves.
type Describer interface {
	Description() string
}

// describe returns a human-readable description of e.
func describe(e Edit) string {
	if d, ok := e.(Describer); ok {
		return d.Description()
	}
	return fmt.Sprintf("%T", e)
}

// CompoundEdit groups edits into a single undo unit.
type CompoundEdit struct {
	Name  string
	Edits []Edit
}

// NewCompoundEdit creates a compound edit over edits, which must already
// have been applied.
func NewCompoundEdit(name string, edits ...Edit) *CompoundEdit {
	return &CompoundEdit{Name: name, Edits: edits}
}

// Undo undoes the edits in reverse order. If one fails, the edits undone
// so far are redone.
func (c *CompoundEdit) Undo() error {
	for i := len(c.Edits) - 1; i >= 0; i-- {
		if err := c.Edits[i].Undo(); err != nil {
			for j := i + 1; j < len(c.Edits); j++ {
				err = errors.Join(err, c.Edits[j].Redo())
			}
			return fmt.Errorf("undo %s: %w", c.Description(), err)
		}
	}
	return nil
}

// Redo redoes the edits in order. If one fails, the edits redone so far
// are undone.
func (c *CompoundEdit) Redo() error {
	for i, e := range c.Edits {
		if err := e.Redo(); err != nil {
			for j := i - 1; j >= 0; j-- {
				err = errors.Join(err, c.Edits[j].Undo())
			}
			return fmt.Errorf("redo %s: %w", c.Description(), err)
		}
	}
	return nil
}

// CanUndo reports whether every edit can be undone.
func (c *CompoundEdit) CanUndo() bool {
	for _, e := range c.Edits {
		if !e.CanUndo() {
			return false
		}
	}
	return len(c.Edits) > 0
}

// CanRedo reports whether every edit can be redone.
func (c *CompoundEdit) CanRedo() bool {
	for _, e := range c.Edits {
		if !e.CanRedo() {
			return false
		}
	}
	return len(c.Edits) > 0
}

// Combine always returns false; compound edits are closed units.
func (*CompoundEdit) Combine(Edit) bool { return false }

// Description returns the group name or a summary.
func (c *CompoundEdit) Description() string {
	if c.Name != "" {
		return c.Name
	}
	return fmt.Sprintf("%d edits", len(c.Edits))
}

// Len returns the number of grouped edits.
func (c *CompoundEdit) Len() int { return len(c.Edits) }
