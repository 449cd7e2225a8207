package history

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingEdit appends to a shared log whenever it runs.
type recordingEdit struct {
	name    string
	log     *[]string
	done    bool
	failOn  string
	absorbs bool
	merged  []string
}

func newEdit(name string, log *[]string) *recordingEdit {
	return &recordingEdit{name: name, log: log}
}

func (e *recordingEdit) Undo() error {
	if e.failOn == "undo" {
		return errors.New("undo failed")
	}
	*e.log = append(*e.log, "undo "+e.name)
	e.done = false
	return nil
}

func (e *recordingEdit) Redo() error {
	if e.failOn == "redo" {
		return errors.New("redo failed")
	}
	*e.log = append(*e.log, "redo "+e.name)
	e.done = true
	return nil
}

func (e *recordingEdit) CanUndo() bool { return e.done }
func (e *recordingEdit) CanRedo() bool { return !e.done }

func (e *recordingEdit) Combine(next Edit) bool {
	n, ok := next.(*recordingEdit)
	if !e.absorbs || !ok {
		return false
	}
	e.merged = append(e.merged, n.name)
	return true
}

func (e *recordingEdit) Description() string { return e.name }

func TestUndoInReverseOrder(t *testing.T) {
	var log []string
	s := NewStack(0)
	for i := 1; i <= 3; i++ {
		require.NoError(t, s.Apply(newEdit(fmt.Sprint(i), &log)))
	}
	log = nil

	for range 3 {
		require.NoError(t, s.Undo())
	}
	assert.Equal(t, []string{"undo 3", "undo 2", "undo 1"}, log)
	assert.ErrorIs(t, s.Undo(), ErrCannotUndo)
}

func TestApplyDiscardsRedoBuffer(t *testing.T) {
	var log []string
	s := NewStack(0)
	for i := 1; i <= 3; i++ {
		require.NoError(t, s.Apply(newEdit(fmt.Sprint(i), &log)))
	}
	for range 3 {
		require.NoError(t, s.Undo())
	}
	assert.Equal(t, 3, s.RedoCount())

	require.NoError(t, s.Apply(newEdit("4", &log)))
	assert.Equal(t, 0, s.RedoCount())
	assert.ErrorIs(t, s.Redo(), ErrCannotApply)
}

func TestRedo(t *testing.T) {
	var log []string
	s := NewStack(0)
	require.NoError(t, s.Apply(newEdit("a", &log)))
	require.NoError(t, s.Apply(newEdit("b", &log)))
	require.NoError(t, s.Undo())
	require.NoError(t, s.Undo())
	log = nil

	require.NoError(t, s.Redo())
	require.NoError(t, s.Redo())
	assert.Equal(t, []string{"redo a", "redo b"}, log)
	assert.False(t, s.CanRedo())
	assert.True(t, s.CanUndo())
}

func TestApplyCombines(t *testing.T) {
	var log []string
	s := NewStack(0)
	first := newEdit("a", &log)
	first.absorbs = true
	require.NoError(t, s.Apply(first))
	require.NoError(t, s.Apply(newEdit("b", &log)))
	require.NoError(t, s.Apply(newEdit("c", &log)))

	assert.Equal(t, 1, s.UndoCount())
	assert.Equal(t, []string{"b", "c"}, first.merged)
}

func TestSealStopsCombining(t *testing.T) {
	var log []string
	s := NewStack(0)
	first := newEdit("a", &log)
	first.absorbs = true
	require.NoError(t, s.Apply(first))
	s.Seal()
	require.NoError(t, s.Apply(newEdit("b", &log)))
	assert.Equal(t, 2, s.UndoCount())
}

func TestApplyFailureRecordsNothing(t *testing.T) {
	var log []string
	s := NewStack(0)
	e := newEdit("a", &log)
	e.failOn = "redo"
	assert.Error(t, s.Apply(e))
	assert.Equal(t, 0, s.UndoCount())
}

func TestUndoFailureKeepsEntry(t *testing.T) {
	var log []string
	s := NewStack(0)
	e := newEdit("a", &log)
	require.NoError(t, s.Apply(e))
	e.failOn = "undo"
	assert.Error(t, s.Undo())
	assert.Equal(t, 1, s.UndoCount())
	assert.Equal(t, 0, s.RedoCount())
}

func TestMaxEntries(t *testing.T) {
	var log []string
	s := NewStack(2)
	for i := range 5 {
		require.NoError(t, s.Apply(newEdit(fmt.Sprint(i), &log)))
	}
	assert.Equal(t, 2, s.UndoCount())

	info := s.UndoInfo()
	require.Len(t, info, 2)
	assert.Equal(t, "3", info[0].Description)
	assert.Equal(t, "4", info[1].Description)

	s.SetMaxEntries(1)
	assert.Equal(t, 1, s.UndoCount())
	assert.Equal(t, 1, s.MaxEntries())
}

func TestCommitGroupsEdits(t *testing.T) {
	var log []string
	s := NewStack(0)
	s.BeginWork()
	require.NoError(t, s.Apply(newEdit("a", &log)))
	require.NoError(t, s.Apply(newEdit("b", &log)))
	assert.Equal(t, 0, s.UndoCount())
	require.NoError(t, s.CommitWork())

	assert.Equal(t, 1, s.UndoCount())
	log = nil
	require.NoError(t, s.Undo())
	assert.Equal(t, []string{"undo b", "undo a"}, log)
}

func TestCommitSingleEditIsNotWrapped(t *testing.T) {
	var log []string
	s := NewStack(0)
	s.BeginWork()
	require.NoError(t, s.Apply(newEdit("a", &log)))
	require.NoError(t, s.CommitWork())
	assert.Equal(t, "a", s.UndoInfo()[0].Description)
}

func TestCommitWithoutBegin(t *testing.T) {
	s := NewStack(0)
	assert.ErrorIs(t, s.CommitWork(), ErrNoTransaction)
	assert.ErrorIs(t, s.RollbackWork(), ErrNoTransaction)
}

func TestRollbackUndoesInReverse(t *testing.T) {
	var log []string
	s := NewStack(0)
	s.BeginWork()
	require.NoError(t, s.Apply(newEdit("a", &log)))
	require.NoError(t, s.Apply(newEdit("b", &log)))
	log = nil
	require.NoError(t, s.RollbackWork())

	assert.Equal(t, []string{"undo b", "undo a"}, log)
	assert.Equal(t, 0, s.UndoCount())
	assert.Equal(t, 0, s.RedoCount())
}

func TestNestedRollbackKeepsOuterEdits(t *testing.T) {
	var log []string
	s := NewStack(0)
	outer := newEdit("outer", &log)
	inner := newEdit("inner", &log)

	s.BeginWork()
	require.NoError(t, s.Apply(outer))
	s.BeginWork()
	require.NoError(t, s.Apply(inner))
	assert.Equal(t, 2, s.Depth())
	require.NoError(t, s.RollbackWork())
	require.NoError(t, s.CommitWork())

	assert.False(t, inner.done)
	assert.True(t, outer.done)
	assert.Equal(t, 1, s.UndoCount())
	assert.False(t, s.InTransaction())
}

func TestNestedCommitMergesIntoParent(t *testing.T) {
	var log []string
	s := NewStack(0)
	s.BeginWork()
	require.NoError(t, s.Apply(newEdit("a", &log)))
	s.BeginWork()
	require.NoError(t, s.Apply(newEdit("b", &log)))
	require.NoError(t, s.CommitWork())
	assert.Equal(t, 0, s.UndoCount())

	log = nil
	require.NoError(t, s.RollbackWork())
	assert.Equal(t, []string{"undo b", "undo a"}, log)
}

func TestUndoBlockedInTransaction(t *testing.T) {
	var log []string
	s := NewStack(0)
	require.NoError(t, s.Apply(newEdit("a", &log)))
	s.BeginWork()
	assert.ErrorIs(t, s.Undo(), ErrCannotUndo)
	assert.False(t, s.CanUndo())
	require.NoError(t, s.CommitWork())
	assert.True(t, s.CanUndo())
}

func TestTransaction(t *testing.T) {
	var log []string
	s := NewStack(0)

	err := s.Transaction(func() error {
		return s.Apply(newEdit("a", &log))
	})
	require.NoError(t, err)
	assert.Equal(t, 1, s.UndoCount())

	boom := errors.New("boom")
	log = nil
	err = s.Transaction(func() error {
		require.NoError(t, s.Apply(newEdit("b", &log)))
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"redo b", "undo b"}, log)
	assert.Equal(t, 1, s.UndoCount())
}

func TestApplyAll(t *testing.T) {
	var log []string
	s := NewStack(0)
	require.NoError(t, s.ApplyAll(newEdit("a", &log), newEdit("b", &log), newEdit("c", &log)))
	assert.Equal(t, 1, s.UndoCount())
	assert.Equal(t, "3 edits", s.UndoInfo()[0].Description)
}

func TestCompoundEditRestoresOnFailure(t *testing.T) {
	var log []string
	a, b := newEdit("a", &log), newEdit("b", &log)
	require.NoError(t, a.Redo())
	require.NoError(t, b.Redo())
	c := NewCompoundEdit("pair", a, b)
	a.failOn = "undo"
	log = nil

	assert.Error(t, c.Undo())
	assert.Equal(t, []string{"undo b", "redo b"}, log)
	assert.True(t, b.done)
}

func TestClear(t *testing.T) {
	var log []string
	s := NewStack(0)
	require.NoError(t, s.Apply(newEdit("a", &log)))
	require.NoError(t, s.Undo())
	s.BeginWork()
	s.Clear()
	assert.Equal(t, 0, s.UndoCount())
	assert.Equal(t, 0, s.RedoCount())
	assert.False(t, s.InTransaction())
}
