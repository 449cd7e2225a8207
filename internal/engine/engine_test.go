package engine

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/vex/internal/engine/dom"
	"github.com/dshills/vex/internal/engine/history"
	"github.com/dshills/vex/internal/logging"
	"github.com/dshills/vex/internal/style"
)

const testSheet = `{"elements": {"doc": {"display": "block"}, "para": {"display": "block"}}}`

var para = dom.QName{Local: "para"}

func sheet(t *testing.T, src string) *style.Sheet {
	t.Helper()
	s, err := style.ParseSheet([]byte(src))
	require.NoError(t, err)
	return s
}

func newEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	e := New(append([]Option{WithWidth(10), WithStyles(sheet(t, testSheet))}, opts...)...)
	t.Cleanup(e.Close)
	return e
}

// lorem returns an engine on <doc><para>Lorem ipsum dolor</para></doc>
// with the caret at the end of the paragraph (offset 20). Ten cells wide,
// the paragraph takes the rows [3,8], [9,14] and [15,20].
func lorem(t *testing.T) *Engine {
	t.Helper()
	e := newEngine(t)
	_, err := e.InsertElement(para)
	require.NoError(t, err)
	require.NoError(t, e.InsertText("Lorem ipsum dolor"))
	require.Equal(t, 20, e.Offset())
	return e
}

// ============================================================================
// Basic Operations
// ============================================================================

func TestNew(t *testing.T) {
	e := newEngine(t)
	assert.Equal(t, "", e.Text())
	assert.Equal(t, 4, e.Len())
	assert.Equal(t, 2, e.Offset())
	assert.Equal(t, 10, e.Width())
	assert.False(t, e.CanUndo())
	assert.Equal(t, "doc", e.Document().Root().Name().Local)
}

func TestNewWithRoot(t *testing.T) {
	e := New(WithRoot(dom.QName{Local: "book"}))
	defer e.Close()
	assert.Equal(t, "book", e.Document().Root().Name().Local)
	assert.Equal(t, DefaultWidth, e.Width())
}

func TestNewFromReaderAndWriteXML(t *testing.T) {
	src := `<doc><para>Hi <b>there</b></para><!--note--></doc>`
	e, err := NewFromReader(strings.NewReader(src))
	require.NoError(t, err)
	defer e.Close()
	assert.Equal(t, "Hi therenote", e.Text())

	var buf bytes.Buffer
	require.NoError(t, e.WriteXML(&buf))
	assert.Equal(t, src, buf.String())

	_, err = NewFromReader(strings.NewReader(`<a><b></a>`))
	assert.Error(t, err)
}

// ============================================================================
// Write Operations
// ============================================================================

func TestInsertElementMovesCaretInside(t *testing.T) {
	e := newEngine(t)
	el, err := e.InsertElement(para)
	require.NoError(t, err)
	assert.Equal(t, "para", el.Name().Local)
	assert.Equal(t, el.EndOffset(), e.Offset())
}

func TestInsertText(t *testing.T) {
	e := lorem(t)
	assert.Equal(t, "Lorem ipsum dolor", e.Text())
	assert.Equal(t, 2, e.UndoCount())
	assert.Equal(t, uint64(2), e.Revision())
}

func TestTypingUndoesAsOneUnit(t *testing.T) {
	e := newEngine(t)
	_, err := e.InsertElement(para)
	require.NoError(t, err)

	require.NoError(t, e.InsertText("a"))
	require.NoError(t, e.InsertText("b"))
	assert.Equal(t, 2, e.UndoCount())

	e.Left()
	require.NoError(t, e.InsertText("c"))
	assert.Equal(t, "acb", e.Text())
	assert.Equal(t, 3, e.UndoCount())

	require.NoError(t, e.Undo())
	assert.Equal(t, "ab", e.Text())
	require.NoError(t, e.Undo())
	assert.Equal(t, "", e.Text())
}

func TestInsertTextReplacesSelection(t *testing.T) {
	e := lorem(t)
	e.Select(3, 9)
	assert.Equal(t, "Lorem ", e.SelectedText())

	require.NoError(t, e.InsertText("X"))
	assert.Equal(t, "Xipsum dolor", e.Text())
	assert.Equal(t, 4, e.Offset())
	assert.True(t, e.Selection().IsEmpty())
	assert.Equal(t, 3, e.UndoCount())

	require.NoError(t, e.Undo())
	assert.Equal(t, "Lorem ipsum dolor", e.Text())
}

func TestDeleteSelection(t *testing.T) {
	e := lorem(t)
	require.NoError(t, e.DeleteSelection())
	assert.Equal(t, "Lorem ipsum dolor", e.Text())

	e.Select(9, 15)
	require.NoError(t, e.DeleteSelection())
	assert.Equal(t, "Lorem dolor", e.Text())
	assert.Equal(t, 9, e.Offset())
}

func TestDeleteBackward(t *testing.T) {
	e := lorem(t)
	require.NoError(t, e.DeleteBackward())
	require.NoError(t, e.DeleteBackward())
	assert.Equal(t, "Lorem ipsum dol", e.Text())
	assert.Equal(t, 18, e.Offset())
	assert.Equal(t, 3, e.UndoCount())

	require.NoError(t, e.Undo())
	assert.Equal(t, "Lorem ipsum dolor", e.Text())
}

func TestDeleteBackwardAtContentStartIsNoOp(t *testing.T) {
	e := lorem(t)
	e.MoveTo(3)
	require.NoError(t, e.DeleteBackward())
	assert.Equal(t, "Lorem ipsum dolor", e.Text())
	assert.Equal(t, 2, e.UndoCount())
}

func TestDeleteForward(t *testing.T) {
	e := lorem(t)
	e.MoveTo(3)
	require.NoError(t, e.DeleteForward())
	assert.Equal(t, "orem ipsum dolor", e.Text())
	assert.Equal(t, 3, e.Offset())

	e.DocumentEnd()
	require.NoError(t, e.DeleteForward())
	assert.Equal(t, "orem ipsum dolor", e.Text())
}

func TestDeleteRemovesEmptyElement(t *testing.T) {
	tests := []struct {
		name string
		del  func(*Engine) error
	}{
		{"backward", (*Engine).DeleteBackward},
		{"forward", (*Engine).DeleteForward},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := newEngine(t)
			_, err := e.InsertElement(para)
			require.NoError(t, err)
			require.Equal(t, 3, e.Offset())

			require.NoError(t, tc.del(e))
			assert.Empty(t, e.Document().Root().ChildElements())
			assert.Equal(t, 2, e.Offset())

			require.NoError(t, tc.del(e))
			assert.Equal(t, 4, e.Len())
		})
	}
}

func TestDeleteBackwardRemovesGraphemeCluster(t *testing.T) {
	e := newEngine(t)
	_, err := e.InsertElement(para)
	require.NoError(t, err)
	require.NoError(t, e.InsertText("e\u0301x"))

	e.Left()
	assert.Equal(t, 5, e.Offset())
	require.NoError(t, e.DeleteBackward())
	assert.Equal(t, "x", e.Text())
	assert.Equal(t, 3, e.Offset())
}

func TestAttributesAndNamespaces(t *testing.T) {
	e := lorem(t)
	el, err := e.ElementAtCaret()
	require.NoError(t, err)
	assert.Equal(t, "para", el.Name().Local)

	id := dom.QName{Local: "id"}
	require.NoError(t, e.SetAttribute(el, id, "p1"))
	v, ok := el.Attribute(id)
	assert.True(t, ok)
	assert.Equal(t, "p1", v)

	require.NoError(t, e.RemoveAttribute(el, id))
	_, ok = el.Attribute(id)
	assert.False(t, ok)

	require.NoError(t, e.DeclareNamespace(el, "x", "urn:x"))
	uri, ok := el.NamespaceURI("x")
	assert.True(t, ok)
	assert.Equal(t, "urn:x", uri)
	require.NoError(t, e.RemoveNamespace(el, "x"))
	_, ok = el.NamespaceURI("x")
	assert.False(t, ok)

	require.NoError(t, e.Undo())
	_, ok = el.NamespaceURI("x")
	assert.True(t, ok)
}

func TestCommentAndProcessingInstruction(t *testing.T) {
	e := lorem(t)
	require.NoError(t, e.InsertComment())
	assert.Equal(t, 21, e.Offset())
	require.NoError(t, e.InsertText("note"))

	e.DocumentEnd()
	require.NoError(t, e.InsertProcessingInstruction("app"))
	require.NoError(t, e.InsertText("run"))

	var buf bytes.Buffer
	require.NoError(t, e.WriteXML(&buf))
	assert.Equal(t, `<doc><para>Lorem ipsum dolor<!--note--></para><?app run?></doc>`, buf.String())

	assert.ErrorIs(t, e.InsertProcessingInstruction("xml"), dom.ErrInvalidName)
}

func TestValidationRejection(t *testing.T) {
	var logs bytes.Buffer
	noTables := dom.ValidatorFunc(func(_ dom.QName, seq []dom.QName, _ bool) bool {
		for _, q := range seq {
			if q.Local == "table" {
				return false
			}
		}
		return true
	})
	e := newEngine(t, WithValidator(noTables), WithLogger(logging.NewWriter(&logs, "warn")))

	_, err := e.InsertElement(dom.QName{Local: "table"})
	assert.ErrorIs(t, err, dom.ErrValidation)
	assert.Equal(t, 0, e.UndoCount())
	assert.Empty(t, e.Document().Root().ChildElements())
	assert.Contains(t, logs.String(), "edit rejected")
}

func TestReadOnly(t *testing.T) {
	e := newEngine(t, WithReadOnly())
	assert.True(t, e.IsReadOnly())
	_, err := e.InsertElement(para)
	assert.ErrorIs(t, err, ErrReadOnly)
	assert.ErrorIs(t, e.InsertText("x"), ErrReadOnly)
	assert.Equal(t, 4, e.Len())
}

// ============================================================================
// Undo/Redo Operations
// ============================================================================

func TestUndoRedoRestoresCaret(t *testing.T) {
	e := lorem(t)

	require.NoError(t, e.Undo())
	assert.Equal(t, "", e.Text())
	assert.Equal(t, 3, e.Offset())

	require.NoError(t, e.Undo())
	assert.Empty(t, e.Document().Root().ChildElements())
	assert.Equal(t, 2, e.Offset())
	assert.ErrorIs(t, e.Undo(), ErrNothingToUndo)

	require.NoError(t, e.Redo())
	require.NoError(t, e.Redo())
	assert.Equal(t, "Lorem ipsum dolor", e.Text())
	err := e.Redo()
	assert.ErrorIs(t, err, ErrNothingToRedo)
	assert.ErrorIs(t, err, history.ErrCannotApply)
	assert.False(t, e.CanRedo())
}

func TestTransactions(t *testing.T) {
	e := lorem(t)

	e.BeginWork()
	assert.True(t, e.InTransaction())
	require.NoError(t, e.InsertText("!"))
	err := e.Undo()
	assert.ErrorIs(t, err, history.ErrCannotUndo)
	assert.NotErrorIs(t, err, ErrNothingToUndo)
	assert.ErrorIs(t, e.Redo(), history.ErrCannotApply)
	require.NoError(t, e.RollbackWork())
	assert.Equal(t, "Lorem ipsum dolor", e.Text())
	assert.Equal(t, 20, e.Offset())

	e.BeginWork()
	require.NoError(t, e.InsertText("!"))
	e.DocumentStart()
	require.NoError(t, e.InsertText(">"))
	require.NoError(t, e.CommitWork())
	assert.Equal(t, ">Lorem ipsum dolor!", e.Text())
	assert.Equal(t, 3, e.UndoCount())

	require.NoError(t, e.Undo())
	assert.Equal(t, "Lorem ipsum dolor", e.Text())

	assert.ErrorIs(t, e.CommitWork(), history.ErrNoTransaction)
	assert.Len(t, e.UndoInfo(), 2)

	e.ClearHistory()
	assert.False(t, e.CanUndo())
}

// ============================================================================
// Cursor Operations
// ============================================================================

func TestVerticalMoves(t *testing.T) {
	e := lorem(t)
	e.MoveTo(4)
	e.Down()
	assert.Equal(t, 10, e.Offset())
	assert.Equal(t, 1, e.PreferredX())
	e.Down()
	assert.Equal(t, 16, e.Offset())
	e.Up()
	e.Up()
	assert.Equal(t, 4, e.Offset())

	e.LineEnd()
	assert.Equal(t, 8, e.Offset())
	e.LineStart()
	assert.Equal(t, 3, e.Offset())
}

func TestSelectionMoves(t *testing.T) {
	e := lorem(t)
	e.MoveTo(3)
	e.SelectRight()
	e.SelectRight()
	assert.Equal(t, "Lo", e.SelectedText())

	e.ClearSelection()
	assert.True(t, e.Selection().IsEmpty())

	e.SelectAll()
	assert.Equal(t, "Lorem ipsum dolor", e.SelectedText())

	e.MoveTo(9)
	e.SelectDown()
	assert.Equal(t, "ipsum ", e.SelectedText())
	e.SelectLeft()
	e.SelectUp()
	assert.True(t, e.Selection().IsBackward())
}

func TestMoveToCoordinates(t *testing.T) {
	e := lorem(t)
	e.MoveToCoordinates(3, 1)
	assert.Equal(t, 12, e.Offset())

	caret, err := e.Caret()
	require.NoError(t, err)
	assert.Equal(t, Caret{X: 3, Y: 1, Height: 1}, caret)
}

// ============================================================================
// Layout Operations
// ============================================================================

func TestRelayoutOnWidthAndStyles(t *testing.T) {
	e := lorem(t)
	caret, err := e.Caret()
	require.NoError(t, err)
	assert.Equal(t, Caret{X: 5, Y: 2, Height: 1}, caret)
	assert.Len(t, e.ContentMap().Lines(), 4)

	e.SetWidth(40)
	caret, err = e.Caret()
	require.NoError(t, err)
	assert.Equal(t, Caret{X: 17, Y: 0, Height: 1}, caret)
	assert.Len(t, e.ContentMap().Lines(), 2)
	assert.NotNil(t, e.RootBox())

	e.SetWidth(10)
	e.SetStyles(sheet(t, `{"elements": {"doc": {"display": "block"},
		"para": {"display": "block", "margin": {"left": 2}}}}`))
	caret, err = e.Caret()
	require.NoError(t, err)
	assert.Equal(t, Caret{X: 7, Y: 2, Height: 1}, caret)
	assert.Equal(t, 20, e.Offset())
}

func TestDump(t *testing.T) {
	e := lorem(t)
	var buf bytes.Buffer
	require.NoError(t, e.Dump(&buf))
	assert.Contains(t, buf.String(), "RootBox")
	assert.Contains(t, buf.String(), "Lorem")
}

// ============================================================================
// Suggestions
// ============================================================================

func TestSuggestElements(t *testing.T) {
	names := []dom.QName{{Local: "title"}, {Local: "table"}, {Local: "part"}, {Local: "para"}}

	e := newEngine(t)
	assert.Equal(t,
		[]dom.QName{{Local: "para"}, {Local: "part"}, {Local: "table"}, {Local: "title"}},
		e.SuggestElements("par", names))

	noTables := dom.ValidatorFunc(func(_ dom.QName, seq []dom.QName, _ bool) bool {
		for _, q := range seq {
			if q.Local == "table" {
				return false
			}
		}
		return true
	})
	e = newEngine(t, WithValidator(noTables))
	assert.Equal(t,
		[]dom.QName{{Local: "para"}, {Local: "part"}, {Local: "title"}},
		e.SuggestElements("PAR", names))
	assert.Len(t, e.ValidInsertElements(names), 3)
}

// ============================================================================
// Concurrency
// ============================================================================

func TestConcurrentAccess(t *testing.T) {
	e := lorem(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = e.InsertText("x")
		}()
		go func() {
			defer wg.Done()
			_ = e.Text()
			_, _ = e.Caret()
		}()
	}
	wg.Wait()
	assert.Equal(t, "Lorem ipsum dolor"+strings.Repeat("x", 8), e.Text())
}
