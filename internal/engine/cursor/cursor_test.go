package cursor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/vex/internal/engine/content"
	"github.com/dshills/vex/internal/engine/dom"
	"github.com/dshills/vex/internal/layout"
	"github.com/dshills/vex/internal/layout/contentmap"
	"github.com/dshills/vex/internal/metrics"
	"github.com/dshills/vex/internal/style"
)

const testSheet = `{"elements": {
  "doc": {"display": "block"},
  "para": {"display": "block"},
  "code": {"display": "block", "whiteSpace": "pre"}
}}`

func mapOf(t *testing.T, d *dom.Document, width int) *contentmap.Map {
	t.Helper()
	sheet, err := style.ParseSheet([]byte(testSheet))
	require.NoError(t, err)
	e := layout.NewEngine(layout.WithStyles(sheet), layout.WithGraphics(metrics.Cells()), layout.WithWidth(width))
	return contentmap.New(e.Render(d))
}

// wrapped is <doc><para>Lorem ipsum dolor</para><para/></doc> ten cells
// wide. Rows: [3,8] [9,14] [15,20] [22] [23].
func wrapped(t *testing.T) *Cursor {
	t.Helper()
	d := dom.New(dom.QName{Local: "doc"})
	p, err := d.InsertElement(2, dom.QName{Local: "para"})
	require.NoError(t, err)
	require.NoError(t, d.InsertText(3, "Lorem ipsum dolor"))
	_, err = d.InsertElement(p.EndOffset()+1, dom.QName{Local: "para"})
	require.NoError(t, err)
	return New(mapOf(t, d, 10))
}

func TestNewStartsAtFirstCaretPosition(t *testing.T) {
	c := wrapped(t)
	assert.Equal(t, 3, c.Offset())
	assert.False(t, c.HasSelection())
	assert.Equal(t, -1, c.PreferredX())
}

func TestLeftRight(t *testing.T) {
	c := wrapped(t)
	c.ToOffset(5)
	c.Left()
	assert.Equal(t, 4, c.Offset())
	c.Right()
	c.Right()
	assert.Equal(t, 6, c.Offset())

	c.ToOffset(0)
	c.Left()
	assert.Equal(t, 0, c.Offset(), "left at the document start does nothing")

	c.ToOffset(24)
	c.Right()
	assert.Equal(t, 24, c.Offset(), "right at the document end does nothing")

	c.ToOffset(3)
	c.Left()
	assert.Equal(t, 3, c.Offset(), "no caret position before the first character")

	c.ToOffset(20)
	c.Right()
	assert.Equal(t, 22, c.Offset(), "block markers are skipped")
}

func TestToOffsetClamps(t *testing.T) {
	c := wrapped(t)
	c.ToOffset(100)
	assert.Equal(t, 24, c.Offset())
	c.ToOffset(-3)
	assert.Equal(t, 0, c.Offset())
}

func TestDownUpKeepsPreferredX(t *testing.T) {
	c := wrapped(t)
	c.ToOffset(4)

	c.Down()
	assert.Equal(t, 10, c.Offset())
	assert.Equal(t, 1, c.PreferredX())
	c.Down()
	assert.Equal(t, 16, c.Offset())

	c.Down()
	assert.Equal(t, 22, c.Offset(), "the next block's row is entered at its start")
	c.Down()
	assert.Equal(t, 23, c.Offset())
	c.Down()
	assert.Equal(t, 23, c.Offset(), "no row below")

	c.Up()
	assert.Equal(t, 22, c.Offset())
	c.Up()
	assert.Equal(t, 16, c.Offset(), "the preferred x is projected again inside a row")
	assert.Equal(t, 1, c.PreferredX())

	c.Left()
	assert.Equal(t, -1, c.PreferredX(), "horizontal moves end the vertical sequence")
}

func TestVerticalClampsToShortRows(t *testing.T) {
	d := dom.New(dom.QName{Local: "code"})
	require.NoError(t, d.InsertText(2, "abcdef\nab\nabcdef"))
	c := New(mapOf(t, d, 80))

	c.ToOffset(7)
	c.Down()
	assert.Equal(t, 11, c.Offset(), "clamped before the newline of the short row")
	c.Down()
	assert.Equal(t, 17, c.Offset(), "the preferred x survives the short row")
	assert.Equal(t, 5, c.PreferredX())
	c.Up()
	c.Up()
	assert.Equal(t, 7, c.Offset())
}

func TestLineStartEnd(t *testing.T) {
	c := wrapped(t)
	c.ToOffset(10)
	c.LineStart()
	assert.Equal(t, 9, c.Offset())
	c.LineEnd()
	assert.Equal(t, 14, c.Offset())

	c.DocumentEnd()
	assert.Equal(t, 23, c.Offset())
	c.DocumentStart()
	assert.Equal(t, 3, c.Offset())
}

func TestToAbsoluteCoordinates(t *testing.T) {
	c := wrapped(t)
	c.ToAbsoluteCoordinates(3, 1)
	assert.Equal(t, 12, c.Offset())
	assert.Equal(t, 3, c.PreferredX())

	c.Down()
	assert.Equal(t, 18, c.Offset())

	caret, err := c.Caret()
	require.NoError(t, err)
	assert.Equal(t, contentmap.Caret{X: 3, Y: 2, Height: 1}, caret)
}

func TestSelection(t *testing.T) {
	c := wrapped(t)
	c.ToOffset(3)
	c.SelectRight()
	c.SelectRight()
	assert.Equal(t, Selection{Anchor: 3, Head: 5}, c.Selection())
	assert.True(t, c.HasSelection())
	assert.Equal(t, content.Range{Start: 3, End: 4}, c.Selection().Range())

	c.SelectDown()
	assert.Equal(t, 3, c.Selection().Anchor)
	assert.Equal(t, 11, c.Offset())

	c.Right()
	assert.False(t, c.HasSelection())

	c.SelectAll()
	assert.Equal(t, Selection{Anchor: 3, Head: 23}, c.Selection())
	c.ClearSelection()
	assert.Equal(t, Collapsed(23), c.Selection())

	c.SelectTo(10)
	assert.Equal(t, Selection{Anchor: 23, Head: 10}, c.Selection())
	assert.True(t, c.Selection().IsBackward())
	assert.Equal(t, 13, c.Selection().Len())
}

func TestSnapsToGraphemeBoundaries(t *testing.T) {
	d := dom.New(dom.QName{Local: "para"})
	require.NoError(t, d.InsertText(2, "e\u0301x"))
	c := New(mapOf(t, d, 10))

	c.ToOffset(3)
	assert.Equal(t, 2, c.Offset())
	c.Right()
	assert.Equal(t, 4, c.Offset())
	c.Left()
	assert.Equal(t, 2, c.Offset())
}

func TestSetContentMapClamps(t *testing.T) {
	c := wrapped(t)
	c.ToOffset(16)
	c.Down()
	require.NotEqual(t, -1, c.PreferredX())

	d := dom.New(dom.QName{Local: "para"})
	require.NoError(t, d.InsertText(2, "ab"))
	c.SetContentMap(mapOf(t, d, 10))
	assert.Equal(t, 5, c.Offset())
	assert.Equal(t, -1, c.PreferredX())
	c.Left()
	assert.Equal(t, 4, c.Offset())
}

func TestTransform(t *testing.T) {
	r := content.Range{Start: 5, End: 7}
	assert.Equal(t, 4, AfterInsert(4, r))
	assert.Equal(t, 8, AfterInsert(5, r))
	assert.Equal(t, 5, AfterDelete(5, r))
	assert.Equal(t, 5, AfterDelete(6, r))
	assert.Equal(t, 6, AfterDelete(9, r))
	assert.Equal(t, 9, AfterInsert(9, content.NullRange))

	assert.Equal(t, Collapsed(8), TransformInsert(Collapsed(5), r))
	assert.Equal(t, Selection{Anchor: 5, Head: 11}, TransformInsert(Selection{Anchor: 5, Head: 8}, r))
	assert.Equal(t, Selection{Anchor: 2, Head: 5}, TransformDelete(Selection{Anchor: 2, Head: 9}, content.Range{Start: 5, End: 8}))
}

func TestSelectionValue(t *testing.T) {
	s := Selection{Anchor: 8, Head: 3}
	assert.Equal(t, 3, s.Start())
	assert.Equal(t, 8, s.End())
	assert.True(t, s.Contains(3))
	assert.False(t, s.Contains(8))
	assert.Equal(t, Selection{Anchor: 5, Head: 3}, s.Clamp(5))
	assert.Equal(t, "Selection(8..3)", s.String())
	assert.Equal(t, "Caret(4)", Collapsed(4).String())
	assert.True(t, Collapsed(4).Range().IsNull())
}
