package contentmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/vex/internal/engine/dom"
	"github.com/dshills/vex/internal/layout"
	"github.com/dshills/vex/internal/metrics"
	"github.com/dshills/vex/internal/style"
)

const testSheet = `{"elements": {"doc": {"display": "block"}, "para": {"display": "block"}}}`

func render(t *testing.T, d *dom.Document, width int) *layout.RootBox {
	t.Helper()
	sheet, err := style.ParseSheet([]byte(testSheet))
	require.NoError(t, err)
	return layout.NewEngine(layout.WithStyles(sheet), layout.WithGraphics(metrics.Cells()), layout.WithWidth(width)).Render(d)
}

// wrapped is <doc><para>Lorem ipsum dolor</para><para/></doc> laid out ten
// cells wide: the first paragraph takes three rows.
func wrapped(t *testing.T) (*dom.Document, *Map) {
	t.Helper()
	d := dom.New(dom.QName{Local: "doc"})
	p, err := d.InsertElement(2, dom.QName{Local: "para"})
	require.NoError(t, err)
	require.NoError(t, d.InsertText(3, "Lorem ipsum dolor"))
	_, err = d.InsertElement(p.EndOffset()+1, dom.QName{Local: "para"})
	require.NoError(t, err)
	return d, New(render(t, d, 10))
}

func TestBoxContainsOffsetAndIsStable(t *testing.T) {
	d, m := wrapped(t)
	for o := 0; o <= d.EndOffset(); o++ {
		b, err := m.Box(o)
		require.NoError(t, err, "offset %d", o)
		assert.True(t, b.Range().ContainsOffset(o), "offset %d in %s", o, b.Range())

		again, err := m.Box(o)
		require.NoError(t, err)
		assert.Same(t, b, again, "offset %d", o)
	}
}

func TestBoxIsInnermost(t *testing.T) {
	_, m := wrapped(t)

	b, err := m.Box(0)
	require.NoError(t, err)
	assert.IsType(t, &layout.RootBox{}, b)

	b, err = m.Box(2)
	require.NoError(t, err)
	require.IsType(t, &layout.VerticalBlock{}, b)
	assert.Equal(t, 2, b.Range().Start)
	assert.Equal(t, 20, b.Range().End)

	b, err = m.Box(10)
	require.NoError(t, err)
	require.IsType(t, &layout.TextContent{}, b)
	assert.Equal(t, "ipsum ", b.(*layout.TextContent).Text())

	b, err = m.Box(22)
	require.NoError(t, err)
	assert.IsType(t, &layout.Placeholder{}, b)
}

func TestNoBoxAtOffset(t *testing.T) {
	_, err := New(nil).Box(0)
	assert.ErrorIs(t, err, ErrNoBoxAtOffset)

	d, m := wrapped(t)
	_, err = m.Box(d.EndOffset() + 1)
	assert.ErrorIs(t, err, ErrNoBoxAtOffset)
	_, err = m.Box(-1)
	assert.ErrorIs(t, err, ErrNoBoxAtOffset)

	empty := layout.NewEngine().Build(d)
	_, err = New(empty).Box(3)
	assert.ErrorIs(t, err, ErrNoBoxAtOffset, "a root that was never laid out has zero width")
}

func TestLines(t *testing.T) {
	_, m := wrapped(t)
	rows := m.Lines()
	require.Len(t, rows, 5)
	for i, r := range rows {
		assert.Equal(t, i, r.Top)
	}
	assert.Equal(t, 3, rows[0].Range.Start)
	assert.Equal(t, 20, rows[2].Range.End)
	assert.Equal(t, rows[0].Block, rows[2].Block)
	assert.NotEqual(t, rows[2].Block, rows[3].Block)

	i, ok := m.LineOf(9)
	require.True(t, ok)
	assert.Equal(t, 1, i)
	_, ok = m.LineOf(2)
	assert.False(t, ok, "a block's start marker is on no row")
}

func TestCaretAt(t *testing.T) {
	_, m := wrapped(t)

	c, err := m.CaretAt(10)
	require.NoError(t, err)
	assert.Equal(t, Caret{X: 1, Y: 1, Height: 1}, c)

	c, err = m.CaretAt(20)
	require.NoError(t, err)
	assert.Equal(t, Caret{X: 5, Y: 2, Height: 1}, c)

	c, err = m.CaretAt(2)
	require.NoError(t, err)
	assert.Equal(t, 0, c.Y)

	_, err = m.CaretAt(99)
	assert.ErrorIs(t, err, ErrNoBoxAtOffset)
}

func TestOffsetAt(t *testing.T) {
	_, m := wrapped(t)
	assert.Equal(t, 12, m.OffsetAt(3, 1))
	assert.Equal(t, 20, m.OffsetAt(50, 2), "past the row end resolves to its last offset")
	assert.Equal(t, 23, m.OffsetAt(0, 100), "below the content resolves to the last row")
	assert.Equal(t, 3, m.OffsetAt(-5, -5))
}

func TestBoxAtCoordinates(t *testing.T) {
	_, m := wrapped(t)

	b, err := m.BoxAtCoordinates(1, 0)
	require.NoError(t, err)
	require.IsType(t, &layout.TextContent{}, b)
	assert.Equal(t, "Lorem ", b.(*layout.TextContent).Text())

	b, err = m.BoxAtCoordinates(9, 3)
	require.NoError(t, err)
	assert.IsType(t, &layout.Placeholder{}, b, "points beside a row resolve through its nearest offset")
}

func TestIsCaretPosition(t *testing.T) {
	_, m := wrapped(t)
	assert.False(t, m.IsCaretPosition(0))
	assert.False(t, m.IsCaretPosition(2))
	assert.True(t, m.IsCaretPosition(3))
	assert.True(t, m.IsCaretPosition(20))
	assert.True(t, m.IsCaretPosition(23))

	d := dom.New(dom.QName{Local: "para"})
	require.NoError(t, d.InsertText(2, "e\u0301x"))
	m = New(render(t, d, 10))
	assert.True(t, m.IsCaretPosition(2))
	assert.False(t, m.IsCaretPosition(3), "inside a grapheme cluster")
	assert.True(t, m.IsCaretPosition(4))
	assert.True(t, m.IsCaretPosition(5))
}
