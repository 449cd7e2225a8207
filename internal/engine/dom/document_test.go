package dom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/vex/internal/engine/content"
)

// sample builds <root>he<b>XY</b>llo</root>.
func sample(t *testing.T, opts ...Option) (*Document, *Element) {
	t.Helper()
	d := New(QName{Local: "root"}, opts...)
	require.NoError(t, d.InsertText(2, "hello"))
	b, err := d.InsertElement(4, QName{Local: "b"})
	require.NoError(t, err)
	require.NoError(t, d.InsertText(5, "XY"))
	return d, b
}

func TestNewDocument(t *testing.T) {
	d := New(QName{Local: "root"})
	root := d.Root()
	require.NotNil(t, root)

	assert.Equal(t, content.Range{Start: 0, End: 3}, d.Range())
	assert.Equal(t, content.Range{Start: 1, End: 2}, root.Range())
	assert.True(t, root.IsEmpty())
	assert.Equal(t, "root", root.Name().String())
	assert.Equal(t, d, root.Parent())
	assert.NotEqual(t, [16]byte{}, [16]byte(d.UUID()))
}

func TestInsertShiftsRanges(t *testing.T) {
	d, b := sample(t)
	root := d.Root()

	assert.Equal(t, content.Range{Start: 1, End: 11}, root.Range())
	assert.Equal(t, content.Range{Start: 4, End: 7}, b.Range())
	assert.Equal(t, "heXYllo", root.Text())
	assert.Equal(t, "XY", b.Text())

	children := root.ChildNodes()
	require.Len(t, children, 3)
	assert.Equal(t, KindText, children[0].Kind())
	assert.Equal(t, "he", children[0].Text())
	assert.Equal(t, KindElement, children[1].Kind())
	assert.Equal(t, "llo", children[2].Text())
	assert.Equal(t, content.Range{Start: 8, End: 10}, children[2].Range())

	require.NoError(t, d.InsertText(2, ">"))
	assert.Equal(t, content.Range{Start: 5, End: 8}, b.Range())
}

func TestChildrenPartitionParent(t *testing.T) {
	d, _ := sample(t)
	root := d.Root()
	next := root.StartOffset() + 1
	for _, c := range root.ChildNodes() {
		assert.Equal(t, next, c.StartOffset())
		next = c.EndOffset() + 1
	}
	assert.Equal(t, root.EndOffset(), next)
}

func TestNodeAt(t *testing.T) {
	d, b := sample(t)

	n := d.NodeAt(5)
	require.NotNil(t, n)
	assert.Equal(t, KindText, n.Kind())
	assert.Equal(t, "XY", n.Text())

	n = d.NodeAt(4)
	require.IsType(t, &Element{}, n)
	assert.Equal(t, b.ID(), n.ID())

	assert.Equal(t, b.ID(), d.ElementAt(7).ID())
	assert.Equal(t, d.Root().ID(), d.ElementAt(4).ID())
	assert.Nil(t, d.NodeAt(100))
}

func TestInsertTextOutsideRoot(t *testing.T) {
	d := New(QName{Local: "root"})
	assert.ErrorIs(t, d.InsertText(1, "x"), ErrInvalidOffset)
	assert.ErrorIs(t, d.InsertText(0, "x"), ErrInvalidOffset)
	assert.ErrorIs(t, d.InsertText(9, "x"), ErrInvalidOffset)
	assert.ErrorIs(t, d.InsertText(2, "a\uE000"), content.ErrReservedRune)
	assert.Equal(t, 4, d.Len())
}

func TestInsertElementErrors(t *testing.T) {
	d := New(QName{Local: "root"})
	_, err := d.InsertElement(1, QName{Local: "x"})
	assert.ErrorIs(t, err, ErrInvalidOffset)
	_, err = d.InsertElement(2, QName{Local: "1bad"})
	assert.ErrorIs(t, err, ErrInvalidName)

	c, err := d.InsertComment(2)
	require.NoError(t, err)
	_, err = d.InsertElement(c.StartOffset()+1, QName{Local: "x"})
	assert.ErrorIs(t, err, ErrInvalidOffset)
}

func TestCommentsAndProcessingInstructions(t *testing.T) {
	d := New(QName{Local: "root"})

	c, err := d.InsertComment(1)
	require.NoError(t, err)
	assert.Equal(t, content.Range{Start: 1, End: 2}, c.Range())
	require.NoError(t, d.InsertText(2, " note "))
	assert.Equal(t, " note ", c.Text())
	assert.Equal(t, d, c.Parent())

	_, err = d.InsertProcessingInstruction(2, "xml")
	assert.ErrorIs(t, err, ErrInvalidName)

	pi, err := d.InsertProcessingInstruction(d.Root().EndOffset(), "render")
	require.NoError(t, err)
	assert.Equal(t, "render", pi.Target())
	require.NoError(t, d.SetProcessingInstructionTarget(pi, "paint"))
	assert.Equal(t, "paint", pi.Target())

	kinds := []Kind{}
	for _, n := range d.ChildNodes() {
		kinds = append(kinds, n.Kind())
	}
	assert.Equal(t, []Kind{KindComment, KindElement}, kinds)
}

func TestDelete(t *testing.T) {
	d, b := sample(t)

	assert.ErrorIs(t, d.Delete(content.Range{Start: 3, End: 5}), ErrInvalidRange)
	assert.ErrorIs(t, d.Delete(d.Root().Range()), ErrInvalidRange)
	assert.ErrorIs(t, d.Delete(content.Range{Start: 0, End: 2}), ErrInvalidRange)

	require.NoError(t, d.Delete(content.Range{Start: 5, End: 5}))
	assert.Equal(t, "Y", b.Text())

	require.NoError(t, d.Delete(b.Range()))
	assert.False(t, b.IsAttached())
	assert.Equal(t, "hello", d.Root().Text())
	assert.Len(t, d.Root().ChildElements(), 0)
	assert.Equal(t, 4, d.store.PositionCount())
}

func TestNamespaces(t *testing.T) {
	d, b := sample(t)
	root := d.Root()

	require.NoError(t, d.DeclareNamespace(root, "p", "urn:a"))
	require.NoError(t, d.DeclareNamespace(root, "", "urn:default"))

	uri, ok := b.NamespaceURI("p")
	require.True(t, ok)
	assert.Equal(t, "urn:a", uri)
	uri, _ = b.NamespaceURI("")
	assert.Equal(t, "urn:default", uri)

	require.NoError(t, d.DeclareNamespace(b, "p", "urn:b"))
	uri, _ = b.NamespaceURI("p")
	assert.Equal(t, "urn:b", uri)
	uri, _ = root.NamespaceURI("p")
	assert.Equal(t, "urn:a", uri)

	_, ok = b.NamespacePrefix("urn:a")
	assert.False(t, ok, "shadowed prefix must not resolve")
	p, ok := root.NamespacePrefix("urn:a")
	require.True(t, ok)
	assert.Equal(t, "p", p)

	uri, ok = b.NamespaceURI("xml")
	assert.True(t, ok)
	assert.Equal(t, XMLNamespace, uri)

	assert.ErrorIs(t, d.DeclareNamespace(b, "xmlns", "urn:x"), ErrInvalidName)
	require.NoError(t, d.RemoveNamespace(b, "p"))
	uri, _ = b.NamespaceURI("p")
	assert.Equal(t, "urn:a", uri)
}

func TestAttributes(t *testing.T) {
	d, b := sample(t)
	var events []AttributeEvent
	d.AddAttributeListener(attrRecorder{&events})

	require.NoError(t, d.SetAttribute(b, QName{Local: "z"}, "1"))
	require.NoError(t, d.SetAttribute(b, QName{Local: "a"}, "2"))
	require.NoError(t, d.SetAttribute(b, QName{Local: "a"}, "2"))
	require.NoError(t, d.RemoveAttribute(b, QName{Local: "z"}))
	require.NoError(t, d.RemoveAttribute(b, QName{Local: "missing"}))

	assert.Equal(t, []Attr{{Name: QName{Local: "a"}, Value: "2"}}, b.Attributes())
	require.Len(t, events, 6)
	assert.True(t, events[5].Removed)
	assert.Equal(t, "1", events[5].OldValue)

	require.NoError(t, d.Delete(b.Range()))
	assert.ErrorIs(t, d.SetAttribute(b, QName{Local: "a"}, "3"), ErrDetached)
}

type attrRecorder struct{ events *[]AttributeEvent }

func (r attrRecorder) BeforeAttributeChanged(e AttributeEvent) { *r.events = append(*r.events, e) }
func (r attrRecorder) AttributeChanged(e AttributeEvent)       { *r.events = append(*r.events, e) }

func TestContentEventsOrder(t *testing.T) {
	d := New(QName{Local: "root"})
	var log []string
	unsubscribe := d.AddContentListener(ContentFuncs{
		OnBeforeInsert: func(e ContentEvent) { log = append(log, "before-insert "+e.Range.String()) },
		OnInsert:       func(e ContentEvent) { log = append(log, "insert "+e.Range.String()) },
		OnBeforeDelete: func(e ContentEvent) { log = append(log, "before-delete "+e.Range.String()) },
		OnDelete:       func(e ContentEvent) { log = append(log, "delete "+e.Range.String()) },
	})

	require.NoError(t, d.InsertText(2, "abc"))
	require.NoError(t, d.Delete(content.Range{Start: 2, End: 3}))
	unsubscribe()
	require.NoError(t, d.InsertText(2, "x"))

	assert.Equal(t, []string{
		"before-insert [2, 4]", "insert [2, 4]",
		"before-delete [2, 3]", "delete [2, 3]",
	}, log)
}

func TestListenerCannotMutate(t *testing.T) {
	d := New(QName{Local: "root"})
	var inner error
	d.AddContentListener(ContentFuncs{
		OnInsert: func(e ContentEvent) {
			inner = d.InsertText(e.Range.Start, "again")
		},
	})

	require.NoError(t, d.InsertText(2, "once"))
	assert.ErrorIs(t, inner, ErrReentrantMutation)
	assert.Equal(t, "once", d.Root().Text())

	require.NoError(t, d.InsertText(2, "-"))
	assert.Equal(t, "-once", d.Root().Text())
}

func TestValidationRejectsWithoutChange(t *testing.T) {
	noText := ValidatorFunc(func(parent QName, seq []QName, partial bool) bool {
		if parent.Local != "list" {
			return true
		}
		for _, q := range seq {
			if q != (QName{Local: "item"}) {
				return false
			}
		}
		return true
	})
	d := New(QName{Local: "list"}, WithValidator(noText))

	var events int
	d.AddContentListener(ContentFuncs{OnBeforeInsert: func(ContentEvent) { events++ }})

	assert.ErrorIs(t, d.InsertText(2, "text"), ErrValidation)
	_, err := d.InsertElement(2, QName{Local: "para"})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, 4, d.Len())
	assert.Zero(t, events)

	require.NoError(t, d.InsertText(2, "  \n"))
	item, err := d.InsertElement(3, QName{Local: "item"})
	require.NoError(t, err)
	require.NoError(t, d.InsertText(item.StartOffset()+1, "inside items is fine"))

	got := d.ValidInsertElements(2, []QName{{Local: "item"}, {Local: "para"}})
	assert.Equal(t, []QName{{Local: "item"}}, got)
	assert.Equal(t, []QName{{Local: "item"}}, d.Sequence(d.Root()))
	assert.True(t, d.IsValid(d.Root()))
}

func TestTextNormalization(t *testing.T) {
	d := New(QName{Local: "root"}, WithTextNormalization())
	require.NoError(t, d.InsertText(2, "e\u0301"))
	assert.Equal(t, "\u00e9", d.Root().Text())
	assert.Equal(t, 5, d.Len())
}

func TestFragmentRoundTrip(t *testing.T) {
	d, b := sample(t)
	require.NoError(t, d.SetAttribute(b, QName{Local: "id"}, "x1"))
	require.NoError(t, d.DeclareNamespace(b, "p", "urn:p"))
	inner, err := d.InsertElement(6, QName{Space: "urn:p", Local: "i"})
	require.NoError(t, err)
	before := d.RawText(d.Range())

	r := content.Range{Start: 3, End: b.EndOffset() + 1}
	f, err := d.Fragment(r)
	require.NoError(t, err)
	require.Len(t, f.Nodes, 1)
	require.Len(t, f.Nodes[0].Children, 1)
	assert.Equal(t, r.Len(), f.Len())

	require.NoError(t, d.Delete(r))
	assert.False(t, inner.IsAttached())
	assert.Equal(t, "hlo", d.Root().Text())

	require.NoError(t, d.InsertFragment(r.Start, f))
	assert.Equal(t, before, d.RawText(d.Range()))

	restored := d.Root().ChildElements()
	require.Len(t, restored, 1)
	v, ok := restored[0].Attribute(QName{Local: "id"})
	assert.True(t, ok)
	assert.Equal(t, "x1", v)
	assert.Equal(t, "urn:p", restored[0].DeclaredNamespaces()["p"])
	require.Len(t, restored[0].ChildElements(), 1)
	assert.Equal(t, QName{Space: "urn:p", Local: "i"}, restored[0].ChildElements()[0].Name())
}

func TestInsertFragmentRejectsMismatchedNodes(t *testing.T) {
	d, _ := sample(t)
	f := &Fragment{Content: "a\uE000\uE001", Nodes: []FragmentNode{{Kind: KindElement, Start: 0, End: 2, Name: QName{Local: "x"}}}}
	assert.ErrorIs(t, d.InsertFragment(3, f), ErrInvalidRange)
}

func TestParseQName(t *testing.T) {
	assert.Equal(t, QName{Space: "urn:x", Local: "a"}, ParseQName("{urn:x}a"))
	assert.Equal(t, QName{Local: "a"}, ParseQName("a"))
	assert.Equal(t, "{urn:x}a", ParseQName("{urn:x}a").String())
}
