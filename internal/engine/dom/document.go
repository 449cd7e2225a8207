package dom

import (
	"sort"

	"github.com/google/uuid"

	"github.com/dshills/vex/internal/engine/content"
)

// documentID is the arena key of the document node itself.
const documentID NodeID = 1

// Document is the root of a document tree and the arena that owns its nodes.
//
// Document is not safe for concurrent mutation; an editor session owns one
// document and serializes access to it.
type Document struct {
	uuid      uuid.UUID
	store     *content.Store
	nodes     map[NodeID]*nodeData
	nextID    NodeID
	validator Validator
	normalize bool

	listeners listenerSet
	notifying int
}

// New creates a document with an empty root element.
func New(root QName, opts ...Option) *Document {
	d := &Document{
		uuid:   uuid.New(),
		store:  content.NewStore(),
		nodes:  make(map[NodeID]*nodeData),
		nextID: documentID,
	}
	for _, opt := range opts {
		opt(d)
	}

	// <doc <root root> doc>
	_, _, _ = d.store.InsertTagPair(0)
	_, _, _ = d.store.InsertTagPair(1)

	docData := d.newNode(KindDocument, 0, d.mustPosition(0), d.mustPosition(3))
	rootData := d.newNode(KindElement, docData.id, d.mustPosition(1), d.mustPosition(2))
	rootData.name = root
	docData.children = []NodeID{rootData.id}
	return d
}

func (d *Document) mustPosition(offset int) *content.Position {
	p, err := d.store.CreatePosition(offset)
	if err != nil {
		panic(err)
	}
	return p
}

func (d *Document) newNode(kind Kind, parent NodeID, start, end *content.Position) *nodeData {
	n := &nodeData{
		id:     d.nextID,
		kind:   kind,
		parent: parent,
		start:  start,
		end:    end,
	}
	if kind == KindElement {
		n.attrs = make(map[QName]string)
		n.ns = make(map[string]string)
	}
	d.nodes[n.id] = n
	d.nextID++
	return n
}

// UUID returns the document's unique identity.
func (d *Document) UUID() uuid.UUID { return d.uuid }

// Kind returns KindDocument.
func (*Document) Kind() Kind { return KindDocument }

// ID returns the document node identifier.
func (*Document) ID() NodeID { return documentID }

// Document returns d.
func (d *Document) Document() *Document { return d }

// Range returns the range of the whole document.
func (d *Document) Range() content.Range { return d.nodes[documentID].rng() }

// StartOffset returns 0.
func (d *Document) StartOffset() int { return d.Range().Start }

// EndOffset returns the offset of the document's close marker.
func (d *Document) EndOffset() int { return d.Range().End }

// Parent returns nil.
func (*Document) Parent() Node { return nil }

// Text returns all character data of the document.
func (d *Document) Text() string { return d.store.PlainText(d.Range()) }

// Len returns the number of content positions.
func (d *Document) Len() int { return d.store.Len() }

// ChildNodes returns the root element plus any document-level comments and
// processing instructions.
func (d *Document) ChildNodes() []Node { return d.childNodes(documentID) }

// ChildAt returns the child covering offset.
func (d *Document) ChildAt(offset int) Node { return d.childAt(documentID, offset) }

// Root returns the root element.
func (d *Document) Root() *Element {
	for _, id := range d.nodes[documentID].children {
		if d.nodes[id].kind == KindElement {
			return &Element{structural{doc: d, id: id}}
		}
	}
	return nil
}

// Node returns the structural node with the given identifier.
func (d *Document) Node(id NodeID) (Node, bool) {
	if _, ok := d.nodes[id]; !ok {
		return nil, false
	}
	return d.wrap(id), true
}

// RawText returns the content in r with tag markers.
func (d *Document) RawText(r content.Range) string { return d.store.Text(r) }

// PlainText returns the character data in r without tag markers.
func (d *Document) PlainText(r content.Range) string { return d.store.PlainText(r) }

// CharAt returns the rune at offset.
func (d *Document) CharAt(offset int) (rune, bool) { return d.store.RuneAt(offset) }

// NodeAt returns the innermost node covering offset, text runs included.
func (d *Document) NodeAt(offset int) Node {
	var n Node = d
	for {
		p, ok := n.(Parent)
		if !ok {
			return n
		}
		child := p.ChildAt(offset)
		if child == nil {
			return nil
		}
		if child.Kind() == n.Kind() && child.ID() == n.ID() {
			return n
		}
		n = child
	}
}

// ElementAt returns the innermost element in which offset is an insertion
// point, i.e. start < offset <= end.
func (d *Document) ElementAt(offset int) *Element {
	id, err := d.containerAt(offset)
	if err != nil {
		return nil
	}
	for ; id != 0; id = d.nodes[id].parent {
		if d.nodes[id].kind == KindElement {
			return &Element{structural{doc: d, id: id}}
		}
	}
	return nil
}

// ContainerAt returns the innermost structural node in which offset is an
// insertion point.
func (d *Document) ContainerAt(offset int) (Node, error) {
	id, err := d.containerAt(offset)
	if err != nil {
		return nil, err
	}
	return d.wrap(id), nil
}

// elementStartingAt finds the element whose open marker is at offset.
func (d *Document) elementStartingAt(offset int) *Element {
	n := d.NodeAt(offset)
	if e, ok := n.(*Element); ok && e.StartOffset() == offset {
		return e
	}
	return nil
}

func (d *Document) wrap(id NodeID) Node {
	n, ok := d.nodes[id]
	if !ok {
		return nil
	}
	s := structural{doc: d, id: id}
	switch n.kind {
	case KindDocument:
		return d
	case KindElement:
		return &Element{s}
	case KindComment:
		return &Comment{s}
	case KindProcessingInstruction:
		return &ProcessingInstruction{s}
	default:
		return nil
	}
}

func (d *Document) rangeOf(id NodeID) content.Range {
	return d.nodes[id].rng()
}

func (d *Document) childNodes(id NodeID) []Node {
	pd, ok := d.nodes[id]
	if !ok {
		return nil
	}
	r := pd.rng()
	out := make([]Node, 0, len(pd.children)*2+1)
	next := r.Start + 1
	for _, cid := range pd.children {
		cr := d.rangeOf(cid)
		if cr.Start > next {
			out = append(out, &Text{doc: d, parent: id, rng: content.Range{Start: next, End: cr.Start - 1}})
		}
		out = append(out, d.wrap(cid))
		next = cr.End + 1
	}
	if r.End > next {
		out = append(out, &Text{doc: d, parent: id, rng: content.Range{Start: next, End: r.End - 1}})
	}
	return out
}

func (d *Document) childElements(id NodeID) []*Element {
	pd, ok := d.nodes[id]
	if !ok {
		return nil
	}
	var out []*Element
	for _, cid := range pd.children {
		if d.nodes[cid].kind == KindElement {
			out = append(out, &Element{structural{doc: d, id: cid}})
		}
	}
	return out
}

func (d *Document) childAt(id NodeID, offset int) Node {
	pd, ok := d.nodes[id]
	if !ok {
		return nil
	}
	r := pd.rng()
	if !r.ContainsOffset(offset) {
		return nil
	}
	if offset == r.Start || offset == r.End {
		return d.wrap(id)
	}
	for _, child := range d.childNodes(id) {
		if child.Range().ContainsOffset(offset) {
			return child
		}
	}
	return nil
}

// containerAt returns the innermost structural node n with
// n.start < offset <= n.end.
func (d *Document) containerAt(offset int) (NodeID, error) {
	r := d.Range()
	if offset <= r.Start || offset > r.End {
		return 0, ErrInvalidOffset
	}
	id := documentID
descend:
	for {
		for _, cid := range d.nodes[id].children {
			cr := d.rangeOf(cid)
			if cr.Start >= offset {
				break
			}
			if offset <= cr.End {
				id = cid
				continue descend
			}
		}
		return id, nil
	}
}

// insertChild places child into parent's ordered child list.
func (d *Document) insertChild(parent, child NodeID) {
	pd := d.nodes[parent]
	start := d.rangeOf(child).Start
	i := sort.Search(len(pd.children), func(i int) bool {
		return d.rangeOf(pd.children[i]).Start >= start
	})
	pd.children = append(pd.children, 0)
	copy(pd.children[i+1:], pd.children[i:])
	pd.children[i] = child
}

// removeNode drops id and its descendants from the arena.
func (d *Document) removeNode(id NodeID) {
	n, ok := d.nodes[id]
	if !ok {
		return
	}
	for _, cid := range n.children {
		d.removeNode(cid)
	}
	d.store.RemovePosition(n.start)
	d.store.RemovePosition(n.end)
	delete(d.nodes, id)
}
