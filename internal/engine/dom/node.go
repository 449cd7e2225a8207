package dom

import (
	"sort"

	"github.com/dshills/vex/internal/engine/content"
)

// NodeID identifies a structural node within its document.
// Text nodes have no identity and report 0.
type NodeID uint64

// Kind is the concrete type of a node.
type Kind uint8

const (
	KindDocument Kind = iota
	KindElement
	KindText
	KindComment
	KindProcessingInstruction
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindDocument:
		return "document"
	case KindElement:
		return "element"
	case KindText:
		return "text"
	case KindComment:
		return "comment"
	case KindProcessingInstruction:
		return "processing-instruction"
	default:
		return "unknown"
	}
}

// Node is implemented by every node of the document tree.
type Node interface {
	Kind() Kind
	ID() NodeID
	Document() *Document
	Range() content.Range
	StartOffset() int
	EndOffset() int
	// Parent returns the containing node, or nil for the document.
	Parent() Node
	// Text returns the character data covered by the node, tag markers
	// excluded.
	Text() string
}

// Parent is a node that can contain other nodes.
type Parent interface {
	Node
	ChildNodes() []Node
	// ChildAt returns the child covering offset. Offsets on the parent's
	// own tag markers return the parent itself; offsets outside return nil.
	ChildAt(offset int) Node
}

// Attr is an attribute name/value pair.
type Attr struct {
	Name  QName
	Value string
}

// nodeData is the arena record of a structural node.
type nodeData struct {
	id       NodeID
	kind     Kind
	parent   NodeID
	children []NodeID

	start *content.Position
	end   *content.Position

	name   QName
	attrs  map[QName]string
	ns     map[string]string
	target string
}

func (n *nodeData) rng() content.Range {
	return content.Range{Start: n.start.Offset(), End: n.end.Offset()}
}

// structural implements the Node methods shared by stored nodes.
type structural struct {
	doc *Document
	id  NodeID
}

func (s structural) data() *nodeData {
	return s.doc.nodes[s.id]
}

// ID returns the node identifier.
func (s structural) ID() NodeID { return s.id }

// Document returns the owning document.
func (s structural) Document() *Document { return s.doc }

// IsAttached reports whether the node is still part of its document.
func (s structural) IsAttached() bool {
	_, ok := s.doc.nodes[s.id]
	return ok
}

// Range returns the node's content range, tag markers included.
func (s structural) Range() content.Range {
	d := s.data()
	if d == nil {
		return content.NullRange
	}
	return d.rng()
}

// StartOffset returns the offset of the node's open marker.
func (s structural) StartOffset() int { return s.Range().Start }

// EndOffset returns the offset of the node's close marker.
func (s structural) EndOffset() int { return s.Range().End }

// Parent returns the containing node.
func (s structural) Parent() Node {
	d := s.data()
	if d == nil || d.parent == 0 {
		return nil
	}
	return s.doc.wrap(d.parent)
}

// Text returns the characters between the node's markers.
func (s structural) Text() string {
	r := s.Range()
	if r.IsNull() || r.Len() <= 2 {
		return ""
	}
	return s.doc.store.PlainText(r.ResizeBy(1, -1))
}

// ChildNodes returns the node's children, text runs included.
func (s structural) ChildNodes() []Node {
	return s.doc.childNodes(s.id)
}

// ChildAt returns the child covering offset.
func (s structural) ChildAt(offset int) Node {
	return s.doc.childAt(s.id, offset)
}

// Element is an XML element.
type Element struct {
	structural
}

// Kind returns KindElement.
func (*Element) Kind() Kind { return KindElement }

// Name returns the element's qualified name.
func (e *Element) Name() QName {
	if d := e.data(); d != nil {
		return d.name
	}
	return QName{}
}

// IsEmpty reports whether the element has no content.
func (e *Element) IsEmpty() bool {
	return e.Range().Len() == 2
}

// Attribute returns the value of the named attribute.
func (e *Element) Attribute(name QName) (string, bool) {
	d := e.data()
	if d == nil {
		return "", false
	}
	v, ok := d.attrs[name]
	return v, ok
}

// Attributes returns the element's attributes ordered by name.
func (e *Element) Attributes() []Attr {
	d := e.data()
	if d == nil {
		return nil
	}
	out := make([]Attr, 0, len(d.attrs))
	for k, v := range d.attrs {
		out = append(out, Attr{Name: k, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name.Less(out[j].Name) })
	return out
}

// DeclaredNamespaces returns the prefix to URI declarations made on this
// element itself.
func (e *Element) DeclaredNamespaces() map[string]string {
	d := e.data()
	if d == nil {
		return nil
	}
	out := make(map[string]string, len(d.ns))
	for k, v := range d.ns {
		out[k] = v
	}
	return out
}

// NamespaceURI resolves prefix against this element and its ancestors.
// The empty prefix resolves the default namespace.
func (e *Element) NamespaceURI(prefix string) (string, bool) {
	if prefix == "xml" {
		return XMLNamespace, true
	}
	for id := e.id; id != 0; {
		d := e.doc.nodes[id]
		if d == nil {
			break
		}
		if uri, ok := d.ns[prefix]; ok {
			return uri, uri != "" || prefix == ""
		}
		id = d.parent
	}
	return "", false
}

// NamespacePrefix finds a prefix bound to uri in scope at this element.
// Shadowed declarations are skipped.
func (e *Element) NamespacePrefix(uri string) (string, bool) {
	if uri == XMLNamespace {
		return "xml", true
	}
	for id := e.id; id != 0; {
		d := e.doc.nodes[id]
		if d == nil {
			break
		}
		prefixes := make([]string, 0, len(d.ns))
		for p := range d.ns {
			prefixes = append(prefixes, p)
		}
		sort.Strings(prefixes)
		for _, p := range prefixes {
			if d.ns[p] != uri {
				continue
			}
			if bound, ok := e.NamespaceURI(p); ok && bound == uri {
				return p, true
			}
		}
		id = d.parent
	}
	return "", false
}

// ChildElements returns the element children in document order.
func (e *Element) ChildElements() []*Element {
	return e.doc.childElements(e.id)
}

// Comment is an XML comment. Its text lies between its markers.
type Comment struct {
	structural
}

// Kind returns KindComment.
func (*Comment) Kind() Kind { return KindComment }

// ProcessingInstruction is an XML processing instruction.
type ProcessingInstruction struct {
	structural
}

// Kind returns KindProcessingInstruction.
func (*ProcessingInstruction) Kind() Kind { return KindProcessingInstruction }

// Target returns the instruction target.
func (p *ProcessingInstruction) Target() string {
	if d := p.data(); d != nil {
		return d.target
	}
	return ""
}

// Text is a run of character data between structural siblings. It is a
// snapshot: its range is fixed when the node is produced.
type Text struct {
	doc    *Document
	parent NodeID
	rng    content.Range
}

// Kind returns KindText.
func (*Text) Kind() Kind { return KindText }

// ID returns 0; text runs have no identity.
func (*Text) ID() NodeID { return 0 }

// Document returns the owning document.
func (t *Text) Document() *Document { return t.doc }

// Range returns the range of the run.
func (t *Text) Range() content.Range { return t.rng }

// StartOffset returns the offset of the first character.
func (t *Text) StartOffset() int { return t.rng.Start }

// EndOffset returns the offset of the last character.
func (t *Text) EndOffset() int { return t.rng.End }

// Parent returns the node containing the run.
func (t *Text) Parent() Node { return t.doc.wrap(t.parent) }

// Text returns the characters of the run.
func (t *Text) Text() string { return t.doc.store.PlainText(t.rng) }
