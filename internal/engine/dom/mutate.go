package dom

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/dshills/vex/internal/engine/content"
)

// NormalizeText returns text as it would be stored by InsertText.
func (d *Document) NormalizeText(text string) string {
	if d.normalize {
		return norm.NFC.String(text)
	}
	return text
}

// InsertText inserts character data before offset. Text cannot be placed
// directly under the document node.
func (d *Document) InsertText(offset int, text string) error {
	if err := d.checkMutable(); err != nil {
		return err
	}
	text = d.NormalizeText(text)
	if text == "" {
		return nil
	}
	parent, err := d.containerAt(offset)
	if err != nil {
		return err
	}
	if parent == documentID {
		return fmt.Errorf("%w: no text outside the root element at %d", ErrInvalidOffset, offset)
	}
	var ins []QName
	if strings.TrimSpace(text) != "" {
		ins = []QName{PCDATA}
	}
	if !d.validate(parent, d.sequenceOf(parent, offset, ins, content.NullRange)) {
		return d.validationError(parent, "text")
	}

	n := len([]rune(text))
	ev := ContentEvent{Document: d, Parent: d.wrap(parent), Range: content.Range{Start: offset, End: offset + n - 1}}
	d.fireBeforeInsert(ev)
	if err := d.store.InsertText(offset, text); err != nil {
		return err
	}
	d.fireInserted(ev)
	return nil
}

// InsertElement inserts an empty element before offset.
func (d *Document) InsertElement(offset int, name QName) (*Element, error) {
	if !isXMLName(name.Local) {
		return nil, fmt.Errorf("%w: element %q", ErrInvalidName, name.Local)
	}
	id, err := d.insertStructural(offset, KindElement, name, func(parent *nodeData) bool {
		return parent.kind == KindElement
	})
	if err != nil {
		return nil, err
	}
	return &Element{structural{doc: d, id: id}}, nil
}

// InsertComment inserts an empty comment before offset.
func (d *Document) InsertComment(offset int) (*Comment, error) {
	id, err := d.insertStructural(offset, KindComment, QName{}, canHoldMarkup)
	if err != nil {
		return nil, err
	}
	return &Comment{structural{doc: d, id: id}}, nil
}

// InsertProcessingInstruction inserts an empty processing instruction
// before offset.
func (d *Document) InsertProcessingInstruction(offset int, target string) (*ProcessingInstruction, error) {
	if err := checkTarget(target); err != nil {
		return nil, err
	}
	id, err := d.insertStructural(offset, KindProcessingInstruction, QName{}, canHoldMarkup)
	if err != nil {
		return nil, err
	}
	d.nodes[id].target = target
	return &ProcessingInstruction{structural{doc: d, id: id}}, nil
}

// SetProcessingInstructionTarget changes the target of pi.
func (d *Document) SetProcessingInstructionTarget(pi *ProcessingInstruction, target string) error {
	if err := d.checkMutable(); err != nil {
		return err
	}
	if err := d.owns(pi.structural); err != nil {
		return err
	}
	if err := checkTarget(target); err != nil {
		return err
	}
	d.nodes[pi.id].target = target
	return nil
}

func checkTarget(target string) error {
	if !isXMLName(target) || strings.EqualFold(target, "xml") {
		return fmt.Errorf("%w: processing instruction target %q", ErrInvalidName, target)
	}
	return nil
}

func canHoldMarkup(parent *nodeData) bool {
	return parent.kind == KindElement || parent.kind == KindDocument
}

func (d *Document) insertStructural(offset int, kind Kind, name QName, allowed func(*nodeData) bool) (NodeID, error) {
	if err := d.checkMutable(); err != nil {
		return 0, err
	}
	parent, err := d.containerAt(offset)
	if err != nil {
		return 0, err
	}
	if !allowed(d.nodes[parent]) {
		return 0, fmt.Errorf("%w: cannot insert %s into %s at %d", ErrInvalidOffset, kind, d.nodes[parent].kind, offset)
	}
	if kind == KindElement && !d.validate(parent, d.sequenceOf(parent, offset, []QName{name}, content.NullRange)) {
		return 0, d.validationError(parent, name.String())
	}

	ev := ContentEvent{
		Document:   d,
		Parent:     d.wrap(parent),
		Range:      content.Range{Start: offset, End: offset + 1},
		Structural: true,
	}
	d.fireBeforeInsert(ev)
	start, end, err := d.store.InsertTagPair(offset)
	if err != nil {
		return 0, err
	}
	n := d.newNode(kind, parent, d.mustPosition(start), d.mustPosition(end))
	n.name = name
	d.insertChild(parent, n.id)
	d.fireInserted(ev)
	return n.id, nil
}

// Delete removes the content in r. Every node intersecting r must lie
// entirely inside it, and the root element cannot be deleted.
func (d *Document) Delete(r content.Range) error {
	if err := d.checkMutable(); err != nil {
		return err
	}
	parent, removed, err := d.deletion(r)
	if err != nil {
		return err
	}
	if !d.validate(parent, d.sequenceOf(parent, -1, nil, r)) {
		return d.validationError(parent, "deletion")
	}

	ev := ContentEvent{Document: d, Parent: d.wrap(parent), Range: r, Structural: len(removed) > 0}
	d.fireBeforeDelete(ev)
	if err := d.store.Delete(r); err != nil {
		return err
	}
	if len(removed) > 0 {
		pd := d.nodes[parent]
		kept := pd.children[:0]
		for _, cid := range pd.children {
			if !containsID(removed, cid) {
				kept = append(kept, cid)
			}
		}
		pd.children = kept
		for _, cid := range removed {
			d.removeNode(cid)
		}
	}
	d.fireDeleted(ev)
	return nil
}

// deletion finds the node owning r and the children r removes.
func (d *Document) deletion(r content.Range) (NodeID, []NodeID, error) {
	if r.IsNull() || r.Start > r.End {
		return 0, nil, fmt.Errorf("%w: %s", ErrInvalidRange, r)
	}
	dr := d.Range()
	if r.Start <= dr.Start || r.End >= dr.End {
		return 0, nil, fmt.Errorf("%w: %s outside document content", ErrInvalidRange, r)
	}

	id := documentID
descend:
	for {
		for _, cid := range d.nodes[id].children {
			cr := d.rangeOf(cid)
			if cr.Start < r.Start && r.End < cr.End {
				id = cid
				continue descend
			}
		}
		break
	}

	var removed []NodeID
	for _, cid := range d.nodes[id].children {
		cr := d.rangeOf(cid)
		if !cr.Intersects(r) {
			continue
		}
		if !r.Contains(cr) {
			return 0, nil, fmt.Errorf("%w: %s splits a %s at %s", ErrInvalidRange, r, d.nodes[cid].kind, cr)
		}
		if id == documentID && d.nodes[cid].kind == KindElement {
			return 0, nil, fmt.Errorf("%w: the root element cannot be deleted", ErrInvalidRange)
		}
		removed = append(removed, cid)
	}
	return id, removed, nil
}

func containsID(ids []NodeID, id NodeID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

// SetAttribute sets an attribute on e.
func (d *Document) SetAttribute(e *Element, name QName, value string) error {
	if err := d.checkMutable(); err != nil {
		return err
	}
	if err := d.owns(e.structural); err != nil {
		return err
	}
	if !isXMLName(name.Local) {
		return fmt.Errorf("%w: attribute %q", ErrInvalidName, name.Local)
	}
	n := d.nodes[e.id]
	old, existed := n.attrs[name]
	if existed && old == value {
		return nil
	}
	ev := AttributeEvent{Document: d, Element: e, Name: name, OldValue: old, NewValue: value, Existed: existed}
	d.fireBeforeAttribute(ev)
	n.attrs[name] = value
	d.fireAttribute(ev)
	return nil
}

// RemoveAttribute removes an attribute from e. Removing a missing
// attribute does nothing.
func (d *Document) RemoveAttribute(e *Element, name QName) error {
	if err := d.checkMutable(); err != nil {
		return err
	}
	if err := d.owns(e.structural); err != nil {
		return err
	}
	n := d.nodes[e.id]
	old, existed := n.attrs[name]
	if !existed {
		return nil
	}
	ev := AttributeEvent{Document: d, Element: e, Name: name, OldValue: old, Existed: true, Removed: true}
	d.fireBeforeAttribute(ev)
	delete(n.attrs, name)
	d.fireAttribute(ev)
	return nil
}

// DeclareNamespace binds prefix to uri on e. The empty prefix declares the
// default namespace.
func (d *Document) DeclareNamespace(e *Element, prefix, uri string) error {
	if err := d.checkMutable(); err != nil {
		return err
	}
	if err := d.owns(e.structural); err != nil {
		return err
	}
	if prefix != "" && (!isXMLName(prefix) || strings.Contains(prefix, ":") || prefix == "xml" || prefix == "xmlns") {
		return fmt.Errorf("%w: namespace prefix %q", ErrInvalidName, prefix)
	}
	n := d.nodes[e.id]
	old, existed := n.ns[prefix]
	if existed && old == uri {
		return nil
	}
	ev := NamespaceEvent{Document: d, Element: e, Prefix: prefix, OldURI: old, NewURI: uri, Existed: existed}
	d.fireBeforeNamespace(ev)
	n.ns[prefix] = uri
	d.fireNamespace(ev)
	return nil
}

// RemoveNamespace drops the declaration of prefix made on e.
func (d *Document) RemoveNamespace(e *Element, prefix string) error {
	if err := d.checkMutable(); err != nil {
		return err
	}
	if err := d.owns(e.structural); err != nil {
		return err
	}
	n := d.nodes[e.id]
	old, existed := n.ns[prefix]
	if !existed {
		return nil
	}
	ev := NamespaceEvent{Document: d, Element: e, Prefix: prefix, OldURI: old, Existed: true, Removed: true}
	d.fireBeforeNamespace(ev)
	delete(n.ns, prefix)
	d.fireNamespace(ev)
	return nil
}

func (d *Document) owns(s structural) error {
	if s.doc != d || !s.IsAttached() {
		return ErrDetached
	}
	return nil
}

func (d *Document) validationError(parent NodeID, what string) error {
	return fmt.Errorf("%w: %s not allowed in %s", ErrValidation, what, d.nodes[parent].name)
}
