package dom

import (
	"fmt"
	"maps"

	"github.com/dshills/vex/internal/engine/content"
)

// Fragment is a detached copy of a deletable range: its raw content with
// tag markers and the nodes those markers belong to.
type Fragment struct {
	Content string
	Nodes   []FragmentNode
}

// FragmentNode is a node inside a Fragment. Offsets are relative to the
// start of the fragment content.
type FragmentNode struct {
	Kind       Kind
	Start      int
	End        int
	Name       QName
	Attrs      []Attr
	Namespaces map[string]string
	Target     string
	Children   []FragmentNode
}

// Len returns the number of content positions in the fragment.
func (f *Fragment) Len() int {
	return len([]rune(f.Content))
}

// IsText reports whether the fragment holds only character data.
func (f *Fragment) IsText() bool {
	return len(f.Nodes) == 0
}

// Fragment copies the content in r. The range must satisfy the same rules
// as Delete.
func (d *Document) Fragment(r content.Range) (*Fragment, error) {
	_, removed, err := d.deletion(r)
	if err != nil {
		return nil, err
	}
	f := &Fragment{Content: d.store.Text(r)}
	for _, id := range removed {
		f.Nodes = append(f.Nodes, d.fragmentNode(id, r.Start))
	}
	return f, nil
}

func (d *Document) fragmentNode(id NodeID, base int) FragmentNode {
	n := d.nodes[id]
	r := n.rng()
	fn := FragmentNode{
		Kind:   n.kind,
		Start:  r.Start - base,
		End:    r.End - base,
		Name:   n.name,
		Target: n.target,
	}
	if n.kind == KindElement {
		fn.Attrs = (&Element{structural{doc: d, id: id}}).Attributes()
		fn.Namespaces = maps.Clone(n.ns)
	}
	for _, cid := range n.children {
		fn.Children = append(fn.Children, d.fragmentNode(cid, base))
	}
	return fn
}

// InsertFragment inserts a copy of f before offset.
func (d *Document) InsertFragment(offset int, f *Fragment) error {
	if err := d.checkMutable(); err != nil {
		return err
	}
	if f == nil || f.Content == "" {
		return nil
	}
	runes := []rune(f.Content)
	if err := checkFragment(runes, f.Nodes); err != nil {
		return err
	}
	parent, err := d.containerAt(offset)
	if err != nil {
		return err
	}
	pd := d.nodes[parent]

	seq, hasText := fragmentSequence(runes, f.Nodes)
	switch pd.kind {
	case KindDocument:
		for _, q := range seq {
			if q != PCDATA {
				return fmt.Errorf("%w: elements cannot be inserted outside the root element", ErrInvalidOffset)
			}
		}
		if hasText {
			return fmt.Errorf("%w: no text outside the root element at %d", ErrInvalidOffset, offset)
		}
	case KindComment, KindProcessingInstruction:
		if len(f.Nodes) > 0 {
			return fmt.Errorf("%w: cannot insert markup into a %s", ErrInvalidOffset, pd.kind)
		}
	default:
		if !d.validate(parent, d.sequenceOf(parent, offset, seq, content.NullRange)) {
			return d.validationError(parent, "fragment")
		}
	}

	ev := ContentEvent{
		Document:   d,
		Parent:     d.wrap(parent),
		Range:      content.Range{Start: offset, End: offset + len(runes) - 1},
		Structural: len(f.Nodes) > 0,
	}
	d.fireBeforeInsert(ev)
	if err := d.store.InsertMarkedText(offset, f.Content); err != nil {
		return err
	}
	for _, fn := range f.Nodes {
		id := d.restoreNode(parent, offset, fn)
		d.insertChild(parent, id)
	}
	d.fireInserted(ev)
	return nil
}

func (d *Document) restoreNode(parent NodeID, base int, fn FragmentNode) NodeID {
	n := d.newNode(fn.Kind, parent, d.mustPosition(base+fn.Start), d.mustPosition(base+fn.End))
	n.name = fn.Name
	n.target = fn.Target
	for _, a := range fn.Attrs {
		n.attrs[a.Name] = a.Value
	}
	maps.Copy(n.ns, fn.Namespaces)
	for _, c := range fn.Children {
		n.children = append(n.children, d.restoreNode(n.id, base, c))
	}
	return n.id
}

// checkFragment verifies that every marker in runes belongs to a node.
func checkFragment(runes []rune, nodes []FragmentNode) error {
	markers := 0
	for _, r := range runes {
		if content.IsTagMarker(r) {
			markers++
		}
	}
	var walk func([]FragmentNode) error
	walk = func(nodes []FragmentNode) error {
		for _, n := range nodes {
			if n.Start < 0 || n.End >= len(runes) || n.Start >= n.End ||
				runes[n.Start] != content.OpenTag || runes[n.End] != content.CloseTag {
				return fmt.Errorf("%w: fragment node at [%d, %d] does not match its markers", ErrInvalidRange, n.Start, n.End)
			}
			markers -= 2
			if err := walk(n.Children); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(nodes); err != nil {
		return err
	}
	if markers != 0 {
		return fmt.Errorf("%w: fragment markers do not match its nodes", ErrInvalidRange)
	}
	return nil
}

// fragmentSequence returns the top-level validator sequence of a fragment
// and whether it has non-whitespace text at the top level.
func fragmentSequence(runes []rune, nodes []FragmentNode) ([]QName, bool) {
	var seq []QName
	hasText := false
	pos := 0
	text := func(to int) {
		for _, r := range runes[pos:to] {
			if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
				hasText = true
				if len(seq) == 0 || seq[len(seq)-1] != PCDATA {
					seq = append(seq, PCDATA)
				}
				return
			}
		}
	}
	for _, n := range nodes {
		text(n.Start)
		if n.Kind == KindElement {
			seq = append(seq, n.Name)
		}
		pos = n.End + 1
	}
	text(len(runes))
	return seq, hasText
}
