package dom

import (
	"strings"

	"github.com/dshills/vex/internal/engine/content"
)

// Validator decides whether a sequence of children is allowed in an
// element. Character data appears in the sequence as PCDATA. When partial
// is true the sequence only needs to be a valid prefix of a complete one.
type Validator interface {
	Validate(parent QName, sequence []QName, partial bool) bool
}

// ValidatorFunc adapts a function to the Validator interface.
type ValidatorFunc func(parent QName, sequence []QName, partial bool) bool

// Validate calls f.
func (f ValidatorFunc) Validate(parent QName, sequence []QName, partial bool) bool {
	return f(parent, sequence, partial)
}

// SetValidator replaces the document's validator. A nil validator accepts
// everything.
func (d *Document) SetValidator(v Validator) {
	d.validator = v
}

// Validator returns the document's validator, which may be nil.
func (d *Document) Validator() Validator {
	return d.validator
}

// Sequence returns the validator view of an element's children.
func (d *Document) Sequence(e *Element) []QName {
	return d.sequenceOf(e.id, -1, nil, content.NullRange)
}

// IsValid runs a complete (non-partial) validation of e's children.
func (d *Document) IsValid(e *Element) bool {
	if d.validator == nil || !e.IsAttached() {
		return true
	}
	return d.validator.Validate(e.Name(), d.Sequence(e), false)
}

// ValidInsertElements filters candidates down to the names that may be
// inserted as elements at offset.
func (d *Document) ValidInsertElements(offset int, candidates []QName) []QName {
	id, err := d.containerAt(offset)
	if err != nil || d.nodes[id].kind != KindElement {
		return nil
	}
	var out []QName
	for _, c := range candidates {
		if d.validate(id, d.sequenceOf(id, offset, []QName{c}, content.NullRange)) {
			out = append(out, c)
		}
	}
	return out
}

func (d *Document) validate(parent NodeID, seq []QName) bool {
	if d.validator == nil {
		return true
	}
	pd := d.nodes[parent]
	if pd == nil || pd.kind != KindElement {
		return true
	}
	return d.validator.Validate(pd.name, seq, true)
}

// sequenceOf builds the child sequence of parent as it would look after
// inserting ins at offset and deleting del. Whitespace-only text, comments
// and processing instructions do not appear in the sequence.
func (d *Document) sequenceOf(parent NodeID, offset int, ins []QName, del content.Range) []QName {
	var (
		seq     []QName
		pending strings.Builder
		done    = len(ins) == 0
	)
	add := func(q QName) {
		if q == PCDATA && len(seq) > 0 && seq[len(seq)-1] == PCDATA {
			return
		}
		seq = append(seq, q)
	}
	flush := func() {
		if strings.TrimSpace(pending.String()) != "" {
			add(PCDATA)
		}
		pending.Reset()
	}
	insert := func() {
		if done {
			return
		}
		done = true
		for _, q := range ins {
			if q == PCDATA {
				pending.WriteString(q.Local)
				continue
			}
			flush()
			add(q)
		}
	}
	deleted := func(r content.Range) bool {
		return !del.IsNull() && del.Contains(r)
	}

	for _, child := range d.childNodes(parent) {
		r := child.Range()
		switch child.Kind() {
		case KindText:
			for i := r.Start; i <= r.End; i++ {
				if i == offset {
					insert()
				}
				if !del.IsNull() && del.ContainsOffset(i) {
					continue
				}
				if ch, ok := d.store.RuneAt(i); ok {
					pending.WriteRune(ch)
				}
			}
		case KindElement:
			if offset <= r.Start {
				insert()
			}
			if deleted(r) {
				continue
			}
			flush()
			add(child.(*Element).Name())
		default:
			if offset <= r.Start {
				insert()
			}
		}
	}
	insert()
	flush()
	return seq
}
