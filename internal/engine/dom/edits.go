package dom

import (
	"fmt"

	"github.com/dshills/vex/internal/engine/content"
	"github.com/dshills/vex/internal/engine/history"
)

var (
	_ history.Edit = (*InsertTextEdit)(nil)
	_ history.Edit = (*InsertElementEdit)(nil)
	_ history.Edit = (*InsertCommentEdit)(nil)
	_ history.Edit = (*InsertProcessingInstructionEdit)(nil)
	_ history.Edit = (*DeleteEdit)(nil)
	_ history.Edit = (*AttributeEdit)(nil)
	_ history.Edit = (*NamespaceEdit)(nil)
)

// applied tracks whether an edit is currently in effect.
type applied bool

func (a applied) CanUndo() bool { return bool(a) }
func (a applied) CanRedo() bool { return !bool(a) }

// InsertTextEdit inserts character data.
type InsertTextEdit struct {
	applied
	doc    *Document
	offset int
	text   string
}

// NewInsertTextEdit creates an edit inserting text before offset.
func NewInsertTextEdit(doc *Document, offset int, text string) *InsertTextEdit {
	return &InsertTextEdit{doc: doc, offset: offset, text: doc.NormalizeText(text)}
}

// Range returns the range the text occupies once inserted.
func (e *InsertTextEdit) Range() content.Range {
	return content.Range{Start: e.offset, End: e.offset + len([]rune(e.text)) - 1}
}

// Redo inserts the text.
func (e *InsertTextEdit) Redo() error {
	if err := e.doc.InsertText(e.offset, e.text); err != nil {
		return err
	}
	e.applied = true
	return nil
}

// Undo deletes the inserted text.
func (e *InsertTextEdit) Undo() error {
	if e.text != "" {
		if err := e.doc.Delete(e.Range()); err != nil {
			return err
		}
	}
	e.applied = false
	return nil
}

// Combine absorbs a text insertion that continues right after this one.
func (e *InsertTextEdit) Combine(next history.Edit) bool {
	n, ok := next.(*InsertTextEdit)
	if !ok || n.doc != e.doc || !bool(e.applied) || n.offset != e.Range().End+1 {
		return false
	}
	e.text += n.text
	return true
}

// Description describes the edit.
func (e *InsertTextEdit) Description() string {
	return fmt.Sprintf("insert %q at %d", e.text, e.offset)
}

// markupEdit inserts an empty tag pair node and undoes by deleting it.
type markupEdit struct {
	applied
	doc    *Document
	offset int
}

func (e *markupEdit) Undo() error {
	if err := e.doc.Delete(content.Range{Start: e.offset, End: e.offset + 1}); err != nil {
		return err
	}
	e.applied = false
	return nil
}

func (*markupEdit) Combine(history.Edit) bool { return false }

// InsertElementEdit inserts an empty element.
type InsertElementEdit struct {
	markupEdit
	name    QName
	element *Element
}

// NewInsertElementEdit creates an edit inserting an element before offset.
func NewInsertElementEdit(doc *Document, offset int, name QName) *InsertElementEdit {
	return &InsertElementEdit{markupEdit: markupEdit{doc: doc, offset: offset}, name: name}
}

// Redo inserts the element.
func (e *InsertElementEdit) Redo() error {
	el, err := e.doc.InsertElement(e.offset, e.name)
	if err != nil {
		return err
	}
	e.element = el
	e.applied = true
	return nil
}

// Element returns the element created by the last Redo.
func (e *InsertElementEdit) Element() *Element { return e.element }

// Description describes the edit.
func (e *InsertElementEdit) Description() string {
	return fmt.Sprintf("insert element %s at %d", e.name, e.offset)
}

// InsertCommentEdit inserts an empty comment.
type InsertCommentEdit struct {
	markupEdit
}

// NewInsertCommentEdit creates an edit inserting a comment before offset.
func NewInsertCommentEdit(doc *Document, offset int) *InsertCommentEdit {
	return &InsertCommentEdit{markupEdit{doc: doc, offset: offset}}
}

// Redo inserts the comment.
func (e *InsertCommentEdit) Redo() error {
	if _, err := e.doc.InsertComment(e.offset); err != nil {
		return err
	}
	e.applied = true
	return nil
}

// Description describes the edit.
func (e *InsertCommentEdit) Description() string {
	return fmt.Sprintf("insert comment at %d", e.offset)
}

// InsertProcessingInstructionEdit inserts an empty processing instruction.
type InsertProcessingInstructionEdit struct {
	markupEdit
	target string
}

// NewInsertProcessingInstructionEdit creates an edit inserting a
// processing instruction before offset.
func NewInsertProcessingInstructionEdit(doc *Document, offset int, target string) *InsertProcessingInstructionEdit {
	return &InsertProcessingInstructionEdit{markupEdit: markupEdit{doc: doc, offset: offset}, target: target}
}

// Redo inserts the processing instruction.
func (e *InsertProcessingInstructionEdit) Redo() error {
	if _, err := e.doc.InsertProcessingInstruction(e.offset, e.target); err != nil {
		return err
	}
	e.applied = true
	return nil
}

// Description describes the edit.
func (e *InsertProcessingInstructionEdit) Description() string {
	return fmt.Sprintf("insert processing instruction %s at %d", e.target, e.offset)
}

// DeleteEdit deletes a range, keeping a fragment to restore it.
type DeleteEdit struct {
	applied
	doc      *Document
	rng      content.Range
	fragment *Fragment
}

// NewDeleteEdit creates an edit deleting r.
func NewDeleteEdit(doc *Document, r content.Range) *DeleteEdit {
	return &DeleteEdit{doc: doc, rng: r}
}

// Range returns the deleted range.
func (e *DeleteEdit) Range() content.Range { return e.rng }

// Redo captures the range content and deletes it.
func (e *DeleteEdit) Redo() error {
	f, err := e.doc.Fragment(e.rng)
	if err != nil {
		return err
	}
	if err := e.doc.Delete(e.rng); err != nil {
		return err
	}
	e.fragment = f
	e.applied = true
	return nil
}

// Undo reinserts the deleted content.
func (e *DeleteEdit) Undo() error {
	if err := e.doc.InsertFragment(e.rng.Start, e.fragment); err != nil {
		return err
	}
	e.applied = false
	return nil
}

// Combine absorbs a text-only deletion adjacent to this one: the character
// before it (backspace) or the character now at its start (delete forward).
func (e *DeleteEdit) Combine(next history.Edit) bool {
	n, ok := next.(*DeleteEdit)
	if !ok || n.doc != e.doc || !bool(e.applied) || !bool(n.applied) {
		return false
	}
	if !e.fragment.IsText() || !n.fragment.IsText() {
		return false
	}
	switch {
	case n.rng.End+1 == e.rng.Start:
		e.fragment = &Fragment{Content: n.fragment.Content + e.fragment.Content}
		e.rng = content.Range{Start: n.rng.Start, End: e.rng.End}
	case n.rng.Start == e.rng.Start:
		e.fragment = &Fragment{Content: e.fragment.Content + n.fragment.Content}
		e.rng = content.Range{Start: e.rng.Start, End: e.rng.End + n.rng.Len()}
	default:
		return false
	}
	return true
}

// Description describes the edit.
func (e *DeleteEdit) Description() string {
	return fmt.Sprintf("delete %s", e.rng)
}

// AttributeEdit sets or removes an attribute. The element is located by
// the offset of its open marker so the edit survives element re-creation
// by undo and redo.
type AttributeEdit struct {
	applied
	doc     *Document
	offset  int
	name    QName
	value   string
	remove  bool
	old     string
	existed bool
}

// NewSetAttributeEdit creates an edit setting name to value on el.
func NewSetAttributeEdit(el *Element, name QName, value string) *AttributeEdit {
	return &AttributeEdit{doc: el.Document(), offset: el.StartOffset(), name: name, value: value}
}

// NewRemoveAttributeEdit creates an edit removing name from el.
func NewRemoveAttributeEdit(el *Element, name QName) *AttributeEdit {
	return &AttributeEdit{doc: el.Document(), offset: el.StartOffset(), name: name, remove: true}
}

func (e *AttributeEdit) element() (*Element, error) {
	el := e.doc.elementStartingAt(e.offset)
	if el == nil {
		return nil, fmt.Errorf("%w: no element at %d", ErrDetached, e.offset)
	}
	return el, nil
}

// Redo applies the attribute change.
func (e *AttributeEdit) Redo() error {
	el, err := e.element()
	if err != nil {
		return err
	}
	e.old, e.existed = el.Attribute(e.name)
	if e.remove {
		err = e.doc.RemoveAttribute(el, e.name)
	} else {
		err = e.doc.SetAttribute(el, e.name, e.value)
	}
	if err != nil {
		return err
	}
	e.applied = true
	return nil
}

// Undo restores the previous attribute state.
func (e *AttributeEdit) Undo() error {
	el, err := e.element()
	if err != nil {
		return err
	}
	if e.existed {
		err = e.doc.SetAttribute(el, e.name, e.old)
	} else {
		err = e.doc.RemoveAttribute(el, e.name)
	}
	if err != nil {
		return err
	}
	e.applied = false
	return nil
}

// Combine absorbs a later change of the same attribute.
func (e *AttributeEdit) Combine(next history.Edit) bool {
	n, ok := next.(*AttributeEdit)
	if !ok || n.doc != e.doc || n.offset != e.offset || n.name != e.name || !bool(e.applied) {
		return false
	}
	e.value, e.remove = n.value, n.remove
	return true
}

// Description describes the edit.
func (e *AttributeEdit) Description() string {
	if e.remove {
		return fmt.Sprintf("remove attribute %s", e.name)
	}
	return fmt.Sprintf("set attribute %s=%q", e.name, e.value)
}

// NamespaceEdit declares or removes a namespace prefix on an element.
type NamespaceEdit struct {
	applied
	doc     *Document
	offset  int
	prefix  string
	uri     string
	remove  bool
	old     string
	existed bool
}

// NewDeclareNamespaceEdit creates an edit binding prefix to uri on el.
func NewDeclareNamespaceEdit(el *Element, prefix, uri string) *NamespaceEdit {
	return &NamespaceEdit{doc: el.Document(), offset: el.StartOffset(), prefix: prefix, uri: uri}
}

// NewRemoveNamespaceEdit creates an edit removing the declaration of
// prefix from el.
func NewRemoveNamespaceEdit(el *Element, prefix string) *NamespaceEdit {
	return &NamespaceEdit{doc: el.Document(), offset: el.StartOffset(), prefix: prefix, remove: true}
}

// Redo applies the declaration change.
func (e *NamespaceEdit) Redo() error {
	el := e.doc.elementStartingAt(e.offset)
	if el == nil {
		return fmt.Errorf("%w: no element at %d", ErrDetached, e.offset)
	}
	decl := el.DeclaredNamespaces()
	e.old, e.existed = decl[e.prefix]
	var err error
	if e.remove {
		err = e.doc.RemoveNamespace(el, e.prefix)
	} else {
		err = e.doc.DeclareNamespace(el, e.prefix, e.uri)
	}
	if err != nil {
		return err
	}
	e.applied = true
	return nil
}

// Undo restores the previous declaration.
func (e *NamespaceEdit) Undo() error {
	el := e.doc.elementStartingAt(e.offset)
	if el == nil {
		return fmt.Errorf("%w: no element at %d", ErrDetached, e.offset)
	}
	var err error
	if e.existed {
		err = e.doc.DeclareNamespace(el, e.prefix, e.old)
	} else {
		err = e.doc.RemoveNamespace(el, e.prefix)
	}
	if err != nil {
		return err
	}
	e.applied = false
	return nil
}

// Combine always returns false.
func (*NamespaceEdit) Combine(history.Edit) bool { return false }

// Description describes the edit.
func (e *NamespaceEdit) Description() string {
	if e.remove {
		return fmt.Sprintf("remove namespace %q", e.prefix)
	}
	return fmt.Sprintf("declare namespace %q=%q", e.prefix, e.uri)
}
