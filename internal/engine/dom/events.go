package dom

import "github.com/dshills/vex/internal/engine/content"

// ContentEvent describes an insertion or deletion of content.
type ContentEvent struct {
	Document *Document
	// Parent is the node into which content was inserted or from which it
	// was removed.
	Parent Node
	// Range is the affected range. For deletions it is the range before
	// the content was removed.
	Range content.Range
	// Structural reports whether the change added or removed nodes rather
	// than only character data.
	Structural bool
}

// AttributeEvent describes an attribute change. An empty OldValue with
// Existed false means the attribute was added; Removed means it was dropped.
type AttributeEvent struct {
	Document *Document
	Element  *Element
	Name     QName
	OldValue string
	NewValue string
	Existed  bool
	Removed  bool
}

// NamespaceEvent describes a namespace declaration change on an element.
type NamespaceEvent struct {
	Document *Document
	Element  *Element
	Prefix   string
	OldURI   string
	NewURI   string
	Existed  bool
	Removed  bool
}

// ContentListener observes content changes.
type ContentListener interface {
	BeforeContentInserted(ContentEvent)
	ContentInserted(ContentEvent)
	BeforeContentDeleted(ContentEvent)
	ContentDeleted(ContentEvent)
}

// AttributeListener observes attribute changes.
type AttributeListener interface {
	BeforeAttributeChanged(AttributeEvent)
	AttributeChanged(AttributeEvent)
}

// NamespaceListener observes namespace declaration changes.
type NamespaceListener interface {
	BeforeNamespaceChanged(NamespaceEvent)
	NamespaceChanged(NamespaceEvent)
}

// ContentFuncs adapts functions to ContentListener. Nil fields are skipped.
type ContentFuncs struct {
	OnBeforeInsert func(ContentEvent)
	OnInsert       func(ContentEvent)
	OnBeforeDelete func(ContentEvent)
	OnDelete       func(ContentEvent)
}

func (f ContentFuncs) BeforeContentInserted(e ContentEvent) { call(f.OnBeforeInsert, e) }
func (f ContentFuncs) ContentInserted(e ContentEvent)       { call(f.OnInsert, e) }
func (f ContentFuncs) BeforeContentDeleted(e ContentEvent)  { call(f.OnBeforeDelete, e) }
func (f ContentFuncs) ContentDeleted(e ContentEvent)        { call(f.OnDelete, e) }

func call[E any](fn func(E), e E) {
	if fn != nil {
		fn(e)
	}
}

type listenerSet struct {
	nextID    int
	content   []entry[ContentListener]
	attribute []entry[AttributeListener]
	namespace []entry[NamespaceListener]
}

type entry[L any] struct {
	id int
	l  L
}

func remove[L any](list []entry[L], id int) []entry[L] {
	for i, e := range list {
		if e.id == id {
			return append(list[:i:i], list[i+1:]...)
		}
	}
	return list
}

// snapshot copies the list so listeners may unsubscribe while being notified.
func snapshot[L any](list []entry[L]) []L {
	out := make([]L, len(list))
	for i, e := range list {
		out[i] = e.l
	}
	return out
}

// AddContentListener registers l and returns a function that removes it.
func (d *Document) AddContentListener(l ContentListener) (unsubscribe func()) {
	d.listeners.nextID++
	id := d.listeners.nextID
	d.listeners.content = append(d.listeners.content, entry[ContentListener]{id: id, l: l})
	return func() { d.listeners.content = remove(d.listeners.content, id) }
}

// AddAttributeListener registers l and returns a function that removes it.
func (d *Document) AddAttributeListener(l AttributeListener) (unsubscribe func()) {
	d.listeners.nextID++
	id := d.listeners.nextID
	d.listeners.attribute = append(d.listeners.attribute, entry[AttributeListener]{id: id, l: l})
	return func() { d.listeners.attribute = remove(d.listeners.attribute, id) }
}

// AddNamespaceListener registers l and returns a function that removes it.
func (d *Document) AddNamespaceListener(l NamespaceListener) (unsubscribe func()) {
	d.listeners.nextID++
	id := d.listeners.nextID
	d.listeners.namespace = append(d.listeners.namespace, entry[NamespaceListener]{id: id, l: l})
	return func() { d.listeners.namespace = remove(d.listeners.namespace, id) }
}

// notify runs fn for each listener with mutation blocked.
func notify[L any](d *Document, list []entry[L], fn func(L)) {
	if len(list) == 0 {
		return
	}
	d.notifying++
	defer func() { d.notifying-- }()
	for _, l := range snapshot(list) {
		fn(l)
	}
}

func (d *Document) checkMutable() error {
	if d.notifying > 0 {
		return ErrReentrantMutation
	}
	return nil
}

func (d *Document) fireBeforeInsert(e ContentEvent) {
	notify(d, d.listeners.content, func(l ContentListener) { l.BeforeContentInserted(e) })
}

func (d *Document) fireInserted(e ContentEvent) {
	notify(d, d.listeners.content, func(l ContentListener) { l.ContentInserted(e) })
}

func (d *Document) fireBeforeDelete(e ContentEvent) {
	notify(d, d.listeners.content, func(l ContentListener) { l.BeforeContentDeleted(e) })
}

func (d *Document) fireDeleted(e ContentEvent) {
	notify(d, d.listeners.content, func(l ContentListener) { l.ContentDeleted(e) })
}

func (d *Document) fireBeforeAttribute(e AttributeEvent) {
	notify(d, d.listeners.attribute, func(l AttributeListener) { l.BeforeAttributeChanged(e) })
}

func (d *Document) fireAttribute(e AttributeEvent) {
	notify(d, d.listeners.attribute, func(l AttributeListener) { l.AttributeChanged(e) })
}

func (d *Document) fireBeforeNamespace(e NamespaceEvent) {
	notify(d, d.listeners.namespace, func(l NamespaceListener) { l.BeforeNamespaceChanged(e) })
}

func (d *Document) fireNamespace(e NamespaceEvent) {
	notify(d, d.listeners.namespace, func(l NamespaceListener) { l.NamespaceChanged(e) })
}
