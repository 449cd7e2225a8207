// Package dom provides the structured document tree of the editor.
//
// A Document is an arena of nodes keyed by NodeID. Element, comment and
// processing instruction nodes each own a pair of tag markers in the
// document's content store; their ranges are read from store-tracked
// positions, so they never go stale when content is inserted or deleted
// elsewhere. Text nodes are not stored: ChildNodes synthesizes them from the
// character runs between structural siblings.
//
// The document node owns the outermost pair of markers, so for a new
// document with root element "book":
//
//	offset:  0     1      2      3
//	rune:    <doc  <book  book>  doc>
//
// Mutations are all-or-nothing. Each one is checked against the optional
// Validator before anything changes, and listeners are notified before and
// after the store is modified:
//
//	doc := dom.New(dom.QName{Local: "book"})
//	title, _ := doc.InsertElement(doc.Root().EndOffset(), dom.QName{Local: "title"})
//	_ = doc.InsertText(title.EndOffset(), "Moby Dick")
//
// Every mutation has a matching undoable edit (InsertTextEdit, DeleteEdit,
// ...) that implements history.Edit.
package dom
