// Package engine provides the editor session for Vex.
//
// The engine package is the facade that combines a document tree, its box
// layout, a content map, a cursor, and an edit stack into a single API.
//
// # Architecture
//
// The engine is built on several sub-packages:
//
//   - content: gap buffer with tag markers and tracked positions
//   - dom: node tree over the content store, validation, undoable edits
//   - history: undo/redo stack with nested transactions
//   - cursor: caret and selection moving over a content map
//
// Layout lives in internal/layout and internal/layout/contentmap.
//
// # Thread Safety
//
// All Engine operations are safe for concurrent use. Reads of the document
// take a read lock; anything that may rebuild the layout takes the write
// lock, because layout is rebuilt lazily on the first query after a change.
//
// # Basic Usage
//
//	e := engine.New(engine.WithWidth(40))
//
//	// The caret starts inside the root element.
//	para, _ := e.InsertElement(dom.QName{Local: "para"})
//	_ = e.InsertText("Hello")
//	e.Left()
//	_ = e.DeleteBackward()
//
//	_ = e.Undo()
//	_ = e.Redo()
//
// # Transactions
//
// Several edits can be grouped into one undo unit:
//
//	e.BeginWork()
//	_ = e.InsertText("a")
//	_ = e.InsertText("b")
//	_ = e.CommitWork() // or RollbackWork to discard both
//
// Moving the cursor seals the current undo entry, so typing after a move
// starts a new one.
package engine
