// Package history provides undo/redo for document edits.
//
// Every change to a document is wrapped in an Edit that knows how to undo
// and redo itself. A Stack applies edits, keeps the undone ones for redo,
// and coalesces consecutive edits that agree to Combine (typing a word
// undoes as one unit).
//
// # Transactions
//
// BeginWork, CommitWork and RollbackWork nest:
//
//	stack.BeginWork()
//	// ... apply edits ...
//	stack.CommitWork()
//
// Only the outermost CommitWork records the collected edits, as a single
// undoable CompoundEdit. RollbackWork undoes the edits applied since the
// matching BeginWork, newest first, and discards them; they never reach the
// redo buffer.
package history
