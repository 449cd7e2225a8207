// Package cursor moves the caret of a laid-out document.
//
// A Cursor sits on a contentmap.Map and only rests on caret positions:
// grapheme boundaries of text, placeholders and the starts of inline
// nodes. Horizontal moves step to the neighbouring caret position. Vertical
// moves project a preferred x coordinate onto the row above or below; the
// preferred x is captured on the first vertical move and kept until any
// other move.
//
// Selections use an anchor/head model:
//
//	c.ToOffset(10)
//	c.SelectRight() // anchor 10, head 11
//
// When the map is rebuilt after an edit, SetContentMap rebinds the cursor
// and clamps it into the new document. AfterInsert and AfterDelete shift
// offsets across an edit before that happens.
//
// Cursor is not safe for concurrent use.
package cursor
