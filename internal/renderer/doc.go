// Package renderer paints a layout box tree onto a tcell screen.
//
// Box coordinates are taken as terminal cells, so the tree must be laid out
// with metrics.Cells. Text is drawn with its resolved font weight, slant and
// color; the selection is drawn in reverse video and the caret with the
// terminal cursor. The view scrolls vertically to keep the caret visible,
// and an optional status line occupies the bottom row.
package renderer
