package layout

import (
	"fmt"
	"io"
	"strings"
)

// Dump writes the box tree rooted at b, one box per line, indented by depth
// and followed by its absolute position and size.
func Dump(w io.Writer, b Box) error {
	var err error
	Visit(b, func(b Box, top, left, depth int) bool {
		if err != nil {
			return false
		}
		_, err = fmt.Fprintf(w, "%s%s @%d,%d %dx%d\n", strings.Repeat("  ", depth), describe(b), top, left, b.Width(), b.Height())
		return true
	})
	return err
}

func describe(b Box) string {
	if s, ok := b.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", b)
}
