// Package style resolves the visual properties of document nodes.
//
// A Provider answers, for any node, the Styles the layout engine needs:
// display type, font, color, insets, white-space handling, table column
// placement and generated text. Sheet is the JSON-backed provider used by
// the editor.
package style

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/dshills/vex/internal/engine/dom"
	"github.com/dshills/vex/internal/metrics"
)

// Display is the box kind a node generates.
type Display int

const (
	DisplayInline Display = iota
	DisplayBlock
	DisplayTable
	DisplayTableRow
	DisplayTableCell
	DisplayNone
)

var displayNames = map[Display]string{
	DisplayInline:    "inline",
	DisplayBlock:     "block",
	DisplayTable:     "table",
	DisplayTableRow:  "table-row",
	DisplayTableCell: "table-cell",
	DisplayNone:      "none",
}

// String returns the stylesheet name of the display type.
func (d Display) String() string {
	if s, ok := displayNames[d]; ok {
		return s
	}
	return fmt.Sprintf("Display(%d)", int(d))
}

// ParseDisplay parses a stylesheet display name.
func ParseDisplay(s string) (Display, bool) {
	for d, name := range displayNames {
		if name == s {
			return d, true
		}
	}
	return DisplayInline, false
}

// WhiteSpace controls how character data is wrapped.
type WhiteSpace int

const (
	// WhiteSpaceNormal wraps at break opportunities.
	WhiteSpaceNormal WhiteSpace = iota
	// WhiteSpacePre breaks only at newlines.
	WhiteSpacePre
)

// Insets are four independently settable edge widths.
type Insets struct {
	Top, Right, Bottom, Left int
}

// IsZero reports whether all edges are zero.
func (i Insets) IsZero() bool { return i == Insets{} }

// Horizontal returns Left + Right.
func (i Insets) Horizontal() int { return i.Left + i.Right }

// Vertical returns Top + Bottom.
func (i Insets) Vertical() int { return i.Top + i.Bottom }

// Add returns the edge-wise sum of i and o.
func (i Insets) Add(o Insets) Insets {
	return Insets{Top: i.Top + o.Top, Right: i.Right + o.Right, Bottom: i.Bottom + o.Bottom, Left: i.Left + o.Left}
}

// Clamp returns i with negative edges set to zero.
func (i Insets) Clamp() Insets {
	return Insets{Top: max(i.Top, 0), Right: max(i.Right, 0), Bottom: max(i.Bottom, 0), Left: max(i.Left, 0)}
}

// Styles are the resolved properties of one node.
type Styles struct {
	Display    Display
	Font       metrics.Font
	Color      colorful.Color
	Margin     Insets
	Border     Insets
	Padding    Insets
	WhiteSpace WhiteSpace

	// Column names the table column a cell starts in; ColumnEnd, if set,
	// names the column it spans to.
	Column    string
	ColumnEnd string

	// Before and After are generated text placed around the node content.
	Before string
	After  string
}

// Insets returns margin, border and padding combined.
func (s *Styles) Insets() Insets {
	return s.Margin.Add(s.Border).Add(s.Padding).Clamp()
}

// IsBlockLevel reports whether the node stacks vertically.
func (s *Styles) IsBlockLevel() bool {
	return s.Display != DisplayInline && s.Display != DisplayNone
}

// inherited copies the properties children inherit.
func (s *Styles) inherited() *Styles {
	return &Styles{
		Display:    DisplayInline,
		Font:       s.Font,
		Color:      s.Color,
		WhiteSpace: s.WhiteSpace,
	}
}

// Provider resolves styles for document nodes.
type Provider interface {
	Styles(n dom.Node) *Styles
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(n dom.Node) *Styles

// Styles calls f.
func (f ProviderFunc) Styles(n dom.Node) *Styles { return f(n) }
