package validate

import (
	"fmt"

	"github.com/dshills/vex/internal/engine/dom"
)

// Problem is an element whose children fail complete validation.
type Problem struct {
	Element  dom.QName
	Offset   int
	Sequence []dom.QName
}

// String describes the problem.
func (p Problem) String() string {
	return fmt.Sprintf("%d: <%s> has invalid content %v", p.Offset, p.Element, p.Sequence)
}

// Check validates every element of doc against v and returns the elements
// that fail, in document order.
func Check(doc *dom.Document, v dom.Validator) []Problem {
	var problems []Problem
	var walk func(el *dom.Element)
	walk = func(el *dom.Element) {
		seq := doc.Sequence(el)
		if !v.Validate(el.Name(), seq, false) {
			problems = append(problems, Problem{Element: el.Name(), Offset: el.StartOffset(), Sequence: seq})
		}
		for _, c := range el.ChildElements() {
			walk(c)
		}
	}
	if root := doc.Root(); root != nil {
		walk(root)
	}
	return problems
}
