// Package validate provides document validators: a YAML content-model
// schema, an accept-everything validator, and whole-document checking.
package validate

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/dshills/vex/internal/engine/dom"
)

// ErrInvalidSchema indicates a schema that cannot be parsed.
var ErrInvalidSchema = errors.New("invalid schema")

// AnyElement in a children list allows every element.
const AnyElement = "*"

// AllowAll accepts every sequence.
var AllowAll dom.Validator = dom.ValidatorFunc(func(dom.QName, []dom.QName, bool) bool { return true })

// Rule is the content model of one element.
type Rule struct {
	// Children lists the element names allowed as children, by local name
	// or Clark name. AnyElement allows all.
	Children []string `yaml:"children"`
	// Text allows non-whitespace character data.
	Text bool `yaml:"text"`
	// Required lists children that a complete sequence must contain.
	Required []string `yaml:"required"`
}

// Schema maps element names to content models:
//
//	strict: false
//	elements:
//	  book:
//	    children: [title, chapter]
//	    required: [title]
//	  title:
//	    text: true
//
// Elements are looked up by Clark name, then by local name. Elements the
// schema does not mention accept anything unless Strict is set.
type Schema struct {
	Strict   bool            `yaml:"strict"`
	Elements map[string]Rule `yaml:"elements"`
}

var _ dom.Validator = (*Schema)(nil)

// ParseSchema parses YAML schema data.
func ParseSchema(data []byte) (*Schema, error) {
	var s Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSchema, err)
	}
	if s.Elements == nil {
		s.Elements = map[string]Rule{}
	}
	return &s, nil
}

// LoadSchema reads a YAML schema file.
func LoadSchema(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading schema %s: %w", path, err)
	}
	s, err := ParseSchema(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Rule returns the content model of name.
func (s *Schema) Rule(name dom.QName) (Rule, bool) {
	if r, ok := s.Elements[name.String()]; ok {
		return r, true
	}
	r, ok := s.Elements[name.Local]
	return r, ok
}

// Names returns every element the schema declares, sorted.
func (s *Schema) Names() []dom.QName {
	out := make([]dom.QName, 0, len(s.Elements))
	for k := range s.Elements {
		out = append(out, dom.ParseQName(k))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// Validate checks sequence against the content model of parent. A partial
// sequence skips the required-children check.
func (s *Schema) Validate(parent dom.QName, sequence []dom.QName, partial bool) bool {
	rule, ok := s.Rule(parent)
	if !ok {
		return !s.Strict
	}
	for _, q := range sequence {
		if q == dom.PCDATA {
			if !rule.Text {
				return false
			}
			continue
		}
		if !matches(rule.Children, q) {
			return false
		}
	}
	if partial {
		return true
	}
	for _, req := range rule.Required {
		if !slices.ContainsFunc(sequence, func(q dom.QName) bool { return matchName(req, q) }) {
			return false
		}
	}
	return true
}

func matches(names []string, q dom.QName) bool {
	for _, n := range names {
		if n == AnyElement || matchName(n, q) {
			return true
		}
	}
	return false
}

func matchName(name string, q dom.QName) bool {
	return name == q.String() || name == q.Local
}
