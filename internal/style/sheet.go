package style

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"

	"github.com/dshills/vex/internal/engine/dom"
)

// Selectors for non-element nodes.
const (
	CommentSelector = "#comment"
	PISelector      = "#pi"
)

// ErrInvalidSheet indicates malformed stylesheet JSON.
var ErrInvalidSheet = errors.New("invalid stylesheet")

// DefaultSheetJSON is the stylesheet used when none is configured.
const DefaultSheetJSON = `{
  "default": {"font": {"family": "mono", "size": 12}, "color": "#000000"},
  "elements": {
    "#comment": {"color": "#808080", "before": "<!--", "after": "-->"},
    "#pi": {"color": "#808080", "before": "<?", "after": "?>"}
  }
}`

// Sheet is a JSON stylesheet:
//
//	{
//	  "default":  {"font": {"family": "serif", "size": 12}},
//	  "elements": {
//	    "para":      {"display": "block", "margin": [1, 0, 1, 0]},
//	    "{urn:x}em": {"font": {"italic": true}},
//	    "#comment":  {"color": "#808080"}
//	  }
//	}
//
// Elements match by Clark name first, then by local name. Font, color and
// white-space are inherited from the parent node.
type Sheet struct {
	mu    sync.RWMutex
	raw   []byte
	doc   gjson.Result
	rules map[string]gjson.Result
}

// ParseSheet parses stylesheet JSON.
func ParseSheet(data []byte) (*Sheet, error) {
	s := &Sheet{}
	if err := s.set(data); err != nil {
		return nil, err
	}
	return s, nil
}

// LoadSheet reads a stylesheet file.
func LoadSheet(path string) (*Sheet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading stylesheet %s: %w", path, err)
	}
	s, err := ParseSheet(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// DefaultSheet returns the built-in stylesheet.
func DefaultSheet() *Sheet {
	s, err := ParseSheet([]byte(DefaultSheetJSON))
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Sheet) set(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setLocked(data)
}

// setLocked replaces the sheet content. s.mu must be held for writing.
func (s *Sheet) setLocked(data []byte) error {
	if !gjson.ValidBytes(data) {
		return ErrInvalidSheet
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return fmt.Errorf("%w: top level must be an object", ErrInvalidSheet)
	}
	rules := make(map[string]gjson.Result)
	doc.Get("elements").ForEach(func(key, value gjson.Result) bool {
		rules[key.String()] = value
		return true
	})

	s.raw = data
	s.doc = doc
	s.rules = rules
	return nil
}

// Set changes a property of a selector's rule. path uses dots for nested
// properties, e.g. "font.size".
func (s *Sheet) Set(selector, path string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := sjson.SetBytes(s.raw, ruleKey(selector)+"."+path, value)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSheet, err)
	}
	return s.setLocked(data)
}

// Delete removes a selector's rule.
func (s *Sheet) Delete(selector string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := sjson.DeleteBytes(s.raw, ruleKey(selector))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSheet, err)
	}
	return s.setLocked(data)
}

// Marshal returns the stylesheet as indented JSON.
func (s *Sheet) Marshal() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return pretty.Pretty(s.raw)
}

// Selectors returns the selectors that have rules.
func (s *Sheet) Selectors() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []string
	s.doc.Get("elements").ForEach(func(key, _ gjson.Result) bool {
		out = append(out, key.String())
		return true
	})
	return out
}

func ruleKey(selector string) string {
	if selector == "" {
		return "default"
	}
	return "elements." + escapeKey(selector)
}

// escapeKey escapes sjson path metacharacters in a selector.
func escapeKey(k string) string {
	out := make([]rune, 0, len(k))
	for _, r := range k {
		switch r {
		case '.', '*', '?', ':', '\\':
			out = append(out, '\\')
		}
		out = append(out, r)
	}
	return string(out)
}

// Styles resolves the styles of n.
func (s *Sheet) Styles(n dom.Node) *Styles {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.resolve(n)
}

func (s *Sheet) resolve(n dom.Node) *Styles {
	var st *Styles
	if p := n.Parent(); p != nil {
		st = s.resolve(p).inherited()
	} else {
		st = &Styles{Display: DisplayBlock}
		applyRule(st, s.doc.Get("default"))
		return st
	}

	switch node := n.(type) {
	case *dom.Element:
		rule := s.rule(node.Name().String())
		if !rule.Exists() {
			rule = s.rule(node.Name().Local)
		}
		applyRule(st, rule)
	case *dom.Comment:
		applyRule(st, s.rule(CommentSelector))
	case *dom.ProcessingInstruction:
		applyRule(st, s.rule(PISelector))
	case *dom.Text:
		st.Display = DisplayInline
	}
	return st
}

func (s *Sheet) rule(selector string) gjson.Result {
	return s.rules[selector]
}

func applyRule(st *Styles, r gjson.Result) {
	if !r.Exists() {
		return
	}
	if v := r.Get("display"); v.Exists() {
		if d, ok := ParseDisplay(v.String()); ok {
			st.Display = d
		}
	}
	if f := r.Get("font"); f.Exists() {
		if v := f.Get("family"); v.Exists() {
			st.Font.Family = v.String()
		}
		if v := f.Get("size"); v.Exists() {
			st.Font.Size = v.Float()
		}
		if v := f.Get("bold"); v.Exists() {
			st.Font.Bold = v.Bool()
		}
		if v := f.Get("italic"); v.Exists() {
			st.Font.Italic = v.Bool()
		}
	}
	if v := r.Get("color"); v.Exists() {
		if c, err := colorful.Hex(v.String()); err == nil {
			st.Color = c
		}
	}
	if v := r.Get("margin"); v.Exists() {
		st.Margin = parseInsets(v)
	}
	if v := r.Get("border"); v.Exists() {
		st.Border = parseInsets(v)
	}
	if v := r.Get("padding"); v.Exists() {
		st.Padding = parseInsets(v)
	}
	if v := r.Get("whiteSpace"); v.Exists() {
		if v.String() == "pre" {
			st.WhiteSpace = WhiteSpacePre
		} else {
			st.WhiteSpace = WhiteSpaceNormal
		}
	}
	if v := r.Get("column"); v.Exists() {
		st.Column = v.String()
	}
	if v := r.Get("columnEnd"); v.Exists() {
		st.ColumnEnd = v.String()
	}
	if v := r.Get("before"); v.Exists() {
		st.Before = v.String()
	}
	if v := r.Get("after"); v.Exists() {
		st.After = v.String()
	}
}

// parseInsets accepts a number for all edges, [vertical, horizontal],
// [top, right, bottom, left] or an object with named edges.
func parseInsets(v gjson.Result) Insets {
	switch {
	case v.IsArray():
		a := v.Array()
		switch len(a) {
		case 2:
			y, x := int(a[0].Int()), int(a[1].Int())
			return Insets{Top: y, Right: x, Bottom: y, Left: x}
		case 4:
			return Insets{Top: int(a[0].Int()), Right: int(a[1].Int()), Bottom: int(a[2].Int()), Left: int(a[3].Int())}
		}
		return Insets{}
	case v.IsObject():
		return Insets{
			Top:    int(v.Get("top").Int()),
			Right:  int(v.Get("right").Int()),
			Bottom: int(v.Get("bottom").Int()),
			Left:   int(v.Get("left").Int()),
		}
	default:
		n := int(v.Int())
		return Insets{Top: n, Right: n, Bottom: n, Left: n}
	}
}
