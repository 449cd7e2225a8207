package engine

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/dshills/vex/internal/engine/dom"
)

// ValidInsertElements filters candidates down to the element names the
// validator accepts at the caret.
func (e *Engine) ValidInsertElements(candidates []dom.QName) []dom.QName {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ensureLayout()
	return e.doc.ValidInsertElements(e.cursor.Offset(), candidates)
}

// SuggestElements returns the candidates valid at the caret, closest to
// query first. Names starting with query rank ahead of the rest; ties are
// broken by edit distance, then by name.
func (e *Engine) SuggestElements(query string, candidates []dom.QName) []dom.QName {
	valid := e.ValidInsertElements(candidates)
	q := strings.ToLower(query)

	type scored struct {
		name   dom.QName
		prefix bool
		dist   int
	}
	ranked := make([]scored, len(valid))
	for i, name := range valid {
		local := strings.ToLower(name.Local)
		ranked[i] = scored{
			name:   name,
			prefix: q != "" && strings.HasPrefix(local, q),
			dist:   levenshtein.ComputeDistance(q, local),
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.prefix != b.prefix {
			return a.prefix
		}
		if a.dist != b.dist {
			return a.dist < b.dist
		}
		return a.name.Less(b.name)
	})

	out := make([]dom.QName, len(ranked))
	for i, s := range ranked {
		out[i] = s.name
	}
	return out
}
