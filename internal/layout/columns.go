package layout

// ColumnSpan is an inclusive range of 1-based column indices.
type ColumnSpan struct {
	Start, End int
}

// TableColumnLayout assigns 1-based indices to table columns and resolves
// column names. A nested layout looks names up in its parent when they are
// not defined locally.
type TableColumnLayout struct {
	parent *TableColumnLayout
	last   int
	spans  map[string]ColumnSpan
}

// NewTableColumnLayout creates an empty layout. parent may be nil.
func NewTableColumnLayout(parent *TableColumnLayout) *TableColumnLayout {
	return &TableColumnLayout{parent: parent, spans: make(map[string]ColumnSpan)}
}

// AddColumn adds a column and returns its index. Index 0 appends after the
// last column. An index past the last column is used as given; an index at
// or before it inserts the column there and shifts later columns right.
// name may be empty.
func (l *TableColumnLayout) AddColumn(index int, name string) int {
	switch {
	case index <= 0:
		index = l.last + 1
		l.last = index
	case index > l.last:
		l.last = index
	default:
		for n, s := range l.spans {
			if s.Start >= index {
				s.Start++
			}
			if s.End >= index {
				s.End++
			}
			l.spans[n] = s
		}
		l.last++
	}
	if name != "" {
		l.spans[name] = ColumnSpan{Start: index, End: index}
	}
	return index
}

// AddSpan names the columns start through end, adding columns as needed.
func (l *TableColumnLayout) AddSpan(start, end int, name string) {
	if end < start {
		start, end = end, start
	}
	start = max(start, 1)
	end = max(end, start)
	l.last = max(l.last, end)
	if name != "" {
		l.spans[name] = ColumnSpan{Start: start, End: end}
	}
}

// Index returns the first column index of name, or 0 if it is unknown.
func (l *TableColumnLayout) Index(name string) int {
	s, ok := l.Span(name)
	if !ok {
		return 0
	}
	return s.Start
}

// Span returns the columns named name.
func (l *TableColumnLayout) Span(name string) (ColumnSpan, bool) {
	for t := l; t != nil; t = t.parent {
		if s, ok := t.spans[name]; ok {
			return s, true
		}
	}
	return ColumnSpan{}, false
}

// LastIndex returns the index of the last column.
func (l *TableColumnLayout) LastIndex() int { return l.last }
