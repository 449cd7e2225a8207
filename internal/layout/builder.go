package layout

import (
	"strings"

	"github.com/dshills/vex/internal/engine/dom"
	"github.com/dshills/vex/internal/metrics"
	"github.com/dshills/vex/internal/style"
)

// Builder converts a document into an unpositioned box tree.
type Builder struct {
	styles style.Provider
	g      metrics.Graphics
}

// NewBuilder creates a builder resolving styles through styles and
// measuring text with g.
func NewBuilder(styles style.Provider, g metrics.Graphics) *Builder {
	return &Builder{styles: styles, g: g}
}

// Build creates the box tree of doc. The root element is always a block;
// comments and processing instructions beside it become paragraphs.
func (b *Builder) Build(doc *dom.Document) *RootBox {
	root := &RootBox{nodeRange: nodeRange{node: doc.ID(), rng: doc.Range()}}
	docStyles := b.styles.Styles(doc)
	var run []InlineBox
	for _, n := range doc.ChildNodes() {
		st := b.styles.Styles(n)
		if st.Display == style.DisplayNone {
			continue
		}
		if e, ok := n.(*dom.Element); ok {
			if len(run) > 0 {
				root.children = append(root.children, newParagraph(run))
				run = nil
			}
			if !st.IsBlockLevel() {
				st.Display = style.DisplayBlock
			}
			root.children = append(root.children, b.block(e, st, nil))
			continue
		}
		run = append(run, b.inlines(n, st, docStyles)...)
	}
	if len(run) > 0 {
		root.children = append(root.children, newParagraph(run))
	}
	return root
}

// block builds the box of a block-level element, framed when it has insets.
func (b *Builder) block(e *dom.Element, st *style.Styles, cols *TableColumnLayout) block {
	nr := nodeRange{node: e.ID(), rng: e.Range()}
	var inner block
	switch st.Display {
	case style.DisplayTable:
		inner = b.table(e, st, cols)
	case style.DisplayTableRow:
		inner = b.row(e, st, NewTableColumnLayout(cols))
	default:
		inner = &VerticalBlock{stack: stack{children: b.flow(e, st, cols)}, nodeRange: nr}
	}
	if ins := st.Insets(); !ins.IsZero() {
		return newFrame(ins, inner)
	}
	return inner
}

// flow builds the children of a block element. Consecutive inline content
// is gathered into paragraphs; the element's end offset gets a placeholder
// in the trailing paragraph.
func (b *Builder) flow(e *dom.Element, st *style.Styles, cols *TableColumnLayout) []block {
	var (
		out []block
		run []InlineBox
	)
	if st.Before != "" {
		run = append(run, b.static(st.Before, st))
	}
	for _, n := range e.ChildNodes() {
		if t, ok := n.(*dom.Text); ok {
			run = append(run, b.text(t, st)...)
			continue
		}
		cst := b.styles.Styles(n)
		if cst.Display == style.DisplayNone {
			continue
		}
		if ce, ok := n.(*dom.Element); ok && cst.IsBlockLevel() {
			if len(run) > 0 {
				out = append(out, newParagraph(run))
				run = nil
			}
			out = append(out, b.block(ce, cst, cols))
			continue
		}
		run = append(run, b.inlines(n, cst, st)...)
	}
	run = append(run, newPlaceholder(e.EndOffset(), b.g.Metrics(st.Font)))
	if st.After != "" {
		run = append(run, b.static(st.After, st))
	}
	return append(out, newParagraph(run))
}

// inlines builds the inline boxes of n, whose parent has styles parent.
func (b *Builder) inlines(n dom.Node, st, parent *style.Styles) []InlineBox {
	switch node := n.(type) {
	case *dom.Text:
		return b.text(node, parent)
	case *dom.Element, *dom.Comment, *dom.ProcessingInstruction:
		return []InlineBox{b.container(n, st)}
	}
	return nil
}

// container builds the inline box of an element, comment or processing
// instruction. Block-level descendants are laid out inline.
func (b *Builder) container(n dom.Node, st *style.Styles) *InlineContainer {
	var children []InlineBox
	before := st.Before
	if pi, ok := n.(*dom.ProcessingInstruction); ok {
		before += pi.Target() + " "
	}
	if before != "" {
		children = append(children, b.static(before, st))
	}
	switch node := n.(type) {
	case *dom.Element:
		for _, c := range node.ChildNodes() {
			if t, ok := c.(*dom.Text); ok {
				children = append(children, b.text(t, st)...)
				continue
			}
			cst := b.styles.Styles(c)
			if cst.Display == style.DisplayNone {
				continue
			}
			children = append(children, b.inlines(c, cst, st)...)
		}
	default:
		if r := n.Range(); r.Len() > 2 {
			children = append(children, b.textAt(r.Start+1, n.Text(), st)...)
		}
	}
	fm := b.g.Metrics(st.Font)
	children = append(children, newPlaceholder(n.EndOffset(), fm))
	if st.After != "" {
		children = append(children, b.static(st.After, st))
	}
	return newInlineContainer(n, fm, children)
}

func (b *Builder) text(t *dom.Text, st *style.Styles) []InlineBox {
	return b.textAt(t.StartOffset(), t.Text(), st)
}

// textAt builds text boxes for the characters starting at offset. In pre
// mode the text is cut after every newline and each piece ends its line.
func (b *Builder) textAt(offset int, text string, st *style.Styles) []InlineBox {
	ts := textStyle{font: st.Font, color: st.Color}
	pre := st.WhiteSpace == style.WhiteSpacePre
	if !pre {
		return []InlineBox{newTextContent(offset, text, ts, b.g, false, false)}
	}
	var out []InlineBox
	for text != "" {
		piece, rest, found := strings.Cut(text, "\n")
		if found {
			piece += "\n"
		}
		out = append(out, newTextContent(offset, piece, ts, b.g, true, found))
		offset += len([]rune(piece))
		text = rest
	}
	return out
}

func (b *Builder) static(text string, st *style.Styles) *StaticText {
	return newStaticText(text, textStyle{font: st.Font, color: st.Color}, b.g)
}

// table builds a table. Rows share the table's column layout; other
// children stack between them.
func (b *Builder) table(e *dom.Element, st *style.Styles, parent *TableColumnLayout) *Table {
	t := &Table{nodeRange: nodeRange{node: e.ID(), rng: e.Range()}, columns: NewTableColumnLayout(parent)}
	var run []InlineBox
	flush := func() {
		if len(run) > 0 {
			t.children = append(t.children, newParagraph(run))
			run = nil
		}
	}
	for _, n := range e.ChildNodes() {
		if tn, ok := n.(*dom.Text); ok {
			if strings.TrimSpace(tn.Text()) != "" || len(run) > 0 {
				run = append(run, b.text(tn, st)...)
			}
			continue
		}
		cst := b.styles.Styles(n)
		ce, isElem := n.(*dom.Element)
		switch {
		case cst.Display == style.DisplayNone:
		case isElem && cst.Display == style.DisplayTableRow:
			flush()
			t.children = append(t.children, b.row(ce, cst, t.columns))
		case isElem && cst.IsBlockLevel():
			flush()
			t.children = append(t.children, b.block(ce, cst, t.columns))
		default:
			run = append(run, b.inlines(n, cst, st)...)
		}
	}
	run = append(run, newPlaceholder(e.EndOffset(), b.g.Metrics(st.Font)))
	flush()
	if t.columns.LastIndex() == 0 {
		t.columns.AddColumn(0, "")
	}
	return t
}

// row builds a table row. Cells take the column named by their column
// style or the next free column; loose content between cells is gathered
// into generated cells.
func (b *Builder) row(e *dom.Element, rst *style.Styles, cols *TableColumnLayout) *TableRow {
	r := &TableRow{nodeRange: nodeRange{node: e.ID(), rng: e.Range()}}
	next := 1
	place := func(name, endName string) ColumnSpan {
		var s ColumnSpan
		if name != "" {
			if s.Start = cols.Index(name); s.Start == 0 {
				s.Start = cols.AddColumn(0, name)
			}
		} else {
			s.Start = next
			if s.Start > cols.LastIndex() {
				cols.AddColumn(s.Start, "")
			}
		}
		s.End = s.Start
		if endName != "" {
			if s.End = cols.Index(endName); s.End == 0 {
				s.End = cols.AddColumn(0, endName)
			}
			s.End = max(s.End, s.Start)
		}
		next = s.End + 1
		return s
	}

	var loose []InlineBox
	flush := func() {
		if len(loose) == 0 {
			return
		}
		c := &TableCell{span: place("", "")}
		c.children = []block{newParagraph(loose)}
		r.cells = append(r.cells, c)
		loose = nil
	}
	for _, n := range e.ChildNodes() {
		if tn, ok := n.(*dom.Text); ok {
			if strings.TrimSpace(tn.Text()) != "" || len(loose) > 0 {
				loose = append(loose, b.text(tn, rst)...)
			}
			continue
		}
		cst := b.styles.Styles(n)
		if cst.Display == style.DisplayNone {
			continue
		}
		ce, isElem := n.(*dom.Element)
		if !isElem || cst.Display != style.DisplayTableCell {
			loose = append(loose, b.inlines(n, cst, rst)...)
			continue
		}
		flush()
		r.cells = append(r.cells, b.cell(ce, cst, place(cst.Column, cst.ColumnEnd), cols))
	}
	flush()
	return r
}

func (b *Builder) cell(e *dom.Element, st *style.Styles, span ColumnSpan, cols *TableColumnLayout) *TableCell {
	c := &TableCell{nodeRange: nodeRange{node: e.ID(), rng: e.Range()}, span: span}
	content := &VerticalBlock{stack: stack{children: b.flow(e, st, cols)}, nodeRange: c.nodeRange}
	if ins := st.Insets(); !ins.IsZero() {
		c.children = []block{newFrame(ins, content)}
	} else {
		c.children = content.children
	}
	return c
}
