package xmlio

import (
	"bufio"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/dshills/vex/internal/engine/dom"
)

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	attrEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;",
		`"`, "&quot;", "\n", "&#xA;", "\r", "&#xD;", "\t", "&#x9;")
)

// Write serializes doc as XML to w. Names whose namespace has no
// declaration in scope get one on the element that uses them.
func Write(w io.Writer, doc *dom.Document) error {
	xw := &writer{w: bufio.NewWriter(w)}
	xw.push(map[string]string{"": ""})
	for _, n := range doc.ChildNodes() {
		switch n.(type) {
		case *dom.Element:
			xw.node(n)
		case *dom.Comment, *dom.ProcessingInstruction:
			xw.node(n)
			xw.str("\n")
		}
	}
	return xw.w.Flush()
}

type writer struct {
	w      *bufio.Writer
	scopes []map[string]string
}

func (x *writer) str(s string) {
	// bufio.Writer keeps the first error and reports it from Flush.
	_, _ = x.w.WriteString(s)
}

func (x *writer) push(decls map[string]string) {
	x.scopes = append(x.scopes, decls)
}

func (x *writer) pop() {
	x.scopes = x.scopes[:len(x.scopes)-1]
}

// lookup returns the URI bound to prefix in the current scope.
func (x *writer) lookup(prefix string) (string, bool) {
	for i := len(x.scopes) - 1; i >= 0; i-- {
		if uri, ok := x.scopes[i][prefix]; ok {
			return uri, true
		}
	}
	return "", false
}

// prefixFor finds an in-scope prefix bound to uri. The default namespace
// only qualifies when allowDefault is set.
func (x *writer) prefixFor(uri string, allowDefault bool) (string, bool) {
	if uri == dom.XMLNamespace {
		return "xml", true
	}
	seen := map[string]bool{}
	for i := len(x.scopes) - 1; i >= 0; i-- {
		prefixes := make([]string, 0, len(x.scopes[i]))
		for p := range x.scopes[i] {
			prefixes = append(prefixes, p)
		}
		sort.Strings(prefixes)
		for _, p := range prefixes {
			if seen[p] {
				continue
			}
			seen[p] = true
			if x.scopes[i][p] == uri && (p != "" || allowDefault) {
				return p, true
			}
		}
	}
	return "", false
}

func (x *writer) node(n dom.Node) {
	switch n := n.(type) {
	case *dom.Element:
		x.element(n)
	case *dom.Text:
		x.str(textEscaper.Replace(n.Text()))
	case *dom.Comment:
		x.str("<!--" + n.Text() + "-->")
	case *dom.ProcessingInstruction:
		x.str("<?" + n.Target())
		if text := n.Text(); text != "" {
			x.str(" " + text)
		}
		x.str("?>")
	}
}

func (x *writer) element(el *dom.Element) {
	decls := el.DeclaredNamespaces()
	x.push(decls)
	defer x.pop()

	name := el.Name()
	var tag string
	switch {
	case name.Space == "":
		if uri, _ := x.lookup(""); uri != "" {
			decls[""] = ""
		}
		tag = name.Local
	default:
		p, ok := x.prefixFor(name.Space, true)
		if !ok {
			decls[""] = name.Space
		}
		tag = qualified(p, name.Local)
	}

	attrs := el.Attributes()
	names := make([]string, len(attrs))
	generated := 0
	for i, a := range attrs {
		if a.Name.Space == "" {
			names[i] = a.Name.Local
			continue
		}
		p, ok := x.prefixFor(a.Name.Space, false)
		if !ok {
			generated++
			p = generatedPrefix(generated, x)
			decls[p] = a.Name.Space
		}
		names[i] = qualified(p, a.Name.Local)
	}

	x.str("<" + tag)
	prefixes := make([]string, 0, len(decls))
	for p := range decls {
		prefixes = append(prefixes, p)
	}
	sort.Strings(prefixes)
	for _, p := range prefixes {
		attr := "xmlns"
		if p != "" {
			attr += ":" + p
		}
		x.str(" " + attr + `="` + attrEscaper.Replace(decls[p]) + `"`)
	}
	for i, a := range attrs {
		x.str(" " + names[i] + `="` + attrEscaper.Replace(a.Value) + `"`)
	}

	children := el.ChildNodes()
	if len(children) == 0 {
		x.str("/>")
		return
	}
	x.str(">")
	for _, c := range children {
		x.node(c)
	}
	x.str("</" + tag + ">")
}

func qualified(prefix, local string) string {
	if prefix == "" {
		return local
	}
	return prefix + ":" + local
}

// generatedPrefix returns an unused prefix of the form nsN.
func generatedPrefix(n int, x *writer) string {
	for ; ; n++ {
		p := "ns" + strconv.Itoa(n)
		if _, taken := x.lookup(p); !taken {
			return p
		}
	}
}
