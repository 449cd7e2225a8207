package xmlio

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dshills/vex/internal/engine/dom"
)

// Errors returned by Read.
var (
	ErrNoRoot      = errors.New("xml input has no root element")
	ErrMultiRoot   = errors.New("xml input has more than one root element")
	ErrStrayText   = errors.New("character data outside the root element")
	ErrUnsupported = errors.New("unsupported xml construct")
)

// Read parses XML from r into a new document. opts are passed to dom.New;
// a validator given there sees every insertion made while loading.
func Read(r io.Reader, opts ...dom.Option) (*dom.Document, error) {
	dec := xml.NewDecoder(r)
	dec.Strict = true

	var (
		doc    *dom.Document
		stack  []*dom.Element
		prolog []xml.Token
		closed bool
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			name := qname(t.Name)
			var el *dom.Element
			switch {
			case doc == nil:
				doc = dom.New(name, opts...)
				el = doc.Root()
				for _, p := range prolog {
					if err := insertMarkup(doc, el.StartOffset(), p); err != nil {
						return nil, err
					}
				}
				prolog = nil
			case closed:
				return nil, ErrMultiRoot
			default:
				el, err = doc.InsertElement(stack[len(stack)-1].EndOffset(), name)
				if err != nil {
					return nil, fmt.Errorf("element %s: %w", name, err)
				}
			}
			if err := setAttributes(doc, el, t.Attr); err != nil {
				return nil, err
			}
			stack = append(stack, el)

		case xml.EndElement:
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				closed = true
			}

		case xml.CharData:
			if len(stack) == 0 {
				if strings.TrimSpace(string(t)) != "" {
					return nil, ErrStrayText
				}
				continue
			}
			if err := doc.InsertText(stack[len(stack)-1].EndOffset(), string(t)); err != nil {
				return nil, fmt.Errorf("text: %w", err)
			}

		case xml.Comment, xml.ProcInst:
			if pi, ok := t.(xml.ProcInst); ok && strings.EqualFold(pi.Target, "xml") {
				continue
			}
			switch {
			case doc == nil:
				prolog = append(prolog, xml.CopyToken(t))
			case len(stack) == 0:
				if err := insertMarkup(doc, doc.EndOffset(), t); err != nil {
					return nil, err
				}
			default:
				if err := insertMarkup(doc, stack[len(stack)-1].EndOffset(), t); err != nil {
					return nil, err
				}
			}

		case xml.Directive:
			// DOCTYPE and friends carry nothing the tree can hold.
		}
	}

	if doc == nil {
		return nil, ErrNoRoot
	}
	return doc, nil
}

func qname(n xml.Name) dom.QName {
	return dom.QName{Space: n.Space, Local: n.Local}
}

func setAttributes(doc *dom.Document, el *dom.Element, attrs []xml.Attr) error {
	for _, a := range attrs {
		var err error
		switch {
		case a.Name.Space == "xmlns":
			err = doc.DeclareNamespace(el, a.Name.Local, a.Value)
		case a.Name.Space == "" && a.Name.Local == "xmlns":
			err = doc.DeclareNamespace(el, "", a.Value)
		default:
			err = doc.SetAttribute(el, qname(a.Name), a.Value)
		}
		if err != nil {
			return fmt.Errorf("attribute %s on %s: %w", a.Name.Local, el.Name(), err)
		}
	}
	return nil
}

// insertMarkup inserts a comment or processing instruction before offset
// and fills in its text.
func insertMarkup(doc *dom.Document, offset int, tok xml.Token) error {
	switch t := tok.(type) {
	case xml.Comment:
		c, err := doc.InsertComment(offset)
		if err != nil {
			return fmt.Errorf("comment: %w", err)
		}
		return doc.InsertText(c.EndOffset(), string(t))
	case xml.ProcInst:
		pi, err := doc.InsertProcessingInstruction(offset, t.Target)
		if err != nil {
			return fmt.Errorf("processing instruction: %w", err)
		}
		return doc.InsertText(pi.EndOffset(), string(t.Inst))
	default:
		return fmt.Errorf("%w: %T", ErrUnsupported, tok)
	}
}
