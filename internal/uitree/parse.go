package uitree

import (
	"bytes"
	"errors"

	"github.com/antchfx/xmlquery"
)

// ParseDocument parses a raw dump into an xmlquery document, failing with
// *ParseError when the markup is malformed or has no root element.
func ParseDocument(raw []byte) (*xmlquery.Node, error) {
	doc, err := xmlquery.Parse(bytes.NewReader(raw))
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	if rootElement(doc) == nil {
		return nil, &ParseError{Err: errors.New("no root element")}
	}
	return doc, nil
}

// Parse builds a Tree from a raw dump. Nodes whose bounds are present but
// unparsable get InvalidRect and a warning; the parse itself carries on.
func Parse(raw []byte) (*Tree, []InvalidBoundsWarning, error) {
	doc, err := ParseDocument(raw)
	if err != nil {
		return nil, nil, err
	}
	t := &Tree{doc: doc, raw: raw}
	var warnings []InvalidBoundsWarning

	type item struct {
		src    *xmlquery.Node
		parent int
	}
	stack := []item{{src: rootElement(doc), parent: -1}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		n := Node{
			Tag:    it.src.Data,
			Attrs:  make(map[string]string, len(it.src.Attr)),
			Bounds: InvalidRect,
			Parent: it.parent,
			name:   it.src.Data,
			src:    it.src,
		}
		for _, a := range it.src.Attr {
			n.Attrs[a.Name.Local] = a.Value
		}
		if bs, ok := n.Attrs[AttrBounds]; ok {
			b, err := ParseBounds(bs)
			if err != nil {
				warnings = append(warnings, InvalidBoundsWarning{Class: n.Class(), Bounds: bs, Reason: "unparsable"})
			}
			n.Bounds = b
		}

		idx := len(t.nodes)
		t.nodes = append(t.nodes, n)
		if it.parent >= 0 {
			t.nodes[it.parent].Children = append(t.nodes[it.parent].Children, idx)
		} else {
			t.root = idx
		}

		kids := elementChildren(it.src)
		for k := len(kids) - 1; k >= 0; k-- {
			stack = append(stack, item{src: kids[k], parent: idx})
		}
	}
	return t, warnings, nil
}

func rootElement(doc *xmlquery.Node) *xmlquery.Node {
	for c := doc.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode {
			return c
		}
	}
	return nil
}

func elementChildren(n *xmlquery.Node) []*xmlquery.Node {
	var kids []*xmlquery.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode {
			kids = append(kids, c)
		}
	}
	return kids
}

// elementParent returns n's parent element, or nil for the root element.
func elementParent(n *xmlquery.Node) *xmlquery.Node {
	if n.Parent == nil || n.Parent.Type != xmlquery.ElementNode {
		return nil
	}
	return n.Parent
}
