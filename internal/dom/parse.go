package dom

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ParseDocument parses a full HTML document.
func ParseDocument(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	d := newBareDocument()
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.DoctypeNode {
			d.doctype = c.Data
			continue
		}
		if n := d.importNode(c); n != nil {
			d.link(d.root, n, -1)
		}
	}
	return d, nil
}

// ParseFragment parses markup as the contents of a <body> element and
// returns a detached fragment holding the result. Nothing is constructed or
// connected until the fragment is inserted.
func (d *Document) ParseFragment(markup string) (*Node, error) {
	context := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(markup), context)
	if err != nil {
		return nil, fmt.Errorf("failed to parse fragment: %w", err)
	}
	frag := d.CreateFragment()
	for _, hn := range nodes {
		if n := d.importNode(hn); n != nil {
			d.link(frag, n, -1)
		}
	}
	return frag, nil
}

// importNode converts a parsed html node. Template children become the
// template's inert content.
func (d *Document) importNode(hn *html.Node) *Node {
	var n *Node
	switch hn.Type {
	case html.ElementNode:
		n = d.newNode(ElementNode, hn.Data, "")
		for _, a := range hn.Attr {
			key := a.Key
			if a.Namespace != "" {
				key = a.Namespace + ":" + a.Key
			}
			n.attrs = append(n.attrs, Attr{Key: key, Val: a.Val})
		}
	case html.TextNode:
		return d.newNode(TextNode, "", hn.Data)
	case html.CommentNode:
		return d.newNode(CommentNode, "", hn.Data)
	default:
		return nil
	}

	target := n
	if n.tag == "template" {
		n.content = d.newFragmentFor(n)
		target = n.content
	}
	for c := hn.FirstChild; c != nil; c = c.NextSibling {
		if k := d.importNode(c); k != nil {
			d.link(target, k, -1)
		}
	}
	return n
}
