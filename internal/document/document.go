// Package document holds a parsed slide as a mutable markup tree.
package document

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// SupportedExtensions lists upload extensions the editor accepts.
var SupportedExtensions = map[string]bool{
	".html": true,
	".htm":  true,
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// Document is a parsed HTML slide.
type Document struct {
	root *html.Node
}

// Parse reads an HTML document. The HTML5 parsing algorithm recovers from
// malformed markup, so only read failures are returned.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return &Document{root: root}, nil
}

// ParseString parses an in-memory document.
func ParseString(s string) *Document {
	// A strings.Reader never fails, so neither does the parser.
	doc, _ := Parse(strings.NewReader(s))
	return doc
}

// FromNode wraps an existing tree.
func FromNode(root *html.Node) *Document {
	return &Document{root: root}
}

// Root returns the document node.
func (d *Document) Root() *html.Node {
	return d.root
}

// Query returns a goquery view over the tree. Edits made through the view
// change the document.
func (d *Document) Query() *goquery.Document {
	return goquery.NewDocumentFromNode(d.root)
}

// Clone returns a deep copy that shares no nodes with d.
func (d *Document) Clone() *Document {
	if d == nil || d.root == nil {
		return &Document{}
	}
	return &Document{root: cloneNode(d.root)}
}

// cloneNode deep-copies n, keeping the namespace of SVG and MathML elements
// so they render as foreign content.
func cloneNode(n *html.Node) *html.Node {
	c := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
		Attr:      make([]html.Attribute, len(n.Attr)),
	}
	copy(c.Attr, n.Attr)
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		c.AppendChild(cloneNode(child))
	}
	return c
}

// Lang returns the lang attribute of the <html> element, or "".
func (d *Document) Lang() string {
	el := d.htmlElement()
	if el == nil {
		return ""
	}
	return attr(el, "lang")
}

// SetLang sets the lang attribute of the <html> element.
func (d *Document) SetLang(lang string) {
	el := d.htmlElement()
	if el == nil {
		return
	}
	for i, a := range el.Attr {
		if a.Namespace == "" && a.Key == "lang" {
			el.Attr[i].Val = lang
			return
		}
	}
	el.Attr = append(el.Attr, html.Attribute{Key: "lang", Val: lang})
}

// Render writes the document as HTML.
func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.root)
}

// String renders the document to a string.
func (d *Document) String() string {
	var buf bytes.Buffer
	if err := d.Render(&buf); err != nil {
		return ""
	}
	return buf.String()
}

func (d *Document) htmlElement() *html.Node {
	if d == nil || d.root == nil {
		return nil
	}
	for c := d.root.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == atom.Html {
			return c
		}
	}
	return nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val
		}
	}
	return ""
}
