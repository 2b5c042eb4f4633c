// Package richtext converts between multi-line field values and the
// text-plus-<br> content of an HTML element.
package richtext

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// NormalizeNewlines rewrites CRLF and lone CR as LF.
func NormalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// Decode returns the text of n with every <br> turned into "\n". Text is
// kept verbatim apart from newline normalization.
func Decode(n *html.Node) string {
	if n == nil {
		return ""
	}
	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			buf.WriteString(n.Data)
			return
		case html.ElementNode:
			if n.DataAtom == atom.Br {
				buf.WriteByte('\n')
				return
			}
		case html.CommentNode:
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c)
	}
	return NormalizeNewlines(buf.String())
}

// Encode replaces the content of n with value: one text node per line and a
// <br> element between consecutive lines. Values are only ever inserted as
// text nodes, so markup characters render as literal text.
func Encode(n *html.Node, value string) {
	if n == nil {
		return
	}
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
	lines := strings.Split(NormalizeNewlines(value), "\n")
	for i, line := range lines {
		n.AppendChild(&html.Node{Type: html.TextNode, Data: line})
		if i < len(lines)-1 {
			n.AppendChild(&html.Node{Type: html.ElementNode, Data: "br", DataAtom: atom.Br})
		}
	}
}

// PlainText returns the single-line text of n: descendant text with <br>
// treated as whitespace, whitespace runs collapsed, ends trimmed.
func PlainText(n *html.Node) string {
	return CollapseSpace(strings.ReplaceAll(Decode(n), "\n", " "))
}

// CollapseSpace trims s and folds internal whitespace runs to one space.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
