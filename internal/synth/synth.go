// Package synth writes an edited FieldMap back into a slide.
package synth

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dgallion1/slidedit/internal/document"
	"github.com/dgallion1/slidedit/internal/richtext"
	"github.com/dgallion1/slidedit/internal/schema"
	"github.com/dgallion1/slidedit/internal/slot"
)

// Synthesize returns a new document: a copy of base with fields written into
// their slots and the structure normalized for the schema's variant. base is
// never modified. A nil base is replaced by the variant's fallback skeleton.
//
// When lang is sl or en the document language and every section heading are
// set from that language's vocabulary, replacing whatever headings base had.
// Slots missing from base are skipped.
func Synthesize(base *document.Document, s *schema.Schema, fields schema.FieldMap, lang schema.Lang) *document.Document {
	if base == nil || base.Root() == nil {
		base = document.ParseString(s.Fallback())
	}
	doc := base.Clone()
	values := s.Complete(fields)

	if lang.Valid() {
		doc.SetLang(string(lang))
	}

	q := doc.Query()
	trimSections(q, s)

	for _, sl := range slot.For(s) {
		richtext.Encode(slot.Resolve(q, sl), values[sl.Field])
	}

	if lang.Valid() {
		relabel(q, lang)
	}

	if s.RemovesFooter {
		removeFooters(q)
	}
	if s.RelocatesNotes {
		moveNotesLast(q)
	}
	return doc
}

// trimSections drops sections past the fifth in each side panel and every
// notes section after the first. Panels with fewer sections are left alone.
func trimSections(q *goquery.Document, s *schema.Schema) {
	for _, side := range schema.Sides {
		removeFrom(slot.Sections(q, slot.PanelFor(side)), schema.SectionsPerPanel)
	}
	if s.HasNotes {
		removeFrom(slot.Sections(q, slot.PanelNotes), 1)
	}
}

// removeFrom removes the elements of sel from index keep onward.
func removeFrom(sel *goquery.Selection, keep int) {
	if sel.Length() <= keep {
		return
	}
	sel.Slice(keep, goquery.ToEnd).Remove()
}

func relabel(q *goquery.Document, lang schema.Lang) {
	for _, side := range schema.Sides {
		for i, topic := range schema.Topics {
			n := slot.Resolve(q, slot.Heading(slot.PanelFor(side), i))
			richtext.Encode(n, schema.Heading(lang, topic))
		}
	}
}

func removeFooters(q *goquery.Document) {
	q.FindMatcher(footerMatcher{}).Remove()
}

func moveNotesLast(q *goquery.Document) {
	panel := slot.PanelSelection(q, slot.PanelNotes)
	if panel.Length() == 0 {
		return
	}
	n := panel.Get(0)
	parent := n.Parent
	if parent == nil || parent.LastChild == n {
		return
	}
	parent.RemoveChild(n)
	parent.AppendChild(n)
}

// footerMatcher selects footer landmarks: <footer> elements, role=contentinfo,
// and elements whose id or any class token contains "footer".
type footerMatcher struct{}

func (footerMatcher) Match(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	if n.DataAtom == atom.Footer {
		return true
	}
	for _, a := range n.Attr {
		if a.Namespace != "" {
			continue
		}
		switch a.Key {
		case "role":
			if strings.EqualFold(strings.TrimSpace(a.Val), "contentinfo") {
				return true
			}
		case "id":
			if containsFooter(a.Val) {
				return true
			}
		case "class":
			for _, tok := range strings.Fields(a.Val) {
				if containsFooter(tok) {
					return true
				}
			}
		}
	}
	return false
}

func (m footerMatcher) MatchAll(n *html.Node) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if m.Match(n) {
			out = append(out, n)
			// Descendants go with the match.
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

func (m footerMatcher) Filter(nodes []*html.Node) []*html.Node {
	var out []*html.Node
	for _, n := range nodes {
		if m.Match(n) {
			out = append(out, n)
		}
	}
	return out
}

func containsFooter(s string) bool {
	return strings.Contains(strings.ToLower(s), "footer")
}
