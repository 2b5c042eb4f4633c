package extract

import (
	"github.com/PuerkitoBio/goquery"

	"github.com/dgallion1/slidedit/internal/document"
	"github.com/dgallion1/slidedit/internal/richtext"
	"github.com/dgallion1/slidedit/internal/schema"
	"github.com/dgallion1/slidedit/internal/slot"
)

// HeadingSet is the section headings as they appear in an uploaded slide.
// It labels form inputs only and is never written back to the document.
type HeadingSet struct {
	Left  []string    `json:"left"`
	Right []string    `json:"right"`
	Notes string      `json:"notes"`
	Lang  schema.Lang `json:"doc_lang,omitempty"`
}

// Side returns the detected headings of one panel.
func (h HeadingSet) Side(side schema.Side) []string {
	if side == schema.Right {
		return h.Right
	}
	return h.Left
}

// Padded returns five labels for a panel, filling positions the document
// did not provide from the fallback language vocabulary.
func (h HeadingSet) Padded(side schema.Side, fallback schema.Lang) []string {
	return schema.PadHeadings(h.Side(side), fallback)
}

// DefaultHeadings is the label set of an empty form.
func DefaultHeadings() HeadingSet {
	return HeadingSet{
		Left:  schema.Headings(schema.LangEN),
		Right: schema.Headings(schema.LangEN),
		Notes: schema.ClearedNotesHeading,
	}
}

// DetectHeadings reads up to five section headings per panel, the notes
// heading, and the declared document language.
func DetectHeadings(doc *document.Document) HeadingSet {
	h := HeadingSet{Notes: schema.NotesHeading}
	if doc == nil || doc.Root() == nil {
		return h
	}

	q := doc.Query()
	h.Left = panelHeadings(q, slot.PanelLeft)
	h.Right = panelHeadings(q, slot.PanelRight)
	if n := slot.Resolve(q, slot.Heading(slot.PanelNotes, 0)); n != nil {
		h.Notes = richtext.PlainText(n)
	}
	h.Lang = schema.ParseLang(doc.Lang())
	return h
}

func panelHeadings(q *goquery.Document, p slot.Panel) []string {
	var out []string
	for i := 0; i < schema.SectionsPerPanel; i++ {
		n := slot.Resolve(q, slot.Heading(p, i))
		if n == nil {
			break
		}
		out = append(out, richtext.PlainText(n))
	}
	return out
}
