package schema

import "strings"

// Lang is a supported heading language. The zero value means undetermined.
type Lang string

const (
	LangNone Lang = ""
	LangSL   Lang = "sl"
	LangEN   Lang = "en"
)

// ParseLang returns the Lang for a code, or LangNone if the code is not one
// of the two supported languages. Matching is exact: "en-US" is not "en".
func ParseLang(code string) Lang {
	switch Lang(code) {
	case LangSL, LangEN:
		return Lang(code)
	}
	return LangNone
}

// Valid reports whether l is a supported language.
func (l Lang) Valid() bool {
	return l == LangSL || l == LangEN
}

// NotesHeading is the notes label used when the document has none.
const NotesHeading = "User notes"

// ClearedNotesHeading is the notes label shown after the form is cleared.
const ClearedNotesHeading = "User notes (grey panel)"

var vocabulary = map[Lang]map[Topic]string{
	LangSL: {
		People:     "Ljudje:",
		Process:    "Proces:",
		Technology: "Tehnologija:",
		Data:       "Podatki:",
		Output:     "Output:",
	},
	LangEN: {
		People:     "People:",
		Process:    "Process:",
		Technology: "Technology:",
		Data:       "Data:",
		Output:     "Output:",
	},
}

// Heading returns the fixed section heading for a topic in a language.
// Unsupported languages fall back to English.
func Heading(l Lang, t Topic) string {
	if !l.Valid() {
		l = LangEN
	}
	return vocabulary[l][t]
}

// Headings returns the five section headings of a language in positional
// order.
func Headings(l Lang) []string {
	out := make([]string, 0, len(Topics))
	for _, t := range Topics {
		out = append(out, Heading(l, t))
	}
	return out
}

// PadHeadings returns exactly SectionsPerPanel labels: the detected ones
// first, then the fallback vocabulary for the positions still missing.
func PadHeadings(detected []string, fallback Lang) []string {
	if len(detected) >= SectionsPerPanel {
		out := make([]string, SectionsPerPanel)
		copy(out, detected)
		return out
	}
	out := make([]string, 0, SectionsPerPanel)
	out = append(out, detected...)
	return append(out, Headings(fallback)[len(detected):]...)
}

// Fallback returns the built-in slide skeleton for the schema's variant.
// Every slot is present and empty, so extracting it yields the defaults.
func (s *Schema) Fallback() string {
	var b strings.Builder
	b.WriteString(`<!DOCTYPE html><html lang="sl"><head><meta charset="utf-8"><title>Slide</title></head><body>`)
	b.WriteString("\n<h1></h1>\n")
	for _, side := range Sides {
		b.WriteString(`<div class="panel ` + string(side) + `"><div class="side-label"><span class="tag"></span></div>` + "\n")
		for _, t := range Topics {
			b.WriteString(`<div class="section"><h3>` + Heading(LangSL, t) + `</h3><p></p></div>` + "\n")
		}
		b.WriteString("</div>\n")
	}
	if s.HasNotes {
		b.WriteString(`<div class="panel user"><div class="section"><h3>` + NotesHeading + `</h3><p></p></div></div>` + "\n")
	}
	if s.HasFooterFields {
		b.WriteString(`<footer><span class="pagenum"></span> <strong></strong></footer>` + "\n")
	}
	b.WriteString("</body></html>\n")
	return b.String()
}
