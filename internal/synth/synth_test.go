package synth

import (
	"bytes"
	"os"
	"path/filepath"
	"fmt"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"
	"golang.org/x/net/html"

	"github.com/dgallion1/slidedit/internal/document"
	"github.com/dgallion1/slidedit/internal/extract"
	"github.com/dgallion1/slidedit/internal/schema"
	"github.com/dgallion1/slidedit/internal/slot"
)

var (
	notes  = schema.For(schema.VariantNotes)
	footer = schema.For(schema.VariantFooter)
)

func loadSlide(t *testing.T, name string) *document.Document {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("read %s: %v", name, err)
	}
	doc, err := document.Parse(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("parse %s: %v", name, err)
	}
	return doc
}

func outerHTML(t *testing.T, sel *goquery.Selection) string {
	t.Helper()
	s, err := goquery.OuterHtml(sel)
	if err != nil {
		t.Fatalf("render selection: %v", err)
	}
	return s
}

// footerLandmarks counts elements that look like a page footer.
func footerLandmarks(doc *document.Document) int {
	count := 0
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			hit := n.Data == "footer"
			for _, a := range n.Attr {
				v := strings.ToLower(a.Val)
				if (a.Key == "role" && v == "contentinfo") || ((a.Key == "id" || a.Key == "class") && strings.Contains(v, "footer")) {
					hit = true
				}
			}
			if hit {
				count++
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc.Root())
	return count
}

func TestRoundTripIdentity(t *testing.T) {
	tests := []struct {
		file   string
		schema *schema.Schema
	}{
		{"slide_notes.html", notes},
		{"slide_footer.html", footer},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			doc := loadSlide(t, tt.file)
			fields := extract.Extract(doc, tt.schema)

			out := Synthesize(doc, tt.schema, fields, schema.LangNone)
			again := extract.Extract(out, tt.schema)
			if diff := cmp.Diff(fields, again); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}

			// Rendering and reparsing must not change anything either.
			reparsed := document.ParseString(out.String())
			if diff := cmp.Diff(fields, extract.Extract(reparsed, tt.schema)); diff != "" {
				t.Errorf("reparsed mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBaseIsNotModified(t *testing.T) {
	doc := loadSlide(t, "slide_notes.html")
	before := doc.String()

	fields := notes.Defaults()
	fields["title"] = "Changed"
	out := Synthesize(doc, notes, fields, schema.LangEN)

	if doc.String() != before {
		t.Error("base document was modified")
	}
	if out.Root() == doc.Root() {
		t.Error("output shares its root with the base")
	}
}

func TestOutsideFieldPreservation(t *testing.T) {
	doc := loadSlide(t, "slide_notes.html")
	q := doc.Query()
	wantAside := outerHTML(t, q.Find("aside.legend"))
	wantStyle := outerHTML(t, q.Find("style"))
	wantHead := outerHTML(t, q.Find("head"))

	fields := extract.Extract(doc, notes)
	fields["left_people"] = "Trije analitiki"
	out := Synthesize(doc, notes, fields, schema.LangNone).Query()

	if got := outerHTML(t, out.Find("aside.legend")); got != wantAside {
		t.Errorf("aside changed:\nwant %s\ngot  %s", wantAside, got)
	}
	if got := outerHTML(t, out.Find("style")); got != wantStyle {
		t.Errorf("style changed")
	}
	if got := outerHTML(t, out.Find("head")); got != wantHead {
		t.Errorf("head changed")
	}
	if v, _ := out.Find(".panel.right").Attr("data-owner"); v != "alm" {
		t.Errorf("expected data-owner attribute kept, got %q", v)
	}
	if v, _ := out.Find(".slide").Attr("data-deck"); v != "irrbb" {
		t.Errorf("expected data-deck attribute kept, got %q", v)
	}
	if lang, _ := out.Find("html").Attr("lang"); lang != "sl" {
		t.Errorf("expected lang untouched, got %q", lang)
	}
}

func TestMultiLineAndSpecialCharacters(t *testing.T) {
	doc := loadSlide(t, "slide_notes.html")
	fields := extract.Extract(doc, notes)
	fields["right_process"] = "Korak 1 <b>bold?</b>\nKorak 2 & \"3\"\n'4'"
	fields["title"] = "</h1><script>alert(1)</script>"

	out := Synthesize(doc, notes, fields, schema.LangNone)
	reparsed := document.ParseString(out.String())

	got := extract.Extract(reparsed, notes)
	if got["right_process"] != fields["right_process"] {
		t.Errorf("expected %q, got %q", fields["right_process"], got["right_process"])
	}
	if got["title"] != fields["title"] {
		t.Errorf("expected %q, got %q", fields["title"], got["title"])
	}

	q := reparsed.Query()
	if n := q.Find("script").Length(); n != 0 {
		t.Errorf("field text became %d script elements", n)
	}
	body := slot.Sections(q, slot.PanelRight).Eq(1).Find("p")
	if n := body.Find("b").Length(); n != 0 {
		t.Error("field text became a <b> element")
	}
	if n := body.Find("br").Length(); n != 2 {
		t.Errorf("expected 2 line breaks, got %d", n)
	}
}

func TestStructuralTrim(t *testing.T) {
	doc := loadSlide(t, "slide_footer.html")
	if n := slot.Sections(doc.Query(), slot.PanelLeft).Length(); n != 7 {
		t.Fatalf("fixture should have 7 left sections, got %d", n)
	}
	fields := footer.Defaults()
	for i, topic := range schema.Topics {
		fields[schema.SectionField(schema.Left, topic)] = "V" + string(rune('1'+i))
	}

	out := Synthesize(doc, footer, fields, schema.LangNone)
	sections := slot.Sections(out.Query(), slot.PanelLeft)
	if sections.Length() != 5 {
		t.Fatalf("expected 5 sections, got %d", sections.Length())
	}
	sections.Each(func(i int, s *goquery.Selection) {
		want := "V" + string(rune('1'+i))
		if got := s.Find("p").Text(); got != want {
			t.Errorf("section %d: expected %q, got %q", i, want, got)
		}
	})
	if strings.Contains(out.String(), "Extra 1") {
		t.Error("trimmed section still rendered")
	}
}

func TestNotesTrimmedToOneSection(t *testing.T) {
	doc := loadSlide(t, "slide_notes.html")
	out := Synthesize(doc, notes, extract.Extract(doc, notes), schema.LangNone)

	if n := slot.Sections(out.Query(), slot.PanelNotes).Length(); n != 1 {
		t.Errorf("expected 1 notes section, got %d", n)
	}
}

func TestFooterRemovalIdempotence(t *testing.T) {
	doc := loadSlide(t, "slide_notes.html")
	if footerLandmarks(doc) != 3 {
		t.Fatalf("fixture should have 3 footer landmarks, got %d", footerLandmarks(doc))
	}
	fields := extract.Extract(doc, notes)

	first := Synthesize(doc, notes, fields, schema.LangNone)
	second := Synthesize(first, notes, fields, schema.LangNone)

	for i, out := range []*document.Document{first, second} {
		if n := footerLandmarks(out); n != 0 {
			t.Errorf("pass %d: expected 0 footer landmarks, got %d", i+1, n)
		}
		panel := slot.PanelSelection(out.Query(), slot.PanelNotes)
		if panel.Length() != 1 {
			t.Fatalf("pass %d: notes panel missing", i+1)
		}
		n := panel.Get(0)
		if n.Parent.LastChild != n {
			t.Errorf("pass %d: notes panel is not the last child", i+1)
		}
	}
	if diff := cmp.Diff(fields, extract.Extract(second, notes)); diff != "" {
		t.Errorf("second pass changed fields (-want +got):\n%s", diff)
	}
}

func TestFooterVariantKeepsFooter(t *testing.T) {
	doc := loadSlide(t, "slide_footer.html")
	fields := extract.Extract(doc, footer)
	fields["page_number"] = "8"
	fields["footer_summary"] = "Nova\nvrstica"

	out := Synthesize(doc, footer, fields, schema.LangNone)
	q := out.Query()
	if q.Find("footer").Length() != 1 {
		t.Fatal("footer variant must keep its footer")
	}
	if got := q.Find("footer .pagenum").Text(); got != "8" {
		t.Errorf("expected page number 8, got %q", got)
	}
	if got := q.Find("footer strong br").Length(); got != 1 {
		t.Errorf("expected 1 line break in summary, got %d", got)
	}
}

func TestEditScenario(t *testing.T) {
	doc := document.ParseString(`<html><body><h1>T</h1>
<div class="panel left"><div class="side-label"><span class="tag">AS-IS</span></div>
<div class="section"><h3>People</h3><p>X1</p></div>
<div class="section"><h3>Process</h3><p>X2</p></div>
<div class="section"><h3>Technology</h3><p>X3</p></div>
<div class="section"><h3>Data</h3><p>X4</p></div>
<div class="section"><h3>Output</h3><p>X5</p></div>
</div></body></html>`)

	fields := extract.Extract(doc, notes)
	for i, topic := range schema.Topics {
		want := "X" + string(rune('1'+i))
		if got := fields[schema.SectionField(schema.Left, topic)]; got != want {
			t.Fatalf("left_%s: expected %q, got %q", topic, want, got)
		}
	}

	fields["left_people"] = "Updated"
	got := extract.Extract(Synthesize(doc, notes, fields, schema.LangNone), notes)

	want := fields.Clone()
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("fields mismatch (-want +got):\n%s", diff)
	}
}

func TestTargetLanguageRelabelsHeadings(t *testing.T) {
	doc := loadSlide(t, "slide_footer.html")
	if doc.Lang() != "" {
		t.Fatal("fixture should not declare a language")
	}

	out := Synthesize(doc, footer, extract.Extract(doc, footer), schema.LangEN)
	if out.Lang() != "en" {
		t.Errorf("expected lang en, got %q", out.Lang())
	}

	h := extract.DetectHeadings(out)
	want := schema.Headings(schema.LangEN)
	if diff := cmp.Diff(want, h.Left); diff != "" {
		t.Errorf("left headings (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, h.Right); diff != "" {
		t.Errorf("right headings (-want +got):\n%s", diff)
	}

	sl := Synthesize(out, footer, extract.Extract(out, footer), schema.LangSL)
	if diff := cmp.Diff(schema.Headings(schema.LangSL), extract.DetectHeadings(sl).Right); diff != "" {
		t.Errorf("sl headings (-want +got):\n%s", diff)
	}
}

func TestNoLanguageKeepsCustomHeadings(t *testing.T) {
	doc := loadSlide(t, "slide_footer.html")
	out := Synthesize(doc, footer, extract.Extract(doc, footer), schema.LangNone)

	if got := extract.DetectHeadings(out).Left[0]; got != "People" {
		t.Errorf("expected original heading, got %q", got)
	}
}

func TestMissingSlotsAreSkipped(t *testing.T) {
	doc := document.ParseString(`<html><body><p class="intro">No template here</p></body></html>`)
	fields := notes.Defaults()
	fields["title"] = "Ignored"

	out := Synthesize(doc, notes, fields, schema.LangEN)
	if got := out.Query().Find("p.intro").Text(); got != "No template here" {
		t.Errorf("unrelated content changed: %q", got)
	}
	if out.Lang() != "en" {
		t.Errorf("expected lang en, got %q", out.Lang())
	}
}

func TestNilBaseUsesFallback(t *testing.T) {
	fields := footer.Defaults()
	fields["left_data"] = "Skladišče"

	out := Synthesize(nil, footer, fields, schema.LangNone)
	if diff := cmp.Diff(fields, extract.Extract(out, footer)); diff != "" {
		t.Errorf("fields mismatch (-want +got):\n%s", diff)
	}
}

func TestPartialFieldsUseDefaults(t *testing.T) {
	doc := loadSlide(t, "slide_notes.html")
	out := Synthesize(doc, notes, schema.FieldMap{"title": "Only title"}, schema.LangNone)

	got := extract.Extract(out, notes)
	if got["title"] != "Only title" {
		t.Errorf("expected title written, got %q", got["title"])
	}
	if got["left_people"] != "TBD" {
		t.Errorf("expected default for missing field, got %q", got["left_people"])
	}
}

// shortSlide builds a slide with n sections in each side panel and, when
// withNotes is set, a notes panel.
func shortSlide(n int, withNotes bool) *document.Document {
	var b strings.Builder
	b.WriteString("<html><body><h1>T</h1>\n")
	for _, side := range schema.Sides {
		fmt.Fprintf(&b, `<div class="panel %s"><div class="side-label"><span class="tag">%s</span></div>`, side, side)
		for i := 0; i < n; i++ {
			fmt.Fprintf(&b, `<div class="section"><h3>H%d</h3><p>old %d</p></div>`, i, i)
		}
		b.WriteString("</div>\n")
	}
	if withNotes {
		b.WriteString(`<div class="panel user"><div class="section"><h3>Notes</h3><p>old</p></div></div>`)
	}
	b.WriteString("<footer>f</footer></body></html>")
	return document.ParseString(b.String())
}

func TestShortPanels(t *testing.T) {
	tests := []struct {
		name      string
		sections  int
		withNotes bool
		lang      schema.Lang
	}{
		{"no sections", 0, true, schema.LangNone},
		{"one section", 1, true, schema.LangEN},
		{"four sections", 4, true, schema.LangSL},
		{"no notes panel", 5, false, schema.LangNone},
		{"nothing at all", 0, false, schema.LangEN},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := notes.Defaults()
			fields["title"] = "New title"
			fields["user_notes"] = "a\nb"
			for _, side := range schema.Sides {
				for i, topic := range schema.Topics {
					fields[schema.SectionField(side, topic)] = fmt.Sprintf("%s %d", side, i)
				}
			}

			out := Synthesize(shortSlide(tt.sections, tt.withNotes), notes, fields, tt.lang)
			got := extract.Extract(out, notes)

			// Slots the slide lacks come back as defaults.
			want := notes.Defaults()
			want["title"] = "New title"
			for _, side := range schema.Sides {
				for i := 0; i < tt.sections; i++ {
					want[schema.SectionField(side, schema.Topics[i])] = fmt.Sprintf("%s %d", side, i)
				}
			}
			if tt.withNotes {
				want["user_notes"] = "a\nb"
			}

			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("fields mismatch (-want +got):\n%s", diff)
			}
			if n := slot.Sections(out.Query(), slot.PanelLeft).Length(); n != tt.sections {
				t.Errorf("expected %d left sections, got %d", tt.sections, n)
			}
			if n := footerLandmarks(out); n != 0 {
				t.Errorf("expected footer removed, got %d landmarks", n)
			}
		})
	}
}

func TestExtraNotesPanelsAreKept(t *testing.T) {
	doc := document.ParseString(`<html><body>
<div class="panel user"><div class="section"><h3>N</h3><p>first</p></div><div class="section"><h3>N2</h3><p>second</p></div></div>
<div class="panel user"><img src="keep.png"></div>
<div class="panel left"><div class="section"><h3>P</h3><p>x</p></div></div>
</body></html>`)
	fields := notes.Defaults()
	fields["user_notes"] = "edited"

	q := Synthesize(doc, notes, fields, schema.LangNone).Query()
	if n := q.Find(".panel.user").Length(); n != 2 {
		t.Errorf("expected 2 notes panels, got %d", n)
	}
	if n := q.Find(`img[src="keep.png"]`).Length(); n != 1 {
		t.Errorf("expected image in second notes panel to survive, got %d", n)
	}
	if n := q.Find(".panel.user .section").Length(); n != 1 {
		t.Errorf("expected 1 notes section, got %d", n)
	}
	if got := q.Find(".panel.user .section p").Text(); got != "edited" {
		t.Errorf("expected edited notes, got %q", got)
	}
}

func TestOutsideFieldPreservationWithInlineSVG(t *testing.T) {
	const logo = `<svg viewBox="0 0 10 10"><style>a &lt; b</style><circle cx="5" cy="5" r="4"></circle></svg>`
	doc := document.ParseString(`<html><body><h1>T</h1><div class="logo">` + logo + `</div></body></html>`)

	out := Synthesize(doc, footer, extract.Extract(doc, footer), schema.LangNone)
	got := outerHTML(t, out.Query().Find("div.logo svg"))
	if got != logo {
		t.Errorf("svg changed:\nexpected %s\ngot      %s", logo, got)
	}
}
