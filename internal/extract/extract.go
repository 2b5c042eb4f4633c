// Package extract reads template fields and section headings out of an
// uploaded slide.
//
// Extraction is fail-open: a document that does not follow the template, or
// no document at all, yields schema defaults rather than an error.
package extract

import (
	"strings"

	"github.com/dgallion1/slidedit/internal/document"
	"github.com/dgallion1/slidedit/internal/richtext"
	"github.com/dgallion1/slidedit/internal/schema"
	"github.com/dgallion1/slidedit/internal/slot"
)

// Extract returns a complete FieldMap for doc. Missing slots and slots
// holding only whitespace get the schema default.
func Extract(doc *document.Document, s *schema.Schema) schema.FieldMap {
	fields := s.Defaults()
	if doc == nil || doc.Root() == nil {
		return fields
	}

	q := doc.Query()
	for _, sl := range slot.For(s) {
		n := slot.Resolve(q, sl)
		if n == nil {
			continue
		}
		var v string
		if s.MultiLine(sl.Field) {
			v = richtext.Decode(n)
		} else {
			v = richtext.PlainText(n)
		}
		if strings.TrimSpace(v) == "" {
			continue
		}
		fields[sl.Field] = v
	}
	return fields
}
