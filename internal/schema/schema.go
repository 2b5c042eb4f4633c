// Package schema defines the fixed field set of the AS-IS / TO-BE slide
// template, its defaults, and the bilingual section heading vocabulary.
package schema

import (
	"fmt"
	"strings"
)

// Variant names a template generation.
type Variant string

const (
	// VariantFooter is the older template: a footer holding a page number and
	// a one-line summary.
	VariantFooter Variant = "footer"
	// VariantNotes is the current template: a grey notes panel replaces the
	// footer, which is stripped from the output.
	VariantNotes Variant = "notes"
)

// Side is one of the two comparison panels.
type Side string

const (
	Left  Side = "left"
	Right Side = "right"
)

// Sides lists the panels in document order.
var Sides = []Side{Left, Right}

// Topic is the subject of one positional section within a panel.
type Topic string

const (
	People     Topic = "people"
	Process    Topic = "process"
	Technology Topic = "technology"
	Data       Topic = "data"
	Output     Topic = "output"
)

// Topics lists the section topics in positional order. Section i of a panel
// always maps to Topics[i], regardless of the heading text it carries.
var Topics = []Topic{People, Process, Technology, Data, Output}

// SectionsPerPanel is the number of content sections each panel keeps.
const SectionsPerPanel = 5

// Field names.
const (
	FieldTitle         = "title"
	FieldLeftLabel     = "left_label"
	FieldRightLabel    = "right_label"
	FieldPageNumber    = "page_number"
	FieldFooterSummary = "footer_summary"
	FieldUserNotes     = "user_notes"
)

// SectionField returns the field name for a panel side and topic,
// e.g. "left_people".
func SectionField(side Side, topic Topic) string {
	return string(side) + "_" + string(topic)
}

// LabelField returns the side-label field for a panel.
func LabelField(side Side) string {
	if side == Right {
		return FieldRightLabel
	}
	return FieldLeftLabel
}

// FieldMap maps field names to their current string values.
type FieldMap map[string]string

// Clone returns an independent copy of m.
func (m FieldMap) Clone() FieldMap {
	out := make(FieldMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Schema is the configuration of one template variant.
type Schema struct {
	Variant Variant

	fields   []string
	defaults map[string]string

	// HasFooterFields is set when page number and summary live in a <footer>.
	HasFooterFields bool
	// HasNotes is set when the template carries a notes panel.
	HasNotes bool
	// RemovesFooter strips footer landmarks during synthesis.
	RemovesFooter bool
	// RelocatesNotes moves the notes panel to the end of its parent.
	RelocatesNotes bool
}

const placeholder = "TBD"

var sharedDefaults = map[string]string{
	FieldLeftLabel:  "AS-IS (danes)",
	FieldRightLabel: "Ambicija (to-be)",
}

func sharedFields() []string {
	fields := []string{FieldTitle, FieldLeftLabel, FieldRightLabel}
	for _, side := range Sides {
		for _, topic := range Topics {
			fields = append(fields, SectionField(side, topic))
		}
	}
	return fields
}

func newSchema(v Variant, extra []string, extraDefaults map[string]string) *Schema {
	s := &Schema{
		Variant:  v,
		fields:   append(sharedFields(), extra...),
		defaults: make(map[string]string),
	}
	for _, f := range s.fields {
		s.defaults[f] = placeholder
	}
	for k, v := range sharedDefaults {
		s.defaults[k] = v
	}
	for k, v := range extraDefaults {
		s.defaults[k] = v
	}
	return s
}

var (
	footerSchema = func() *Schema {
		s := newSchema(VariantFooter, []string{FieldPageNumber, FieldFooterSummary}, map[string]string{
			FieldPageNumber:    "1",
			FieldFooterSummary: "Digitalizacija in centralizacija procesa z avtomatskimi kontrolami.",
		})
		s.HasFooterFields = true
		return s
	}()

	notesSchema = func() *Schema {
		s := newSchema(VariantNotes, []string{FieldUserNotes}, map[string]string{
			FieldUserNotes: "",
		})
		s.HasNotes = true
		s.RemovesFooter = true
		s.RelocatesNotes = true
		return s
	}()
)

// For returns the schema of a variant. Unknown variants get the notes
// template, which is the current generation.
func For(v Variant) *Schema {
	if v == VariantFooter {
		return footerSchema
	}
	return notesSchema
}

// ParseVariant validates a variant name.
func ParseVariant(name string) (Variant, error) {
	switch v := Variant(strings.ToLower(strings.TrimSpace(name))); v {
	case VariantFooter, VariantNotes:
		return v, nil
	case "a":
		return VariantFooter, nil
	case "b", "":
		return VariantNotes, nil
	default:
		return "", fmt.Errorf("unknown template variant %q", name)
	}
}

// Fields returns the field names of the schema in form order.
func (s *Schema) Fields() []string {
	out := make([]string, len(s.fields))
	copy(out, s.fields)
	return out
}

// Has reports whether name is a field of this schema.
func (s *Schema) Has(name string) bool {
	_, ok := s.defaults[name]
	return ok
}

// Default returns the placeholder value of a field.
func (s *Schema) Default(name string) string {
	return s.defaults[name]
}

// Defaults returns a complete FieldMap of placeholder values.
func (s *Schema) Defaults() FieldMap {
	out := make(FieldMap, len(s.fields))
	for _, f := range s.fields {
		out[f] = s.defaults[f]
	}
	return out
}

// Complete returns a FieldMap holding every schema field: values from
// partial where present, defaults otherwise. Keys outside the schema are
// dropped.
func (s *Schema) Complete(partial map[string]string) FieldMap {
	out := s.Defaults()
	for k, v := range partial {
		if s.Has(k) {
			out[k] = v
		}
	}
	return out
}

// MultiLine reports whether a field accepts line breaks. Titles, side labels
// and the page number are single-line.
func (s *Schema) MultiLine(name string) bool {
	switch name {
	case FieldTitle, FieldLeftLabel, FieldRightLabel, FieldPageNumber:
		return false
	}
	return s.Has(name)
}
