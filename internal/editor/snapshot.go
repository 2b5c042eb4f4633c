package editor

import (
	"time"

	"github.com/dgallion1/slidedit/internal/schema"
)

// Labels are the form captions for the section and notes inputs.
type Labels struct {
	Left  []string `json:"left"`
	Right []string `json:"right"`
	Notes string   `json:"notes"`
}

// Snapshot is a read-only, JSON-safe copy of session state.
type Snapshot struct {
	Variant      schema.Variant  `json:"variant"`
	Fields       schema.FieldMap `json:"fields"`
	FieldOrder   []string        `json:"field_order"`
	Labels       Labels          `json:"labels"`
	LabelLang    schema.Lang     `json:"label_lang,omitempty"`
	DocLang      schema.Lang     `json:"doc_lang,omitempty"`
	Filename     string          `json:"filename,omitempty"`
	Uploaded     bool            `json:"uploaded"`
	ContentHash  string          `json:"content_hash,omitempty"`
	CanTranslate bool            `json:"can_translate"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// Snapshot returns a copy of the session state.
func (e *Editor) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (e *Editor) snapshotLocked() Snapshot {
	fallback := e.labelLang
	if !fallback.Valid() {
		fallback = schema.LangEN
	}
	return Snapshot{
		Variant:    e.schema.Variant,
		Fields:     e.fields.Clone(),
		FieldOrder: e.schema.Fields(),
		Labels: Labels{
			Left:  e.headings.Padded(schema.Left, fallback),
			Right: e.headings.Padded(schema.Right, fallback),
			Notes: e.headings.Notes,
		},
		LabelLang:    e.labelLang,
		DocLang:      e.headings.Lang,
		Filename:     e.filename,
		Uploaded:     e.uploaded,
		ContentHash:  e.contentHash,
		CanTranslate: e.translator.Available(),
		UpdatedAt:    e.updatedAt,
	}
}
