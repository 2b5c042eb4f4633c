// Package editor holds the single-user editing session: the base document,
// the current field values and the form labels, plus the actions that
// replace or update them.
package editor

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/slidedit/internal/document"
	"github.com/dgallion1/slidedit/internal/extract"
	"github.com/dgallion1/slidedit/internal/record"
	"github.com/dgallion1/slidedit/internal/schema"
	"github.com/dgallion1/slidedit/internal/state"
	"github.com/dgallion1/slidedit/internal/synth"
	"github.com/dgallion1/slidedit/internal/translate"
)

// ErrUnsupportedFile is returned for uploads that are not HTML slides.
var ErrUnsupportedFile = errors.New("unsupported file type")

// Config wires an Editor. Translator and Store may be nil.
type Config struct {
	Schema     *schema.Schema
	LabelLang  schema.Lang
	Translator *translate.Adapter
	Store      state.Store
	Logger     *slog.Logger
}

// Editor serializes every action on its session, so each action owns the
// field values for its whole duration.
type Editor struct {
	mu sync.Mutex

	schema      *schema.Schema
	defaultLang schema.Lang
	translator  *translate.Adapter
	store       state.Store
	log         *slog.Logger

	fields      schema.FieldMap
	base        *document.Document
	headings    extract.HeadingSet
	labelLang   schema.Lang
	contentHash string
	filename    string
	uploaded    bool
	updatedAt   time.Time
}

func New(cfg Config) *Editor {
	if cfg.Schema == nil {
		cfg.Schema = schema.For(schema.VariantNotes)
	}
	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	e := &Editor{
		schema:      cfg.Schema,
		defaultLang: cfg.LabelLang,
		translator:  cfg.Translator,
		store:       cfg.Store,
		log:         log.With("variant", string(cfg.Schema.Variant)),
	}
	e.resetLocked()
	return e
}

// Schema returns the schema the editor was built with.
func (e *Editor) Schema() *schema.Schema {
	return e.schema
}

// UploadResult reports what an upload did.
type UploadResult struct {
	Changed     bool     `json:"changed"`
	ContentHash string   `json:"content_hash"`
	Snapshot    Snapshot `json:"state"`
}

// Upload replaces the session with the content of an HTML slide. Uploading
// the same bytes as the current base leaves edits untouched.
func (e *Editor) Upload(data []byte, filename string) (UploadResult, error) {
	if !document.IsSupportedExtension(filename) {
		return UploadResult{}, fmt.Errorf("%w: %s", ErrUnsupportedFile, filename)
	}
	hash := ContentHashHex(data)

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.uploaded && hash == e.contentHash {
		e.log.Debug("same upload, keeping edits", "filename", filename)
		return UploadResult{ContentHash: hash, Snapshot: e.snapshotLocked()}, nil
	}

	doc, err := document.Parse(bytes.NewReader(data))
	if err != nil {
		return UploadResult{}, fmt.Errorf("upload %s: %w", filename, err)
	}

	e.base = doc
	e.fields = extract.Extract(doc, e.schema)
	e.headings = extract.DetectHeadings(doc)
	e.labelLang = e.defaultLang
	if e.headings.Lang.Valid() {
		e.labelLang = e.headings.Lang
	}
	e.contentHash = hash
	e.filename = filename
	e.uploaded = true
	e.touchLocked()

	e.log.Info("slide uploaded", "filename", filename, "bytes", len(data), "doc_lang", string(e.headings.Lang))
	return UploadResult{Changed: true, ContentHash: hash, Snapshot: e.snapshotLocked()}, nil
}

// SetFields overwrites the given fields. Names outside the schema are
// ignored; the return value lists them.
func (e *Editor) SetFields(partial map[string]string) []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	var ignored []string
	for name, value := range partial {
		if !e.schema.Has(name) {
			ignored = append(ignored, name)
			continue
		}
		e.fields[name] = value
	}
	e.touchLocked()
	return ignored
}

// Fields returns a copy of the current values.
func (e *Editor) Fields() schema.FieldMap {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.fields.Clone()
}

// Translate translates every field into target and makes target the label
// language. Fields the backend cannot translate keep their text.
func (e *Editor) Translate(ctx context.Context, target schema.Lang) error {
	if !target.Valid() {
		return fmt.Errorf("unsupported target language %q", target)
	}
	source := translate.SourceFor(target)

	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.translator.Available() {
		e.log.Info("no translation backend, keeping text", "target", string(target))
	}
	e.fields = e.translator.Fields(ctx, e.fields, string(source), string(target))
	e.labelLang = target
	e.touchLocked()
	return nil
}

// Apply synthesizes the edited slide from the base document.
func (e *Editor) Apply() *document.Document {
	e.mu.Lock()
	defer e.mu.Unlock()
	return synth.Synthesize(e.base, e.schema, e.fields, e.labelLang)
}

// Render writes the edited slide as HTML.
func (e *Editor) Render(w io.Writer) error {
	if err := e.Apply().Render(w); err != nil {
		return fmt.Errorf("render slide: %w", err)
	}
	return nil
}

// Clear resets the session to the fallback skeleton and default values.
func (e *Editor) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.resetLocked()
	e.log.Info("session cleared")
}

// Save persists the current values. Failures are logged and returned; the
// session is unaffected either way.
func (e *Editor) Save(ctx context.Context) error {
	if e.store == nil {
		return nil
	}
	fields := e.Fields()
	if err := e.store.Save(ctx, fields); err != nil {
		e.log.Warn("save state failed", "error", err)
		return err
	}
	e.log.Info("state saved")
	return nil
}

// Load restores saved values. A missing or unreadable saved state is
// reported as not found.
func (e *Editor) Load(ctx context.Context) bool {
	if e.store == nil {
		return false
	}
	fields, found, err := e.store.Load(ctx)
	if err != nil {
		e.log.Warn("load state failed", "error", err)
		return false
	}
	if !found {
		return false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.fields = e.schema.Complete(fields)
	e.touchLocked()
	e.log.Info("state loaded")
	return true
}

// Import replaces the values with a field record. Parse errors are
// returned so the caller can show them.
func (e *Editor) Import(r io.Reader) error {
	fields, err := record.Decode(r, e.schema)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.fields = fields
	e.touchLocked()
	return nil
}

// Export writes the current values as a field record.
func (e *Editor) Export(w io.Writer) error {
	return record.Encode(w, e.Fields(), e.schema)
}

func (e *Editor) resetLocked() {
	e.fields = e.schema.Defaults()
	e.base = document.ParseString(e.schema.Fallback())
	e.headings = extract.DefaultHeadings()
	e.labelLang = e.defaultLang
	e.contentHash = ""
	e.filename = ""
	e.uploaded = false
	e.touchLocked()
}

func (e *Editor) touchLocked() {
	e.updatedAt = time.Now()
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
