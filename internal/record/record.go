// Package record reads and writes the flat JSON record used for field
// import, export and saved state.
package record

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/dgallion1/slidedit/internal/schema"
)

// ErrInvalidRecord is returned when input is not a flat JSON object.
var ErrInvalidRecord = errors.New("invalid field record")

// Decode reads a record and completes it against s. Missing and null keys
// take the schema default, unknown keys are ignored, and numbers and
// booleans are kept in their JSON spelling.
func Decode(r io.Reader, s *schema.Schema) (schema.FieldMap, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: expected a JSON object", ErrInvalidRecord)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data after object", ErrInvalidRecord)
	}

	fields := s.Defaults()
	for name, v := range raw {
		if !s.Has(name) {
			continue
		}
		switch val := v.(type) {
		case nil:
		case string:
			fields[name] = val
		case json.Number:
			fields[name] = val.String()
		case bool:
			fields[name] = strconv.FormatBool(val)
		default:
			return nil, fmt.Errorf("%w: field %q is not a string", ErrInvalidRecord, name)
		}
	}
	return fields, nil
}

// Encode writes the complete field set as indented JSON. Keys outside s are
// dropped and missing keys are written with their defaults.
func Encode(w io.Writer, fields schema.FieldMap, s *schema.Schema) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s.Complete(fields)); err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	return nil
}
