package state

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dgallion1/slidedit/internal/record"
	"github.com/dgallion1/slidedit/internal/schema"
)

// FileStore keeps the record as a JSON file.
type FileStore struct {
	path   string
	schema *schema.Schema
}

func NewFileStore(path string, s *schema.Schema) *FileStore {
	if path == "" {
		path = DefaultPath
	}
	return &FileStore{path: path, schema: s}
}

// Path returns the file location.
func (f *FileStore) Path() string {
	return f.path
}

func (f *FileStore) Load(_ context.Context) (schema.FieldMap, bool, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read state: %w", err)
	}
	fields, err := record.Decode(bytes.NewReader(data), f.schema)
	if err != nil {
		return nil, false, fmt.Errorf("read state %s: %w", f.path, err)
	}
	return fields, true, nil
}

// Save writes the record to a temporary file and renames it into place.
func (f *FileStore) Save(_ context.Context, fields schema.FieldMap) error {
	var buf bytes.Buffer
	if err := record.Encode(&buf, fields, f.schema); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".slidedit-state-*")
	if err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("save state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

func (f *FileStore) Close() error { return nil }
