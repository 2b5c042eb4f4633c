// Package state persists the editor's field values between runs.
package state

import (
	"context"

	"github.com/dgallion1/slidedit/internal/schema"
)

// Default locations when none is configured.
const (
	DefaultPath       = "slidedit_state.json"
	DefaultSQLitePath = "slidedit_state.db"
)

// Store saves and loads one field record. Load reports found=false when
// nothing has been saved yet.
type Store interface {
	Load(ctx context.Context) (fields schema.FieldMap, found bool, err error)
	Save(ctx context.Context, fields schema.FieldMap) error
	Close() error
}
