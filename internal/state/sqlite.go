package state

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/dgallion1/slidedit/internal/schema"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS saved_fields (
    name  TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`

// SQLiteStore keeps the record as one row per field.
type SQLiteStore struct {
	db     *sql.DB
	schema *schema.Schema
	owned  bool
}

// OpenSQLite opens or creates the database file at path.
func OpenSQLite(path string, s *schema.Schema) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open state db: %w", err)
	}
	// One writer; also keeps ":memory:" databases on a single connection.
	db.SetMaxOpenConns(1)
	st, err := NewSQLiteStore(db, s)
	if err != nil {
		db.Close()
		return nil, err
	}
	st.owned = true
	return st, nil
}

// NewSQLiteStore applies the table schema to db. The caller keeps ownership
// of db.
func NewSQLiteStore(db *sql.DB, s *schema.Schema) (*SQLiteStore, error) {
	if db == nil {
		return nil, fmt.Errorf("state: DB is required")
	}
	for _, stmt := range strings.Split(sqliteSchema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("state schema: %w", err)
		}
	}
	return &SQLiteStore{db: db, schema: s}, nil
}

func (st *SQLiteStore) Load(ctx context.Context) (schema.FieldMap, bool, error) {
	rows, err := st.db.QueryContext(ctx, `SELECT name, value FROM saved_fields`)
	if err != nil {
		return nil, false, fmt.Errorf("load state: %w", err)
	}
	defer rows.Close()

	saved := make(map[string]string)
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return nil, false, fmt.Errorf("scan state: %w", err)
		}
		saved[name] = value
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("load state: %w", err)
	}
	if len(saved) == 0 {
		return nil, false, nil
	}
	return st.schema.Complete(saved), true, nil
}

// Save replaces the stored record in one transaction.
func (st *SQLiteStore) Save(ctx context.Context, fields schema.FieldMap) error {
	tx, err := st.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM saved_fields`); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO saved_fields (name, value) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	defer stmt.Close()

	complete := st.schema.Complete(fields)
	for _, name := range st.schema.Fields() {
		if _, err := stmt.ExecContext(ctx, name, complete[name]); err != nil {
			return fmt.Errorf("save field %s: %w", name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

// Close closes the database if the store opened it.
func (st *SQLiteStore) Close() error {
	if !st.owned {
		return nil
	}
	return st.db.Close()
}
