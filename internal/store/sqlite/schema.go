package sqlite

import (
	"fmt"

	"github.com/maloquacious/sqltable/internal/store"
)

// initialSchema tracks which application schema version created the file.
const initialSchema = `
CREATE TABLE IF NOT EXISTS schema_migrations (
    version TEXT PRIMARY KEY,
    applied_at INTEGER NOT NULL
);
`

// InitSchema creates the schema_migrations table and records version.
// Recording a version that is already present is not an error.
func InitSchema(conn store.Executor, version string) error {
	if _, err := conn.Execute(store.Statement{Text: initialSchema}); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	_, err := conn.Execute(store.Statement{
		Text: `INSERT OR IGNORE INTO schema_migrations (version, applied_at) VALUES (?, strftime('%s', 'now'))`,
		Args: []any{version},
	})
	if err != nil {
		return fmt.Errorf("failed to insert schema version: %w", err)
	}
	return nil
}

// CheckState returns the current state of an open datastore.
func CheckState(conn store.Executor, expectedSchema string) (store.StoreState, error) {
	rs, err := conn.Execute(store.Statement{
		Text:        `SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`,
		Args:        []any{"schema_migrations"},
		ReturnsRows: true,
	})
	if err != nil {
		return store.StateUninitialized, fmt.Errorf("failed to check schema_migrations table: %w", err)
	}
	if rs.Len() == 0 || toInt64(rs.Rows[0][0]) == 0 {
		return store.StateUninitialized, nil
	}

	version, err := GetSchemaVersion(conn)
	if err != nil {
		return store.StateUninitialized, fmt.Errorf("failed to get schema version: %w", err)
	}
	if version != expectedSchema {
		return store.StateVersionMismatch, nil
	}
	return store.StateReady, nil
}

// GetSchemaVersion returns the most recently applied schema version, or "".
func GetSchemaVersion(conn store.Executor) (string, error) {
	rs, err := conn.Execute(store.Statement{
		Text:        `SELECT version FROM schema_migrations ORDER BY applied_at DESC, rowid DESC LIMIT 1`,
		ReturnsRows: true,
	})
	if err != nil {
		return "", fmt.Errorf("failed to query schema version: %w", err)
	}
	if rs.Len() == 0 {
		return "", nil
	}
	switch v := rs.Rows[0][0].(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	}
	return "", fmt.Errorf("unexpected schema version %v (%T)", rs.Rows[0][0], rs.Rows[0][0])
}

func toInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	}
	return 0
}
