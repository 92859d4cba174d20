package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/maloquacious/sqltable/internal/store"
	_ "modernc.org/sqlite"
)

// Options tune the pragmas applied when a database is opened.
type Options struct {
	BusyTimeout time.Duration
	JournalMode string
	Synchronous string
}

// DefaultOptions are the safe defaults used when nothing is configured.
var DefaultOptions = Options{
	BusyTimeout: 5 * time.Second,
	JournalMode: "WAL",
	Synchronous: "NORMAL",
}

var (
	journalModes = map[string]bool{"DELETE": true, "TRUNCATE": true, "PERSIST": true, "MEMORY": true, "WAL": true, "OFF": true}
	syncModes    = map[string]bool{"OFF": true, "NORMAL": true, "FULL": true, "EXTRA": true}
)

// Driver implements store.Driver using modernc.org/sqlite.
type Driver struct {
	opts Options
}

// New creates a Driver. Zero fields in opts fall back to DefaultOptions.
func New(opts Options) (*Driver, error) {
	if opts.BusyTimeout <= 0 {
		opts.BusyTimeout = DefaultOptions.BusyTimeout
	}
	if opts.JournalMode == "" {
		opts.JournalMode = DefaultOptions.JournalMode
	}
	if opts.Synchronous == "" {
		opts.Synchronous = DefaultOptions.Synchronous
	}
	opts.JournalMode = strings.ToUpper(opts.JournalMode)
	opts.Synchronous = strings.ToUpper(opts.Synchronous)
	if !journalModes[opts.JournalMode] {
		return nil, fmt.Errorf("invalid journal mode %q", opts.JournalMode)
	}
	if !syncModes[opts.Synchronous] {
		return nil, fmt.Errorf("invalid synchronous mode %q", opts.Synchronous)
	}
	return &Driver{opts: opts}, nil
}

// Open opens the SQLite database at path with the configured pragmas.
func (d *Driver) Open(path string) (store.Handle, error) {
	if path != ":memory:" && !strings.HasPrefix(path, "file:") {
		dir := filepath.Dir(path)
		info, err := os.Stat(dir)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", store.ErrIO, err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%w: not a directory: %s", store.ErrIO, dir)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open database: %v", store.ErrIO, err)
	}
	// one handle per connection; the store serializes access above us
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=" + d.opts.JournalMode,
		"PRAGMA synchronous=" + d.opts.Synchronous,
		"PRAGMA foreign_keys=ON",
		fmt.Sprintf("PRAGMA busy_timeout=%d", d.opts.BusyTimeout.Milliseconds()),
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("%w: failed to set pragma %q: %v", store.ErrIO, pragma, err)
		}
	}

	return &handle{db: db}, nil
}

type handle struct {
	db *sql.DB
}

func (h *handle) Exec(query string, args ...any) (int64, error) {
	res, err := h.db.Exec(query, args...)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n, nil
}

func (h *handle) Query(query string, args ...any) (*store.ResultSet, error) {
	rows, err := h.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	rs := &store.ResultSet{Columns: cols}
	for rows.Next() {
		cells := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range cells {
			ptrs[i] = &cells[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		for i, c := range cells {
			if b, ok := c.([]byte); ok {
				cells[i] = string(b)
			}
		}
		rs.Rows = append(rs.Rows, cells)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return rs, nil
}

func (h *handle) Close() error {
	return h.db.Close()
}
