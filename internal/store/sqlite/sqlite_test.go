package sqlite

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/maloquacious/sqltable/internal/store"
)

// openTestConn returns an open connection on a fresh file in a temp dir.
func openTestConn(t *testing.T) (*store.Connection, string) {
	t.Helper()

	d, err := New(Options{})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), store.DefaultDBFile)
	c := store.NewConnection(d)
	require.NoError(t, c.Open(path))
	t.Cleanup(func() { _ = c.Close() })
	return c, path
}

func TestNew_Options(t *testing.T) {
	d, err := New(Options{JournalMode: "delete", Synchronous: "full"})
	require.NoError(t, err)
	require.Equal(t, "DELETE", d.opts.JournalMode)
	require.Equal(t, "FULL", d.opts.Synchronous)
	require.Equal(t, 5*time.Second, d.opts.BusyTimeout)

	_, err = New(Options{JournalMode: "WAL; DROP TABLE users"})
	require.Error(t, err)

	_, err = New(Options{Synchronous: "sometimes"})
	require.Error(t, err)
}

func TestOpen_CreatesFile(t *testing.T) {
	_, path := openTestConn(t)

	exists, err := store.CheckExists(path)
	require.NoError(t, err)
	require.True(t, exists)
}

func TestOpen_MissingDirectory(t *testing.T) {
	d, err := New(DefaultOptions)
	require.NoError(t, err)

	c := store.NewConnection(d)
	err = c.Open(filepath.Join(t.TempDir(), "no", "such", "dir", "x.db"))
	require.ErrorIs(t, err, store.ErrIO)
	require.False(t, c.IsOpen())
}

func TestOpen_ReadOnlyDirectory(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("root ignores directory permissions")
	}
	dir := filepath.Join(t.TempDir(), "ro")
	require.NoError(t, os.Mkdir(dir, 0o500))

	d, err := New(DefaultOptions)
	require.NoError(t, err)

	c := store.NewConnection(d)
	err = c.Open(filepath.Join(dir, "x.db"))
	require.ErrorIs(t, err, store.ErrIO)
}

func TestExecute_BoundParameters(t *testing.T) {
	c, _ := openTestConn(t)

	_, err := c.Execute(store.Statement{Text: `CREATE TABLE t (s TEXT, n INT, b BOOL)`})
	require.NoError(t, err)

	tricky := `O'Brien"; DROP TABLE t; --`
	rs, err := c.Execute(store.Statement{
		Text: `INSERT INTO t (s, n, b) VALUES (?, ?, ?)`,
		Args: []any{tricky, int64(-42), int64(1)},
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), rs.RowsAffected)

	rs, err = c.Execute(store.Statement{
		Text:        `SELECT s, n, b FROM t WHERE s = ?`,
		Args:        []any{tricky},
		ReturnsRows: true,
	})
	require.NoError(t, err)
	require.Equal(t, []string{"s", "n", "b"}, rs.Columns)
	require.Equal(t, 1, rs.Len())
	require.Equal(t, tricky, rs.Rows[0][0])
	require.Equal(t, int64(-42), rs.Rows[0][1])
}

func TestExecute_QueryError(t *testing.T) {
	c, _ := openTestConn(t)

	_, err := c.Execute(store.Statement{Text: `SELEKT 1`, ReturnsRows: true})
	require.ErrorIs(t, err, store.ErrQuery)

	_, err = c.Execute(store.Statement{Text: `CREATE TABLE t (id TEXT PRIMARY KEY)`})
	require.NoError(t, err)
	_, err = c.Execute(store.Statement{Text: `INSERT INTO t (id) VALUES (?)`, Args: []any{"a"}})
	require.NoError(t, err)
	_, err = c.Execute(store.Statement{Text: `INSERT INTO t (id) VALUES (?)`, Args: []any{"a"}})
	require.ErrorIs(t, err, store.ErrQuery)
}

func TestSchemaState(t *testing.T) {
	c, _ := openTestConn(t)

	state, err := CheckState(c, "0.1")
	require.NoError(t, err)
	require.Equal(t, store.StateUninitialized, state)

	require.NoError(t, InitSchema(c, "0.1"))
	require.NoError(t, InitSchema(c, "0.1"))

	v, err := GetSchemaVersion(c)
	require.NoError(t, err)
	require.Equal(t, "0.1", v)

	state, err = CheckState(c, "0.1")
	require.NoError(t, err)
	require.Equal(t, store.StateReady, state)

	state, err = CheckState(c, "0.2")
	require.NoError(t, err)
	require.Equal(t, store.StateVersionMismatch, state)
}

func TestSchemaState_NullVersion(t *testing.T) {
	c, _ := openTestConn(t)

	require.NoError(t, InitSchema(c, "0.1"))
	// SQLite accepts NULL in a non-integer primary key
	_, err := c.Execute(store.Statement{
		Text: `INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)`,
		Args: []any{nil, int64(1) << 40},
	})
	require.NoError(t, err)

	_, err = GetSchemaVersion(c)
	require.Error(t, err)
	_, err = CheckState(c, "0.1")
	require.Error(t, err)
}

func TestSchemaState_Closed(t *testing.T) {
	d, err := New(DefaultOptions)
	require.NoError(t, err)
	c := store.NewConnection(d)

	_, err = CheckState(c, "0.1")
	require.ErrorIs(t, err, store.ErrNotOpen)
	require.ErrorIs(t, InitSchema(c, "0.1"), store.ErrNotOpen)
}
