package table

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/maloquacious/sqltable/internal/store"
)

// IDGenerator produces row identifiers.
type IDGenerator interface {
	NewID() string
}

// IDFunc adapts a function to IDGenerator.
type IDFunc func() string

func (f IDFunc) NewID() string { return f() }

// UUIDGenerator yields random lowercase canonical UUIDs.
var UUIDGenerator IDGenerator = IDFunc(uuid.NewString)

// Table is the operation set every configured table exposes.
type Table interface {
	// Initialize creates the table if it does not exist.
	Initialize() error

	// Insert stores one row and returns its generated identifier.
	Insert(values ...string) (string, error)

	// SelectOne returns the single row matching conds.
	SelectOne(conds []Condition, includeHidden bool) (*Record, error)

	// SelectMany returns the matching rows; no conditions means all rows.
	SelectMany(conds []Condition, includeHidden bool, offset, limit uint64) (*Rows, error)

	// DeleteMany deletes the rows matching conds, which must not be empty.
	DeleteMany(conds []Condition) error

	// DeleteAll deletes every row.
	DeleteAll() error

	// Update sets columns on the rows matching conds, which must not be empty.
	Update(conds []Condition, values map[string]string) error

	// Count counts the matching rows; no conditions means all rows.
	Count(conds []Condition) (int64, error)
}

// SQLTable binds a Schema to an Executor.
type SQLTable struct {
	conn   store.Executor
	schema *Schema
	ids    IDGenerator
}

var _ Table = (*SQLTable)(nil)

// Option configures a SQLTable.
type Option func(*SQLTable)

// WithIDGenerator replaces the UUID generator, mostly for tests.
func WithIDGenerator(g IDGenerator) Option {
	return func(t *SQLTable) {
		if g != nil {
			t.ids = g
		}
	}
}

// New creates a table over conn. The connection is borrowed, not owned.
func New(conn store.Executor, schema *Schema, opts ...Option) *SQLTable {
	t := &SQLTable{
		conn:   conn,
		schema: schema,
		ids:    UUIDGenerator,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Schema returns the table definition.
func (t *SQLTable) Schema() *Schema { return t.schema }

func (t *SQLTable) Initialize() error {
	if _, err := t.conn.Execute(BuildCreate(t.schema)); err != nil {
		return fmt.Errorf("failed to create table %q: %w", t.schema.name, err)
	}
	return nil
}

func (t *SQLTable) Insert(values ...string) (string, error) {
	id := normalizeID(t.ids.NewID())
	stmt, err := BuildInsert(t.schema, id, values)
	if err != nil {
		return "", err
	}
	if _, err := t.conn.Execute(stmt); err != nil {
		return "", fmt.Errorf("failed to insert into %q: %w", t.schema.name, err)
	}
	return id, nil
}

// InsertRecord stores one row given values by column name.
func (t *SQLTable) InsertRecord(values map[string]string) (string, error) {
	id := normalizeID(t.ids.NewID())
	stmt, err := BuildInsertRecord(t.schema, id, values)
	if err != nil {
		return "", err
	}
	if _, err := t.conn.Execute(stmt); err != nil {
		return "", fmt.Errorf("failed to insert into %q: %w", t.schema.name, err)
	}
	return id, nil
}

func (t *SQLTable) SelectOne(conds []Condition, includeHidden bool) (*Record, error) {
	if len(conds) == 0 {
		return nil, fmt.Errorf("%w: select one from %q", ErrEmptyCondition, t.schema.name)
	}
	// two rows are enough to tell one from many
	stmt, err := BuildSelect(t.schema, conds, includeHidden, 0, 2)
	if err != nil {
		return nil, err
	}
	rs, err := t.conn.Execute(stmt)
	if err != nil {
		return nil, fmt.Errorf("failed to select from %q: %w", t.schema.name, err)
	}
	return MapRecord(t.schema, rs, includeHidden)
}

// Get returns the row with identifier id.
func (t *SQLTable) Get(id string, includeHidden bool) (*Record, error) {
	return t.SelectOne(ByID(id), includeHidden)
}

func (t *SQLTable) SelectMany(conds []Condition, includeHidden bool, offset, limit uint64) (*Rows, error) {
	stmt, err := BuildSelect(t.schema, conds, includeHidden, offset, limit)
	if err != nil {
		return nil, err
	}
	rs, err := t.conn.Execute(stmt)
	if err != nil {
		return nil, fmt.Errorf("failed to select from %q: %w", t.schema.name, err)
	}
	return MapRows(t.schema, rs, includeHidden)
}

func (t *SQLTable) DeleteMany(conds []Condition) error {
	stmt, err := BuildDelete(t.schema, conds)
	if err != nil {
		return err
	}
	if _, err := t.conn.Execute(stmt); err != nil {
		return fmt.Errorf("failed to delete from %q: %w", t.schema.name, err)
	}
	return nil
}

// Delete removes the row with identifier id. A missing row is not an error.
func (t *SQLTable) Delete(id string) error {
	return t.DeleteMany(ByID(id))
}

func (t *SQLTable) DeleteAll() error {
	if _, err := t.conn.Execute(BuildDeleteAll(t.schema)); err != nil {
		return fmt.Errorf("failed to delete from %q: %w", t.schema.name, err)
	}
	return nil
}

func (t *SQLTable) Update(conds []Condition, values map[string]string) error {
	stmt, err := BuildUpdate(t.schema, conds, values)
	if err != nil {
		return err
	}
	if _, err := t.conn.Execute(stmt); err != nil {
		return fmt.Errorf("failed to update %q: %w", t.schema.name, err)
	}
	return nil
}

func (t *SQLTable) Count(conds []Condition) (int64, error) {
	stmt, err := BuildCount(t.schema, conds)
	if err != nil {
		return 0, err
	}
	rs, err := t.conn.Execute(stmt)
	if err != nil {
		return 0, fmt.Errorf("failed to count %q: %w", t.schema.name, err)
	}
	if rs.Len() != 1 || len(rs.Rows[0]) != 1 {
		return 0, fmt.Errorf("%w: count returned %d rows", ErrAmbiguousResult, rs.Len())
	}
	v, err := decode(Column{Name: "count", Type: Integer}, rs.Rows[0][0])
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: count %q", ErrInvalidValue, v)
	}
	return n, nil
}
