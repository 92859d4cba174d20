package table

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/maloquacious/sqltable/internal/store"
)

// The builders below are pure: they never touch a connection and report misuse
// before a statement exists. Identifiers come from a validated Schema and are
// quoted; every value is bound as a parameter.

// BuildCreate returns the idempotent CREATE TABLE statement for s.
func BuildCreate(s *Schema) store.Statement {
	var sb strings.Builder
	sb.WriteString("CREATE TABLE IF NOT EXISTS ")
	sb.WriteString(quote(s.name))
	sb.WriteString(" (")
	for i, c := range s.columns {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(quote(c.Name))
		sb.WriteByte(' ')
		sb.WriteString(sqlType(c))
		if c.Primary {
			sb.WriteString(" PRIMARY KEY")
		}
		if !c.AllowNull {
			sb.WriteString(" NOT NULL")
		}
		if c.Unique {
			sb.WriteString(" UNIQUE")
		}
	}
	sb.WriteString(");")
	return store.Statement{Text: sb.String()}
}

// BuildInsert binds id to the identifier column and values, in schema order,
// to the data columns.
func BuildInsert(s *Schema, id string, values []string) (store.Statement, error) {
	data := s.columns[1:]
	if len(values) != len(data) {
		return store.Statement{}, fmt.Errorf("%w: table %q has %d data columns, got %d values", ErrArity, s.name, len(data), len(values))
	}

	args := make([]any, 0, len(s.columns))
	idArg, err := encode(s.columns[0], id)
	if err != nil {
		return store.Statement{}, err
	}
	args = append(args, idArg)
	for i, c := range data {
		v, err := encode(c, values[i])
		if err != nil {
			return store.Statement{}, err
		}
		args = append(args, v)
	}
	return insertStatement(s, s.columns, args), nil
}

// BuildInsertRecord is BuildInsert with values addressed by column name.
// Omitted nullable columns are stored as NULL.
func BuildInsertRecord(s *Schema, id string, values map[string]string) (store.Statement, error) {
	for name := range values {
		c, ok := s.Column(name)
		if !ok {
			return store.Statement{}, fmt.Errorf("%w: %q in table %q", ErrUnknownColumn, name, s.name)
		}
		if c.Primary {
			return store.Statement{}, fmt.Errorf("%w: %q is generated", ErrInvalidValue, c.Name)
		}
	}

	idArg, err := encode(s.columns[0], id)
	if err != nil {
		return store.Statement{}, err
	}
	args := []any{idArg}
	for _, c := range s.columns[1:] {
		v, ok := lookup(values, c.Name)
		if !ok {
			if !c.AllowNull {
				return store.Statement{}, fmt.Errorf("%w: missing value for column %q", ErrArity, c.Name)
			}
			args = append(args, nil)
			continue
		}
		arg, err := encode(c, v)
		if err != nil {
			return store.Statement{}, err
		}
		args = append(args, arg)
	}
	return insertStatement(s, s.columns, args), nil
}

// BuildSelect projects the visible columns (all columns with includeHidden)
// of the rows matching every condition. A zero limit means no limit.
func BuildSelect(s *Schema, conds []Condition, includeHidden bool, offset, limit uint64) (store.Statement, error) {
	where, args, err := whereClause(s, conds)
	if err != nil {
		return store.Statement{}, err
	}

	// the identifier is never hidden, so it always leads the projection
	cols := s.Visible(includeHidden)
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = quote(c.Name)
	}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(strings.Join(names, ", "))
	sb.WriteString(" FROM ")
	sb.WriteString(quote(s.name))
	sb.WriteString(where)

	if limit > 0 || offset > 0 {
		l, o, err := pageArgs(offset, limit)
		if err != nil {
			return store.Statement{}, err
		}
		sb.WriteString(" LIMIT ? OFFSET ?")
		args = append(args, l, o)
	}
	sb.WriteByte(';')

	return store.Statement{Text: sb.String(), Args: args, ReturnsRows: true}, nil
}

// BuildCount counts the rows matching every condition.
func BuildCount(s *Schema, conds []Condition) (store.Statement, error) {
	where, args, err := whereClause(s, conds)
	if err != nil {
		return store.Statement{}, err
	}
	return store.Statement{
		Text:        "SELECT COUNT(*) FROM " + quote(s.name) + where + ";",
		Args:        args,
		ReturnsRows: true,
	}, nil
}

// BuildDelete deletes the rows matching every condition.
// An empty condition list is rejected; use BuildDeleteAll to clear a table.
func BuildDelete(s *Schema, conds []Condition) (store.Statement, error) {
	if len(conds) == 0 {
		return store.Statement{}, fmt.Errorf("%w: delete from %q", ErrEmptyCondition, s.name)
	}
	where, args, err := whereClause(s, conds)
	if err != nil {
		return store.Statement{}, err
	}
	return store.Statement{Text: "DELETE FROM " + quote(s.name) + where + ";", Args: args}, nil
}

// BuildDeleteAll deletes every row of the table.
func BuildDeleteAll(s *Schema) store.Statement {
	return store.Statement{Text: "DELETE FROM " + quote(s.name) + ";"}
}

// BuildUpdate sets the named columns on the rows matching every condition.
// Assignments are emitted in schema order.
func BuildUpdate(s *Schema, conds []Condition, values map[string]string) (store.Statement, error) {
	if len(conds) == 0 {
		return store.Statement{}, fmt.Errorf("%w: update %q", ErrEmptyCondition, s.name)
	}
	if len(values) == 0 {
		return store.Statement{}, fmt.Errorf("%w: update %q sets no columns", ErrArity, s.name)
	}
	for name := range values {
		c, ok := s.Column(name)
		if !ok {
			return store.Statement{}, fmt.Errorf("%w: %q in table %q", ErrUnknownColumn, name, s.name)
		}
		if c.Primary {
			return store.Statement{}, fmt.Errorf("%w: identifier column %q cannot be updated", ErrInvalidValue, c.Name)
		}
	}

	var sets []string
	var args []any
	for _, c := range s.columns[1:] {
		v, ok := lookup(values, c.Name)
		if !ok {
			continue
		}
		arg, err := encode(c, v)
		if err != nil {
			return store.Statement{}, err
		}
		sets = append(sets, quote(c.Name)+" = ?")
		args = append(args, arg)
	}

	where, whereArgs, err := whereClause(s, conds)
	if err != nil {
		return store.Statement{}, err
	}
	args = append(args, whereArgs...)

	return store.Statement{
		Text: "UPDATE " + quote(s.name) + " SET " + strings.Join(sets, ", ") + where + ";",
		Args: args,
	}, nil
}

func insertStatement(s *Schema, cols []Column, args []any) store.Statement {
	names := make([]string, len(cols))
	marks := make([]string, len(cols))
	for i, c := range cols {
		names[i] = quote(c.Name)
		marks[i] = "?"
	}
	return store.Statement{
		Text: "INSERT INTO " + quote(s.name) + " (" + strings.Join(names, ", ") + ") VALUES (" + strings.Join(marks, ", ") + ");",
		Args: args,
	}
}

// whereClause returns " WHERE a = ? AND b = ?" and its arguments, or "" for
// no conditions. "" on a nullable column matches NULL.
func whereClause(s *Schema, conds []Condition) (string, []any, error) {
	if len(conds) == 0 {
		return "", nil, nil
	}
	parts := make([]string, 0, len(conds))
	args := make([]any, 0, len(conds))
	for _, cond := range conds {
		c, ok := s.Column(cond.Column)
		if !ok {
			return "", nil, fmt.Errorf("%w: %q in table %q", ErrUnknownColumn, cond.Column, s.name)
		}
		if c.AllowNull && cond.Value == "" {
			parts = append(parts, quote(c.Name)+" IS NULL")
			continue
		}
		value := cond.Value
		if c.Primary {
			value = normalizeID(value)
		}
		arg, err := encode(Column{Name: c.Name, Type: c.Type}, value)
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, quote(c.Name)+" = ?")
		args = append(args, arg)
	}
	return " WHERE " + strings.Join(parts, " AND "), args, nil
}

func pageArgs(offset, limit uint64) (int64, int64, error) {
	if offset > math.MaxInt64 || limit > math.MaxInt64 {
		return 0, 0, fmt.Errorf("%w: offset/limit out of range", ErrInvalidValue)
	}
	l := int64(-1)
	if limit > 0 {
		l = int64(limit)
	}
	return l, int64(offset), nil
}

// lookup finds a value by column name, ignoring case.
func lookup(values map[string]string, name string) (string, bool) {
	if v, ok := values[name]; ok {
		return v, true
	}
	for k, v := range values {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return "", false
}

func sqlType(c Column) string {
	switch c.Type {
	case Integer:
		return "INT"
	case Boolean:
		return "BOOL"
	default:
		if c.MaxLength > 0 {
			return "VARCHAR(" + strconv.Itoa(c.MaxLength) + ")"
		}
		return "TEXT"
	}
}

func quote(name string) string {
	return `"` + name + `"`
}
