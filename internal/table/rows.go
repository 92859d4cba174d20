package table

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/maloquacious/sqltable/internal/store"
)

// Field is one named, typed cell of a Record.
type Field struct {
	Column string
	Type   ColumnType
	Value  string

	// Null is set when the stored value was NULL; Value is then "".
	Null bool
}

// Record is a single mapped row. The identifier is kept apart from the fields.
type Record struct {
	id     string
	fields []Field
}

// ID returns the row identifier.
func (r *Record) ID() string { return r.id }

// Fields returns the cells in projection order.
func (r *Record) Fields() []Field { return append([]Field(nil), r.fields...) }

// Len returns the number of fields.
func (r *Record) Len() int { return len(r.fields) }

// Get returns the canonical string value of column.
func (r *Record) Get(column string) (string, bool) {
	for _, f := range r.fields {
		if strings.EqualFold(f.Column, column) {
			return f.Value, true
		}
	}
	return "", false
}

// Map returns the fields keyed by column name.
func (r *Record) Map() map[string]string {
	m := make(map[string]string, len(r.fields))
	for _, f := range r.fields {
		m[f.Column] = f.Value
	}
	return m
}

// MarshalJSON encodes the record as an object with booleans and integers in
// their JSON types. Keys are sorted.
func (r *Record) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(r.fields))
	for _, f := range r.fields {
		if f.Null {
			m[f.Column] = nil
			continue
		}
		switch f.Type {
		case Boolean:
			m[f.Column] = f.Value == "true"
		case Integer:
			m[f.Column] = json.Number(f.Value)
		default:
			m[f.Column] = f.Value
		}
	}
	return json.Marshal(m)
}

// Rows is a tabular result: column names and string cells, plus the
// identifier of each row.
type Rows struct {
	Columns []string
	Values  [][]string
	IDs     []string
}

// Len returns the number of rows.
func (r *Rows) Len() int { return len(r.Values) }

// String renders the rows as an ASCII table:
//
//	+----------+----------+
//	| name     | is_admin |
//	+==========+==========+
//	| user0815 | true     |
//	+----------+----------+
func (r *Rows) String() string {
	widths := make([]int, len(r.Columns))
	for i, c := range r.Columns {
		widths[i] = utf8.RuneCountInString(c)
	}
	for _, row := range r.Values {
		for i, v := range row {
			if n := utf8.RuneCountInString(v); n > widths[i] {
				widths[i] = n
			}
		}
	}

	line := func(fill string) string {
		var sb strings.Builder
		sb.WriteByte('+')
		for _, w := range widths {
			sb.WriteString(strings.Repeat(fill, w+2))
			sb.WriteByte('+')
		}
		sb.WriteByte('\n')
		return sb.String()
	}
	cells := func(vals []string) string {
		var sb strings.Builder
		sb.WriteByte('|')
		for i, v := range vals {
			sb.WriteByte(' ')
			sb.WriteString(v)
			sb.WriteString(strings.Repeat(" ", widths[i]-utf8.RuneCountInString(v)))
			sb.WriteString(" |")
		}
		sb.WriteByte('\n')
		return sb.String()
	}

	var sb strings.Builder
	sb.WriteString(line("-"))
	sb.WriteString(cells(r.Columns))
	sb.WriteString(line("="))
	for _, row := range r.Values {
		sb.WriteString(cells(row))
	}
	if len(r.Values) > 0 {
		sb.WriteString(line("-"))
	}
	return sb.String()
}

// projection resolves result-set columns against the schema and drops hidden
// ones unless includeHidden is set. The identifier position is returned apart.
type projection struct {
	idx   []int
	cols  []Column
	idIdx int
}

func project(s *Schema, rs *store.ResultSet, includeHidden bool) projection {
	p := projection{idIdx: -1}
	for i, name := range rs.Columns {
		c, ok := s.Column(name)
		if !ok {
			c = Column{Name: name, Type: Text}
		}
		if c.Primary {
			p.idIdx = i
			continue
		}
		if c.Hidden && !includeHidden {
			continue
		}
		p.idx = append(p.idx, i)
		p.cols = append(p.cols, c)
	}
	return p
}

func (p projection) id(row []any) string {
	if p.idIdx < 0 || row[p.idIdx] == nil {
		return ""
	}
	return fmt.Sprint(row[p.idIdx])
}

// MapRecord maps a result expected to hold exactly one row.
func MapRecord(s *Schema, rs *store.ResultSet, includeHidden bool) (*Record, error) {
	switch rs.Len() {
	case 0:
		return nil, fmt.Errorf("%w: table %q", ErrNotFound, s.name)
	case 1:
	default:
		return nil, fmt.Errorf("%w: table %q", ErrAmbiguousResult, s.name)
	}

	p := project(s, rs, includeHidden)
	row := rs.Rows[0]
	rec := &Record{id: p.id(row), fields: make([]Field, 0, len(p.cols))}
	for i, c := range p.cols {
		v, err := decode(c, row[p.idx[i]])
		if err != nil {
			return nil, err
		}
		rec.fields = append(rec.fields, Field{Column: c.Name, Type: c.Type, Value: v, Null: row[p.idx[i]] == nil})
	}
	return rec, nil
}

// MapRows maps any number of rows into a tabular result.
func MapRows(s *Schema, rs *store.ResultSet, includeHidden bool) (*Rows, error) {
	if rs == nil {
		rs = &store.ResultSet{}
	}
	p := project(s, rs, includeHidden)
	out := &Rows{
		Columns: make([]string, len(p.cols)),
		Values:  make([][]string, 0, rs.Len()),
		IDs:     make([]string, 0, rs.Len()),
	}
	for i, c := range p.cols {
		out.Columns[i] = c.Name
	}
	for _, row := range rs.Rows {
		vals := make([]string, len(p.cols))
		for i, c := range p.cols {
			v, err := decode(c, row[p.idx[i]])
			if err != nil {
				return nil, err
			}
			vals[i] = v
		}
		out.Values = append(out.Values, vals)
		out.IDs = append(out.IDs, p.id(row))
	}
	return out, nil
}
