package table

import (
	"fmt"
	"regexp"
	"strings"
)

// ColumnType is the logical type of a column.
type ColumnType int

const (
	Text ColumnType = iota
	Integer
	Boolean
)

func (t ColumnType) String() string {
	switch t {
	case Text:
		return "text"
	case Integer:
		return "integer"
	case Boolean:
		return "boolean"
	}
	return fmt.Sprintf("ColumnType(%d)", int(t))
}

const (
	// IDColumn is the name of the identifier column every table starts with.
	IDColumn = "uuid"

	// idLength is the length of a canonical hyphenated UUID.
	idLength = 36
)

// Column describes one column of a table.
type Column struct {
	Name string
	Type ColumnType

	// MaxLength limits Text values, counted in runes. Zero means unbounded.
	MaxLength int

	Primary bool

	// AllowNull columns store "" as NULL and read NULL back as "".
	AllowNull bool

	// Unique columns reject a second row with the same value.
	Unique bool

	// Hidden columns are left out of projections unless explicitly requested.
	Hidden bool
}

var validName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Schema is an immutable, ordered column set for one table.
// The first column is always the identifier.
type Schema struct {
	name    string
	columns []Column
	index   map[string]int
}

// NewSchema validates columns and returns a schema whose first column is the
// generated identifier. Callers declare only their data columns.
func NewSchema(name string, columns ...Column) (*Schema, error) {
	if !validName.MatchString(name) {
		return nil, fmt.Errorf("%w: table name %q", ErrInvalidSchema, name)
	}
	if strings.HasPrefix(strings.ToLower(name), "sqlite_") {
		return nil, fmt.Errorf("%w: table name %q is reserved", ErrInvalidSchema, name)
	}

	s := &Schema{
		name: name,
		columns: []Column{{
			Name:      IDColumn,
			Type:      Text,
			MaxLength: idLength,
			Primary:   true,
		}},
		index: map[string]int{IDColumn: 0},
	}

	for _, c := range columns {
		if !validName.MatchString(c.Name) {
			return nil, fmt.Errorf("%w: column name %q", ErrInvalidSchema, c.Name)
		}
		key := strings.ToLower(c.Name)
		if _, dup := s.index[key]; dup {
			return nil, fmt.Errorf("%w: duplicate column %q", ErrInvalidSchema, c.Name)
		}
		if c.Primary {
			return nil, fmt.Errorf("%w: column %q cannot be primary, %q is the primary key", ErrInvalidSchema, c.Name, IDColumn)
		}
		switch c.Type {
		case Text, Integer, Boolean:
		default:
			return nil, fmt.Errorf("%w: column %q has unknown type %v", ErrInvalidSchema, c.Name, c.Type)
		}
		if c.Unique && c.AllowNull {
			return nil, fmt.Errorf("%w: unique column %q cannot be nullable", ErrInvalidSchema, c.Name)
		}
		if c.MaxLength < 0 {
			return nil, fmt.Errorf("%w: column %q has negative max length", ErrInvalidSchema, c.Name)
		}
		if c.MaxLength > 0 && c.Type != Text {
			return nil, fmt.Errorf("%w: max length on %v column %q", ErrInvalidSchema, c.Type, c.Name)
		}
		s.index[key] = len(s.columns)
		s.columns = append(s.columns, c)
	}

	return s, nil
}

// MustSchema is like NewSchema but panics on error.
// It is meant for package-level table definitions.
func MustSchema(name string, columns ...Column) *Schema {
	s, err := NewSchema(name, columns...)
	if err != nil {
		panic(err)
	}
	return s
}

// Name returns the table name.
func (s *Schema) Name() string { return s.name }

// Columns returns a copy of all columns in order.
func (s *Schema) Columns() []Column {
	return append([]Column(nil), s.columns...)
}

// Column looks up a column by name, ignoring case as the engine does.
func (s *Schema) Column(name string) (Column, bool) {
	i, ok := s.index[strings.ToLower(name)]
	if !ok {
		return Column{}, false
	}
	return s.columns[i], true
}

// DataColumns returns every column except the identifier.
func (s *Schema) DataColumns() []Column {
	return append([]Column(nil), s.columns[1:]...)
}

// Visible returns the projected columns. Hidden columns are included only
// when includeHidden is set.
func (s *Schema) Visible(includeHidden bool) []Column {
	out := make([]Column, 0, len(s.columns))
	for _, c := range s.columns {
		if c.Hidden && !includeHidden {
			continue
		}
		out = append(out, c)
	}
	return out
}
