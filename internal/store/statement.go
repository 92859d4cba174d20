package store

// Statement is query text plus the values bound to its placeholders.
// Values are never spliced into Text.
type Statement struct {
	Text string
	Args []any

	// ReturnsRows selects Query over Exec when the statement is run.
	ReturnsRows bool
}

// ResultSet is the raw outcome of one executed statement.
// Cells hold whatever the driver produced (nil, int64, float64, string, bool).
type ResultSet struct {
	Columns      []string
	Rows         [][]any
	RowsAffected int64
}

// Len returns the number of rows.
func (rs *ResultSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.Rows)
}

// Index returns the position of the named column, or -1.
func (rs *ResultSet) Index(column string) int {
	for i, c := range rs.Columns {
		if c == column {
			return i
		}
	}
	return -1
}
