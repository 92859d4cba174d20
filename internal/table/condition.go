package table

// Condition is one equality filter, column = value.
type Condition struct {
	Column string
	Value  string
}

// Where builds a Condition.
func Where(column, value string) Condition {
	return Condition{Column: column, Value: value}
}

// ByID matches the row with the given identifier.
func ByID(id string) []Condition {
	return []Condition{Where(IDColumn, normalizeID(id))}
}
