package table

import "errors"

var (
	// ErrInvalidSchema reports a table or column definition that cannot be used,
	// including names that would need escaping.
	ErrInvalidSchema = errors.New("invalid schema")

	// ErrArity means the number of supplied values does not match the data columns.
	ErrArity = errors.New("wrong number of values")

	// ErrEmptyCondition is returned when an operation that must not match every
	// row is called without conditions.
	ErrEmptyCondition = errors.New("condition list is empty")

	// ErrUnknownColumn names a column that is not part of the schema.
	ErrUnknownColumn = errors.New("unknown column")

	// ErrInvalidValue means a value cannot be encoded for its column type.
	ErrInvalidValue = errors.New("invalid value")

	// ErrNotFound is returned by single-row reads that matched nothing.
	ErrNotFound = errors.New("row not found")

	// ErrAmbiguousResult is returned by single-row reads that matched several rows.
	ErrAmbiguousResult = errors.New("more than one row matched")
)
