package store

import "errors"

var (
	// ErrNotOpen is returned when a statement is executed on a closed connection.
	ErrNotOpen = errors.New("database not opened")

	// ErrIO wraps file system failures while opening or creating the database.
	ErrIO = errors.New("database file error")

	// ErrQuery wraps a driver rejection: syntax, constraint violation, type mismatch.
	ErrQuery = errors.New("query failed")

	// ErrAlreadyOpen is returned when Open names a different file than the open one.
	ErrAlreadyOpen = errors.New("connection already open on another file")
)
