package store

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/maloquacious/sqltable/internal/logger"
)

// Connection owns one handle to a single database file and serializes every
// statement executed through it.
//
// Two Connections opened on the same file are not coordinated with each other;
// the engine's own file locking is the only protection. Callers that need more
// than one writer must arrange that themselves.
type Connection struct {
	mu     sync.Mutex
	driver Driver
	log    logger.Logger
	path   string
	handle Handle
}

// Option configures a Connection.
type Option func(*Connection)

// WithLogger sets the sink for diagnostic messages.
func WithLogger(l logger.Logger) Option {
	return func(c *Connection) {
		if l != nil {
			c.log = l
		}
	}
}

// NewConnection returns a closed Connection that will open files through driver.
func NewConnection(driver Driver, opts ...Option) *Connection {
	c := &Connection{
		driver: driver,
		log:    logger.Discard,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Open opens or creates the database at path.
// Opening the file that is already open is a no-op.
func (c *Connection) Open(path string) error {
	target, err := normalizePath(path)
	if err != nil {
		return errors.Join(ErrIO, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.handle != nil {
		if c.path == target {
			return nil
		}
		return fmt.Errorf("%w: %s", ErrAlreadyOpen, c.path)
	}

	h, err := c.driver.Open(target)
	if err != nil {
		c.log.Error("open %s: %v", target, err)
		if errors.Is(err, ErrIO) {
			return err
		}
		return errors.Join(ErrIO, err)
	}

	c.handle = h
	c.path = target
	c.log.Info("opened database %s", target)
	return nil
}

// Close closes the handle if open. Closing a closed connection is a no-op.
func (c *Connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.handle == nil {
		return nil
	}

	err := c.handle.Close()
	c.handle = nil
	if err != nil {
		c.log.Error("close %s: %v", c.path, err)
		return fmt.Errorf("failed to close database: %w", err)
	}
	c.log.Info("closed database %s", c.path)
	return nil
}

// IsOpen reports whether the connection holds an open handle.
func (c *Connection) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.handle != nil
}

// Path returns the file the connection was last opened on.
func (c *Connection) Path() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.path
}

// Execute runs stmt with its bound arguments.
// Statements on one connection never overlap, reads included.
func (c *Connection) Execute(stmt Statement) (*ResultSet, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.handle == nil {
		return nil, ErrNotOpen
	}

	c.log.Debug("exec: %s", stmt.Text)

	if stmt.ReturnsRows {
		rs, err := c.handle.Query(stmt.Text, stmt.Args...)
		if err != nil {
			c.log.Error("query %q: %v", stmt.Text, err)
			return nil, queryError(err)
		}
		return rs, nil
	}

	n, err := c.handle.Exec(stmt.Text, stmt.Args...)
	if err != nil {
		c.log.Error("exec %q: %v", stmt.Text, err)
		return nil, queryError(err)
	}
	return &ResultSet{RowsAffected: n}, nil
}

func queryError(err error) error {
	if errors.Is(err, ErrQuery) {
		return err
	}
	return errors.Join(ErrQuery, err)
}

// normalizePath maps every spelling of a file to one target so that repeated
// opens are recognized. In-memory and URI names pass through unchanged.
func normalizePath(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("empty database path")
	}
	if path == ":memory:" || strings.HasPrefix(path, "file:") {
		return path, nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %q: %w", path, err)
	}
	return abs, nil
}
