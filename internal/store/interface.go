package store

// StoreState represents the initialization state of the datastore.
type StoreState int

const (
	StateMissing         StoreState = iota // File doesn't exist
	StateUninitialized                     // File exists but no schema
	StateVersionMismatch                   // Schema exists but wrong version
	StateReady                             // Initialized and correct version
)

func (s StoreState) String() string {
	switch s {
	case StateMissing:
		return "missing"
	case StateUninitialized:
		return "uninitialized"
	case StateVersionMismatch:
		return "version mismatch"
	case StateReady:
		return "ready"
	}
	return "unknown"
}

// Driver opens handles to a single database file.
// It is the only component that knows which storage engine is in use.
type Driver interface {
	// Open opens the database at path, creating it if needed.
	Open(path string) (Handle, error)
}

// Handle is one open database.
// Callers serialize access; implementations need not be safe for concurrent use.
type Handle interface {
	// Query runs a statement that returns rows.
	Query(query string, args ...any) (*ResultSet, error)

	// Exec runs a statement that does not return rows and reports the rows affected.
	Exec(query string, args ...any) (int64, error)

	// Close releases the handle.
	Close() error
}

// Executor runs built statements.
// *Connection is the production implementation.
type Executor interface {
	Execute(stmt Statement) (*ResultSet, error)
}
