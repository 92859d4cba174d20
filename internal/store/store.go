package store

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	DefaultDBFile = "sqltable.db"
)

// CheckExists verifies if the database file exists at dbPath.
// A directory at that path is an error, not a missing file.
func CheckExists(dbPath string) (bool, error) {
	info, err := os.Stat(dbPath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("%w: failed to check database: %v", ErrIO, err)
	}
	if info.IsDir() {
		return false, fmt.Errorf("%w: database path is a directory, expected file: %s", ErrIO, dbPath)
	}
	return true, nil
}

// GetDBPath returns the full path to the database file inside dir.
// An empty dir means the current working directory.
func GetDBPath(dir string) string {
	if dir == "" {
		dir = "."
	}
	return filepath.Join(dir, DefaultDBFile)
}

// FileSize returns the on-disk size of the database, including any WAL file.
func FileSize(dbPath string) (int64, error) {
	var total int64
	for _, p := range []string{dbPath, dbPath + "-wal"} {
		info, err := os.Stat(p)
		if err != nil {
			if os.IsNotExist(err) && p != dbPath {
				continue
			}
			return 0, fmt.Errorf("%w: %v", ErrIO, err)
		}
		total += info.Size()
	}
	return total, nil
}
