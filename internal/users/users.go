// Package users is the user account table: a name, a hidden password hash
// and an admin flag, addressed by name.
package users

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"

	"github.com/maloquacious/sqltable/internal/store"
	"github.com/maloquacious/sqltable/internal/table"
)

const (
	ColName    = "name"
	ColPwHash  = "pw_hash"
	ColIsAdmin = "is_admin"
)

// Schema is the users table definition.
var Schema = table.MustSchema("users",
	table.Column{Name: ColName, Type: table.Text, MaxLength: 256, Unique: true},
	table.Column{Name: ColPwHash, Type: table.Text, MaxLength: 64, Hidden: true},
	table.Column{Name: ColIsAdmin, Type: table.Boolean},
)

// ErrExists is returned by Add when the name is taken.
var ErrExists = errors.New("user already exists")

// Users wraps the users table.
type Users struct {
	t *table.SQLTable
}

// New binds the users table to conn.
func New(conn store.Executor, opts ...table.Option) *Users {
	return &Users{t: table.New(conn, Schema, opts...)}
}

// Table exposes the underlying table for generic operations.
func (u *Users) Table() *table.SQLTable { return u.t }

// Init creates the table if needed.
func (u *Users) Init() error { return u.t.Initialize() }

// HashPassword returns the hex SHA-256 of password, which fits pw_hash.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// Add inserts a user and returns its identifier. The name column is UNIQUE,
// so a concurrent writer that wins the race makes Add fail with
// store.ErrQuery instead of ErrExists.
func (u *Users) Add(name, pwHash string, isAdmin bool) (string, error) {
	n, err := u.t.Count([]table.Condition{table.Where(ColName, name)})
	if err != nil {
		return "", err
	}
	if n > 0 {
		return "", fmt.Errorf("%w: %q", ErrExists, name)
	}
	return u.t.Insert(name, pwHash, strconv.FormatBool(isAdmin))
}

// Get returns the user called name.
func (u *Users) Get(name string, withHidden bool) (*table.Record, error) {
	return u.t.SelectOne(byName(name), withHidden)
}

// List returns a page of users; limit 0 means all.
func (u *Users) List(withHidden bool, offset, limit uint64) (*table.Rows, error) {
	return u.t.SelectMany(nil, withHidden, offset, limit)
}

// SetAdmin changes the admin flag of name.
func (u *Users) SetAdmin(name string, isAdmin bool) error {
	return u.update(name, map[string]string{ColIsAdmin: strconv.FormatBool(isAdmin)})
}

// SetPasswordHash replaces the password hash of name.
func (u *Users) SetPasswordHash(name, pwHash string) error {
	return u.update(name, map[string]string{ColPwHash: pwHash})
}

// CheckPassword reports whether password matches the stored hash of name.
func (u *Users) CheckPassword(name, password string) (bool, error) {
	rec, err := u.Get(name, true)
	if err != nil {
		return false, err
	}
	hash, _ := rec.Get(ColPwHash)
	return hash == HashPassword(password), nil
}

// Delete removes the user called name. Deleting a missing user succeeds.
func (u *Users) Delete(name string) error {
	return u.t.DeleteMany(byName(name))
}

// DeleteAll removes every user.
func (u *Users) DeleteAll() error {
	return u.t.DeleteAll()
}

// Count returns the number of users.
func (u *Users) Count() (int64, error) {
	return u.t.Count(nil)
}

func (u *Users) update(name string, values map[string]string) error {
	if _, err := u.Get(name, false); err != nil {
		return err
	}
	return u.t.Update(byName(name), values)
}

func byName(name string) []table.Condition {
	return []table.Condition{table.Where(ColName, name)}
}
