package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/maloquacious/sqltable/internal/config"
)

// run executes one CLI invocation as a separate process would.
func run(t *testing.T, dbPath string, args ...string) (string, error) {
	t.Helper()

	a := &app{v: config.New()}
	root := newRootCmd(a)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--db", dbPath, "--log-level", "error"}, args...))

	err := root.Execute()
	require.NoError(t, a.close())
	return out.String(), err
}

func TestCLI_UserLifecycle(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cli.db")

	_, err := run(t, dbPath, "db", "verify")
	require.Error(t, err)

	out, err := run(t, dbPath, "db", "create")
	require.NoError(t, err)
	require.Contains(t, out, "created")

	out, err = run(t, dbPath, "db", "verify")
	require.NoError(t, err)
	require.Contains(t, out, "state:    ready")

	out, err = run(t, dbPath, "users", "add", "user0815", "secret", "--admin")
	require.NoError(t, err)
	require.Len(t, strings.TrimSpace(out), 36)

	_, err = run(t, dbPath, "users", "add", "another user", "secret2")
	require.NoError(t, err)

	out, err = run(t, dbPath, "users", "get", "user0815", "--json")
	require.NoError(t, err)
	require.Equal(t, `{"is_admin":true,"name":"user0815"}`, strings.TrimSpace(out))

	out, err = run(t, dbPath, "users", "list")
	require.NoError(t, err)
	require.Contains(t, out, "| name         | is_admin |")
	require.Contains(t, out, "2 row(s)")
	require.NotContains(t, out, "pw_hash")

	out, err = run(t, dbPath, "users", "list", "--hidden", "--limit", "1")
	require.NoError(t, err)
	require.Contains(t, out, "pw_hash")
	require.Contains(t, out, "1 row(s)")

	_, err = run(t, dbPath, "users", "update", "user0815")
	require.Error(t, err)
	_, err = run(t, dbPath, "users", "update", "user0815", "--admin=false")
	require.NoError(t, err)
	out, err = run(t, dbPath, "users", "get", "user0815")
	require.NoError(t, err)
	require.Contains(t, out, "is_admin  false")

	out, err = run(t, dbPath, "db", "stats")
	require.NoError(t, err)
	require.Contains(t, out, "users: 2")

	_, err = run(t, dbPath, "users", "delete")
	require.Error(t, err)

	_, err = run(t, dbPath, "users", "delete", "user0815")
	require.NoError(t, err)
	out, err = run(t, dbPath, "users", "count")
	require.NoError(t, err)
	require.Equal(t, "1", strings.TrimSpace(out))

	_, err = run(t, dbPath, "users", "delete", "--all")
	require.NoError(t, err)
	out, err = run(t, dbPath, "users", "count")
	require.NoError(t, err)
	require.Equal(t, "0", strings.TrimSpace(out))
}

func TestCLI_Version(t *testing.T) {
	out, err := run(t, filepath.Join(t.TempDir(), "v.db"), "version")
	require.NoError(t, err)
	require.Contains(t, out, "schema "+schemaVersion)
}

func TestBindFlags(t *testing.T) {
	a := &app{v: config.New()}
	root := newRootCmd(a)
	require.NoError(t, root.PersistentFlags().Set("db", "elsewhere.db"))
	require.NoError(t, bindFlags(a.v, root.PersistentFlags()))
	require.Equal(t, "elsewhere.db", a.v.GetString("database.path"))

	err := bindFlags(config.New(), pflag.NewFlagSet("empty", pflag.ContinueOnError))
	require.ErrorContains(t, err, "--db")
}

func TestSplitArgs(t *testing.T) {
	tests := []struct {
		in      string
		want    []string
		wantErr bool
	}{
		{in: "count", want: []string{"count"}},
		{in: `get "another user" --json`, want: []string{"get", "another user", "--json"}},
		{in: "add  bob\tpw", want: []string{"add", "bob", "pw"}},
		{in: `add "" pw`, want: []string{"add", "", "pw"}},
		{in: `get "open`, wantErr: true},
		{in: "   ", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := splitArgs(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}
