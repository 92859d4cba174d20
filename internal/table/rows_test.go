package table

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/maloquacious/sqltable/internal/store"
)

func TestMapRecord(t *testing.T) {
	s := testSchema(t)
	rs := &store.ResultSet{
		Columns: []string{"uuid", "name", "pw_hash", "is_admin"},
		Rows:    [][]any{{testID, "user0815", "secret", int64(1)}},
	}

	rec, err := MapRecord(s, rs, false)
	require.NoError(t, err)
	require.Equal(t, testID, rec.ID())
	require.Equal(t, 2, rec.Len())
	require.Equal(t, map[string]string{"name": "user0815", "is_admin": "true"}, rec.Map())
	_, ok := rec.Get("pw_hash")
	require.False(t, ok)

	rec, err = MapRecord(s, rs, true)
	require.NoError(t, err)
	require.Equal(t, 3, rec.Len())
	v, ok := rec.Get("pw_hash")
	require.True(t, ok)
	require.Equal(t, "secret", v)
	require.Equal(t, "pw_hash", rec.Fields()[1].Column)
}

func TestMapRecord_Shape(t *testing.T) {
	s := testSchema(t)

	_, err := MapRecord(s, &store.ResultSet{Columns: []string{"uuid"}}, false)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = MapRecord(s, nil, false)
	require.ErrorIs(t, err, ErrNotFound)

	two := &store.ResultSet{
		Columns: []string{"uuid", "name"},
		Rows:    [][]any{{"a", "x"}, {"b", "x"}},
	}
	_, err = MapRecord(s, two, false)
	require.ErrorIs(t, err, ErrAmbiguousResult)
}

func TestRecord_MarshalJSON(t *testing.T) {
	s, err := NewSchema("users",
		Column{Name: "name", Type: Text},
		Column{Name: "is_admin", Type: Boolean},
		Column{Name: "logins", Type: Integer, AllowNull: true},
	)
	require.NoError(t, err)

	rs := &store.ResultSet{
		Columns: []string{"uuid", "name", "is_admin", "logins"},
		Rows:    [][]any{{testID, "user0815", int64(1), int64(7)}},
	}
	rec, err := MapRecord(s, rs, false)
	require.NoError(t, err)

	b, err := json.Marshal(rec)
	require.NoError(t, err)
	require.JSONEq(t, `{"is_admin":true,"logins":7,"name":"user0815"}`, string(b))

	rs.Rows[0][3] = nil
	rec, err = MapRecord(s, rs, false)
	require.NoError(t, err)
	b, err = json.Marshal(rec)
	require.NoError(t, err)
	require.Equal(t, `{"is_admin":true,"logins":null,"name":"user0815"}`, string(b))
}

func TestRecord_MarshalJSONNullBoolean(t *testing.T) {
	s, err := NewSchema("flags",
		Column{Name: "ok", Type: Boolean, AllowNull: true},
		Column{Name: "note", Type: Text, AllowNull: true},
	)
	require.NoError(t, err)

	rs := &store.ResultSet{
		Columns: []string{"uuid", "ok", "note"},
		Rows:    [][]any{{testID, nil, nil}},
	}
	rec, err := MapRecord(s, rs, false)
	require.NoError(t, err)
	for _, f := range rec.Fields() {
		require.True(t, f.Null, f.Column)
		require.Empty(t, f.Value)
	}

	b, err := json.Marshal(rec)
	require.NoError(t, err)
	require.Equal(t, `{"note":null,"ok":null}`, string(b))

	rs.Rows[0][1] = int64(0)
	rec, err = MapRecord(s, rs, false)
	require.NoError(t, err)
	b, err = json.Marshal(rec)
	require.NoError(t, err)
	require.Equal(t, `{"note":null,"ok":false}`, string(b))
}

func TestMapRows(t *testing.T) {
	s := testSchema(t)
	rs := &store.ResultSet{
		Columns: []string{"uuid", "name", "pw_hash", "is_admin"},
		Rows: [][]any{
			{"id-1", "user0815", "secret", int64(1)},
			{"id-2", "another user", "secret2", false},
		},
	}

	rows, err := MapRows(s, rs, false)
	require.NoError(t, err)
	require.Equal(t, 2, rows.Len())
	require.Equal(t, []string{"name", "is_admin"}, rows.Columns)
	require.Equal(t, [][]string{{"user0815", "true"}, {"another user", "false"}}, rows.Values)
	require.Equal(t, []string{"id-1", "id-2"}, rows.IDs)

	rows, err = MapRows(s, rs, true)
	require.NoError(t, err)
	require.Equal(t, []string{"name", "pw_hash", "is_admin"}, rows.Columns)

	rows, err = MapRows(s, nil, false)
	require.NoError(t, err)
	require.Equal(t, 0, rows.Len())
}

func TestRows_String(t *testing.T) {
	rows := &Rows{
		Columns: []string{"name", "is_admin"},
		Values:  [][]string{{"user0815", "true"}},
	}
	want := "+----------+----------+\n" +
		"| name     | is_admin |\n" +
		"+==========+==========+\n" +
		"| user0815 | true     |\n" +
		"+----------+----------+\n"
	require.Equal(t, want, rows.String())

	empty := &Rows{Columns: []string{"a"}}
	require.Equal(t, "+---+\n| a |\n+===+\n", empty.String())
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		col  Column
		cell any
		want string
		err  bool
	}{
		{"null", Column{Type: Integer}, nil, "", false},
		{"int", Column{Type: Integer}, int64(-3), "-3", false},
		{"int from float", Column{Type: Integer}, float64(4), "4", false},
		{"int from string", Column{Type: Integer}, "0012", "12", false},
		{"int from fraction", Column{Type: Integer}, 1.5, "", true},
		{"bool from int", Column{Type: Boolean}, int64(0), "false", false},
		{"bool native", Column{Type: Boolean}, true, "true", false},
		{"bool from string", Column{Type: Boolean}, "1", "true", false},
		{"bool garbage", Column{Type: Boolean}, "yes", "", true},
		{"text", Column{Type: Text}, "hi", "hi", false},
		{"text from bytes", Column{Type: Text}, []byte("hi"), "hi", false},
		{"text from int", Column{Type: Text}, int64(9), "9", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decode(tt.col, tt.cell)
			if tt.err {
				require.ErrorIs(t, err, ErrInvalidValue)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestCodecRoundTrip(t *testing.T) {
	cols := []struct {
		col Column
		in  string
	}{
		{Column{Name: "n", Type: Integer}, "-9223372036854775808"},
		{Column{Name: "n", Type: Integer}, "42"},
		{Column{Name: "b", Type: Boolean}, "true"},
		{Column{Name: "b", Type: Boolean}, "false"},
		{Column{Name: "s", Type: Text, MaxLength: 5}, "héllo"},
	}
	for _, c := range cols {
		enc, err := encode(c.col, c.in)
		require.NoError(t, err)
		out, err := decode(c.col, enc)
		require.NoError(t, err)
		require.Equal(t, c.in, out)
	}
}
