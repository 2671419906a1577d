package query

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestValidate(t *testing.T) {
	tbl := []struct {
		name    string
		d       Descriptor
		wantErr error
	}{
		{name: "valid select", d: Descriptor{Table: "users", Kind: KindSelect}},
		{name: "valid with unknown kind", d: Descriptor{Table: "users", Kind: "merge"}},
		{name: "missing table", d: Descriptor{Kind: KindSelect}, wantErr: ErrMissingTable},
		{name: "missing table and kind", d: Descriptor{}, wantErr: ErrMissingTable},
		{name: "missing kind", d: Descriptor{Table: "users"}, wantErr: ErrMissingKind},
		{name: "missing kind with filters", d: Descriptor{Table: "users", Filters: F("id", 1)}, wantErr: ErrMissingKind},
	}

	for _, tt := range tbl {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.d)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			var verr *ValidationError
			assert.True(t, errors.As(err, &verr))
		})
	}
}

func TestParseKind(t *testing.T) {
	assert.Equal(t, KindSelect, ParseKind("select"))
	assert.Equal(t, KindUpdate, ParseKind(" UPDATE "))
	assert.Equal(t, Kind("merge"), ParseKind("Merge"))
	assert.Equal(t, Kind(""), ParseKind(""))
}

func TestFilters(t *testing.T) {
	f := F("name", "a", "age", 3, "name", "b")
	assert.Equal(t, []string{"name", "age", "name"}, f.Keys())
	assert.Equal(t, []any{"a", 3, "b"}, f.Values())

	v, ok := f.Get("name")
	assert.True(t, ok)
	assert.Equal(t, "a", v, "first match wins")

	_, ok = f.Get("nope")
	assert.False(t, ok)

	assert.Equal(t, map[string]any{"name": "a", "age": 3}, f.Map())
	assert.Equal(t, Filters{{Key: "k", Value: nil}}, F("k"))
	assert.Equal(t, Filters{{Key: "5", Value: "x"}}, F(5, "x"))
}

func TestFilters_UnmarshalYAML(t *testing.T) {
	t.Run("mapping keeps order", func(t *testing.T) {
		var d Descriptor
		err := yaml.Unmarshal([]byte("table: users\nkind: select\nwhere:\n  zeta: 1\n  alpha: two\n  _limit: 5\ncolumns: [id, name]\n"), &d)
		require.NoError(t, err)
		assert.Equal(t, "users", d.Table)
		assert.Equal(t, KindSelect, d.Kind)
		assert.Equal(t, F("zeta", 1, "alpha", "two", "_limit", 5), d.Filters)
		assert.Equal(t, []string{"id", "name"}, d.ReadColumns)
	})

	t.Run("null where", func(t *testing.T) {
		var d Descriptor
		require.NoError(t, yaml.Unmarshal([]byte("table: users\nwhere: ~\n"), &d))
		assert.Empty(t, d.Filters)
	})

	t.Run("sequence rejected", func(t *testing.T) {
		var d Descriptor
		err := yaml.Unmarshal([]byte("table: users\nwhere: [a, b]\n"), &d)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "filters should be a mapping")
	})
}

func TestSplitFilters(t *testing.T) {
	tbl := []struct {
		name      string
		filters   Filters
		extension string
		wantPlain Filters
		wantExtra string
	}{
		{
			name:      "limit and offset with a plain filter",
			filters:   F("_limit", 5, "_offset", 2, "name", "a"),
			wantPlain: F("name", "a"),
			wantExtra: " LIMIT 5 OFFSET 2",
		},
		{
			name:      "offset before limit keeps encounter order",
			filters:   F("_offset", 2, "_limit", 5),
			wantPlain: Filters{},
			wantExtra: " OFFSET 2 LIMIT 5",
		},
		{
			name:      "non-numeric limit dropped",
			filters:   F("_limit", "abc"),
			wantPlain: Filters{},
			wantExtra: "",
		},
		{
			name:      "unknown directive dropped",
			filters:   F("_order", "name", "id", 1),
			wantPlain: F("id", 1),
			wantExtra: "",
		},
		{
			name:      "existing extension kept in front",
			filters:   F("_limit", "10", "name", "a"),
			extension: " ORDER BY name",
			wantPlain: F("name", "a"),
			wantExtra: " ORDER BY name LIMIT 10",
		},
		{
			name:      "float and json number",
			filters:   F("_limit", 2.5, "_offset", json.Number("3")),
			wantPlain: Filters{},
			wantExtra: " LIMIT 2.5 OFFSET 3",
		},
		{
			name:      "strings which are not plain decimals dropped",
			filters:   F("_limit", "0x10", "_limit", "1; DROP TABLE users", "_offset", " 5", "_offset", "NaN", "_limit", nil),
			wantPlain: Filters{},
			wantExtra: "",
		},
		{
			name:      "empty key is a plain filter",
			filters:   F("", 1),
			wantPlain: F("", 1),
			wantExtra: "",
		},
		{
			name:      "nil filters",
			filters:   nil,
			extension: " ORDER BY id",
			wantPlain: Filters{},
			wantExtra: " ORDER BY id",
		},
	}

	for _, tt := range tbl {
		t.Run(tt.name, func(t *testing.T) {
			res := SplitFilters(tt.filters, tt.extension)
			assert.Equal(t, tt.wantPlain, res.Plain)
			assert.Equal(t, tt.wantExtra, res.Extra)
			assert.Equal(t, tt.wantPlain.Keys(), res.Keys)
			assert.Equal(t, tt.wantPlain.Values(), res.Values)
		})
	}
}

func TestSplitFilters_PositionalOrder(t *testing.T) {
	res := SplitFilters(F("name", "a", "_limit", 1, "age", 3), "")
	assert.Equal(t, []string{"name", "age"}, res.Keys)
	assert.Equal(t, []any{"a", 3}, res.Values)
	assert.Equal(t, " LIMIT 1", res.Extra)
}
