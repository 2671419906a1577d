package handler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/dbq/pkg/query"
)

func TestMemory(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(usersTable())

	for _, name := range []string{"a", "b", "c"} {
		_, err := m.Insert(ctx, []any{name, 30}, []string{"name", "age"})
		require.NoError(t, err)
	}
	res, err := m.Insert(ctx, []any{10, "z", nil}, []string{"id", "name", "age"})
	require.NoError(t, err)
	assert.Equal(t, InsertResult{ID: 10, Affected: 1}, res)

	res, err = m.Insert(ctx, []any{"y"}, []string{"name"})
	require.NoError(t, err)
	assert.Equal(t, int64(11), res.ID, "next id follows explicitly passed one")

	rows, err := m.Read(ctx, query.F("age", "30"), []string{"id", "name"}, "", query.Descriptor{})
	require.NoError(t, err)
	assert.Equal(t, []Row{{"id": int64(1), "name": "a"}, {"id": int64(2), "name": "b"}, {"id": int64(3), "name": "c"}}, rows)

	rows, err = m.Read(ctx, query.F("age", 30), []string{"name"}, " ORDER BY id LIMIT 1 OFFSET 1", query.Descriptor{})
	require.NoError(t, err)
	assert.Equal(t, []Row{{"name": "b"}}, rows)

	rows, err = m.Read(ctx, query.F("age", nil), nil, "", query.Descriptor{})
	require.NoError(t, err)
	require.Len(t, rows, 2, "nil matches missing and nil values")

	n, err := m.Update(ctx, query.F("id", 2, "name", "bb"), query.F("id", 2))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = m.Delete(ctx, query.F("age", 30), query.Descriptor{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	rows, err = m.Read(ctx, nil, nil, "", query.Descriptor{})
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	_, err = m.Insert(ctx, []any{1}, nil)
	require.EqualError(t, err, "insert into users: 0 keys for 1 values")
}

func TestMemory_NoAutoIncrement(t *testing.T) {
	ctx := context.Background()
	tbl := usersTable()
	tbl.PrimaryAI = false
	m := NewMemory(tbl)

	res, err := m.Insert(ctx, []any{"k1", "a"}, []string{"id", "name"})
	require.NoError(t, err)
	assert.Equal(t, InsertResult{ID: "k1", Affected: 1}, res)

	res, err = m.Insert(ctx, []any{"b"}, []string{"name"})
	require.NoError(t, err)
	assert.Nil(t, res.ID)
}
