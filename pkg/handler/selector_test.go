package handler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/dbq/pkg/query"
	"github.com/umputun/dbq/pkg/schema"
)

func TestSelector_Select(t *testing.T) {
	ctx := context.Background()
	conns := map[string]Connection{
		"mem":    {Handler: "memory"},
		"dry":    {Handler: "DRY", Dialect: "mysql"},
		"badDry": {Handler: "dry", Dialect: "oracle"},
		"ora":    {Handler: "oracle"},
	}
	sel := NewSelector(conns)

	h, err := sel.Select(ctx, "mem", usersTable())
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, h)

	h, err = sel.Select(ctx, "dry", usersTable())
	require.NoError(t, err)
	assert.IsType(t, &Dry{}, h)

	_, err = sel.Select(ctx, "badDry", usersTable())
	require.EqualError(t, err, `can't make dry handler for table "users": unsupported dialect "oracle"`)

	_, err = sel.Select(ctx, "ora", usersTable())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownHandler)
	var uerr *UnknownHandlerError
	require.True(t, errors.As(err, &uerr))
	assert.Equal(t, "oracle", uerr.Name)
	assert.Equal(t, []string{"dry", "memory", "mysql", "postgres", "sqlite"}, uerr.Available)

	_, err = sel.Select(ctx, "nope", usersTable())
	require.ErrorIs(t, err, ErrUnknownConnection)

	name, err := sel.HandlerName("dry")
	require.NoError(t, err)
	assert.Equal(t, "dry", name)
}

func TestSelector_Register(t *testing.T) {
	ctx := context.Background()
	var got Target
	sel := NewSelector(map[string]Connection{"custom": {Handler: "custom", DSN: "some-dsn"}},
		WithFactory("Custom", func(_ context.Context, tg Target) (Capability, error) {
			got = tg
			return NewMemory(tg.Table), nil
		}))

	tbl := schema.Table{Name: "events"}
	h, err := sel.Select(ctx, "custom", tbl)
	require.NoError(t, err)
	assert.Equal(t, "custom", got.Name)
	assert.Equal(t, "some-dsn", got.Conn.DSN)
	assert.Equal(t, tbl, got.Table)

	_, err = h.Insert(ctx, []any{"x"}, []string{"type"})
	require.NoError(t, err)
	rows, err := h.Read(ctx, query.F("type", "x"), nil, "", query.Descriptor{})
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	_, err = Target{Name: "x"}.Open("sqlite")
	require.EqualError(t, err, `no pool available for connection "x"`)
}

func TestSelector_SharedPool(t *testing.T) {
	ctx := context.Background()
	sel := NewSelector(map[string]Connection{"main": {Handler: "sqlite", DSN: ":memory:", MaxOpen: 1}})

	tbl1, tbl2 := usersTable(), schema.Table{Name: "groups", Columns: []schema.Column{{Name: "id", Type: "INTEGER"}}}
	tbl1.AutoCreate, tbl2.AutoCreate = true, true

	h1, err := sel.Select(ctx, "main", tbl1)
	require.NoError(t, err)
	h2, err := sel.Select(ctx, "main", tbl2)
	require.NoError(t, err)
	assert.Same(t, h1.(*SQL).db, h2.(*SQL).db, "tables on the same connection share the pool")
	assert.Len(t, sel.pools, 1)

	require.NoError(t, sel.Close())
	assert.Empty(t, sel.pools)
}

func TestShowCreateTable_NotSupported(t *testing.T) {
	_, err := ShowCreateTable(context.Background(), NewMemory(usersTable()))
	require.ErrorIs(t, err, ErrCapabilityNotSupported)
}
