package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func usersTable() Table {
	return Table{
		Name:      "users",
		Primary:   []string{"id"},
		PrimaryAI: true,
		Columns: []Column{
			{Name: "id", Type: "INTEGER"},
			{Name: "name", Type: "TEXT"},
			{Name: "password", Type: "TEXT"},
		},
		Sensitive: []string{"password"},
	}
}

func TestTable_Columns(t *testing.T) {
	tbl := usersTable()
	assert.Equal(t, []string{"id", "name", "password"}, tbl.ColumnNames())
	assert.Equal(t, map[string]string{"id": "INTEGER", "name": "TEXT", "password": "TEXT"}, tbl.Types())
	assert.Equal(t, []string{"name", "password"}, tbl.InsertColumns(), "auto-increment key excluded")

	tbl.PrimaryAI = false
	assert.Equal(t, []string{"id", "name", "password"}, tbl.InsertColumns())
}

func TestTable_PrimaryKey(t *testing.T) {
	tbl := usersTable()
	assert.Equal(t, "id", tbl.PrimaryKey())
	assert.True(t, tbl.IsPrimary("id"))
	assert.False(t, tbl.IsPrimary("name"))

	tbl.Primary = []string{"user_id", "org_id"}
	assert.Equal(t, "user_id", tbl.PrimaryKey())
	assert.True(t, tbl.IsPrimary("org_id"))
	assert.False(t, tbl.AutoIncrement(), "auto-increment ignored for composite key")

	tbl.Primary = nil
	assert.Equal(t, DefaultPrimaryKey, tbl.PrimaryKey())
	assert.True(t, tbl.IsPrimary("id"))
}

func TestTable_IsSensitive(t *testing.T) {
	tbl := usersTable()
	assert.True(t, tbl.IsSensitive("password"))
	assert.False(t, tbl.IsSensitive("name"))
}

func TestTable_Validate(t *testing.T) {
	tbl := []struct {
		name   string
		modify func(*Table)
		errs   []string
	}{
		{name: "valid", modify: func(*Table) {}},
		{name: "no columns declared", modify: func(t *Table) { t.Columns = nil }},
		{name: "no name", modify: func(t *Table) { t.Name = " " }, errs: []string{"table name is required"}},
		{name: "ai with two primary columns", modify: func(t *Table) { t.Primary = []string{"id", "name"} },
			errs: []string{"auto-increment requires exactly one primary column, got 2"}},
		{name: "ai without primary", modify: func(t *Table) { t.Primary = nil },
			errs: []string{"auto-increment requires exactly one primary column, got 0"}},
		{name: "undeclared primary", modify: func(t *Table) { t.Primary = []string{"uid"} },
			errs: []string{`primary column "uid" is not declared`}},
		{name: "duplicate columns and empty name", modify: func(t *Table) {
			t.Columns = append(t.Columns, Column{Name: "name"}, Column{Name: ""})
		}, errs: []string{"duplicate column names", "column name is required"}},
	}

	for _, tt := range tbl {
		t.Run(tt.name, func(t *testing.T) {
			table := usersTable()
			tt.modify(&table)
			err := table.Validate()
			if len(tt.errs) == 0 {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			for _, e := range tt.errs {
				assert.Contains(t, err.Error(), e)
			}
		})
	}
}
