package handler

import (
	"context"
	"log"

	"github.com/umputun/dbq/pkg/query"
	"github.com/umputun/dbq/pkg/schema"
)

// Dry is a handler for dry run, just prints statements it would execute.
// Useful for debugging and testing, doesn't touch any database.
type Dry struct {
	bld  builder
	logs LogWriter
}

// NewDry makes a dry handler rendering statements in the given dialect
func NewDry(d Dialect, tbl schema.Table, logs LogWriter) *Dry {
	if logs == nil {
		logs = MakeLogWriter(true, false).WithTable(tbl.Name)
	}
	return &Dry{bld: builder{dialect: d, table: tbl}, logs: logs}
}

// Read shows the select statement, returns no rows
func (ex *Dry) Read(_ context.Context, filters query.Filters, readColumns []string, extraSQL string, _ query.Descriptor) ([]Row, error) {
	ex.print(ex.bld.selectStmt(filters, readColumns, extraSQL))
	return []Row{}, nil
}

// Insert shows the insert statement
func (ex *Dry) Insert(_ context.Context, values []any, keys []string) (InsertResult, error) {
	st, err := ex.bld.insertStmt(values, keys)
	if err != nil {
		return InsertResult{}, err
	}
	ex.print(st)
	return InsertResult{ID: passedIdentity(ex.bld.table, values, keys)}, nil
}

// Update shows the update statement
func (ex *Dry) Update(_ context.Context, fields, identity query.Filters) (int64, error) {
	st, err := ex.bld.updateStmt(fields, identity)
	if err != nil {
		return 0, err
	}
	ex.print(st)
	return 0, nil
}

// Delete shows the delete statement
func (ex *Dry) Delete(_ context.Context, filters query.Filters, d query.Descriptor) (int64, error) {
	ex.print(ex.bld.deleteStmt(filters, d.Extension))
	return 0, nil
}

// ShowCreateTable shows the ddl the sql handler would use to create the table
func (ex *Dry) ShowCreateTable(_ context.Context) (string, error) {
	return ex.bld.createStmt()
}

func (ex *Dry) print(st statement) {
	log.Printf("[DEBUG] dry %s", st.query)
	ex.logs.WithSecrets(ex.bld.secrets(st)).Printf("%s\n", st)
}
