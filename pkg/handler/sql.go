package handler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/umputun/dbq/pkg/query"
	"github.com/umputun/dbq/pkg/schema"
)

// SQL is a handler executing statements with database/sql. Statements differ per dialect,
// supported: mysql, postgres and sqlite. Thread-safe, relies on sql.DB pooling.
type SQL struct {
	db   *sql.DB
	bld  builder
	logs LogWriter
}

// NewSQLFactory returns a factory making SQL handlers of the given dialect
func NewSQLFactory(d Dialect) Factory {
	return func(ctx context.Context, t Target) (Capability, error) {
		db, err := t.Open(d.Driver)
		if err != nil {
			return nil, err
		}
		return NewSQL(ctx, db, d, t.Table, t.Logs)
	}
}

// NewSQL makes SQL handler for the table. If the table has AutoCreate set, the table created if missing.
func NewSQL(ctx context.Context, db *sql.DB, d Dialect, tbl schema.Table, logs LogWriter) (*SQL, error) {
	if logs == nil {
		logs = MakeLogWriter(false, true).WithTable(tbl.Name)
	}
	res := &SQL{db: db, bld: builder{dialect: d, table: tbl}, logs: logs}
	if tbl.AutoCreate {
		if err := res.createTable(ctx); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// Read selects rows matching filters. Empty readColumns selects all columns,
// extraSQL is appended after the where clause as is.
func (h *SQL) Read(ctx context.Context, filters query.Filters, readColumns []string, extraSQL string, _ query.Descriptor) ([]Row, error) {
	st := h.bld.selectStmt(filters, readColumns, extraSQL)
	h.trace(st)
	rows, err := h.db.QueryContext(ctx, st.query, st.args...)
	if err != nil {
		return nil, fmt.Errorf("can't read from %s: %w", h.bld.table.Name, err)
	}
	defer rows.Close() // nolint

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("can't get columns of %s: %w", h.bld.table.Name, err)
	}

	res := []Row{}
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("can't scan row of %s: %w", h.bld.table.Name, err)
		}
		row := make(Row, len(cols))
		for i, c := range cols {
			if b, ok := vals[i].([]byte); ok {
				row[c] = string(b)
				continue
			}
			row[c] = vals[i]
		}
		res = append(res, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("can't iterate rows of %s: %w", h.bld.table.Name, err)
	}
	return res, nil
}

// Insert adds a row with values in order of keys. Returns the auto-generated identity if the table
// has an auto-increment key, otherwise the passed primary key value.
func (h *SQL) Insert(ctx context.Context, values []any, keys []string) (InsertResult, error) {
	st, err := h.bld.insertStmt(values, keys)
	if err != nil {
		return InsertResult{}, err
	}
	h.trace(st)

	tbl := h.bld.table
	if h.bld.dialect.returning && tbl.AutoIncrement() {
		var id any
		if err := h.db.QueryRowContext(ctx, st.query, st.args...).Scan(&id); err != nil {
			return InsertResult{}, fmt.Errorf("can't insert into %s: %w", tbl.Name, err)
		}
		return InsertResult{ID: id, Affected: 1}, nil
	}

	res, err := h.db.ExecContext(ctx, st.query, st.args...)
	if err != nil {
		return InsertResult{}, fmt.Errorf("can't insert into %s: %w", tbl.Name, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return InsertResult{}, fmt.Errorf("can't get affected rows of %s: %w", tbl.Name, err)
	}

	if tbl.AutoIncrement() {
		id, err := res.LastInsertId()
		if err != nil {
			return InsertResult{}, fmt.Errorf("can't get inserted id of %s: %w", tbl.Name, err)
		}
		return InsertResult{ID: id, Affected: affected}, nil
	}
	return InsertResult{ID: passedIdentity(tbl, values, keys), Affected: affected}, nil
}

// Update sets fields of rows matching identity, identity fields are not set
func (h *SQL) Update(ctx context.Context, fields, identity query.Filters) (int64, error) {
	st, err := h.bld.updateStmt(fields, identity)
	if err != nil {
		return 0, err
	}
	return h.exec(ctx, st, "update")
}

// Delete removes rows matching filters, descriptor's extension appended as is
func (h *SQL) Delete(ctx context.Context, filters query.Filters, d query.Descriptor) (int64, error) {
	return h.exec(ctx, h.bld.deleteStmt(filters, d.Extension), "delete from")
}

// ShowCreateTable returns table's ddl, postgres has no way to show it and returns ErrCapabilityNotSupported
func (h *SQL) ShowCreateTable(ctx context.Context) (string, error) {
	st, ok := h.bld.showCreateStmt()
	if !ok {
		return "", fmt.Errorf("show create table for %s dialect: %w", h.bld.dialect.Name, ErrCapabilityNotSupported)
	}
	h.trace(st)

	row := h.db.QueryRowContext(ctx, st.query, st.args...)
	var name, ddl string
	var err error
	if h.bld.dialect.Name == MySQL.Name {
		err = row.Scan(&name, &ddl) // mysql returns table name and ddl
	} else {
		err = row.Scan(&ddl)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("table %s not found", h.bld.table.Name)
	}
	if err != nil {
		return "", fmt.Errorf("can't show create table %s: %w", h.bld.table.Name, err)
	}
	return ddl, nil
}

func (h *SQL) createTable(ctx context.Context) error {
	q, err := h.bld.createStmt()
	if err != nil {
		return err
	}
	h.trace(statement{query: q})
	if _, err := h.db.ExecContext(ctx, q); err != nil {
		return fmt.Errorf("can't create table %s: %w", h.bld.table.Name, err)
	}
	return nil
}

func (h *SQL) exec(ctx context.Context, st statement, op string) (int64, error) {
	h.trace(st)
	res, err := h.db.ExecContext(ctx, st.query, st.args...)
	if err != nil {
		return 0, fmt.Errorf("can't %s %s: %w", op, h.bld.table.Name, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("can't get affected rows of %s: %w", h.bld.table.Name, err)
	}
	return affected, nil
}

func (h *SQL) trace(st statement) {
	h.logs.WithSecrets(h.bld.secrets(st)).Printf("%s\n", st)
}

// passedIdentity returns primary key value from inserted values, for composite keys all key fields
func passedIdentity(tbl schema.Table, values []any, keys []string) any {
	if len(tbl.Primary) == 0 {
		return nil
	}
	ident := query.Filters{}
	for i, k := range keys {
		if tbl.IsPrimary(k) {
			ident = append(ident, query.Field{Key: k, Value: values[i]})
		}
	}
	switch {
	case len(ident) == 0:
		return nil
	case len(tbl.Primary) == 1:
		return ident[0].Value
	default:
		return ident
	}
}
