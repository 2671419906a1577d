package handler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-pkgz/stringutils"

	"github.com/umputun/dbq/pkg/query"
	"github.com/umputun/dbq/pkg/schema"
)

// statement is a query with arguments, cols holds the column name of each argument
type statement struct {
	query string
	args  []any
	cols  []string
}

func (s statement) String() string {
	if len(s.args) == 0 {
		return s.query
	}
	return fmt.Sprintf("%s %v", s.query, s.args)
}

// builder makes statements for a table in the given dialect
type builder struct {
	dialect Dialect
	table   schema.Table
}

func (b builder) selectStmt(filters query.Filters, readColumns []string, extraSQL string) statement {
	cols := "*"
	if len(readColumns) > 0 {
		cols = strings.Join(stringutils.Map(stringutils.DeDup(readColumns), b.dialect.Quote), ", ")
	}
	res := statement{query: fmt.Sprintf("SELECT %s FROM %s", cols, b.dialect.Quote(b.table.Name))}
	b.appendWhere(&res, filters)
	res.query += extraSQL
	return res
}

func (b builder) insertStmt(values []any, keys []string) (statement, error) {
	if len(values) != len(keys) {
		return statement{}, fmt.Errorf("insert into %s: %d keys for %d values", b.table.Name, len(keys), len(values))
	}

	tbl := b.dialect.Quote(b.table.Name)
	res := statement{query: fmt.Sprintf(b.dialect.emptyIns, tbl)}
	if len(keys) > 0 {
		phs := make([]string, 0, len(values))
		for i := range values {
			phs = append(phs, b.dialect.Placeholder(i+1))
		}
		res = statement{
			query: fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", tbl,
				strings.Join(stringutils.Map(keys, b.dialect.Quote), ", "), strings.Join(phs, ", ")),
			args: values,
			cols: keys,
		}
	}
	if b.dialect.returning && b.table.AutoIncrement() {
		res.query += " RETURNING " + b.dialect.Quote(b.table.PrimaryKey())
	}
	return res, nil
}

func (b builder) updateStmt(fields, identity query.Filters) (statement, error) {
	if len(identity) == 0 {
		return statement{}, errors.New("update without identity")
	}
	res := statement{}
	sets := []string{}
	for _, f := range fields {
		if _, isIdentity := identity.Get(f.Key); isIdentity {
			continue
		}
		res.args = append(res.args, f.Value)
		res.cols = append(res.cols, f.Key)
		sets = append(sets, b.dialect.Quote(f.Key)+" = "+b.dialect.Placeholder(len(res.args)))
	}
	if len(sets) == 0 {
		return statement{}, fmt.Errorf("nothing to update in %s, only identity fields passed", b.table.Name)
	}
	res.query = fmt.Sprintf("UPDATE %s SET %s", b.dialect.Quote(b.table.Name), strings.Join(sets, ", "))
	b.appendWhere(&res, identity)
	return res, nil
}

func (b builder) deleteStmt(filters query.Filters, extension string) statement {
	res := statement{query: "DELETE FROM " + b.dialect.Quote(b.table.Name)}
	b.appendWhere(&res, filters)
	res.query += extension
	return res
}

// createStmt makes CREATE TABLE IF NOT EXISTS from declared columns
func (b builder) createStmt() (string, error) {
	if len(b.table.Columns) == 0 {
		return "", fmt.Errorf("can't create table %s, no columns declared", b.table.Name)
	}

	ai := b.table.AutoIncrement()
	inlinePK := ai && b.dialect.Name == SQLite.Name // sqlite autoincrement works for inline primary key only
	defs := make([]string, 0, len(b.table.Columns)+1)
	for _, c := range b.table.Columns {
		typ := c.Type
		if typ == "" {
			typ = "TEXT"
		}
		def := b.dialect.Quote(c.Name) + " " + typ
		if ai && c.Name == b.table.PrimaryKey() {
			switch b.dialect.Name {
			case SQLite.Name:
				def = b.dialect.Quote(c.Name) + " INTEGER PRIMARY KEY AUTOINCREMENT"
			case MySQL.Name:
				def += " NOT NULL AUTO_INCREMENT"
			case Postgres.Name:
				def += " GENERATED BY DEFAULT AS IDENTITY"
			}
		}
		defs = append(defs, def)
	}
	if len(b.table.Primary) > 0 && !inlinePK {
		defs = append(defs, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(stringutils.Map(b.table.Primary, b.dialect.Quote), ", ")))
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", b.dialect.Quote(b.table.Name), strings.Join(defs, ", ")), nil
}

// showCreateStmt returns the ddl query, false if the dialect can't show ddl
func (b builder) showCreateStmt() (statement, bool) {
	switch {
	case b.dialect.showDDL == "":
		return statement{}, false
	case strings.Contains(b.dialect.showDDL, "?"):
		return statement{query: b.dialect.showDDL, args: []any{b.table.Name}}, true
	default:
		return statement{query: fmt.Sprintf(b.dialect.showDDL, b.dialect.Quote(b.table.Name))}, true
	}
}

// appendWhere adds equality conditions, nil values are matched with IS NULL
func (b builder) appendWhere(st *statement, filters query.Filters) {
	if len(filters) == 0 {
		return
	}
	conds := make([]string, 0, len(filters))
	for _, f := range filters {
		if f.Value == nil {
			conds = append(conds, b.dialect.Quote(f.Key)+" IS NULL")
			continue
		}
		st.args = append(st.args, f.Value)
		st.cols = append(st.cols, f.Key)
		conds = append(conds, b.dialect.Quote(f.Key)+" = "+b.dialect.Placeholder(len(st.args)))
	}
	st.query += " WHERE " + strings.Join(conds, " AND ")
}

// secrets returns values of sensitive columns, used to mask them in logs
func (b builder) secrets(st statement) []string {
	var res []string
	for i, c := range st.cols {
		if i < len(st.args) && b.table.IsSensitive(c) {
			res = append(res, fmt.Sprintf("%v", st.args[i]))
		}
	}
	return res
}
