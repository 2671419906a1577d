// Package schema describes a table bound to a handler: primary key, auto-increment flag, columns and types.
package schema

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-pkgz/stringutils"
	"github.com/hashicorp/go-multierror"
)

// DefaultPrimaryKey is used as identity column if table declares no primary key
const DefaultPrimaryKey = "id"

// Table defines a table
type Table struct {
	Name       string   `yaml:"name" toml:"name"`
	Primary    []string `yaml:"primary" toml:"primary"`         // primary key columns
	PrimaryAI  bool     `yaml:"primary_ai" toml:"primary_ai"`   // primary key is auto-increment, only with a single primary column
	Columns    []Column `yaml:"columns" toml:"columns"`         // ordered list of columns
	AutoCreate bool     `yaml:"auto_create" toml:"auto_create"` // create the table if it doesn't exist
	Sensitive  []string `yaml:"sensitive" toml:"sensitive"`     // columns with values masked in logs
}

// Column defines a single column, type is the backend's ddl type
type Column struct {
	Name string `yaml:"name" toml:"name"`
	Type string `yaml:"type" toml:"type"`
}

// ColumnNames returns names of all columns in declared order
func (t Table) ColumnNames() []string {
	res := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		res = append(res, c.Name)
	}
	return res
}

// Types returns column name to type map
func (t Table) Types() map[string]string {
	res := make(map[string]string, len(t.Columns))
	for _, c := range t.Columns {
		res[c.Name] = c.Type
	}
	return res
}

// InsertColumns returns columns used by default for inserts. Auto-increment primary key is excluded.
func (t Table) InsertColumns() []string {
	res := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		if t.AutoIncrement() && c.Name == t.Primary[0] {
			continue
		}
		res = append(res, c.Name)
	}
	return res
}

// AutoIncrement returns true if the table has a single auto-increment primary key
func (t Table) AutoIncrement() bool {
	return t.PrimaryAI && len(t.Primary) == 1
}

// PrimaryKey returns the column identifying a row for updates. The first declared primary column
// or DefaultPrimaryKey if none declared.
func (t Table) PrimaryKey() string {
	if len(t.Primary) == 0 {
		return DefaultPrimaryKey
	}
	return t.Primary[0]
}

// IsPrimary checks if the column is a part of the primary key
func (t Table) IsPrimary(col string) bool {
	if len(t.Primary) == 0 {
		return col == DefaultPrimaryKey
	}
	return stringutils.Contains(col, t.Primary)
}

// IsSensitive checks if the column values should be masked
func (t Table) IsSensitive(col string) bool {
	return stringutils.Contains(col, t.Sensitive)
}

// Validate checks table definition, all problems reported together
func (t Table) Validate() error {
	errs := new(multierror.Error)
	if strings.TrimSpace(t.Name) == "" {
		errs = multierror.Append(errs, errors.New("table name is required"))
	}
	if t.PrimaryAI && len(t.Primary) != 1 {
		errs = multierror.Append(errs, fmt.Errorf("auto-increment requires exactly one primary column, got %d", len(t.Primary)))
	}

	names := t.ColumnNames()
	if len(stringutils.DeDup(names)) != len(names) {
		errs = multierror.Append(errs, fmt.Errorf("duplicate column names in %v", names))
	}
	for _, c := range t.Columns {
		if strings.TrimSpace(c.Name) == "" {
			errs = multierror.Append(errs, errors.New("column name is required"))
		}
	}
	if len(t.Columns) > 0 {
		for _, p := range t.Primary {
			if !stringutils.Contains(p, names) {
				errs = multierror.Append(errs, fmt.Errorf("primary column %q is not declared", p))
			}
		}
	}

	if err := errs.ErrorOrNil(); err != nil {
		return fmt.Errorf("table %q is invalid: %w", t.Name, err)
	}
	return nil
}
