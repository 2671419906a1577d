// Package handler provides the contract for storage-engine handlers as well as sql, memory and dry implementations.
// A handler translates normalized operation arguments into backend-specific execution. Selector resolves
// a handler for a table from the connection configuration.
package handler

import (
	"context"
	"errors"

	"github.com/umputun/dbq/pkg/query"
)

// Capability is implemented by backend handlers.
// Implemented by SQL, Memory and Dry structs.
type Capability interface {
	Read(ctx context.Context, filters query.Filters, readColumns []string, extraSQL string, d query.Descriptor) ([]Row, error)
	Insert(ctx context.Context, values []any, keys []string) (InsertResult, error)
	Update(ctx context.Context, fields, identity query.Filters) (int64, error)
	Delete(ctx context.Context, filters query.Filters, d query.Descriptor) (int64, error)
}

// DDLProvider is an optional capability of handlers able to show table's ddl
type DDLProvider interface {
	ShowCreateTable(ctx context.Context) (string, error)
}

// Row is a single result row, column name to value
type Row map[string]any

// InsertResult is returned by insert, ID is the identity of inserted row or nil if unknown
type InsertResult struct {
	ID       any
	Affected int64
}

// ErrCapabilityNotSupported returned for optional operations handler can't do
var ErrCapabilityNotSupported = errors.New("capability not supported")

// ShowCreateTable calls ShowCreateTable of the handler if supported
func ShowCreateTable(ctx context.Context, c Capability) (string, error) {
	ddl, ok := c.(DDLProvider)
	if !ok {
		return "", ErrCapabilityNotSupported
	}
	return ddl.ShowCreateTable(ctx)
}
