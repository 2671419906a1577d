// Package dispatch routes validated query descriptors to the handler bound to the table.
// Dispatcher shapes the arguments per operation kind and makes exactly one handler call.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/umputun/dbq/pkg/handler"
	"github.com/umputun/dbq/pkg/query"
	"github.com/umputun/dbq/pkg/schema"
)

//go:generate moq -out mocks/capability.go -pkg mocks -skip-ensure -fmt goimports ../handler Capability DDLProvider

// sentinel errors returned by Dispatch, wrapped in *Error
var (
	ErrInvalid              = errors.New("invalid descriptor")
	ErrUnsupportedOperation = errors.New("unsupported operation")
	ErrMissingIdentity      = errors.New("missing identity")
	ErrTableMismatch        = errors.New("table mismatch")
)

// Error carries table and kind of the failed dispatch
type Error struct {
	Table string
	Kind  query.Kind
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("can't dispatch %s on %q: %v", e.Kind, e.Table, e.Err)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error { return e.Err }

// Binding pairs table schema with the handler serving it. Immutable once made.
type Binding struct {
	Table   schema.Table
	Handler handler.Capability
}

// Outcome is the result of a dispatch, populated per kind
type Outcome struct {
	Kind     query.Kind
	Rows     []handler.Row // select
	Affected int64         // insert, update, delete
	InsertID any           // insert
}

// Dispatcher executes descriptors against a single table binding
type Dispatcher struct {
	binding Binding
}

// New makes a dispatcher for the binding. Table schema is validated and handler is required.
func New(b Binding) (*Dispatcher, error) {
	if b.Handler == nil {
		return nil, fmt.Errorf("no handler for table %q", b.Table.Name)
	}
	if err := b.Table.Validate(); err != nil {
		return nil, err
	}
	return &Dispatcher{binding: b}, nil
}

// Bind resolves handler for the table on the named connection and makes a dispatcher
func Bind(ctx context.Context, sel *handler.Selector, connName string, tbl schema.Table) (*Dispatcher, error) {
	if err := tbl.Validate(); err != nil {
		return nil, err
	}
	h, err := sel.Select(ctx, connName, tbl)
	if err != nil {
		return nil, err
	}
	return New(Binding{Table: tbl, Handler: h})
}

// Table returns the bound table schema
func (d *Dispatcher) Table() schema.Table { return d.binding.Table }

// Dispatch validates the descriptor, splits directives out of filters and calls the handler method
// matching the descriptor's kind. Handler errors are returned as is.
func (d *Dispatcher) Dispatch(ctx context.Context, desc query.Descriptor) (Outcome, error) {
	if err := query.Validate(desc); err != nil {
		return Outcome{}, d.fail(desc, fmt.Errorf("%w: %w", ErrInvalid, err))
	}
	if desc.Table != d.binding.Table.Name {
		return Outcome{}, d.fail(desc, fmt.Errorf("%w, bound to %q", ErrTableMismatch, d.binding.Table.Name))
	}

	split := query.SplitFilters(desc.Filters, desc.Extension)
	log.Printf("[DEBUG] dispatch %s", desc)
	h := d.binding.Handler
	res := Outcome{Kind: desc.Kind}

	switch desc.Kind {
	case query.KindSelect:
		rows, err := h.Read(ctx, split.Plain, desc.ReadColumns, split.Extra, desc)
		if err != nil {
			return Outcome{}, err
		}
		res.Rows = rows
	case query.KindInsert:
		ins, err := h.Insert(ctx, split.Values, split.Keys)
		if err != nil {
			return Outcome{}, err
		}
		res.InsertID, res.Affected = ins.ID, ins.Affected
	case query.KindUpdate:
		pk := d.binding.Table.PrimaryKey()
		v, ok := split.Plain.Get(pk)
		if !ok {
			return Outcome{}, d.fail(desc, fmt.Errorf("%w, %q is not in filters", ErrMissingIdentity, pk))
		}
		if v == nil {
			return Outcome{}, d.fail(desc, fmt.Errorf("%w, %q is nil", ErrMissingIdentity, pk))
		}
		n, err := h.Update(ctx, split.Plain, query.Filters{{Key: pk, Value: v}})
		if err != nil {
			return Outcome{}, err
		}
		res.Affected = n
	case query.KindDelete:
		n, err := h.Delete(ctx, split.Plain, desc)
		if err != nil {
			return Outcome{}, err
		}
		res.Affected = n
	default:
		return Outcome{}, d.fail(desc, ErrUnsupportedOperation)
	}
	return res, nil
}

// ShowCreateTable returns table ddl if the handler supports it
func (d *Dispatcher) ShowCreateTable(ctx context.Context) (string, error) {
	return handler.ShowCreateTable(ctx, d.binding.Handler)
}

func (d *Dispatcher) fail(desc query.Descriptor, err error) error {
	return &Error{Table: desc.Table, Kind: desc.Kind, Err: err}
}
