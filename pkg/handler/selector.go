package handler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"

	"github.com/hashicorp/go-multierror"

	"github.com/umputun/dbq/pkg/schema"
)

// Connection defines a named connection, Handler selects the implementation
type Connection struct {
	Handler string `yaml:"handler" toml:"handler"` // handler name, i.e. mysql, postgres, sqlite, memory, dry
	DSN     string `yaml:"dsn" toml:"dsn"`         // data source name passed to the driver
	Dialect string `yaml:"dialect" toml:"dialect"` // sql dialect used by dry handler to render statements
	MaxOpen int    `yaml:"max_open" toml:"max_open"`
}

// Target is passed to Factory with everything needed to make a handler for a table
type Target struct {
	Name  string // connection name
	Conn  Connection
	Table schema.Table
	Logs  LogWriter

	open func(driver string) (*sql.DB, error)
}

// Open returns database pool for the target's connection. Pools are shared by all tables on the same connection.
func (t Target) Open(driver string) (*sql.DB, error) {
	if t.open == nil {
		return nil, fmt.Errorf("no pool available for connection %q", t.Name)
	}
	return t.open(driver)
}

// Factory makes a handler for a target
type Factory func(ctx context.Context, t Target) (Capability, error)

// ErrUnknownHandler and ErrUnknownConnection returned by Selector.Select
var (
	ErrUnknownHandler    = errors.New("unknown handler")
	ErrUnknownConnection = errors.New("unknown connection")
)

// UnknownHandlerError reports a handler name with no registered factory
type UnknownHandlerError struct {
	Name       string
	Connection string
	Available  []string
}

func (e *UnknownHandlerError) Error() string {
	return fmt.Sprintf("unknown handler %q for connection %q, available: %s", e.Name, e.Connection, strings.Join(e.Available, ", "))
}

// Is makes errors.Is(err, ErrUnknownHandler) work
func (e *UnknownHandlerError) Is(target error) bool { return target == ErrUnknownHandler }

// Selector resolves handlers from explicitly passed connections. Adding a backend is a Register call.
type Selector struct {
	conns     map[string]Connection
	factories map[string]Factory
	logs      LogWriter

	mu    sync.Mutex
	pools map[string]*sql.DB
}

// SelectorOption is a functional option for NewSelector
type SelectorOption func(s *Selector)

// WithLogs sets log writer passed to handlers
func WithLogs(logs LogWriter) SelectorOption {
	return func(s *Selector) { s.logs = logs }
}

// WithFactory registers additional or replacing factory
func WithFactory(name string, f Factory) SelectorOption {
	return func(s *Selector) { s.Register(name, f) }
}

// NewSelector makes a Selector for the given connections with all built-in handlers registered
func NewSelector(conns map[string]Connection, opts ...SelectorOption) *Selector {
	res := &Selector{
		conns:     conns,
		factories: map[string]Factory{},
		pools:     map[string]*sql.DB{},
		logs:      MakeLogWriter(false, true),
	}
	res.Register("mysql", NewSQLFactory(MySQL))
	res.Register("postgres", NewSQLFactory(Postgres))
	res.Register("sqlite", NewSQLFactory(SQLite))
	res.Register("memory", func(_ context.Context, t Target) (Capability, error) { return NewMemory(t.Table), nil })
	res.Register("dry", func(_ context.Context, t Target) (Capability, error) {
		d, err := DialectByName(t.Conn.Dialect)
		if err != nil {
			return nil, err
		}
		return NewDry(d, t.Table, t.Logs), nil
	})
	for _, opt := range opts {
		opt(res)
	}
	return res
}

// Register adds a factory for the handler name
func (s *Selector) Register(name string, f Factory) {
	s.factories[strings.ToLower(name)] = f
}

// Available returns names of registered handlers, sorted
func (s *Selector) Available() []string {
	res := make([]string, 0, len(s.factories))
	for k := range s.factories {
		res = append(res, k)
	}
	sort.Strings(res)
	return res
}

// HandlerName returns the handler name configured for the connection
func (s *Selector) HandlerName(connName string) (string, error) {
	conn, ok := s.conns[connName]
	if !ok {
		return "", fmt.Errorf("%w %q", ErrUnknownConnection, connName)
	}
	return strings.ToLower(conn.Handler), nil
}

// Select makes handler for the table on the named connection
func (s *Selector) Select(ctx context.Context, connName string, tbl schema.Table) (Capability, error) {
	name, err := s.HandlerName(connName)
	if err != nil {
		return nil, err
	}
	factory, ok := s.factories[name]
	if !ok {
		return nil, &UnknownHandlerError{Name: name, Connection: connName, Available: s.Available()}
	}

	log.Printf("[DEBUG] select handler %q for table %q, connection %q", name, tbl.Name, connName)
	conn := s.conns[connName]
	h, err := factory(ctx, Target{Name: connName, Conn: conn, Table: tbl, Logs: s.logs.WithTable(tbl.Name),
		open: func(driver string) (*sql.DB, error) { return s.pool(connName, driver, conn) }})
	if err != nil {
		return nil, fmt.Errorf("can't make %s handler for table %q: %w", name, tbl.Name, err)
	}
	return h, nil
}

// Close closes all database pools opened by handlers
func (s *Selector) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	errs := new(multierror.Error)
	for name, db := range s.pools {
		if err := db.Close(); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("can't close connection %q: %w", name, err))
		}
		delete(s.pools, name)
	}
	return errs.ErrorOrNil()
}

func (s *Selector) pool(connName, driver string, conn Connection) (*sql.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if db, ok := s.pools[connName]; ok {
		return db, nil
	}
	db, err := sql.Open(driver, conn.DSN)
	if err != nil {
		return nil, fmt.Errorf("can't open %s database: %w", driver, err)
	}
	if conn.MaxOpen > 0 {
		db.SetMaxOpenConns(conn.MaxOpen)
	}
	log.Printf("[INFO] connection %q opened, driver %s", connName, driver)
	s.pools[connName] = db
	return db, nil
}
