// Package config loads connections and tables from yaml or toml file. Each table is served by a connection,
// and the connection's handler defines the backend, i.e. connection -> connections[name].handler.
package config

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/umputun/dbq/pkg/handler"
	"github.com/umputun/dbq/pkg/schema"
)

// Config defines the top-level config object
type Config struct {
	Connection  string                        `yaml:"connection" toml:"connection"`   // default connection for tables without one
	Connections map[string]handler.Connection `yaml:"connections" toml:"connections"` // named connections
	Tables      []Table                       `yaml:"tables" toml:"tables"`           // list of tables
}

// Table is a table schema with optional connection override
type Table struct {
	schema.Table `yaml:",inline"`
	Connection   string `yaml:"connection" toml:"connection"`
}

// Load reads config file, yaml or toml by extension, expands env in dsn and checks the result
func Load(fname string) (*Config, error) {
	log.Printf("[DEBUG] request to load config %q", fname)
	data, err := os.ReadFile(fname) // nolint
	if err != nil {
		return nil, fmt.Errorf("can't read config %s: %w", fname, err)
	}

	res := &Config{}
	switch {
	case strings.HasSuffix(fname, ".yml") || strings.HasSuffix(fname, ".yaml") || !strings.Contains(fname, "."):
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true) // strict mode, fail on unknown fields
		if err = dec.Decode(res); err != nil {
			return nil, fmt.Errorf("can't unmarshal yaml config %s: %w", fname, err)
		}
	case strings.HasSuffix(fname, ".toml"):
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err = dec.Decode(res); err != nil {
			return nil, fmt.Errorf("can't unmarshal toml config %s: %w", fname, err)
		}
	default:
		return nil, fmt.Errorf("unknown config format %s", fname)
	}

	for name, c := range res.Connections {
		c.DSN = os.ExpandEnv(c.DSN)
		res.Connections[name] = c
	}

	if err = res.checkConfig(); err != nil {
		return nil, fmt.Errorf("config %s is invalid: %w", fname, err)
	}
	log.Printf("[INFO] config loaded from %s, connections: %d, tables: %d", fname, len(res.Connections), len(res.Tables))
	return res, nil
}

// Table returns table by name
func (c *Config) Table(name string) (Table, error) {
	for _, t := range c.Tables {
		if t.Name == name {
			return t, nil
		}
	}
	return Table{}, fmt.Errorf("table %q not found in config", name)
}

// TableNames returns names of all tables in declared order
func (c *Config) TableNames() []string {
	res := make([]string, 0, len(c.Tables))
	for _, t := range c.Tables {
		res = append(res, t.Name)
	}
	return res
}

// ConnectionFor returns connection name for the table, table's own or the default one
func (c *Config) ConnectionFor(t Table) string {
	if t.Connection != "" {
		return t.Connection
	}
	return c.Connection
}

// Handler returns the handler name of the connection
func (c *Config) Handler(connName string) (string, error) {
	conn, ok := c.Connections[connName]
	if !ok {
		return "", fmt.Errorf("%w %q", handler.ErrUnknownConnection, connName)
	}
	return conn.Handler, nil
}

// Secrets returns all dsn strings, used to mask them in logs
func (c *Config) Secrets() []string {
	res := []string{}
	for _, conn := range c.Connections {
		if conn.DSN != "" {
			res = append(res, conn.DSN)
		}
	}
	sort.Strings(res)
	return res
}

// checkConfig reports all problems together
func (c *Config) checkConfig() error {
	errs := new(multierror.Error)

	if len(c.Connections) == 0 {
		errs = multierror.Append(errs, fmt.Errorf("no connections defined"))
	}
	for name, conn := range c.Connections {
		if conn.Handler == "" {
			errs = multierror.Append(errs, fmt.Errorf("connection %q has no handler", name))
		}
	}

	names := make(map[string]bool)
	for _, t := range c.Tables {
		if names[t.Name] {
			errs = multierror.Append(errs, fmt.Errorf("duplicate table name %q", t.Name))
		}
		names[t.Name] = true
		if err := t.Validate(); err != nil {
			errs = multierror.Append(errs, err)
		}
		connName := c.ConnectionFor(t)
		if connName == "" {
			errs = multierror.Append(errs, fmt.Errorf("table %q has no connection and no default set", t.Name))
			continue
		}
		if _, ok := c.Connections[connName]; !ok {
			errs = multierror.Append(errs, fmt.Errorf("table %q refers to unknown connection %q", t.Name, connName))
		}
	}

	return errs.ErrorOrNil()
}
