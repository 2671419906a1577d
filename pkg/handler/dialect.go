package handler

import (
	"fmt"
	"strconv"
	"strings"

	_ "github.com/go-sql-driver/mysql" // mysql driver loaded here
	_ "github.com/lib/pq"              // postgres driver loaded here
	_ "modernc.org/sqlite"             // sqlite driver loaded here
)

// Dialect defines sql differences between backends
type Dialect struct {
	Name      string
	Driver    string // database/sql driver name
	quote     string
	numbered  bool // placeholders are $1, $2, ... instead of ?
	returning bool // inserted identity is fetched with RETURNING
	showDDL   string
	emptyIns  string // insert with no columns
}

// supported dialects
var (
	MySQL = Dialect{Name: "mysql", Driver: "mysql", quote: "`",
		showDDL: "SHOW CREATE TABLE %s", emptyIns: "INSERT INTO %s () VALUES ()"}
	Postgres = Dialect{Name: "postgres", Driver: "postgres", quote: `"`, numbered: true, returning: true,
		emptyIns: "INSERT INTO %s DEFAULT VALUES"}
	SQLite = Dialect{Name: "sqlite", Driver: "sqlite", quote: `"`,
		showDDL: "SELECT sql FROM sqlite_master WHERE type = 'table' AND name = ?", emptyIns: "INSERT INTO %s DEFAULT VALUES"}
)

// DialectByName returns dialect for the name, empty name means sqlite
func DialectByName(name string) (Dialect, error) {
	switch strings.ToLower(name) {
	case "mysql":
		return MySQL, nil
	case "postgres", "postgresql", "pg":
		return Postgres, nil
	case "sqlite", "sqlite3", "":
		return SQLite, nil
	}
	return Dialect{}, fmt.Errorf("unsupported dialect %q", name)
}

// Quote quotes identifier, embedded quote characters are doubled
func (d Dialect) Quote(ident string) string {
	return d.quote + strings.ReplaceAll(ident, d.quote, d.quote+d.quote) + d.quote
}

// Placeholder returns placeholder for the n-th (1-based) argument
func (d Dialect) Placeholder(n int) string {
	if d.numbered {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}
