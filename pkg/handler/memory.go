package handler

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"sync"

	"github.com/umputun/dbq/pkg/query"
	"github.com/umputun/dbq/pkg/schema"
)

// Memory is a handler keeping rows of a single table in memory.
// Not recommended for production use, made for testing purposes.
// Filters are equality matches on formatted values, LIMIT and OFFSET are taken from extraSQL, the rest of extraSQL is ignored.
type Memory struct {
	table schema.Table

	mu     sync.RWMutex
	rows   []Row
	nextID int64
}

var (
	reLimit  = regexp.MustCompile(`(?i)\bLIMIT\s+(\d+)`)
	reOffset = regexp.MustCompile(`(?i)\bOFFSET\s+(\d+)`)
)

// NewMemory makes an empty in-memory table
func NewMemory(tbl schema.Table) *Memory {
	return &Memory{table: tbl, nextID: 1}
}

// Read returns copies of matching rows, projected to readColumns if set
func (m *Memory) Read(_ context.Context, filters query.Filters, readColumns []string, extraSQL string, _ query.Descriptor) ([]Row, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	offset, limit := 0, -1
	if match := reOffset.FindStringSubmatch(extraSQL); match != nil {
		offset, _ = strconv.Atoi(match[1])
	}
	if match := reLimit.FindStringSubmatch(extraSQL); match != nil {
		limit, _ = strconv.Atoi(match[1])
	}

	res := []Row{}
	skipped := 0
	for _, r := range m.rows {
		if !matches(r, filters) {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		if limit >= 0 && len(res) >= limit {
			break
		}
		res = append(res, project(r, readColumns))
	}
	log.Printf("[DEBUG] memory read from %s, filters: %d, found: %d", m.table.Name, len(filters), len(res))
	return res, nil
}

// Insert adds a row, auto-increment key assigned if not passed
func (m *Memory) Insert(_ context.Context, values []any, keys []string) (InsertResult, error) {
	if len(values) != len(keys) {
		return InsertResult{}, fmt.Errorf("insert into %s: %d keys for %d values", m.table.Name, len(keys), len(values))
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	row := make(Row, len(keys)+1)
	for i, k := range keys {
		row[k] = values[i]
	}

	if m.table.AutoIncrement() {
		pk := m.table.PrimaryKey()
		if _, ok := row[pk]; !ok {
			row[pk] = m.nextID
		}
		if id, err := strconv.ParseInt(fmt.Sprintf("%v", row[pk]), 10, 64); err == nil && id >= m.nextID {
			m.nextID = id + 1
		}
		m.rows = append(m.rows, row)
		return InsertResult{ID: row[pk], Affected: 1}, nil
	}

	m.rows = append(m.rows, row)
	return InsertResult{ID: passedIdentity(m.table, values, keys), Affected: 1}, nil
}

// Update sets fields of rows matching identity
func (m *Memory) Update(_ context.Context, fields, identity query.Filters) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var affected int64
	for _, r := range m.rows {
		if !matches(r, identity) {
			continue
		}
		for _, f := range fields {
			r[f.Key] = f.Value
		}
		affected++
	}
	return affected, nil
}

// Delete removes rows matching filters
func (m *Memory) Delete(_ context.Context, filters query.Filters, _ query.Descriptor) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.rows[:0]
	var affected int64
	for _, r := range m.rows {
		if matches(r, filters) {
			affected++
			continue
		}
		kept = append(kept, r)
	}
	m.rows = kept
	return affected, nil
}

func matches(r Row, filters query.Filters) bool {
	for _, f := range filters {
		v, ok := r[f.Key]
		if f.Value == nil {
			if ok && v != nil {
				return false
			}
			continue
		}
		if !ok || fmt.Sprintf("%v", v) != fmt.Sprintf("%v", f.Value) {
			return false
		}
	}
	return true
}

func project(r Row, cols []string) Row {
	if len(cols) == 0 {
		res := make(Row, len(r))
		for k, v := range r {
			res[k] = v
		}
		return res
	}
	res := make(Row, len(cols))
	for _, c := range cols {
		res[c] = r[c]
	}
	return res
}
