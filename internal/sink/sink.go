// Package sink defines the database loading side: a Sink drains a sequence
// of typed table chunks into a database table. Concrete backends register
// themselves with the factory at init time, so callers pick a backend by
// kind without importing it directly.
package sink

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"tabio/internal/cast"
	"tabio/internal/schema"
	"tabio/pkg/table"
)

// Sink loads typed chunks into one database table.
type Sink interface {
	// EnsureTable creates the target table from the schema when it does
	// not exist yet.
	EnsureTable(ctx context.Context) error

	// Load drains the chunk sequence into the target table and reports
	// the number of rows loaded.
	Load(ctx context.Context, chunks cast.Chunks) (int64, error)

	Close()
}

// Config selects and configures a backend.
type Config struct {
	Kind  string // registered backend name, e.g. "postgres" or "sqlite"
	DSN   string // connection string, passed to the backend's driver
	Table string // target table name, may be schema-qualified for postgres

	// CreateTable runs EnsureTable before the first load.
	CreateTable bool

	// BatchRows caps the rows sent per insert round-trip. Zero picks the
	// backend default.
	BatchRows int
}

// Factory constructs a backend Sink. The schema drives both DDL generation
// and per-column value conversion, so it is fixed at construction.
type Factory func(ctx context.Context, cfg Config, s *schema.Schema) (Sink, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register installs a backend factory under kind. Backends call this from
// init; a duplicate registration panics.
func Register(kind string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	if _, dup := factories[kind]; dup {
		panic(fmt.Sprintf("sink: duplicate registration for %q", kind))
	}
	factories[kind] = f
}

// New constructs the backend named by cfg.Kind.
func New(ctx context.Context, cfg Config, s *schema.Schema) (Sink, error) {
	mu.RLock()
	f, ok := factories[cfg.Kind]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("sink: unknown backend %q (registered: %v)", cfg.Kind, Kinds())
	}
	if cfg.Table == "" {
		return nil, fmt.Errorf("sink: target table is required")
	}
	return f(ctx, cfg, s)
}

// Kinds lists the registered backend names, sorted.
func Kinds() []string {
	mu.RLock()
	defer mu.RUnlock()
	kinds := make([]string, 0, len(factories))
	for k := range factories {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// Rows projects a chunk onto the given column order as row slices, mapping
// each cell through conv. Columns the chunk carries beyond cols (retained
// pass-through columns) are ignored; a column missing from the chunk is an
// error.
func Rows(t *table.Table, cols []string, conv func(any) any) ([][]any, error) {
	src := make([][]any, len(cols))
	for i, name := range cols {
		c, ok := t.Column(name)
		if !ok {
			return nil, fmt.Errorf("sink: column %q missing from chunk", name)
		}
		src[i] = c.Values
	}
	n := t.NumRows()
	rows := make([][]any, n)
	for r := 0; r < n; r++ {
		row := make([]any, len(cols))
		for i := range cols {
			row[i] = conv(src[i][r])
		}
		rows[r] = row
	}
	return rows, nil
}
