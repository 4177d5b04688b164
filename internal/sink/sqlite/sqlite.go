// Package sqlite implements a SQLite sink over database/sql. SQLite has no
// bulk-load API, so chunks are inserted with a prepared statement inside a
// transaction per chunk, which keeps the write path fast enough for
// moderate volumes.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/golang-sql/civil"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"tabio/internal/cast"
	"tabio/internal/schema"
	"tabio/internal/sink"
)

// Sink is a SQLite-backed sink.Sink.
type Sink struct {
	db   *sql.DB
	cfg  sink.Config
	s    *schema.Schema
	cols []string
}

// New opens the database at cfg.DSN. The DSN is passed to the driver
// unchanged, so both plain paths ("out.db") and URI forms
// ("file:out.db?cache=shared") work.
func New(ctx context.Context, cfg sink.Config, s *schema.Schema) (*Sink, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, fmt.Errorf("sqlite: DSN must not be empty")
	}
	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}
	return &Sink{db: db, cfg: cfg, s: s, cols: s.ColumnNames()}, nil
}

func (k *Sink) Close() { k.db.Close() }

// EnsureTable creates the target table from the schema when missing.
func (k *Sink) EnsureTable(ctx context.Context) error {
	ddl, err := CreateTableSQL(k.cfg.Table, k.s)
	if err != nil {
		return err
	}
	if _, err := k.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("sqlite: create table %s: %w", k.cfg.Table, err)
	}
	return nil
}

// Load drains chunks into the target, one transaction per chunk.
func (k *Sink) Load(ctx context.Context, chunks cast.Chunks) (int64, error) {
	placeholders := make([]string, len(k.cols))
	for i := range placeholders {
		placeholders[i] = "?"
	}
	stmtSQL := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(k.cfg.Table),
		strings.Join(quoteAll(k.cols), ", "),
		strings.Join(placeholders, ", "),
	)

	var total int64
	for t, err := range chunks {
		if err != nil {
			return total, err
		}
		rows, err := sink.Rows(t, k.cols, sqliteValue)
		if err != nil {
			return total, err
		}
		n, err := k.insertChunk(ctx, stmtSQL, rows)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func (k *Sink) insertChunk(ctx context.Context, stmtSQL string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	tx, err := k.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("sqlite: begin tx: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, stmtSQL)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("sqlite: prepare insert: %w", err)
	}
	defer stmt.Close()

	var inserted int64
	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("sqlite: insert: %w", err)
		}
		inserted++
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("sqlite: commit: %w", err)
	}
	return inserted, nil
}

// CreateTableSQL renders a CREATE TABLE IF NOT EXISTS statement mapping the
// schema's declared types onto SQLite storage classes.
func CreateTableSQL(name string, s *schema.Schema) (string, error) {
	defs := make([]string, 0, len(s.Columns))
	for _, f := range s.Columns {
		d, err := s.Descriptor(f)
		if err != nil {
			return "", err
		}
		sqlType, err := sqliteType(d)
		if err != nil {
			return "", fmt.Errorf("column %q: %w", f.Name, err)
		}
		def := quoteIdent(f.Name) + " " + sqlType
		if !f.IsNullable() {
			def += " NOT NULL"
		}
		defs = append(defs, def)
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", quoteIdent(name), strings.Join(defs, ", ")), nil
}

func sqliteType(d schema.TypeDesc) (string, error) {
	switch d.Category {
	case schema.CategoryBoolean, schema.CategoryInteger:
		return "INTEGER", nil
	case schema.CategoryFloat:
		if d.Decimal {
			return "NUMERIC", nil
		}
		return "REAL", nil
	case schema.CategoryString, schema.CategoryDate, schema.CategoryTimestamp:
		// Temporal values travel as canonical text; SQLite date functions
		// understand the "YYYY-MM-DD HH:MM:SS" shape.
		return "TEXT", nil
	case schema.CategoryBinary:
		return "BLOB", nil
	default:
		return "", fmt.Errorf("no sqlite type for category %q", d.Category)
	}
}

// sqliteValue maps a typed cell onto a driver-encodable value. Temporal and
// decimal values become their canonical text forms.
func sqliteValue(v any) any {
	switch x := v.(type) {
	case bool:
		if x {
			return int64(1)
		}
		return int64(0)
	case civil.Date:
		return x.String()
	case civil.DateTime:
		return x.In(time.UTC).Format("2006-01-02 15:04:05.999999999")
	case civil.Time:
		return x.String()
	case time.Time:
		return x.UTC().Format("2006-01-02 15:04:05.999999999")
	case decimal.Decimal:
		return x.String()
	default:
		return v
	}
}

func quoteIdent(id string) string { return `"` + strings.ReplaceAll(id, `"`, `""`) + `"` }

func quoteAll(cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = quoteIdent(c)
	}
	return out
}

func init() {
	sink.Register("sqlite", func(ctx context.Context, cfg sink.Config, s *schema.Schema) (sink.Sink, error) {
		return New(ctx, cfg, s)
	})
}
