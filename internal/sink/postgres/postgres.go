// Package postgres implements a Postgres sink using pgx v5. Chunks are
// COPYed into a session-scoped staging table and promoted into the target
// with a single INSERT once the stream is drained, so a failed load never
// leaves a partial target table.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-sql/civil"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"tabio/internal/cast"
	"tabio/internal/schema"
	"tabio/internal/sink"
)

const defaultBatchRows = 10000

// Sink is a Postgres-backed sink.Sink.
type Sink struct {
	pool *pgxpool.Pool
	cfg  sink.Config
	s    *schema.Schema
	cols []string
}

// New opens a connection pool for cfg.DSN.
func New(ctx context.Context, cfg sink.Config, s *schema.Schema) (*Sink, error) {
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("pgxpool: %w", err)
	}
	return &Sink{pool: pool, cfg: cfg, s: s, cols: s.ColumnNames()}, nil
}

func (k *Sink) Close() { k.pool.Close() }

// EnsureTable creates the target table from the schema when missing.
func (k *Sink) EnsureTable(ctx context.Context) error {
	ddl, err := CreateTableSQL(k.cfg.Table, k.s)
	if err != nil {
		return err
	}
	if _, err := k.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("create table %s: %w", k.cfg.Table, err)
	}
	return nil
}

// Load drains chunks into the target via a staging table.
func (k *Sink) Load(ctx context.Context, chunks cast.Chunks) (int64, error) {
	conn, err := k.pool.Acquire(ctx)
	if err != nil {
		return 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	stage := stagingName(k.cfg.Table)
	create := fmt.Sprintf(
		"CREATE TEMP TABLE %s AS SELECT %s FROM %s WHERE false",
		pgIdent(stage), strings.Join(mapIdent(k.cols), ","), pgFQN(k.cfg.Table),
	)
	if _, err := conn.Exec(ctx, create); err != nil {
		return 0, fmt.Errorf("create staging table: %w", err)
	}
	defer func() { _, _ = conn.Exec(ctx, "DROP TABLE IF EXISTS "+pgIdent(stage)) }()

	batch := k.cfg.BatchRows
	if batch <= 0 {
		batch = defaultBatchRows
	}

	var total int64
	for t, err := range chunks {
		if err != nil {
			return total, err
		}
		rows, err := sink.Rows(t, k.cols, pgValue)
		if err != nil {
			return total, err
		}
		for len(rows) > 0 {
			n := min(batch, len(rows))
			copied, err := conn.CopyFrom(ctx, pgx.Identifier{stage}, k.cols, pgx.CopyFromRows(rows[:n]))
			total += copied
			if err != nil {
				var pgErr *pgconn.PgError
				if errors.As(err, &pgErr) && pgErr.Detail != "" {
					return total, fmt.Errorf("copy into staging: %s (%s)", pgErr.Detail, pgErr.SQLState())
				}
				return total, fmt.Errorf("copy into staging: %w", err)
			}
			rows = rows[n:]
		}
	}

	promote := fmt.Sprintf(
		"INSERT INTO %s (%s) SELECT %s FROM %s",
		pgFQN(k.cfg.Table),
		strings.Join(mapIdent(k.cols), ","),
		strings.Join(mapIdent(k.cols), ","),
		pgIdent(stage),
	)
	if _, err := conn.Exec(ctx, promote); err != nil {
		return total, fmt.Errorf("promote staging rows: %w", err)
	}
	return total, nil
}

// CreateTableSQL renders a CREATE TABLE IF NOT EXISTS statement mapping the
// schema's declared types onto Postgres column types.
func CreateTableSQL(name string, s *schema.Schema) (string, error) {
	defs := make([]string, 0, len(s.Columns))
	for _, f := range s.Columns {
		d, err := s.Descriptor(f)
		if err != nil {
			return "", err
		}
		sqlType, err := pgType(d)
		if err != nil {
			return "", fmt.Errorf("column %q: %w", f.Name, err)
		}
		def := pgIdent(f.Name) + " " + sqlType
		if !f.IsNullable() {
			def += " NOT NULL"
		}
		defs = append(defs, def)
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", pgFQN(name), strings.Join(defs, ", ")), nil
}

func pgType(d schema.TypeDesc) (string, error) {
	switch d.Category {
	case schema.CategoryBoolean:
		return "boolean", nil
	case schema.CategoryInteger:
		if d.Unsigned {
			// Postgres has no unsigned integers; widen so the full range
			// fits.
			switch {
			case d.Bits <= 16:
				return "integer", nil
			case d.Bits <= 32:
				return "bigint", nil
			default:
				return "numeric(20,0)", nil
			}
		}
		switch {
		case d.Bits <= 16:
			return "smallint", nil
		case d.Bits <= 32:
			return "integer", nil
		default:
			return "bigint", nil
		}
	case schema.CategoryFloat:
		if d.Decimal {
			return fmt.Sprintf("numeric(%d,%d)", d.Precision, d.Scale), nil
		}
		if d.Bits == 32 {
			return "real", nil
		}
		return "double precision", nil
	case schema.CategoryString:
		return "text", nil
	case schema.CategoryDate:
		return "date", nil
	case schema.CategoryTimestamp:
		if d.TimeOfDay {
			return "time", nil
		}
		return "timestamp", nil
	case schema.CategoryBinary:
		return "bytea", nil
	default:
		return "", fmt.Errorf("no postgres type for category %q", d.Category)
	}
}

// pgValue maps a typed cell onto something pgx encodes natively. Civil
// types become time.Time at UTC; decimals travel as strings so numeric
// columns keep the exact value.
func pgValue(v any) any {
	switch x := v.(type) {
	case civil.Date:
		return x.In(time.UTC)
	case civil.DateTime:
		return x.In(time.UTC)
	case civil.Time:
		return x.String()
	case decimal.Decimal:
		return x.String()
	default:
		return v
	}
}

func stagingName(target string) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "stage_" + strings.ReplaceAll(target, ".", "_") + "_" + id[:12]
}

func pgIdent(id string) string { return `"` + strings.ReplaceAll(id, `"`, `""`) + `"` }

func pgFQN(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = pgIdent(p)
	}
	return strings.Join(parts, ".")
}

func mapIdent(cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = pgIdent(c)
	}
	return out
}

func init() {
	sink.Register("postgres", func(ctx context.Context, cfg sink.Config, s *schema.Schema) (sink.Sink, error) {
		return New(ctx, cfg, s)
	})
}
