package writer

import (
	"fmt"
	"io"
	"time"

	"github.com/golang-sql/civil"
	"github.com/parquet-go/parquet-go"
	"github.com/shopspring/decimal"

	"tabio/internal/schema"
	"tabio/pkg/table"
)

// ParquetOptions configures the parquet encoder.
type ParquetOptions struct {
	// NanoTicks interprets int64 values in timestamp columns as epoch
	// nanoseconds (the fixed-resolution cast mode) instead of ticks at
	// the column's declared unit.
	NanoTicks bool
}

// ParquetWriter encodes typed tables as parquet. Unlike the textual
// encoders it needs the schema: parquet column types are built from the
// declared physical types, so a file written here reads back with the
// same logical annotations (date, timestamp unit, decimal scale).
type ParquetWriter struct{ opt ParquetOptions }

// NewParquet constructs a ParquetWriter with the provided options.
func NewParquet(opt ParquetOptions) *ParquetWriter { return &ParquetWriter{opt: opt} }

// Write encodes t onto w using the column types declared in s.
func (e *ParquetWriter) Write(w io.Writer, t *table.Table, s *schema.Schema) error {
	pw, convs, err := e.open(w, t, s)
	if err != nil {
		return err
	}
	if err := e.writeRows(pw, t, convs); err != nil {
		return err
	}
	if err := pw.Close(); err != nil {
		return fmt.Errorf("close parquet writer: %w", err)
	}
	return nil
}

// WriteChunks appends each chunk in order into one parquet file. The
// parquet schema is built from the first chunk's column set; subsequent
// chunks must match it, which the streaming caster guarantees.
func (e *ParquetWriter) WriteChunks(w io.Writer, chunks Chunks, s *schema.Schema) error {
	var pw *parquet.GenericWriter[map[string]any]
	var convs map[string]valueConv
	for t, err := range chunks {
		if err != nil {
			return err
		}
		if pw == nil {
			pw, convs, err = e.open(w, t, s)
			if err != nil {
				return err
			}
		}
		if err := e.writeRows(pw, t, convs); err != nil {
			return err
		}
	}
	if pw == nil {
		return fmt.Errorf("write parquet: empty chunk sequence")
	}
	if err := pw.Close(); err != nil {
		return fmt.Errorf("close parquet writer: %w", err)
	}
	return nil
}

type valueConv func(any) (any, error)

func (e *ParquetWriter) open(w io.Writer, t *table.Table, s *schema.Schema) (*parquet.GenericWriter[map[string]any], map[string]valueConv, error) {
	group := parquet.Group{}
	convs := make(map[string]valueConv, len(t.Cols))

	for _, c := range t.Cols {
		f, ok := s.Column(c.Name)
		if !ok {
			// Pass-through column the schema does not declare: encode as
			// an optional string.
			group[c.Name] = parquet.Optional(parquet.String())
			convs[c.Name] = func(v any) (any, error) { return renderText(v), nil }
			continue
		}
		d, err := s.Descriptor(f)
		if err != nil {
			return nil, nil, err
		}
		node, conv, err := e.columnNode(d)
		if err != nil {
			return nil, nil, fmt.Errorf("parquet column %q: %w", c.Name, err)
		}
		if f.IsNullable() {
			node = parquet.Optional(node)
		}
		group[c.Name] = node
		convs[c.Name] = conv
	}

	name := s.Name
	if name == "" {
		name = "table"
	}
	pw := parquet.NewGenericWriter[map[string]any](w, parquet.NewSchema(name, group))
	return pw, convs, nil
}

func (e *ParquetWriter) writeRows(pw *parquet.GenericWriter[map[string]any], t *table.Table, convs map[string]valueConv) error {
	n := t.NumRows()
	rows := make([]map[string]any, 0, n)
	for i := 0; i < n; i++ {
		obj := make(map[string]any, len(t.Cols))
		for _, c := range t.Cols {
			v := c.Values[i]
			if v == nil {
				continue
			}
			cv, err := convs[c.Name](v)
			if err != nil {
				return fmt.Errorf("parquet column %q row %d: %w", c.Name, i, err)
			}
			obj[c.Name] = cv
		}
		rows = append(rows, obj)
	}
	if _, err := pw.Write(rows); err != nil {
		return fmt.Errorf("write parquet rows: %w", err)
	}
	return nil
}

// columnNode maps a normalized type descriptor onto a parquet node and a
// converter that narrows typed cell values to the primitive the node
// encodes.
func (e *ParquetWriter) columnNode(d schema.TypeDesc) (parquet.Node, valueConv, error) {
	switch d.Category {
	case schema.CategoryBoolean:
		return parquet.Leaf(parquet.BooleanType), passThrough, nil

	case schema.CategoryInteger:
		bits := 32
		if d.Bits == 64 {
			bits = 64
		}
		if d.Unsigned {
			return parquet.Uint(bits), convUint(bits), nil
		}
		return parquet.Int(bits), convInt(bits), nil

	case schema.CategoryFloat:
		if d.Decimal {
			if d.Precision > 18 {
				return nil, nil, fmt.Errorf("decimal precision %d exceeds the int64-backed limit of 18", d.Precision)
			}
			scale := d.Scale
			conv := func(v any) (any, error) {
				dec, ok := v.(decimal.Decimal)
				if !ok {
					return nil, fmt.Errorf("expected decimal value, got %T", v)
				}
				return dec.Shift(scale).IntPart(), nil
			}
			return parquet.Decimal(int(d.Scale), int(d.Precision), parquet.Int64Type), conv, nil
		}
		if d.Bits == 32 {
			return parquet.Leaf(parquet.FloatType), passThrough, nil
		}
		return parquet.Leaf(parquet.DoubleType), passThrough, nil

	case schema.CategoryString:
		conv := func(v any) (any, error) { return renderText(v), nil }
		return parquet.String(), conv, nil

	case schema.CategoryDate:
		return parquet.Date(), e.convDate(), nil

	case schema.CategoryTimestamp:
		if d.TimeOfDay {
			return parquet.Time(parquet.Millisecond), convTimeOfDay, nil
		}
		unit, scale := parquetUnit(d.Unit)
		return parquet.Timestamp(unit), e.convTimestamp(d, scale), nil

	case schema.CategoryBinary:
		conv := func(v any) (any, error) {
			if b, ok := v.([]byte); ok {
				return b, nil
			}
			return []byte(renderText(v)), nil
		}
		return parquet.Leaf(parquet.ByteArrayType), conv, nil

	default:
		return nil, nil, fmt.Errorf("unsupported category %q", d.Category)
	}
}

func passThrough(v any) (any, error) { return v, nil }

func convInt(bits int) valueConv {
	return func(v any) (any, error) {
		switch x := v.(type) {
		case int8:
			return int32(x), nil
		case int16:
			return int32(x), nil
		case int32:
			return x, nil
		case int64:
			if bits == 32 {
				return int32(x), nil
			}
			return x, nil
		default:
			return nil, fmt.Errorf("expected integer value, got %T", v)
		}
	}
}

func convUint(bits int) valueConv {
	return func(v any) (any, error) {
		switch x := v.(type) {
		case uint8:
			return uint32(x), nil
		case uint16:
			return uint32(x), nil
		case uint32:
			return x, nil
		case uint64:
			if bits == 32 {
				return uint32(x), nil
			}
			return x, nil
		default:
			return nil, fmt.Errorf("expected unsigned integer value, got %T", v)
		}
	}
}

// parquetUnit maps the declared unit onto a parquet time unit; parquet has
// no second resolution, so seconds are widened to milliseconds with a
// :1000 scale factor on tick values.
func parquetUnit(u schema.TimeUnit) (parquet.TimeUnit, int64) {
	switch u {
	case schema.UnitSecond:
		return parquet.Millisecond, 1000
	case schema.UnitMilli:
		return parquet.Millisecond, 1
	case schema.UnitMicro:
		return parquet.Microsecond, 1
	default:
		return parquet.Nanosecond, 1
	}
}

func (e *ParquetWriter) convDate() valueConv {
	return func(v any) (any, error) {
		switch x := v.(type) {
		case civil.Date:
			return int32(x.In(time.UTC).Unix() / 86400), nil
		case time.Time:
			return int32(x.UTC().Unix() / 86400), nil
		case int64:
			// Tick representation: epoch days (period mode) or epoch
			// nanoseconds (fixed mode).
			if e.opt.NanoTicks {
				return int32(time.Unix(0, x).UTC().Unix() / 86400), nil
			}
			return int32(x), nil
		default:
			return nil, fmt.Errorf("expected date value, got %T", v)
		}
	}
}

func (e *ParquetWriter) convTimestamp(d schema.TypeDesc, secondScale int64) valueConv {
	return func(v any) (any, error) {
		switch x := v.(type) {
		case civil.DateTime:
			t := x.In(time.UTC)
			return d.Unit.TicksOf(t) * secondScale, nil
		case time.Time:
			return d.Unit.TicksOf(x.UTC()) * secondScale, nil
		case int64:
			if e.opt.NanoTicks {
				return d.Unit.TicksOf(time.Unix(0, x).UTC()) * secondScale, nil
			}
			return x * secondScale, nil
		default:
			return nil, fmt.Errorf("expected timestamp value, got %T", v)
		}
	}
}

func convTimeOfDay(v any) (any, error) {
	ct, ok := v.(civil.Time)
	if !ok {
		return nil, fmt.Errorf("expected time-of-day value, got %T", v)
	}
	ms := int64(ct.Hour)*3600000 + int64(ct.Minute)*60000 + int64(ct.Second)*1000 + int64(ct.Nanosecond)/1e6
	return int32(ms), nil
}
