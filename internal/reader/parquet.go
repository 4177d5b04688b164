package reader

import (
	"fmt"
	"io"
	"math/big"
	"os"
	"time"

	"github.com/golang-sql/civil"
	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/format"
	"github.com/shopspring/decimal"

	"tabio/pkg/table"
)

// ParquetReader decodes parquet files into raw tables. Unlike the CSV and
// JSON-lines decoders, parquet columns arrive natively typed: the decoder
// maps physical+logical types onto the engine's value vocabulary
// (bool, sized ints, floats, decimal.Decimal, string, []byte, civil.Date,
// civil.Time, time.Time) and the caster then only reconciles them against
// the schema. Only flat schemas are supported; nested columns surface as
// an error here rather than as uncastable values later.
type ParquetReader struct{}

// NewParquet constructs a ParquetReader.
func NewParquet() *ParquetReader { return &ParquetReader{} }

// ReadFile opens path and reads the whole file into one raw table.
func (p *ParquetReader) ReadFile(path string) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open parquet: %w", err)
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat parquet: %w", err)
	}
	return p.Read(f, st.Size())
}

// Read decodes a parquet payload from r.
func (p *ParquetReader) Read(r io.ReaderAt, size int64) (*table.Table, error) {
	var out *table.Table
	for chunk, err := range p.ReadChunks(r, size, 0) {
		if err != nil {
			return nil, err
		}
		if out == nil {
			out = chunk
			continue
		}
		for i := range out.Cols {
			out.Cols[i].Values = append(out.Cols[i].Values, chunk.Cols[i].Values...)
		}
	}
	if out == nil {
		out = table.New(0)
	}
	return out, nil
}

// ReadChunks yields raw tables of at most rows rows each (rows <= 0 reads
// row-group-sized chunks).
func (p *ParquetReader) ReadChunks(r io.ReaderAt, size int64, rows int) Chunks {
	return func(yield func(*table.Table, error) bool) {
		pf, err := parquet.OpenFile(r, size)
		if err != nil {
			yield(nil, fmt.Errorf("open parquet: %w", err))
			return
		}

		cols, err := leafColumns(pf.Schema())
		if err != nil {
			yield(nil, err)
			return
		}

		bufSize := rows
		if bufSize <= 0 {
			bufSize = 4096
		}
		buf := make([]parquet.Row, bufSize)

		emitted := false
		for _, rg := range pf.RowGroups() {
			rr := rg.Rows()
			for {
				n, rerr := rr.ReadRows(buf)
				if n > 0 {
					t := table.New(len(cols))
					vals := make([][]any, len(cols))
					for i := range vals {
						vals[i] = make([]any, n)
					}
					for ri, row := range buf[:n] {
						for _, v := range row {
							ci := v.Column()
							if ci < 0 || ci >= len(cols) {
								continue
							}
							vals[ci][ri] = cols[ci].decode(v)
						}
					}
					for i, c := range cols {
						t.AddColumn(c.name, vals[i])
					}
					emitted = true
					if !yield(t, nil) {
						rr.Close()
						return
					}
				}
				if rerr == io.EOF {
					break
				}
				if rerr != nil {
					rr.Close()
					yield(nil, fmt.Errorf("read parquet rows: %w", rerr))
					return
				}
				if n == 0 {
					break
				}
			}
			rr.Close()
		}
		if !emitted {
			t := table.New(len(cols))
			for _, c := range cols {
				t.AddColumn(c.name, nil)
			}
			yield(t, nil)
		}
	}
}

// leafColumn pairs a leaf's name with a decoder closure resolved once from
// the physical and logical type.
type leafColumn struct {
	name   string
	decode func(parquet.Value) any
}

func leafColumns(s *parquet.Schema) ([]leafColumn, error) {
	fields := s.Fields()
	out := make([]leafColumn, 0, len(fields))
	for _, f := range fields {
		if !f.Leaf() {
			return nil, fmt.Errorf("parquet column %q: nested columns are not supported", f.Name())
		}
		out = append(out, leafColumn{name: f.Name(), decode: decoderFor(f)})
	}
	return out, nil
}

func decoderFor(f parquet.Field) func(parquet.Value) any {
	lt := f.Type().LogicalType()
	return func(v parquet.Value) any {
		if v.IsNull() {
			return nil
		}
		switch v.Kind() {
		case parquet.Boolean:
			return v.Boolean()
		case parquet.Int32:
			if lt != nil {
				if lt.Date != nil {
					return civil.DateOf(time.Unix(int64(v.Int32())*86400, 0).UTC())
				}
				if lt.Decimal != nil {
					return decimal.New(int64(v.Int32()), -lt.Decimal.Scale)
				}
				if lt.Time != nil {
					return civilTimeFromTicks(int64(v.Int32()), lt.Time)
				}
			}
			return v.Int32()
		case parquet.Int64:
			if lt != nil {
				if lt.Timestamp != nil {
					return timeFromTicks(v.Int64(), lt.Timestamp)
				}
				if lt.Decimal != nil {
					return decimal.New(v.Int64(), -lt.Decimal.Scale)
				}
				if lt.Time != nil {
					return civilTimeFromTicks(v.Int64(), lt.Time)
				}
			}
			return v.Int64()
		case parquet.Float:
			return v.Float()
		case parquet.Double:
			return v.Double()
		case parquet.ByteArray, parquet.FixedLenByteArray:
			b := v.ByteArray()
			if lt != nil {
				if lt.UTF8 != nil {
					return string(b)
				}
				if lt.Decimal != nil {
					return decimalFromBigEndian(b, lt.Decimal.Scale)
				}
			}
			cp := make([]byte, len(b))
			copy(cp, b)
			return cp
		default:
			return v.String()
		}
	}
}

func timeFromTicks(ticks int64, ts *format.TimestampType) time.Time {
	switch {
	case ts.Unit.Millis != nil:
		return time.UnixMilli(ticks).UTC()
	case ts.Unit.Micros != nil:
		return time.UnixMicro(ticks).UTC()
	default:
		return time.Unix(0, ticks).UTC()
	}
}

func civilTimeFromTicks(ticks int64, tt *format.TimeType) civil.Time {
	var d time.Duration
	switch {
	case tt.Unit.Millis != nil:
		d = time.Duration(ticks) * time.Millisecond
	case tt.Unit.Micros != nil:
		d = time.Duration(ticks) * time.Microsecond
	default:
		d = time.Duration(ticks)
	}
	base := time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC).Add(d)
	return civil.TimeOf(base)
}

// decimalFromBigEndian interprets a two's-complement big-endian unscaled
// value (the FIXED_LEN_BYTE_ARRAY decimal encoding).
func decimalFromBigEndian(b []byte, scale int32) decimal.Decimal {
	neg := len(b) > 0 && b[0]&0x80 != 0
	i := new(big.Int)
	if neg {
		cp := make([]byte, len(b))
		for j, by := range b {
			cp[j] = ^by
		}
		i.SetBytes(cp)
		i.Add(i, big.NewInt(1))
		i.Neg(i)
	} else {
		i.SetBytes(b)
	}
	return decimal.NewFromBigInt(i, -scale)
}
