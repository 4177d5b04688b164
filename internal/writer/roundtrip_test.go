package writer

import (
	"bytes"
	"testing"

	"tabio/internal/cast"
	"tabio/internal/reader"
	"tabio/internal/schema"
	"tabio/pkg/table"
)

/*
Write / read / cast round trips. A table written in any format and read
back through the caster must be identical to the original.
*/

func roundTripSchema() *schema.Schema {
	return &schema.Schema{
		Name: "roundtrip",
		Columns: []schema.Field{
			{Name: "id", Type: "int64"},
			{Name: "name", Type: "string"},
			{Name: "active", Type: "bool_"},
			{Name: "score", Type: "float64"},
			{Name: "price", Type: "decimal128(9,2)"},
			{Name: "day", Type: "date32"},
			{Name: "at", Type: "timestamp(ms)"},
		},
	}
}

func roundTripTable(t *testing.T) *table.Table {
	t.Helper()
	raw := table.New(7)
	raw.AddColumn("id", []any{"1", "2", "3"})
	raw.AddColumn("name", []any{"a", nil, "c"})
	raw.AddColumn("active", []any{"yes", "no", nil})
	raw.AddColumn("score", []any{"1.5", "-0.25", nil})
	raw.AddColumn("price", []any{"12.30", "0.01", nil})
	raw.AddColumn("day", []any{"2021-03-04", nil, "1999-12-31"})
	raw.AddColumn("at", []any{"2021-03-04 05:06:07", "2021-03-04 05:06:07.25", nil})

	typed, err := cast.Table(raw, roundTripSchema(), cast.Options{})
	if err != nil {
		t.Fatalf("cast fixture: %v", err)
	}
	return typed
}

func recast(t *testing.T, raw *table.Table) *table.Table {
	t.Helper()
	typed, err := cast.Table(raw, roundTripSchema(), cast.Options{})
	if err != nil {
		t.Fatalf("recast: %v", err)
	}
	return typed
}

func TestCSVRoundTrip(t *testing.T) {
	typed := roundTripTable(t)

	var buf bytes.Buffer
	if err := NewCSV(CSVOptions{}).Write(&buf, typed); err != nil {
		t.Fatalf("write: %v", err)
	}
	raw, err := reader.NewCSV(reader.CSVOptions{}).Read(&buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if table.Fingerprint(typed) != table.Fingerprint(recast(t, raw)) {
		t.Fatal("csv round trip altered the table")
	}
}

func TestJSONLRoundTrip(t *testing.T) {
	typed := roundTripTable(t)

	var buf bytes.Buffer
	if err := NewJSONL().Write(&buf, typed); err != nil {
		t.Fatalf("write: %v", err)
	}
	raw, err := reader.NewJSONL(reader.JSONLOptions{Columns: roundTripSchema().ColumnNames()}).Read(&buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if table.Fingerprint(typed) != table.Fingerprint(recast(t, raw)) {
		t.Fatal("jsonl round trip altered the table")
	}
}

func TestParquetRoundTrip(t *testing.T) {
	typed := roundTripTable(t)
	s := roundTripSchema()

	var buf bytes.Buffer
	if err := NewParquet(ParquetOptions{}).Write(&buf, typed, s); err != nil {
		t.Fatalf("write: %v", err)
	}
	raw, err := reader.NewParquet().Read(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if table.Fingerprint(typed) != table.Fingerprint(recast(t, raw)) {
		t.Fatal("parquet round trip altered the table")
	}
}

// Chunked writes concatenate into the same file a single write produces.
func TestCSVWriteChunks(t *testing.T) {
	typed := roundTripTable(t)

	var whole bytes.Buffer
	if err := NewCSV(CSVOptions{}).Write(&whole, typed); err != nil {
		t.Fatalf("write: %v", err)
	}

	first := table.New(len(typed.Cols))
	second := table.New(len(typed.Cols))
	for _, c := range typed.Cols {
		first.AddColumn(c.Name, c.Values[:2])
		second.AddColumn(c.Name, c.Values[2:])
	}
	chunks := func(yield func(*table.Table, error) bool) {
		if !yield(first, nil) {
			return
		}
		yield(second, nil)
	}

	var chunked bytes.Buffer
	if err := NewCSV(CSVOptions{}).WriteChunks(&chunked, chunks); err != nil {
		t.Fatalf("write chunks: %v", err)
	}
	if whole.String() != chunked.String() {
		t.Fatalf("chunked output differs:\n%s\nvs\n%s", whole.String(), chunked.String())
	}
}
