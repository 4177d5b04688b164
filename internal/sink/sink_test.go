package sink

import (
	"context"
	"testing"

	"tabio/internal/schema"
	"tabio/pkg/table"
)

func TestRowsProjection(t *testing.T) {
	src := table.New(3)
	src.AddColumn("b", []any{"x", "y"})
	src.AddColumn("a", []any{int64(1), int64(2)})
	src.AddColumn("extra", []any{"p", "q"})

	rows, err := Rows(src, []string{"a", "b"}, func(v any) any { return v })
	if err != nil {
		t.Fatalf("Rows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d", len(rows))
	}
	if rows[0][0] != int64(1) || rows[0][1] != "x" {
		t.Fatalf("row[0] = %v", rows[0])
	}
}

func TestRowsMissingColumn(t *testing.T) {
	src := table.New(1)
	src.AddColumn("a", []any{int64(1)})
	if _, err := Rows(src, []string{"a", "b"}, func(v any) any { return v }); err == nil {
		t.Fatal("missing column accepted")
	}
}

func TestRowsConversion(t *testing.T) {
	src := table.New(1)
	src.AddColumn("a", []any{true, nil})
	rows, err := Rows(src, []string{"a"}, func(v any) any {
		if v == true {
			return 1
		}
		return v
	})
	if err != nil {
		t.Fatalf("Rows: %v", err)
	}
	if rows[0][0] != 1 || rows[1][0] != nil {
		t.Fatalf("rows = %v", rows)
	}
}

func TestFactoryUnknownKind(t *testing.T) {
	s := &schema.Schema{Columns: []schema.Field{{Name: "a", Type: "int64"}}}
	if _, err := New(context.Background(), Config{Kind: "oracle", Table: "t"}, s); err == nil {
		t.Fatal("unknown backend accepted")
	}
	if _, err := New(context.Background(), Config{Kind: "oracle"}, s); err == nil {
		t.Fatal("missing table accepted")
	}
}
