package sqlite

import (
	"testing"
	"time"

	"github.com/golang-sql/civil"
	"github.com/shopspring/decimal"

	"tabio/internal/schema"
)

func TestCreateTableSQL(t *testing.T) {
	no := false
	s := &schema.Schema{Columns: []schema.Field{
		{Name: "id", Type: "int64", Nullable: &no},
		{Name: "active", Type: "bool_"},
		{Name: "score", Type: "float64"},
		{Name: "price", Type: "decimal128(9,2)"},
		{Name: "day", Type: "date32"},
		{Name: "blob", Type: "binary"},
	}}

	got, err := CreateTableSQL("orders", s)
	if err != nil {
		t.Fatalf("CreateTableSQL: %v", err)
	}
	want := `CREATE TABLE IF NOT EXISTS "orders" ("id" INTEGER NOT NULL, "active" INTEGER, "score" REAL, "price" NUMERIC, "day" TEXT, "blob" BLOB)`
	if got != want {
		t.Fatalf("sql =\n%s\nwant\n%s", got, want)
	}
}

func TestSqliteValue(t *testing.T) {
	if got := sqliteValue(true); got != int64(1) {
		t.Fatalf("true = %#v", got)
	}
	if got := sqliteValue(false); got != int64(0) {
		t.Fatalf("false = %#v", got)
	}
	if got := sqliteValue(civil.Date{Year: 2021, Month: time.March, Day: 4}); got != "2021-03-04" {
		t.Fatalf("date = %#v", got)
	}
	dt := civil.DateTimeOf(time.Date(2021, 3, 4, 5, 6, 7, 0, time.UTC))
	if got := sqliteValue(dt); got != "2021-03-04 05:06:07" {
		t.Fatalf("datetime = %#v", got)
	}
	if got := sqliteValue(decimal.RequireFromString("12.34")); got != "12.34" {
		t.Fatalf("decimal = %#v", got)
	}
	if got := sqliteValue(int64(7)); got != int64(7) {
		t.Fatalf("int passthrough = %#v", got)
	}
	if got := sqliteValue(nil); got != nil {
		t.Fatalf("nil = %#v", got)
	}
}
