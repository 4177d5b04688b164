package table

import (
	"testing"
	"time"

	"github.com/golang-sql/civil"
	"github.com/shopspring/decimal"
)

/*
Structure
*/

func mkTable() *Table {
	t := New(2)
	t.AddColumn("id", []any{int64(1), int64(2), int64(3)})
	t.AddColumn("name", []any{"a", nil, "c"})
	return t
}

func TestValidateRectangular(t *testing.T) {
	tab := mkTable()
	if err := tab.Validate(); err != nil {
		t.Fatalf("valid table rejected: %v", err)
	}

	tab.Cols[1].Values = tab.Cols[1].Values[:2]
	if err := tab.Validate(); err == nil {
		t.Fatal("ragged table accepted")
	}
}

func TestColumnLookup(t *testing.T) {
	tab := mkTable()
	c, ok := tab.Column("name")
	if !ok || c.Name != "name" {
		t.Fatalf("Column(name) = %v, %v", c, ok)
	}
	if _, ok := tab.Column("missing"); ok {
		t.Fatal("Column(missing) found")
	}
	if got := tab.Index("id"); got != 0 {
		t.Fatalf("Index(id) = %d, want 0", got)
	}
	if got := tab.Index("missing"); got != -1 {
		t.Fatalf("Index(missing) = %d, want -1", got)
	}
}

func TestCloneIndependence(t *testing.T) {
	tab := mkTable()
	cp := tab.Clone()
	cp.Cols[0].Values[0] = int64(99)
	if tab.Cols[0].Values[0] != int64(1) {
		t.Fatal("clone shares backing storage with original")
	}
}

func TestRow(t *testing.T) {
	tab := mkTable()
	row := tab.Row(1)
	if row["id"] != int64(2) || row["name"] != nil {
		t.Fatalf("Row(1) = %v", row)
	}
}

/*
Fingerprints
*/

func TestFingerprintStable(t *testing.T) {
	a := mkTable()
	b := mkTable()
	if Fingerprint(a) != Fingerprint(b) {
		t.Fatal("identical tables produce different fingerprints")
	}
}

func TestFingerprintSensitive(t *testing.T) {
	base := Fingerprint(mkTable())

	changed := mkTable()
	changed.Cols[1].Values[2] = "d"
	if Fingerprint(changed) == base {
		t.Fatal("value change not reflected in fingerprint")
	}

	renamed := mkTable()
	renamed.Cols[0].Name = "uid"
	if Fingerprint(renamed) == base {
		t.Fatal("column rename not reflected in fingerprint")
	}
}

// Ambiguous renderings must not collide: the string "1" and the integer 1
// are different cell values.
func TestFingerprintTyped(t *testing.T) {
	a := New(1)
	a.AddColumn("v", []any{int64(1)})
	b := New(1)
	b.AddColumn("v", []any{"1"})
	if Fingerprint(a) == Fingerprint(b) {
		t.Fatal(`int64(1) and "1" collide`)
	}
}

func TestFingerprintNullDistinct(t *testing.T) {
	a := New(1)
	a.AddColumn("v", []any{nil})
	b := New(1)
	b.AddColumn("v", []any{"\x00"})
	if Fingerprint(a) == Fingerprint(b) {
		t.Fatal("null collides with a NUL-byte string cell")
	}
}

func TestCanonicalValue(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{nil, "\x00"},
		{true, "true"},
		{int64(-7), "-7"},
		{uint16(7), "7"},
		{float64(1.5), "1.5"},
		{"x", "x"},
		{civil.Date{Year: 2021, Month: time.March, Day: 4}, "2021-03-04"},
		{decimal.RequireFromString("12.30"), "12.3"},
	}
	for _, c := range cases {
		if got := CanonicalValue(c.in); got != c.want {
			t.Errorf("CanonicalValue(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}
