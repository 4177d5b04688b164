package writer

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/golang-sql/civil"
	"github.com/shopspring/decimal"
)

func TestRenderText(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{"x", "x"},
		{true, "true"},
		{int8(-7), "-7"},
		{uint64(7), "7"},
		{1.5, "1.5"},
		{decimal.RequireFromString("12.34"), "12.34"},
		{civil.Date{Year: 2021, Month: time.March, Day: 4}, "2021-03-04"},
		{civil.Time{Hour: 13, Minute: 14, Second: 15}, "13:14:15"},
		{time.Date(2021, 3, 4, 5, 6, 7, 0, time.UTC), "2021-03-04 05:06:07"},
	}
	for _, c := range cases {
		if got := renderText(c.in); got != c.want {
			t.Errorf("renderText(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

// The datetime rendering carries a fractional part only when one exists, so
// whole-second values keep the compact canonical shape.
func TestRenderDateTimeFraction(t *testing.T) {
	whole := civil.DateTimeOf(time.Date(2021, 3, 4, 5, 6, 7, 0, time.UTC))
	if got := renderDateTime(whole); got != "2021-03-04 05:06:07" {
		t.Fatalf("whole second = %q", got)
	}
	frac := civil.DateTimeOf(time.Date(2021, 3, 4, 5, 6, 7, 250000000, time.UTC))
	if got := renderDateTime(frac); got != "2021-03-04 05:06:07.25" {
		t.Fatalf("fractional = %q", got)
	}
}

func TestRenderFloatSpecials(t *testing.T) {
	if got := renderText(math.NaN()); got != "NaN" {
		t.Fatalf("NaN = %q", got)
	}
	if got := renderText(math.Inf(-1)); got != "-Inf" {
		t.Fatalf("-Inf = %q", got)
	}
}

func TestRenderJSON(t *testing.T) {
	if got := renderJSON(int64(7)); got != int64(7) {
		t.Fatalf("integer not kept numeric: %#v", got)
	}
	if got := renderJSON(math.Inf(1)); got != "Inf" {
		t.Fatalf("Inf = %#v", got)
	}
	if got := renderJSON(decimal.RequireFromString("12.34")); got != json.Number("12.34") {
		t.Fatalf("decimal = %#v", got)
	}
	if got := renderJSON(nil); got != nil {
		t.Fatalf("null = %#v", got)
	}
}
