package cast

import (
	"testing"
	"time"

	"github.com/golang-sql/civil"

	"tabio/internal/schema"
)

/*
Dates
*/

func TestDateObjectMode(t *testing.T) {
	res := mustCast(t, fld("d", "date32"), []any{"2021-03-04", nil, " "}, Options{})
	want := civil.Date{Year: 2021, Month: time.March, Day: 4}
	wantValues(t, res, []any{want, nil, nil})
}

func TestDateEpochNanosMode(t *testing.T) {
	res := mustCast(t, fld("d", "date32"), []any{"1970-01-02"}, Options{DateMode: TimeEpochNanos})
	wantValues(t, res, []any{int64(86400 * 1e9)})
}

func TestDatePeriodMode(t *testing.T) {
	res := mustCast(t, fld("d", "date32"), []any{"1970-01-02", "1969-12-31"}, Options{DateMode: TimePeriod})
	wantValues(t, res, []any{int64(1), int64(-1)})
}

func TestDateUnparseable(t *testing.T) {
	if _, err := castValues(t, fld("d", "date32"), []any{"04/03/2021"}, Options{}); err == nil {
		t.Fatal("non-ISO date accepted under raise")
	}
	res := mustCast(t, fld("d", "date32"), []any{"04/03/2021"}, Options{TimeErrors: PolicyCoerce})
	wantValues(t, res, []any{nil})
}

func TestDateCustomFormat(t *testing.T) {
	f := schema.Field{Name: "d", Type: "date32", DatetimeFormat: "%d/%m/%Y"}
	res := mustCast(t, f, []any{"04/03/2021"}, Options{})
	wantValues(t, res, []any{civil.Date{Year: 2021, Month: time.March, Day: 4}})
}

/*
Timestamps
*/

func TestTimestampObjectMode(t *testing.T) {
	res := mustCast(t, fld("ts", "timestamp(ms)"),
		[]any{"2021-03-04 05:06:07", "2021-03-04T05:06:07", nil}, Options{})
	want := civil.DateTime{
		Date: civil.Date{Year: 2021, Month: time.March, Day: 4},
		Time: civil.Time{Hour: 5, Minute: 6, Second: 7},
	}
	wantValues(t, res, []any{want, want, nil})
}

// Object mode carries any value in years 1-9999; the same value is out of
// range for the epoch-nanosecond representation and must raise there even
// under a coerce policy. Overflow is never a nullable condition.
func TestTimestampFarPast(t *testing.T) {
	in := []any{"1000-01-01 00:00:00"}

	res := mustCast(t, fld("ts", "timestamp(s)"), in, Options{})
	want := civil.DateTime{Date: civil.Date{Year: 1000, Month: time.January, Day: 1}}
	wantValues(t, res, []any{want})

	_, err := castValues(t, fld("ts", "timestamp(s)"), in,
		Options{TimeMode: TimeEpochNanos, TimeErrors: PolicyCoerce})
	ce := asCastError(t, err)
	if ce.Row != 0 {
		t.Fatalf("error row = %d", ce.Row)
	}
}

func TestTimestampEpochNanos(t *testing.T) {
	res := mustCast(t, fld("ts", "timestamp(ns)"), []any{"2021-03-04 05:06:07.5"},
		Options{TimeMode: TimeEpochNanos})
	want := time.Date(2021, 3, 4, 5, 6, 7, 500000000, time.UTC).UnixNano()
	wantValues(t, res, []any{want})
}

func TestTimestampPeriodTicks(t *testing.T) {
	in := []any{"2021-03-04 05:06:07.25"}
	ref := time.Date(2021, 3, 4, 5, 6, 7, 250000000, time.UTC)

	cases := []struct {
		typ  string
		want int64
	}{
		{"timestamp(s)", ref.Unix()},
		{"timestamp(ms)", ref.UnixMilli()},
		{"timestamp(us)", ref.UnixMicro()},
		{"timestamp(ns)", ref.UnixNano()},
	}
	for _, c := range cases {
		res := mustCast(t, fld("ts", c.typ), in, Options{TimeMode: TimePeriod})
		wantValues(t, res, []any{c.want})
	}
}

func TestTimestampNativeInputs(t *testing.T) {
	ref := time.Date(2021, 3, 4, 5, 6, 7, 0, time.UTC)
	res := mustCast(t, fld("ts", "timestamp(ms)"), []any{ref}, Options{})
	wantValues(t, res, []any{civil.DateTimeOf(ref)})
}

/*
Time of day
*/

func TestTimeOfDay(t *testing.T) {
	res := mustCast(t, fld("t", "time32(s)"), []any{"13:14:15", "13:14", nil}, Options{})
	wantValues(t, res, []any{
		civil.Time{Hour: 13, Minute: 14, Second: 15},
		civil.Time{Hour: 13, Minute: 14},
		nil,
	})
}

func TestTimeOfDayUnparseable(t *testing.T) {
	if _, err := castValues(t, fld("t", "time64(ns)"), []any{"25:00:00"}, Options{}); err == nil {
		t.Fatal("invalid clock time accepted under raise")
	}
}
