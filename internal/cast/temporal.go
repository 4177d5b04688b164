package cast

import (
	"math"
	"strings"
	"time"

	"github.com/golang-sql/civil"

	"tabio/internal/schema"
)

// Default parse layouts tried in order when a column declares no
// datetime_format. The first two match the canonical renderings our own
// writers emit.
var (
	dateLayouts = []string{
		"2006-01-02",
	}
	timestampLayouts = []string{
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05.999999999",
		"2006-01-02T15:04:05.999999999",
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02",
	}
	timeOfDayLayouts = []string{
		"15:04:05",
		"15:04:05.999999999",
		"15:04",
	}
)

// Epoch-nanosecond representable range: int64 nanoseconds since 1970 cover
// roughly 1677-09-21 to 2262-04-11. Values outside must never wrap.
var (
	minEpochNanos = time.Unix(0, math.MinInt64)
	maxEpochNanos = time.Unix(0, math.MaxInt64)
)

// parseTemporal resolves a raw value to an absolute time. All parsing is in
// UTC; the engine carries no time zone semantics.
func parseTemporal(v any, layouts []string) (time.Time, bool) {
	switch x := v.(type) {
	case time.Time:
		return x.UTC(), true
	case civil.Date:
		return x.In(time.UTC), true
	case civil.DateTime:
		return x.In(time.UTC), true
	}
	s := strings.TrimSpace(stringify(v))
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func fieldLayouts(f schema.Field, defaults []string) ([]string, error) {
	layout, err := f.Layout()
	if err != nil {
		return nil, err
	}
	if layout == "" {
		return defaults, nil
	}
	return []string{layout}, nil
}

// coerceDate parses ISO-8601 date tokens (and native date values) into the
// representation selected by mode: civil.Date (resolution-free, default),
// int64 epoch nanoseconds of the UTC midnight, or int64 epoch days.
func coerceDate(values []any, d schema.TypeDesc, f schema.Field, mode TimeMode, pol ErrPolicy, col string) (Result, error) {
	layouts, err := fieldLayouts(f, dateLayouts)
	if err != nil {
		return Result{}, valueError(col, d, -1, nil, err.Error())
	}

	out := make([]any, len(values))
	oc := outcome{n: len(values)}

	for i, v := range values {
		if v == nil || isEmptyToken(v) {
			continue
		}
		t, ok := parseTemporal(v, layouts)
		if !ok {
			if pol == PolicyRaise {
				return Result{}, valueError(col, d, i, v, "unparseable date")
			}
			oc.fail(i)
			continue
		}
		midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)

		switch mode {
		case TimeEpochNanos:
			if outsideEpochNanos(midnight) {
				return Result{}, valueError(col, d, i, v, "out of range for epoch-nanosecond representation")
			}
			out[i] = midnight.UnixNano()
		case TimePeriod:
			out[i] = midnight.Unix() / 86400 // epoch days
		default:
			out[i] = civil.DateOf(midnight)
		}
	}
	return Result{Values: out, OK: oc.marker()}, nil
}

// coerceTimestamp parses ISO-8601 datetime tokens (and native timestamp
// values) at the column's declared resolution. In object mode any value in
// years 1-9999 is representable and round-trips exactly; in epoch-nanos
// mode out-of-range values raise unconditionally - overflow is never a
// nullable condition, only unparseable tokens honor the coerce policy.
func coerceTimestamp(values []any, d schema.TypeDesc, f schema.Field, mode TimeMode, pol ErrPolicy, col string) (Result, error) {
	if d.TimeOfDay {
		return coerceTimeOfDay(values, d, f, pol, col)
	}

	layouts, err := fieldLayouts(f, timestampLayouts)
	if err != nil {
		return Result{}, valueError(col, d, -1, nil, err.Error())
	}

	out := make([]any, len(values))
	oc := outcome{n: len(values)}

	for i, v := range values {
		if v == nil || isEmptyToken(v) {
			continue
		}
		t, ok := parseTemporal(v, layouts)
		if !ok {
			if pol == PolicyRaise {
				return Result{}, valueError(col, d, i, v, "unparseable timestamp")
			}
			oc.fail(i)
			continue
		}

		switch mode {
		case TimeEpochNanos:
			if outsideEpochNanos(t) {
				return Result{}, valueError(col, d, i, v, "out of range for epoch-nanosecond representation")
			}
			out[i] = t.UnixNano()
		case TimePeriod:
			if d.Unit == schema.UnitNano && outsideEpochNanos(t) {
				return Result{}, valueError(col, d, i, v, "out of range for nanosecond ticks")
			}
			out[i] = d.Unit.TicksOf(t)
		default:
			out[i] = civil.DateTimeOf(t)
		}
	}
	return Result{Values: out, OK: oc.marker()}, nil
}

// coerceTimeOfDay handles time32/time64 columns: clock times without a
// date, stored as civil.Time values.
func coerceTimeOfDay(values []any, d schema.TypeDesc, f schema.Field, pol ErrPolicy, col string) (Result, error) {
	layouts, err := fieldLayouts(f, timeOfDayLayouts)
	if err != nil {
		return Result{}, valueError(col, d, -1, nil, err.Error())
	}

	out := make([]any, len(values))
	oc := outcome{n: len(values)}

	for i, v := range values {
		if v == nil || isEmptyToken(v) {
			continue
		}
		if ct, ok := v.(civil.Time); ok {
			out[i] = ct
			continue
		}
		t, ok := parseTemporal(v, layouts)
		if !ok {
			if pol == PolicyRaise {
				return Result{}, valueError(col, d, i, v, "unparseable time of day")
			}
			oc.fail(i)
			continue
		}
		out[i] = civil.TimeOf(t)
	}
	return Result{Values: out, OK: oc.marker()}, nil
}

func outsideEpochNanos(t time.Time) bool {
	return t.Before(minEpochNanos) || t.After(maxEpochNanos)
}

// isEmptyToken treats whitespace-only strings as null for temporal columns,
// mirroring how decoders hand through blank cells.
func isEmptyToken(v any) bool {
	s, ok := v.(string)
	return ok && strings.TrimSpace(s) == ""
}
