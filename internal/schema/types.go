package schema

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Category is the coarse semantic class of a column, independent of the
// physical width or resolution carried by the type token. The set is closed:
// every coercion decision in the caster switches exhaustively over it.
type Category int

const (
	CategoryInvalid Category = iota
	CategoryBoolean
	CategoryInteger
	CategoryFloat
	CategoryString
	CategoryDate
	CategoryTimestamp
	CategoryBinary
	CategoryOther
)

var categoryNames = map[Category]string{
	CategoryBoolean:   "boolean",
	CategoryInteger:   "integer",
	CategoryFloat:     "float",
	CategoryString:    "string",
	CategoryDate:      "date",
	CategoryTimestamp: "timestamp",
	CategoryBinary:    "binary",
	CategoryOther:     "other",
}

func (c Category) String() string {
	if s, ok := categoryNames[c]; ok {
		return s
	}
	return "invalid"
}

// ParseCategory resolves a category name as written in schema documents.
// "struct" and "list" are accepted as aliases for "other" to keep older
// schema files loadable.
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "boolean", "bool":
		return CategoryBoolean, nil
	case "integer":
		return CategoryInteger, nil
	case "float":
		return CategoryFloat, nil
	case "string":
		return CategoryString, nil
	case "date":
		return CategoryDate, nil
	case "timestamp":
		return CategoryTimestamp, nil
	case "binary":
		return CategoryBinary, nil
	case "other", "struct", "list":
		return CategoryOther, nil
	default:
		return CategoryInvalid, fmt.Errorf("unknown type_category %q", s)
	}
}

// TimeUnit is the resolution declared by a timestamp or time type token.
type TimeUnit int

const (
	UnitSecond TimeUnit = iota
	UnitMilli
	UnitMicro
	UnitNano
)

func (u TimeUnit) String() string {
	switch u {
	case UnitSecond:
		return "s"
	case UnitMilli:
		return "ms"
	case UnitMicro:
		return "us"
	default:
		return "ns"
	}
}

// TicksOf converts an absolute time to epoch ticks at this unit.
func (u TimeUnit) TicksOf(t time.Time) int64 {
	switch u {
	case UnitSecond:
		return t.Unix()
	case UnitMilli:
		return t.UnixMilli()
	case UnitMicro:
		return t.UnixMicro()
	default:
		return t.UnixNano()
	}
}

// TimeOf converts epoch ticks at this unit back to an absolute time in UTC.
func (u TimeUnit) TimeOf(ticks int64) time.Time {
	switch u {
	case UnitSecond:
		return time.Unix(ticks, 0).UTC()
	case UnitMilli:
		return time.UnixMilli(ticks).UTC()
	case UnitMicro:
		return time.UnixMicro(ticks).UTC()
	default:
		return time.Unix(0, ticks).UTC()
	}
}

func parseTimeUnit(s string) (TimeUnit, error) {
	switch s {
	case "s":
		return UnitSecond, nil
	case "ms":
		return UnitMilli, nil
	case "us":
		return UnitMicro, nil
	case "ns":
		return UnitNano, nil
	default:
		return UnitSecond, fmt.Errorf("unknown time unit %q", s)
	}
}

// TypeDesc is the normalized form of a declared type token: the category all
// casting decisions branch on plus the physical parameters that matter for
// coercion (integer width and signedness, float width, decimal precision and
// scale, time unit).
type TypeDesc struct {
	Token    string
	Category Category

	Bits     int  // integer/float width: 8, 16, 32, 64
	Unsigned bool // integer signedness

	Decimal   bool // float category backed by decimal128
	Precision int32
	Scale     int32

	Unit      TimeUnit // timestamp/time resolution
	TimeOfDay bool     // time32/time64: clock time without a date
}

// ParseType normalizes a declared type token. The vocabulary follows the
// columnar naming convention used by our schema registry: bool_, int8..int64,
// uint8..uint64, float16/32/64, decimal128(p,s), string variants, date32/64,
// time32/64(unit), timestamp(unit), binary variants, and the nested
// struct<...>/list<...>/map_<...> forms which resolve to the "other"
// category (recognized, never castable).
func ParseType(token string) (TypeDesc, error) {
	d := TypeDesc{Token: token}
	t := strings.ToLower(strings.TrimSpace(token))
	if t == "" {
		return d, fmt.Errorf("empty type token")
	}

	base := t
	var arg string
	if i := strings.IndexByte(t, '('); i >= 0 && strings.HasSuffix(t, ")") {
		base = t[:i]
		arg = t[i+1 : len(t)-1]
	}

	switch {
	case base == "bool" || base == "bool_" || base == "boolean":
		d.Category = CategoryBoolean

	case strings.HasPrefix(base, "int") || strings.HasPrefix(base, "uint"):
		d.Category = CategoryInteger
		d.Unsigned = base[0] == 'u'
		width := strings.TrimPrefix(strings.TrimPrefix(base, "u"), "int")
		bits, err := strconv.Atoi(width)
		if err != nil || !validBits(bits) {
			return d, fmt.Errorf("unrecognized type token %q", token)
		}
		d.Bits = bits

	case base == "float16" || base == "float32":
		d.Category = CategoryFloat
		d.Bits = 32
	case base == "float64" || base == "float" || base == "double":
		d.Category = CategoryFloat
		d.Bits = 64

	case base == "decimal128" || base == "decimal":
		d.Category = CategoryFloat
		d.Decimal = true
		p, s, err := parseDecimalArgs(arg)
		if err != nil {
			return d, fmt.Errorf("type token %q: %v", token, err)
		}
		d.Precision, d.Scale = p, s

	case base == "string" || base == "string_" || base == "utf8" || base == "large_string":
		d.Category = CategoryString

	case base == "date32" || base == "date64":
		d.Category = CategoryDate

	case base == "time32" || base == "time64":
		d.Category = CategoryTimestamp
		d.TimeOfDay = true
		u, err := parseTimeUnit(arg)
		if err != nil {
			return d, fmt.Errorf("type token %q: %v", token, err)
		}
		d.Unit = u

	case base == "timestamp":
		d.Category = CategoryTimestamp
		u, err := parseTimeUnit(arg)
		if err != nil {
			return d, fmt.Errorf("type token %q: %v", token, err)
		}
		d.Unit = u

	case base == "binary" || base == "large_binary" || base == "fixed_size_binary":
		d.Category = CategoryBinary

	case strings.HasPrefix(t, "struct<") || strings.HasPrefix(t, "list<") ||
		strings.HasPrefix(t, "large_list<") || strings.HasPrefix(t, "map_<") ||
		strings.HasPrefix(t, "map<"):
		d.Category = CategoryOther

	default:
		return d, fmt.Errorf("unrecognized type token %q", token)
	}

	return d, nil
}

func validBits(b int) bool {
	return b == 8 || b == 16 || b == 32 || b == 64
}

func parseDecimalArgs(arg string) (precision, scale int32, err error) {
	parts := strings.Split(arg, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("want decimal128(precision,scale)")
	}
	p, err := strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 32)
	if err != nil {
		return 0, 0, fmt.Errorf("bad precision: %v", err)
	}
	s, err := strconv.ParseInt(strings.TrimSpace(parts[1]), 10, 32)
	if err != nil {
		return 0, 0, fmt.Errorf("bad scale: %v", err)
	}
	if p < 1 || p > 38 || s < 0 || s > int64(p) {
		return 0, 0, fmt.Errorf("precision/scale out of range: (%d,%d)", p, s)
	}
	return int32(p), int32(s), nil
}

// compatibleCategory reports whether a category explicitly supplied in a
// schema document is acceptable for a type token resolving to derived.
// Temporal tokens are one family: older schema files mark date32 columns
// with category "timestamp", which is accepted and normalized to date.
func compatibleCategory(supplied, derived Category) bool {
	if supplied == derived {
		return true
	}
	if supplied == CategoryTimestamp && derived == CategoryDate {
		return true
	}
	return false
}
