package cast

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"tabio/internal/schema"
)

// coerceInt parses one column into the declared integer width. Empty and
// null tokens map to null; decimal strings like "3.0" are accepted when
// they are exactly integral; anything out of range for the declared width
// is a failure, never a silent truncation. Under PolicyCoerce failures
// null out and are flagged in the result's outcome marker.
func coerceInt(values []any, d schema.TypeDesc, pol ErrPolicy, col string) (Result, error) {
	out := make([]any, len(values))
	oc := outcome{n: len(values)}

	for i, v := range values {
		if v == nil {
			continue
		}
		u, reason, null := intValue(v, d)
		if null {
			continue
		}
		if reason != "" {
			if pol == PolicyRaise {
				return Result{}, valueError(col, d, i, v, reason)
			}
			oc.fail(i)
			continue
		}
		out[i] = u
	}
	return Result{Values: out, OK: oc.marker()}, nil
}

// intValue converts a single raw value. It returns the sized value, a
// failure reason ("" on success), and whether the value is a null token.
func intValue(v any, d schema.TypeDesc) (any, string, bool) {
	switch x := v.(type) {
	case int, int8, int16, int32, int64:
		return sizeSigned(asInt64(x), d)
	case uint, uint8, uint16, uint32, uint64:
		u := asUint64(x)
		if !d.Unsigned && u > math.MaxInt64 {
			return nil, "out of range for " + d.Token, false
		}
		if d.Unsigned {
			return sizeUnsigned(u, d)
		}
		return sizeSigned(int64(u), d)
	case float32:
		return intFromFloat(float64(x), d)
	case float64:
		return intFromFloat(x, d)
	case bool:
		return nil, "boolean value in integer column", false
	}

	s := strings.TrimSpace(stringify(v))
	if s == "" {
		return nil, "", true
	}
	if d.Unsigned {
		if u, err := strconv.ParseUint(s, 10, parseBits(d)); err == nil {
			return sizeUnsigned(u, d)
		}
	} else {
		if n, err := strconv.ParseInt(s, 10, parseBits(d)); err == nil {
			return sizeSigned(n, d)
		}
	}
	// Integral floats ("3.0", "1e3") are accepted; check range explicitly
	// since the float path does not carry bit-size information.
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, "unparseable integer", false
	}
	return intFromFloat(f, d)
}

func intFromFloat(f float64, d schema.TypeDesc) (any, string, bool) {
	if math.IsNaN(f) {
		return nil, "", true
	}
	if f != math.Trunc(f) || math.IsInf(f, 0) {
		return nil, "not an integral value", false
	}
	// Upper bounds are exclusive: float64(MaxInt64) rounds up to 2^63, so
	// f == 2^63 would pass a > check and wrap in the int64 conversion.
	// Same at 2^64 on the unsigned side.
	if d.Unsigned {
		if f < 0 || f >= 18446744073709551616.0 {
			return nil, "out of range for " + d.Token, false
		}
		return sizeUnsigned(uint64(f), d)
	}
	if f < -9223372036854775808.0 || f >= 9223372036854775808.0 {
		return nil, "out of range for " + d.Token, false
	}
	return sizeSigned(int64(f), d)
}

func sizeSigned(n int64, d schema.TypeDesc) (any, string, bool) {
	switch parseBits(d) {
	case 8:
		if n < math.MinInt8 || n > math.MaxInt8 {
			return nil, "out of range for " + d.Token, false
		}
		return int8(n), "", false
	case 16:
		if n < math.MinInt16 || n > math.MaxInt16 {
			return nil, "out of range for " + d.Token, false
		}
		return int16(n), "", false
	case 32:
		if n < math.MinInt32 || n > math.MaxInt32 {
			return nil, "out of range for " + d.Token, false
		}
		return int32(n), "", false
	default:
		return n, "", false
	}
}

func sizeUnsigned(u uint64, d schema.TypeDesc) (any, string, bool) {
	switch parseBits(d) {
	case 8:
		if u > math.MaxUint8 {
			return nil, "out of range for " + d.Token, false
		}
		return uint8(u), "", false
	case 16:
		if u > math.MaxUint16 {
			return nil, "out of range for " + d.Token, false
		}
		return uint16(u), "", false
	case 32:
		if u > math.MaxUint32 {
			return nil, "out of range for " + d.Token, false
		}
		return uint32(u), "", false
	default:
		return u, "", false
	}
}

func asInt64(v any) int64 {
	switch x := v.(type) {
	case int:
		return int64(x)
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case int64:
		return x
	}
	return 0
}

func asUint64(v any) uint64 {
	switch x := v.(type) {
	case uint:
		return uint64(x)
	case uint8:
		return uint64(x)
	case uint16:
		return uint64(x)
	case uint32:
		return uint64(x)
	case uint64:
		return x
	}
	return 0
}

// coerceFloat parses one column into float32/float64. "NaN", "inf" and
// their variants map to the IEEE specials (strconv accepts them directly).
// float16 declarations are stored as float32.
func coerceFloat(values []any, d schema.TypeDesc, pol ErrPolicy, col string) (Result, error) {
	if d.Decimal {
		return coerceDecimal(values, d, pol, col)
	}

	out := make([]any, len(values))
	oc := outcome{n: len(values)}

	for i, v := range values {
		if v == nil {
			continue
		}
		var f float64
		var perr error
		switch x := v.(type) {
		case float32:
			f = float64(x)
		case float64:
			f = x
		case int, int8, int16, int32, int64:
			f = float64(asInt64(x))
		case uint, uint8, uint16, uint32, uint64:
			f = float64(asUint64(x))
		case bool:
			perr = strconv.ErrSyntax
		default:
			s := strings.TrimSpace(stringify(v))
			if s == "" {
				continue
			}
			f, perr = strconv.ParseFloat(s, 64)
		}
		if perr != nil {
			if pol == PolicyRaise {
				return Result{}, valueError(col, d, i, v, "unparseable float")
			}
			oc.fail(i)
			continue
		}
		if d.Bits == 32 {
			out[i] = float32(f)
		} else {
			out[i] = f
		}
	}
	return Result{Values: out, OK: oc.marker()}, nil
}

// coerceDecimal parses decimal128(p,s) columns into decimal.Decimal values,
// rounding to the declared scale. A value whose integral part needs more
// than precision-scale digits is out of range for the declared type and is
// treated like any other numeric failure.
func coerceDecimal(values []any, d schema.TypeDesc, pol ErrPolicy, col string) (Result, error) {
	out := make([]any, len(values))
	oc := outcome{n: len(values)}

	maxIntDigits := d.Precision - d.Scale

	for i, v := range values {
		if v == nil {
			continue
		}
		var dec decimal.Decimal
		var perr error
		switch x := v.(type) {
		case decimal.Decimal:
			dec = x
		case float32:
			dec = decimal.NewFromFloat32(x)
		case float64:
			dec = decimal.NewFromFloat(x)
		case int, int8, int16, int32, int64:
			dec = decimal.NewFromInt(asInt64(x))
		case json.Number:
			dec, perr = decimal.NewFromString(x.String())
		default:
			s := strings.TrimSpace(stringify(v))
			if s == "" {
				continue
			}
			dec, perr = decimal.NewFromString(s)
		}
		if perr != nil {
			if pol == PolicyRaise {
				return Result{}, valueError(col, d, i, v, "unparseable decimal")
			}
			oc.fail(i)
			continue
		}

		dec = dec.Round(d.Scale)
		if intDigits(dec) > maxIntDigits {
			if pol == PolicyRaise {
				return Result{}, valueError(col, d, i, v, "out of range for "+d.Token)
			}
			oc.fail(i)
			continue
		}
		out[i] = dec
	}
	return Result{Values: out, OK: oc.marker()}, nil
}

// intDigits counts digits left of the decimal point.
func intDigits(d decimal.Decimal) int32 {
	s := d.Abs().Truncate(0).String()
	if s == "0" {
		return 0
	}
	return int32(len(s))
}
