// Package writer implements the format encoders that consume typed tables:
// CSV, JSON-lines and Parquet. Encoders never cast; they render whatever
// typed values the caster produced, using one canonical textual form per
// temporal type so that a write/read/cast round trip is lossless.
package writer

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/golang-sql/civil"
	"github.com/shopspring/decimal"
)

const (
	dateLayout      = "2006-01-02"
	timestampLayout = "2006-01-02 15:04:05"
)

// renderText produces the textual cell form used by the CSV encoder.
// Null handling (empty cell) is the caller's concern.
func renderText(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case civil.Date:
		return x.String()
	case civil.Time:
		return x.String()
	case civil.DateTime:
		return renderDateTime(x)
	case time.Time:
		return x.UTC().Format(timestampLayout)
	case decimal.Decimal:
		return x.String()
	case float32:
		return formatFloat(float64(x), 32)
	case float64:
		return formatFloat(x, 64)
	case []byte:
		return string(x)
	case int8:
		return strconv.FormatInt(int64(x), 10)
	case int16:
		return strconv.FormatInt(int64(x), 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int64:
		return strconv.FormatInt(x, 10)
	case int:
		return strconv.FormatInt(int64(x), 10)
	case uint8:
		return strconv.FormatUint(uint64(x), 10)
	case uint16:
		return strconv.FormatUint(uint64(x), 10)
	case uint32:
		return strconv.FormatUint(uint64(x), 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	default:
		return fmt.Sprint(x)
	}
}

// renderDateTime writes "YYYY-MM-DD HH:MM:SS[.fffffffff]" - the same shape
// the caster parses first, with a fractional part only when present.
func renderDateTime(dt civil.DateTime) string {
	t := dt.In(time.UTC)
	if t.Nanosecond() == 0 {
		return t.Format(timestampLayout)
	}
	return t.Format("2006-01-02 15:04:05.999999999")
}

func formatFloat(f float64, bits int) string {
	if math.IsNaN(f) {
		return "NaN"
	}
	if math.IsInf(f, 1) {
		return "Inf"
	}
	if math.IsInf(f, -1) {
		return "-Inf"
	}
	return strconv.FormatFloat(f, 'g', -1, bits)
}

// renderJSON produces the JSON value for a cell: numbers stay numeric,
// temporals and decimals become canonical strings.
func renderJSON(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case bool, string, int8, int16, int32, int64, int,
		uint8, uint16, uint32, uint64:
		return x
	case float32:
		if math.IsNaN(float64(x)) || math.IsInf(float64(x), 0) {
			return formatFloat(float64(x), 32)
		}
		return x
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return formatFloat(x, 64)
		}
		return x
	case decimal.Decimal:
		return json.Number(x.String())
	case civil.Date:
		return x.String()
	case civil.Time:
		return x.String()
	case civil.DateTime:
		return renderDateTime(x)
	case time.Time:
		return x.UTC().Format(timestampLayout)
	case []byte:
		return string(x)
	default:
		return fmt.Sprint(x)
	}
}
