package table

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/golang-sql/civil"
	"github.com/shopspring/decimal"
	"github.com/zeebo/xxh3"
)

// Fingerprint computes a content hash over column names, order and values.
// Two tables that are equal column-for-column and row-for-row produce the
// same hash, so concatenated chunk output can be compared against a
// whole-table cast without a cell-by-cell walk.
func Fingerprint(t *Table) uint64 {
	h := xxh3.New()
	for _, c := range t.Cols {
		writeFrame(h, []byte(c.Name))
		for _, v := range c.Values {
			// A type tag per cell keeps the encoding injective: nil never
			// collides with a NUL-byte string, and int64(1) hashes apart
			// from "1" even though both render as "1".
			_, _ = h.Write([]byte{valueTag(v)})
			if v != nil {
				writeFrame(h, []byte(CanonicalValue(v)))
			}
		}
	}
	return h.Sum64()
}

// valueTag assigns one byte per value kind. Kinds that cast to the same
// storage type share a tag; the canonical text disambiguates within a kind.
func valueTag(v any) byte {
	switch v.(type) {
	case nil:
		return 0
	case bool:
		return 1
	case int, int8, int16, int32, int64:
		return 2
	case uint8, uint16, uint32, uint64:
		return 3
	case float32, float64:
		return 4
	case decimal.Decimal:
		return 5
	case string:
		return 6
	case []byte:
		return 7
	case civil.Date:
		return 8
	case civil.Time:
		return 9
	case civil.DateTime:
		return 10
	case time.Time:
		return 11
	default:
		return 255
	}
}

// writeFrame length-prefixes each fragment so that ("ab","c") and ("a","bc")
// hash differently.
func writeFrame(h *xxh3.Hasher, b []byte) {
	var n [8]byte
	ln := uint64(len(b))
	for i := 0; i < 8; i++ {
		n[i] = byte(ln >> (8 * i))
	}
	_, _ = h.Write(n[:])
	_, _ = h.Write(b)
}

// CanonicalValue renders a cell value into a stable textual form. Null is
// the empty marker "\x00"; every typed value has exactly one rendering.
func CanonicalValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "\x00"
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.FormatInt(int64(x), 10)
	case int8:
		return strconv.FormatInt(int64(x), 10)
	case int16:
		return strconv.FormatInt(int64(x), 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int64:
		return strconv.FormatInt(x, 10)
	case uint8:
		return strconv.FormatUint(uint64(x), 10)
	case uint16:
		return strconv.FormatUint(uint64(x), 10)
	case uint32:
		return strconv.FormatUint(uint64(x), 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case float32:
		return formatFloat(float64(x), 32)
	case float64:
		return formatFloat(x, 64)
	case decimal.Decimal:
		return x.String()
	case string:
		return x
	case []byte:
		return string(x)
	case civil.Date:
		return x.String()
	case civil.Time:
		return x.String()
	case civil.DateTime:
		return x.String()
	case time.Time:
		return x.UTC().Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(x)
	}
}

func formatFloat(f float64, bits int) string {
	if math.IsNaN(f) {
		return "NaN"
	}
	return strconv.FormatFloat(f, 'g', -1, bits)
}
