package cast

import (
	"encoding/json"
	"log"

	"tabio/internal/schema"
	"tabio/pkg/table"
)

// stringify renders any raw value into its textual form. It reuses the
// canonical rendering so that, e.g., a float 1.0 decoded natively from
// parquet maps through the boolean token "1".
func stringify(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case json.Number:
		return x.String()
	case []byte:
		return string(x)
	default:
		return table.CanonicalValue(v)
	}
}

// coerceString stringifies every value. Nulls remain null unless the
// plain-string representation is selected, in which case they become "".
func coerceString(values []any, plain bool) (Result, error) {
	out := make([]any, len(values))
	for i, v := range values {
		if v == nil {
			if plain {
				out[i] = ""
			}
			continue
		}
		out[i] = stringify(v)
	}
	return Result{Values: out}, nil
}

// coerceBinary passes values through as []byte and records a warning: the
// engine does not interpret binary payloads, it only carries them.
func coerceBinary(values []any, col string) (Result, error) {
	out := make([]any, len(values))
	converted := 0
	for i, v := range values {
		switch x := v.(type) {
		case nil:
		case []byte:
			out[i] = x
		case string:
			out[i] = []byte(x)
		default:
			out[i] = []byte(stringify(v))
			converted++
		}
	}
	if converted > 0 {
		log.Printf("column %q: %d non-binary values stringified during binary pass-through", col, converted)
	} else {
		log.Printf("column %q: binary column passed through uncast", col)
	}
	return Result{Values: out}, nil
}

// parseBits narrows strconv bit sizes for integer parsing; shared by the
// numeric coercers.
func parseBits(d schema.TypeDesc) int {
	if d.Bits == 0 {
		return 64
	}
	return d.Bits
}
