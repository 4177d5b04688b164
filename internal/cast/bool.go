package cast

import (
	"strings"

	"tabio/internal/schema"
)

// coerceBool maps one column of raw values to booleans. Native booleans
// pass through; strings and numerics are stringified, trimmed and looked
// up in the token map. Unmapped tokens become null under PolicyCoerce; under
// PolicyRaise every offending value is collected first and a single error
// identifying the first row and the failure count is returned, matching the
// aggregate reporting of the schema-level checks.
func coerceBool(values []any, d schema.TypeDesc, m *BoolMap, pol ErrPolicy, col string) (Result, error) {
	out := make([]any, len(values))
	oc := outcome{n: len(values)}

	firstRow := -1
	var firstValue any
	failures := 0

	for i, v := range values {
		switch x := v.(type) {
		case nil:
			continue
		case bool:
			out[i] = x
			continue
		}

		s := strings.TrimSpace(stringify(values[i]))
		if s == "" {
			continue
		}
		if b, ok := m.Lookup(s); ok {
			out[i] = b
			continue
		}

		failures++
		if firstRow < 0 {
			firstRow = i
			firstValue = values[i]
		}
		oc.fail(i)
	}

	if failures > 0 && pol == PolicyRaise {
		err := valueError(col, d, firstRow, firstValue, "value matches neither truthy nor falsy token set")
		err.Failures = failures
		return Result{}, err
	}
	return Result{Values: out, OK: oc.marker()}, nil
}
