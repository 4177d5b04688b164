package cast

import (
	"fmt"

	"tabio/internal/schema"
)

// Error reports a value (or whole-column) coercion failure. It carries
// enough context to be actionable: column name, row index, the offending
// raw value and the declared target type.
type Error struct {
	Column   string
	Type     string
	Category schema.Category

	// Row is the zero-based index of the first offending value, or -1 when
	// the failure is column-level.
	Row int

	// Value is the first offending raw value.
	Value any

	// Failures counts offending values when the coercer collects all of
	// them before raising (boolean mapping does this).
	Failures int

	// Reason describes what went wrong ("unparseable", "out of range",
	// "unsupported type", ...).
	Reason string
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("cast column %q to %s (%s): %s", e.Column, e.Type, e.Category, e.Reason)
	if e.Row >= 0 {
		msg += fmt.Sprintf(" (row %d, value %v)", e.Row, e.Value)
	}
	if e.Failures > 1 {
		msg += fmt.Sprintf(" (%d values failed)", e.Failures)
	}
	return msg
}

func valueError(col string, d schema.TypeDesc, row int, value any, reason string) *Error {
	return &Error{
		Column:   col,
		Type:     d.Token,
		Category: d.Category,
		Row:      row,
		Value:    value,
		Failures: 1,
		Reason:   reason,
	}
}

// unsupportedError is raised for nested/complex declared types. No policy
// suppresses it: there is no null-safe coercion for these categories.
func unsupportedError(col string, d schema.TypeDesc) *Error {
	return &Error{
		Column:   col,
		Type:     d.Token,
		Category: d.Category,
		Row:      -1,
		Reason:   "unsupported type: nested and complex types are not castable",
	}
}
