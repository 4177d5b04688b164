package cast

import (
	"tabio/internal/schema"
	"tabio/pkg/table"
)

// Column casts a single column to its field declaration. The switch over
// the category enum is exhaustive: every category has a defined coercion
// and adding a category is a deliberate change here.
//
// The returned Result carries a per-row outcome marker for the categories
// that support null-out coercion (boolean, integer, float); for the others
// the marker is nil. Failures under a raise policy return a *Error carrying
// the column name, row index and offending raw value.
func Column(c table.Column, f schema.Field, d schema.TypeDesc, opts Options) (Result, error) {
	switch d.Category {
	case schema.CategoryBoolean:
		return coerceBool(c.Values, d, opts.boolMap(f), opts.boolPolicy(f), c.Name)

	case schema.CategoryInteger:
		return coerceInt(c.Values, d, opts.numPolicy(f), c.Name)

	case schema.CategoryFloat:
		return coerceFloat(c.Values, d, opts.numPolicy(f), c.Name)

	case schema.CategoryString:
		return coerceString(c.Values, opts.PlainStrings && !f.IsNullable())

	case schema.CategoryDate:
		return coerceDate(c.Values, d, f, opts.DateMode, opts.timePolicy(f), c.Name)

	case schema.CategoryTimestamp:
		return coerceTimestamp(c.Values, d, f, opts.TimeMode, opts.timePolicy(f), c.Name)

	case schema.CategoryBinary:
		return coerceBinary(c.Values, c.Name)

	default:
		// Nested/complex declared types: recognized by the descriptor,
		// never castable, and no policy suppresses the failure.
		return Result{}, unsupportedError(c.Name, d)
	}
}
