// Package cast implements the type-casting engine: it takes a raw-parsed
// table (every column read permissively, typically as strings) and a target
// schema, and coerces every column to the schema's declared type. Null
// handling, boolean token maps, integer/float widths, date and timestamp
// resolution and the policies for unmappable values are all driven by an
// immutable Options value constructed once per call.
package cast

import (
	"strings"

	"tabio/internal/schema"
)

// ErrPolicy selects what a coercer does with a value it cannot map.
type ErrPolicy string

const (
	// PolicyDefault defers to the per-category default: numbers and
	// temporals raise, booleans coerce to null.
	PolicyDefault ErrPolicy = ""

	// PolicyRaise aborts the column cast on the first failing value.
	PolicyRaise ErrPolicy = "raise"

	// PolicyCoerce nulls out failing values and records them in the
	// per-row outcome marker.
	PolicyCoerce ErrPolicy = "coerce"
)

// TimeMode selects the in-memory representation for date and timestamp
// columns.
type TimeMode int

const (
	// TimeObject (default) stores civil.Date / civil.DateTime values. Any
	// value in years 1-9999 is representable and round-trips exactly.
	TimeObject TimeMode = iota

	// TimeEpochNanos stores int64 epoch nanoseconds. Values outside the
	// representable range (roughly years 1677-2262) raise; they are never
	// silently wrapped.
	TimeEpochNanos

	// TimePeriod stores int64 epoch ticks at the column's declared unit
	// (days for date columns).
	TimePeriod
)

// BoolMap is the bidirectional token set used to interpret textual boolean
// columns. Matching is case-insensitive unless CaseSensitive is set; values
// are trimmed before lookup.
type BoolMap struct {
	Truthy        []string
	Falsy         []string
	CaseSensitive bool
}

// DefaultBoolMap mirrors the conventional truthy/falsy vocabulary:
// yes/no, true/false, t/f, 1/0 and the float renderings 1.0/0.0.
func DefaultBoolMap() *BoolMap {
	return &BoolMap{
		Truthy: []string{"yes", "true", "t", "1", "1.0"},
		Falsy:  []string{"no", "false", "f", "0", "0.0"},
	}
}

// Lookup maps a trimmed token to (value, found).
func (m *BoolMap) Lookup(s string) (bool, bool) {
	cmp := func(a, b string) bool {
		if m.CaseSensitive {
			return a == b
		}
		return strings.EqualFold(a, b)
	}
	for _, t := range m.Truthy {
		if cmp(s, t) {
			return true, true
		}
	}
	for _, f := range m.Falsy {
		if cmp(s, f) {
			return false, true
		}
	}
	return false, false
}

// extend returns a copy of m with per-column truthy/falsy tokens appended.
func (m *BoolMap) extend(truthy, falsy []string) *BoolMap {
	if len(truthy) == 0 && len(falsy) == 0 {
		return m
	}
	out := &BoolMap{CaseSensitive: m.CaseSensitive}
	out.Truthy = append(append([]string{}, m.Truthy...), truthy...)
	out.Falsy = append(append([]string{}, m.Falsy...), falsy...)
	return out
}

// Options is the cast policy for one invocation. The zero value is a usable
// default: full schema expected, unexpected columns raise, numbers and
// temporals raise on bad values, booleans coerce to null, temporal values
// are stored as civil objects.
type Options struct {
	// DropUnexpectedColumns silently removes data columns absent from the
	// schema. When false their names are aggregated into one SchemaError.
	DropUnexpectedColumns bool

	// IgnoreColumns are excluded from casting but passed through
	// unchanged. Columns the schema lists keep schema order; others keep
	// their original relative position after the schema block.
	IgnoreColumns []string

	// DropColumns are removed from the output entirely.
	DropColumns []string

	// PartialSchema permits schema columns that are missing from the data;
	// they are simply absent from the output. When false missing columns
	// raise a SchemaError listing every name.
	PartialSchema bool

	// BoolMap overrides the default truthy/falsy token sets.
	BoolMap *BoolMap

	// Default policies per concern, overridable per column via the maps
	// below, which are in turn overridden by field-level declarations.
	NumErrors  ErrPolicy
	BoolErrors ErrPolicy
	TimeErrors ErrPolicy

	NumErrorMap  map[string]ErrPolicy
	BoolErrorMap map[string]ErrPolicy
	TimeErrorMap map[string]ErrPolicy

	// DateMode and TimeMode select the in-memory temporal representation
	// for date and timestamp columns respectively.
	DateMode TimeMode
	TimeMode TimeMode

	// PlainStrings renders string-column nulls as "" instead of keeping
	// the null marker. In-memory representation only; it does not change
	// cast semantics for any other category.
	PlainStrings bool
}

func (o Options) numPolicy(f schema.Field) ErrPolicy {
	return pickPolicy(f.NumErrors, o.NumErrorMap, f.Name, o.NumErrors, PolicyRaise)
}

func (o Options) boolPolicy(f schema.Field) ErrPolicy {
	return pickPolicy(f.BoolErrors, o.BoolErrorMap, f.Name, o.BoolErrors, PolicyCoerce)
}

func (o Options) timePolicy(f schema.Field) ErrPolicy {
	return pickPolicy(f.TimeErrors, o.TimeErrorMap, f.Name, o.TimeErrors, PolicyRaise)
}

func pickPolicy(fieldLevel string, m map[string]ErrPolicy, column string, def ErrPolicy, categoryDefault ErrPolicy) ErrPolicy {
	if p := ErrPolicy(fieldLevel); p == PolicyRaise || p == PolicyCoerce {
		return p
	}
	if m != nil {
		if p, ok := m[column]; ok && (p == PolicyRaise || p == PolicyCoerce) {
			return p
		}
	}
	if def == PolicyRaise || def == PolicyCoerce {
		return def
	}
	return categoryDefault
}

func (o Options) boolMap(f schema.Field) *BoolMap {
	m := o.BoolMap
	if m == nil {
		m = DefaultBoolMap()
	}
	return m.extend(f.Truthy, f.Falsy)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
