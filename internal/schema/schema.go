// Package schema defines the casting target: an ordered sequence of column
// declarations, each carrying a physical type token, an optional explicit
// type category and optional per-column casting overrides. It also owns the
// type-token vocabulary and the token -> category resolution the caster
// dispatches on.
package schema

import (
	"fmt"

	"github.com/ncruces/go-strftime"
)

// Field declares one column of the casting target.
type Field struct {
	// Name must be unique within the schema; matching against data columns
	// is a case-sensitive exact match.
	Name string `json:"name" yaml:"name"`

	// Type is the physical type token, e.g. "int32", "timestamp(ms)",
	// "decimal128(18,2)". See ParseType for the vocabulary.
	Type string `json:"type" yaml:"type"`

	// TypeCategory optionally names the coarse class. When present it must
	// agree with Type; when absent it is derived from Type.
	TypeCategory string `json:"type_category,omitempty" yaml:"type_category,omitempty"`

	// Nullable defaults to true. It only affects the in-memory string
	// representation selected by the caster's plain-string policy.
	Nullable *bool `json:"nullable,omitempty" yaml:"nullable,omitempty"`

	// DatetimeFormat overrides the default ISO-8601 parse layout for date
	// and timestamp columns. It is written in strftime syntax, e.g.
	// "%d/%m/%Y %H:%M".
	DatetimeFormat string `json:"datetime_format,omitempty" yaml:"datetime_format,omitempty"`

	// Truthy/Falsy extend the boolean token map for this column only.
	Truthy []string `json:"truthy,omitempty" yaml:"truthy,omitempty"`
	Falsy  []string `json:"falsy,omitempty" yaml:"falsy,omitempty"`

	// Per-column error-policy overrides ("raise" or "coerce"). These win
	// over both the caster options' per-column maps and its defaults.
	NumErrors  string `json:"num_errors,omitempty" yaml:"num_errors,omitempty"`
	BoolErrors string `json:"bool_errors,omitempty" yaml:"bool_errors,omitempty"`
	TimeErrors string `json:"time_errors,omitempty" yaml:"time_errors,omitempty"`
}

// IsNullable returns the effective nullability (default true).
func (f Field) IsNullable() bool {
	return f.Nullable == nil || *f.Nullable
}

// Layout resolves the field's parse layout: DatetimeFormat converted from
// strftime syntax to a Go reference layout, or "" when unset.
func (f Field) Layout() (string, error) {
	if f.DatetimeFormat == "" {
		return "", nil
	}
	layout, err := strftime.Layout(f.DatetimeFormat)
	if err != nil {
		return "", fmt.Errorf("column %q: datetime_format %q: %w", f.Name, f.DatetimeFormat, err)
	}
	return layout, nil
}

// Schema is the ordered casting target.
type Schema struct {
	Name    string  `json:"name,omitempty" yaml:"name,omitempty"`
	Columns []Field `json:"columns" yaml:"columns"`

	// Partitions lists columns that are carried by the storage layout
	// rather than the file payload. They pass through casting unchanged.
	Partitions []string `json:"partitions,omitempty" yaml:"partitions,omitempty"`

	// FileFormat is an optional hint ("csv", "jsonl", "parquet") used by
	// the dispatch layer when the path extension is not conclusive.
	FileFormat string `json:"file_format,omitempty" yaml:"file_format,omitempty"`
}

// Column returns the declaration for name, or false.
func (s *Schema) Column(name string) (Field, bool) {
	for _, f := range s.Columns {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// ColumnNames returns declared names in schema order.
func (s *Schema) ColumnNames() []string {
	out := make([]string, len(s.Columns))
	for i, f := range s.Columns {
		out[i] = f.Name
	}
	return out
}

// IsPartition reports whether name is a partition column.
func (s *Schema) IsPartition(name string) bool {
	for _, p := range s.Partitions {
		if p == name {
			return true
		}
	}
	return false
}

// Descriptor resolves the field's declared type and category into a
// TypeDesc. It returns a SchemaError when the token is unrecognized or the
// explicit category contradicts the token's family.
func (s *Schema) Descriptor(f Field) (TypeDesc, error) {
	desc, err := ParseType(f.Type)
	if err != nil {
		return desc, Errorf("column %q: %v", f.Name, err)
	}
	if f.TypeCategory != "" {
		sup, err := ParseCategory(f.TypeCategory)
		if err != nil {
			return desc, Errorf("column %q: %v", f.Name, err)
		}
		if !compatibleCategory(sup, desc.Category) {
			return desc, Errorf("column %q: type_category %q contradicts type %q (derived %q)",
				f.Name, f.TypeCategory, f.Type, desc.Category)
		}
	}
	return desc, nil
}

// Validate checks structural invariants: at least one column, unique names,
// resolvable type tokens and category declarations, partitions referring to
// declared columns, and parseable datetime formats.
func (s *Schema) Validate() error {
	if len(s.Columns) == 0 {
		return Errorf("schema has no columns")
	}
	seen := make(map[string]bool, len(s.Columns))
	for _, f := range s.Columns {
		if f.Name == "" {
			return Errorf("schema has a column with an empty name")
		}
		if seen[f.Name] {
			return Errorf("duplicate column name %q", f.Name)
		}
		seen[f.Name] = true
		if _, err := s.Descriptor(f); err != nil {
			return err
		}
		if _, err := f.Layout(); err != nil {
			return Errorf("%v", err)
		}
	}
	for _, p := range s.Partitions {
		if !seen[p] {
			return Errorf("partition %q is not a declared column", p)
		}
	}
	return nil
}
