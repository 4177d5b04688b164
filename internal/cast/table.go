package cast

import (
	"tabio/internal/schema"
	"tabio/pkg/table"
)

// Table casts every column of t against s under opts, returning a new table
// whose casted columns follow schema order, followed by any retained
// pass-through columns in their original relative order. The source table
// is never mutated; the operation either fully succeeds or returns an
// error - a partially cast table is never produced.
func Table(t *table.Table, s *schema.Schema, opts Options) (*table.Table, error) {
	out, _, err := TableOutcomes(t, s, opts)
	return out, err
}

// TableOutcomes is Table plus the per-column outcome markers for columns
// cast under a coerce policy (see Result.OK). Keys are column names; only
// columns with at least one nulled-out value appear.
func TableOutcomes(t *table.Table, s *schema.Schema, opts Options) (*table.Table, map[string][]bool, error) {
	if err := t.Validate(); err != nil {
		return nil, nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, nil, err
	}

	// Partition the data's columns against the schema.
	inSchema := make(map[string]bool, len(s.Columns))
	for _, f := range s.Columns {
		inSchema[f.Name] = true
	}

	var unexpected []string
	for _, c := range t.Cols {
		if !inSchema[c.Name] && !contains(opts.IgnoreColumns, c.Name) && !contains(opts.DropColumns, c.Name) {
			unexpected = append(unexpected, c.Name)
		}
	}
	if len(unexpected) > 0 && !opts.DropUnexpectedColumns {
		return nil, nil, &schema.SchemaError{Reason: "data columns not declared in schema", Columns: unexpected}
	}

	var missing []string
	for _, f := range s.Columns {
		if contains(opts.DropColumns, f.Name) {
			continue
		}
		if t.Index(f.Name) < 0 {
			missing = append(missing, f.Name)
		}
	}
	if len(missing) > 0 && !opts.PartialSchema {
		return nil, nil, &schema.SchemaError{Reason: "schema columns missing from data", Columns: missing}
	}

	out := table.New(len(s.Columns))
	outcomes := make(map[string][]bool)

	// Casted (and schema-listed pass-through) columns in schema order.
	for _, f := range s.Columns {
		if contains(opts.DropColumns, f.Name) {
			continue
		}
		idx := t.Index(f.Name)
		if idx < 0 {
			continue // PartialSchema: absent from output
		}
		col := t.Cols[idx]

		if contains(opts.IgnoreColumns, f.Name) || s.IsPartition(f.Name) {
			out.Cols = append(out.Cols, table.CloneColumn(col))
			continue
		}

		d, err := s.Descriptor(f)
		if err != nil {
			return nil, nil, err
		}
		res, err := Column(col, f, d, opts)
		if err != nil {
			return nil, nil, err
		}
		out.AddColumn(f.Name, res.Values)
		if res.OK != nil {
			outcomes[f.Name] = res.OK
		}
	}

	// Retained pass-through columns the schema does not list, in their
	// original relative order.
	for _, c := range t.Cols {
		if inSchema[c.Name] || contains(opts.DropColumns, c.Name) {
			continue
		}
		if contains(opts.IgnoreColumns, c.Name) {
			out.Cols = append(out.Cols, table.CloneColumn(c))
		}
		// Unexpected columns reaching this point are dropped by policy.
	}

	if len(outcomes) == 0 {
		outcomes = nil
	}
	return out, outcomes, nil
}
