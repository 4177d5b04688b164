package reader

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"tabio/pkg/table"
)

// JSONLOptions configures the JSON-lines decoder.
type JSONLOptions struct {
	// Columns fixes the column set and order. When empty, the column set
	// is the union of keys in order of first appearance; rows missing a
	// key yield null. Chunked reads with an unfixed column set derive the
	// set per chunk, so callers casting chunks against a schema should
	// either fix Columns or rely on the caster's column reconciliation.
	Columns []string
}

// JSONLReader decodes newline-delimited JSON objects into raw tables.
// Scalars keep their JSON-native representation: strings, bools and
// json.Number (UseNumber is always on so the caster decides numeric
// typing). Non-object top-level values are rejected.
type JSONLReader struct{ opt JSONLOptions }

// NewJSONL constructs a JSONLReader with the provided options.
func NewJSONL(opt JSONLOptions) *JSONLReader { return &JSONLReader{opt: opt} }

// Read consumes all of r into a single raw table.
func (p *JSONLReader) Read(r io.Reader) (*table.Table, error) {
	var out *table.Table
	for chunk, err := range p.ReadChunks(r, 0) {
		if err != nil {
			return nil, err
		}
		out = chunk
	}
	if out == nil {
		out = table.New(0)
	}
	return out, nil
}

// ReadChunks yields raw tables of at most rows rows each (rows <= 0 means
// one chunk with everything).
func (p *JSONLReader) ReadChunks(r io.Reader, rows int) Chunks {
	return func(yield func(*table.Table, error) bool) {
		dec := json.NewDecoder(r)
		dec.UseNumber()

		var recs []map[string]any
		order := append([]string{}, p.opt.Columns...)
		seen := make(map[string]bool, len(order))
		for _, n := range order {
			seen[n] = true
		}
		fixed := len(p.opt.Columns) > 0

		flush := func(final bool) bool {
			if len(recs) == 0 && !final {
				return true
			}
			t := assemble(recs, order)
			recs = recs[:0]
			if !fixed {
				order = order[:0]
				clear(seen)
			}
			return yield(t, nil)
		}

		emitted := false
		for line := 1; ; line++ {
			var raw map[string]any
			err := dec.Decode(&raw)
			if err == io.EOF {
				break
			}
			if err != nil {
				yield(nil, fmt.Errorf("decode json line %d: %w", line, err))
				return
			}
			if !fixed {
				// Track the column set as keys appear. Go maps do not keep
				// document order, so new keys within one record are added
				// in sorted order to stay deterministic.
				var fresh []string
				for k := range raw {
					if !seen[k] {
						seen[k] = true
						fresh = append(fresh, k)
					}
				}
				if len(fresh) > 1 {
					sort.Strings(fresh)
				}
				order = append(order, fresh...)
			}
			recs = append(recs, raw)
			if rows > 0 && len(recs) >= rows {
				emitted = true
				if !flush(false) {
					return
				}
			}
		}
		if len(recs) > 0 || !emitted {
			flush(true)
		}
	}
}

func assemble(recs []map[string]any, order []string) *table.Table {
	t := table.New(len(order))
	for _, name := range order {
		vals := make([]any, len(recs))
		for i, r := range recs {
			if v, ok := r[name]; ok {
				vals[i] = v
			}
		}
		t.AddColumn(name, vals)
	}
	return t
}
