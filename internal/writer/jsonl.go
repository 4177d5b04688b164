package writer

import (
	"encoding/json"
	"fmt"
	"io"
	"iter"

	"tabio/pkg/table"
)

// Chunks is a lazy sequence of typed table chunks, written in order.
type Chunks = iter.Seq2[*table.Table, error]

// JSONLWriter encodes typed tables as newline-delimited JSON objects, one
// per row. Nulls become JSON null; temporals and decimals are rendered in
// their canonical textual form.
type JSONLWriter struct{}

// NewJSONL constructs a JSONLWriter.
func NewJSONL() *JSONLWriter { return &JSONLWriter{} }

// Write encodes t onto w.
func (e *JSONLWriter) Write(w io.Writer, t *table.Table) error {
	enc := json.NewEncoder(w)
	n := t.NumRows()
	for i := 0; i < n; i++ {
		obj := make(map[string]any, len(t.Cols))
		for _, c := range t.Cols {
			obj[c.Name] = renderJSON(c.Values[i])
		}
		if err := enc.Encode(obj); err != nil {
			return fmt.Errorf("write json line %d: %w", i, err)
		}
	}
	return nil
}

// WriteChunks appends each chunk in order.
func (e *JSONLWriter) WriteChunks(w io.Writer, chunks Chunks) error {
	for t, err := range chunks {
		if err != nil {
			return err
		}
		if err := e.Write(w, t); err != nil {
			return err
		}
	}
	return nil
}
