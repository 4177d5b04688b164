package writer

import (
	"encoding/csv"
	"fmt"
	"io"

	"tabio/pkg/table"
)

// CSVOptions configures the CSV encoder.
type CSVOptions struct {
	// Comma specifies the field delimiter. When zero, ',' is used.
	Comma rune

	// NoHeader suppresses the header row.
	NoHeader bool
}

// CSVWriter encodes typed tables as CSV. Null cells are written empty.
type CSVWriter struct{ opt CSVOptions }

// NewCSV constructs a CSVWriter with the provided options.
func NewCSV(opt CSVOptions) *CSVWriter { return &CSVWriter{opt: opt} }

// Write encodes t onto w, header first unless suppressed.
func (e *CSVWriter) Write(w io.Writer, t *table.Table) error {
	cw := csv.NewWriter(w)
	if e.opt.Comma != 0 {
		cw.Comma = e.opt.Comma
	}
	if !e.opt.NoHeader {
		if err := cw.Write(t.Names()); err != nil {
			return fmt.Errorf("write csv header: %w", err)
		}
	}
	if err := e.writeRows(cw, t); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

// WriteChunks appends each chunk in order, writing the header once from the
// first chunk.
func (e *CSVWriter) WriteChunks(w io.Writer, chunks Chunks) error {
	cw := csv.NewWriter(w)
	if e.opt.Comma != 0 {
		cw.Comma = e.opt.Comma
	}
	first := true
	for t, err := range chunks {
		if err != nil {
			return err
		}
		if first && !e.opt.NoHeader {
			if err := cw.Write(t.Names()); err != nil {
				return fmt.Errorf("write csv header: %w", err)
			}
		}
		first = false
		if err := e.writeRows(cw, t); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func (e *CSVWriter) writeRows(cw *csv.Writer, t *table.Table) error {
	n := t.NumRows()
	row := make([]string, len(t.Cols))
	for i := 0; i < n; i++ {
		for j, c := range t.Cols {
			if c.Values[i] == nil {
				row[j] = ""
			} else {
				row[j] = renderText(c.Values[i])
			}
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %d: %w", i, err)
		}
	}
	return nil
}
