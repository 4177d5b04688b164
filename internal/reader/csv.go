package reader

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"tabio/pkg/table"
)

// utf8BOM is stripped from the first header cell if present.
const utf8BOM = "\ufeff"

// CSVOptions configures the CSV decoder. All fields are optional; sensible
// defaults are applied when a field is zero.
type CSVOptions struct {
	// Comma specifies the field delimiter. When zero, ',' is used.
	Comma rune

	// NoHeader indicates the first row is data; columns are then named
	// col_0, col_1, ...
	NoHeader bool

	// TrimSpace trims leading/trailing ASCII spaces from each field value.
	TrimSpace bool

	// HeaderMap maps source header names to canonical column names,
	// applied after normalization.
	HeaderMap map[string]string

	// NormalizeHeaders lowercases headers and replaces spaces with
	// underscores.
	NormalizeHeaders bool

	// StripDiacritics removes combining marks from headers (e.g. "PČV" ->
	// "PCV"). Only applies when NormalizeHeaders is set.
	StripDiacritics bool

	// LazyQuotes relaxes quote handling for known-messy inputs.
	LazyQuotes bool
}

// CSVReader decodes CSV input into raw tables. Every cell is read as a
// string; empty cells become null. Safe to reuse across inputs, but not
// concurrency-safe.
type CSVReader struct{ opt CSVOptions }

// NewCSV constructs a CSVReader with the provided options.
func NewCSV(opt CSVOptions) *CSVReader { return &CSVReader{opt: opt} }

// Read consumes all of r into a single raw table.
func (p *CSVReader) Read(r io.Reader) (*table.Table, error) {
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
// one chunk with everything). All chunks share the header's column set and
// order. The sequence stops at the first read error.
func (p *CSVReader) ReadChunks(r io.Reader, rows int) Chunks {
	return func(yield func(*table.Table, error) bool) {
		cr := csv.NewReader(r)
		if p.opt.Comma != 0 {
			cr.Comma = p.opt.Comma
		}
		if p.opt.LazyQuotes {
			cr.LazyQuotes = true
		}
		cr.FieldsPerRecord = 0 // enforce header width

		var headers []string
		if !p.opt.NoHeader {
			h, err := cr.Read()
			if err == io.EOF {
				yield(table.New(0), nil)
				return
			}
			if err != nil {
				yield(nil, fmt.Errorf("read csv header: %w", err))
				return
			}
			headers = p.normalizeHeaders(h)
		}

		cols := newColumnBuf(headers)
		emitted := 0
		flush := func(final bool) bool {
			// Emit an empty table only when nothing was emitted at all, so
			// a header-only file still yields its column set.
			if cols.rows == 0 && (!final || emitted > 0) {
				return true
			}
			emitted++
			return yield(cols.take(), nil)
		}

		for {
			row, err := cr.Read()
			if err == io.EOF {
				break
			}
			if err != nil {
				yield(nil, fmt.Errorf("read csv row: %w", err))
				return
			}
			if headers == nil {
				headers = syntheticHeaders(len(row))
				cols = newColumnBuf(headers)
			}
			for i, val := range row {
				if p.opt.TrimSpace {
					val = strings.TrimSpace(val)
				}
				cols.add(i, emptyToNil(val))
			}
			cols.rows++
			if rows > 0 && cols.rows >= rows {
				if !flush(false) {
					return
				}
			}
		}
		flush(true)
	}
}

// columnBuf accumulates cell values column-wise between chunk flushes.
type columnBuf struct {
	names  []string
	values [][]any
	rows   int
}

func newColumnBuf(names []string) *columnBuf {
	return &columnBuf{names: names, values: make([][]any, len(names))}
}

func (b *columnBuf) add(i int, v any) {
	if i < len(b.values) {
		b.values[i] = append(b.values[i], v)
	}
}

func (b *columnBuf) take() *table.Table {
	t := table.New(len(b.names))
	for i, name := range b.names {
		t.AddColumn(name, b.values[i])
		b.values[i] = nil
	}
	b.rows = 0
	return t
}

func syntheticHeaders(n int) []string {
	h := make([]string, n)
	for i := range h {
		h[i] = fmt.Sprintf("col_%d", i)
	}
	return h
}

// emptyToNil converts an empty string to nil; all other values pass as-is.
func emptyToNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// normalizeHeaders produces canonical header names: BOM strip on the first
// cell, optional diacritic removal and lowercase/underscore normalization,
// then the explicit HeaderMap.
func (p *CSVReader) normalizeHeaders(h []string) []string {
	res := make([]string, len(h))
	for i, col := range h {
		c := strings.TrimSpace(col)
		if i == 0 {
			c = strings.TrimPrefix(c, utf8BOM)
		}
		if p.opt.NormalizeHeaders {
			if p.opt.StripDiacritics {
				c = stripDiacritics(c)
			}
			c = strings.ReplaceAll(strings.ToLower(c), " ", "_")
		}
		if p.opt.HeaderMap != nil {
			if m, ok := p.opt.HeaderMap[c]; ok && m != "" {
				c = m
			}
		}
		res[i] = c
	}
	return res
}

// stripDiacritics decomposes to NFD, drops combining marks and recomposes.
func stripDiacritics(s string) string {
	t := transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		norm.NFC,
	)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
