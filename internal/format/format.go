// Package format ties the file formats together: it infers a format from a
// path or a schema hint and dispatches reads and writes to the matching
// codec, running every read through the casting engine so the returned
// table conforms to the schema regardless of the source format.
package format

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"tabio/internal/schema"
)

// ErrUnknownFormat marks a format name or path that resolves to no
// supported format. Callers match it with errors.Is.
var ErrUnknownFormat = errors.New("unknown file format")

// Format identifies one of the supported file formats.
type Format int

const (
	FormatInvalid Format = iota
	FormatCSV
	FormatJSONL
	FormatParquet
)

func (f Format) String() string {
	switch f {
	case FormatCSV:
		return "csv"
	case FormatJSONL:
		return "jsonl"
	case FormatParquet:
		return "parquet"
	default:
		return "invalid"
	}
}

// ParseFormat resolves a format name. The json spellings all mean
// newline-delimited json; there is no support for json documents that are
// a single top-level array.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "csv":
		return FormatCSV, nil
	case "json", "jsonl", "ndjson":
		return FormatJSONL, nil
	case "parquet":
		return FormatParquet, nil
	default:
		return FormatInvalid, fmt.Errorf("%w %q", ErrUnknownFormat, name)
	}
}

// Infer picks the format for path. The filename wins when it carries a
// recognizable extension anywhere after the first dot, so names like
// "export.csv.gz" and "part.snappy.parquet" resolve. Otherwise the
// schema's file_format hint is used when a schema is present.
func Infer(path string, s *schema.Schema) (Format, error) {
	base := filepath.Base(path)
	if i := strings.IndexByte(base, '.'); i >= 0 {
		for _, part := range strings.Split(base[i+1:], ".") {
			if f, err := ParseFormat(part); err == nil {
				return f, nil
			}
		}
	}
	if s != nil && s.FileFormat != "" {
		return ParseFormat(s.FileFormat)
	}
	return FormatInvalid, fmt.Errorf("%w: cannot infer from path %q", ErrUnknownFormat, path)
}

// Cells heavier than a short string exist, but chunk sizing only needs to
// land in the right order of magnitude.
const bytesPerCell = 48

// ChunkRows converts a chunk size spec into a row count. rows wins when
// positive; otherwise mem is parsed as a byte quantity ("500MB", "1GiB")
// and divided by an estimated row width for ncols columns. Zero means no
// chunking.
func ChunkRows(rows int, mem string, ncols int) (int, error) {
	if rows > 0 {
		return rows, nil
	}
	if mem == "" {
		return 0, nil
	}
	b, err := humanize.ParseBytes(mem)
	if err != nil {
		return 0, fmt.Errorf("parse chunk memory %q: %w", mem, err)
	}
	if ncols < 1 {
		ncols = 1
	}
	n := int(b) / (ncols * bytesPerCell)
	if n < 1 {
		n = 1
	}
	return n, nil
}
