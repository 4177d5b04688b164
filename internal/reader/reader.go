// Package reader implements the format decoders that produce raw tables:
// CSV, JSON-lines and Parquet. CSV and JSON-lines read every value
// permissively (strings, or native JSON scalars) so the caster has full
// control of typing; Parquet decodes natively typed columns. Each decoder
// offers a single-shot Read and a chunked ReadChunks that yields
// row-bounded raw tables sharing one column set.
package reader

import (
	"iter"

	"tabio/pkg/table"
)

// Chunks is a lazy sequence of raw table chunks.
type Chunks = iter.Seq2[*table.Table, error]
