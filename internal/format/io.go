package format

import (
	"context"
	"fmt"
	"os"

	"tabio/internal/cast"
	"tabio/internal/reader"
	"tabio/internal/schema"
	"tabio/internal/writer"
	"tabio/pkg/table"
)

// Options bundles the per-format codec options with the cast policy and
// chunking configuration for a dispatch.
type Options struct {
	// Format forces a format instead of inferring one from the path.
	Format Format

	CSV     reader.CSVOptions
	JSONL   reader.JSONLOptions
	CSVOut  writer.CSVOptions
	Parquet writer.ParquetOptions

	Cast cast.Options

	// ChunkRows and ChunkMemory size read chunks; see ChunkRows. Zero for
	// both reads the whole file as one table.
	ChunkRows   int
	ChunkMemory string

	// Workers enables parallel casting of chunks when > 1.
	Workers int
}

func (o Options) resolve(path string, s *schema.Schema) (Format, error) {
	if o.Format != FormatInvalid {
		return o.Format, nil
	}
	return Infer(path, s)
}

// Read loads the file at path as a single table. With a schema the raw
// columns are cast to the declared types; with a nil schema the raw table
// is returned as parsed.
func Read(path string, s *schema.Schema, opt Options) (*table.Table, error) {
	f, err := opt.resolve(path, s)
	if err != nil {
		return nil, err
	}

	var raw *table.Table
	switch f {
	case FormatCSV:
		fh, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		defer fh.Close()
		raw, err = reader.NewCSV(opt.CSV).Read(fh)
		if err != nil {
			return nil, err
		}
	case FormatJSONL:
		fh, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		defer fh.Close()
		raw, err = reader.NewJSONL(opt.JSONL).Read(fh)
		if err != nil {
			return nil, err
		}
	case FormatParquet:
		raw, err = reader.NewParquet().ReadFile(path)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported file format %q", f)
	}

	if s == nil {
		return raw, nil
	}
	return cast.Table(raw, s, opt.Cast)
}

// ReadChunks streams the file at path as a sequence of table chunks sized
// per the chunking options, casting each chunk when a schema is given.
// The underlying file stays open until the sequence is fully consumed or
// abandoned.
func ReadChunks(ctx context.Context, path string, s *schema.Schema, opt Options) (cast.Chunks, error) {
	f, err := opt.resolve(path, s)
	if err != nil {
		return nil, err
	}

	ncols := 0
	if s != nil {
		ncols = len(s.Columns)
	}
	rows, err := ChunkRows(opt.ChunkRows, opt.ChunkMemory, ncols)
	if err != nil {
		return nil, err
	}

	raw := func(yield func(*table.Table, error) bool) {
		fh, err := os.Open(path)
		if err != nil {
			yield(nil, fmt.Errorf("open %s: %w", path, err))
			return
		}
		defer fh.Close()

		var chunks reader.Chunks
		switch f {
		case FormatCSV:
			chunks = reader.NewCSV(opt.CSV).ReadChunks(fh, rows)
		case FormatJSONL:
			chunks = reader.NewJSONL(opt.JSONL).ReadChunks(fh, rows)
		case FormatParquet:
			st, err := fh.Stat()
			if err != nil {
				yield(nil, fmt.Errorf("stat %s: %w", path, err))
				return
			}
			chunks = reader.NewParquet().ReadChunks(fh, st.Size(), rows)
		default:
			yield(nil, fmt.Errorf("unsupported file format %q", f))
			return
		}

		for t, err := range chunks {
			if !yield(t, err) || err != nil {
				return
			}
		}
	}

	if s == nil {
		return raw, nil
	}
	if opt.Workers > 1 {
		return cast.StreamParallel(ctx, raw, s, opt.Cast, opt.Workers), nil
	}
	return cast.Stream(raw, s, opt.Cast), nil
}

// CountRows wraps a chunk sequence, accumulating the row count of every
// chunk that passes through into *n.
func CountRows(chunks cast.Chunks, n *int64) cast.Chunks {
	return func(yield func(*table.Table, error) bool) {
		for t, err := range chunks {
			if err == nil {
				*n += int64(t.NumRows())
			}
			if !yield(t, err) || err != nil {
				return
			}
		}
	}
}

// Write encodes t to the file at path in the inferred or forced format.
// Parquet output needs the schema for its column types; the textual
// formats take a nil schema.
func Write(path string, t *table.Table, s *schema.Schema, opt Options) error {
	f, err := opt.resolve(path, s)
	if err != nil {
		return err
	}

	fh, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer fh.Close()

	switch f {
	case FormatCSV:
		err = writer.NewCSV(opt.CSVOut).Write(fh, t)
	case FormatJSONL:
		err = writer.NewJSONL().Write(fh, t)
	case FormatParquet:
		if s == nil {
			return fmt.Errorf("parquet output requires a schema")
		}
		err = writer.NewParquet(opt.Parquet).Write(fh, t, s)
	default:
		err = fmt.Errorf("unsupported file format %q", f)
	}
	if err != nil {
		return err
	}
	if err := fh.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

// WriteChunks encodes a sequence of chunks to one output file, appending
// chunks in order.
func WriteChunks(path string, chunks cast.Chunks, s *schema.Schema, opt Options) error {
	f, err := opt.resolve(path, s)
	if err != nil {
		return err
	}

	fh, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer fh.Close()

	switch f {
	case FormatCSV:
		err = writer.NewCSV(opt.CSVOut).WriteChunks(fh, chunks)
	case FormatJSONL:
		err = writer.NewJSONL().WriteChunks(fh, chunks)
	case FormatParquet:
		if s == nil {
			return fmt.Errorf("parquet output requires a schema")
		}
		err = writer.NewParquet(opt.Parquet).WriteChunks(fh, chunks, s)
	default:
		err = fmt.Errorf("unsupported file format %q", f)
	}
	if err != nil {
		return err
	}
	if err := fh.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}
