package cast

import (
	"context"
	"fmt"
	"iter"

	"golang.org/x/sync/errgroup"

	"tabio/internal/schema"
	"tabio/pkg/table"
)

// Chunks is a lazy, finite sequence of table chunks. Sequences are
// pull-driven: a chunk is cast and released to the consumer before the next
// one is requested, so memory use is bounded by one chunk at a time.
type Chunks = iter.Seq2[*table.Table, error]

// Stream lifts Table over a sequence of chunks, applying the cast
// independently to each one with a fixed schema and policy. All chunks
// resolve to an identical output column set and order; a chunk whose
// columns do not reconcile with the schema fails by the same rules as a
// single-shot cast, and the failure stops the sequence at that chunk.
func Stream(chunks Chunks, s *schema.Schema, opts Options) Chunks {
	return func(yield func(*table.Table, error) bool) {
		for chunk, err := range chunks {
			if err != nil {
				yield(nil, err)
				return
			}
			out, err := Table(chunk, s, opts)
			if !yield(out, err) || err != nil {
				return
			}
		}
	}
}

// StreamParallel is Stream with up to workers chunks cast concurrently.
// Output order and content are identical to Stream: chunks are emitted in
// input order, and no chunk's cast depends on another's result. workers < 2
// degrades to the sequential adapter.
func StreamParallel(ctx context.Context, chunks Chunks, s *schema.Schema, opts Options, workers int) Chunks {
	if workers < 2 {
		return Stream(chunks, s, opts)
	}

	type slot struct {
		out *table.Table
		err error
	}

	return func(yield func(*table.Table, error) bool) {
		gctx, cancel := context.WithCancel(ctx)
		defer cancel()

		g, gctx := errgroup.WithContext(gctx)
		g.SetLimit(workers)

		// Each chunk gets a 1-buffered channel; the queue preserves input
		// order while up to `workers` casts run.
		queue := make(chan chan slot, workers)

		go func() {
			defer close(queue)
			for chunk, err := range chunks {
				ch := make(chan slot, 1)
				if err != nil {
					ch <- slot{nil, err}
				} else {
					c := chunk
					g.Go(func() error {
						out, cerr := Table(c, s, opts)
						ch <- slot{out, cerr}
						return nil
					})
				}
				select {
				case queue <- ch:
				case <-gctx.Done():
					return
				}
			}
			_ = g.Wait()
		}()

		for ch := range queue {
			res := <-ch
			if !yield(res.out, res.err) || res.err != nil {
				return
			}
		}
	}
}

// Collect drains a chunk sequence into one table, concatenating rows in
// order. Intended for tests and small inputs; it defeats the memory bound
// streaming exists for.
func Collect(chunks Chunks) (*table.Table, error) {
	var out *table.Table
	for chunk, err := range chunks {
		if err != nil {
			return nil, err
		}
		if out == nil {
			out = chunk.Clone()
			continue
		}
		if len(chunk.Cols) != len(out.Cols) {
			return nil, fmt.Errorf("chunk has %d columns, expected %d", len(chunk.Cols), len(out.Cols))
		}
		for i := range out.Cols {
			out.Cols[i].Values = append(out.Cols[i].Values, chunk.Cols[i].Values...)
		}
	}
	if out == nil {
		out = table.New(0)
	}
	return out, nil
}
