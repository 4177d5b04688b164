package format

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabio/internal/cast"
	"tabio/internal/schema"
	"tabio/pkg/table"
)

func ioSchema() *schema.Schema {
	return &schema.Schema{
		Name: "events",
		Columns: []schema.Field{
			{Name: "id", Type: "int64"},
			{Name: "name", Type: "string"},
		},
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadCastsToSchema(t *testing.T) {
	path := writeFile(t, "events.csv", "id,name\n1,a\n2,b\n")

	got, err := Read(path, ioSchema(), Options{})
	require.NoError(t, err)
	require.Equal(t, 2, got.NumRows())

	id, ok := got.Column("id")
	require.True(t, ok)
	assert.Equal(t, int64(1), id.Values[0])
}

func TestReadNilSchemaStaysRaw(t *testing.T) {
	path := writeFile(t, "events.csv", "id,name\n1,a\n")

	got, err := Read(path, nil, Options{})
	require.NoError(t, err)
	id, _ := got.Column("id")
	assert.Equal(t, "1", id.Values[0])
}

func TestReadChunksStreams(t *testing.T) {
	path := writeFile(t, "events.csv", "id,name\n1,a\n2,b\n3,c\n")

	chunks, err := ReadChunks(context.Background(), path, ioSchema(), Options{ChunkRows: 2})
	require.NoError(t, err)

	var rows int
	var n int
	for chunk, err := range chunks {
		require.NoError(t, err)
		rows += chunk.NumRows()
		n++
	}
	assert.Equal(t, 3, rows)
	assert.Equal(t, 2, n)
}

func TestWriteReadCycle(t *testing.T) {
	s := ioSchema()
	src := table.New(2)
	src.AddColumn("id", []any{"1", "2"})
	src.AddColumn("name", []any{"a", nil})
	typed, err := cast.Table(src, s, cast.Options{})
	require.NoError(t, err)

	for _, name := range []string{"out.csv", "out.jsonl", "out.parquet"} {
		path := filepath.Join(t.TempDir(), name)
		require.NoError(t, Write(path, typed, s, Options{}), name)

		got, err := Read(path, s, Options{})
		require.NoError(t, err, name)
		assert.Equal(t, table.Fingerprint(typed), table.Fingerprint(got), name)
	}
}

func TestWriteParquetNeedsSchema(t *testing.T) {
	typed := table.New(1)
	typed.AddColumn("id", []any{int64(1)})
	err := Write(filepath.Join(t.TempDir(), "out.parquet"), typed, nil, Options{})
	assert.Error(t, err)
}

func TestCountRows(t *testing.T) {
	path := writeFile(t, "events.csv", "id,name\n1,a\n2,b\n")
	chunks, err := ReadChunks(context.Background(), path, ioSchema(), Options{ChunkRows: 1})
	require.NoError(t, err)

	var rows int64
	for range CountRows(chunks, &rows) {
	}
	assert.Equal(t, int64(2), rows)
}
