package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTypeTokens(t *testing.T) {
	cases := []struct {
		token    string
		category Category
	}{
		{"bool_", CategoryBoolean},
		{"int8", CategoryInteger},
		{"int64", CategoryInteger},
		{"uint32", CategoryInteger},
		{"float16", CategoryFloat},
		{"float64", CategoryFloat},
		{"decimal128(18,2)", CategoryFloat},
		{"string", CategoryString},
		{"string_", CategoryString},
		{"utf8", CategoryString},
		{"large_string", CategoryString},
		{"date32", CategoryDate},
		{"date64", CategoryDate},
		{"time32(s)", CategoryTimestamp},
		{"time64(ns)", CategoryTimestamp},
		{"timestamp(ms)", CategoryTimestamp},
		{"binary", CategoryBinary},
		{"struct<a:int64>", CategoryOther},
		{"list<string>", CategoryOther},
		{"map_<string,int64>", CategoryOther},
	}
	for _, c := range cases {
		d, err := ParseType(c.token)
		require.NoError(t, err, c.token)
		assert.Equal(t, c.category, d.Category, c.token)
	}
}

func TestParseTypeDetails(t *testing.T) {
	d, err := ParseType("decimal128(18,2)")
	require.NoError(t, err)
	assert.True(t, d.Decimal)
	assert.Equal(t, int32(18), d.Precision)
	assert.Equal(t, int32(2), d.Scale)

	d, err = ParseType("timestamp(us)")
	require.NoError(t, err)
	assert.Equal(t, UnitMicro, d.Unit)

	d, err = ParseType("uint16")
	require.NoError(t, err)
	assert.True(t, d.Unsigned)
	assert.Equal(t, 16, d.Bits)
}

func TestParseTypeRejects(t *testing.T) {
	for _, token := range []string{"", "int7", "decimal128(0,2)", "decimal128(39,2)", "decimal128(5,9)", "timestamp(xs)", "whatever"} {
		_, err := ParseType(token)
		assert.Error(t, err, token)
	}
}

func TestDescriptorCategoryAgreement(t *testing.T) {
	s := &Schema{Columns: []Field{{Name: "a", Type: "int64", TypeCategory: "integer"}}}
	_, err := s.Descriptor(s.Columns[0])
	require.NoError(t, err)

	// Older schemas label date columns with the timestamp category; that
	// stays accepted.
	s = &Schema{Columns: []Field{{Name: "d", Type: "date32", TypeCategory: "timestamp"}}}
	_, err = s.Descriptor(s.Columns[0])
	require.NoError(t, err)

	s = &Schema{Columns: []Field{{Name: "a", Type: "int64", TypeCategory: "string"}}}
	_, err = s.Descriptor(s.Columns[0])
	assert.Error(t, err)
}

func TestSchemaValidate(t *testing.T) {
	valid := &Schema{Columns: []Field{
		{Name: "id", Type: "int64"},
		{Name: "day", Type: "date32"},
	}}
	require.NoError(t, valid.Validate())

	assert.Error(t, (&Schema{}).Validate(), "empty schema")

	dup := &Schema{Columns: []Field{{Name: "a", Type: "int64"}, {Name: "a", Type: "string"}}}
	assert.Error(t, dup.Validate(), "duplicate names")

	badPartition := &Schema{
		Columns:    []Field{{Name: "a", Type: "int64"}},
		Partitions: []string{"nope"},
	}
	assert.Error(t, badPartition.Validate(), "undeclared partition")

	badFormat := &Schema{Columns: []Field{{Name: "d", Type: "date32", DatetimeFormat: "%j"}}}
	assert.Error(t, badFormat.Validate(), "bad datetime format")
}

func TestFieldNullableDefault(t *testing.T) {
	assert.True(t, Field{}.IsNullable())
	no := false
	assert.False(t, Field{Nullable: &no}.IsNullable())
}

func TestLoadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"name": "orders",
		"columns": [
			{"name": "id", "type": "int64"},
			{"name": "price", "type": "decimal128(9,2)", "num_errors": "coerce"}
		],
		"file_format": "csv"
	}`), 0o644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "orders", s.Name)
	require.Len(t, s.Columns, 2)
	assert.Equal(t, "coerce", s.Columns[1].NumErrors)
	assert.Equal(t, "csv", s.FileFormat)
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
name: orders
columns:
  - name: id
    type: int64
  - name: active
    type: bool_
    truthy: ["ja"]
    falsy: ["nein"]
`), 0o644))

	s, err := Load(path)
	require.NoError(t, err)
	require.Len(t, s.Columns, 2)
	assert.Equal(t, []string{"ja"}, s.Columns[1].Truthy)
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"columns": [{"name": "a", "type": "int7"}]}`), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestSchemaErrorAggregates(t *testing.T) {
	err := &SchemaError{Reason: "schema columns missing from data", Columns: []string{"a", "b"}}
	msg := err.Error()
	assert.Contains(t, msg, "a")
	assert.Contains(t, msg, "b")
}
