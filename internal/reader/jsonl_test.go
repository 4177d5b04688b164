package reader

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestJSONLRead(t *testing.T) {
	in := `{"id": 1, "name": "a"}
{"id": 2, "name": null}
`
	tab, err := NewJSONL(JSONLOptions{}).Read(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	id, _ := tab.Column("id")
	if id.Values[0] != json.Number("1") {
		t.Fatalf("id[0] = %#v, want json.Number", id.Values[0])
	}
	name, _ := tab.Column("name")
	if name.Values[1] != nil {
		t.Fatalf("explicit null = %#v", name.Values[1])
	}
}

// The column set is the union of keys; rows missing a key yield null.
func TestJSONLKeyUnion(t *testing.T) {
	in := `{"a": 1}
{"a": 2, "b": "x"}
{"b": "y"}
`
	tab, err := NewJSONL(JSONLOptions{}).Read(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got := tab.Names(); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("columns = %v", got)
	}
	b, _ := tab.Column("b")
	if b.Values[0] != nil || b.Values[1] != "x" {
		t.Fatalf("b = %v", b.Values)
	}
}

func TestJSONLFixedColumns(t *testing.T) {
	in := `{"b": "x", "a": 1, "c": true}
`
	tab, err := NewJSONL(JSONLOptions{Columns: []string{"a", "b"}}).Read(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got := tab.Names(); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("columns = %v", got)
	}
}

func TestJSONLRejectsNonObject(t *testing.T) {
	if _, err := NewJSONL(JSONLOptions{}).Read(strings.NewReader("[1,2]\n")); err == nil {
		t.Fatal("top-level array accepted")
	}
}

func TestJSONLChunks(t *testing.T) {
	in := `{"a": 1}
{"a": 2}
{"a": 3}
`
	var sizes []int
	for chunk, err := range NewJSONL(JSONLOptions{Columns: []string{"a"}}).ReadChunks(strings.NewReader(in), 2) {
		if err != nil {
			t.Fatalf("ReadChunks: %v", err)
		}
		sizes = append(sizes, chunk.NumRows())
	}
	if len(sizes) != 2 || sizes[0] != 2 || sizes[1] != 1 {
		t.Fatalf("chunk sizes = %v", sizes)
	}
}

func TestJSONLEmptyInput(t *testing.T) {
	tab, err := NewJSONL(JSONLOptions{}).Read(strings.NewReader(""))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if tab.NumRows() != 0 {
		t.Fatalf("rows = %d", tab.NumRows())
	}
}
