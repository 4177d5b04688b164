package cast

import (
	"testing"

	"tabio/internal/schema"
)

func TestBoolDefaultVocabulary(t *testing.T) {
	res := mustCast(t, fld("flag", "bool_"),
		[]any{"Yes", "no", "TRUE", "f", "1", "0.0", nil, ""}, Options{})
	wantValues(t, res, []any{true, false, true, false, true, false, nil, nil})
	if res.OK != nil {
		t.Fatalf("clean cast produced outcome marker %v", res.OK)
	}
}

// The boolean category defaults to coerce: unmapped tokens become null and
// are flagged in the outcome marker.
func TestBoolCoerceDefault(t *testing.T) {
	res := mustCast(t, fld("flag", "bool_"), []any{"yes", "Maybe", "no"}, Options{})
	wantValues(t, res, []any{true, nil, false})
	if res.OK == nil || res.OK[0] != true || res.OK[1] != false || res.OK[2] != true {
		t.Fatalf("outcome marker = %v", res.OK)
	}
	if res.AllOK() {
		t.Fatal("AllOK with a nulled value")
	}
}

func TestBoolRaiseAggregates(t *testing.T) {
	_, err := castValues(t, fld("flag", "bool_"),
		[]any{"maybe", "yes", "perhaps"}, Options{BoolErrors: PolicyRaise})
	ce := asCastError(t, err)
	if ce.Failures != 2 {
		t.Fatalf("Failures = %d, want 2", ce.Failures)
	}
	if ce.Row != 0 || ce.Value != "maybe" {
		t.Fatalf("first failure = row %d value %v", ce.Row, ce.Value)
	}
}

func TestBoolFieldVocabularyExtension(t *testing.T) {
	f := schema.Field{Name: "flag", Type: "bool_", Truthy: []string{"ja"}, Falsy: []string{"nein"}}
	res := mustCast(t, f, []any{"ja", "nein", "yes"}, Options{})
	wantValues(t, res, []any{true, false, true})
}

func TestBoolCaseSensitive(t *testing.T) {
	opts := Options{BoolMap: &BoolMap{
		Truthy:        []string{"Y"},
		Falsy:         []string{"N"},
		CaseSensitive: true,
	}}
	res := mustCast(t, fld("flag", "bool_"), []any{"Y", "y"}, opts)
	wantValues(t, res, []any{true, nil})
}

func TestBoolNativePassThrough(t *testing.T) {
	res := mustCast(t, fld("flag", "bool_"), []any{true, false, nil}, Options{})
	wantValues(t, res, []any{true, false, nil})
}
