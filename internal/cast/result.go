package cast

// Result is the outcome of casting one column: the coerced values plus an
// optional per-row outcome marker. OK is populated only when a coerce
// policy was in effect for the column's category; OK[i] == false means the
// raw value at row i could not be mapped and was nulled out. A nil OK means
// every value was coerced (or the category does not support the marker).
type Result struct {
	Values []any
	OK     []bool
}

// AllOK reports whether no value was nulled out by policy.
func (r Result) AllOK() bool {
	for _, ok := range r.OK {
		if !ok {
			return false
		}
	}
	return true
}

// outcome tracks per-row failures while a coercer runs under a coerce
// policy. It allocates the OK slice lazily on the first failure so the
// success path stays cheap.
type outcome struct {
	n  int
	ok []bool
}

func (o *outcome) fail(row int) {
	if o.ok == nil {
		o.ok = make([]bool, o.n)
		for i := range o.ok {
			o.ok[i] = true
		}
	}
	o.ok[row] = false
}

func (o *outcome) marker() []bool { return o.ok }
