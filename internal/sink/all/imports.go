// Package all wires the built-in sink backends into the sink factory.
//
// The package exists purely for side effects: a blank import runs the init
// functions of each backend, which register their factories with the sink
// package. Importing it makes the "postgres" and "sqlite" backends
// available through sink.New.
package all

import (
	_ "tabio/internal/sink/postgres"
	_ "tabio/internal/sink/sqlite"
)
