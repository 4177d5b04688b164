package schema

import (
	"fmt"
	"strings"
)

// SchemaError reports an inconsistent schema or a data/schema column-set
// mismatch. When a whole set of columns is at fault (missing from the data,
// unexpected in the data) the error lists every name, not just the first.
type SchemaError struct {
	Reason  string
	Columns []string
}

func (e *SchemaError) Error() string {
	if len(e.Columns) == 0 {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Reason, strings.Join(e.Columns, ", "))
}

// Errorf builds a SchemaError with a formatted reason and no column list.
func Errorf(format string, args ...any) *SchemaError {
	return &SchemaError{Reason: fmt.Sprintf(format, args...)}
}
