// This file adds a lightweight linter for Job values. It performs static
// checks over a decoded Job and returns a list of issues (errors and
// warnings) that callers can surface in a CLI or tests.
package config

import (
	"fmt"
	"strings"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a configuration warning that should be surfaced
	// to users but may not necessarily block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation finding for a Job.
//
// Path is a dotted path into the config (e.g. "output.sink.kind",
// "cast.num_errors"). Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a
// single error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// Validate performs static validation of a Job. It does not mutate the job;
// it returns a slice of Issue values and callers decide whether warnings
// are fatal.
func Validate(j Job) []Issue {
	var issues []Issue

	if strings.TrimSpace(j.Name) == "" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "name",
			Message:  "name is empty; it is used to identify runs in logs",
		})
	}
	if strings.TrimSpace(j.Schema) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "schema",
			Message:  "schema path must not be empty",
		})
	}

	issues = append(issues, validateEndpoint("input", j.Input, false)...)
	issues = append(issues, validateEndpoint("output", j.Output, true)...)
	issues = append(issues, validateCast(j.Cast)...)

	if j.Runtime.Workers > 1 && j.Runtime.ChunkRows <= 0 && j.Runtime.ChunkMemory == "" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "runtime.workers",
			Message:  "workers > 1 has no effect without runtime.chunk_rows or runtime.chunk_memory",
		})
	}

	return issues
}

// HasErrors reports whether any issue carries error severity.
func HasErrors(issues []Issue) bool {
	for _, i := range issues {
		if i.Severity == SeverityError {
			return true
		}
	}
	return false
}

func validateEndpoint(path string, e Endpoint, sinkAllowed bool) []Issue {
	var issues []Issue

	hasPath := strings.TrimSpace(e.Path) != ""
	hasSink := e.Sink != nil

	switch {
	case !hasPath && !hasSink:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     path,
			Message:  "either path or sink must be set",
		})
	case hasPath && hasSink:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     path,
			Message:  "path and sink are mutually exclusive",
		})
	case hasSink && !sinkAllowed:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     path + ".sink",
			Message:  "sinks are only supported on the output side",
		})
	}

	if hasSink {
		if strings.TrimSpace(e.Sink.Kind) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path + ".sink.kind",
				Message:  "sink kind must not be empty",
			})
		}
		if strings.TrimSpace(e.Sink.DSN) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path + ".sink.dsn",
				Message:  "sink dsn must not be empty",
			})
		}
		if strings.TrimSpace(e.Sink.Table) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path + ".sink.table",
				Message:  "sink table must not be empty",
			})
		}
	}

	return issues
}

func validateCast(c CastConfig) []Issue {
	var issues []Issue

	check := func(path, v string) {
		if _, err := parsePolicy(v); err != nil {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path,
				Message:  err.Error(),
			})
		}
	}
	check("cast.num_errors", c.NumErrors)
	check("cast.bool_errors", c.BoolErrors)
	check("cast.time_errors", c.TimeErrors)
	for col, v := range c.NumErrorMap {
		check("cast.num_error_map."+col, v)
	}
	for col, v := range c.BoolErrorMap {
		check("cast.bool_error_map."+col, v)
	}
	for col, v := range c.TimeErrorMap {
		check("cast.time_error_map."+col, v)
	}

	if _, err := parseTimeMode(c.DateMode); err != nil {
		issues = append(issues, Issue{Severity: SeverityError, Path: "cast.date_mode", Message: err.Error()})
	}
	if _, err := parseTimeMode(c.TimeMode); err != nil {
		issues = append(issues, Issue{Severity: SeverityError, Path: "cast.time_mode", Message: err.Error()})
	}

	for _, col := range c.DropColumns {
		if contains(c.IgnoreColumns, col) {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     "cast.drop_columns",
				Message:  fmt.Sprintf("column %q is both ignored and dropped; drop wins", col),
			})
		}
	}

	return issues
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
