// Package config defines the JSON-serializable job model for the CLI. A job
// file names the schema, the input, and the output (a file in another
// format or a database table), plus the cast policy and runtime knobs.
// Field names in Go mirror the JSON structure of job files; decoding is
// performed by the standard library.
//
// Example (trimmed):
//
//	{
//	  "name":   "orders_daily",
//	  "schema": "schemas/orders.json",
//	  "input":  { "path": "data/orders.csv" },
//	  "output": { "path": "out/orders.parquet" },
//	  "cast":   { "num_errors": "coerce", "partial_schema": false },
//	  "runtime": { "chunk_memory": "256MB", "workers": 4 }
//	}
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"tabio/internal/cast"
	"tabio/internal/format"
)

// Job is the top-level object decoded from a job file.
type Job struct {
	// Name identifies the run in logs.
	Name string `json:"name"`

	// Schema is the path to the schema file (json or yaml).
	Schema string `json:"schema"`

	Input  Endpoint `json:"input"`
	Output Endpoint `json:"output"`

	Cast    CastConfig    `json:"cast"`
	Runtime RuntimeConfig `json:"runtime"`
}

// Endpoint identifies one side of a conversion. Exactly one of Path and
// Sink is set: a path reads or writes a file in an inferred format, a sink
// loads into a database table.
type Endpoint struct {
	// Path is a local file path. Format is inferred from the name unless
	// Format overrides it.
	Path   string `json:"path"`
	Format string `json:"format"`

	// Sink selects a database backend for output endpoints.
	Sink *SinkConfig `json:"sink"`
}

// SinkConfig configures a database output.
type SinkConfig struct {
	Kind        string `json:"kind"`
	DSN         string `json:"dsn"`
	Table       string `json:"table"`
	CreateTable bool   `json:"create_table"`
	BatchRows   int    `json:"batch_rows"`
}

// CastConfig carries the cast policy knobs. Policy values are "raise" or
// "coerce"; empty means the category default.
type CastConfig struct {
	DropUnexpectedColumns bool     `json:"drop_unexpected_columns"`
	IgnoreColumns         []string `json:"ignore_columns"`
	DropColumns           []string `json:"drop_columns"`
	PartialSchema         bool     `json:"partial_schema"`

	NumErrors  string `json:"num_errors"`
	BoolErrors string `json:"bool_errors"`
	TimeErrors string `json:"time_errors"`

	NumErrorMap  map[string]string `json:"num_error_map"`
	BoolErrorMap map[string]string `json:"bool_error_map"`
	TimeErrorMap map[string]string `json:"time_error_map"`

	// Truthy and Falsy extend the default boolean vocabulary.
	Truthy []string `json:"truthy"`
	Falsy  []string `json:"falsy"`

	// DateMode and TimeMode pick the value representation for temporal
	// columns: "object" (default), "epoch_nanos", or "period".
	DateMode string `json:"date_mode"`
	TimeMode string `json:"time_mode"`

	// PlainStrings renders null string cells as "" instead of null.
	PlainStrings bool `json:"plain_strings"`
}

// RuntimeConfig controls chunking and concurrency.
type RuntimeConfig struct {
	ChunkRows   int    `json:"chunk_rows"`
	ChunkMemory string `json:"chunk_memory"`
	Workers     int    `json:"workers"`
}

// Load decodes the job file at path.
func Load(path string) (Job, error) {
	var j Job
	b, err := os.ReadFile(path)
	if err != nil {
		return j, fmt.Errorf("read job file: %w", err)
	}
	if err := json.Unmarshal(b, &j); err != nil {
		return j, fmt.Errorf("decode job file %s: %w", path, err)
	}
	return j, nil
}

// CastOptions converts the decoded cast block into engine options.
func (j Job) CastOptions() (cast.Options, error) {
	opts := cast.Options{
		DropUnexpectedColumns: j.Cast.DropUnexpectedColumns,
		IgnoreColumns:         j.Cast.IgnoreColumns,
		DropColumns:           j.Cast.DropColumns,
		PartialSchema:         j.Cast.PartialSchema,
		PlainStrings:          j.Cast.PlainStrings,
	}

	var err error
	if opts.NumErrors, err = parsePolicy(j.Cast.NumErrors); err != nil {
		return opts, fmt.Errorf("cast.num_errors: %w", err)
	}
	if opts.BoolErrors, err = parsePolicy(j.Cast.BoolErrors); err != nil {
		return opts, fmt.Errorf("cast.bool_errors: %w", err)
	}
	if opts.TimeErrors, err = parsePolicy(j.Cast.TimeErrors); err != nil {
		return opts, fmt.Errorf("cast.time_errors: %w", err)
	}
	if opts.NumErrorMap, err = parsePolicyMap(j.Cast.NumErrorMap); err != nil {
		return opts, fmt.Errorf("cast.num_error_map: %w", err)
	}
	if opts.BoolErrorMap, err = parsePolicyMap(j.Cast.BoolErrorMap); err != nil {
		return opts, fmt.Errorf("cast.bool_error_map: %w", err)
	}
	if opts.TimeErrorMap, err = parsePolicyMap(j.Cast.TimeErrorMap); err != nil {
		return opts, fmt.Errorf("cast.time_error_map: %w", err)
	}

	if len(j.Cast.Truthy) > 0 || len(j.Cast.Falsy) > 0 {
		bm := cast.DefaultBoolMap()
		bm.Truthy = append(bm.Truthy, j.Cast.Truthy...)
		bm.Falsy = append(bm.Falsy, j.Cast.Falsy...)
		opts.BoolMap = bm
	}

	if opts.DateMode, err = parseTimeMode(j.Cast.DateMode); err != nil {
		return opts, fmt.Errorf("cast.date_mode: %w", err)
	}
	if opts.TimeMode, err = parseTimeMode(j.Cast.TimeMode); err != nil {
		return opts, fmt.Errorf("cast.time_mode: %w", err)
	}
	return opts, nil
}

// FormatOptions converts the job into format dispatch options for the given
// endpoint.
func (j Job) FormatOptions(e Endpoint, opts cast.Options) (format.Options, error) {
	out := format.Options{
		Cast:        opts,
		ChunkRows:   j.Runtime.ChunkRows,
		ChunkMemory: j.Runtime.ChunkMemory,
		Workers:     j.Runtime.Workers,
	}
	if e.Format != "" {
		f, err := format.ParseFormat(e.Format)
		if err != nil {
			return out, err
		}
		out.Format = f
	}
	out.Parquet.NanoTicks = opts.TimeMode == cast.TimeEpochNanos
	return out, nil
}

func parsePolicy(s string) (cast.ErrPolicy, error) {
	switch s {
	case "":
		return cast.PolicyDefault, nil
	case "raise":
		return cast.PolicyRaise, nil
	case "coerce":
		return cast.PolicyCoerce, nil
	default:
		return cast.PolicyDefault, fmt.Errorf("unknown error policy %q", s)
	}
}

func parsePolicyMap(m map[string]string) (map[string]cast.ErrPolicy, error) {
	if len(m) == 0 {
		return nil, nil
	}
	out := make(map[string]cast.ErrPolicy, len(m))
	for col, s := range m {
		p, err := parsePolicy(s)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", col, err)
		}
		out[col] = p
	}
	return out, nil
}

func parseTimeMode(s string) (cast.TimeMode, error) {
	switch s {
	case "", "object":
		return cast.TimeObject, nil
	case "epoch_nanos":
		return cast.TimeEpochNanos, nil
	case "period":
		return cast.TimePeriod, nil
	default:
		return cast.TimeObject, fmt.Errorf("unknown time mode %q", s)
	}
}
