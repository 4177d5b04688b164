package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"tabio/internal/config"
	"tabio/internal/format"
	"tabio/internal/schema"
	"tabio/internal/sink"

	// register all sink backends with the factory.
	_ "tabio/internal/sink/all"
)

// loadJob decodes and lints a job file, printing every issue and failing
// when any carries error severity.
func loadJob(path string) (config.Job, error) {
	job, err := config.Load(path)
	if err != nil {
		return job, err
	}
	issues := config.Validate(job)
	for _, iss := range issues {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if config.HasErrors(issues) {
		return job, fmt.Errorf("job config is invalid: %s", path)
	}
	return job, nil
}

// convert runs one job end to end and reports the number of rows written.
func convert(job config.Job, verbose bool) (int64, error) {
	s, err := schema.Load(job.Schema)
	if err != nil {
		return 0, err
	}
	castOpts, err := job.CastOptions()
	if err != nil {
		return 0, err
	}
	opts, err := job.FormatOptions(job.Input, castOpts)
	if err != nil {
		return 0, err
	}

	ctx := context.Background()

	if job.Output.Sink != nil {
		return loadSink(ctx, job, s, opts, verbose)
	}

	if verbose {
		log.Printf("job %s: %s -> %s", job.Name, job.Input.Path, job.Output.Path)
	}

	outOpts, err := job.FormatOptions(job.Output, castOpts)
	if err != nil {
		return 0, err
	}

	// Whole-file path when no chunking is configured; otherwise stream
	// chunk by chunk so memory stays bounded.
	if job.Runtime.ChunkRows <= 0 && job.Runtime.ChunkMemory == "" {
		t, err := format.Read(job.Input.Path, s, opts)
		if err != nil {
			return 0, err
		}
		if err := format.Write(job.Output.Path, t, s, outOpts); err != nil {
			return 0, err
		}
		return int64(t.NumRows()), nil
	}

	chunks, err := format.ReadChunks(ctx, job.Input.Path, s, opts)
	if err != nil {
		return 0, err
	}
	var rows int64
	counted := format.CountRows(chunks, &rows)
	if err := format.WriteChunks(job.Output.Path, counted, s, outOpts); err != nil {
		return 0, err
	}
	return rows, nil
}

func loadSink(ctx context.Context, job config.Job, s *schema.Schema, opts format.Options, verbose bool) (int64, error) {
	cfg := sink.Config{
		Kind:        job.Output.Sink.Kind,
		DSN:         os.ExpandEnv(job.Output.Sink.DSN),
		Table:       job.Output.Sink.Table,
		CreateTable: job.Output.Sink.CreateTable,
		BatchRows:   job.Output.Sink.BatchRows,
	}
	if verbose {
		log.Printf("job %s: %s -> %s table %s", job.Name, job.Input.Path, cfg.Kind, cfg.Table)
	}

	k, err := sink.New(ctx, cfg, s)
	if err != nil {
		return 0, err
	}
	defer k.Close()

	if cfg.CreateTable {
		if err := k.EnsureTable(ctx); err != nil {
			return 0, err
		}
	}

	chunks, err := format.ReadChunks(ctx, job.Input.Path, s, opts)
	if err != nil {
		return 0, err
	}
	return k.Load(ctx, chunks)
}

// check validates a schema file and, when a data file is given, runs a full
// cast over it to surface conformance errors.
func check(schemaPath, filePath string) error {
	s, err := schema.Load(schemaPath)
	if err != nil {
		return err
	}
	log.Printf("schema is valid: %s (%d columns)", schemaPath, len(s.Columns))

	if filePath == "" {
		return nil
	}
	t, err := format.Read(filePath, s, format.Options{})
	if err != nil {
		return fmt.Errorf("%s does not conform: %w", filePath, err)
	}
	log.Printf("%s conforms: %d rows", filePath, t.NumRows())
	return nil
}
