package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// main is the entry point for the tabio binary. Two subcommands:
//
//	tabio convert -job job.json        run a conversion job
//	tabio check   -schema s.json [...] validate a schema, optionally against a file
//
// A .env file in the working directory is loaded first so job files can
// reference DSNs via ${VAR} expansion.
func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("dotenv: %v", err)
	}

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "convert":
		err = runConvert(os.Args[2:])
	case "check":
		err = runCheck(os.Args[2:])
	case "-h", "--help", "help":
		usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", os.Args[1])
		usage()
		os.Exit(2)
	}
	if err != nil {
		fatalf("%v", err)
	}
}

func runConvert(args []string) error {
	fs := flag.NewFlagSet("convert", flag.ExitOnError)
	jobPath := fs.String("job", "", "job config JSON path")
	validate := fs.Bool("validate", false, "validate the job config and exit")
	verbose := fs.Bool("v", false, "enable verbose logs")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *jobPath == "" {
		return fmt.Errorf("convert: -job is required")
	}

	job, err := loadJob(*jobPath)
	if err != nil {
		return err
	}
	if *validate {
		log.Printf("job config is valid: %s", *jobPath)
		return nil
	}

	start := time.Now()
	rows, err := convert(job, *verbose)
	if err != nil {
		return err
	}
	if *verbose {
		log.Printf("converted %d rows in %s", rows, time.Since(start).Truncate(time.Millisecond))
	}
	return nil
}

func runCheck(args []string) error {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	schemaPath := fs.String("schema", "", "schema file path (json or yaml)")
	filePath := fs.String("file", "", "optional data file to check against the schema")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *schemaPath == "" {
		return fmt.Errorf("check: -schema is required")
	}
	return check(*schemaPath, *filePath)
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage:
  tabio convert -job <job.json> [-validate] [-v]
  tabio check   -schema <schema.json|yaml> [-file <data file>]`)
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
