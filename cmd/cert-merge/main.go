package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/mariner-tools/certtrack/internal/catalog"
	"github.com/mariner-tools/certtrack/internal/pipeline"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		catalogPath = flag.String("catalog", "certificates.json", "catalog JSON file to merge into")
		resultsPath = flag.String("results", "extraction-results.json", "extraction results JSON file")
		outPath     = flag.String("out", "", "output path (defaults to overwriting --catalog)")
		force       = flag.Bool("force", false, "overwrite differing catalog values with extracted ones")
	)
	flag.Parse()

	if *outPath == "" {
		*outPath = *catalogPath
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cat, err := catalog.Load(*catalogPath)
	if err != nil {
		printError("Error: load catalog: %v\n", err)
		os.Exit(1)
	}

	raw, err := os.ReadFile(*resultsPath)
	if err != nil {
		printError("Error: read results: %v\n", err)
		os.Exit(1)
	}
	var res pipeline.Results
	if err := json.Unmarshal(raw, &res); err != nil {
		printError("Error: parse results: %v\n", err)
		os.Exit(1)
	}

	report := catalog.Merge(cat, res.Fragments, catalog.MergeOptions{Force: *force})

	if err := cat.Save(*outPath); err != nil {
		printError("Error: save catalog: %v\n", err)
		os.Exit(1)
	}

	logger.Info("merge complete",
		"fragments", len(res.Fragments),
		"changes", len(report.Changes),
		"conflicts", len(report.Conflicts),
		"unmatched", len(report.Unmatched),
		"output_file", *outPath)

	fmt.Printf("Merge complete!\n")
	fmt.Printf("- Applied changes: %d\n", len(report.Changes))
	for _, c := range report.Changes {
		fmt.Printf("    %s: %s %q -> %q\n", c.Certificate, c.Field, c.Old, c.New)
	}
	fmt.Printf("- Conflicts kept as-is: %d\n", len(report.Conflicts))
	for _, c := range report.Conflicts {
		fmt.Printf("    %s: %s has %q, extracted %q (rerun with --force to overwrite)\n", c.Certificate, c.Field, c.Old, c.New)
	}
	fmt.Printf("- Unmatched files: %d\n", len(report.Unmatched))
	for _, f := range report.Unmatched {
		fmt.Printf("    %s\n", f)
	}
	fmt.Printf("- Output: %s\n", *outPath)
}
