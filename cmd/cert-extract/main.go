package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/mariner-tools/certtrack/internal/common"
	"github.com/mariner-tools/certtrack/internal/ingest"
	"github.com/mariner-tools/certtrack/internal/pipeline"
	"github.com/mariner-tools/certtrack/internal/repository"
	"github.com/mariner-tools/certtrack/internal/textfetch"
	"github.com/mariner-tools/certtrack/internal/textfetch/adobe"
	"github.com/mariner-tools/certtrack/internal/textfetch/ocrspace"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		inmem  = flag.Bool("inmem", false, "use in-memory SQLite database")
		dir    = flag.String("dir", "", "directory to scan for certificate documents (required)")
		out    = flag.String("out", "", "output JSON file path (defaults to extraction-results.json next to --dir)")
		engine = flag.String("engine", "auto", "remote text engine: ocrspace, adobe or auto")
		delay  = flag.Duration("delay", 0, "inter-request delay override (e.g. 1.5s)")
	)
	flag.Parse()

	if *dir == "" {
		printError("Error: --dir is required\n")
		os.Exit(1)
	}
	if *out == "" {
		*out = filepath.Join(filepath.Dir(*dir), "extraction-results.json")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	ctx := context.Background()
	cfg := common.LoadConfig()

	dbPath := cfg.Database.Path
	if *inmem {
		dbPath = ":memory:"
	}
	db, err := repository.Open(ctx, dbPath, cfg.Database.BusyTimeout, logger)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() {
		_ = db.Close()
	}()

	filesRepo := repository.NewCertificateFileRepository(db, logger)
	jobsRepo := repository.NewExtractJobRepository(db, logger)

	remote, err := buildRemote(*engine, cfg, logger)
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}
	if remote == nil {
		logger.Warn("no remote engine configured, only embedded PDF text will be read")
	} else {
		logger.Info("remote engine selected", "engine", remote.Name())
	}

	batchDelay := cfg.Fetch.InterRequestDelay
	if *delay > 0 {
		batchDelay = *delay
	}
	fetcher := textfetch.NewFetcher(remote, batchDelay, logger)

	logger.Info("starting ingestion", "dir", *dir)
	ingestor := ingest.NewIngestor(filesRepo, logger)
	results, stats, err := ingestor.IngestDirectory(ctx, *dir)
	if err != nil {
		logger.Error("failed to ingest directory", "error", err)
		os.Exit(1)
	}

	var ingested []uuid.UUID
	for _, r := range results {
		if r.Err != "" {
			continue
		}
		fileID, err := uuid.Parse(r.FileID)
		if err != nil {
			logger.Error("failed to parse file ID", "file_id", r.FileID, "error", err)
			continue
		}
		ingested = append(ingested, fileID)
	}
	logger.Info("ingestion complete",
		"files_ingested", len(ingested),
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"succeeded", stats.Succeeded,
		"failed", stats.Failed,
		"deduplicated", stats.Deduplicated)

	batch := pipeline.NewBatch(logger, filesRepo, jobsRepo, fetcher)

	start := time.Now()
	res, err := batch.Run(ctx, ingested)
	if err != nil {
		logger.Error("batch aborted", "error", err)
		os.Exit(1)
	}

	payload, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		logger.Error("failed to marshal results", "error", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*out, append(payload, '\n'), 0644); err != nil {
		logger.Error("failed to write output file", "error", err)
		os.Exit(1)
	}

	logger.Info("batch extraction complete",
		"files_processed", len(res.Fragments),
		"failures", len(res.Errors),
		"elapsed_ms", time.Since(start).Milliseconds(),
		"output_file", *out)

	fmt.Printf("Extraction complete!\n")
	fmt.Printf("- Files ingested: %d\n", len(ingested))
	fmt.Printf("- Files parsed: %d\n", len(res.Fragments))
	fmt.Printf("- Failures: %d\n", len(res.Errors))
	fmt.Printf("- Output: %s\n", *out)
}

func buildRemote(engine string, cfg *common.Config, logger *slog.Logger) (textfetch.Remote, error) {
	switch engine {
	case "ocrspace":
		if cfg.Fetch.OCRSpaceAPIKey == "" {
			return nil, fmt.Errorf("--engine ocrspace requires OCR_API_KEY")
		}
	case "adobe":
		if cfg.Fetch.AdobeClientID == "" || cfg.Fetch.AdobeClientSecret == "" {
			return nil, fmt.Errorf("--engine adobe requires ADOBE_CLIENT_ID and ADOBE_CLIENT_SECRET")
		}
	case "auto":
	default:
		return nil, fmt.Errorf("unknown engine %q", engine)
	}

	useAdobe := engine == "adobe" || (engine == "auto" && cfg.Fetch.AdobeClientID != "" && cfg.Fetch.AdobeClientSecret != "")
	if useAdobe {
		return adobe.NewClient(adobe.Config{
			ClientID:     cfg.Fetch.AdobeClientID,
			ClientSecret: cfg.Fetch.AdobeClientSecret,
			Timeout:      cfg.Fetch.RequestTimeout,
		}, logger), nil
	}
	if cfg.Fetch.OCRSpaceAPIKey != "" {
		return ocrspace.NewClient(ocrspace.Config{
			APIKey:   cfg.Fetch.OCRSpaceAPIKey,
			Endpoint: cfg.Fetch.OCRSpaceEndpoint,
			Timeout:  cfg.Fetch.RequestTimeout,
		}, logger), nil
	}
	return nil, nil
}
