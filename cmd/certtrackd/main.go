package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mariner-tools/certtrack/internal/catalog"
	"github.com/mariner-tools/certtrack/internal/common"
	"github.com/mariner-tools/certtrack/internal/export"
	"github.com/mariner-tools/certtrack/internal/ingest"
	"github.com/mariner-tools/certtrack/internal/repository"
	"github.com/mariner-tools/certtrack/internal/server"
	"github.com/mariner-tools/certtrack/internal/status"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := repository.Open(ctx, cfg.Database.Path, cfg.Database.BusyTimeout, logger)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() {
		_ = db.Close()
	}()
	if err := repository.HealthCheck(ctx, db, 3*time.Second); err != nil {
		logger.Error("database health check failed", "error", err)
		os.Exit(1)
	}
	logger.Info("database health OK", "path", cfg.Database.Path)

	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		logger.Error("failed to load catalog", "path", cfg.Catalog.Path, "error", err)
		os.Exit(1)
	}
	logger.Info("catalog loaded", "path", cfg.Catalog.Path, "certificates", len(cat.Certificates))

	engine := status.NewEngine(status.Config{
		ExpiringWindowDays:    cfg.Status.ExpiringWindowDays,
		AnnualLookaheadDays:   cfg.Status.AnnualLookaheadDays,
		FiveYearLookaheadDays: cfg.Status.FiveYearLookaheadDays,
	})
	annotations := repository.NewAnnotationRepository(db, logger)

	handler := server.NewHandler(server.Deps{
		Catalog:     cat,
		Engine:      engine,
		Annotations: annotations,
		Export:      export.NewService(engine, annotations, logger),
		Password:    cfg.Server.AccessPassword,
		Logger:      logger,
		Health: func(ctx context.Context) error {
			return repository.HealthCheck(ctx, db, 3*time.Second)
		},
	})

	srv := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("http serving", "addr", cfg.Server.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http serve: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	// Optional: auto-register documents dropped into a watched directory.
	if watchDir := os.Getenv("CERTTRACK_WATCH_DIR"); watchDir != "" {
		filesRepo := repository.NewCertificateFileRepository(db, logger)
		ingestor := ingest.NewIngestor(filesRepo, logger)

		evCh, errCh, err := ingest.StartWatcher(gctx, ingest.WatchConfig{
			Roots:       []string{watchDir},
			InitialScan: true,
			Debounce:    500 * time.Millisecond,
		})
		if err != nil {
			logger.Error("failed to start watcher", "dir", watchDir, "error", err)
			os.Exit(1)
		}
		logger.Info("watching for documents", "dir", watchDir)

		g.Go(func() error {
			for {
				select {
				case <-gctx.Done():
					return nil
				case path, ok := <-evCh:
					if !ok {
						return nil
					}
					f, dedup, err := ingestor.IngestPath(gctx, path)
					if err != nil {
						logger.Error("failed to ingest document", "path", path, "error", err)
						continue
					}
					logger.Info("document registered", "path", path, "file_id", f.ID, "deduplicated", dedup)
				case err, ok := <-errCh:
					if ok && err != nil {
						logger.Warn("watcher error", "error", err)
					}
				}
			}
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error("daemon exited with error", "error", err)
		os.Exit(1)
	}
	fmt.Println("stopped.")
}
