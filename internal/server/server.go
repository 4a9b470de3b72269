// Package server exposes the catalog over HTTP: listing with computed
// statuses, annotations, category/stat summaries and spreadsheet exports.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mariner-tools/certtrack/internal/catalog"
	"github.com/mariner-tools/certtrack/internal/export"
	"github.com/mariner-tools/certtrack/internal/repository"
	"github.com/mariner-tools/certtrack/internal/status"
)

const maxRequestBodySize = 1 << 20 // 1MB

type Deps struct {
	Catalog     *catalog.Catalog
	Engine      *status.Engine
	Annotations repository.AnnotationRepository
	Export      *export.Service
	Password    string
	Logger      *slog.Logger

	// Health reports backing-store liveness; optional.
	Health func(ctx context.Context) error
	// Now overrides the clock used for status computation; defaults to
	// time.Now.
	Now func() time.Time
}

func NewHandler(deps Deps) http.Handler {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	r := chi.NewRouter()

	r.Get("/healthz", handleHealth(deps))

	r.Group(func(r chi.Router) {
		r.Use(AccessAuth(deps.Password))

		r.Get("/certificates", handleListCertificates(deps))
		r.Get("/certificates/{id}", handleGetCertificate(deps))
		r.Patch("/certificates/{id}/annotation", handlePatchAnnotation(deps))
		r.Get("/categories", handleListCategories(deps))
		r.Get("/stats", handleStats(deps))
		r.Get("/export.csv", handleExportCSV(deps))
		r.Get("/export.xlsx", handleExportXLSX(deps))
	})

	return r
}

func handleHealth(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.Health != nil {
			if err := deps.Health(r.Context()); err != nil {
				httpError(w, http.StatusServiceUnavailable, "api_error", "store unavailable: %v", err)
				return
			}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	msg := fmt.Sprintf(format, args...)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}
