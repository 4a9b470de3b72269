package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mariner-tools/certtrack/constants"
	"github.com/mariner-tools/certtrack/internal/entity"
)

// CertificateView is a catalog record decorated with its computed status
// and the reviewer's local annotation.
type CertificateView struct {
	entity.Certificate
	Status  constants.CertificateStatus `json:"status"`
	Checked bool                        `json:"checked"`
	Flagged bool                        `json:"flagged"`
	Note    string                      `json:"note,omitempty"`
}

type annotationPatch struct {
	Checked *bool   `json:"checked"`
	Flagged *bool   `json:"flagged"`
	Note    *string `json:"note"`
}

func handleListCertificates(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		today := deps.Now()

		annotations, err := deps.Annotations.All(r.Context())
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to load annotations: %v", err)
			return
		}

		var filter constants.Category
		if raw := r.URL.Query().Get("category"); raw != "" {
			cat, ok := constants.Canonicalize(raw)
			if !ok {
				httpError(w, http.StatusBadRequest, "invalid_request_error",
					"unknown category %q (known: %s)", raw, strings.Join(constants.AsStringSlice(), ", "))
				return
			}
			filter = cat
		}

		views := make([]CertificateView, 0, len(deps.Catalog.Certificates))
		for _, c := range deps.Catalog.Certificates {
			if filter != "" && c.Category != filter {
				continue
			}
			a := annotations[c.ID]
			views = append(views, CertificateView{
				Certificate: c,
				Status:      deps.Engine.Evaluate(c, today),
				Checked:     a.Checked,
				Flagged:     a.Flagged,
				Note:        a.Note,
			})
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(views)
	}
}

func handleGetCertificate(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid certificate id")
			return
		}

		cert := findCertificate(deps, id)
		if cert == nil {
			httpError(w, http.StatusNotFound, "not_found", "certificate not found")
			return
		}

		a, err := deps.Annotations.Get(r.Context(), id)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to load annotation: %v", err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(CertificateView{
			Certificate: *cert,
			Status:      deps.Engine.Evaluate(*cert, deps.Now()),
			Checked:     a.Checked,
			Flagged:     a.Flagged,
			Note:        a.Note,
		})
	}
}

func handlePatchAnnotation(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid certificate id")
			return
		}
		if findCertificate(deps, id) == nil {
			httpError(w, http.StatusNotFound, "not_found", "certificate not found")
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		var patch annotationPatch
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}

		a, err := deps.Annotations.Get(r.Context(), id)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to load annotation: %v", err)
			return
		}
		a.CertificateID = id
		if patch.Checked != nil {
			a.Checked = *patch.Checked
		}
		if patch.Flagged != nil {
			a.Flagged = *patch.Flagged
		}
		if patch.Note != nil {
			a.Note = *patch.Note
		}
		a.UpdatedAt = time.Now().UTC()

		if err := deps.Annotations.Upsert(r.Context(), a); err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to save annotation: %v", err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(a)
	}
}

func handleListCategories(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(deps.Catalog.Categories())
	}
}

func handleStats(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := deps.Engine.Summarize(deps.Catalog.Certificates, deps.Now())
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(s)
	}
}

func handleExportCSV(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := deps.Export.CSV(r.Context(), deps.Catalog.Certificates, deps.Now())
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "export failed: %v", err)
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="certificates.csv"`)
		w.Write(out)
	}
}

func handleExportXLSX(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := deps.Export.XLSX(r.Context(), deps.Catalog.Certificates, deps.Now())
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "export failed: %v", err)
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="certificates.xlsx"`)
		w.Write(out)
	}
}

func findCertificate(deps Deps, id uuid.UUID) *entity.Certificate {
	for i := range deps.Catalog.Certificates {
		if deps.Catalog.Certificates[i].ID == id {
			return &deps.Catalog.Certificates[i]
		}
	}
	return nil
}
