// Package export renders the catalog, with computed statuses and local
// annotations, to CSV and XLSX.
package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/mariner-tools/certtrack/internal/entity"
	"github.com/mariner-tools/certtrack/internal/repository"
	"github.com/mariner-tools/certtrack/internal/status"
)

var headers = []string{
	"Name",
	"Issuer",
	"Category",
	"Subcategory",
	"Number",
	"Issued",
	"Expires",
	"Status",
	"Checked",
	"Flagged",
	"Note",
}

// Service is a tiny façade over the status engine and annotation store that
// produces export bytes.
type Service struct {
	engine      *status.Engine
	annotations repository.AnnotationRepository
	logger      *slog.Logger
}

// NewService builds the export service. annotations may be nil when exports
// run outside the server (the annotation columns stay empty).
func NewService(engine *status.Engine, annotations repository.AnnotationRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{engine: engine, annotations: annotations, logger: logger}
}

// CSV renders the certificates as a CSV document with a Status column
// computed for the given day.
func (s *Service) CSV(ctx context.Context, certs []entity.Certificate, today time.Time) ([]byte, error) {
	rows, err := s.buildRows(ctx, certs, today)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(headers); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}

	s.logger.Info("export.csv.done", "rows", len(rows), "bytes", buf.Len())
	return buf.Bytes(), nil
}

// XLSX renders the same table as an XLSX workbook.
func (s *Service) XLSX(ctx context.Context, certs []entity.Certificate, today time.Time) ([]byte, error) {
	rows, err := s.buildRows(ctx, certs, today)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	const sheet = "Certificates"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}
	for r, row := range rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}

	s.logger.Info("export.xlsx.done", "rows", len(rows), "bytes", buf.Len())
	return buf.Bytes(), nil
}

func (s *Service) buildRows(ctx context.Context, certs []entity.Certificate, today time.Time) ([][]string, error) {
	annotations := map[string]entity.Annotation{}
	if s.annotations != nil {
		all, err := s.annotations.All(ctx)
		if err != nil {
			return nil, fmt.Errorf("load annotations: %w", err)
		}
		for id, a := range all {
			annotations[id.String()] = a
		}
	}

	rows := make([][]string, 0, len(certs))
	for _, c := range certs {
		a := annotations[c.ID.String()]
		rows = append(rows, []string{
			c.Name,
			c.Issuer,
			string(c.Category),
			deref(c.Subcategory),
			deref(c.CertNumber),
			deref(c.IssuanceDate),
			deref(c.ExpiryDate),
			string(s.engine.Evaluate(c, today)),
			yesNo(a.Checked),
			yesNo(a.Flagged),
			a.Note,
		})
	}
	return rows, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return ""
}
