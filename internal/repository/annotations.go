package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mariner-tools/certtrack/internal/entity"
)

// AnnotationRepository stores the viewer's local marks (checkmark, flag,
// note) per certificate. Missing rows read back as the zero annotation.
type AnnotationRepository interface {
	Get(ctx context.Context, certID uuid.UUID) (entity.Annotation, error)
	Upsert(ctx context.Context, a entity.Annotation) error
	All(ctx context.Context) (map[uuid.UUID]entity.Annotation, error)
}

type annotationRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewAnnotationRepository(db *sql.DB, logger *slog.Logger) AnnotationRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &annotationRepository{db: db, logger: logger}
}

func (r *annotationRepository) Get(ctx context.Context, certID uuid.UUID) (entity.Annotation, error) {
	var (
		a       entity.Annotation
		checked int
		flagged int
	)
	row := r.db.QueryRowContext(ctx,
		`SELECT checked, flagged, note, updated_at FROM annotations WHERE certificate_id = ?`,
		certID.String())
	err := row.Scan(&checked, &flagged, &a.Note, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.Annotation{CertificateID: certID}, nil
	}
	if err != nil {
		return entity.Annotation{}, fmt.Errorf("get annotation: %w", err)
	}
	a.CertificateID = certID
	a.Checked = checked != 0
	a.Flagged = flagged != 0
	return a, nil
}

func (r *annotationRepository) Upsert(ctx context.Context, a entity.Annotation) error {
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO annotations (certificate_id, checked, flagged, note, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(certificate_id) DO UPDATE SET
		   checked = excluded.checked,
		   flagged = excluded.flagged,
		   note = excluded.note,
		   updated_at = excluded.updated_at`,
		a.CertificateID.String(), boolToInt(a.Checked), boolToInt(a.Flagged), a.Note, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert annotation: %w", err)
	}
	return nil
}

func (r *annotationRepository) All(ctx context.Context) (map[uuid.UUID]entity.Annotation, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT certificate_id, checked, flagged, note, updated_at FROM annotations`)
	if err != nil {
		return nil, fmt.Errorf("list annotations: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	out := make(map[uuid.UUID]entity.Annotation)
	for rows.Next() {
		var (
			a       entity.Annotation
			id      string
			checked int
			flagged int
		)
		if err := rows.Scan(&id, &checked, &flagged, &a.Note, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan annotation: %w", err)
		}
		certID, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("parse annotation id: %w", err)
		}
		a.CertificateID = certID
		a.Checked = checked != 0
		a.Flagged = flagged != 0
		out[certID] = a
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
