package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mariner-tools/certtrack/internal/common"
	"github.com/mariner-tools/certtrack/internal/entity"
)

// CertificateFileRepository persists scanned source documents.
type CertificateFileRepository interface {
	// SaveIfNew inserts the file unless a row with the same content hash
	// exists; the existing row is returned with deduplicated=true.
	SaveIfNew(ctx context.Context, f entity.CertificateFile) (entity.CertificateFile, bool, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.CertificateFile, error)
	List(ctx context.Context) ([]entity.CertificateFile, error)
}

type fileRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewCertificateFileRepository(db *sql.DB, logger *slog.Logger) CertificateFileRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &fileRepository{db: db, logger: logger}
}

func (r *fileRepository) SaveIfNew(ctx context.Context, f entity.CertificateFile) (entity.CertificateFile, bool, error) {
	var existing entity.CertificateFile
	row := r.db.QueryRowContext(ctx,
		`SELECT id, source_path, content_hash, filename, file_ext, file_size, uploaded_at
		 FROM certificate_files WHERE content_hash = ?`, f.ContentHash)
	err := scanFile(row, &existing)
	switch {
	case err == nil:
		return existing, true, nil
	case !errors.Is(err, sql.ErrNoRows):
		return entity.CertificateFile{}, false, fmt.Errorf("lookup file by hash: %w", err)
	}

	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	if f.UploadedAt.IsZero() {
		f.UploadedAt = time.Now().UTC()
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO certificate_files (id, source_path, content_hash, filename, file_ext, file_size, uploaded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		f.ID.String(), f.SourcePath, f.ContentHash, f.Filename, f.FileExt, f.FileSize, f.UploadedAt)
	if err != nil {
		return entity.CertificateFile{}, false, fmt.Errorf("insert file: %w", err)
	}
	return f, false, nil
}

func (r *fileRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.CertificateFile, error) {
	var f entity.CertificateFile
	row := r.db.QueryRowContext(ctx,
		`SELECT id, source_path, content_hash, filename, file_ext, file_size, uploaded_at
		 FROM certificate_files WHERE id = ?`, id.String())
	if err := scanFile(row, &f); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("get file: %w", err)
	}
	return &f, nil
}

func (r *fileRepository) List(ctx context.Context) ([]entity.CertificateFile, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, source_path, content_hash, filename, file_ext, file_size, uploaded_at
		 FROM certificate_files ORDER BY uploaded_at`)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var out []entity.CertificateFile
	for rows.Next() {
		var f entity.CertificateFile
		if err := scanFile(rows, &f); err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFile(row rowScanner, f *entity.CertificateFile) error {
	var id string
	if err := row.Scan(&id, &f.SourcePath, &f.ContentHash, &f.Filename, &f.FileExt, &f.FileSize, &f.UploadedAt); err != nil {
		return err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("parse file id: %w", err)
	}
	f.ID = parsed
	return nil
}
