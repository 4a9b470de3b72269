package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mariner-tools/certtrack/constants"
	"github.com/mariner-tools/certtrack/internal/entity"
)

// ExtractJobRepository records extraction attempts and their outcomes.
type ExtractJobRepository interface {
	Start(ctx context.Context, fileID uuid.UUID, format string) (*entity.ExtractJob, error)
	// FinishFetchFailure marks the job FAILED with the upstream error; the
	// document is skipped, not the batch.
	FinishFetchFailure(ctx context.Context, id uuid.UUID, errMsg string) error
	// FinishParse marks the job PARSE_OK and stores the raw text plus the
	// extracted fragment.
	FinishParse(ctx context.Context, id uuid.UUID, method, rawText string, frag entity.Fragment) error
	ListByFile(ctx context.Context, fileID uuid.UUID) ([]entity.ExtractJob, error)
}

type jobRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewExtractJobRepository(db *sql.DB, logger *slog.Logger) ExtractJobRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &jobRepository{db: db, logger: logger}
}

func (r *jobRepository) Start(ctx context.Context, fileID uuid.UUID, format string) (*entity.ExtractJob, error) {
	job := &entity.ExtractJob{
		ID:        uuid.New(),
		FileID:    fileID,
		Format:    format,
		StartedAt: time.Now().UTC(),
	}
	status := string(constants.JobStatusRunning)
	job.Status = &status

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO extract_jobs (id, file_id, format, started_at, status)
		 VALUES (?, ?, ?, ?, ?)`,
		job.ID.String(), job.FileID.String(), job.Format, job.StartedAt, *job.Status)
	if err != nil {
		return nil, fmt.Errorf("start job: %w", err)
	}
	return job, nil
}

func (r *jobRepository) FinishFetchFailure(ctx context.Context, id uuid.UUID, errMsg string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE extract_jobs SET status = ?, error_message = ?, finished_at = ? WHERE id = ?`,
		string(constants.JobStatusFailed), errMsg, time.Now().UTC(), id.String())
	if err != nil {
		return fmt.Errorf("finish job failure: %w", err)
	}
	return nil
}

func (r *jobRepository) FinishParse(ctx context.Context, id uuid.UUID, method, rawText string, frag entity.Fragment) error {
	fragJSON, err := json.Marshal(frag)
	if err != nil {
		return fmt.Errorf("marshal fragment: %w", err)
	}
	_, err = r.db.ExecContext(ctx,
		`UPDATE extract_jobs
		 SET status = ?, fetch_method = ?, raw_text = ?, fragment_json = ?, finished_at = ?
		 WHERE id = ?`,
		string(constants.JobStatusParseOK), method, rawText, string(fragJSON), time.Now().UTC(), id.String())
	if err != nil {
		return fmt.Errorf("finish job parse: %w", err)
	}
	return nil
}

func (r *jobRepository) ListByFile(ctx context.Context, fileID uuid.UUID) ([]entity.ExtractJob, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, file_id, format, started_at, finished_at, status, error_message, fetch_method, raw_text, fragment_json
		 FROM extract_jobs WHERE file_id = ? ORDER BY started_at`, fileID.String())
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var out []entity.ExtractJob
	for rows.Next() {
		var (
			job          entity.ExtractJob
			id, fid      string
			fragmentJSON sql.NullString
		)
		if err := rows.Scan(&id, &fid, &job.Format, &job.StartedAt, &job.FinishedAt,
			&job.Status, &job.ErrorMessage, &job.FetchMethod, &job.RawText, &fragmentJSON); err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		if job.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parse job id: %w", err)
		}
		if job.FileID, err = uuid.Parse(fid); err != nil {
			return nil, fmt.Errorf("parse job file id: %w", err)
		}
		if fragmentJSON.Valid {
			job.FragmentJSON = json.RawMessage(fragmentJSON.String)
		}
		out = append(out, job)
	}
	return out, rows.Err()
}
