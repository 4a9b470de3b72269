// Package pipeline runs the offline extraction batch: for each registered
// document, retrieve raw text, run the field heuristics, and persist the
// outcome as an extract job. Documents are processed strictly one at a time;
// the inter-request delay against the rate-limited upstream services is
// enforced by the text fetcher, so locally satisfied documents are not paced.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/mariner-tools/certtrack/constants"
	"github.com/mariner-tools/certtrack/internal/entity"
	"github.com/mariner-tools/certtrack/internal/extract"
	"github.com/mariner-tools/certtrack/internal/repository"
)

// Results is the on-disk interchange written after a batch run and consumed
// by the catalog merge step.
type Results struct {
	Fragments []entity.Fragment   `json:"results"`
	Errors    []entity.FetchError `json:"errors"`
}

type Batch struct {
	Logger    *slog.Logger
	FilesRepo repository.CertificateFileRepository
	JobsRepo  repository.ExtractJobRepository
	Fetcher   extract.TextFetcher
}

func NewBatch(
	logger *slog.Logger,
	files repository.CertificateFileRepository,
	jobs repository.ExtractJobRepository,
	fetcher extract.TextFetcher,
) *Batch {
	if logger == nil {
		logger = slog.Default()
	}
	return &Batch{
		Logger:    logger,
		FilesRepo: files,
		JobsRepo:  jobs,
		Fetcher:   fetcher,
	}
}

// Run processes the given files in order. A fetch failure records the
// document in Errors and moves on; it never aborts the batch.
func (b *Batch) Run(ctx context.Context, fileIDs []uuid.UUID) (Results, error) {
	var res Results
	for i, fileID := range fileIDs {
		b.Logger.Info("processing document", "index", i+1, "total", len(fileIDs), "file_id", fileID)

		frag, err := b.ProcessFile(ctx, fileID)
		if err != nil {
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			file := fileID.String()
			if row, ferr := b.FilesRepo.GetByID(ctx, fileID); ferr == nil {
				file = row.Filename
			}
			res.Errors = append(res.Errors, entity.FetchError{File: file, Error: err.Error()})
			continue
		}
		res.Fragments = append(res.Fragments, frag)
	}
	return res, nil
}

// ProcessFile runs the two stages for one document: text retrieval, then
// field extraction. The extraction stage itself cannot fail; only upstream
// text retrieval can.
func (b *Batch) ProcessFile(ctx context.Context, fileID uuid.UUID) (entity.Fragment, error) {
	row, err := b.FilesRepo.GetByID(ctx, fileID)
	if err != nil {
		return entity.Fragment{}, fmt.Errorf("get file: %w", err)
	}

	format := constants.MapExtToFormat(row.FileExt)
	if format == "" {
		return entity.Fragment{}, fmt.Errorf("unsupported format: %s", row.FileExt)
	}

	job, err := b.JobsRepo.Start(ctx, row.ID, format)
	if err != nil {
		return entity.Fragment{}, err
	}

	fetched, err := b.Fetcher.Fetch(ctx, row.SourcePath)
	if err != nil {
		_ = b.JobsRepo.FinishFetchFailure(ctx, job.ID, err.Error())
		return entity.Fragment{}, fmt.Errorf("fetch text: %w", err)
	}

	frag := extract.ParseCertificateData(fetched.Text, row.Filename)

	if err := b.JobsRepo.FinishParse(ctx, job.ID, fetched.Method, fetched.Text, frag); err != nil {
		return entity.Fragment{}, err
	}

	b.Logger.Info("document parsed",
		"file_id", row.ID, "job_id", job.ID, "method", fetched.Method,
		"cert_number", frag.CertNumber != nil,
		"issuance", frag.IssuanceDate != nil,
		"expiry", frag.ExpiryDate != nil,
	)
	return frag, nil
}
