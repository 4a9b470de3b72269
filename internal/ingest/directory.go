// Package ingest discovers certificate documents on disk and registers them
// with the file repository, deduplicating by content hash.
package ingest

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mariner-tools/certtrack/constants"
	"github.com/mariner-tools/certtrack/internal/entity"
	"github.com/mariner-tools/certtrack/internal/repository"
)

type FileResult struct {
	Path         string
	FileID       string
	Deduplicated bool
	Err          string
}

type DirStats struct {
	Scanned      uint32
	Matched      uint32
	Succeeded    uint32
	Deduplicated uint32
	Failed       uint32
}

type Ingestor struct {
	files  repository.CertificateFileRepository
	logger *slog.Logger
}

func NewIngestor(files repository.CertificateFileRepository, logger *slog.Logger) *Ingestor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ingestor{files: files, logger: logger}
}

// IngestDirectory walks root, filters by the allowed extensions, skips
// hidden entries, and registers each file. Returns per-file results plus
// aggregate stats; individual failures never abort the walk.
func (u *Ingestor) IngestDirectory(ctx context.Context, root string) ([]FileResult, DirStats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, errors.New("root path is required")
	}

	var results []FileResult
	var stats DirStats

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		stats.Scanned++
		if walkErr != nil {
			results = append(results, FileResult{Path: path, Err: walkErr.Error()})
			stats.Failed++
			return nil // continue walking
		}
		if isHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if _, ok := constants.AllowedExtensions[constants.NormalizeExt(filepath.Ext(path))]; !ok {
			return nil
		}
		stats.Matched++

		f, dedup, err := u.IngestPath(ctx, path)
		if err != nil {
			results = append(results, FileResult{Path: path, Err: err.Error()})
			stats.Failed++
			return nil
		}

		results = append(results, FileResult{
			Path:         path,
			FileID:       f.ID.String(),
			Deduplicated: dedup,
		})
		stats.Succeeded++
		if dedup {
			stats.Deduplicated++
		}
		return nil
	})

	if err != nil {
		return results, stats, fmt.Errorf("walk: %w", err)
	}
	return results, stats, nil
}

// IngestPath hashes one file and registers it, returning the stored row and
// whether it was already known.
func (u *Ingestor) IngestPath(ctx context.Context, path string) (entity.CertificateFile, bool, error) {
	hash, size, err := hashFile(path)
	if err != nil {
		return entity.CertificateFile{}, false, err
	}

	f := entity.CertificateFile{
		SourcePath:  path,
		ContentHash: hash,
		Filename:    filepath.Base(path),
		FileExt:     constants.NormalizeExt(filepath.Ext(path)),
		FileSize:    size,
	}
	stored, dedup, err := u.files.SaveIfNew(ctx, f)
	if err != nil {
		return entity.CertificateFile{}, false, err
	}
	if dedup {
		u.logger.Debug("file already known", "path", path, "file_id", stored.ID)
	}
	return stored, dedup, nil
}

func hashFile(path string) ([]byte, int, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open: %w", err)
	}
	defer func() {
		_ = fh.Close()
	}()

	h := sha256.New()
	n, err := io.Copy(h, fh)
	if err != nil {
		return nil, 0, fmt.Errorf("hash: %w", err)
	}
	return h.Sum(nil), int(n), nil
}

func isHidden(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".")
}
