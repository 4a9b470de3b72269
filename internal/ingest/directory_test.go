package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mariner-tools/certtrack/internal/repository"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newIngestor(t *testing.T) (*Ingestor, repository.CertificateFileRepository) {
	t.Helper()
	db, err := repository.Open(context.Background(), ":memory:", time.Second, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	files := repository.NewCertificateFileRepository(db, nil)
	return NewIngestor(files, nil), files
}

func TestIngestDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "gmdss.pdf", "pdf one")
	writeFile(t, dir, "scans/medical.jpg", "jpeg bytes")
	writeFile(t, dir, "notes.txt", "not a certificate")
	writeFile(t, dir, ".hidden/secret.pdf", "skipped")

	ing, files := newIngestor(t)
	ctx := context.Background()

	results, stats, err := ing.IngestDirectory(ctx, dir)
	require.NoError(t, err)

	assert.Equal(t, uint32(2), stats.Matched)
	assert.Equal(t, uint32(2), stats.Succeeded)
	assert.Equal(t, uint32(0), stats.Failed)
	assert.Equal(t, uint32(0), stats.Deduplicated)
	assert.Len(t, results, 2)

	all, err := files.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestIngestDirectory_Deduplicates(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "gmdss.pdf", "same bytes")
	writeFile(t, dir, "copies/gmdss-copy.pdf", "same bytes")

	ing, files := newIngestor(t)
	ctx := context.Background()

	_, stats, err := ing.IngestDirectory(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), stats.Succeeded)
	assert.Equal(t, uint32(1), stats.Deduplicated)

	all, err := files.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestIngestDirectory_EmptyRoot(t *testing.T) {
	ing, _ := newIngestor(t)
	_, _, err := ing.IngestDirectory(context.Background(), "  ")
	assert.Error(t, err)
}

func TestIngestPath(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "ecdis.PDF", "pdf bytes")

	ing, _ := newIngestor(t)
	f, dedup, err := ing.IngestPath(context.Background(), path)
	require.NoError(t, err)
	assert.False(t, dedup)
	assert.Equal(t, "ecdis.PDF", f.Filename)
	assert.Equal(t, "pdf", f.FileExt)
	assert.Equal(t, len("pdf bytes"), f.FileSize)
	assert.Len(t, f.ContentHash, 32)
}
