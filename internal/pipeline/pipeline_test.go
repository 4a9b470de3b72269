package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mariner-tools/certtrack/internal/entity"
	"github.com/mariner-tools/certtrack/internal/extract"
	"github.com/mariner-tools/certtrack/internal/repository"
)

type fakeFetcher struct {
	texts map[string]string
	fail  map[string]error
	calls []string
}

func (f *fakeFetcher) Fetch(_ context.Context, path string) (extract.TextFetchResult, error) {
	f.calls = append(f.calls, path)
	if err, ok := f.fail[path]; ok {
		return extract.TextFetchResult{}, err
	}
	return extract.TextFetchResult{Text: f.texts[path], Method: "fake"}, nil
}

type batchEnv struct {
	ctx   context.Context
	files repository.CertificateFileRepository
	jobs  repository.ExtractJobRepository
}

func newBatchEnv(t *testing.T) *batchEnv {
	t.Helper()
	ctx := context.Background()
	db, err := repository.Open(ctx, ":memory:", time.Second, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	return &batchEnv{
		ctx:   ctx,
		files: repository.NewCertificateFileRepository(db, nil),
		jobs:  repository.NewExtractJobRepository(db, nil),
	}
}

func (e *batchEnv) addFile(t *testing.T, name string, hash byte) uuid.UUID {
	t.Helper()
	stored, _, err := e.files.SaveIfNew(e.ctx, entity.CertificateFile{
		SourcePath:  "/docs/" + name,
		ContentHash: []byte{hash},
		Filename:    name,
		FileExt:     "pdf",
		FileSize:    100,
	})
	require.NoError(t, err)
	return stored.ID
}

func TestBatchRun(t *testing.T) {
	env := newBatchEnv(t)
	goodID := env.addFile(t, "gmdss.pdf", 0x01)
	badID := env.addFile(t, "medical.pdf", 0x02)

	fetcher := &fakeFetcher{
		texts: map[string]string{
			"/docs/gmdss.pdf": "Certificate No: GOC-1234\nIssued: 01/03/2022\nExpires: 01/03/2027",
		},
		fail: map[string]error{
			"/docs/medical.pdf": errors.New("ocrspace: timeout"),
		},
	}

	b := NewBatch(nil, env.files, env.jobs, fetcher)
	res, err := b.Run(env.ctx, []uuid.UUID{goodID, badID})
	require.NoError(t, err)

	require.Len(t, res.Fragments, 1)
	frag := res.Fragments[0]
	assert.Equal(t, "gmdss.pdf", frag.File)
	require.NotNil(t, frag.CertNumber)
	assert.Equal(t, "GOC-1234", *frag.CertNumber)
	require.NotNil(t, frag.IssuanceDate)
	assert.Equal(t, "2022-03-01", *frag.IssuanceDate)
	require.NotNil(t, frag.ExpiryDate)
	assert.Equal(t, "2027-03-01", *frag.ExpiryDate)

	// A fetch failure is recorded by filename and never aborts the batch.
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "medical.pdf", res.Errors[0].File)
	assert.Contains(t, res.Errors[0].Error, "timeout")

	// Both outcomes landed as finished jobs.
	goodJobs, err := env.jobs.ListByFile(env.ctx, goodID)
	require.NoError(t, err)
	require.Len(t, goodJobs, 1)
	assert.Equal(t, "PARSE_OK", *goodJobs[0].Status)

	badJobs, err := env.jobs.ListByFile(env.ctx, badID)
	require.NoError(t, err)
	require.Len(t, badJobs, 1)
	assert.Equal(t, "FAILED", *badJobs[0].Status)
}

func TestBatchRun_SequentialOrder(t *testing.T) {
	env := newBatchEnv(t)
	ids := []uuid.UUID{
		env.addFile(t, "a.pdf", 0x0a),
		env.addFile(t, "b.pdf", 0x0b),
		env.addFile(t, "c.pdf", 0x0c),
	}

	fetcher := &fakeFetcher{texts: map[string]string{
		"/docs/a.pdf": "text a",
		"/docs/b.pdf": "text b",
		"/docs/c.pdf": "text c",
	}}

	b := NewBatch(nil, env.files, env.jobs, fetcher)
	res, err := b.Run(env.ctx, ids)
	require.NoError(t, err)

	assert.Equal(t, []string{"/docs/a.pdf", "/docs/b.pdf", "/docs/c.pdf"}, fetcher.calls)
	require.Len(t, res.Fragments, 3)
	assert.Equal(t, []string{"a.pdf", "b.pdf", "c.pdf"},
		[]string{res.Fragments[0].File, res.Fragments[1].File, res.Fragments[2].File})
}

func TestBatchRun_CancelledContext(t *testing.T) {
	env := newBatchEnv(t)
	ids := []uuid.UUID{
		env.addFile(t, "a.pdf", 0x0a),
		env.addFile(t, "b.pdf", 0x0b),
	}

	ctx, cancel := context.WithCancel(env.ctx)
	cancel()

	fetcher := &fakeFetcher{texts: map[string]string{}}
	b := NewBatch(nil, env.files, env.jobs, fetcher)
	_, err := b.Run(ctx, ids)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProcessFile_UnknownFile(t *testing.T) {
	env := newBatchEnv(t)
	b := NewBatch(nil, env.files, env.jobs, &fakeFetcher{})

	_, err := b.ProcessFile(env.ctx, uuid.New())
	assert.Error(t, err)
}
