// Package textfetch turns a document file into raw text. PDFs with an
// embedded text layer are read locally; everything else goes to an external
// OCR/extraction service.
package textfetch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/mariner-tools/certtrack/internal/extract"
)

// Remote fetches text through an external service (OCR.space, Adobe PDF
// Services).
type Remote interface {
	Name() string
	FetchText(ctx context.Context, path string) (string, error)
}

type Fetcher struct {
	remote  Remote
	limiter *rate.Limiter
	log     *slog.Logger
}

// NewFetcher builds the chain fetcher. remote may be nil, in which case only
// the embedded-text fast path is available. delay paces the remote calls
// only: the upstream services are rate-limited free tiers, and a document
// satisfied locally must not burn quota time.
func NewFetcher(remote Remote, delay time.Duration, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	var limiter *rate.Limiter
	if delay > 0 {
		limiter = rate.NewLimiter(rate.Every(delay), 1)
	}
	return &Fetcher{remote: remote, limiter: limiter, log: logger}
}

// Fetch implements extract.TextFetcher. The embedded text layer is tried
// first: it is free and avoids the external service's quota.
func (f *Fetcher) Fetch(ctx context.Context, path string) (extract.TextFetchResult, error) {
	start := time.Now()
	var warnings []string

	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		text, ok, err := embeddedPDFText(path)
		if err != nil {
			warnings = append(warnings, err.Error())
			f.log.Warn("textfetch.embedded_failed", "file", filepath.Base(path), "error", err)
		} else if ok {
			return extract.TextFetchResult{
				Text:     text,
				Method:   "pdf-text",
				Duration: time.Since(start),
				Warnings: warnings,
			}, nil
		}
	}

	if f.remote == nil {
		return extract.TextFetchResult{Warnings: warnings},
			fmt.Errorf("no embedded text and no remote fetcher configured")
	}

	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return extract.TextFetchResult{Warnings: warnings}, err
		}
	}

	text, err := f.remote.FetchText(ctx, path)
	if err != nil {
		return extract.TextFetchResult{Warnings: warnings}, fmt.Errorf("%s: %w", f.remote.Name(), err)
	}
	if strings.TrimSpace(text) == "" {
		return extract.TextFetchResult{Warnings: warnings}, fmt.Errorf("%s: no text found", f.remote.Name())
	}

	return extract.TextFetchResult{
		Text:     text,
		Method:   f.remote.Name(),
		Duration: time.Since(start),
		Warnings: warnings,
	}, nil
}
