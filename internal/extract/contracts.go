package extract

import (
	"context"
	"time"
)

// TextFetcher is Stage 1: document file -> raw text.
type TextFetcher interface {
	Fetch(ctx context.Context, path string) (TextFetchResult, error)
}

type TextFetchResult struct {
	Text     string
	Method   string // "pdf-text" | "ocrspace" | "adobe"
	Duration time.Duration
	Warnings []string
}
