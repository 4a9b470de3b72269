package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ExtractJob represents one extraction attempt for data transfer between
// layers.
type ExtractJob struct {
	ID           uuid.UUID       `json:"id"`
	FileID       uuid.UUID       `json:"file_id"`
	Format       string          `json:"format"`
	StartedAt    time.Time       `json:"started_at"`
	FinishedAt   *time.Time      `json:"finished_at,omitempty"`
	Status       *string         `json:"status,omitempty"`
	ErrorMessage *string         `json:"error_message,omitempty"`
	FetchMethod  *string         `json:"fetch_method,omitempty"`
	RawText      *string         `json:"raw_text,omitempty"`
	FragmentJSON json.RawMessage `json:"fragment_json,omitempty"`
}
