package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/mariner-tools/certtrack/constants"
)

// Certificate represents one catalog entry for data transfer between layers.
// Dates are ISO YYYY-MM-DD strings so lexical order equals chronological
// order; optional fields are nil when the source document gave no evidence.
type Certificate struct {
	ID           uuid.UUID          `json:"id"`
	Name         string             `json:"name"`
	Issuer       string             `json:"issuer"`
	Category     constants.Category `json:"category"`
	Subcategory  *string            `json:"subcategory,omitempty"`
	Holder       string             `json:"holder"`
	CertNumber   *string            `json:"certNumber,omitempty"`
	IssuanceDate *string            `json:"issuanceDate,omitempty"`
	ExpiryDate   *string            `json:"expiryDate,omitempty"`
	SourceFile   *string            `json:"sourceFile,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}
