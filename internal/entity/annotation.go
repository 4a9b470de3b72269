package entity

import (
	"time"

	"github.com/google/uuid"
)

// Annotation holds the viewer's local marks for one certificate: a
// completion checkmark, an attention flag, and a free-form note. Annotations
// never feed back into the catalog or the status computation.
type Annotation struct {
	CertificateID uuid.UUID `json:"certificate_id"`
	Checked       bool      `json:"checked"`
	Flagged       bool      `json:"flagged"`
	Note          string    `json:"note"`
	UpdatedAt     time.Time `json:"updated_at"`
}
