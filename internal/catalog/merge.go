package catalog

import (
	"time"

	"github.com/mariner-tools/certtrack/internal/entity"
)

// MergeOptions controls the merge behavior.
type MergeOptions struct {
	// Force lets a fragment overwrite a differing hand-entered value.
	// Without it, extraction only fills fields that are still absent.
	Force bool
}

// FieldChange is one audited field update.
type FieldChange struct {
	CertificateID string `json:"certificate_id"`
	Certificate   string `json:"certificate"`
	Field         string `json:"field"`
	Old           string `json:"old"`
	New           string `json:"new"`
}

// MergeReport is the audit trail of one merge run.
type MergeReport struct {
	Changes   []FieldChange `json:"changes"`
	Conflicts []FieldChange `json:"conflicts"` // differing values left untouched (no Force)
	Unmatched []string      `json:"unmatched"` // fragment files with no catalog record
}

// Merge folds extraction fragments into the catalog. Fragments are matched
// to records by source filename. Only certNumber, issuanceDate and
// expiryDate are merged; the hand-maintained identity fields are never
// touched. Every applied change lands in the report, so the merge replaces
// the old copy-by-hand step without losing its reviewability.
func Merge(cat *Catalog, frags []entity.Fragment, opts MergeOptions) MergeReport {
	var report MergeReport
	now := time.Now().UTC()

	for _, frag := range frags {
		rec := cat.FindBySourceFile(frag.File)
		if rec == nil {
			report.Unmatched = append(report.Unmatched, frag.File)
			continue
		}

		touched := false
		touched = mergeField(rec, &report, opts, "certNumber", &rec.CertNumber, frag.CertNumber) || touched
		touched = mergeField(rec, &report, opts, "issuanceDate", &rec.IssuanceDate, frag.IssuanceDate) || touched
		touched = mergeField(rec, &report, opts, "expiryDate", &rec.ExpiryDate, frag.ExpiryDate) || touched
		if touched {
			rec.UpdatedAt = now
		}
	}
	return report
}

func mergeField(rec *entity.Certificate, report *MergeReport, opts MergeOptions, name string, dst **string, src *string) bool {
	if src == nil {
		return false
	}
	old := ""
	if *dst != nil {
		old = **dst
	}
	if old == *src {
		return false
	}

	change := FieldChange{
		CertificateID: rec.ID.String(),
		Certificate:   rec.Name,
		Field:         name,
		Old:           old,
		New:           *src,
	}

	if old != "" && !opts.Force {
		report.Conflicts = append(report.Conflicts, change)
		return false
	}

	v := *src
	*dst = &v
	report.Changes = append(report.Changes, change)
	return true
}
