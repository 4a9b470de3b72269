package entity

// Fragment is the best-effort structured output of the extraction pipeline
// for one document. This is the on-disk interchange format consumed by the
// catalog merge step: absent fields marshal as explicit JSON nulls, and the
// field names are load-bearing.
type Fragment struct {
	File          string  `json:"file"`
	CertNumber    *string `json:"certNumber"`
	IssuanceDate  *string `json:"issuanceDate"`
	ExpiryDate    *string `json:"expiryDate"`
	ExtractedText string  `json:"extractedText,omitempty"`
}

// Empty reports whether extraction recovered nothing from the document.
func (f Fragment) Empty() bool {
	return f.CertNumber == nil && f.IssuanceDate == nil && f.ExpiryDate == nil
}

// FetchError records a document whose upstream text retrieval failed.
// These documents are skipped by the merge step.
type FetchError struct {
	File  string `json:"file"`
	Error string `json:"error"`
}
