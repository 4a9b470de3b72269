package constants

// CertificateStatus is the derived validity classification for a certificate.
// It is recomputed on every query and never stored.
type CertificateStatus string

// Stable values (the HTTP API and exports emit these exact strings).
const (
	StatusValid            CertificateStatus = "valid"
	StatusExpiring         CertificateStatus = "expiring"
	StatusExpired          CertificateStatus = "expired"
	StatusRenewalSuggested CertificateStatus = "renewal-suggested"
)

// JobStatus is the canonical status for rows in extract_jobs.
type JobStatus string

// Stable values (store these exact strings in DB).
const (
	JobStatusQueued  JobStatus = "QUEUED"   // queued for processing
	JobStatusRunning JobStatus = "RUNNING"  // in progress
	JobStatusFetchOK JobStatus = "FETCH_OK" // stage 1 completed (text retrieved)
	JobStatusParseOK JobStatus = "PARSE_OK" // stage 2 completed (fields extracted)
	JobStatusFailed  JobStatus = "FAILED"   // terminal failure
)
