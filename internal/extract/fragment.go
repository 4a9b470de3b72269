package extract

import (
	"strings"

	"github.com/mariner-tools/certtrack/internal/entity"
)

// excerptLimit bounds the raw-text excerpt kept on a fragment for audit.
const excerptLimit = 1000

// Issuance and expiry role keywords, matched against the lowercased text.
var (
	issuanceKeywords = []string{"issue", "dated", "valid from"}
	expiryKeywords   = []string{"expir", "valid until", "valid to"}
)

// ParseCertificateData turns one document's raw text into a best-effort
// fragment. Every field is optional; extraction never fails on a missing
// match. The function is deterministic: role assignment works on the sorted
// date set, never on match order.
func ParseCertificateData(text, filename string) entity.Fragment {
	frag := entity.Fragment{File: filename}
	if text == "" {
		return frag
	}
	frag.ExtractedText = excerpt(text)

	if num, ok := ExtractCertNumber(text); ok {
		frag.CertNumber = &num
	}

	dates := ExtractDates(text)
	if len(dates) == 0 {
		return frag
	}

	textLower := strings.ToLower(text)
	earliest := dates[0]
	latest := dates[len(dates)-1]

	if containsAny(textLower, issuanceKeywords) {
		frag.IssuanceDate = &earliest
	}
	if containsAny(textLower, expiryKeywords) {
		frag.ExpiryDate = &latest
	}

	// Positional fallback: earliest date is the issuance; the latest is the
	// expiry only when it is a distinct second date. A single-date document
	// never gets a fabricated identical expiry.
	if frag.IssuanceDate == nil {
		frag.IssuanceDate = &earliest
	}
	if frag.ExpiryDate == nil && len(dates) > 1 && latest != *frag.IssuanceDate {
		frag.ExpiryDate = &latest
	}

	return frag
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

func excerpt(text string) string {
	runes := []rune(text)
	if len(runes) <= excerptLimit {
		return text
	}
	return string(runes[:excerptLimit])
}
