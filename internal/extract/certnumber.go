package extract

import (
	"regexp"
	"strings"
)

// minCertNumberLen rejects tokens too short to be a plausible certificate
// number (OCR fragments, list bullets).
const minCertNumberLen = 4

// certNumberPatterns is an ordered priority chain: specific, label-anchored
// patterns first, generic fallbacks last. The first pattern whose captured
// token is long enough wins, so the order is load-bearing.
var certNumberPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)certificate\s*(?:no|number|#|:)[:\s]*([A-Z0-9\-/.]+)`),
	regexp.MustCompile(`(?i)cert\s*(?:no|number|#|:)[:\s]*([A-Z0-9\-/.]+)`),
	regexp.MustCompile(`(?i)(?:no|number)[:.\s]+([A-Z0-9\-/]{5,})`),
	regexp.MustCompile(`(?i)reference[:\s]*([A-Z0-9\-/]+)`),
	regexp.MustCompile(`(?i)reg(?:istration)?[:\s]*(?:no)?[:\s]*([A-Z0-9\-/]+)`),
	regexp.MustCompile(`(?i)license\s*(?:no|number)?[:\s]*([A-Z0-9\-/]+)`),
	// Bare formats like MI-12345 or C-EC-12201, last: no anchoring label.
	regexp.MustCompile(`(?i)([A-Z]{2,3}[\-/][A-Z0-9\-/]+)`),
}

// ExtractCertNumber returns the first plausible certificate number in text,
// or ok=false when no pattern yields one. A number is never guessed: absence
// is the correct output when evidence is insufficient.
func ExtractCertNumber(text string) (string, bool) {
	for _, re := range certNumberPatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		token := strings.TrimSpace(m[1])
		if len(token) >= minCertNumberLen {
			return token, true
		}
	}
	return "", false
}
