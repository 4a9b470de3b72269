package constants

import "strings"

// RenewalRule selects which unofficial renewal convention applies to a
// certificate. Many maritime certificates carry no printed expiry but have a
// conventional practical validity; the rule drives the renewal-suggested
// status.
type RenewalRule string

const (
	RenewalNone     RenewalRule = "NONE"
	RenewalAnnual   RenewalRule = "ANNUAL"    // one year from issuance
	RenewalFiveYear RenewalRule = "FIVE_YEAR" // five years from issuance
)

// DefaultAnnualTags are the certificate-name substrings that mark a
// certificate as annually renewed (short-validity specialized trainings).
var DefaultAnnualTags = []string{"IAATO", "AECO", "Svalbard"}

// ResolveRenewalRule maps a certificate to its renewal convention. Annual
// tags are matched by substring on the certificate name and take precedence;
// otherwise certificates in the general professional-competency category
// follow the five-year convention.
func ResolveRenewalRule(name string, category Category, annualTags []string) RenewalRule {
	for _, tag := range annualTags {
		if strings.Contains(name, tag) {
			return RenewalAnnual
		}
	}
	if category == STCW {
		return RenewalFiveYear
	}
	return RenewalNone
}
