package constants

import (
	"strings"
)

type Category string

const (
	General           Category = "General"
	CoCEndorsements   Category = "CoC & Endorsements"
	STCW              Category = "STCW"
	NonSTCW           Category = "Non-STCW"
	IdentityDocuments Category = "Identity Documents"
)

var allCategories = []Category{
	General,
	CoCEndorsements,
	STCW,
	NonSTCW,
	IdentityDocuments,
}

func AsStringSlice() []string {
	result := make([]string, len(allCategories))
	for i, cat := range allCategories {
		result[i] = string(cat)
	}
	return result
}

func Canonicalize(input string) (Category, bool) {
	if input == "" {
		return General, false
	}

	normalized := strings.ToLower(strings.TrimSpace(input))

	// synonyms map
	synonyms := map[string]Category{
		"coc":          CoCEndorsements,
		"endorsement":  CoCEndorsements,
		"endorsements": CoCEndorsements,
		"stcw95":       STCW,
		"stcw 95":      STCW,
		"non stcw":     NonSTCW,
		"nonstcw":      NonSTCW,
		"identity":     IdentityDocuments,
		"id":           IdentityDocuments,
		"passport":     IdentityDocuments,
	}

	if cat, ok := synonyms[normalized]; ok {
		return cat, true
	}

	// check if it matches any category string
	for _, cat := range allCategories {
		if normalized == strings.ToLower(string(cat)) {
			return cat, true
		}
	}

	return General, false
}
