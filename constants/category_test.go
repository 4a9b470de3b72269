package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Category
		ok    bool
	}{
		{"exact match", "STCW", STCW, true},
		{"case insensitive", "stcw", STCW, true},
		{"surrounding whitespace", "  General  ", General, true},
		{"coc synonym", "coc", CoCEndorsements, true},
		{"endorsement synonym", "endorsement", CoCEndorsements, true},
		{"stcw95 synonym", "stcw95", STCW, true},
		{"stcw 95 synonym", "stcw 95", STCW, true},
		{"non stcw synonym", "non stcw", NonSTCW, true},
		{"nonstcw synonym", "NonSTCW", NonSTCW, true},
		{"identity synonym", "identity", IdentityDocuments, true},
		{"passport synonym", "Passport", IdentityDocuments, true},
		{"full display name", "CoC & Endorsements", CoCEndorsements, true},
		{"unknown", "medical", General, false},
		{"empty", "", General, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Canonicalize(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestAsStringSlice(t *testing.T) {
	got := AsStringSlice()
	assert.Equal(t, []string{
		"General",
		"CoC & Endorsements",
		"STCW",
		"Non-STCW",
		"Identity Documents",
	}, got)

	// Every listed name canonicalizes back to itself.
	for _, name := range got {
		cat, ok := Canonicalize(name)
		assert.True(t, ok, name)
		assert.Equal(t, name, string(cat))
	}
}
