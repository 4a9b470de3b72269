package catalog

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mariner-tools/certtrack/constants"
	"github.com/mariner-tools/certtrack/internal/entity"
)

func strptr(s string) *string { return &s }

func testCatalog() *Catalog {
	return &Catalog{Certificates: []entity.Certificate{
		{
			ID:         uuid.New(),
			Name:       "Trauma Management",
			Category:   constants.NonSTCW,
			SourceFile: strptr("trauma.pdf"),
		},
		{
			ID:           uuid.New(),
			Name:         "ECDIS Generic",
			Category:     constants.STCW,
			SourceFile:   strptr("ecdis.pdf"),
			CertNumber:   strptr("520.12.10723.2"),
			IssuanceDate: strptr("2020-10-12"),
		},
	}}
}

func TestMerge_FillsAbsentFields(t *testing.T) {
	cat := testCatalog()
	frags := []entity.Fragment{{
		File:         "trauma.pdf",
		CertNumber:   strptr("TMEC 1179"),
		IssuanceDate: strptr("2023-02-24"),
		ExpiryDate:   strptr("2025-02-24"),
	}}

	report := Merge(cat, frags, MergeOptions{})

	rec := cat.FindBySourceFile("trauma.pdf")
	require.NotNil(t, rec.CertNumber)
	assert.Equal(t, "TMEC 1179", *rec.CertNumber)
	assert.Equal(t, "2023-02-24", *rec.IssuanceDate)
	assert.Equal(t, "2025-02-24", *rec.ExpiryDate)
	assert.Len(t, report.Changes, 3)
	assert.Empty(t, report.Conflicts)
	assert.Empty(t, report.Unmatched)
	assert.False(t, rec.UpdatedAt.IsZero())
}

func TestMerge_NeverOverwritesWithoutForce(t *testing.T) {
	cat := testCatalog()
	frags := []entity.Fragment{{
		File:       "ecdis.pdf",
		CertNumber: strptr("WRONG-123"),
	}}

	report := Merge(cat, frags, MergeOptions{})

	rec := cat.FindBySourceFile("ecdis.pdf")
	assert.Equal(t, "520.12.10723.2", *rec.CertNumber)
	require.Len(t, report.Conflicts, 1)
	assert.Equal(t, "certNumber", report.Conflicts[0].Field)
	assert.Equal(t, "520.12.10723.2", report.Conflicts[0].Old)
	assert.Equal(t, "WRONG-123", report.Conflicts[0].New)
	assert.Empty(t, report.Changes)
}

func TestMerge_ForceOverwrites(t *testing.T) {
	cat := testCatalog()
	frags := []entity.Fragment{{
		File:       "ecdis.pdf",
		CertNumber: strptr("520.12.99999.9"),
	}}

	report := Merge(cat, frags, MergeOptions{Force: true})

	rec := cat.FindBySourceFile("ecdis.pdf")
	assert.Equal(t, "520.12.99999.9", *rec.CertNumber)
	require.Len(t, report.Changes, 1)
	assert.Equal(t, "520.12.10723.2", report.Changes[0].Old)
}

func TestMerge_IdenticalValueIsNoChange(t *testing.T) {
	cat := testCatalog()
	frags := []entity.Fragment{{
		File:       "ecdis.pdf",
		CertNumber: strptr("520.12.10723.2"),
	}}

	report := Merge(cat, frags, MergeOptions{})
	assert.Empty(t, report.Changes)
	assert.Empty(t, report.Conflicts)
}

func TestMerge_UnmatchedFragment(t *testing.T) {
	cat := testCatalog()
	frags := []entity.Fragment{{File: "unknown.pdf", CertNumber: strptr("X-1234")}}

	report := Merge(cat, frags, MergeOptions{})
	assert.Equal(t, []string{"unknown.pdf"}, report.Unmatched)
}

func TestMerge_AbsentFragmentFieldsLeaveRecordAlone(t *testing.T) {
	cat := testCatalog()
	frags := []entity.Fragment{{File: "ecdis.pdf"}}

	report := Merge(cat, frags, MergeOptions{})
	rec := cat.FindBySourceFile("ecdis.pdf")
	assert.Equal(t, "520.12.10723.2", *rec.CertNumber)
	assert.Empty(t, report.Changes)
	assert.True(t, rec.UpdatedAt.IsZero())
}
