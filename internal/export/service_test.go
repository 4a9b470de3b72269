package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/mariner-tools/certtrack/constants"
	"github.com/mariner-tools/certtrack/internal/entity"
	"github.com/mariner-tools/certtrack/internal/status"
)

var exportToday = time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

func strptr(s string) *string { return &s }

func sampleCerts() []entity.Certificate {
	return []entity.Certificate{
		{
			ID:         uuid.New(),
			Name:       "Medical Certificate",
			Issuer:     "Seafarers Clinic",
			Category:   constants.General,
			Holder:     "P. Filippakis",
			ExpiryDate: strptr(exportToday.AddDate(0, 0, -1).Format("2006-01-02")),
		},
		{
			ID:           uuid.New(),
			Name:         "Basic Safety Training",
			Issuer:       "Maritime Academy",
			Category:     constants.STCW,
			Holder:       "P. Filippakis",
			CertNumber:   strptr("BST-4711"),
			IssuanceDate: strptr("2024-01-10"),
		},
	}
}

func TestCSV(t *testing.T) {
	svc := NewService(status.NewEngine(status.DefaultConfig()), nil, nil)

	out, err := svc.CSV(context.Background(), sampleCerts(), exportToday)
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, headers, records[0])
	assert.Equal(t, "Medical Certificate", records[1][0])
	assert.Equal(t, "expired", records[1][7])
	assert.Equal(t, "BST-4711", records[2][4])
	assert.Equal(t, "valid", records[2][7])
}

func TestXLSX(t *testing.T) {
	svc := NewService(status.NewEngine(status.DefaultConfig()), nil, nil)

	out, err := svc.XLSX(context.Background(), sampleCerts(), exportToday)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Certificates")
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(rows), 3)
	assert.Equal(t, "Name", rows[0][0])
	assert.Equal(t, "Basic Safety Training", rows[2][0])
	assert.Equal(t, "valid", rows[2][7])
}
