package ingest

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

func writeWorkbook(t *testing.T, rows [][]string) string {
	t.Helper()

	f := xlsx.NewFile()
	sheet, err := f.AddSheet("disclosures")
	require.NoError(t, err)
	for _, cells := range rows {
		row := sheet.AddRow()
		for _, c := range cells {
			row.AddCell().SetString(c)
		}
	}

	path := filepath.Join(t.TempDir(), "records.xlsx")
	require.NoError(t, f.Save(path))
	return path
}

func TestReadXLSX(t *testing.T) {
	t.Parallel()

	path := writeWorkbook(t, [][]string{
		{"entity_id", "period", "scope1", "scope2", "credibility_score", "assured", "targets"},
		{"acme", "2022", "120.5", "30", "2.5", "true", "net zero@2045"},
		{"", "", "", "", "", "", ""}, // blank rows are skipped
		{"globex", "2022", "", "", "", "", ""},
	})

	records, err := ReadXLSX(path)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "acme", records[0].EntityID)
	assert.Equal(t, 2022, records[0].Period)
	require.NotNil(t, records[0].Scope1)
	assert.InDelta(t, 120.5, *records[0].Scope1, 0.0001)
	require.NotNil(t, records[0].Credibility)
	assert.True(t, records[0].Assured)
	require.Len(t, records[0].Targets, 1)
	assert.Equal(t, 2045, *records[0].Targets[0].TargetPeriod)

	assert.Equal(t, "globex", records[1].EntityID)
	assert.Nil(t, records[1].Scope1)
}

func TestReadXLSX_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := ReadXLSX(filepath.Join(t.TempDir(), "nope.xlsx"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open xlsx")
}

func TestReadXLSX_MissingHeaderColumn(t *testing.T) {
	t.Parallel()

	path := writeWorkbook(t, [][]string{
		{"entity_id", "scope1"},
		{"acme", "100"},
	})

	_, err := ReadXLSX(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required column")
}
