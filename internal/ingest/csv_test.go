package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCSV(t *testing.T) {
	t.Parallel()

	csvData := `entity_id,period,scope1,scope2,credibility_score,credibility_alignment,credibility_realism,assured,targets
acme,2022,120.5,30,2.5,2,3,true,net zero by 2045@2045
acme,2023,100,,3,,,false,
globex,2022,,,,,,,"net zero@2050;cut scope 3@2060"
`

	records, err := ReadCSV(strings.NewReader(csvData))
	require.NoError(t, err)
	require.Len(t, records, 3)

	first := records[0]
	assert.Equal(t, "acme", first.EntityID)
	assert.Equal(t, 2022, first.Period)
	require.NotNil(t, first.Scope1)
	assert.InDelta(t, 120.5, *first.Scope1, 0.0001)
	require.NotNil(t, first.Credibility)
	assert.InDelta(t, 2.5, first.Credibility.Score, 0.0001)
	assert.InDelta(t, 2, first.Credibility.Alignment, 0.0001)
	assert.True(t, first.Assured)
	require.Len(t, first.Targets, 1)
	assert.Equal(t, 2045, *first.Targets[0].TargetPeriod)

	second := records[1]
	assert.Nil(t, second.Scope2)
	assert.False(t, second.Assured)
	assert.Empty(t, second.Targets)

	third := records[2]
	assert.Nil(t, third.Scope1)
	assert.Nil(t, third.Credibility)
	require.Len(t, third.Targets, 2)
	assert.Equal(t, 2050, *third.Targets[0].TargetPeriod)
}

func TestReadCSV_ColumnOrderFree(t *testing.T) {
	t.Parallel()

	csvData := `period,entity_id,extra_column
2022,acme,ignored
`
	records, err := ReadCSV(strings.NewReader(csvData))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "acme", records[0].EntityID)
	assert.Equal(t, 2022, records[0].Period)
}

func TestReadCSV_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		csvData string
		wantErr string
	}{
		{
			name:    "missing period column",
			csvData: "entity_id,scope1\nacme,100\n",
			wantErr: "missing required column",
		},
		{
			name:    "bad period value",
			csvData: "entity_id,period\nacme,next year\n",
			wantErr: "period",
		},
		{
			name:    "bad scope value",
			csvData: "entity_id,period,scope1\nacme,2022,lots\n",
			wantErr: "scope1",
		},
		{
			name:    "bad assured value",
			csvData: "entity_id,period,assured\nacme,2022,maybe\n",
			wantErr: "assured",
		},
		{
			name:    "duplicate rows",
			csvData: "entity_id,period\nacme,2022\nacme,2022\n",
			wantErr: "duplicate record",
		},
		{
			name:    "negative scope",
			csvData: "entity_id,period,scope1\nacme,2022,-10\n",
			wantErr: "finite and >= 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ReadCSV(strings.NewReader(tt.csvData))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
