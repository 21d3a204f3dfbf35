package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadJSON(t *testing.T) {
	t.Parallel()

	jsonData := `[
		{"entity_id": "acme", "period": 2022, "scope1": 120.5, "assured": true,
		 "credibility": {"score": 2.5, "alignment": 2, "realism": 3},
		 "targets": [{"description": "net zero", "target_period": 2045}]},
		{"entity_id": "acme", "period": 2023, "scope2": 40}
	]`

	records, err := ReadJSON(strings.NewReader(jsonData))
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "acme", records[0].EntityID)
	require.NotNil(t, records[0].Credibility)
	assert.InDelta(t, 2.5, records[0].Credibility.Score, 0.0001)
	require.Len(t, records[0].Targets, 1)
	assert.Equal(t, 2045, *records[0].Targets[0].TargetPeriod)

	assert.Nil(t, records[1].Scope1)
	require.NotNil(t, records[1].Scope2)
}

func TestReadJSON_Malformed(t *testing.T) {
	t.Parallel()

	_, err := ReadJSON(strings.NewReader(`{"not": "an array"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode JSON")
}

func TestReadJSON_InvalidRecords(t *testing.T) {
	t.Parallel()

	_, err := ReadJSON(strings.NewReader(`[
		{"entity_id": "acme", "period": 2022},
		{"entity_id": "acme", "period": 2022}
	]`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate record")
}
