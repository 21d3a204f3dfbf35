package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/sells-group/climate-rank/internal/model"
	"github.com/sells-group/climate-rank/internal/store"
)

func newTestMux(t *testing.T) (http.Handler, store.Store) {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	require.NoError(t, st.Migrate(context.Background()))

	return newServeMux(st, "stewardship", nil), st
}

func fp(v float64) *float64 { return &v }

func sampleRecords() []model.DisclosureRecord {
	return []model.DisclosureRecord{
		{EntityID: "acme", Period: 2022, Scope1: fp(100), Assured: true,
			Credibility: &model.Credibility{Score: 3}},
		{EntityID: "globex", Period: 2022, Scope1: fp(500),
			Credibility: &model.Credibility{Score: 1}},
	}
}

func TestServeMux_Health(t *testing.T) {
	mux, _ := newTestMux(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "application/json")

	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestServeMux_Profiles(t *testing.T) {
	mux, _ := newTestMux(t)

	req := httptest.NewRequest(http.MethodGet, "/profiles", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var body []map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Len(t, body, 2)
	assert.Equal(t, "stewardship", body[0]["name"])
	assert.Equal(t, "transition", body[1]["name"])
	assert.NotEmpty(t, body[0]["config_hash"])
}

func TestServeMux_Rank(t *testing.T) {
	mux, _ := newTestMux(t)

	payload, err := json.Marshal(rankRequest{Records: sampleRecords()})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/rank", bytes.NewReader(payload))
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var ranking model.Ranking
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &ranking))
	assert.Equal(t, "stewardship", ranking.Profile)
	require.Len(t, ranking.Scores, 2)
	assert.Equal(t, "acme", ranking.Scores[0].EntityID)
	assert.Empty(t, ranking.ID, "unsaved rankings carry no id")
}

func TestServeMux_Rank_SaveAndFetch(t *testing.T) {
	mux, _ := newTestMux(t)

	payload, err := json.Marshal(rankRequest{
		Profile: "transition",
		Records: sampleRecords(),
		Save:    true,
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/rank", bytes.NewReader(payload))
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var ranking model.Ranking
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &ranking))
	require.NotEmpty(t, ranking.ID)

	// The saved run is listed and fetchable.
	req = httptest.NewRequest(http.MethodGet, "/rankings", nil)
	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var summaries []model.RankingSummary
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &summaries))
	require.Len(t, summaries, 1)
	assert.Equal(t, ranking.ID, summaries[0].ID)
	assert.Equal(t, "transition", summaries[0].Profile)
	assert.Equal(t, 2, summaries[0].Entities)

	req = httptest.NewRequest(http.MethodGet, "/rankings/"+ranking.ID, nil)
	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var fetched model.Ranking
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &fetched))
	assert.Equal(t, ranking.ID, fetched.ID)
	require.Len(t, fetched.Scores, 2)
}

func TestServeMux_Rank_Errors(t *testing.T) {
	mux, _ := newTestMux(t)

	tests := []struct {
		name     string
		body     string
		wantCode int
		wantMsg  string
	}{
		{"malformed body", `{not json`, http.StatusBadRequest, "invalid request body"},
		{"unknown profile", `{"profile":"aggressive","records":[{"entity_id":"a","period":2022}]}`, http.StatusBadRequest, "unknown built-in"},
		{"empty cohort from empty store", `{}`, http.StatusUnprocessableEntity, "empty cohort"},
		{"invalid records", `{"records":[{"entity_id":"a","period":2022},{"entity_id":"a","period":2022}]}`, http.StatusBadRequest, "duplicate record"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/rank", bytes.NewReader([]byte(tt.body)))
			rr := httptest.NewRecorder()
			mux.ServeHTTP(rr, req)

			assert.Equal(t, tt.wantCode, rr.Code)
			assert.Contains(t, rr.Body.String(), tt.wantMsg)
		})
	}
}

func TestServeMux_GetRanking_NotFound(t *testing.T) {
	mux, _ := newTestMux(t)

	req := httptest.NewRequest(http.MethodGet, "/rankings/nope", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestServeMux_ListRankings_BadLimit(t *testing.T) {
	mux, _ := newTestMux(t)

	req := httptest.NewRequest(http.MethodGet, "/rankings?limit=zero", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestServeMux_RateLimit(t *testing.T) {
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	require.NoError(t, st.Migrate(context.Background()))

	mux := newServeMux(st, "stewardship", rate.NewLimiter(0, 1))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
}
