package leaderboardmanagement

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bambara-asr-leaderboard/internal/config"
	"bambara-asr-leaderboard/internal/datastore"
)

func newTestRouter(t *testing.T, entries []datastore.LeaderboardEntry) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := datastore.NewLeaderboardStore(filepath.Join(t.TempDir(), "leaderboard.csv"))
	if len(entries) > 0 {
		require.NoError(t, store.Persist(entries))
	}

	handler := NewHandler(store, config.ScoringConfig{
		ErrorCeiling:     2.0,
		DefaultWERWeight: 50,
		DefaultCERWeight: 50,
		ModelHubHost:     "huggingface.co",
	})

	router := gin.New()
	router.GET("/api/leaderboard", handler.GetLeaderboard)
	router.GET("/api/models", handler.ListModels)
	router.GET("/api/models/:name", handler.GetModelDetail)
	router.GET("/api/compare", handler.CompareModels)
	return router
}

func entry(name string, wer, cer float64) datastore.LeaderboardEntry {
	return datastore.LeaderboardEntry{
		ModelName:     name,
		WER:           wer,
		CER:           cer,
		CombinedScore: 0.5*wer + 0.5*cer,
		Timestamp:     "2025-06-01 12:00:00",
		License:       datastore.LicenseProprietary,
	}
}

func get(router *gin.Engine, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestGetLeaderboardEmptyStore(t *testing.T) {
	router := newTestRouter(t, nil)

	rec := get(router, "/api/leaderboard")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Entries []json.RawMessage `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.Entries)
	assert.NotContains(t, rec.Body.String(), "best_model")
}

func TestGetLeaderboardRanksWithQueryWeights(t *testing.T) {
	router := newTestRouter(t, []datastore.LeaderboardEntry{
		entry("high-wer-low-cer", 0.20, 0.01),
		entry("low-wer-high-cer", 0.10, 0.50),
	})

	rec := get(router, "/api/leaderboard?wer_weight=100&cer_weight=0")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Description string `json:"description"`
		Entries     []struct {
			ModelName string `json:"model_name"`
			Rank      int    `json:"rank"`
		} `json:"entries"`
		BestModel struct {
			ModelName string `json:"model_name"`
		} `json:"best_model"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	require.Len(t, resp.Entries, 2)
	assert.Equal(t, "low-wer-high-cer", resp.Entries[0].ModelName)
	assert.Equal(t, "low-wer-high-cer", resp.BestModel.ModelName)
	assert.Equal(t, "Ranking by WER only", resp.Description)
}

func TestListModels(t *testing.T) {
	router := newTestRouter(t, []datastore.LeaderboardEntry{
		entry("zeta", 0.2, 0.2),
		entry("alpha", 0.1, 0.1),
	})

	rec := get(router, "/api/models")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Models []string `json:"models"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"alpha", "zeta"}, resp.Models)
}

func TestGetModelDetail(t *testing.T) {
	router := newTestRouter(t, []datastore.LeaderboardEntry{entry("bambara-whisper", 0.10, 0.20)})

	rec := get(router, "/api/models/bambara-whisper")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "10.00%")

	rec = get(router, "/api/models/absent")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No data available for model: absent")
}

func TestCompareModels(t *testing.T) {
	router := newTestRouter(t, []datastore.LeaderboardEntry{
		entry("a", 0.10, 0.20),
		entry("b", 0.30, 0.10),
	})

	rec := get(router, "/api/compare?model_a=a&model_b=b")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Rows []struct {
			Metric string  `json:"metric"`
			Delta  float64 `json:"delta"`
		} `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Rows, 3)
	assert.InDelta(t, -0.20, resp.Rows[0].Delta, 1e-9)

	rec = get(router, "/api/compare?model_a=a&model_b=a")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "two different models")
}
