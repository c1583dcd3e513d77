package leaderboardmanagement

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"bambara-asr-leaderboard/internal/config"
	"bambara-asr-leaderboard/internal/coreengine/rankingpresenter"
	"bambara-asr-leaderboard/internal/datastore"
	"bambara-asr-leaderboard/internal/logging"
)

// Handler serves the read-only leaderboard views. It is a pure consumer
// of the store; nothing here mutates the table.
type Handler struct {
	store *datastore.LeaderboardStore
	cfg   config.ScoringConfig
}

// NewHandler creates the display handler.
func NewHandler(store *datastore.LeaderboardStore, cfg config.ScoringConfig) *Handler {
	return &Handler{store: store, cfg: cfg}
}

// GetLeaderboard handles GET /api/leaderboard. Optional wer_weight and
// cer_weight query parameters (0-100 slider values) re-rank the table;
// they are renormalized to fractions summing to 1 at this boundary.
func (h *Handler) GetLeaderboard(c *gin.Context) {
	table, err := h.store.Load()
	if err != nil {
		logging.Log.Error().Err(err).Msg("failed to load leaderboard")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load leaderboard"})
		return
	}

	weights := h.weightsFromQuery(c)
	ranked := rankingpresenter.Rank(table, weights)

	resp := gin.H{
		"weights":     gin.H{"wer": weights.WER, "cer": weights.CER},
		"description": weights.Description(),
		"entries":     ranked,
	}
	if best, ok := rankingpresenter.Best(table, weights); ok {
		resp["best_model"] = gin.H{
			"model_name":     best.ModelName,
			"wer":            rankingpresenter.FormatPercent(best.WER),
			"cer":            rankingpresenter.FormatPercent(best.CER),
			"combined_score": rankingpresenter.FormatPercent(weights.WER*best.WER + weights.CER*best.CER),
			"license":        best.License,
		}
	}
	c.JSON(http.StatusOK, resp)
}

// ListModels handles GET /api/models: the sorted distinct model names.
func (h *Handler) ListModels(c *gin.Context) {
	table, err := h.store.Load()
	if err != nil {
		logging.Log.Error().Err(err).Msg("failed to load leaderboard")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load leaderboard"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"models": rankingpresenter.ModelNames(table)})
}

// GetModelDetail handles GET /api/models/:name.
func (h *Handler) GetModelDetail(c *gin.Context) {
	table, err := h.store.Load()
	if err != nil {
		logging.Log.Error().Err(err).Msg("failed to load leaderboard")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load leaderboard"})
		return
	}

	name := c.Param("name")
	rows, ok := rankingpresenter.ModelDetail(table, name)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"info": "No data available for model: " + name})
		return
	}
	c.JSON(http.StatusOK, gin.H{"model_name": name, "metrics": rows})
}

// CompareModels handles GET /api/compare?model_a=&model_b=.
func (h *Handler) CompareModels(c *gin.Context) {
	table, err := h.store.Load()
	if err != nil {
		logging.Log.Error().Err(err).Msg("failed to load leaderboard")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load leaderboard"})
		return
	}

	comparison := rankingpresenter.Compare(table, c.Query("model_a"), c.Query("model_b"))
	c.JSON(http.StatusOK, comparison)
}

// weightsFromQuery reads the weight query parameters, falling back to the
// configured defaults when absent or unparseable.
func (h *Handler) weightsFromQuery(c *gin.Context) rankingpresenter.Weights {
	wer := h.cfg.DefaultWERWeight
	cer := h.cfg.DefaultCERWeight
	if raw := c.Query("wer_weight"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			wer = v
		}
	}
	if raw := c.Query("cer_weight"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			cer = v
		}
	}
	return rankingpresenter.NormalizeWeights(wer, cer, h.cfg.DefaultWERWeight, h.cfg.DefaultCERWeight)
}
