package apigateway

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"bambara-asr-leaderboard/internal/leaderboardmanagement"
	"bambara-asr-leaderboard/internal/submissionmanagement"
)

// SetupRouter assembles the Gin router from the domain handlers.
func SetupRouter(submissions *submissionmanagement.Handler, leaderboard *leaderboardmanagement.Handler, referenceSize int) *gin.Engine {
	router := gin.Default()

	api := router.Group("/api")
	{
		api.POST("/submissions", submissions.Submit)
		api.GET("/leaderboard", leaderboard.GetLeaderboard)
		api.GET("/models", leaderboard.ListModels)
		api.GET("/models/:name", leaderboard.GetModelDetail)
		api.GET("/compare", leaderboard.CompareModels)
	}

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "reference_samples": referenceSize})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}
