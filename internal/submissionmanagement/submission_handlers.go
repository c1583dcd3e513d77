package submissionmanagement

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"bambara-asr-leaderboard/internal/coreengine/rankingpresenter"
	"bambara-asr-leaderboard/internal/coreengine/scoringengine"
)

// maxUploadSize bounds the prediction CSV. 20 MB is far beyond any real
// benchmark submission.
const maxUploadSize = 20 << 20

// Handler exposes the submission endpoint over HTTP.
type Handler struct {
	pipeline *Pipeline
	weights  rankingpresenter.Weights
}

// NewHandler creates the submission handler. weights are the display
// weights used for the refreshed table returned with a success response.
func NewHandler(pipeline *Pipeline, weights rankingpresenter.Weights) *Handler {
	return &Handler{pipeline: pipeline, weights: weights}
}

// Submit handles POST /api/submissions. It expects multipart/form-data
// with fields model_name, license_type, model_url and a CSV file under
// "file". The response is always a human-readable message; successes also
// carry the metrics and the refreshed display table.
func (h *Handler) Submit(c *gin.Context) {
	if err := c.Request.ParseMultipartForm(maxUploadSize); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Failed to parse multipart form: %v. Max size: %d MB", err, maxUploadSize>>20)})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Error: Please upload a CSV file."})
		} else {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Failed to get uploaded file: %v", err)})
		}
		return
	}
	if fileHeader.Size > maxUploadSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Error: File size exceeds limit of %d MB", maxUploadSize>>20)})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Failed to open uploaded file: %v", err)})
		return
	}
	defer file.Close()

	rawCSV, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Failed to read uploaded file: %v", err)})
		return
	}

	license, ok := ParseLicense(c.PostForm("license_type"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Error: license_type must be 'Open Source' or 'Proprietary', got %q", c.PostForm("license_type"))})
		return
	}

	header, rows, err := ParseCSV(rawCSV)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Error processing submission: %v", err)})
		return
	}

	sub := Submission{
		ModelName: c.PostForm("model_name"),
		License:   license,
		ModelURL:  c.PostForm("model_url"),
		Rows:      rows,
	}

	result, err := h.pipeline.Process(c.Request.Context(), sub, header, rawCSV, fileHeader.Filename)
	if err != nil {
		var verr *ValidationError
		switch {
		case errors.As(err, &verr):
			c.JSON(http.StatusBadRequest, gin.H{"error": verr.Message, "kind": string(verr.Kind)})
		case errors.Is(err, scoringengine.ErrNoValidSamples):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Error: No valid samples for WER/CER calculation. Please check your submission CSV."})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Error processing submission: %v", err)})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":        result.Message,
		"wer":            rankingpresenter.FormatPercent(result.WER),
		"cer":            rankingpresenter.FormatPercent(result.CER),
		"combined_score": rankingpresenter.FormatPercent(result.CombinedScore),
		"scored":         result.Scored,
		"skipped":        result.Skipped,
		"leaderboard":    rankingpresenter.Rank(result.Table, h.weights),
	})
}
