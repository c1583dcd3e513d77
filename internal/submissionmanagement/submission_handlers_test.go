package submissionmanagement

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bambara-asr-leaderboard/internal/coreengine/rankingpresenter"
	"bambara-asr-leaderboard/internal/datastore"
	"bambara-asr-leaderboard/internal/referencestore"
)

func newTestRouter(t *testing.T, refs referencestore.ReferenceSet) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := datastore.NewLeaderboardStore(filepath.Join(t.TempDir(), "leaderboard.csv"))
	pipeline := NewPipeline(testScoringConfig(), refs, store, nil)
	handler := NewHandler(pipeline, rankingpresenter.Weights{WER: 0.5, CER: 0.5})

	router := gin.New()
	router.POST("/api/submissions", handler.Submit)
	return router
}

func multipartSubmission(t *testing.T, fields map[string]string, csvBody string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if csvBody != "" {
		fw, err := w.CreateFormFile("file", "predictions.csv")
		require.NoError(t, err)
		_, err = fw.Write([]byte(csvBody))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestSubmitEndpointSuccess(t *testing.T) {
	router := newTestRouter(t, referencestore.ReferenceSet{"1": "bamanan kan", "2": "i ni ce"})

	body, contentType := multipartSubmission(t, map[string]string{
		"model_name":   "org/whisper-bambara",
		"license_type": "Open Source",
		"model_url":    "https://huggingface.co/org/whisper-bambara",
	}, "id,text\n1,bamanan kan\n2,i ni ce\n")

	req := httptest.NewRequest(http.MethodPost, "/api/submissions", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Message  string `json:"message"`
		WER      string `json:"wer"`
		CER      string `json:"cer"`
		Combined string `json:"combined_score"`
		Scored   int    `json:"scored"`
		Skipped  int    `json:"skipped"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Message, "Submission processed successfully")
	assert.Equal(t, "0.00%", resp.WER)
	assert.Equal(t, "0.00%", resp.CER)
	assert.Equal(t, "0.00%", resp.Combined)
	assert.Equal(t, 2, resp.Scored)
	assert.Equal(t, 0, resp.Skipped)
}

func TestSubmitEndpointValidationError(t *testing.T) {
	router := newTestRouter(t, referencestore.ReferenceSet{"1": "bamanan kan", "2": "i ni ce"})

	// Id "2" is missing from the upload.
	body, contentType := multipartSubmission(t, map[string]string{
		"model_name":   "org/model",
		"license_type": "Proprietary",
	}, "id,text\n1,bamanan kan\n")

	req := httptest.NewRequest(http.MethodPost, "/api/submissions", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Error string `json:"error"`
		Kind  string `json:"kind"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, string(KindMissingIDs), resp.Kind)
	assert.Contains(t, resp.Error, "2")
}

func TestSubmitEndpointMissingFile(t *testing.T) {
	router := newTestRouter(t, referencestore.ReferenceSet{"1": "a"})

	body, contentType := multipartSubmission(t, map[string]string{
		"model_name": "org/model",
	}, "")

	req := httptest.NewRequest(http.MethodPost, "/api/submissions", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "upload a CSV file")
}

func TestSubmitEndpointBadLicense(t *testing.T) {
	router := newTestRouter(t, referencestore.ReferenceSet{"1": "a"})

	body, contentType := multipartSubmission(t, map[string]string{
		"model_name":   "org/model",
		"license_type": "GPL",
	}, "id,text\n1,a\n")

	req := httptest.NewRequest(http.MethodPost, "/api/submissions", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "license_type")
}

func TestSubmitEndpointNoValidSamples(t *testing.T) {
	router := newTestRouter(t, referencestore.ReferenceSet{"1": "bamanan kan"})

	body, contentType := multipartSubmission(t, map[string]string{
		"model_name":   "org/model",
		"license_type": "Proprietary",
	}, "id,text\n1,???\n")

	req := httptest.NewRequest(http.MethodPost, "/api/submissions", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "No valid samples")
}
