package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.ListenAddr)
	assert.Equal(t, "leaderboard.csv", cfg.Store.LeaderboardFile)
	assert.Equal(t, 2.0, cfg.Scoring.ErrorCeiling)
	assert.Equal(t, 50.0, cfg.Scoring.DefaultWERWeight)
	assert.Equal(t, 50.0, cfg.Scoring.DefaultCERWeight)
	assert.Equal(t, "huggingface.co", cfg.Scoring.ModelHubHost)
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  listen_addr: ":9000"
store:
  leaderboard_file: /data/board.csv
scoring:
  error_ceiling: 1.5
  default_wer_weight: 70
  default_cer_weight: 30
reference:
  file_path: /data/refs.csv
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Server.ListenAddr)
	assert.Equal(t, "/data/board.csv", cfg.Store.LeaderboardFile)
	assert.Equal(t, 1.5, cfg.Scoring.ErrorCeiling)
	assert.Equal(t, 70.0, cfg.Scoring.DefaultWERWeight)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.ListenAddr)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("LEADERBOARD_FILE", "/tmp/other.csv")
	t.Setenv("ERROR_CEILING", "1.0")
	t.Setenv("MODEL_HUB_HOST", "example.org")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/other.csv", cfg.Store.LeaderboardFile)
	assert.Equal(t, 1.0, cfg.Scoring.ErrorCeiling)
	assert.Equal(t, "example.org", cfg.Scoring.ModelHubHost)
}

func TestValidateRejectsBadConfig(t *testing.T) {
	t.Run("no reference source", func(t *testing.T) {
		cfg := Default()
		cfg.Reference = ReferenceConfig{}
		assert.Error(t, cfg.validate())
	})

	t.Run("non-positive ceiling", func(t *testing.T) {
		cfg := Default()
		cfg.Scoring.ErrorCeiling = 0
		assert.Error(t, cfg.validate())
	})

	t.Run("reference object without minio", func(t *testing.T) {
		cfg := Default()
		cfg.Reference = ReferenceConfig{ObjectName: "refs.csv"}
		assert.Error(t, cfg.validate())
	})

	t.Run("zero default weights", func(t *testing.T) {
		cfg := Default()
		cfg.Scoring.DefaultWERWeight = 0
		cfg.Scoring.DefaultCERWeight = 0
		assert.Error(t, cfg.validate())
	})

	t.Run("negative default weight", func(t *testing.T) {
		cfg := Default()
		cfg.Scoring.DefaultWERWeight = -50
		assert.Error(t, cfg.validate())
	})

	t.Run("empty leaderboard path", func(t *testing.T) {
		cfg := Default()
		cfg.Store.LeaderboardFile = ""
		assert.Error(t, cfg.validate())
	})
}

func TestLoadRejectsZeroWeightPairFromEnv(t *testing.T) {
	t.Setenv("WER_WEIGHT", "0")
	t.Setenv("CER_WEIGHT", "0")

	_, err := Load("")
	assert.Error(t, err)
}

func TestMalformedYAMLFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [not a map"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
