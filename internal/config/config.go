package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds every setting the service needs. It is constructed once in
// main and passed to the components that need it; nothing reads the
// environment after startup.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Reference ReferenceConfig `yaml:"reference"`
	Store     StoreConfig     `yaml:"store"`
	Scoring   ScoringConfig   `yaml:"scoring"`
	Minio     MinioConfig     `yaml:"minio"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

// ReferenceConfig describes where the reference transcripts come from.
// Exactly one source is used, chosen in this order: ObjectName (MinIO),
// URL, FilePath.
type ReferenceConfig struct {
	FilePath   string `yaml:"file_path"`
	URL        string `yaml:"url"`
	ObjectName string `yaml:"object_name"`
}

// StoreConfig configures the persisted leaderboard table.
type StoreConfig struct {
	LeaderboardFile string `yaml:"leaderboard_file"`
}

// ScoringConfig holds the tunables of the scoring stage.
type ScoringConfig struct {
	// ErrorCeiling caps per-sample WER/CER so a single pathological sample
	// cannot dominate the aggregate. The historical value is 2.0.
	ErrorCeiling float64 `yaml:"error_ceiling"`
	// DefaultWERWeight and DefaultCERWeight are the ranking weights used
	// when a caller does not supply its own. Expressed as 0-100.
	DefaultWERWeight float64 `yaml:"default_wer_weight"`
	DefaultCERWeight float64 `yaml:"default_cer_weight"`
	// ModelHubHost is the host an open-source model URL must point at.
	ModelHubHost string `yaml:"model_hub_host"`
}

// MinioConfig configures the optional object storage backend used to fetch the
// reference object and archive accepted submissions. Disabled when
// Endpoint is empty.
type MinioConfig struct {
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	BucketName      string `yaml:"bucket_name"`
	UseSSL          bool   `yaml:"use_ssl"`
}

// Default returns a Config populated with the defaults the service ships
// with.
func Default() Config {
	return Config{
		Server: ServerConfig{ListenAddr: ":8080"},
		Reference: ReferenceConfig{
			FilePath: "references.csv",
		},
		Store: StoreConfig{LeaderboardFile: "leaderboard.csv"},
		Scoring: ScoringConfig{
			ErrorCeiling:     2.0,
			DefaultWERWeight: 50,
			DefaultCERWeight: 50,
			ModelHubHost:     "huggingface.co",
		},
	}
}

// Load builds the Config: defaults, then the YAML file at path (skipped if
// path is empty or the file does not exist), then environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return cfg, fmt.Errorf("failed to read config file %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(&cfg)

	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	setString(&cfg.Server.ListenAddr, "LISTEN_ADDR")
	setString(&cfg.Store.LeaderboardFile, "LEADERBOARD_FILE")
	setString(&cfg.Reference.FilePath, "REFERENCE_FILE")
	setString(&cfg.Reference.URL, "REFERENCE_URL")
	setString(&cfg.Reference.ObjectName, "REFERENCE_OBJECT")
	setString(&cfg.Scoring.ModelHubHost, "MODEL_HUB_HOST")
	setFloat(&cfg.Scoring.ErrorCeiling, "ERROR_CEILING")
	setFloat(&cfg.Scoring.DefaultWERWeight, "WER_WEIGHT")
	setFloat(&cfg.Scoring.DefaultCERWeight, "CER_WEIGHT")

	setString(&cfg.Minio.Endpoint, "MINIO_ENDPOINT")
	setString(&cfg.Minio.AccessKeyID, "MINIO_ACCESS_KEY_ID")
	setString(&cfg.Minio.SecretAccessKey, "MINIO_SECRET_ACCESS_KEY")
	setString(&cfg.Minio.BucketName, "MINIO_BUCKET_NAME")
	if v := os.Getenv("MINIO_USE_SSL"); v != "" {
		useSSL, err := strconv.ParseBool(v)
		if err == nil {
			cfg.Minio.UseSSL = useSSL
		}
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setFloat(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			*dst = f
		}
	}
}

func (c Config) validate() error {
	if c.Store.LeaderboardFile == "" {
		return fmt.Errorf("leaderboard file path must not be empty")
	}
	if c.Scoring.ErrorCeiling <= 0 {
		return fmt.Errorf("error ceiling must be positive, got %v", c.Scoring.ErrorCeiling)
	}
	// The default weights are the fallback for unusable caller-supplied
	// weights, so they must themselves be normalizable.
	if c.Scoring.DefaultWERWeight < 0 || c.Scoring.DefaultCERWeight < 0 ||
		c.Scoring.DefaultWERWeight+c.Scoring.DefaultCERWeight <= 0 {
		return fmt.Errorf("default weights must be non-negative and sum to a positive value, got wer=%v cer=%v",
			c.Scoring.DefaultWERWeight, c.Scoring.DefaultCERWeight)
	}
	if c.Reference.FilePath == "" && c.Reference.URL == "" && c.Reference.ObjectName == "" {
		return fmt.Errorf("no reference source configured")
	}
	if c.Reference.ObjectName != "" && c.Minio.Endpoint == "" {
		return fmt.Errorf("reference object %q requires a configured MinIO endpoint", c.Reference.ObjectName)
	}
	return nil
}
