package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the CropCare server.
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Uploads    UploadsConfig
	Classifier ClassifierConfig
}

type ServerConfig struct {
	Port int
	Env  string
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	URL string
}

type UploadsConfig struct {
	Dir           string
	MaxUploadSize int64
	MaxDimension  int
}

type ClassifierConfig struct {
	Backend         string
	ClassifyTimeout time.Duration
	Embedding       EmbeddingConfig
	Remote          RemoteConfig
}

type EmbeddingConfig struct {
	BaseURL string
	Timeout time.Duration
}

type RemoteConfig struct {
	InferenceURL string
	Fallback     FallbackConfig
}

// FallbackConfig is the deterministic result returned when the remote
// inference endpoint fails. The pipeline always produces some diagnosis.
type FallbackConfig struct {
	Crop           string
	Disease        string
	ScientificName string
	Confidence     float64
}

var validBackends = map[string]bool{
	"embedding": true,
	"remote":    true,
}

// Load reads configuration from environment variables and returns a validated Config.
// Returns an error with a descriptive message if any required value is missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: envInt("CROPCARE_PORT", 8080),
			Env:  envString("CROPCARE_ENV", "development"),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		},
		Uploads: UploadsConfig{
			Dir:           envString("UPLOAD_DIR", "uploads"),
			MaxUploadSize: int64(envInt("MAX_UPLOAD_SIZE_MB", 10)) << 20,
			MaxDimension:  envInt("MAX_IMAGE_DIMENSION", 512),
		},
		Classifier: ClassifierConfig{
			Backend:         os.Getenv("CLASSIFIER_BACKEND"),
			ClassifyTimeout: envDurationSecs("CLASSIFY_TIMEOUT_SECS", 5*time.Second),
			Embedding: EmbeddingConfig{
				BaseURL: envString("EMBEDDING_BASE_URL", "http://localhost:8501"),
				Timeout: envDurationSecs("EMBEDDING_TIMEOUT_SECS", 10*time.Second),
			},
			Remote: RemoteConfig{
				InferenceURL: os.Getenv("INFERENCE_URL"),
				Fallback: FallbackConfig{
					Crop:           envString("FALLBACK_CROP", "Tomato"),
					Disease:        envString("FALLBACK_DISEASE", "Early Blight"),
					ScientificName: envString("FALLBACK_SCIENTIFIC_NAME", "Alternaria solani"),
					Confidence:     envFloat("FALLBACK_CONFIDENCE", 50.0),
				},
			},
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}

	if c.Uploads.Dir == "" {
		return fmt.Errorf("UPLOAD_DIR must not be empty")
	}
	if c.Uploads.MaxDimension <= 0 {
		return fmt.Errorf("MAX_IMAGE_DIMENSION must be positive, got %d", c.Uploads.MaxDimension)
	}

	if c.Classifier.Backend == "" {
		return fmt.Errorf("CLASSIFIER_BACKEND is required")
	}
	if !validBackends[c.Classifier.Backend] {
		return fmt.Errorf("CLASSIFIER_BACKEND must be one of embedding, remote; got %q", c.Classifier.Backend)
	}

	if c.Classifier.Backend == "embedding" {
		u := c.Classifier.Embedding.BaseURL
		if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
			return fmt.Errorf("EMBEDDING_BASE_URL must start with http:// or https://, got %q", u)
		}
	}
	if c.Classifier.Backend == "remote" && c.Classifier.Remote.InferenceURL == "" {
		return fmt.Errorf("INFERENCE_URL is required when CLASSIFIER_BACKEND is remote")
	}

	return nil
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func envFloat(key string, defaultVal float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return defaultVal
	}
	return f
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}

func envDurationSecs(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	secs, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return time.Duration(secs) * time.Second
}
