package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	LLMBaseURL         string
	LLMModelName       string
	LLMAPIKey          string
	EmbeddingBaseURL   string
	EmbeddingModelName string
	DBPath             string
	QdrantURL          string
	QdrantCollection   string
	QdrantVectorSize   int
	APIPort            string
	LogLevel           slog.Level
	LogFormat          string

	// Insight request limits and retrieval parameters.
	InsightMinInterval time.Duration
	RateLimitMaxUsers  int
	MatchThreshold     float32
	MatchCount         int

	// Per-call timeouts for external services.
	EmbedTimeout    time.Duration
	GenerateTimeout time.Duration
	VectorTimeout   time.Duration
	StoreTimeout    time.Duration

	// Change feed worker settings.
	FeedPollInterval time.Duration
	FeedBatchSize    int
	FeedConcurrency  int
	FeedLease        time.Duration
}

// Load reads configuration from environment variables and returns a Config struct.
// It applies defaults for optional fields and validates required fields.
// If a .env file exists in the current directory or one of its parents, it is loaded first.
// Environment variables already set take precedence over .env file values.
func Load() (*Config, error) {
	_ = godotenv.Load()

	wd, err := os.Getwd()
	if err == nil {
		dir := wd
		for i := 0; i < 5; i++ {
			envPath := filepath.Join(dir, ".env")
			if _, err := os.Stat(envPath); err == nil {
				_ = godotenv.Load(envPath)
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	cfg := &Config{
		LLMBaseURL:         getEnv("LLM_BASE_URL", "http://localhost:8080"),
		LLMModelName:       getEnv("LLM_MODEL", "Llama-3.1-8B-Instruct"),
		LLMAPIKey:          getEnv("LLM_API_KEY", "dummy-key"),
		EmbeddingBaseURL:   getEnv("EMBEDDING_BASE_URL", "http://localhost:8081"),
		EmbeddingModelName: getEnv("EMBEDDING_MODEL_NAME", "granite-embedding-278m-multilingual"),
		DBPath:             getEnv("DB_PATH", "./data/notesync.db"),
		QdrantURL:          getEnv("QDRANT_URL", "http://localhost:6333"),
		QdrantCollection:   getEnv("QDRANT_COLLECTION", "documents"),
		APIPort:            getEnv("API_PORT", "9000"),
		LogFormat:          strings.ToLower(getEnv("LOG_FORMAT", "text")),
	}

	// The vector size must match the embeddings model output. Changing it requires
	// recreating the Qdrant collection.
	vectorSizeStr := getEnv("QDRANT_VECTOR_SIZE", "")
	if vectorSizeStr == "" {
		return nil, fmt.Errorf("QDRANT_VECTOR_SIZE is required")
	}
	vectorSize, err := strconv.Atoi(vectorSizeStr)
	if err != nil {
		return nil, fmt.Errorf("QDRANT_VECTOR_SIZE must be a valid integer: %w", err)
	}
	if vectorSize <= 0 {
		return nil, fmt.Errorf("QDRANT_VECTOR_SIZE must be greater than 0")
	}
	cfg.QdrantVectorSize = vectorSize

	if err := cfg.LogLevel.UnmarshalText([]byte(getEnv("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("LOG_LEVEL is invalid: %w", err)
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("LOG_FORMAT must be text or json, got %q", cfg.LogFormat)
	}

	intervalMs, err := getEnvInt("INSIGHT_MIN_INTERVAL_MS", 60000)
	if err != nil {
		return nil, err
	}
	if intervalMs < 0 {
		return nil, fmt.Errorf("INSIGHT_MIN_INTERVAL_MS must not be negative")
	}
	cfg.InsightMinInterval = time.Duration(intervalMs) * time.Millisecond

	if cfg.RateLimitMaxUsers, err = getEnvInt("RATE_LIMIT_MAX_USERS", 10000); err != nil {
		return nil, err
	}
	if cfg.RateLimitMaxUsers <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_MAX_USERS must be greater than 0")
	}

	threshold, err := strconv.ParseFloat(getEnv("MATCH_THRESHOLD", "0.8"), 32)
	if err != nil {
		return nil, fmt.Errorf("MATCH_THRESHOLD must be a valid number: %w", err)
	}
	if threshold < 0 || threshold > 1 {
		return nil, fmt.Errorf("MATCH_THRESHOLD must be between 0 and 1")
	}
	cfg.MatchThreshold = float32(threshold)

	if cfg.MatchCount, err = getEnvInt("MATCH_COUNT", 5); err != nil {
		return nil, err
	}
	if cfg.MatchCount <= 0 {
		return nil, fmt.Errorf("MATCH_COUNT must be greater than 0")
	}

	durations := []struct {
		key    string
		def    time.Duration
		target *time.Duration
	}{
		{"EMBED_TIMEOUT", 30 * time.Second, &cfg.EmbedTimeout},
		{"GENERATE_TIMEOUT", 60 * time.Second, &cfg.GenerateTimeout},
		{"VECTOR_TIMEOUT", 10 * time.Second, &cfg.VectorTimeout},
		{"STORE_TIMEOUT", 5 * time.Second, &cfg.StoreTimeout},
		{"FEED_POLL_INTERVAL", 500 * time.Millisecond, &cfg.FeedPollInterval},
		{"FEED_LEASE", 5 * time.Minute, &cfg.FeedLease},
	}
	for _, d := range durations {
		v, err := getEnvDuration(d.key, d.def)
		if err != nil {
			return nil, err
		}
		*d.target = v
	}

	if cfg.FeedBatchSize, err = getEnvInt("FEED_BATCH_SIZE", 64); err != nil {
		return nil, err
	}
	if cfg.FeedConcurrency, err = getEnvInt("FEED_CONCURRENCY", 4); err != nil {
		return nil, err
	}
	if cfg.FeedBatchSize <= 0 || cfg.FeedConcurrency <= 0 {
		return nil, fmt.Errorf("FEED_BATCH_SIZE and FEED_CONCURRENCY must be greater than 0")
	}

	dataDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, nil
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt parses an integer environment variable, falling back to defaultValue when unset.
func getEnvInt(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	return v, nil
}

// getEnvDuration parses a Go duration string (e.g. "30s"), falling back to defaultValue when unset.
func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid duration: %w", key, err)
	}
	if v <= 0 {
		return 0, fmt.Errorf("%s must be greater than 0", key)
	}
	return v, nil
}
