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
	OpenAIAPIKey       string
	LLMBaseURL         string
	LLMModelName       string
	LLMTemperature     float32
	EmbeddingModelName string
	QdrantURL          string
	QdrantCollection   string
	QdrantVectorSize   int
	RetrieverK         int
	DBPath             string
	APIPort            string
	JWTSecret          string
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
	LogLevel           slog.Level
	LogFormat          string
	OTLPEndpoint       string
}

// Load reads configuration from environment variables and returns a Config struct.
// It applies defaults for optional fields and validates required fields.
// If a .env file exists in the current directory or one of its parents, it will be loaded automatically.
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
		OpenAIAPIKey:       getEnv("OPENAI_API_KEY", ""),
		LLMBaseURL:         getEnv("LLM_BASE_URL", "https://api.openai.com/v1"),
		LLMModelName:       getEnv("LLM_MODEL", "gpt-3.5-turbo"),
		EmbeddingModelName: getEnv("EMBEDDING_MODEL_NAME", "text-embedding-3-small"),
		QdrantURL:          getEnv("QDRANT_URL", "http://localhost:6333"),
		QdrantCollection:   getEnv("QDRANT_COLLECTION", "rm-index"),
		DBPath:             getEnv("DB_PATH", "./data/rickmorty.db"),
		APIPort:            getEnv("API_PORT", "8000"),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		LogFormat:          strings.ToLower(getEnv("LOG_FORMAT", "text")),
		OTLPEndpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}

	if cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}

	temperature, err := strconv.ParseFloat(getEnv("LLM_TEMPERATURE", "0.7"), 32)
	if err != nil {
		return nil, fmt.Errorf("LLM_TEMPERATURE must be a valid number: %w", err)
	}
	if temperature < 0 || temperature > 2 {
		return nil, fmt.Errorf("LLM_TEMPERATURE must be between 0 and 2")
	}
	cfg.LLMTemperature = float32(temperature)

	// text-embedding-3-small produces 1536 dimensions. If the model changes,
	// the Qdrant collection must be recreated.
	vectorSize, err := strconv.Atoi(getEnv("QDRANT_VECTOR_SIZE", "1536"))
	if err != nil {
		return nil, fmt.Errorf("QDRANT_VECTOR_SIZE must be a valid integer: %w", err)
	}
	if vectorSize <= 0 {
		return nil, fmt.Errorf("QDRANT_VECTOR_SIZE must be greater than 0")
	}
	cfg.QdrantVectorSize = vectorSize

	k, err := strconv.Atoi(getEnv("RETRIEVER_K", "4"))
	if err != nil {
		return nil, fmt.Errorf("RETRIEVER_K must be a valid integer: %w", err)
	}
	if k < 1 || k > 20 {
		return nil, fmt.Errorf("RETRIEVER_K must be between 1 and 20")
	}
	cfg.RetrieverK = k

	if cfg.AccessTokenTTL, err = parseDuration("ACCESS_TOKEN_TTL", "30m"); err != nil {
		return nil, err
	}
	if cfg.RefreshTokenTTL, err = parseDuration("REFRESH_TOKEN_TTL", "24h"); err != nil {
		return nil, err
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(getEnv("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("LOG_LEVEL is invalid: %w", err)
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("LOG_FORMAT must be text or json")
	}

	dataDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, nil
}

// ValidateServer checks the settings only the API server needs.
func (c *Config) ValidateServer() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters")
	}
	return nil
}

func parseDuration(key, defaultValue string) (time.Duration, error) {
	d, err := time.ParseDuration(getEnv(key, defaultValue))
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid duration: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive", key)
	}
	return d, nil
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
