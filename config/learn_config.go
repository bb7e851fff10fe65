package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    string

	// Storage
	DatabaseURL string
	RedisURL    string

	// JWT
	JWTSecret string

	// LLM
	LLMProvider    string
	OpenAIAPIKey   string
	OpenAIBaseURL  string
	LLMModel       string
	LLMMaxTokens   int
	LLMTemperature float64
	LLMTimeout     time.Duration

	// Embeddings
	EmbeddingModel       string
	EmbeddingTimeout     time.Duration
	EmbeddingMaxRetries  int
	EmbeddingConcurrency int

	// Ollama
	OllamaURL            string
	OllamaModel          string
	OllamaEmbeddingModel string

	// Pipeline
	ChunkMaxSize  int
	RetrievalTopK int

	// HTTP
	RateLimitRPM   int
	MaxUploadBytes int
	AllowedOrigins []string
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		RedisURL:    getEnv("REDIS_URL", ""),

		JWTSecret: getEnv("JWT_SECRET", ""),

		LLMProvider:    strings.ToLower(getEnv("LLM_PROVIDER", ProviderOpenAI)),
		OpenAIAPIKey:   getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:  getEnv("OPENAI_BASE_URL", ""),
		LLMModel:       getEnv("LLM_MODEL", "gpt-4o"),
		LLMMaxTokens:   getEnvInt("LLM_MAX_TOKENS", 2048),
		LLMTemperature: getEnvFloat("LLM_TEMPERATURE", 0.7),
		LLMTimeout:     time.Duration(getEnvInt("LLM_TIMEOUT_SEC", 60)) * time.Second,

		EmbeddingModel:       getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
		EmbeddingTimeout:     time.Duration(getEnvInt("EMBEDDING_TIMEOUT_SEC", 15)) * time.Second,
		EmbeddingMaxRetries:  getEnvInt("EMBEDDING_MAX_RETRIES", 2),
		EmbeddingConcurrency: getEnvInt("EMBEDDING_CONCURRENCY", 4),

		OllamaURL:            getEnv("OLLAMA_URL", "http://localhost:11434"),
		OllamaModel:          getEnv("OLLAMA_MODEL", "llama3.1"),
		OllamaEmbeddingModel: getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),

		ChunkMaxSize:  getEnvInt("CHUNK_MAX_SIZE", 500),
		RetrievalTopK: getEnvInt("RETRIEVAL_TOP_K", 3),

		RateLimitRPM:   getEnvInt("RATE_LIMIT_RPM", 60),
		MaxUploadBytes: getEnvInt("MAX_UPLOAD_MB", 10) * 1024 * 1024,
		AllowedOrigins: getEnvSlice("ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the pipeline cannot run with.
func (c *Config) Validate() error {
	switch c.LLMProvider {
	case ProviderOpenAI, ProviderOllama:
	default:
		return fmt.Errorf("invalid LLM_PROVIDER %q: want %s or %s", c.LLMProvider, ProviderOpenAI, ProviderOllama)
	}
	if c.ChunkMaxSize <= 0 {
		return fmt.Errorf("CHUNK_MAX_SIZE must be positive, got %d", c.ChunkMaxSize)
	}
	if c.RetrievalTopK <= 0 {
		return fmt.Errorf("RETRIEVAL_TOP_K must be positive, got %d", c.RetrievalTopK)
	}
	if c.EmbeddingConcurrency <= 0 {
		return fmt.Errorf("EMBEDDING_CONCURRENCY must be positive, got %d", c.EmbeddingConcurrency)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
