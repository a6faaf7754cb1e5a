// ABOUTME: Centralized configuration for the docchat RAG pipeline
// ABOUTME: Loads from environment variables with validation and defaults
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/adrg/xdg"
)

// Index backend selectors.
const (
	BackendSQLite = "sqlite"
	BackendChroma = "chroma"
)

// Config holds all configuration for the docchat system
type Config struct {
	// LLM backend settings (OpenAI-compatible; defaults target local Ollama)
	BaseURL        string
	APIKey         string
	ChatModel      string
	EmbeddingModel string
	Temperature    float32
	EmbedTimeout   time.Duration
	ChatTimeout    time.Duration

	// Index settings
	IndexBackend string
	ChromaURL    string
	Collection   string
	DataDir      string

	// Pipeline settings
	ChunkSize    int
	ChunkOverlap int
	BatchSize    int
	TopK         int

	// Web settings
	HTTPAddr string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		BaseURL:        getEnv("OPENAI_BASE_URL", "http://127.0.0.1:11434/v1"),
		APIKey:         getEnv("OPENAI_API_KEY", "ollama"),
		ChatModel:      getEnv("CHAT_MODEL", "llama3.2:3b"),
		EmbeddingModel: getEnv("EMBEDDING_MODEL", "nomic-embed-text"),
		Temperature:    float32(getEnvFloat("CHAT_TEMPERATURE", 0.2)),
		EmbedTimeout:   getEnvDuration("EMBED_TIMEOUT", 120*time.Second),
		ChatTimeout:    getEnvDuration("CHAT_TIMEOUT", 600*time.Second),

		IndexBackend: getEnv("INDEX_BACKEND", BackendSQLite),
		ChromaURL:    getEnv("CHROMA_URL", "http://127.0.0.1:8000"),
		Collection:   getEnv("COLLECTION_NAME", "company_knowledge_base"),
		DataDir:      getEnv("DOCCHAT_DATA_DIR", filepath.Join(xdg.DataHome, "docchat")),

		ChunkSize:    getEnvInt("CHUNK_SIZE", 900),
		ChunkOverlap: getEnvInt("CHUNK_OVERLAP", 150),
		BatchSize:    getEnvInt("EMBED_BATCH_SIZE", 64),
		TopK:         getEnvInt("TOP_K", 4),

		HTTPAddr: getEnv("HTTP_ADDR", ":5000"),
	}

	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("CHUNK_SIZE must be positive, got %d", c.ChunkSize)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("CHUNK_OVERLAP must be in [0, CHUNK_SIZE), got %d", c.ChunkOverlap)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("EMBED_BATCH_SIZE must be positive, got %d", c.BatchSize)
	}
	if c.TopK <= 0 {
		return fmt.Errorf("TOP_K must be positive, got %d", c.TopK)
	}
	if c.IndexBackend != BackendSQLite && c.IndexBackend != BackendChroma {
		return fmt.Errorf("INDEX_BACKEND must be %q or %q, got %q", BackendSQLite, BackendChroma, c.IndexBackend)
	}
	if c.Collection == "" {
		return fmt.Errorf("COLLECTION_NAME must not be empty")
	}
	return nil
}

// Helper functions
func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
