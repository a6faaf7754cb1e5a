// ABOUTME: Shared setup and utility functions for CLI commands
// ABOUTME: Builds the LLM client and index backend from configuration
package commands

import (
	"fmt"

	"github.com/docchat/docchat/internal/config"
	"github.com/docchat/docchat/internal/index"
	"github.com/docchat/docchat/internal/index/chroma"
	"github.com/docchat/docchat/internal/index/sqlite"
	"github.com/docchat/docchat/internal/llm"
)

// newLLMClient builds the embedding/completion client from config
func newLLMClient(cfg *config.Config) (*llm.Client, error) {
	client, err := llm.NewClient(llm.ClientConfig{
		BaseURL:        cfg.BaseURL,
		APIKey:         cfg.APIKey,
		ChatModel:      cfg.ChatModel,
		EmbeddingModel: cfg.EmbeddingModel,
		Temperature:    cfg.Temperature,
		EmbedTimeout:   cfg.EmbedTimeout,
		ChatTimeout:    cfg.ChatTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("initializing LLM client: %w", err)
	}
	return client, nil
}

// openIndex opens the configured index backend. The returned cleanup
// must be called when the command is done with the index.
func openIndex(cfg *config.Config) (index.Index, func() error, error) {
	switch cfg.IndexBackend {
	case config.BackendChroma:
		store := chroma.New(chroma.Config{
			URL:        cfg.ChromaURL,
			Collection: cfg.Collection,
		})
		return store, func() error { return nil }, nil
	default:
		store, err := sqlite.Open(cfg.DataDir, cfg.Collection)
		if err != nil {
			return nil, nil, fmt.Errorf("opening index: %w", err)
		}
		return store, store.Close, nil
	}
}

// truncate shortens a string to maxLen, adding "..." if truncated
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return string(runes[:maxLen-3]) + "..."
}

// validatePositiveInt returns error if n is not positive
func validatePositiveInt(n int, name string) error {
	if n <= 0 {
		return fmt.Errorf("%s must be positive, got %d", name, n)
	}
	return nil
}
