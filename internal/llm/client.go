// ABOUTME: OpenAI-compatible client for embeddings and chat completions
// ABOUTME: Works against Ollama's /v1 endpoint or OpenAI via a base URL
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/docchat/docchat/internal/models"
)

// Backend failure sentinels. The pipeline never retries these; retry
// policy belongs to the caller.
var (
	ErrEmbeddingBackend  = fmt.Errorf("embedding backend failure")
	ErrCompletionBackend = fmt.Errorf("completion backend failure")
)

// Embedder converts texts into fixed-dimension vectors, one per input,
// in input order. A failure on any text fails the whole call.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}

// Completer produces a chat completion for an ordered message sequence.
type Completer interface {
	Complete(ctx context.Context, messages []models.Turn) (string, error)
}

// ClientConfig holds configuration for the LLM client
type ClientConfig struct {
	BaseURL        string
	APIKey         string
	ChatModel      string
	EmbeddingModel string
	Temperature    float32
	EmbedTimeout   time.Duration
	ChatTimeout    time.Duration
}

// Client talks to one OpenAI-compatible backend for both embeddings and
// completions. It implements Embedder and Completer.
type Client struct {
	api            *openai.Client
	chatModel      string
	embeddingModel openai.EmbeddingModel
	temperature    float32
	embedTimeout   time.Duration
	chatTimeout    time.Duration
}

// NewClient creates a client for the configured backend.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	apiConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiConfig.BaseURL = cfg.BaseURL
	}

	embedTimeout := cfg.EmbedTimeout
	if embedTimeout == 0 {
		embedTimeout = 120 * time.Second
	}
	chatTimeout := cfg.ChatTimeout
	if chatTimeout == 0 {
		chatTimeout = 600 * time.Second
	}

	return &Client{
		api:            openai.NewClientWithConfig(apiConfig),
		chatModel:      cfg.ChatModel,
		embeddingModel: openai.EmbeddingModel(cfg.EmbeddingModel),
		temperature:    cfg.Temperature,
		embedTimeout:   embedTimeout,
		chatTimeout:    chatTimeout,
	}, nil
}

// Embed generates one embedding vector per input text, preserving order.
// Each text is submitted as its own request; the first failure aborts the
// call and no partial results are returned.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	vectors := make([][]float64, 0, len(texts))

	for i, text := range texts {
		vector, err := c.embedOne(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("%w: text %d of %d: %v", ErrEmbeddingBackend, i+1, len(texts), err)
		}
		vectors = append(vectors, vector)
	}
	return vectors, nil
}

func (c *Client) embedOne(ctx context.Context, text string) ([]float64, error) {
	ctx, cancel := context.WithTimeout(ctx, c.embedTimeout)
	defer cancel()

	resp, err := c.api.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
		Input: []string{text},
		Model: c.embeddingModel,
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("no embeddings returned")
	}

	embedding32 := resp.Data[0].Embedding
	embedding64 := make([]float64, len(embedding32))
	for i, v := range embedding32 {
		embedding64[i] = float64(v)
	}
	return embedding64, nil
}

// Complete sends the message sequence to the chat model and returns the
// trimmed answer text.
func (c *Client) Complete(ctx context.Context, messages []models.Turn) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.chatTimeout)
	defer cancel()

	chatMessages := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		chatMessages[i] = openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		}
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.chatModel,
		Messages:    chatMessages,
		Temperature: c.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCompletionBackend, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no completion choices returned", ErrCompletionBackend)
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
