// ABOUTME: Retrieval-augmented chat orchestrator
// ABOUTME: Embeds the question, retrieves context, and grounds the answer
package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/docchat/docchat/internal/index"
	"github.com/docchat/docchat/internal/llm"
	"github.com/docchat/docchat/internal/models"
)

// ErrInvalidInput reports a question rejected before any backend call.
var ErrInvalidInput = fmt.Errorf("invalid input")

// DefaultTopK is how many chunks ground an answer by default.
const DefaultTopK = 4

// historyWindow is how many trailing history turns reach the prompt.
const historyWindow = 6

const systemPrompt = `You are a helpful company assistant. Answer the user's question using ONLY the provided context.
If the answer is not in the context, say you don't have that information.
Be concise and include a short bullet list of sources used.`

// Orchestrator answers questions grounded in retrieved chunks. It is
// stateless across calls: history goes in, updated history comes out, and
// nothing is shared between concurrent callers.
type Orchestrator struct {
	embedder  llm.Embedder
	store     index.Index
	completer llm.Completer
	topK      int
}

// New creates an orchestrator. topK <= 0 falls back to DefaultTopK.
func New(embedder llm.Embedder, store index.Index, completer llm.Completer, topK int) *Orchestrator {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Orchestrator{
		embedder:  embedder,
		store:     store,
		completer: completer,
		topK:      topK,
	}
}

// Result carries the grounded answer, its citations in retrieval order,
// and the updated history for the caller to persist.
type Result struct {
	Answer  string        `json:"answer"`
	Sources []string      `json:"sources"`
	History []models.Turn `json:"history"`
}

// Answer retrieves the chunks nearest the question, asks the completion
// model with the grounding context and the trailing history window, and
// returns the answer with source citations. An empty or whitespace-only
// question fails with ErrInvalidInput before any backend call.
func (o *Orchestrator) Answer(ctx context.Context, question string, history []models.Turn) (*Result, error) {
	if strings.TrimSpace(question) == "" {
		return nil, fmt.Errorf("%w: question must not be empty", ErrInvalidInput)
	}

	vectors, err := o.embedder.Embed(ctx, []string{question})
	if err != nil {
		return nil, fmt.Errorf("embedding question: %w", err)
	}

	retrieved, err := o.store.Query(ctx, vectors[0], o.topK)
	if err != nil {
		return nil, fmt.Errorf("retrieving context: %w", err)
	}

	messages := assembleMessages(question, retrieved, history)

	answer, err := o.completer.Complete(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("generating answer: %w", err)
	}

	// One citation per retrieved chunk, retrieval order, not deduplicated:
	// a source retrieved twice grounded two distinct context lines.
	sources := make([]string, len(retrieved))
	for i, res := range retrieved {
		sources[i] = res.Chunk.Citation()
	}

	return &Result{
		Answer:  answer,
		Sources: sources,
		History: models.AppendExchange(history, question, answer),
	}, nil
}

// assembleMessages builds the completion request: system instruction,
// the last historyWindow turns in chronological order, then the user
// message carrying the context block and the question.
func assembleMessages(question string, retrieved []models.SearchResult, history []models.Turn) []models.Turn {
	messages := make([]models.Turn, 0, historyWindow+2)
	messages = append(messages, models.Turn{Role: models.RoleSystem, Content: systemPrompt})
	messages = append(messages, models.Tail(history, historyWindow)...)
	messages = append(messages, models.Turn{
		Role:    models.RoleUser,
		Content: formatUserMessage(question, retrieved),
	})
	return messages
}

// formatContext joins retrieved chunk texts as tagged lines in retrieval
// (ascending-distance) order.
func formatContext(retrieved []models.SearchResult) string {
	lines := make([]string, len(retrieved))
	for i, res := range retrieved {
		lines[i] = fmt.Sprintf("[%s] %s", res.Chunk.Citation(), res.Chunk.Text)
	}
	return strings.Join(lines, "\n\n")
}

func formatUserMessage(question string, retrieved []models.SearchResult) string {
	return fmt.Sprintf("Context:\n%s\n\nUser question: %s\n\nRemember to cite sources as [filename#chunk].",
		formatContext(retrieved), question)
}
