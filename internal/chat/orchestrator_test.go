// ABOUTME: Tests for the chat orchestrator with fake backends
// ABOUTME: Verifies validation, prompt assembly, citations, and history
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/docchat/docchat/internal/index"
	"github.com/docchat/docchat/internal/llm"
	"github.com/docchat/docchat/internal/models"
)

type fakeEmbedder struct {
	calls int
	err   error
}

func (f *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float64, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	vectors := make([][]float64, len(texts))
	for i := range texts {
		vectors[i] = []float64{1, 0}
	}
	return vectors, nil
}

type fakeIndex struct {
	calls   int
	results []models.SearchResult
	err     error
	gotTopK int
}

func (f *fakeIndex) Reset(context.Context) error { return nil }

func (f *fakeIndex) Add(context.Context, []index.Record) error { return nil }

func (f *fakeIndex) Query(_ context.Context, _ []float64, topK int) ([]models.SearchResult, error) {
	f.calls++
	f.gotTopK = topK
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

type fakeCompleter struct {
	calls    int
	answer   string
	err      error
	messages []models.Turn
}

func (f *fakeCompleter) Complete(_ context.Context, messages []models.Turn) (string, error) {
	f.calls++
	f.messages = messages
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

func retrievedChunks() []models.SearchResult {
	return []models.SearchResult{
		{Chunk: models.Chunk{ID: "policy.md::0", Text: "refunds within 30 days", Source: "policy.md", Index: 0}, Distance: 0.1},
		{Chunk: models.Chunk{ID: "policy.md::2", Text: "contact support first", Source: "policy.md", Index: 2}, Distance: 0.3},
	}
}

func newOrchestrator(embedder *fakeEmbedder, store *fakeIndex, completer *fakeCompleter) *Orchestrator {
	return New(embedder, store, completer, 0)
}

func TestAnswer_EmptyQuestionNoBackendCalls(t *testing.T) {
	for _, question := range []string{"", "   ", "\n\t"} {
		embedder := &fakeEmbedder{}
		store := &fakeIndex{}
		completer := &fakeCompleter{}
		o := newOrchestrator(embedder, store, completer)

		_, err := o.Answer(context.Background(), question, nil)
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("Answer(%q) error = %v, want ErrInvalidInput", question, err)
		}
		if embedder.calls+store.calls+completer.calls != 0 {
			t.Errorf("Answer(%q) made %d/%d/%d backend calls, want none",
				question, embedder.calls, store.calls, completer.calls)
		}
	}
}

func TestAnswer_CitationsInRetrievalOrder(t *testing.T) {
	store := &fakeIndex{results: retrievedChunks()}
	completer := &fakeCompleter{answer: "you get a refund"}
	o := newOrchestrator(&fakeEmbedder{}, store, completer)

	result, err := o.Answer(context.Background(), "What is our refund policy?", nil)
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}

	want := []string{"policy.md#0", "policy.md#2"}
	if len(result.Sources) != len(want) {
		t.Fatalf("sources = %v, want %v", result.Sources, want)
	}
	for i := range want {
		if result.Sources[i] != want[i] {
			t.Errorf("sources[%d] = %q, want %q (order or dedup wrong)", i, result.Sources[i], want[i])
		}
	}
}

func TestAnswer_UsesConfiguredTopK(t *testing.T) {
	store := &fakeIndex{}
	o := New(&fakeEmbedder{}, store, &fakeCompleter{answer: "ok"}, 7)

	if _, err := o.Answer(context.Background(), "q", nil); err != nil {
		t.Fatal(err)
	}
	if store.gotTopK != 7 {
		t.Errorf("topK = %d, want 7", store.gotTopK)
	}
}

func TestAnswer_DefaultTopK(t *testing.T) {
	store := &fakeIndex{}
	o := New(&fakeEmbedder{}, store, &fakeCompleter{answer: "ok"}, 0)

	if _, err := o.Answer(context.Background(), "q", nil); err != nil {
		t.Fatal(err)
	}
	if store.gotTopK != DefaultTopK {
		t.Errorf("topK = %d, want %d", store.gotTopK, DefaultTopK)
	}
}

func TestAnswer_PromptAssembly(t *testing.T) {
	store := &fakeIndex{results: retrievedChunks()}
	completer := &fakeCompleter{answer: "grounded answer"}
	o := newOrchestrator(&fakeEmbedder{}, store, completer)

	history := []models.Turn{
		{Role: models.RoleUser, Content: "earlier question"},
		{Role: models.RoleAssistant, Content: "earlier answer"},
	}

	if _, err := o.Answer(context.Background(), "What is our refund policy?", history); err != nil {
		t.Fatal(err)
	}

	messages := completer.messages
	if len(messages) != 4 {
		t.Fatalf("messages = %d, want 4 (system + 2 history + user)", len(messages))
	}
	if messages[0].Role != models.RoleSystem {
		t.Errorf("messages[0].Role = %q, want system", messages[0].Role)
	}
	if !strings.Contains(messages[0].Content, "ONLY the provided context") {
		t.Errorf("system prompt missing grounding instruction: %q", messages[0].Content)
	}
	if messages[1].Content != "earlier question" || messages[2].Content != "earlier answer" {
		t.Errorf("history not in chronological order: %+v", messages[1:3])
	}

	userMessage := messages[3]
	if userMessage.Role != models.RoleUser {
		t.Errorf("last message role = %q, want user", userMessage.Role)
	}
	if !strings.Contains(userMessage.Content, "[policy.md#0] refunds within 30 days") {
		t.Errorf("context block missing tagged chunk: %q", userMessage.Content)
	}
	if !strings.Contains(userMessage.Content, "[policy.md#2] contact support first") {
		t.Errorf("context block missing second chunk: %q", userMessage.Content)
	}
	if strings.Index(userMessage.Content, "policy.md#0") > strings.Index(userMessage.Content, "policy.md#2") {
		t.Error("context chunks not in retrieval order")
	}
	if !strings.Contains(userMessage.Content, "User question: What is our refund policy?") {
		t.Errorf("question missing from user message: %q", userMessage.Content)
	}
	if !strings.Contains(userMessage.Content, "cite sources as [filename#chunk]") {
		t.Errorf("citation reminder missing: %q", userMessage.Content)
	}
}

func TestAnswer_HistoryWindowLimitedToSix(t *testing.T) {
	var history []models.Turn
	for i := 0; i < 10; i++ {
		role := models.RoleUser
		if i%2 == 1 {
			role = models.RoleAssistant
		}
		history = append(history, models.Turn{Role: role, Content: fmt.Sprintf("turn %d", i)})
	}

	completer := &fakeCompleter{answer: "ok"}
	o := newOrchestrator(&fakeEmbedder{}, &fakeIndex{}, completer)

	if _, err := o.Answer(context.Background(), "q", history); err != nil {
		t.Fatal(err)
	}

	// system + 6 history + user
	if len(completer.messages) != 8 {
		t.Fatalf("messages = %d, want 8", len(completer.messages))
	}
	if completer.messages[1].Content != "turn 4" {
		t.Errorf("oldest included turn = %q, want turn 4", completer.messages[1].Content)
	}
	if completer.messages[6].Content != "turn 9" {
		t.Errorf("newest history turn = %q, want turn 9", completer.messages[6].Content)
	}
}

func TestAnswer_UpdatesHistory(t *testing.T) {
	completer := &fakeCompleter{answer: "the answer"}
	o := newOrchestrator(&fakeEmbedder{}, &fakeIndex{}, completer)

	history := []models.Turn{
		{Role: models.RoleUser, Content: "old q"},
		{Role: models.RoleAssistant, Content: "old a"},
	}

	result, err := o.Answer(context.Background(), "new q", history)
	if err != nil {
		t.Fatal(err)
	}

	if len(result.History) != 4 {
		t.Fatalf("history = %d turns, want 4", len(result.History))
	}
	if result.History[2].Content != "new q" || result.History[2].Role != models.RoleUser {
		t.Errorf("history[2] = %+v", result.History[2])
	}
	if result.History[3].Content != "the answer" || result.History[3].Role != models.RoleAssistant {
		t.Errorf("history[3] = %+v", result.History[3])
	}

	// Caller's history value is untouched.
	if len(history) != 2 {
		t.Errorf("input history modified, len = %d", len(history))
	}
}

func TestAnswer_HistoryNeverExceedsTenTurns(t *testing.T) {
	completer := &fakeCompleter{answer: "a"}
	o := newOrchestrator(&fakeEmbedder{}, &fakeIndex{}, completer)

	var history []models.Turn
	for i := 0; i < 8; i++ {
		result, err := o.Answer(context.Background(), fmt.Sprintf("question %d", i), history)
		if err != nil {
			t.Fatal(err)
		}
		history = result.History

		if len(history) > models.MaxHistoryTurns {
			t.Fatalf("history grew to %d turns after call %d", len(history), i)
		}
		for j := 1; j < len(history); j++ {
			if history[j-1].Role == history[j].Role {
				t.Fatalf("history roles not alternating at %d after call %d", j, i)
			}
		}
	}
	if len(history) != models.MaxHistoryTurns {
		t.Errorf("history = %d turns after 8 exchanges, want %d", len(history), models.MaxHistoryTurns)
	}
}

func TestAnswer_EmbeddingFailureShortCircuits(t *testing.T) {
	embedder := &fakeEmbedder{err: fmt.Errorf("%w: down", llm.ErrEmbeddingBackend)}
	store := &fakeIndex{}
	completer := &fakeCompleter{}
	o := newOrchestrator(embedder, store, completer)

	_, err := o.Answer(context.Background(), "q", nil)
	if !errors.Is(err, llm.ErrEmbeddingBackend) {
		t.Fatalf("Answer() error = %v, want ErrEmbeddingBackend", err)
	}
	if store.calls != 0 {
		t.Errorf("index queried %d times after embedding failure, want 0", store.calls)
	}
	if completer.calls != 0 {
		t.Errorf("completion attempted %d times after embedding failure, want 0", completer.calls)
	}
}

func TestAnswer_MissingCollectionPropagates(t *testing.T) {
	store := &fakeIndex{err: fmt.Errorf("%w: kb", index.ErrCollectionNotFound)}
	completer := &fakeCompleter{}
	o := newOrchestrator(&fakeEmbedder{}, store, completer)

	_, err := o.Answer(context.Background(), "q", nil)
	if !errors.Is(err, index.ErrCollectionNotFound) {
		t.Fatalf("Answer() error = %v, want ErrCollectionNotFound", err)
	}
	if completer.calls != 0 {
		t.Errorf("completion attempted after retrieval failure")
	}
}

func TestAnswer_CompletionFailurePropagates(t *testing.T) {
	completer := &fakeCompleter{err: fmt.Errorf("%w: overloaded", llm.ErrCompletionBackend)}
	o := newOrchestrator(&fakeEmbedder{}, &fakeIndex{}, completer)

	_, err := o.Answer(context.Background(), "q", nil)
	if !errors.Is(err, llm.ErrCompletionBackend) {
		t.Fatalf("Answer() error = %v, want ErrCompletionBackend", err)
	}
}
