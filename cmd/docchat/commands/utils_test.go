// ABOUTME: Tests for shared utility functions used by CLI commands
// ABOUTME: Verifies truncate, validation, and index backend selection

package commands

import (
	"path/filepath"
	"testing"

	"github.com/docchat/docchat/internal/config"
	"github.com/docchat/docchat/internal/index/chroma"
	"github.com/docchat/docchat/internal/index/sqlite"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{
			name:   "short string unchanged",
			input:  "hello",
			maxLen: 10,
			want:   "hello",
		},
		{
			name:   "exact length unchanged",
			input:  "hello",
			maxLen: 5,
			want:   "hello",
		},
		{
			name:   "long string truncated",
			input:  "hello world",
			maxLen: 8,
			want:   "hello...",
		},
		{
			name:   "very short maxLen",
			input:  "hello",
			maxLen: 2,
			want:   "he",
		},
		{
			name:   "empty string",
			input:  "",
			maxLen: 10,
			want:   "",
		},
		{
			name:   "unicode truncated with ellipsis",
			input:  "你好世界你好世界",
			maxLen: 5,
			want:   "你好...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncate(tt.input, tt.maxLen)
			if got != tt.want {
				t.Errorf("truncate(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
			}
		})
	}
}

func TestValidatePositiveInt(t *testing.T) {
	tests := []struct {
		name    string
		n       int
		wantErr bool
	}{
		{"positive", 5, false},
		{"one", 1, false},
		{"zero", 0, true},
		{"negative", -3, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validatePositiveInt(tt.n, "limit")
			if (err != nil) != tt.wantErr {
				t.Errorf("validatePositiveInt(%d) error = %v, wantErr %v", tt.n, err, tt.wantErr)
			}
		})
	}
}

func TestOpenIndex_SQLiteBackend(t *testing.T) {
	cfg := &config.Config{
		IndexBackend: config.BackendSQLite,
		DataDir:      filepath.Join(t.TempDir(), "docchat"),
		Collection:   "test_collection",
	}

	store, cleanup, err := openIndex(cfg)
	if err != nil {
		t.Fatalf("openIndex() error = %v", err)
	}
	defer cleanup()

	if _, ok := store.(*sqlite.Store); !ok {
		t.Errorf("openIndex() = %T, want *sqlite.Store", store)
	}
}

func TestOpenIndex_ChromaBackend(t *testing.T) {
	cfg := &config.Config{
		IndexBackend: config.BackendChroma,
		ChromaURL:    "http://127.0.0.1:8000",
		Collection:   "test_collection",
	}

	store, cleanup, err := openIndex(cfg)
	if err != nil {
		t.Fatalf("openIndex() error = %v", err)
	}
	defer cleanup()

	if _, ok := store.(*chroma.Store); !ok {
		t.Errorf("openIndex() = %T, want *chroma.Store", store)
	}
}

func TestNewLLMClient_RequiresAPIKey(t *testing.T) {
	cfg := &config.Config{}

	if _, err := newLLMClient(cfg); err == nil {
		t.Error("newLLMClient() with empty API key should fail")
	}
}
