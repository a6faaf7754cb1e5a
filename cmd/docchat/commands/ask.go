// ABOUTME: CLI command to ask a single question against the index
// ABOUTME: Prints the answer with source citations in text or JSON form
package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/docchat/docchat/internal/chat"
	"github.com/docchat/docchat/internal/config"
	"github.com/joho/godotenv"
)

var (
	askTopK int
)

// NewAskCmd creates the ask command
func NewAskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a question against the indexed documents",
		Long: `Ask a single question answered from the indexed documents.

Retrieves the most relevant chunks from the knowledge base, sends
them with the question to the chat model, and prints the answer
with its source citations. One-shot; no conversation history.

Examples:
  docchat ask "What is the refund policy?"
  docchat ask --top-k 8 "How do I request time off?"
  docchat ask --format json "Who approves expenses?"`,
		Args: cobra.ExactArgs(1),
		RunE: runAsk,
	}

	cmd.Flags().IntVar(&askTopK, "top-k", 0, "Number of chunks to retrieve (0 uses TOP_K from config)")

	return cmd
}

func runAsk(cmd *cobra.Command, args []string) error {
	// Load .env for API keys and backend settings
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	topK := cfg.TopK
	if askTopK != 0 {
		if err := validatePositiveInt(askTopK, "top-k"); err != nil {
			return err
		}
		topK = askTopK
	}

	client, err := newLLMClient(cfg)
	if err != nil {
		return err
	}

	store, cleanup, err := openIndex(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	orchestrator := chat.New(client, store, client, topK)

	question := args[0]
	if verbose {
		fmt.Fprintf(cmd.ErrOrStderr(), "Answering: %s\n", truncate(question, 60))
	}

	result, err := orchestrator.Answer(cmd.Context(), question, nil)
	if err != nil {
		return fmt.Errorf("answering question: %w", err)
	}

	if outputFormat == "json" {
		jsonData, err := json.MarshalIndent(map[string]any{
			"answer":  result.Answer,
			"sources": result.Sources,
		}, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s\n", result.Answer)
	if !quiet && len(result.Sources) > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "\nSources:\n")
		for _, source := range result.Sources {
			fmt.Fprintf(cmd.OutOrStdout(), "  - %s\n", source)
		}
	}

	return nil
}
