// ABOUTME: CLI command to index a folder of documents
// ABOUTME: Rebuilds the knowledge base from .txt/.md/.pdf/.docx files
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/docchat/docchat/internal/config"
	"github.com/docchat/docchat/internal/ingest"
	"github.com/joho/godotenv"
)

// NewIngestCmd creates the ingest command
func NewIngestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest <folder>",
		Short: "Index a folder of documents",
		Long: `Index a folder of documents into the knowledge base.

Reads every supported file (.txt, .md, .pdf, .docx) in the folder,
splits the text into overlapping chunks, embeds each chunk, and
replaces the previous index contents. Re-running on the same folder
produces an identical index.

Examples:
  docchat ingest ./docs
  docchat ingest /srv/knowledge-base`,
		Args: cobra.ExactArgs(1),
		RunE: runIngest,
	}

	return cmd
}

func runIngest(cmd *cobra.Command, args []string) error {
	// Load .env for API keys and backend settings
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
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

	pipeline := ingest.New(client, store, ingest.Options{
		ChunkSize:    cfg.ChunkSize,
		ChunkOverlap: cfg.ChunkOverlap,
		BatchSize:    cfg.BatchSize,
	})

	count, err := pipeline.Ingest(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("ingesting %s: %w", args[0], err)
	}

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d chunks from %s\n", count, args[0])
	}

	return nil
}
