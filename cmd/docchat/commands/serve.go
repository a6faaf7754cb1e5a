// ABOUTME: Serve command runs the HTTP chat API
// ABOUTME: Exposes POST /api/chat and GET /healthz until interrupted
package commands

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/docchat/docchat/internal/api"
	"github.com/docchat/docchat/internal/chat"
	"github.com/docchat/docchat/internal/config"
	"github.com/joho/godotenv"
)

var (
	serveAddr string
)

// NewServeCmd creates the serve command
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP chat API",
		Long: `Run the HTTP chat API over the indexed documents.

Serves POST /api/chat for retrieval-augmented question answering
and GET /healthz for liveness checks. Clients may send their own
conversation history in the request body; browser clients without
one get a cookie-keyed server-side session instead.

Examples:
  docchat serve
  docchat serve --addr :8080
  HTTP_ADDR=:8080 docchat serve`,
		RunE: runServe,
	}

	cmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides HTTP_ADDR)")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	// Load .env for API keys and backend settings
	if err := godotenv.Load(); err != nil && verbose {
		log.Printf("No .env file found: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	addr := cfg.HTTPAddr
	if serveAddr != "" {
		addr = serveAddr
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

	orchestrator := chat.New(client, store, client, cfg.TopK)
	server := api.NewServer(orchestrator)

	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.ListenAndServe(ctx, addr); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	if !quiet {
		log.Println("Server stopped")
	}

	return nil
}
