// ABOUTME: MCP command starts Model Context Protocol server
// ABOUTME: Enables LLM agents like Claude to query the knowledge base via stdio
package commands

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/docchat/docchat/internal/chat"
	"github.com/docchat/docchat/internal/config"
	"github.com/docchat/docchat/internal/ingest"
	"github.com/docchat/docchat/internal/mcp"
	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// NewMCPCmd creates the MCP command
func NewMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for LLM agents",
		Long: `Start MCP server for LLM agents

Runs DocChat as an MCP (Model Context Protocol) server, enabling
LLM agents like Claude to query the knowledge base and ingest
document folders via stdio.

Configure in Claude Desktop's config file to enable the tools.`,
		RunE: runMCP,
		Example: `  # Start MCP server (typically called by Claude Desktop)
  docchat mcp

  # Configure in claude_desktop_config.json:
  # {
  #   "mcpServers": {
  #     "docchat": {
  #       "command": "docchat",
  #       "args": ["mcp"]
  #     }
  #   }
  # }`,
	}

	return cmd
}

// runMCP starts the MCP server
func runMCP(cmd *cobra.Command, args []string) error {
	// Load .env file if it exists (for API keys)
	if err := godotenv.Load(); err != nil && !quiet {
		log.Printf("No .env file found (this is okay for production): %v", err)
	}

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

	orchestrator := chat.New(client, store, client, cfg.TopK)
	pipeline := ingest.New(client, store, ingest.Options{
		ChunkSize:    cfg.ChunkSize,
		ChunkOverlap: cfg.ChunkOverlap,
		BatchSize:    cfg.BatchSize,
	})

	// Create MCP server
	server := mcpserver.NewMCPServer(
		"DocChat Knowledge Base",
		"0.1.0",
	)

	// Register MCP tools
	mcp.RegisterTools(server, orchestrator, pipeline)

	// Setup graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !quiet {
		log.Println("DocChat MCP server starting on stdio...")
	}

	// Start server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- mcpserver.ServeStdio(server)
	}()

	// Wait for shutdown signal or server error
	select {
	case <-ctx.Done():
		if !quiet {
			log.Println("Shutdown signal received, gracefully shutting down...")
		}

		// Close the index (flushes pending writes, closes DB)
		if err := cleanup(); err != nil {
			log.Printf("Warning: Error closing index: %v", err)
		}

		if !quiet {
			log.Println("Shutdown complete")
		}

	case err := <-serverErr:
		if closeErr := cleanup(); closeErr != nil {
			log.Printf("Warning: Error closing index: %v", closeErr)
		}
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	return nil
}
