// ABOUTME: MCP tool handler implementations for the docchat server
// ABOUTME: Bridges MCP tool calls to the orchestrator and pipeline
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/docchat/docchat/internal/chat"
	"github.com/docchat/docchat/internal/models"
)

// Answerer answers a single question; tool calls carry no history.
type Answerer interface {
	Answer(ctx context.Context, question string, history []models.Turn) (*chat.Result, error)
}

// Ingester rebuilds the corpus index from a folder.
type Ingester interface {
	Ingest(ctx context.Context, folder string) (int, error)
}

// Handlers contains the handler functions for the docchat MCP tools
type Handlers struct {
	answerer Answerer
	ingester Ingester
}

// AskKnowledgeBase handles the ask_knowledge_base tool
func (h *Handlers) AskKnowledgeBase(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	question, err := request.RequireString("question")
	if err != nil {
		return mcp.NewToolResultError("question argument is required and must be a string"), nil
	}

	result, err := h.answerer.Answer(ctx, question, nil)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("answering failed: %v", err)), nil
	}

	payload, err := json.Marshal(map[string]any{
		"answer":  result.Answer,
		"sources": result.Sources,
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(payload)), nil
}

// IngestFolder handles the ingest_folder tool
func (h *Handlers) IngestFolder(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	folder, err := request.RequireString("folder")
	if err != nil {
		return mcp.NewToolResultError("folder argument is required and must be a string"), nil
	}
	if strings.TrimSpace(folder) == "" {
		return mcp.NewToolResultError("folder must not be empty"), nil
	}

	count, err := h.ingester.Ingest(ctx, folder)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("ingestion failed: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Indexed %d chunks from %s", count, folder)), nil
}
