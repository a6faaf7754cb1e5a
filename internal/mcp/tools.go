// ABOUTME: MCP tool definitions and registration for the docchat server
// ABOUTME: Exposes knowledge-base question answering and folder ingestion
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// RegisterTools registers the docchat MCP tools with the server
func RegisterTools(server *mcpserver.MCPServer, answerer Answerer, ingester Ingester) {
	handlers := &Handlers{
		answerer: answerer,
		ingester: ingester,
	}

	// ask_knowledge_base - answer a question grounded in the indexed corpus
	server.AddTool(mcp.Tool{
		Name:        "ask_knowledge_base",
		Description: "Answer a question using the indexed document corpus. Returns the answer plus source citations in source#chunk form.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"question": map[string]interface{}{
					"type":        "string",
					"description": "Natural-language question to answer from the corpus",
				},
			},
			Required: []string{"question"},
		},
	}, handlers.AskKnowledgeBase)

	// ingest_folder - rebuild the index from a folder of documents
	server.AddTool(mcp.Tool{
		Name:        "ingest_folder",
		Description: "Rebuild the knowledge base index from a folder of .txt/.md/.pdf/.docx documents. Replaces the previous corpus.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"folder": map[string]interface{}{
					"type":        "string",
					"description": "Path to the folder containing documents to index",
				},
			},
			Required: []string{"folder"},
		},
	}, handlers.IngestFolder)
}
