package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/cholinyo/chatbot-comparador/internal/gateway"
	"github.com/cholinyo/chatbot-comparador/internal/retrieval"
	"github.com/cholinyo/chatbot-comparador/internal/vectorstore"
)

// handleRetrieveFragments performs semantic search over the per-source indices.
func (s *Server) handleRetrieveFragments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}

	k := request.GetInt("k", s.defaultK)
	if k < 1 || k > 10 {
		return mcp.NewToolResultError("k must be between 1 and 10"), nil
	}

	var categories []vectorstore.SourceCategory
	if categoryStr := request.GetString("category", ""); categoryStr != "" {
		category := vectorstore.SourceCategory(categoryStr)
		if !category.Valid() {
			return mcp.NewToolResultError(fmt.Sprintf("unknown category %q", categoryStr)), nil
		}
		categories = append(categories, category)
	}

	results, err := s.fuser.Retrieve(ctx, query, k, categories, nil)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("retrieval failed: %v", err)), nil
	}
	if len(results) == 0 {
		return mcp.NewToolResultText("No matching fragments found. The sources may not be ingested yet; run `comparador ingest`."), nil
	}

	return mcp.NewToolResultText(formatResults(results)), nil
}

// handleAsk retrieves context and generates an answer with one backend.
func (s *Server) handleAsk(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	question, err := request.RequireString("question")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: question"), nil
	}

	backend := s.defaultBackend
	if backendStr := request.GetString("backend", ""); backendStr != "" {
		if backend, err = gateway.ParseBackend(backendStr); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}

	results, err := s.fuser.Retrieve(ctx, question, s.defaultK, nil, nil)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("retrieval failed: %v", err)), nil
	}

	prompt := retrieval.BuildPrompt(question, results)
	answer := s.gw.Generate(ctx, prompt, backend)
	if !answer.Success {
		return mcp.NewToolResultError(fmt.Sprintf("backend %s failed: %s", answer.ModelUsed, answer.Error)), nil
	}

	var sb strings.Builder
	sb.WriteString(answer.Text)
	sb.WriteString(fmt.Sprintf("\n\n(model: %s, latency: %.2fs, fragments: %d)",
		answer.ModelUsed, answer.LatencySeconds, len(results)))
	return mcp.NewToolResultText(sb.String()), nil
}

// formatResults converts retrieval results into a text format for agent
// consumption.
func formatResults(results []retrieval.Result) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d fragment(s):\n", len(results)))

	for i, r := range results {
		sb.WriteString(fmt.Sprintf("\n--- Fragment %d ---\n", i+1))
		sb.WriteString(fmt.Sprintf("Category: %s\n", r.Category))
		if origin := r.Provenance[vectorstore.ProvOrigin]; origin != "" {
			sb.WriteString(fmt.Sprintf("Origin: %s\n", origin))
		}
		if artifact := r.Provenance[vectorstore.ProvArtifact]; artifact != "" {
			sb.WriteString(fmt.Sprintf("Artifact: %s\n", artifact))
		}
		sb.WriteString(fmt.Sprintf("Distance: %.4f\n\n", r.Distance))
		sb.WriteString(r.Text)
		sb.WriteString("\n")
	}

	return sb.String()
}
