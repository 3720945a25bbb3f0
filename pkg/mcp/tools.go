package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/flowlens/flowlens/pkg/schema"
)

// handleAnalyze runs the pipeline for a pasted snippet.
func (s *FlowlensServer) handleAnalyze(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	source, err := req.RequireString("source")
	if err != nil {
		return mcp.NewToolResultError("source is required"), nil
	}
	model := req.GetString("model", "")

	a, analyzeErr := s.analyzer.Analyze(ctx, source, model)
	if analyzeErr != nil {
		s.logger.Warn("mcp analyze failed", "error", analyzeErr)
		return mcp.NewToolResultError(schema.UserMessage(analyzeErr)), nil
	}

	return marshalResult(map[string]any{
		"analysis_id": a.ID,
		"graph":       a.Graph,
		"explanation": a.Explanation,
		"mermaid":     a.Mermaid,
	})
}

// handleGet fetches a stored analysis by ID.
func (s *FlowlensServer) handleGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("analysis_id")
	if err != nil {
		return mcp.NewToolResultError("analysis_id is required"), nil
	}

	a, getErr := s.analyzer.Get(ctx, id)
	if getErr != nil {
		return mcp.NewToolResultError(schema.UserMessage(getErr)), nil
	}

	return marshalResult(map[string]any{
		"analysis_id": a.ID,
		"model":       a.Model,
		"graph":       a.Graph,
		"explanation": a.Explanation,
		"mermaid":     a.Mermaid,
		"created_at":  a.CreatedAt,
	})
}

// marshalResult encodes a value as a JSON text result.
func marshalResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
