package mcp

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowlens/flowlens/internal/store"
	"github.com/flowlens/flowlens/pkg/schema"
)

type mockAnalyzer struct {
	analyses   map[string]*store.Analysis
	analyzeErr error
}

func (m *mockAnalyzer) Analyze(_ context.Context, source, model string) (*store.Analysis, error) {
	if m.analyzeErr != nil {
		return nil, m.analyzeErr
	}
	a := stubAnalysis("mcp-1")
	a.Source = source
	if model != "" {
		a.Model = model
	}
	return a, nil
}

func (m *mockAnalyzer) Get(_ context.Context, id string) (*store.Analysis, error) {
	a, ok := m.analyses[id]
	if !ok {
		return nil, schema.NewErrorf(schema.ErrCodeNotFound, "analysis %q not found", id)
	}
	return a, nil
}

func stubAnalysis(id string) *store.Analysis {
	return &store.Analysis{
		ID:    id,
		Model: "test-model",
		Graph: schema.FlowGraph{
			Nodes: []schema.FlowNode{
				{ID: "s", Kind: schema.NodeKindStart, Label: "Start"},
				{ID: "e", Kind: schema.NodeKindEnd, Label: "End"},
			},
			Edges:       []schema.FlowEdge{{FromID: "s", ToID: "e"}},
			Explanation: "trivial",
		},
		Explanation: "trivial",
		Mermaid:     "graph TD\n    s --> e\n",
		CreatedAt:   time.Now().UTC(),
	}
}

func newTestServer(analyzer Analyzer) *FlowlensServer {
	return NewFlowlensServer(FlowlensServerDeps{
		Analyzer: analyzer,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func toolRequest(toolName string, args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      toolName,
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	text, ok := mcp.AsTextContent(result.Content[0])
	require.True(t, ok)
	return text.Text
}

func TestAnalyzeTool(t *testing.T) {
	s := newTestServer(&mockAnalyzer{})

	result, err := s.handleAnalyze(context.Background(),
		toolRequest("flowlens.analyze", map[string]any{"source": "print('hi')"}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var payload struct {
		AnalysisID  string           `json:"analysis_id"`
		Graph       schema.FlowGraph `json:"graph"`
		Explanation string           `json:"explanation"`
		Mermaid     string           `json:"mermaid"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &payload))
	assert.Equal(t, "mcp-1", payload.AnalysisID)
	assert.Len(t, payload.Graph.Nodes, 2)
	assert.Equal(t, "trivial", payload.Explanation)
	assert.Contains(t, payload.Mermaid, "graph TD")
}

func TestAnalyzeToolMissingSource(t *testing.T) {
	s := newTestServer(&mockAnalyzer{})

	result, err := s.handleAnalyze(context.Background(),
		toolRequest("flowlens.analyze", map[string]any{}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestAnalyzeToolPipelineFailure(t *testing.T) {
	s := newTestServer(&mockAnalyzer{
		analyzeErr: schema.NewError(schema.ErrCodeMalformedResponse, "no json in response"),
	})

	result, err := s.handleAnalyze(context.Background(),
		toolRequest("flowlens.analyze", map[string]any{"source": "print('hi')"}))
	require.NoError(t, err)
	require.True(t, result.IsError)
	// The agent sees the user-facing message, not the parse trace.
	assert.Contains(t, resultText(t, result), "Could not analyze this code.")
}

func TestGetTool(t *testing.T) {
	s := newTestServer(&mockAnalyzer{
		analyses: map[string]*store.Analysis{"a1": stubAnalysis("a1")},
	})

	result, err := s.handleGet(context.Background(),
		toolRequest("flowlens.get", map[string]any{"analysis_id": "a1"}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &payload))
	assert.Equal(t, "a1", payload["analysis_id"])
	assert.Equal(t, "test-model", payload["model"])
}

func TestGetToolNotFound(t *testing.T) {
	s := newTestServer(&mockAnalyzer{analyses: map[string]*store.Analysis{}})

	result, err := s.handleGet(context.Background(),
		toolRequest("flowlens.get", map[string]any{"analysis_id": "missing"}))
	require.NoError(t, err)
	require.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "Analysis not found.")
}

func TestServerRegistersTools(t *testing.T) {
	s := newTestServer(&mockAnalyzer{})
	require.NotNil(t, s.MCPServer())

	tools := s.tools()
	require.Len(t, tools, 2)
	assert.Equal(t, "flowlens.analyze", tools[0].Tool.Name)
	assert.Equal(t, "flowlens.get", tools[1].Tool.Name)
}
