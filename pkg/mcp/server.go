package mcp

import (
	"context"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/flowlens/flowlens/internal/store"
)

// Analyzer is the pipeline surface exposed over MCP.
type Analyzer interface {
	Analyze(ctx context.Context, source, model string) (*store.Analysis, error)
	Get(ctx context.Context, id string) (*store.Analysis, error)
}

// FlowlensServerDeps holds the dependencies for creating a FlowlensServer.
type FlowlensServerDeps struct {
	Analyzer Analyzer
	Logger   *slog.Logger
}

// FlowlensServer wraps an MCP server with flowlens tool handlers, so agents
// can request flowcharts for code the same way the web surface does.
type FlowlensServer struct {
	analyzer  Analyzer
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// NewFlowlensServer creates a new FlowlensServer with both tools registered.
func NewFlowlensServer(deps FlowlensServerDeps) *FlowlensServer {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}

	s := &FlowlensServer{
		analyzer: deps.Analyzer,
		logger:   logger,
	}

	mcpSrv := server.NewMCPServer(
		"flowlens",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithRecovery(),
		server.WithInstructions("Flowlens turns code snippets into control-flow descriptions and flowcharts. Use flowlens.analyze to analyze a snippet and flowlens.get to fetch a past analysis by ID."),
	)

	mcpSrv.AddTools(s.tools()...)
	s.mcpServer = mcpSrv
	return s
}

// Serve starts the stdio transport and blocks until ctx is cancelled or stdin closes.
func (s *FlowlensServer) Serve(ctx context.Context) error {
	stdio := server.NewStdioServer(s.mcpServer)
	return stdio.Listen(ctx, os.Stdin, os.Stdout)
}

// MCPServer returns the underlying MCPServer for testing or custom transports.
func (s *FlowlensServer) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// tools returns the registered MCP tools as ServerTool entries.
func (s *FlowlensServer) tools() []server.ServerTool {
	return []server.ServerTool{
		{Tool: analyzeTool(), Handler: s.handleAnalyze},
		{Tool: getTool(), Handler: s.handleGet},
	}
}

// --- Tool definitions ---

func analyzeTool() mcp.Tool {
	return mcp.NewTool("flowlens.analyze",
		mcp.WithDescription("Analyze a code snippet and return its control-flow graph, a Mermaid flowchart, and a prose explanation"),
		mcp.WithString("source", mcp.Required(), mcp.Description("The code snippet to analyze")),
		mcp.WithString("model", mcp.Description("Model ID to use (default: configured model)")),
	)
}

func getTool() mcp.Tool {
	return mcp.NewTool("flowlens.get",
		mcp.WithDescription("Fetch a stored analysis by its ID"),
		mcp.WithString("analysis_id", mcp.Required(), mcp.Description("ID returned by flowlens.analyze")),
	)
}
