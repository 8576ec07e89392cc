package mcp

import (
	"context"
	"log/slog"

	"github.com/claude/replens/internal/analysis"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type contextKey int

const userIDKey contextKey = iota

// UserIDFromContext extracts the user ID injected by the transport layer.
func UserIDFromContext(ctx context.Context) int {
	if id, ok := ctx.Value(userIDKey).(int); ok {
		return id
	}
	return 1
}

// WithUserID returns a context with the given user ID.
func WithUserID(ctx context.Context, userID int) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// New creates an MCP server with all tools and resources registered. The
// analyzer backs analyze_capture, which never touches the data source.
func New(ds DataSource, analyzer *analysis.Analyzer, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("RepLens", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("RepLens strength-training analysis server. Query stored workout analyses, per-set fatigue and consistency, and analyze raw inertial captures. All data is scoped to the authenticated user."),
	)

	h := &handlers{ds: ds, analyzer: analyzer, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolListWorkoutAnalyses, Handler: h.listWorkoutAnalyses},
		server.ServerTool{Tool: toolGetWorkoutAnalysis, Handler: h.getWorkoutAnalysis},
		server.ServerTool{Tool: toolGetSetFatigueTrend, Handler: h.getSetFatigueTrend},
		server.ServerTool{Tool: toolGetDataStats, Handler: h.getDataStats},
		server.ServerTool{Tool: toolAnalyzeCapture, Handler: h.analyzeCapture},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resRecentAnalyses, Handler: h.recentAnalyses},
		server.ServerResource{Resource: resFatigueScale, Handler: h.fatigueScale},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds       DataSource
	analyzer *analysis.Analyzer
	log      *slog.Logger
}

// --- Resource definitions ---

var resRecentAnalyses = mcp.NewResource(
	"replens://recent_analyses",
	"Recent Analyses",
	mcp.WithResourceDescription("Workout analyses from the last 14 days with fatigue and consistency scores"),
	mcp.WithMIMEType("application/json"),
)

var resFatigueScale = mcp.NewResource(
	"replens://fatigue_scale",
	"Fatigue Scale",
	mcp.WithResourceDescription("Fatigue level bands, supported exercises and their segmentation parameters, and classifier label categories"),
	mcp.WithMIMEType("application/json"),
)
