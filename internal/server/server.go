package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/claude/replens/internal/analysis"
	"github.com/claude/replens/internal/ingest/capture"
	replensmcp "github.com/claude/replens/internal/mcp"
	"github.com/claude/replens/internal/models"
	"github.com/claude/replens/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// Store is the data layer the HTTP handlers use. *storage.DB satisfies it.
type Store interface {
	capture.Store
	QueryAnalyses(ctx context.Context, start, end time.Time, exercise string, userID int) ([]models.AnalysisRow, error)
	GetAnalysis(ctx context.Context, id uuid.UUID, userID int) (*models.AnalysisRow, error)
	QuerySetFatigue(ctx context.Context, analysisID uuid.UUID, userID int) ([]models.SetFatigueRow, error)
	QueryFatigueTrend(ctx context.Context, start, end time.Time, exercise string, userID int) ([]models.SetFatigueRow, error)
	GetDataStats(ctx context.Context, userID int) (*storage.DataStats, error)
	InsertImportLog(ctx context.Context, log storage.ImportLog) (int64, error)
	QueryImportLogs(ctx context.Context, userID, limit int) ([]storage.ImportLog, error)
	GetOrCreateUser(ctx context.Context, login, displayName string) (int, error)
}

var _ Store = (*storage.DB)(nil)

// Server holds dependencies for HTTP handlers.
type Server struct {
	db       Store
	capture  *capture.Provider
	analyzer *analysis.Analyzer
	whois    WhoIsClient
	log      *slog.Logger
	apiKey   string
	router   chi.Router
}

// New creates a new Server with all routes configured.
func New(db Store, analyzer *analysis.Analyzer, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		db:       db,
		capture:  capture.NewProvider(db, analyzer, log),
		analyzer: analyzer,
		log:      log,
		apiKey:   apiKey,
		router:   chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// SetTailscale switches identity resolution from the local dev user to
// Tailscale WhoIs lookups.
func (s *Server) SetTailscale(lc WhoIsClient) {
	s.whois = lc
}

// SetMCP mounts an MCP server at /mcp over streamable HTTP. Tool calls run
// as the identity resolved for the request.
func (s *Server) SetMCP(m *mcpserver.MCPServer) {
	h := mcpserver.NewStreamableHTTPServer(m,
		mcpserver.WithHTTPContextFunc(func(ctx context.Context, r *http.Request) context.Context {
			return replensmcp.WithUserID(ctx, userIDFromContext(r))
		}),
	)
	s.router.Handle("/mcp", h)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)
	s.router.Use(s.identity)

	// Capture upload endpoints (API key required)
	s.router.Route("/api/v1/ingest", func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))
		r.Post("/", s.handleIngest)
		r.Post("/csv", s.handleIngestCSV)
	})

	// Stateless analysis
	s.router.Post("/api/v1/analyze", s.handleAnalyze)
	s.router.Post("/api/v1/resegment", s.handleResegment)

	// Stored analyses
	s.router.Get("/api/v1/analyses", s.handleQueryAnalyses)
	s.router.Get("/api/v1/analyses/{id}", s.handleGetAnalysis)
	s.router.Get("/api/v1/analyses/{id}/sets", s.handleAnalysisSets)
	s.router.Get("/api/v1/fatigue/trend", s.handleFatigueTrend)

	s.router.Get("/api/v1/stats", s.handleStats)
	s.router.Get("/api/v1/import-logs", s.handleImportLogs)
	s.router.Get("/api/v1/me", s.handleMe)
}
