package mcp

import (
	"context"
	"time"

	"github.com/claude/replens/internal/models"
	"github.com/claude/replens/internal/storage"
	"github.com/google/uuid"
)

// DataSource abstracts the data layer for MCP tools. Both *storage.DB (local)
// and HTTPClient (remote via REST API) satisfy this interface.
type DataSource interface {
	QueryAnalyses(ctx context.Context, start, end time.Time, exercise string, userID int) ([]models.AnalysisRow, error)
	GetAnalysis(ctx context.Context, id uuid.UUID, userID int) (*models.AnalysisRow, error)
	QuerySetFatigue(ctx context.Context, analysisID uuid.UUID, userID int) ([]models.SetFatigueRow, error)
	QueryFatigueTrend(ctx context.Context, start, end time.Time, exercise string, userID int) ([]models.SetFatigueRow, error)
	GetDataStats(ctx context.Context, userID int) (*storage.DataStats, error)
}

// Compile-time check: *storage.DB satisfies DataSource.
var _ DataSource = (*storage.DB)(nil)
