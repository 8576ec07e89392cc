package mcp

import (
	"context"
	"encoding/json"
	"time"

	"github.com/claude/replens/internal/exercise"
	"github.com/claude/replens/internal/fatigue"
	"github.com/mark3labs/mcp-go/mcp"
)

func (h *handlers) recentAnalyses(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uid := UserIDFromContext(ctx)
	end := time.Now()
	start := end.AddDate(0, 0, -14)

	rows, err := h.ds.QueryAnalyses(ctx, start, end, "", uid)
	if err != nil {
		return nil, err
	}
	return jsonContents(req.Params.URI, rows)
}

type levelBand struct {
	Level fatigue.Level `json:"level"`
	Min   float64       `json:"min"`
	Max   float64       `json:"max"`
}

type exerciseInfo struct {
	Name   string          `json:"name"`
	Family exercise.Family `json:"family"`
	Params exercise.Params `json:"params"`
	Labels []string        `json:"labels"`
}

func (h *handlers) fatigueScale(_ context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	bands := []levelBand{
		{fatigue.LevelMinimal, 0, 15},
		{fatigue.LevelLow, 15, 30},
		{fatigue.LevelModerate, 30, 50},
		{fatigue.LevelHigh, 50, 70},
		{fatigue.LevelSevere, 70, 100},
	}
	var exercises []exerciseInfo
	for _, e := range exercise.All() {
		f := exercise.FamilyOf(e)
		exercises = append(exercises, exerciseInfo{
			Name:   e.String(),
			Family: f,
			Params: exercise.ParamsFor(e),
			Labels: exercise.Labels(f),
		})
	}
	return jsonContents(req.Params.URI, map[string]any{
		"levels":    bands,
		"exercises": exercises,
	})
}

func jsonContents(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
