package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/claude/replens/internal/models"
	"github.com/claude/replens/internal/storage"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"gonum.org/v1/gonum/stat"
)

// defaultTimeRange returns start/end defaulting to the last 7 days.
func defaultTimeRange(startStr, endStr string) (time.Time, time.Time, error) {
	var start, end time.Time
	var err error

	if endStr != "" {
		end, err = parseFlexTime(endStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		end = time.Now()
	}

	if startStr != "" {
		start, err = parseFlexTime(startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		start = end.AddDate(0, 0, -7)
	}

	return start, end, nil
}

func parseFlexTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse("2006-01-02", s)
	if err == nil {
		return t, nil
	}
	return time.Time{}, err
}

// --- Tool definitions ---

var toolListWorkoutAnalyses = mcp.NewTool("list_workout_analyses",
	mcp.WithDescription("List stored workout analyses with fatigue score and level, curve consistency, set/rep counts and how many sets were resegmented."),
	mcp.WithString("start", mcp.Description("Start date (ISO 8601 or YYYY-MM-DD). Defaults to 7 days ago.")),
	mcp.WithString("end", mcp.Description("End date (ISO 8601 or YYYY-MM-DD). Defaults to now.")),
	mcp.WithString("exercise", mcp.Description("Filter by exercise name (case-insensitive, e.g. 'Bench Press')")),
)

var toolGetWorkoutAnalysis = mcp.NewTool("get_workout_analysis",
	mcp.WithDescription("Get one workout analysis: the full report (per-rep kinematics, per-set fatigue indicators, findings) plus the per-set fatigue rows."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Analysis ID (UUID) from list_workout_analyses")),
)

var toolGetSetFatigueTrend = mcp.NewTool("get_set_fatigue_trend",
	mcp.WithDescription("Per-set fatigue over time. Returns every set row in the range and, per exercise, the mean fatigue score and its trend in points per week."),
	mcp.WithString("start", mcp.Description("Start date. Defaults to 90 days ago.")),
	mcp.WithString("end", mcp.Description("End date. Defaults to now.")),
	mcp.WithString("exercise", mcp.Description("Filter by exercise name (case-insensitive)")),
)

var toolGetDataStats = mcp.NewTool("get_data_stats",
	mcp.WithDescription("Totals of stored analyses, sets and reps, the covered date range, and per-exercise averages."),
)

var toolAnalyzeCapture = mcp.NewTool("analyze_capture",
	mcp.WithDescription("Analyze a raw inertial capture without storing it. Accepts the same JSON body as the ingest endpoint (exercise, sets or reps with samples, optional classification)."),
	mcp.WithString("capture", mcp.Required(), mcp.Description("Capture JSON")),
)

// --- Tool handlers ---

func (h *handlers) listWorkoutAnalyses(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := defaultTimeRange(req.GetString("start", ""), req.GetString("end", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	uid := UserIDFromContext(ctx)
	rows, err := h.ds.QueryAnalyses(ctx, start, end, req.GetString("exercise", ""), uid)
	if err != nil {
		h.log.Error("mcp list_workout_analyses", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(rows)
}

func (h *handlers) getWorkoutAnalysis(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	idStr, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id parameter is required"), nil
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return mcp.NewToolResultError("invalid analysis ID"), nil
	}

	uid := UserIDFromContext(ctx)
	row, err := h.ds.GetAnalysis(ctx, id, uid)
	if errors.Is(err, storage.ErrNotFound) {
		return mcp.NewToolResultError("analysis not found"), nil
	}
	if err != nil {
		h.log.Error("mcp get_workout_analysis", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	sets, err := h.ds.QuerySetFatigue(ctx, id, uid)
	if err != nil {
		h.log.Error("mcp get_workout_analysis sets", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	return jsonResult(map[string]any{
		"analysis": row,
		"sets":     sets,
	})
}

// ExerciseTrend summarizes per-set fatigue for one exercise.
type ExerciseTrend struct {
	Exercise        string  `json:"exercise"`
	Sets            int     `json:"sets"`
	MeanFatigue     float64 `json:"mean_fatigue"`
	FatiguePerWeek  float64 `json:"fatigue_per_week"`
	MeanConsistency float64 `json:"mean_consistency"`
}

func (h *handlers) getSetFatigueTrend(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	startStr := req.GetString("start", "")
	if startStr == "" {
		startStr = time.Now().AddDate(0, 0, -90).Format("2006-01-02")
	}
	start, end, err := defaultTimeRange(startStr, req.GetString("end", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	uid := UserIDFromContext(ctx)
	rows, err := h.ds.QueryFatigueTrend(ctx, start, end, req.GetString("exercise", ""), uid)
	if err != nil {
		h.log.Error("mcp get_set_fatigue_trend", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	return jsonResult(map[string]any{
		"sets":   rows,
		"trends": fatigueTrends(rows),
	})
}

// fatigueTrends fits fatigue score against time per exercise. Sets with
// insufficient data are left out.
func fatigueTrends(rows []models.SetFatigueRow) []ExerciseTrend {
	type series struct{ days, fatigue, consistency []float64 }
	by := map[string]*series{}
	for _, r := range rows {
		if r.FatigueLevel == "insufficient_data" {
			continue
		}
		s, ok := by[r.Exercise]
		if !ok {
			s = &series{}
			by[r.Exercise] = s
		}
		s.days = append(s.days, float64(r.PerformedAt.Unix())/86400)
		s.fatigue = append(s.fatigue, r.FatigueScore)
		s.consistency = append(s.consistency, r.CurveScore)
	}

	out := make([]ExerciseTrend, 0, len(by))
	for name, s := range by {
		t := ExerciseTrend{
			Exercise:        name,
			Sets:            len(s.fatigue),
			MeanFatigue:     stat.Mean(s.fatigue, nil),
			MeanConsistency: stat.Mean(s.consistency, nil),
		}
		if spansDays(s.days) {
			_, beta := stat.LinearRegression(s.days, s.fatigue, nil, false)
			t.FatiguePerWeek = beta * 7
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Exercise < out[j].Exercise })
	return out
}

func spansDays(days []float64) bool {
	for _, d := range days[1:] {
		if d != days[0] {
			return true
		}
	}
	return false
}

func (h *handlers) getDataStats(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := h.ds.GetDataStats(ctx, UserIDFromContext(ctx))
	if err != nil {
		h.log.Error("mcp get_data_stats", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(stats)
}

func (h *handlers) analyzeCapture(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := req.RequireString("capture")
	if err != nil {
		return mcp.NewToolResultError("capture parameter is required"), nil
	}
	var payload models.CapturePayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return mcp.NewToolResultError("invalid capture JSON: " + err.Error()), nil
	}
	w, err := models.NormalizeWorkout(payload)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	res, err := h.analyzer.Analyze(ctx, w)
	if err != nil {
		return mcp.NewToolResultError("analysis failed: " + err.Error()), nil
	}
	return jsonResult(res)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(v)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
