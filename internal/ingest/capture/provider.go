// Package capture ingests workout captures: it normalizes the posted payload,
// runs the analysis pipeline and stores the report.
package capture

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/claude/replens/internal/analysis"
	"github.com/claude/replens/internal/fatigue"
	"github.com/claude/replens/internal/ingest"
	"github.com/claude/replens/internal/models"
	"github.com/google/uuid"
)

// Store is the persistence the provider writes analyses to.
type Store interface {
	InsertAnalysis(ctx context.Context, row models.AnalysisRow) (bool, error)
	InsertSetFatigue(ctx context.Context, rows []models.SetFatigueRow) (int64, error)
}

// Provider processes capture payloads.
type Provider struct {
	store    Store
	analyzer *analysis.Analyzer
	log      *slog.Logger
	now      func() time.Time
}

// NewProvider creates a new capture ingest provider.
func NewProvider(store Store, analyzer *analysis.Analyzer, log *slog.Logger) *Provider {
	return &Provider{store: store, analyzer: analyzer, log: log, now: time.Now}
}

// Ingest normalizes and analyzes a capture, then stores the analysis and its
// per-set fatigue rows. source names where the capture came from (e.g.
// "json", "csv").
func (p *Provider) Ingest(ctx context.Context, payload models.CapturePayload, source string, userID int) (*ingest.Result, error) {
	w, err := models.NormalizeWorkout(payload)
	if err != nil {
		return nil, fmt.Errorf("normalizing capture: %w", err)
	}
	return p.IngestWorkout(ctx, w, source, userID)
}

// IngestWorkout analyzes an already-normalized workout and stores the result.
func (p *Provider) IngestWorkout(ctx context.Context, w models.Workout, source string, userID int) (*ingest.Result, error) {
	result := &ingest.Result{
		WorkoutsReceived: 1,
		SetsReceived:     len(w.Sets),
		RepsReceived:     w.RepCount(),
		SamplesReceived:  w.SampleCount(),
	}
	recordedAt := w.PerformedAt
	if w.PerformedAt.IsZero() {
		w.PerformedAt = p.now().UTC()
	}

	wa, err := p.analyzer.Analyze(ctx, w)
	if err != nil {
		return result, fmt.Errorf("analyzing workout: %w", err)
	}
	result.SetsResegmented = wa.Summary.ResegmentedSets
	result.FatigueScore = wa.Fatigue.Score
	result.FatigueLevel = string(wa.Fatigue.Level)

	report, err := json.Marshal(wa)
	if err != nil {
		return result, fmt.Errorf("encoding report: %w", err)
	}

	row := models.AnalysisRow{
		ID:               analysisID(userID, w.Exercise, recordedAt, report),
		UserID:           userID,
		Source:           source,
		Exercise:         w.Exercise,
		Equipment:        w.Equipment,
		PerformedAt:      w.PerformedAt,
		TotalSets:        wa.Summary.TotalSets,
		TotalReps:        wa.Summary.TotalReps,
		ResegmentedSets:  wa.Summary.ResegmentedSets,
		FatigueScore:     wa.Fatigue.Score,
		FatigueLevel:     string(wa.Fatigue.Level),
		ConsistencyScore: wa.Consistency.Score,
		Report:           report,
	}
	inserted, err := p.store.InsertAnalysis(ctx, row)
	if err != nil {
		return result, fmt.Errorf("inserting analysis: %w", err)
	}
	if !inserted {
		result.Message = "Analysis already stored."
		return result, nil
	}
	result.AnalysesInserted = 1
	result.AnalysisID = row.ID

	n, err := p.store.InsertSetFatigue(ctx, SetRows(row, wa))
	if err != nil {
		return result, fmt.Errorf("inserting set fatigue: %w", err)
	}
	result.SetRowsInserted = n

	if !wa.Fatigue.Sufficient() {
		result.Message = fmt.Sprintf("Stored, but fewer than %d valid repetitions were available for a fatigue score.", fatigue.MinReps)
	}
	p.log.Info("capture ingested",
		"analysis_id", row.ID, "exercise", w.Exercise, "sets", result.SetsReceived,
		"reps", result.RepsReceived, "fatigue_score", result.FatigueScore)
	return result, nil
}

// analysisID derives a stable ID from the owner, the recorded performance
// time and the report, so re-uploading the same capture hits the existing
// row. performedAt is the capture's own time, zero when it had none; the
// ingest-time default must not feed the ID.
func analysisID(userID int, exercise string, performedAt time.Time, report []byte) uuid.UUID {
	ts := ""
	if !performedAt.IsZero() {
		ts = performedAt.UTC().Format(time.RFC3339Nano)
	}
	h := sha256.New()
	fmt.Fprintf(h, "%d|%s|%s|", userID, exercise, ts)
	h.Write(report)
	return uuid.NewSHA1(uuid.NameSpaceOID, h.Sum(nil))
}

// SetRows flattens an analysis into its per-set fatigue rows.
func SetRows(row models.AnalysisRow, wa *analysis.WorkoutAnalysis) []models.SetFatigueRow {
	out := make([]models.SetFatigueRow, 0, len(wa.Sets))
	for _, s := range wa.Sets {
		ind := s.Fatigue.Indicators
		out = append(out, models.SetFatigueRow{
			AnalysisID:       row.ID,
			UserID:           row.UserID,
			Exercise:         row.Exercise,
			PerformedAt:      row.PerformedAt,
			SetNumber:        s.SetNumber,
			RepCount:         s.RepCount,
			OriginalRepCount: s.OriginalRepCount,
			Resegmented:      s.Resegmented,
			FatigueScore:     s.Fatigue.Score,
			FatigueLevel:     string(s.Fatigue.Level),
			ConsistencyScore: s.Fatigue.Consistency.Overall,
			CurveScore:       s.Consistency.Score,
			DOmega:           ind.DOmega,
			IT:               ind.IT,
			IJ:               ind.IJ,
			IS:               ind.IS,
			QExec:            ind.QExec,
		})
	}
	return out
}
