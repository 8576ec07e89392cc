package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/claude/replens/internal/models"
	"github.com/google/uuid"
)

// InsertAnalysis inserts a workout analysis. Returns true if inserted, false
// if a row with the same ID already exists.
func (db *DB) InsertAnalysis(ctx context.Context, row models.AnalysisRow) (bool, error) {
	tag, err := db.Pool.Exec(ctx,
		`INSERT INTO workout_analyses (id, user_id, source, exercise, equipment, performed_at,
		 total_sets, total_reps, resegmented_sets, fatigue_score, fatigue_level, consistency_score, report)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		 ON CONFLICT DO NOTHING`,
		row.ID, row.UserID, row.Source, row.Exercise, row.Equipment, row.PerformedAt,
		row.TotalSets, row.TotalReps, row.ResegmentedSets,
		row.FatigueScore, row.FatigueLevel, row.ConsistencyScore, row.Report)
	if err != nil {
		return false, fmt.Errorf("inserting analysis: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// InsertSetFatigue batch-inserts per-set fatigue rows. Returns count inserted.
func (db *DB) InsertSetFatigue(ctx context.Context, rows []models.SetFatigueRow) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	const cols = 17
	query := `INSERT INTO set_fatigue (analysis_id, user_id, exercise, performed_at, set_number, rep_count,
	 original_rep_count, resegmented, fatigue_score, fatigue_level, consistency_score, curve_score,
	 d_omega, i_t, i_j, i_s, q_exec) VALUES `
	args := make([]any, 0, len(rows)*cols)
	valueStrings := make([]string, 0, len(rows))

	for i, r := range rows {
		base := i * cols
		ph := make([]string, cols)
		for j := range ph {
			ph[j] = fmt.Sprintf("$%d", base+j+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(ph, ",")+")")
		args = append(args, r.AnalysisID, r.UserID, r.Exercise, r.PerformedAt, r.SetNumber, r.RepCount,
			r.OriginalRepCount, r.Resegmented, r.FatigueScore, r.FatigueLevel, r.ConsistencyScore, r.CurveScore,
			r.DOmega, r.IT, r.IJ, r.IS, r.QExec)
	}

	query += strings.Join(valueStrings, ",") + " ON CONFLICT DO NOTHING"

	tag, err := db.Pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("inserting set fatigue: %w", err)
	}
	return tag.RowsAffected(), nil
}

// QueryAnalyses lists analyses performed in [start, end), newest first,
// optionally filtered by exercise name (case-insensitive). Reports are not
// loaded.
func (db *DB) QueryAnalyses(ctx context.Context, start, end time.Time, exercise string, userID int) ([]models.AnalysisRow, error) {
	query := `SELECT id, user_id, source, exercise, equipment, performed_at, created_at,
	 total_sets, total_reps, resegmented_sets, fatigue_score, fatigue_level, consistency_score
	 FROM workout_analyses
	 WHERE performed_at >= $1 AND performed_at < $2 AND user_id = $3`
	args := []any{start, end, userID}
	if exercise != "" {
		query += ` AND LOWER(exercise) = LOWER($4)`
		args = append(args, exercise)
	}
	query += ` ORDER BY performed_at DESC`

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying analyses: %w", err)
	}
	defer rows.Close()

	var result []models.AnalysisRow
	for rows.Next() {
		var a models.AnalysisRow
		if err := rows.Scan(&a.ID, &a.UserID, &a.Source, &a.Exercise, &a.Equipment, &a.PerformedAt, &a.CreatedAt,
			&a.TotalSets, &a.TotalReps, &a.ResegmentedSets, &a.FatigueScore, &a.FatigueLevel, &a.ConsistencyScore); err != nil {
			return nil, fmt.Errorf("scanning analysis: %w", err)
		}
		result = append(result, a)
	}
	return result, rows.Err()
}

// GetAnalysis retrieves one analysis including its report.
func (db *DB) GetAnalysis(ctx context.Context, id uuid.UUID, userID int) (*models.AnalysisRow, error) {
	var a models.AnalysisRow
	err := db.Pool.QueryRow(ctx,
		`SELECT id, user_id, source, exercise, equipment, performed_at, created_at,
		 total_sets, total_reps, resegmented_sets, fatigue_score, fatigue_level, consistency_score, report
		 FROM workout_analyses
		 WHERE id = $1 AND user_id = $2`,
		id, userID,
	).Scan(&a.ID, &a.UserID, &a.Source, &a.Exercise, &a.Equipment, &a.PerformedAt, &a.CreatedAt,
		&a.TotalSets, &a.TotalReps, &a.ResegmentedSets, &a.FatigueScore, &a.FatigueLevel, &a.ConsistencyScore, &a.Report)
	if err != nil {
		return nil, notFound(err, "analysis")
	}
	return &a, nil
}

// QuerySetFatigue returns the per-set rows of one analysis in set order.
func (db *DB) QuerySetFatigue(ctx context.Context, analysisID uuid.UUID, userID int) ([]models.SetFatigueRow, error) {
	rows, err := db.Pool.Query(ctx,
		setFatigueSelect+` WHERE analysis_id = $1 AND user_id = $2 ORDER BY set_number ASC`,
		analysisID, userID)
	if err != nil {
		return nil, fmt.Errorf("querying set fatigue: %w", err)
	}
	defer rows.Close()
	return scanSetFatigue(rows)
}

// QueryFatigueTrend returns per-set rows across analyses in [start, end),
// oldest first, optionally filtered by exercise.
func (db *DB) QueryFatigueTrend(ctx context.Context, start, end time.Time, exercise string, userID int) ([]models.SetFatigueRow, error) {
	query := setFatigueSelect + ` WHERE performed_at >= $1 AND performed_at < $2 AND user_id = $3`
	args := []any{start, end, userID}
	if exercise != "" {
		query += ` AND LOWER(exercise) = LOWER($4)`
		args = append(args, exercise)
	}
	query += ` ORDER BY performed_at ASC, set_number ASC`

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying fatigue trend: %w", err)
	}
	defer rows.Close()
	return scanSetFatigue(rows)
}

const setFatigueSelect = `SELECT analysis_id, user_id, exercise, performed_at, set_number, rep_count,
 original_rep_count, resegmented, fatigue_score, fatigue_level, consistency_score, curve_score,
 d_omega, i_t, i_j, i_s, q_exec
 FROM set_fatigue`

func scanSetFatigue(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]models.SetFatigueRow, error) {
	var result []models.SetFatigueRow
	for rows.Next() {
		var r models.SetFatigueRow
		if err := rows.Scan(&r.AnalysisID, &r.UserID, &r.Exercise, &r.PerformedAt, &r.SetNumber, &r.RepCount,
			&r.OriginalRepCount, &r.Resegmented, &r.FatigueScore, &r.FatigueLevel, &r.ConsistencyScore, &r.CurveScore,
			&r.DOmega, &r.IT, &r.IJ, &r.IS, &r.QExec); err != nil {
			return nil, fmt.Errorf("scanning set fatigue: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}
