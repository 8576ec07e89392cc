package storage

import (
	"context"
	"fmt"
	"time"
)

// DataStats holds aggregate statistics about a user's stored analyses.
type DataStats struct {
	TotalAnalyses      int64          `json:"total_analyses"`
	TotalSets          int64          `json:"total_sets"`
	TotalReps          int64          `json:"total_reps"`
	ResegmentedSets    int64          `json:"resegmented_sets"`
	EarliestData       *time.Time     `json:"earliest_data"`
	LatestData         *time.Time     `json:"latest_data"`
	AnalysesByExercise []ExerciseStat `json:"analyses_by_exercise"`
}

// ExerciseStat holds summary stats for a single exercise.
type ExerciseStat struct {
	Exercise        string  `json:"exercise"`
	Count           int64   `json:"count"`
	AvgFatigueScore float64 `json:"avg_fatigue_score"`
	AvgConsistency  float64 `json:"avg_consistency_score"`
	TotalReps       int64   `json:"total_reps"`
}

// GetDataStats returns aggregate statistics for a user's stored analyses.
func (db *DB) GetDataStats(ctx context.Context, userID int) (*DataStats, error) {
	stats := &DataStats{}

	err := db.Pool.QueryRow(ctx,
		`SELECT COUNT(*), COALESCE(SUM(total_sets), 0), COALESCE(SUM(total_reps), 0),
		 COALESCE(SUM(resegmented_sets), 0), MIN(performed_at), MAX(performed_at)
		 FROM workout_analyses WHERE user_id = $1`, userID,
	).Scan(&stats.TotalAnalyses, &stats.TotalSets, &stats.TotalReps,
		&stats.ResegmentedSets, &stats.EarliestData, &stats.LatestData)
	if err != nil {
		return nil, fmt.Errorf("counting analyses: %w", err)
	}

	rows, err := db.Pool.Query(ctx,
		`SELECT exercise, COUNT(*), AVG(fatigue_score), AVG(consistency_score), COALESCE(SUM(total_reps), 0)
		 FROM workout_analyses
		 WHERE user_id = $1
		 GROUP BY exercise
		 ORDER BY COUNT(*) DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying analyses by exercise: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s ExerciseStat
		if err := rows.Scan(&s.Exercise, &s.Count, &s.AvgFatigueScore, &s.AvgConsistency, &s.TotalReps); err != nil {
			return nil, fmt.Errorf("scanning exercise stat: %w", err)
		}
		stats.AnalysesByExercise = append(stats.AnalysesByExercise, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}
