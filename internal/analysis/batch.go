package analysis

import (
	"context"
	"fmt"

	"github.com/claude/replens/internal/models"
	"golang.org/x/sync/errgroup"
)

// AnalyzeBatch analyzes independent workouts with at most workers running at
// once. Results keep the input order. The first error cancels the rest.
func (a *Analyzer) AnalyzeBatch(ctx context.Context, workouts []models.Workout, workers int) ([]*WorkoutAnalysis, error) {
	if workers < 1 {
		workers = 1
	}
	results := make([]*WorkoutAnalysis, len(workouts))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, w := range workouts {
		g.Go(func() error {
			res, err := a.Analyze(ctx, w)
			if err != nil {
				return fmt.Errorf("workout %d: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
