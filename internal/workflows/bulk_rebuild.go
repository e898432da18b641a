package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/samirrijal/mietradar/internal/core/domain"
)

// TaskQueue is the default Temporal task queue of the precompute worker.
const TaskQueue = "mietradar-precompute"

// BulkRebuildInput is the input for the bulk rebuild workflow. No categories
// means all of them.
type BulkRebuildInput struct {
	Categories []domain.DwellingCategory
}

// BulkRebuildResult reports how many neighborhood records were written per
// category. Categories without raw input are reported as skipped.
type BulkRebuildResult struct {
	Records map[domain.DwellingCategory]int
	Skipped []domain.DwellingCategory
}

// BulkRebuildWorkflow loads, summarizes, and writes the bulk statistics of
// each category in turn. A failing category fails the workflow; files of
// categories already written stay in place.
func BulkRebuildWorkflow(ctx workflow.Context, input BulkRebuildInput) (*BulkRebuildResult, error) {
	logger := workflow.GetLogger(ctx)

	categories := input.Categories
	if len(categories) == 0 {
		categories = domain.Categories
	}
	logger.Info("Starting bulk rebuild", "categories", len(categories))

	actOpts := workflow.ActivityOptions{
		StartToCloseTimeout: 5 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, actOpts)

	result := &BulkRebuildResult{Records: make(map[domain.DwellingCategory]int)}
	for _, category := range categories {
		var obs []domain.RentObservation
		if err := workflow.ExecuteActivity(ctx, ActivityLoadBulkObservations, category).Get(ctx, &obs); err != nil {
			return nil, err
		}
		if len(obs) == 0 {
			logger.Warn("no raw observations, keeping existing bulk stats", "category", category)
			result.Skipped = append(result.Skipped, category)
			continue
		}

		var records []domain.BulkStatsRecord
		if err := workflow.ExecuteActivity(ctx, ActivitySummarize, obs).Get(ctx, &records); err != nil {
			return nil, err
		}

		if err := workflow.ExecuteActivity(ctx, ActivityWriteBulkStats, category, records).Get(ctx, nil); err != nil {
			return nil, err
		}
		result.Records[category] = len(records)
		logger.Info("Category rebuilt", "category", category, "records", len(records))
	}

	return result, nil
}
