package workflows

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"

	"github.com/samirrijal/mietradar/internal/adapters/memory"
	"github.com/samirrijal/mietradar/internal/core/domain"
	"github.com/samirrijal/mietradar/internal/core/usecases"
)

// Activity names as registered on the worker.
const (
	ActivityLoadBulkObservations = "LoadBulkObservations"
	ActivitySummarize            = "Summarize"
	ActivityWriteBulkStats       = "WriteBulkStats"
)

// BulkActivities rebuilds the precomputed bulk statistics from raw bulk
// observation files.
type BulkActivities struct {
	InputDir      string
	OutputDir     string
	Neighborhoods *usecases.NeighborhoodService
}

// LoadBulkObservations reads the raw observations of a category. Observations
// without a neighborhood id are resolved from their coordinates. A missing
// input file yields no observations.
func (a *BulkActivities) LoadBulkObservations(ctx context.Context, category domain.DwellingCategory) ([]domain.RentObservation, error) {
	path := filepath.Join(a.InputDir, memory.ObservationsFileName(category))
	list, err := memory.ReadObservationsFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Warn("no raw bulk observations", "category", category, "path", path)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load bulk observations: %w", err)
	}

	var resolved, unresolved int
	for i := range list {
		o := &list[i]
		o.Category = category
		o.Provenance = domain.ProvenanceBulk
		if o.Attributed() || o.Coordinates == nil || a.Neighborhoods == nil {
			continue
		}
		if id, ok := a.Neighborhoods.Resolve(o.Coordinates.Lng, o.Coordinates.Lat); ok {
			o.NeighborhoodID = id
			resolved++
		} else {
			unresolved++
		}
	}
	slog.Info("bulk observations loaded",
		"category", category,
		"count", len(list),
		"resolved", resolved,
		"unresolved", unresolved,
	)
	return list, nil
}

// Summarize reduces observations to per-neighborhood bulk records.
func (a *BulkActivities) Summarize(ctx context.Context, observations []domain.RentObservation) ([]domain.BulkStatsRecord, error) {
	return usecases.Summarize(observations), nil
}

// WriteBulkStats writes the records of a category to the output directory.
func (a *BulkActivities) WriteBulkStats(ctx context.Context, category domain.DwellingCategory, records []domain.BulkStatsRecord) error {
	path := filepath.Join(a.OutputDir, memory.StatsFileName(category))
	if err := memory.WriteStatsFile(path, records); err != nil {
		return err
	}
	slog.Info("bulk stats written", "category", category, "neighborhoods", len(records), "path", path)
	return nil
}

// RebuildCategory runs all three steps in-process. It is used by the local
// precompute path that does not go through Temporal.
func (a *BulkActivities) RebuildCategory(ctx context.Context, category domain.DwellingCategory) (int, error) {
	obs, err := a.LoadBulkObservations(ctx, category)
	if err != nil {
		return 0, err
	}
	if len(obs) == 0 {
		return 0, nil
	}
	records, err := a.Summarize(ctx, obs)
	if err != nil {
		return 0, err
	}
	if err := a.WriteBulkStats(ctx, category, records); err != nil {
		return 0, err
	}
	return len(records), nil
}
