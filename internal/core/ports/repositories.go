package ports

import (
	"context"

	"github.com/samirrijal/mietradar/internal/core/domain"
)

// ObservationRepository holds the user partition. Index-based mutations with
// an out-of-range index are no-ops and report applied=false with a nil error.
// Replace keeps the stored seq and date entered. List must return a fresh
// snapshot on every call.
type ObservationRepository interface {
	Append(ctx context.Context, obs *domain.RentObservation) error
	List(ctx context.Context, category domain.DwellingCategory) ([]domain.RentObservation, error)
	Replace(ctx context.Context, category domain.DwellingCategory, index int, obs *domain.RentObservation) (applied bool, err error)
	Remove(ctx context.Context, category domain.DwellingCategory, index int) (applied bool, err error)
	Clear(ctx context.Context, category domain.DwellingCategory) error
	// Latest returns the most recently appended observation across all
	// categories, or nil when the partition is empty.
	Latest(ctx context.Context) (*domain.RentObservation, error)
}

// BulkRepository exposes the read-only bulk partition.
type BulkRepository interface {
	ListBulk(ctx context.Context, category domain.DwellingCategory) ([]domain.RentObservation, error)
	// BulkStats returns the precomputed per-neighborhood summary keyed by id.
	BulkStats(ctx context.Context, category domain.DwellingCategory) (map[string]domain.BulkStatsRecord, error)
}
