package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/samirrijal/mietradar/internal/core/domain"
	"github.com/samirrijal/mietradar/internal/core/ports"
	"github.com/samirrijal/mietradar/internal/pkg/metrics"
)

// ObservationService manages the user partition.
type ObservationService struct {
	repo      ports.ObservationRepository
	index     *NeighborhoodService
	publisher ports.EventPublisher
	now       func() time.Time
}

// NewObservationService creates a new ObservationService. index and publisher
// may be nil.
func NewObservationService(repo ports.ObservationRepository, index *NeighborhoodService, publisher ports.EventPublisher) *ObservationService {
	return &ObservationService{repo: repo, index: index, publisher: publisher, now: time.Now}
}

// WithClock overrides the time source. Intended for tests.
func (s *ObservationService) WithClock(now func() time.Time) *ObservationService {
	s.now = now
	return s
}

// Prepare validates obs and fills derived fields in place: category,
// provenance, defaults, price per sqm and (when coordinates are given and no
// id was supplied) the neighborhood id.
func (s *ObservationService) Prepare(category domain.DwellingCategory, obs *domain.RentObservation) error {
	if obs == nil {
		return &domain.ValidationError{Field: "observation", Reason: "is required"}
	}
	if obs.MonthlyRent <= 0 {
		return &domain.ValidationError{Field: "monthly_rent", Reason: "must be positive"}
	}
	if obs.AreaSqm <= 0 {
		return &domain.ValidationError{Field: "area_sqm", Reason: "must be positive"}
	}
	if obs.Rooms == 0 {
		obs.Rooms = 1
	}
	if obs.Rooms < 1 {
		return &domain.ValidationError{Field: "rooms", Reason: "must be at least 1"}
	}
	if obs.PricePerSqm < 0 {
		return &domain.ValidationError{Field: "price_per_sqm", Reason: "must not be negative"}
	}

	now := s.now()
	if obs.YearBuilt == 0 {
		obs.YearBuilt = now.Year()
	}
	obs.Category = category
	obs.Provenance = domain.ProvenanceUser
	obs.DateEntered = now.UTC()
	if obs.PricePerSqm == 0 {
		obs.PricePerSqm = obs.MonthlyRent / obs.AreaSqm
	}

	if obs.NeighborhoodID == "" && obs.Coordinates != nil && s.index != nil {
		if id, ok := s.index.Resolve(obs.Coordinates.Lng, obs.Coordinates.Lat); ok {
			obs.NeighborhoodID = id
		}
	}
	return nil
}

// Append validates and stores a new user observation.
func (s *ObservationService) Append(ctx context.Context, category domain.DwellingCategory, obs *domain.RentObservation) (*domain.RentObservation, error) {
	if err := s.Prepare(category, obs); err != nil {
		return nil, err
	}
	if err := s.repo.Append(ctx, obs); err != nil {
		return nil, fmt.Errorf("append observation: %w", err)
	}

	metrics.ObservationsAppended.WithLabelValues(string(category)).Inc()
	if !obs.Attributed() {
		metrics.ObservationsUnattributed.WithLabelValues(string(category)).Inc()
		slog.InfoContext(ctx, "observation stored without neighborhood", "category", category)
	}

	s.publish(ctx, domain.EventObservationAppended, category, obs)
	return obs, nil
}

// List returns the current user partition for a category.
func (s *ObservationService) List(ctx context.Context, category domain.DwellingCategory) ([]domain.RentObservation, error) {
	return s.repo.List(ctx, category)
}

// Replace overwrites the observation at index. The stored date entered is
// kept. An index outside the current partition is ignored and publishes
// nothing.
func (s *ObservationService) Replace(ctx context.Context, category domain.DwellingCategory, index int, obs *domain.RentObservation) error {
	if err := s.Prepare(category, obs); err != nil {
		return err
	}
	applied, err := s.repo.Replace(ctx, category, index, obs)
	if err != nil {
		return fmt.Errorf("replace observation %d: %w", index, err)
	}
	if applied {
		s.publish(ctx, domain.EventObservationReplaced, category, obs)
	}
	return nil
}

// Remove deletes the observation at index. An index outside the current
// partition is ignored.
func (s *ObservationService) Remove(ctx context.Context, category domain.DwellingCategory, index int) error {
	applied, err := s.repo.Remove(ctx, category, index)
	if err != nil {
		return fmt.Errorf("remove observation %d: %w", index, err)
	}
	if applied {
		s.publish(ctx, domain.EventObservationRemoved, category, nil)
	}
	return nil
}

// RemoveAll clears the user partition of a category.
func (s *ObservationService) RemoveAll(ctx context.Context, category domain.DwellingCategory) error {
	if err := s.repo.Clear(ctx, category); err != nil {
		return fmt.Errorf("clear observations: %w", err)
	}
	s.publish(ctx, domain.EventObservationsCleared, category, nil)
	return nil
}

// Latest returns the most recently appended observation across categories.
func (s *ObservationService) Latest(ctx context.Context) (*domain.RentObservation, error) {
	return s.repo.Latest(ctx)
}

func (s *ObservationService) publish(ctx context.Context, typ string, category domain.DwellingCategory, obs *domain.RentObservation) {
	if s.publisher == nil {
		return
	}
	event := &domain.ObservationEvent{
		ID:          uuid.NewString(),
		Type:        typ,
		Category:    category,
		Observation: obs,
		OccurredAt:  s.now().UTC(),
	}
	if err := s.publisher.PublishObservationEvent(ctx, event); err != nil {
		metrics.EventPublishErrors.Inc()
		slog.WarnContext(ctx, "publish observation event failed", "type", typ, "error", err)
	}
}
