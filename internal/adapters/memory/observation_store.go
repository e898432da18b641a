package memory

import (
	"context"
	"sync"

	"github.com/samirrijal/mietradar/internal/core/domain"
)

// ObservationStore implements ports.ObservationRepository in process memory.
// It is the default user partition and is safe for concurrent use.
type ObservationStore struct {
	mu    sync.RWMutex
	items map[domain.DwellingCategory][]domain.RentObservation
	seq   int64
}

// NewObservationStore creates an empty ObservationStore.
func NewObservationStore() *ObservationStore {
	return &ObservationStore{items: make(map[domain.DwellingCategory][]domain.RentObservation)}
}

// Append stores a copy of obs and assigns its sequence number.
func (s *ObservationStore) Append(ctx context.Context, obs *domain.RentObservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	obs.Seq = s.seq
	s.items[obs.Category] = append(s.items[obs.Category], *obs)
	return nil
}

// List returns a snapshot of the category in insertion order.
func (s *ObservationStore) List(ctx context.Context, category domain.DwellingCategory) ([]domain.RentObservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := s.items[category]
	out := make([]domain.RentObservation, len(list))
	copy(out, list)
	return out, nil
}

// Replace overwrites the element at index, keeping its sequence number and
// date entered.
func (s *ObservationStore) Replace(ctx context.Context, category domain.DwellingCategory, index int, obs *domain.RentObservation) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.items[category]
	if index < 0 || index >= len(list) {
		return false, nil
	}
	obs.Seq = list[index].Seq
	obs.DateEntered = list[index].DateEntered
	list[index] = *obs
	return true, nil
}

// Remove deletes the element at index, preserving the order of the rest.
func (s *ObservationStore) Remove(ctx context.Context, category domain.DwellingCategory, index int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.items[category]
	if index < 0 || index >= len(list) {
		return false, nil
	}
	s.items[category] = append(list[:index:index], list[index+1:]...)
	return true, nil
}

// Clear drops every observation of the category.
func (s *ObservationStore) Clear(ctx context.Context, category domain.DwellingCategory) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.items, category)
	return nil
}

// Latest returns the observation with the highest sequence number, or nil.
func (s *ObservationStore) Latest(ctx context.Context) (*domain.RentObservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *domain.RentObservation
	for _, list := range s.items {
		for i := range list {
			if latest == nil || list[i].Seq > latest.Seq {
				latest = &list[i]
			}
		}
	}
	if latest == nil {
		return nil, nil
	}
	out := *latest
	return &out, nil
}
