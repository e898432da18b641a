package usecases_test

import (
	"context"

	"github.com/samirrijal/mietradar/internal/core/domain"
)

// --- Mock ObservationRepository ---

type mockObservationRepo struct {
	items  map[domain.DwellingCategory][]domain.RentObservation
	seq    int64
	listFn func(ctx context.Context, category domain.DwellingCategory) ([]domain.RentObservation, error)
}

func newMockObservationRepo() *mockObservationRepo {
	return &mockObservationRepo{items: make(map[domain.DwellingCategory][]domain.RentObservation)}
}

func (m *mockObservationRepo) Append(ctx context.Context, obs *domain.RentObservation) error {
	m.seq++
	obs.Seq = m.seq
	m.items[obs.Category] = append(m.items[obs.Category], *obs)
	return nil
}

func (m *mockObservationRepo) List(ctx context.Context, category domain.DwellingCategory) ([]domain.RentObservation, error) {
	if m.listFn != nil {
		return m.listFn(ctx, category)
	}
	return append([]domain.RentObservation(nil), m.items[category]...), nil
}

func (m *mockObservationRepo) Replace(ctx context.Context, category domain.DwellingCategory, index int, obs *domain.RentObservation) (bool, error) {
	list := m.items[category]
	if index < 0 || index >= len(list) {
		return false, nil
	}
	obs.Seq = list[index].Seq
	obs.DateEntered = list[index].DateEntered
	list[index] = *obs
	return true, nil
}

func (m *mockObservationRepo) Remove(ctx context.Context, category domain.DwellingCategory, index int) (bool, error) {
	list := m.items[category]
	if index < 0 || index >= len(list) {
		return false, nil
	}
	m.items[category] = append(list[:index:index], list[index+1:]...)
	return true, nil
}

func (m *mockObservationRepo) Clear(ctx context.Context, category domain.DwellingCategory) error {
	delete(m.items, category)
	return nil
}

func (m *mockObservationRepo) Latest(ctx context.Context) (*domain.RentObservation, error) {
	var latest *domain.RentObservation
	for _, list := range m.items {
		for i := range list {
			if latest == nil || list[i].Seq > latest.Seq {
				o := list[i]
				latest = &o
			}
		}
	}
	return latest, nil
}

// --- Mock BulkRepository ---

type mockBulkRepo struct {
	stats map[domain.DwellingCategory]map[string]domain.BulkStatsRecord
	obs   map[domain.DwellingCategory][]domain.RentObservation
	err   error
}

func (m *mockBulkRepo) ListBulk(ctx context.Context, category domain.DwellingCategory) ([]domain.RentObservation, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.obs[category], nil
}

func (m *mockBulkRepo) BulkStats(ctx context.Context, category domain.DwellingCategory) (map[string]domain.BulkStatsRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.stats[category], nil
}

// --- Mock EventPublisher ---

type mockPublisher struct {
	events []*domain.ObservationEvent
	err    error
}

func (m *mockPublisher) PublishObservationEvent(ctx context.Context, event *domain.ObservationEvent) error {
	m.events = append(m.events, event)
	return m.err
}
