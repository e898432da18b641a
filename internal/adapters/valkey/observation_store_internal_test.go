package valkey

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/mietradar/internal/core/domain"
)

func TestKeys(t *testing.T) {
	s := &ObservationStore{prefix: keyPrefix}
	assert.Equal(t, "mietradar:obs:sharedRoom", s.listKey(domain.CategorySharedRoom))
	assert.Equal(t, "mietradar:obs:seq", s.seqKey())

	s.WithPrefix("test:")
	assert.Equal(t, "test:dormitory", s.listKey(domain.CategoryDormitory))
}

func TestDecodeAll(t *testing.T) {
	o := domain.RentObservation{
		Seq: 4, Category: domain.CategoryApartment, NeighborhoodID: "03",
		Coordinates: &domain.GeoPoint{Lat: 48.1, Lng: 11.6},
		MonthlyRent: 1200, AreaSqm: 60, Rooms: 2, YearBuilt: 1985, PricePerSqm: 20,
		DateEntered: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), Provenance: domain.ProvenanceUser,
	}
	data, err := json.Marshal(o)
	require.NoError(t, err)

	list, err := decodeAll([]string{string(data)})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, o.Equal(&list[0]))

	_, err = decodeAll([]string{"{broken"})
	assert.Error(t, err)
}

func TestLatestOf(t *testing.T) {
	assert.Nil(t, latestOf(nil))

	got := latestOf([]domain.RentObservation{
		{Seq: 3, Category: domain.CategoryApartment},
		{Seq: 8, Category: domain.CategoryDormitory},
		{Seq: 5, Category: domain.CategorySharedRoom},
	})
	require.NotNil(t, got)
	assert.Equal(t, domain.CategoryDormitory, got.Category)
}
