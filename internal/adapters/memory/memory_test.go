package memory_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/mietradar/internal/adapters/memory"
	"github.com/samirrijal/mietradar/internal/core/domain"
)

func obs(cat domain.DwellingCategory, rent float64) *domain.RentObservation {
	return &domain.RentObservation{Category: cat, NeighborhoodID: "01", MonthlyRent: rent, AreaSqm: 40}
}

func TestObservationStore_AppendListOrder(t *testing.T) {
	ctx := context.Background()
	s := memory.NewObservationStore()

	for _, rent := range []float64{500, 600, 700} {
		require.NoError(t, s.Append(ctx, obs(domain.CategoryApartment, rent)))
	}
	list, err := s.List(ctx, domain.CategoryApartment)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []float64{500, 600, 700}, []float64{list[0].MonthlyRent, list[1].MonthlyRent, list[2].MonthlyRent})

	// snapshots are independent of the store
	list[0].MonthlyRent = 1
	again, _ := s.List(ctx, domain.CategoryApartment)
	assert.Equal(t, 500.0, again[0].MonthlyRent)

	empty, err := s.List(ctx, domain.CategoryDormitory)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestObservationStore_OutOfRangeIsNoOp(t *testing.T) {
	ctx := context.Background()
	s := memory.NewObservationStore()
	require.NoError(t, s.Append(ctx, obs(domain.CategoryApartment, 500)))

	for _, index := range []int{1, -1} {
		applied, err := s.Replace(ctx, domain.CategoryApartment, index, obs(domain.CategoryApartment, 1))
		require.NoError(t, err)
		assert.False(t, applied, "replace at %d", index)
	}
	applied, err := s.Remove(ctx, domain.CategoryApartment, 5)
	require.NoError(t, err)
	assert.False(t, applied)
	applied, err = s.Remove(ctx, domain.CategorySharedRoom, 0)
	require.NoError(t, err)
	assert.False(t, applied)

	list, _ := s.List(ctx, domain.CategoryApartment)
	require.Len(t, list, 1)
	assert.Equal(t, 500.0, list[0].MonthlyRent)
}

func TestObservationStore_ReplaceRemoveClear(t *testing.T) {
	ctx := context.Background()
	s := memory.NewObservationStore()
	for _, rent := range []float64{500, 600, 700} {
		require.NoError(t, s.Append(ctx, obs(domain.CategorySharedRoom, rent)))
	}

	before, _ := s.List(ctx, domain.CategorySharedRoom)
	entered := before[2].DateEntered

	replacement := obs(domain.CategorySharedRoom, 750)
	replacement.DateEntered = entered.Add(time.Hour)
	applied, err := s.Replace(ctx, domain.CategorySharedRoom, 2, replacement)
	require.NoError(t, err)
	assert.True(t, applied)
	applied, err = s.Remove(ctx, domain.CategorySharedRoom, 0)
	require.NoError(t, err)
	assert.True(t, applied)

	list, _ := s.List(ctx, domain.CategorySharedRoom)
	require.Len(t, list, 2)
	assert.Equal(t, 600.0, list[0].MonthlyRent)
	assert.Equal(t, 750.0, list[1].MonthlyRent)
	assert.Equal(t, int64(3), list[1].Seq, "replace keeps the sequence number")
	assert.True(t, list[1].DateEntered.Equal(entered), "replace keeps the date entered")

	require.NoError(t, s.Clear(ctx, domain.CategorySharedRoom))
	list, _ = s.List(ctx, domain.CategorySharedRoom)
	assert.Empty(t, list)
}

func TestObservationStore_Latest(t *testing.T) {
	ctx := context.Background()
	s := memory.NewObservationStore()

	latest, err := s.Latest(ctx)
	require.NoError(t, err)
	assert.Nil(t, latest)

	require.NoError(t, s.Append(ctx, obs(domain.CategoryDormitory, 300)))
	require.NoError(t, s.Append(ctx, obs(domain.CategoryApartment, 900)))

	latest, err = s.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.CategoryApartment, latest.Category)

	require.NoError(t, s.Clear(ctx, domain.CategoryApartment))
	latest, _ = s.Latest(ctx)
	assert.Equal(t, domain.CategoryDormitory, latest.Category)
}

func TestObservationStore_ConcurrentAppend(t *testing.T) {
	ctx := context.Background()
	s := memory.NewObservationStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Append(ctx, obs(domain.CategoryApartment, 800))
			_, _ = s.List(ctx, domain.CategoryApartment)
		}()
	}
	wg.Wait()

	list, _ := s.List(ctx, domain.CategoryApartment)
	assert.Len(t, list, 50)
}

func TestLoadBulkDataset(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "bulk_stats_apartment.json"), `[
		{"id": "01", "entryCount": 9, "avgRent": 1100, "minRent": 800, "maxRent": 1500, "avgAreaSqm": 50, "avgPricePerSqm": 22},
		{"stadtviertel": 2, "entryCount": 3, "avgRent": 700, "minRent": 650, "maxRent": 800, "avgM2": 35, "avgPricePerSqm": 20}
	]`)
	writeFile(t, filepath.Join(dir, "bulk_observations_apartment.json"), `[
		{"neighborhood_id": "01", "monthly_rent": 1000, "area_sqm": 50}
	]`)

	d, err := memory.LoadBulkDataset(dir)
	require.NoError(t, err)

	ctx := context.Background()
	stats, err := d.BulkStats(ctx, domain.CategoryApartment)
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, 22.0, stats["01"].AvgPricePerSqm)
	assert.Equal(t, 35.0, stats["2"].AvgAreaSqm)

	// returned maps are copies
	delete(stats, "01")
	again, _ := d.BulkStats(ctx, domain.CategoryApartment)
	assert.Len(t, again, 2)

	list, err := d.ListBulk(ctx, domain.CategoryApartment)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, domain.ProvenanceBulk, list[0].Provenance)
	assert.Equal(t, domain.CategoryApartment, list[0].Category)

	empty, err := d.BulkStats(ctx, domain.CategoryDormitory)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestLoadBulkDataset_Malformed(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "bulk_stats_dormitory.json"), `{"not": "a list"}`)
	_, err := memory.LoadBulkDataset(dir)
	assert.Error(t, err)

	writeFile(t, filepath.Join(dir, "bulk_stats_dormitory.json"), `[{"entryCount": 1}]`)
	_, err = memory.LoadBulkDataset(dir)
	assert.Error(t, err)
}

func TestWriteStatsFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	recs := []domain.BulkStatsRecord{{ID: "07", EntryCount: 2, AvgRent: 950, MinRent: 900, MaxRent: 1000, AvgAreaSqm: 40, AvgPricePerSqm: 23.75}}
	require.NoError(t, memory.WriteStatsFile(path, recs))

	got, err := memory.ReadStatsFile(path)
	require.NoError(t, err)
	assert.Equal(t, recs, got)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}
