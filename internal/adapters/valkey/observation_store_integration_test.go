//go:build integration
// +build integration

package valkey_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/mietradar/internal/adapters/valkey"
	"github.com/samirrijal/mietradar/internal/core/domain"
)

func setupStore(t *testing.T) *valkey.ObservationStore {
	addr := os.Getenv("MIETRADAR_VALKEY_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	s, err := valkey.New(addr)
	if err != nil {
		t.Skipf("valkey unavailable: %v", err)
	}
	t.Cleanup(s.Close)

	s.WithPrefix(fmt.Sprintf("mietradar-test:%d:", time.Now().UnixNano()))
	t.Cleanup(func() {
		for _, c := range domain.Categories {
			_ = s.Clear(context.Background(), c)
		}
	})
	return s
}

func TestObservationStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t)

	for _, rent := range []float64{500, 600, 700} {
		require.NoError(t, s.Append(ctx, &domain.RentObservation{Category: domain.CategorySharedRoom, NeighborhoodID: "02", MonthlyRent: rent, AreaSqm: 20}))
	}

	applied, err := s.Replace(ctx, domain.CategorySharedRoom, 1, &domain.RentObservation{Category: domain.CategorySharedRoom, MonthlyRent: 650, AreaSqm: 20})
	require.NoError(t, err)
	assert.True(t, applied)
	applied, err = s.Remove(ctx, domain.CategorySharedRoom, 0)
	require.NoError(t, err)
	assert.True(t, applied)
	applied, err = s.Remove(ctx, domain.CategorySharedRoom, 10)
	require.NoError(t, err)
	assert.False(t, applied)

	list, err := s.List(ctx, domain.CategorySharedRoom)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, 650.0, list[0].MonthlyRent)
	assert.Equal(t, 700.0, list[1].MonthlyRent)

	latest, err := s.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, 700.0, latest.MonthlyRent)

	require.NoError(t, s.Clear(ctx, domain.CategorySharedRoom))
	list, _ = s.List(ctx, domain.CategorySharedRoom)
	assert.Empty(t, list)
}
