package fairness_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/mietradar/internal/core/domain"
	"github.com/samirrijal/mietradar/internal/core/fairness"
)

func TestHash_Golden(t *testing.T) {
	assert.Equal(t, int32(1537), fairness.Hash("01"))
	assert.Equal(t, int32(0), fairness.Hash(""))
	// wraps past int32 and goes negative
	assert.Equal(t, int32(-1652442035), fairness.Hash("München"))
}

func TestHashFraction(t *testing.T) {
	assert.InDelta(t, 0.37, fairness.HashFraction("01"), 1e-12)
	assert.InDelta(t, 0.35, fairness.HashFraction("München"), 1e-12)
	assert.InDelta(t, 0.0, fairness.HashFraction(""), 1e-12)
}

func TestDeriveFairPrice_Golden(t *testing.T) {
	// h = 0.37, tier >20: gap = 0.12 + 0.37*0.08 = 0.1496
	got := fairness.DeriveFairPrice("01", 23.5, domain.CategoryApartment)
	assert.Equal(t, 19.98, got)
}

func TestDeriveFairPrice_Deterministic(t *testing.T) {
	for _, cat := range domain.Categories {
		a := fairness.DeriveFairPrice("09.14", 21.37, cat)
		b := fairness.DeriveFairPrice("09.14", 21.37, cat)
		assert.Equal(t, math.Float64bits(a), math.Float64bits(b), "category %s", cat)
	}
}

func TestGap_Tiers(t *testing.T) {
	h := fairness.HashFraction("01")
	cases := []struct {
		cat   domain.DwellingCategory
		price float64
		want  float64
	}{
		{domain.CategoryApartment, 26, 0.08 + h*0.07},
		{domain.CategoryApartment, 25, 0.12 + h*0.08},
		{domain.CategoryApartment, 20, 0.15 + h*0.10},
		{domain.CategorySharedRoom, 22.5, 0.05 + h*0.05},
		{domain.CategorySharedRoom, 19, 0.08 + h*0.07},
		{domain.CategorySharedRoom, 18, 0.10 + h*0.10},
		{domain.CategoryDormitory, 21, 0.03 + h*0.04},
		{domain.CategoryDormitory, 17, 0.05 + h*0.05},
		{domain.CategoryDormitory, 16, 0.08 + h*0.07},
	}
	for _, tc := range cases {
		assert.InDelta(t, tc.want, fairness.Gap("01", tc.price, tc.cat), 1e-12, "%s @ %.1f", tc.cat, tc.price)
	}
}

func TestApply_UnfairnessRoundTrip(t *testing.T) {
	s := domain.NeighborhoodStats{NeighborhoodID: "05", AvgPricePerSqm: 21.8}
	fairness.Apply(&s, domain.CategoryApartment)

	fair := fairness.DeriveFairPrice("05", 21.8, domain.CategoryApartment)
	require.Equal(t, fair, s.FairPricePerSqm)
	assert.InDelta(t, (21.8-fair)/fair*100, s.UnfairnessPercentage, 1e-6)
	assert.Equal(t, fairness.BandFor(s.UnfairnessPercentage), s.Band)
}

func TestUnfairnessPercentage_ZeroFair(t *testing.T) {
	assert.Equal(t, 0.0, fairness.UnfairnessPercentage(10, 0))
}

func TestBandFor(t *testing.T) {
	assert.Equal(t, fairness.BandVeryUnfair, fairness.BandFor(20))
	assert.Equal(t, fairness.BandHighlyUnfair, fairness.BandFor(17.5))
	assert.Equal(t, fairness.BandUnfair, fairness.BandFor(10))
	assert.Equal(t, fairness.BandModeratelyUnfair, fairness.BandFor(5))
	assert.Equal(t, fairness.BandSlightlyAbove, fairness.BandFor(0))
	assert.Equal(t, fairness.BandFair, fairness.BandFor(-5))
	assert.Equal(t, fairness.BandVeryFair, fairness.BandFor(-5.01))
}

func TestLevelFor(t *testing.T) {
	assert.Equal(t, fairness.LevelExcellent, fairness.LevelFor(-2))
	assert.Equal(t, fairness.LevelGood, fairness.LevelFor(-0.5))
	assert.Equal(t, fairness.LevelFair, fairness.LevelFor(2))
	assert.Equal(t, fairness.LevelHigh, fairness.LevelFor(3.9))
	assert.Equal(t, fairness.LevelVeryHigh, fairness.LevelFor(4.01))
}
