// Package fairness derives the reference ("fair") price per square metre for
// a neighborhood and classifies observed rents against it.
//
// The per-neighborhood variation comes from a string hash of the neighborhood
// id, so the same inputs always produce the same fair price.
package fairness

import (
	"math"
	"unicode/utf16"

	"github.com/samirrijal/mietradar/internal/core/domain"
)

// tier is one price band of a category: observed prices above Above use
// Base + h*Spread as the unfairness gap.
type tier struct {
	Above  float64
	Base   float64
	Spread float64
}

// Tiers are ordered from most to least expensive. The last tier has
// Above = -Inf and always matches.
var tiers = map[domain.DwellingCategory][3]tier{
	domain.CategoryApartment: {
		{Above: 25, Base: 0.08, Spread: 0.07},
		{Above: 20, Base: 0.12, Spread: 0.08},
		{Above: math.Inf(-1), Base: 0.15, Spread: 0.10},
	},
	domain.CategorySharedRoom: {
		{Above: 22, Base: 0.05, Spread: 0.05},
		{Above: 18, Base: 0.08, Spread: 0.07},
		{Above: math.Inf(-1), Base: 0.10, Spread: 0.10},
	},
	domain.CategoryDormitory: {
		{Above: 20, Base: 0.03, Spread: 0.04},
		{Above: 16, Base: 0.05, Spread: 0.05},
		{Above: math.Inf(-1), Base: 0.08, Spread: 0.07},
	},
}

// Hash is the 32-bit polynomial rolling hash (h = h*31 + c) over the UTF-16
// code units of id, with two's-complement wraparound.
func Hash(id string) int32 {
	var h int32
	for _, c := range utf16.Encode([]rune(id)) {
		h = h*31 + int32(c)
	}
	return h
}

// HashFraction maps id to a value in [0, 1).
func HashFraction(id string) float64 {
	r := Hash(id) % 100
	if r < 0 {
		r = -r
	}
	return float64(r) / 100
}

// Gap returns the unfairness gap fraction for the given inputs. Unknown
// categories use the dormitory table.
func Gap(id string, avgPricePerSqm float64, category domain.DwellingCategory) float64 {
	ts, ok := tiers[category]
	if !ok {
		ts = tiers[domain.CategoryDormitory]
	}
	h := HashFraction(id)
	for _, t := range ts {
		if avgPricePerSqm > t.Above {
			return t.Base + h*t.Spread
		}
	}
	// unreachable: the last tier matches everything except NaN
	return ts[2].Base + h*ts[2].Spread
}

// DeriveFairPrice returns the fair price per sqm, rounded to cents.
func DeriveFairPrice(id string, avgPricePerSqm float64, category domain.DwellingCategory) float64 {
	return Round2(avgPricePerSqm * (1 - Gap(id, avgPricePerSqm, category)))
}

// UnfairnessPercentage is the signed deviation of avg from fair, in percent.
// A zero fair price yields 0.
func UnfairnessPercentage(avgPricePerSqm, fairPricePerSqm float64) float64 {
	if fairPricePerSqm == 0 {
		return 0
	}
	return (avgPricePerSqm - fairPricePerSqm) / fairPricePerSqm * 100
}

// Apply fills the fairness fields of s from its AvgPricePerSqm.
func Apply(s *domain.NeighborhoodStats, category domain.DwellingCategory) {
	s.FairPricePerSqm = DeriveFairPrice(s.NeighborhoodID, s.AvgPricePerSqm, category)
	s.UnfairnessPercentage = UnfairnessPercentage(s.AvgPricePerSqm, s.FairPricePerSqm)
	s.Band = BandFor(s.UnfairnessPercentage)
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
