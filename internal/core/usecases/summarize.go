package usecases

import (
	"math"
	"sort"

	"github.com/samirrijal/mietradar/internal/core/domain"
	"github.com/samirrijal/mietradar/internal/core/fairness"
)

// Summarize builds the precomputed bulk records from raw observations:
// arithmetic mean rent and area (rounded to whole units), mean price per sqm
// (rounded to cents) and min/max rent per neighborhood. Unattributed
// observations are dropped. Records are sorted by id.
func Summarize(observations []domain.RentObservation) []domain.BulkStatsRecord {
	groups := make(map[string]*rentAggregate)
	for i := range observations {
		o := &observations[i]
		if !o.Attributed() {
			continue
		}
		g, ok := groups[o.NeighborhoodID]
		if !ok {
			g = &rentAggregate{}
			groups[o.NeighborhoodID] = g
		}
		g.add(o)
	}

	out := make([]domain.BulkStatsRecord, 0, len(groups))
	for id, g := range groups {
		n := float64(g.count)
		out = append(out, domain.BulkStatsRecord{
			ID:             id,
			EntryCount:     g.count,
			AvgRent:        math.Round(g.sumRent / n),
			MinRent:        g.minRent,
			MaxRent:        g.maxRent,
			AvgAreaSqm:     math.Round(g.sumArea / n),
			AvgPricePerSqm: fairness.Round2(g.sumPrice / n),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Distribution computes descriptive statistics over values. The mode is taken
// over values rounded to the nearest 50; ties go to the larger bucket.
func Distribution(values []float64) domain.DistributionStats {
	if len(values) == 0 {
		return domain.DistributionStats{}
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	var sum float64
	for _, v := range sorted {
		sum += v
	}
	n := float64(len(sorted))
	mean := sum / n

	mid := len(sorted) / 2
	median := sorted[mid]
	if len(sorted)%2 == 0 {
		median = (sorted[mid-1] + sorted[mid]) / 2
	}

	var stdDev float64
	if len(sorted) > 1 {
		var sq float64
		for _, v := range sorted {
			sq += (v - mean) * (v - mean)
		}
		stdDev = math.Sqrt(sq / n)
	}

	freq := make(map[float64]int)
	for _, v := range sorted {
		freq[math.Round(v/50)*50]++
	}
	var mode float64
	best := 0
	for bucket, c := range freq {
		if c > best || (c == best && bucket > mode) {
			mode, best = bucket, c
		}
	}

	return domain.DistributionStats{
		Count:  len(sorted),
		Mean:   mean,
		Median: median,
		StdDev: stdDev,
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		Mode:   mode,
	}
}
