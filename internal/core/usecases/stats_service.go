package usecases

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/samirrijal/mietradar/internal/core/domain"
	"github.com/samirrijal/mietradar/internal/core/fairness"
	"github.com/samirrijal/mietradar/internal/core/ports"
	"github.com/samirrijal/mietradar/internal/pkg/metrics"
	"github.com/samirrijal/mietradar/internal/pkg/telemetry"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// StatsService merges precomputed bulk statistics with the live user
// partition. Nothing is cached: every call reads both partitions again.
type StatsService struct {
	bulk ports.BulkRepository
	user ports.ObservationRepository
}

// NewStatsService creates a new StatsService.
func NewStatsService(bulk ports.BulkRepository, user ports.ObservationRepository) *StatsService {
	return &StatsService{bulk: bulk, user: user}
}

// rentAggregate accumulates per-neighborhood sums of observations.
type rentAggregate struct {
	count    int
	sumRent  float64
	sumArea  float64
	sumPrice float64
	minRent  float64
	maxRent  float64
}

func (a *rentAggregate) add(o *domain.RentObservation) {
	if a.count == 0 {
		a.minRent, a.maxRent = o.MonthlyRent, o.MonthlyRent
	} else {
		a.minRent = math.Min(a.minRent, o.MonthlyRent)
		a.maxRent = math.Max(a.maxRent, o.MonthlyRent)
	}
	a.count++
	a.sumRent += o.MonthlyRent
	a.sumArea += o.AreaSqm
	a.sumPrice += o.EffectivePricePerSqm()
}

// ComputeStats returns the merged statistics per neighborhood for category.
func (s *StatsService) ComputeStats(ctx context.Context, category domain.DwellingCategory) (map[string]domain.NeighborhoodStats, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "stats.compute",
		trace.WithAttributes(attribute.String("category", string(category))))
	defer span.End()

	start := time.Now()
	defer func() {
		metrics.StatsComputeDuration.WithLabelValues(string(category)).Observe(time.Since(start).Seconds())
	}()

	bulk, err := s.bulk.BulkStats(ctx, category)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("load bulk stats: %w", err)
	}
	userObs, err := s.user.List(ctx, category)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("list user observations: %w", err)
	}
	span.SetAttributes(
		attribute.Int("bulk.neighborhoods", len(bulk)),
		attribute.Int("user.observations", len(userObs)),
	)

	return MergeStats(category, bulk, userObs), nil
}

// MergeStats is the pure merge step of ComputeStats. The bulk map is not
// modified.
func MergeStats(category domain.DwellingCategory, bulk map[string]domain.BulkStatsRecord, userObs []domain.RentObservation) map[string]domain.NeighborhoodStats {
	out := make(map[string]domain.NeighborhoodStats, len(bulk))
	for id, rec := range bulk {
		if rec.EntryCount <= 0 {
			continue
		}
		st := domain.StatsFromRecord(rec)
		st.NeighborhoodID = id
		out[id] = st
	}

	groups := make(map[string]*rentAggregate)
	for i := range userObs {
		o := &userObs[i]
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

	for id, g := range groups {
		n := float64(g.count)
		userAvgRent := g.sumRent / n
		userAvgArea := g.sumArea / n
		userAvgPrice := g.sumPrice / n

		existing, ok := out[id]
		if !ok {
			out[id] = domain.NeighborhoodStats{
				NeighborhoodID: id,
				EntryCount:     g.count,
				AvgRent:        math.Round(userAvgRent),
				MinRent:        g.minRent,
				MaxRent:        g.maxRent,
				AvgAreaSqm:     math.Round(userAvgArea),
				AvgPricePerSqm: fairness.Round2(userAvgPrice),
			}
			continue
		}

		bc := float64(existing.EntryCount)
		total := bc + n
		out[id] = domain.NeighborhoodStats{
			NeighborhoodID: id,
			EntryCount:     existing.EntryCount + g.count,
			AvgRent:        math.Round((existing.AvgRent*bc + userAvgRent*n) / total),
			MinRent:        math.Min(existing.MinRent, g.minRent),
			MaxRent:        math.Max(existing.MaxRent, g.maxRent),
			AvgAreaSqm:     math.Round((existing.AvgAreaSqm*bc + userAvgArea*n) / total),
			AvgPricePerSqm: fairness.Round2((existing.AvgPricePerSqm*bc + userAvgPrice*n) / total),
		}
	}

	for id, st := range out {
		fairness.Apply(&st, category)
		out[id] = st
	}
	return out
}

// StatsFor returns the merged statistics of one neighborhood.
func (s *StatsService) StatsFor(ctx context.Context, category domain.DwellingCategory, id string) (*domain.NeighborhoodStats, error) {
	all, err := s.ComputeStats(ctx, category)
	if err != nil {
		return nil, err
	}
	st, ok := all[id]
	if !ok {
		return nil, fmt.Errorf("stats for %s: %w", id, domain.ErrNotFound)
	}
	return &st, nil
}

// SortedStats returns the merged statistics ordered by neighborhood id.
func (s *StatsService) SortedStats(ctx context.Context, category domain.DwellingCategory) ([]domain.NeighborhoodStats, error) {
	all, err := s.ComputeStats(ctx, category)
	if err != nil {
		return nil, err
	}
	out := make([]domain.NeighborhoodStats, 0, len(all))
	for _, st := range all {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NeighborhoodID < out[j].NeighborhoodID })
	return out, nil
}

// Distribution summarises prices per sqm of a neighborhood over both
// partitions. An empty id covers all attributed observations.
func (s *StatsService) Distribution(ctx context.Context, category domain.DwellingCategory, id string) (*domain.DistributionStats, error) {
	bulk, err := s.bulk.ListBulk(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("list bulk observations: %w", err)
	}
	user, err := s.user.List(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("list user observations: %w", err)
	}

	var prices []float64
	for _, part := range [][]domain.RentObservation{bulk, user} {
		for _, o := range part {
			if !o.Attributed() {
				continue
			}
			if id != "" && o.NeighborhoodID != id {
				continue
			}
			prices = append(prices, o.EffectivePricePerSqm())
		}
	}
	d := Distribution(prices)
	return &d, nil
}

// CheckRent compares a single observation with its neighborhood's merged
// statistics.
func (s *StatsService) CheckRent(ctx context.Context, category domain.DwellingCategory, obs *domain.RentObservation) (*domain.RentCheck, error) {
	if obs == nil || !obs.Attributed() {
		return nil, domain.ErrNoComparisonData
	}
	all, err := s.ComputeStats(ctx, category)
	if err != nil {
		return nil, err
	}
	st, ok := all[obs.NeighborhoodID]
	if !ok || st.AvgPricePerSqm == 0 {
		return nil, fmt.Errorf("%s: %w", obs.NeighborhoodID, domain.ErrNoComparisonData)
	}

	price := obs.EffectivePricePerSqm()
	diff := price - st.AvgPricePerSqm
	return &domain.RentCheck{
		NeighborhoodID:    obs.NeighborhoodID,
		PricePerSqm:       fairness.Round2(price),
		AvgPricePerSqm:    st.AvgPricePerSqm,
		Difference:        fairness.Round2(diff),
		PercentDifference: math.Round(diff/st.AvgPricePerSqm*1000) / 10,
		Level:             fairness.LevelFor(diff),
		Stats:             st,
	}, nil
}
