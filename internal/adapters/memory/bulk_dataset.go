package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/samirrijal/mietradar/internal/core/domain"
)

// BulkDataset implements ports.BulkRepository over files loaded once at
// startup. It is read-only after construction.
type BulkDataset struct {
	stats map[domain.DwellingCategory]map[string]domain.BulkStatsRecord
	obs   map[domain.DwellingCategory][]domain.RentObservation
}

// NewBulkDataset builds a dataset from already loaded records.
func NewBulkDataset(stats map[domain.DwellingCategory][]domain.BulkStatsRecord, obs map[domain.DwellingCategory][]domain.RentObservation) *BulkDataset {
	d := &BulkDataset{
		stats: make(map[domain.DwellingCategory]map[string]domain.BulkStatsRecord, len(stats)),
		obs:   make(map[domain.DwellingCategory][]domain.RentObservation, len(obs)),
	}
	for cat, recs := range stats {
		m := make(map[string]domain.BulkStatsRecord, len(recs))
		for _, r := range recs {
			m[r.ID] = r
		}
		d.stats[cat] = m
	}
	for cat, list := range obs {
		out := make([]domain.RentObservation, len(list))
		for i, o := range list {
			o.Category = cat
			o.Provenance = domain.ProvenanceBulk
			out[i] = o
		}
		d.obs[cat] = out
	}
	return d
}

// StatsFileName is the bulk statistics file of a category inside the data directory.
func StatsFileName(category domain.DwellingCategory) string {
	return "bulk_stats_" + string(category) + ".json"
}

// ObservationsFileName is the optional raw bulk observation file of a category.
func ObservationsFileName(category domain.DwellingCategory) string {
	return "bulk_observations_" + string(category) + ".json"
}

// LoadBulkDataset reads every category's files from dir. Missing files leave
// the category empty.
func LoadBulkDataset(dir string) (*BulkDataset, error) {
	stats := make(map[domain.DwellingCategory][]domain.BulkStatsRecord)
	obs := make(map[domain.DwellingCategory][]domain.RentObservation)

	for _, cat := range domain.Categories {
		recs, err := ReadStatsFile(filepath.Join(dir, StatsFileName(cat)))
		switch {
		case errors.Is(err, fs.ErrNotExist):
			slog.Warn("no bulk stats for category", "category", cat, "dir", dir)
		case err != nil:
			return nil, err
		default:
			stats[cat] = recs
		}

		list, err := ReadObservationsFile(filepath.Join(dir, ObservationsFileName(cat)))
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, err
		default:
			obs[cat] = list
		}
	}

	d := NewBulkDataset(stats, obs)
	slog.Info("bulk dataset loaded",
		"dir", dir,
		"apartment", len(d.stats[domain.CategoryApartment]),
		"sharedRoom", len(d.stats[domain.CategorySharedRoom]),
		"dormitory", len(d.stats[domain.CategoryDormitory]),
	)
	return d, nil
}

// ListBulk returns the raw bulk observations of a category, if any were loaded.
func (d *BulkDataset) ListBulk(ctx context.Context, category domain.DwellingCategory) ([]domain.RentObservation, error) {
	list := d.obs[category]
	out := make([]domain.RentObservation, len(list))
	copy(out, list)
	return out, nil
}

// BulkStats returns a copy of the precomputed records keyed by neighborhood id.
func (d *BulkDataset) BulkStats(ctx context.Context, category domain.DwellingCategory) (map[string]domain.BulkStatsRecord, error) {
	src := d.stats[category]
	out := make(map[string]domain.BulkStatsRecord, len(src))
	for id, r := range src {
		out[id] = r
	}
	return out, nil
}

// bulkStatsFileRecord accepts both the current keys and the legacy
// stadtviertel/avgM2 names.
type bulkStatsFileRecord struct {
	ID             any      `json:"id"`
	Stadtviertel   any      `json:"stadtviertel"`
	EntryCount     int      `json:"entryCount"`
	AvgRent        float64  `json:"avgRent"`
	MinRent        float64  `json:"minRent"`
	MaxRent        float64  `json:"maxRent"`
	AvgAreaSqm     *float64 `json:"avgAreaSqm"`
	AvgM2          *float64 `json:"avgM2"`
	AvgPricePerSqm float64  `json:"avgPricePerSqm"`
}

func (r bulkStatsFileRecord) record() (domain.BulkStatsRecord, error) {
	id := idString(r.ID)
	if id == "" {
		id = idString(r.Stadtviertel)
	}
	if id == "" {
		return domain.BulkStatsRecord{}, errors.New("record without id")
	}
	out := domain.BulkStatsRecord{
		ID:             id,
		EntryCount:     r.EntryCount,
		AvgRent:        r.AvgRent,
		MinRent:        r.MinRent,
		MaxRent:        r.MaxRent,
		AvgPricePerSqm: r.AvgPricePerSqm,
	}
	switch {
	case r.AvgAreaSqm != nil:
		out.AvgAreaSqm = *r.AvgAreaSqm
	case r.AvgM2 != nil:
		out.AvgAreaSqm = *r.AvgM2
	}
	return out, nil
}

func idString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	}
	return ""
}

// ReadStatsFile decodes a bulk statistics file.
func ReadStatsFile(path string) ([]domain.BulkStatsRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw []bulkStatsFileRecord
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	out := make([]domain.BulkStatsRecord, 0, len(raw))
	for i, r := range raw {
		rec, err := r.record()
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", path, i, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// ReadObservationsFile decodes a raw bulk observation file.
func ReadObservationsFile(path string) ([]domain.RentObservation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var out []domain.RentObservation
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return out, nil
}

// WriteStatsFile writes records in the current key format.
func WriteStatsFile(path string, records []domain.BulkStatsRecord) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode bulk stats: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
