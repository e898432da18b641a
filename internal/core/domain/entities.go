package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrUnknownCategory is returned for an unrecognised dwelling category.
	ErrUnknownCategory = errors.New("unknown dwelling category")
	// ErrNoComparisonData is returned when a neighborhood has no statistics to compare against.
	ErrNoComparisonData = errors.New("no comparison data for neighborhood")
)

// DwellingCategory partitions every observation and statistic.
type DwellingCategory string

const (
	CategoryApartment  DwellingCategory = "apartment"
	CategorySharedRoom DwellingCategory = "sharedRoom"
	CategoryDormitory  DwellingCategory = "dormitory"
)

// Categories lists all dwelling categories in display order.
var Categories = []DwellingCategory{CategoryApartment, CategorySharedRoom, CategoryDormitory}

// ParseCategory accepts the canonical names plus the legacy "wg" alias.
func ParseCategory(s string) (DwellingCategory, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "apartment":
		return CategoryApartment, nil
	case "sharedroom", "shared_room", "wg":
		return CategorySharedRoom, nil
	case "dormitory":
		return CategoryDormitory, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

// Provenance tells which partition an observation belongs to.
type Provenance string

const (
	ProvenanceBulk Provenance = "bulk"
	ProvenanceUser Provenance = "user"
)

// RentObservation is a single reported rent. An empty NeighborhoodID means
// the observation could not be attributed to any neighborhood.
type RentObservation struct {
	Seq            int64            `json:"seq,omitempty"`
	Category       DwellingCategory `json:"category"`
	NeighborhoodID string           `json:"neighborhood_id,omitempty"`
	Coordinates    *GeoPoint        `json:"coordinates,omitempty"`
	MonthlyRent    float64          `json:"monthly_rent"`
	AreaSqm        float64          `json:"area_sqm"`
	Rooms          float64          `json:"rooms"`
	YearBuilt      int              `json:"year_built"`
	PricePerSqm    float64          `json:"price_per_sqm,omitempty"`
	HasBalcony     bool             `json:"has_balcony,omitempty"`
	HasElevator    bool             `json:"has_elevator,omitempty"`
	Renovated      bool             `json:"recently_renovated,omitempty"`
	Description    string           `json:"description,omitempty"`
	DateEntered    time.Time        `json:"date_entered"`
	Provenance     Provenance       `json:"provenance"`
}

// EffectivePricePerSqm returns the supplied price per sqm, or derives it
// from rent and area.
func (o *RentObservation) EffectivePricePerSqm() float64 {
	if o.PricePerSqm != 0 {
		return o.PricePerSqm
	}
	if o.AreaSqm == 0 {
		return 0
	}
	return o.MonthlyRent / o.AreaSqm
}

// Attributed reports whether the observation belongs to a neighborhood.
func (o *RentObservation) Attributed() bool {
	return o.NeighborhoodID != ""
}

// Equal compares two observations field by field.
func (o *RentObservation) Equal(other *RentObservation) bool {
	if o == nil || other == nil {
		return o == other
	}
	if (o.Coordinates == nil) != (other.Coordinates == nil) {
		return false
	}
	if o.Coordinates != nil && *o.Coordinates != *other.Coordinates {
		return false
	}
	return o.Seq == other.Seq &&
		o.Category == other.Category &&
		o.NeighborhoodID == other.NeighborhoodID &&
		o.MonthlyRent == other.MonthlyRent &&
		o.AreaSqm == other.AreaSqm &&
		o.Rooms == other.Rooms &&
		o.YearBuilt == other.YearBuilt &&
		o.PricePerSqm == other.PricePerSqm &&
		o.HasBalcony == other.HasBalcony &&
		o.HasElevator == other.HasElevator &&
		o.Renovated == other.Renovated &&
		o.Description == other.Description &&
		o.DateEntered.Equal(other.DateEntered) &&
		o.Provenance == other.Provenance
}

// ValidationError reports invalid observation input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// BulkStatsRecord is one precomputed summary of the bulk partition for a
// neighborhood and category.
type BulkStatsRecord struct {
	ID             string  `json:"id"`
	EntryCount     int     `json:"entryCount"`
	AvgRent        float64 `json:"avgRent"`
	MinRent        float64 `json:"minRent"`
	MaxRent        float64 `json:"maxRent"`
	AvgAreaSqm     float64 `json:"avgAreaSqm"`
	AvgPricePerSqm float64 `json:"avgPricePerSqm"`
}

// NeighborhoodStats is the merged view of a neighborhood for a category.
type NeighborhoodStats struct {
	NeighborhoodID       string  `json:"neighborhood_id"`
	EntryCount           int     `json:"entry_count"`
	AvgRent              float64 `json:"avg_rent"`
	MinRent              float64 `json:"min_rent"`
	MaxRent              float64 `json:"max_rent"`
	AvgAreaSqm           float64 `json:"avg_area_sqm"`
	AvgPricePerSqm       float64 `json:"avg_price_per_sqm"`
	FairPricePerSqm      float64 `json:"fair_price_per_sqm"`
	UnfairnessPercentage float64 `json:"unfairness_percentage"`
	Band                 string  `json:"band"`
}

// StatsFromRecord converts a bulk record into stats without the fairness fields.
func StatsFromRecord(r BulkStatsRecord) NeighborhoodStats {
	return NeighborhoodStats{
		NeighborhoodID: r.ID,
		EntryCount:     r.EntryCount,
		AvgRent:        r.AvgRent,
		MinRent:        r.MinRent,
		MaxRent:        r.MaxRent,
		AvgAreaSqm:     r.AvgAreaSqm,
		AvgPricePerSqm: r.AvgPricePerSqm,
	}
}

// DistributionStats summarises the price per sqm distribution of a neighborhood.
type DistributionStats struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mode   float64 `json:"mode"`
}

// RentCheck compares one observed rent with its neighborhood.
type RentCheck struct {
	NeighborhoodID    string            `json:"neighborhood_id"`
	PricePerSqm       float64           `json:"price_per_sqm"`
	AvgPricePerSqm    float64           `json:"avg_price_per_sqm"`
	Difference        float64           `json:"difference"`
	PercentDifference float64           `json:"percent_difference"`
	Level             string            `json:"level"`
	Stats             NeighborhoodStats `json:"stats"`
}

// ObservationEvent is published when the user partition changes.
type ObservationEvent struct {
	ID          string           `json:"id"`
	Type        string           `json:"type"`
	Category    DwellingCategory `json:"category"`
	Observation *RentObservation `json:"observation,omitempty"`
	OccurredAt  time.Time        `json:"occurred_at"`
}

const (
	EventObservationAppended = "observation.appended"
	EventObservationReplaced = "observation.replaced"
	EventObservationRemoved  = "observation.removed"
	EventObservationsCleared = "observation.cleared"
)
