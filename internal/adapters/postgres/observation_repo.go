package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/mietradar/internal/core/domain"
)

// ObservationRepo implements ports.ObservationRepository with pgx. An index
// is the position of a row within its category ordered by seq.
type ObservationRepo struct {
	db *DB
}

// NewObservationRepo creates a new ObservationRepo.
func NewObservationRepo(db *DB) *ObservationRepo {
	return &ObservationRepo{db: db}
}

const observationColumns = `seq, category, COALESCE(neighborhood_id, ''), lat, lng,
	monthly_rent, area_sqm, rooms, year_built, price_per_sqm,
	has_balcony, has_elevator, renovated, description, date_entered`

// Append inserts obs and sets its sequence number.
func (r *ObservationRepo) Append(ctx context.Context, obs *domain.RentObservation) error {
	lat, lng := coords(obs)
	err := r.db.Pool.QueryRow(ctx, `
		INSERT INTO user_observations (category, neighborhood_id, lat, lng,
			monthly_rent, area_sqm, rooms, year_built, price_per_sqm,
			has_balcony, has_elevator, renovated, description, date_entered)
		VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING seq
	`, string(obs.Category), obs.NeighborhoodID, lat, lng,
		obs.MonthlyRent, obs.AreaSqm, obs.Rooms, obs.YearBuilt, obs.PricePerSqm,
		obs.HasBalcony, obs.HasElevator, obs.Renovated, obs.Description, obs.DateEntered,
	).Scan(&obs.Seq)
	if err != nil {
		return fmt.Errorf("insert observation: %w", err)
	}
	return nil
}

// List returns the category's observations in insertion order.
func (r *ObservationRepo) List(ctx context.Context, category domain.DwellingCategory) ([]domain.RentObservation, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+observationColumns+`
		FROM user_observations
		WHERE category = $1
		ORDER BY seq
	`, string(category))
	if err != nil {
		return nil, fmt.Errorf("query observations: %w", err)
	}
	defer rows.Close()

	var out []domain.RentObservation
	for rows.Next() {
		o, err := scanObservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

// Replace overwrites the row at index, keeping its seq and date_entered.
func (r *ObservationRepo) Replace(ctx context.Context, category domain.DwellingCategory, index int, obs *domain.RentObservation) (bool, error) {
	seq, ok, err := r.seqAt(ctx, category, index)
	if err != nil || !ok {
		return false, err
	}
	lat, lng := coords(obs)
	err = r.db.Pool.QueryRow(ctx, `
		UPDATE user_observations
		SET neighborhood_id = NULLIF($2, ''), lat = $3, lng = $4,
		    monthly_rent = $5, area_sqm = $6, rooms = $7, year_built = $8, price_per_sqm = $9,
		    has_balcony = $10, has_elevator = $11, renovated = $12, description = $13
		WHERE seq = $1
		RETURNING date_entered
	`, seq, obs.NeighborhoodID, lat, lng,
		obs.MonthlyRent, obs.AreaSqm, obs.Rooms, obs.YearBuilt, obs.PricePerSqm,
		obs.HasBalcony, obs.HasElevator, obs.Renovated, obs.Description,
	).Scan(&obs.DateEntered)
	if errors.Is(err, pgx.ErrNoRows) {
		// removed between lookup and update
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("update observation: %w", err)
	}
	obs.Seq = seq
	obs.DateEntered = obs.DateEntered.UTC()
	return true, nil
}

// Remove deletes the row at index.
func (r *ObservationRepo) Remove(ctx context.Context, category domain.DwellingCategory, index int) (bool, error) {
	seq, ok, err := r.seqAt(ctx, category, index)
	if err != nil || !ok {
		return false, err
	}
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM user_observations WHERE seq = $1`, seq)
	if err != nil {
		return false, fmt.Errorf("delete observation: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Clear deletes every row of the category.
func (r *ObservationRepo) Clear(ctx context.Context, category domain.DwellingCategory) error {
	if _, err := r.db.Pool.Exec(ctx, `DELETE FROM user_observations WHERE category = $1`, string(category)); err != nil {
		return fmt.Errorf("clear observations: %w", err)
	}
	return nil
}

// Latest returns the row with the highest seq, or nil when the table is empty.
func (r *ObservationRepo) Latest(ctx context.Context) (*domain.RentObservation, error) {
	row := r.db.Pool.QueryRow(ctx, `
		SELECT `+observationColumns+`
		FROM user_observations
		ORDER BY seq DESC
		LIMIT 1
	`)
	o, err := scanObservation(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return o, err
}

func (r *ObservationRepo) seqAt(ctx context.Context, category domain.DwellingCategory, index int) (int64, bool, error) {
	if index < 0 {
		return 0, false, nil
	}
	var seq int64
	err := r.db.Pool.QueryRow(ctx, `
		SELECT seq FROM user_observations
		WHERE category = $1
		ORDER BY seq
		OFFSET $2 LIMIT 1
	`, string(category), index).Scan(&seq)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("locate observation %d: %w", index, err)
	}
	return seq, true, nil
}

func coords(obs *domain.RentObservation) (lat, lng *float64) {
	if obs.Coordinates == nil {
		return nil, nil
	}
	return &obs.Coordinates.Lat, &obs.Coordinates.Lng
}

func scanObservation(row pgx.Row) (*domain.RentObservation, error) {
	var (
		o        domain.RentObservation
		category string
		lat, lng *float64
	)
	err := row.Scan(
		&o.Seq, &category, &o.NeighborhoodID, &lat, &lng,
		&o.MonthlyRent, &o.AreaSqm, &o.Rooms, &o.YearBuilt, &o.PricePerSqm,
		&o.HasBalcony, &o.HasElevator, &o.Renovated, &o.Description, &o.DateEntered,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan observation: %w", err)
	}
	o.Category = domain.DwellingCategory(category)
	o.Provenance = domain.ProvenanceUser
	if lat != nil && lng != nil {
		o.Coordinates = &domain.GeoPoint{Lat: *lat, Lng: *lng}
	}
	o.DateEntered = o.DateEntered.UTC()
	return &o, nil
}
