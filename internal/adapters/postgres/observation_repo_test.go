package postgres_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/mietradar/internal/adapters/postgres"
	"github.com/samirrijal/mietradar/internal/core/domain"
)

var observationCols = []string{
	"seq", "category", "neighborhood_id", "lat", "lng",
	"monthly_rent", "area_sqm", "rooms", "year_built", "price_per_sqm",
	"has_balcony", "has_elevator", "renovated", "description", "date_entered",
}

func newMockRepo(t *testing.T) (*postgres.ObservationRepo, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })
	return postgres.NewObservationRepo(postgres.NewWithPool(mock)), mock
}

func TestObservationRepo_Append(t *testing.T) {
	repo, mock := newMockRepo(t)

	obs := &domain.RentObservation{
		Category: domain.CategoryApartment, NeighborhoodID: "01",
		Coordinates: &domain.GeoPoint{Lat: 48.13, Lng: 11.57},
		MonthlyRent: 1000, AreaSqm: 50, Rooms: 2, YearBuilt: 1990, PricePerSqm: 20,
		DateEntered: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	mock.ExpectQuery(`INSERT INTO user_observations`).
		WithArgs("apartment", "01", pgxmock.AnyArg(), pgxmock.AnyArg(),
			1000.0, 50.0, 2.0, 1990, 20.0, false, false, false, "", obs.DateEntered).
		WillReturnRows(pgxmock.NewRows([]string{"seq"}).AddRow(int64(42)))

	require.NoError(t, repo.Append(context.Background(), obs))
	assert.Equal(t, int64(42), obs.Seq)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestObservationRepo_List(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	lat, lng := 48.1, 11.5

	mock.ExpectQuery(`SELECT seq, category .* FROM user_observations\s+WHERE category = \$1\s+ORDER BY seq`).
		WithArgs("dormitory").
		WillReturnRows(pgxmock.NewRows(observationCols).
			AddRow(int64(1), "dormitory", "05", &lat, &lng, 400.0, 18.0, 1.0, 2000, 22.22, false, true, false, "", now).
			AddRow(int64(3), "dormitory", "", (*float64)(nil), (*float64)(nil), 450.0, 20.0, 1.0, 2010, 22.5, false, false, true, "quiet", now))

	list, err := repo.List(context.Background(), domain.CategoryDormitory)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "05", list[0].NeighborhoodID)
	assert.Equal(t, &domain.GeoPoint{Lat: 48.1, Lng: 11.5}, list[0].Coordinates)
	assert.False(t, list[1].Attributed())
	assert.Nil(t, list[1].Coordinates)
	assert.Equal(t, domain.ProvenanceUser, list[1].Provenance)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestObservationRepo_Remove(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT seq FROM user_observations`).
		WithArgs("apartment", 1).
		WillReturnRows(pgxmock.NewRows([]string{"seq"}).AddRow(int64(7)))
	mock.ExpectExec(`DELETE FROM user_observations WHERE seq = \$1`).
		WithArgs(int64(7)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	applied, err := repo.Remove(context.Background(), domain.CategoryApartment, 1)
	require.NoError(t, err)
	assert.True(t, applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestObservationRepo_OutOfRangeIsNoOp(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT seq FROM user_observations`).
		WithArgs("apartment", 9).
		WillReturnError(pgx.ErrNoRows)

	applied, err := repo.Remove(context.Background(), domain.CategoryApartment, 9)
	require.NoError(t, err)
	assert.False(t, applied)
	// negative indexes never reach the database
	applied, err = repo.Replace(context.Background(), domain.CategoryApartment, -1, &domain.RentObservation{})
	require.NoError(t, err)
	assert.False(t, applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestObservationRepo_Replace(t *testing.T) {
	repo, mock := newMockRepo(t)
	entered := time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC)
	obs := &domain.RentObservation{
		Category: domain.CategorySharedRoom, MonthlyRent: 550, AreaSqm: 22, Rooms: 1, YearBuilt: 1970, PricePerSqm: 25,
		DateEntered: entered.Add(48 * time.Hour),
	}

	mock.ExpectQuery(`SELECT seq FROM user_observations`).
		WithArgs("sharedRoom", 0).
		WillReturnRows(pgxmock.NewRows([]string{"seq"}).AddRow(int64(3)))
	mock.ExpectQuery(`UPDATE user_observations[\s\S]*RETURNING date_entered`).
		WithArgs(int64(3), "", pgxmock.AnyArg(), pgxmock.AnyArg(),
			550.0, 22.0, 1.0, 1970, 25.0, false, false, false, "").
		WillReturnRows(pgxmock.NewRows([]string{"date_entered"}).AddRow(entered))

	applied, err := repo.Replace(context.Background(), domain.CategorySharedRoom, 0, obs)
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, int64(3), obs.Seq)
	assert.True(t, obs.DateEntered.Equal(entered), "replace keeps the stored date entered")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestObservationRepo_Clear(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectExec(`DELETE FROM user_observations WHERE category = \$1`).
		WithArgs("apartment").
		WillReturnResult(pgxmock.NewResult("DELETE", 4))

	require.NoError(t, repo.Clear(context.Background(), domain.CategoryApartment))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestObservationRepo_Latest(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery(`ORDER BY seq DESC`).WillReturnError(pgx.ErrNoRows)

	latest, err := repo.Latest(context.Background())
	require.NoError(t, err)
	assert.Nil(t, latest)

	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`ORDER BY seq DESC`).
		WillReturnRows(pgxmock.NewRows(observationCols).
			AddRow(int64(9), "apartment", "01", (*float64)(nil), (*float64)(nil), 900.0, 45.0, 2.0, 1999, 20.0, true, false, false, "", now))

	latest, err = repo.Latest(context.Background())
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, int64(9), latest.Seq)
	assert.Equal(t, domain.CategoryApartment, latest.Category)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestObservationRepo_QueryError(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery(`SELECT seq, category`).WillReturnError(errors.New("connection reset"))

	_, err := repo.List(context.Background(), domain.CategoryApartment)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "query observations")
}

func TestMigrate_FreshDB(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	names, err := postgres.MigrationNames()
	require.NoError(t, err)
	require.NotEmpty(t, names)

	mock.ExpectExec("SELECT pg_advisory_lock").WithArgs(pgxmock.AnyArg()).WillReturnResult(pgxmock.NewResult("SELECT", 1))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectQuery("SELECT filename FROM schema_migrations").WillReturnRows(pgxmock.NewRows([]string{"filename"}))
	for _, name := range names {
		mock.ExpectExec(".*").WillReturnResult(pgxmock.NewResult("EXEC", 0))
		mock.ExpectExec("INSERT INTO schema_migrations").WithArgs(name).WillReturnResult(pgxmock.NewResult("INSERT", 1))
	}
	mock.ExpectExec("SELECT pg_advisory_unlock").WithArgs(pgxmock.AnyArg()).WillReturnResult(pgxmock.NewResult("SELECT", 1))

	assert.NoError(t, postgres.Migrate(context.Background(), mock))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrate_AlreadyApplied(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	names, _ := postgres.MigrationNames()
	rows := pgxmock.NewRows([]string{"filename"})
	for _, n := range names {
		rows.AddRow(n)
	}

	mock.ExpectExec("SELECT pg_advisory_lock").WithArgs(pgxmock.AnyArg()).WillReturnResult(pgxmock.NewResult("SELECT", 1))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectQuery("SELECT filename FROM schema_migrations").WillReturnRows(rows)
	mock.ExpectExec("SELECT pg_advisory_unlock").WithArgs(pgxmock.AnyArg()).WillReturnResult(pgxmock.NewResult("SELECT", 1))

	assert.NoError(t, postgres.Migrate(context.Background(), mock))
	assert.NoError(t, mock.ExpectationsWereMet())
}
