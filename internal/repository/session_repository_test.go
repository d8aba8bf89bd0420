package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/pulsefit/studio-insights-api/internal/models"
)

func newSessionRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func sessionRows(ids ...string) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "class_name", "cleaned_class", "trainer", "location", "day_of_week", "time_of_day", "date", "capacity", "checked_in", "booked", "late_cancelled", "no_shows", "waitlisted", "revenue", "hosted", "unique_key"})
	for _, id := range ids {
		rows.AddRow(id, "Power Yoga", "Power Yoga", "Ana", "Downtown", "Monday", "18:00", time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC), 10, 8, 9, 1, 0, 0, 120.0, false, "key-"+id)
	}
	return rows
}

func TestSessionRepositoryListNoFilter(t *testing.T) {
	db, mock, cleanup := newSessionRepoMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + sessionColumns + " FROM sessions WHERE 1=1 ORDER BY date ASC, time_of_day ASC, id ASC")).
		WillReturnRows(sessionRows("s1", "s2"))

	records, err := repo.List(context.Background(), models.SessionFilter{})
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, "Power Yoga", records[0].ClassName)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryListWithFilters(t *testing.T) {
	db, mock, cleanup := newSessionRepoMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("AND location = $1 AND trainer = $2 AND date >= $3 AND hosted = FALSE")).
		WithArgs("Downtown", "Ana", from).
		WillReturnRows(sessionRows("s1"))

	records, err := repo.List(context.Background(), models.SessionFilter{
		Location:      "Downtown",
		Trainer:       "Ana",
		DateFrom:      &from,
		ExcludeHosted: true,
	})
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryListSearch(t *testing.T) {
	db, mock, cleanup := newSessionRepoMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("class_name ILIKE $1 OR cleaned_class ILIKE $1 OR trainer ILIKE $1 OR location ILIKE $1")).
		WithArgs("%yoga%").
		WillReturnRows(sessionRows("s1"))

	_, err := repo.List(context.Background(), models.SessionFilter{Search: "yoga"})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryBulkUpsert(t *testing.T) {
	db, mock, cleanup := newSessionRepoMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO sessions")).
		WillReturnResult(sqlmock.NewResult(0, 2))

	records := []models.SessionRecord{
		{ClassName: "Yoga", UniqueKey: "k1"},
		{ClassName: "Spin", UniqueKey: "k2"},
	}
	written, err := repo.BulkUpsert(context.Background(), records)
	require.NoError(t, err)
	require.Equal(t, 2, written)
	require.NotEmpty(t, records[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryBulkUpsertEmpty(t *testing.T) {
	db, mock, cleanup := newSessionRepoMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	written, err := repo.BulkUpsert(context.Background(), nil)
	require.NoError(t, err)
	require.Zero(t, written)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryDistinctValues(t *testing.T) {
	db, mock, cleanup := newSessionRepoMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT DISTINCT location FROM sessions")).
		WillReturnRows(sqlmock.NewRows([]string{"location"}).AddRow("Downtown").AddRow("Uptown"))

	locations, err := repo.Locations(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"Downtown", "Uptown"}, locations)
	require.NoError(t, mock.ExpectationsWereMet())
}
