package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/pulsefit/studio-insights-api/internal/models"
)

const sessionColumns = "id, class_name, cleaned_class, trainer, location, day_of_week, time_of_day, date, capacity, checked_in, booked, late_cancelled, no_shows, waitlisted, revenue, hosted, unique_key"

// SessionRepository provides access to the sessions table.
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository instantiates the repository.
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// List fetches session records matching the filter, oldest first so the
// in-memory grouping sees a stable input order.
func (r *SessionRepository) List(ctx context.Context, filter models.SessionFilter) ([]models.SessionRecord, error) {
	var builder strings.Builder
	builder.WriteString("SELECT " + sessionColumns + " FROM sessions WHERE 1=1")
	var args []interface{}

	if filter.Location != "" {
		args = append(args, filter.Location)
		builder.WriteString(fmt.Sprintf(" AND location = $%d", len(args)))
	}
	if filter.Trainer != "" {
		args = append(args, filter.Trainer)
		builder.WriteString(fmt.Sprintf(" AND trainer = $%d", len(args)))
	}
	if filter.ClassName != "" {
		args = append(args, filter.ClassName)
		builder.WriteString(fmt.Sprintf(" AND (class_name = $%d OR cleaned_class = $%d)", len(args), len(args)))
	}
	if filter.DateFrom != nil {
		args = append(args, *filter.DateFrom)
		builder.WriteString(fmt.Sprintf(" AND date >= $%d", len(args)))
	}
	if filter.DateTo != nil {
		args = append(args, *filter.DateTo)
		builder.WriteString(fmt.Sprintf(" AND date <= $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		builder.WriteString(fmt.Sprintf(" AND (class_name ILIKE $%d OR cleaned_class ILIKE $%d OR trainer ILIKE $%d OR location ILIKE $%d)", n, n, n, n))
	}
	if filter.ExcludeHosted {
		builder.WriteString(" AND hosted = FALSE AND class_name NOT ILIKE '%hosted%'")
	}
	builder.WriteString(" ORDER BY date ASC, time_of_day ASC, id ASC")

	var records []models.SessionRecord
	if err := r.db.SelectContext(ctx, &records, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	return records, nil
}

// BulkUpsert inserts the batch, replacing rows that share a unique_key so
// re-imports of the same export stay idempotent. Returns the rows written.
func (r *SessionRepository) BulkUpsert(ctx context.Context, records []models.SessionRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}
	for i := range records {
		if records[i].ID == "" {
			records[i].ID = uuid.NewString()
		}
	}

	const query = `INSERT INTO sessions (id, class_name, cleaned_class, trainer, location, day_of_week, time_of_day, date, capacity, checked_in, booked, late_cancelled, no_shows, waitlisted, revenue, hosted, unique_key)
VALUES (:id, :class_name, :cleaned_class, :trainer, :location, :day_of_week, :time_of_day, :date, :capacity, :checked_in, :booked, :late_cancelled, :no_shows, :waitlisted, :revenue, :hosted, :unique_key)
ON CONFLICT (unique_key) DO UPDATE SET
	class_name = EXCLUDED.class_name,
	cleaned_class = EXCLUDED.cleaned_class,
	trainer = EXCLUDED.trainer,
	location = EXCLUDED.location,
	day_of_week = EXCLUDED.day_of_week,
	time_of_day = EXCLUDED.time_of_day,
	date = EXCLUDED.date,
	capacity = EXCLUDED.capacity,
	checked_in = EXCLUDED.checked_in,
	booked = EXCLUDED.booked,
	late_cancelled = EXCLUDED.late_cancelled,
	no_shows = EXCLUDED.no_shows,
	waitlisted = EXCLUDED.waitlisted,
	revenue = EXCLUDED.revenue,
	hosted = EXCLUDED.hosted`

	if _, err := r.db.NamedExecContext(ctx, query, records); err != nil {
		return 0, fmt.Errorf("bulk upsert sessions: %w", err)
	}
	return len(records), nil
}

// Locations returns the distinct locations present in the data set.
func (r *SessionRepository) Locations(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, "location")
}

// Trainers returns the distinct trainers present in the data set.
func (r *SessionRepository) Trainers(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, "trainer")
}

// ClassNames returns the distinct cleaned class names present in the data set.
func (r *SessionRepository) ClassNames(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, "cleaned_class")
}

func (r *SessionRepository) distinct(ctx context.Context, column string) ([]string, error) {
	query := fmt.Sprintf("SELECT DISTINCT %s FROM sessions WHERE %s <> '' ORDER BY %s ASC", column, column, column)
	var values []string
	if err := r.db.SelectContext(ctx, &values, query); err != nil {
		return nil, fmt.Errorf("query distinct %s: %w", column, err)
	}
	return values, nil
}

// Count returns the total number of stored sessions.
func (r *SessionRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM sessions"); err != nil {
		return 0, fmt.Errorf("count sessions: %w", err)
	}
	return count, nil
}
