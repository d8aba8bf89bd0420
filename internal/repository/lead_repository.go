package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/pulsefit/studio-insights-api/internal/models"
)

// LeadRepository provides access to the acquisition funnel data.
type LeadRepository struct {
	db *sqlx.DB
}

// NewLeadRepository instantiates the repository.
func NewLeadRepository(db *sqlx.DB) *LeadRepository {
	return &LeadRepository{db: db}
}

// FunnelCounts aggregates lead counts per stage. Stages with no rows are
// returned with a zero count so the funnel always has its full shape.
func (r *LeadRepository) FunnelCounts(ctx context.Context, filter models.LeadFilter) ([]models.FunnelStageCount, error) {
	var builder strings.Builder
	builder.WriteString("SELECT stage, COUNT(*) AS count FROM leads WHERE 1=1")
	var args []interface{}

	if filter.Location != "" {
		args = append(args, filter.Location)
		builder.WriteString(fmt.Sprintf(" AND location = $%d", len(args)))
	}
	if filter.Source != "" {
		args = append(args, filter.Source)
		builder.WriteString(fmt.Sprintf(" AND source = $%d", len(args)))
	}
	if filter.DateFrom != nil {
		args = append(args, *filter.DateFrom)
		builder.WriteString(fmt.Sprintf(" AND created_at >= $%d", len(args)))
	}
	if filter.DateTo != nil {
		args = append(args, *filter.DateTo)
		builder.WriteString(fmt.Sprintf(" AND created_at <= $%d", len(args)))
	}
	builder.WriteString(" GROUP BY stage")

	var rows []models.FunnelStageCount
	if err := r.db.SelectContext(ctx, &rows, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("query funnel counts: %w", err)
	}

	byStage := make(map[models.LeadStage]int, len(rows))
	for _, row := range rows {
		byStage[row.Stage] = row.Count
	}

	counts := make([]models.FunnelStageCount, 0, len(models.FunnelStages))
	for _, stage := range models.FunnelStages {
		counts = append(counts, models.FunnelStageCount{Stage: stage, Count: byStage[stage]})
	}
	return counts, nil
}

// Sources returns the distinct acquisition sources present in the data set.
func (r *LeadRepository) Sources(ctx context.Context) ([]string, error) {
	var values []string
	if err := r.db.SelectContext(ctx, &values, "SELECT DISTINCT source FROM leads WHERE source <> '' ORDER BY source ASC"); err != nil {
		return nil, fmt.Errorf("query distinct sources: %w", err)
	}
	return values, nil
}
