package dto

import (
	"time"

	"github.com/pulsefit/studio-insights-api/internal/analytics"
	"github.com/pulsefit/studio-insights-api/internal/models"
	"github.com/pulsefit/studio-insights-api/pkg/format"
)

// InsightsQuery captures the query parameters shared by the insight endpoints.
type InsightsQuery struct {
	GroupBy       string `form:"groupBy"`
	RankBy        string `form:"rankBy"`
	Order         string `form:"order" binding:"omitempty,oneof=asc desc"`
	Location      string `form:"location"`
	Trainer       string `form:"trainer"`
	Class         string `form:"class"`
	DateFrom      string `form:"dateFrom" binding:"omitempty,datetime=2006-01-02"`
	DateTo        string `form:"dateTo" binding:"omitempty,datetime=2006-01-02"`
	Search        string `form:"search"`
	ExcludeHosted bool   `form:"excludeHosted"`
	MinClasses    int    `form:"minClasses" binding:"omitempty,min=0"`
	MinCheckIns   int    `form:"minCheckIns" binding:"omitempty,min=0"`
	Top           int    `form:"top" binding:"omitempty,min=1,max=100"`
	Bottom        int    `form:"bottom" binding:"omitempty,min=1,max=100"`
	Page          int    `form:"page" binding:"omitempty,min=1"`
	SortBy        string `form:"sortBy"`
	SortDir       string `form:"sortDir" binding:"omitempty,oneof=asc desc"`
}

// SessionFilter converts the query into the canonical record filter.
func (q InsightsQuery) SessionFilter() models.SessionFilter {
	return models.SessionFilter{
		Location:      q.Location,
		Trainer:       q.Trainer,
		ClassName:     q.Class,
		DateFrom:      parseDate(q.DateFrom),
		DateTo:        parseDate(q.DateTo),
		Search:        q.Search,
		ExcludeHosted: q.ExcludeHosted,
	}
}

func parseDate(value string) *time.Time {
	if value == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil
	}
	return &t
}

// Metrics is the wire shape of one group's aggregated numbers.
type Metrics struct {
	Sessions            int     `json:"sessions"`
	CheckIns            int     `json:"checkIns"`
	Capacity            int     `json:"capacity"`
	Booked              int     `json:"booked"`
	LateCancelled       int     `json:"lateCancelled"`
	Waitlisted          int     `json:"waitlisted"`
	NoShows             int     `json:"noShows"`
	EmptySessions       int     `json:"emptySessions"`
	NonEmptySessions    int     `json:"nonEmptySessions"`
	Revenue             float64 `json:"revenue"`
	AvgCheckIns         float64 `json:"avgCheckIns"`
	FillRatePct         float64 `json:"fillRatePct"`
	CancellationRatePct float64 `json:"cancellationRatePct"`
	AvgRevenue          float64 `json:"avgRevenue"`
	RevenuePerCheckIn   float64 `json:"revenuePerCheckIn"`
	RevenuePerBooking   float64 `json:"revenuePerBooking"`
	WaitlistPct         float64 `json:"waitlistPct"`
	WeightedUtilization float64 `json:"weightedUtilizationPct"`
	RevenueLost         float64 `json:"revenueLost"`
	ConsistencyPct      int     `json:"consistencyPct"`
}

// FormattedMetrics carries the display strings for the headline figures so
// every consumer renders currency and percentages identically.
type FormattedMetrics struct {
	Revenue         string `json:"revenue"`
	AvgRevenue      string `json:"avgRevenue"`
	RevenueLost     string `json:"revenueLost"`
	FillRate        string `json:"fillRate"`
	CancellationPct string `json:"cancellationPct"`
	CheckIns        string `json:"checkIns"`
}

// MetricsFromSummary maps the aggregation result onto the wire shape.
func MetricsFromSummary(m analytics.MetricsSummary) Metrics {
	return Metrics{
		Sessions:            m.SessionCount,
		CheckIns:            m.TotalCheckIns,
		Capacity:            m.TotalCapacity,
		Booked:              m.TotalBooked,
		LateCancelled:       m.TotalLateCancelled,
		Waitlisted:          m.TotalWaitlisted,
		NoShows:             m.TotalNoShows,
		EmptySessions:       m.EmptySessions,
		NonEmptySessions:    m.NonEmptySessions,
		Revenue:             m.TotalRevenue,
		AvgCheckIns:         m.AvgCheckIns,
		FillRatePct:         m.FillRatePct,
		CancellationRatePct: m.CancellationRatePct,
		AvgRevenue:          m.AvgRevenue,
		RevenuePerCheckIn:   m.RevenuePerCheckIn,
		RevenuePerBooking:   m.RevenuePerBooking,
		WaitlistPct:         m.WaitlistPct,
		WeightedUtilization: m.WeightedUtilizationPct,
		RevenueLost:         m.RevenueLost,
		ConsistencyPct:      m.ConsistencyPct,
	}
}

// FormatMetrics renders the canonical display strings for a summary.
func FormatMetrics(m analytics.MetricsSummary) FormattedMetrics {
	return FormattedMetrics{
		Revenue:         format.Currency(m.TotalRevenue),
		AvgRevenue:      format.Currency(m.AvgRevenue),
		RevenueLost:     format.Currency(m.RevenueLost),
		FillRate:        format.Percent(m.FillRatePct),
		CancellationPct: format.Percent(m.CancellationRatePct),
		CheckIns:        format.Count(m.TotalCheckIns),
	}
}

// InsightEntry is one ranked group in an insight response.
type InsightEntry struct {
	Key       string           `json:"key"`
	Label     string           `json:"label"`
	Metrics   Metrics          `json:"metrics"`
	Formatted FormattedMetrics `json:"formatted"`
}

// EntryFromRanking converts an engine ranking entry to the wire shape.
func EntryFromRanking(e analytics.RankingEntry) InsightEntry {
	return InsightEntry{
		Key:       e.Key,
		Label:     e.Label,
		Metrics:   MetricsFromSummary(e.Summary),
		Formatted: FormatMetrics(e.Summary),
	}
}

// EntriesFromRanking converts a slice of ranking entries.
func EntriesFromRanking(entries []analytics.RankingEntry) []InsightEntry {
	out := make([]InsightEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, EntryFromRanking(e))
	}
	return out
}

// InsightsResponse is the payload for the ranked insight endpoints.
type InsightsResponse struct {
	GroupBy     string         `json:"groupBy"`
	RankBy      string         `json:"rankBy"`
	TotalGroups int            `json:"totalGroups"`
	Overall     Metrics        `json:"overall"`
	Top         []InsightEntry `json:"top"`
	Bottom      []InsightEntry `json:"bottom"`
	Table       []InsightEntry `json:"table"`
}
