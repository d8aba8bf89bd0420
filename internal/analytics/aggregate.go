package analytics

import (
	"math"

	"github.com/pulsefit/studio-insights-api/internal/models"
)

// Aggregate holds the raw per-group sums.
type Aggregate struct {
	SessionCount       int     `json:"session_count"`
	TotalCheckIns      int     `json:"total_check_ins"`
	TotalCapacity      int     `json:"total_capacity"`
	TotalBooked        int     `json:"total_booked"`
	TotalLateCancelled int     `json:"total_late_cancelled"`
	TotalWaitlisted    int     `json:"total_waitlisted"`
	TotalNoShows       int     `json:"total_no_shows"`
	EmptySessions      int     `json:"empty_sessions"`
	NonEmptySessions   int     `json:"non_empty_sessions"`
	TotalRevenue       float64 `json:"total_revenue"`
}

// MetricsSummary is the full derived result for a group. Recomputed from the
// records on every pass; structurally equal outputs for equal inputs.
type MetricsSummary struct {
	Aggregate

	AvgCheckIns            float64 `json:"avg_check_ins"`
	FillRatePct            float64 `json:"fill_rate_pct"`
	CancellationRatePct    float64 `json:"cancellation_rate_pct"`
	AvgRevenue             float64 `json:"avg_revenue"`
	RevenuePerCheckIn      float64 `json:"revenue_per_check_in"`
	RevenuePerBooking      float64 `json:"revenue_per_booking"`
	WaitlistPct            float64 `json:"waitlist_pct"`
	WeightedUtilizationPct float64 `json:"weighted_utilization_pct"`
	RevenueLost            float64 `json:"revenue_lost"`
	ConsistencyPct         int     `json:"consistency_pct"`
}

// Reduce folds records into raw sums. Pure; zero-valued fields contribute 0.
func Reduce(records []models.SessionRecord) Aggregate {
	agg := Aggregate{}
	for _, r := range records {
		agg.SessionCount++
		agg.TotalCheckIns += r.CheckedIn
		agg.TotalCapacity += r.Capacity
		agg.TotalBooked += r.Booked
		agg.TotalLateCancelled += r.LateCancelled
		agg.TotalWaitlisted += r.Waitlisted
		agg.TotalNoShows += r.NoShows
		agg.TotalRevenue += r.Revenue
		if r.CheckedIn == 0 {
			agg.EmptySessions++
		}
	}
	agg.NonEmptySessions = agg.SessionCount - agg.EmptySessions
	return agg
}

// Summarize reduces the records and derives the ratio and statistical
// metrics. Every division is zero-guarded: a zero denominator yields 0,
// never NaN or Inf. Fill rate is deliberately not clamped, so over-booked
// groups report rates above 100.
func Summarize(records []models.SessionRecord) MetricsSummary {
	agg := Reduce(records)
	m := MetricsSummary{Aggregate: agg}

	sessions := float64(agg.SessionCount)
	m.AvgCheckIns = safeDiv(float64(agg.TotalCheckIns), sessions)
	m.FillRatePct = safeDiv(float64(agg.TotalCheckIns), float64(agg.TotalCapacity)) * 100
	m.CancellationRatePct = safeDiv(float64(agg.TotalLateCancelled), float64(agg.TotalBooked)) * 100
	m.AvgRevenue = safeDiv(agg.TotalRevenue, sessions)
	m.RevenuePerCheckIn = safeDiv(agg.TotalRevenue, float64(agg.TotalCheckIns))
	m.RevenuePerBooking = safeDiv(agg.TotalRevenue, float64(agg.TotalBooked))
	m.WaitlistPct = safeDiv(float64(agg.TotalWaitlisted), float64(agg.TotalBooked)) * 100
	m.WeightedUtilizationPct = safeDiv(float64(agg.TotalCheckIns)+float64(agg.TotalWaitlisted)*0.5, float64(agg.TotalCapacity)) * 100
	m.RevenueLost = float64(agg.TotalLateCancelled) * m.RevenuePerBooking
	m.ConsistencyPct = consistency(records, m.AvgCheckIns)

	return m
}

// consistency converts the coefficient of variation of per-session check-ins
// into a 0-100 stability score: 100 - min(cv*100, 100), floored at 0 and
// rounded to the nearest integer. Zero average attendance scores 0.
func consistency(records []models.SessionRecord, avgCheckIns float64) int {
	if avgCheckIns <= 0 || len(records) == 0 {
		return 0
	}
	var sumSquares float64
	for _, r := range records {
		diff := float64(r.CheckedIn) - avgCheckIns
		sumSquares += diff * diff
	}
	variance := sumSquares / float64(len(records))
	score := 100 - math.Min(math.Sqrt(variance)/avgCheckIns*100, 100)
	if score < 0 {
		score = 0
	}
	return int(math.Round(score))
}

func safeDiv(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0
	}
	return numerator / denominator
}
