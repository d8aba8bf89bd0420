package analytics

import "sort"

// RankMetric selects which derived metric orders a ranked list.
type RankMetric string

const (
	RankBySessions            RankMetric = "sessions"
	RankByCheckIns            RankMetric = "checkins"
	RankByAvgCheckIns         RankMetric = "avg_checkins"
	RankByFillRate            RankMetric = "fill_rate"
	RankByRevenue             RankMetric = "revenue"
	RankByAvgRevenue          RankMetric = "avg_revenue"
	RankByRevenuePerCheckIn   RankMetric = "revenue_per_checkin"
	RankByRevenuePerBooking   RankMetric = "revenue_per_booking"
	RankByCancellationRate    RankMetric = "cancellation_rate"
	RankByConsistency         RankMetric = "consistency"
	RankByWaitlistPercent     RankMetric = "waitlist_percent"
	RankByWeightedUtilization RankMetric = "weighted_utilization"
	RankByRevenueLost         RankMetric = "revenue_lost"
	RankByEmptySessions       RankMetric = "empty_sessions"
)

// KnownMetric reports whether the metric is part of the closed set.
func KnownMetric(metric RankMetric) bool {
	switch metric {
	case RankBySessions, RankByCheckIns, RankByAvgCheckIns, RankByFillRate,
		RankByRevenue, RankByAvgRevenue, RankByRevenuePerCheckIn,
		RankByRevenuePerBooking, RankByCancellationRate, RankByConsistency,
		RankByWaitlistPercent, RankByWeightedUtilization, RankByRevenueLost,
		RankByEmptySessions:
		return true
	}
	return false
}

// MetricValue extracts the ranking value from a summary. Unknown metrics
// fall back to fill rate.
func MetricValue(m MetricsSummary, metric RankMetric) float64 {
	switch metric {
	case RankBySessions:
		return float64(m.SessionCount)
	case RankByCheckIns:
		return float64(m.TotalCheckIns)
	case RankByAvgCheckIns:
		return m.AvgCheckIns
	case RankByRevenue:
		return m.TotalRevenue
	case RankByAvgRevenue:
		return m.AvgRevenue
	case RankByRevenuePerCheckIn:
		return m.RevenuePerCheckIn
	case RankByRevenuePerBooking:
		return m.RevenuePerBooking
	case RankByCancellationRate:
		return m.CancellationRatePct
	case RankByConsistency:
		return float64(m.ConsistencyPct)
	case RankByWaitlistPercent:
		return m.WaitlistPct
	case RankByWeightedUtilization:
		return m.WeightedUtilizationPct
	case RankByRevenueLost:
		return m.RevenueLost
	case RankByEmptySessions:
		return float64(m.EmptySessions)
	default:
		return m.FillRatePct
	}
}

// RankingEntry pairs a group with its summary inside a ranked list.
type RankingEntry struct {
	Key     string
	Label   string
	Group   Group
	Summary MetricsSummary
}

// Summarize each group into a ranking entry, preserving group order.
func SummarizeGroups(groups []Group) []RankingEntry {
	entries := make([]RankingEntry, 0, len(groups))
	for _, g := range groups {
		entries = append(entries, RankingEntry{
			Key:     g.Key,
			Label:   g.Label,
			Group:   g,
			Summary: Summarize(g.Records),
		})
	}
	return entries
}

// ApplyThresholds drops groups below the minimum session or check-in counts
// before any ranking happens; excluded groups are gone entirely, not hidden.
func ApplyThresholds(entries []RankingEntry, minSessions, minCheckIns int) []RankingEntry {
	if minSessions <= 0 && minCheckIns <= 0 {
		return entries
	}
	out := make([]RankingEntry, 0, len(entries))
	for _, e := range entries {
		if minSessions > 0 && e.Summary.SessionCount < minSessions {
			continue
		}
		if minCheckIns > 0 && e.Summary.TotalCheckIns < minCheckIns {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Rank orders entries by the metric, descending unless ascending is set.
// The sort is stable so ties keep their input (first-appearance) order.
func Rank(entries []RankingEntry, metric RankMetric, ascending bool) []RankingEntry {
	out := make([]RankingEntry, len(entries))
	copy(out, entries)
	sort.SliceStable(out, func(i, j int) bool {
		av, bv := MetricValue(out[i].Summary, metric), MetricValue(out[j].Summary, metric)
		if ascending {
			return av < bv
		}
		return av > bv
	})
	return out
}

// TopN returns the first n entries of a descending-ranked list.
func TopN(entries []RankingEntry, n int) []RankingEntry {
	if n <= 0 || n >= len(entries) {
		return entries
	}
	return entries[:n]
}

// BottomN returns the last n entries of a descending-ranked list, reversed
// so the worst group comes first.
func BottomN(entries []RankingEntry, n int) []RankingEntry {
	if n <= 0 {
		return entries
	}
	if n > len(entries) {
		n = len(entries)
	}
	tail := entries[len(entries)-n:]
	out := make([]RankingEntry, n)
	for i, e := range tail {
		out[n-1-i] = e
	}
	return out
}
