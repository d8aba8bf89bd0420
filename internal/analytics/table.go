package analytics

import (
	"sort"
	"strings"

	"github.com/pulsefit/studio-insights-api/internal/models"
)

// DefaultPageSize is the fixed table page size used by every list view.
const DefaultPageSize = 20

// SearchEntries keeps entries whose label contains the query,
// case-insensitively. Empty queries return the input unchanged.
func SearchEntries(entries []RankingEntry, query string) []RankingEntry {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return entries
	}
	out := make([]RankingEntry, 0, len(entries))
	for _, e := range entries {
		if strings.Contains(strings.ToLower(e.Label), q) {
			out = append(out, e)
		}
	}
	return out
}

// SortEntriesByColumn sorts a table by one column. Metric columns sort
// numerically; the label column sorts lexicographically, case-folded. Empty
// labels sort first when ascending and last when descending.
func SortEntriesByColumn(entries []RankingEntry, column string, ascending bool) []RankingEntry {
	out := make([]RankingEntry, len(entries))
	copy(out, entries)
	if column == "" || column == "label" {
		sort.SliceStable(out, func(i, j int) bool {
			a, b := strings.ToLower(out[i].Label), strings.ToLower(out[j].Label)
			if (a == "") != (b == "") {
				if ascending {
					return a == ""
				}
				return b == ""
			}
			if ascending {
				return a < b
			}
			return a > b
		})
		return out
	}
	metric := RankMetric(column)
	sort.SliceStable(out, func(i, j int) bool {
		av, bv := MetricValue(out[i].Summary, metric), MetricValue(out[j].Summary, metric)
		if ascending {
			return av < bv
		}
		return av > bv
	})
	return out
}

// PaginateEntries slices one fixed-size page out of the entries and reports
// pagination metadata. Pages are 1-based; out-of-range pages yield an empty
// slice, not an error.
func PaginateEntries(entries []RankingEntry, page, pageSize int) ([]RankingEntry, models.Pagination) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if page <= 0 {
		page = 1
	}
	meta := models.Pagination{Page: page, PageSize: pageSize, TotalCount: len(entries)}
	start := (page - 1) * pageSize
	if start >= len(entries) {
		return []RankingEntry{}, meta
	}
	end := start + pageSize
	if end > len(entries) {
		end = len(entries)
	}
	return entries[start:end], meta
}
