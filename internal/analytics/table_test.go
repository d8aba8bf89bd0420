package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulsefit/studio-insights-api/internal/models"
)

func tableEntries() []RankingEntry {
	records := []models.SessionRecord{
		{ClassName: "Power Yoga", CheckedIn: 9, Capacity: 10, Revenue: 90},
		{ClassName: "Spin", CheckedIn: 5, Capacity: 10, Revenue: 120},
		{ClassName: "Boxing", CheckedIn: 2, Capacity: 10, Revenue: 30},
	}
	return SummarizeGroups(GroupRecords(records, GroupByClass))
}

func TestSearchEntriesCaseInsensitive(t *testing.T) {
	entries := tableEntries()
	found := SearchEntries(entries, "yoga")
	require.Len(t, found, 1)
	assert.Equal(t, "Power Yoga", found[0].Label)

	assert.Len(t, SearchEntries(entries, ""), 3)
	assert.Empty(t, SearchEntries(entries, "pilates"))
}

func TestSortEntriesByLabel(t *testing.T) {
	sorted := SortEntriesByColumn(tableEntries(), "label", true)
	assert.Equal(t, "Boxing", sorted[0].Label)
	assert.Equal(t, "Power Yoga", sorted[1].Label)
	assert.Equal(t, "Spin", sorted[2].Label)
}

func TestSortEntriesEmptyLabelPlacement(t *testing.T) {
	entries := append(tableEntries(), RankingEntry{Label: ""})

	ascending := SortEntriesByColumn(entries, "label", true)
	assert.Equal(t, "", ascending[0].Label)

	descending := SortEntriesByColumn(entries, "label", false)
	assert.Equal(t, "", descending[len(descending)-1].Label)
}

func TestSortEntriesByNumericColumn(t *testing.T) {
	sorted := SortEntriesByColumn(tableEntries(), string(RankByRevenue), false)
	assert.Equal(t, "Spin", sorted[0].Label)
	assert.Equal(t, "Power Yoga", sorted[1].Label)
	assert.Equal(t, "Boxing", sorted[2].Label)
}

func TestPaginateEntries(t *testing.T) {
	entries := make([]RankingEntry, 45)
	page, meta := PaginateEntries(entries, 1, 0)
	assert.Len(t, page, DefaultPageSize)
	assert.Equal(t, 45, meta.TotalCount)
	assert.Equal(t, DefaultPageSize, meta.PageSize)

	page, _ = PaginateEntries(entries, 3, 0)
	assert.Len(t, page, 5)

	page, meta = PaginateEntries(entries, 9, 0)
	assert.Empty(t, page)
	assert.Equal(t, 9, meta.Page)
}
