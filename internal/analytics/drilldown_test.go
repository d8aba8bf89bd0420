package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulsefit/studio-insights-api/internal/models"
)

func drilldownFixture() []models.SessionRecord {
	return []models.SessionRecord{
		{ID: "1", ClassName: "Yoga", Trainer: "Ana", Location: "Downtown", DayOfWeek: "Monday", CheckedIn: 8, Capacity: 10},
		{ID: "2", ClassName: "Yoga", Trainer: "Ben", Location: "Downtown", DayOfWeek: "Tuesday", CheckedIn: 6, Capacity: 10},
		{ID: "3", ClassName: "Spin", Trainer: "Ana", Location: "Uptown", DayOfWeek: "Monday", CheckedIn: 12, Capacity: 15},
	}
}

func TestMatchGroupSelectsBucketMembers(t *testing.T) {
	records := drilldownFixture()
	key, _ := ResolveKey(records[0], GroupByClass)
	subset := MatchGroup(records, GroupByClass, key)
	assert.Equal(t, []string{"1", "2"}, ids(subset))
}

func TestDrilldownReaggregatesIndependently(t *testing.T) {
	records := drilldownFixture()
	result := Drilldown(records, DrilldownQuery{})
	require.Len(t, result.Records, 3)
	assert.Equal(t, Summarize(records), result.Summary)
}

func TestDrilldownLocalNarrowing(t *testing.T) {
	records := drilldownFixture()

	byTrainer := Drilldown(records, DrilldownQuery{Trainer: "Ana"})
	assert.Equal(t, []string{"1", "3"}, ids(byTrainer.Records))
	assert.Equal(t, 2, byTrainer.Summary.SessionCount)

	byDay := Drilldown(records, DrilldownQuery{Day: "Tuesday"})
	assert.Equal(t, []string{"2"}, ids(byDay.Records))

	bySearch := Drilldown(records, DrilldownQuery{Search: "spin"})
	assert.Equal(t, []string{"3"}, ids(bySearch.Records))
}

func TestDrilldownEmptySubsetZeroSummary(t *testing.T) {
	result := Drilldown(drilldownFixture(), DrilldownQuery{Trainer: "Nobody"})
	assert.Empty(t, result.Records)
	assert.Equal(t, MetricsSummary{}, result.Summary)
}
