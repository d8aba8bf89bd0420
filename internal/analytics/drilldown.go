package analytics

import (
	"strings"

	"github.com/pulsefit/studio-insights-api/internal/models"
)

// DrilldownQuery narrows a drilldown's record subset locally, mirroring the
// in-modal search and filter controls.
type DrilldownQuery struct {
	Search   string
	Trainer  string
	Location string
	Day      string
}

// DrilldownResult carries the raw records behind an aggregate row together
// with their independent re-aggregation.
type DrilldownResult struct {
	Records []models.SessionRecord
	Summary MetricsSummary
}

// MatchGroup selects the records that fall into the given bucket key under
// the mode. Used to rebuild a drilldown subset from raw data rather than
// trusting anything cached by the parent view.
func MatchGroup(records []models.SessionRecord, mode GroupingMode, key string) []models.SessionRecord {
	out := make([]models.SessionRecord, 0)
	for _, r := range records {
		if k, _ := ResolveKey(r, mode); k == key {
			out = append(out, r)
		}
	}
	return out
}

// Drilldown narrows the subset with the local query and re-runs the full
// reduction over whatever remains. The summary is always recomputed here,
// never reused from the parent aggregation.
func Drilldown(records []models.SessionRecord, query DrilldownQuery) DrilldownResult {
	search := strings.ToLower(strings.TrimSpace(query.Search))
	subset := make([]models.SessionRecord, 0, len(records))
	for _, r := range records {
		if query.Trainer != "" && r.Trainer != query.Trainer {
			continue
		}
		if query.Location != "" && r.Location != query.Location {
			continue
		}
		if query.Day != "" && r.DayOfWeek != query.Day {
			continue
		}
		if search != "" && !matchesSearch(r, search) {
			continue
		}
		subset = append(subset, r)
	}
	return DrilldownResult{Records: subset, Summary: Summarize(subset)}
}
