package analytics

import (
	"strings"

	"github.com/pulsefit/studio-insights-api/internal/models"
)

// FilterRecords returns the records matching the filter. The input slice is
// never modified.
func FilterRecords(records []models.SessionRecord, filter models.SessionFilter) []models.SessionRecord {
	out := make([]models.SessionRecord, 0, len(records))
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	for _, r := range records {
		if filter.Location != "" && r.Location != filter.Location {
			continue
		}
		if filter.Trainer != "" && r.Trainer != filter.Trainer {
			continue
		}
		if filter.ClassName != "" && r.ClassName != filter.ClassName && r.CleanedClass != filter.ClassName {
			continue
		}
		if filter.DateFrom != nil && r.Date.Before(*filter.DateFrom) {
			continue
		}
		if filter.DateTo != nil && r.Date.After(*filter.DateTo) {
			continue
		}
		if filter.ExcludeHosted && isHosted(r) {
			continue
		}
		if search != "" && !matchesSearch(r, search) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func isHosted(r models.SessionRecord) bool {
	return r.Hosted || strings.Contains(strings.ToLower(r.ClassName), "hosted")
}

func matchesSearch(r models.SessionRecord, search string) bool {
	for _, field := range []string{r.ClassName, r.CleanedClass, r.Trainer, r.Location, r.DayOfWeek} {
		if strings.Contains(strings.ToLower(field), search) {
			return true
		}
	}
	return false
}
