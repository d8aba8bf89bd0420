package dto

import (
	"time"

	"github.com/pulsefit/studio-insights-api/internal/models"
)

// OpenDrilldownRequest opens (or replaces) a drilldown session for a group.
type OpenDrilldownRequest struct {
	GroupBy       string `json:"groupBy" binding:"required"`
	Key           string `json:"key" binding:"required"`
	Location      string `json:"location"`
	Trainer       string `json:"trainer"`
	Class         string `json:"class"`
	DateFrom      string `json:"dateFrom" binding:"omitempty,datetime=2006-01-02"`
	DateTo        string `json:"dateTo" binding:"omitempty,datetime=2006-01-02"`
	Search        string `json:"search"`
	ExcludeHosted bool   `json:"excludeHosted"`
}

// SessionFilter converts the request into the canonical record filter.
func (r OpenDrilldownRequest) SessionFilter() models.SessionFilter {
	return models.SessionFilter{
		Location:      r.Location,
		Trainer:       r.Trainer,
		ClassName:     r.Class,
		DateFrom:      parseDate(r.DateFrom),
		DateTo:        parseDate(r.DateTo),
		Search:        r.Search,
		ExcludeHosted: r.ExcludeHosted,
	}
}

// DrilldownViewQuery narrows an open drilldown without reopening it.
type DrilldownViewQuery struct {
	Search   string `form:"search"`
	Trainer  string `form:"trainer"`
	Location string `form:"location"`
	Day      string `form:"day"`
}

// DrilldownSessionResponse describes an open drilldown session.
type DrilldownSessionResponse struct {
	ID        string    `json:"id"`
	GroupBy   string    `json:"groupBy"`
	Key       string    `json:"key"`
	Label     string    `json:"label"`
	Sessions  int       `json:"sessions"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// DrilldownViewResponse is the narrowed view over an open drilldown.
type DrilldownViewResponse struct {
	Session   DrilldownSessionResponse `json:"session"`
	Records   []models.SessionRecord   `json:"records"`
	Summary   Metrics                  `json:"summary"`
	Formatted FormattedMetrics         `json:"formatted"`
}
