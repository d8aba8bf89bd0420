package dto

import "github.com/pulsefit/studio-insights-api/internal/models"

// DashboardQuery captures the studio overview filters.
type DashboardQuery struct {
	Location      string `form:"location"`
	Trainer       string `form:"trainer"`
	DateFrom      string `form:"dateFrom" binding:"omitempty,datetime=2006-01-02"`
	DateTo        string `form:"dateTo" binding:"omitempty,datetime=2006-01-02"`
	ExcludeHosted bool   `form:"excludeHosted"`
}

// SessionFilter converts the query into the canonical record filter.
func (q DashboardQuery) SessionFilter() models.SessionFilter {
	return models.SessionFilter{
		Location:      q.Location,
		Trainer:       q.Trainer,
		DateFrom:      parseDate(q.DateFrom),
		DateTo:        parseDate(q.DateTo),
		Search:        "",
		ExcludeHosted: q.ExcludeHosted,
	}
}

// DashboardResponse is the aggregated studio overview payload.
type DashboardResponse struct {
	Overall            Metrics          `json:"overall"`
	Formatted          FormattedMetrics `json:"formatted"`
	TopClasses         []InsightEntry   `json:"topClasses"`
	BottomClasses      []InsightEntry   `json:"bottomClasses"`
	TrainerLeaderboard []InsightEntry   `json:"trainerLeaderboard"`
	RevenueByMonth     []TrendPoint     `json:"revenueByMonth"`
	AttendanceByDay    []TrendPoint     `json:"attendanceByDay"`
	LowFillAlerts      []InsightEntry   `json:"lowFillAlerts"`
	Funnel             FunnelSection    `json:"funnel"`
	FilterOptions      FilterOptions    `json:"filterOptions"`
}

// TrendPoint is one bucket of a time series section.
type TrendPoint struct {
	Period    string  `json:"period"`
	Label     string  `json:"label"`
	Value     float64 `json:"value"`
	Formatted string  `json:"formatted"`
}

// FunnelSection reports the acquisition funnel with conversion rates.
type FunnelSection struct {
	Stages        []FunnelStage `json:"stages"`
	ConversionPct float64       `json:"conversionPct"`
	RetentionPct  float64       `json:"retentionPct"`
	TotalLeads    int           `json:"totalLeads"`
}

// FunnelStage is one stage with its drop-off relative to the prior stage.
type FunnelStage struct {
	Stage      string  `json:"stage"`
	Count      int     `json:"count"`
	DropOffPct float64 `json:"dropOffPct"`
}

// FilterOptions lists the distinct values available for dashboard filters.
type FilterOptions struct {
	Locations []string `json:"locations"`
	Trainers  []string `json:"trainers"`
	Classes   []string `json:"classes"`
	Sources   []string `json:"sources"`
}
