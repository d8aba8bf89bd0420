package dto

import (
	"fmt"
	"strings"
	"time"

	"github.com/pulsefit/studio-insights-api/internal/models"
)

// ImportSessionRow is one row of an upstream booking-system export. The
// exports drift between snake_case and camelCase field names and between
// checked_in/checkedInCount and revenue/totalPaid, so each figure has an
// alias slot. Normalisation happens here, before anything is stored.
type ImportSessionRow struct {
	ClassName       string   `json:"class_name"`
	ClassNameAlt    string   `json:"className"`
	CleanedClass    string   `json:"cleaned_class"`
	CleanedClassAlt string   `json:"cleanedClass"`
	Trainer         string   `json:"trainer"`
	TrainerName     string   `json:"trainerName"`
	Location        string   `json:"location"`
	DayOfWeek       string   `json:"day_of_week"`
	DayOfWeekAlt    string   `json:"dayOfWeek"`
	TimeOfDay       string   `json:"time"`
	TimeOfDayAlt    string   `json:"classTime"`
	Date            string   `json:"date"`
	Capacity        int      `json:"capacity"`
	CheckedIn       *int     `json:"checked_in"`
	CheckedInCount  *int     `json:"checkedInCount"`
	Booked          *int     `json:"booked"`
	BookedCount     *int     `json:"totalBooked"`
	LateCancelled   int      `json:"late_cancellations"`
	NoShows         int      `json:"no_shows"`
	Waitlisted      int      `json:"waitlisted"`
	Revenue         *float64 `json:"revenue"`
	TotalPaid       *float64 `json:"totalPaid"`
	Hosted          bool     `json:"hosted"`
	UniqueKey       string   `json:"unique_key"`
}

// ImportRequest is the POST /sessions/import payload.
type ImportRequest struct {
	Sessions []ImportSessionRow `json:"sessions" binding:"required,min=1"`
}

// ImportRowError reports why one row was rejected.
type ImportRowError struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

// ImportResponse summarises an import run.
type ImportResponse struct {
	Accepted int              `json:"accepted"`
	Rejected int              `json:"rejected"`
	Errors   []ImportRowError `json:"errors,omitempty"`
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func coalesceInt(values ...*int) int {
	for _, v := range values {
		if v != nil {
			return *v
		}
	}
	return 0
}

func coalesceFloat(values ...*float64) float64 {
	for _, v := range values {
		if v != nil {
			return *v
		}
	}
	return 0
}

// Normalize maps the row onto the canonical record shape. It returns an
// error when the row lacks the fields every aggregation depends on.
func (r ImportSessionRow) Normalize() (models.SessionRecord, error) {
	className := strings.TrimSpace(firstNonEmpty(r.ClassName, r.ClassNameAlt))
	if className == "" {
		return models.SessionRecord{}, fmt.Errorf("missing class name")
	}

	var date time.Time
	if r.Date != "" {
		parsed, err := time.Parse("2006-01-02", r.Date)
		if err != nil {
			return models.SessionRecord{}, fmt.Errorf("invalid date %q", r.Date)
		}
		date = parsed
	}

	record := models.SessionRecord{
		ClassName:     className,
		CleanedClass:  strings.TrimSpace(firstNonEmpty(r.CleanedClass, r.CleanedClassAlt, className)),
		Trainer:       strings.TrimSpace(firstNonEmpty(r.Trainer, r.TrainerName)),
		Location:      strings.TrimSpace(r.Location),
		DayOfWeek:     strings.TrimSpace(firstNonEmpty(r.DayOfWeek, r.DayOfWeekAlt)),
		TimeOfDay:     strings.TrimSpace(firstNonEmpty(r.TimeOfDay, r.TimeOfDayAlt)),
		Date:          date,
		Capacity:      r.Capacity,
		CheckedIn:     coalesceInt(r.CheckedIn, r.CheckedInCount),
		Booked:        coalesceInt(r.Booked, r.BookedCount),
		LateCancelled: r.LateCancelled,
		NoShows:       r.NoShows,
		Waitlisted:    r.Waitlisted,
		Revenue:       coalesceFloat(r.Revenue, r.TotalPaid),
		Hosted:        r.Hosted,
		UniqueKey:     r.UniqueKey,
	}

	if record.DayOfWeek == "" && !date.IsZero() {
		record.DayOfWeek = date.Weekday().String()
	}
	if record.UniqueKey == "" {
		record.UniqueKey = strings.Join([]string{record.ClassName, r.Date, record.TimeOfDay, record.Location}, "|")
	}
	return record, nil
}
