package models

import "time"

// SessionRecord is the canonical shape of one scheduled class occurrence.
// Upstream exports use drifting field names (CheckedIn vs checkedInCount,
// Revenue vs totalPaid); normalisation to this shape happens at the
// ingestion boundary, never inside the aggregation engine.
type SessionRecord struct {
	ID            string    `db:"id" json:"id"`
	ClassName     string    `db:"class_name" json:"class_name"`
	CleanedClass  string    `db:"cleaned_class" json:"cleaned_class"`
	Trainer       string    `db:"trainer" json:"trainer"`
	Location      string    `db:"location" json:"location"`
	DayOfWeek     string    `db:"day_of_week" json:"day_of_week"`
	TimeOfDay     string    `db:"time_of_day" json:"time_of_day"`
	Date          time.Time `db:"date" json:"date"`
	Capacity      int       `db:"capacity" json:"capacity"`
	CheckedIn     int       `db:"checked_in" json:"checked_in"`
	Booked        int       `db:"booked" json:"booked"`
	LateCancelled int       `db:"late_cancelled" json:"late_cancelled"`
	NoShows       int       `db:"no_shows" json:"no_shows"`
	Waitlisted    int       `db:"waitlisted" json:"waitlisted"`
	Revenue       float64   `db:"revenue" json:"revenue"`
	Hosted        bool      `db:"hosted" json:"hosted"`
	UniqueKey     string    `db:"unique_key" json:"unique_key"`
}

// SessionFilter scopes which records feed an aggregation pass.
type SessionFilter struct {
	Location      string
	Trainer       string
	ClassName     string
	DateFrom      *time.Time
	DateTo        *time.Time
	Search        string
	ExcludeHosted bool
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
