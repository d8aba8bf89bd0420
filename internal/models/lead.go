package models

import "time"

// LeadStage enumerates the funnel stages a prospect moves through.
type LeadStage string

const (
	LeadStageNew            LeadStage = "lead"
	LeadStageTrialScheduled LeadStage = "trial_scheduled"
	LeadStageTrialCompleted LeadStage = "trial_completed"
	LeadStageConverted      LeadStage = "converted"
	LeadStageRetained       LeadStage = "retained"
)

// FunnelStages lists the stages in pipeline order.
var FunnelStages = []LeadStage{
	LeadStageNew,
	LeadStageTrialScheduled,
	LeadStageTrialCompleted,
	LeadStageConverted,
	LeadStageRetained,
}

// LeadRecord is one prospect in the acquisition funnel.
type LeadRecord struct {
	ID        string    `db:"id" json:"id"`
	Source    string    `db:"source" json:"source"`
	Stage     LeadStage `db:"stage" json:"stage"`
	Location  string    `db:"location" json:"location"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// LeadFilter scopes funnel queries.
type LeadFilter struct {
	Location string
	Source   string
	DateFrom *time.Time
	DateTo   *time.Time
}

// FunnelStageCount is the aggregate for one stage of the funnel.
type FunnelStageCount struct {
	Stage LeadStage `db:"stage" json:"stage"`
	Count int       `db:"count" json:"count"`
}
