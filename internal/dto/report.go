package dto

import "github.com/pulsefit/studio-insights-api/internal/models"

// ReportRequest captures the POST /reports payload.
type ReportRequest struct {
	Type       models.ReportType   `json:"type" binding:"required,oneof=performance trainers revenue summary"`
	Format     models.ReportFormat `json:"format" binding:"required,oneof=csv pdf xlsx"`
	GroupBy    string              `json:"groupBy"`
	RankBy     string              `json:"rankBy"`
	Location   string              `json:"location"`
	Trainer    string              `json:"trainer"`
	DateFrom   string              `json:"dateFrom" binding:"omitempty,datetime=2006-01-02"`
	DateTo     string              `json:"dateTo" binding:"omitempty,datetime=2006-01-02"`
	MinClasses int                 `json:"minClasses" binding:"omitempty,min=0"`
}

// Params converts the request into persisted job parameters.
func (r ReportRequest) Params() models.ReportJobParams {
	return models.ReportJobParams{
		GroupBy:    r.GroupBy,
		RankBy:     r.RankBy,
		Location:   r.Location,
		Trainer:    r.Trainer,
		DateFrom:   parseDate(r.DateFrom),
		DateTo:     parseDate(r.DateTo),
		MinClasses: r.MinClasses,
		Format:     r.Format,
	}
}

// ReportJobResponse is returned after enqueueing a report.
type ReportJobResponse struct {
	ID       string              `json:"id"`
	Status   models.ReportStatus `json:"status"`
	Progress int                 `json:"progress"`
}

// ReportStatusResponse exposes job progress metadata.
type ReportStatusResponse struct {
	ID        string              `json:"id"`
	Status    models.ReportStatus `json:"status"`
	Progress  int                 `json:"progress"`
	ResultURL *string             `json:"resultUrl,omitempty"`
	Error     *string             `json:"error,omitempty"`
}
