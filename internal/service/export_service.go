package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pulsefit/studio-insights-api/internal/analytics"
	"github.com/pulsefit/studio-insights-api/internal/models"
	"github.com/pulsefit/studio-insights-api/pkg/export"
	"github.com/pulsefit/studio-insights-api/pkg/format"
	"github.com/pulsefit/studio-insights-api/pkg/storage"
)

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       models.ReportFormat
	ExpiresAt    time.Time
}

type datasetRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type titledRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportService builds report datasets from session data and persists rendered files.
type ExportService struct {
	sessions SessionProvider
	storage  fileStorage
	csv      datasetRenderer
	pdf      titledRenderer
	xlsx     titledRenderer
	signer   *storage.SignedURLSigner
	logger   *zap.Logger
	cfg      ExportConfig
}

// NewExportService constructs an ExportService.
func NewExportService(sessions SessionProvider, store fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	return &ExportService{
		sessions: sessions,
		storage:  store,
		csv:      export.NewCSVExporter(),
		pdf:      export.NewPDFExporter(),
		xlsx:     export.NewXLSXExporter(),
		signer:   signer,
		logger:   logger,
		cfg:      cfg,
	}
}

// Generate builds the dataset for the job and stores the rendered export.
func (s *ExportService) Generate(ctx context.Context, job *models.ReportJob) (*ExportResult, error) {
	if job == nil {
		return nil, fmt.Errorf("job nil")
	}
	dataset, title, err := s.buildDataset(ctx, job)
	if err != nil {
		return nil, err
	}

	var payload []byte
	switch job.Params.Format {
	case models.ReportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case models.ReportFormatPDF:
		payload, err = s.pdf.Render(dataset, title)
	case models.ReportFormatXLSX:
		payload, err = s.xlsx.Render(dataset, title)
	default:
		err = fmt.Errorf("unsupported format %s", job.Params.Format)
	}
	if err != nil {
		return nil, err
	}

	filename := s.buildFilename(job)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		return nil, err
	}
	signedURL := strings.TrimRight(s.cfg.APIPrefix, "/")
	if signedURL == "" {
		signedURL = "/api/v1"
	}
	signedURL = fmt.Sprintf("%s/export/%s", signedURL, token)

	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          signedURL,
		Format:       job.Params.Format,
		ExpiresAt:    expiresAt,
	}, nil
}

// ParseToken validates download token metadata.
func (s *ExportService) ParseToken(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error) {
	return s.signer.Parse(token, allowExpired)
}

// Open returns a handle to the stored file.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Delete removes a stored export file.
func (s *ExportService) Delete(relPath string) error {
	return s.storage.Delete(relPath)
}

// Cleanup removes files older than ttl (defaults to configured ResultTTL when ttl <= 0).
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

func (s *ExportService) buildFilename(job *models.ReportJob) string {
	timestamp := time.Now().UTC().Format("20060102_150405")
	scope := sanitizeFilename(firstOf(job.Params.Location, job.Params.Trainer, "all"))
	return fmt.Sprintf("%s_%s_%s.%s", strings.ToLower(string(job.Type)), scope, timestamp, job.Params.Format)
}

func firstOf(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}

func (s *ExportService) buildDataset(ctx context.Context, job *models.ReportJob) (export.Dataset, string, error) {
	records, err := s.loadRecords(ctx, job.Params)
	if err != nil {
		return export.Dataset{}, "", err
	}

	switch job.Type {
	case models.ReportTypePerformance:
		return rankedDataset(records, job.Params, string(analytics.GroupByClass), string(analytics.RankByFillRate)), "Class Performance Report", nil
	case models.ReportTypeTrainers:
		params := job.Params
		params.GroupBy = string(analytics.GroupByTrainer)
		return rankedDataset(records, params, string(analytics.GroupByTrainer), string(analytics.RankByAvgCheckIns)), "Trainer Report", nil
	case models.ReportTypeRevenue:
		return rankedDataset(records, job.Params, string(analytics.GroupByMonth), string(analytics.RankByRevenue)), "Revenue Report", nil
	case models.ReportTypeSummary:
		return summaryDataset(records), "Studio Summary Report", nil
	default:
		return export.Dataset{}, "", fmt.Errorf("unsupported report type %s", job.Type)
	}
}

func (s *ExportService) loadRecords(ctx context.Context, params models.ReportJobParams) ([]models.SessionRecord, error) {
	filter := models.SessionFilter{
		Location: params.Location,
		Trainer:  params.Trainer,
		DateFrom: params.DateFrom,
		DateTo:   params.DateTo,
	}
	records, err := s.sessions.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return analytics.FilterRecords(records, filter), nil
}

var rankedHeaders = []string{"Group", "Sessions", "Check-ins", "Avg Check-ins", "Fill Rate", "Revenue", "Avg Revenue", "Cancellation Rate", "Consistency"}

func rankedDataset(records []models.SessionRecord, params models.ReportJobParams, defaultGroupBy, defaultRankBy string) export.Dataset {
	groupBy := firstOf(params.GroupBy, defaultGroupBy)
	rankBy := firstOf(params.RankBy, defaultRankBy)

	entries := analytics.SummarizeGroups(analytics.GroupRecords(records, analytics.GroupingMode(groupBy)))
	entries = analytics.ApplyThresholds(entries, params.MinClasses, 0)
	entries = analytics.Rank(entries, analytics.RankMetric(rankBy), false)

	rows := make([]map[string]string, 0, len(entries))
	for _, entry := range entries {
		m := entry.Summary
		rows = append(rows, map[string]string{
			"Group":             entry.Label,
			"Sessions":          format.Count(m.SessionCount),
			"Check-ins":         format.Count(m.TotalCheckIns),
			"Avg Check-ins":     format.Number(m.AvgCheckIns, 1),
			"Fill Rate":         format.Percent(m.FillRatePct),
			"Revenue":           format.Currency(m.TotalRevenue),
			"Avg Revenue":       format.Currency(m.AvgRevenue),
			"Cancellation Rate": format.Percent(m.CancellationRatePct),
			"Consistency":       format.Percent(float64(m.ConsistencyPct)),
		})
	}
	return export.Dataset{Headers: rankedHeaders, Rows: rows}
}

func summaryDataset(records []models.SessionRecord) export.Dataset {
	overall := analytics.Summarize(records)
	rows := []map[string]string{
		{"Metric": "Sessions", "Value": format.Count(overall.SessionCount)},
		{"Metric": "Check-ins", "Value": format.Count(overall.TotalCheckIns)},
		{"Metric": "Average Check-ins", "Value": format.Number(overall.AvgCheckIns, 1)},
		{"Metric": "Fill Rate", "Value": format.Percent(overall.FillRatePct)},
		{"Metric": "Cancellation Rate", "Value": format.Percent(overall.CancellationRatePct)},
		{"Metric": "Revenue", "Value": format.Currency(overall.TotalRevenue)},
		{"Metric": "Revenue Lost", "Value": format.Currency(overall.RevenueLost)},
		{"Metric": "Empty Sessions", "Value": format.Count(overall.EmptySessions)},
	}
	return export.Dataset{Headers: []string{"Metric", "Value"}, Rows: rows}
}
