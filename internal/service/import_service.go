package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/pulsefit/studio-insights-api/internal/dto"
	"github.com/pulsefit/studio-insights-api/internal/models"
	"github.com/pulsefit/studio-insights-api/pkg/config"
	appErrors "github.com/pulsefit/studio-insights-api/pkg/errors"
)

// SessionWriter persists normalised session batches.
type SessionWriter interface {
	BulkUpsert(ctx context.Context, records []models.SessionRecord) (int, error)
}

// ImportService normalises upstream booking exports and stores them.
type ImportService struct {
	writer  SessionWriter
	cache   *CacheService
	metrics *MetricsService
	logger  *zap.Logger
	cfg     config.ImportsConfig
}

// NewImportService constructs an import service.
func NewImportService(writer SessionWriter, cache *CacheService, metrics *MetricsService, logger *zap.Logger, cfg config.ImportsConfig) *ImportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxBatchSize <= 0 {
		cfg.MaxBatchSize = 5000
	}
	return &ImportService{writer: writer, cache: cache, metrics: metrics, logger: logger, cfg: cfg}
}

// Import normalises and stores the batch. Rows that cannot be normalised
// are reported back per index; a batch with no usable rows is rejected.
func (s *ImportService) Import(ctx context.Context, req dto.ImportRequest) (*dto.ImportResponse, error) {
	if len(req.Sessions) > s.cfg.MaxBatchSize {
		return nil, appErrors.Clone(appErrors.ErrValidation, "import batch exceeds the maximum size")
	}

	records := make([]models.SessionRecord, 0, len(req.Sessions))
	var rowErrors []dto.ImportRowError
	for i, row := range req.Sessions {
		record, err := row.Normalize()
		if err != nil {
			rowErrors = append(rowErrors, dto.ImportRowError{Index: i, Reason: err.Error()})
			continue
		}
		records = append(records, record)
	}
	if len(records) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no importable rows in batch")
	}

	written, err := s.writer.BulkUpsert(ctx, records)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store session batch")
	}
	if s.metrics != nil {
		s.metrics.RecordSessionsIngested(written)
	}

	// Stored data changed, so every derived payload is stale.
	if s.cache != nil {
		for _, pattern := range []string{"insights:*", "dashboard:*"} {
			if err := s.cache.Invalidate(ctx, pattern); err != nil {
				s.logger.Warn("invalidate after import", zap.String("pattern", pattern), zap.Error(err))
			}
		}
	}

	s.logger.Info("session import accepted",
		zap.Int("accepted", written),
		zap.Int("rejected", len(rowErrors)))

	return &dto.ImportResponse{
		Accepted: written,
		Rejected: len(rowErrors),
		Errors:   rowErrors,
	}, nil
}
