package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/pulsefit/studio-insights-api/internal/analytics"
	"github.com/pulsefit/studio-insights-api/internal/dto"
	"github.com/pulsefit/studio-insights-api/internal/models"
	"github.com/pulsefit/studio-insights-api/pkg/config"
	appErrors "github.com/pulsefit/studio-insights-api/pkg/errors"
)

// SessionProvider describes the persistence layer required by the insight services.
type SessionProvider interface {
	List(ctx context.Context, filter models.SessionFilter) ([]models.SessionRecord, error)
}

// InsightsService runs the aggregation pipeline behind the ranked insight endpoints.
type InsightsService struct {
	sessions SessionProvider
	cache    *CacheService
	metrics  *MetricsService
	logger   *zap.Logger
	cfg      config.InsightsConfig
}

// NewInsightsService constructs an insights service.
func NewInsightsService(sessions SessionProvider, cache *CacheService, metrics *MetricsService, logger *zap.Logger, cfg config.InsightsConfig) *InsightsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = analytics.DefaultPageSize
	}
	if cfg.MaxTopCount <= 0 {
		cfg.MaxTopCount = 50
	}
	return &InsightsService{sessions: sessions, cache: cache, metrics: metrics, logger: logger, cfg: cfg}
}

// Performance returns ranked class performance. The boolean reports a cache hit.
func (s *InsightsService) Performance(ctx context.Context, q dto.InsightsQuery) (*dto.InsightsResponse, *models.Pagination, bool, error) {
	if q.GroupBy == "" {
		q.GroupBy = string(analytics.GroupByClass)
	}
	if q.RankBy == "" {
		q.RankBy = string(analytics.RankByFillRate)
	}
	return s.rankings(ctx, "performance", q)
}

// Trainers returns the trainer leaderboard. Grouping is pinned to trainer.
func (s *InsightsService) Trainers(ctx context.Context, q dto.InsightsQuery) (*dto.InsightsResponse, *models.Pagination, bool, error) {
	q.GroupBy = string(analytics.GroupByTrainer)
	if q.RankBy == "" {
		q.RankBy = string(analytics.RankByAvgCheckIns)
	}
	return s.rankings(ctx, "trainers", q)
}

// Revenue returns revenue rankings, by month unless another grouping is requested.
func (s *InsightsService) Revenue(ctx context.Context, q dto.InsightsQuery) (*dto.InsightsResponse, *models.Pagination, bool, error) {
	if q.GroupBy == "" {
		q.GroupBy = string(analytics.GroupByMonth)
	}
	if q.RankBy == "" {
		q.RankBy = string(analytics.RankByRevenue)
	}
	return s.rankings(ctx, "revenue", q)
}

type insightsPayload struct {
	Response   dto.InsightsResponse `json:"response"`
	Pagination models.Pagination    `json:"pagination"`
}

func (s *InsightsService) rankings(ctx context.Context, endpoint string, q dto.InsightsQuery) (*dto.InsightsResponse, *models.Pagination, bool, error) {
	if !analytics.KnownMetric(analytics.RankMetric(q.RankBy)) {
		return nil, nil, false, appErrors.Clone(appErrors.ErrUnknownMetric, fmt.Sprintf("unknown rank metric %q", q.RankBy))
	}
	// Unknown grouping modes fall back to the composite class|day|time|location
	// key rather than failing the request.
	if !analytics.KnownMode(analytics.GroupingMode(q.GroupBy)) {
		s.logger.Warn("unknown grouping mode, using composite fallback",
			zap.String("endpoint", endpoint), zap.String("group_by", q.GroupBy))
	}

	top := clampCount(q.Top, 10, s.cfg.MaxTopCount)
	bottom := clampCount(q.Bottom, 5, s.cfg.MaxTopCount)
	page := q.Page
	if page <= 0 {
		page = 1
	}

	cacheKey := s.cacheKey(endpoint, q, top, bottom, page)
	var cached insightsPayload
	if s.cache != nil {
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err != nil {
			return nil, nil, false, fmt.Errorf("get %s cache: %w", endpoint, err)
		} else if hit {
			return &cached.Response, &cached.Pagination, true, nil
		}
	}

	records, err := s.sessions.List(ctx, q.SessionFilter())
	if err != nil {
		return nil, nil, false, err
	}

	start := time.Now()
	records = analytics.FilterRecords(records, q.SessionFilter())
	overall := analytics.Summarize(records)

	mode := analytics.GroupingMode(q.GroupBy)
	metric := analytics.RankMetric(q.RankBy)
	groups := analytics.GroupRecords(records, mode)
	entries := analytics.SummarizeGroups(groups)
	entries = analytics.ApplyThresholds(entries, q.MinClasses, q.MinCheckIns)
	ranked := analytics.Rank(entries, metric, q.Order == "asc")

	table := ranked
	if q.Search != "" {
		table = analytics.SearchEntries(table, q.Search)
	}
	if q.SortBy != "" {
		table = analytics.SortEntriesByColumn(table, q.SortBy, q.SortDir != "desc")
	}
	pageEntries, pagination := analytics.PaginateEntries(table, page, s.cfg.DefaultPageSize)
	if s.metrics != nil {
		s.metrics.ObserveAggregation(q.GroupBy, time.Since(start))
	}

	response := dto.InsightsResponse{
		GroupBy:     q.GroupBy,
		RankBy:      q.RankBy,
		TotalGroups: len(ranked),
		Overall:     dto.MetricsFromSummary(overall),
		Top:         dto.EntriesFromRanking(analytics.TopN(ranked, top)),
		Bottom:      dto.EntriesFromRanking(analytics.BottomN(ranked, bottom)),
		Table:       dto.EntriesFromRanking(pageEntries),
	}

	if s.cache != nil {
		payload := insightsPayload{Response: response, Pagination: pagination}
		if err := s.cache.Set(ctx, cacheKey, payload, s.cfg.CacheTTL); err != nil && s.logger != nil {
			s.logger.Warn("cache insights", zap.String("endpoint", endpoint), zap.Error(err))
		}
	}
	return &response, &pagination, false, nil
}

func (s *InsightsService) cacheKey(endpoint string, q dto.InsightsQuery, top, bottom, page int) string {
	return BuildKey("insights", endpoint,
		FilterFingerprint(
			q.GroupBy, q.RankBy, q.Order,
			q.Location, q.Trainer, q.Class,
			q.DateFrom, q.DateTo, q.Search,
			strconv.FormatBool(q.ExcludeHosted),
			strconv.Itoa(q.MinClasses), strconv.Itoa(q.MinCheckIns),
			strconv.Itoa(top), strconv.Itoa(bottom), strconv.Itoa(page),
			q.SortBy, q.SortDir,
		))
}

func clampCount(requested, fallback, max int) int {
	if requested <= 0 {
		return fallback
	}
	if requested > max {
		return max
	}
	return requested
}
