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
	"github.com/pulsefit/studio-insights-api/pkg/format"
)

// LeadProvider describes the funnel persistence required by the dashboard.
type LeadProvider interface {
	FunnelCounts(ctx context.Context, filter models.LeadFilter) ([]models.FunnelStageCount, error)
	Sources(ctx context.Context) ([]string, error)
}

// FilterOptionsProvider lists the distinct filter values for the dashboard.
type FilterOptionsProvider interface {
	Locations(ctx context.Context) ([]string, error)
	Trainers(ctx context.Context) ([]string, error)
	ClassNames(ctx context.Context) ([]string, error)
}

// DashboardService composes the studio overview out of the aggregation engine.
type DashboardService struct {
	sessions SessionProvider
	leads    LeadProvider
	options  FilterOptionsProvider
	cache    *CacheService
	metrics  *MetricsService
	logger   *zap.Logger
	cfg      config.DashboardConfig
}

// NewDashboardService constructs a dashboard service.
func NewDashboardService(sessions SessionProvider, leads LeadProvider, options FilterOptionsProvider, cache *CacheService, metrics *MetricsService, logger *zap.Logger, cfg config.DashboardConfig) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.LeaderboardLimit <= 0 {
		cfg.LeaderboardLimit = 5
	}
	if cfg.LowFillThreshold <= 0 {
		cfg.LowFillThreshold = 40
	}
	return &DashboardService{sessions: sessions, leads: leads, options: options, cache: cache, metrics: metrics, logger: logger, cfg: cfg}
}

// Overview assembles the full dashboard payload. The boolean reports a cache hit.
func (s *DashboardService) Overview(ctx context.Context, q dto.DashboardQuery) (*dto.DashboardResponse, bool, error) {
	cacheKey := BuildKey("dashboard", FilterFingerprint(q.Location, q.Trainer, q.DateFrom, q.DateTo, strconv.FormatBool(q.ExcludeHosted)))
	var cached dto.DashboardResponse
	if s.cache != nil {
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err != nil {
			return nil, false, fmt.Errorf("get dashboard cache: %w", err)
		} else if hit {
			return &cached, true, nil
		}
	}

	filter := q.SessionFilter()
	records, err := s.sessions.List(ctx, filter)
	if err != nil {
		return nil, false, err
	}

	start := time.Now()
	records = analytics.FilterRecords(records, filter)
	overall := analytics.Summarize(records)

	classEntries := analytics.Rank(
		analytics.SummarizeGroups(analytics.GroupRecords(records, analytics.GroupByClass)),
		analytics.RankByFillRate, false)
	trainerEntries := analytics.Rank(
		analytics.SummarizeGroups(analytics.GroupRecords(records, analytics.GroupByTrainer)),
		analytics.RankByAvgCheckIns, false)

	response := dto.DashboardResponse{
		Overall:            dto.MetricsFromSummary(overall),
		Formatted:          dto.FormatMetrics(overall),
		TopClasses:         dto.EntriesFromRanking(analytics.TopN(classEntries, s.cfg.LeaderboardLimit)),
		BottomClasses:      dto.EntriesFromRanking(analytics.BottomN(classEntries, s.cfg.LeaderboardLimit)),
		TrainerLeaderboard: dto.EntriesFromRanking(analytics.TopN(trainerEntries, s.cfg.LeaderboardLimit)),
		RevenueByMonth:     revenueTrend(records),
		AttendanceByDay:    attendanceTrend(records),
		LowFillAlerts:      dto.EntriesFromRanking(s.lowFillEntries(classEntries)),
	}
	if s.metrics != nil {
		s.metrics.ObserveAggregation("dashboard", time.Since(start))
	}

	if s.leads != nil {
		counts, err := s.leads.FunnelCounts(ctx, models.LeadFilter{
			Location: q.Location,
			DateFrom: filter.DateFrom,
			DateTo:   filter.DateTo,
		})
		if err != nil {
			s.logger.Warn("load funnel counts", zap.Error(err))
		} else {
			response.Funnel = BuildFunnelSection(counts)
		}
	}

	response.FilterOptions = s.filterOptions(ctx)

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, response, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("cache dashboard", zap.Error(err))
		}
	}
	return &response, false, nil
}

// lowFillEntries returns the worst-filling groups under the configured
// threshold, worst first.
func (s *DashboardService) lowFillEntries(ranked []analytics.RankingEntry) []analytics.RankingEntry {
	low := make([]analytics.RankingEntry, 0)
	for _, entry := range ranked {
		if entry.Summary.FillRatePct < s.cfg.LowFillThreshold {
			low = append(low, entry)
		}
	}
	return analytics.BottomN(low, s.cfg.LeaderboardLimit)
}

func (s *DashboardService) filterOptions(ctx context.Context) dto.FilterOptions {
	options := dto.FilterOptions{}
	if s.options == nil {
		return options
	}
	var err error
	if options.Locations, err = s.options.Locations(ctx); err != nil {
		s.logger.Warn("load location options", zap.Error(err))
	}
	if options.Trainers, err = s.options.Trainers(ctx); err != nil {
		s.logger.Warn("load trainer options", zap.Error(err))
	}
	if options.Classes, err = s.options.ClassNames(ctx); err != nil {
		s.logger.Warn("load class options", zap.Error(err))
	}
	if s.leads != nil {
		if options.Sources, err = s.leads.Sources(ctx); err != nil {
			s.logger.Warn("load source options", zap.Error(err))
		}
	}
	return options
}

// BuildFunnelSection turns ordered stage counts into the funnel payload.
// Drop-off for a stage is measured against the stage before it; conversion
// and retention are zero when their denominators are zero.
func BuildFunnelSection(counts []models.FunnelStageCount) dto.FunnelSection {
	section := dto.FunnelSection{Stages: make([]dto.FunnelStage, 0, len(counts))}
	var leads, converted, retained int
	for i, count := range counts {
		stage := dto.FunnelStage{Stage: string(count.Stage), Count: count.Count}
		if i > 0 && counts[i-1].Count > 0 {
			stage.DropOffPct = (1 - float64(count.Count)/float64(counts[i-1].Count)) * 100
		}
		section.Stages = append(section.Stages, stage)
		switch count.Stage {
		case models.LeadStageNew:
			leads = count.Count
		case models.LeadStageConverted:
			converted = count.Count
		case models.LeadStageRetained:
			retained = count.Count
		}
	}
	section.TotalLeads = leads
	if leads > 0 {
		section.ConversionPct = float64(converted) / float64(leads) * 100
	}
	if converted > 0 {
		section.RetentionPct = float64(retained) / float64(converted) * 100
	}
	return section
}

func revenueTrend(records []models.SessionRecord) []dto.TrendPoint {
	groups := analytics.GroupRecords(records, analytics.GroupByMonth)
	points := make([]dto.TrendPoint, 0, len(groups))
	for _, group := range groups {
		agg := analytics.Reduce(group.Records)
		points = append(points, dto.TrendPoint{
			Period:    group.Key,
			Label:     group.Label,
			Value:     agg.TotalRevenue,
			Formatted: format.Currency(agg.TotalRevenue),
		})
	}
	return points
}

func attendanceTrend(records []models.SessionRecord) []dto.TrendPoint {
	groups := analytics.GroupRecords(records, analytics.GroupByDay)
	points := make([]dto.TrendPoint, 0, len(groups))
	for _, group := range groups {
		agg := analytics.Reduce(group.Records)
		points = append(points, dto.TrendPoint{
			Period:    group.Key,
			Label:     group.Label,
			Value:     float64(agg.TotalCheckIns),
			Formatted: format.Count(agg.TotalCheckIns),
		})
	}
	return points
}
