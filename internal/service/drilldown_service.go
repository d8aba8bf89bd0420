package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pulsefit/studio-insights-api/internal/analytics"
	"github.com/pulsefit/studio-insights-api/internal/dto"
	"github.com/pulsefit/studio-insights-api/internal/models"
	"github.com/pulsefit/studio-insights-api/pkg/config"
	appErrors "github.com/pulsefit/studio-insights-api/pkg/errors"
)

// DrilldownStore persists open drilldown state between requests.
type DrilldownStore interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// drilldownState is the stored snapshot of one open drilldown. The member
// records are captured at open time so narrowing never re-queries the store.
type drilldownState struct {
	ID        string                 `json:"id"`
	GroupBy   string                 `json:"group_by"`
	Key       string                 `json:"key"`
	Label     string                 `json:"label"`
	Records   []models.SessionRecord `json:"records"`
	CreatedAt time.Time              `json:"created_at"`
	ExpiresAt time.Time              `json:"expires_at"`
}

// DrilldownService manages short-lived drilldown sessions over group members.
type DrilldownService struct {
	sessions SessionProvider
	store    DrilldownStore
	metrics  *MetricsService
	logger   *zap.Logger
	cfg      config.DrilldownConfig
}

// NewDrilldownService constructs a drilldown service.
func NewDrilldownService(sessions SessionProvider, store DrilldownStore, metrics *MetricsService, logger *zap.Logger, cfg config.DrilldownConfig) *DrilldownService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 30 * time.Minute
	}
	return &DrilldownService{sessions: sessions, store: store, metrics: metrics, logger: logger, cfg: cfg}
}

func drilldownKey(id string) string {
	return BuildKey("drilldown", id)
}

// Open resolves the members of one group under the request's filters and
// stores them as a new drilldown session.
func (s *DrilldownService) Open(ctx context.Context, req dto.OpenDrilldownRequest) (*dto.DrilldownSessionResponse, error) {
	filter := req.SessionFilter()
	records, err := s.sessions.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	records = analytics.FilterRecords(records, filter)
	mode := analytics.GroupingMode(req.GroupBy)
	subset := analytics.MatchGroup(records, mode, req.Key)
	if s.metrics != nil {
		s.metrics.ObserveAggregation("drilldown_open", time.Since(start))
	}
	if len(subset) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no sessions match the requested group")
	}

	_, label := analytics.ResolveKey(subset[0], mode)
	now := time.Now().UTC()
	state := drilldownState{
		ID:        uuid.NewString(),
		GroupBy:   req.GroupBy,
		Key:       req.Key,
		Label:     label,
		Records:   subset,
		CreatedAt: now,
		ExpiresAt: now.Add(s.cfg.SessionTTL),
	}
	if err := s.store.Set(ctx, drilldownKey(state.ID), state, s.cfg.SessionTTL); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store drilldown session")
	}

	resp := sessionResponse(state)
	return &resp, nil
}

// View narrows an open drilldown and re-aggregates the visible subset.
func (s *DrilldownService) View(ctx context.Context, id string, q dto.DrilldownViewQuery) (*dto.DrilldownViewResponse, error) {
	state, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	result := analytics.Drilldown(state.Records, analytics.DrilldownQuery{
		Search:   q.Search,
		Trainer:  q.Trainer,
		Location: q.Location,
		Day:      q.Day,
	})
	return &dto.DrilldownViewResponse{
		Session:   sessionResponse(*state),
		Records:   result.Records,
		Summary:   dto.MetricsFromSummary(result.Summary),
		Formatted: dto.FormatMetrics(result.Summary),
	}, nil
}

// Close discards an open drilldown session. Closing an unknown or already
// expired session is not an error.
func (s *DrilldownService) Close(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, drilldownKey(id)); err != nil {
		s.logger.Warn("close drilldown", zap.String("id", id), zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to close drilldown session")
	}
	return nil
}

func (s *DrilldownService) load(ctx context.Context, id string) (*drilldownState, error) {
	var state drilldownState
	if err := s.store.Get(ctx, drilldownKey(id), &state); err != nil {
		if errors.Is(err, appErrors.ErrCacheMiss) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "drilldown session not found or expired")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load drilldown session")
	}
	return &state, nil
}

func sessionResponse(state drilldownState) dto.DrilldownSessionResponse {
	return dto.DrilldownSessionResponse{
		ID:        state.ID,
		GroupBy:   state.GroupBy,
		Key:       state.Key,
		Label:     state.Label,
		Sessions:  len(state.Records),
		CreatedAt: state.CreatedAt,
		ExpiresAt: state.ExpiresAt,
	}
}
