package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pulsefit/studio-insights-api/internal/dto"
	"github.com/pulsefit/studio-insights-api/internal/models"
	"github.com/pulsefit/studio-insights-api/pkg/config"
	appErrors "github.com/pulsefit/studio-insights-api/pkg/errors"
)

type stubSessions struct {
	records []models.SessionRecord
	err     error
	calls   int
}

func (s *stubSessions) List(_ context.Context, _ models.SessionFilter) ([]models.SessionRecord, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.records, nil
}

type stubCacheRepo struct {
	store   map[string][]byte
	deleted []string
}

func (s *stubCacheRepo) Get(_ context.Context, key string, dest interface{}) error {
	if s.store == nil {
		return appErrors.ErrCacheMiss
	}
	payload, ok := s.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(payload, dest)
}

func (s *stubCacheRepo) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	if s.store == nil {
		s.store = make(map[string][]byte)
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.store[key] = payload
	return nil
}

func (s *stubCacheRepo) Delete(_ context.Context, key string) error {
	s.deleted = append(s.deleted, key)
	delete(s.store, key)
	return nil
}

func (s *stubCacheRepo) DeleteByPattern(_ context.Context, pattern string) error {
	s.deleted = append(s.deleted, pattern)
	return nil
}

func studioRecords() []models.SessionRecord {
	return []models.SessionRecord{
		{ID: "1", ClassName: "Power Yoga", Trainer: "Ana", Location: "Downtown", DayOfWeek: "Monday", TimeOfDay: "18:00", Date: time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC), Capacity: 10, CheckedIn: 10, Booked: 10, Revenue: 200},
		{ID: "2", ClassName: "Power Yoga", Trainer: "Ana", Location: "Downtown", DayOfWeek: "Monday", TimeOfDay: "18:00", Date: time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC), Capacity: 10, CheckedIn: 8, Booked: 9, Revenue: 160},
		{ID: "3", ClassName: "Spin", Trainer: "Ben", Location: "Uptown", DayOfWeek: "Tuesday", TimeOfDay: "07:00", Date: time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC), Capacity: 20, CheckedIn: 4, Booked: 6, Revenue: 80},
		{ID: "4", ClassName: "Boxing", Trainer: "Cal", Location: "Uptown", DayOfWeek: "Friday", TimeOfDay: "19:00", Date: time.Date(2026, 2, 6, 0, 0, 0, 0, time.UTC), Capacity: 12, CheckedIn: 6, Booked: 8, Revenue: 120},
	}
}

func newTestCache(repo *stubCacheRepo) *CacheService {
	return NewCacheService(repo, nil, time.Minute, zap.NewNop(), true)
}

func TestInsightsPerformanceDefaultsAndRanking(t *testing.T) {
	sessions := &stubSessions{records: studioRecords()}
	svc := NewInsightsService(sessions, nil, nil, zap.NewNop(), config.InsightsConfig{DefaultPageSize: 20, MaxTopCount: 50})

	resp, pagination, hit, err := svc.Performance(context.Background(), dto.InsightsQuery{})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "class", resp.GroupBy)
	assert.Equal(t, "fill_rate", resp.RankBy)
	assert.Equal(t, 3, resp.TotalGroups)
	require.NotEmpty(t, resp.Top)
	assert.Equal(t, "Power Yoga", resp.Top[0].Label)
	assert.InDelta(t, 90.0, resp.Top[0].Metrics.FillRatePct, 1e-9)
	// Bottom list is worst-first.
	require.NotEmpty(t, resp.Bottom)
	assert.Equal(t, "Spin", resp.Bottom[0].Label)
	assert.Equal(t, 3, pagination.TotalCount)
	assert.Equal(t, 4, resp.Overall.Sessions)
}

func TestInsightsCacheRoundTrip(t *testing.T) {
	sessions := &stubSessions{records: studioRecords()}
	svc := NewInsightsService(sessions, newTestCache(&stubCacheRepo{}), nil, zap.NewNop(), config.InsightsConfig{})

	ctx := context.Background()
	first, _, hit, err := svc.Performance(ctx, dto.InsightsQuery{})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 1, sessions.calls)

	second, _, hit, err := svc.Performance(ctx, dto.InsightsQuery{})
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 1, sessions.calls)
	assert.Equal(t, first, second)
}

func TestInsightsTrainersPinsGrouping(t *testing.T) {
	sessions := &stubSessions{records: studioRecords()}
	svc := NewInsightsService(sessions, nil, nil, zap.NewNop(), config.InsightsConfig{})

	resp, _, _, err := svc.Trainers(context.Background(), dto.InsightsQuery{GroupBy: "class"})
	require.NoError(t, err)
	assert.Equal(t, "trainer", resp.GroupBy)
	assert.Equal(t, "avg_checkins", resp.RankBy)
	require.NotEmpty(t, resp.Top)
	assert.Equal(t, "Ana", resp.Top[0].Label)
}

func TestInsightsRevenueDefaultsToMonth(t *testing.T) {
	sessions := &stubSessions{records: studioRecords()}
	svc := NewInsightsService(sessions, nil, nil, zap.NewNop(), config.InsightsConfig{})

	resp, _, _, err := svc.Revenue(context.Background(), dto.InsightsQuery{})
	require.NoError(t, err)
	assert.Equal(t, "month", resp.GroupBy)
	require.Len(t, resp.Top, 2)
	// January revenue (360) outranks February (200).
	assert.Equal(t, "2026-01", resp.Top[0].Key)
	assert.InDelta(t, 360.0, resp.Top[0].Metrics.Revenue, 1e-9)
}

func TestInsightsThresholdsExcludeSmallGroups(t *testing.T) {
	sessions := &stubSessions{records: studioRecords()}
	svc := NewInsightsService(sessions, nil, nil, zap.NewNop(), config.InsightsConfig{})

	resp, _, _, err := svc.Performance(context.Background(), dto.InsightsQuery{MinClasses: 2})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.TotalGroups)
	assert.Equal(t, "Power Yoga", resp.Top[0].Label)
}

func TestInsightsProviderErrorPassthrough(t *testing.T) {
	sessions := &stubSessions{err: assert.AnError}
	svc := NewInsightsService(sessions, nil, nil, zap.NewNop(), config.InsightsConfig{})

	_, _, _, err := svc.Performance(context.Background(), dto.InsightsQuery{})
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestInsightsRejectsUnknownRankMetric(t *testing.T) {
	sessions := &stubSessions{records: studioRecords()}
	svc := NewInsightsService(sessions, nil, nil, zap.NewNop(), config.InsightsConfig{})

	_, _, _, err := svc.Performance(context.Background(), dto.InsightsQuery{RankBy: "vibes"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrUnknownMetric.Code, appErr.Code)
	// Rejected before touching the store.
	assert.Zero(t, sessions.calls)
}

func TestInsightsUnknownGroupingFallsBack(t *testing.T) {
	sessions := &stubSessions{records: studioRecords()}
	svc := NewInsightsService(sessions, nil, nil, zap.NewNop(), config.InsightsConfig{})

	resp, _, _, err := svc.Performance(context.Background(), dto.InsightsQuery{GroupBy: "mystery"})
	require.NoError(t, err)
	// Every class/day/time/location combination in the fixture is distinct,
	// so the composite fallback yields one group per session series.
	assert.Equal(t, 3, resp.TotalGroups)
	assert.Equal(t, "Power Yoga - Monday 18:00 @ Downtown", resp.Top[0].Label)
}
