package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulsefit/studio-insights-api/internal/dto"
	"github.com/pulsefit/studio-insights-api/internal/models"
)

type responseEnvelope struct {
	Data       map[string]interface{} `json:"data"`
	Error      map[string]interface{} `json:"error"`
	Pagination map[string]interface{} `json:"pagination"`
	Meta       map[string]interface{} `json:"meta"`
}

type fakeInsightsSrv struct {
	resp      *dto.InsightsResponse
	err       error
	hit       bool
	lastQuery dto.InsightsQuery
}

func (f *fakeInsightsSrv) Performance(_ context.Context, q dto.InsightsQuery) (*dto.InsightsResponse, *models.Pagination, bool, error) {
	f.lastQuery = q
	if f.err != nil {
		return nil, nil, false, f.err
	}
	return f.resp, &models.Pagination{Page: 1, PageSize: 20, TotalCount: 1}, f.hit, nil
}

func (f *fakeInsightsSrv) Trainers(ctx context.Context, q dto.InsightsQuery) (*dto.InsightsResponse, *models.Pagination, bool, error) {
	return f.Performance(ctx, q)
}

func (f *fakeInsightsSrv) Revenue(ctx context.Context, q dto.InsightsQuery) (*dto.InsightsResponse, *models.Pagination, bool, error) {
	return f.Performance(ctx, q)
}

func TestInsightsHandlerPerformanceSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeInsightsSrv{resp: &dto.InsightsResponse{GroupBy: "class", RankBy: "fill_rate"}, hit: true}
	handler := NewInsightsHandler(srv)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/insights/performance?groupBy=class&minClasses=2&excludeHosted=true", nil)

	handler.Performance(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "class", srv.lastQuery.GroupBy)
	assert.Equal(t, 2, srv.lastQuery.MinClasses)
	assert.True(t, srv.lastQuery.ExcludeHosted)

	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "class", envelope.Data["groupBy"])
	assert.Equal(t, true, envelope.Meta["cache_hit"])
	assert.Equal(t, float64(1), envelope.Pagination["total_count"])
}

func TestInsightsHandlerRejectsBadQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewInsightsHandler(&fakeInsightsSrv{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/insights/performance?dateFrom=not-a-date", nil)

	handler.Performance(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.NotNil(t, envelope.Error)
}

func TestInsightsHandlerServiceError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewInsightsHandler(&fakeInsightsSrv{err: assert.AnError})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/insights/revenue", nil)

	handler.Revenue(c)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
