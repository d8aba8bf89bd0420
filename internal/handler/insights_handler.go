package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pulsefit/studio-insights-api/internal/dto"
	"github.com/pulsefit/studio-insights-api/internal/middleware"
	"github.com/pulsefit/studio-insights-api/internal/models"
	appErrors "github.com/pulsefit/studio-insights-api/pkg/errors"
	"github.com/pulsefit/studio-insights-api/pkg/response"
)

type insightsService interface {
	Performance(ctx context.Context, q dto.InsightsQuery) (*dto.InsightsResponse, *models.Pagination, bool, error)
	Trainers(ctx context.Context, q dto.InsightsQuery) (*dto.InsightsResponse, *models.Pagination, bool, error)
	Revenue(ctx context.Context, q dto.InsightsQuery) (*dto.InsightsResponse, *models.Pagination, bool, error)
}

// InsightsHandler wires the ranked insight endpoints.
type InsightsHandler struct {
	service insightsService
}

// NewInsightsHandler constructs the handler.
func NewInsightsHandler(service insightsService) *InsightsHandler {
	return &InsightsHandler{service: service}
}

// Performance serves GET /insights/performance.
func (h *InsightsHandler) Performance(c *gin.Context) {
	h.serve(c, func(ctx context.Context, q dto.InsightsQuery) (*dto.InsightsResponse, *models.Pagination, bool, error) {
		return h.service.Performance(ctx, q)
	})
}

// Trainers serves GET /insights/trainers.
func (h *InsightsHandler) Trainers(c *gin.Context) {
	h.serve(c, func(ctx context.Context, q dto.InsightsQuery) (*dto.InsightsResponse, *models.Pagination, bool, error) {
		return h.service.Trainers(ctx, q)
	})
}

// Revenue serves GET /insights/revenue.
func (h *InsightsHandler) Revenue(c *gin.Context) {
	h.serve(c, func(ctx context.Context, q dto.InsightsQuery) (*dto.InsightsResponse, *models.Pagination, bool, error) {
		return h.service.Revenue(ctx, q)
	})
}

func (h *InsightsHandler) serve(c *gin.Context, fn func(context.Context, dto.InsightsQuery) (*dto.InsightsResponse, *models.Pagination, bool, error)) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	var query dto.InsightsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, bindingError(err))
		return
	}
	start := time.Now()
	resp, pagination, cacheHit, err := fn(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	meta := middleware.ExtractMeta(c)
	if meta == nil {
		meta = map[string]interface{}{}
	}
	meta["processing_time_ms"] = time.Since(start).Milliseconds()
	response.JSON(c, http.StatusOK, resp, pagination, meta)
}
