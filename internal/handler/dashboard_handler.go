package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pulsefit/studio-insights-api/internal/dto"
	"github.com/pulsefit/studio-insights-api/internal/middleware"
	appErrors "github.com/pulsefit/studio-insights-api/pkg/errors"
	"github.com/pulsefit/studio-insights-api/pkg/response"
)

type dashboardService interface {
	Overview(ctx context.Context, q dto.DashboardQuery) (*dto.DashboardResponse, bool, error)
}

// DashboardHandler wires the studio overview endpoint.
type DashboardHandler struct {
	service dashboardService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service dashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Overview serves GET /dashboard.
func (h *DashboardHandler) Overview(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	var query dto.DashboardQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, bindingError(err))
		return
	}
	start := time.Now()
	overview, cacheHit, err := h.service.Overview(c.Request.Context(), query)
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
	response.JSON(c, http.StatusOK, overview, nil, meta)
}
