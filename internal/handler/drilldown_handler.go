package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pulsefit/studio-insights-api/internal/dto"
	appErrors "github.com/pulsefit/studio-insights-api/pkg/errors"
	"github.com/pulsefit/studio-insights-api/pkg/response"
)

type drilldownService interface {
	Open(ctx context.Context, req dto.OpenDrilldownRequest) (*dto.DrilldownSessionResponse, error)
	View(ctx context.Context, id string, q dto.DrilldownViewQuery) (*dto.DrilldownViewResponse, error)
	Close(ctx context.Context, id string) error
}

// DrilldownHandler wires the drilldown session endpoints.
type DrilldownHandler struct {
	service drilldownService
}

// NewDrilldownHandler constructs the handler.
func NewDrilldownHandler(service drilldownService) *DrilldownHandler {
	return &DrilldownHandler{service: service}
}

// Open serves POST /drilldown.
func (h *DrilldownHandler) Open(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	var req dto.OpenDrilldownRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindingError(err))
		return
	}
	session, err := h.service.Open(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, session)
}

// View serves GET /drilldown/:id.
func (h *DrilldownHandler) View(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "drilldown id is required"))
		return
	}
	var query dto.DrilldownViewQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, bindingError(err))
		return
	}
	view, err := h.service.View(c.Request.Context(), id, query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// Close serves DELETE /drilldown/:id.
func (h *DrilldownHandler) Close(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "drilldown id is required"))
		return
	}
	if err := h.service.Close(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
