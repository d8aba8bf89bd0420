package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pulsefit/studio-insights-api/internal/dto"
	appErrors "github.com/pulsefit/studio-insights-api/pkg/errors"
	"github.com/pulsefit/studio-insights-api/pkg/response"
)

type importService interface {
	Import(ctx context.Context, req dto.ImportRequest) (*dto.ImportResponse, error)
}

// SessionsHandler wires the ingestion endpoint.
type SessionsHandler struct {
	service importService
}

// NewSessionsHandler constructs the handler.
func NewSessionsHandler(service importService) *SessionsHandler {
	return &SessionsHandler{service: service}
}

// Import serves POST /sessions/import.
func (h *SessionsHandler) Import(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	var req dto.ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindingError(err))
		return
	}
	result, err := h.service.Import(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	status := http.StatusOK
	if result.Rejected > 0 {
		status = http.StatusMultiStatus
	}
	response.JSON(c, status, result, nil)
}
