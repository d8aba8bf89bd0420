package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pulsefit/studio-insights-api/internal/dto"
	"github.com/pulsefit/studio-insights-api/internal/models"
	"github.com/pulsefit/studio-insights-api/internal/service"
	appErrors "github.com/pulsefit/studio-insights-api/pkg/errors"
	"github.com/pulsefit/studio-insights-api/pkg/response"
)

type reportService interface {
	CreateJob(ctx context.Context, req dto.ReportRequest) (*dto.ReportJobResponse, error)
	GetStatus(ctx context.Context, id string) (*dto.ReportStatusResponse, error)
	ResolveDownload(ctx context.Context, token string) (*service.ReportDownload, error)
}

// ReportHandler exposes asynchronous report endpoints.
type ReportHandler struct {
	service reportService
}

// NewReportHandler constructs the handler.
func NewReportHandler(service reportService) *ReportHandler {
	return &ReportHandler{service: service}
}

// Create serves POST /reports.
func (h *ReportHandler) Create(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	var req dto.ReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindingError(err))
		return
	}
	job, err := h.service.CreateJob(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, job, nil)
}

// Status serves GET /reports/:id.
func (h *ReportHandler) Status(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "report id is required"))
		return
	}
	status, err := h.service.GetStatus(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, status, nil)
}

// Download serves GET /export/:token.
func (h *ReportHandler) Download(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	token := strings.TrimSpace(c.Param("token"))
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "download token is required"))
		return
	}
	download, err := h.service.ResolveDownload(c.Request.Context(), token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer download.File.Close()

	c.Header("Content-Disposition", `attachment; filename="`+download.Filename+`"`)
	c.Header("Content-Type", contentTypeFor(download.Format))
	http.ServeContent(c.Writer, c.Request, download.Filename, download.ExpiresAt, download.File)
}

func contentTypeFor(format models.ReportFormat) string {
	switch format {
	case models.ReportFormatCSV:
		return "text/csv"
	case models.ReportFormatPDF:
		return "application/pdf"
	case models.ReportFormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/octet-stream"
	}
}
