package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/faculty-achievement-api/internal/dto"
	"github.com/noah-isme/faculty-achievement-api/internal/middleware"
	"github.com/noah-isme/faculty-achievement-api/internal/models"
	"github.com/noah-isme/faculty-achievement-api/internal/service"
	appErrors "github.com/noah-isme/faculty-achievement-api/pkg/errors"
	"github.com/noah-isme/faculty-achievement-api/pkg/response"
)

type dashboardService interface {
	Summary(ctx context.Context) (*models.DashboardSummary, bool, error)
}

type reportService interface {
	FacultyReport(ctx context.Context, query dto.FacultyReportQuery) (*service.ExportResult, error)
	SubmissionReport(ctx context.Context, status models.SubmissionStatus, format string) (*service.ExportResult, error)
}

// DashboardHandler wires dashboard and report endpoints.
type DashboardHandler struct {
	service dashboardService
	reports reportService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service dashboardService, reports reportService) *DashboardHandler {
	return &DashboardHandler{service: service, reports: reports}
}

// Summary godoc
// @Summary Review dashboard summary
// @Description Counts by status and category plus the top faculty by approvals.
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard [get]
func (h *DashboardHandler) Summary(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	start := time.Now()
	summary, cacheHit, err := h.service.Summary(c.Request.Context())
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
	response.JSON(c, http.StatusOK, summary, nil, meta)
}

// FacultyReport godoc
// @Summary Export faculty counters
// @Tags Reports
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf"
// @Param department query string false "Department filter"
// @Success 200 {file} binary
// @Router /reports/faculty [get]
func (h *DashboardHandler) FacultyReport(c *gin.Context) {
	if h.reports == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	result, err := h.reports.FacultyReport(c.Request.Context(), dto.FacultyReportQuery{
		Format:     c.DefaultQuery("format", "csv"),
		Department: strings.TrimSpace(c.Query("department")),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, result.Filename, result.ContentType, result.Content)
}

// SubmissionReport godoc
// @Summary Export submissions by status
// @Tags Reports
// @Produce text/csv
// @Produce application/pdf
// @Param status query string false "Status (default pending)"
// @Param format query string false "csv or pdf"
// @Success 200 {file} binary
// @Router /reports/submissions [get]
func (h *DashboardHandler) SubmissionReport(c *gin.Context) {
	if h.reports == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	status := models.SubmissionStatus(strings.ToLower(c.DefaultQuery("status", string(models.SubmissionStatusPending))))
	result, err := h.reports.SubmissionReport(c.Request.Context(), status, c.DefaultQuery("format", "csv"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, result.Filename, result.ContentType, result.Content)
}
