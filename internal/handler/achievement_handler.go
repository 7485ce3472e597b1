package handler

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/faculty-achievement-api/internal/dto"
	"github.com/noah-isme/faculty-achievement-api/internal/models"
	"github.com/noah-isme/faculty-achievement-api/internal/service"
	appErrors "github.com/noah-isme/faculty-achievement-api/pkg/errors"
	"github.com/noah-isme/faculty-achievement-api/pkg/response"
)

type achievementService interface {
	Submit(ctx context.Context, req dto.SubmitAchievementRequest, upload service.AchievementUpload, actor *models.JWTClaims) (*models.AchievementSubmission, error)
	Review(ctx context.Context, id string, req dto.ReviewAchievementRequest, reviewerID string) (*models.AchievementSubmission, error)
	Reconcile(ctx context.Context, id, operatorID string) (*models.AchievementSubmission, error)
	ListByStatus(ctx context.Context, status models.SubmissionStatus, limit, offset int) ([]models.AchievementSubmission, error)
	List(ctx context.Context, query dto.SubmissionQuery, actor *models.JWTClaims) ([]models.AchievementSubmission, error)
	Get(ctx context.Context, id string, actor *models.JWTClaims) (*dto.SubmissionDetail, error)
	Download(ctx context.Context, id, token string, actor *models.JWTClaims) (*service.AchievementDownload, error)
}

// AchievementHandler exposes the submission and review workflow.
type AchievementHandler struct {
	service achievementService
}

// NewAchievementHandler constructs the handler.
func NewAchievementHandler(service achievementService) *AchievementHandler {
	return &AchievementHandler{service: service}
}

// Submit godoc
// @Summary Submit an achievement with PDF evidence
// @Tags Achievements
// @Accept multipart/form-data
// @Produce json
// @Param facultyId formData string true "Faculty ID"
// @Param category formData string true "Category"
// @Param achievementType formData string true "Counter type"
// @Param title formData string true "Title"
// @Param description formData string false "Description"
// @Param requestedIncrease formData int false "Requested increase (default 1)"
// @Param file formData file true "PDF evidence"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /achievements [post]
func (h *AchievementHandler) Submit(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.SubmitAchievementRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, appErrors.Validation(err, "invalid submission payload"))
		return
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "file is required"))
		return
	}
	src, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open file"))
		return
	}
	defer src.Close()

	reader, ok := src.(io.ReadSeeker)
	if !ok {
		buf, readErr := io.ReadAll(src)
		if readErr != nil {
			response.Error(c, appErrors.Wrap(readErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to buffer file"))
			return
		}
		reader = bytes.NewReader(buf)
	}
	upload := service.AchievementUpload{
		Filename: fileHeader.Filename,
		Size:     fileHeader.Size,
		MimeType: fileHeader.Header.Get("Content-Type"),
		Content:  reader,
	}
	submission, err := h.service.Submit(c.Request.Context(), req, upload, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, submission)
}

// List godoc
// @Summary List submissions
// @Description Faculty callers only see their own submissions. Newest first.
// @Tags Achievements
// @Produce json
// @Param status query string false "Comma separated statuses"
// @Param facultyId query string false "Faculty filter"
// @Param category query string false "Category filter"
// @Param limit query int false "Page size (max 200)"
// @Param offset query int false "Offset"
// @Success 200 {object} response.Envelope
// @Router /achievements [get]
func (h *AchievementHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	limit, offset, err := pageParams(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	query := dto.SubmissionQuery{
		FacultyID: strings.TrimSpace(c.Query("facultyId")),
		Category:  models.AchievementCategory(strings.TrimSpace(c.Query("category"))),
		Limit:     limit,
		Offset:    offset,
	}
	for _, raw := range strings.Split(c.Query("status"), ",") {
		if status := strings.ToLower(strings.TrimSpace(raw)); status != "" {
			query.Status = append(query.Status, models.SubmissionStatus(status))
		}
	}
	items, err := h.service.List(c.Request.Context(), query, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil, pageMeta(limit, offset, len(items)))
}

// Pending godoc
// @Summary Review queue
// @Description Pending submissions, newest first.
// @Tags Achievements
// @Produce json
// @Param limit query int false "Page size (max 200)"
// @Param offset query int false "Offset"
// @Success 200 {object} response.Envelope
// @Router /achievements/pending [get]
func (h *AchievementHandler) Pending(c *gin.Context) {
	h.byStatus(c, models.SubmissionStatusPending)
}

// Stuck godoc
// @Summary Approvals awaiting reconciliation
// @Tags Achievements
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /achievements/approving [get]
func (h *AchievementHandler) Stuck(c *gin.Context) {
	h.byStatus(c, models.SubmissionStatusApproving)
}

func (h *AchievementHandler) byStatus(c *gin.Context, status models.SubmissionStatus) {
	limit, offset, err := pageParams(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	items, err := h.service.ListByStatus(c.Request.Context(), status, limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil, pageMeta(limit, offset, len(items)))
}

// Get godoc
// @Summary Get a submission with a signed PDF link
// @Tags Achievements
// @Produce json
// @Param id path string true "Submission ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /achievements/{id} [get]
func (h *AchievementHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	detail, err := h.service.Get(c.Request.Context(), c.Param("id"), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// Review godoc
// @Summary Approve or reject a pending submission
// @Description Approval increments the faculty counter before the status changes. A PARTIAL_FAILURE response means the counter moved but the status did not; use the reconcile endpoint.
// @Tags Achievements
// @Accept json
// @Produce json
// @Param id path string true "Submission ID"
// @Param payload body dto.ReviewAchievementRequest true "Decision"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 500 {object} response.Envelope
// @Router /achievements/{id}/review [post]
func (h *AchievementHandler) Review(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.ReviewAchievementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Validation(err, "invalid review payload"))
		return
	}
	req.Action = dto.ReviewAction(strings.ToLower(strings.TrimSpace(string(req.Action))))
	submission, err := h.service.Review(c.Request.Context(), c.Param("id"), req, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, submission, nil)
}

// Reconcile godoc
// @Summary Resolve an approval interrupted between counter and status writes
// @Tags Achievements
// @Produce json
// @Param id path string true "Submission ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /achievements/{id}/reconcile [post]
func (h *AchievementHandler) Reconcile(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	submission, err := h.service.Reconcile(c.Request.Context(), c.Param("id"), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, submission, nil)
}

// Download godoc
// @Summary Download the PDF evidence via signed token
// @Tags Achievements
// @Produce application/pdf
// @Param id path string true "Submission ID"
// @Param token query string true "Signed token"
// @Success 200 {file} binary
// @Router /achievements/{id}/pdf [get]
func (h *AchievementHandler) Download(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	token := strings.TrimSpace(c.Query("token"))
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}
	result, err := h.service.Download(c.Request.Context(), c.Param("id"), token, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer result.File.Close() //nolint:errcheck
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", result.Filename))
	c.Header("Cache-Control", "no-store")
	c.DataFromReader(http.StatusOK, result.SizeBytes, "application/pdf", result.File, nil)
}
