package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/faculty-achievement-api/internal/dto"
	"github.com/noah-isme/faculty-achievement-api/internal/models"
	appErrors "github.com/noah-isme/faculty-achievement-api/pkg/errors"
	"github.com/noah-isme/faculty-achievement-api/pkg/response"
)

type facultyService interface {
	Get(ctx context.Context, id string, actor *models.JWTClaims) (*dto.FacultyDetail, error)
	List(ctx context.Context, filter models.FacultyFilter) ([]models.Faculty, *models.Pagination, error)
	Create(ctx context.Context, req dto.CreateFacultyRequest, actorID string) (*models.Faculty, error)
	UpdateProfile(ctx context.Context, id string, req dto.UpdateFacultyProfileRequest, actor *models.JWTClaims) (*models.Faculty, error)
}

type facultySubmissionLister interface {
	ListByFaculty(ctx context.Context, facultyID string, limit, offset int) ([]models.AchievementSubmission, error)
}

// FacultyHandler exposes the faculty directory.
type FacultyHandler struct {
	service     facultyService
	submissions facultySubmissionLister
}

// NewFacultyHandler constructs the handler.
func NewFacultyHandler(service facultyService, submissions facultySubmissionLister) *FacultyHandler {
	return &FacultyHandler{service: service, submissions: submissions}
}

// List godoc
// @Summary List faculty
// @Tags Faculty
// @Produce json
// @Param department query string false "Department filter"
// @Param search query string false "Name or id search"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /faculty [get]
func (h *FacultyHandler) List(c *gin.Context) {
	filter := models.FacultyFilter{
		Department: strings.TrimSpace(c.Query("department")),
		Search:     strings.TrimSpace(c.Query("search")),
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("pageSize", "20")); err == nil {
		filter.PageSize = size
	}
	items, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Get godoc
// @Summary Get a faculty record with counters
// @Tags Faculty
// @Produce json
// @Param id path string true "Faculty ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /faculty/{id} [get]
func (h *FacultyHandler) Get(c *gin.Context) {
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

// Create godoc
// @Summary Register a faculty member
// @Tags Faculty
// @Accept json
// @Produce json
// @Param payload body dto.CreateFacultyRequest true "Faculty payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /faculty [post]
func (h *FacultyHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.CreateFacultyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Validation(err, "invalid faculty payload"))
		return
	}
	faculty, err := h.service.Create(c.Request.Context(), req, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, faculty)
}

// UpdateProfile godoc
// @Summary Update faculty identity fields
// @Description Counters cannot be changed here.
// @Tags Faculty
// @Accept json
// @Produce json
// @Param id path string true "Faculty ID"
// @Param payload body dto.UpdateFacultyProfileRequest true "Profile fields"
// @Success 200 {object} response.Envelope
// @Router /faculty/{id} [patch]
func (h *FacultyHandler) UpdateProfile(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.UpdateFacultyProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Validation(err, "invalid profile payload"))
		return
	}
	faculty, err := h.service.UpdateProfile(c.Request.Context(), c.Param("id"), req, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, faculty, nil)
}

// Achievements godoc
// @Summary List a faculty member's submissions
// @Tags Faculty
// @Produce json
// @Param id path string true "Faculty ID"
// @Param limit query int false "Page size (max 200)"
// @Param offset query int false "Offset"
// @Success 200 {object} response.Envelope
// @Router /faculty/{id}/achievements [get]
func (h *FacultyHandler) Achievements(c *gin.Context) {
	if h.submissions == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "submission listing not configured"))
		return
	}
	limit, offset, err := pageParams(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	items, err := h.submissions.ListByFaculty(c.Request.Context(), c.Param("id"), limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil, pageMeta(limit, offset, len(items)))
}
