package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/faculty-achievement-api/internal/models"
	appErrors "github.com/noah-isme/faculty-achievement-api/pkg/errors"
	"github.com/noah-isme/faculty-achievement-api/pkg/response"
)

type notificationService interface {
	ListForFaculty(ctx context.Context, facultyID string, unreadOnly bool, limit int, actor *models.JWTClaims) ([]models.Notification, error)
	MarkRead(ctx context.Context, facultyID, id string, actor *models.JWTClaims) error
}

// NotificationHandler exposes faculty notifications.
type NotificationHandler struct {
	service notificationService
}

// NewNotificationHandler constructs the handler.
func NewNotificationHandler(service notificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

// List godoc
// @Summary List notifications of a faculty member
// @Tags Notifications
// @Produce json
// @Param id path string true "Faculty ID"
// @Param unread query bool false "Only unread"
// @Param limit query int false "Maximum items"
// @Success 200 {object} response.Envelope
// @Router /faculty/{id}/notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	unread, _ := strconv.ParseBool(c.DefaultQuery("unread", "false"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	items, err := h.service.ListForFaculty(c.Request.Context(), c.Param("id"), unread, limit, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// MarkRead godoc
// @Summary Mark a notification as read
// @Tags Notifications
// @Param id path string true "Faculty ID"
// @Param notificationId path string true "Notification ID"
// @Success 204
// @Router /faculty/{id}/notifications/{notificationId}/read [post]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.service.MarkRead(c.Request.Context(), c.Param("id"), c.Param("notificationId"), claims); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
