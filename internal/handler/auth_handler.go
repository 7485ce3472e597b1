package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/faculty-achievement-api/internal/dto"
	appErrors "github.com/noah-isme/faculty-achievement-api/pkg/errors"
	"github.com/noah-isme/faculty-achievement-api/pkg/response"
)

type tokenIssuer interface {
	IssueToken(req dto.IssueTokenRequest) (*dto.IssueTokenResponse, error)
}

// AuthHandler exposes token issuance for operators and the caller identity.
type AuthHandler struct {
	issuer tokenIssuer
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(issuer tokenIssuer) *AuthHandler {
	return &AuthHandler{issuer: issuer}
}

// IssueToken godoc
// @Summary Issue an access token
// @Description Admin-only. Identity management lives outside this service; tokens carry the role and faculty id.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body dto.IssueTokenRequest true "Token subject"
// @Param ttl query string false "Lifetime, e.g. 2h"
// @Success 201 {object} response.Envelope
// @Router /auth/tokens [post]
func (h *AuthHandler) IssueToken(c *gin.Context) {
	var req dto.IssueTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Validation(err, "invalid token payload"))
		return
	}
	if raw := c.Query("ttl"); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil || ttl <= 0 {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "ttl must be a positive duration"))
			return
		}
		req.TTL = ttl
	}
	res, err := h.issuer.IssueToken(req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, res)
}

// Me godoc
// @Summary Current caller identity
// @Tags Authentication
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{
		"userId":     claims.UserID,
		"role":       claims.Role,
		"facultyId":  claims.FacultyID,
		"department": claims.Department,
	}, nil)
}
