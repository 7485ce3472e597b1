package handler

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/faculty-achievement-api/internal/middleware"
	"github.com/noah-isme/faculty-achievement-api/internal/models"
	appErrors "github.com/noah-isme/faculty-achievement-api/pkg/errors"
)

const (
	defaultPageLimit = 50
	maxPageLimit     = 200
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	return middleware.Claims(c)
}

// pageParams reads limit/offset query parameters.
func pageParams(c *gin.Context) (int, int, error) {
	limit := defaultPageLimit
	offset := 0
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			return 0, 0, appErrors.Clone(appErrors.ErrValidation, "limit must be a positive integer")
		}
		if v > maxPageLimit {
			v = maxPageLimit
		}
		limit = v
	}
	if raw := strings.TrimSpace(c.Query("offset")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			return 0, 0, appErrors.Clone(appErrors.ErrValidation, "offset must be a non-negative integer")
		}
		offset = v
	}
	return limit, offset, nil
}

func pageMeta(limit, offset, returned int) map[string]interface{} {
	return map[string]interface{}{"limit": limit, "offset": offset, "returned": returned}
}
