package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/faculty-achievement-api/internal/models"
	appErrors "github.com/noah-isme/faculty-achievement-api/pkg/errors"
)

type validatorStub map[string]*models.JWTClaims

func (v validatorStub) ValidateToken(token string) (*models.JWTClaims, error) {
	if claims, ok := v[token]; ok {
		return claims, nil
	}
	return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
}

type auditWriterStub struct {
	mu   sync.Mutex
	logs []*models.AuditLog
}

func (a *auditWriterStub) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.logs = append(a.logs, log)
	return nil
}

type observerStub struct {
	paths []string
}

func (o *observerStub) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	o.paths = append(o.paths, method+" "+path)
}

var tokens = validatorStub{
	"admin":   {UserID: "admin-1", Role: models.RoleAdmin},
	"faculty": {UserID: "u-7", Role: models.RoleFaculty, FacultyID: "CSE002"},
	"hod":     {UserID: "hod-1", Role: models.RoleHOD},
}

func newRouter(audit *auditWriterStub, observer *observerStub) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	if observer != nil {
		r.Use(Metrics(observer))
	}
	secured := r.Group("/", JWT(tokens))
	secured.PATCH("/faculty/:id", RBAC(string(models.RoleAdmin), RoleSelf), Audit(audit, nil, models.AuditActionFacultyUpdate, "faculty"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	secured.POST("/achievements/:id/review", RequireReviewer(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func perform(r http.Handler, method, path, token string) int {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec.Code
}

func TestJWTRejectsMissingAndInvalidTokens(t *testing.T) {
	r := newRouter(&auditWriterStub{}, nil)
	assert.Equal(t, http.StatusUnauthorized, perform(r, http.MethodPatch, "/faculty/CSE002", ""))
	assert.Equal(t, http.StatusUnauthorized, perform(r, http.MethodPatch, "/faculty/CSE002", "forged"))
}

func TestRBACSelfAndReviewerRoles(t *testing.T) {
	r := newRouter(&auditWriterStub{}, nil)

	assert.Equal(t, http.StatusOK, perform(r, http.MethodPatch, "/faculty/CSE002", "faculty"))
	assert.Equal(t, http.StatusForbidden, perform(r, http.MethodPatch, "/faculty/ECE001", "faculty"))
	assert.Equal(t, http.StatusOK, perform(r, http.MethodPatch, "/faculty/ECE001", "admin"))
	assert.Equal(t, http.StatusForbidden, perform(r, http.MethodPatch, "/faculty/ECE001", "hod"))

	assert.Equal(t, http.StatusOK, perform(r, http.MethodPost, "/achievements/sub-1/review", "hod"))
	assert.Equal(t, http.StatusForbidden, perform(r, http.MethodPost, "/achievements/sub-1/review", "faculty"))
}

func TestAuditRecordsSuccessfulRequestsOnly(t *testing.T) {
	audit := &auditWriterStub{}
	r := newRouter(audit, nil)

	perform(r, http.MethodPatch, "/faculty/CSE002", "faculty")
	perform(r, http.MethodPatch, "/faculty/ECE001", "faculty")

	require.Len(t, audit.logs, 1)
	log := audit.logs[0]
	assert.Equal(t, models.AuditActionFacultyUpdate, log.Action)
	require.NotNil(t, log.ResourceID)
	assert.Equal(t, "CSE002", *log.ResourceID)
	require.NotNil(t, log.UserID)
	assert.Equal(t, "u-7", *log.UserID)
}

func TestMetricsFoldsUnmatchedRoutes(t *testing.T) {
	observer := &observerStub{}
	r := newRouter(&auditWriterStub{}, observer)

	perform(r, http.MethodGet, "/nope", "")
	perform(r, http.MethodPatch, "/faculty/CSE002", "admin")

	assert.Equal(t, []string{"GET unmatched", "PATCH /faculty/:id"}, observer.paths)
}

func TestResponseMetaCarriesCacheHit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	var meta map[string]interface{}
	r.GET("/dashboard", WithResponseMeta(), func(c *gin.Context) {
		SetCacheHit(c, true)
		meta = ExtractMeta(c)
		c.Status(http.StatusOK)
	})
	perform(r, http.MethodGet, "/dashboard", "")
	assert.Equal(t, true, meta[cacheHitKey])
}
