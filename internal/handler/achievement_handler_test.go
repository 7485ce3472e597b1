package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/faculty-achievement-api/internal/dto"
	"github.com/noah-isme/faculty-achievement-api/internal/middleware"
	"github.com/noah-isme/faculty-achievement-api/internal/models"
	"github.com/noah-isme/faculty-achievement-api/internal/service"
	appErrors "github.com/noah-isme/faculty-achievement-api/pkg/errors"
)

type fakeAchievementSrv struct {
	submitReq    dto.SubmitAchievementRequest
	submitUpload []byte
	submitErr    error
	reviewReq    dto.ReviewAchievementRequest
	reviewer     string
	reviewErr    error
	listQuery    dto.SubmissionQuery
	statusQuery  models.SubmissionStatus
	token        string
}

func (f *fakeAchievementSrv) Submit(_ context.Context, req dto.SubmitAchievementRequest, upload service.AchievementUpload, _ *models.JWTClaims) (*models.AchievementSubmission, error) {
	f.submitReq = req
	f.submitUpload, _ = io.ReadAll(upload.Content)
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	return &models.AchievementSubmission{ID: "sub-1", FacultyID: req.FacultyID, Status: models.SubmissionStatusPending}, nil
}

func (f *fakeAchievementSrv) Review(_ context.Context, id string, req dto.ReviewAchievementRequest, reviewerID string) (*models.AchievementSubmission, error) {
	f.reviewReq = req
	f.reviewer = reviewerID
	if f.reviewErr != nil {
		return nil, f.reviewErr
	}
	return &models.AchievementSubmission{ID: id, Status: models.SubmissionStatusApproved}, nil
}

func (f *fakeAchievementSrv) Reconcile(_ context.Context, id, _ string) (*models.AchievementSubmission, error) {
	return &models.AchievementSubmission{ID: id, Status: models.SubmissionStatusApproved}, nil
}

func (f *fakeAchievementSrv) ListByStatus(_ context.Context, status models.SubmissionStatus, _, _ int) ([]models.AchievementSubmission, error) {
	f.statusQuery = status
	return []models.AchievementSubmission{}, nil
}

func (f *fakeAchievementSrv) List(_ context.Context, query dto.SubmissionQuery, _ *models.JWTClaims) ([]models.AchievementSubmission, error) {
	f.listQuery = query
	return []models.AchievementSubmission{{ID: "sub-2"}, {ID: "sub-1"}}, nil
}

func (f *fakeAchievementSrv) Get(_ context.Context, id string, _ *models.JWTClaims) (*dto.SubmissionDetail, error) {
	return &dto.SubmissionDetail{AchievementSubmission: models.AchievementSubmission{ID: id}}, nil
}

func (f *fakeAchievementSrv) Download(_ context.Context, _ string, token string, _ *models.JWTClaims) (*service.AchievementDownload, error) {
	f.token = token
	return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired token")
}

var reviewerClaims = &models.JWTClaims{UserID: "hod-1", Role: models.RoleHOD}

func newTestContext(method, target string, body io.Reader) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(method, target, body)
	c.Set(middleware.ContextUserKey, reviewerClaims)
	return c, rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope.Error.Code
}

func multipartSubmission(t *testing.T, withFile bool) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.WriteField("facultyId", "CSE002"))
	require.NoError(t, writer.WriteField("category", "innovation_patents"))
	require.NoError(t, writer.WriteField("achievementType", "patents"))
	require.NoError(t, writer.WriteField("title", "Low-power sensor"))
	require.NoError(t, writer.WriteField("requestedIncrease", "2"))
	if withFile {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", `form-data; name="file"; filename="patent.pdf"`)
		header.Set("Content-Type", "application/pdf")
		part, err := writer.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write([]byte("%PDF-1.4 evidence"))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestAchievementHandlerSubmit(t *testing.T) {
	srv := &fakeAchievementSrv{}
	handler := NewAchievementHandler(srv)
	body, contentType := multipartSubmission(t, true)
	c, rec := newTestContext(http.MethodPost, "/achievements", body)
	c.Request.Header.Set("Content-Type", contentType)

	handler.Submit(c)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "CSE002", srv.submitReq.FacultyID)
	assert.Equal(t, 2, srv.submitReq.RequestedIncrease)
	assert.Equal(t, "%PDF-1.4 evidence", string(srv.submitUpload))
}

func TestAchievementHandlerSubmitRequiresFile(t *testing.T) {
	handler := NewAchievementHandler(&fakeAchievementSrv{})
	body, contentType := multipartSubmission(t, false)
	c, rec := newTestContext(http.MethodPost, "/achievements", body)
	c.Request.Header.Set("Content-Type", contentType)

	handler.Submit(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, rec))
}

func TestAchievementHandlerReviewMapsErrors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"invalid state", appErrors.Clone(appErrors.ErrInvalidState, "submission is approved"), http.StatusConflict, "INVALID_STATE"},
		{"conflict", appErrors.ErrConflict, http.StatusConflict, "CONFLICT"},
		{"partial failure", appErrors.ErrPartialFailure, http.StatusInternalServerError, "PARTIAL_FAILURE"},
		{"not found", appErrors.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := &fakeAchievementSrv{reviewErr: tc.err}
			handler := NewAchievementHandler(srv)
			c, rec := newTestContext(http.MethodPost, "/achievements/sub-1/review", strings.NewReader(`{"action":"approve"}`))
			c.Request.Header.Set("Content-Type", "application/json")
			c.Params = gin.Params{{Key: "id", Value: "sub-1"}}

			handler.Review(c)

			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.code, errorCode(t, rec))
		})
	}
}

func TestAchievementHandlerReviewNormalisesAction(t *testing.T) {
	srv := &fakeAchievementSrv{}
	handler := NewAchievementHandler(srv)
	c, rec := newTestContext(http.MethodPost, "/achievements/sub-1/review", strings.NewReader(`{"action":" Reject ","reason":"blurry scan"}`))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: "sub-1"}}

	handler.Review(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, dto.ReviewActionReject, srv.reviewReq.Action)
	assert.Equal(t, "hod-1", srv.reviewer)
}

func TestAchievementHandlerListParsesFilters(t *testing.T) {
	srv := &fakeAchievementSrv{}
	handler := NewAchievementHandler(srv)
	c, rec := newTestContext(http.MethodGet, "/achievements?status=Pending,approved&category=publication&limit=500&offset=10", nil)

	handler.List(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []models.SubmissionStatus{models.SubmissionStatusPending, models.SubmissionStatusApproved}, srv.listQuery.Status)
	assert.Equal(t, models.CategoryPublication, srv.listQuery.Category)
	assert.Equal(t, maxPageLimit, srv.listQuery.Limit)
	assert.Equal(t, 10, srv.listQuery.Offset)
}

func TestAchievementHandlerListRejectsBadLimit(t *testing.T) {
	handler := NewAchievementHandler(&fakeAchievementSrv{})
	c, rec := newTestContext(http.MethodGet, "/achievements?limit=abc", nil)

	handler.List(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAchievementHandlerPendingUsesQueue(t *testing.T) {
	srv := &fakeAchievementSrv{}
	handler := NewAchievementHandler(srv)
	c, rec := newTestContext(http.MethodGet, "/achievements/pending", nil)

	handler.Pending(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.SubmissionStatusPending, srv.statusQuery)
}

func TestAchievementHandlerDownloadRequiresToken(t *testing.T) {
	srv := &fakeAchievementSrv{}
	handler := NewAchievementHandler(srv)
	c, rec := newTestContext(http.MethodGet, "/achievements/sub-1/pdf", nil)
	c.Params = gin.Params{{Key: "id", Value: "sub-1"}}

	handler.Download(c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	c, rec = newTestContext(http.MethodGet, "/achievements/sub-1/pdf?token=forged", nil)
	c.Params = gin.Params{{Key: "id", Value: "sub-1"}}
	handler.Download(c)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "forged", srv.token)
}

func TestAchievementHandlerRequiresClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAchievementHandler(&fakeAchievementSrv{})
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/achievements/sub-1", nil)

	handler.Get(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
