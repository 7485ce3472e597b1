package handler

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/faculty-achievement-api/internal/dto"
	"github.com/noah-isme/faculty-achievement-api/internal/models"
	appErrors "github.com/noah-isme/faculty-achievement-api/pkg/errors"
)

type fakeFacultySrv struct {
	filter    models.FacultyFilter
	createReq dto.CreateFacultyRequest
	update    dto.UpdateFacultyProfileRequest
}

func (f *fakeFacultySrv) Get(_ context.Context, id string, _ *models.JWTClaims) (*dto.FacultyDetail, error) {
	if id != "CSE002" {
		return nil, appErrors.ErrNotFound
	}
	return &dto.FacultyDetail{Faculty: models.Faculty{ID: id}}, nil
}

func (f *fakeFacultySrv) List(_ context.Context, filter models.FacultyFilter) ([]models.Faculty, *models.Pagination, error) {
	f.filter = filter
	return []models.Faculty{{ID: "CSE002"}}, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: 1}, nil
}

func (f *fakeFacultySrv) Create(_ context.Context, req dto.CreateFacultyRequest, _ string) (*models.Faculty, error) {
	f.createReq = req
	if req.ID == "CSE002" {
		return nil, appErrors.ErrConflict
	}
	return &models.Faculty{ID: req.ID}, nil
}

func (f *fakeFacultySrv) UpdateProfile(_ context.Context, id string, req dto.UpdateFacultyProfileRequest, _ *models.JWTClaims) (*models.Faculty, error) {
	f.update = req
	return &models.Faculty{ID: id}, nil
}

type fakeFacultySubmissions struct {
	facultyID string
	limit     int
}

func (f *fakeFacultySubmissions) ListByFaculty(_ context.Context, facultyID string, limit, _ int) ([]models.AchievementSubmission, error) {
	f.facultyID = facultyID
	f.limit = limit
	return []models.AchievementSubmission{}, nil
}

func TestFacultyHandlerList(t *testing.T) {
	srv := &fakeFacultySrv{}
	handler := NewFacultyHandler(srv, nil)
	c, rec := newTestContext(http.MethodGet, "/faculty?department=CSE&page=2&pageSize=10", nil)

	handler.List(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.FacultyFilter{Department: "CSE", Page: 2, PageSize: 10}, srv.filter)
	assert.Contains(t, rec.Body.String(), `"total_count":1`)
}

func TestFacultyHandlerGetMissing(t *testing.T) {
	handler := NewFacultyHandler(&fakeFacultySrv{}, nil)
	c, rec := newTestContext(http.MethodGet, "/faculty/ECE001", nil)
	c.Params = gin.Params{{Key: "id", Value: "ECE001"}}

	handler.Get(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFacultyHandlerCreateConflict(t *testing.T) {
	handler := NewFacultyHandler(&fakeFacultySrv{}, nil)
	c, rec := newTestContext(http.MethodPost, "/faculty", strings.NewReader(`{"id":"CSE002","name":"A. Rao","department":"CSE"}`))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Create(c)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestFacultyHandlerUpdateIgnoresCounterFields(t *testing.T) {
	srv := &fakeFacultySrv{}
	handler := NewFacultyHandler(srv, nil)
	c, rec := newTestContext(http.MethodPatch, "/faculty/CSE002", strings.NewReader(`{"name":"Anita Rao","patents":99}`))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: "CSE002"}}

	handler.UpdateProfile(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	if assert.NotNil(t, srv.update.Name) {
		assert.Equal(t, "Anita Rao", *srv.update.Name)
	}
}

func TestFacultyHandlerAchievements(t *testing.T) {
	submissions := &fakeFacultySubmissions{}
	handler := NewFacultyHandler(&fakeFacultySrv{}, submissions)
	c, rec := newTestContext(http.MethodGet, "/faculty/CSE002/achievements", nil)
	c.Params = gin.Params{{Key: "id", Value: "CSE002"}}

	handler.Achievements(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "CSE002", submissions.facultyID)
	assert.Equal(t, defaultPageLimit, submissions.limit)
}
