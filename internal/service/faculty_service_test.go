package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/faculty-achievement-api/internal/dto"
	"github.com/noah-isme/faculty-achievement-api/internal/models"
	"github.com/noah-isme/faculty-achievement-api/internal/repository"
	appErrors "github.com/noah-isme/faculty-achievement-api/pkg/errors"
)

type facultyStoreStub struct {
	items  map[string]*models.Faculty
	filter models.FacultyFilter
	update models.FacultyProfileUpdate
}

func newFacultyStoreStub(items ...*models.Faculty) *facultyStoreStub {
	stub := &facultyStoreStub{items: make(map[string]*models.Faculty)}
	for _, item := range items {
		stub.items[item.ID] = item
	}
	return stub
}

func (s *facultyStoreStub) FindByID(ctx context.Context, id string) (*models.Faculty, error) {
	item, ok := s.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copy := *item
	return &copy, nil
}

func (s *facultyStoreStub) List(ctx context.Context, filter models.FacultyFilter) ([]models.Faculty, int, error) {
	s.filter = filter
	result := make([]models.Faculty, 0, len(s.items))
	for _, item := range s.items {
		result = append(result, *item)
	}
	return result, len(result), nil
}

func (s *facultyStoreStub) Create(ctx context.Context, faculty *models.Faculty) error {
	if _, exists := s.items[faculty.ID]; exists {
		return repository.ErrDuplicateFaculty
	}
	s.items[faculty.ID] = faculty
	return nil
}

func (s *facultyStoreStub) UpdateProfile(ctx context.Context, id string, update models.FacultyProfileUpdate) (*models.Faculty, error) {
	item, ok := s.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	s.update = update
	if update.Name != nil {
		item.Name = *update.Name
	}
	if update.Department != nil {
		item.Department = *update.Department
	}
	copy := *item
	return &copy, nil
}

func TestFacultyServiceGetProjectsCounters(t *testing.T) {
	repo := newFacultyStoreStub(&models.Faculty{ID: "CSE002", Name: "A. Rao", Patents: 4, Awards: 1})
	svc := NewFacultyService(repo, nil, nil, nil)

	detail, err := svc.Get(context.Background(), "CSE002", adminActor)
	require.NoError(t, err)
	require.Len(t, detail.Counters, len(models.CounterFields()))
	values := map[models.AchievementType]int{}
	for _, counter := range detail.Counters {
		values[counter.Type] = counter.Value
	}
	assert.Equal(t, 4, values[models.AchievementPatents])
	assert.Equal(t, 1, values[models.AchievementAwards])
	assert.Equal(t, 0, values[models.AchievementBooks])

	_, err = svc.Get(context.Background(), "ECE001", adminActor)
	require.True(t, appErrors.Is(err, appErrors.ErrNotFound))

	outsider := &models.JWTClaims{UserID: "u-1", Role: models.RoleFaculty, FacultyID: "ECE001"}
	_, err = svc.Get(context.Background(), "CSE002", outsider)
	require.True(t, appErrors.Is(err, appErrors.ErrForbidden))
}

func TestFacultyServiceCreate(t *testing.T) {
	repo := newFacultyStoreStub()
	audit := &auditStub{}
	svc := NewFacultyService(repo, audit, nil, nil)

	faculty, err := svc.Create(context.Background(), dto.CreateFacultyRequest{ID: "CSE002", Name: " A. Rao ", Department: "CSE", Email: "rao@example.edu"}, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, "A. Rao", faculty.Name)
	require.NotNil(t, faculty.Email)
	assert.Zero(t, faculty.Patents)
	require.Len(t, audit.logs, 1)

	_, err = svc.Create(context.Background(), dto.CreateFacultyRequest{ID: "CSE002", Name: "Dup", Department: "CSE"}, "admin-1")
	require.True(t, appErrors.Is(err, appErrors.ErrConflict))

	_, err = svc.Create(context.Background(), dto.CreateFacultyRequest{ID: "CSE003", Name: "X", Department: "CSE", Email: "not-an-email"}, "admin-1")
	require.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestFacultyServiceUpdateProfileScopes(t *testing.T) {
	repo := newFacultyStoreStub(&models.Faculty{ID: "CSE002", Name: "A. Rao", Department: "CSE"})
	svc := NewFacultyService(repo, nil, nil, nil)
	name := "Anita Rao"

	self := &models.JWTClaims{UserID: "u-1", Role: models.RoleFaculty, FacultyID: "CSE002"}
	updated, err := svc.UpdateProfile(context.Background(), "CSE002", dto.UpdateFacultyProfileRequest{Name: &name}, self)
	require.NoError(t, err)
	assert.Equal(t, "Anita Rao", updated.Name)
	assert.Nil(t, repo.update.Department)

	hod := &models.JWTClaims{UserID: "u-2", Role: models.RoleHOD}
	_, err = svc.UpdateProfile(context.Background(), "CSE002", dto.UpdateFacultyProfileRequest{Name: &name}, hod)
	require.True(t, appErrors.Is(err, appErrors.ErrForbidden))
}

func TestFacultyServiceListDefaultsPaging(t *testing.T) {
	repo := newFacultyStoreStub(&models.Faculty{ID: "CSE002"})
	svc := NewFacultyService(repo, nil, nil, nil)

	items, page, err := svc.List(context.Background(), models.FacultyFilter{Department: "CSE"})
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 20, page.PageSize)
	assert.Equal(t, 1, page.TotalCount)
	assert.Equal(t, "CSE", repo.filter.Department)
}
