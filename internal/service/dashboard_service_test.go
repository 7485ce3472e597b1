package service

import (
	"context"
	"encoding/json"
	"errors"
	"path"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/faculty-achievement-api/internal/models"
	appErrors "github.com/noah-isme/faculty-achievement-api/pkg/errors"
)

type memoryCacheRepo struct {
	mu    sync.Mutex
	store map[string][]byte
}

func (s *memoryCacheRepo) Get(_ context.Context, key string, dest interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	payload, ok := s.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(payload, dest)
}

func (s *memoryCacheRepo) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store == nil {
		s.store = make(map[string][]byte)
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.store[key] = payload
	return nil
}

func (s *memoryCacheRepo) DeleteByPattern(_ context.Context, pattern string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.store {
		if ok, _ := path.Match(pattern, key); ok {
			delete(s.store, key)
		}
	}
	return nil
}

type statsStoreStub struct {
	calls    int
	statuses []models.StatusCount
	err      error
}

func (s *statsStoreStub) CountByStatus(context.Context) ([]models.StatusCount, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.statuses, nil
}

func (s *statsStoreStub) CountByCategory(context.Context) ([]models.CategoryCount, error) {
	return []models.CategoryCount{{Category: models.CategoryPublication, Count: 5}}, nil
}

func (s *statsStoreStub) TopFacultyByApprovals(_ context.Context, limit int) ([]models.FacultyApprovalCount, error) {
	return []models.FacultyApprovalCount{{FacultyID: "CSE002", Name: "A. Rao", Department: "CSE", Approved: 2}}, nil
}

func TestDashboardServiceSummaryCachesAndInvalidates(t *testing.T) {
	stats := &statsStoreStub{statuses: []models.StatusCount{{Status: models.SubmissionStatusPending, Count: 4}, {Status: models.SubmissionStatusApproved, Count: 2}}}
	cacheRepo := &memoryCacheRepo{}
	cache := NewCacheService(cacheRepo, nil, time.Minute, zap.NewNop(), true)
	svc := NewDashboardService(stats, cache, nil, DashboardServiceConfig{})
	ctx := context.Background()

	summary, hit, err := svc.Summary(ctx)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 4, summary.ByStatus[models.SubmissionStatusPending])
	assert.Equal(t, 0, summary.ByStatus[models.SubmissionStatusRejected])
	assert.Equal(t, 5, summary.ByCategory[models.CategoryPublication])
	assert.Len(t, summary.ByCategory, len(models.AchievementCategories))
	assert.Equal(t, "CSE002", summary.TopFaculty[0].FacultyID)

	_, hit, err = svc.Summary(ctx)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 1, stats.calls)

	require.NoError(t, svc.InvalidateSummary(ctx))
	_, hit, err = svc.Summary(ctx)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 2, stats.calls)
}

func TestDashboardServiceWithoutCache(t *testing.T) {
	stats := &statsStoreStub{}
	svc := NewDashboardService(stats, NewCacheService(nil, nil, time.Minute, nil, false), nil, DashboardServiceConfig{})

	_, hit, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.False(t, hit)
	require.NoError(t, svc.InvalidateSummary(context.Background()))
}

func TestDashboardServicePropagatesStoreErrors(t *testing.T) {
	svc := NewDashboardService(&statsStoreStub{err: errors.New("db down")}, nil, nil, DashboardServiceConfig{})

	_, _, err := svc.Summary(context.Background())
	require.True(t, appErrors.Is(err, appErrors.ErrInternal))
}
