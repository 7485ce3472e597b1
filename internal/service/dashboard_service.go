package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/faculty-achievement-api/internal/models"
	appErrors "github.com/noah-isme/faculty-achievement-api/pkg/errors"
)

const dashboardSummaryKey = "dash:summary"

type dashboardStatsStore interface {
	CountByStatus(ctx context.Context) ([]models.StatusCount, error)
	CountByCategory(ctx context.Context) ([]models.CategoryCount, error)
	TopFacultyByApprovals(ctx context.Context, limit int) ([]models.FacultyApprovalCount, error)
}

// DashboardServiceConfig tunes dashboard behaviour.
type DashboardServiceConfig struct {
	CacheTTL        time.Duration
	TopFacultyLimit int
}

// DashboardService composes the reviewer dashboard summary.
type DashboardService struct {
	stats  dashboardStatsStore
	cache  *CacheService
	logger *zap.Logger
	now    func() time.Time
	cfg    DashboardServiceConfig
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(stats dashboardStatsStore, cache *CacheService, logger *zap.Logger, cfg DashboardServiceConfig) *DashboardService {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if cfg.TopFacultyLimit <= 0 {
		cfg.TopFacultyLimit = 10
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{stats: stats, cache: cache, logger: logger, now: time.Now, cfg: cfg}
}

// Summary returns submission counts and the approval leaderboard, reporting
// whether the payload came from cache.
func (s *DashboardService) Summary(ctx context.Context) (*models.DashboardSummary, bool, error) {
	if !s.cache.Enabled() {
		summary, err := s.compose(ctx)
		return summary, false, err
	}
	var summary models.DashboardSummary
	hit, err := s.cache.Remember(ctx, dashboardSummaryKey, s.cfg.CacheTTL, &summary, func(ctx context.Context) (interface{}, error) {
		return s.compose(ctx)
	})
	if err != nil {
		return nil, false, err
	}
	return &summary, hit, nil
}

// InvalidateSummary drops cached dashboard payloads.
func (s *DashboardService) InvalidateSummary(ctx context.Context) error {
	return s.cache.Invalidate(ctx, "dash:*")
}

func (s *DashboardService) compose(ctx context.Context) (*models.DashboardSummary, error) {
	byStatus, err := s.stats.CountByStatus(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count submissions by status")
	}
	byCategory, err := s.stats.CountByCategory(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count submissions by category")
	}
	top, err := s.stats.TopFacultyByApprovals(ctx, s.cfg.TopFacultyLimit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to rank faculty")
	}

	summary := &models.DashboardSummary{
		ByStatus: map[models.SubmissionStatus]int{
			models.SubmissionStatusPending:  0,
			models.SubmissionStatusApproved: 0,
			models.SubmissionStatusRejected: 0,
		},
		ByCategory:  make(map[models.AchievementCategory]int, len(models.AchievementCategories)),
		TopFaculty:  top,
		GeneratedAt: s.now().UTC(),
	}
	for _, category := range models.AchievementCategories {
		summary.ByCategory[category] = 0
	}
	for _, row := range byStatus {
		summary.ByStatus[row.Status] += row.Count
	}
	for _, row := range byCategory {
		summary.ByCategory[row.Category] += row.Count
	}
	if summary.TopFaculty == nil {
		summary.TopFaculty = []models.FacultyApprovalCount{}
	}
	return summary, nil
}
