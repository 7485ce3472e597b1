package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/faculty-achievement-api/internal/dto"
	"github.com/noah-isme/faculty-achievement-api/internal/models"
	"github.com/noah-isme/faculty-achievement-api/internal/repository"
	appErrors "github.com/noah-isme/faculty-achievement-api/pkg/errors"
)

type facultyStore interface {
	FindByID(ctx context.Context, id string) (*models.Faculty, error)
	List(ctx context.Context, filter models.FacultyFilter) ([]models.Faculty, int, error)
	Create(ctx context.Context, faculty *models.Faculty) error
	UpdateProfile(ctx context.Context, id string, update models.FacultyProfileUpdate) (*models.Faculty, error)
}

// FacultyService manages the faculty directory. It never writes counters:
// those change only through an approved review.
type FacultyService struct {
	repo      facultyStore
	audit     auditLogger
	validator *validator.Validate
	logger    *zap.Logger
}

// NewFacultyService constructs the service.
func NewFacultyService(repo facultyStore, audit auditLogger, validate *validator.Validate, logger *zap.Logger) *FacultyService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FacultyService{repo: repo, audit: audit, validator: validate, logger: logger}
}

// Get returns a faculty record and its counters. Faculty may only read their own record.
func (s *FacultyService) Get(ctx context.Context, id string, actor *models.JWTClaims) (*dto.FacultyDetail, error) {
	if err := authorizeFacultyScope(id, actor); err != nil {
		return nil, err
	}
	faculty, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "faculty not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load faculty")
	}
	return &dto.FacultyDetail{Faculty: *faculty, Counters: Counters(faculty)}, nil
}

// List returns faculty with pagination metadata.
func (s *FacultyService) List(ctx context.Context, filter models.FacultyFilter) ([]models.Faculty, *models.Pagination, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 || filter.PageSize > 500 {
		filter.PageSize = 20
	}
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list faculty")
	}
	if items == nil {
		items = []models.Faculty{}
	}
	return items, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

// Create registers a faculty member with all counters at zero.
func (s *FacultyService) Create(ctx context.Context, req dto.CreateFacultyRequest, actorID string) (*models.Faculty, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid payload")
	}
	faculty := &models.Faculty{
		ID:          strings.TrimSpace(req.ID),
		Name:        strings.TrimSpace(req.Name),
		Department:  strings.TrimSpace(req.Department),
		Designation: strings.TrimSpace(req.Designation),
		Email:       optionalString(req.Email),
	}
	if err := s.repo.Create(ctx, faculty); err != nil {
		if errors.Is(err, repository.ErrDuplicateFaculty) {
			return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("faculty %s already exists", faculty.ID))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create faculty")
	}
	s.emitAudit(ctx, &models.AuditLog{
		UserID:     &actorID,
		Action:     models.AuditActionFacultyCreate,
		Resource:   "faculty",
		ResourceID: &faculty.ID,
		NewValues:  []byte(fmt.Sprintf(`{"name":%q,"department":%q}`, faculty.Name, faculty.Department)),
	})
	return faculty, nil
}

// UpdateProfile edits identity fields. Admins may edit any record, faculty only their own.
func (s *FacultyService) UpdateProfile(ctx context.Context, id string, req dto.UpdateFacultyProfileRequest, actor *models.JWTClaims) (*models.Faculty, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	switch actor.Role {
	case models.RoleAdmin:
	case models.RoleFaculty:
		if actor.FacultyID != id {
			return nil, appErrors.ErrForbidden
		}
	default:
		return nil, appErrors.ErrForbidden
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid payload")
	}
	update := models.FacultyProfileUpdate{
		Name:        trimmed(req.Name),
		Department:  trimmed(req.Department),
		Designation: trimmed(req.Designation),
		Email:       trimmed(req.Email),
	}
	faculty, err := s.repo.UpdateProfile(ctx, id, update)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "faculty not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update faculty")
	}
	s.emitAudit(ctx, &models.AuditLog{
		UserID:     &actor.UserID,
		Action:     models.AuditActionFacultyUpdate,
		Resource:   "faculty",
		ResourceID: &faculty.ID,
	})
	return faculty, nil
}

// Counters projects every registered counter of a faculty record.
func Counters(faculty *models.Faculty) []dto.CounterValue {
	fields := models.CounterFields()
	values := make([]dto.CounterValue, 0, len(fields))
	for _, field := range fields {
		values = append(values, dto.CounterValue{
			Type:     field.Type,
			Label:    field.Label,
			Category: field.Category,
			Value:    field.Value(faculty),
		})
	}
	return values
}

func (s *FacultyService) emitAudit(ctx context.Context, log *models.AuditLog) {
	if s.audit == nil || log == nil {
		return
	}
	log.IPAddress = "system"
	log.UserAgent = "faculty-service"
	if err := s.audit.CreateAuditLog(ctx, log); err != nil {
		s.logger.Warn("failed to persist audit log", zap.Error(err))
	}
}

func trimmed(value *string) *string {
	if value == nil {
		return nil
	}
	v := strings.TrimSpace(*value)
	return &v
}
