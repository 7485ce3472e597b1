package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/faculty-achievement-api/internal/dto"
	"github.com/noah-isme/faculty-achievement-api/internal/models"
	"github.com/noah-isme/faculty-achievement-api/internal/repository"
	appErrors "github.com/noah-isme/faculty-achievement-api/pkg/errors"
)

const pdfMimeType = "application/pdf"

type submissionStore interface {
	Create(ctx context.Context, submission *models.AchievementSubmission) error
	GetByID(ctx context.Context, id string) (*models.AchievementSubmission, error)
	List(ctx context.Context, filter models.SubmissionFilter) ([]models.AchievementSubmission, error)
	UpdateStatus(ctx context.Context, id string, expected models.SubmissionStatus, update models.SubmissionUpdate) (*models.AchievementSubmission, error)
}

type counterDirectory interface {
	FindByID(ctx context.Context, id string) (*models.Faculty, error)
	IncrementCounter(ctx context.Context, facultyID string, field models.CounterField, amount int, submissionID string) (*models.CounterLedgerEntry, error)
	FindLedgerEntry(ctx context.Context, submissionID string) (*models.CounterLedgerEntry, error)
}

type achievementBlobStore interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, url string) error
	Open(url string) (*os.File, error)
}

type downloadSigner interface {
	Generate(id, ref string) (string, time.Time, error)
	Parse(token string, allowExpired bool) (id, ref string, expiresAt time.Time, err error)
}

type auditLogger interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

type reviewNotifier interface {
	NotifyReviewOutcome(ctx context.Context, submission *models.AchievementSubmission) error
}

type summaryInvalidator interface {
	InvalidateSummary(ctx context.Context) error
}

type reviewObserver interface {
	ObserveReview(action, outcome string)
}

// AchievementUpload carries the PDF evidence of a submission.
type AchievementUpload struct {
	Filename string
	Size     int64
	MimeType string
	Content  io.ReadSeeker
}

// AchievementDownload bundles an opened PDF for streaming.
type AchievementDownload struct {
	File      *os.File
	Filename  string
	SizeBytes int64
	ExpiresAt time.Time
}

// AchievementServiceConfig holds upload limits and URL settings.
// ReconcileGrace is how long an approval claim is left alone before Reconcile
// may release it.
type AchievementServiceConfig struct {
	MaxFileSize    int64
	APIPrefix      string
	ReconcileGrace time.Duration
}

// AchievementService runs the submission and review workflow.
type AchievementService struct {
	submissions submissionStore
	faculty     counterDirectory
	blobs       achievementBlobStore
	audit       auditLogger
	logger      *zap.Logger
	validator   *validator.Validate
	cfg         AchievementServiceConfig

	signer      downloadSigner
	notifier    reviewNotifier
	invalidator summaryInvalidator
	metrics     reviewObserver

	now func() time.Time
}

// AchievementServiceOption configures optional collaborators.
type AchievementServiceOption func(*AchievementService)

// WithDownloadSigner enables signed PDF download links.
func WithDownloadSigner(signer downloadSigner) AchievementServiceOption {
	return func(s *AchievementService) {
		s.signer = signer
	}
}

// WithReviewNotifier delivers review outcomes to faculty.
func WithReviewNotifier(notifier reviewNotifier) AchievementServiceOption {
	return func(s *AchievementService) {
		s.notifier = notifier
	}
}

// WithSummaryInvalidator drops cached dashboard data after reviews.
func WithSummaryInvalidator(invalidator summaryInvalidator) AchievementServiceOption {
	return func(s *AchievementService) {
		s.invalidator = invalidator
	}
}

// WithReviewObserver records review outcomes as metrics.
func WithReviewObserver(metrics reviewObserver) AchievementServiceOption {
	return func(s *AchievementService) {
		s.metrics = metrics
	}
}

// WithClock replaces the wall clock used for review timestamps and claim age.
func WithClock(now func() time.Time) AchievementServiceOption {
	return func(s *AchievementService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewAchievementService constructs the service with defaults.
func NewAchievementService(submissions submissionStore, faculty counterDirectory, blobs achievementBlobStore, audit auditLogger, validate *validator.Validate, logger *zap.Logger, cfg AchievementServiceConfig, opts ...AchievementServiceOption) *AchievementService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = 10 * 1024 * 1024
	}
	if cfg.APIPrefix == "" {
		cfg.APIPrefix = "/api/v1"
	}
	if cfg.ReconcileGrace <= 0 {
		cfg.ReconcileGrace = 2 * time.Minute
	}
	svc := &AchievementService{
		submissions: submissions,
		faculty:     faculty,
		blobs:       blobs,
		audit:       audit,
		logger:      logger,
		validator:   validate,
		cfg:         cfg,
		now:         func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc
}

// Submit validates the request, stores the PDF and records a pending submission.
// Nothing is written to the blob store until the faculty, category and type are known good.
func (s *AchievementService) Submit(ctx context.Context, req dto.SubmitAchievementRequest, upload AchievementUpload, actor *models.JWTClaims) (*models.AchievementSubmission, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	req.FacultyID = strings.TrimSpace(req.FacultyID)
	if actor.Role == models.RoleFaculty && actor.FacultyID != req.FacultyID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "faculty may only submit their own achievements")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid payload")
	}
	category := models.AchievementCategory(strings.ToLower(strings.TrimSpace(req.Category)))
	if !category.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid category: %s", req.Category))
	}
	field, ok := models.LookupCounter(models.AchievementType(strings.ToLower(strings.TrimSpace(req.AchievementType))))
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid achievement type: %s", req.AchievementType))
	}
	if err := s.validateUpload(upload); err != nil {
		return nil, err
	}

	faculty, err := s.faculty.FindByID(ctx, req.FacultyID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "faculty not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load faculty")
	}

	if _, err := upload.Content.Seek(0, io.SeekStart); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reset upload stream")
	}
	url, err := s.blobs.Put(ctx, blobKey(faculty.ID), upload.Content, pdfMimeType)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store pdf")
	}

	amount := req.RequestedIncrease
	if amount <= 0 {
		amount = 1
	}
	submission := &models.AchievementSubmission{
		FacultyID:                faculty.ID,
		Category:                 category,
		AchievementType:          field.Type,
		Title:                    strings.TrimSpace(req.Title),
		Description:              optionalString(req.Description),
		PDFURL:                   url,
		PDFName:                  pdfName(upload.Filename),
		Status:                   models.SubmissionStatusPending,
		RequestedIncrease:        amount,
		CurrentCountAtSubmission: field.Value(faculty),
		SubmittedAt:              s.now(),
	}
	if err := s.submissions.Create(ctx, submission); err != nil {
		if delErr := s.blobs.Delete(context.WithoutCancel(ctx), url); delErr != nil {
			s.logger.Warn("failed to delete orphaned pdf", zap.String("url", url), zap.Error(delErr))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create submission")
	}

	s.emitAudit(ctx, &models.AuditLog{
		UserID:     &actor.UserID,
		Action:     models.AuditActionAchievementSubmit,
		Resource:   "achievement_submission",
		ResourceID: &submission.ID,
		NewValues:  []byte(fmt.Sprintf(`{"facultyId":%q,"achievementType":%q,"requestedIncrease":%d}`, submission.FacultyID, submission.AchievementType, amount)),
	})
	return submission, nil
}

// Review approves or rejects a pending submission. Approval increments the
// faculty counter before the submission is marked approved.
func (s *AchievementService) Review(ctx context.Context, id string, req dto.ReviewAchievementRequest, reviewerID string) (*models.AchievementSubmission, error) {
	action := dto.ReviewAction(strings.ToLower(strings.TrimSpace(string(req.Action))))
	if action != dto.ReviewActionApprove && action != dto.ReviewActionReject {
		return nil, appErrors.Clone(appErrors.ErrValidation, "action must be approve or reject")
	}
	if action == dto.ReviewActionReject && strings.TrimSpace(req.Reason) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "rejection reason is required")
	}

	submission, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "submission not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load submission")
	}
	if submission.Status != models.SubmissionStatusPending {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, fmt.Sprintf("submission is %s, only pending submissions can be reviewed", submission.Status))
	}

	var result *models.AchievementSubmission
	if action == dto.ReviewActionReject {
		result, err = s.reject(ctx, submission, req, reviewerID)
	} else {
		result, err = s.approve(ctx, submission, req, reviewerID)
	}
	if err != nil {
		s.observe(string(action), err)
		return nil, err
	}
	s.observe(string(action), nil)

	s.emitAudit(ctx, &models.AuditLog{
		UserID:     &reviewerID,
		Action:     models.AuditActionAchievementReview,
		Resource:   "achievement_submission",
		ResourceID: &result.ID,
		OldValues:  []byte(fmt.Sprintf(`{"status":%q}`, models.SubmissionStatusPending)),
		NewValues:  []byte(fmt.Sprintf(`{"status":%q}`, result.Status)),
	})
	s.afterReview(ctx, result)
	return result, nil
}

func (s *AchievementService) reject(ctx context.Context, submission *models.AchievementSubmission, req dto.ReviewAchievementRequest, reviewerID string) (*models.AchievementSubmission, error) {
	_, err := s.faculty.FindLedgerEntry(ctx, submission.ID)
	switch {
	case err == nil:
		return nil, incrementRecordedError()
	case !errors.Is(err, sql.ErrNoRows):
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read counter ledger")
	}

	now := s.now()
	updated, err := s.submissions.UpdateStatus(ctx, submission.ID, models.SubmissionStatusPending, models.SubmissionUpdate{
		Status:          models.SubmissionStatusRejected,
		ReviewedBy:      &reviewerID,
		ReviewedAt:      &now,
		ReviewNotes:     optionalString(req.Notes),
		RejectionReason: optionalString(req.Reason),
	})
	if err != nil {
		return nil, transitionError(err, "failed to reject submission")
	}
	return updated, nil
}

// approve claims the submission (pending -> approving) so only one reviewer
// reaches the counter write, applies the increment, then finalizes.
func (s *AchievementService) approve(ctx context.Context, submission *models.AchievementSubmission, req dto.ReviewAchievementRequest, reviewerID string) (*models.AchievementSubmission, error) {
	field, ok := models.LookupCounter(submission.AchievementType)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown achievement type: %s", submission.AchievementType))
	}

	now := s.now()
	claimed, err := s.submissions.UpdateStatus(ctx, submission.ID, models.SubmissionStatusPending, models.SubmissionUpdate{
		Status:     models.SubmissionStatusApproving,
		ReviewedBy: &reviewerID,
		ReviewedAt: &now,
	})
	if err != nil {
		return nil, transitionError(err, "failed to claim submission")
	}

	faculty, err := s.faculty.FindByID(ctx, claimed.FacultyID)
	if err != nil {
		s.releaseClaim(ctx, claimed.ID)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "faculty not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load faculty")
	}

	amount := claimed.RequestedIncrease
	if amount <= 0 {
		amount = 1
	}
	entry, err := s.faculty.IncrementCounter(ctx, faculty.ID, field, amount, claimed.ID)
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrIncrementAlreadyApplied):
		entry, err = s.faculty.FindLedgerEntry(ctx, claimed.ID)
		if err != nil {
			s.logger.Error("counter ledger lookup failed for applied increment",
				zap.String("submission_id", claimed.ID), zap.Error(err))
			return nil, appErrors.Wrap(err, appErrors.ErrPartialFailure.Code, appErrors.ErrPartialFailure.Status, "counter already incremented but ledger could not be read")
		}
	case errors.Is(err, repository.ErrUnknownCounter):
		s.releaseClaim(ctx, claimed.ID)
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, fmt.Sprintf("counter %s does not exist", field.Column))
	case errors.Is(err, sql.ErrNoRows):
		s.releaseClaim(ctx, claimed.ID)
		return nil, appErrors.Clone(appErrors.ErrNotFound, "faculty not found")
	case errors.Is(err, repository.ErrIncrementOutcomeUnknown):
		// The claim stays in approving; Reconcile settles it from the ledger.
		s.logger.Error("counter increment outcome unknown",
			zap.String("submission_id", claimed.ID),
			zap.String("faculty_id", faculty.ID),
			zap.String("counter", field.Column),
			zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "counter increment outcome unknown; reconcile required")
	default:
		s.releaseClaim(ctx, claimed.ID)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to increment counter")
	}

	applied := entry.Amount
	approved, err := s.submissions.UpdateStatus(ctx, claimed.ID, models.SubmissionStatusApproving, models.SubmissionUpdate{
		Status:                models.SubmissionStatusApproved,
		ReviewedBy:            &reviewerID,
		ReviewedAt:            &now,
		ReviewNotes:           optionalString(req.Notes),
		ActualIncreaseApplied: &applied,
	})
	if err != nil {
		s.logger.Error("counter incremented but submission status not updated",
			zap.String("submission_id", claimed.ID),
			zap.String("faculty_id", faculty.ID),
			zap.String("counter", field.Column),
			zap.Int("new_value", entry.NewValue),
			zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrPartialFailure.Code, appErrors.ErrPartialFailure.Status, "counter incremented but submission status update failed; reconcile required")
	}
	return approved, nil
}

// releaseClaim returns a claimed submission to pending after the counter write
// was not applied.
func (s *AchievementService) releaseClaim(ctx context.Context, id string) {
	if _, err := s.submissions.UpdateStatus(context.WithoutCancel(ctx), id, models.SubmissionStatusApproving, models.SubmissionUpdate{
		Status: models.SubmissionStatusPending,
	}); err != nil {
		s.logger.Error("failed to release approval claim", zap.String("submission_id", id), zap.Error(err))
	}
}

// Reconcile resolves a submission whose approval did not finish. The counter
// ledger decides the outcome: a recorded increment finalizes the approval,
// otherwise an approving submission returns to pending once its claim is older
// than the reconcile grace period. A pending submission is accepted only when
// the ledger already holds its increment.
func (s *AchievementService) Reconcile(ctx context.Context, id, operatorID string) (*models.AchievementSubmission, error) {
	submission, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "submission not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load submission")
	}
	if submission.Status != models.SubmissionStatusApproving && submission.Status != models.SubmissionStatusPending {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, fmt.Sprintf("submission is %s, only approving submissions can be reconciled", submission.Status))
	}

	var result *models.AchievementSubmission
	entry, err := s.faculty.FindLedgerEntry(ctx, id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if submission.Status == models.SubmissionStatusPending {
			return nil, appErrors.Clone(appErrors.ErrInvalidState, "submission is pending with no recorded increment, nothing to reconcile")
		}
		if age, active := s.claimActive(submission); active {
			return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("approval claimed %s ago may still be running, retry after %s", age.Round(time.Second), s.cfg.ReconcileGrace))
		}
		result, err = s.submissions.UpdateStatus(ctx, id, models.SubmissionStatusApproving, models.SubmissionUpdate{
			Status: models.SubmissionStatusPending,
		})
		if err != nil {
			return nil, transitionError(err, "failed to release submission")
		}
	case err != nil:
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read counter ledger")
	default:
		reviewer := operatorID
		if submission.ReviewedBy != nil {
			reviewer = *submission.ReviewedBy
		}
		now := s.now()
		applied := entry.Amount
		result, err = s.submissions.UpdateStatus(ctx, id, submission.Status, models.SubmissionUpdate{
			Status:                models.SubmissionStatusApproved,
			ReviewedBy:            &reviewer,
			ReviewedAt:            &now,
			ReviewNotes:           submission.ReviewNotes,
			ActualIncreaseApplied: &applied,
		})
		if err != nil {
			return nil, transitionError(err, "failed to finalize submission")
		}
	}

	s.emitAudit(ctx, &models.AuditLog{
		UserID:     &operatorID,
		Action:     models.AuditActionAchievementReconcile,
		Resource:   "achievement_submission",
		ResourceID: &result.ID,
		OldValues:  []byte(fmt.Sprintf(`{"status":%q}`, submission.Status)),
		NewValues:  []byte(fmt.Sprintf(`{"status":%q}`, result.Status)),
	})
	if result.Status == models.SubmissionStatusApproved {
		s.afterReview(ctx, result)
	}
	return result, nil
}

// ListByStatus returns submissions in the given status, newest first.
func (s *AchievementService) ListByStatus(ctx context.Context, status models.SubmissionStatus, limit, offset int) ([]models.AchievementSubmission, error) {
	if !status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid status: %s", status))
	}
	return s.list(ctx, models.SubmissionFilter{Status: []models.SubmissionStatus{status}, Limit: limit, Offset: offset})
}

// ListByFaculty returns a faculty member's submissions, newest first.
func (s *AchievementService) ListByFaculty(ctx context.Context, facultyID string, limit, offset int) ([]models.AchievementSubmission, error) {
	facultyID = strings.TrimSpace(facultyID)
	if facultyID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "facultyId is required")
	}
	return s.list(ctx, models.SubmissionFilter{FacultyID: facultyID, Limit: limit, Offset: offset})
}

// List applies query filters scoped to the actor. Faculty only see their own submissions.
func (s *AchievementService) List(ctx context.Context, query dto.SubmissionQuery, actor *models.JWTClaims) ([]models.AchievementSubmission, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	for _, status := range query.Status {
		if !status.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid status: %s", status))
		}
	}
	if query.Category != "" && !query.Category.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid category: %s", query.Category))
	}
	filter := models.SubmissionFilter{
		Status:    query.Status,
		FacultyID: strings.TrimSpace(query.FacultyID),
		Category:  query.Category,
		Limit:     query.Limit,
		Offset:    query.Offset,
	}
	switch actor.Role {
	case models.RoleAdmin, models.RoleHOD:
	case models.RoleFaculty:
		filter.FacultyID = actor.FacultyID
	default:
		return nil, appErrors.ErrForbidden
	}
	return s.list(ctx, filter)
}

func (s *AchievementService) list(ctx context.Context, filter models.SubmissionFilter) ([]models.AchievementSubmission, error) {
	items, err := s.submissions.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list submissions")
	}
	if items == nil {
		items = []models.AchievementSubmission{}
	}
	return items, nil
}

// Get returns a submission with a signed download link.
func (s *AchievementService) Get(ctx context.Context, id string, actor *models.JWTClaims) (*dto.SubmissionDetail, error) {
	submission, err := s.load(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	detail := &dto.SubmissionDetail{AchievementSubmission: *submission}
	if s.signer != nil {
		token, _, err := s.signer.Generate(submission.ID, submission.PDFURL)
		if err != nil {
			s.logger.Warn("failed to sign pdf download", zap.String("submission_id", submission.ID), zap.Error(err))
		} else {
			detail.DownloadURL = fmt.Sprintf("%s/achievements/%s/pdf?token=%s", strings.TrimRight(s.cfg.APIPrefix, "/"), submission.ID, token)
		}
	}
	return detail, nil
}

// Download validates the signed token and opens the submission PDF.
func (s *AchievementService) Download(ctx context.Context, id, token string, actor *models.JWTClaims) (*AchievementDownload, error) {
	if s.signer == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "download signer unavailable")
	}
	submission, err := s.load(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	tokenID, ref, expiresAt, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired token")
	}
	if tokenID != submission.ID || ref != submission.PDFURL {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "token mismatch")
	}
	file, err := s.blobs.Open(submission.PDFURL)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "pdf not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open pdf")
	}
	info, err := file.Stat()
	if err != nil {
		file.Close() //nolint:errcheck
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read pdf metadata")
	}
	return &AchievementDownload{
		File:      file,
		Filename:  submission.PDFName,
		SizeBytes: info.Size(),
		ExpiresAt: expiresAt,
	}, nil
}

func (s *AchievementService) load(ctx context.Context, id string, actor *models.JWTClaims) (*models.AchievementSubmission, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	submission, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "submission not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load submission")
	}
	if actor.Role == models.RoleFaculty && submission.FacultyID != actor.FacultyID {
		return nil, appErrors.ErrForbidden
	}
	return submission, nil
}

func (s *AchievementService) validateUpload(upload AchievementUpload) error {
	if upload.Content == nil || upload.Size <= 0 {
		return appErrors.Clone(appErrors.ErrValidation, "pdf file is required")
	}
	if upload.Size > s.cfg.MaxFileSize {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("file exceeds %d bytes limit", s.cfg.MaxFileSize))
	}
	header := make([]byte, 512)
	n, err := upload.Content.Read(header)
	if err != nil && err != io.EOF {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to inspect file")
	}
	if _, err := upload.Content.Seek(0, io.SeekStart); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reset upload stream")
	}
	if n == 0 {
		return appErrors.Clone(appErrors.ErrValidation, "empty file")
	}
	if !mimetype.Detect(header[:n]).Is(pdfMimeType) {
		return appErrors.Clone(appErrors.ErrValidation, "only pdf files are accepted")
	}
	return nil
}

func (s *AchievementService) afterReview(ctx context.Context, submission *models.AchievementSubmission) {
	if s.notifier != nil {
		if err := s.notifier.NotifyReviewOutcome(ctx, submission); err != nil {
			s.logger.Warn("failed to notify faculty of review", zap.String("submission_id", submission.ID), zap.Error(err))
		}
	}
	if s.invalidator != nil {
		if err := s.invalidator.InvalidateSummary(ctx); err != nil {
			s.logger.Warn("failed to invalidate dashboard cache", zap.Error(err))
		}
	}
}

func (s *AchievementService) observe(action string, err error) {
	if s.metrics == nil {
		return
	}
	outcome := ReviewOutcomeSuccess
	if err != nil {
		outcome = strings.ToLower(appErrors.FromError(err).Code)
	}
	s.metrics.ObserveReview(action, outcome)
}

func (s *AchievementService) emitAudit(ctx context.Context, log *models.AuditLog) {
	if s.audit == nil || log == nil {
		return
	}
	log.IPAddress = "system"
	log.UserAgent = "achievement-service"
	if err := s.audit.CreateAuditLog(ctx, log); err != nil {
		s.logger.Warn("failed to persist audit log", zap.Error(err))
	}
}

// transitionError maps compare-and-set failures onto domain errors.
// claimActive reports whether an approval claim is younger than the grace
// period. A claim without a timestamp is treated as stale.
func (s *AchievementService) claimActive(submission *models.AchievementSubmission) (time.Duration, bool) {
	if submission.ReviewedAt == nil {
		return 0, false
	}
	age := s.now().Sub(*submission.ReviewedAt)
	return age, age < s.cfg.ReconcileGrace
}

func incrementRecordedError() error {
	return appErrors.Clone(appErrors.ErrInvalidState, "counter increment already recorded for this submission, approve or reconcile it instead")
}

func transitionError(err error, message string) error {
	switch {
	case errors.Is(err, repository.ErrIncrementRecorded):
		return incrementRecordedError()
	case errors.Is(err, repository.ErrStatusConflict):
		return appErrors.Clone(appErrors.ErrConflict, "submission was reviewed concurrently")
	case errors.Is(err, sql.ErrNoRows):
		return appErrors.Clone(appErrors.ErrNotFound, "submission not found")
	default:
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
	}
}

func blobKey(facultyID string) string {
	return fmt.Sprintf("%s/%d_%s.pdf", keySegment(facultyID), time.Now().Unix(), randomHex(4))
}

func keySegment(raw string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(raw) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "unknown"
	}
	return b.String()
}

func pdfName(original string) string {
	name := filepath.Base(strings.TrimSpace(original))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return "evidence.pdf"
	}
	return name
}

func randomHex(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}

func optionalString(value string) *string {
	v := strings.TrimSpace(value)
	if v == "" {
		return nil
	}
	return &v
}
