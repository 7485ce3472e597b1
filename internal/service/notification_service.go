package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"html/template"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/faculty-achievement-api/internal/dto"
	"github.com/noah-isme/faculty-achievement-api/internal/models"
	appErrors "github.com/noah-isme/faculty-achievement-api/pkg/errors"
	"github.com/noah-isme/faculty-achievement-api/pkg/jobs"
	"github.com/noah-isme/faculty-achievement-api/pkg/mailer"
)

// JobTypeNotificationEmail identifies queued review e-mails.
const JobTypeNotificationEmail = "notification.email"

type notificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
	ListByFaculty(ctx context.Context, facultyID string, unreadOnly bool, limit int) ([]models.Notification, error)
	MarkRead(ctx context.Context, id, facultyID string) error
}

type facultyLookup interface {
	FindByID(ctx context.Context, id string) (*models.Faculty, error)
}

type emailSender interface {
	Send(msg mailer.Message) error
}

type jobEnqueuer interface {
	Enqueue(job jobs.Job) error
}

type notificationObserver interface {
	ObserveNotification(delivered bool)
}

// NotificationService persists review outcomes for faculty and forwards them by e-mail.
type NotificationService struct {
	store   notificationStore
	faculty facultyLookup
	logger  *zap.Logger

	mailer  emailSender
	queue   jobEnqueuer
	metrics notificationObserver
}

// NewNotificationService constructs the service. E-mail delivery stays off until
// both a mailer and a queue are attached.
func NewNotificationService(store notificationStore, faculty facultyLookup, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{store: store, faculty: faculty, logger: logger}
}

// UseMailer enables e-mail delivery through the given sender and queue.
func (s *NotificationService) UseMailer(sender emailSender, queue jobEnqueuer) {
	s.mailer = sender
	s.queue = queue
}

// UseMetrics records delivery results.
func (s *NotificationService) UseMetrics(metrics notificationObserver) {
	s.metrics = metrics
}

// NotifyReviewOutcome stores a notification for the submitting faculty member.
func (s *NotificationService) NotifyReviewOutcome(ctx context.Context, submission *models.AchievementSubmission) error {
	if submission == nil {
		return nil
	}
	n, body := reviewNotification(submission)
	if err := s.store.Create(ctx, n); err != nil {
		return fmt.Errorf("store notification: %w", err)
	}
	s.enqueueEmail(ctx, n, body)
	return nil
}

// ListForFaculty returns the newest notifications of a faculty member.
func (s *NotificationService) ListForFaculty(ctx context.Context, facultyID string, unreadOnly bool, limit int, actor *models.JWTClaims) ([]models.Notification, error) {
	if err := authorizeFacultyScope(facultyID, actor); err != nil {
		return nil, err
	}
	items, err := s.store.ListByFaculty(ctx, facultyID, unreadOnly, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list notifications")
	}
	if items == nil {
		items = []models.Notification{}
	}
	return items, nil
}

// MarkRead flags a notification as read.
func (s *NotificationService) MarkRead(ctx context.Context, facultyID, id string, actor *models.JWTClaims) error {
	if err := authorizeFacultyScope(facultyID, actor); err != nil {
		return err
	}
	if err := s.store.MarkRead(ctx, id, facultyID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "notification not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update notification")
	}
	return nil
}

// HandleEmailJob is the queue handler delivering one notification e-mail.
func (s *NotificationService) HandleEmailJob(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(dto.NotificationEmailPayload)
	if !ok {
		s.logger.Error("unexpected notification job payload", zap.String("job_id", job.ID))
		return nil
	}
	if s.mailer == nil {
		return nil
	}
	if err := s.mailer.Send(mailer.Message{To: payload.To, Subject: payload.Subject, HTML: payload.HTML}); err != nil {
		return fmt.Errorf("send notification %s: %w", payload.NotificationID, err)
	}
	s.observe(true)
	s.logger.Debug("notification e-mail sent", zap.String("notification_id", payload.NotificationID))
	return nil
}

// HandleGiveUp records a notification e-mail that could not be delivered.
func (s *NotificationService) HandleGiveUp(job jobs.Job, err error) {
	s.observe(false)
	s.logger.Warn("notification e-mail dropped", zap.String("job_id", job.ID), zap.Error(err))
}

func (s *NotificationService) enqueueEmail(ctx context.Context, n *models.Notification, body reviewMessage) {
	if s.mailer == nil || s.queue == nil || s.faculty == nil {
		return
	}
	faculty, err := s.faculty.FindByID(ctx, n.FacultyID)
	if err != nil {
		s.logger.Warn("failed to resolve notification recipient", zap.String("faculty_id", n.FacultyID), zap.Error(err))
		return
	}
	if faculty.Email == nil || strings.TrimSpace(*faculty.Email) == "" {
		return
	}
	job := jobs.Job{
		ID:   uuid.NewString(),
		Type: JobTypeNotificationEmail,
		Payload: dto.NotificationEmailPayload{
			NotificationID: n.ID,
			To:             []string{strings.TrimSpace(*faculty.Email)},
			Subject:        n.Title,
			HTML:           renderNotificationEmail(faculty.Name, body),
		},
	}
	if err := s.queue.Enqueue(job); err != nil {
		s.observe(false)
		s.logger.Warn("failed to enqueue notification e-mail", zap.String("notification_id", n.ID), zap.Error(err))
	}
}

func (s *NotificationService) observe(delivered bool) {
	if s.metrics != nil {
		s.metrics.ObserveNotification(delivered)
	}
}

// reviewMessage keeps the outcome sentence apart from reviewer-supplied text
// (notes or rejection reason).
type reviewMessage struct {
	Summary string
	Detail  string
}

func (m reviewMessage) String() string {
	if m.Detail == "" {
		return m.Summary
	}
	return m.Summary + " " + m.Detail
}

func reviewNotification(submission *models.AchievementSubmission) (*models.Notification, reviewMessage) {
	id := submission.ID
	n := &models.Notification{
		ID:                  uuid.NewString(),
		FacultyID:           submission.FacultyID,
		RelatedSubmissionID: &id,
	}
	var body reviewMessage
	switch submission.Status {
	case models.SubmissionStatusApproved:
		applied := submission.RequestedIncrease
		if submission.ActualIncreaseApplied != nil {
			applied = *submission.ActualIncreaseApplied
		}
		n.Type = models.NotificationSuccess
		n.Title = "Achievement approved"
		body.Summary = fmt.Sprintf("Your submission %q was approved. %s increased by %d.", submission.Title, counterLabel(submission.AchievementType), applied)
		if submission.ReviewNotes != nil && strings.TrimSpace(*submission.ReviewNotes) != "" {
			body.Detail = "Notes: " + strings.TrimSpace(*submission.ReviewNotes)
		}
	case models.SubmissionStatusRejected:
		n.Type = models.NotificationError
		n.Title = "Achievement rejected"
		body.Summary = fmt.Sprintf("Your submission %q was rejected.", submission.Title)
		if submission.RejectionReason != nil && strings.TrimSpace(*submission.RejectionReason) != "" {
			body.Detail = "Reason: " + strings.TrimSpace(*submission.RejectionReason)
		}
	default:
		n.Type = models.NotificationInfo
		n.Title = "Achievement updated"
		body.Summary = fmt.Sprintf("Your submission %q is now %s.", submission.Title, submission.Status)
	}
	n.Message = body.String()
	return n, body
}

var notificationEmailTemplate = template.Must(template.New("notification").Parse(`<div style="font-family:Arial,sans-serif;max-width:560px">
<p style="margin:0 0 16px 0">Dear {{.Name}},</p>
<p style="margin:0 0 16px 0;line-height:1.6">{{.Summary}}</p>
{{- if .Detail}}
<p style="margin:0 0 16px 0;color:#344054">{{.Detail}}</p>
{{- end}}
<p style="margin:0;color:#667085;font-size:12px">This message was sent by the faculty achievement tracker.</p>
</div>`))

// renderNotificationEmail renders the HTML body. html/template escapes every
// field, so faculty names and rejection reasons cannot inject markup.
func renderNotificationEmail(name string, body reviewMessage) string {
	data := struct {
		Name    string
		Summary string
		Detail  string
	}{Name: name, Summary: body.Summary, Detail: body.Detail}
	var b strings.Builder
	if err := notificationEmailTemplate.Execute(&b, data); err != nil {
		return template.HTMLEscapeString(body.String())
	}
	return b.String()
}

func counterLabel(t models.AchievementType) string {
	if field, ok := models.LookupCounter(t); ok {
		return field.Label
	}
	return string(t)
}

func authorizeFacultyScope(facultyID string, actor *models.JWTClaims) error {
	if actor == nil {
		return appErrors.ErrUnauthorized
	}
	if actor.Role == models.RoleFaculty && actor.FacultyID != facultyID {
		return appErrors.ErrForbidden
	}
	return nil
}
