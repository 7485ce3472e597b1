package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/faculty-achievement-api/internal/models"
)

var (
	// ErrStatusConflict is returned when a compare-and-set status update finds the
	// submission in a different status than expected.
	ErrStatusConflict = errors.New("submission status changed concurrently")
	// ErrIncrementRecorded is returned when a rejection targets a submission whose
	// counter increment is already in the ledger.
	ErrIncrementRecorded = errors.New("counter increment already recorded for submission")
)

const submissionColumns = `id, faculty_id, category, achievement_type, title, description, pdf_url, pdf_name, status,
       requested_increase, current_count_at_submission, submitted_at, reviewed_by, reviewed_at, review_notes,
       rejection_reason, actual_increase_applied`

// SubmissionRepository persists achievement submissions.
type SubmissionRepository struct {
	db *sqlx.DB
}

// NewSubmissionRepository constructs the repository.
func NewSubmissionRepository(db *sqlx.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

// Create inserts a new submission row.
func (r *SubmissionRepository) Create(ctx context.Context, submission *models.AchievementSubmission) error {
	if submission.ID == "" {
		submission.ID = uuid.NewString()
	}
	if submission.Status == "" {
		submission.Status = models.SubmissionStatusPending
	}
	if submission.SubmittedAt.IsZero() {
		submission.SubmittedAt = time.Now().UTC()
	}
	const query = `INSERT INTO achievement_submissions
	(id, faculty_id, category, achievement_type, title, description, pdf_url, pdf_name, status, requested_increase,
	 current_count_at_submission, submitted_at, reviewed_by, reviewed_at, review_notes, rejection_reason, actual_increase_applied)
	VALUES (:id, :faculty_id, :category, :achievement_type, :title, :description, :pdf_url, :pdf_name, :status, :requested_increase,
	 :current_count_at_submission, :submitted_at, :reviewed_by, :reviewed_at, :review_notes, :rejection_reason, :actual_increase_applied)`
	if _, err := r.db.NamedExecContext(ctx, query, submission); err != nil {
		return fmt.Errorf("create submission: %w", err)
	}
	return nil
}

// GetByID fetches a submission by identifier. Identifiers that are not UUIDs
// cannot exist and report sql.ErrNoRows.
func (r *SubmissionRepository) GetByID(ctx context.Context, id string) (*models.AchievementSubmission, error) {
	if !isSubmissionID(id) {
		return nil, sql.ErrNoRows
	}
	query := `SELECT ` + submissionColumns + ` FROM achievement_submissions WHERE id = $1`
	var submission models.AchievementSubmission
	if err := r.db.GetContext(ctx, &submission, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("get submission: %w", err)
	}
	return &submission, nil
}

// List returns submissions matching the filter, newest first.
func (r *SubmissionRepository) List(ctx context.Context, filter models.SubmissionFilter) ([]models.AchievementSubmission, error) {
	builder := strings.Builder{}
	args := make([]interface{}, 0, 4)
	builder.WriteString(`SELECT ` + submissionColumns + ` FROM achievement_submissions`)

	conditions := make([]string, 0, 3)
	if len(filter.Status) > 0 {
		placeholders := make([]string, len(filter.Status))
		for i, status := range filter.Status {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		conditions = append(conditions, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.FacultyID != "" {
		args = append(args, filter.FacultyID)
		conditions = append(conditions, fmt.Sprintf("faculty_id = $%d", len(args)))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		conditions = append(conditions, fmt.Sprintf("category = $%d", len(args)))
	}
	if len(conditions) > 0 {
		builder.WriteString(" WHERE ")
		builder.WriteString(strings.Join(conditions, " AND "))
	}
	builder.WriteString(" ORDER BY submitted_at DESC, id DESC")

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	builder.WriteString(fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset))

	var submissions []models.AchievementSubmission
	if err := r.db.SelectContext(ctx, &submissions, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	return submissions, nil
}

// UpdateStatus moves a submission from expected to update.Status in a single
// conditional statement. It returns sql.ErrNoRows when the submission does not
// exist and ErrStatusConflict when it is no longer in the expected status.
// A rejection never lands on a submission with a ledger entry; that case
// reports ErrIncrementRecorded.
func (r *SubmissionRepository) UpdateStatus(ctx context.Context, id string, expected models.SubmissionStatus, update models.SubmissionUpdate) (*models.AchievementSubmission, error) {
	if !isSubmissionID(id) {
		return nil, sql.ErrNoRows
	}
	guard := ""
	if update.Status == models.SubmissionStatusRejected {
		guard = " AND NOT EXISTS (SELECT 1 FROM faculty_counter_ledger WHERE submission_id = $1)"
	}
	query := `UPDATE achievement_submissions SET
	status = $3, reviewed_by = $4, reviewed_at = $5, review_notes = $6, rejection_reason = $7, actual_increase_applied = $8
	WHERE id = $1 AND status = $2` + guard + `
	RETURNING ` + submissionColumns
	var submission models.AchievementSubmission
	err := r.db.QueryRowxContext(ctx, query,
		id,
		expected,
		update.Status,
		update.ReviewedBy,
		update.ReviewedAt,
		update.ReviewNotes,
		update.RejectionReason,
		update.ActualIncreaseApplied,
	).StructScan(&submission)
	if err == nil {
		return &submission, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("update submission status: %w", err)
	}

	var current models.SubmissionStatus
	if err := r.db.GetContext(ctx, &current, `SELECT status FROM achievement_submissions WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("check submission status: %w", err)
	}
	if current == expected && guard != "" {
		return nil, ErrIncrementRecorded
	}
	return nil, ErrStatusConflict
}

func isSubmissionID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// CountByStatus groups submissions by status.
func (r *SubmissionRepository) CountByStatus(ctx context.Context) ([]models.StatusCount, error) {
	const query = `SELECT status, COUNT(*) AS count FROM achievement_submissions GROUP BY status`
	var rows []models.StatusCount
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("count submissions by status: %w", err)
	}
	return rows, nil
}

// CountByCategory groups submissions by category.
func (r *SubmissionRepository) CountByCategory(ctx context.Context) ([]models.CategoryCount, error) {
	const query = `SELECT category, COUNT(*) AS count FROM achievement_submissions GROUP BY category`
	var rows []models.CategoryCount
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("count submissions by category: %w", err)
	}
	return rows, nil
}

// TopFacultyByApprovals ranks faculty by approved submissions.
func (r *SubmissionRepository) TopFacultyByApprovals(ctx context.Context, limit int) ([]models.FacultyApprovalCount, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	const query = `SELECT s.faculty_id, f.name, f.department, COUNT(*) AS approved
	FROM achievement_submissions s
	JOIN faculty f ON f.id = s.faculty_id
	WHERE s.status = $1
	GROUP BY s.faculty_id, f.name, f.department
	ORDER BY approved DESC, s.faculty_id ASC
	LIMIT $2`
	var rows []models.FacultyApprovalCount
	if err := r.db.SelectContext(ctx, &rows, query, models.SubmissionStatusApproved, limit); err != nil {
		return nil, fmt.Errorf("top faculty by approvals: %w", err)
	}
	return rows, nil
}
