package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/faculty-achievement-api/internal/models"
)

// NotificationRepository stores faculty notifications.
type NotificationRepository struct {
	db *sqlx.DB
}

// NewNotificationRepository constructs the repository.
func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create inserts a notification.
func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO notifications (id, faculty_id, title, message, type, related_submission_id, is_read, created_at)
	VALUES (:id, :faculty_id, :title, :message, :type, :related_submission_id, :is_read, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, n); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

// ListByFaculty returns the newest notifications for a faculty member.
func (r *NotificationRepository) ListByFaculty(ctx context.Context, facultyID string, unreadOnly bool, limit int) ([]models.Notification, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	query := `SELECT id, faculty_id, title, message, type, related_submission_id, is_read, created_at
	FROM notifications WHERE faculty_id = $1`
	if unreadOnly {
		query += ` AND is_read = FALSE`
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT %d", limit)
	var items []models.Notification
	if err := r.db.SelectContext(ctx, &items, query, facultyID); err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return items, nil
}

// MarkRead flags a notification owned by facultyID as read.
func (r *NotificationRepository) MarkRead(ctx context.Context, id, facultyID string) error {
	const query = `UPDATE notifications SET is_read = TRUE WHERE id = $1 AND faculty_id = $2`
	result, err := r.db.ExecContext(ctx, query, id, facultyID)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check notification rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
