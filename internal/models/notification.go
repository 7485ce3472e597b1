package models

import "time"

// NotificationType classifies a notification for display.
type NotificationType string

const (
	NotificationInfo    NotificationType = "info"
	NotificationSuccess NotificationType = "success"
	NotificationError   NotificationType = "error"
)

// Notification is a user-visible message addressed to a faculty member.
type Notification struct {
	ID                  string           `db:"id" json:"id"`
	FacultyID           string           `db:"faculty_id" json:"facultyId"`
	Title               string           `db:"title" json:"title"`
	Message             string           `db:"message" json:"message"`
	Type                NotificationType `db:"type" json:"type"`
	RelatedSubmissionID *string          `db:"related_submission_id" json:"relatedSubmissionId,omitempty"`
	IsRead              bool             `db:"is_read" json:"isRead"`
	CreatedAt           time.Time        `db:"created_at" json:"createdAt"`
}
