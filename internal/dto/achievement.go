package dto

import "github.com/noah-isme/faculty-achievement-api/internal/models"

// ReviewAction is the reviewer decision on a submission.
type ReviewAction string

const (
	ReviewActionApprove ReviewAction = "approve"
	ReviewActionReject  ReviewAction = "reject"
)

// SubmitAchievementRequest carries the form fields of an achievement submission.
type SubmitAchievementRequest struct {
	FacultyID         string `form:"facultyId" json:"facultyId" validate:"required,max=64"`
	Category          string `form:"category" json:"category" validate:"required"`
	AchievementType   string `form:"achievementType" json:"achievementType" validate:"required"`
	Title             string `form:"title" json:"title" validate:"required,max=255"`
	Description       string `form:"description" json:"description" validate:"max=4000"`
	RequestedIncrease int    `form:"requestedIncrease" json:"requestedIncrease" validate:"gte=0,lte=100"`
}

// ReviewAchievementRequest captures the reviewer decision.
type ReviewAchievementRequest struct {
	Action ReviewAction `json:"action"`
	Reason string       `json:"reason"`
	Notes  string       `json:"notes"`
}

// SubmissionQuery mirrors supported listing filters.
type SubmissionQuery struct {
	Status    []models.SubmissionStatus
	FacultyID string
	Category  models.AchievementCategory
	Limit     int
	Offset    int
}

// SubmissionDetail wraps a submission with a signed PDF link.
type SubmissionDetail struct {
	models.AchievementSubmission
	DownloadURL string `json:"downloadUrl,omitempty"`
}
