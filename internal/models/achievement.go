package models

import "time"

// AchievementCategory groups achievement types for reporting.
type AchievementCategory string

const (
	CategoryResearchDev       AchievementCategory = "research_dev"
	CategoryPublication       AchievementCategory = "publication"
	CategoryInnovationPatents AchievementCategory = "innovation_patents"
	CategoryStudentEngagement AchievementCategory = "student_engagement"
	CategoryProfessionalDev   AchievementCategory = "professional_dev"
	CategoryIndustryOthers    AchievementCategory = "industry_others"
)

// AchievementCategories lists the accepted categories in display order.
var AchievementCategories = []AchievementCategory{
	CategoryResearchDev,
	CategoryPublication,
	CategoryInnovationPatents,
	CategoryStudentEngagement,
	CategoryProfessionalDev,
	CategoryIndustryOthers,
}

// Valid reports whether c is one of the accepted categories.
func (c AchievementCategory) Valid() bool {
	for _, known := range AchievementCategories {
		if c == known {
			return true
		}
	}
	return false
}

// SubmissionStatus captures the review lifecycle of a submission.
type SubmissionStatus string

const (
	SubmissionStatusPending  SubmissionStatus = "pending"
	SubmissionStatusApproved SubmissionStatus = "approved"
	SubmissionStatusRejected SubmissionStatus = "rejected"
	// SubmissionStatusApproving marks a claimed approval whose counter write
	// has not been confirmed yet. Only Reconcile moves a submission out of it
	// after a partial failure.
	SubmissionStatusApproving SubmissionStatus = "approving"
)

// Valid reports whether s is a known status.
func (s SubmissionStatus) Valid() bool {
	switch s {
	case SubmissionStatusPending, SubmissionStatusApproved, SubmissionStatusRejected, SubmissionStatusApproving:
		return true
	}
	return false
}

// Terminal reports whether no further review is possible.
func (s SubmissionStatus) Terminal() bool {
	return s == SubmissionStatusApproved || s == SubmissionStatusRejected
}

// AchievementSubmission is a faculty achievement awaiting or past review.
type AchievementSubmission struct {
	ID                       string              `db:"id" json:"id"`
	FacultyID                string              `db:"faculty_id" json:"facultyId"`
	Category                 AchievementCategory `db:"category" json:"category"`
	AchievementType          AchievementType     `db:"achievement_type" json:"achievementType"`
	Title                    string              `db:"title" json:"title"`
	Description              *string             `db:"description" json:"description,omitempty"`
	PDFURL                   string              `db:"pdf_url" json:"pdfUrl"`
	PDFName                  string              `db:"pdf_name" json:"pdfName"`
	Status                   SubmissionStatus    `db:"status" json:"status"`
	RequestedIncrease        int                 `db:"requested_increase" json:"requestedIncrease"`
	CurrentCountAtSubmission int                 `db:"current_count_at_submission" json:"currentCountAtSubmission"`
	SubmittedAt              time.Time           `db:"submitted_at" json:"submittedAt"`
	ReviewedBy               *string             `db:"reviewed_by" json:"reviewedBy,omitempty"`
	ReviewedAt               *time.Time          `db:"reviewed_at" json:"reviewedAt,omitempty"`
	ReviewNotes              *string             `db:"review_notes" json:"reviewNotes,omitempty"`
	RejectionReason          *string             `db:"rejection_reason" json:"rejectionReason,omitempty"`
	ActualIncreaseApplied    *int                `db:"actual_increase_applied" json:"actualIncreaseApplied,omitempty"`
}

// SubmissionFilter constrains listing queries.
type SubmissionFilter struct {
	Status    []SubmissionStatus
	FacultyID string
	Category  AchievementCategory
	Limit     int
	Offset    int
}

// SubmissionUpdate is the set of columns written by a status transition.
type SubmissionUpdate struct {
	Status                SubmissionStatus
	ReviewedBy            *string
	ReviewedAt            *time.Time
	ReviewNotes           *string
	RejectionReason       *string
	ActualIncreaseApplied *int
}

// CounterLedgerEntry records one applied counter increment per submission.
type CounterLedgerEntry struct {
	SubmissionID    string          `db:"submission_id" json:"submissionId"`
	FacultyID       string          `db:"faculty_id" json:"facultyId"`
	AchievementType AchievementType `db:"achievement_type" json:"achievementType"`
	Amount          int             `db:"amount" json:"amount"`
	PreviousValue   int             `db:"previous_value" json:"previousValue"`
	NewValue        int             `db:"new_value" json:"newValue"`
	AppliedAt       time.Time       `db:"applied_at" json:"appliedAt"`
}
