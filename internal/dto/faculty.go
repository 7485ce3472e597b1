package dto

import (
	"time"

	"github.com/noah-isme/faculty-achievement-api/internal/models"
)

// CreateFacultyRequest seeds a faculty record into the directory.
type CreateFacultyRequest struct {
	ID          string `json:"id" validate:"required,max=64"`
	Name        string `json:"name" validate:"required,max=255"`
	Department  string `json:"department" validate:"required,max=128"`
	Designation string `json:"designation" validate:"max=128"`
	Email       string `json:"email" validate:"omitempty,email"`
}

// UpdateFacultyProfileRequest edits identity fields only.
type UpdateFacultyProfileRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=255"`
	Department  *string `json:"department" validate:"omitempty,min=1,max=128"`
	Designation *string `json:"designation" validate:"omitempty,max=128"`
	Email       *string `json:"email" validate:"omitempty,email"`
}

// CounterValue is one achievement counter with its label.
type CounterValue struct {
	Type     models.AchievementType     `json:"type"`
	Label    string                     `json:"label"`
	Category models.AchievementCategory `json:"category"`
	Value    int                        `json:"value"`
}

// FacultyDetail bundles a faculty record with its counters.
type FacultyDetail struct {
	models.Faculty
	Counters []CounterValue `json:"counters"`
}

// FacultyReportQuery selects the export format and scope.
type FacultyReportQuery struct {
	Format     string
	Department string
}

// IssueTokenRequest describes the identity embedded in an operator-issued token.
type IssueTokenRequest struct {
	UserID     string        `json:"userId" validate:"required,max=64"`
	Role       string        `json:"role" validate:"required,oneof=ADMIN HOD FACULTY admin hod faculty"`
	FacultyID  string        `json:"facultyId" validate:"max=64"`
	Department string        `json:"department" validate:"max=128"`
	TTL        time.Duration `json:"-"`
}

// IssueTokenResponse carries a signed access token.
type IssueTokenResponse struct {
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
}
