package models

import "github.com/golang-jwt/jwt/v5"

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleAdmin   UserRole = "ADMIN"
	RoleHOD     UserRole = "HOD"
	RoleFaculty UserRole = "FACULTY"
)

// CanReview reports whether the role may approve or reject submissions.
func (r UserRole) CanReview() bool {
	return r == RoleAdmin || r == RoleHOD
}

// JWTClaims represents the JWT payload for access tokens. FacultyID is set
// for faculty members and ties the token to their directory record.
type JWTClaims struct {
	UserID     string   `json:"user_id"`
	Role       UserRole `json:"role"`
	FacultyID  string   `json:"faculty_id,omitempty"`
	Department string   `json:"department,omitempty"`
	jwt.RegisteredClaims
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
