package models

import "time"

// DashboardSummary aggregates submission activity for the review dashboard.
type DashboardSummary struct {
	ByStatus    map[SubmissionStatus]int    `json:"byStatus"`
	ByCategory  map[AchievementCategory]int `json:"byCategory"`
	TopFaculty  []FacultyApprovalCount      `json:"topFaculty"`
	GeneratedAt time.Time                   `json:"generatedAt"`
}

// FacultyApprovalCount is a leaderboard row.
type FacultyApprovalCount struct {
	FacultyID  string `db:"faculty_id" json:"facultyId"`
	Name       string `db:"name" json:"name"`
	Department string `db:"department" json:"department"`
	Approved   int    `db:"approved" json:"approved"`
}

// StatusCount is a grouped count row keyed by status.
type StatusCount struct {
	Status SubmissionStatus `db:"status"`
	Count  int              `db:"count"`
}

// CategoryCount is a grouped count row keyed by category.
type CategoryCount struct {
	Category AchievementCategory `db:"category"`
	Count    int                 `db:"count"`
}

// SystemMetrics is a point-in-time view of instrumentation counters.
type SystemMetrics struct {
	RequestsTotal            uint64    `json:"requestsTotal"`
	AverageRequestDurationMs float64   `json:"averageRequestDurationMs"`
	CacheHitRatio            float64   `json:"cacheHitRatio"`
	ReviewsTotal             uint64    `json:"reviewsTotal"`
	PartialFailures          uint64    `json:"partialFailures"`
	NotificationsSent        uint64    `json:"notificationsSent"`
	NotificationsFailed      uint64    `json:"notificationsFailed"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generatedAt"`
}
