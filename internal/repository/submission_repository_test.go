package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/faculty-achievement-api/internal/models"
)

var submissionColumnNames = []string{"id", "faculty_id", "category", "achievement_type", "title", "description", "pdf_url", "pdf_name", "status",
	"requested_increase", "current_count_at_submission", "submitted_at", "reviewed_by", "reviewed_at", "review_notes",
	"rejection_reason", "actual_increase_applied"}

const (
	sampleSubmissionID  = "6f1c2d9e-4b7a-4c1e-9a53-2f8d7c0b1e42"
	unknownSubmissionID = "0b9e8d7c-6a5f-4e3d-8c2b-1a0f9e8d7c6b"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestSubmissionRepositoryCreateAndGet(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSubmissionRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO achievement_submissions")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	submission := &models.AchievementSubmission{
		FacultyID:                "CSE002",
		Category:                 models.CategoryInnovationPatents,
		AchievementType:          models.AchievementPatents,
		Title:                    "Smart irrigation patent",
		PDFURL:                   "blob://achievements/CSE002/a.pdf",
		PDFName:                  "patent.pdf",
		RequestedIncrease:        1,
		CurrentCountAtSubmission: 3,
	}
	require.NoError(t, repo.Create(context.Background(), submission))
	require.NotEmpty(t, submission.ID)
	require.Equal(t, models.SubmissionStatusPending, submission.Status)
	require.False(t, submission.SubmittedAt.IsZero())

	rows := sqlmock.NewRows(submissionColumnNames).
		AddRow(submission.ID, "CSE002", "innovation_patents", "patents", "Smart irrigation patent", nil, submission.PDFURL, "patent.pdf", "pending",
			1, 3, submission.SubmittedAt, nil, nil, nil, nil, nil)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, faculty_id, category")).
		WithArgs(submission.ID).
		WillReturnRows(rows)

	found, err := repo.GetByID(context.Background(), submission.ID)
	require.NoError(t, err)
	require.Equal(t, submission.ID, found.ID)
	require.Equal(t, models.AchievementPatents, found.AchievementType)
	require.Equal(t, 3, found.CurrentCountAtSubmission)
	require.Nil(t, found.ReviewedBy)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmissionRepositoryGetMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSubmissionRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, faculty_id, category")).
		WithArgs(unknownSubmissionID).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), unknownSubmissionID)
	require.ErrorIs(t, err, sql.ErrNoRows)
}

func TestSubmissionRepositoryMalformedIDIsNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSubmissionRepository(db)

	_, err := repo.GetByID(context.Background(), "foo")
	require.ErrorIs(t, err, sql.ErrNoRows)

	_, err = repo.UpdateStatus(context.Background(), "foo", models.SubmissionStatusPending, models.SubmissionUpdate{Status: models.SubmissionStatusApproving})
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmissionRepositoryListFilters(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSubmissionRepository(db)
	rows := sqlmock.NewRows(submissionColumnNames).
		AddRow(sampleSubmissionID, "CSE002", "publication", "journalpublications", "Paper", nil, "blob://achievements/x.pdf", "x.pdf", "pending",
			1, 0, time.Now(), nil, nil, nil, nil, nil)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, faculty_id, category") + ".*" + regexp.QuoteMeta("WHERE status IN ($1) AND faculty_id = $2") + ".*" + regexp.QuoteMeta("ORDER BY submitted_at DESC")).
		WithArgs("pending", "CSE002").
		WillReturnRows(rows)

	list, err := repo.List(context.Background(), models.SubmissionFilter{
		Status:    []models.SubmissionStatus{models.SubmissionStatusPending},
		FacultyID: "CSE002",
	})
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, sampleSubmissionID, list[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmissionRepositoryUpdateStatus(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSubmissionRepository(db)
	now := time.Now().UTC()
	reviewer := "HOD1"
	rows := sqlmock.NewRows(submissionColumnNames).
		AddRow(sampleSubmissionID, "CSE002", "innovation_patents", "patents", "Patent", nil, "blob://achievements/x.pdf", "x.pdf", "approving",
			1, 3, now, reviewer, now, nil, nil, nil)
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE achievement_submissions SET") + ".*" + regexp.QuoteMeta("WHERE id = $1 AND status = $2")).
		WithArgs(sampleSubmissionID, "pending", "approving", reviewer, now, nil, nil, nil).
		WillReturnRows(rows)

	updated, err := repo.UpdateStatus(context.Background(), sampleSubmissionID, models.SubmissionStatusPending, models.SubmissionUpdate{
		Status:     models.SubmissionStatusApproving,
		ReviewedBy: &reviewer,
		ReviewedAt: &now,
	})
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusApproving, updated.Status)
	require.Equal(t, reviewer, *updated.ReviewedBy)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmissionRepositoryUpdateStatusConflict(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSubmissionRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE achievement_submissions SET")).
		WillReturnRows(sqlmock.NewRows(submissionColumnNames))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT status FROM achievement_submissions")).
		WithArgs(sampleSubmissionID).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("approved"))

	_, err := repo.UpdateStatus(context.Background(), sampleSubmissionID, models.SubmissionStatusPending, models.SubmissionUpdate{Status: models.SubmissionStatusRejected})
	require.ErrorIs(t, err, ErrStatusConflict)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmissionRepositoryUpdateStatusMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSubmissionRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE achievement_submissions SET")).
		WillReturnRows(sqlmock.NewRows(submissionColumnNames))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT status FROM achievement_submissions")).
		WithArgs(unknownSubmissionID).
		WillReturnRows(sqlmock.NewRows([]string{"status"}))

	_, err := repo.UpdateStatus(context.Background(), unknownSubmissionID, models.SubmissionStatusPending, models.SubmissionUpdate{Status: models.SubmissionStatusRejected})
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmissionRepositoryRejectBlockedByLedger(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSubmissionRepository(db)
	reason := "duplicate"
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE achievement_submissions SET") + ".*" +
		regexp.QuoteMeta("WHERE id = $1 AND status = $2 AND NOT EXISTS (SELECT 1 FROM faculty_counter_ledger WHERE submission_id = $1)")).
		WillReturnRows(sqlmock.NewRows(submissionColumnNames))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT status FROM achievement_submissions")).
		WithArgs(sampleSubmissionID).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("pending"))

	_, err := repo.UpdateStatus(context.Background(), sampleSubmissionID, models.SubmissionStatusPending, models.SubmissionUpdate{
		Status:          models.SubmissionStatusRejected,
		RejectionReason: &reason,
	})
	require.ErrorIs(t, err, ErrIncrementRecorded)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmissionRepositoryCounts(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSubmissionRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT status, COUNT(*)")).
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).AddRow("pending", 4).AddRow("approved", 2))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT s.faculty_id, f.name")).
		WithArgs("approved", 10).
		WillReturnRows(sqlmock.NewRows([]string{"faculty_id", "name", "department", "approved"}).AddRow("CSE002", "A. Rao", "CSE", 2))

	byStatus, err := repo.CountByStatus(context.Background())
	require.NoError(t, err)
	require.Len(t, byStatus, 2)

	top, err := repo.TopFacultyByApprovals(context.Background(), 0)
	require.NoError(t, err)
	require.Equal(t, "CSE002", top[0].FacultyID)
	require.NoError(t, mock.ExpectationsWereMet())
}
