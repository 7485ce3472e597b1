package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/faculty-achievement-api/internal/dto"
	"github.com/noah-isme/faculty-achievement-api/internal/models"
	appErrors "github.com/noah-isme/faculty-achievement-api/pkg/errors"
)

func newExportServiceForTest(t *testing.T) (*ExportService, *submissionStoreStub) {
	t.Helper()
	faculty := newFacultyStoreStub(&models.Faculty{ID: "CSE002", Name: "A. Rao", Department: "CSE", Patents: 3, Awards: 2})
	submissions := newSubmissionStoreStub()
	svc := NewExportService(faculty, submissions, nil, nil, nil)
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC) }
	return svc, submissions
}

func TestExportServiceFacultyReportCSV(t *testing.T) {
	svc, _ := newExportServiceForTest(t)

	result, err := svc.FacultyReport(context.Background(), dto.FacultyReportQuery{Format: "CSV", Department: "CSE"})
	require.NoError(t, err)
	assert.Equal(t, "faculty_cse_20260301_093000.csv", result.Filename)
	assert.Contains(t, result.ContentType, "text/csv")

	records, err := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(result.Content, []byte("\ufeff")))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	header := records[0]
	assert.Equal(t, "Faculty ID", header[0])
	assert.Equal(t, "Total", header[len(header)-1])
	assert.Len(t, header, len(models.CounterFields())+4)
	assert.Equal(t, "CSE002", records[1][0])
	assert.Equal(t, "5", records[1][len(header)-1])
}

func TestExportServiceFacultyReportPDF(t *testing.T) {
	svc, _ := newExportServiceForTest(t)

	result, err := svc.FacultyReport(context.Background(), dto.FacultyReportQuery{Format: "pdf"})
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.True(t, bytes.HasPrefix(result.Content, []byte("%PDF")))
	assert.Equal(t, "faculty_all_20260301_093000.pdf", result.Filename)
}

func TestExportServiceRejectsUnknownFormat(t *testing.T) {
	svc, _ := newExportServiceForTest(t)

	_, err := svc.FacultyReport(context.Background(), dto.FacultyReportQuery{Format: "xlsx"})
	require.True(t, appErrors.Is(err, appErrors.ErrValidation))

	_, err = svc.SubmissionReport(context.Background(), models.SubmissionStatus("archived"), "csv")
	require.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestExportServiceSubmissionReport(t *testing.T) {
	svc, submissions := newExportServiceForTest(t)
	base := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
	require.NoError(t, submissions.Create(context.Background(), &models.AchievementSubmission{FacultyID: "CSE002", Category: models.CategoryInnovationPatents, AchievementType: models.AchievementPatents, Title: "Sensor", Status: models.SubmissionStatusPending, RequestedIncrease: 1, SubmittedAt: base}))
	require.NoError(t, submissions.Create(context.Background(), &models.AchievementSubmission{FacultyID: "CSE002", Category: models.CategoryIndustryOthers, AchievementType: models.AchievementAwards, Title: "Best paper", Status: models.SubmissionStatusPending, RequestedIncrease: 1, SubmittedAt: base.Add(time.Hour)}))

	result, err := svc.SubmissionReport(context.Background(), models.SubmissionStatusPending, "csv")
	require.NoError(t, err)
	records, err := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(result.Content, []byte("\ufeff")))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "Best paper", records[1][4])
	assert.Equal(t, "Patents", records[2][3])
	assert.Equal(t, []models.SubmissionStatus{models.SubmissionStatusPending}, submissions.filter.Status)
}
