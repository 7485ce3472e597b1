package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/faculty-achievement-api/internal/dto"
	"github.com/noah-isme/faculty-achievement-api/internal/models"
	appErrors "github.com/noah-isme/faculty-achievement-api/pkg/errors"
	"github.com/noah-isme/faculty-achievement-api/pkg/export"
)

const (
	ReportFormatCSV = "csv"
	ReportFormatPDF = "pdf"

	exportPageSize = 500
)

type facultyLister interface {
	List(ctx context.Context, filter models.FacultyFilter) ([]models.Faculty, int, error)
}

type submissionLister interface {
	List(ctx context.Context, filter models.SubmissionFilter) ([]models.AchievementSubmission, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportResult is a rendered report ready for download.
type ExportResult struct {
	Filename    string
	ContentType string
	Content     []byte
}

// ExportService renders faculty counters and submission queues as CSV or PDF.
type ExportService struct {
	faculty     facultyLister
	submissions submissionLister
	csv         csvRenderer
	pdf         pdfRenderer
	logger      *zap.Logger
	now         func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(faculty facultyLister, submissions submissionLister, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		faculty:     faculty,
		submissions: submissions,
		csv:         csv,
		pdf:         pdf,
		logger:      logger,
		now:         time.Now,
	}
}

// FacultyReport lists every faculty member of a department (or all) with one
// column per registered counter.
func (s *ExportService) FacultyReport(ctx context.Context, query dto.FacultyReportQuery) (*ExportResult, error) {
	format, err := normalizeFormat(query.Format)
	if err != nil {
		return nil, err
	}
	fields := models.CounterFields()
	headers := []string{"Faculty ID", "Name", "Department"}
	for _, field := range fields {
		headers = append(headers, field.Label)
	}
	headers = append(headers, "Total")
	dataset := export.Dataset{Headers: headers}

	filter := models.FacultyFilter{Department: strings.TrimSpace(query.Department), Page: 1, PageSize: exportPageSize}
	for {
		items, total, err := s.faculty.List(ctx, filter)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load faculty")
		}
		for i := range items {
			row := []string{items[i].ID, items[i].Name, items[i].Department}
			sum := 0
			for _, field := range fields {
				value := field.Value(&items[i])
				sum += value
				row = append(row, strconv.Itoa(value))
			}
			row = append(row, strconv.Itoa(sum))
			dataset.Append(row...)
		}
		if len(items) == 0 || filter.Page*filter.PageSize >= total {
			break
		}
		filter.Page++
	}

	title := "Faculty Achievement Report"
	scope := "all"
	if filter.Department != "" {
		title += " - " + filter.Department
		scope = filter.Department
	}
	return s.render(dataset, format, title, "faculty_"+sanitizeFilename(scope))
}

// SubmissionReport lists submissions in the given status, newest first.
func (s *ExportService) SubmissionReport(ctx context.Context, status models.SubmissionStatus, format string) (*ExportResult, error) {
	format, err := normalizeFormat(format)
	if err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown status %q", status))
	}
	dataset := export.Dataset{Headers: []string{"Submission ID", "Faculty ID", "Category", "Type", "Title", "Requested", "Submitted At", "Reviewed By"}}

	filter := models.SubmissionFilter{Status: []models.SubmissionStatus{status}, Limit: exportPageSize}
	for {
		items, err := s.submissions.List(ctx, filter)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load submissions")
		}
		for _, item := range items {
			dataset.Append(
				item.ID,
				item.FacultyID,
				string(item.Category),
				counterLabel(item.AchievementType),
				item.Title,
				strconv.Itoa(item.RequestedIncrease),
				item.SubmittedAt.UTC().Format(time.RFC3339),
				deref(item.ReviewedBy),
			)
		}
		if len(items) < filter.Limit {
			break
		}
		filter.Offset += filter.Limit
	}

	title := fmt.Sprintf("Achievement Submissions (%s)", status)
	return s.render(dataset, format, title, "submissions_"+string(status))
}

func (s *ExportService) render(dataset export.Dataset, format, title, name string) (*ExportResult, error) {
	var (
		payload     []byte
		contentType string
		err         error
	)
	switch format {
	case ReportFormatCSV:
		payload, err = s.csv.Render(dataset)
		contentType = "text/csv; charset=utf-8"
	case ReportFormatPDF:
		payload, err = s.pdf.Render(dataset, title)
		contentType = pdfMimeType
	}
	if err != nil {
		s.logger.Error("failed to render report", zap.String("report", name), zap.String("format", format), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render report")
	}
	filename := fmt.Sprintf("%s_%s.%s", name, s.now().UTC().Format("20060102_150405"), format)
	return &ExportResult{Filename: filename, ContentType: contentType, Content: payload}, nil
}

func normalizeFormat(raw string) (string, error) {
	format := strings.ToLower(strings.TrimSpace(raw))
	if format == "" {
		format = ReportFormatCSV
	}
	if format != ReportFormatCSV && format != ReportFormatPDF {
		return "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported format %q", raw))
	}
	return format, nil
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := strings.ToLower(replacer.Replace(raw))
	if len(result) > 100 {
		return result[:100]
	}
	return result
}

func deref(ptr *string) string {
	if ptr == nil {
		return ""
	}
	return *ptr
}
