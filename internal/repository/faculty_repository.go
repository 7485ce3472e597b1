package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/faculty-achievement-api/internal/models"
)

var (
	// ErrUnknownCounter is returned when the counter column no longer exists.
	ErrUnknownCounter = errors.New("faculty counter column does not exist")
	// ErrIncrementAlreadyApplied is returned when the ledger already holds an
	// increment for the submission.
	ErrIncrementAlreadyApplied = errors.New("counter increment already applied for submission")
	// ErrDuplicateFaculty is returned when the faculty id is already registered.
	ErrDuplicateFaculty = errors.New("faculty already exists")
	// ErrIncrementOutcomeUnknown wraps a failed commit: the increment may or may
	// not have landed, and only the ledger can tell.
	ErrIncrementOutcomeUnknown = errors.New("counter increment outcome unknown")
)

const (
	pqUndefinedColumn = "42703"
	pqUniqueViolation = "23505"
)

const facultyColumns = `id, name, department, designation, email,
       journalpublications, conferencepublications, bookchapters, books, patents, copyrights,
       researchprojects, consultancyprojects, researchgrants, studentprojects, hackathonsmentored,
       fdpsattended, certifications, industrycollaborations, awards, created_at, updated_at`

// FacultyRepository is the faculty directory. IncrementCounter is the only
// statement in the codebase that writes achievement counter columns.
type FacultyRepository struct {
	db *sqlx.DB
}

// NewFacultyRepository constructs the repository.
func NewFacultyRepository(db *sqlx.DB) *FacultyRepository {
	return &FacultyRepository{db: db}
}

// FindByID returns a faculty record by identifier.
func (r *FacultyRepository) FindByID(ctx context.Context, id string) (*models.Faculty, error) {
	query := `SELECT ` + facultyColumns + ` FROM faculty WHERE id = $1`
	var faculty models.Faculty
	if err := r.db.GetContext(ctx, &faculty, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find faculty by id: %w", err)
	}
	return &faculty, nil
}

// List returns faculty based on filters with total count.
func (r *FacultyRepository) List(ctx context.Context, filter models.FacultyFilter) ([]models.Faculty, int, error) {
	baseQuery := `FROM faculty WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.Department != "" {
		conditions = append(conditions, fmt.Sprintf("department = $%d", len(args)+1))
		args = append(args, filter.Department)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(name) LIKE $%d OR LOWER(id) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}
	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 500 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY department ASC, name ASC LIMIT %d OFFSET %d", facultyColumns, baseQuery, pageSize, offset)
	var faculty []models.Faculty
	if err := r.db.SelectContext(ctx, &faculty, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list faculty: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+baseQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count faculty: %w", err)
	}
	return faculty, total, nil
}

// Create inserts a faculty record with zeroed counters.
func (r *FacultyRepository) Create(ctx context.Context, faculty *models.Faculty) error {
	now := time.Now().UTC()
	if faculty.CreatedAt.IsZero() {
		faculty.CreatedAt = now
	}
	faculty.UpdatedAt = now
	const query = `INSERT INTO faculty (id, name, department, designation, email, created_at, updated_at)
	VALUES (:id, :name, :department, :designation, :email, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, faculty); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pqUniqueViolation {
			return ErrDuplicateFaculty
		}
		return fmt.Errorf("create faculty: %w", err)
	}
	return nil
}

// UpdateProfile writes identity fields. Counter columns are not reachable here.
func (r *FacultyRepository) UpdateProfile(ctx context.Context, id string, update models.FacultyProfileUpdate) (*models.Faculty, error) {
	setParts := make([]string, 0, 5)
	args := []interface{}{id}
	add := func(column string, value *string) {
		if value == nil {
			return
		}
		args = append(args, *value)
		setParts = append(setParts, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	add("name", update.Name)
	add("department", update.Department)
	add("designation", update.Designation)
	add("email", update.Email)
	if len(setParts) == 0 {
		return r.FindByID(ctx, id)
	}
	args = append(args, time.Now().UTC())
	setParts = append(setParts, fmt.Sprintf("updated_at = $%d", len(args)))

	query := fmt.Sprintf("UPDATE faculty SET %s WHERE id = $1 RETURNING %s", strings.Join(setParts, ", "), facultyColumns)
	var faculty models.Faculty
	if err := r.db.QueryRowxContext(ctx, query, args...).StructScan(&faculty); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("update faculty profile: %w", err)
	}
	return &faculty, nil
}

// IncrementCounter atomically adds amount to the counter column and records
// the increment in the ledger keyed by submission. A second call for the same
// submission rolls back and returns ErrIncrementAlreadyApplied.
func (r *FacultyRepository) IncrementCounter(ctx context.Context, facultyID string, field models.CounterField, amount int, submissionID string) (*models.CounterLedgerEntry, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin increment tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	column := pq.QuoteIdentifier(field.Column)
	now := time.Now().UTC()
	query := fmt.Sprintf("UPDATE faculty SET %s = %s + $2, updated_at = $3 WHERE id = $1 RETURNING %s", column, column, column)
	var newValue int
	if err = tx.QueryRowxContext(ctx, query, facultyID, amount, now).Scan(&newValue); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pqUndefinedColumn {
			err = ErrUnknownCounter
			return nil, err
		}
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		err = fmt.Errorf("increment faculty counter: %w", err)
		return nil, err
	}

	entry := &models.CounterLedgerEntry{
		SubmissionID:    submissionID,
		FacultyID:       facultyID,
		AchievementType: field.Type,
		Amount:          amount,
		PreviousValue:   newValue - amount,
		NewValue:        newValue,
		AppliedAt:       now,
	}
	const ledgerQuery = `INSERT INTO faculty_counter_ledger
	(submission_id, faculty_id, achievement_type, amount, previous_value, new_value, applied_at)
	VALUES (:submission_id, :faculty_id, :achievement_type, :amount, :previous_value, :new_value, :applied_at)
	ON CONFLICT (submission_id) DO NOTHING`
	result, execErr := tx.NamedExecContext(ctx, ledgerQuery, entry)
	if execErr != nil {
		err = fmt.Errorf("record counter ledger: %w", execErr)
		return nil, err
	}
	rows, rowsErr := result.RowsAffected()
	if rowsErr != nil {
		err = fmt.Errorf("check counter ledger rows: %w", rowsErr)
		return nil, err
	}
	if rows == 0 {
		err = ErrIncrementAlreadyApplied
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		err = fmt.Errorf("%w: commit increment tx: %v", ErrIncrementOutcomeUnknown, err)
		return nil, err
	}
	return entry, nil
}

// FindLedgerEntry returns the recorded increment for a submission.
func (r *FacultyRepository) FindLedgerEntry(ctx context.Context, submissionID string) (*models.CounterLedgerEntry, error) {
	const query = `SELECT submission_id, faculty_id, achievement_type, amount, previous_value, new_value, applied_at
	FROM faculty_counter_ledger WHERE submission_id = $1`
	var entry models.CounterLedgerEntry
	if err := r.db.GetContext(ctx, &entry, query, submissionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find counter ledger entry: %w", err)
	}
	return &entry, nil
}
