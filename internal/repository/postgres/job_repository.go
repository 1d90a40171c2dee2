package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"jobportal/internal/common"
	"jobportal/internal/domain/job"
)

type JobRepository struct {
	db *sql.DB
}

func NewJobRepository(db *sql.DB) *JobRepository {
	return &JobRepository{db: db}
}

const jobColumns = `id, recruiter_id, company_name, title, description, location, job_type, salary_min, salary_max, skills, featured,
	status, expiry_date, max_applications, current_application_count, application_limit_reached, auto_closed_at, created_at, updated_at`

func (r *JobRepository) Create(ctx context.Context, j job.Job) (*job.Job, error) {
	j.ID = common.NewUUID()
	now := time.Now().UTC()
	j.CreatedAt = now
	j.UpdatedAt = now
	if j.Skills == nil {
		j.Skills = []string{}
	}
	_, err := r.db.ExecContext(ctx, `INSERT INTO jobs (`+jobColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`,
		j.ID, j.RecruiterID, j.CompanyName, j.Title, j.Description, j.Location, j.Type, nullInt(j.SalaryMin), nullInt(j.SalaryMax), pq.Array(j.Skills),
		j.Featured, j.Status, j.ExpiryDate, nullInt(j.MaxApplications), j.CurrentApplicationCount, j.ApplicationLimitReached, j.AutoClosedAt,
		j.CreatedAt, j.UpdatedAt)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to create job", err)
	}
	return &j, nil
}

// Update stores editable fields. The application counter is owned by
// ReserveApplicationSlot and is never written here.
func (r *JobRepository) Update(ctx context.Context, j job.Job) (*job.Job, error) {
	if j.Skills == nil {
		j.Skills = []string{}
	}
	// The limit check reads the row's own counter so a concurrent reservation
	// cannot leave an active job sitting at its new limit.
	row := r.db.QueryRowContext(ctx, `UPDATE jobs SET title = $1, description = $2, location = $3, job_type = $4, salary_min = $5,
		salary_max = $6, skills = $7, featured = $8, expiry_date = $9, max_applications = $10::integer, company_name = $11, updated_at = $12,
		application_limit_reached = CASE WHEN status = 'active' AND $10::integer IS NOT NULL AND current_application_count >= $10::integer
			THEN TRUE ELSE application_limit_reached END,
		auto_closed_at = CASE WHEN status = 'active' AND $10::integer IS NOT NULL AND current_application_count >= $10::integer
			THEN $12 ELSE auto_closed_at END,
		status = CASE WHEN status = 'active' AND $10::integer IS NOT NULL AND current_application_count >= $10::integer
			THEN 'closed' ELSE status END
		WHERE id = $13 AND recruiter_id = $14
		RETURNING `+jobColumns,
		j.Title, j.Description, j.Location, j.Type, nullInt(j.SalaryMin), nullInt(j.SalaryMax), pq.Array(j.Skills), j.Featured, j.ExpiryDate,
		nullInt(j.MaxApplications), j.CompanyName, time.Now().UTC(), j.ID, j.RecruiterID)
	return scanJob(row)
}

func (r *JobRepository) GetByID(ctx context.Context, id common.UUID) (*job.Job, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id)
	return scanJob(row)
}

func (r *JobRepository) List(ctx context.Context, filter job.Filter) ([]job.Job, error) {
	var (
		conditions []string
		args       []any
	)
	add := func(format string, value any) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(format, len(args)))
	}
	if filter.RecruiterID != "" {
		add("recruiter_id = $%d", filter.RecruiterID)
	}
	if filter.Status != "" {
		add("status = $%d", filter.Status)
	}
	if filter.ActiveAt != nil {
		add("status = 'active' AND expiry_date > $%d", *filter.ActiveAt)
	}
	if filter.Type != "" {
		add("job_type = $%d", filter.Type)
	}
	if filter.Featured != nil {
		add("featured = $%d", *filter.Featured)
	}
	if q := strings.TrimSpace(filter.Location); q != "" {
		add("location ILIKE $%d", "%"+escapeLike(q)+"%")
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		args = append(args, "%"+escapeLike(q)+"%", strings.ToLower(q))
		conditions = append(conditions, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d OR company_name ILIKE $%d OR EXISTS (SELECT 1 FROM unnest(skills) AS skill WHERE lower(skill) = $%d))",
			len(args)-1, len(args)-1, len(args)-1, len(args)))
	}
	query := `SELECT ` + jobColumns + ` FROM jobs`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	args = append(args, filter.Limit, filter.Offset)
	query += fmt.Sprintf(" ORDER BY featured DESC, created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list jobs", err)
	}
	defer rows.Close()
	var items []job.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *j)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list jobs", err)
	}
	return items, nil
}

func (r *JobRepository) CountActiveByRecruiter(ctx context.Context, recruiterID common.UUID, now time.Time) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM jobs WHERE recruiter_id = $1 AND status = 'active' AND expiry_date > $2`,
		recruiterID, now).Scan(&count)
	if err != nil {
		return 0, common.NewError(common.CodeInternal, "failed to count active jobs", err)
	}
	return count, nil
}

func (r *JobRepository) CountFeaturedByRecruiter(ctx context.Context, recruiterID common.UUID, now time.Time) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM jobs WHERE recruiter_id = $1 AND featured AND status = 'active' AND expiry_date > $2`,
		recruiterID, now).Scan(&count)
	if err != nil {
		return 0, common.NewError(common.CodeInternal, "failed to count featured jobs", err)
	}
	return count, nil
}

func (r *JobRepository) UpdateStatus(ctx context.Context, id common.UUID, status job.Status) (*job.Job, error) {
	row := r.db.QueryRowContext(ctx, `UPDATE jobs SET status = $1, updated_at = $2 WHERE id = $3 RETURNING `+jobColumns,
		status, time.Now().UTC(), id)
	return scanJob(row)
}

// ReserveApplicationSlot increments the counter only while the job is active,
// unexpired and below its limit; the row lock taken by UPDATE serialises
// concurrent reservations.
func (r *JobRepository) ReserveApplicationSlot(ctx context.Context, id common.UUID, now time.Time) (*job.Job, error) {
	row := r.db.QueryRowContext(ctx, `UPDATE jobs SET
			current_application_count = current_application_count + 1,
			application_limit_reached = (max_applications IS NOT NULL AND current_application_count + 1 >= max_applications),
			status = CASE WHEN max_applications IS NOT NULL AND current_application_count + 1 >= max_applications THEN 'closed' ELSE status END,
			auto_closed_at = CASE WHEN max_applications IS NOT NULL AND current_application_count + 1 >= max_applications THEN $2 ELSE auto_closed_at END,
			updated_at = $2
		WHERE id = $1 AND status = 'active' AND expiry_date > $2
			AND (max_applications IS NULL OR current_application_count < max_applications)
		RETURNING `+jobColumns, id, now.UTC())
	reserved, err := scanJob(row)
	if err == nil {
		return reserved, nil
	}
	if !common.Is(err, common.CodeNotFound) {
		return nil, err
	}
	// Nothing matched: either the job is missing or it cannot take applications.
	current, getErr := r.GetByID(ctx, id)
	if getErr != nil {
		return nil, getErr
	}
	return nil, common.NewError(common.CodeLimitExceeded, rejectionReason(current, now), job.ErrApplicationLimitReached)
}

func rejectionReason(j *job.Job, now time.Time) string {
	switch {
	case j.ApplicationLimitReached || (j.MaxApplications != nil && j.CurrentApplicationCount >= *j.MaxApplications):
		return "job has reached its application limit"
	case j.Status == job.StatusActive && j.IsExpired(now):
		return "job has expired"
	default:
		return "job is not accepting applications"
	}
}

// ReleaseApplicationSlot gives back one reservation and reopens the job when
// that reservation was the one that auto-closed it.
func (r *JobRepository) ReleaseApplicationSlot(ctx context.Context, id common.UUID) error {
	result, err := r.db.ExecContext(ctx, `UPDATE jobs SET
			current_application_count = GREATEST(current_application_count - 1, 0),
			status = CASE WHEN status = 'closed' AND auto_closed_at IS NOT NULL THEN 'active' ELSE status END,
			application_limit_reached = FALSE,
			auto_closed_at = CASE WHEN status = 'closed' AND auto_closed_at IS NOT NULL THEN NULL ELSE auto_closed_at END,
			updated_at = $2
		WHERE id = $1 AND current_application_count > 0`, id, time.Now().UTC())
	if err != nil {
		return common.NewError(common.CodeInternal, "failed to release application slot", err)
	}
	return requireRows(result, "job not found")
}

func (r *JobRepository) ExpireOld(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `UPDATE jobs SET status = 'expired', updated_at = $1 WHERE status = 'active' AND expiry_date <= $1`, now.UTC())
	if err != nil {
		return 0, common.NewError(common.CodeInternal, "failed to expire jobs", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, common.NewError(common.CodeInternal, "failed to expire jobs", err)
	}
	return affected, nil
}

func scanJob(row scanner) (*job.Job, error) {
	var j job.Job
	var salaryMin, salaryMax, maxApplications sql.NullInt64
	var autoClosedAt sql.NullTime
	if err := row.Scan(&j.ID, &j.RecruiterID, &j.CompanyName, &j.Title, &j.Description, &j.Location, &j.Type, &salaryMin, &salaryMax,
		pq.Array(&j.Skills), &j.Featured, &j.Status, &j.ExpiryDate, &maxApplications, &j.CurrentApplicationCount,
		&j.ApplicationLimitReached, &autoClosedAt, &j.CreatedAt, &j.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NewError(common.CodeNotFound, "job not found", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to load job", err)
	}
	j.SalaryMin = intPtr(salaryMin)
	j.SalaryMax = intPtr(salaryMax)
	j.MaxApplications = intPtr(maxApplications)
	if autoClosedAt.Valid {
		closed := autoClosedAt.Time
		j.AutoClosedAt = &closed
	}
	if j.Skills == nil {
		j.Skills = []string{}
	}
	return &j, nil
}

func intPtr(value sql.NullInt64) *int {
	if !value.Valid {
		return nil
	}
	v := int(value.Int64)
	return &v
}

func nullInt(value *int) sql.NullInt64 {
	if value == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*value), Valid: true}
}

func escapeLike(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(value)
}
