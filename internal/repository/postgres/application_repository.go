package postgres

import (
	"context"
	"database/sql"
	"time"

	"jobportal/internal/common"
	"jobportal/internal/domain/application"
)

type ApplicationRepository struct {
	db *sql.DB
}

func NewApplicationRepository(db *sql.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

const applicationColumns = `id, job_id, applicant_id, applicant_name, applicant_email, resume_url, cover_letter, status, recruiter_note, created_at, updated_at`

func (r *ApplicationRepository) Create(ctx context.Context, a application.Application) (*application.Application, error) {
	a.ID = common.NewUUID()
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now
	_, err := r.db.ExecContext(ctx, `INSERT INTO applications (`+applicationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		a.ID, a.JobID, a.ApplicantID, a.ApplicantName, a.ApplicantEmail, a.ResumeURL, a.CoverLetter, a.Status, a.RecruiterNote,
		a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return nil, writeError(err, "already applied to this job", "failed to create application")
	}
	return &a, nil
}

func (r *ApplicationRepository) GetByID(ctx context.Context, id common.UUID) (*application.Application, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+applicationColumns+` FROM applications WHERE id = $1`, id)
	return scanApplication(row)
}

func (r *ApplicationRepository) FindByJobAndApplicant(ctx context.Context, jobID, applicantID common.UUID) (*application.Application, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+applicationColumns+` FROM applications WHERE job_id = $1 AND applicant_id = $2`, jobID, applicantID)
	return scanApplication(row)
}

func (r *ApplicationRepository) ListByApplicant(ctx context.Context, applicantID common.UUID) ([]application.Application, error) {
	return r.list(ctx, `SELECT `+applicationColumns+` FROM applications WHERE applicant_id = $1 ORDER BY created_at DESC`, applicantID)
}

func (r *ApplicationRepository) ListByJob(ctx context.Context, jobID common.UUID) ([]application.Application, error) {
	return r.list(ctx, `SELECT `+applicationColumns+` FROM applications WHERE job_id = $1 ORDER BY created_at ASC`, jobID)
}

func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id common.UUID, status application.Status, note string) (*application.Application, error) {
	row := r.db.QueryRowContext(ctx, `UPDATE applications SET status = $1, recruiter_note = $2, updated_at = $3 WHERE id = $4 RETURNING `+applicationColumns,
		status, note, time.Now().UTC(), id)
	return scanApplication(row)
}

func (r *ApplicationRepository) list(ctx context.Context, query string, args ...any) ([]application.Application, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list applications", err)
	}
	defer rows.Close()
	var items []application.Application
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list applications", err)
	}
	return items, nil
}

func scanApplication(row scanner) (*application.Application, error) {
	var a application.Application
	if err := row.Scan(&a.ID, &a.JobID, &a.ApplicantID, &a.ApplicantName, &a.ApplicantEmail, &a.ResumeURL, &a.CoverLetter,
		&a.Status, &a.RecruiterNote, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, readError(err, "application not found", "failed to load application")
	}
	return &a, nil
}
