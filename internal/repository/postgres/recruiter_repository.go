package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"jobportal/internal/common"
	"jobportal/internal/domain/recruiter"
)

type RecruiterRepository struct {
	db *sql.DB
}

func NewRecruiterRepository(db *sql.DB) *RecruiterRepository {
	return &RecruiterRepository{db: db}
}

const recruiterColumns = `user_id, company_name, website, industry, company_size, description, location, verified, status, created_at, updated_at`

func (r *RecruiterRepository) Upsert(ctx context.Context, rec recruiter.Recruiter) (*recruiter.Recruiter, error) {
	now := time.Now().UTC()
	if rec.Status == "" {
		rec.Status = recruiter.StatusActive
	}
	row := r.db.QueryRowContext(ctx, `INSERT INTO recruiters (`+recruiterColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, FALSE, $8, $9, $9)
		ON CONFLICT (user_id) DO UPDATE SET company_name = EXCLUDED.company_name, website = EXCLUDED.website,
			industry = EXCLUDED.industry, company_size = EXCLUDED.company_size, description = EXCLUDED.description,
			location = EXCLUDED.location, updated_at = EXCLUDED.updated_at
		RETURNING `+recruiterColumns,
		rec.UserID, rec.CompanyName, rec.Website, rec.Industry, rec.CompanySize, rec.Description, rec.Location, rec.Status, now)
	return scanRecruiter(row)
}

func (r *RecruiterRepository) GetByUserID(ctx context.Context, userID common.UUID) (*recruiter.Recruiter, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+recruiterColumns+` FROM recruiters WHERE user_id = $1`, userID)
	return scanRecruiter(row)
}

func (r *RecruiterRepository) List(ctx context.Context, filter recruiter.Filter) ([]recruiter.Recruiter, error) {
	var (
		conditions []string
		args       []any
	)
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Verified != nil {
		args = append(args, *filter.Verified)
		conditions = append(conditions, fmt.Sprintf("verified = $%d", len(args)))
	}
	query := `SELECT ` + recruiterColumns + ` FROM recruiters`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	args = append(args, filter.Limit, filter.Offset)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list recruiters", err)
	}
	defer rows.Close()
	var items []recruiter.Recruiter
	for rows.Next() {
		rec, err := scanRecruiter(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list recruiters", err)
	}
	return items, nil
}

func (r *RecruiterRepository) SetStatus(ctx context.Context, userID common.UUID, status recruiter.Status) (*recruiter.Recruiter, error) {
	row := r.db.QueryRowContext(ctx, `UPDATE recruiters SET status = $1, updated_at = $2 WHERE user_id = $3 RETURNING `+recruiterColumns,
		status, time.Now().UTC(), userID)
	return scanRecruiter(row)
}

func (r *RecruiterRepository) SetVerified(ctx context.Context, userID common.UUID, verified bool) (*recruiter.Recruiter, error) {
	row := r.db.QueryRowContext(ctx, `UPDATE recruiters SET verified = $1, updated_at = $2 WHERE user_id = $3 RETURNING `+recruiterColumns,
		verified, time.Now().UTC(), userID)
	return scanRecruiter(row)
}

func scanRecruiter(row scanner) (*recruiter.Recruiter, error) {
	var rec recruiter.Recruiter
	if err := row.Scan(&rec.UserID, &rec.CompanyName, &rec.Website, &rec.Industry, &rec.CompanySize, &rec.Description,
		&rec.Location, &rec.Verified, &rec.Status, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return nil, readError(err, "recruiter not found", "failed to load recruiter")
	}
	return &rec, nil
}
