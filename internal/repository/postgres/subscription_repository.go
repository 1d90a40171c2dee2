package postgres

import (
	"context"
	"database/sql"
	"time"

	"jobportal/internal/common"
	"jobportal/internal/domain/subscription"
)

type PlanRepository struct {
	db *sql.DB
}

func NewPlanRepository(db *sql.DB) *PlanRepository {
	return &PlanRepository{db: db}
}

const planColumns = `id, code, name, description, price, currency, duration_days, max_active_jobs, max_applications_per_job,
	job_validity_days, max_featured_jobs, can_view_applicant_contacts, is_active, created_at, updated_at`

func (r *PlanRepository) Create(ctx context.Context, p subscription.Plan) (*subscription.Plan, error) {
	p.ID = common.NewUUID()
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	_, err := r.db.ExecContext(ctx, `INSERT INTO plans (`+planColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		p.ID, p.Code, p.Name, p.Description, p.Price, p.Currency, p.DurationDays, nullInt(p.Features.MaxActiveJobs),
		nullInt(p.Features.MaxApplicationsPerJob), p.Features.JobValidityDays, nullInt(p.Features.MaxFeaturedJobs),
		p.Features.CanViewApplicantContacts, p.IsActive, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return nil, writeError(err, "plan code already exists", "failed to create plan")
	}
	return &p, nil
}

func (r *PlanRepository) Update(ctx context.Context, p subscription.Plan) (*subscription.Plan, error) {
	row := r.db.QueryRowContext(ctx, `UPDATE plans SET code = $1, name = $2, description = $3, price = $4, currency = $5,
		duration_days = $6, max_active_jobs = $7, max_applications_per_job = $8, job_validity_days = $9, max_featured_jobs = $10,
		can_view_applicant_contacts = $11, is_active = $12, updated_at = $13
		WHERE id = $14 RETURNING `+planColumns,
		p.Code, p.Name, p.Description, p.Price, p.Currency, p.DurationDays, nullInt(p.Features.MaxActiveJobs),
		nullInt(p.Features.MaxApplicationsPerJob), p.Features.JobValidityDays, nullInt(p.Features.MaxFeaturedJobs),
		p.Features.CanViewApplicantContacts, p.IsActive, time.Now().UTC(), p.ID)
	updated, err := scanPlan(row)
	if err != nil && isUniqueViolation(err) {
		return nil, common.NewError(common.CodeConflict, "plan code already exists", err)
	}
	return updated, err
}

func (r *PlanRepository) Upsert(ctx context.Context, p subscription.Plan) (*subscription.Plan, error) {
	now := time.Now().UTC()
	row := r.db.QueryRowContext(ctx, `INSERT INTO plans (`+planColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $14)
		ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name, description = EXCLUDED.description, price = EXCLUDED.price,
			currency = EXCLUDED.currency, duration_days = EXCLUDED.duration_days, max_active_jobs = EXCLUDED.max_active_jobs,
			max_applications_per_job = EXCLUDED.max_applications_per_job, job_validity_days = EXCLUDED.job_validity_days,
			max_featured_jobs = EXCLUDED.max_featured_jobs, can_view_applicant_contacts = EXCLUDED.can_view_applicant_contacts,
			is_active = EXCLUDED.is_active, updated_at = EXCLUDED.updated_at
		RETURNING `+planColumns,
		common.NewUUID(), p.Code, p.Name, p.Description, p.Price, p.Currency, p.DurationDays, nullInt(p.Features.MaxActiveJobs),
		nullInt(p.Features.MaxApplicationsPerJob), p.Features.JobValidityDays, nullInt(p.Features.MaxFeaturedJobs),
		p.Features.CanViewApplicantContacts, p.IsActive, now)
	return scanPlan(row)
}

func (r *PlanRepository) GetByID(ctx context.Context, id common.UUID) (*subscription.Plan, error) {
	return scanPlan(r.db.QueryRowContext(ctx, `SELECT `+planColumns+` FROM plans WHERE id = $1`, id))
}

func (r *PlanRepository) GetByCode(ctx context.Context, code string) (*subscription.Plan, error) {
	return scanPlan(r.db.QueryRowContext(ctx, `SELECT `+planColumns+` FROM plans WHERE code = $1`, code))
}

func (r *PlanRepository) List(ctx context.Context, activeOnly bool) ([]subscription.Plan, error) {
	query := `SELECT ` + planColumns + ` FROM plans`
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY price ASC, name ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list plans", err)
	}
	defer rows.Close()
	var items []subscription.Plan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list plans", err)
	}
	return items, nil
}

func scanPlan(row scanner) (*subscription.Plan, error) {
	var p subscription.Plan
	var maxActive, maxApplications, maxFeatured sql.NullInt64
	if err := row.Scan(&p.ID, &p.Code, &p.Name, &p.Description, &p.Price, &p.Currency, &p.DurationDays, &maxActive, &maxApplications,
		&p.Features.JobValidityDays, &maxFeatured, &p.Features.CanViewApplicantContacts, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, readError(err, "plan not found", "failed to load plan")
	}
	p.Features.MaxActiveJobs = intPtr(maxActive)
	p.Features.MaxApplicationsPerJob = intPtr(maxApplications)
	p.Features.MaxFeaturedJobs = intPtr(maxFeatured)
	return &p, nil
}

type SubscriptionRepository struct {
	db *sql.DB
}

func NewSubscriptionRepository(db *sql.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

const subscriptionColumns = `id, recruiter_id, plan_id, status, start_date, end_date, jobs_posted, cancelled_at, created_at, updated_at`

func (r *SubscriptionRepository) Create(ctx context.Context, s subscription.Subscription) (*subscription.Subscription, error) {
	s.ID = common.NewUUID()
	now := time.Now().UTC()
	s.CreatedAt = now
	s.UpdatedAt = now
	_, err := r.db.ExecContext(ctx, `INSERT INTO subscriptions (`+subscriptionColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		s.ID, s.RecruiterID, s.PlanID, s.Status, s.StartDate, s.EndDate, s.Usage.JobsPosted, s.CancelledAt, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		return nil, writeError(err, "recruiter already has an active subscription", "failed to create subscription")
	}
	return &s, nil
}

func (r *SubscriptionRepository) GetByID(ctx context.Context, id common.UUID) (*subscription.Subscription, error) {
	return scanSubscription(r.db.QueryRowContext(ctx, `SELECT `+subscriptionColumns+` FROM subscriptions WHERE id = $1`, id))
}

func (r *SubscriptionRepository) GetActiveByRecruiter(ctx context.Context, recruiterID common.UUID) (*subscription.Subscription, error) {
	return scanSubscription(r.db.QueryRowContext(ctx, `SELECT `+subscriptionColumns+` FROM subscriptions
		WHERE recruiter_id = $1 AND status = 'active' ORDER BY start_date DESC LIMIT 1`, recruiterID))
}

func (r *SubscriptionRepository) ListByRecruiter(ctx context.Context, recruiterID common.UUID) ([]subscription.Subscription, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+subscriptionColumns+` FROM subscriptions WHERE recruiter_id = $1 ORDER BY start_date DESC`, recruiterID)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list subscriptions", err)
	}
	defer rows.Close()
	var items []subscription.Subscription
	for rows.Next() {
		s, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list subscriptions", err)
	}
	return items, nil
}

func (r *SubscriptionRepository) Update(ctx context.Context, s subscription.Subscription) (*subscription.Subscription, error) {
	return scanSubscription(r.db.QueryRowContext(ctx, `UPDATE subscriptions SET plan_id = $1, status = $2, start_date = $3, end_date = $4,
		cancelled_at = $5, updated_at = $6 WHERE id = $7 RETURNING `+subscriptionColumns,
		s.PlanID, s.Status, s.StartDate, s.EndDate, s.CancelledAt, time.Now().UTC(), s.ID))
}

// Replace ends the current subscription and inserts next in one
// transaction, so a failed insert leaves the current one active.
func (r *SubscriptionRepository) Replace(ctx context.Context, current, next subscription.Subscription) (*subscription.Subscription, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to replace subscription", err)
	}
	now := time.Now().UTC()
	result, err := tx.ExecContext(ctx, `UPDATE subscriptions SET status = $1, cancelled_at = $2, updated_at = $3
		WHERE id = $4 AND status = 'active'`, current.Status, current.CancelledAt, now, current.ID)
	if err != nil {
		_ = tx.Rollback()
		return nil, common.NewError(common.CodeInternal, "failed to replace subscription", err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		_ = tx.Rollback()
		return nil, common.NewError(common.CodeConflict, "subscription changed concurrently", nil)
	}
	next.ID = common.NewUUID()
	next.CreatedAt = now
	next.UpdatedAt = now
	if _, err := tx.ExecContext(ctx, `INSERT INTO subscriptions (`+subscriptionColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		next.ID, next.RecruiterID, next.PlanID, next.Status, next.StartDate, next.EndDate, next.Usage.JobsPosted, next.CancelledAt,
		next.CreatedAt, next.UpdatedAt); err != nil {
		_ = tx.Rollback()
		return nil, writeError(err, "recruiter already has an active subscription", "failed to create subscription")
	}
	if err := tx.Commit(); err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to replace subscription", err)
	}
	return &next, nil
}

func (r *SubscriptionRepository) IncrementJobsPosted(ctx context.Context, id common.UUID) error {
	result, err := r.db.ExecContext(ctx, `UPDATE subscriptions SET jobs_posted = jobs_posted + 1, updated_at = $1 WHERE id = $2`, time.Now().UTC(), id)
	if err != nil {
		return common.NewError(common.CodeInternal, "failed to update subscription usage", err)
	}
	return requireRows(result, "subscription not found")
}

func (r *SubscriptionRepository) ExpireOld(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `UPDATE subscriptions SET status = 'expired', updated_at = $1 WHERE status = 'active' AND end_date <= $1`, now.UTC())
	if err != nil {
		return 0, common.NewError(common.CodeInternal, "failed to expire subscriptions", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, common.NewError(common.CodeInternal, "failed to expire subscriptions", err)
	}
	return affected, nil
}

func scanSubscription(row scanner) (*subscription.Subscription, error) {
	var s subscription.Subscription
	var cancelledAt sql.NullTime
	if err := row.Scan(&s.ID, &s.RecruiterID, &s.PlanID, &s.Status, &s.StartDate, &s.EndDate, &s.Usage.JobsPosted, &cancelledAt,
		&s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, readError(err, "subscription not found", "failed to load subscription")
	}
	if cancelledAt.Valid {
		at := cancelledAt.Time
		s.CancelledAt = &at
	}
	return &s, nil
}
