package subscription

import (
	"context"
	"time"

	"jobportal/internal/common"
)

type PlanRepository interface {
	Create(ctx context.Context, plan Plan) (*Plan, error)
	Update(ctx context.Context, plan Plan) (*Plan, error)
	// Upsert inserts or updates a plan keyed by its code.
	Upsert(ctx context.Context, plan Plan) (*Plan, error)
	GetByID(ctx context.Context, id common.UUID) (*Plan, error)
	GetByCode(ctx context.Context, code string) (*Plan, error)
	List(ctx context.Context, activeOnly bool) ([]Plan, error)
}

type Repository interface {
	Create(ctx context.Context, sub Subscription) (*Subscription, error)
	GetByID(ctx context.Context, id common.UUID) (*Subscription, error)
	// GetActiveByRecruiter returns the subscription stored as active, even
	// when its end date has passed; callers run CheckExpiry.
	GetActiveByRecruiter(ctx context.Context, recruiterID common.UUID) (*Subscription, error)
	ListByRecruiter(ctx context.Context, recruiterID common.UUID) ([]Subscription, error)
	Update(ctx context.Context, sub Subscription) (*Subscription, error)
	// Replace stores current's new status and creates next atomically.
	Replace(ctx context.Context, current, next Subscription) (*Subscription, error)
	IncrementJobsPosted(ctx context.Context, id common.UUID) error
	ExpireOld(ctx context.Context, now time.Time) (int64, error)
}
