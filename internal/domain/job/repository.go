package job

import (
	"context"
	"time"

	"jobportal/internal/common"
)

type Filter struct {
	Query       string
	Location    string
	Type        Type
	Featured    *bool
	Status      Status
	RecruiterID common.UUID
	// ActiveAt restricts results to active jobs whose expiry is after the instant.
	ActiveAt *time.Time
	Limit    int
	Offset   int
}

type Repository interface {
	Create(ctx context.Context, job Job) (*Job, error)
	Update(ctx context.Context, job Job) (*Job, error)
	GetByID(ctx context.Context, id common.UUID) (*Job, error)
	List(ctx context.Context, filter Filter) ([]Job, error)
	CountActiveByRecruiter(ctx context.Context, recruiterID common.UUID, now time.Time) (int, error)
	CountFeaturedByRecruiter(ctx context.Context, recruiterID common.UUID, now time.Time) (int, error)
	UpdateStatus(ctx context.Context, id common.UUID, status Status) (*Job, error)
	// ReserveApplicationSlot atomically increments the application counter of
	// an open job, closing it when the limit is reached. It fails with
	// CodeLimitExceeded when the job cannot take another application.
	ReserveApplicationSlot(ctx context.Context, id common.UUID, now time.Time) (*Job, error)
	// ReleaseApplicationSlot undoes a reservation whose application was not stored.
	ReleaseApplicationSlot(ctx context.Context, id common.UUID) error
	ExpireOld(ctx context.Context, now time.Time) (int64, error)
}
