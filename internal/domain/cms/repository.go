package cms

import (
	"context"

	"jobportal/internal/common"
)

type BannerFilter struct {
	Placement  string
	ActiveOnly bool
}

type CardFilter struct {
	Section    string
	ActiveOnly bool
}

type BannerRepository interface {
	Create(ctx context.Context, banner Banner) (*Banner, error)
	Update(ctx context.Context, banner Banner) (*Banner, error)
	Delete(ctx context.Context, id common.UUID) error
	GetByID(ctx context.Context, id common.UUID) (*Banner, error)
	List(ctx context.Context, filter BannerFilter) ([]Banner, error)
}

type CardRepository interface {
	Create(ctx context.Context, card Card) (*Card, error)
	Update(ctx context.Context, card Card) (*Card, error)
	Delete(ctx context.Context, id common.UUID) error
	GetByID(ctx context.Context, id common.UUID) (*Card, error)
	List(ctx context.Context, filter CardFilter) ([]Card, error)
}
