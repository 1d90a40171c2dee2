package recruiter

import (
	"context"
	"strings"
	"time"

	"jobportal/internal/common"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended"
)

type Recruiter struct {
	UserID      common.UUID `json:"user_id"`
	CompanyName string      `json:"company_name"`
	Website     string      `json:"website,omitempty"`
	Industry    string      `json:"industry,omitempty"`
	CompanySize string      `json:"company_size,omitempty"`
	Description string      `json:"description,omitempty"`
	Location    string      `json:"location,omitempty"`
	Verified    bool        `json:"verified"`
	Status      Status      `json:"status"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

func (r Recruiter) CanPostJobs() bool {
	return r.Status == StatusActive && strings.TrimSpace(r.CompanyName) != ""
}

type Filter struct {
	Status   Status
	Verified *bool
	Limit    int
	Offset   int
}

type Repository interface {
	// Upsert stores profile fields; Status and Verified are preserved on update.
	Upsert(ctx context.Context, recruiter Recruiter) (*Recruiter, error)
	GetByUserID(ctx context.Context, userID common.UUID) (*Recruiter, error)
	List(ctx context.Context, filter Filter) ([]Recruiter, error)
	SetStatus(ctx context.Context, userID common.UUID, status Status) (*Recruiter, error)
	SetVerified(ctx context.Context, userID common.UUID, verified bool) (*Recruiter, error)
}
