package job

import (
	"errors"
	"time"

	"jobportal/internal/common"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusPaused   Status = "paused"
	StatusClosed   Status = "closed"
	StatusExpired  Status = "expired"
	StatusRejected Status = "rejected"
)

type Type string

const (
	TypeFullTime   Type = "full_time"
	TypePartTime   Type = "part_time"
	TypeContract   Type = "contract"
	TypeInternship Type = "internship"
	TypeRemote     Type = "remote"
)

var ErrApplicationLimitReached = errors.New("application limit reached")

type Job struct {
	ID                      common.UUID `json:"id"`
	RecruiterID             common.UUID `json:"recruiter_id"`
	CompanyName             string      `json:"company_name"`
	Title                   string      `json:"title"`
	Description             string      `json:"description"`
	Location                string      `json:"location"`
	Type                    Type        `json:"type"`
	SalaryMin               *int        `json:"salary_min,omitempty"`
	SalaryMax               *int        `json:"salary_max,omitempty"`
	Skills                  []string    `json:"skills"`
	Featured                bool        `json:"featured"`
	Status                  Status      `json:"status"`
	ExpiryDate              time.Time   `json:"expiry_date"`
	MaxApplications         *int        `json:"max_applications,omitempty"`
	CurrentApplicationCount int         `json:"current_application_count"`
	ApplicationLimitReached bool        `json:"application_limit_reached"`
	AutoClosedAt            *time.Time  `json:"auto_closed_at,omitempty"`
	CreatedAt               time.Time   `json:"created_at"`
	UpdatedAt               time.Time   `json:"updated_at"`
}

// IsExpired reports whether the posting's expiry date has passed.
func (j *Job) IsExpired(now time.Time) bool {
	return !j.ExpiryDate.IsZero() && !now.Before(j.ExpiryDate)
}

func (j *Job) limitReached() bool {
	return j.MaxApplications != nil && j.CurrentApplicationCount >= *j.MaxApplications
}

// CanReceiveApplications has no side effects.
func (j *Job) CanReceiveApplications(now time.Time) bool {
	if j.Status != StatusActive {
		return false
	}
	if j.IsExpired(now) {
		return false
	}
	return !j.limitReached()
}

// IncrementApplicationCount records one more application and auto-closes the
// job when the counter reaches MaxApplications.
func (j *Job) IncrementApplicationCount(now time.Time) error {
	if j.limitReached() {
		j.ApplicationLimitReached = true
		return ErrApplicationLimitReached
	}
	j.CurrentApplicationCount++
	j.CloseAtLimit(now)
	return nil
}

// CloseAtLimit auto-closes an active job whose counter already meets
// MaxApplications, for example after the recruiter lowers the limit.
func (j *Job) CloseAtLimit(now time.Time) bool {
	if j.Status != StatusActive || !j.limitReached() {
		return false
	}
	j.ApplicationLimitReached = true
	j.Status = StatusClosed
	closedAt := now.UTC()
	j.AutoClosedAt = &closedAt
	return true
}

// ExpireIfDue flips an active job past its expiry date to expired.
func (j *Job) ExpireIfDue(now time.Time) bool {
	if j.Status == StatusActive && j.IsExpired(now) {
		j.Status = StatusExpired
		return true
	}
	return false
}

var transitions = map[Status][]Status{
	StatusActive: {StatusPaused, StatusClosed, StatusExpired, StatusRejected},
	StatusPaused: {StatusActive, StatusRejected},
}

func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func IsTerminal(status Status) bool {
	return status == StatusClosed || status == StatusExpired || status == StatusRejected
}

func IsKnownStatus(status Status) bool {
	switch status {
	case StatusActive, StatusPaused, StatusClosed, StatusExpired, StatusRejected:
		return true
	default:
		return false
	}
}

func IsKnownType(t Type) bool {
	switch t {
	case TypeFullTime, TypePartTime, TypeContract, TypeInternship, TypeRemote:
		return true
	default:
		return false
	}
}
