package subscription

import (
	"fmt"
	"strings"
	"time"

	"jobportal/internal/common"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusExpired   Status = "expired"
	StatusCancelled Status = "cancelled"
)

type Action string

const (
	ActionPostJob               Action = "post_job"
	ActionFeatureJob            Action = "feature_job"
	ActionViewApplicantContacts Action = "view_applicant_contacts"
)

// Features are the limits granted by a plan. A nil limit means unlimited.
type Features struct {
	MaxActiveJobs            *int `json:"max_active_jobs" yaml:"max_active_jobs"`
	MaxApplicationsPerJob    *int `json:"max_applications_per_job" yaml:"max_applications_per_job"`
	JobValidityDays          int  `json:"job_validity_days" yaml:"job_validity_days"`
	MaxFeaturedJobs          *int `json:"max_featured_jobs" yaml:"max_featured_jobs"`
	CanViewApplicantContacts bool `json:"can_view_applicant_contacts" yaml:"can_view_applicant_contacts"`
}

type Plan struct {
	ID           common.UUID `json:"id"`
	Code         string      `json:"code"`
	Name         string      `json:"name"`
	Description  string      `json:"description"`
	Price        float64     `json:"price"`
	Currency     string      `json:"currency"`
	DurationDays int         `json:"duration_days"`
	Features     Features    `json:"features"`
	IsActive     bool        `json:"is_active"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

type Usage struct {
	JobsPosted   int `json:"jobs_posted"`
	ActiveJobs   int `json:"active_jobs"`
	FeaturedJobs int `json:"featured_jobs"`
}

type Subscription struct {
	ID          common.UUID `json:"id"`
	RecruiterID common.UUID `json:"recruiter_id"`
	PlanID      common.UUID `json:"plan_id"`
	Status      Status      `json:"status"`
	StartDate   time.Time   `json:"start_date"`
	EndDate     time.Time   `json:"end_date"`
	Usage       Usage       `json:"usage"`
	CancelledAt *time.Time  `json:"cancelled_at,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// CheckExpiry marks an active subscription whose end date has passed as
// expired and reports whether it changed.
func (s *Subscription) CheckExpiry(now time.Time) bool {
	if s.Status == StatusActive && !now.Before(s.EndDate) {
		s.Status = StatusExpired
		return true
	}
	return false
}

func (s *Subscription) IsActive(now time.Time) bool {
	return s.Status == StatusActive && now.Before(s.EndDate)
}

type Decision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
	Limit   *int   `json:"limit,omitempty"`
	Current int    `json:"current"`
}

func ParseAction(value string) (Action, bool) {
	action := Action(strings.ToLower(strings.TrimSpace(value)))
	switch action {
	case ActionPostJob, ActionFeatureJob, ActionViewApplicantContacts:
		return action, true
	default:
		return "", false
	}
}

// CanPerformAction compares usage against the plan limits. It is advisory:
// callers decide whether to reject the request.
func CanPerformAction(action Action, plan Plan, usage Usage) Decision {
	switch action {
	case ActionPostJob:
		return checkLimit(plan.Features.MaxActiveJobs, usage.ActiveJobs, "Maximum active jobs limit (%d) reached")
	case ActionFeatureJob:
		if plan.Features.MaxFeaturedJobs != nil && *plan.Features.MaxFeaturedJobs == 0 {
			return Decision{Allowed: false, Reason: "Featured jobs are not included in your plan", Limit: plan.Features.MaxFeaturedJobs, Current: usage.FeaturedJobs}
		}
		return checkLimit(plan.Features.MaxFeaturedJobs, usage.FeaturedJobs, "Maximum featured jobs limit (%d) reached")
	case ActionViewApplicantContacts:
		if !plan.Features.CanViewApplicantContacts {
			return Decision{Allowed: false, Reason: "Applicant contact details are not included in your plan"}
		}
		return Decision{Allowed: true}
	default:
		return Decision{Allowed: false, Reason: fmt.Sprintf("Unknown action %q", action)}
	}
}

func checkLimit(limit *int, current int, reasonFormat string) Decision {
	if limit == nil {
		return Decision{Allowed: true, Current: current}
	}
	value := *limit
	if current >= value {
		return Decision{Allowed: false, Reason: fmt.Sprintf(reasonFormat, value), Limit: &value, Current: current}
	}
	return Decision{Allowed: true, Limit: &value, Current: current}
}
