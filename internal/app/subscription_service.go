package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"jobportal/internal/common"
	"jobportal/internal/domain/job"
	"jobportal/internal/domain/notification"
	"jobportal/internal/domain/recruiter"
	"jobportal/internal/domain/subscription"
)

type SubscriptionService struct {
	plans      subscription.PlanRepository
	subs       subscription.Repository
	jobs       job.Repository
	recruiters recruiter.Repository
	notifier   *NotificationService
	logger     logrus.FieldLogger
	clock      func() time.Time
}

func NewSubscriptionService(plans subscription.PlanRepository, subs subscription.Repository, jobs job.Repository, recruiters recruiter.Repository, notifier *NotificationService, logger logrus.FieldLogger) *SubscriptionService {
	return &SubscriptionService{
		plans:      plans,
		subs:       subs,
		jobs:       jobs,
		recruiters: recruiters,
		notifier:   notifier,
		logger:     logger,
		clock:      time.Now,
	}
}

// ActiveSubscription is a live subscription together with its plan and usage.
type ActiveSubscription struct {
	Subscription subscription.Subscription `json:"subscription"`
	Plan         subscription.Plan         `json:"plan"`
}

type PlanInput struct {
	Code         string
	Name         string
	Description  string
	Price        float64
	Currency     string
	DurationDays int
	Features     subscription.Features
	IsActive     bool
}

func (s *SubscriptionService) ListPlans(ctx context.Context, activeOnly bool) ([]subscription.Plan, error) {
	return s.plans.List(ctx, activeOnly)
}

func (s *SubscriptionService) GetPlan(ctx context.Context, id common.UUID) (*subscription.Plan, error) {
	return s.plans.GetByID(ctx, id)
}

func (s *SubscriptionService) CreatePlan(ctx context.Context, in PlanInput) (*subscription.Plan, error) {
	plan, err := planFromInput(in)
	if err != nil {
		return nil, err
	}
	return s.plans.Create(ctx, plan)
}

func (s *SubscriptionService) UpdatePlan(ctx context.Context, id common.UUID, in PlanInput) (*subscription.Plan, error) {
	current, err := s.plans.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	plan, err := planFromInput(in)
	if err != nil {
		return nil, err
	}
	plan.ID = current.ID
	plan.CreatedAt = current.CreatedAt
	return s.plans.Update(ctx, plan)
}

// SeedPlans upserts the catalog by plan code and returns how many plans were stored.
func (s *SubscriptionService) SeedPlans(ctx context.Context, plans []subscription.Plan) (int, error) {
	stored := 0
	for _, plan := range plans {
		if _, err := s.plans.Upsert(ctx, plan); err != nil {
			return stored, err
		}
		stored++
	}
	if stored > 0 {
		s.logger.WithField("plans", stored).Info("subscription plans seeded")
	}
	return stored, nil
}

// Subscribe starts a subscription on the plan now. A current active
// subscription is ended in the same transaction that creates the new one.
func (s *SubscriptionService) Subscribe(ctx context.Context, recruiterID, planID common.UUID) (*ActiveSubscription, error) {
	if _, err := s.recruiters.GetByUserID(ctx, recruiterID); err != nil {
		if common.Is(err, common.CodeNotFound) {
			return nil, common.NewError(common.CodeForbidden, "complete your recruiter profile before subscribing", nil)
		}
		return nil, err
	}
	plan, err := s.plans.GetByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	if !plan.IsActive {
		return nil, common.NewError(common.CodeValidation, "plan is not available", nil)
	}
	now := s.clock().UTC()
	next := subscription.Subscription{
		RecruiterID: recruiterID,
		PlanID:      plan.ID,
		Status:      subscription.StatusActive,
		StartDate:   now,
		EndDate:     now.AddDate(0, 0, plan.DurationDays),
	}
	var created *subscription.Subscription
	current, err := s.subs.GetActiveByRecruiter(ctx, recruiterID)
	switch {
	case err == nil:
		// a subscription already past its end date ends as expired, not cancelled
		if !current.CheckExpiry(now) {
			current.Status = subscription.StatusCancelled
			current.CancelledAt = &now
		}
		created, err = s.subs.Replace(ctx, *current, next)
	case common.Is(err, common.CodeNotFound):
		created, err = s.subs.Create(ctx, next)
	}
	if err != nil {
		return nil, err
	}
	s.notifier.Notify(ctx, notification.Notification{
		UserID:  recruiterID,
		Type:    notification.TypeSubscription,
		Title:   "Subscription started",
		Message: fmt.Sprintf("Your %s plan is active until %s.", plan.Name, created.EndDate.Format("2006-01-02")),
		Data:    map[string]string{"subscription_id": created.ID.String(), "plan_id": plan.ID.String()},
	})
	return &ActiveSubscription{Subscription: *created, Plan: *plan}, nil
}

func (s *SubscriptionService) Cancel(ctx context.Context, recruiterID common.UUID) (*subscription.Subscription, error) {
	current, err := s.subs.GetActiveByRecruiter(ctx, recruiterID)
	if err != nil {
		if common.Is(err, common.CodeNotFound) {
			return nil, common.NewError(common.CodeNotFound, "no active subscription", nil)
		}
		return nil, err
	}
	now := s.clock().UTC()
	current.Status = subscription.StatusCancelled
	current.CancelledAt = &now
	return s.subs.Update(ctx, *current)
}

// GetActiveSubscription returns the recruiter's live subscription. A stored
// active subscription past its end date is expired on read.
func (s *SubscriptionService) GetActiveSubscription(ctx context.Context, recruiterID common.UUID) (*ActiveSubscription, error) {
	current, err := s.subs.GetActiveByRecruiter(ctx, recruiterID)
	if err != nil {
		if common.Is(err, common.CodeNotFound) {
			return nil, common.NewError(common.CodeNotFound, "no active subscription", nil)
		}
		return nil, err
	}
	now := s.clock().UTC()
	if current.CheckExpiry(now) {
		if _, err := s.subs.Update(ctx, *current); err != nil {
			s.logger.WithError(err).WithField("subscription_id", current.ID.String()).Warn("failed to persist subscription expiry")
		}
		return nil, common.NewError(common.CodeNotFound, "no active subscription", nil)
	}
	plan, err := s.plans.GetByID(ctx, current.PlanID)
	if err != nil {
		return nil, err
	}
	usage, err := s.liveUsage(ctx, recruiterID, now)
	if err != nil {
		return nil, err
	}
	usage.JobsPosted = current.Usage.JobsPosted
	current.Usage = usage
	return &ActiveSubscription{Subscription: *current, Plan: *plan}, nil
}

func (s *SubscriptionService) History(ctx context.Context, recruiterID common.UUID) ([]subscription.Subscription, error) {
	return s.subs.ListByRecruiter(ctx, recruiterID)
}

// CanPerformAction evaluates the action against the recruiter's live plan and usage.
func (s *SubscriptionService) CanPerformAction(ctx context.Context, recruiterID common.UUID, action subscription.Action) (subscription.Decision, error) {
	active, err := s.GetActiveSubscription(ctx, recruiterID)
	if err != nil {
		if common.Is(err, common.CodeNotFound) {
			return subscription.Decision{Allowed: false, Reason: "No active subscription"}, nil
		}
		return subscription.Decision{}, err
	}
	return subscription.CanPerformAction(action, active.Plan, active.Subscription.Usage), nil
}

// Require turns a denied decision into a limit error carrying the decision.
func (s *SubscriptionService) Require(ctx context.Context, recruiterID common.UUID, action subscription.Action) error {
	decision, err := s.CanPerformAction(ctx, recruiterID, action)
	if err != nil {
		return err
	}
	if !decision.Allowed {
		return common.NewLimitError(decision.Reason, decision)
	}
	return nil
}

func (s *SubscriptionService) RecordJobPosted(ctx context.Context, subscriptionID common.UUID) {
	if err := s.subs.IncrementJobsPosted(ctx, subscriptionID); err != nil {
		s.logger.WithError(err).WithField("subscription_id", subscriptionID.String()).Warn("failed to record job usage")
	}
}

func (s *SubscriptionService) ExpireSubscriptions(ctx context.Context, now time.Time) (int64, error) {
	return s.subs.ExpireOld(ctx, now)
}

func (s *SubscriptionService) liveUsage(ctx context.Context, recruiterID common.UUID, now time.Time) (subscription.Usage, error) {
	active, err := s.jobs.CountActiveByRecruiter(ctx, recruiterID, now)
	if err != nil {
		return subscription.Usage{}, err
	}
	featured, err := s.jobs.CountFeaturedByRecruiter(ctx, recruiterID, now)
	if err != nil {
		return subscription.Usage{}, err
	}
	return subscription.Usage{ActiveJobs: active, FeaturedJobs: featured}, nil
}

func planFromInput(in PlanInput) (subscription.Plan, error) {
	fields := map[string]string{}
	code := strings.ToLower(trimmed(in.Code))
	if code == "" {
		fields["code"] = "code is required"
	}
	if trimmed(in.Name) == "" {
		fields["name"] = "name is required"
	}
	if in.Price < 0 {
		fields["price"] = "price must not be negative"
	}
	if in.DurationDays <= 0 {
		fields["duration_days"] = "duration_days must be positive"
	}
	if in.Features.JobValidityDays <= 0 {
		fields["features.job_validity_days"] = "job_validity_days must be positive"
	}
	for name, limit := range map[string]*int{
		"features.max_active_jobs":          in.Features.MaxActiveJobs,
		"features.max_applications_per_job": in.Features.MaxApplicationsPerJob,
		"features.max_featured_jobs":        in.Features.MaxFeaturedJobs,
	} {
		if limit != nil && *limit < 0 {
			fields[name] = "limit must not be negative"
		}
	}
	if len(fields) > 0 {
		return subscription.Plan{}, common.NewValidationError("invalid plan", fields)
	}
	currency := strings.ToUpper(trimmed(in.Currency))
	if currency == "" {
		currency = "USD"
	}
	return subscription.Plan{
		Code:         code,
		Name:         trimmed(in.Name),
		Description:  trimmed(in.Description),
		Price:        in.Price,
		Currency:     currency,
		DurationDays: in.DurationDays,
		Features:     in.Features,
		IsActive:     in.IsActive,
	}, nil
}
