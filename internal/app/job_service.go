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

type JobService struct {
	jobs       job.Repository
	recruiters recruiter.Repository
	subs       *SubscriptionService
	notifier   *NotificationService
	logger     logrus.FieldLogger
	clock      func() time.Time
}

func NewJobService(jobs job.Repository, recruiters recruiter.Repository, subs *SubscriptionService, notifier *NotificationService, logger logrus.FieldLogger) *JobService {
	return &JobService{
		jobs:       jobs,
		recruiters: recruiters,
		subs:       subs,
		notifier:   notifier,
		logger:     logger,
		clock:      time.Now,
	}
}

type JobInput struct {
	Title           string
	Description     string
	Location        string
	Type            job.Type
	SalaryMin       *int
	SalaryMax       *int
	Skills          []string
	Featured        bool
	ExpiryDate      *time.Time
	MaxApplications *int
}

type ListJobsInput struct {
	Query    string
	Location string
	Type     job.Type
	Featured *bool
	Limit    int
	Offset   int
}

// Create posts a job for the recruiter. The active plan decides the expiry
// date, the application limit and whether the job may be featured.
func (s *JobService) Create(ctx context.Context, recruiterID common.UUID, in JobInput) (*job.Job, error) {
	if err := validateJobInput(in); err != nil {
		return nil, err
	}
	profile, err := s.postingRecruiter(ctx, recruiterID)
	if err != nil {
		return nil, err
	}
	active, err := s.subs.GetActiveSubscription(ctx, recruiterID)
	if err != nil {
		if common.Is(err, common.CodeNotFound) {
			decision := subscription.Decision{Allowed: false, Reason: "No active subscription"}
			return nil, common.NewLimitError(decision.Reason, decision)
		}
		return nil, err
	}
	if err := requireDecision(subscription.CanPerformAction(subscription.ActionPostJob, active.Plan, active.Subscription.Usage)); err != nil {
		return nil, err
	}
	if in.Featured {
		if err := requireDecision(subscription.CanPerformAction(subscription.ActionFeatureJob, active.Plan, active.Subscription.Usage)); err != nil {
			return nil, err
		}
	}
	now := s.clock().UTC()
	expiry, err := planExpiry(now, active.Plan, in.ExpiryDate)
	if err != nil {
		return nil, err
	}
	created, err := s.jobs.Create(ctx, job.Job{
		RecruiterID:     recruiterID,
		CompanyName:     profile.CompanyName,
		Title:           trimmed(in.Title),
		Description:     trimmed(in.Description),
		Location:        trimmed(in.Location),
		Type:            in.Type,
		SalaryMin:       in.SalaryMin,
		SalaryMax:       in.SalaryMax,
		Skills:          normalizeSkills(in.Skills),
		Featured:        in.Featured,
		Status:          job.StatusActive,
		ExpiryDate:      expiry,
		MaxApplications: planApplicationLimit(active.Plan, in.MaxApplications),
	})
	if err != nil {
		return nil, err
	}
	s.subs.RecordJobPosted(ctx, active.Subscription.ID)
	s.logger.WithFields(logrus.Fields{"job_id": created.ID.String(), "recruiter_id": recruiterID.String()}).Info("job posted")
	return created, nil
}

// Update edits an open job owned by the recruiter.
func (s *JobService) Update(ctx context.Context, recruiterID, jobID common.UUID, in JobInput) (*job.Job, error) {
	if err := validateJobInput(in); err != nil {
		return nil, err
	}
	current, err := s.ownedJob(ctx, recruiterID, jobID)
	if err != nil {
		return nil, err
	}
	if job.IsTerminal(current.Status) {
		return nil, common.NewError(common.CodeConflict, fmt.Sprintf("a %s job can no longer be edited", current.Status), nil)
	}
	now := s.clock().UTC()
	active, err := s.subs.GetActiveSubscription(ctx, recruiterID)
	if err != nil && !common.Is(err, common.CodeNotFound) {
		return nil, err
	}
	if in.Featured && !current.Featured {
		if active == nil {
			decision := subscription.Decision{Allowed: false, Reason: "No active subscription"}
			return nil, common.NewLimitError(decision.Reason, decision)
		}
		if err := requireDecision(subscription.CanPerformAction(subscription.ActionFeatureJob, active.Plan, active.Subscription.Usage)); err != nil {
			return nil, err
		}
	}
	maxApplications := current.MaxApplications
	if in.MaxApplications != nil {
		maxApplications = in.MaxApplications
		if active != nil {
			maxApplications = planApplicationLimit(active.Plan, in.MaxApplications)
		}
		if *maxApplications < current.CurrentApplicationCount {
			return nil, common.NewValidationError("invalid job", map[string]string{
				"max_applications": fmt.Sprintf("max_applications cannot be below the %d applications already received", current.CurrentApplicationCount),
			})
		}
	}
	expiry := current.ExpiryDate
	if in.ExpiryDate != nil {
		if !in.ExpiryDate.After(now) {
			return nil, common.NewValidationError("invalid job", map[string]string{"expiry_date": "expiry_date must be in the future"})
		}
		expiry = in.ExpiryDate.UTC()
		if active != nil {
			if limit := current.CreatedAt.AddDate(0, 0, active.Plan.Features.JobValidityDays); expiry.After(limit) {
				expiry = limit
			}
		}
	}
	current.Title = trimmed(in.Title)
	current.Description = trimmed(in.Description)
	current.Location = trimmed(in.Location)
	current.Type = in.Type
	current.SalaryMin = in.SalaryMin
	current.SalaryMax = in.SalaryMax
	current.Skills = normalizeSkills(in.Skills)
	current.Featured = in.Featured
	current.ExpiryDate = expiry
	current.MaxApplications = maxApplications
	if current.CloseAtLimit(now) {
		s.logger.WithField("job_id", current.ID.String()).Info("job closed: max_applications already met")
	}
	return s.jobs.Update(ctx, *current)
}

// UpdateStatus moves a recruiter's job through the state machine. Rejection
// is reserved for moderators.
func (s *JobService) UpdateStatus(ctx context.Context, recruiterID, jobID common.UUID, status job.Status) (*job.Job, error) {
	current, err := s.ownedJob(ctx, recruiterID, jobID)
	if err != nil {
		return nil, err
	}
	if status == job.StatusRejected {
		return nil, common.NewError(common.CodeForbidden, "only moderators can reject jobs", nil)
	}
	if err := s.checkTransition(current, status); err != nil {
		return nil, err
	}
	if current.Status == job.StatusPaused && status == job.StatusActive {
		if current.IsExpired(s.clock()) {
			return nil, common.NewError(common.CodeConflict, "job has expired and cannot be reactivated", nil)
		}
		if _, err := s.postingRecruiter(ctx, recruiterID); err != nil {
			return nil, err
		}
		if err := s.subs.Require(ctx, recruiterID, subscription.ActionPostJob); err != nil {
			return nil, err
		}
	}
	updated, err := s.jobs.UpdateStatus(ctx, jobID, status)
	if err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{"job_id": jobID.String(), "from": string(current.Status), "to": string(status)}).Info("job status changed")
	return updated, nil
}

// Get returns a publicly visible job. Expired jobs are flipped on read.
func (s *JobService) Get(ctx context.Context, id common.UUID) (*job.Job, error) {
	j, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.expireOnRead(ctx, j)
	if j.Status != job.StatusActive {
		return nil, common.NewError(common.CodeNotFound, "job not found", nil)
	}
	return j, nil
}

func (s *JobService) GetForRecruiter(ctx context.Context, recruiterID, id common.UUID) (*job.Job, error) {
	j, err := s.ownedJob(ctx, recruiterID, id)
	if err != nil {
		return nil, err
	}
	s.expireOnRead(ctx, j)
	return j, nil
}

// List returns active, unexpired jobs; featured jobs come first.
func (s *JobService) List(ctx context.Context, in ListJobsInput) ([]job.Job, error) {
	if in.Type != "" && !job.IsKnownType(in.Type) {
		return nil, common.NewValidationError("invalid filter", map[string]string{"type": "unknown job type"})
	}
	limit, offset := normalizePage(in.Limit, in.Offset)
	now := s.clock().UTC()
	return s.jobs.List(ctx, job.Filter{
		Query:    trimmed(in.Query),
		Location: trimmed(in.Location),
		Type:     in.Type,
		Featured: in.Featured,
		ActiveAt: &now,
		Limit:    limit,
		Offset:   offset,
	})
}

func (s *JobService) ListByRecruiter(ctx context.Context, recruiterID common.UUID, status job.Status, limit, offset int) ([]job.Job, error) {
	if status != "" && !job.IsKnownStatus(status) {
		return nil, common.NewValidationError("invalid filter", map[string]string{"status": "unknown job status"})
	}
	limit, offset = normalizePage(limit, offset)
	items, err := s.jobs.List(ctx, job.Filter{RecruiterID: recruiterID, Status: status, Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	kept := items[:0]
	for i := range items {
		s.expireOnRead(ctx, &items[i])
		if status != "" && items[i].Status != status {
			continue
		}
		kept = append(kept, items[i])
	}
	return kept, nil
}

func (s *JobService) ListAll(ctx context.Context, filter job.Filter) ([]job.Job, error) {
	if filter.Status != "" && !job.IsKnownStatus(filter.Status) {
		return nil, common.NewValidationError("invalid filter", map[string]string{"status": "unknown job status"})
	}
	filter.Limit, filter.Offset = normalizePage(filter.Limit, filter.Offset)
	return s.jobs.List(ctx, filter)
}

// Moderate applies an admin status change, typically a rejection, and tells
// the recruiter about it.
func (s *JobService) Moderate(ctx context.Context, jobID common.UUID, status job.Status, reason string) (*job.Job, error) {
	current, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if err := s.checkTransition(current, status); err != nil {
		return nil, err
	}
	updated, err := s.jobs.UpdateStatus(ctx, jobID, status)
	if err != nil {
		return nil, err
	}
	message := fmt.Sprintf("Your job %q is now %s.", updated.Title, updated.Status)
	if reason = trimmed(reason); reason != "" {
		message += " Reason: " + reason
	}
	s.notifier.Notify(ctx, notification.Notification{
		UserID:  updated.RecruiterID,
		Type:    notification.TypeJobClosed,
		Title:   "Job moderated",
		Message: message,
		Data:    map[string]string{"job_id": updated.ID.String(), "status": string(updated.Status)},
	})
	s.logger.WithFields(logrus.Fields{"job_id": jobID.String(), "status": string(status)}).Info("job moderated")
	return updated, nil
}

func (s *JobService) ExpireOldJobs(ctx context.Context, now time.Time) (int64, error) {
	return s.jobs.ExpireOld(ctx, now)
}

func (s *JobService) checkTransition(current *job.Job, status job.Status) error {
	if !job.IsKnownStatus(status) {
		return common.NewValidationError("invalid status", map[string]string{"status": "unknown job status"})
	}
	if current.Status == status {
		return common.NewError(common.CodeConflict, fmt.Sprintf("job is already %s", status), nil)
	}
	if !job.CanTransition(current.Status, status) {
		return common.NewError(common.CodeConflict, fmt.Sprintf("cannot change job status from %s to %s", current.Status, status), nil)
	}
	return nil
}

func (s *JobService) ownedJob(ctx context.Context, recruiterID, jobID common.UUID) (*job.Job, error) {
	j, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if j.RecruiterID != recruiterID {
		return nil, common.NewError(common.CodeForbidden, "job belongs to another recruiter", nil)
	}
	return j, nil
}

func (s *JobService) postingRecruiter(ctx context.Context, recruiterID common.UUID) (*recruiter.Recruiter, error) {
	profile, err := s.recruiters.GetByUserID(ctx, recruiterID)
	if err != nil {
		if common.Is(err, common.CodeNotFound) {
			return nil, common.NewError(common.CodeForbidden, "complete your recruiter profile before posting jobs", nil)
		}
		return nil, err
	}
	if !profile.CanPostJobs() {
		return nil, common.NewError(common.CodeForbidden, "recruiter account cannot post jobs", nil)
	}
	return profile, nil
}

func (s *JobService) expireOnRead(ctx context.Context, j *job.Job) {
	if !j.ExpireIfDue(s.clock()) {
		return
	}
	if _, err := s.jobs.UpdateStatus(ctx, j.ID, job.StatusExpired); err != nil {
		s.logger.WithError(err).WithField("job_id", j.ID.String()).Warn("failed to persist job expiry")
	}
}

func requireDecision(decision subscription.Decision) error {
	if decision.Allowed {
		return nil
	}
	return common.NewLimitError(decision.Reason, decision)
}

// planExpiry is now plus the plan's validity; an earlier requested date wins.
func planExpiry(now time.Time, plan subscription.Plan, requested *time.Time) (time.Time, error) {
	expiry := now.AddDate(0, 0, plan.Features.JobValidityDays)
	if requested == nil {
		return expiry, nil
	}
	if !requested.After(now) {
		return time.Time{}, common.NewValidationError("invalid job", map[string]string{"expiry_date": "expiry_date must be in the future"})
	}
	if requested.Before(expiry) {
		return requested.UTC(), nil
	}
	return expiry, nil
}

// planApplicationLimit defaults to the plan limit and never exceeds it.
func planApplicationLimit(plan subscription.Plan, requested *int) *int {
	limit := plan.Features.MaxApplicationsPerJob
	if requested == nil {
		if limit == nil {
			return nil
		}
		value := *limit
		return &value
	}
	value := *requested
	if limit != nil && value > *limit {
		value = *limit
	}
	return &value
}

func validateJobInput(in JobInput) error {
	fields := map[string]string{}
	title := trimmed(in.Title)
	if title == "" {
		fields["title"] = "title is required"
	} else if len(title) > 200 {
		fields["title"] = "title must be at most 200 characters"
	}
	if trimmed(in.Description) == "" {
		fields["description"] = "description is required"
	}
	if !job.IsKnownType(in.Type) {
		fields["type"] = "type must be one of full_time, part_time, contract, internship, remote"
	}
	if in.SalaryMin != nil && *in.SalaryMin < 0 {
		fields["salary_min"] = "salary_min must not be negative"
	}
	if in.SalaryMin != nil && in.SalaryMax != nil && *in.SalaryMax < *in.SalaryMin {
		fields["salary_max"] = "salary_max must not be below salary_min"
	}
	if in.MaxApplications != nil && *in.MaxApplications <= 0 {
		fields["max_applications"] = "max_applications must be positive"
	}
	if len(fields) > 0 {
		return common.NewValidationError("invalid job", fields)
	}
	return nil
}

func normalizeSkills(skills []string) []string {
	seen := make(map[string]struct{}, len(skills))
	out := make([]string, 0, len(skills))
	for _, skill := range skills {
		skill = strings.TrimSpace(skill)
		key := strings.ToLower(skill)
		if skill == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, skill)
	}
	return out
}
