package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"jobportal/internal/common"
	"jobportal/internal/domain/application"
	"jobportal/internal/domain/job"
	"jobportal/internal/domain/notification"
	"jobportal/internal/domain/subscription"
	"jobportal/internal/domain/user"
	"jobportal/internal/metrics"
)

type ApplicationService struct {
	apps     application.Repository
	jobs     job.Repository
	users    user.Repository
	subs     *SubscriptionService
	notifier *NotificationService
	metrics  *metrics.Collector
	logger   logrus.FieldLogger
	clock    func() time.Time
}

func NewApplicationService(apps application.Repository, jobs job.Repository, users user.Repository, subs *SubscriptionService, notifier *NotificationService, collector *metrics.Collector, logger logrus.FieldLogger) *ApplicationService {
	return &ApplicationService{
		apps:     apps,
		jobs:     jobs,
		users:    users,
		subs:     subs,
		notifier: notifier,
		metrics:  collector,
		logger:   logger,
		clock:    time.Now,
	}
}

type ApplyInput struct {
	JobID       common.UUID
	CoverLetter string
	ResumeURL   string
}

// JobApplications is what a recruiter sees for one of their jobs.
type JobApplications struct {
	Applications    []application.Application `json:"applications"`
	ContactsVisible bool                      `json:"contacts_visible"`
}

// Apply reserves a slot on the job and then stores the application. The
// reservation is released again if the application cannot be stored.
func (s *ApplicationService) Apply(ctx context.Context, applicantID common.UUID, in ApplyInput) (*application.Application, error) {
	if len(in.CoverLetter) > 5000 {
		return nil, common.NewValidationError("invalid application", map[string]string{"cover_letter": "cover_letter must be at most 5000 characters"})
	}
	applicant, err := s.users.GetByID(ctx, applicantID)
	if err != nil {
		return nil, err
	}
	if applicant.Role != user.RoleJobSeeker {
		return nil, common.NewError(common.CodeForbidden, "only job seekers can apply", nil)
	}
	if _, err := s.jobs.GetByID(ctx, in.JobID); err != nil {
		return nil, err
	}
	if _, err := s.apps.FindByJobAndApplicant(ctx, in.JobID, applicantID); err == nil {
		return nil, common.NewError(common.CodeConflict, "already applied to this job", nil)
	} else if !common.Is(err, common.CodeNotFound) {
		return nil, err
	}

	reserved, err := s.jobs.ReserveApplicationSlot(ctx, in.JobID, s.clock().UTC())
	if err != nil {
		return nil, err
	}
	resumeURL := trimmed(in.ResumeURL)
	if resumeURL == "" {
		resumeURL = applicant.ResumeURL
	}
	created, err := s.apps.Create(ctx, application.Application{
		JobID:          in.JobID,
		ApplicantID:    applicantID,
		ApplicantName:  applicant.Name,
		ApplicantEmail: applicant.Email,
		ResumeURL:      resumeURL,
		CoverLetter:    trimmed(in.CoverLetter),
		Status:         application.StatusPending,
	})
	if err != nil {
		if releaseErr := s.jobs.ReleaseApplicationSlot(ctx, in.JobID); releaseErr != nil {
			s.logger.WithError(releaseErr).WithField("job_id", in.JobID.String()).Error("failed to release application slot")
		}
		return nil, err
	}
	s.metrics.IncApplications()

	s.notifier.Notify(ctx, notification.Notification{
		UserID:  reserved.RecruiterID,
		Type:    notification.TypeApplicationReceived,
		Title:   "New application",
		Message: fmt.Sprintf("%s applied to %q.", applicant.Name, reserved.Title),
		Data:    map[string]string{"job_id": reserved.ID.String(), "application_id": created.ID.String()},
	})
	if reserved.Status == job.StatusClosed && reserved.ApplicationLimitReached {
		s.metrics.IncJobsAutoClosed()
		s.notifier.Notify(ctx, notification.Notification{
			UserID:  reserved.RecruiterID,
			Type:    notification.TypeJobClosed,
			Title:   "Job closed",
			Message: fmt.Sprintf("%q reached its limit of %d applications and was closed.", reserved.Title, reserved.CurrentApplicationCount),
			Data:    map[string]string{"job_id": reserved.ID.String()},
		})
		s.logger.WithField("job_id", reserved.ID.String()).Info("job auto-closed at application limit")
	}
	return created, nil
}

func (s *ApplicationService) Withdraw(ctx context.Context, applicantID, applicationID common.UUID) (*application.Application, error) {
	current, err := s.Get(ctx, applicantID, applicationID)
	if err != nil {
		return nil, err
	}
	if !application.CanTransition(current.Status, application.StatusWithdrawn) {
		return nil, common.NewError(common.CodeConflict, fmt.Sprintf("a %s application cannot be withdrawn", current.Status), nil)
	}
	return s.apps.UpdateStatus(ctx, applicationID, application.StatusWithdrawn, current.RecruiterNote)
}

// UpdateStatus is the recruiter side of the application pipeline.
func (s *ApplicationService) UpdateStatus(ctx context.Context, recruiterID, applicationID common.UUID, status application.Status, note string) (*application.Application, error) {
	status = application.Normalize(status)
	if !application.IsKnown(status) {
		return nil, common.NewValidationError("invalid status", map[string]string{"status": "unknown application status"})
	}
	if status == application.StatusWithdrawn {
		return nil, common.NewError(common.CodeForbidden, "only the applicant can withdraw an application", nil)
	}
	current, err := s.apps.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	j, err := s.jobs.GetByID(ctx, current.JobID)
	if err != nil {
		return nil, err
	}
	if j.RecruiterID != recruiterID {
		return nil, common.NewError(common.CodeForbidden, "application belongs to another recruiter's job", nil)
	}
	if current.Status == status {
		return nil, common.NewError(common.CodeConflict, fmt.Sprintf("application is already %s", status), nil)
	}
	if !application.CanTransition(current.Status, status) {
		return nil, common.NewError(common.CodeConflict, fmt.Sprintf("cannot change application status from %s to %s", current.Status, status), nil)
	}
	if note = trimmed(note); note == "" {
		note = current.RecruiterNote
	}
	updated, err := s.apps.UpdateStatus(ctx, applicationID, status, note)
	if err != nil {
		return nil, err
	}
	s.notifier.Notify(ctx, notification.Notification{
		UserID:  updated.ApplicantID,
		Type:    notification.TypeApplicationStatus,
		Title:   "Application updated",
		Message: fmt.Sprintf("Your application to %q is now %s.", j.Title, strings.ReplaceAll(string(updated.Status), "_", " ")),
		Data:    map[string]string{"job_id": j.ID.String(), "application_id": updated.ID.String(), "status": string(updated.Status)},
	})
	return updated, nil
}

func (s *ApplicationService) ListByApplicant(ctx context.Context, applicantID common.UUID) ([]application.Application, error) {
	return s.apps.ListByApplicant(ctx, applicantID)
}

// ListForJob masks applicant emails unless the recruiter's plan includes contacts.
func (s *ApplicationService) ListForJob(ctx context.Context, recruiterID, jobID common.UUID) (*JobApplications, error) {
	j, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if j.RecruiterID != recruiterID {
		return nil, common.NewError(common.CodeForbidden, "job belongs to another recruiter", nil)
	}
	items, err := s.apps.ListByJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	decision, err := s.subs.CanPerformAction(ctx, recruiterID, subscription.ActionViewApplicantContacts)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		for i := range items {
			items[i].ApplicantEmail = maskEmail(items[i].ApplicantEmail)
		}
	}
	if items == nil {
		items = []application.Application{}
	}
	return &JobApplications{Applications: items, ContactsVisible: decision.Allowed}, nil
}

func (s *ApplicationService) Get(ctx context.Context, applicantID, applicationID common.UUID) (*application.Application, error) {
	current, err := s.apps.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if current.ApplicantID != applicantID {
		return nil, common.NewError(common.CodeNotFound, "application not found", nil)
	}
	return current, nil
}

// maskEmail keeps the first character of the local part and the domain.
func maskEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		return ""
	}
	return email[:1] + "***" + email[at:]
}
