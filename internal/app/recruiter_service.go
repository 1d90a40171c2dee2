package app

import (
	"context"
	"net/url"

	"github.com/sirupsen/logrus"

	"jobportal/internal/common"
	"jobportal/internal/domain/recruiter"
	"jobportal/internal/domain/user"
)

type RecruiterService struct {
	recruiters recruiter.Repository
	users      user.Repository
	logger     logrus.FieldLogger
}

func NewRecruiterService(recruiters recruiter.Repository, users user.Repository, logger logrus.FieldLogger) *RecruiterService {
	return &RecruiterService{recruiters: recruiters, users: users, logger: logger}
}

type ProfileInput struct {
	CompanyName string
	Website     string
	Industry    string
	CompanySize string
	Description string
	Location    string
}

func (s *RecruiterService) GetProfile(ctx context.Context, userID common.UUID) (*recruiter.Recruiter, error) {
	return s.recruiters.GetByUserID(ctx, userID)
}

func (s *RecruiterService) UpsertProfile(ctx context.Context, userID common.UUID, in ProfileInput) (*recruiter.Recruiter, error) {
	account, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if account.Role != user.RoleRecruiter {
		return nil, common.NewError(common.CodeForbidden, "only recruiters have a company profile", nil)
	}
	fields := map[string]string{}
	if trimmed(in.CompanyName) == "" {
		fields["company_name"] = "company_name is required"
	}
	if website := trimmed(in.Website); website != "" {
		if parsed, err := url.ParseRequestURI(website); err != nil || parsed.Host == "" {
			fields["website"] = "website must be an absolute URL"
		}
	}
	if len(fields) > 0 {
		return nil, common.NewValidationError("invalid recruiter profile", fields)
	}
	return s.recruiters.Upsert(ctx, recruiter.Recruiter{
		UserID:      userID,
		CompanyName: trimmed(in.CompanyName),
		Website:     trimmed(in.Website),
		Industry:    trimmed(in.Industry),
		CompanySize: trimmed(in.CompanySize),
		Description: trimmed(in.Description),
		Location:    trimmed(in.Location),
	})
}

func (s *RecruiterService) List(ctx context.Context, filter recruiter.Filter) ([]recruiter.Recruiter, error) {
	filter.Limit, filter.Offset = normalizePage(filter.Limit, filter.Offset)
	return s.recruiters.List(ctx, filter)
}

func (s *RecruiterService) SetStatus(ctx context.Context, userID common.UUID, status recruiter.Status) (*recruiter.Recruiter, error) {
	if status != recruiter.StatusActive && status != recruiter.StatusSuspended {
		return nil, common.NewValidationError("invalid recruiter status", map[string]string{"status": "status must be active or suspended"})
	}
	updated, err := s.recruiters.SetStatus(ctx, userID, status)
	if err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{"recruiter_id": userID.String(), "status": string(status)}).Info("recruiter status changed")
	return updated, nil
}

func (s *RecruiterService) SetVerified(ctx context.Context, userID common.UUID, verified bool) (*recruiter.Recruiter, error) {
	return s.recruiters.SetVerified(ctx, userID, verified)
}
