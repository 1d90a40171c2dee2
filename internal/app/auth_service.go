package app

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"jobportal/internal/common"
	"jobportal/internal/domain/user"
	"jobportal/internal/security"
)

const minPasswordLength = 8

type AuthService struct {
	users     user.Repository
	tokens    *security.JWTProvider
	accessTTL time.Duration
	logger    logrus.FieldLogger
}

func NewAuthService(users user.Repository, tokens *security.JWTProvider, accessTTL time.Duration, logger logrus.FieldLogger) *AuthService {
	return &AuthService{users: users, tokens: tokens, accessTTL: accessTTL, logger: logger}
}

type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Role     user.Role
}

type AuthResult struct {
	AccessToken string     `json:"access_token"`
	ExpiresAt   time.Time  `json:"expires_at"`
	User        *user.User `json:"user"`
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	email := strings.ToLower(trimmed(in.Email))
	fields := map[string]string{}
	if _, err := mail.ParseAddress(email); err != nil {
		fields["email"] = "email is invalid"
	}
	if len(in.Password) < minPasswordLength {
		fields["password"] = "password must be at least 8 characters"
	}
	if trimmed(in.Name) == "" {
		fields["name"] = "name is required"
	}
	if in.Role != user.RoleJobSeeker && in.Role != user.RoleRecruiter {
		fields["role"] = "role must be jobseeker or recruiter"
	}
	if len(fields) > 0 {
		return nil, common.NewValidationError("invalid registration", fields)
	}
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, common.NewError(common.CodeConflict, "email already registered", nil)
	} else if !common.Is(err, common.CodeNotFound) {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to hash password", err)
	}
	created, err := s.users.Create(ctx, user.User{
		Email:        email,
		Name:         trimmed(in.Name),
		PasswordHash: string(hash),
		Role:         in.Role,
	})
	if err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{"user_id": created.ID.String(), "role": string(created.Role)}).Info("user registered")
	return s.issue(created)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	account, err := s.users.GetByEmail(ctx, strings.ToLower(trimmed(email)))
	if err != nil {
		if common.Is(err, common.CodeNotFound) {
			return nil, common.NewError(common.CodeUnauthorized, "invalid email or password", nil)
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, common.NewError(common.CodeUnauthorized, "invalid email or password", nil)
	}
	return s.issue(account)
}

func (s *AuthService) Me(ctx context.Context, userID common.UUID) (*user.User, error) {
	return s.users.GetByID(ctx, userID)
}

func (s *AuthService) issue(account *user.User) (*AuthResult, error) {
	token, expiresAt, err := s.tokens.Generate(account.ID, string(account.Role), s.accessTTL)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to issue token", err)
	}
	return &AuthResult{AccessToken: token, ExpiresAt: expiresAt, User: account}, nil
}
