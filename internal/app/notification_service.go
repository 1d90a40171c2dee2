package app

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"jobportal/internal/common"
	"jobportal/internal/domain/notification"
)

type NotificationService struct {
	repo   notification.Repository
	logger logrus.FieldLogger
}

func NewNotificationService(repo notification.Repository, logger logrus.FieldLogger) *NotificationService {
	return &NotificationService{repo: repo, logger: logger}
}

// Notify stores a notification. Delivery failures are logged and swallowed so
// they never fail the action that triggered them.
func (s *NotificationService) Notify(ctx context.Context, n notification.Notification) {
	if s == nil || s.repo == nil || n.UserID.IsZero() {
		return
	}
	if _, err := s.repo.Create(ctx, n); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"user_id": n.UserID.String(),
			"type":    string(n.Type),
		}).Warn("failed to store notification")
	}
}

func (s *NotificationService) List(ctx context.Context, userID common.UUID, unreadOnly bool, limit, offset int) ([]notification.Notification, error) {
	limit, offset = normalizePage(limit, offset)
	return s.repo.ListByUser(ctx, userID, unreadOnly, limit, offset)
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, id common.UUID) error {
	return s.repo.MarkRead(ctx, userID, id)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID common.UUID) (int64, error) {
	return s.repo.MarkAllRead(ctx, userID)
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID common.UUID) (int, error) {
	return s.repo.CountUnread(ctx, userID)
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func trimmed(value string) string {
	return strings.TrimSpace(value)
}
