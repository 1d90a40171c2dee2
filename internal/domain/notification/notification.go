package notification

import (
	"context"
	"time"

	"jobportal/internal/common"
)

type Type string

const (
	TypeApplicationReceived Type = "application_received"
	TypeApplicationStatus   Type = "application_status"
	TypeJobClosed           Type = "job_closed"
	TypeSubscription        Type = "subscription"
)

type Notification struct {
	ID        common.UUID       `json:"id"`
	UserID    common.UUID       `json:"user_id"`
	Type      Type              `json:"type"`
	Title     string            `json:"title"`
	Message   string            `json:"message"`
	Data      map[string]string `json:"data,omitempty"`
	Read      bool              `json:"read"`
	CreatedAt time.Time         `json:"created_at"`
}

type Repository interface {
	Create(ctx context.Context, n Notification) (*Notification, error)
	ListByUser(ctx context.Context, userID common.UUID, unreadOnly bool, limit, offset int) ([]Notification, error)
	MarkRead(ctx context.Context, userID, id common.UUID) error
	MarkAllRead(ctx context.Context, userID common.UUID) (int64, error)
	CountUnread(ctx context.Context, userID common.UUID) (int, error)
}
