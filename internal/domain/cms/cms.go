package cms

import (
	"time"

	"jobportal/internal/common"
)

type Banner struct {
	ID             common.UUID `json:"id"`
	Title          string      `json:"title"`
	Subtitle       string      `json:"subtitle,omitempty"`
	ImageURL       string      `json:"image_url,omitempty"`
	LinkURL        string      `json:"link_url,omitempty"`
	Placement      string      `json:"placement"`
	Priority       int         `json:"priority"`
	IsActive       bool        `json:"is_active"`
	TargetAudience Audience    `json:"target_audience"`
	Schedule       Schedule    `json:"schedule"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

func (b Banner) VisibleTo(viewer Viewer, now time.Time) bool {
	return b.IsActive && Visible(b.TargetAudience, b.Schedule, viewer, now)
}

type Card struct {
	ID             common.UUID `json:"id"`
	Title          string      `json:"title"`
	Description    string      `json:"description,omitempty"`
	Icon           string      `json:"icon,omitempty"`
	LinkURL        string      `json:"link_url,omitempty"`
	Section        string      `json:"section"`
	SortOrder      int         `json:"sort_order"`
	IsActive       bool        `json:"is_active"`
	TargetAudience Audience    `json:"target_audience"`
	Schedule       Schedule    `json:"schedule"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

func (c Card) VisibleTo(viewer Viewer, now time.Time) bool {
	return c.IsActive && Visible(c.TargetAudience, c.Schedule, viewer, now)
}
