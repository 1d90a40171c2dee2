package cms

import (
	"fmt"
	"strings"
	"time"
)

// RoleAll matches every signed-in role.
const RoleAll = "all"

type Audience struct {
	Roles        []string `json:"roles"`
	ShowToGuests bool     `json:"show_to_guests"`
}

// Schedule limits when an item is shown. Zero values leave that dimension open.
// StartTime and EndTime are "HH:MM"; an end before the start wraps past midnight.
type Schedule struct {
	StartDate  *time.Time `json:"start_date,omitempty"`
	EndDate    *time.Time `json:"end_date,omitempty"`
	DaysOfWeek []int      `json:"days_of_week,omitempty"`
	StartTime  string     `json:"start_time,omitempty"`
	EndTime    string     `json:"end_time,omitempty"`
}

// Viewer is the requester an item is evaluated for. An empty Role is a guest.
type Viewer struct {
	Role string
}

func (v Viewer) IsGuest() bool {
	return strings.TrimSpace(v.Role) == ""
}

func Visible(audience Audience, schedule Schedule, viewer Viewer, now time.Time) bool {
	return audience.Allows(viewer) && schedule.Active(now)
}

func (a Audience) Allows(viewer Viewer) bool {
	if viewer.IsGuest() {
		return a.ShowToGuests
	}
	if len(a.Roles) == 0 {
		return true
	}
	for _, role := range a.Roles {
		role = strings.TrimSpace(role)
		if strings.EqualFold(role, RoleAll) || strings.EqualFold(role, strings.TrimSpace(viewer.Role)) {
			return true
		}
	}
	return false
}

func (s Schedule) Active(now time.Time) bool {
	if s.StartDate != nil && now.Before(*s.StartDate) {
		return false
	}
	if s.EndDate != nil && now.After(*s.EndDate) {
		return false
	}
	if len(s.DaysOfWeek) > 0 && !containsDay(s.DaysOfWeek, int(now.Weekday())) {
		return false
	}
	return s.withinTimeOfDay(now)
}

func (s Schedule) withinTimeOfDay(now time.Time) bool {
	if s.StartTime == "" && s.EndTime == "" {
		return true
	}
	start, end := 0, 24*60-1
	if s.StartTime != "" {
		parsed, err := ParseClock(s.StartTime)
		if err != nil {
			return false
		}
		start = parsed
	}
	if s.EndTime != "" {
		parsed, err := ParseClock(s.EndTime)
		if err != nil {
			return false
		}
		end = parsed
	}
	minute := now.Hour()*60 + now.Minute()
	if start <= end {
		return minute >= start && minute <= end
	}
	return minute >= start || minute <= end
}

// ParseClock converts "HH:MM" to minutes after midnight.
func ParseClock(value string) (int, error) {
	parsed, err := time.Parse("15:04", strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q", value)
	}
	return parsed.Hour()*60 + parsed.Minute(), nil
}

func containsDay(days []int, day int) bool {
	for _, d := range days {
		if d == day {
			return true
		}
	}
	return false
}
