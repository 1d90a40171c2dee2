package application

import (
	"strings"
	"time"

	"jobportal/internal/common"
)

type Status string

const (
	StatusPending     Status = "pending"
	StatusReviewed    Status = "reviewed"
	StatusShortlisted Status = "shortlisted"
	StatusInterview   Status = "interview"
	StatusHired       Status = "hired"
	StatusRejected    Status = "rejected"
	StatusWithdrawn   Status = "withdrawn"
)

type Application struct {
	ID             common.UUID `json:"id"`
	JobID          common.UUID `json:"job_id"`
	ApplicantID    common.UUID `json:"applicant_id"`
	ApplicantName  string      `json:"applicant_name"`
	ApplicantEmail string      `json:"applicant_email,omitempty"`
	ResumeURL      string      `json:"resume_url,omitempty"`
	CoverLetter    string      `json:"cover_letter,omitempty"`
	Status         Status      `json:"status"`
	RecruiterNote  string      `json:"recruiter_note,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

func Normalize(status Status) Status {
	normalized := Status(strings.ToLower(strings.TrimSpace(string(status))))
	switch normalized {
	case "review", "in_review":
		return StatusReviewed
	case "interviewing", "invited":
		return StatusInterview
	case "applied":
		return StatusPending
	}
	return normalized
}

func IsKnown(status Status) bool {
	switch status {
	case StatusPending, StatusReviewed, StatusShortlisted, StatusInterview, StatusHired, StatusRejected, StatusWithdrawn:
		return true
	default:
		return false
	}
}

func IsFinal(status Status) bool {
	return status == StatusHired || status == StatusRejected || status == StatusWithdrawn
}

func CanTransition(from, to Status) bool {
	switch from {
	case StatusPending:
		return to == StatusReviewed || to == StatusShortlisted || to == StatusInterview || to == StatusRejected || to == StatusHired || to == StatusWithdrawn
	case StatusReviewed:
		return to == StatusShortlisted || to == StatusInterview || to == StatusRejected || to == StatusHired || to == StatusWithdrawn
	case StatusShortlisted:
		return to == StatusInterview || to == StatusRejected || to == StatusHired || to == StatusWithdrawn
	case StatusInterview:
		return to == StatusHired || to == StatusRejected || to == StatusWithdrawn
	default:
		return false
	}
}
