package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"jobportal/internal/app"
	"jobportal/internal/common"
	"jobportal/internal/domain/application"
	"jobportal/internal/http/middleware"
	"jobportal/internal/http/response"
)

const (
	applyRateLimit  = 3
	applyRateWindow = time.Minute
)

type ApplicationHandler struct {
	applications *app.ApplicationService
	limiter      middleware.Limiter
}

func NewApplicationHandler(applications *app.ApplicationService, limiter middleware.Limiter) *ApplicationHandler {
	return &ApplicationHandler{applications: applications, limiter: limiter}
}

type applyRequest struct {
	JobID       string `json:"job_id" validate:"required,uuid"`
	CoverLetter string `json:"cover_letter" validate:"max=5000"`
	ResumeURL   string `json:"resume_url" validate:"omitempty,url,max=2048"`
}

type applicationStatusRequest struct {
	Status string `json:"status" validate:"required"`
	Note   string `json:"note" validate:"max=2000"`
}

func (h *ApplicationHandler) Apply(c echo.Context) error {
	applicantID, err := currentUser(c)
	if err != nil {
		return err
	}
	var req applyRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	jobID, err := common.ParseUUID(req.JobID)
	if err != nil {
		return common.NewValidationError("invalid request", map[string]string{"job_id": "must be a valid id"})
	}
	if h.limiter != nil {
		key := "apply:" + jobID.String() + ":" + applicantID.String()
		if !h.limiter.Allow(c.Request().Context(), key, applyRateLimit, applyRateWindow) {
			return common.NewError(common.CodeRateLimited, "apply rate limit exceeded", nil)
		}
	}
	created, err := h.applications.Apply(c.Request().Context(), applicantID, app.ApplyInput{
		JobID:       jobID,
		CoverLetter: req.CoverLetter,
		ResumeURL:   req.ResumeURL,
	})
	if err != nil {
		return err
	}
	return response.Message(c, http.StatusCreated, "application submitted", created)
}

func (h *ApplicationHandler) ListMine(c echo.Context) error {
	applicantID, err := currentUser(c)
	if err != nil {
		return err
	}
	items, err := h.applications.ListByApplicant(c.Request().Context(), applicantID)
	if err != nil {
		return err
	}
	if items == nil {
		items = []application.Application{}
	}
	return response.JSON(c, http.StatusOK, items)
}

func (h *ApplicationHandler) GetMine(c echo.Context) error {
	applicantID, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	item, err := h.applications.Get(c.Request().Context(), applicantID, id)
	if err != nil {
		return err
	}
	return response.JSON(c, http.StatusOK, item)
}

func (h *ApplicationHandler) Withdraw(c echo.Context) error {
	applicantID, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	updated, err := h.applications.Withdraw(c.Request().Context(), applicantID, id)
	if err != nil {
		return err
	}
	return response.Message(c, http.StatusOK, "application withdrawn", updated)
}

func (h *ApplicationHandler) ListForJob(c echo.Context) error {
	recruiterID, err := currentUser(c)
	if err != nil {
		return err
	}
	jobID, err := idParam(c, "id")
	if err != nil {
		return err
	}
	result, err := h.applications.ListForJob(c.Request().Context(), recruiterID, jobID)
	if err != nil {
		return err
	}
	return response.JSON(c, http.StatusOK, result)
}

func (h *ApplicationHandler) UpdateStatus(c echo.Context) error {
	recruiterID, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req applicationStatusRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	status := application.Status(strings.ToLower(strings.TrimSpace(req.Status)))
	updated, err := h.applications.UpdateStatus(c.Request().Context(), recruiterID, id, status, req.Note)
	if err != nil {
		return err
	}
	return response.Message(c, http.StatusOK, "application status updated", updated)
}
