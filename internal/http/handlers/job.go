package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"jobportal/internal/app"
	"jobportal/internal/common"
	"jobportal/internal/domain/job"
	"jobportal/internal/http/response"
)

type JobHandler struct {
	jobs *app.JobService
}

func NewJobHandler(jobs *app.JobService) *JobHandler {
	return &JobHandler{jobs: jobs}
}

type jobRequest struct {
	Title           string     `json:"title" validate:"required,max=200"`
	Description     string     `json:"description" validate:"required,max=20000"`
	Location        string     `json:"location" validate:"max=200"`
	Type            string     `json:"type" validate:"required,oneof=full_time part_time contract internship remote"`
	SalaryMin       *int       `json:"salary_min" validate:"omitempty,gte=0"`
	SalaryMax       *int       `json:"salary_max" validate:"omitempty,gte=0"`
	Skills          []string   `json:"skills" validate:"max=30,dive,max=60"`
	Featured        bool       `json:"featured"`
	ExpiryDate      *time.Time `json:"expiry_date"`
	MaxApplications *int       `json:"max_applications" validate:"omitempty,gte=1"`
}

func (r jobRequest) input() app.JobInput {
	return app.JobInput{
		Title:           r.Title,
		Description:     r.Description,
		Location:        r.Location,
		Type:            job.Type(r.Type),
		SalaryMin:       r.SalaryMin,
		SalaryMax:       r.SalaryMax,
		Skills:          r.Skills,
		Featured:        r.Featured,
		ExpiryDate:      r.ExpiryDate,
		MaxApplications: r.MaxApplications,
	}
}

type jobStatusRequest struct {
	Status string `json:"status" validate:"required"`
	Reason string `json:"reason" validate:"max=1000"`
}

func (h *JobHandler) List(c echo.Context) error {
	limit, offset, err := pageParams(c)
	if err != nil {
		return err
	}
	featured, err := queryBool(c, "featured")
	if err != nil {
		return err
	}
	items, err := h.jobs.List(c.Request().Context(), app.ListJobsInput{
		Query:    c.QueryParam("q"),
		Location: c.QueryParam("location"),
		Type:     job.Type(strings.ToLower(strings.TrimSpace(c.QueryParam("type")))),
		Featured: featured,
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		return err
	}
	return response.JSON(c, http.StatusOK, items)
}

func (h *JobHandler) Get(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	item, err := h.jobs.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return response.JSON(c, http.StatusOK, item)
}

func (h *JobHandler) Create(c echo.Context) error {
	recruiterID, err := currentUser(c)
	if err != nil {
		return err
	}
	var req jobRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	created, err := h.jobs.Create(c.Request().Context(), recruiterID, req.input())
	if err != nil {
		return err
	}
	return response.Message(c, http.StatusCreated, "job created", created)
}

func (h *JobHandler) ListMine(c echo.Context) error {
	recruiterID, err := currentUser(c)
	if err != nil {
		return err
	}
	limit, offset, err := pageParams(c)
	if err != nil {
		return err
	}
	status := job.Status(strings.ToLower(strings.TrimSpace(c.QueryParam("status"))))
	items, err := h.jobs.ListByRecruiter(c.Request().Context(), recruiterID, status, limit, offset)
	if err != nil {
		return err
	}
	return response.JSON(c, http.StatusOK, items)
}

func (h *JobHandler) GetMine(c echo.Context) error {
	recruiterID, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	item, err := h.jobs.GetForRecruiter(c.Request().Context(), recruiterID, id)
	if err != nil {
		return err
	}
	return response.JSON(c, http.StatusOK, item)
}

func (h *JobHandler) Update(c echo.Context) error {
	recruiterID, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req jobRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	updated, err := h.jobs.Update(c.Request().Context(), recruiterID, id, req.input())
	if err != nil {
		return err
	}
	return response.Message(c, http.StatusOK, "job updated", updated)
}

func (h *JobHandler) UpdateStatus(c echo.Context) error {
	recruiterID, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req jobStatusRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	updated, err := h.jobs.UpdateStatus(c.Request().Context(), recruiterID, id, job.Status(strings.ToLower(strings.TrimSpace(req.Status))))
	if err != nil {
		return err
	}
	return response.Message(c, http.StatusOK, "job status updated", updated)
}

func (h *JobHandler) AdminList(c echo.Context) error {
	limit, offset, err := pageParams(c)
	if err != nil {
		return err
	}
	featured, err := queryBool(c, "featured")
	if err != nil {
		return err
	}
	filter := job.Filter{
		Query:    strings.TrimSpace(c.QueryParam("q")),
		Status:   job.Status(strings.ToLower(strings.TrimSpace(c.QueryParam("status")))),
		Featured: featured,
		Limit:    limit,
		Offset:   offset,
	}
	if raw := strings.TrimSpace(c.QueryParam("recruiter_id")); raw != "" {
		recruiterID, err := common.ParseUUID(raw)
		if err != nil {
			return common.NewValidationError("invalid recruiter_id", map[string]string{"recruiter_id": "must be a valid id"})
		}
		filter.RecruiterID = recruiterID
	}
	items, err := h.jobs.ListAll(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return response.JSON(c, http.StatusOK, items)
}

func (h *JobHandler) Moderate(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req jobStatusRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	updated, err := h.jobs.Moderate(c.Request().Context(), id, job.Status(strings.ToLower(strings.TrimSpace(req.Status))), req.Reason)
	if err != nil {
		return err
	}
	return response.Message(c, http.StatusOK, "job moderated", updated)
}
