package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"jobportal/internal/app"
	"jobportal/internal/common"
	"jobportal/internal/domain/subscription"
	"jobportal/internal/http/response"
)

type SubscriptionHandler struct {
	subscriptions *app.SubscriptionService
}

func NewSubscriptionHandler(subscriptions *app.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptions: subscriptions}
}

type subscribeRequest struct {
	PlanID string `json:"plan_id" validate:"required,uuid"`
}

type featuresRequest struct {
	MaxActiveJobs            *int `json:"max_active_jobs" validate:"omitempty,gte=0"`
	MaxApplicationsPerJob    *int `json:"max_applications_per_job" validate:"omitempty,gte=1"`
	JobValidityDays          int  `json:"job_validity_days" validate:"required,gte=1,lte=365"`
	MaxFeaturedJobs          *int `json:"max_featured_jobs" validate:"omitempty,gte=0"`
	CanViewApplicantContacts bool `json:"can_view_applicant_contacts"`
}

type planRequest struct {
	Code         string          `json:"code" validate:"required,max=40"`
	Name         string          `json:"name" validate:"required,max=120"`
	Description  string          `json:"description" validate:"max=2000"`
	Price        float64         `json:"price" validate:"gte=0"`
	Currency     string          `json:"currency" validate:"omitempty,len=3"`
	DurationDays int             `json:"duration_days" validate:"required,gte=1"`
	Features     featuresRequest `json:"features"`
	IsActive     *bool           `json:"is_active"`
}

func (r planRequest) input() app.PlanInput {
	return app.PlanInput{
		Code:         r.Code,
		Name:         r.Name,
		Description:  r.Description,
		Price:        r.Price,
		Currency:     r.Currency,
		DurationDays: r.DurationDays,
		Features: subscription.Features{
			MaxActiveJobs:            r.Features.MaxActiveJobs,
			MaxApplicationsPerJob:    r.Features.MaxApplicationsPerJob,
			JobValidityDays:          r.Features.JobValidityDays,
			MaxFeaturedJobs:          r.Features.MaxFeaturedJobs,
			CanViewApplicantContacts: r.Features.CanViewApplicantContacts,
		},
		IsActive: boolOr(r.IsActive, true),
	}
}

func (h *SubscriptionHandler) ListPlans(c echo.Context) error {
	plans, err := h.subscriptions.ListPlans(c.Request().Context(), true)
	if err != nil {
		return err
	}
	return response.JSON(c, http.StatusOK, plans)
}

func (h *SubscriptionHandler) Current(c echo.Context) error {
	recruiterID, err := currentUser(c)
	if err != nil {
		return err
	}
	active, err := h.subscriptions.GetActiveSubscription(c.Request().Context(), recruiterID)
	if err != nil {
		return err
	}
	return response.JSON(c, http.StatusOK, active)
}

func (h *SubscriptionHandler) Subscribe(c echo.Context) error {
	recruiterID, err := currentUser(c)
	if err != nil {
		return err
	}
	var req subscribeRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	planID, err := common.ParseUUID(req.PlanID)
	if err != nil {
		return common.NewValidationError("invalid request", map[string]string{"plan_id": "must be a valid id"})
	}
	active, err := h.subscriptions.Subscribe(c.Request().Context(), recruiterID, planID)
	if err != nil {
		return err
	}
	return response.Message(c, http.StatusCreated, "subscribed", active)
}

func (h *SubscriptionHandler) Cancel(c echo.Context) error {
	recruiterID, err := currentUser(c)
	if err != nil {
		return err
	}
	cancelled, err := h.subscriptions.Cancel(c.Request().Context(), recruiterID)
	if err != nil {
		return err
	}
	return response.Message(c, http.StatusOK, "subscription cancelled", cancelled)
}

func (h *SubscriptionHandler) History(c echo.Context) error {
	recruiterID, err := currentUser(c)
	if err != nil {
		return err
	}
	items, err := h.subscriptions.History(c.Request().Context(), recruiterID)
	if err != nil {
		return err
	}
	return response.JSON(c, http.StatusOK, items)
}

// Check reports whether the recruiter's plan allows an action without
// performing it.
func (h *SubscriptionHandler) Check(c echo.Context) error {
	recruiterID, err := currentUser(c)
	if err != nil {
		return err
	}
	action, ok := subscription.ParseAction(c.QueryParam("action"))
	if !ok {
		return common.NewValidationError("invalid action", map[string]string{"action": "must be one of: post_job feature_job view_applicant_contacts"})
	}
	decision, err := h.subscriptions.CanPerformAction(c.Request().Context(), recruiterID, action)
	if err != nil {
		return err
	}
	return response.JSON(c, http.StatusOK, decision)
}

func (h *SubscriptionHandler) AdminListPlans(c echo.Context) error {
	plans, err := h.subscriptions.ListPlans(c.Request().Context(), false)
	if err != nil {
		return err
	}
	return response.JSON(c, http.StatusOK, plans)
}

func (h *SubscriptionHandler) CreatePlan(c echo.Context) error {
	var req planRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	plan, err := h.subscriptions.CreatePlan(c.Request().Context(), req.input())
	if err != nil {
		return err
	}
	return response.Message(c, http.StatusCreated, "plan created", plan)
}

func (h *SubscriptionHandler) UpdatePlan(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req planRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	plan, err := h.subscriptions.UpdatePlan(c.Request().Context(), id, req.input())
	if err != nil {
		return err
	}
	return response.Message(c, http.StatusOK, "plan updated", plan)
}
