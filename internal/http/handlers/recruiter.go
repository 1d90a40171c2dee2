package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"jobportal/internal/app"
	"jobportal/internal/domain/recruiter"
	"jobportal/internal/http/response"
)

type RecruiterHandler struct {
	recruiters *app.RecruiterService
}

func NewRecruiterHandler(recruiters *app.RecruiterService) *RecruiterHandler {
	return &RecruiterHandler{recruiters: recruiters}
}

type profileRequest struct {
	CompanyName string `json:"company_name" validate:"required,max=200"`
	Website     string `json:"website" validate:"omitempty,url,max=2048"`
	Industry    string `json:"industry" validate:"max=120"`
	CompanySize string `json:"company_size" validate:"max=40"`
	Description string `json:"description" validate:"max=5000"`
	Location    string `json:"location" validate:"max=200"`
}

type recruiterStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active suspended"`
}

type verifyRequest struct {
	Verified *bool `json:"verified" validate:"required"`
}

func (h *RecruiterHandler) GetProfile(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	profile, err := h.recruiters.GetProfile(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return response.JSON(c, http.StatusOK, profile)
}

func (h *RecruiterHandler) UpsertProfile(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	var req profileRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	profile, err := h.recruiters.UpsertProfile(c.Request().Context(), userID, app.ProfileInput{
		CompanyName: req.CompanyName,
		Website:     req.Website,
		Industry:    req.Industry,
		CompanySize: req.CompanySize,
		Description: req.Description,
		Location:    req.Location,
	})
	if err != nil {
		return err
	}
	return response.Message(c, http.StatusOK, "profile saved", profile)
}

func (h *RecruiterHandler) AdminList(c echo.Context) error {
	limit, offset, err := pageParams(c)
	if err != nil {
		return err
	}
	verified, err := queryBool(c, "verified")
	if err != nil {
		return err
	}
	items, err := h.recruiters.List(c.Request().Context(), recruiter.Filter{
		Status:   recruiter.Status(strings.ToLower(strings.TrimSpace(c.QueryParam("status")))),
		Verified: verified,
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		return err
	}
	return response.JSON(c, http.StatusOK, items)
}

func (h *RecruiterHandler) SetStatus(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req recruiterStatusRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	updated, err := h.recruiters.SetStatus(c.Request().Context(), id, recruiter.Status(req.Status))
	if err != nil {
		return err
	}
	return response.Message(c, http.StatusOK, "recruiter status updated", updated)
}

func (h *RecruiterHandler) SetVerified(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req verifyRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	updated, err := h.recruiters.SetVerified(c.Request().Context(), id, *req.Verified)
	if err != nil {
		return err
	}
	return response.Message(c, http.StatusOK, "recruiter verification updated", updated)
}
