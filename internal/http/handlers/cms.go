package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"jobportal/internal/app"
	"jobportal/internal/domain/cms"
	"jobportal/internal/http/middleware"
	"jobportal/internal/http/response"
)

type CMSHandler struct {
	cms *app.CMSService
}

func NewCMSHandler(service *app.CMSService) *CMSHandler {
	return &CMSHandler{cms: service}
}

type audienceRequest struct {
	Roles        []string `json:"roles" validate:"max=10,dive,required,max=40"`
	ShowToGuests bool     `json:"show_to_guests"`
}

type scheduleRequest struct {
	StartDate  *time.Time `json:"start_date"`
	EndDate    *time.Time `json:"end_date"`
	DaysOfWeek []int      `json:"days_of_week" validate:"max=7,dive,weekday"`
	StartTime  string     `json:"start_time" validate:"omitempty,hhmm"`
	EndTime    string     `json:"end_time" validate:"omitempty,hhmm"`
}

func (r audienceRequest) audience() cms.Audience {
	return cms.Audience{Roles: r.Roles, ShowToGuests: r.ShowToGuests}
}

func (r scheduleRequest) schedule() cms.Schedule {
	return cms.Schedule{
		StartDate:  r.StartDate,
		EndDate:    r.EndDate,
		DaysOfWeek: r.DaysOfWeek,
		StartTime:  r.StartTime,
		EndTime:    r.EndTime,
	}
}

type bannerRequest struct {
	Title          string          `json:"title" validate:"required,max=200"`
	Subtitle       string          `json:"subtitle" validate:"max=500"`
	ImageURL       string          `json:"image_url" validate:"omitempty,url,max=2048"`
	LinkURL        string          `json:"link_url" validate:"omitempty,uri,max=2048"`
	Placement      string          `json:"placement" validate:"required,max=60"`
	Priority       int             `json:"priority"`
	IsActive       *bool           `json:"is_active"`
	TargetAudience audienceRequest `json:"target_audience"`
	Schedule       scheduleRequest `json:"schedule"`
}

type cardRequest struct {
	Title          string          `json:"title" validate:"required,max=200"`
	Description    string          `json:"description" validate:"max=2000"`
	Icon           string          `json:"icon" validate:"max=200"`
	LinkURL        string          `json:"link_url" validate:"omitempty,uri,max=2048"`
	Section        string          `json:"section" validate:"required,max=60"`
	SortOrder      int             `json:"sort_order"`
	IsActive       *bool           `json:"is_active"`
	TargetAudience audienceRequest `json:"target_audience"`
	Schedule       scheduleRequest `json:"schedule"`
}

func (r bannerRequest) input() app.BannerInput {
	return app.BannerInput{
		Title:          r.Title,
		Subtitle:       r.Subtitle,
		ImageURL:       r.ImageURL,
		LinkURL:        r.LinkURL,
		Placement:      r.Placement,
		Priority:       r.Priority,
		IsActive:       boolOr(r.IsActive, true),
		TargetAudience: r.TargetAudience.audience(),
		Schedule:       r.Schedule.schedule(),
	}
}

func (r cardRequest) input() app.CardInput {
	return app.CardInput{
		Title:          r.Title,
		Description:    r.Description,
		Icon:           r.Icon,
		LinkURL:        r.LinkURL,
		Section:        r.Section,
		SortOrder:      r.SortOrder,
		IsActive:       boolOr(r.IsActive, true),
		TargetAudience: r.TargetAudience.audience(),
		Schedule:       r.Schedule.schedule(),
	}
}

func viewer(c echo.Context) cms.Viewer {
	role, ok := middleware.RoleFromContext(c)
	if !ok {
		return cms.Viewer{}
	}
	return cms.Viewer{Role: string(role)}
}

func (h *CMSHandler) Banners(c echo.Context) error {
	items, err := h.cms.VisibleBanners(c.Request().Context(), viewer(c), strings.TrimSpace(c.QueryParam("placement")))
	if err != nil {
		return err
	}
	if items == nil {
		items = []cms.Banner{}
	}
	return response.JSON(c, http.StatusOK, items)
}

func (h *CMSHandler) Cards(c echo.Context) error {
	items, err := h.cms.VisibleCards(c.Request().Context(), viewer(c), strings.TrimSpace(c.QueryParam("section")))
	if err != nil {
		return err
	}
	if items == nil {
		items = []cms.Card{}
	}
	return response.JSON(c, http.StatusOK, items)
}

func (h *CMSHandler) AdminListBanners(c echo.Context) error {
	active, err := queryBool(c, "active")
	if err != nil {
		return err
	}
	items, err := h.cms.ListBanners(c.Request().Context(), cms.BannerFilter{
		Placement:  strings.TrimSpace(c.QueryParam("placement")),
		ActiveOnly: boolOr(active, false),
	})
	if err != nil {
		return err
	}
	return response.JSON(c, http.StatusOK, items)
}

func (h *CMSHandler) CreateBanner(c echo.Context) error {
	var req bannerRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	created, err := h.cms.CreateBanner(c.Request().Context(), req.input())
	if err != nil {
		return err
	}
	return response.Message(c, http.StatusCreated, "banner created", created)
}

func (h *CMSHandler) UpdateBanner(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req bannerRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	updated, err := h.cms.UpdateBanner(c.Request().Context(), id, req.input())
	if err != nil {
		return err
	}
	return response.Message(c, http.StatusOK, "banner updated", updated)
}

func (h *CMSHandler) DeleteBanner(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.cms.DeleteBanner(c.Request().Context(), id); err != nil {
		return err
	}
	return response.Message(c, http.StatusOK, "banner deleted", nil)
}

func (h *CMSHandler) AdminListCards(c echo.Context) error {
	active, err := queryBool(c, "active")
	if err != nil {
		return err
	}
	items, err := h.cms.ListCards(c.Request().Context(), cms.CardFilter{
		Section:    strings.TrimSpace(c.QueryParam("section")),
		ActiveOnly: boolOr(active, false),
	})
	if err != nil {
		return err
	}
	return response.JSON(c, http.StatusOK, items)
}

func (h *CMSHandler) CreateCard(c echo.Context) error {
	var req cardRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	created, err := h.cms.CreateCard(c.Request().Context(), req.input())
	if err != nil {
		return err
	}
	return response.Message(c, http.StatusCreated, "card created", created)
}

func (h *CMSHandler) UpdateCard(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req cardRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	updated, err := h.cms.UpdateCard(c.Request().Context(), id, req.input())
	if err != nil {
		return err
	}
	return response.Message(c, http.StatusOK, "card updated", updated)
}

func (h *CMSHandler) DeleteCard(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.cms.DeleteCard(c.Request().Context(), id); err != nil {
		return err
	}
	return response.Message(c, http.StatusOK, "card deleted", nil)
}
