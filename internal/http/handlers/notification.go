package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"jobportal/internal/app"
	"jobportal/internal/domain/notification"
	"jobportal/internal/http/response"
)

type NotificationHandler struct {
	notifications *app.NotificationService
}

func NewNotificationHandler(notifications *app.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

func (h *NotificationHandler) List(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	limit, offset, err := pageParams(c)
	if err != nil {
		return err
	}
	unread, err := queryBool(c, "unread")
	if err != nil {
		return err
	}
	items, err := h.notifications.List(c.Request().Context(), userID, boolOr(unread, false), limit, offset)
	if err != nil {
		return err
	}
	if items == nil {
		items = []notification.Notification{}
	}
	return response.JSON(c, http.StatusOK, items)
}

func (h *NotificationHandler) UnreadCount(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	count, err := h.notifications.UnreadCount(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return response.JSON(c, http.StatusOK, map[string]int{"count": count})
}

func (h *NotificationHandler) MarkRead(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.notifications.MarkRead(c.Request().Context(), userID, id); err != nil {
		return err
	}
	return response.Message(c, http.StatusOK, "notification marked as read", nil)
}

func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	updated, err := h.notifications.MarkAllRead(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return response.Message(c, http.StatusOK, "notifications marked as read", map[string]int64{"updated": updated})
}
