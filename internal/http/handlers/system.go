package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"jobportal/internal/http/response"
	"jobportal/internal/maintenance"
	"jobportal/internal/metrics"
)

// Pinger is satisfied by *sql.DB and by the Redis client adapter.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	checks map[string]Pinger
}

func NewHealthHandler(checks map[string]Pinger) *HealthHandler {
	return &HealthHandler{checks: checks}
}

func (h *HealthHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()
	components := make(map[string]string, len(h.checks))
	status := http.StatusOK
	for name, check := range h.checks {
		if check == nil {
			continue
		}
		if err := check.PingContext(ctx); err != nil {
			components[name] = "down"
			status = http.StatusServiceUnavailable
			continue
		}
		components[name] = "up"
	}
	overall := "ok"
	if status != http.StatusOK {
		overall = "degraded"
	}
	return c.JSON(status, map[string]any{
		"success": status == http.StatusOK,
		"data": map[string]any{
			"status":     overall,
			"components": components,
			"time":       time.Now().UTC(),
		},
	})
}

func MetricsHandler(collector *metrics.Collector) echo.HandlerFunc {
	return echo.WrapHandler(metrics.NewHandler(collector))
}

type MaintenanceHandler struct {
	sweeper *maintenance.Sweeper
	logger  logrus.FieldLogger
}

func NewMaintenanceHandler(sweeper *maintenance.Sweeper, logger logrus.FieldLogger) *MaintenanceHandler {
	return &MaintenanceHandler{sweeper: sweeper, logger: logger}
}

func (h *MaintenanceHandler) Expire(c echo.Context) error {
	result, err := h.sweeper.RunOnce(c.Request().Context())
	if err != nil {
		return err
	}
	userID, _ := currentUser(c)
	h.logger.WithFields(logrus.Fields{
		"admin_id":              userID.String(),
		"jobs_expired":          result.JobsExpired,
		"subscriptions_expired": result.SubscriptionsExpired,
	}).Info("manual expiry sweep")
	return response.Message(c, http.StatusOK, "expiry sweep completed", result)
}
