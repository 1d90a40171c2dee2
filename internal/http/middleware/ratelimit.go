package middleware

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"

	"jobportal/internal/common"
)

// Limiter reports whether another hit for key fits into limit per window.
// Implementations fail open when their backend is unavailable.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) bool
}

func RateLimit(limiter Limiter, keyFn func(echo.Context) string, limit int, window time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if limiter == nil {
				return next(c)
			}
			key := keyFn(c)
			if key == "" {
				return next(c)
			}
			if !limiter.Allow(c.Request().Context(), key, limit, window) {
				return common.NewError(common.CodeRateLimited, "too many requests", nil)
			}
			return next(c)
		}
	}
}

// ClientIPKey builds a per-IP key under prefix.
func ClientIPKey(prefix string) func(echo.Context) string {
	return func(c echo.Context) string {
		ip := c.RealIP()
		if ip == "" {
			return ""
		}
		return prefix + ":" + ip
	}
}
