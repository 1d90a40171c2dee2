package middleware

import (
	"github.com/labstack/echo/v4"

	"jobportal/internal/metrics"
)

// Metrics counts requests and server errors. Place it after RequestLogger so
// the error handler has already written the final status.
func Metrics(collector *metrics.Collector) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			collector.IncRequests()
			if c.Response().Status >= 500 {
				collector.IncErrors()
			}
			return nil
		}
	}
}
