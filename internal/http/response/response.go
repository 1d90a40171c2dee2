package response

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"jobportal/internal/common"
)

type envelope struct {
	Success   bool              `json:"success"`
	Message   string            `json:"message,omitempty"`
	Data      any               `json:"data,omitempty"`
	Errors    map[string]string `json:"errors,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

func JSON(c echo.Context, status int, data any) error {
	return c.JSON(status, envelope{Success: true, Data: data})
}

func Message(c echo.Context, status int, message string, data any) error {
	return c.JSON(status, envelope{Success: true, Message: message, Data: data})
}

func NoContent(c echo.Context) error {
	return c.NoContent(http.StatusNoContent)
}

// StatusFor maps an error code to the HTTP status sent to clients.
func StatusFor(code common.Code) int {
	switch code {
	case common.CodeValidation:
		return http.StatusBadRequest
	case common.CodeUnauthorized:
		return http.StatusUnauthorized
	case common.CodeForbidden, common.CodeLimitExceeded:
		return http.StatusForbidden
	case common.CodeNotFound:
		return http.StatusNotFound
	case common.CodeConflict:
		return http.StatusConflict
	case common.CodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// ErrorHandler renders every error returned by handlers and middleware in the
// failure envelope. Causes of internal errors are logged and never sent.
func ErrorHandler(logger logrus.FieldLogger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		status, body := render(err)
		body.RequestID = c.Response().Header().Get(echo.HeaderXRequestID)
		if status >= http.StatusInternalServerError {
			logger.WithFields(logrus.Fields{
				"request_id": body.RequestID,
				"method":     c.Request().Method,
				"path":       c.Path(),
			}).WithError(err).Error("request failed")
		}
		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(status)
		} else {
			writeErr = c.JSON(status, body)
		}
		if writeErr != nil {
			logger.WithError(writeErr).Warn("failed to write error response")
		}
	}
}

func render(err error) (int, envelope) {
	if appErr, ok := common.AsError(err); ok {
		status := StatusFor(appErr.Code)
		body := envelope{Message: appErr.Message, Errors: appErr.Fields}
		if status == http.StatusInternalServerError {
			body.Message = "internal server error"
			body.Errors = nil
		}
		if appErr.Code == common.CodeLimitExceeded {
			body.Data = appErr.Details
		}
		return status, body
	}
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		message := http.StatusText(httpErr.Code)
		if text, ok := httpErr.Message.(string); ok && text != "" {
			message = text
		}
		if httpErr.Code >= http.StatusInternalServerError {
			message = "internal server error"
		}
		return httpErr.Code, envelope{Message: message}
	}
	return http.StatusInternalServerError, envelope{Message: "internal server error"}
}
