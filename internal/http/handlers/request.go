package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"jobportal/internal/common"
	"jobportal/internal/domain/cms"
	"jobportal/internal/http/middleware"
)

var validate = validator.New()

func init() {
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := validate.RegisterValidation("hhmm", validateClock); err != nil {
		panic(err)
	}
	if err := validate.RegisterValidation("weekday", validateWeekday); err != nil {
		panic(err)
	}
}

func validateClock(fl validator.FieldLevel) bool {
	_, err := cms.ParseClock(fl.Field().String())
	return err == nil
}

func validateWeekday(fl validator.FieldLevel) bool {
	day := fl.Field().Int()
	return day >= 0 && day <= 6
}

// bind decodes the JSON body into req and validates it.
func bind(c echo.Context, req any) error {
	if err := (&echo.DefaultBinder{}).BindBody(c, req); err != nil {
		return common.NewValidationError("invalid request body", nil)
	}
	return validateStruct(req)
}

func validateStruct(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return common.NewError(common.CodeInternal, "failed to validate request", err)
	}
	fields := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields[fieldPath(fe)] = fieldMessage(fe)
	}
	return common.NewValidationError("invalid request", fields)
}

// fieldPath drops the top-level struct name from the namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if idx := strings.Index(ns, "."); idx >= 0 {
		return ns[idx+1:]
	}
	return fe.Field()
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "url", "uri":
		return "must be a valid URL"
	case "uuid":
		return "must be a valid id"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "min", "gte":
		return "must be at least " + fe.Param()
	case "max", "lte":
		return "must be at most " + fe.Param()
	case "hhmm":
		return "must be a time of day in HH:MM"
	case "weekday":
		return "must be a weekday between 0 and 6"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

func idParam(c echo.Context, name string) (common.UUID, error) {
	id, err := common.ParseUUID(c.Param(name))
	if err != nil {
		return "", common.NewValidationError("invalid "+name, map[string]string{name: "must be a valid id"})
	}
	return id, nil
}

func currentUser(c echo.Context) (common.UUID, error) {
	id, ok := middleware.UserIDFromContext(c)
	if !ok {
		return "", common.NewError(common.CodeUnauthorized, "authentication required", nil)
	}
	return id, nil
}

func queryInt(c echo.Context, name string) (int, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0, common.NewValidationError("invalid "+name, map[string]string{name: "must be a non-negative integer"})
	}
	return value, nil
}

func queryBool(c echo.Context, name string) (*bool, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, common.NewValidationError("invalid "+name, map[string]string{name: "must be true or false"})
	}
	return &value, nil
}

func pageParams(c echo.Context) (int, int, error) {
	limit, err := queryInt(c, "limit")
	if err != nil {
		return 0, 0, err
	}
	offset, err := queryInt(c, "offset")
	if err != nil {
		return 0, 0, err
	}
	return limit, offset, nil
}

func boolOr(value *bool, fallback bool) bool {
	if value == nil {
		return fallback
	}
	return *value
}
