package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"

	"shramik-backend/internal/middleware"
	"shramik-backend/internal/usecase"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// parseBody decodes the JSON body into req and runs its validate tags.
func parseBody(c *fiber.Ctx, req interface{}) error {
	if len(c.Body()) == 0 {
		return usecase.ErrInvalidInput.WithMessage("request body is empty")
	}
	if err := c.BodyParser(req); err != nil {
		return usecase.ErrInvalidInput.WithMessage("%s", FormatValidationError(err))
	}
	if err := validate.Struct(req); err != nil {
		return usecase.ErrInvalidInput.WithMessage("%s", FormatValidationError(err))
	}
	return nil
}

// FormatValidationError turns decode and validation errors into one readable line.
func FormatValidationError(err error) string {
	if err == nil {
		return ""
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return fmt.Sprintf("Invalid JSON at byte offset %d", syntaxErr.Offset)
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return fmt.Sprintf("Field '%s' should be of type %s", typeErr.Field, typeErr.Type.String())
	}

	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		out := make([]string, 0, len(ve))
		for _, fe := range ve {
			out = append(out, formatFieldError(fe))
		}
		return strings.Join(out, ", ")
	}

	return err.Error()
}

func formatFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("Field '%s' is required", fe.Field())
	case "email":
		return fmt.Sprintf("Field '%s' must be a valid email", fe.Field())
	case "min":
		return fmt.Sprintf("Field '%s' must be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("Field '%s' must be at most %s", fe.Field(), fe.Param())
	case "gt":
		return fmt.Sprintf("Field '%s' must be greater than %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("Field '%s' must be one of: %s", fe.Field(), fe.Param())
	case "datetime":
		return fmt.Sprintf("Field '%s' must be a date formatted as %s", fe.Field(), fe.Param())
	}
	return fmt.Sprintf("Field '%s' failed validation for '%s'", fe.Field(), fe.Tag())
}

// StatusFor maps a domain error kind to its HTTP status.
func StatusFor(kind usecase.Kind) int {
	switch kind {
	case usecase.KindValidation:
		return fiber.StatusBadRequest
	case usecase.KindUnauthenticated:
		return fiber.StatusUnauthorized
	case usecase.KindUnverified, usecase.KindForbidden:
		return fiber.StatusForbidden
	case usecase.KindNotFound:
		return fiber.StatusNotFound
	case usecase.KindConflict:
		return fiber.StatusConflict
	case usecase.KindTransient:
		return fiber.StatusServiceUnavailable
	case usecase.KindGateway, usecase.KindNotRecorded:
		return fiber.StatusBadGateway
	case usecase.KindOutcomeUnknown:
		return fiber.StatusGatewayTimeout
	}
	return fiber.StatusInternalServerError
}

// respondError writes {"success":false,"error","code"} and, when given, the data the caller
// needs to follow up (an attempt id to reconcile, for example).
func respondError(c *fiber.Ctx, err error, data ...interface{}) error {
	var de *usecase.Error
	if !errors.As(err, &de) {
		middleware.Logger(c).Error("unhandled error", "path", c.Path(), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "internal server error",
			"code":    "internal",
		})
	}

	status := StatusFor(de.Kind)
	if status >= fiber.StatusInternalServerError {
		middleware.Logger(c).Warn("request failed", "path", c.Path(), "code", de.Code, "error", err)
	}

	body := fiber.Map{
		"success": false,
		"error":   de.Message,
		"code":    de.Code,
	}
	if len(data) > 0 && !isNil(data[0]) {
		body["data"] = data[0]
	}
	return c.Status(status).JSON(body)
}

func isNil(v interface{}) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

func respondOK(c *fiber.Ctx, message string, data interface{}) error {
	return c.JSON(fiber.Map{
		"success": true,
		"message": message,
		"data":    data,
	})
}

// ErrorHandler is the app-wide fiber error handler for errors no handler turned into a response.
func ErrorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
		}
		if code >= fiber.StatusInternalServerError {
			logger.Error("request error", "method", c.Method(), "path", c.Path(), "error", err)
		}
		return c.Status(code).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
			"code":    code,
		})
	}
}
