package controllers

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"go-clothing-store/src/infrastructure/log"
	mongodb "go-clothing-store/src/infrastructure/mongo"
	"go-clothing-store/src/services/catalog"
	"go-clothing-store/src/services/identifier"
	"go-clothing-store/src/services/order/domain"
	"go-clothing-store/src/services/report"
)

// ValidationError is a malformed request payload. It is rendered as 422.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	return e.Message
}

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

// bind decodes the request body into out and validates it.
func bind(ctx *fiber.Ctx, out any) error {
	if err := ctx.BodyParser(out); err != nil {
		return &ValidationError{Message: "Invalid request body: " + err.Error()}
	}
	return validateStruct(out)
}

func validateStruct(out any) error {
	if err := validate.Struct(out); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			return &ValidationError{Message: "Validation failed", Fields: formatValidationErrors(fieldErrs)}
		}
		return &ValidationError{Message: err.Error()}
	}
	return nil
}

func formatValidationErrors(fieldErrs validator.ValidationErrors) map[string]string {
	fields := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		// Drop the root struct name: "OrderRequest.items[0].price" -> "items[0].price".
		field := fe.Namespace()
		if i := strings.IndexByte(field, '.'); i >= 0 {
			field = field[i+1:]
		}

		switch fe.Tag() {
		case "required":
			fields[field] = fmt.Sprintf("%s is required", field)
		case "gt":
			fields[field] = fmt.Sprintf("%s must be greater than %s", field, fe.Param())
		case "gte":
			fields[field] = fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
		case "url":
			fields[field] = fmt.Sprintf("%s must be a valid URL", field)
		default:
			fields[field] = fmt.Sprintf("%s is invalid", field)
		}
	}
	return fields
}

// ErrorHandler renders service errors as {"error": true, "message": ...}.
func ErrorHandler(logger log.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		body := fiber.Map{"error": true, "message": err.Error()}

		var validationErr *ValidationError
		var fiberErr *fiber.Error
		switch {
		case errors.As(err, &validationErr):
			code = fiber.StatusUnprocessableEntity
			if len(validationErr.Fields) > 0 {
				body["fields"] = validationErr.Fields
			}
		case errors.Is(err, report.ErrInvalidPeriod):
			code = fiber.StatusUnprocessableEntity
		case errors.Is(err, identifier.ErrInvalidIdentifier):
			code = fiber.StatusBadRequest
			body["message"] = "Invalid ID"
		case errors.Is(err, domain.ErrOrderNotFound):
			code = fiber.StatusNotFound
			body["message"] = "Order not found"
		case errors.Is(err, catalog.ErrProductNotFound):
			code = fiber.StatusNotFound
			body["message"] = "Product not found"
		case errors.Is(err, mongodb.ErrDatabaseNotConfigured):
			body["message"] = "Database not configured"
		case errors.As(err, &fiberErr):
			code = fiberErr.Code
		}

		if code >= fiber.StatusInternalServerError {
			logger.Exception(c.UserContext(), "HTTP request error", err)
		} else {
			logger.Warn(c.UserContext(), "HTTP request rejected: "+err.Error())
		}
		return c.Status(code).JSON(body)
	}
}
