package handlers

import (
	"fmt"

	"usermgmt/pkg/apperror"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// respondError writes err as a JSON body. Causes of internal errors are never
// serialized.
func respondError(c *fiber.Ctx, err error) error {
	appErr := apperror.From(err)
	return c.Status(appErr.HTTPStatus()).JSON(fiber.Map{
		"message": appErr.Message,
	})
}

// respondValidationError reports every failed field.
func respondValidationError(c *fiber.Ctx, err error) error {
	errorMessages := make(map[string]string)
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrors {
			errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Validation failed",
		"errors":  errorMessages,
	})
}

// NewErrorHandler returns the fiber error handler used for errors that escape
// route handlers, including recovered panics and unmatched routes. Anything
// other than a *fiber.Error is logged before the generic response is sent.
func NewErrorHandler(log *logrus.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		if fe, ok := err.(*fiber.Error); ok {
			return c.Status(fe.Code).JSON(fiber.Map{
				"message": fe.Message,
			})
		}
		log.WithError(err).WithFields(logrus.Fields{
			"operation":  "http_request",
			"method":     c.Method(),
			"path":       c.Path(),
			"request_id": c.Locals("requestid"),
		}).Error("Unhandled request error")
		return respondError(c, err)
	}
}
