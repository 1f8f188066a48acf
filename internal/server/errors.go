package server

import (
	"errors"
	"kanban/internal/apperr"
	"kanban/internal/database/dto"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
)

// errorHandler renders every handler error as the error envelope. Untyped
// errors are logged and reported as INTERNAL without their text.
func errorHandler(logr *log.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		body := dto.ErrorBody{Code: apperr.CodeInternal, Message: "internal server error"}

		var appErr *apperr.Error
		var fiberErr *fiber.Error
		switch {
		case errors.As(err, &appErr):
			body.Code = appErr.Code
			body.Details = appErr.Details
			if appErr.Code != apperr.CodeInternal {
				body.Message = appErr.Message
			}
		case errors.As(err, &fiberErr):
			body.Code = apperr.FromStatus(fiberErr.Code)
			body.Message = fiberErr.Message
		}

		status := apperr.Status(body.Code)
		if status >= fiber.StatusInternalServerError {
			logr.WithFields(log.Fields{
				"request_id": c.Locals("requestid"),
				"method":     c.Method(),
				"path":       c.Path(),
			}).WithError(err).Error("request failed")
		}
		return c.Status(status).JSON(dto.ErrorEnvelope{Error: body})
	}
}

func badBody(err error) error {
	return apperr.Validation("invalid request body", apperr.Detail{Field: "body", Message: err.Error()})
}
