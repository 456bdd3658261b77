package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/spcgrid/spcgrid/internal/logging"
	"github.com/spcgrid/spcgrid/internal/models"
	"github.com/spcgrid/spcgrid/internal/services"
	"github.com/spcgrid/spcgrid/internal/spc"
)

// StatusForCode maps service and engine error codes to HTTP status codes.
// Codes without a mapping fall back to 500.
func StatusForCode(code string) int {
	switch code {
	case services.CodeInvalidChartType:
		return fiber.StatusNotFound
	case spc.CodeInsufficientData,
		spc.CodeUnsupportedSubgroupSize,
		spc.CodeInvalidSubgroupSize,
		spc.CodeInvalidTarget,
		spc.CodeUnorderedTimeAxis,
		spc.CodeInapplicableRule,
		spc.CodeInvalidRequest:
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

// ErrorHandler returns a custom error handler middleware. Service errors
// keep their code and details on the wire; everything else is shaped into
// the same envelope.
func ErrorHandler(logger *logging.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		detail := models.ErrorDetail{
			Code:    "ERROR",
			Message: "Internal Server Error",
		}

		var svcErr *services.ServiceError
		var fiberErr *fiber.Error
		switch {
		case errors.As(err, &svcErr):
			status = StatusForCode(svcErr.Code)
			detail.Code = svcErr.Code
			detail.Message = svcErr.Message
			detail.Details = svcErr.Details
		case errors.As(err, &fiberErr):
			status = fiberErr.Code
			detail.Message = fiberErr.Message
		}

		if status >= fiber.StatusInternalServerError {
			logger.Error("Request error",
				"path", c.Path(),
				"method", c.Method(),
				"status", status,
				"error", err,
			)
		} else {
			logger.Warn("Request rejected",
				"path", c.Path(),
				"method", c.Method(),
				"status", status,
				"code", detail.Code,
			)
		}

		detail.Path = c.Path()
		return c.Status(status).JSON(models.ErrorResponse{Error: detail})
	}
}
