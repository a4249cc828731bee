package handlers

import (
	"time"

	"github.com/fenilmodi00/ipo-dashboard/shared"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// Clock returns the reference instant for a request
type Clock func() time.Time

// statusForError maps a ServiceError category to an HTTP status
func statusForError(err error) int {
	serviceErr, ok := shared.AsServiceError(err)
	if !ok {
		return fiber.StatusInternalServerError
	}

	switch serviceErr.GetCategory() {
	case shared.ErrorCategoryValidation:
		return fiber.StatusBadRequest
	case shared.ErrorCategoryNotFound:
		return fiber.StatusNotFound
	case shared.ErrorCategoryConflict:
		return fiber.StatusConflict
	case shared.ErrorCategoryTimeout:
		return fiber.StatusGatewayTimeout
	case shared.ErrorCategoryDatabase, shared.ErrorCategoryStorage:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

func errorResponse(c *fiber.Ctx, err error) error {
	status := statusForError(err)

	body := fiber.Map{
		"success": false,
		"error":   err.Error(),
	}
	if serviceErr, ok := shared.AsServiceError(err); ok {
		body["error"] = serviceErr.Message
		body["code"] = serviceErr.Code
		if serviceErr.Details != nil {
			body["details"] = serviceErr.Details
		}
	}

	if status >= fiber.StatusInternalServerError {
		serviceErr, ok := shared.AsServiceError(err)
		if !ok {
			serviceErr = shared.WrapError(err, shared.ErrorCategoryProcessing, "INTERNAL_ERROR", "ipo-api", c.Method()+" "+c.Path(), false)
		}
		serviceErr.LogError(logrus.Fields{
			"path":   c.Path(),
			"method": c.Method(),
			"status": status,
		})
	}

	return c.Status(status).JSON(body)
}

func dataResponse(c *fiber.Ctx, status int, data interface{}) error {
	return c.Status(status).JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}
