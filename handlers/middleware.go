package handlers

import (
	"errors"
	"time"

	"github.com/fenilmodi00/ipo-dashboard/shared"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

// HTTPMetricsMiddleware records status and latency of every request
func HTTPMetricsMiddleware(metrics *shared.HTTPMetrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			status = fiberErr.Code
		}

		errorType := ""
		if status >= fiber.StatusBadRequest {
			errorType = utils.StatusMessage(status)
		}

		metrics.RecordHTTPRequest(
			err == nil && status < fiber.StatusBadRequest,
			status,
			time.Since(start),
			errorType,
			status == fiber.StatusGatewayTimeout || status == fiber.StatusRequestTimeout,
		)
		return err
	}
}
