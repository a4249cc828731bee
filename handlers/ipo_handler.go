package handlers

import (
	"time"

	"github.com/fenilmodi00/ipo-dashboard/models"
	"github.com/fenilmodi00/ipo-dashboard/services"
	"github.com/gofiber/fiber/v2"
)

type IPOHandler struct {
	Service *services.IPOService
	Decoder *services.IPODocumentDecoder
	Now     Clock
}

func NewIPOHandler(service *services.IPOService) *IPOHandler {
	return &IPOHandler{
		Service: service,
		Decoder: services.NewIPODocumentDecoder(nil),
		Now:     time.Now,
	}
}

func (h *IPOHandler) GetIPOs(c *fiber.Ctx) error {
	status := c.Query("status", "all")
	ipos, err := h.Service.GetIPOs(c.UserContext(), status, h.Now())
	if err != nil {
		return errorResponse(c, err)
	}
	if ipos == nil {
		ipos = []models.IPO{}
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    ipos,
		"count":   len(ipos),
	})
}

func (h *IPOHandler) GetIPOByID(c *fiber.Ctx) error {
	ipo, err := h.Service.GetIPOByID(c.UserContext(), c.Params("id"), h.Now())
	if err != nil {
		return errorResponse(c, err)
	}
	return dataResponse(c, fiber.StatusOK, ipo)
}

// GetCountdown returns one countdown snapshot for the close date of an IPO
func (h *IPOHandler) GetCountdown(c *fiber.Ctx) error {
	countdown, err := h.Service.GetCountdown(c.UserContext(), c.Params("id"), h.Now())
	if err != nil {
		return errorResponse(c, err)
	}
	return dataResponse(c, fiber.StatusOK, countdown)
}

// GetApplyWindow reports whether the Apply action is enabled right now
func (h *IPOHandler) GetApplyWindow(c *fiber.Ctx) error {
	window, err := h.Service.GetApplyWindow(c.UserContext(), c.Params("id"), h.Now())
	if err != nil {
		return errorResponse(c, err)
	}
	return dataResponse(c, fiber.StatusOK, window)
}

// Evaluate annotates a posted raw document without storing it. It backs the
// live derived fields of the admin form.
func (h *IPOHandler) Evaluate(c *fiber.Ctx) error {
	granularity, err := services.ParseGranularity(c.Query("granularity"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}

	ipo, err := h.Decoder.Decode(c.Body())
	if err != nil {
		return errorResponse(c, err)
	}

	now := h.Now()
	annotated := h.Service.Evaluate(ipo, now, granularity)

	result := fiber.Map{
		"ipo":       annotated,
		"can_apply": h.Service.Engine().CanApply(ipo, now),
	}
	if countdown, ok := h.Service.Engine().Countdown(ipo, now); ok {
		result["countdown"] = countdown
	}
	if err := services.ValidateTimeline(ipo.Dates); err != nil {
		result["timeline_error"] = err.Error()
	}

	return dataResponse(c, fiber.StatusOK, result)
}
