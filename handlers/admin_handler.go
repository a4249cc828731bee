package handlers

import (
	"strings"

	"github.com/fenilmodi00/ipo-dashboard/services"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type AdminHandler struct {
	IPOService *services.IPOService
	Decoder    *services.IPODocumentDecoder
}

func NewAdminHandler(ipoService *services.IPOService) *AdminHandler {
	return &AdminHandler{
		IPOService: ipoService,
		Decoder:    services.NewIPODocumentDecoder(nil),
	}
}

// CreateIPO stores a raw document after checking its timeline. Derived values
// in the body are ignored.
func (h *AdminHandler) CreateIPO(c *fiber.Ctx) error {
	ipo, err := h.Decoder.Decode(c.Body())
	if err != nil {
		return errorResponse(c, err)
	}

	if strings.TrimSpace(ipo.Name) == "" || strings.TrimSpace(ipo.StockID) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "name and stockId are required",
		})
	}

	if user := c.Get("X-Admin-User"); user != "" {
		ipo.CreatedBy = &user
	}

	if err := h.IPOService.CreateIPO(c.UserContext(), &ipo); err != nil {
		return errorResponse(c, err)
	}

	logrus.WithFields(logrus.Fields{
		"ipo_id":   ipo.ID,
		"stock_id": ipo.StockID,
	}).Info("IPO created via admin endpoint")

	return dataResponse(c, fiber.StatusCreated, ipo)
}
