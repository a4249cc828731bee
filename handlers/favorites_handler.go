package handlers

import (
	"github.com/fenilmodi00/ipo-dashboard/services"
	"github.com/gofiber/fiber/v2"
)

type FavoritesHandler struct {
	Repository services.FavoritesRepository
}

func NewFavoritesHandler(repository services.FavoritesRepository) *FavoritesHandler {
	return &FavoritesHandler{Repository: repository}
}

func (h *FavoritesHandler) List(c *fiber.Ctx) error {
	ids, err := h.Repository.List(c.UserContext(), c.Params("user"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    ids,
		"count":   len(ids),
	})
}

func (h *FavoritesHandler) Add(c *fiber.Ctx) error {
	if err := h.Repository.Add(c.UserContext(), c.Params("user"), c.Params("id")); err != nil {
		return errorResponse(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *FavoritesHandler) Remove(c *fiber.Ctx) error {
	if err := h.Repository.Remove(c.UserContext(), c.Params("user"), c.Params("id")); err != nil {
		return errorResponse(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
