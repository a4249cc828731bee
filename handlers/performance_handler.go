package handlers

import (
	"time"

	"github.com/fenilmodi00/ipo-dashboard/services"
	"github.com/fenilmodi00/ipo-dashboard/shared"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// DatabaseMetricsSource is implemented by stores that track query metrics
type DatabaseMetricsSource interface {
	GetDatabaseMetrics() *shared.DatabaseMetrics
}

type PerformanceHandler struct {
	IPOService  *services.IPOService
	Cache       *services.CachedIPORepository
	Database    DatabaseMetricsSource
	HTTPMetrics *shared.HTTPMetrics
}

func NewPerformanceHandler(ipoService *services.IPOService, cache *services.CachedIPORepository, database DatabaseMetricsSource, httpMetrics *shared.HTTPMetrics) *PerformanceHandler {
	return &PerformanceHandler{
		IPOService:  ipoService,
		Cache:       cache,
		Database:    database,
		HTTPMetrics: httpMetrics,
	}
}

// GetPerformanceMetrics returns the in-process metrics of every layer
func (h *PerformanceHandler) GetPerformanceMetrics(c *fiber.Ctx) error {
	metrics := map[string]interface{}{
		"ipo_service": h.IPOService.GetServiceMetrics().Summary(),
		"engine":      h.IPOService.Engine().GetServiceMetrics().Summary(),
	}

	if h.Cache != nil {
		metrics["cache_stats"] = h.Cache.GetCacheStats()
	}
	if h.Database != nil {
		metrics["database"] = h.Database.GetDatabaseMetrics().GetSnapshot()
	}
	if h.HTTPMetrics != nil {
		metrics["http"] = h.HTTPMetrics.GetSnapshot()
	}

	return dataResponse(c, fiber.StatusOK, metrics)
}

// ClearCache drops every cached raw record
func (h *PerformanceHandler) ClearCache(c *fiber.Ctx) error {
	if h.Cache == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "cache is not enabled",
		})
	}

	h.Cache.InvalidateAll()
	logrus.Info("IPO cache cleared via performance endpoint")

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Cache cleared",
	})
}

// WarmupCache reloads the record list into the cache
func (h *PerformanceHandler) WarmupCache(c *fiber.Ctx) error {
	if h.Cache == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "cache is not enabled",
		})
	}

	start := time.Now()
	count, err := h.Cache.Warmup(c.UserContext())
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"message":  "Cache warmed up",
		"records":  count,
		"duration": time.Since(start).String(),
	})
}
