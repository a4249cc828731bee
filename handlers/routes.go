package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// Routes groups the handlers mounted by SetupRoutes. Nil handlers are skipped.
type Routes struct {
	IPO         *IPOHandler
	Stream      *CountdownStreamHandler
	Admin       *AdminHandler
	Favorites   *FavoritesHandler
	Performance *PerformanceHandler

	// HealthCheck reports backing store health; nil means always healthy.
	HealthCheck func() error
}

func SetupRoutes(app *fiber.App, r Routes) {
	app.Get("/health", func(c *fiber.Ctx) error {
		body := fiber.Map{
			"status":    "ok",
			"timestamp": time.Now().Unix(),
		}
		if r.HealthCheck != nil {
			if err := r.HealthCheck(); err != nil {
				body["status"] = "degraded"
				body["error"] = err.Error()
				return c.Status(fiber.StatusServiceUnavailable).JSON(body)
			}
		}
		return c.JSON(body)
	})

	api := app.Group("/api/v1")

	if r.IPO != nil {
		api.Get("/ipos", r.IPO.GetIPOs)
		if r.Stream != nil {
			api.Get("/ipos/countdowns/stream", r.Stream.Stream)
		}
		api.Get("/ipos/:id", r.IPO.GetIPOByID)
		api.Get("/ipos/:id/countdown", r.IPO.GetCountdown)
		api.Get("/ipos/:id/apply-window", r.IPO.GetApplyWindow)
		api.Post("/evaluate", r.IPO.Evaluate)
	}

	if r.Admin != nil {
		admin := api.Group("/admin")
		admin.Post("/ipos", r.Admin.CreateIPO)
	}

	if r.Favorites != nil {
		api.Get("/favorites/:user", r.Favorites.List)
		api.Put("/favorites/:user/:id", r.Favorites.Add)
		api.Delete("/favorites/:user/:id", r.Favorites.Remove)
	}

	if r.Performance != nil {
		api.Get("/metrics", r.Performance.GetPerformanceMetrics)
		perf := api.Group("/performance")
		perf.Delete("/cache", r.Performance.ClearCache)
		perf.Post("/cache/warmup", r.Performance.WarmupCache)
	}
}
