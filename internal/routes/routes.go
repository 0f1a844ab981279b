package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/uwdate/review-backend/internal/handlers"
)

type Handlers struct {
	Reviews *handlers.ReviewHandler
	Reports *handlers.ReportHandler
	Health  *handlers.HealthHandler
	Legal   *handlers.LegalHandler
	Config  *handlers.ConfigHandler
}

func Setup(app *fiber.App, h Handlers) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	// Writes: 10 req/min per IP (stricter)
	writeLimit := limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	})

	api.Get("/health", h.Health.Check)
	api.Get("/config", h.Config.GetConfig)
	api.Get("/stats", h.Reviews.Stats)

	api.Get("/legal/privacy", h.Legal.PrivacyPolicy)
	api.Get("/legal/terms", h.Legal.TermsOfService)

	api.Get("/reviews", h.Reviews.List)
	api.Get("/reviews/search", h.Reviews.Search)
	api.Post("/reviews/submit", writeLimit, h.Reviews.Submit)
	api.Post("/reviews/:reviewId/report", writeLimit, h.Reports.Create)
}
