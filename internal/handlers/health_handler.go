package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/uwdate/review-backend/internal/dto"
	"github.com/uwdate/review-backend/internal/services"
)

const serviceName = "UW Date API"

// StoreCheck reports whether the review store is reachable.
type StoreCheck func(ctx context.Context) error

type HealthHandler struct {
	check     StoreCheck
	scheduler *services.ModerationScheduler
}

func NewHealthHandler(check StoreCheck, scheduler *services.ModerationScheduler) *HealthHandler {
	return &HealthHandler{check: check, scheduler: scheduler}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	storeStatus := "ok"
	if h.check != nil {
		if err := h.check(c.UserContext()); err != nil {
			storeStatus = "unhealthy: " + err.Error()
		}
	}

	return c.JSON(dto.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Service:   serviceName,
		Store:     storeStatus,
		Scheduled: h.scheduler.Scheduled(),
	})
}
