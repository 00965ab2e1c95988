package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Pinger is implemented by the issue cache backends.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	store Pinger
}

func NewHealthHandler(store Pinger) *HealthHandler {
	return &HealthHandler{store: store}
}

func (h *HealthHandler) Register(r fiber.Router) {
	r.Get("/health", h.health)
}

func (h *HealthHandler) health(c *fiber.Ctx) error {
	state := h.checkStore(c.UserContext())

	code, status := fiber.StatusOK, "ok"
	if state == "error" {
		code, status = fiber.StatusServiceUnavailable, "degraded"
	}
	return c.Status(code).JSON(fiber.Map{
		"status": status,
		"dbs": fiber.Map{
			"cache": state,
		},
	})
}

func (h *HealthHandler) checkStore(ctx context.Context) string {
	if h.store == nil {
		return "not_configured"
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := h.store.Ping(ctx); err != nil {
		return "error"
	}
	return "connected"
}
