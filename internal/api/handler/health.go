package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
)

// Pinger checks database connectivity for the readiness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db Pinger
}

func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{
		Status:  "ok",
		Version: "0.1.0",
	})
}

func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	if h.db != nil {
		if err := h.db.Ping(c.Context()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(HealthResponse{
				Status: "database unavailable",
			})
		}
	}
	return c.JSON(HealthResponse{
		Status: "ready",
	})
}
