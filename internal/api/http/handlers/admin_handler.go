package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/moona-liza/natours/internal/observability"
)

// AdminHandler exposes operational endpoints restricted to administrators.
type AdminHandler struct {
	metrics *observability.Metrics
}

// NewAdminHandler constructs handler.
func NewAdminHandler(metrics *observability.Metrics) *AdminHandler {
	return &AdminHandler{metrics: metrics}
}

// Metrics handles GET /api/v1/admin/metrics.
func (h *AdminHandler) Metrics(c *fiber.Ctx) error {
	requests, errs := h.metrics.Snapshot()
	return c.JSON(fiber.Map{
		"status": "success",
		"data": fiber.Map{
			"requests": requests,
			"errors":   errs,
		},
	})
}
