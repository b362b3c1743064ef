package handler

import (
	"time"

	"go-pos-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
)

type HealthHandler struct {
	ledger service.LedgerService
}

func NewHealthHandler(ledger service.LedgerService) *HealthHandler {
	return &HealthHandler{ledger: ledger}
}

func (h *HealthHandler) Health(c *fiber.Ctx) error {
	snap := h.ledger.Snapshot()
	var updatedAt interface{}
	if !snap.UpdatedAt.IsZero() {
		updatedAt = snap.UpdatedAt.Format(time.RFC3339)
	}
	return c.JSON(fiber.Map{
		"status":    "ok",
		"products":  len(snap.Products),
		"orders":    len(snap.Orders),
		"updatedAt": updatedAt,
	})
}
