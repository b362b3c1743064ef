package handler

import (
	"crypto/subtle"

	"go-pos-ledger/internal/model"
	"go-pos-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
)

// SyncHandler lets other devices pull and push whole snapshots with a shared key.
type SyncHandler struct {
	ledger service.LedgerService
	key    string
}

func NewSyncHandler(ledger service.LedgerService, key string) *SyncHandler {
	return &SyncHandler{ledger: ledger, key: key}
}

type syncPushRequest struct {
	Key string          `json:"key"`
	DB  *model.Snapshot `json:"db"`
}

func (h *SyncHandler) keyMatches(key string) bool {
	return h.key != "" && subtle.ConstantTimeCompare([]byte(key), []byte(h.key)) == 1
}

// Pull returns the local snapshot
// GET /api/v1/sync?key=
func (h *SyncHandler) Pull(c *fiber.Ctx) error {
	if !h.keyMatches(c.Query("key")) {
		return c.Status(403).JSON(fiber.Map{"ok": false, "error": "Invalid sync key"})
	}
	return c.JSON(fiber.Map{"ok": true, "db": h.ledger.Snapshot()})
}

// Push applies the posted snapshot when it is newer and returns the resulting state
// POST /api/v1/sync
func (h *SyncHandler) Push(c *fiber.Ctx) error {
	var req syncPushRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"ok": false, "error": "Invalid JSON"})
	}
	if !h.keyMatches(req.Key) {
		return c.Status(403).JSON(fiber.Map{"ok": false, "error": "Invalid sync key"})
	}
	if req.DB == nil {
		return c.Status(400).JSON(fiber.Map{"ok": false, "error": "db is required"})
	}

	applied, err := h.ledger.ApplySnapshot(*req.DB)
	if err != nil {
		if statusFor(err) == fiber.StatusBadRequest {
			return c.Status(400).JSON(fiber.Map{"ok": false, "error": err.Error()})
		}
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"ok": true, "applied": applied, "db": h.ledger.Snapshot()})
}
