package handler

import (
	"go-pos-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
)

type AccessHandler struct {
	accessService service.AccessService
}

func NewAccessHandler(accessService service.AccessService) *AccessHandler {
	return &AccessHandler{accessService: accessService}
}

type LoginRequest struct {
	Code string `json:"code"`
}

type ChangeAccessCodeRequest struct {
	OldCode string `json:"oldCode"`
	NewCode string `json:"newCode"`
}

// Login exchanges the access code for an admin token
// POST /api/v1/auth/login
func (h *AccessHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if req.Code == "" {
		return c.Status(400).JSON(fiber.Map{"error": "Access code is required"})
	}

	response, err := h.accessService.Login(req.Code)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(response)
}

// ChangeAccessCode replaces the access code
// PUT /api/v1/auth/access-code
func (h *AccessHandler) ChangeAccessCode(c *fiber.Ctx) error {
	var req ChangeAccessCodeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if req.OldCode == "" || req.NewCode == "" {
		return c.Status(400).JSON(fiber.Map{"error": "oldCode and newCode are required"})
	}

	if err := h.accessService.ChangeAccessCode(req.OldCode, req.NewCode); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Access code updated"})
}
