package handler

import (
	"go-pos-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ProductionHandler struct {
	ledger service.LedgerService
}

func NewProductionHandler(ledger service.LedgerService) *ProductionHandler {
	return &ProductionHandler{ledger: ledger}
}

// GetProductions lists production records, newest first.
// Query params: day (YYYY-MM-DD), productId
func (h *ProductionHandler) GetProductions(c *fiber.Ctx) error {
	records, err := h.ledger.ListProductions(service.ProductionFilter{
		Day:       c.Query("day"),
		ProductID: c.Query("productId"),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(records)
}

func (h *ProductionHandler) CreateProduction(c *fiber.Ctx) error {
	var req service.AddProductionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	rec, err := h.ledger.AddProduction(req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Production recorded", "data": rec})
}

func (h *ProductionHandler) UpdateProduction(c *fiber.Ctx) error {
	var req service.EditProductionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	res, err := h.ledger.EditProduction(c.Params("id"), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(mutationBody(res, "Production updated", "Production not found"))
}

func (h *ProductionHandler) DeleteProduction(c *fiber.Ctx) error {
	res := h.ledger.DeleteProduction(c.Params("id"))
	return c.JSON(mutationBody(res, "Production deleted", "Production not found"))
}

func mutationBody(res service.MutationResult, done, missing string) fiber.Map {
	if !res.Found {
		return fiber.Map{"message": missing, "found": false}
	}
	body := fiber.Map{"message": done, "found": true}
	if len(res.Warnings) > 0 {
		body["warnings"] = res.Warnings
	}
	return body
}
