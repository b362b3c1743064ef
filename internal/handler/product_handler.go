package handler

import (
	"go-pos-ledger/internal/model"
	"go-pos-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ProductHandler struct {
	ledger service.LedgerService
}

func NewProductHandler(ledger service.LedgerService) *ProductHandler {
	return &ProductHandler{ledger: ledger}
}

// GetProducts lists the catalog.
// Query params: q, barcode, includeInactive (default false)
func (h *ProductHandler) GetProducts(c *fiber.Ctx) error {
	products := h.ledger.ListProducts(service.ProductFilter{
		Term:            c.Query("q"),
		Barcode:         c.Query("barcode"),
		IncludeInactive: c.QueryBool("includeInactive", false),
	})
	return c.JSON(products)
}

func (h *ProductHandler) GetProduct(c *fiber.Ctx) error {
	p, ok := h.ledger.GetProduct(c.Params("id"))
	if !ok {
		return c.Status(404).JSON(fiber.Map{"error": "Product not found"})
	}
	return c.JSON(p)
}

// CreateProduct adds a product. Stock defaults to zero and the product is active
// unless the body says otherwise.
func (h *ProductHandler) CreateProduct(c *fiber.Ctx) error {
	product := model.Product{Active: true}
	if err := c.BodyParser(&product); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	saved, _, err := h.ledger.SaveProduct(product)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Product created", "data": saved})
}

// UpdateProduct replaces an existing product. An unknown id is a no-op.
func (h *ProductHandler) UpdateProduct(c *fiber.Ctx) error {
	id := c.Params("id")
	var product model.Product
	if err := c.BodyParser(&product); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if _, ok := h.ledger.GetProduct(id); !ok {
		return c.JSON(fiber.Map{"message": "Product not found", "found": false})
	}
	product.ID = id

	saved, _, err := h.ledger.SaveProduct(product)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Product updated", "found": true, "data": saved})
}

func (h *ProductHandler) ToggleProduct(c *fiber.Ctx) error {
	p, ok := h.ledger.ToggleProductActive(c.Params("id"))
	if !ok {
		return c.JSON(fiber.Map{"message": "Product not found", "found": false})
	}
	return c.JSON(fiber.Map{"message": "Product toggled", "found": true, "data": p})
}
