package handler

import (
	"fmt"

	"go-pos-ledger/internal/model"
	"go-pos-ledger/internal/service"
	"go-pos-ledger/internal/ticket"

	"github.com/gofiber/fiber/v2"
)

type OrderHandler struct {
	ledger  service.LedgerService
	tickets *ticket.Renderer
}

func NewOrderHandler(ledger service.LedgerService, tickets *ticket.Renderer) *OrderHandler {
	return &OrderHandler{ledger: ledger, tickets: tickets}
}

// GetOrders lists orders, newest first.
// Query params: day (YYYY-MM-DD), status (abierta | entregada)
func (h *OrderHandler) GetOrders(c *fiber.Ctx) error {
	orders, err := h.ledger.ListOrders(service.OrderFilter{
		Day:    c.Query("day"),
		Status: model.OrderStatus(c.Query("status")),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(orders)
}

func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	order, ok := h.ledger.GetOrder(c.Params("id"))
	if !ok {
		return c.Status(404).JSON(fiber.Map{"error": "Order not found"})
	}
	return c.JSON(order)
}

func (h *OrderHandler) CreateOrder(c *fiber.Ctx) error {
	var req service.IssueOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	order, err := h.ledger.IssueOrder(req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Order issued", "data": order})
}

func (h *OrderHandler) PatchOrder(c *fiber.Ctx) error {
	var patch model.OrderPatch
	if err := c.BodyParser(&patch); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	order, found, err := h.ledger.UpdateOrder(c.Params("id"), patch)
	if err != nil {
		return respondError(c, err)
	}
	if !found {
		return c.JSON(fiber.Map{"message": "Order not found", "found": false})
	}
	return c.JSON(fiber.Map{"message": "Order updated", "found": true, "data": order})
}

func (h *OrderHandler) DeleteOrder(c *fiber.Ctx) error {
	res, err := h.ledger.DeleteOrder(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(mutationBody(res, "Order deleted", "Order not found"))
}

// GetTicket renders the order as a PDF ticket.
func (h *OrderHandler) GetTicket(c *fiber.Ctx) error {
	order, ok := h.ledger.GetOrder(c.Params("id"))
	if !ok {
		return c.Status(404).JSON(fiber.Map{"error": "Order not found"})
	}

	products := make(map[string]model.Product)
	for _, p := range h.ledger.ListProducts(service.ProductFilter{IncludeInactive: true}) {
		products[p.ID] = p
	}
	data, err := h.tickets.Render(order, products)
	if err != nil {
		return respondError(c, err)
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`inline; filename="comanda-%s.pdf"`, order.Number))
	return c.Send(data)
}
