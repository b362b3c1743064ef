package handler

import (
	"go-pos-ledger/internal/middleware"
	"go-pos-ledger/pkg/jwt"

	"github.com/gofiber/fiber/v2"
)

// Handlers bundles every route handler. Sync may be nil when sync is disabled.
type Handlers struct {
	Product    *ProductHandler
	Production *ProductionHandler
	Order      *OrderHandler
	Report     *ReportHandler
	Access     *AccessHandler
	Sync       *SyncHandler
	Health     *HealthHandler
}

// RegisterRoutes mounts the /api/v1 surface on app.
func RegisterRoutes(app *fiber.App, h Handlers, tokens *jwt.Manager) {
	api := app.Group("/api/v1")
	admin := middleware.RequireAdmin(tokens)

	// ============ PUBLIC ROUTES ============
	api.Get("/health", h.Health.Health)
	api.Post("/auth/login", h.Access.Login)

	api.Get("/products", h.Product.GetProducts)
	api.Get("/products/:id", h.Product.GetProduct)

	api.Get("/orders", h.Order.GetOrders)
	api.Get("/orders/:id", h.Order.GetOrder)
	api.Get("/orders/:id/ticket", h.Order.GetTicket)
	api.Post("/orders", h.Order.CreateOrder)

	api.Get("/productions", h.Production.GetProductions)

	api.Get("/reports/daily", h.Report.GetDailyReport)
	api.Get("/reports/movement", h.Report.GetMovement)

	// ============ ADMIN ROUTES ============
	api.Post("/products", admin, h.Product.CreateProduct)
	api.Put("/products/:id", admin, h.Product.UpdateProduct)
	api.Post("/products/:id/toggle", admin, h.Product.ToggleProduct)

	api.Post("/productions", admin, h.Production.CreateProduction)
	api.Put("/productions/:id", admin, h.Production.UpdateProduction)
	api.Delete("/productions/:id", admin, h.Production.DeleteProduction)

	api.Patch("/orders/:id", admin, h.Order.PatchOrder)
	api.Delete("/orders/:id", admin, h.Order.DeleteOrder)

	api.Put("/auth/access-code", admin, h.Access.ChangeAccessCode)

	// ============ SYNC (shared key) ============
	if h.Sync != nil {
		api.Get("/sync", h.Sync.Pull)
		api.Post("/sync", h.Sync.Push)
	}
}
