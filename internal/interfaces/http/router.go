package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/inventario-lab/internal/application/inventory"
	"github.com/jhoicas/inventario-lab/internal/application/usecase"
	"github.com/jhoicas/inventario-lab/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ProductUC   *usecase.ProductUseCase
	Movements   *inventory.MovementUseCase
	History     *inventory.HistoryUseCase
	StatusSweep StatusSweeper
	JWTSecret   string
	Logger      *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	errs := errorMapper{log: deps.Logger}
	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Escrituras: admin y tecnico. El auditor solo lee.
	writers := RequireRole(RoleAdmin, RoleTecnico)

	// Products (protegido)
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC, errs)
	products.Post("/", writers, productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)

	// Movimientos e historial (protegido)
	invGroup := protected.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.Movements, deps.History, deps.StatusSweep, errs)
	invGroup.Post("/products/:id/entries", writers, inventoryHandler.RecordEntry)
	invGroup.Post("/products/:id/exits", writers, inventoryHandler.RecordExit)
	invGroup.Post("/products/:id/write-off", writers, inventoryHandler.RecordWriteOff)
	invGroup.Get("/products/:id/history", inventoryHandler.GetHistory)
	invGroup.Post("/sweep", RequireRole(RoleAdmin), inventoryHandler.RunSweep)
}
