package http

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/inventario-lab/internal/application/dto"
	"github.com/jhoicas/inventario-lab/internal/application/inventory"
)

// StatusSweeper ejecuta una pasada del barrido de estados.
type StatusSweeper interface {
	Run(ctx context.Context) (int, error)
}

// InventoryHandler maneja las peticiones HTTP de movimientos e historial (protegido).
type InventoryHandler struct {
	movements *inventory.MovementUseCase
	history   *inventory.HistoryUseCase
	sweeper   StatusSweeper
	errs      errorMapper
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(movements *inventory.MovementUseCase, history *inventory.HistoryUseCase, sweeper StatusSweeper, errs errorMapper) *InventoryHandler {
	return &InventoryHandler{movements: movements, history: history, sweeper: sweeper, errs: errs}
}

// RecordEntry godoc
// @Summary      Registrar entrada de stock
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "ID del producto"
// @Param        body  body  dto.RecordEntryRequest  true  "quantity > 0, note opcional"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/inventory/products/{id}/entries [post]
func (h *InventoryHandler) RecordEntry(c *fiber.Ctx) error {
	var in dto.RecordEntryRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if verr := validateBody(in); verr != nil {
		return c.Status(fiber.StatusBadRequest).JSON(verr)
	}
	out, err := h.movements.RecordEntry(c.UserContext(), inventory.EntryInput{
		ProductID: c.Params("id"),
		ActorID:   GetUserID(c),
		Quantity:  in.Quantity,
		Note:      in.Note,
	})
	if err != nil {
		return h.errs.write(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// RecordExit godoc
// @Summary      Registrar salida (INICIAR_USO, FINALIZAR_USO, INCIDENCIA, BAJA)
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "ID del producto"
// @Param        body  body  dto.RecordExitRequest  true  "reason; quantity según el motivo; note obligatoria en INCIDENCIA y BAJA"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/inventory/products/{id}/exits [post]
func (h *InventoryHandler) RecordExit(c *fiber.Ctx) error {
	var in dto.RecordExitRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if verr := validateBody(in); verr != nil {
		return c.Status(fiber.StatusBadRequest).JSON(verr)
	}
	out, err := h.movements.RecordExit(c.UserContext(), inventory.ExitInput{
		ProductID: c.Params("id"),
		ActorID:   GetUserID(c),
		Reason:    in.Reason,
		Quantity:  in.Quantity,
		Note:      in.Note,
	})
	if err != nil {
		return h.errs.write(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// RecordWriteOff godoc
// @Summary      Dar de baja el lote (stock a cero, estado terminal)
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true  "ID del producto"
// @Param        body  body  dto.RecordWriteOffRequest  true  "note obligatoria"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/products/{id}/write-off [post]
func (h *InventoryHandler) RecordWriteOff(c *fiber.Ctx) error {
	var in dto.RecordWriteOffRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if verr := validateBody(in); verr != nil {
		return c.Status(fiber.StatusBadRequest).JSON(verr)
	}
	out, err := h.movements.RecordWriteOff(c.UserContext(), inventory.WriteOffInput{
		ProductID: c.Params("id"),
		ActorID:   GetUserID(c),
		Note:      in.Note,
	})
	if err != nil {
		return h.errs.write(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetHistory godoc
// @Summary      Historial de movimientos del producto
// @Description  Más reciente primero; incluye la duración del ciclo de uso en los movimientos que lo abrieron o cerraron.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "ID del producto"
// @Param        limit   query  int     false  "máximo de elementos (default 20, máx 100)"
// @Param        offset  query  int     false  "desplazamiento"
// @Success      200  {object}  dto.MovementHistoryResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/products/{id}/history [get]
func (h *InventoryHandler) GetHistory(c *fiber.Ctx) error {
	out, err := h.history.GetProductHistory(c.UserContext(), c.Params("id"), c.QueryInt("limit", 20), c.QueryInt("offset", 0))
	if err != nil {
		return h.errs.write(c, err)
	}
	return c.JSON(out)
}

// RunSweep godoc
// @Summary      Ejecutar el barrido de estados por fecha
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.SweepResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/inventory/sweep [post]
func (h *InventoryHandler) RunSweep(c *fiber.Ctx) error {
	changed, err := h.sweeper.Run(c.UserContext())
	if err != nil {
		return h.errs.write(c, err)
	}
	return c.JSON(dto.SweepResponse{Changed: changed})
}
