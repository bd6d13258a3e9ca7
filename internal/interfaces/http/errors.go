package http

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/inventario-lab/internal/application/dto"
	"github.com/jhoicas/inventario-lab/internal/domain"
	"github.com/jhoicas/inventario-lab/pkg/logger"
)

// retryAfterSeconds valor de Retry-After cuando el producto está bloqueado por otra operación.
const retryAfterSeconds = "1"

// errorMapper traduce errores de dominio a respuestas HTTP. Un único punto para todos los handlers.
type errorMapper struct {
	log *logger.Logger
}

func (m errorMapper) write(c *fiber.Ctx, err error) error {
	status, body := m.classify(err)
	if status == fiber.StatusServiceUnavailable {
		c.Set(fiber.HeaderRetryAfter, retryAfterSeconds)
	}
	if status == fiber.StatusInternalServerError && m.log != nil {
		m.log.Error().Err(err).Str("path", c.Path()).Msg("error interno")
	}
	return c.Status(status).JSON(body)
}

func (m errorMapper) classify(err error) (int, dto.ErrorResponse) {
	var te *domain.TransitionError
	var se *domain.InsufficientStockError
	switch {
	case errors.Is(err, domain.ErrInvalidQuantity):
		return fiber.StatusBadRequest, dto.ErrorResponse{Code: "INVALID_QUANTITY", Message: "cantidad inválida para este movimiento"}
	case errors.Is(err, domain.ErrMissingNote):
		return fiber.StatusBadRequest, dto.ErrorResponse{Code: "MISSING_NOTE", Message: "la observación es obligatoria para este motivo"}
	case errors.Is(err, domain.ErrInvalidReason):
		return fiber.StatusBadRequest, dto.ErrorResponse{Code: "INVALID_REASON", Message: "motivo de salida desconocido"}
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"}
	case errors.Is(err, domain.ErrProductNotFound), errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, dto.ErrorResponse{Code: "PRODUCT_NOT_FOUND", Message: "producto no encontrado"}
	case errors.Is(err, domain.ErrProductAlreadyWrittenOff):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "PRODUCT_WRITTEN_OFF", Message: "el producto está dado de baja"}
	case errors.Is(err, domain.ErrNoOpenUsageCycle):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "NO_OPEN_USAGE_CYCLE", Message: "el producto no tiene un uso activo"}
	case errors.As(err, &te):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "INVALID_TRANSITION", Message: te.Error()}
	case errors.Is(err, domain.ErrInvalidTransition):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "INVALID_TRANSITION", Message: "transición de estado no permitida"}
	case errors.As(err, &se):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: se.Error()}
	case errors.Is(err, domain.ErrInsufficientStock):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: "stock insuficiente"}
	case errors.Is(err, domain.ErrDuplicate):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "DUPLICATE", Message: "el recurso ya existe"}
	case domain.IsRetryable(err):
		return fiber.StatusServiceUnavailable, dto.ErrorResponse{Code: "BUSY", Message: "el producto está siendo modificado, reintente"}
	default:
		return fiber.StatusInternalServerError, dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"}
	}
}

var validate = validator.New()

// validateBody valida las etiquetas `validate` del DTO y devuelve un ErrorResponse VALIDATION legible.
func validateBody(in any) *dto.ErrorResponse {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()}
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s (%s)", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return &dto.ErrorResponse{Code: "VALIDATION", Message: "campos inválidos: " + strings.Join(fields, ", ")}
}
