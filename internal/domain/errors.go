package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrDuplicate    = errors.New("recurso duplicado")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")

	// Validación (error del cliente, no se intenta ninguna escritura).
	ErrInvalidQuantity   = errors.New("cantidad inválida")
	ErrMissingNote       = errors.New("la observación es obligatoria para este motivo")
	ErrInvalidReason     = errors.New("motivo de salida inválido")
	ErrInvalidTransition = errors.New("transición de estado no permitida")
	ErrNoOpenUsageCycle  = errors.New("el producto no tiene un uso activo para finalizar")

	// Consistencia (estado descubierto bajo bloqueo).
	ErrInsufficientStock        = errors.New("stock insuficiente")
	ErrProductAlreadyWrittenOff = errors.New("el producto ya fue dado de baja")

	// Concurrencia (transitorio, se puede reintentar).
	ErrBusy = errors.New("el producto está siendo modificado, reintente")

	ErrProductNotFound = fmt.Errorf("producto no encontrado: %w", ErrNotFound)
)

// TransitionError detalla una transición rechazada por el estado actual del producto.
type TransitionError struct {
	Reason string
	From   string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("transición no permitida: motivo %s desde estado %s", e.Reason, e.From)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// InsufficientStockError indica cuánto había disponible frente a lo solicitado.
type InsufficientStockError struct {
	ProductID string
	Available int64
	Requested int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para %s: disponible %d, solicitado %d",
		e.ProductID, e.Available, e.Requested)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// IsValidation indica errores del cliente que se corrigen cambiando la entrada.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidQuantity) ||
		errors.Is(err, ErrMissingNote) ||
		errors.Is(err, ErrInvalidReason) ||
		errors.Is(err, ErrInvalidInput)
}

// IsConflict indica que la solicitud ya no es válida frente al último estado guardado.
func IsConflict(err error) bool {
	return errors.Is(err, ErrInvalidTransition) ||
		errors.Is(err, ErrNoOpenUsageCycle) ||
		errors.Is(err, ErrInsufficientStock) ||
		errors.Is(err, ErrProductAlreadyWrittenOff)
}

// IsRetryable indica errores transitorios (bloqueo no obtenido a tiempo).
func IsRetryable(err error) bool {
	return errors.Is(err, ErrBusy)
}
