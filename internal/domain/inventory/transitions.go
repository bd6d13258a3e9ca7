package inventory

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/jhoicas/inventario-lab/internal/domain"
	"github.com/jhoicas/inventario-lab/internal/domain/entity"
)

// CycleEffect efecto de un movimiento sobre el ciclo de uso del producto.
type CycleEffect int

const (
	CycleNone        CycleEffect = iota
	CycleOpen                    // abre un ciclo nuevo
	CycleClose                   // cierra el ciclo abierto
	CycleCloseIfOpen             // cierra el ciclo si hay uno abierto
)

// StatusEffect cómo se calcula el estado después del movimiento.
type StatusEffect int

const (
	StatusReconcile     StatusEffect = iota // resolver, respetando IN_USE/WRITTEN_OFF
	StatusRelease                           // resolver ignorando IN_USE (fin de uso)
	StatusSetInUse                          // fija IN_USE
	StatusSetWrittenOff                     // fija WRITTEN_OFF
)

// QuantityRule qué cantidad acepta el motivo.
type QuantityRule int

const (
	QuantityIgnored  QuantityRule = iota // no mueve stock; se acepta nil o 0
	QuantityOptional                     // >= 0, por defecto 0
	QuantityRequired                     // > 0
	QuantityAll                          // implícita: todo el stock; el cliente no la envía
)

// StockEffect signo del efecto sobre quantity_on_hand.
type StockEffect int

const (
	StockNone StockEffect = iota
	StockAdd
	StockSubtract
	StockClear
)

// Transition contrato de un movimiento: precondición, efecto en stock, efecto en ciclo y estado resultante.
type Transition struct {
	Direction    string
	Reason       string
	Quantity     QuantityRule
	RequiresNote bool
	Stock        StockEffect
	Cycle        CycleEffect
	Status       StatusEffect
	// precondition se evalúa contra la fila bloqueada; requested ya pasó ValidateInput.
	precondition func(p *entity.Product, hasOpenCycle bool, requested int64) error
}

// EntryTransition contrato de las entradas (RecordEntry).
var EntryTransition = Transition{
	Direction: entity.MovementDirectionEntry,
	Quantity:  QuantityRequired,
	Stock:     StockAdd,
	Cycle:     CycleNone,
	Status:    StatusReconcile,
	precondition: func(p *entity.Product, hasOpenCycle bool, requested int64) error {
		if err := notWrittenOff(p, hasOpenCycle, requested); err != nil {
			return err
		}
		if requested > math.MaxInt64-p.QuantityOnHand {
			return domain.ErrInvalidQuantity
		}
		return nil
	},
}

// exitTransitions tabla de salidas por motivo.
var exitTransitions = map[string]Transition{
	entity.ReasonIniciarUso: {
		Direction: entity.MovementDirectionExit,
		Reason:    entity.ReasonIniciarUso,
		Quantity:  QuantityIgnored,
		Stock:     StockNone,
		Cycle:     CycleOpen,
		Status:    StatusSetInUse,
		precondition: func(p *entity.Product, hasOpenCycle bool, _ int64) error {
			if err := notWrittenOff(p, hasOpenCycle, 0); err != nil {
				return err
			}
			if hasOpenCycle {
				return &domain.TransitionError{Reason: entity.ReasonIniciarUso, From: p.Status}
			}
			switch p.Status {
			case entity.StatusAvailable, entity.StatusLowStock, entity.StatusNearExpiry:
			default:
				return &domain.TransitionError{Reason: entity.ReasonIniciarUso, From: p.Status}
			}
			if p.QuantityOnHand <= 0 {
				return &domain.InsufficientStockError{ProductID: p.ID, Available: p.QuantityOnHand, Requested: 1}
			}
			return nil
		},
	},
	entity.ReasonFinalizarUso: {
		Direction: entity.MovementDirectionExit,
		Reason:    entity.ReasonFinalizarUso,
		Quantity:  QuantityOptional,
		Stock:     StockSubtract,
		Cycle:     CycleClose,
		Status:    StatusRelease,
		precondition: func(p *entity.Product, hasOpenCycle bool, requested int64) error {
			if !hasOpenCycle {
				return domain.ErrNoOpenUsageCycle
			}
			if p.Status != entity.StatusInUse {
				return &domain.TransitionError{Reason: entity.ReasonFinalizarUso, From: p.Status}
			}
			return enoughStock(p, requested)
		},
	},
	entity.ReasonIncidencia: {
		Direction:    entity.MovementDirectionExit,
		Reason:       entity.ReasonIncidencia,
		Quantity:     QuantityRequired,
		RequiresNote: true,
		Stock:        StockSubtract,
		Cycle:        CycleNone,
		Status:       StatusReconcile,
		precondition: func(p *entity.Product, hasOpenCycle bool, requested int64) error {
			if err := notWrittenOff(p, hasOpenCycle, requested); err != nil {
				return err
			}
			return enoughStock(p, requested)
		},
	},
	entity.ReasonBaja: {
		Direction:    entity.MovementDirectionExit,
		Reason:       entity.ReasonBaja,
		Quantity:     QuantityAll,
		RequiresNote: true,
		Stock:        StockClear,
		Cycle:        CycleCloseIfOpen,
		Status:       StatusSetWrittenOff,
		precondition: func(p *entity.Product, hasOpenCycle bool, _ int64) error {
			if err := notWrittenOff(p, hasOpenCycle, 0); err != nil {
				return err
			}
			if p.QuantityOnHand <= 0 {
				return fmt.Errorf("%w: no hay existencias para dar de baja", domain.ErrInsufficientStock)
			}
			return nil
		},
	},
}

// ExitTransition devuelve el contrato del motivo de salida.
func ExitTransition(reason string) (Transition, error) {
	t, ok := exitTransitions[reason]
	if !ok {
		return Transition{}, domain.ErrInvalidReason
	}
	return t, nil
}

// ValidateInput valida cantidad y observación antes de abrir la transacción.
// Devuelve la cantidad solicitada normalizada (0 cuando el motivo no la usa).
func (t Transition) ValidateInput(quantity *int64, note string) (int64, error) {
	var requested int64
	switch t.Quantity {
	case QuantityIgnored:
		if quantity != nil && *quantity != 0 {
			return 0, domain.ErrInvalidQuantity
		}
	case QuantityOptional:
		if quantity != nil {
			if *quantity < 0 {
				return 0, domain.ErrInvalidQuantity
			}
			requested = *quantity
		}
	case QuantityRequired:
		if quantity == nil || *quantity <= 0 {
			return 0, domain.ErrInvalidQuantity
		}
		requested = *quantity
	case QuantityAll:
		if quantity != nil {
			return 0, domain.ErrInvalidQuantity
		}
	}
	if t.RequiresNote && strings.TrimSpace(note) == "" {
		return 0, domain.ErrMissingNote
	}
	return requested, nil
}

// Check evalúa la precondición contra el snapshot bloqueado.
func (t Transition) Check(p *entity.Product, hasOpenCycle bool, requested int64) error {
	if t.precondition == nil {
		return nil
	}
	return t.precondition(p, hasOpenCycle, requested)
}

// Apply calcula la cantidad efectivamente aplicada y el stock resultante.
func (t Transition) Apply(onHand, requested int64) (applied, after int64) {
	switch t.Stock {
	case StockAdd:
		return requested, onHand + requested
	case StockSubtract:
		return requested, onHand - requested
	case StockClear:
		return onHand, 0
	}
	return 0, onHand
}

// NextStatus estado del producto después de aplicar el movimiento (p ya tiene el stock nuevo).
func (t Transition) NextStatus(p *entity.Product, today time.Time) string {
	switch t.Status {
	case StatusSetInUse:
		return entity.StatusInUse
	case StatusSetWrittenOff:
		return entity.StatusWrittenOff
	case StatusRelease:
		return ResolveStatus(FactsOf(p), today)
	}
	return ReconcileStatus(p.Status, FactsOf(p), today)
}

func notWrittenOff(p *entity.Product, _ bool, _ int64) error {
	if p.Status == entity.StatusWrittenOff {
		return domain.ErrProductAlreadyWrittenOff
	}
	return nil
}

func enoughStock(p *entity.Product, requested int64) error {
	if requested > p.QuantityOnHand {
		return &domain.InsufficientStockError{ProductID: p.ID, Available: p.QuantityOnHand, Requested: requested}
	}
	return nil
}
