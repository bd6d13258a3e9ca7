package inventory

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jhoicas/inventario-lab/internal/application/dto"
	"github.com/jhoicas/inventario-lab/internal/domain"
	"github.com/jhoicas/inventario-lab/internal/domain/entity"
	"github.com/jhoicas/inventario-lab/internal/domain/inventory"
	"github.com/jhoicas/inventario-lab/internal/domain/repository"
)

// MovementUseCase coordina los movimientos de inventario (entrada, salida, baja) de forma transaccional:
// bloqueo de fila del producto (SELECT FOR UPDATE), validación contra el estado bloqueado,
// registro en el libro, actualización del estado y del ciclo de uso, y Commit/Rollback.
type MovementUseCase struct {
	txRunner TxRunner
	clock    Clock
	metrics  Metrics
}

// NewMovementUseCase construye el caso de uso. metrics puede ser nil.
func NewMovementUseCase(txRunner TxRunner, clock Clock, metrics Metrics) *MovementUseCase {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &MovementUseCase{txRunner: txRunner, clock: clock, metrics: metrics}
}

// EntryInput entrada para RecordEntry.
type EntryInput struct {
	ProductID string
	ActorID   string
	Quantity  int64
	Note      string
}

// ExitInput entrada para RecordExit. Quantity es opcional según el motivo.
type ExitInput struct {
	ProductID string
	ActorID   string
	Reason    string
	Quantity  *int64
	Note      string
}

// WriteOffInput entrada para RecordWriteOff. La cantidad es implícita: todo el stock.
type WriteOffInput struct {
	ProductID string
	ActorID   string
	Note      string
}

// RecordEntry suma stock al producto y registra la entrada.
func (uc *MovementUseCase) RecordEntry(ctx context.Context, in EntryInput) (*dto.MovementResponse, error) {
	quantity := in.Quantity
	return uc.record(ctx, inventory.EntryTransition, in.ProductID, in.ActorID, &quantity, in.Note)
}

// RecordExit registra una salida según el motivo (INICIAR_USO, FINALIZAR_USO, INCIDENCIA, BAJA).
func (uc *MovementUseCase) RecordExit(ctx context.Context, in ExitInput) (*dto.MovementResponse, error) {
	tr, err := inventory.ExitTransition(strings.ToUpper(strings.TrimSpace(in.Reason)))
	if err != nil {
		uc.metrics.ObserveMovement(entity.MovementDirectionExit, in.Reason, err)
		return nil, err
	}
	return uc.record(ctx, tr, in.ProductID, in.ActorID, in.Quantity, in.Note)
}

// RecordWriteOff da de baja el lote: stock a cero y estado WRITTEN_OFF (terminal). La nota es obligatoria.
func (uc *MovementUseCase) RecordWriteOff(ctx context.Context, in WriteOffInput) (*dto.MovementResponse, error) {
	tr, err := inventory.ExitTransition(entity.ReasonBaja)
	if err != nil {
		return nil, err
	}
	return uc.record(ctx, tr, in.ProductID, in.ActorID, nil, in.Note)
}

func (uc *MovementUseCase) record(ctx context.Context, tr inventory.Transition, productID, actorID string, quantity *int64, note string) (*dto.MovementResponse, error) {
	out, err := uc.apply(ctx, tr, productID, actorID, quantity, note)
	uc.metrics.ObserveMovement(tr.Direction, tr.Reason, err)
	return out, err
}

// apply es el único punto que muta Product, Movement y UsageCycle:
// valida la entrada, bloquea el producto, valida contra el snapshot bloqueado, muta y confirma.
func (uc *MovementUseCase) apply(ctx context.Context, tr inventory.Transition, productID, actorID string, quantity *int64, note string) (*dto.MovementResponse, error) {
	if productID == "" || actorID == "" {
		return nil, domain.ErrInvalidInput
	}
	requested, err := tr.ValidateInput(quantity, note)
	if err != nil {
		return nil, err
	}
	note = strings.TrimSpace(note)

	var out *dto.MovementResponse
	err = uc.txRunner.Run(ctx, func(
		productRepo repository.ProductRepository,
		movRepo repository.MovementRepository,
		cycleRepo repository.UsageCycleRepository,
	) error {
		// Bloquea la fila del producto; todo lo que sigue se valida contra este snapshot.
		product, err := productRepo.GetForUpdate(ctx, productID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrProductNotFound
		}
		openCycle, err := cycleRepo.GetOpenByProduct(ctx, productID)
		if err != nil {
			return err
		}
		// El estado guardado puede estar atrasado respecto a la fecha (el barrido aún no pasó).
		now := uc.clock.Now()
		product.Status = inventory.ReconcileStatus(product.Status, inventory.FactsOf(product), now)
		if err := tr.Check(product, openCycle != nil, requested); err != nil {
			return err
		}

		applied, after := tr.Apply(product.QuantityOnHand, requested)
		product.QuantityOnHand = after
		product.Status = tr.NextStatus(product, now)
		product.UpdatedAt = now

		mov := &entity.Movement{
			ID:           uuid.New().String(),
			ProductID:    productID,
			ActorID:      actorID,
			Direction:    tr.Direction,
			ReasonCode:   tr.Reason,
			Quantity:     applied,
			BalanceAfter: after,
			Note:         note,
			CreatedAt:    now,
		}
		if err := movRepo.Create(ctx, mov); err != nil {
			return err
		}

		switch tr.Cycle {
		case inventory.CycleOpen:
			cycle := &entity.UsageCycle{
				ID:              uuid.New().String(),
				ProductID:       productID,
				ActorID:         actorID,
				StartTime:       now,
				StartMovementID: mov.ID,
			}
			if err := cycleRepo.Create(ctx, cycle); err != nil {
				return err
			}
		case inventory.CycleClose:
			if err := cycleRepo.Close(ctx, openCycle.ID, now, mov.ID); err != nil {
				return err
			}
		case inventory.CycleCloseIfOpen:
			if openCycle != nil {
				if err := cycleRepo.Close(ctx, openCycle.ID, now, mov.ID); err != nil {
					return err
				}
			}
		}

		if err := productRepo.UpdateState(ctx, productID, product.QuantityOnHand, product.Status); err != nil {
			return err
		}
		out = &dto.MovementResponse{MovementID: mov.ID, Product: dto.NewProductResponse(product)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
