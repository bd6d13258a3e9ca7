package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-lab/internal/domain/inventory"
	"github.com/jhoicas/inventario-lab/internal/domain/repository"
	"github.com/jhoicas/inventario-lab/pkg/logger"
)

// StatusSweepUseCase re-aplica el resolver de estados a los productos cuyo estado no es manual,
// para capturar transiciones que solo dependen de la fecha (NEAR_EXPIRY, EXPIRED).
// Es idempotente: sin movimientos nuevos, una segunda pasada no cambia nada.
type StatusSweepUseCase struct {
	txRunner    TxRunner
	productRepo repository.ProductRepository
	clock       Clock
	log         *logger.Logger
	metrics     Metrics
}

// NewStatusSweepUseCase construye el barrido. productRepo se usa fuera de transacción para listar candidatos.
func NewStatusSweepUseCase(txRunner TxRunner, productRepo repository.ProductRepository, clock Clock, log *logger.Logger, metrics Metrics) *StatusSweepUseCase {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &StatusSweepUseCase{txRunner: txRunner, productRepo: productRepo, clock: clock, log: log, metrics: metrics}
}

type sweepOutcome int

const (
	sweepUnchanged sweepOutcome = iota
	sweepChanged
	sweepSkipped
)

// Run recorre los candidatos y devuelve cuántos productos cambiaron de estado.
// Cada producto va en su propia transacción; las filas bloqueadas por un movimiento en curso
// se saltan (la siguiente pasada las corrige) y un fallo en una fila no aborta el barrido.
func (uc *StatusSweepUseCase) Run(ctx context.Context) (int, error) {
	start := time.Now()
	ids, err := uc.productRepo.ListSweepCandidates(ctx)
	if err != nil {
		return 0, err
	}
	today := uc.clock.Now()

	var changed, skipped, failed int
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			uc.metrics.ObserveSweep(changed, skipped, failed, time.Since(start))
			return changed, err
		}
		outcome, err := uc.sweepOne(ctx, id, today)
		if err != nil {
			failed++
			uc.log.Warn().Err(err).Str("product_id", id).Msg("barrido de estados: fila omitida")
			continue
		}
		switch outcome {
		case sweepChanged:
			changed++
		case sweepSkipped:
			skipped++
		}
	}

	elapsed := time.Since(start)
	uc.metrics.ObserveSweep(changed, skipped, failed, elapsed)
	uc.log.Debug().
		Int("candidates", len(ids)).
		Int("changed", changed).
		Int("skipped", skipped).
		Int("failed", failed).
		Dur("elapsed", elapsed).
		Msg("barrido de estados completado")
	return changed, nil
}

func (uc *StatusSweepUseCase) sweepOne(ctx context.Context, productID string, today time.Time) (sweepOutcome, error) {
	outcome := sweepUnchanged
	err := uc.txRunner.Run(ctx, func(
		productRepo repository.ProductRepository,
		_ repository.MovementRepository,
		_ repository.UsageCycleRepository,
	) error {
		product, err := productRepo.GetForUpdateSkipLocked(ctx, productID)
		if err != nil {
			return err
		}
		if product == nil {
			outcome = sweepSkipped
			return nil
		}
		next := inventory.ReconcileStatus(product.Status, inventory.FactsOf(product), today)
		if next == product.Status {
			return nil
		}
		if err := productRepo.UpdateState(ctx, productID, product.QuantityOnHand, next); err != nil {
			return err
		}
		outcome = sweepChanged
		return nil
	})
	return outcome, err
}
