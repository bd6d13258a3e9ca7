package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-lab/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza atomicidad para el motor de inventario: si fn devuelve error se hace Rollback.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		productRepo repository.ProductRepository,
		movRepo repository.MovementRepository,
		cycleRepo repository.UsageCycleRepository,
	) error) error
}

// Metrics observa los resultados del motor. Las implementaciones deben tolerar receptor nil.
type Metrics interface {
	ObserveMovement(direction, reason string, err error)
	ObserveSweep(changed, skipped, failed int, elapsed time.Duration)
}

type noopMetrics struct{}

func (noopMetrics) ObserveMovement(string, string, error)     {}
func (noopMetrics) ObserveSweep(int, int, int, time.Duration) {}

// Clock entrega la hora actual en la zona horaria del negocio (las fechas de vencimiento
// se comparan por día calendario en esa zona).
type Clock struct {
	Location *time.Location
	NowFunc  func() time.Time
}

// SystemClock reloj de sistema en la zona indicada (UTC si loc es nil).
func SystemClock(loc *time.Location) Clock {
	return Clock{Location: loc, NowFunc: time.Now}
}

// Now devuelve la hora actual en la zona del negocio.
func (c Clock) Now() time.Time {
	now := time.Now
	if c.NowFunc != nil {
		now = c.NowFunc
	}
	loc := c.Location
	if loc == nil {
		loc = time.UTC
	}
	return now().In(loc)
}
