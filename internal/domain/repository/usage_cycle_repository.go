package repository

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-lab/internal/domain/entity"
)

// UsageCycleRepository define el puerto de los ciclos de uso.
// La unicidad del ciclo abierto la protege el bloqueo del producto, no este puerto.
type UsageCycleRepository interface {
	Create(ctx context.Context, cycle *entity.UsageCycle) error
	// GetOpenByProduct devuelve el ciclo abierto del producto o (nil, nil).
	GetOpenByProduct(ctx context.Context, productID string) (*entity.UsageCycle, error)
	Close(ctx context.Context, id string, endTime time.Time, endMovementID string) error
}
