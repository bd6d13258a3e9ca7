package repository

import (
	"context"

	"github.com/jhoicas/inventario-lab/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para el estado actual de Product (DIP).
// Los métodos Get* devuelven (nil, nil) cuando el producto no existe.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	// GetForUpdate bloquea la fila del producto hasta el fin de la transacción (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.Product, error)
	// GetForUpdateSkipLocked igual que GetForUpdate pero devuelve (nil, nil) si otra transacción
	// ya tiene la fila bloqueada (SELECT FOR UPDATE SKIP LOCKED).
	GetForUpdateSkipLocked(ctx context.Context, id string) (*entity.Product, error)
	// UpdateState persiste cantidad y estado; solo lo usan el coordinador de movimientos y el barrido.
	UpdateState(ctx context.Context, id string, quantityOnHand int64, status string) error
	List(ctx context.Context, limit, offset int) ([]*entity.Product, error)
	// ListSweepCandidates devuelve los IDs de productos cuyo estado no es manual (IN_USE, WRITTEN_OFF).
	ListSweepCandidates(ctx context.Context) ([]string, error)
}
