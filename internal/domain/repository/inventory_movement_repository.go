package repository

import (
	"context"

	"github.com/jhoicas/inventario-lab/internal/domain/entity"
)

// MovementRepository define el puerto del libro de movimientos. Solo inserción: no hay Update ni Delete.
type MovementRepository interface {
	Create(ctx context.Context, movement *entity.Movement) error
	GetByID(ctx context.Context, id string) (*entity.Movement, error)
	// ListHistory lista los movimientos del producto del más reciente al más antiguo,
	// con el ciclo de uso que cada movimiento abrió o cerró.
	ListHistory(ctx context.Context, productID string, limit, offset int) ([]*entity.MovementHistoryEntry, error)
}
