package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/inventario-lab/internal/domain"
	"github.com/jhoicas/inventario-lab/internal/domain/entity"
	"github.com/jhoicas/inventario-lab/internal/domain/repository"
)

var _ repository.UsageCycleRepository = (*UsageCycleRepo)(nil)

// UsageCycleRepo ciclos de uso sobre PostgreSQL. El índice único parcial
// usage_cycles_one_open impide dos ciclos abiertos para el mismo producto.
type UsageCycleRepo struct {
	q Querier
}

// NewUsageCycleRepository construye el adaptador. Pasar pool o tx (Querier).
func NewUsageCycleRepository(q Querier) *UsageCycleRepo {
	return &UsageCycleRepo{q: q}
}

// Create abre un ciclo.
func (r *UsageCycleRepo) Create(ctx context.Context, cycle *entity.UsageCycle) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO usage_cycles (id, product_id, actor_id, start_time, start_movement_id)
		VALUES ($1, $2, $3, $4, $5)`,
		cycle.ID, cycle.ProductID, cycle.ActorID, cycle.StartTime, cycle.StartMovementID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return &domain.TransitionError{Reason: entity.ReasonIniciarUso, From: entity.StatusInUse}
		}
		return mapError("create usage cycle", err)
	}
	return nil
}

// GetOpenByProduct devuelve el ciclo abierto del producto o (nil, nil).
func (r *UsageCycleRepo) GetOpenByProduct(ctx context.Context, productID string) (*entity.UsageCycle, error) {
	var c entity.UsageCycle
	err := r.q.QueryRow(ctx, `
		SELECT id, product_id, actor_id, start_time, end_time, start_movement_id, end_movement_id
		FROM usage_cycles WHERE product_id = $1 AND end_time IS NULL`, productID,
	).Scan(&c.ID, &c.ProductID, &c.ActorID, &c.StartTime, &c.EndTime, &c.StartMovementID, &c.EndMovementID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError("get open usage cycle", err)
	}
	return &c, nil
}

// Close cierra el ciclo; falla con ErrNoOpenUsageCycle si ya estaba cerrado.
func (r *UsageCycleRepo) Close(ctx context.Context, id string, endTime time.Time, endMovementID string) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE usage_cycles SET end_time = $2, end_movement_id = $3
		WHERE id = $1 AND end_time IS NULL`, id, endTime, endMovementID)
	if err != nil {
		return mapError("close usage cycle", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNoOpenUsageCycle
	}
	return nil
}
