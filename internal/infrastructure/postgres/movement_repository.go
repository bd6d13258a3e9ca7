package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/inventario-lab/internal/domain/entity"
	"github.com/jhoicas/inventario-lab/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo libro de movimientos sobre PostgreSQL. La tabla rechaza UPDATE y DELETE por trigger.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

const movementColumns = `m.id, m.product_id, m.actor_id, m.direction, m.reason_code, m.quantity, m.balance_after, m.note, m.created_at`

// Create inserta un movimiento.
func (r *MovementRepo) Create(ctx context.Context, movement *entity.Movement) error {
	if movement.ID == "" {
		movement.ID = uuid.New().String()
	}
	query := `
		INSERT INTO inventory_movements (id, product_id, actor_id, direction, reason_code, quantity, balance_after, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		movement.ID, movement.ProductID, movement.ActorID, movement.Direction, nullIfEmpty(movement.ReasonCode),
		movement.Quantity, movement.BalanceAfter, nullIfEmpty(movement.Note), movement.CreatedAt,
	)
	if err != nil {
		return mapError("create inventory movement", err)
	}
	return nil
}

// GetByID obtiene un movimiento por ID.
func (r *MovementRepo) GetByID(ctx context.Context, id string) (*entity.Movement, error) {
	query := `SELECT ` + movementColumns + ` FROM inventory_movements m WHERE m.id = $1`
	var m entity.Movement
	if err := scanMovement(r.q.QueryRow(ctx, query, id), &m); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError("get inventory movement", err)
	}
	return &m, nil
}

// ListHistory movimientos del producto, el más reciente primero, con el ciclo que abrieron o cerraron.
func (r *MovementRepo) ListHistory(ctx context.Context, productID string, limit, offset int) ([]*entity.MovementHistoryEntry, error) {
	query := `
		SELECT ` + movementColumns + `, c.start_time, c.end_time
		FROM inventory_movements m
		LEFT JOIN usage_cycles c ON c.start_movement_id = m.id OR c.end_movement_id = m.id
		WHERE m.product_id = $1
		ORDER BY m.seq DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, productID, limit, offset)
	if err != nil {
		return nil, mapError("list movement history", err)
	}
	defer rows.Close()

	var list []*entity.MovementHistoryEntry
	for rows.Next() {
		var e entity.MovementHistoryEntry
		if err := scanMovement(rows, &e.Movement, &e.UsageStartedAt, &e.UsageEndedAt); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}

func scanMovement(row pgx.Row, m *entity.Movement, extra ...any) error {
	var reason, note *string
	dest := []any{
		&m.ID, &m.ProductID, &m.ActorID, &m.Direction, &reason,
		&m.Quantity, &m.BalanceAfter, &note, &m.CreatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return err
	}
	if reason != nil {
		m.ReasonCode = *reason
	}
	if note != nil {
		m.Note = *note
	}
	return nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
