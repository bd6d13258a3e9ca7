package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/inventario-lab/internal/domain"
	"github.com/jhoicas/inventario-lab/internal/domain/entity"
	"github.com/jhoicas/inventario-lab/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

const productColumns = `id, kind, name, lot_code, quantity_on_hand, minimum_threshold, status, expiry_date, created_at, updated_at`

// Create persiste un nuevo producto.
func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		product.ID, product.Kind, product.Name, product.LotCode, product.QuantityOnHand,
		product.MinimumThreshold, product.Status, product.ExpiryDate, product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return mapError("insert product", err)
	}
	return nil
}

// GetByID obtiene un producto por ID sin bloquearlo.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	return r.getOne(ctx, "get product", `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
}

// GetForUpdate bloquea la fila hasta el fin de la transacción.
// Si la espera supera lock_timeout PostgreSQL devuelve 55P03 y se traduce a ErrBusy.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.getOne(ctx, "lock product", `SELECT `+productColumns+` FROM products WHERE id = $1 FOR UPDATE`, id)
}

// GetForUpdateSkipLocked devuelve (nil, nil) si la fila no existe o ya está bloqueada.
func (r *ProductRepo) GetForUpdateSkipLocked(ctx context.Context, id string) (*entity.Product, error) {
	return r.getOne(ctx, "lock product (skip locked)", `SELECT `+productColumns+` FROM products WHERE id = $1 FOR UPDATE SKIP LOCKED`, id)
}

// getOne consulta por id. Un id que no es UUID no puede existir: (nil, nil) sin ir a la BD.
func (r *ProductRepo) getOne(ctx context.Context, op, query, id string) (*entity.Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}
	p, err := scanProduct(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError(op, err)
	}
	return p, nil
}

// UpdateState persiste cantidad y estado.
func (r *ProductRepo) UpdateState(ctx context.Context, id string, quantityOnHand int64, status string) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE products SET quantity_on_hand = $2, status = $3, updated_at = $4 WHERE id = $1`,
		id, quantityOnHand, status, time.Now().UTC(),
	)
	if err != nil {
		return mapError("update product state", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

// List lista productos ordenados por fecha de creación.
func (r *ProductRepo) List(ctx context.Context, limit, offset int) ([]*entity.Product, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+productColumns+` FROM products ORDER BY created_at, id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, mapError("list products", err)
	}
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// ListSweepCandidates IDs de productos cuyo estado depende solo de los hechos (no IN_USE ni WRITTEN_OFF).
func (r *ProductRepo) ListSweepCandidates(ctx context.Context) ([]string, error) {
	rows, err := r.q.Query(ctx,
		`SELECT id FROM products WHERE status NOT IN ($1, $2) ORDER BY id`,
		entity.StatusInUse, entity.StatusWrittenOff)
	if err != nil {
		return nil, mapError("list sweep candidates", err)
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan product id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(
		&p.ID, &p.Kind, &p.Name, &p.LotCode, &p.QuantityOnHand, &p.MinimumThreshold,
		&p.Status, &p.ExpiryDate, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
