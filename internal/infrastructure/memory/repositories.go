package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/inventario-lab/internal/domain"
	"github.com/jhoicas/inventario-lab/internal/domain/entity"
	"github.com/jhoicas/inventario-lab/internal/domain/repository"
)

var (
	_ repository.ProductRepository    = (*productRepo)(nil)
	_ repository.MovementRepository   = (*movementRepo)(nil)
	_ repository.UsageCycleRepository = (*cycleRepo)(nil)
)

// ── productos ────────────────────────────────────────────────────────────────

type productRepo struct {
	s  *Store
	tx *tx // nil = fuera de transacción
}

func (r *productRepo) Create(ctx context.Context, product *entity.Product) error {
	if err := validProduct(product); err != nil {
		return err
	}
	cp := copyProduct(product)
	if r.tx != nil {
		r.s.mu.RLock()
		exists := r.s.productView(r.tx, product.ID) != nil
		r.s.mu.RUnlock()
		if exists {
			return domain.ErrDuplicate
		}
		r.tx.products[cp.ID] = cp
		r.tx.created = append(r.tx.created, cp.ID)
		return nil
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[cp.ID]; ok {
		return domain.ErrDuplicate
	}
	r.s.products[cp.ID] = cp
	r.s.order = append(r.s.order, cp.ID)
	return nil
}

func (r *productRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return copyProduct(r.s.productView(r.tx, id)), nil
}

func (r *productRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	if r.tx == nil {
		return r.GetByID(ctx, id)
	}
	if p, _ := r.GetByID(ctx, id); p == nil {
		return nil, nil
	}
	if err := r.tx.lock(ctx, id); err != nil {
		return nil, err
	}
	// Releer: el dueño anterior del bloqueo pudo haber confirmado cambios.
	return r.GetByID(ctx, id)
}

func (r *productRepo) GetForUpdateSkipLocked(ctx context.Context, id string) (*entity.Product, error) {
	if r.tx == nil {
		return r.GetByID(ctx, id)
	}
	if p, _ := r.GetByID(ctx, id); p == nil {
		return nil, nil
	}
	if !r.tx.tryLock(id) {
		return nil, nil
	}
	return r.GetByID(ctx, id)
}

func (r *productRepo) UpdateState(ctx context.Context, id string, quantityOnHand int64, status string) error {
	if quantityOnHand < 0 {
		return domain.ErrInvalidInput
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current := r.s.productView(r.tx, id)
	if current == nil {
		return domain.ErrProductNotFound
	}
	next := copyProduct(current)
	next.QuantityOnHand = quantityOnHand
	next.Status = status
	next.UpdatedAt = time.Now().UTC()
	if r.tx != nil {
		r.tx.products[id] = next
		return nil
	}
	r.s.products[id] = next
	return nil
}

func (r *productRepo) List(ctx context.Context, limit, offset int) ([]*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	ids := r.s.order
	if r.tx != nil && len(r.tx.created) > 0 {
		ids = append(append([]string(nil), r.s.order...), r.tx.created...)
	}
	list := make([]*entity.Product, 0, len(ids))
	for _, id := range page(len(ids), limit, offset) {
		list = append(list, copyProduct(r.s.productView(r.tx, ids[id])))
	}
	return list, nil
}

func (r *productRepo) ListSweepCandidates(ctx context.Context) ([]string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var ids []string
	for _, id := range r.s.order {
		if p := r.s.productView(r.tx, id); p != nil && !entity.IsStickyStatus(p.Status) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func validProduct(p *entity.Product) error {
	if p == nil || p.ID == "" || p.QuantityOnHand < 0 || p.MinimumThreshold < 0 || !entity.ValidProductKind(p.Kind) {
		return domain.ErrInvalidInput
	}
	return nil
}

// ── movimientos ──────────────────────────────────────────────────────────────

type movementRepo struct {
	s  *Store
	tx *tx
}

func (r *movementRepo) Create(ctx context.Context, movement *entity.Movement) error {
	if movement.ID == "" || movement.Quantity < 0 || movement.BalanceAfter < 0 {
		return domain.ErrInvalidInput
	}
	cp := *movement
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, dup := r.s.movementIdx[cp.ID]; dup {
		return domain.ErrDuplicate
	}
	if r.tx != nil {
		r.tx.movements = append(r.tx.movements, &cp)
		return nil
	}
	r.s.movementIdx[cp.ID] = len(r.s.movements)
	r.s.movements = append(r.s.movements, &cp)
	return nil
}

func (r *movementRepo) GetByID(ctx context.Context, id string) (*entity.Movement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if r.tx != nil {
		for _, m := range r.tx.movements {
			if m.ID == id {
				cp := *m
				return &cp, nil
			}
		}
	}
	i, ok := r.s.movementIdx[id]
	if !ok {
		return nil, nil
	}
	cp := *r.s.movements[i]
	return &cp, nil
}

func (r *movementRepo) ListHistory(ctx context.Context, productID string, limit, offset int) ([]*entity.MovementHistoryEntry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	all := r.s.movements
	if r.tx != nil && len(r.tx.movements) > 0 {
		all = append(append([]*entity.Movement(nil), r.s.movements...), r.tx.movements...)
	}
	var mine []*entity.Movement
	for i := len(all) - 1; i >= 0; i-- {
		if all[i].ProductID == productID {
			mine = append(mine, all[i])
		}
	}

	byMovement := make(map[string]*entity.UsageCycle)
	for _, c := range r.s.cycleViews(r.tx, productID) {
		byMovement[c.StartMovementID] = c
		if c.EndMovementID != nil {
			byMovement[*c.EndMovementID] = c
		}
	}

	out := make([]*entity.MovementHistoryEntry, 0, len(mine))
	for _, i := range page(len(mine), limit, offset) {
		e := &entity.MovementHistoryEntry{Movement: *mine[i]}
		if c, ok := byMovement[e.ID]; ok {
			start := c.StartTime
			e.UsageStartedAt = &start
			if c.EndTime != nil {
				end := *c.EndTime
				e.UsageEndedAt = &end
			}
		}
		out = append(out, e)
	}
	return out, nil
}

// ── ciclos de uso ────────────────────────────────────────────────────────────

type cycleRepo struct {
	s  *Store
	tx *tx
}

func (r *cycleRepo) Create(ctx context.Context, cycle *entity.UsageCycle) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.cycleViews(r.tx, cycle.ProductID) {
		if c.IsOpen() {
			return &domain.TransitionError{Reason: entity.ReasonIniciarUso, From: entity.StatusInUse}
		}
	}
	cp := copyCycle(cycle)
	if r.tx != nil {
		r.tx.cycles[cp.ID] = cp
		r.tx.newCycles = append(r.tx.newCycles, cp.ID)
		return nil
	}
	r.s.cycles[cp.ID] = cp
	r.s.cycleOrder = append(r.s.cycleOrder, cp.ID)
	return nil
}

func (r *cycleRepo) GetOpenByProduct(ctx context.Context, productID string) (*entity.UsageCycle, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, c := range r.s.cycleViews(r.tx, productID) {
		if c.IsOpen() {
			return copyCycle(c), nil
		}
	}
	return nil, nil
}

func (r *cycleRepo) Close(ctx context.Context, id string, endTime time.Time, endMovementID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := r.s.cycles[id]
	if r.tx != nil {
		if staged, ok := r.tx.cycles[id]; ok {
			c = staged
		}
	}
	if c == nil || !c.IsOpen() {
		return domain.ErrNoOpenUsageCycle
	}
	next := copyCycle(c)
	next.EndTime = &endTime
	next.EndMovementID = &endMovementID
	if r.tx != nil {
		r.tx.cycles[id] = next
		return nil
	}
	r.s.cycles[id] = next
	return nil
}

// page índices [offset, offset+limit) acotados a n.
func page(n, limit, offset int) []int {
	if offset < 0 {
		offset = 0
	}
	if offset >= n {
		return nil
	}
	end := n
	if limit > 0 && offset+limit < n {
		end = offset + limit
	}
	idx := make([]int, 0, end-offset)
	for i := offset; i < end; i++ {
		idx = append(idx, i)
	}
	return idx
}
