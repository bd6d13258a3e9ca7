// Package memory implementa los puertos de persistencia en memoria con la misma semántica
// de bloqueo que PostgreSQL: bloqueo exclusivo por producto con espera acotada, SKIP LOCKED
// para el barrido y escrituras visibles solo al confirmar la transacción.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/inventario-lab/internal/application/inventory"
	"github.com/jhoicas/inventario-lab/internal/domain"
	"github.com/jhoicas/inventario-lab/internal/domain/entity"
	"github.com/jhoicas/inventario-lab/internal/domain/repository"
)

var _ inventory.TxRunner = (*Store)(nil)

// DefaultLockTimeout espera máxima por el bloqueo de un producto cuando no se configura otra.
const DefaultLockTimeout = 5 * time.Second

// Store estado confirmado y bloqueos por producto.
type Store struct {
	mu          sync.RWMutex
	products    map[string]*entity.Product
	order       []string // orden de alta de productos
	movements   []*entity.Movement
	movementIdx map[string]int
	cycles      map[string]*entity.UsageCycle
	cycleOrder  []string

	locksMu sync.Mutex
	locks   map[string]chan struct{}

	lockTimeout time.Duration
}

// NewStore crea un almacén vacío. lockTimeout <= 0 usa DefaultLockTimeout.
func NewStore(lockTimeout time.Duration) *Store {
	if lockTimeout <= 0 {
		lockTimeout = DefaultLockTimeout
	}
	return &Store{
		products:    make(map[string]*entity.Product),
		movementIdx: make(map[string]int),
		cycles:      make(map[string]*entity.UsageCycle),
		locks:       make(map[string]chan struct{}),
		lockTimeout: lockTimeout,
	}
}

// Products repositorio de productos fuera de transacción (lecturas confirmadas y altas).
func (s *Store) Products() repository.ProductRepository { return &productRepo{s: s} }

// Movements repositorio del libro fuera de transacción.
func (s *Store) Movements() repository.MovementRepository { return &movementRepo{s: s} }

// UsageCycles repositorio de ciclos fuera de transacción.
func (s *Store) UsageCycles() repository.UsageCycleRepository { return &cycleRepo{s: s} }

// Run ejecuta fn en una transacción: las escrituras se aplican juntas al confirmar
// y los bloqueos de producto se liberan después de aplicarlas.
func (s *Store) Run(ctx context.Context, fn func(
	productRepo repository.ProductRepository,
	movRepo repository.MovementRepository,
	cycleRepo repository.UsageCycleRepository,
) error) error {
	t := newTx(s)
	defer t.release()

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := fn(&productRepo{s: s, tx: t}, &movementRepo{s: s, tx: t}, &cycleRepo{s: s, tx: t}); err != nil {
		return err
	}
	return t.commit()
}

func (s *Store) lockChan(id string) chan struct{} {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	ch, ok := s.locks[id]
	if !ok {
		ch = make(chan struct{}, 1)
		s.locks[id] = ch
	}
	return ch
}

// ── tx ───────────────────────────────────────────────────────────────────────

type tx struct {
	s         *Store
	held      map[string]chan struct{}
	products  map[string]*entity.Product // altas y cambios pendientes
	created   []string
	movements []*entity.Movement
	cycles    map[string]*entity.UsageCycle
	newCycles []string
}

func newTx(s *Store) *tx {
	return &tx{
		s:        s,
		held:     make(map[string]chan struct{}),
		products: make(map[string]*entity.Product),
		cycles:   make(map[string]*entity.UsageCycle),
	}
}

// lock toma el bloqueo exclusivo del producto esperando a lo sumo lockTimeout.
func (t *tx) lock(ctx context.Context, id string) error {
	if _, ok := t.held[id]; ok {
		return nil
	}
	ch := t.s.lockChan(id)
	timer := time.NewTimer(t.s.lockTimeout)
	defer timer.Stop()
	select {
	case ch <- struct{}{}:
		t.held[id] = ch
		return nil
	case <-timer.C:
		return domain.ErrBusy
	case <-ctx.Done():
		return ctx.Err()
	}
}

// tryLock como lock pero sin esperar.
func (t *tx) tryLock(id string) bool {
	if _, ok := t.held[id]; ok {
		return true
	}
	ch := t.s.lockChan(id)
	select {
	case ch <- struct{}{}:
		t.held[id] = ch
		return true
	default:
		return false
	}
}

func (t *tx) release() {
	for id, ch := range t.held {
		<-ch
		delete(t.held, id)
	}
}

func (t *tx) commit() error {
	s := t.s
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range t.movements {
		if _, dup := s.movementIdx[m.ID]; dup {
			return domain.ErrDuplicate
		}
	}
	for _, id := range t.created {
		if _, dup := s.products[id]; dup {
			return domain.ErrDuplicate
		}
	}

	for _, id := range t.created {
		s.order = append(s.order, id)
	}
	for id, p := range t.products {
		s.products[id] = p
	}
	for _, m := range t.movements {
		s.movementIdx[m.ID] = len(s.movements)
		s.movements = append(s.movements, m)
	}
	for _, id := range t.newCycles {
		s.cycleOrder = append(s.cycleOrder, id)
	}
	for id, c := range t.cycles {
		s.cycles[id] = c
	}
	return nil
}

// productView devuelve el producto visto desde t (cambios pendientes primero).
// t puede ser nil; el llamador tiene s.mu tomado.
func (s *Store) productView(t *tx, id string) *entity.Product {
	if t != nil {
		if p, ok := t.products[id]; ok {
			return p
		}
	}
	return s.products[id]
}

// cycleViews ciclos del producto vistos desde t, en orden de apertura.
func (s *Store) cycleViews(t *tx, productID string) []*entity.UsageCycle {
	ids := s.cycleOrder
	if t != nil && len(t.newCycles) > 0 {
		ids = append(append([]string(nil), s.cycleOrder...), t.newCycles...)
	}
	var out []*entity.UsageCycle
	for _, id := range ids {
		c := s.cycles[id]
		if t != nil {
			if staged, ok := t.cycles[id]; ok {
				c = staged
			}
		}
		if c != nil && c.ProductID == productID {
			out = append(out, c)
		}
	}
	return out
}

func copyProduct(p *entity.Product) *entity.Product {
	if p == nil {
		return nil
	}
	cp := *p
	if p.ExpiryDate != nil {
		d := *p.ExpiryDate
		cp.ExpiryDate = &d
	}
	return &cp
}

func copyCycle(c *entity.UsageCycle) *entity.UsageCycle {
	cp := *c
	if c.EndTime != nil {
		e := *c.EndTime
		cp.EndTime = &e
	}
	if c.EndMovementID != nil {
		id := *c.EndMovementID
		cp.EndMovementID = &id
	}
	return &cp
}
