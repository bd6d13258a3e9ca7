package inventory_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	appinventory "github.com/jhoicas/inventario-lab/internal/application/inventory"
	"github.com/jhoicas/inventario-lab/internal/domain/entity"
	"github.com/jhoicas/inventario-lab/internal/infrastructure/memory"
)

var now = time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC)

func fixedClock() appinventory.Clock {
	return appinventory.Clock{Location: time.UTC, NowFunc: func() time.Time { return now }}
}

func ptr(n int64) *int64 { return &n }

func day(offset int) *time.Time {
	d := time.Date(now.Year(), now.Month(), now.Day()+offset, 0, 0, 0, 0, time.UTC)
	return &d
}

type fixture struct {
	store   *memory.Store
	uc      *appinventory.MovementUseCase
	metrics *recordingMetrics
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore(200 * time.Millisecond)
	m := &recordingMetrics{}
	return &fixture{store: store, uc: appinventory.NewMovementUseCase(store, fixedClock(), m), metrics: m}
}

func (f *fixture) seed(t *testing.T, p entity.Product) *entity.Product {
	t.Helper()
	if p.Kind == "" {
		p.Kind = entity.ProductKindMaterial
	}
	if p.Name == "" {
		p.Name = "Puntas de pipeta 200µl"
	}
	if p.Status == "" {
		p.Status = entity.StatusAvailable
	}
	p.CreatedAt, p.UpdatedAt = now, now
	require.NoError(t, f.store.Products().Create(context.Background(), &p))
	return &p
}

func (f *fixture) product(t *testing.T, id string) *entity.Product {
	t.Helper()
	p, err := f.store.Products().GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p
}

func (f *fixture) history(t *testing.T, id string) []*entity.MovementHistoryEntry {
	t.Helper()
	h, err := f.store.Movements().ListHistory(context.Background(), id, 100, 0)
	require.NoError(t, err)
	return h
}

type recordingMetrics struct {
	mu        sync.Mutex
	movements []string
	failures  int
	sweeps    int
}

func (m *recordingMetrics) ObserveMovement(direction, reason string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.movements = append(m.movements, direction+"/"+reason)
	if err != nil {
		m.failures++
	}
}

func (m *recordingMetrics) ObserveSweep(changed, skipped, failed int, elapsed time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweeps++
}
