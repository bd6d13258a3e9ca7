package inventory_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-lab/internal/domain"
	"github.com/jhoicas/inventario-lab/internal/domain/entity"
	"github.com/jhoicas/inventario-lab/internal/domain/inventory"
)

func qty(n int64) *int64 { return &n }

func product(status string, onHand int64) *entity.Product {
	return &entity.Product{
		ID:               "p-1",
		Kind:             entity.ProductKindMaterial,
		QuantityOnHand:   onHand,
		MinimumThreshold: 5,
		Status:           status,
	}
}

func mustExit(t *testing.T, reason string) inventory.Transition {
	t.Helper()
	tr, err := inventory.ExitTransition(reason)
	require.NoError(t, err)
	return tr
}

// ──────────────────────────────────────────────────────────────────────────────
// Validación de entrada (antes de la transacción)
// ──────────────────────────────────────────────────────────────────────────────

func TestExitTransition_MotivoDesconocido(t *testing.T) {
	_, err := inventory.ExitTransition("PRESTAMO")
	assert.ErrorIs(t, err, domain.ErrInvalidReason)
}

func TestValidateInput(t *testing.T) {
	cases := []struct {
		name     string
		tr       inventory.Transition
		quantity *int64
		note     string
		want     int64
		wantErr  error
	}{
		{"entrada requiere cantidad", inventory.EntryTransition, nil, "", 0, domain.ErrInvalidQuantity},
		{"entrada con cero", inventory.EntryTransition, qty(0), "", 0, domain.ErrInvalidQuantity},
		{"entrada negativa", inventory.EntryTransition, qty(-3), "", 0, domain.ErrInvalidQuantity},
		{"entrada válida", inventory.EntryTransition, qty(4), "", 4, nil},
		{"iniciar uso sin cantidad", mustExit(t, entity.ReasonIniciarUso), nil, "", 0, nil},
		{"iniciar uso no mueve stock", mustExit(t, entity.ReasonIniciarUso), qty(2), "", 0, domain.ErrInvalidQuantity},
		{"finalizar uso sin consumo", mustExit(t, entity.ReasonFinalizarUso), nil, "", 0, nil},
		{"finalizar uso con consumo", mustExit(t, entity.ReasonFinalizarUso), qty(3), "", 3, nil},
		{"finalizar uso negativo", mustExit(t, entity.ReasonFinalizarUso), qty(-1), "", 0, domain.ErrInvalidQuantity},
		{"incidencia sin nota", mustExit(t, entity.ReasonIncidencia), qty(1), "  ", 0, domain.ErrMissingNote},
		{"incidencia sin cantidad", mustExit(t, entity.ReasonIncidencia), nil, "derrame", 0, domain.ErrInvalidQuantity},
		{"incidencia válida", mustExit(t, entity.ReasonIncidencia), qty(2), "derrame", 2, nil},
		{"baja sin nota", mustExit(t, entity.ReasonBaja), nil, "", 0, domain.ErrMissingNote},
		{"baja no acepta cantidad", mustExit(t, entity.ReasonBaja), qty(7), "dañado", 0, domain.ErrInvalidQuantity},
		{"baja válida", mustExit(t, entity.ReasonBaja), nil, "dañado", 0, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.tr.ValidateInput(tc.quantity, tc.note)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Precondiciones contra el estado bloqueado
// ──────────────────────────────────────────────────────────────────────────────

func TestCheck_IniciarUso(t *testing.T) {
	tr := mustExit(t, entity.ReasonIniciarUso)

	for _, status := range []string{entity.StatusAvailable, entity.StatusLowStock, entity.StatusNearExpiry} {
		assert.NoError(t, tr.Check(product(status, 3), false, 0), status)
	}
	for _, status := range []string{entity.StatusOutOfStock, entity.StatusExpired, entity.StatusInUse} {
		var te *domain.TransitionError
		err := tr.Check(product(status, 3), false, 0)
		require.ErrorAs(t, err, &te, status)
		assert.Equal(t, status, te.From)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	}

	assert.ErrorIs(t, tr.Check(product(entity.StatusWrittenOff, 0), false, 0), domain.ErrProductAlreadyWrittenOff)
	assert.ErrorIs(t, tr.Check(product(entity.StatusAvailable, 3), true, 0), domain.ErrInvalidTransition,
		"no se puede abrir un segundo ciclo")
	assert.ErrorIs(t, tr.Check(product(entity.StatusNearExpiry, 0), false, 0), domain.ErrInsufficientStock,
		"un reactivo por vencer sin existencias no puede ponerse en uso")
}

func TestCheck_FinalizarUso(t *testing.T) {
	tr := mustExit(t, entity.ReasonFinalizarUso)

	assert.ErrorIs(t, tr.Check(product(entity.StatusInUse, 10), false, 3), domain.ErrNoOpenUsageCycle)
	assert.ErrorIs(t, tr.Check(product(entity.StatusAvailable, 10), false, 3), domain.ErrNoOpenUsageCycle)
	assert.ErrorIs(t, tr.Check(product(entity.StatusAvailable, 10), true, 3), domain.ErrInvalidTransition)
	assert.NoError(t, tr.Check(product(entity.StatusInUse, 10), true, 3))
	assert.NoError(t, tr.Check(product(entity.StatusInUse, 0), true, 0), "cerrar sin consumo aunque no quede stock")

	var se *domain.InsufficientStockError
	require.ErrorAs(t, tr.Check(product(entity.StatusInUse, 2), true, 3), &se)
	assert.Equal(t, int64(2), se.Available)
	assert.Equal(t, int64(3), se.Requested)
}

func TestCheck_Incidencia(t *testing.T) {
	tr := mustExit(t, entity.ReasonIncidencia)

	assert.NoError(t, tr.Check(product(entity.StatusInUse, 4), true, 1), "se permite durante un uso activo")
	assert.NoError(t, tr.Check(product(entity.StatusExpired, 4), false, 4))
	assert.ErrorIs(t, tr.Check(product(entity.StatusLowStock, 4), false, 5), domain.ErrInsufficientStock)
	assert.ErrorIs(t, tr.Check(product(entity.StatusWrittenOff, 0), false, 1), domain.ErrProductAlreadyWrittenOff)
}

func TestCheck_Baja(t *testing.T) {
	tr := mustExit(t, entity.ReasonBaja)

	assert.NoError(t, tr.Check(product(entity.StatusExpired, 7), false, 0))
	assert.NoError(t, tr.Check(product(entity.StatusInUse, 7), true, 0))
	assert.ErrorIs(t, tr.Check(product(entity.StatusOutOfStock, 0), false, 0), domain.ErrInsufficientStock)
	assert.ErrorIs(t, tr.Check(product(entity.StatusWrittenOff, 0), false, 0), domain.ErrProductAlreadyWrittenOff)
}

// ──────────────────────────────────────────────────────────────────────────────
// Efectos
// ──────────────────────────────────────────────────────────────────────────────

func TestApply(t *testing.T) {
	applied, after := inventory.EntryTransition.Apply(10, 5)
	assert.Equal(t, int64(5), applied)
	assert.Equal(t, int64(15), after)

	applied, after = mustExit(t, entity.ReasonFinalizarUso).Apply(10, 3)
	assert.Equal(t, int64(3), applied)
	assert.Equal(t, int64(7), after)

	applied, after = mustExit(t, entity.ReasonIniciarUso).Apply(10, 0)
	assert.Equal(t, int64(0), applied)
	assert.Equal(t, int64(10), after)

	applied, after = mustExit(t, entity.ReasonBaja).Apply(7, 0)
	assert.Equal(t, int64(7), applied, "la baja registra todo el stock previo")
	assert.Equal(t, int64(0), after)
}

func TestNextStatus(t *testing.T) {
	inUse := product(entity.StatusInUse, 7)

	assert.Equal(t, entity.StatusAvailable, mustExit(t, entity.ReasonFinalizarUso).NextStatus(inUse, today),
		"finalizar uso libera IN_USE y re-evalúa")
	assert.Equal(t, entity.StatusInUse, mustExit(t, entity.ReasonIncidencia).NextStatus(inUse, today),
		"una incidencia no cierra el uso activo")
	assert.Equal(t, entity.StatusInUse, mustExit(t, entity.ReasonIniciarUso).NextStatus(product(entity.StatusAvailable, 7), today))
	assert.Equal(t, entity.StatusWrittenOff, mustExit(t, entity.ReasonBaja).NextStatus(product(entity.StatusAvailable, 0), today))
	assert.Equal(t, entity.StatusLowStock, inventory.EntryTransition.NextStatus(product(entity.StatusOutOfStock, 3), today))
	assert.Equal(t, entity.StatusInUse, inventory.EntryTransition.NextStatus(inUse, today),
		"las entradas nunca quitan IN_USE")
}

func TestCheck_EntradaDesbordaStock(t *testing.T) {
	assert.NoError(t, inventory.EntryTransition.Check(product(entity.StatusAvailable, 10), false, math.MaxInt64-10))
	assert.ErrorIs(t, inventory.EntryTransition.Check(product(entity.StatusAvailable, 10), false, math.MaxInt64-9), domain.ErrInvalidQuantity)
}

func TestBaja_CierraElCicloAbierto(t *testing.T) {
	assert.Equal(t, inventory.CycleCloseIfOpen, mustExit(t, entity.ReasonBaja).Cycle)
	assert.Equal(t, inventory.CycleNone, mustExit(t, entity.ReasonIncidencia).Cycle)
}
