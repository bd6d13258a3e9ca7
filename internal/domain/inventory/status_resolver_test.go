package inventory_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/inventario-lab/internal/domain/entity"
	"github.com/jhoicas/inventario-lab/internal/domain/inventory"
)

var today = time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC)

func daysFromToday(n int) *time.Time {
	d := inventory.DateOf(today).AddDate(0, 0, n)
	return &d
}

func TestResolveStatus(t *testing.T) {
	cases := []struct {
		name  string
		facts inventory.StatusFacts
		want  string
	}{
		{
			name:  "material con stock sobre el mínimo",
			facts: inventory.StatusFacts{Kind: entity.ProductKindMaterial, QuantityOnHand: 10, MinimumThreshold: 5},
			want:  entity.StatusAvailable,
		},
		{
			name:  "stock bajo: 2 <= 5 y 2 > 0",
			facts: inventory.StatusFacts{Kind: entity.ProductKindMaterial, QuantityOnHand: 2, MinimumThreshold: 5},
			want:  entity.StatusLowStock,
		},
		{
			name:  "stock igual al mínimo cuenta como bajo",
			facts: inventory.StatusFacts{Kind: entity.ProductKindMaterial, QuantityOnHand: 5, MinimumThreshold: 5},
			want:  entity.StatusLowStock,
		},
		{
			name:  "sin stock",
			facts: inventory.StatusFacts{Kind: entity.ProductKindMaterial, QuantityOnHand: 0, MinimumThreshold: 5},
			want:  entity.StatusOutOfStock,
		},
		{
			name:  "los equipos nunca quedan en stock bajo",
			facts: inventory.StatusFacts{Kind: entity.ProductKindEquipment, QuantityOnHand: 1, MinimumThreshold: 5},
			want:  entity.StatusAvailable,
		},
		{
			name:  "equipo sin unidades",
			facts: inventory.StatusFacts{Kind: entity.ProductKindEquipment, QuantityOnHand: 0, MinimumThreshold: 5},
			want:  entity.StatusOutOfStock,
		},
		{
			name:  "reactivo vence en 10 días",
			facts: inventory.StatusFacts{Kind: entity.ProductKindReagent, QuantityOnHand: 10, MinimumThreshold: 5, ExpiryDate: daysFromToday(10)},
			want:  entity.StatusNearExpiry,
		},
		{
			name:  "reactivo vence exactamente en 15 días",
			facts: inventory.StatusFacts{Kind: entity.ProductKindReagent, QuantityOnHand: 10, ExpiryDate: daysFromToday(15)},
			want:  entity.StatusNearExpiry,
		},
		{
			name:  "reactivo vence en 16 días",
			facts: inventory.StatusFacts{Kind: entity.ProductKindReagent, QuantityOnHand: 10, ExpiryDate: daysFromToday(16)},
			want:  entity.StatusAvailable,
		},
		{
			name:  "reactivo vence hoy: aún no vencido",
			facts: inventory.StatusFacts{Kind: entity.ProductKindReagent, QuantityOnHand: 10, ExpiryDate: daysFromToday(0)},
			want:  entity.StatusNearExpiry,
		},
		{
			name:  "reactivo vencido ayer prevalece sobre stock bajo",
			facts: inventory.StatusFacts{Kind: entity.ProductKindReagent, QuantityOnHand: 2, MinimumThreshold: 5, ExpiryDate: daysFromToday(-1)},
			want:  entity.StatusExpired,
		},
		{
			name:  "reactivo vencido prevalece sobre agotado",
			facts: inventory.StatusFacts{Kind: entity.ProductKindReagent, QuantityOnHand: 0, ExpiryDate: daysFromToday(-30)},
			want:  entity.StatusExpired,
		},
		{
			name:  "reactivo sin fecha de vencimiento",
			facts: inventory.StatusFacts{Kind: entity.ProductKindReagent, QuantityOnHand: 3, MinimumThreshold: 5},
			want:  entity.StatusLowStock,
		},
		{
			name:  "la fecha de vencimiento se ignora si no es reactivo",
			facts: inventory.StatusFacts{Kind: entity.ProductKindMaterial, QuantityOnHand: 10, MinimumThreshold: 5, ExpiryDate: daysFromToday(-1)},
			want:  entity.StatusAvailable,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, inventory.ResolveStatus(tc.facts, today))
		})
	}
}

func TestResolveStatus_ComparaPorDiaCalendario(t *testing.T) {
	// Vence "hoy" a medianoche; a las 23:59 del mismo día sigue sin estar vencido.
	expiry := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	lateToday := time.Date(2026, 3, 10, 23, 59, 0, 0, time.UTC)
	facts := inventory.StatusFacts{Kind: entity.ProductKindReagent, QuantityOnHand: 10, ExpiryDate: &expiry}

	assert.Equal(t, entity.StatusNearExpiry, inventory.ResolveStatus(facts, lateToday))
	assert.Equal(t, entity.StatusExpired, inventory.ResolveStatus(facts, lateToday.Add(time.Minute)))
}

func TestResolveStatus_UsaLaFechaLocalDeHoy(t *testing.T) {
	bogota := time.FixedZone("COT", -5*3600)
	// 2026-03-11 02:00 UTC es todavía 2026-03-10 en Bogotá.
	now := time.Date(2026, 3, 11, 2, 0, 0, 0, time.UTC).In(bogota)
	expiry := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	facts := inventory.StatusFacts{Kind: entity.ProductKindReagent, QuantityOnHand: 10, ExpiryDate: &expiry}

	assert.Equal(t, entity.StatusNearExpiry, inventory.ResolveStatus(facts, now))
}

func TestReconcileStatus_EstadosManualesSonPegajosos(t *testing.T) {
	expired := inventory.StatusFacts{Kind: entity.ProductKindReagent, QuantityOnHand: 0, ExpiryDate: daysFromToday(-5)}

	assert.Equal(t, entity.StatusInUse, inventory.ReconcileStatus(entity.StatusInUse, expired, today))
	assert.Equal(t, entity.StatusWrittenOff, inventory.ReconcileStatus(entity.StatusWrittenOff, expired, today))
	assert.Equal(t, entity.StatusExpired, inventory.ReconcileStatus(entity.StatusAvailable, expired, today))
	assert.Equal(t, entity.StatusExpired, inventory.ReconcileStatus(entity.StatusNearExpiry, expired, today))
}
