package inventory

import (
	"time"

	"github.com/jhoicas/inventario-lab/internal/domain/entity"
)

// NearExpiryWindowDays días antes del vencimiento en que un reactivo pasa a NEAR_EXPIRY.
const NearExpiryWindowDays = 15

// StatusFacts hechos observables de un producto de los que se deriva su estado.
type StatusFacts struct {
	Kind             string
	QuantityOnHand   int64
	MinimumThreshold int64
	ExpiryDate       *time.Time
}

// FactsOf extrae los hechos de un producto.
func FactsOf(p *entity.Product) StatusFacts {
	return StatusFacts{
		Kind:             p.Kind,
		QuantityOnHand:   p.QuantityOnHand,
		MinimumThreshold: p.MinimumThreshold,
		ExpiryDate:       p.ExpiryDate,
	}
}

// ResolveStatus implementa la regla de estado derivado (servicio de dominio, sin efectos).
// El orden importa: vencimiento primero, luego agotado, luego stock bajo.
// today se compara por día calendario; ver DateOf.
func ResolveStatus(f StatusFacts, today time.Time) string {
	day := DateOf(today)
	if f.Kind == entity.ProductKindReagent && f.ExpiryDate != nil {
		expiry := DateOf(*f.ExpiryDate)
		if expiry.Before(day) {
			return entity.StatusExpired
		}
		if !expiry.After(day.AddDate(0, 0, NearExpiryWindowDays)) {
			return entity.StatusNearExpiry
		}
	}
	if f.QuantityOnHand <= 0 {
		return entity.StatusOutOfStock
	}
	if f.Kind != entity.ProductKindEquipment && f.QuantityOnHand <= f.MinimumThreshold {
		return entity.StatusLowStock
	}
	return entity.StatusAvailable
}

// ReconcileStatus respeta los estados manuales (IN_USE, WRITTEN_OFF); en otro caso resuelve.
func ReconcileStatus(current string, f StatusFacts, today time.Time) string {
	if entity.IsStickyStatus(current) {
		return current
	}
	return ResolveStatus(f, today)
}

// DateOf trunca t a su fecha calendario (en la zona de t) normalizada a medianoche UTC,
// de modo que un DATE leído de la BD y "hoy" en la zona del negocio sean comparables.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
