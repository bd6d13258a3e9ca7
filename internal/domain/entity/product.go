package entity

import "time"

// Tipos de producto del laboratorio.
const (
	ProductKindReagent   = "REAGENT"   // reactivo (puede tener fecha de vencimiento)
	ProductKindEquipment = "EQUIPMENT" // equipo
	ProductKindMaterial  = "MATERIAL"  // material
)

// ValidProductKind indica si kind es uno de los tipos conocidos.
func ValidProductKind(kind string) bool {
	switch kind {
	case ProductKindReagent, ProductKindEquipment, ProductKindMaterial:
		return true
	}
	return false
}

// Product representa un lote inventariable con su estado actual materializado.
// QuantityOnHand y Status solo se modifican desde el coordinador de movimientos y el barrido de estados.
type Product struct {
	ID               string
	Kind             string
	Name             string
	LotCode          string
	QuantityOnHand   int64
	MinimumThreshold int64
	Status           string
	ExpiryDate       *time.Time // solo reactivos
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// IsReagent indica si el lote es un reactivo.
func (p *Product) IsReagent() bool {
	return p.Kind == ProductKindReagent
}
