package entity

// Estados del producto. Exactamente uno vigente por producto.
const (
	StatusAvailable  = "AVAILABLE"
	StatusOutOfStock = "OUT_OF_STOCK"
	StatusLowStock   = "LOW_STOCK"
	StatusInUse      = "IN_USE"      // manual: solo lo fija INICIAR_USO
	StatusWrittenOff = "WRITTEN_OFF" // manual y terminal: solo lo fija BAJA
	StatusExpired    = "EXPIRED"
	StatusNearExpiry = "NEAR_EXPIRY"
)

// IsStickyStatus indica los estados controlados por movimientos que el barrido no toca.
func IsStickyStatus(status string) bool {
	return status == StatusInUse || status == StatusWrittenOff
}
