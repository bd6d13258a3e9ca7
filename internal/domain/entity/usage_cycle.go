package entity

import "time"

// UsageCycle es un intervalo durante el cual un lote está en uso por un actor.
// EndTime nil significa ciclo abierto; a lo sumo uno abierto por producto.
type UsageCycle struct {
	ID              string
	ProductID       string
	ActorID         string
	StartTime       time.Time
	EndTime         *time.Time
	StartMovementID string
	EndMovementID   *string
}

// IsOpen indica si el ciclo sigue abierto.
func (c *UsageCycle) IsOpen() bool {
	return c.EndTime == nil
}
