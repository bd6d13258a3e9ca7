package entity

import "time"

// Dirección del movimiento.
const (
	MovementDirectionEntry = "ENTRY" // entrada
	MovementDirectionExit  = "EXIT"  // salida
)

// Motivos de salida.
const (
	ReasonIniciarUso   = "INICIAR_USO"   // abre un ciclo de uso
	ReasonFinalizarUso = "FINALIZAR_USO" // cierra el ciclo de uso y descuenta lo consumido
	ReasonIncidencia   = "INCIDENCIA"    // pérdida, derrame, daño parcial
	ReasonBaja         = "BAJA"          // baja definitiva del lote
)

// Movement es una entrada inmutable del libro de movimientos.
// Quantity es la cantidad efectivamente aplicada (siempre >= 0); BalanceAfter el stock resultante.
type Movement struct {
	ID           string
	ProductID    string
	ActorID      string
	Direction    string
	ReasonCode   string // vacío en entradas
	Quantity     int64
	BalanceAfter int64
	Note         string
	CreatedAt    time.Time
}

// MovementHistoryEntry es un movimiento enriquecido con el ciclo de uso que abrió o cerró.
type MovementHistoryEntry struct {
	Movement
	UsageStartedAt *time.Time
	UsageEndedAt   *time.Time
}

// UsageDuration devuelve la duración del ciclo cuando el movimiento lo cerró.
func (e *MovementHistoryEntry) UsageDuration() *time.Duration {
	if e.UsageStartedAt == nil || e.UsageEndedAt == nil {
		return nil
	}
	d := e.UsageEndedAt.Sub(*e.UsageStartedAt)
	return &d
}
