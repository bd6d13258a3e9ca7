package dto

import (
	"time"

	"github.com/jhoicas/inventario-lab/internal/domain/entity"
)

// RecordEntryRequest body para POST /api/inventory/products/{id}/entries.
type RecordEntryRequest struct {
	Quantity int64  `json:"quantity"`
	Note     string `json:"note" validate:"max=1000"`
}

// RecordExitRequest body para POST /api/inventory/products/{id}/exits.
// quantity: consumo en FINALIZAR_USO (opcional), cantidad perdida en INCIDENCIA (obligatoria).
type RecordExitRequest struct {
	Reason   string `json:"reason"`
	Quantity *int64 `json:"quantity,omitempty"`
	Note     string `json:"note" validate:"max=1000"`
}

// RecordWriteOffRequest body para POST /api/inventory/products/{id}/write-off.
type RecordWriteOffRequest struct {
	Note string `json:"note" validate:"max=1000"`
}

// MovementResponse resultado de un movimiento: ID del registro y estado del producto tras el commit.
type MovementResponse struct {
	MovementID string          `json:"movement_id"`
	Product    ProductResponse `json:"product"`
}

// MovementHistoryItem un movimiento del libro con el ciclo de uso asociado, si lo hay.
type MovementHistoryItem struct {
	ID                   string     `json:"id"`
	ActorID              string     `json:"actor_id"`
	Direction            string     `json:"direction"`
	ReasonCode           string     `json:"reason_code,omitempty"`
	Quantity             int64      `json:"quantity"`
	BalanceAfter         int64      `json:"balance_after"`
	Note                 string     `json:"note,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UsageStartedAt       *time.Time `json:"usage_started_at,omitempty"`
	UsageEndedAt         *time.Time `json:"usage_ended_at,omitempty"`
	UsageDurationSeconds *int64     `json:"usage_duration_seconds,omitempty"`
	UsageOpen            bool       `json:"usage_open,omitempty"`
}

// MovementHistoryResponse historial paginado de un producto (más reciente primero).
type MovementHistoryResponse struct {
	ProductID string                `json:"product_id"`
	Items     []MovementHistoryItem `json:"items"`
	Page      PageResponse          `json:"page"`
}

// NewMovementHistoryItem convierte una entrada del libro en su representación de salida.
func NewMovementHistoryItem(e *entity.MovementHistoryEntry) MovementHistoryItem {
	item := MovementHistoryItem{
		ID:             e.ID,
		ActorID:        e.ActorID,
		Direction:      e.Direction,
		ReasonCode:     e.ReasonCode,
		Quantity:       e.Quantity,
		BalanceAfter:   e.BalanceAfter,
		Note:           e.Note,
		CreatedAt:      e.CreatedAt,
		UsageStartedAt: e.UsageStartedAt,
		UsageEndedAt:   e.UsageEndedAt,
		UsageOpen:      e.UsageStartedAt != nil && e.UsageEndedAt == nil,
	}
	if d := e.UsageDuration(); d != nil {
		secs := int64(d.Seconds())
		item.UsageDurationSeconds = &secs
	}
	return item
}

// SweepResponse resultado de POST /api/inventory/sweep.
type SweepResponse struct {
	Changed int `json:"changed"`
}
