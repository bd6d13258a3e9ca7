package dto

import (
	"time"

	"github.com/jhoicas/inventario-lab/internal/domain/entity"
)

// DateLayout formato de las fechas de vencimiento en la API.
const DateLayout = "2006-01-02"

// CreateProductRequest entrada para registrar un lote. El stock inicial se carga con una entrada.
type CreateProductRequest struct {
	Kind             string  `json:"kind" validate:"required,oneof=REAGENT EQUIPMENT MATERIAL"`
	Name             string  `json:"name" validate:"required,min=1,max=200"`
	LotCode          string  `json:"lot_code" validate:"max=100"`
	MinimumThreshold int64   `json:"minimum_threshold" validate:"min=0"`
	ExpiryDate       *string `json:"expiry_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// ProductResponse salida de un producto con su estado actual.
type ProductResponse struct {
	ID               string    `json:"id"`
	Kind             string    `json:"kind"`
	Name             string    `json:"name"`
	LotCode          string    `json:"lot_code,omitempty"`
	QuantityOnHand   int64     `json:"quantity_on_hand"`
	MinimumThreshold int64     `json:"minimum_threshold"`
	Status           string    `json:"status"`
	ExpiryDate       string    `json:"expiry_date,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// NewProductResponse convierte la entidad en su representación de salida.
func NewProductResponse(p *entity.Product) ProductResponse {
	out := ProductResponse{
		ID:               p.ID,
		Kind:             p.Kind,
		Name:             p.Name,
		LotCode:          p.LotCode,
		QuantityOnHand:   p.QuantityOnHand,
		MinimumThreshold: p.MinimumThreshold,
		Status:           p.Status,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
	if p.ExpiryDate != nil {
		out.ExpiryDate = p.ExpiryDate.Format(DateLayout)
	}
	return out
}
