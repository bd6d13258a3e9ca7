package inventory

import (
	"context"

	"github.com/jhoicas/inventario-lab/internal/application/dto"
	"github.com/jhoicas/inventario-lab/internal/domain"
	"github.com/jhoicas/inventario-lab/internal/domain/repository"
)

// HistoryUseCase consulta el libro de movimientos de un producto (solo lectura).
type HistoryUseCase struct {
	productRepo repository.ProductRepository
	movRepo     repository.MovementRepository
}

// NewHistoryUseCase construye el caso de uso.
func NewHistoryUseCase(productRepo repository.ProductRepository, movRepo repository.MovementRepository) *HistoryUseCase {
	return &HistoryUseCase{productRepo: productRepo, movRepo: movRepo}
}

// GetProductHistory devuelve los movimientos del producto, el más reciente primero,
// con la duración del ciclo de uso cuando el movimiento lo abrió o lo cerró.
func (uc *HistoryUseCase) GetProductHistory(ctx context.Context, productID string, limit, offset int) (*dto.MovementHistoryResponse, error) {
	if productID == "" {
		return nil, domain.ErrInvalidInput
	}
	page := dto.PageRequest{Limit: limit, Offset: offset}
	page.DefaultPage()

	product, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}
	entries, err := uc.movRepo.ListHistory(ctx, productID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.MovementHistoryItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, dto.NewMovementHistoryItem(e))
	}
	return &dto.MovementHistoryResponse{
		ProductID: productID,
		Items:     items,
		Page:      dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}
