package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/inventario-lab/internal/application/dto"
	appinventory "github.com/jhoicas/inventario-lab/internal/application/inventory"
	"github.com/jhoicas/inventario-lab/internal/domain"
	"github.com/jhoicas/inventario-lab/internal/domain/entity"
	"github.com/jhoicas/inventario-lab/internal/domain/inventory"
	"github.com/jhoicas/inventario-lab/internal/domain/repository"
	"github.com/jhoicas/inventario-lab/pkg/logger"
)

// StatusSweeper re-evalúa estados dependientes de la fecha antes de leer la colección.
type StatusSweeper interface {
	Run(ctx context.Context) (int, error)
}

// ProductUseCase registro y lectura de productos. Cantidad y estado se manejan vía movimientos.
type ProductUseCase struct {
	repo    repository.ProductRepository
	sweeper StatusSweeper // nil = no barrer en lecturas
	clock   appinventory.Clock
	log     *logger.Logger
}

// NewProductUseCase construye el caso de uso. sweeper puede ser nil.
func NewProductUseCase(repo repository.ProductRepository, sweeper StatusSweeper, clock appinventory.Clock, log *logger.Logger) *ProductUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &ProductUseCase{repo: repo, sweeper: sweeper, clock: clock, log: log}
}

// Create registra un lote nuevo con stock 0 y estado resuelto.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	kind := strings.ToUpper(strings.TrimSpace(in.Kind))
	if !entity.ValidProductKind(kind) || strings.TrimSpace(in.Name) == "" || in.MinimumThreshold < 0 {
		return nil, domain.ErrInvalidInput
	}
	var expiry *time.Time
	if in.ExpiryDate != nil && *in.ExpiryDate != "" {
		if kind != entity.ProductKindReagent {
			return nil, domain.ErrInvalidInput
		}
		d, err := time.Parse(dto.DateLayout, *in.ExpiryDate)
		if err != nil {
			return nil, domain.ErrInvalidInput
		}
		expiry = &d
	}
	now := uc.clock.Now()
	product := &entity.Product{
		ID:               uuid.New().String(),
		Kind:             kind,
		Name:             strings.TrimSpace(in.Name),
		LotCode:          strings.TrimSpace(in.LotCode),
		QuantityOnHand:   0,
		MinimumThreshold: in.MinimumThreshold,
		ExpiryDate:       expiry,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	product.Status = inventory.ResolveStatus(inventory.FactsOf(product), now)
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	out := dto.NewProductResponse(product)
	return &out, nil
}

// GetByID obtiene un producto por ID; (nil, nil) si no existe.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, nil
	}
	out := dto.NewProductResponse(product)
	return &out, nil
}

// List lista productos con paginación. Antes de leer ejecuta el barrido de estados
// para que los vencimientos del día se vean sin esperar al barrido periódico.
func (uc *ProductUseCase) List(ctx context.Context, limit, offset int) (*dto.ProductListResponse, error) {
	page := dto.PageRequest{Limit: limit, Offset: offset}
	page.DefaultPage()
	if uc.sweeper != nil {
		if _, err := uc.sweeper.Run(ctx); err != nil {
			// La lectura no depende del barrido; el próximo lo corrige.
			uc.log.Warn().Err(err).Msg("barrido de estados en lectura")
		}
	}
	list, err := uc.repo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, dto.NewProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}
