package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-lab/internal/application/dto"
	appinventory "github.com/jhoicas/inventario-lab/internal/application/inventory"
	"github.com/jhoicas/inventario-lab/internal/application/usecase"
	"github.com/jhoicas/inventario-lab/internal/domain"
	"github.com/jhoicas/inventario-lab/internal/domain/entity"
	"github.com/jhoicas/inventario-lab/internal/infrastructure/memory"
)

var clock = appinventory.Clock{Location: time.UTC, NowFunc: func() time.Time {
	return time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
}}

type countingSweeper struct {
	calls int
	err   error
}

func (s *countingSweeper) Run(context.Context) (int, error) {
	s.calls++
	return 0, s.err
}

func str(s string) *string { return &s }

func TestProductUseCase_Create(t *testing.T) {
	store := memory.NewStore(time.Second)
	uc := usecase.NewProductUseCase(store.Products(), nil, clock, nil)

	out, err := uc.Create(context.Background(), dto.CreateProductRequest{
		Kind: "reagent", Name: " Tripsina ", MinimumThreshold: 2, ExpiryDate: str("2026-03-20"),
	})
	require.NoError(t, err)
	assert.Equal(t, entity.ProductKindReagent, out.Kind)
	assert.Equal(t, "Tripsina", out.Name)
	assert.Equal(t, int64(0), out.QuantityOnHand)
	assert.Equal(t, entity.StatusNearExpiry, out.Status, "vence en 10 días")
	assert.Equal(t, "2026-03-20", out.ExpiryDate)

	got, err := uc.GetByID(context.Background(), out.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, out.ID, got.ID)
}

func TestProductUseCase_CreateSinStockQuedaAgotado(t *testing.T) {
	store := memory.NewStore(time.Second)
	uc := usecase.NewProductUseCase(store.Products(), nil, clock, nil)

	out, err := uc.Create(context.Background(), dto.CreateProductRequest{Kind: entity.ProductKindMaterial, Name: "Gradillas"})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusOutOfStock, out.Status)
}

func TestProductUseCase_CreateEntradaInvalida(t *testing.T) {
	store := memory.NewStore(time.Second)
	uc := usecase.NewProductUseCase(store.Products(), nil, clock, nil)
	ctx := context.Background()

	cases := map[string]dto.CreateProductRequest{
		"tipo desconocido":           {Kind: "VIDRIO", Name: "Beaker"},
		"sin nombre":                 {Kind: entity.ProductKindMaterial, Name: "  "},
		"umbral negativo":            {Kind: entity.ProductKindMaterial, Name: "Pipetas", MinimumThreshold: -1},
		"vencimiento en un equipo":   {Kind: entity.ProductKindEquipment, Name: "Balanza", ExpiryDate: str("2026-04-01")},
		"fecha con formato inválido": {Kind: entity.ProductKindReagent, Name: "NaCl", ExpiryDate: str("01/04/2026")},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := uc.Create(ctx, in)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestProductUseCase_GetByIDInexistente(t *testing.T) {
	store := memory.NewStore(time.Second)
	uc := usecase.NewProductUseCase(store.Products(), nil, clock, nil)

	got, err := uc.GetByID(context.Background(), "no-existe")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestProductUseCase_ListBarreAntesDeLeer(t *testing.T) {
	store := memory.NewStore(time.Second)
	sweeper := &countingSweeper{err: errors.New("fallo transitorio")}
	uc := usecase.NewProductUseCase(store.Products(), sweeper, clock, nil)
	ctx := context.Background()

	for _, name := range []string{"A", "B", "C"} {
		_, err := uc.Create(ctx, dto.CreateProductRequest{Kind: entity.ProductKindMaterial, Name: name})
		require.NoError(t, err)
	}

	list, err := uc.List(ctx, 2, 0)
	require.NoError(t, err, "un barrido fallido no bloquea la lectura")
	assert.Equal(t, 1, sweeper.calls)
	assert.Len(t, list.Items, 2)
	assert.Equal(t, 2, list.Page.Limit)

	list, err = uc.List(ctx, 0, 2)
	require.NoError(t, err)
	assert.Len(t, list.Items, 1)
	assert.Equal(t, 20, list.Page.Limit, "límite por defecto")
}
