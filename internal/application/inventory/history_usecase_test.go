package inventory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appinventory "github.com/jhoicas/inventario-lab/internal/application/inventory"
	"github.com/jhoicas/inventario-lab/internal/domain"
	"github.com/jhoicas/inventario-lab/internal/domain/entity"
)

func TestGetProductHistory(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.seed(t, entity.Product{ID: "p-1", QuantityOnHand: 0, Status: entity.StatusOutOfStock})
	history := appinventory.NewHistoryUseCase(f.store.Products(), f.store.Movements())

	_, err := f.uc.RecordEntry(ctx, appinventory.EntryInput{ProductID: p.ID, ActorID: "u-1", Quantity: 10})
	require.NoError(t, err)
	_, err = f.uc.RecordExit(ctx, appinventory.ExitInput{ProductID: p.ID, ActorID: "u-2", Reason: entity.ReasonIniciarUso})
	require.NoError(t, err)

	res, err := history.GetProductHistory(ctx, p.ID, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 20, res.Page.Limit)
	require.Len(t, res.Items, 2)
	assert.Equal(t, entity.ReasonIniciarUso, res.Items[0].ReasonCode)
	assert.Equal(t, "u-2", res.Items[0].ActorID)
	assert.True(t, res.Items[0].UsageOpen)
	assert.Nil(t, res.Items[0].UsageDurationSeconds)
	assert.Equal(t, entity.MovementDirectionEntry, res.Items[1].Direction)

	_, err = f.uc.RecordExit(ctx, appinventory.ExitInput{ProductID: p.ID, ActorID: "u-2", Reason: entity.ReasonFinalizarUso, Quantity: ptr(4)})
	require.NoError(t, err)
	res, err = history.GetProductHistory(ctx, p.ID, 1, 0)
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, entity.ReasonFinalizarUso, res.Items[0].ReasonCode)
	require.NotNil(t, res.Items[0].UsageDurationSeconds)
	assert.Equal(t, int64(0), *res.Items[0].UsageDurationSeconds, "reloj fijo: el ciclo dura 0s")
	assert.False(t, res.Items[0].UsageOpen)
}

func TestGetProductHistory_ProductoInexistente(t *testing.T) {
	f := newFixture(t)
	history := appinventory.NewHistoryUseCase(f.store.Products(), f.store.Movements())
	_, err := history.GetProductHistory(context.Background(), "nope", 10, 0)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}
