package services_test

import (
	"context"
	"testing"

	"kedai/internal/cart"
	"kedai/internal/models"
	"kedai/internal/repositories"
	"kedai/internal/services"
	"kedai/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newCartFixture(t *testing.T) (*services.CartService, *repositories.MockMenuRepository, *cart.Store) {
	t.Helper()
	menu := repositories.NewMockMenuRepository()
	ctx := context.Background()
	require.NoError(t, menu.Create(ctx, &models.MenuItem{ID: "nasi", Name: "Nasi Lemak", Price: dec("10.00"), IsAvailable: true}))
	require.NoError(t, menu.Create(ctx, &models.MenuItem{ID: "teh", Name: "Teh Tarik", Price: dec("3.50"), IsAvailable: true}))
	require.NoError(t, menu.Create(ctx, &models.MenuItem{ID: "satay", Name: "Satay", Price: dec("12.00"), IsAvailable: false}))

	store := cart.NewStore(session.NewMemoryProvider().Open(t.Name()))
	return services.NewCartService(menu, zap.NewNop()), menu, store
}

func TestCartService_AddItemMergesSameVariant(t *testing.T) {
	svc, _, store := newCartFixture(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, store, "teh", 1, models.LineOptions{Sweetness: "Less", IceLevel: "No ice"})
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, store, "teh", 2, models.LineOptions{Sweetness: "less", IceLevel: "NO ICE"})
	require.NoError(t, err)
	view, err := svc.AddItem(ctx, store, "teh", 1, models.LineOptions{Sweetness: "Normal"})
	require.NoError(t, err)

	require.Len(t, view.Lines, 2)
	assert.Equal(t, 3, view.Lines[0].Quantity)
	assert.Equal(t, 1, view.Lines[1].Quantity)
	assert.Equal(t, 4, view.ItemCount)
	assertMoney(t, "14.00", view.Totals.Subtotal)
}

func TestCartService_AddItemCoercesQuantity(t *testing.T) {
	svc, _, store := newCartFixture(t)

	view, err := svc.AddItem(context.Background(), store, "nasi", 0, models.LineOptions{})

	require.NoError(t, err)
	assert.Equal(t, 1, view.Lines[0].Quantity)
}

func TestCartService_AddItemRejectsUnavailableAndUnknown(t *testing.T) {
	svc, _, store := newCartFixture(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, store, "satay", 1, models.LineOptions{})
	assert.ErrorIs(t, err, services.ErrMenuItemUnavailable)

	_, err = svc.AddItem(ctx, store, "ghost", 1, models.LineOptions{})
	assert.ErrorIs(t, err, services.ErrMenuItemNotFound)

	view, err := svc.View(ctx, store)
	require.NoError(t, err)
	assert.Empty(t, view.Lines)
}

func TestCartService_PriceIsCapturedAtAdd(t *testing.T) {
	svc, menu, store := newCartFixture(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, store, "nasi", 1, models.LineOptions{})
	require.NoError(t, err)
	require.NoError(t, menu.Create(ctx, &models.MenuItem{ID: "nasi", Name: "Nasi Lemak", Price: dec("99.00"), IsAvailable: true}))

	view, err := svc.View(ctx, store)
	require.NoError(t, err)
	assertMoney(t, "10.00", view.Lines[0].UnitPrice)
}

func TestCartService_UpdateQuantity(t *testing.T) {
	svc, _, store := newCartFixture(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, store, "nasi", 1, models.LineOptions{})
	require.NoError(t, err)

	view, err := svc.UpdateQuantity(ctx, store, "nasi", models.LineOptions{}, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, view.Lines[0].Quantity)

	view, err = svc.UpdateQuantity(ctx, store, "teh", models.LineOptions{}, 3)
	require.NoError(t, err)
	assert.Len(t, view.Lines, 1)

	view, err = svc.UpdateQuantity(ctx, store, "nasi", models.LineOptions{}, 0)
	require.NoError(t, err)
	assert.Empty(t, view.Lines)
}

func TestCartService_RemoveAndClear(t *testing.T) {
	svc, _, store := newCartFixture(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, store, "nasi", 1, models.LineOptions{})
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, store, "teh", 1, models.LineOptions{})
	require.NoError(t, err)

	_, err = svc.RemoveItem(ctx, store, "satay", models.LineOptions{})
	assert.ErrorIs(t, err, services.ErrCartLineNotFound)

	view, err := svc.RemoveItem(ctx, store, "nasi", models.LineOptions{})
	require.NoError(t, err)
	require.Len(t, view.Lines, 1)
	assert.Equal(t, "teh", view.Lines[0].MenuItemID)

	require.NoError(t, svc.Clear(ctx, store))
	view, err = svc.View(ctx, store)
	require.NoError(t, err)
	assert.Empty(t, view.Lines)
}
