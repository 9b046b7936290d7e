package cart_test

import (
	"context"
	"testing"

	"kedai/internal/cart"
	"kedai/internal/models"
	"kedai/internal/session"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_LinesRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := cart.NewStore(session.NewMemoryProvider().Open("s1"))

	lines, err := store.Lines(ctx)
	require.NoError(t, err)
	assert.Empty(t, lines)

	want := []models.CartLine{{
		MenuItemID: "m1",
		Name:       "Teh Tarik",
		UnitPrice:  decimal.RequireFromString("3.50"),
		Quantity:   2,
		Options:    models.LineOptions{Sweetness: "Less", IceLevel: "No ice"},
	}}
	require.NoError(t, store.SaveLines(ctx, want))

	got, err := store.Lines(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, want[0].UnitPrice.Equal(got[0].UnitPrice))
	assert.Equal(t, want[0].Options, got[0].Options)
	assert.Equal(t, "s1", store.SessionID())
}

func TestStore_ClearDropsDiscountToo(t *testing.T) {
	ctx := context.Background()
	store := cart.NewStore(session.NewMemoryProvider().Open("s1"))

	require.NoError(t, store.SaveLines(ctx, []models.CartLine{{MenuItemID: "m1", Quantity: 1, UnitPrice: decimal.NewFromInt(5)}}))
	require.NoError(t, store.SaveDiscount(ctx, models.AppliedDiscount{Code: "SAVE10", Amount: decimal.NewFromInt(1)}))

	d, err := store.Discount(ctx)
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, "SAVE10", d.Code)

	require.NoError(t, store.Clear(ctx))

	lines, err := store.Lines(ctx)
	require.NoError(t, err)
	assert.Empty(t, lines)
	d, err = store.Discount(ctx)
	require.NoError(t, err)
	assert.Nil(t, d)
}

func TestStore_CorruptPayload(t *testing.T) {
	ctx := context.Background()
	sess := session.NewMemoryProvider().Open("s1")
	require.NoError(t, sess.Set(ctx, "cart", []byte("not json")))

	_, err := cart.NewStore(sess).Lines(ctx)
	assert.Error(t, err)
}
