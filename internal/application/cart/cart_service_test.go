package cart_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	appcart "github.com/shopfront/backend/internal/application/cart"
	"github.com/shopfront/backend/internal/domain/catalog"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/infrastructure/persistence"
	"github.com/shopfront/backend/tests/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type cartFixture struct {
	svc      *appcart.CartService
	products *persistence.GormProductRepository
	carts    *persistence.GormCartRepository
	userID   uuid.UUID
}

func newCartFixture(t *testing.T) *cartFixture {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	f := &cartFixture{
		products: persistence.NewGormProductRepository(db),
		carts:    persistence.NewGormCartRepository(db),
		userID:   testutil.TestUserID(),
	}
	f.svc = appcart.NewCartService(f.carts, f.products, zap.NewNop())
	return f
}

func (f *cartFixture) product(t *testing.T, name, price string, stock int) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(name, "", "misc", decimal.RequireFromString(price), stock)
	require.NoError(t, err)
	require.NoError(t, p.SetImages([]string{"/uploads/" + name + ".png"}))
	require.NoError(t, f.products.Create(context.Background(), p))
	return p
}

func intPtr(v int) *int { return &v }

func TestCartService_GetCartCreatesLazily(t *testing.T) {
	ctx := context.Background()
	f := newCartFixture(t)

	_, err := f.carts.FindByUserID(ctx, f.userID)
	require.ErrorIs(t, err, shared.ErrNotFound)

	resp, err := f.svc.GetCart(ctx, f.userID)
	require.NoError(t, err)
	assert.Empty(t, resp.Items)
	assert.True(t, resp.Total.IsZero())

	again, err := f.svc.GetCart(ctx, f.userID)
	require.NoError(t, err)
	assert.Equal(t, resp.ID, again.ID)
}

func TestCartService_AddItem(t *testing.T) {
	ctx := context.Background()

	t.Run("merges quantities and keeps captured price", func(t *testing.T) {
		f := newCartFixture(t)
		p := f.product(t, "mug", "10.00", 5)

		_, err := f.svc.AddItem(ctx, f.userID, appcart.AddItemRequest{ProductID: p.ID, Quantity: 2})
		require.NoError(t, err)

		// price change after the first add does not reach the cart
		require.NoError(t, p.SetPrice(decimal.RequireFromString("15.00")))
		require.NoError(t, f.products.Save(ctx, p))

		resp, err := f.svc.AddItem(ctx, f.userID, appcart.AddItemRequest{ProductID: p.ID, Quantity: 3})
		require.NoError(t, err)

		require.Len(t, resp.Items, 1)
		line := resp.Items[0]
		assert.Equal(t, 5, line.Quantity)
		assert.True(t, decimal.RequireFromString("10").Equal(line.Price))
		assert.True(t, decimal.RequireFromString("50").Equal(resp.Total))
		assert.Equal(t, "mug", line.Name)
		assert.Equal(t, "/uploads/mug.png", line.Image)
		assert.Equal(t, 5, line.Stock)
		assert.True(t, line.Available)
		assert.Equal(t, 5, resp.TotalQuantity)
	})

	t.Run("keeps insertion order", func(t *testing.T) {
		f := newCartFixture(t)
		a := f.product(t, "a", "1", 5)
		b := f.product(t, "b", "2", 5)

		_, err := f.svc.AddItem(ctx, f.userID, appcart.AddItemRequest{ProductID: b.ID, Quantity: 1})
		require.NoError(t, err)
		resp, err := f.svc.AddItem(ctx, f.userID, appcart.AddItemRequest{ProductID: a.ID, Quantity: 1})
		require.NoError(t, err)

		require.Len(t, resp.Items, 2)
		assert.Equal(t, b.ID, resp.Items[0].ProductID)
		assert.Equal(t, a.ID, resp.Items[1].ProductID)
	})

	t.Run("rejects more than stock", func(t *testing.T) {
		f := newCartFixture(t)
		p := f.product(t, "lamp", "10", 2)

		_, err := f.svc.AddItem(ctx, f.userID, appcart.AddItemRequest{ProductID: p.ID, Quantity: 3})
		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
		assert.Contains(t, err.Error(), "only has 2 left")
	})

	t.Run("rejects zero quantity", func(t *testing.T) {
		f := newCartFixture(t)
		p := f.product(t, "lamp", "10", 2)

		_, err := f.svc.AddItem(ctx, f.userID, appcart.AddItemRequest{ProductID: p.ID, Quantity: 0})
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("unknown product", func(t *testing.T) {
		f := newCartFixture(t)

		_, err := f.svc.AddItem(ctx, f.userID, appcart.AddItemRequest{ProductID: uuid.New(), Quantity: 1})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestCartService_UpdateItem(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		quantity *int
		wantErr  error
		wantQty  int
		wantLine bool
	}{
		{name: "replaces quantity", quantity: intPtr(4), wantQty: 4, wantLine: true},
		{name: "zero removes line", quantity: intPtr(0), wantLine: false},
		{name: "negative rejected", quantity: intPtr(-1), wantErr: shared.ErrInvalidInput},
		{name: "above stock rejected", quantity: intPtr(6), wantErr: shared.ErrInsufficientStock},
		{name: "missing quantity", quantity: nil, wantErr: shared.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCartFixture(t)
			p := f.product(t, "pen", "1.50", 5)
			_, err := f.svc.AddItem(ctx, f.userID, appcart.AddItemRequest{ProductID: p.ID, Quantity: 1})
			require.NoError(t, err)

			resp, err := f.svc.UpdateItem(ctx, f.userID, p.ID, appcart.UpdateItemRequest{Quantity: tt.quantity})
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			if !tt.wantLine {
				assert.Empty(t, resp.Items)
				return
			}
			require.Len(t, resp.Items, 1)
			assert.Equal(t, tt.wantQty, resp.Items[0].Quantity)

			stored, err := f.carts.FindByUserID(ctx, f.userID)
			require.NoError(t, err)
			assert.Equal(t, tt.wantQty, stored.Items[0].Quantity)
		})
	}

	t.Run("line absent", func(t *testing.T) {
		f := newCartFixture(t)
		p := f.product(t, "pen", "1.50", 5)

		_, err := f.svc.UpdateItem(ctx, f.userID, p.ID, appcart.UpdateItemRequest{Quantity: intPtr(1)})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestCartService_RemoveAndClear(t *testing.T) {
	ctx := context.Background()
	f := newCartFixture(t)
	a := f.product(t, "a", "1", 5)
	b := f.product(t, "b", "2", 5)

	for _, p := range []*catalog.Product{a, b} {
		_, err := f.svc.AddItem(ctx, f.userID, appcart.AddItemRequest{ProductID: p.ID, Quantity: 2})
		require.NoError(t, err)
	}

	resp, err := f.svc.RemoveItem(ctx, f.userID, a.ID)
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, b.ID, resp.Items[0].ProductID)

	_, err = f.svc.RemoveItem(ctx, f.userID, a.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	resp, err = f.svc.Clear(ctx, f.userID)
	require.NoError(t, err)
	assert.Empty(t, resp.Items)

	stored, err := f.carts.FindByUserID(ctx, f.userID)
	require.NoError(t, err)
	assert.True(t, stored.IsEmpty())
}

func TestCartService_ProductRemovedFromCatalog(t *testing.T) {
	ctx := context.Background()
	f := newCartFixture(t)
	p := f.product(t, "gone", "3", 5)
	_, err := f.svc.AddItem(ctx, f.userID, appcart.AddItemRequest{ProductID: p.ID, Quantity: 1})
	require.NoError(t, err)

	require.NoError(t, f.products.Delete(ctx, p.ID))

	resp, err := f.svc.GetCart(ctx, f.userID)
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.False(t, resp.Items[0].Available)
	assert.Empty(t, resp.Items[0].Name)
}
