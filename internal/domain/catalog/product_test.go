package catalog

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProduct(t *testing.T) *Product {
	t.Helper()
	p, err := NewProduct("Running Shoe", "Lightweight", "Shoes", decimal.NewFromInt(120), 5)
	require.NoError(t, err)
	return p
}

func TestNewProduct(t *testing.T) {
	t.Run("creates product with event", func(t *testing.T) {
		p := newTestProduct(t)
		assert.NotEqual(t, uuid.Nil, p.ID)
		assert.Equal(t, 1, p.Version)
		assert.Equal(t, 5, p.Stock)
		assert.Empty(t, p.Images)
		require.Len(t, p.GetDomainEvents(), 1)
		assert.Equal(t, EventTypeProductCreated, p.GetDomainEvents()[0].EventType())
	})

	t.Run("rejects negative price", func(t *testing.T) {
		_, err := NewProduct("Shoe", "", "Shoes", decimal.NewFromInt(-1), 1)
		assert.Error(t, err)
	})

	t.Run("rejects negative stock", func(t *testing.T) {
		_, err := NewProduct("Shoe", "", "Shoes", decimal.Zero, -1)
		assert.Error(t, err)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := NewProduct("  ", "", "Shoes", decimal.Zero, 0)
		assert.Error(t, err)
	})

	t.Run("rejects empty category", func(t *testing.T) {
		_, err := NewProduct("Shoe", "", "", decimal.Zero, 0)
		assert.Error(t, err)
	})
}

func TestProduct_SetStock(t *testing.T) {
	p := newTestProduct(t)
	p.ClearDomainEvents()

	require.NoError(t, p.SetStock(8))
	assert.Equal(t, 8, p.Stock)
	assert.Equal(t, 1, p.Version, "version is advanced by the repository")
	require.Len(t, p.GetDomainEvents(), 1)
	ev, ok := p.GetDomainEvents()[0].(*StockAdjustedEvent)
	require.True(t, ok)
	assert.Equal(t, 3, ev.Delta)
	assert.Equal(t, StockReasonManual, ev.Reason)

	assert.Error(t, p.SetStock(-2))
	assert.Equal(t, 8, p.Stock)
}

func TestProduct_SetPrice(t *testing.T) {
	p := newTestProduct(t)
	p.ClearDomainEvents()

	require.NoError(t, p.SetPrice(decimal.NewFromInt(120)))
	assert.Empty(t, p.GetDomainEvents(), "unchanged price should not emit")

	require.NoError(t, p.SetPrice(decimal.NewFromInt(99)))
	assert.True(t, p.Price.Equal(decimal.NewFromInt(99)))
	require.Len(t, p.GetDomainEvents(), 1)
}

func TestProduct_SetImages(t *testing.T) {
	p := newTestProduct(t)

	require.NoError(t, p.SetImages([]string{"/uploads/a.png", " ", "/uploads/b.png"}))
	assert.Equal(t, []string{"/uploads/a.png", "/uploads/b.png"}, p.Images)
	assert.Equal(t, "/uploads/a.png", p.PrimaryImage())

	err := p.SetImages([]string{"1", "2", "3", "4", "5", "6"})
	assert.Error(t, err)
}

func TestProduct_HasStock(t *testing.T) {
	p := newTestProduct(t)
	assert.True(t, p.HasStock(5))
	assert.False(t, p.HasStock(6))
	assert.False(t, p.HasStock(0))
}
