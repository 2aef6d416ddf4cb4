package printing

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/identity"
	"github.com/shopfront/backend/internal/domain/order"
	"github.com/shopfront/backend/internal/domain/shared/valueobject"
	"github.com/shopfront/backend/internal/infrastructure/config"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestOrder(t *testing.T) *order.Order {
	t.Helper()
	addr, err := valueobject.NewShippingAddress("Ada <Admin>", "ada@example.com", "555-0100", "1 Loop Rd", "Leave at door")
	require.NoError(t, err)

	o, err := order.NewOrder(uuid.New(), addr, order.PaymentMethodCOD, []order.OrderLine{
		{ProductID: uuid.New(), Name: "Keyboard", Quantity: 2, Price: decimal.NewFromFloat(617.25)},
		{ProductID: uuid.New(), Name: "Mouse", Quantity: 1, Price: decimal.NewFromInt(20)},
	})
	require.NoError(t, err)
	return o
}

type fakeRenderer struct {
	html string
	err  error
}

func (f *fakeRenderer) Render(_ context.Context, html string) ([]byte, error) {
	f.html = html
	if f.err != nil {
		return nil, f.err
	}
	return []byte("%PDF-1.4"), nil
}

func (f *fakeRenderer) Close() error { return nil }

func TestInvoiceGenerator_HTML(t *testing.T) {
	o := newTestOrder(t)
	_, err := o.ChangeStatus(order.OrderStatusShipped, time.Now())
	require.NoError(t, err)

	customer, err := identity.NewUser("Ada", "ada@example.com", "secret123")
	require.NoError(t, err)

	g := NewInvoiceGenerator("Shopfront", &fakeRenderer{})
	html, err := g.HTML(o, customer)
	require.NoError(t, err)

	assert.Contains(t, html, "Shopfront invoice")
	assert.Contains(t, html, InvoiceNumber(o))
	assert.Contains(t, html, "Shipped")
	assert.Contains(t, html, "Cash on delivery (paid ")
	assert.Contains(t, html, "$1,234.50")
	assert.Contains(t, html, "$1,254.50")
	assert.Contains(t, html, "Keyboard")
	assert.Contains(t, html, "Leave at door")
	assert.Contains(t, html, "Ada &lt;Admin&gt;")
	assert.NotContains(t, html, "<Admin>")
}

func TestInvoiceGenerator_WithoutCustomer(t *testing.T) {
	g := NewInvoiceGenerator("Shopfront", &fakeRenderer{})
	html, err := g.HTML(newTestOrder(t), nil)
	require.NoError(t, err)
	assert.NotContains(t, html, "Customer:")
	assert.Contains(t, html, "Pending")
}

func TestInvoiceGenerator_RenderInvoice(t *testing.T) {
	r := &fakeRenderer{}
	g := NewInvoiceGenerator("Shopfront", r)

	pdf, err := g.RenderInvoice(context.Background(), newTestOrder(t), nil)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(pdf))
	assert.True(t, strings.HasPrefix(r.html, "<!DOCTYPE html>"))

	r.err = errors.New("chrome gone")
	_, err = g.RenderInvoice(context.Background(), newTestOrder(t), nil)
	assert.Error(t, err)
}

func TestInvoiceNumber(t *testing.T) {
	o := newTestOrder(t)
	n := InvoiceNumber(o)
	assert.True(t, strings.HasPrefix(n, "INV-"+o.CreatedAt.Format("20060102")+"-"))
	assert.True(t, strings.HasSuffix(o.ID.String(), n[len(n)-8:]))
}

func TestChromedpRenderer_RejectsEmptyHTML(t *testing.T) {
	r := NewChromedpRenderer(config.PrintingConfig{}, zap.NewNop())
	defer r.Close()

	_, err := r.Render(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrEmptyHTML)
	assert.Equal(t, 30*time.Second, r.timeout)
}
