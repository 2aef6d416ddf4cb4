package telemetry

import (
	"context"

	"github.com/shopfront/backend/internal/domain/catalog"
	"github.com/shopfront/backend/internal/domain/order"
	"github.com/shopfront/backend/internal/domain/review"
	"github.com/shopfront/backend/internal/domain/shared"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ShopMetrics records business counters from domain events
type ShopMetrics struct {
	ordersPlaced   metric.Int64Counter
	orderRevenue   metric.Float64Counter
	statusChanges  metric.Int64Counter
	ordersCanceled metric.Int64Counter
	stockMoved     metric.Int64Counter
	reviews        metric.Int64Counter
}

var _ shared.EventHandler = (*ShopMetrics)(nil)

// NewShopMetrics creates the instruments on meter
func NewShopMetrics(meter metric.Meter) (*ShopMetrics, error) {
	m := &ShopMetrics{}
	var err error

	if m.ordersPlaced, err = meter.Int64Counter("shop.orders.placed",
		metric.WithDescription("Orders placed")); err != nil {
		return nil, err
	}
	if m.orderRevenue, err = meter.Float64Counter("shop.orders.amount",
		metric.WithDescription("Total amount of placed orders"),
		metric.WithUnit("{currency}")); err != nil {
		return nil, err
	}
	if m.statusChanges, err = meter.Int64Counter("shop.orders.status_changes",
		metric.WithDescription("Order status transitions")); err != nil {
		return nil, err
	}
	if m.ordersCanceled, err = meter.Int64Counter("shop.orders.cancelled",
		metric.WithDescription("Cancelled orders")); err != nil {
		return nil, err
	}
	if m.stockMoved, err = meter.Int64Counter("shop.stock.adjusted_units",
		metric.WithDescription("Units moved in or out of stock")); err != nil {
		return nil, err
	}
	if m.reviews, err = meter.Int64Counter("shop.reviews.created",
		metric.WithDescription("Reviews written")); err != nil {
		return nil, err
	}
	return m, nil
}

// EventTypes implements shared.EventHandler
func (m *ShopMetrics) EventTypes() []string {
	return []string{
		order.EventTypeOrderPlaced,
		order.EventTypeOrderStatusChanged,
		order.EventTypeOrderCancelled,
		catalog.EventTypeStockAdjusted,
		review.EventTypeReviewCreated,
	}
}

// Handle implements shared.EventHandler
func (m *ShopMetrics) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *order.OrderPlacedEvent:
		attrs := metric.WithAttributes(attribute.String("payment_method", string(e.PaymentMethod)))
		m.ordersPlaced.Add(ctx, 1, attrs)
		m.orderRevenue.Add(ctx, e.TotalAmount.InexactFloat64(), attrs)
	case *order.OrderStatusChangedEvent:
		m.statusChanges.Add(ctx, 1, metric.WithAttributes(
			attribute.String("from", e.FromStatus.String()),
			attribute.String("to", e.ToStatus.String()),
		))
	case *order.OrderCancelledEvent:
		m.ordersCanceled.Add(ctx, 1, metric.WithAttributes(attribute.Bool("by_owner", e.ByOwner)))
	case *catalog.StockAdjustedEvent:
		delta := int64(e.Delta)
		direction := "in"
		if delta < 0 {
			delta = -delta
			direction = "out"
		}
		m.stockMoved.Add(ctx, delta, metric.WithAttributes(
			attribute.String("reason", string(e.Reason)),
			attribute.String("direction", direction),
		))
	case *review.ReviewCreatedEvent:
		m.reviews.Add(ctx, 1, metric.WithAttributes(attribute.Int("rating", e.Rating)))
	}
	return nil
}
