package telemetry

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/catalog"
	"github.com/shopfront/backend/internal/domain/order"
	"github.com/shopfront/backend/internal/domain/review"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/infrastructure/config"
	"github.com/shopfront/backend/tests/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestProviders_DisabledAreNoop(t *testing.T) {
	ctx := context.Background()
	cfg := config.TelemetryConfig{ServiceName: "shop-test"}
	log := zap.NewNop()

	tp, err := NewTracerProvider(ctx, cfg, log)
	require.NoError(t, err)
	assert.False(t, tp.IsEnabled())
	assert.NotNil(t, tp.Tracer("test"))
	tp.EnableSpanProfiles()
	assert.NoError(t, tp.Shutdown(ctx))

	mp, err := NewMeterProvider(ctx, cfg, log)
	require.NoError(t, err)
	assert.NotNil(t, mp.Meter("test"))
	assert.NoError(t, mp.Shutdown(ctx))

	lp, err := NewLoggerProvider(ctx, cfg, log)
	require.NoError(t, err)
	assert.False(t, lp.Core(zapcore.InfoLevel).Enabled(zapcore.ErrorLevel))
	assert.NoError(t, lp.Shutdown(ctx))

	p, err := NewProfiler(cfg, log)
	require.NoError(t, err)
	assert.False(t, p.IsEnabled())
	assert.NoError(t, p.Stop())
	assert.NoError(t, p.Stop())
}

func TestNewProfiler_RequiresAddress(t *testing.T) {
	_, err := NewProfiler(config.TelemetryConfig{ProfilingEnabled: true}, zap.NewNop())
	assert.Error(t, err)
}

func TestSampler(t *testing.T) {
	assert.Contains(t, sampler(1).Description(), "AlwaysOnSampler")
	assert.Equal(t, sdktrace.NeverSample().Description(), sampler(0).Description())
	assert.Contains(t, sampler(0.25).Description(), "TraceIDRatioBased{0.25}")
}

func TestLevelFilterCore(t *testing.T) {
	inner, logs := observer.New(zapcore.DebugLevel)
	core := &levelFilterCore{Core: inner, min: zapcore.WarnLevel}

	log := zap.New(core)
	log.Info("dropped")
	log.With(zap.String("k", "v")).Warn("kept")

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "kept", entry.Message)
	assert.Equal(t, "v", entry.ContextMap()["k"])
}

func TestRegisterDBTracing_Disabled(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	require.NoError(t, RegisterDBTracing(db, config.TelemetryConfig{}, zap.NewNop()))
	require.NoError(t, RegisterDBTracing(db, config.TelemetryConfig{Enabled: true}, zap.NewNop()))
}

func TestRegisterDBTracing_Enabled(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	cfg := config.TelemetryConfig{Enabled: true, DBTraceEnabled: true}
	require.NoError(t, RegisterDBTracing(db, cfg, zap.NewNop()))

	var n int64
	require.NoError(t, db.WithContext(context.Background()).Table("products").Count(&n).Error)
	assert.Zero(t, n)
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]float64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := map[string]float64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				for _, dp := range data.DataPoints {
					out[m.Name] += float64(dp.Value)
				}
			case metricdata.Sum[float64]:
				for _, dp := range data.DataPoints {
					out[m.Name] += dp.Value
				}
			}
		}
	}
	return out
}

func TestShopMetrics_Handle(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := NewShopMetrics(provider.Meter("shop-test"))
	require.NoError(t, err)

	ctx := context.Background()
	id := uuid.New()
	events := []shared.DomainEvent{
		&order.OrderPlacedEvent{
			BaseDomainEvent: shared.NewBaseDomainEvent(order.EventTypeOrderPlaced, order.AggregateTypeOrder, id),
			TotalAmount:     decimal.NewFromFloat(30.5),
			PaymentMethod:   order.PaymentMethodCOD,
		},
		&order.OrderStatusChangedEvent{
			BaseDomainEvent: shared.NewBaseDomainEvent(order.EventTypeOrderStatusChanged, order.AggregateTypeOrder, id),
			FromStatus:      order.OrderStatusPending,
			ToStatus:        order.OrderStatusCancelled,
		},
		&order.OrderCancelledEvent{
			BaseDomainEvent: shared.NewBaseDomainEvent(order.EventTypeOrderCancelled, order.AggregateTypeOrder, id),
			ByOwner:         true,
		},
		catalog.NewStockAdjustedEvent(uuid.New(), -3, 2, catalog.StockReasonOrderPlaced),
		catalog.NewStockAdjustedEvent(uuid.New(), 4, 9, catalog.StockReasonRestored),
		&review.ReviewCreatedEvent{
			BaseDomainEvent: shared.NewBaseDomainEvent(review.EventTypeReviewCreated, review.AggregateTypeReview, id),
			Rating:          5,
		},
	}
	for _, e := range events {
		require.NoError(t, m.Handle(ctx, e))
	}

	got := collect(t, reader)
	assert.Equal(t, 1.0, got["shop.orders.placed"])
	assert.Equal(t, 30.5, got["shop.orders.amount"])
	assert.Equal(t, 1.0, got["shop.orders.status_changes"])
	assert.Equal(t, 1.0, got["shop.orders.cancelled"])
	assert.Equal(t, 7.0, got["shop.stock.adjusted_units"])
	assert.Equal(t, 1.0, got["shop.reviews.created"])
	assert.Len(t, m.EventTypes(), 5)
}
