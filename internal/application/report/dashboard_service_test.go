package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/order"
	"github.com/shopfront/backend/internal/domain/report"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/infrastructure/cache"
	"github.com/shopfront/backend/internal/infrastructure/event"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockReportRepository is a mock implementation of report.ReportRepository
type MockReportRepository struct {
	mock.Mock
}

func (m *MockReportRepository) CountProducts(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockReportRepository) CountUsers(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockReportRepository) CountOrdersByStatus(ctx context.Context) ([]report.StatusCount, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]report.StatusCount), args.Error(1)
}

func (m *MockReportRepository) CountOrdersSince(ctx context.Context, since time.Time) (int64, error) {
	args := m.Called(ctx, since)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockReportRepository) FulfilledRevenue(ctx context.Context) (decimal.Decimal, error) {
	args := m.Called(ctx)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockReportRepository) FulfilledUnitsSold(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockReportRepository) FulfilledRevenueByMonth(ctx context.Context, from, to time.Time) ([]report.MonthlyRevenue, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]report.MonthlyRevenue), args.Error(1)
}

func (m *MockReportRepository) TopSellingProducts(ctx context.Context, limit int) ([]report.ProductSales, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]report.ProductSales), args.Error(1)
}

var statusCounts = []report.StatusCount{
	{Status: "pending", Count: 3},
	{Status: "processing", Count: 1},
	{Status: "shipped", Count: 4},
	{Status: "completed", Count: 2},
	{Status: "cancelled", Count: 5},
}

func newTestDashboard(repo *MockReportRepository, statsCache StatsCache) *DashboardService {
	svc := NewDashboardService(repo, statsCache, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2026, time.October, 16, 12, 0, 0, 0, time.UTC) }
	return svc
}

func TestDashboardService_Stats(t *testing.T) {
	ctx := context.Background()
	repo := new(MockReportRepository)
	svc := newTestDashboard(repo, cache.NewInMemoryStatsCache())

	repo.On("CountProducts", ctx).Return(int64(12), nil).Once()
	repo.On("CountUsers", ctx).Return(int64(7), nil).Once()
	repo.On("CountOrdersByStatus", ctx).Return(statusCounts, nil).Once()
	repo.On("FulfilledRevenue", ctx).Return(decimal.RequireFromString("1250.50"), nil).Once()

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(12), stats.TotalProducts)
	assert.Equal(t, int64(7), stats.TotalUsers)
	assert.Equal(t, int64(15), stats.TotalOrders)
	assert.True(t, decimal.RequireFromString("1250.5").Equal(stats.TotalRevenue))

	// second call is served from the cache; Once() would fail otherwise
	again, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, stats.TotalOrders, again.TotalOrders)
	repo.AssertExpectations(t)
}

func TestDashboardService_PropagatesFailures(t *testing.T) {
	ctx := context.Background()
	repo := new(MockReportRepository)
	svc := newTestDashboard(repo, nil)
	dbErr := errors.New("database is down")

	repo.On("CountProducts", ctx).Return(int64(0), dbErr)
	repo.On("FulfilledUnitsSold", ctx).Return(int64(0), dbErr)

	_, err := svc.Stats(ctx)
	assert.ErrorIs(t, err, dbErr)

	_, err = svc.OrderStats(ctx)
	assert.ErrorIs(t, err, dbErr)
}

func TestDashboardService_MonthlyRevenue(t *testing.T) {
	ctx := context.Background()
	repo := new(MockReportRepository)
	svc := newTestDashboard(repo, nil)

	from := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2027, time.January, 1, 0, 0, 0, 0, time.UTC)
	repo.On("FulfilledRevenueByMonth", ctx, from, to).Return([]report.MonthlyRevenue{
		{Month: 3, Revenue: decimal.NewFromInt(100)},
		{Month: 10, Revenue: decimal.NewFromInt(40)},
	}, nil)

	months, err := svc.MonthlyRevenue(ctx, 0)
	require.NoError(t, err)
	require.Len(t, months, 12)
	assert.Equal(t, 1, months[0].Month)
	assert.True(t, months[0].Revenue.IsZero())
	assert.True(t, decimal.NewFromInt(100).Equal(months[2].Revenue))
	assert.True(t, decimal.NewFromInt(40).Equal(months[9].Revenue))

	_, err = svc.MonthlyRevenue(ctx, 1999)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestDashboardService_Analytics(t *testing.T) {
	ctx := context.Background()
	repo := new(MockReportRepository)
	svc := newTestDashboard(repo, nil)

	monthStart := time.Date(2026, time.October, 1, 0, 0, 0, 0, time.UTC)
	repo.On("CountOrdersByStatus", ctx).Return(statusCounts, nil)
	repo.On("FulfilledRevenue", ctx).Return(decimal.NewFromInt(900), nil)
	repo.On("CountOrdersSince", ctx, monthStart).Return(int64(6), nil)

	analytics, err := svc.Analytics(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(15), analytics.TotalOrders)
	assert.Equal(t, int64(3), analytics.PendingOrders)
	assert.Equal(t, int64(1), analytics.ProcessingOrders)
	assert.Zero(t, analytics.ShippingOrders)
	assert.Equal(t, int64(4), analytics.DeliveredOrders)
	assert.Equal(t, int64(2), analytics.CompletedOrders)
	assert.Equal(t, int64(5), analytics.CancelledOrders)
	assert.Equal(t, int64(6), analytics.NewOrdersThisMonth)
	assert.True(t, decimal.NewFromInt(900).Equal(analytics.TotalRevenue))
}

func TestCacheInvalidator(t *testing.T) {
	ctx := context.Background()
	repo := new(MockReportRepository)
	statsCache := cache.NewInMemoryStatsCache()
	svc := newTestDashboard(repo, statsCache)

	repo.On("FulfilledUnitsSold", ctx).Return(int64(3), nil).Once()
	repo.On("FulfilledRevenue", ctx).Return(decimal.NewFromInt(30), nil).Once()
	_, err := svc.OrderStats(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, statsCache.Len())

	bus := event.NewInMemoryEventBus(zap.NewNop())
	bus.Subscribe(NewCacheInvalidator(svc, zap.NewNop()))

	// unrelated events leave the cache alone
	updated := shared.NewBaseDomainEvent("ProductUpdated", "Product", uuid.New())
	require.NoError(t, bus.Publish(ctx, &updated))
	assert.Equal(t, 1, statsCache.Len())

	placed := shared.NewBaseDomainEvent(order.EventTypeOrderPlaced, order.AggregateTypeOrder, uuid.New())
	require.NoError(t, bus.Publish(ctx, &placed))
	assert.Zero(t, statsCache.Len())

	repo.On("FulfilledUnitsSold", ctx).Return(int64(5), nil).Once()
	repo.On("FulfilledRevenue", ctx).Return(decimal.NewFromInt(50), nil).Once()
	stats, err := svc.OrderStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), stats.TotalSold)
}

func TestDashboardService_InvalidationDuringComputeIsNotOverwritten(t *testing.T) {
	ctx := context.Background()
	repo := new(MockReportRepository)
	statsCache := cache.NewInMemoryStatsCache()
	svc := newTestDashboard(repo, statsCache)

	// an order lands after units were counted but before revenue is read
	repo.On("FulfilledUnitsSold", ctx).Return(int64(3), nil).Once().
		Run(func(mock.Arguments) {
			require.NoError(t, svc.Invalidate(ctx))
		})
	repo.On("FulfilledRevenue", ctx).Return(decimal.NewFromInt(30), nil).Once()

	stale, err := svc.OrderStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stale.TotalSold)
	assert.Zero(t, statsCache.Len(), "a result computed across an invalidation must not be cached")

	repo.On("FulfilledUnitsSold", ctx).Return(int64(4), nil).Once()
	repo.On("FulfilledRevenue", ctx).Return(decimal.NewFromInt(40), nil).Once()

	fresh, err := svc.OrderStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), fresh.TotalSold)
	assert.Equal(t, 1, statsCache.Len())
	repo.AssertExpectations(t)
}
