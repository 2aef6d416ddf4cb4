package report

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopfront/backend/internal/domain/order"
	"github.com/shopfront/backend/internal/domain/report"
	"github.com/shopfront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// DefaultCacheTTL bounds how stale a cached aggregate can get when an
// invalidation is missed
const DefaultCacheTTL = 5 * time.Minute

// Cache keys
const (
	keyDashboardStats = "dashboard"
	keyOrderStats     = "orders"
	keyAnalytics      = "analytics"
	keyMonthlyRevenue = "monthly_revenue:%d"
)

// StatsCache stores computed aggregates. Implemented by the Redis and
// in-memory caches.
type StatsCache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	InvalidateAll(ctx context.Context) error
}

// DashboardService computes the admin dashboard aggregates. Results are
// cached until the next write that changes them; failures are returned,
// never replaced with placeholder figures.
type DashboardService struct {
	reportRepo report.ReportRepository
	cache      StatsCache
	ttl        time.Duration
	now        func() time.Time
	logger     *zap.Logger

	// generation counts invalidations; a value computed across one is not cached
	genMu      sync.RWMutex
	generation uint64
}

// NewDashboardService creates a new DashboardService. cache may be nil.
func NewDashboardService(reportRepo report.ReportRepository, cache StatsCache, logger *zap.Logger) *DashboardService {
	return &DashboardService{
		reportRepo: reportRepo,
		cache:      cache,
		ttl:        DefaultCacheTTL,
		now:        time.Now,
		logger:     logger,
	}
}

// SetCacheTTL overrides DefaultCacheTTL
func (s *DashboardService) SetCacheTTL(ttl time.Duration) {
	s.ttl = ttl
}

// Stats returns product, user and order counts with fulfilled revenue
func (s *DashboardService) Stats(ctx context.Context) (*report.DashboardStats, error) {
	return cached(ctx, s, keyDashboardStats, func() (*report.DashboardStats, error) {
		products, err := s.reportRepo.CountProducts(ctx)
		if err != nil {
			return nil, err
		}
		users, err := s.reportRepo.CountUsers(ctx)
		if err != nil {
			return nil, err
		}
		counts, err := s.reportRepo.CountOrdersByStatus(ctx)
		if err != nil {
			return nil, err
		}
		revenue, err := s.reportRepo.FulfilledRevenue(ctx)
		if err != nil {
			return nil, err
		}

		stats := &report.DashboardStats{
			TotalProducts: products,
			TotalUsers:    users,
			TotalRevenue:  revenue,
		}
		for _, c := range counts {
			stats.TotalOrders += c.Count
		}
		return stats, nil
	})
}

// MonthlyRevenue returns fulfilled revenue for each month of year.
// A zero year means the current one.
func (s *DashboardService) MonthlyRevenue(ctx context.Context, year int) ([]report.MonthlyRevenue, error) {
	now := s.now()
	if year == 0 {
		year = now.Year()
	}
	if year < 2000 || year > now.Year()+1 {
		return nil, shared.NewValidationError(fmt.Sprintf("Year %d is out of range", year))
	}

	return cached(ctx, s, fmt.Sprintf(keyMonthlyRevenue, year), func() ([]report.MonthlyRevenue, error) {
		from, to := report.YearBounds(time.Date(year, time.January, 1, 0, 0, 0, 0, now.Location()))
		months, err := s.reportRepo.FulfilledRevenueByMonth(ctx, from, to)
		if err != nil {
			return nil, err
		}
		return report.FillYear(months), nil
	})
}

// OrderStats returns units sold and revenue of fulfilled orders
func (s *DashboardService) OrderStats(ctx context.Context) (*report.OrderStats, error) {
	return cached(ctx, s, keyOrderStats, func() (*report.OrderStats, error) {
		sold, err := s.reportRepo.FulfilledUnitsSold(ctx)
		if err != nil {
			return nil, err
		}
		revenue, err := s.reportRepo.FulfilledRevenue(ctx)
		if err != nil {
			return nil, err
		}
		return &report.OrderStats{TotalSold: sold, TotalRevenue: revenue}, nil
	})
}

// Analytics breaks orders down by status and counts this month's orders
func (s *DashboardService) Analytics(ctx context.Context) (*report.OrderAnalytics, error) {
	return cached(ctx, s, keyAnalytics, func() (*report.OrderAnalytics, error) {
		counts, err := s.reportRepo.CountOrdersByStatus(ctx)
		if err != nil {
			return nil, err
		}
		revenue, err := s.reportRepo.FulfilledRevenue(ctx)
		if err != nil {
			return nil, err
		}
		newThisMonth, err := s.reportRepo.CountOrdersSince(ctx, report.MonthStart(s.now()))
		if err != nil {
			return nil, err
		}

		analytics := &report.OrderAnalytics{
			TotalRevenue:       revenue,
			NewOrdersThisMonth: newThisMonth,
		}
		for _, c := range counts {
			analytics.TotalOrders += c.Count
			switch order.OrderStatus(c.Status) {
			case order.OrderStatusPending:
				analytics.PendingOrders = c.Count
			case order.OrderStatusProcessing:
				analytics.ProcessingOrders = c.Count
			case order.OrderStatusShipping:
				analytics.ShippingOrders = c.Count
			case order.OrderStatusShipped:
				analytics.DeliveredOrders = c.Count
			case order.OrderStatusCompleted:
				analytics.CompletedOrders = c.Count
			case order.OrderStatusCancelled:
				analytics.CancelledOrders = c.Count
			}
		}
		return analytics, nil
	})
}

// Invalidate drops every cached aggregate
func (s *DashboardService) Invalidate(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	s.genMu.Lock()
	s.generation++
	s.genMu.Unlock()
	return s.cache.InvalidateAll(ctx)
}

func (s *DashboardService) currentGeneration() uint64 {
	s.genMu.RLock()
	defer s.genMu.RUnlock()
	return s.generation
}

// cached serves key from the cache or computes and stores it. Cache
// failures degrade to computing on every call. The result is not stored when
// an invalidation happened while it was being computed.
func cached[T any](ctx context.Context, s *DashboardService, key string, compute func() (T, error)) (T, error) {
	var value T
	gen := s.currentGeneration()
	if s.cache != nil {
		hit, err := s.cache.Get(ctx, key, &value)
		if err != nil {
			s.logger.Warn("Stats cache read failed", zap.String("key", key), zap.Error(err))
		} else if hit {
			return value, nil
		}
	}

	value, err := compute()
	if err != nil {
		return value, err
	}

	if s.cache != nil {
		s.store(ctx, gen, key, value)
	}
	return value, nil
}

// store writes value unless the cache was invalidated after gen was read.
// Holding the read lock across Set orders it before any later invalidation.
func (s *DashboardService) store(ctx context.Context, gen uint64, key string, value any) {
	s.genMu.RLock()
	defer s.genMu.RUnlock()
	if s.generation != gen {
		s.logger.Debug("Stats cache invalidated during compute, not storing", zap.String("key", key))
		return
	}
	if err := s.cache.Set(ctx, key, value, s.ttl); err != nil {
		s.logger.Warn("Stats cache write failed", zap.String("key", key), zap.Error(err))
	}
}
