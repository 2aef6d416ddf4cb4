package report

import (
	"context"

	"github.com/shopfront/backend/internal/domain/catalog"
	"github.com/shopfront/backend/internal/domain/identity"
	"github.com/shopfront/backend/internal/domain/order"
	"github.com/shopfront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// CacheInvalidator drops the cached dashboard aggregates whenever a
// committed write changes the figures they are computed from
type CacheInvalidator struct {
	dashboard *DashboardService
	logger    *zap.Logger
}

// NewCacheInvalidator creates a new CacheInvalidator
func NewCacheInvalidator(dashboard *DashboardService, logger *zap.Logger) *CacheInvalidator {
	return &CacheInvalidator{
		dashboard: dashboard,
		logger:    logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *CacheInvalidator) EventTypes() []string {
	return []string{
		order.EventTypeOrderPlaced,
		order.EventTypeOrderStatusChanged,
		order.EventTypeOrderCancelled,
		catalog.EventTypeProductCreated,
		catalog.EventTypeProductDeleted,
		identity.EventTypeUserRegistered,
		identity.EventTypeUserDeleted,
	}
}

// Handle invalidates the cache
func (h *CacheInvalidator) Handle(ctx context.Context, event shared.DomainEvent) error {
	if err := h.dashboard.Invalidate(ctx); err != nil {
		return err
	}
	h.logger.Debug("Dashboard cache invalidated",
		zap.String("event_type", event.EventType()),
		zap.String("event_id", event.EventID().String()))
	return nil
}

var _ shared.EventHandler = (*CacheInvalidator)(nil)
