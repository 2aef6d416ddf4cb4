package order

import (
	"context"

	"github.com/google/uuid"
)

// OrderRepository defines the interface for order persistence
type OrderRepository interface {
	// Create inserts a new order with its items
	Create(ctx context.Context, order *Order) error

	// Save persists status and payment fields. The update only applies if
	// the stored version matches order.Version; otherwise
	// shared.ErrConcurrencyConflict is returned. On success order.Version
	// is advanced.
	Save(ctx context.Context, order *Order) error

	// FindByID finds an order with its items
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindByUser returns all orders of a user, newest first
	FindByUser(ctx context.Context, userID uuid.UUID) ([]Order, error)

	// FindAll returns one page of orders and the total count
	FindAll(ctx context.Context, filter OrderFilter) ([]Order, int64, error)

	// FindRecent returns the newest orders
	FindRecent(ctx context.Context, limit int) ([]Order, error)

	// ExistsForProduct reports whether any order references the product
	ExistsForProduct(ctx context.Context, productID uuid.UUID) (bool, error)
}

// OrderFilter contains filter options for listing orders
type OrderFilter struct {
	Status   *OrderStatus
	UserID   *uuid.UUID
	Page     int
	PageSize int
}
