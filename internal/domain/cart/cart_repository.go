package cart

import (
	"context"

	"github.com/google/uuid"
)

// CartRepository defines the interface for cart persistence
type CartRepository interface {
	// FindByUserID returns the user's cart or shared.ErrNotFound
	FindByUserID(ctx context.Context, userID uuid.UUID) (*Cart, error)

	// Create inserts a new empty cart. A second cart for the same user
	// yields shared.ErrAlreadyExists.
	Create(ctx context.Context, cart *Cart) error

	// Save replaces the cart lines with an optimistic version check
	Save(ctx context.Context, cart *Cart) error

	// DeleteItemsByProduct removes a product from every cart, used when a
	// product leaves the catalog
	DeleteItemsByProduct(ctx context.Context, productID uuid.UUID) error
}
